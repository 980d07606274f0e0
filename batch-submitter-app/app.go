package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/compose-network/batch-submitter/batch-submitter-app/config"
	"github.com/compose-network/batch-submitter/metrics"
	apisrv "github.com/compose-network/batch-submitter/server/api"
	apimw "github.com/compose-network/batch-submitter/server/api/middleware"
	"github.com/compose-network/batch-submitter/x/adapter"
	"github.com/compose-network/batch-submitter/x/escalator"
	"github.com/compose-network/batch-submitter/x/l1"
	"github.com/compose-network/batch-submitter/x/rollup"
	"github.com/compose-network/batch-submitter/x/scheduler"
	"github.com/compose-network/batch-submitter/x/submitter"
	submitterhttp "github.com/compose-network/batch-submitter/x/submitter/http"
)

const (
	shutdownTimeout = 30 * time.Second
	reportInterval  = time.Minute
)

// App represents the batch submitter application
type App struct {
	cfg  *config.Config
	role rollup.Role
	log  zerolog.Logger

	l2     *rollup.Client
	l1     *ethclient.Client
	signer *l1.EthSigner

	controller *submitter.Controller
	scheduler  *scheduler.Scheduler

	// API server (HTTP)
	apiServer *apisrv.Server

	shutdownFns []func() error
}

// NewApp dials both chains and wires the submission pipeline.
func NewApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	role, err := rollup.ParseRole(cfg.Submitter.Role)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:         cfg,
		role:        role,
		log:         log.With().Str("component", "app").Logger(),
		shutdownFns: make([]func() error, 0),
	}

	if err := app.initialize(ctx, log); err != nil {
		_ = app.closeClients()
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	return app, nil
}

func (a *App) initialize(ctx context.Context, log zerolog.Logger) error {
	if err := a.initializeL2(ctx); err != nil {
		return err
	}
	if err := a.initializeL1(ctx, log); err != nil {
		return err
	}
	if err := a.initializeSubmitter(log); err != nil {
		return err
	}
	return a.initializeAPIServer(log)
}

func (a *App) initializeL2(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, a.cfg.L2.DialTimeout)
	defer cancel()

	client, err := rollup.Dial(dialCtx, a.cfg.L2.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("dial l2 %s: %w", a.cfg.L2.RPCEndpoint, err)
	}
	a.l2 = client
	a.shutdownFns = append(a.shutdownFns, func() error {
		client.Close()
		return nil
	})

	a.log.Info().Str("endpoint", a.cfg.L2.RPCEndpoint).Msg("Connected to L2 node")
	return nil
}

func (a *App) initializeL1(ctx context.Context, log zerolog.Logger) error {
	client, err := ethclient.DialContext(ctx, a.cfg.L1.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("dial l1 %s: %w", a.cfg.L1.RPCEndpoint, err)
	}
	a.l1 = client
	a.shutdownFns = append(a.shutdownFns, func() error {
		client.Close()
		return nil
	})

	chainID := new(big.Int).SetUint64(a.cfg.L1.ChainID)
	if a.cfg.L1.ChainID == 0 {
		chainID, err = client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("read l1 chain id: %w", err)
		}
	}

	key, err := l1.NewLocalECDSASignerFromHex(chainID, a.cfg.L1.PrivateKeyHex)
	if err != nil {
		return fmt.Errorf("load l1 signing key: %w", err)
	}

	signer, err := l1.NewEthSigner(a.cfg.L1, client, key, log)
	if err != nil {
		return fmt.Errorf("create l1 signer: %w", err)
	}
	a.signer = signer

	a.log.Info().
		Str("endpoint", a.cfg.L1.RPCEndpoint).
		Str("chain_id", chainID.String()).
		Str("address", signer.Address().Hex()).
		Msg("Connected to L1 node")
	return nil
}

// initializeSubmitter builds the role adapter, the escalation engine and the
// controller, and binds the controller to the scheduler.
func (a *App) initializeSubmitter(log zerolog.Logger) error {
	settings := a.cfg.Submitter

	base, err := adapter.NewBaseAdapter(a.role.String(), settings.AdapterConfig(), a.l2, a.signer.Client(), a.signer, log)
	if err != nil {
		return err
	}

	var chainAdapter adapter.ChainAdapter
	switch a.role {
	case rollup.RoleProducer:
		chainAdapter = adapter.NewProducer(base)
	case rollup.RoleFollower:
		chainAdapter = adapter.NewFollower(base)
	default:
		return fmt.Errorf("unsupported role %q", a.role)
	}

	engine := escalator.New(log, a.signer)

	ctrlCfg := submitter.DefaultConfig(log, chainAdapter, a.signer, engine)
	ctrlCfg.Settings = settings
	controller, err := submitter.New(ctrlCfg)
	if err != nil {
		return fmt.Errorf("create submitter: %w", err)
	}
	a.controller = controller

	schedCfg := scheduler.DefaultConfig(log)
	schedCfg.Interval = settings.PollInterval
	schedCfg.Handler = func(ctx context.Context, _ scheduler.TickInfo) error {
		_, err := controller.RunIteration(ctx)
		return err
	}
	a.scheduler = scheduler.New(schedCfg)

	a.log.Info().
		Str("role", a.role.String()).
		Dur("poll_interval", settings.PollInterval).
		Uint64("max_batch_size", settings.MaxBatchSize).
		Uint64("min_tx_size", settings.MinTxSize).
		Uint64("max_tx_size", settings.MaxTxSize).
		Uint64("max_gas_price_gwei", settings.MaxGasPriceGwei).
		Msg("Submitter initialized")
	return nil
}

func (a *App) initializeAPIServer(log zerolog.Logger) error {
	if !a.cfg.API.Enabled {
		return nil
	}

	a.apiServer = apisrv.NewServer(a.cfg.API, log)
	a.apiServer.Use(apimw.Recover(log))
	a.apiServer.Use(apimw.RequestID())
	a.apiServer.Use(apimw.Logger(log, apisrv.PathHealth, apisrv.PathReady, a.cfg.Metrics.Path))

	a.apiServer.RegisterProbes(a.controller.Ready)
	if a.cfg.Metrics.Enabled {
		a.apiServer.Router.Handle(a.cfg.Metrics.Path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}
	submitterhttp.NewHandler(a.controller, a.role.String(), log).RegisterMux(a.apiServer.Router)
	return nil
}

// Run starts every component and blocks until a shutdown signal, ctx
// cancellation, or a component failure.
func (a *App) Run(ctx context.Context) error {
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return a.scheduler.Run(gctx) })
	if a.apiServer != nil {
		g.Go(func() error { return a.apiServer.Start(gctx) })
	}
	g.Go(func() error {
		a.statusReporter(gctx)
		return nil
	})

	a.log.Info().Str("role", a.role.String()).Msg("Batch submitter started successfully")

	return a.runWithGracefulShutdown(runCtx, g)
}

func (a *App) runWithGracefulShutdown(ctx context.Context, g *errgroup.Group) error {
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var runErr error
	select {
	case runErr = <-done:
		if runErr != nil {
			a.log.Error().Err(runErr).Msg("Component failed, initiating shutdown")
		}
	case <-ctx.Done():
		a.log.Info().Msg("Shutdown requested, waiting for in-flight submission")
		select {
		case runErr = <-done:
		case <-time.After(shutdownTimeout):
			runErr = errors.New("graceful shutdown timed out")
			a.log.Error().Dur("timeout", shutdownTimeout).Msg("Components did not stop in time")
		}
	}

	return errors.Join(runErr, a.shutdown())
}

func (a *App) shutdown() error {
	a.log.Info().Msg("Initiating graceful shutdown")
	err := a.closeClients()
	a.log.Info().Msg("Graceful shutdown complete")
	return err
}

func (a *App) closeClients() error {
	var errs []error
	for i := len(a.shutdownFns) - 1; i >= 0; i-- {
		if err := a.shutdownFns[i](); err != nil {
			a.log.Error().Err(err).Msg("Shutdown function error")
			errs = append(errs, err)
		}
	}
	a.shutdownFns = nil
	return errors.Join(errs...)
}

// statusReporter periodically logs the controller status.
func (a *App) statusReporter(ctx context.Context) {
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := a.controller.Status()
			ev := a.log.Info().
				Str("role", a.role.String()).
				Uint64("iterations", st.Iterations).
				Str("last_outcome", string(st.LastOutcome)).
				Time("last_batch_submission", st.LastBatchSubmission).
				Uint64("skipped_ticks", a.scheduler.Skipped()).
				Bool("ready", st.Ready)
			if st.LastError != "" {
				ev = ev.Str("last_error", st.LastError)
			}
			ev.Msg("Batch submitter statistics")
		}
	}
}
