package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/compose-network/batch-submitter/batch-submitter-app/config"
	"github.com/compose-network/batch-submitter/log"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "batch-submitter",
		Short: "Rollup Batch Submitter",
		Long:  banner + "\n\nSubmits L2 transaction and state batches to the L1 rollup contracts.",
		RunE:  runApp,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   runVersion,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE:  runConfig,
	}
)

const banner = `
 ____    _  _____ ____ _   _
| __ )  / \|_   _/ ___| | | |
|  _ \ / _ \ | || |   | |_| |
| |_) / ___ \| || |___|  _  |
|____/_/   \_\_| \____|_| |_|
 ____  _   _ ____  __  __ ___ _____ _____ _____ ____
/ ___|| | | | __ )|  \/  |_ _|_   _|_   _| ____|  _ \
\___ \| | | |  _ \| |\/| || |  | |   | | |  _| | |_) |
 ___) | |_| | |_) | |  | || |  | |   | | | |___|  _ <
|____/ \___/|____/|_|  |_|___| |_|   |_| |_____|_| \_\`

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute() error {
	initCommands()
	return rootCmd.Execute()
}

func initCommands() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (optional, env overrides apply)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "enable pretty logging")

	// Chain flags
	rootCmd.PersistentFlags().String("l1-rpc", "", "L1 JSON-RPC endpoint")
	rootCmd.PersistentFlags().String("l2-rpc", "", "L2 rollup node JSON-RPC endpoint")
	rootCmd.PersistentFlags().String("role", "", "submitter role (producer, follower)")
	rootCmd.PersistentFlags().Duration("poll-interval", 0, "interval between submission iterations")

	// API flags
	rootCmd.PersistentFlags().String("listen-addr", "", "HTTP API listen address")
	rootCmd.PersistentFlags().Bool("metrics", false, "enable metrics")
}

func runApp(cmd *cobra.Command, _ []string) error {
	fmt.Println(banner)
	fmt.Println()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := log.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("go_version", runtime.Version()).
		Msg("Build information")

	log.Info().
		Str("config_file", cfgFile).
		Str("role", cfg.Submitter.Role).
		Str("listen_addr", cfg.API.ListenAddr).
		Bool("metrics_enabled", cfg.Metrics.Enabled).
		Str("log_level", cfg.Log.Level).
		Msg("Configuration loaded")

	application, err := NewApp(cmd.Context(), cfg, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return application.Run(cmd.Context())
}

func runVersion(*cobra.Command, []string) {
	fmt.Println(banner)
	fmt.Println()
	fmt.Printf("Rollup Batch Submitter\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// runConfig prints the merged configuration. The signing key is never emitted.
func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flag("log-level").Changed {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flag("log-pretty").Changed {
		cfg.Log.Pretty, _ = cmd.Flags().GetBool("log-pretty")
	}

	if cmd.Flag("l1-rpc").Changed {
		cfg.L1.RPCEndpoint, _ = cmd.Flags().GetString("l1-rpc")
	}
	if cmd.Flag("l2-rpc").Changed {
		cfg.L2.RPCEndpoint, _ = cmd.Flags().GetString("l2-rpc")
	}
	if cmd.Flag("role").Changed {
		cfg.Submitter.Role, _ = cmd.Flags().GetString("role")
	}
	if cmd.Flag("poll-interval").Changed {
		cfg.Submitter.PollInterval, _ = cmd.Flags().GetDuration("poll-interval")
	}

	if cmd.Flag("listen-addr").Changed {
		cfg.API.ListenAddr, _ = cmd.Flags().GetString("listen-addr")
	}
	if cmd.Flag("metrics").Changed {
		cfg.Metrics.Enabled, _ = cmd.Flags().GetBool("metrics")
	}
}
