package submitter

import (
	"github.com/compose-network/batch-submitter/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds control loop metrics
type Metrics struct {
	IterationsTotal     *prometheus.CounterVec
	ErrorsTotal         *prometheus.CounterVec
	IterationDuration   prometheus.Histogram
	BalanceEther        prometheus.Gauge
	LowBalanceTotal     prometheus.Counter
	BatchSizeBytes      prometheus.Histogram
	BatchElements       prometheus.Histogram
	DeferredTotal       prometheus.Counter
	LastSubmissionTime  prometheus.Gauge
	SubmissionsInFlight prometheus.Gauge
}

// NewMetrics registers controller metrics on reg; nil means the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var r *metrics.ComponentRegistry
	if reg == nil {
		r = metrics.NewComponentRegistry(metrics.Namespace, "submitter")
	} else {
		r = metrics.NewComponentRegistryWith(reg, metrics.Namespace, "submitter")
	}

	return &Metrics{
		IterationsTotal: r.NewCounterVec(prometheus.CounterOpts{
			Name: "iterations_total",
			Help: "Control loop iterations by outcome",
		}, []string{"outcome"}),
		ErrorsTotal: r.NewCounterVec(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Failed iterations by error kind",
		}, []string{"kind"}),
		IterationDuration: r.NewHistogram(prometheus.HistogramOpts{
			Name:    "iteration_duration_seconds",
			Help:    "Duration of one control loop iteration",
			Buckets: metrics.DurationBuckets,
		}),
		BalanceEther: r.NewGauge(prometheus.GaugeOpts{
			Name: "signer_balance_ether",
			Help: "Signer balance at the last iteration",
		}),
		LowBalanceTotal: r.NewCounter(prometheus.CounterOpts{
			Name: "low_balance_total",
			Help: "Iterations that saw the signer below the minimum balance",
		}),
		BatchSizeBytes: r.NewHistogram(prometheus.HistogramOpts{
			Name:    "batch_size_bytes",
			Help:    "Size of batches offered to the timing policy",
			Buckets: metrics.SizeBuckets,
		}),
		BatchElements: r.NewHistogram(prometheus.HistogramOpts{
			Name:    "batch_elements",
			Help:    "Elements in the ranges returned by the adapter",
			Buckets: metrics.CountBuckets,
		}),
		DeferredTotal: r.NewCounter(prometheus.CounterOpts{
			Name: "deferred_total",
			Help: "Batches held back by the timing policy",
		}),
		LastSubmissionTime: r.NewGauge(prometheus.GaugeOpts{
			Name: "last_submission_timestamp_seconds",
			Help: "Unix time of the last submission attempt",
		}),
		SubmissionsInFlight: r.NewGauge(prometheus.GaugeOpts{
			Name: "submissions_in_flight",
			Help: "Transactions currently escalating",
		}),
	}
}
