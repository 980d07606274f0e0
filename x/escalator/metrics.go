package escalator

import (
	"github.com/compose-network/batch-submitter/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds escalation metrics
type Metrics struct {
	AttemptsTotal      prometheus.Counter
	AttemptErrorsTotal *prometheus.CounterVec
	ConfirmationsTotal prometheus.Counter
	CeilingHitsTotal   prometheus.Counter
	GasPriceGwei       prometheus.Gauge
	AttemptsPerTx      prometheus.Histogram
	TimeToConfirm      prometheus.Histogram
}

// NewMetrics registers escalation metrics on reg; nil means the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var r *metrics.ComponentRegistry
	if reg == nil {
		r = metrics.NewComponentRegistry(metrics.Namespace, "escalator")
	} else {
		r = metrics.NewComponentRegistryWith(reg, metrics.Namespace, "escalator")
	}

	return &Metrics{
		AttemptsTotal: r.NewCounter(prometheus.CounterOpts{
			Name: "attempts_total",
			Help: "Transaction attempts issued, including replacements",
		}),
		AttemptErrorsTotal: r.NewCounterVec(prometheus.CounterOpts{
			Name: "attempt_errors_total",
			Help: "Attempt errors by kind",
		}, []string{"kind"}),
		ConfirmationsTotal: r.NewCounter(prometheus.CounterOpts{
			Name: "confirmations_total",
			Help: "Escalations resolved by a confirmed receipt",
		}),
		CeilingHitsTotal: r.NewCounter(prometheus.CounterOpts{
			Name: "ceiling_hits_total",
			Help: "Attempts issued at the max gas price",
		}),
		GasPriceGwei: r.NewGauge(prometheus.GaugeOpts{
			Name: "gas_price_gwei",
			Help: "Gas price of the most recent attempt",
		}),
		AttemptsPerTx: r.NewHistogram(prometheus.HistogramOpts{
			Name:    "attempts_per_confirmation",
			Help:    "Attempts issued before a confirmation",
			Buckets: metrics.CountBuckets,
		}),
		TimeToConfirm: r.NewHistogram(prometheus.HistogramOpts{
			Name:    "time_to_confirm_seconds",
			Help:    "Time from first attempt to confirmed receipt",
			Buckets: metrics.DurationBuckets,
		}),
	}
}
