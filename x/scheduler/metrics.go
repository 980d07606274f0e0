package scheduler

import (
	"github.com/compose-network/batch-submitter/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	TicksTotal *prometheus.CounterVec
}

// NewMetrics registers scheduler metrics on reg; nil means the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var r *metrics.ComponentRegistry
	if reg == nil {
		r = metrics.NewComponentRegistry(metrics.Namespace, "scheduler")
	} else {
		r = metrics.NewComponentRegistryWith(reg, metrics.Namespace, "scheduler")
	}
	return &Metrics{
		TicksTotal: r.NewCounterVec(prometheus.CounterOpts{
			Name: "ticks_total",
			Help: "Scheduler ticks by result (fired, skipped, failed)",
		}, []string{"result"}),
	}
}
