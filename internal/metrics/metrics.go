// Package metrics exposes prometheus instrumentation for plan execution.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Registry *prometheus.Registry

	ExecutionsTotal   *prometheus.CounterVec
	ActionFailures    *prometheus.CounterVec
	ExecutionDuration prometheus.Histogram
	PlansBuilt        prometheus.Counter
}

// New creates a self-contained metrics set on its own registry so tests can
// instantiate it repeatedly without duplicate-collector panics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		ExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nongnai_plan_executions_total",
			Help: "Plan executions by terminal status.",
		}, []string{"status"}),
		ActionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nongnai_action_failures_total",
			Help: "Isolated per-action execution failures by channel.",
		}, []string{"channel"}),
		ExecutionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nongnai_plan_execution_seconds",
			Help:    "Wall-clock duration of plan executions.",
			Buckets: prometheus.DefBuckets,
		}),
		PlansBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nongnai_plans_built_total",
			Help: "Plans assembled by the intent resolver.",
		}),
	}

	reg.MustRegister(m.ExecutionsTotal, m.ActionFailures, m.ExecutionDuration, m.PlansBuilt)
	return m
}
