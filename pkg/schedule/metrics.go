package schedule

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/schedgate/pkg/metrics"
)

// MetricsGate wraps a Gate with Prometheus metrics collection.
type MetricsGate struct {
	gate     Gate
	name     string
	registry *metrics.Registry
}

// NewWithMetrics creates an Evaluator reporting to metrics.DefaultRegistry.
func NewWithMetrics(name string) Gate {
	return NewWithConfigAndMetrics(Config{}, name, metrics.DefaultConfig())
}

// NewWithConfigAndMetrics creates an Evaluator with custom config and metrics.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) Gate {
	return WithMetrics(NewWithConfig(config), name, metricsConfig)
}

// WithMetrics decorates gate. A disabled metricsConfig returns gate unchanged.
func WithMetrics(gate Gate, name string, metricsConfig metrics.Config) Gate {
	if !metricsConfig.Enabled {
		return gate
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil && metricsConfig.Registry != prometheus.DefaultRegisterer {
		registry = metrics.NewRegistryWithConfig(metricsConfig)
	}

	return &MetricsGate{
		gate:     gate,
		name:     name,
		registry: registry,
	}
}

// IsScheduledNow reports whether now is inside cfg's schedule.
func (mg *MetricsGate) IsScheduledNow(cfg RepoConfig) bool {
	return mg.Evaluate(cfg).Allowed
}

// Evaluate evaluates cfg and records the decision.
func (mg *MetricsGate) Evaluate(cfg RepoConfig) Decision {
	start := time.Now()
	d := mg.gate.Evaluate(cfg)
	mg.registry.EvaluationDuration.WithLabelValues(mg.name).Observe(time.Since(start).Seconds())

	mg.registry.Evaluations.WithLabelValues(mg.name, string(d.Reason)).Inc()
	if d.Allowed {
		mg.registry.Allowed.WithLabelValues(mg.name).Inc()
	} else {
		mg.registry.Denied.WithLabelValues(mg.name).Inc()
	}

	switch d.Reason {
	case ReasonInvalidSchedule, ReasonInvalidTimezone, ReasonInternal:
		mg.registry.FailOpen.WithLabelValues(mg.name, string(d.Reason)).Inc()
	}

	var serr *InvalidScheduleError
	switch {
	case errors.As(d.Err, &serr):
		mg.registry.ValidationFailures.WithLabelValues(mg.name, string(serr.Reason)).Inc()
	case d.Reason == ReasonInvalidTimezone:
		mg.registry.ValidationFailures.WithLabelValues(mg.name, "timezone").Inc()
	}
	return d
}
