// Package metrics provides Prometheus instrumentation for schedgate components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for schedgate components.
type Registry struct {
	// Gate decisions
	Evaluations *prometheus.CounterVec
	Allowed     *prometheus.CounterVec
	Denied      *prometheus.CounterVec
	FailOpen    *prometheus.CounterVec

	// Validation
	ValidationFailures *prometheus.CounterVec

	EvaluationDuration *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry used by schedgate components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Registry: reg})
}

// NewRegistryWithConfig creates a metrics registry honoring the namespace and
// constant labels in config.
func NewRegistryWithConfig(config Config) *Registry {
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Registry{
		Evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "gate",
				Name:        "evaluations_total",
				Help:        "Total number of schedule evaluations by outcome reason",
				ConstLabels: config.Labels,
			},
			[]string{"gate_name", "reason"},
		),

		Allowed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "gate",
				Name:        "allowed_total",
				Help:        "Total number of evaluations that allowed updates",
				ConstLabels: config.Labels,
			},
			[]string{"gate_name"},
		),

		Denied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "gate",
				Name:        "denied_total",
				Help:        "Total number of evaluations outside the schedule",
				ConstLabels: config.Labels,
			},
			[]string{"gate_name"},
		),

		FailOpen: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "gate",
				Name:        "fail_open_total",
				Help:        "Total number of evaluations allowed because configuration was invalid",
				ConstLabels: config.Labels,
			},
			[]string{"gate_name", "reason"},
		),

		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "schedule",
				Name:        "validation_failures_total",
				Help:        "Total number of rejected schedule entries by rule",
				ConstLabels: config.Labels,
			},
			[]string{"gate_name", "rule"},
		),

		EvaluationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "gate",
				Name:        "evaluation_duration_seconds",
				Help:        "Time spent evaluating a schedule",
				Buckets:     []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
				ConstLabels: config.Labels,
			},
			[]string{"gate_name"},
		),
	}
}
