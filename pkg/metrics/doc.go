// Package metrics provides Prometheus instrumentation for schedgate gates.
//
// # Quick Start
//
// Wrap an evaluator with the metrics decorator:
//
//	gate := schedule.NewWithMetrics("renovate")
//	allowed := gate.IsScheduledNow(cfg)
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	gate := schedule.NewWithConfigAndMetrics(schedule.Config{}, "renovate", metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	})
//
// # Available Metrics
//
//   - schedgate_gate_evaluations_total{gate_name,reason}: evaluations by outcome
//   - schedgate_gate_allowed_total{gate_name}: evaluations that allowed updates
//   - schedgate_gate_denied_total{gate_name}: evaluations outside the schedule
//   - schedgate_gate_fail_open_total{gate_name,reason}: allowed because input was invalid
//   - schedgate_schedule_validation_failures_total{gate_name,rule}: rejected entries by rule
//   - schedgate_gate_evaluation_duration_seconds{gate_name}: evaluation latency
//
// The reason label takes the values of schedule.Reason; rule takes the values
// of schedule.ValidationReason plus "timezone".
//
// # Configuration
//
//	config := metrics.Config{
//		Enabled:   true,
//		Registry:  prometheus.DefaultRegisterer,
//		Namespace: "myapp",                             // Override default "schedgate"
//		Labels:    prometheus.Labels{"version": "1.0"}, // Additional labels
//	}
package metrics
