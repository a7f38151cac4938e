package schedule

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/schedgate/internal/testutil"
	"github.com/vnykmshr/schedgate/pkg/metrics"
)

func TestMetricsGate(t *testing.T) {
	reg := prometheus.NewRegistry()
	clock := testutil.NewMockClock(time.Date(2017, time.June, 30, 10, 50, 0, 0, time.UTC))
	gate := NewWithConfigAndMetrics(Config{Clock: clock}, "test_gate", metrics.Config{
		Enabled:  true,
		Registry: reg,
	})

	mg, ok := gate.(*MetricsGate)
	if !ok {
		t.Fatalf("expected *MetricsGate, got %T", gate)
	}

	testutil.AssertEqual(t, gate.IsScheduledNow(RepoConfig{Schedule: Entries{"before 11am"}}), true)
	testutil.AssertEqual(t, gate.IsScheduledNow(RepoConfig{Schedule: Entries{"after 4pm"}}), false)
	testutil.AssertEqual(t, gate.IsScheduledNow(RepoConfig{Schedule: Entries{"foo"}}), true)
	testutil.AssertEqual(t, gate.IsScheduledNow(RepoConfig{Schedule: Entries{"after 4pm"}, Timezone: "Asia"}), true)
	testutil.AssertEqual(t, gate.IsScheduledNow(RepoConfig{}), true)

	r := mg.registry
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.Allowed.WithLabelValues("test_gate")), 4.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.Denied.WithLabelValues("test_gate")), 1.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.Evaluations.WithLabelValues("test_gate", string(ReasonMatched))), 1.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.Evaluations.WithLabelValues("test_gate", string(ReasonAnyTime))), 1.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.FailOpen.WithLabelValues("test_gate", string(ReasonInvalidSchedule))), 1.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.FailOpen.WithLabelValues("test_gate", string(ReasonInvalidTimezone))), 1.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.ValidationFailures.WithLabelValues("test_gate", string(ReasonParse))), 1.0)
	testutil.AssertEqual(t, promtestutil.ToFloat64(r.ValidationFailures.WithLabelValues("test_gate", "timezone")), 1.0)

	if n := promtestutil.CollectAndCount(r.EvaluationDuration); n != 1 {
		t.Errorf("expected one duration series, got %d", n)
	}
}

func TestWithMetricsDisabled(t *testing.T) {
	e := New()
	gate := WithMetrics(e, "disabled", metrics.Config{Enabled: false})
	if gate != Gate(e) {
		t.Error("disabled metrics should return the gate unchanged")
	}
}

func TestMetricsGateNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	gate := WithMetrics(New(), "ns_gate", metrics.Config{
		Enabled:   true,
		Registry:  reg,
		Namespace: "renovate",
		Labels:    prometheus.Labels{"env": "test"},
	})
	gate.IsScheduledNow(RepoConfig{})

	families, err := reg.Gather()
	testutil.AssertNoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "renovate_gate_evaluations_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected renovate_gate_evaluations_total to be registered")
	}
}
