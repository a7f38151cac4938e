package schedule

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/schedgate/internal/testutil"
	gferrors "github.com/vnykmshr/schedgate/pkg/common/errors"
)

// newTestEvaluator returns an Evaluator frozen at the given wall-clock time
// in UTC, plus the clock to move it.
func newTestEvaluator(t *testing.T, now string) (*Evaluator, *testutil.MockClock) {
	t.Helper()
	clock := testutil.NewMockClock(testutil.ParseTime(t, now, time.UTC))
	return NewWithConfig(Config{Clock: clock}), clock
}

func TestIsScheduledNow(t *testing.T) {
	tests := []struct {
		name     string
		schedule Entries
		timezone string
		want     bool
	}{
		{"no schedule", nil, "", true},
		{"at any time", Entries{"at any time"}, "", true},
		{"invalid schedule", Entries{"every 15 minutes"}, "", true},
		{"invalid timezone", Entries{"after 4:00pm"}, "Asia", true},
		{"before hours true", Entries{"before 4:00pm"}, "", true},
		{"before hours false", Entries{"before 4:00am"}, "", false},
		{"outside hours", Entries{"after 4:00pm"}, "", false},
		{"cron hour match", Entries{"* 10 * * *"}, "", true},
		{"cron hour mismatch", Entries{"* 11 * * *"}, "", false},
		{"cron day match", Entries{"* * 30 * *"}, "", true},
		{"cron day mismatch", Entries{"* * 1 * *"}, "", false},
		{"cron month match", Entries{"* * * 6 *"}, "", true},
		{"cron month mismatch", Entries{"* * * 7 *"}, "", false},
		{"cron weekday match", Entries{"* * * * 5"}, "", true},
		{"cron weekday mismatch", Entries{"* * * * 6"}, "", false},
		{"cron hour and day mismatch", Entries{"* 10 21 * *"}, "", false},
		{"cron month and day mismatch", Entries{"* 10 30 1 *"}, "", false},
		{"cron month only mismatch", Entries{"* * * 1 *"}, "", false},
		{"multiple schedules", Entries{"after 4:00pm", "before 11:00am"}, "", true},
		{"day match", Entries{"on friday and saturday"}, "", true},
		{"day mismatch", Entries{"on monday and tuesday"}, "", false},
		{"every weekday", Entries{"every weekday"}, "", true},
		{"every weekend", Entries{"every weekend"}, "", false},
		{"every weekday with time", Entries{"before 11:00am every weekday"}, "", true},
		{"garbled weekday falls open", Entries{"before 11:00am on inevery weekday"}, "", true},
		{"first day of the month", Entries{"before 11am on the first day of the month"}, "", false},
		{"wrapping window outside", Entries{"after 10pm and before 5am"}, "", false},
		{"wrapping cron hours outside", Entries{"* 22-3 * * *"}, "", false},
		{"last day of the month", Entries{"on the last day of the month"}, "", true},
		{"month of year", Entries{"of june"}, "", true},
		{"cron all wildcards falls open", Entries{"* * * * *"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEvaluator(t, "2017-06-30T10:50:00")
			got := e.IsScheduledNow(RepoConfig{Schedule: tt.schedule, Timezone: tt.timezone})
			if got != tt.want {
				t.Errorf("IsScheduledNow(%q, %q) = %v, want %v", tt.schedule, tt.timezone, got, tt.want)
			}
		})
	}
}

func TestIsScheduledNowAt(t *testing.T) {
	tests := []struct {
		schedule string
		now      string
		want     bool
	}{
		// Sunday 8 January 2023
		{"* * * * 0", "2023-01-08T10:50:00", true},
		{"* * * * 7", "2023-01-08T10:50:00", true},
		{"* * * * 1", "2023-01-08T10:50:00", false},

		// Thursday 31 October 2024
		{"* * * L *", "2024-10-31T10:50:00", true},
		{"* * * L *", "2024-10-30T10:50:00", false},
		{"* * L * *", "2024-10-31T10:50:00", true},
		{"* * L * *", "2024-10-30T10:50:00", false},
		{"* * * * 4L", "2024-10-31T10:50:00", true},
		{"* * * * 4L", "2024-10-24T10:50:00", false},
		{"* * * * 5L", "2024-10-31T10:50:00", false},
		{"* * * * * 6L", "2024-10-26T10:50:00", true},
		{"* * * * * 6L", "2024-10-19T10:50:00", false},

		// Monday 7 October 2024
		{"* * * * 1#1", "2024-10-07T10:50:00", true},
		{"* * * * 1#2", "2024-10-07T10:50:00", false},

		// day of month AND day of week
		{"* 0-5 1-7,15-22 * 4", "2017-06-01T01:00:00", true},
		{"* 0-5 1-7,15-22 * 4", "2017-06-15T01:01:00", true},
		{"* 0-5 1-7,15-22 * 4", "2017-06-16T03:00:00", false},
		{"* 0-5 1-7,15-22 * 4", "2017-06-04T04:01:00", false},
		{"* 0-5 1-7,15-22 * 4", "2017-06-08T04:01:00", false},
		{"* 0-5 1-7,15-22 * 4", "2017-06-29T04:01:00", false},

		{"before 11am on the first day of the month", "2017-10-01T05:26:06", true},
		{"every 2 weeks of the year before 08:00 on Monday", "2017-01-02T06:00:00", true},
		{"every 2 weeks of the year before 08:00 on Monday", "2017-01-09T06:00:00", false},
		{"every 2 weeks of the year before 08:00 on Monday", "2017-01-16T06:00:00", true},
		{"of January", "2017-01-02T06:00:00", true},
		{"of January", "2017-02-02T06:00:00", false},
		{"every 3 months", "2017-07-01T06:00:00", true},
		{"every 6 months", "2017-02-01T06:00:00", false},
		{"every 3 months on the first day of the month", "2017-07-01T06:00:00", true},
		{"every 3 months on the first day of the month", "2017-02-01T06:00:00", false},
		{"every month", "2017-07-01T04:59:00", true},
		{"every month", "2017-07-01T05:00:00", false},
		{"* * * %3 *", "2017-07-15T12:00:00", true},
		{"* * * %3 *", "2017-08-15T12:00:00", false},
		{"* * * */2 6#1", "2017-07-01T12:00:00", true},
		{"* * * */2 6#1", "2017-07-08T12:00:00", false},
		{"before 5am on every weekday", "2017-06-30T04:00:00", true},
		{"before 5am on every weekday", "2017-07-01T04:00:00", false},

		{"on Monday on the first day instance", "2017-02-01T06:00:00", false},
		{"on Monday on the first day instance", "2017-02-06T06:00:00", true},
		{"on Monday on the first day instance", "2017-02-13T06:00:00", false},

		{"after 10pm and before 5am", "2017-06-30T23:30:00", true},
		{"after 10pm and before 5am", "2017-06-30T04:59:00", true},
		{"after 10pm and before 5am", "2017-06-30T05:00:00", false},
		{"* 22-3 * * *", "2017-06-30T23:30:00", true},
		{"* 22-3 * * *", "2017-06-30T03:59:00", true},
		{"* 22-3 * * *", "2017-06-30T04:00:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.schedule+"@"+tt.now, func(t *testing.T) {
			e, _ := newTestEvaluator(t, tt.now)
			d := e.Evaluate(RepoConfig{Schedule: Entries{tt.schedule}})
			if d.Allowed != tt.want {
				t.Errorf("Evaluate(%q) at %s allowed = %v, want %v", tt.schedule, tt.now, d.Allowed, tt.want)
			}
			// every row is a valid schedule, so a fail-open decision is a bug
			want := ReasonUnmatched
			if tt.want {
				want = ReasonMatched
			}
			if d.Reason != want {
				t.Errorf("Evaluate(%q) at %s reason = %s (%v), want %s", tt.schedule, tt.now, d.Reason, d.Err, want)
			}
		})
	}
}

func TestIsScheduledNowTimezone(t *testing.T) {
	tests := []struct {
		schedule string
		timezone string
		now      string
		want     bool
	}{
		{"after 4pm", "Asia/Singapore", "2017-06-30T15:59:00+08:00", false},
		{"after 4pm", "Asia/Singapore", "2017-06-30T16:01:00+08:00", true},
		{"before 4am on Monday", "Asia/Tokyo", "2017-06-26T03:59:00+09:00", true},
		{"before 4am on Monday", "Asia/Tokyo", "2017-06-26T04:01:00+09:00", false},
		{"* 16-23 * * *", "Asia/Singapore", "2017-06-30T15:59:00+08:00", false},
		{"* 16-23 * * *", "Asia/Singapore", "2017-06-30T16:01:00+08:00", true},
		{"* 0-3 * * 1", "Asia/Tokyo", "2017-06-26T03:58:00+09:00", true},
		{"* 0-3 * * 1", "Asia/Tokyo", "2017-06-26T04:01:00+09:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.schedule+"@"+tt.now, func(t *testing.T) {
			e, _ := newTestEvaluator(t, tt.now)
			cfg := RepoConfig{Schedule: Entries{tt.schedule}, Timezone: tt.timezone}
			if got := e.IsScheduledNow(cfg); got != tt.want {
				t.Errorf("IsScheduledNow(%q, %s) at %s = %v, want %v", tt.schedule, tt.timezone, tt.now, got, tt.want)
			}
		})
	}
}

func TestEvaluateDecision(t *testing.T) {
	e, _ := newTestEvaluator(t, "2017-06-30T10:50:00")

	d := e.Evaluate(RepoConfig{})
	testutil.AssertEqual(t, d.Allowed, true)
	testutil.AssertEqual(t, d.Reason, ReasonAnyTime)

	d = e.Evaluate(RepoConfig{Schedule: Entries{"after 4pm", "before 11am"}, Timezone: "UTC"})
	testutil.AssertEqual(t, d.Allowed, true)
	testutil.AssertEqual(t, d.Reason, ReasonMatched)
	testutil.AssertEqual(t, d.Entry, "before 11am")
	testutil.AssertEqual(t, d.Now.Location().String(), "UTC")

	d = e.Evaluate(RepoConfig{Schedule: Entries{"after 4pm"}})
	testutil.AssertEqual(t, d.Allowed, false)
	testutil.AssertEqual(t, d.Reason, ReasonUnmatched)
	testutil.AssertEqual(t, d.Entry, "")

	d = e.Evaluate(RepoConfig{Schedule: Entries{"foo"}})
	testutil.AssertEqual(t, d.Allowed, FailOpen)
	testutil.AssertEqual(t, d.Reason, ReasonInvalidSchedule)
	if !errors.Is(d.Err, gferrors.ErrInvalidSchedule) {
		t.Errorf("expected ErrInvalidSchedule, got %v", d.Err)
	}

	d = e.Evaluate(RepoConfig{Schedule: Entries{"after 4pm"}, Timezone: "Asia"})
	testutil.AssertEqual(t, d.Allowed, FailOpen)
	testutil.AssertEqual(t, d.Reason, ReasonInvalidTimezone)
	if !errors.Is(d.Err, gferrors.ErrInvalidTimezone) {
		t.Errorf("expected ErrInvalidTimezone, got %v", d.Err)
	}
}

func TestEvaluateInvalidScheduleBeforeTimezone(t *testing.T) {
	e, _ := newTestEvaluator(t, "2017-06-30T10:50:00")
	d := e.Evaluate(RepoConfig{Schedule: Entries{"foo"}, Timezone: "Asia"})
	testutil.AssertEqual(t, d.Reason, ReasonInvalidSchedule)
}

func TestEvaluatorDefaultLocation(t *testing.T) {
	clock := testutil.NewMockClock(time.Date(2017, time.June, 30, 8, 1, 0, 0, time.UTC))
	e := NewWithConfig(Config{
		Clock:    clock,
		Location: testutil.LoadLocation(t, "Asia/Singapore"),
	})

	// 08:01 UTC is 16:01 in Singapore
	testutil.AssertEqual(t, e.IsScheduledNow(RepoConfig{Schedule: Entries{"after 4pm"}}), true)

	// an explicit timezone wins over the default
	testutil.AssertEqual(t, e.IsScheduledNow(RepoConfig{Schedule: Entries{"after 4pm"}, Timezone: "UTC"}), false)
}

func TestEvaluatorFollowsClock(t *testing.T) {
	e, clock := newTestEvaluator(t, "2017-06-30T15:00:00")
	cfg := RepoConfig{Schedule: Entries{"after 4pm"}}

	testutil.AssertEqual(t, e.IsScheduledNow(cfg), false)
	clock.Advance(time.Hour)
	testutil.AssertEqual(t, e.IsScheduledNow(cfg), true)
	clock.Advance(8 * time.Hour)
	testutil.AssertEqual(t, e.IsScheduledNow(cfg), false)
}

func TestEvaluatorLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	clock := testutil.NewMockClock(time.Date(2017, time.June, 30, 10, 50, 0, 0, time.UTC))
	e := NewWithConfig(Config{Clock: clock, Logger: &logger})

	e.IsScheduledNow(RepoConfig{Schedule: Entries{"foo"}})
	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"component":"schedule"`, `"schedule":["foo"]`, "invalid schedule"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}

	buf.Reset()
	e.IsScheduledNow(RepoConfig{Schedule: Entries{"before 11am"}})
	out = buf.String()
	if !strings.Contains(out, `"entry":"before 11am"`) || !strings.Contains(out, "matches schedule") {
		t.Errorf("log output %q missing match entry", out)
	}
}

func TestEvaluatorLogsCronDescription(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	clock := testutil.NewMockClock(time.Date(2017, time.June, 4, 22, 30, 0, 0, time.UTC))
	e := NewWithConfig(Config{Clock: clock, Logger: &logger})

	d := e.Evaluate(RepoConfig{Schedule: Entries{"* 22 4 * *"}})
	testutil.AssertEqual(t, d.Reason, ReasonMatched)
	out := buf.String()
	for _, want := range []string{"checking cron schedule", `"description":"`, "10:00 PM", "day 4 of the month"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestEvaluatorCronDescriptionDoesNotAffectDecision(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	clock := testutil.NewMockClock(time.Date(2017, time.July, 1, 10, 0, 0, 0, time.UTC))
	e := NewWithConfig(Config{Clock: clock, Logger: &logger})
	quiet := NewWithConfig(Config{Clock: clock})

	for _, entry := range []string{"* * * */2 6#1", "* * * %3 *", "* 22-3 * * *"} {
		cfg := RepoConfig{Schedule: Entries{entry}}
		d := e.Evaluate(cfg)
		testutil.AssertEqual(t, d, quiet.Evaluate(cfg))
		if d.Reason != ReasonMatched && d.Reason != ReasonUnmatched {
			t.Errorf("%q: reason = %s, want matched or unmatched", entry, d.Reason)
		}
	}
	if !strings.Contains(buf.String(), `"entry":"* * * */2 6#1"`) {
		t.Errorf("log output %q missing cron entry", buf.String())
	}
}

func TestEvaluatorNeverPanics(t *testing.T) {
	e, _ := newTestEvaluator(t, "2017-06-30T10:50:00")
	inputs := []string{
		"", " ", "*", "* * * * * * *", "L L L L L", "# # # # #", "% % % % %",
		"* * * %-1 *", "* * 0-0-0 * *", "* * * * 9#9", "* 99-3 * * *",
		"after", "before", "on", "on the", "on the day", "every", "every 0 months",
		"every -3 weeks", "of", "of smarch", "at 25:00", "after 13pm", "after 99:99",
		"on the 40th day of the month", "on the 9th day instance",
		"every 999999999999999999999 months", "on monday through", ", , and",
	}
	for _, input := range inputs {
		cfg := RepoConfig{Schedule: Entries{input}, Timezone: input}
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Evaluate(%q) panicked: %v", input, r)
				}
			}()
			e.Evaluate(cfg)
			_, _ = HasValidSchedule(cfg.Schedule)
		}()
	}
}

type panicClock struct{}

func (panicClock) Now() time.Time { panic("clock failure") }

func TestEvaluateRecoversPanic(t *testing.T) {
	e := NewWithConfig(Config{Clock: panicClock{}})
	d := e.Evaluate(RepoConfig{Schedule: Entries{"after 4pm"}})
	testutil.AssertEqual(t, d.Allowed, FailOpen)
	testutil.AssertEqual(t, d.Reason, ReasonInternal)
	testutil.AssertError(t, d.Err)
}

func TestPackageIsScheduledNow(t *testing.T) {
	testutil.AssertEqual(t, IsScheduledNow(RepoConfig{}), true)
	testutil.AssertEqual(t, IsScheduledNow(RepoConfig{Schedule: Entries{"at any time"}}), true)
}

func TestEvaluatorImplementsGate(t *testing.T) {
	var _ Gate = New()
	var _ Gate = &MetricsGate{}
}
