package schedule

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/schedgate/pkg/schedule/cronx"
)

// FailOpen is what evaluation returns for a schedule or timezone that fails
// validation. Blocking every update because of a configuration typo is worse
// than running outside the window, so evaluation allows the update while
// Validate and HasValidTimezone keep rejecting the same input.
const FailOpen = true

// Reason explains a Decision.
type Reason string

const (
	// ReasonAnyTime means no schedule restricts updates.
	ReasonAnyTime Reason = "any_time"

	// ReasonMatched means now falls inside one of the entries.
	ReasonMatched Reason = "matched"

	// ReasonUnmatched means now falls outside every entry.
	ReasonUnmatched Reason = "unmatched"

	// ReasonInvalidSchedule means an entry failed validation and FailOpen applied.
	ReasonInvalidSchedule Reason = "invalid_schedule"

	// ReasonInvalidTimezone means the timezone is unknown and FailOpen applied.
	ReasonInvalidTimezone Reason = "invalid_timezone"

	// ReasonInternal means evaluation recovered from a panic and FailOpen applied.
	ReasonInternal Reason = "internal_error"
)

// Decision is the outcome of one evaluation.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Entry is the schedule entry that matched, if any.
	Entry string
	// Now is the localized instant the schedule was evaluated against. It is
	// zero when evaluation stopped before localizing.
	Now time.Time
	// Err holds the validation error behind a fail-open decision.
	Err error
}

// Gate decides whether updates may proceed now.
type Gate interface {
	// IsScheduledNow reports whether the current instant is inside the
	// configured schedule.
	IsScheduledNow(cfg RepoConfig) bool

	// Evaluate is IsScheduledNow with the reasoning attached.
	Evaluate(cfg RepoConfig) Decision
}

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Config holds configuration options for creating an Evaluator.
type Config struct {
	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock

	// Location is used when a repository sets no timezone. If nil, the
	// clock's own location is kept.
	Location *time.Location

	// Logger receives diagnostic output. If nil, nothing is logged.
	Logger *zerolog.Logger
}

// Evaluator implements Gate. It holds no mutable state and is safe for
// concurrent use.
type Evaluator struct {
	clock    Clock
	location *time.Location
	logger   zerolog.Logger
}

// New creates an Evaluator that reads the system clock and does not log.
func New() *Evaluator {
	return NewWithConfig(Config{})
}

// NewWithConfig creates an Evaluator with custom configuration.
func NewWithConfig(config Config) *Evaluator {
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = config.Logger.With().Str("component", "schedule").Logger()
	}
	return &Evaluator{
		clock:    config.Clock,
		location: config.Location,
		logger:   logger,
	}
}

var defaultEvaluator = New()

// IsScheduledNow evaluates cfg against the system clock with a silent
// default Evaluator.
func IsScheduledNow(cfg RepoConfig) bool {
	return defaultEvaluator.IsScheduledNow(cfg)
}

// IsScheduledNow reports whether now is inside cfg's schedule.
func (e *Evaluator) IsScheduledNow(cfg RepoConfig) bool {
	return e.Evaluate(cfg).Allowed
}

// Evaluate decides whether now is inside cfg's schedule. It never panics;
// entries are OR-ed and invalid input yields FailOpen.
func (e *Evaluator) Evaluate(cfg RepoConfig) (d Decision) {
	entries := cfg.Schedule.Normalize()
	log := e.logger.With().
		Strs("schedule", entries).
		Str("timezone", cfg.Timezone).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("panic", fmt.Sprint(r)).Msg("schedule evaluation failed, allowing updates")
			d = Decision{Allowed: FailOpen, Reason: ReasonInternal, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if entries.IsAnyTime() {
		log.Debug().Msg("no schedule defined")
		return Decision{Allowed: true, Reason: ReasonAnyTime}
	}

	parsed, err := parseAll(entries)
	if err != nil {
		log.Warn().Err(err).Msg("invalid schedule, allowing updates")
		return Decision{Allowed: FailOpen, Reason: ReasonInvalidSchedule, Err: err}
	}

	now := e.clock.Now()
	if cfg.Timezone != "" {
		loc, err := LoadTimezone(cfg.Timezone)
		if err != nil {
			log.Warn().Err(err).Msg("invalid timezone, allowing updates")
			return Decision{Allowed: FailOpen, Reason: ReasonInvalidTimezone, Err: err}
		}
		now = now.In(loc)
	} else if e.location != nil {
		now = now.In(e.location)
	}
	log.Debug().Time("now", now).Int("entries", len(parsed)).Msg("checking schedule")

	for _, p := range parsed {
		if p.Kind == KindCron {
			logCron(log, p)
		}
		if p.Matches(now) {
			log.Debug().Str("entry", p.Source).Stringer("kind", p.Kind).Msg("matches schedule")
			return Decision{Allowed: true, Reason: ReasonMatched, Entry: p.Source, Now: now}
		}
	}

	log.Debug().Time("now", now).Msg("not scheduled")
	return Decision{Allowed: false, Reason: ReasonUnmatched, Now: now}
}

// logCron logs a cron entry with an English description when debug logging
// is on. A description failure is logged without one.
func logCron(log zerolog.Logger, p *Parsed) {
	ev := log.Debug()
	if !ev.Enabled() {
		return
	}
	ev = ev.Str("entry", p.Source)
	if desc, err := cronx.Describe(p.Massaged); err == nil {
		ev = ev.Str("description", desc)
	}
	ev.Msg("checking cron schedule")
}
