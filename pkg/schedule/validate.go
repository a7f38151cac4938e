package schedule

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone lookups must not depend on the host's zoneinfo

	gferrors "github.com/vnykmshr/schedgate/pkg/common/errors"
	"github.com/vnykmshr/schedgate/pkg/common/validation"
)

// ValidationReason classifies why a schedule entry was rejected.
type ValidationReason string

const (
	// ReasonParse means neither grammar accepts the entry.
	ReasonParse ValidationReason = "parse"

	// ReasonMinutes means a phrase asks for minute granularity.
	ReasonMinutes ValidationReason = "minutes"

	// ReasonCronMinutes means a cron entry's minute field is not "*".
	ReasonCronMinutes ValidationReason = "cron_minutes"

	// ReasonNoConstraint means the entry limits neither days nor time of day.
	ReasonNoConstraint ValidationReason = "no_constraint"

	// ReasonRelativeWeekday means "every <weekday>" was given without a time range.
	ReasonRelativeWeekday ValidationReason = "relative_weekday"
)

// InvalidScheduleError reports the first rejected entry of a schedule.
type InvalidScheduleError struct {
	Entry  string
	Reason ValidationReason
	Cause  error
}

func (e *InvalidScheduleError) Error() string {
	switch e.Reason {
	case ReasonMinutes:
		return fmt.Sprintf("Invalid schedule: %q should not specify minutes", e.Entry)
	case ReasonCronMinutes:
		return fmt.Sprintf("Invalid schedule: %q has cron syntax, but doesn't have * as minutes", e.Entry)
	case ReasonNoConstraint:
		return fmt.Sprintf("Invalid schedule: %q has no days or time range", e.Entry)
	case ReasonRelativeWeekday:
		return fmt.Sprintf("Invalid schedule: %q repeats a weekday without a time range", e.Entry)
	}
	return fmt.Sprintf("Invalid schedule: Failed to parse %q", e.Entry)
}

// Unwrap returns ErrInvalidSchedule.
func (e *InvalidScheduleError) Unwrap() error {
	return gferrors.ErrInvalidSchedule
}

// Validate checks every entry and returns an *InvalidScheduleError for the
// first one that is rejected. Absent, empty and "at any time" schedules are
// valid.
func Validate(entries Entries) error {
	_, err := parseAll(entries)
	return err
}

// HasValidSchedule reports whether every entry is valid, and otherwise a
// message naming the offending entry.
func HasValidSchedule(entries Entries) (bool, string) {
	if err := Validate(entries); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// parseAll parses and validates normalized entries. It returns nil entries
// for an always-open schedule.
func parseAll(entries Entries) ([]*Parsed, error) {
	entries = entries.Normalize()
	if entries.IsAnyTime() {
		return nil, nil
	}
	parsed := make([]*Parsed, 0, len(entries))
	for _, entry := range entries {
		p, err := validateEntry(entry)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}
	return parsed, nil
}

func validateEntry(entry string) (*Parsed, error) {
	p, err := Parse(entry)
	if err != nil {
		return nil, &InvalidScheduleError{Entry: entry, Reason: ReasonParse, Cause: err}
	}

	reject := func(reason ValidationReason) (*Parsed, error) {
		return nil, &InvalidScheduleError{Entry: entry, Reason: reason}
	}

	switch p.Kind {
	case KindCron:
		if !p.Cron.MinuteWildcard() {
			return reject(ReasonCronMinutes)
		}
		if p.Cron.Unconstrained() {
			return reject(ReasonNoConstraint)
		}
	case KindText:
		s := p.Text
		switch {
		case s.Minutes:
			return reject(ReasonMinutes)
		case s.RelativeDays && !s.HasTimeBound():
			return reject(ReasonRelativeWeekday)
		case !s.HasConstraint() && !s.AnyTime:
			return reject(ReasonNoConstraint)
		}
	}
	return p, nil
}

// LoadTimezone resolves an IANA zone name. Errors wrap ErrInvalidTimezone.
func LoadTimezone(name string) (*time.Location, error) {
	if err := validation.ValidateNotEmpty("schedule", "timezone", name); err != nil {
		return nil, fmt.Errorf("%w: %w", gferrors.ErrInvalidTimezone, err)
	}
	// "Local" is the host's zone, not an IANA name
	if name == "Local" {
		return nil, fmt.Errorf("%w: %q is not an IANA zone", gferrors.ErrInvalidTimezone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gferrors.ErrInvalidTimezone, err)
	}
	return loc, nil
}

// HasValidTimezone reports whether tz names a zone in the IANA database.
func HasValidTimezone(tz string) (bool, string) {
	if _, err := LoadTimezone(tz); err != nil {
		return false, "Invalid schedule: Unsupported timezone " + tz
	}
	return true, ""
}
