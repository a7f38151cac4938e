// Package text parses and evaluates natural-language update windows such as
// "after 10pm and before 5am every weekday", "every 3 months on the first day
// of the month" or "every 2 weeks of the year before 08:00 on monday".
//
// Clauses may appear in any order and are combined with AND. A phrase without
// any clause, such as "at any time", matches every instant.
//
// Input is expected to have been through massage.Massage, although the parser
// also accepts 12-hour times directly.
package text

import (
	"time"

	"github.com/vnykmshr/schedgate/pkg/schedule/calendar"
)

// LastDay marks DayOfMonth as the final day of the month.
const LastDay = -1

// Schedule is a parsed natural-language schedule. Zero fields are unset.
type Schedule struct {
	Window TimeWindow

	// At is an exact minute of day ("at 17:00"). It narrows a schedule but
	// does not count as a time range on its own.
	At    int
	HasAt bool

	Days WeekdaySet
	// RelativeDays is set when days came from "every <weekday>" rather than
	// an explicit "on <weekday>" list.
	RelativeDays bool

	Months          MonthSet
	MonthInterval   int
	DayOfMonth      int
	WeekInterval    int
	WeekdayInstance int

	// Minutes is set for minute-granularity phrases ("every 15 mins"),
	// which the window model cannot express.
	Minutes bool

	AnyTime bool
}

// HasTimeBound reports whether the schedule restricts the time of day.
func (s *Schedule) HasTimeBound() bool {
	return !s.Window.IsZero() || s.HasAt
}

// HasConstraint reports whether any day, month or time range is present.
func (s *Schedule) HasConstraint() bool {
	return !s.Window.IsZero() ||
		s.Days != 0 ||
		s.Months != 0 ||
		s.MonthInterval > 0 ||
		s.DayOfMonth != 0 ||
		s.WeekInterval > 0 ||
		s.WeekdayInstance > 0
}

// Matches reports whether the wall-clock components of t, read in t's
// location, satisfy every clause.
func (s *Schedule) Matches(t time.Time) bool {
	minute := calendar.MinuteOfDay(t)
	if !s.Window.Contains(minute) {
		return false
	}
	if s.HasAt && minute != s.At {
		return false
	}
	if s.Days != 0 && !s.Days.Has(t.Weekday()) {
		return false
	}
	if s.Months != 0 && !s.Months.Has(t.Month()) {
		return false
	}
	if s.MonthInterval > 0 && !calendar.InMonthInterval(t, s.MonthInterval) {
		return false
	}
	switch {
	case s.DayOfMonth == LastDay:
		if !calendar.IsLastDayOfMonth(t) {
			return false
		}
	case s.DayOfMonth > 0:
		if t.Day() != s.DayOfMonth {
			return false
		}
	}
	if s.WeekInterval > 0 && !calendar.InWeekInterval(t, s.WeekInterval) {
		return false
	}
	if s.WeekdayInstance > 0 && calendar.WeekdayInstance(t) != s.WeekdayInstance {
		return false
	}
	return true
}
