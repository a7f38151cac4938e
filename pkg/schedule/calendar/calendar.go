// Package calendar holds the wall-clock arithmetic shared by the cron and
// natural-language grammars. Every function reads the components of t in
// t's own location; callers localize before calling.
package calendar

import "time"

// EpochMonthIndex is the month index of January 1970. Every-N-months rules
// count whole months from this anchor, so the phase of a rule depends only on
// N and never on when the rule was written.
const EpochMonthIndex = 1970 * 12

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	// day 0 of the following month normalizes to the last day of this one
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLastDayOfMonth reports whether t falls on the final day of its month.
func IsLastDayOfMonth(t time.Time) bool {
	return t.Day() == DaysIn(t)
}

// IsLastWeekdayOfMonth reports whether t is the final occurrence of its
// weekday in the month.
func IsLastWeekdayOfMonth(t time.Time) bool {
	return t.Day()+7 > DaysIn(t)
}

// WeekdayInstance returns which occurrence of its weekday t is within the
// month, starting at 1 for days 1-7.
func WeekdayInstance(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

// MinuteOfDay returns minutes elapsed since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// MonthIndex returns year*12 + zero-based month.
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// InMonthInterval reports whether t's month is a multiple of every months
// away from EpochMonthIndex.
func InMonthInterval(t time.Time, every int) bool {
	if every <= 1 {
		return true
	}
	return mod(MonthIndex(t)-EpochMonthIndex, every) == 0
}

// WeekdayOccurrence returns how many times t's weekday has occurred in the
// year up to and including t. The first occurrence on or after January 1 is 1.
func WeekdayOccurrence(t time.Time) int {
	return (t.YearDay()-1)/7 + 1
}

// InWeekInterval reports whether t's weekday occurrence of the year lands on
// the every-weeks cadence that starts with the first occurrence.
func InWeekInterval(t time.Time, every int) bool {
	if every <= 1 {
		return true
	}
	return (WeekdayOccurrence(t)-1)%every == 0
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
