package text

import (
	"fmt"
	"strings"
	"time"
)

// TimeWindow is a [start, end) range of minutes within a day. A window whose
// start is after its end wraps past midnight. A missing bound is open.
type TimeWindow struct {
	Start    int
	End      int
	HasStart bool
	HasEnd   bool
}

// IsZero reports whether neither bound is set.
func (w TimeWindow) IsZero() bool {
	return !w.HasStart && !w.HasEnd
}

// Contains reports whether minute (minutes since midnight) lies in the window.
func (w TimeWindow) Contains(minute int) bool {
	switch {
	case w.HasStart && w.HasEnd:
		if w.Start > w.End {
			return minute >= w.Start || minute < w.End
		}
		return minute >= w.Start && minute < w.End
	case w.HasStart:
		return minute >= w.Start
	case w.HasEnd:
		return minute < w.End
	}
	return true
}

func (w TimeWindow) String() string {
	var parts []string
	if w.HasStart {
		parts = append(parts, "after "+clock(w.Start))
	}
	if w.HasEnd {
		parts = append(parts, "before "+clock(w.End))
	}
	return strings.Join(parts, " and ")
}

func clock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// WeekdaySet is a bit set of time.Weekday values.
type WeekdaySet uint8

// Add includes d in the set.
func (s *WeekdaySet) Add(d time.Weekday) { *s |= 1 << uint(d) }

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }

// MonthSet is a bit set of time.Month values.
type MonthSet uint16

// Add includes m in the set.
func (s *MonthSet) Add(m time.Month) { *s |= 1 << uint(m) }

// Has reports whether m is in the set.
func (s MonthSet) Has(m time.Month) bool { return s&(1<<uint(m)) != 0 }
