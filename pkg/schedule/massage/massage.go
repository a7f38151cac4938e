// Package massage rewrites common natural-language schedule idioms into the
// canonical phrasing the text grammar parses. Massage is idempotent and
// leaves cron expressions untouched apart from whitespace.
package massage

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// aliases replace an entire schedule string.
var aliases = map[string]string{
	"every month": "before 05:00 on the 1st day of the month",
	"monthly":     "before 05:00 on the 1st day of the month",
}

var (
	reShortHour    = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s?(am|pm)\b`)
	reOrdinalDay   = regexp.MustCompile(`(?i)\bthe (first|second|third|fourth|fifth) day\b`)
	reEveryWeekday = regexp.MustCompile(`(?i)\b(?:on )?every weekday\b`)
	reEveryWeekend = regexp.MustCompile(`(?i)\b(?:on )?every weekend\b`)
)

var ordinalWords = map[string]string{
	"first":  "1st",
	"second": "2nd",
	"third":  "3rd",
	"fourth": "4th",
	"fifth":  "5th",
}

// Massage returns the canonical form of a schedule string.
func Massage(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if alias, ok := aliases[strings.ToLower(s)]; ok {
		return alias
	}

	s = reShortHour.ReplaceAllStringFunc(s, expandShortHour)
	s = reOrdinalDay.ReplaceAllStringFunc(s, func(m string) string {
		word := reOrdinalDay.FindStringSubmatch(m)[1]
		return "the " + ordinalWords[strings.ToLower(word)] + " day"
	})
	s = reEveryWeekday.ReplaceAllString(s, "on monday through friday")
	s = reEveryWeekend.ReplaceAllString(s, "on saturday and sunday")
	return s
}

// expandShortHour turns "5am", "5:30pm" or "11 pm" into 24-hour "HH:MM".
// Out-of-range hours are left alone for the grammar to reject.
func expandShortHour(m string) string {
	parts := reShortHour.FindStringSubmatch(m)
	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 1 || hour > 12 {
		return m
	}
	minute := 0
	if parts[2] != "" {
		minute, _ = strconv.Atoi(parts[2])
		if minute > 59 {
			return m
		}
	}
	hour %= 12
	if strings.EqualFold(parts[3], "pm") {
		hour += 12
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
