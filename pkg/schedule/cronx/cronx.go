package cronx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	gferrors "github.com/vnykmshr/schedgate/pkg/common/errors"
	"github.com/vnykmshr/schedgate/pkg/common/validation"
	"github.com/vnykmshr/schedgate/pkg/schedule/calendar"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

var (
	reField       = regexp.MustCompile(`^[0-9*,\-/?L#%]+$`)
	reRange       = regexp.MustCompile(`^(\d+)-(\d+)$`)
	reLastWeekday = regexp.MustCompile(`^(\d+)L$`)
	reNthWeekday  = regexp.MustCompile(`^(\d+)#(\d+)$`)
)

type nthWeekday struct {
	weekday  time.Weekday
	instance int
}

// Expression is a parsed extended cron expression.
type Expression struct {
	source string
	spec   *cron.SpecSchedule

	minuteAny bool
	hourAny   bool
	domAny    bool
	monthAny  bool
	dowAny    bool

	domPlain       bool
	lastDayOfMonth bool

	dowPlain     bool
	lastWeekdays []time.Weekday
	nthWeekdays  []nthWeekday

	monthInterval int
	monthLastDay  bool
}

// IsCandidate reports whether expr has the shape of a cron expression: five
// fields (six with a seconds field) made only of cron characters. It does not
// check field values.
func IsCandidate(expr string) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 && len(fields) != 6 {
		return false
	}
	for _, f := range fields {
		if !reField.MatchString(f) {
			return false
		}
	}
	return true
}

// Parse parses an extended cron expression.
func Parse(expr string) (*Expression, error) {
	fields := strings.Fields(expr)
	if len(fields) == 6 {
		if fields[0] != "*" {
			return nil, fmt.Errorf("%w: %q: seconds field must be *", gferrors.ErrInvalidSchedule, expr)
		}
		fields = fields[1:]
	}
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w: %q: expected 5 fields, found %d", gferrors.ErrInvalidSchedule, expr, len(fields))
	}

	e := &Expression{
		source:    expr,
		minuteAny: fields[0] == "*",
		hourAny:   isWildcard(fields[1]),
		domAny:    isWildcard(fields[2]),
		monthAny:  isWildcard(fields[3]),
		dowAny:    isWildcard(fields[4]),
	}

	hour := unwrapHours(fields[1])
	dom := e.parseDayOfMonth(fields[2])
	month, err := e.parseMonth(fields[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", gferrors.ErrInvalidSchedule, expr, err)
	}
	dow, err := e.parseDayOfWeek(fields[4])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", gferrors.ErrInvalidSchedule, expr, err)
	}

	plain := strings.Join([]string{fields[0], hour, dom, month, dow}, " ")
	sched, err := parser.Parse(plain)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", gferrors.ErrInvalidSchedule, expr, err)
	}
	spec, ok := sched.(*cron.SpecSchedule)
	if !ok {
		return nil, fmt.Errorf("%w: %q: unsupported cron form", gferrors.ErrInvalidSchedule, expr)
	}
	e.spec = spec
	return e, nil
}

// String returns the expression as written.
func (e *Expression) String() string { return e.source }

// MinuteWildcard reports whether the minute field is "*".
func (e *Expression) MinuteWildcard() bool { return e.minuteAny }

// Unconstrained reports whether hour, day-of-month, month and day-of-week are
// all wildcards, leaving the expression without any day or time range.
func (e *Expression) Unconstrained() bool {
	return e.hourAny && e.domAny && e.monthAny && e.dowAny
}

// Matches reports whether the wall-clock components of t, read in t's
// location, satisfy every field.
func (e *Expression) Matches(t time.Time) bool {
	if !e.minuteAny {
		return false
	}
	return has(e.spec.Hour, t.Hour()) &&
		e.monthMatches(t) &&
		e.domMatches(t) &&
		e.dowMatches(t)
}

func (e *Expression) monthMatches(t time.Time) bool {
	if e.monthInterval > 0 {
		return calendar.InMonthInterval(t, e.monthInterval)
	}
	if e.monthLastDay && !calendar.IsLastDayOfMonth(t) {
		return false
	}
	return has(e.spec.Month, int(t.Month()))
}

func (e *Expression) domMatches(t time.Time) bool {
	if e.domPlain && has(e.spec.Dom, t.Day()) {
		return true
	}
	return e.lastDayOfMonth && calendar.IsLastDayOfMonth(t)
}

func (e *Expression) dowMatches(t time.Time) bool {
	wd := t.Weekday()
	if e.dowPlain && has(e.spec.Dow, int(wd)) {
		return true
	}
	for _, last := range e.lastWeekdays {
		if wd == last && calendar.IsLastWeekdayOfMonth(t) {
			return true
		}
	}
	for _, nth := range e.nthWeekdays {
		if wd == nth.weekday && calendar.WeekdayInstance(t) == nth.instance {
			return true
		}
	}
	return false
}

func (e *Expression) parseDayOfMonth(field string) string {
	var plain []string
	for _, item := range strings.Split(field, ",") {
		if item == "L" {
			e.lastDayOfMonth = true
			continue
		}
		plain = append(plain, item)
	}
	e.domPlain = len(plain) > 0
	if !e.domPlain {
		return "*"
	}
	return strings.Join(plain, ",")
}

func (e *Expression) parseMonth(field string) (string, error) {
	if strings.HasPrefix(field, "%") {
		n, err := strconv.Atoi(field[1:])
		if err != nil {
			return "", fmt.Errorf("month interval %q: %w", field, err)
		}
		if err := validation.ValidatePositive("cronx", "month interval", n); err != nil {
			return "", err
		}
		e.monthInterval = n
		return "*", nil
	}

	// L in the month field narrows the listed months to their last day
	var plain []string
	for _, item := range strings.Split(field, ",") {
		if item == "L" {
			e.monthLastDay = true
			continue
		}
		plain = append(plain, item)
	}
	if len(plain) == 0 {
		return "*", nil
	}
	return strings.Join(plain, ","), nil
}

func (e *Expression) parseDayOfWeek(field string) (string, error) {
	var plain []string
	for _, item := range strings.Split(field, ",") {
		if m := reLastWeekday.FindStringSubmatch(item); m != nil {
			wd, err := weekday(m[1])
			if err != nil {
				return "", err
			}
			e.lastWeekdays = append(e.lastWeekdays, wd)
			continue
		}
		if m := reNthWeekday.FindStringSubmatch(item); m != nil {
			wd, err := weekday(m[1])
			if err != nil {
				return "", err
			}
			k, _ := strconv.Atoi(m[2])
			if err := validation.ValidateRange("cronx", "weekday instance", k, 1, 5); err != nil {
				return "", err
			}
			e.nthWeekdays = append(e.nthWeekdays, nthWeekday{weekday: wd, instance: k})
			continue
		}
		plain = append(plain, sundayAsZero(item))
	}
	e.dowPlain = len(plain) > 0
	if !e.dowPlain {
		return "*", nil
	}
	return strings.Join(plain, ","), nil
}

func weekday(s string) (time.Weekday, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if err := validation.ValidateRange("cronx", "weekday", n, 0, 7); err != nil {
		return 0, err
	}
	return time.Weekday(n % 7), nil
}

// sundayAsZero rewrites the Sunday alias 7 into the 0 robfig/cron expects.
func sundayAsZero(item string) string {
	if item == "7" {
		return "0"
	}
	m := reRange.FindStringSubmatch(item)
	if m == nil || m[2] != "7" {
		return item
	}
	switch m[1] {
	case "7":
		return "0"
	case "0":
		return "0-6"
	case "6":
		return "6,0"
	}
	return m[1] + "-6,0"
}

// unwrapHours splits ranges such as 22-3 into 22-23,0-3.
func unwrapHours(field string) string {
	items := strings.Split(field, ",")
	for i, item := range items {
		m := reRange.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if start > end && start <= 23 {
			items[i] = fmt.Sprintf("%d-23,0-%d", start, end)
		}
	}
	return strings.Join(items, ",")
}

func isWildcard(field string) bool {
	return field == "*" || field == "?"
}

func has(bits uint64, v int) bool {
	return bits&(1<<uint(v)) != 0
}
