package text

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	gferrors "github.com/vnykmshr/schedgate/pkg/common/errors"
	"github.com/vnykmshr/schedgate/pkg/common/validation"
)

var (
	reClock   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)?$`)
	reOrdinal = regexp.MustCompile(`^(\d{1,2})(st|nd|rd|th)?$`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"last": LastDay,
}

const (
	weekdaysMask = WeekdaySet(1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday)
	weekendMask  = WeekdaySet(1<<time.Saturday | 1<<time.Sunday)
)

// Parse parses a natural-language schedule. Errors wrap
// errors.ErrInvalidSchedule.
func Parse(input string) (*Schedule, error) {
	toks := tokenize(input)
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty schedule", gferrors.ErrInvalidSchedule)
	}

	p := &parser{toks: toks, s: &Schedule{}}
	for !p.done() {
		if err := p.clause(); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", gferrors.ErrInvalidSchedule, input, err)
		}
	}
	return p.s, nil
}

func tokenize(input string) []string {
	input = strings.ToLower(input)
	input = strings.ReplaceAll(input, ",", " , ")
	return strings.Fields(input)
}

type parser struct {
	toks []string
	pos  int
	s    *Schedule
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() string { return p.peekAt(0) }

func (p *parser) peekAt(offset int) string {
	if p.pos+offset >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos+offset]
}

func (p *parser) next() string {
	tok := p.peek()
	if !p.done() {
		p.pos++
	}
	return tok
}

func (p *parser) expect(words ...string) error {
	for _, w := range words {
		if got := p.next(); got != w {
			if got == "" {
				return fmt.Errorf("expected %q, found end of input", w)
			}
			return fmt.Errorf("expected %q, found %q", w, got)
		}
	}
	return nil
}

func (p *parser) clause() error {
	switch tok := p.next(); tok {
	case "and", ",":
		return nil
	case "at":
		if p.peek() == "any" {
			p.s.AnyTime = true
			return p.expect("any", "time")
		}
		m, err := p.clock()
		if err != nil {
			return err
		}
		p.s.At, p.s.HasAt = m, true
	case "after":
		m, err := p.clock()
		if err != nil {
			return err
		}
		p.s.Window.Start, p.s.Window.HasStart = m, true
	case "before":
		m, err := p.clock()
		if err != nil {
			return err
		}
		p.s.Window.End, p.s.Window.HasEnd = m, true
	case "on":
		return p.on()
	case "every":
		return p.every()
	case "of":
		return p.months()
	default:
		return fmt.Errorf("unexpected %q", tok)
	}
	return nil
}

// on handles "on <days>", "on the <ord> day of the month" and
// "on the <ord> day instance".
func (p *parser) on() error {
	if p.peek() != "the" {
		return p.days()
	}
	p.next()
	n, err := p.ordinal()
	if err != nil {
		return err
	}
	if err := p.expect("day"); err != nil {
		return err
	}
	switch tok := p.next(); tok {
	case "of":
		if err := p.expect("the", "month"); err != nil {
			return err
		}
		if n != LastDay {
			if err := validation.ValidateRange("text", "day of month", n, 1, 31); err != nil {
				return err
			}
		}
		p.s.DayOfMonth = n
	case "instance":
		if err := validation.ValidateRange("text", "day instance", n, 1, 5); err != nil {
			return err
		}
		p.s.WeekdayInstance = n
	default:
		return fmt.Errorf("expected \"of the month\" or \"instance\", found %q", tok)
	}
	return nil
}

func (p *parser) every() error {
	tok := p.peek()
	if _, ok := dayGroup(tok); ok {
		if _, single := weekdays[tok]; single {
			p.s.RelativeDays = true
		}
		return p.days()
	}

	switch tok {
	case "day":
		p.next()
		return nil
	case "month":
		p.next()
		p.s.MonthInterval = 1
		return nil
	}

	n, err := strconv.Atoi(tok)
	if err != nil {
		if tok == "" {
			return fmt.Errorf("expected interval after \"every\"")
		}
		return fmt.Errorf("unexpected %q after \"every\"", tok)
	}
	p.next()
	if err := validation.ValidatePositive("text", "interval", n); err != nil {
		return err
	}

	switch unit := p.next(); unit {
	case "month", "months":
		p.s.MonthInterval = n
	case "week", "weeks":
		p.s.WeekInterval = n
		if p.peek() == "of" && p.peekAt(1) == "the" && p.peekAt(2) == "year" {
			p.pos += 3
		}
	case "min", "mins", "minute", "minutes":
		p.s.Minutes = true
	default:
		return fmt.Errorf("unsupported interval unit %q", unit)
	}
	return nil
}

// days parses a day list: names joined by "and" or ",", ranges with
// "through" or "to", and the groups weekday(s) and weekend(s).
func (p *parser) days() error {
	set, ok := dayGroup(p.peek())
	if !ok {
		if p.peek() == "" {
			return fmt.Errorf("expected a day, found end of input")
		}
		return fmt.Errorf("expected a day, found %q", p.peek())
	}
	last, single := weekdays[p.next()]
	p.s.Days |= set

	for {
		switch p.peek() {
		case "and", ",":
			more, ok := dayGroup(p.peekAt(1))
			if !ok {
				return nil
			}
			p.pos++
			last, single = weekdays[p.next()]
			p.s.Days |= more
		case "through", "to":
			end, ok := weekdays[p.peekAt(1)]
			if !ok || !single {
				return fmt.Errorf("invalid day range")
			}
			p.pos += 2
			for d := last; ; d = (d + 1) % 7 {
				p.s.Days.Add(d)
				if d == end {
					break
				}
			}
			last = end
		default:
			return nil
		}
	}
}

func (p *parser) months() error {
	first, ok := months[p.peek()]
	if !ok {
		return fmt.Errorf("expected a month, found %q", p.peek())
	}
	p.next()
	p.s.Months.Add(first)
	last := first

	for {
		switch p.peek() {
		case "and", ",":
			m, ok := months[p.peekAt(1)]
			if !ok {
				return nil
			}
			p.pos += 2
			p.s.Months.Add(m)
			last = m
		case "through", "to":
			end, ok := months[p.peekAt(1)]
			if !ok {
				return fmt.Errorf("invalid month range")
			}
			p.pos += 2
			for m := last; ; m = m%12 + 1 {
				p.s.Months.Add(m)
				if m == end {
					break
				}
			}
			last = end
		default:
			return nil
		}
	}
}

// clock parses "17:00", "5:30", "17", "5pm" or "5 pm" into minutes of day.
func (p *parser) clock() (int, error) {
	tok := p.next()
	m := reClock.FindStringSubmatch(tok)
	if m == nil {
		return 0, fmt.Errorf("invalid time %q", tok)
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	meridiem := m[3]
	if meridiem == "" && (p.peek() == "am" || p.peek() == "pm") {
		meridiem = p.next()
	}

	if minute > 59 {
		return 0, fmt.Errorf("invalid time %q", tok)
	}
	if meridiem != "" {
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("invalid time %q", tok)
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	}
	if hour == 24 && minute == 0 {
		return 24 * 60, nil
	}
	if hour > 23 {
		return 0, fmt.Errorf("invalid time %q", tok)
	}
	return hour*60 + minute, nil
}

func (p *parser) ordinal() (int, error) {
	tok := p.next()
	if n, ok := ordinalWords[tok]; ok {
		return n, nil
	}
	m := reOrdinal.FindStringSubmatch(tok)
	if m == nil {
		return 0, fmt.Errorf("invalid ordinal %q", tok)
	}
	n, _ := strconv.Atoi(m[1])
	return n, nil
}

// dayGroup resolves a single day name or a weekday/weekend group.
func dayGroup(tok string) (WeekdaySet, bool) {
	if d, ok := weekdays[tok]; ok {
		var set WeekdaySet
		set.Add(d)
		return set, true
	}
	switch tok {
	case "weekday", "weekdays":
		return weekdaysMask, true
	case "weekend", "weekends":
		return weekendMask, true
	}
	return 0, false
}
