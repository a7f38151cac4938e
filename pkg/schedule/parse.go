package schedule

import (
	"fmt"
	"time"

	"github.com/vnykmshr/schedgate/pkg/schedule/cronx"
	"github.com/vnykmshr/schedgate/pkg/schedule/massage"
	"github.com/vnykmshr/schedgate/pkg/schedule/text"
)

// Kind tells which grammar a schedule entry was parsed with.
type Kind int

const (
	KindText Kind = iota
	KindCron
)

func (k Kind) String() string {
	switch k {
	case KindCron:
		return "cron"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Parsed is a single schedule entry after massaging and parsing. Exactly one
// of Cron and Text is set, according to Kind.
type Parsed struct {
	Kind     Kind
	Source   string
	Massaged string
	Cron     *cronx.Expression
	Text     *text.Schedule
}

// Parse massages entry and parses it with the grammar its shape selects:
// cron when it has five (or six) fields of cron characters, text otherwise.
func Parse(entry string) (*Parsed, error) {
	massaged := massage.Massage(entry)
	p := &Parsed{Source: entry, Massaged: massaged}

	if cronx.IsCandidate(massaged) {
		expr, err := cronx.Parse(massaged)
		if err != nil {
			return nil, err
		}
		p.Kind, p.Cron = KindCron, expr
		return p, nil
	}

	s, err := text.Parse(massaged)
	if err != nil {
		return nil, err
	}
	p.Kind, p.Text = KindText, s
	return p, nil
}

// Matches reports whether t, already localized, falls inside the entry.
func (p *Parsed) Matches(t time.Time) bool {
	switch p.Kind {
	case KindCron:
		return p.Cron.Matches(t)
	case KindText:
		return p.Text.Matches(t)
	}
	return false
}
