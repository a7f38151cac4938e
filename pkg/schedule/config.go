package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AnyTime is the schedule phrase that disables the gate.
const AnyTime = "at any time"

// Entries is a schedule as it appears in repository configuration. In JSON
// it may be null, a single string or a list of strings.
type Entries []string

// UnmarshalJSON accepts null, a string or an array of strings.
func (e *Entries) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*e = Entries{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("schedule must be a string or a list of strings: %w", err)
	}
	*e = list
	return nil
}

// Normalize returns the entries trimmed, with blank entries removed.
func (e Entries) Normalize() Entries {
	out := make(Entries, 0, len(e))
	for _, entry := range e {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// IsAnyTime reports whether the entries leave the gate permanently open:
// no entries at all, or a leading "at any time".
func (e Entries) IsAnyTime() bool {
	e = e.Normalize()
	return len(e) == 0 || strings.EqualFold(e[0], AnyTime)
}

// RepoConfig is the part of a repository's configuration the gate reads.
type RepoConfig struct {
	Schedule Entries `json:"schedule,omitempty"`
	Timezone string  `json:"timezone,omitempty"`
}
