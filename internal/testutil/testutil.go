package testutil

import (
	"testing"
	"time"
)

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertEqual fails the test if got != want
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// ParseTime parses an RFC 3339 timestamp, or a "2006-01-02T15:04:05" local
// timestamp interpreted in loc, and fails the test on error.
func ParseTime(t *testing.T, value string, loc *time.Location) time.Time {
	t.Helper()
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	ts, err := time.ParseInLocation("2006-01-02T15:04:05", value, loc)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

// LoadLocation loads an IANA zone and fails the test on error.
func LoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %q: %v", name, err)
	}
	return loc
}
