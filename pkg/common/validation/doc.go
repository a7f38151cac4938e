// Package validation provides common validation utilities for configuration
// parameters across the schedgate library.
//
// The cron and natural-language parsers use these helpers for numeric
// operands (intervals, ordinals, weekday numbers) so that every rejected
// value carries the same ValidationError shape, and the timezone validator
// uses them for empty names.
package validation
