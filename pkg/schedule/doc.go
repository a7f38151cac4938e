// Package schedule decides whether a repository's update schedule allows work
// to happen now.
//
// A schedule is a list of entries; each entry is either a natural-language
// phrase ("after 10pm every weekday", "every 3 months on the first day of the
// month") or an extended cron expression ("* 0-5 1-7,15-22 * 4"). Entries are
// massaged, classified by shape, and parsed into a Parsed value that
// dispatches to the matching grammar.
//
// Validation and evaluation treat bad input differently:
//
//	Validate / HasValidSchedule / HasValidTimezone   reject it
//	Evaluator.IsScheduledNow                          returns FailOpen
//
// Basic usage:
//
//	cfg := schedule.RepoConfig{
//		Schedule: schedule.Entries{"after 10pm and before 5am every weekday"},
//		Timezone: "Europe/Berlin",
//	}
//	if schedule.IsScheduledNow(cfg) {
//		// create or update branches
//	}
//
// With a fixed clock and logging:
//
//	logger := zerolog.New(os.Stderr)
//	gate := schedule.NewWithConfig(schedule.Config{Clock: clock, Logger: &logger})
//	decision := gate.Evaluate(cfg)
//
// An Evaluator keeps no state between calls and is safe for concurrent use.
package schedule
