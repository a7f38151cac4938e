/*
Package schedgate decides whether a repository's dependency updates may run
now, given the repository's schedule and timezone.

Schedules (pkg/schedule):
  - natural language: "after 10pm and before 5am every weekday", "on the first day of the month"
  - extended cron: "* 22-3 * * 1-5", "* * L * *", "* * * * 1#1", "* * * %3 *"
  - validation with user-facing messages, evaluation that fails open

Configuration (pkg/source):
  - JSON, JSON with comments, and YAML repository files
  - redisstore: shared configuration in Redis

Observability (pkg/metrics):
  - Prometheus counters for decisions, fail-open outcomes and validation failures

Example usage:

	import "github.com/vnykmshr/schedgate/pkg/schedule"

	cfg := schedule.RepoConfig{
		Schedule: schedule.Entries{"after 10pm and before 5am"},
		Timezone: "Europe/Berlin",
	}
	if ok, msg := schedule.HasValidSchedule(cfg.Schedule); !ok {
		log.Println(msg)
	}
	if schedule.IsScheduledNow(cfg) {
		openPullRequests()
	}
*/
package schedgate
