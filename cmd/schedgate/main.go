// schedgate checks a repository's update schedule.
//
// By default it reports whether now is inside the schedule and exits 0 when
// it is, 1 when it is not. With --validate it checks the schedule and
// timezone instead and exits 0 when both are valid, 1 otherwise. Usage and
// loading errors exit 2.
//
// The schedule comes from --schedule flags, from a Redis store (--redis-addr
// and --repo), from the configuration file named as the only argument, or
// from the first well-known configuration file in the current directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/vnykmshr/schedgate/pkg/schedule"
	"github.com/vnykmshr/schedgate/pkg/source"
	"github.com/vnykmshr/schedgate/pkg/source/redisstore"
)

const (
	exitOK       = 0
	exitNegative = 1
	exitError    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	validate  bool
	schedules []string
	timezone  string
	now       string
	redisAddr string
	redisDB   int
	repo      string
	logLevel  string
	asJSON    bool
}

// fixedClock pins evaluation to the --now instant.
type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	flagSet := pflag.NewFlagSet("schedgate", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&opts.validate, "validate", false, "validate the schedule and timezone instead of evaluating them")
	flagSet.StringArrayVarP(&opts.schedules, "schedule", "s", nil, "schedule entry (repeatable); overrides any configuration source")
	flagSet.StringVarP(&opts.timezone, "timezone", "t", "", "IANA timezone; overrides the configured one")
	flagSet.StringVar(&opts.now, "now", "", "evaluate at this RFC 3339 instant instead of the current time")
	flagSet.StringVar(&opts.redisAddr, "redis-addr", "", "load configuration from this Redis server")
	flagSet.IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")
	flagSet.StringVar(&opts.repo, "repo", "", "repository whose configuration is loaded from Redis")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	flagSet.BoolVar(&opts.asJSON, "json", false, "print the decision as JSON")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return exitOK
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return exitOK
	}

	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: invalid --log-level %q\n", opts.logLevel)
		return exitError
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	cfg, err := loadConfig(context.Background(), opts, flagSet.Args())
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	if opts.timezone != "" {
		cfg.Timezone = opts.timezone
	}

	if opts.validate {
		return validate(stdout, cfg)
	}

	config := schedule.Config{Logger: &logger}
	if opts.now != "" {
		now, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			fmt.Fprintf(stderr, "error: invalid --now: %v\n", err)
			return exitError
		}
		config.Clock = fixedClock(now)
	}

	d := schedule.NewWithConfig(config).Evaluate(*cfg)
	if opts.asJSON {
		printJSON(stdout, d)
	} else {
		printDecision(stdout, d)
	}
	if d.Allowed {
		return exitOK
	}
	return exitNegative
}

// loadConfig resolves the configuration source in order of precedence:
// flags, Redis, a named file, then a well-known file in the working
// directory.
func loadConfig(ctx context.Context, opts options, args []string) (*schedule.RepoConfig, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one configuration file, got %d", len(args))
	}
	if len(opts.schedules) > 0 {
		return &schedule.RepoConfig{Schedule: schedule.Entries(opts.schedules).Normalize()}, nil
	}

	if opts.redisAddr != "" || opts.repo != "" {
		if opts.redisAddr == "" || opts.repo == "" {
			return nil, fmt.Errorf("--redis-addr and --repo must be used together")
		}
		rdb := redis.NewClient(&redis.Options{Addr: opts.redisAddr, DB: opts.redisDB})
		defer func() { _ = rdb.Close() }()

		store, err := redisstore.New(redisstore.Config{Redis: rdb, RedisTimeout: 2 * time.Second})
		if err != nil {
			return nil, err
		}
		return store.Load(ctx, opts.repo)
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		found, err := source.FindFile(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	return source.LoadFile(path)
}

func validate(stdout io.Writer, cfg *schedule.RepoConfig) int {
	ok := true
	if valid, msg := schedule.HasValidSchedule(cfg.Schedule); !valid {
		fmt.Fprintln(stdout, msg)
		ok = false
	}
	if cfg.Timezone != "" {
		if valid, msg := schedule.HasValidTimezone(cfg.Timezone); !valid {
			fmt.Fprintln(stdout, msg)
			ok = false
		}
	}
	if !ok {
		return exitNegative
	}
	fmt.Fprintln(stdout, "valid")
	return exitOK
}

func printDecision(stdout io.Writer, d schedule.Decision) {
	switch d.Reason {
	case schedule.ReasonMatched:
		fmt.Fprintf(stdout, "scheduled: matches %q\n", d.Entry)
	case schedule.ReasonAnyTime:
		fmt.Fprintln(stdout, "scheduled: no schedule restrictions")
	case schedule.ReasonUnmatched:
		fmt.Fprintln(stdout, "not scheduled")
	default:
		fmt.Fprintf(stdout, "scheduled: %s (%v)\n", d.Reason, d.Err)
	}
}

type jsonDecision struct {
	Allowed bool       `json:"allowed"`
	Reason  string     `json:"reason"`
	Entry   string     `json:"entry,omitempty"`
	Now     *time.Time `json:"now,omitempty"`
	Error   string     `json:"error,omitempty"`
}

func printJSON(stdout io.Writer, d schedule.Decision) {
	out := jsonDecision{
		Allowed: d.Allowed,
		Reason:  string(d.Reason),
		Entry:   d.Entry,
	}
	if !d.Now.IsZero() {
		out.Now = &d.Now
	}
	if d.Err != nil {
		out.Error = d.Err.Error()
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `schedgate: check whether now is inside a repository's update schedule.

Usage:
  schedgate [flags] [config-file]

Exit status is 0 when scheduled (or valid with --validate), 1 when not,
and 2 on usage or loading errors.

Flags:
%s`, flagSet.FlagUsages())
}
