// Package redisstore keeps repository schedule configuration in Redis so a
// fleet of workers can share one copy. Each repository is a hash with the
// fields "schedule" (a JSON array of entries) and "timezone".
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	gferrors "github.com/vnykmshr/schedgate/pkg/common/errors"
	"github.com/vnykmshr/schedgate/pkg/schedule"
)

const (
	fieldSchedule = "schedule"
	fieldTimezone = "timezone"
)

// Config holds configuration for a Store.
type Config struct {
	// Redis client used for all operations
	Redis redis.UniversalClient

	// Prefix is prepended to every repository key (defaults to "schedgate:repo")
	Prefix string

	// RedisTimeout is the timeout for Redis operations (defaults to 500ms)
	RedisTimeout time.Duration

	// KeyTTL expires saved configuration. Zero keeps it forever.
	KeyTTL time.Duration
}

// DefaultConfig returns a default store configuration without a client.
func DefaultConfig() Config {
	return Config{
		Prefix:       "schedgate:repo",
		RedisTimeout: 500 * time.Millisecond,
	}
}

// Store loads and saves schedule.RepoConfig values.
type Store struct {
	config Config
}

// New creates a Store. The Redis client is required.
func New(config Config) (*Store, error) {
	if config.Redis == nil {
		return nil, gferrors.NewValidationError("redisstore", "redis", nil, "redis client is required")
	}
	defaults := DefaultConfig()
	if config.Prefix == "" {
		config.Prefix = defaults.Prefix
	}
	if config.RedisTimeout <= 0 {
		config.RedisTimeout = defaults.RedisTimeout
	}
	if config.KeyTTL < 0 {
		return nil, gferrors.NewValidationError("redisstore", "key_ttl", config.KeyTTL, "must not be negative")
	}
	return &Store{config: config}, nil
}

// Key returns the Redis key holding repo's configuration.
func (s *Store) Key(repo string) string {
	return s.config.Prefix + ":" + repo
}

// Load returns repo's configuration, or an error wrapping ErrNotFound when
// nothing is stored.
func (s *Store) Load(ctx context.Context, repo string) (*schedule.RepoConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RedisTimeout)
	defer cancel()

	fields, err := s.config.Redis.HGetAll(ctx, s.Key(repo)).Result()
	if err != nil {
		return nil, gferrors.NewOperationError("redisstore", "load", err).WithContext(repo)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: repository %q", gferrors.ErrNotFound, repo)
	}

	cfg := &schedule.RepoConfig{Timezone: fields[fieldTimezone]}
	if raw, ok := fields[fieldSchedule]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.Schedule); err != nil {
			return nil, gferrors.NewOperationError("redisstore", "load", err).WithContext(repo)
		}
	}
	cfg.Schedule = cfg.Schedule.Normalize()
	return cfg, nil
}

// Save stores cfg for repo after checking that its schedule and timezone are
// valid, replacing whatever was there.
func (s *Store) Save(ctx context.Context, repo string, cfg schedule.RepoConfig) error {
	if strings.TrimSpace(repo) == "" {
		return gferrors.NewValidationError("redisstore", "repo", repo, "must not be empty")
	}
	if err := schedule.Validate(cfg.Schedule); err != nil {
		return err
	}
	if cfg.Timezone != "" {
		if _, err := schedule.LoadTimezone(cfg.Timezone); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(cfg.Schedule.Normalize())
	if err != nil {
		return gferrors.NewOperationError("redisstore", "save", err).WithContext(repo)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.RedisTimeout)
	defer cancel()

	key := s.Key(repo)
	pipe := s.config.Redis.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		fieldSchedule: string(raw),
		fieldTimezone: cfg.Timezone,
	})
	if s.config.KeyTTL > 0 {
		pipe.Expire(ctx, key, s.config.KeyTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return gferrors.NewOperationError("redisstore", "save", err).WithContext(repo)
	}
	return nil
}

// Delete removes repo's configuration. Deleting a missing repository is not
// an error.
func (s *Store) Delete(ctx context.Context, repo string) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.RedisTimeout)
	defer cancel()

	if err := s.config.Redis.Del(ctx, s.Key(repo)).Err(); err != nil {
		return gferrors.NewOperationError("redisstore", "delete", err).WithContext(repo)
	}
	return nil
}

// List returns the repositories with stored configuration, in no
// particular order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RedisTimeout)
	defer cancel()

	prefix := s.config.Prefix + ":"
	var repos []string
	iter := s.config.Redis.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		repos = append(repos, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, gferrors.NewOperationError("redisstore", "list", err)
	}
	return repos, nil
}
