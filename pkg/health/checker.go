package health

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckerConfig tunes dependency probes
type CheckerConfig struct {
	Timeout time.Duration
}

// DefaultCheckerConfig returns the default probe configuration
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Timeout: 2 * time.Second}
}

// DatabaseChecker returns a health check function for PostgreSQL database
func DatabaseChecker(db *sql.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("database connection is nil")
		}
		ctx, cancel := context.WithTimeout(ctx, DefaultCheckerConfig().Timeout)
		defer cancel()
		return db.PingContext(ctx)
	}
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis client is nil")
		}
		ctx, cancel := context.WithTimeout(ctx, DefaultCheckerConfig().Timeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// PingChecker adapts any dependency exposing Ping(ctx) error
func PingChecker(p interface{ Ping(ctx context.Context) error }) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, DefaultCheckerConfig().Timeout)
		defer cancel()
		return p.Ping(ctx)
	}
}
