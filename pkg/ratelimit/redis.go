package ratelimit

import (
	"context"
	"time"

	// Packages
	redis "github.com/redis/go-redis/v9"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Redis is a fixed window store shared between processes. The first
// increment of a key starts its window.
type Redis struct {
	client redis.UniversalClient
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const KeyPrefix = "ratelimit:"

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewRedis returns a store using an existing client
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// DialRedis parses a redis:// or rediss:// URL and returns a store. No
// connection is made until the first request. Socket reads and writes
// honour the context deadline, and commands are not retried since INCR
// is not idempotent.
func DialRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	opts.ContextTimeoutEnabled = true
	opts.MaxRetries = -1
	return NewRedis(redis.NewClient(opts)), nil
}

// Close releases the client connections
func (r *Redis) Close() error {
	return r.client.Close()
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Admit increments the count for key and returns true if the count is
// within the limit. Any error from the server is returned.
func (r *Redis) Admit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	key = KeyPrefix + key

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	// Start the window on the first increment. A key left without an
	// expiry by an earlier failure is given one too.
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	} else if ttl, err := r.client.TTL(ctx, key).Result(); err == nil && ttl < 0 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}

// Ping checks the connection
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
