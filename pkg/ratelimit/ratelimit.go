// Package ratelimit implements per-key admission control, counting in redis
// when it is available and in process memory otherwise.
package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	// Packages
	aitoolkit "github.com/ueberdosis/go-aitoolkit"
	errgroup "golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Limiter admits requests per key. Redis is consulted first; on any redis
// failure the in-process store decides, so infrastructure failure never
// denies a request. Each redis call is bounded by a timeout, and repeated
// failures suspend redis for a backoff period.
type Limiter struct {
	sync.Mutex
	redis     *Redis
	redisURL  string
	memory    *Memory
	interval  time.Duration
	timeout   time.Duration
	backoff   time.Duration
	failures  int
	suspended time.Time
	now       func() time.Time
	logger    *slog.Logger
}

// Opt is a functional option for a limiter
type Opt func(*Limiter) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultLimit         = 15
	DefaultWindow        = 60 * time.Second
	DefaultPruneInterval = time.Minute
	DefaultRedisTimeout  = 200 * time.Millisecond
	DefaultRedisBackoff  = 30 * time.Second
	DefaultPingTimeout   = 5 * time.Second

	// Consecutive redis failures which suspend redis
	maxRedisFailures = 3
)

var _ aitoolkit.Limiter = (*Limiter)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a limiter. Without a redis option the in-process store is
// the only store.
func New(opts ...Opt) (*Limiter, error) {
	l := &Limiter{
		interval: DefaultPruneInterval,
		timeout:  DefaultRedisTimeout,
		backoff:  DefaultRedisBackoff,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	// Dial after all options are applied, so failures reach the logger
	if l.redis == nil && l.redisURL != "" {
		if store, err := DialRedis(l.redisURL); err != nil {
			l.logger.Warn("redis unavailable, using in-process rate limits", "error", err)
		} else {
			l.redis = store
		}
	}

	l.memory = NewMemory(l.now)
	return l, nil
}

// WithRedis counts in the redis server at url. A url which cannot be
// parsed is logged and the in-process store is used instead.
func WithRedis(url string) Opt {
	return func(l *Limiter) error {
		l.redisURL = url
		return nil
	}
}

// WithRedisStore counts in an existing redis store
func WithRedisStore(store *Redis) Opt {
	return func(l *Limiter) error {
		if store == nil {
			return aitoolkit.ErrBadParameter.With("redis store is required")
		}
		l.redis = store
		return nil
	}
}

// WithPruneInterval sets how often the in-process store is pruned
func WithPruneInterval(interval time.Duration) Opt {
	return func(l *Limiter) error {
		if interval <= 0 {
			return aitoolkit.ErrBadParameter.Withf("invalid prune interval %v", interval)
		}
		l.interval = interval
		return nil
	}
}

// WithRedisTimeout bounds each redis call
func WithRedisTimeout(timeout time.Duration) Opt {
	return func(l *Limiter) error {
		if timeout <= 0 {
			return aitoolkit.ErrBadParameter.Withf("invalid redis timeout %v", timeout)
		}
		l.timeout = timeout
		return nil
	}
}

// WithRedisBackoff sets how long redis is skipped after repeated failures
func WithRedisBackoff(backoff time.Duration) Opt {
	return func(l *Limiter) error {
		if backoff <= 0 {
			return aitoolkit.ErrBadParameter.Withf("invalid redis backoff %v", backoff)
		}
		l.backoff = backoff
		return nil
	}
}

// WithClock sets the time source of the in-process store and of the
// redis backoff
func WithClock(now func() time.Time) Opt {
	return func(l *Limiter) error {
		l.now = now
		return nil
	}
}

// WithLogger sets the logger for store failures
func WithLogger(logger *slog.Logger) Opt {
	return func(l *Limiter) error {
		if logger == nil {
			return aitoolkit.ErrBadParameter.With("logger is required")
		}
		l.logger = logger
		return nil
	}
}

// Close releases the redis connections
func (l *Limiter) Close() error {
	if l.redis != nil {
		return l.redis.Close()
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Admit increments the count for key and returns false when it exceeds
// limit within the window
func (l *Limiter) Admit(ctx context.Context, key string, limit int, window time.Duration) bool {
	if limit <= 0 || window <= 0 {
		return true
	}
	if store := l.store(); store != nil {
		allowed, err := l.admitRedis(ctx, store, key, limit, window)
		if err == nil {
			l.succeeded()
			return allowed
		}
		if ctx.Err() == nil {
			l.failed(ctx, err)
		}
	}
	return l.memory.Admit(ctx, key, limit, window)
}

// Redis returns true if a redis store is configured
func (l *Limiter) Redis() bool {
	return l.redis != nil
}

// Available returns true if a redis store is configured and not suspended
func (l *Limiter) Available() bool {
	return l.store() != nil
}

// Run prunes the in-process store until the context is cancelled. When a
// redis store is configured it is checked at startup, and a failure
// suspends it.
func (l *Limiter) Run(ctx context.Context) error {
	var group errgroup.Group
	if l.redis != nil {
		group.Go(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
			defer cancel()
			if err := l.redis.Ping(pingCtx); err != nil && ctx.Err() == nil {
				l.suspend()
				l.logger.WarnContext(ctx, "redis ping failed, falling back to in-process rate limits", "error", err, "retry", l.backoff)
			}
			return nil
		})
	}
	group.Go(func() error {
		return l.memory.Run(ctx, l.interval)
	})
	return group.Wait()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (l *Limiter) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

// store returns the redis store, or nil when there is none or it is
// suspended
func (l *Limiter) store() *Redis {
	l.Lock()
	defer l.Unlock()
	if l.redis == nil || l.clock().Before(l.suspended) {
		return nil
	}
	return l.redis
}

// admitRedis returns when the store answers or the timeout expires,
// whichever is first. A client which ignores the context cannot hold the
// caller.
func (l *Limiter) admitRedis(ctx context.Context, store *Redis, key string, limit int, window time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	type result struct {
		allowed bool
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		allowed, err := store.Admit(ctx, key, limit, window)
		ch <- result{allowed, err}
	}()

	select {
	case r := <-ch:
		return r.allowed, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (l *Limiter) succeeded() {
	l.Lock()
	defer l.Unlock()
	l.failures = 0
}

func (l *Limiter) failed(ctx context.Context, err error) {
	l.Lock()
	l.failures++
	tripped := l.failures >= maxRedisFailures
	if tripped {
		l.failures = 0
		l.suspended = l.clock().Add(l.backoff)
	}
	l.Unlock()

	if tripped {
		l.logger.WarnContext(ctx, "redis suspended after repeated errors", "error", err, "retry", l.backoff)
	} else {
		l.logger.WarnContext(ctx, "redis rate limit error", "error", err)
	}
}

func (l *Limiter) suspend() {
	l.Lock()
	defer l.Unlock()
	l.failures = 0
	l.suspended = l.clock().Add(l.backoff)
}
