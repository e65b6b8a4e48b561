package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hovergrid/preflight/pkg/config"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace = "preflight"
	lockPrefix   = "run_lock"
)

// ErrLockHeld is returned when another run already holds the requested lock.
var ErrLockHeld = errors.New("run lock already held")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps the redis operations the toolkit needs: a ping for the
// connection suite and a SetNX run lock so two concurrent products-suite
// runs don't interleave their TEST_ row cleanups.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// New bootstraps a Redis client from the URL and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis url is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{store: raw, raw: raw}, nil
}

// AcquireRunLock takes the named lock for ttl, storing holder for debugging.
func (c *Client) AcquireRunLock(ctx context.Context, name, holder string, ttl time.Duration) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	ok, err := c.store.SetNX(ctx, c.RunLockKey(name), holder, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

// ReleaseRunLock drops the named lock. Releasing a lock that expired or was
// never taken is not an error.
func (c *Client) ReleaseRunLock(ctx context.Context, name string) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Del(ctx, c.RunLockKey(name)).Err()
}

// RunLockHolder returns who holds the named lock, or "" when free.
func (c *Client) RunLockHolder(ctx context.Context, name string) (string, error) {
	if c.store == nil {
		return "", errors.New("redis client not initialized")
	}
	holder, err := c.store.Get(ctx, c.RunLockKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return holder, err
}

// RunLockKey returns the namespaced key for a run lock.
func (c *Client) RunLockKey(name string) string {
	return buildKey(lockPrefix, name)
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}
