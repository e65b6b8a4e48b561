package checks

import (
	"context"
	"fmt"

	"github.com/hovergrid/preflight/pkg/backoff"
	"github.com/hovergrid/preflight/pkg/config"
	"github.com/hovergrid/preflight/pkg/db"
	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"github.com/hovergrid/preflight/pkg/redis"
	"github.com/hovergrid/preflight/pkg/sentry"
)

// RestPinger is the REST surface the connection suite needs.
type RestPinger interface {
	Ping(ctx context.Context, table string) error
}

// ConnectionDeps carries the clients the connection suite probes. A client
// may be nil with its construction error alongside; the suite then reports
// the construction failure as the check failure. Both REST roles are pinged:
// a broken anon key must surface here, not first in the products suite.
// Redis left nil with no error means "not configured" and skips.
type ConnectionDeps struct {
	Cfg *config.Config

	DB    db.Pinger
	DBErr error

	AnonRest    RestPinger
	AnonRestErr error

	ServiceRest    RestPinger
	ServiceRestErr error

	Redis    redis.Pinger
	RedisErr error

	Reporter *sentry.Reporter
}

// ConnectionSuite verifies every configured dependency answers.
func ConnectionSuite(deps ConnectionDeps) Suite {
	cfg := deps.Cfg

	return Suite{
		Name: "connection",
		Checks: []Check{
			{
				Name: "config",
				Run: func(ctx context.Context) (string, error) {
					if cfg.Supabase.URL == "" {
						return "", pkgerrors.New(pkgerrors.CodeConfig, config.EnvSupabaseURL+" is not set")
					}
					if cfg.Supabase.AnonKey == "" {
						return "", pkgerrors.New(pkgerrors.CodeConfig, config.EnvSupabaseAnonKey+" is not set")
					}
					if cfg.DB.DSN == "" {
						return "", pkgerrors.New(pkgerrors.CodeConfig, "no database DSN resolved")
					}
					return "required configuration present", nil
				},
			},
			{
				Name: "db-ping",
				Run: func(ctx context.Context) (string, error) {
					if deps.DB == nil {
						return "", pkgerrors.Wrap(pkgerrors.CodeConnection, deps.DBErr, "database client unavailable")
					}
					err := backoff.Retry(ctx, cfg.Retry, func(ctx context.Context) error {
						return deps.DB.Ping(ctx)
					})
					if err != nil {
						return "", pkgerrors.Wrap(pkgerrors.CodeConnection, err, "database ping failed")
					}
					return "database reachable", nil
				},
			},
			restPingCheck("rest-ping-anon", cfg, deps.AnonRest, deps.AnonRestErr),
			restPingCheck("rest-ping-service", cfg, deps.ServiceRest, deps.ServiceRestErr),
			{
				Name: "redis-ping",
				Skip: func() (bool, string) {
					if !cfg.Redis.Enabled() {
						return true, config.EnvRedisURL + " not set"
					}
					return false, ""
				},
				Run: func(ctx context.Context) (string, error) {
					if deps.Redis == nil {
						return "", pkgerrors.Wrap(pkgerrors.CodeConnection, deps.RedisErr, "redis client unavailable")
					}
					if err := deps.Redis.Ping(ctx); err != nil {
						return "", pkgerrors.Wrap(pkgerrors.CodeConnection, err, "redis ping failed")
					}
					return "redis reachable", nil
				},
			},
			{
				Name: "sentry-dsn",
				Skip: func() (bool, string) {
					if cfg.Sentry.DSN == "" {
						return true, config.EnvSentryDSN + " not set"
					}
					return false, ""
				},
				Run: func(ctx context.Context) (string, error) {
					if !deps.Reporter.Enabled() {
						return "", pkgerrors.New(pkgerrors.CodeConfig, "sentry DSN set but reporter failed to initialize")
					}
					return "sentry reporting active", nil
				},
			},
		},
	}
}

func restPingCheck(name string, cfg *config.Config, rest RestPinger, buildErr error) Check {
	return Check{
		Name: name,
		Run: func(ctx context.Context) (string, error) {
			if rest == nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeConnection, buildErr, "postgrest client unavailable")
			}
			if err := rest.Ping(ctx, cfg.Test.Table); err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeConnection, err, "postgrest ping failed")
			}
			return fmt.Sprintf("postgrest answered for table %s", cfg.Test.Table), nil
		},
	}
}
