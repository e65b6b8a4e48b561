package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hovergrid/preflight/internal/checks"
	product "github.com/hovergrid/preflight/internal/products"
	"github.com/hovergrid/preflight/pkg/config"
	"github.com/hovergrid/preflight/pkg/db"
	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"github.com/hovergrid/preflight/pkg/logger"
	"github.com/hovergrid/preflight/pkg/metrics"
	"github.com/hovergrid/preflight/pkg/migrate"
	"github.com/hovergrid/preflight/pkg/redis"
	"github.com/hovergrid/preflight/pkg/sentry"
	"github.com/hovergrid/preflight/pkg/supabase"
)

// set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "checks"})
	ctx := context.Background()

	_ = godotenv.Load()

	suite := flag.String("suite", "all", "suite to run: connection|products|parallel|all")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	flag.Parse()

	switch *suite {
	case "connection", "products", "parallel", "all":
	default:
		fmt.Fprintln(os.Stderr, "unknown -suite value:", *suite)
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "checks",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"suite": *suite,
	})

	reporter, err := sentry.Init(cfg.Sentry, "preflight@"+version)
	requireResource(ctx, logg, "sentry", err)
	defer reporter.Flush(2 * time.Second)

	// Clients are built up front; the connection suite reports construction
	// failures as check failures instead of aborting the whole run.
	dbClient, dbErr := db.New(ctx, cfg.DB, logg)
	if dbErr == nil {
		defer dbClient.Close()
	}

	serviceRest, serviceRestErr := supabase.New(cfg.Supabase, supabase.RoleService)
	anonRest, anonRestErr := supabase.New(cfg.Supabase, supabase.RoleAnon)

	var redisClient *redis.Client
	var redisErr error
	if cfg.Redis.Enabled() {
		redisClient, redisErr = redis.New(ctx, cfg.Redis)
		if redisErr == nil {
			defer redisClient.Close()
		}
	}

	if dbErr == nil {
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Warn(ctx, fmt.Sprintf("dev auto-migrate failed: %v", err))
		}
	}

	runner := checks.NewRunner(logg, metrics.NewCheckMetrics(prometheus.NewRegistry()), reporter)

	var results []checks.Result

	if *suite == "connection" || *suite == "all" {
		deps := checks.ConnectionDeps{
			Cfg:            cfg,
			DBErr:          dbErr,
			AnonRestErr:    anonRestErr,
			ServiceRestErr: serviceRestErr,
			RedisErr:       redisErr,
			Reporter:       reporter,
		}
		if dbErr == nil {
			deps.DB = dbClient
		}
		if anonRestErr == nil {
			deps.AnonRest = anonRest
		}
		if serviceRestErr == nil {
			deps.ServiceRest = serviceRest
		}
		if redisErr == nil && redisClient != nil {
			deps.Redis = redisClient
		}
		results = append(results, runner.RunSuite(ctx, checks.ConnectionSuite(deps))...)
	}

	if *suite == "products" || *suite == "all" {
		requireResource(ctx, logg, "database", dbErr)
		requireResource(ctx, logg, "postgrest service client", serviceRestErr)
		requireResource(ctx, logg, "postgrest anon client", anonRestErr)

		repo := product.NewRepository(dbClient.DB())
		svc, err := product.NewService(repo, cfg.Test)
		requireResource(ctx, logg, "product service", err)

		deps := checks.ProductsDeps{
			Cfg:     cfg,
			Service: svc,
			Prober:  &checks.DBProber{Repo: repo},
			Anon:    &checks.RestGateway{Client: anonRest, Table: cfg.Test.Table},
		}
		if redisErr == nil && redisClient != nil {
			deps.Lock = redisClient
		}
		results = append(results, runner.RunSuite(ctx, checks.ProductsSuite(deps))...)
	}

	if *suite == "parallel" || *suite == "all" {
		results = append(results, runner.RunSuite(ctx, checks.ParallelSuite(cfg.Parallel))...)
	}

	runner.Summarize(results)

	code := checks.ExitCode(results)
	if code == 0 {
		logg.Info(ctx, "all checks passed")
	} else {
		logg.Error(ctx, "checks failed", checks.CombinedErr(results))
	}
	reporter.Flush(2 * time.Second)
	os.Exit(code)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	meta := pkgerrors.MetadataFor(pkgerrors.Classify(err))
	logg.Error(ctx, fmt.Sprintf("resource not working: %s (%s)", resource, meta.PublicMessage), err)
	os.Exit(meta.ExitCode)
}
