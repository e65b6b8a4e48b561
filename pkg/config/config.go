package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"github.com/kelseyhightower/envconfig"
)

// Config is built once at process start and handed to every collaborator;
// nothing else reads process environment after Load returns.
type Config struct {
	App      AppConfig
	Supabase SupabaseConfig
	DB       DBConfig
	Redis    RedisConfig
	Sentry   SentryConfig
	Retry    RetryConfig
	Parallel ParallelConfig
	Test     TestConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "parsing environment")
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PREFLIGHT_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"PREFLIGHT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PREFLIGHT_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"PREFLIGHT_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "development") || strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, "production") || strings.EqualFold(a.Env, "prod")
}

// SupabaseConfig carries the project URL and the two API keys. The anon key
// is what browser clients hold; RLS is expected to stop it from writing.
type SupabaseConfig struct {
	URL            string `envconfig:"SUPABASE_URL"`
	AnonKey        string `envconfig:"SUPABASE_ANON_KEY"`
	ServiceRoleKey string `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`
}

// RestURL returns the PostgREST base for the project.
func (s SupabaseConfig) RestURL() (string, error) {
	if s.URL == "" {
		return "", fmt.Errorf("%s is required", EnvSupabaseURL)
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", EnvSupabaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%s must be an absolute URL, got %q", EnvSupabaseURL, s.URL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/rest/v1"
	return u.String(), nil
}

type DBConfig struct {
	DSN string `envconfig:"DATABASE_URL"`

	// Fallback parts used when DATABASE_URL is not set. SUPABASE_DB_PASSWORD
	// matches the variable the Supabase CLI exports.
	Host     string `envconfig:"SUPABASE_DB_HOST"`
	Port     int    `envconfig:"SUPABASE_DB_PORT" default:"5432"`
	User     string `envconfig:"SUPABASE_DB_USER" default:"postgres"`
	Password string `envconfig:"SUPABASE_DB_PASSWORD"`
	Name     string `envconfig:"SUPABASE_DB_NAME" default:"postgres"`
	SSLMode  string `envconfig:"SUPABASE_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"PREFLIGHT_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"PREFLIGHT_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"PREFLIGHT_DB_CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"PREFLIGHT_DB_CONN_MAX_IDLE_TIME" default:"5m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PREFLIGHT_REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"PREFLIGHT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PREFLIGHT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PREFLIGHT_REDIS_WRITE_TIMEOUT" default:"5s"`
	LockTTL      time.Duration `envconfig:"PREFLIGHT_REDIS_LOCK_TTL" default:"2m"`
}

// Enabled reports whether the run lock and redis ping should be attempted at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

type SentryConfig struct {
	DSN         string  `envconfig:"SENTRY_DSN"`
	Environment string  `envconfig:"SENTRY_ENVIRONMENT"`
	SampleRate  float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"1.0"`
}

type RetryConfig struct {
	MaxRetries uint64        `envconfig:"PREFLIGHT_RETRY_MAX" default:"3"`
	BaseDelay  time.Duration `envconfig:"PREFLIGHT_RETRY_BASE_DELAY" default:"250ms"`
}

type ParallelConfig struct {
	Tasks    int           `envconfig:"PREFLIGHT_PARALLEL_TASKS" default:"5"`
	MinSleep time.Duration `envconfig:"PREFLIGHT_PARALLEL_MIN_SLEEP" default:"200ms"`
	MaxSleep time.Duration `envconfig:"PREFLIGHT_PARALLEL_MAX_SLEEP" default:"800ms"`
}

// TestConfig overrides where the products suite reads and writes.
type TestConfig struct {
	Schema     string `envconfig:"SUPABASE_TEST_SCHEMA" default:"public"`
	Table      string `envconfig:"SUPABASE_TEST_TABLE" default:"products"`
	NamePrefix string `envconfig:"SUPABASE_TEST_PREFIX" default:"TEST_"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.Host == "" {
		return pkgerrors.New(pkgerrors.CodeConfig, fmt.Sprintf("either %s or %s is required", EnvDatabaseURL, EnvDBHost))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
