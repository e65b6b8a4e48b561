package config

// Environment variable names shared with scripts, CI, and tests.
const (
	EnvAppEnv       = "PREFLIGHT_APP_ENV"
	EnvLogLevel     = "PREFLIGHT_LOG_LEVEL"
	EnvLogWarnStack = "PREFLIGHT_LOG_WARN_STACK"

	EnvSupabaseURL        = "SUPABASE_URL"
	EnvSupabaseAnonKey    = "SUPABASE_ANON_KEY"
	EnvSupabaseServiceKey = "SUPABASE_SERVICE_ROLE_KEY"

	EnvDatabaseURL = "DATABASE_URL"
	EnvDBHost      = "SUPABASE_DB_HOST"
	EnvDBPort      = "SUPABASE_DB_PORT"
	EnvDBUser      = "SUPABASE_DB_USER"
	EnvDBPassword  = "SUPABASE_DB_PASSWORD"
	EnvDBName      = "SUPABASE_DB_NAME"
	EnvDBSSLMode   = "SUPABASE_DB_SSLMODE"

	EnvRedisURL = "PREFLIGHT_REDIS_URL"

	EnvSentryDSN         = "SENTRY_DSN"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"

	EnvRetryMax       = "PREFLIGHT_RETRY_MAX"
	EnvRetryBaseDelay = "PREFLIGHT_RETRY_BASE_DELAY"

	EnvParallelTasks = "PREFLIGHT_PARALLEL_TASKS"

	EnvTestSchema = "SUPABASE_TEST_SCHEMA"
	EnvTestTable  = "SUPABASE_TEST_TABLE"
	EnvTestPrefix = "SUPABASE_TEST_PREFIX"
)
