package config

// Environment variable names, shared by Load and the test harness.
const (
	EnvAppEnv          = "MEDIBILL_APP_ENV"
	EnvPort            = "MEDIBILL_APP_PORT"
	EnvUpstreamBaseURL = "MEDIBILL_UPSTREAM_BASE_URL"
	EnvRedisURL        = "MEDIBILL_REDIS_URL"
	EnvJWTSecret       = "MEDIBILL_JWT_SECRET"
	EnvJWTIssuer       = "MEDIBILL_JWT_ISSUER"
	EnvCounterCount    = "MEDIBILL_COUNTER_COUNT"
	EnvDebounceDelay   = "MEDIBILL_SEARCH_DEBOUNCE_DELAY"
)
