package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Upstream      UpstreamConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Session       SessionConfig
	AuthRateLimit AuthRateLimitConfig
	Counters      CountersConfig
	Search        SearchConfig
	Idempotency   IdempotencyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEDIBILL_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDIBILL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEDIBILL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDIBILL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points at the pharmacy backend that owns auth, search,
// medicine data, and the sales ledger.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"MEDIBILL_UPSTREAM_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"MEDIBILL_UPSTREAM_TIMEOUT" default:"10s"`
}

func (u UpstreamConfig) validate() error {
	if strings.TrimSpace(u.BaseURL) == "" {
		return fmt.Errorf("MEDIBILL_UPSTREAM_BASE_URL is required")
	}
	if u.Timeout <= 0 {
		return fmt.Errorf("MEDIBILL_UPSTREAM_TIMEOUT must be positive")
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDIBILL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEDIBILL_REDIS_ADDR"`
	Password     string        `envconfig:"MEDIBILL_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDIBILL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDIBILL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDIBILL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDIBILL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDIBILL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDIBILL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig holds the verification parameters shared with the upstream
// authentication service. This gateway never mints operator tokens itself.
type JWTConfig struct {
	Secret string `envconfig:"MEDIBILL_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MEDIBILL_JWT_ISSUER" required:"true"`
}

type SessionConfig struct {
	TTLMinutes int `envconfig:"MEDIBILL_SESSION_TTL_MINUTES" default:"720"`
}

// TTL returns the session liveness TTL.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"MEDIBILL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit int           `envconfig:"MEDIBILL_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit   int           `envconfig:"MEDIBILL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// CountersConfig fixes the billing counter set for the pharmacy.
type CountersConfig struct {
	Count int `envconfig:"MEDIBILL_COUNTER_COUNT" default:"5"`
}

type SearchConfig struct {
	DebounceDelay  time.Duration `envconfig:"MEDIBILL_SEARCH_DEBOUNCE_DELAY" default:"450ms"`
	MaxSuggestions int           `envconfig:"MEDIBILL_SEARCH_MAX_SUGGESTIONS" default:"10"`
}

type IdempotencyConfig struct {
	ClearTTL  time.Duration `envconfig:"MEDIBILL_IDEMPOTENCY_CLEAR_TTL" default:"24h"`
	SubmitTTL time.Duration `envconfig:"MEDIBILL_IDEMPOTENCY_SUBMIT_TTL" default:"168h"`
}
