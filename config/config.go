// Package config loads the blog server settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	devSigningKey = "dev-only-signing-key-change-me"
	redacted      = "********"
)

type BaseConfig struct {
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Environment string      `json:"environment"`
	Server      Server      `json:"server"`
	Auth        Auth        `json:"auth"`
	Persistence Persistence `json:"persistence"`
}

type Server struct {
	Port            int           `json:"port"`
	FrontendURL     string        `json:"frontend_url"`
	RateLimitMax    int           `json:"rate_limit_max"`
	RateLimitWindow time.Duration `json:"rate_limit_window"`
	BodyLimit       int           `json:"body_limit"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	AccessLog       bool          `json:"access_log"`
}

type Auth struct {
	SigningKey          string        `json:"signing_key"`
	PreviousSigningKeys []string      `json:"previous_signing_keys"`
	Issuer              string        `json:"issuer"`
	TokenExpiration     time.Duration `json:"token_expiration"`
	ContextKey          string        `json:"context_key"`
	TokenLookup         string        `json:"token_lookup"`
	AuthScheme          string        `json:"auth_scheme"`
	PasswordCost        int           `json:"password_cost"`
}

type Persistence struct {
	Driver          string        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
	Migrate         bool          `json:"migrate"`
}

// Load reads .env when present and then the process environment.
// Malformed numbers and durations fall back to their defaults.
func Load() (*BaseConfig, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function
func FromEnv(getenv func(string) string) (*BaseConfig, error) {
	e := env{get: getenv}

	environment := strings.ToLower(e.str("APP_ENV", e.str("NODE_ENV", EnvDevelopment)))

	cfg := &BaseConfig{
		Name:        e.str("APP_NAME", "Secure Blog Platform API"),
		Version:     e.str("APP_VERSION", "1.0.0"),
		Environment: environment,
		Server: Server{
			Port:            e.num("PORT", 3000),
			FrontendURL:     e.str("FRONTEND_URL", "*"),
			RateLimitMax:    e.num("RATE_LIMIT_MAX", 100),
			RateLimitWindow: e.duration("RATE_LIMIT_WINDOW", 15*time.Minute),
			BodyLimit:       e.num("BODY_LIMIT", 10*1024*1024),
			ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
			AccessLog:       e.flag("ACCESS_LOG", environment != EnvTest),
		},
		Auth: Auth{
			SigningKey:          e.str("JWT_SECRET", ""),
			PreviousSigningKeys: splitCSV(e.str("JWT_PREVIOUS_SECRETS", "")),
			Issuer:              e.str("JWT_ISSUER", "secure-blog"),
			TokenExpiration:     e.duration("JWT_EXPIRES_IN", 24*time.Hour),
			ContextKey:          e.str("JWT_CONTEXT_KEY", "claims"),
			TokenLookup:         e.str("JWT_TOKEN_LOOKUP", "header:Authorization"),
			AuthScheme:          e.str("JWT_AUTH_SCHEME", "Bearer"),
			PasswordCost:        e.num("BLOG_BCRYPT_COST", 10),
		},
		Persistence: Persistence{
			Driver:          strings.ToLower(e.str("DB_DRIVER", "postgres")),
			MaxOpenConns:    e.num("DB_POOL_MAX", 5),
			MaxIdleConns:    e.num("DB_POOL_IDLE", 5),
			ConnMaxIdleTime: e.duration("DB_POOL_IDLE_TIMEOUT", 10*time.Second),
			PingTimeout:     e.duration("DB_PING_TIMEOUT", 5*time.Second),
			Migrate:         e.flag("DB_MIGRATE", true),
		},
	}

	cfg.Persistence.DSN = e.str("DATABASE_URL", "")
	if cfg.Persistence.DSN == "" {
		cfg.Persistence.DSN = defaultDSN(cfg.Persistence.Driver, e)
	}

	if cfg.Auth.SigningKey == "" && !cfg.IsProduction() {
		cfg.Auth.SigningKey = devSigningKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultDSN(driver string, e env) string {
	if driver == "sqlite" {
		return "file::memory:?cache=shared"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.str("DB_USER", "postgres"), e.str("DB_PASSWORD", "")),
		Host:     e.str("DB_HOST", "localhost") + ":" + e.str("DB_PORT", "5432"),
		Path:     "/" + e.str("DB_NAME", "secure_blog"),
		RawQuery: "sslmode=" + e.str("DB_SSLMODE", "disable"),
	}
	return u.String()
}

// Validate rejects settings the server cannot run with
func (c BaseConfig) Validate() error {
	var problems []string

	if c.IsProduction() && (c.Auth.SigningKey == "" || c.Auth.SigningKey == devSigningKey) {
		problems = append(problems, "JWT_SECRET is required in production")
	}
	if c.Auth.TokenExpiration <= 0 {
		problems = append(problems, "JWT_EXPIRES_IN must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %d is out of range", c.Server.Port))
	}
	if c.Server.RateLimitWindow <= 0 {
		problems = append(problems, "RATE_LIMIT_WINDOW must be positive")
	}
	switch c.Persistence.Driver {
	case "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER %q is not supported", c.Persistence.Driver))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration", errors.CategoryValidation).
			WithTextCode("CONFIG_INVALID").
			WithMetadata(map[string]any{"errors": problems})
	}
	return nil
}

func (c BaseConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Redacted returns a copy safe to print
func (c BaseConfig) Redacted() BaseConfig {
	out := c
	if out.Auth.SigningKey != "" {
		out.Auth.SigningKey = redacted
	}
	if len(out.Auth.PreviousSigningKeys) > 0 {
		out.Auth.PreviousSigningKeys = make([]string, len(c.Auth.PreviousSigningKeys))
		for i := range out.Auth.PreviousSigningKeys {
			out.Auth.PreviousSigningKeys[i] = redacted
		}
	}
	out.Persistence.DSN = redactDSN(c.Persistence.DSN)
	return out
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

type env struct {
	get func(string) string
}

func (e env) str(key, fallback string) string {
	if val := strings.TrimSpace(e.get(key)); val != "" {
		return val
	}
	return fallback
}

func (e env) num(key string, fallback int) int {
	val := e.str(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func (e env) flag(key string, fallback bool) bool {
	val := e.str(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// duration accepts Go durations plus a day suffix ("7d")
func (e env) duration(key string, fallback time.Duration) time.Duration {
	val := e.str(key, "")
	if val == "" {
		return fallback
	}
	if days, ok := strings.CutSuffix(val, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return fallback
		}
		return time.Duration(n) * 24 * time.Hour
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
