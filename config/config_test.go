package config_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secure-blog/blog"
	"github.com/secure-blog/blog/config"
)

func lookup(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv(lookup(nil))
	require.NoError(t, err)

	assert.Equal(t, config.EnvDevelopment, cfg.Environment)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.GetServer().GetAddress())
	assert.Equal(t, "*", cfg.Server.FrontendURL)
	assert.Equal(t, 100, cfg.Server.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.Server.RateLimitWindow)
	assert.Equal(t, 10*1024*1024, cfg.Server.BodyLimit)

	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenExpiration)
	assert.Equal(t, 10, cfg.Auth.PasswordCost)
	assert.Equal(t, "Bearer", cfg.Auth.AuthScheme)
	assert.NotEmpty(t, cfg.Auth.SigningKey, "development gets a fallback signing key")

	assert.Equal(t, "postgres", cfg.Persistence.Driver)
	assert.Equal(t, "postgres://postgres:@localhost:5432/secure_blog?sslmode=disable", cfg.Persistence.DSN)
	assert.Equal(t, 5, cfg.Persistence.MaxOpenConns)
	assert.Equal(t, 10*time.Second, cfg.Persistence.ConnMaxIdleTime)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := config.FromEnv(lookup(map[string]string{
		"NODE_ENV":             "Test",
		"PORT":                 "8080",
		"FRONTEND_URL":         "https://blog.example.com",
		"JWT_SECRET":           "s3cret",
		"JWT_PREVIOUS_SECRETS": " old-1, ,old-2 ",
		"JWT_EXPIRES_IN":       "7d",
		"BLOG_BCRYPT_COST":     "12",
		"RATE_LIMIT_MAX":       "not-a-number",
		"DB_DRIVER":            "SQLite",
	}))
	require.NoError(t, err)

	assert.Equal(t, config.EnvTest, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://blog.example.com", cfg.Server.FrontendURL)
	assert.False(t, cfg.Server.AccessLog)
	assert.Equal(t, "s3cret", cfg.Auth.SigningKey)
	assert.Equal(t, []string{"old-1", "old-2"}, cfg.Auth.PreviousSigningKeys)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenExpiration)
	assert.Equal(t, 12, cfg.Auth.PasswordCost)
	assert.Equal(t, 100, cfg.Server.RateLimitMax, "malformed values keep the default")
	assert.Equal(t, "sqlite", cfg.Persistence.Driver)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Persistence.DSN)
}

func TestFromEnv_DatabaseURLWins(t *testing.T) {
	cfg, err := config.FromEnv(lookup(map[string]string{
		"DATABASE_URL": "postgres://blog:pw@db:5432/blog",
		"DB_HOST":      "ignored",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://blog:pw@db:5432/blog", cfg.Persistence.DSN)
}

func TestFromEnv_ProductionRequiresSecret(t *testing.T) {
	_, err := config.FromEnv(lookup(map[string]string{
		"NODE_ENV": "production",
	}))
	require.Error(t, err)

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr))
	assert.Equal(t, errors.CategoryValidation, richErr.Category)
	assert.Contains(t, richErr.Metadata["errors"], "JWT_SECRET is required in production")

	cfg, err := config.FromEnv(lookup(map[string]string{
		"NODE_ENV":   "production",
		"JWT_SECRET": "prod-secret",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	base, err := config.FromEnv(lookup(nil))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*config.BaseConfig)
	}{
		{"zero token lifetime", func(c *config.BaseConfig) { c.Auth.TokenExpiration = 0 }},
		{"negative token lifetime", func(c *config.BaseConfig) { c.Auth.TokenExpiration = -time.Minute }},
		{"port out of range", func(c *config.BaseConfig) { c.Server.Port = 70000 }},
		{"zero rate limit window", func(c *config.BaseConfig) { c.Server.RateLimitWindow = 0 }},
		{"unknown driver", func(c *config.BaseConfig) { c.Persistence.Driver = "mongo" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg, err := config.FromEnv(lookup(map[string]string{
		"JWT_SECRET":           "top-secret",
		"JWT_PREVIOUS_SECRETS": "older",
		"DATABASE_URL":         "postgres://blog:hunter2@db:5432/blog",
	}))
	require.NoError(t, err)

	red := cfg.Redacted()
	assert.NotContains(t, red.Auth.SigningKey, "top-secret")
	assert.NotContains(t, red.Auth.PreviousSigningKeys, "older")
	assert.NotContains(t, red.Persistence.DSN, "hunter2")
	assert.Contains(t, red.Persistence.DSN, "@db:5432/blog")

	assert.Equal(t, "top-secret", cfg.Auth.SigningKey, "original is untouched")
	assert.Equal(t, []string{"older"}, cfg.Auth.PreviousSigningKeys)
}

func TestAuthSatisfiesBlogConfig(t *testing.T) {
	cfg, err := config.FromEnv(lookup(map[string]string{"JWT_SECRET": "k"}))
	require.NoError(t, err)

	var c blog.Config = cfg.GetAuth()
	assert.Equal(t, "k", c.GetSigningKey())
	assert.Equal(t, "header:Authorization", c.GetTokenLookup())
}
