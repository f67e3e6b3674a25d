package blog

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger is the structured logger used across the package.
// glog loggers satisfy it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetPreviousSigningKeys() []string
	GetIssuer() string
	GetTokenExpiration() time.Duration
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
	GetPasswordCost() int
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (*User, error)
	FindIdentityByID(ctx context.Context, id string) (*User, error)
}

// PasswordHasher derives and checks password digests
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, digest string) bool
}

// TokenService issues and validates session tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

type defLogger struct {
	l *slog.Logger
}

func newDefLogger(name string) defLogger {
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return defLogger{l: slog.New(h).With("logger", name)}
}

func (d defLogger) Debug(msg string, args ...any) { d.l.Debug(msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { d.l.Info(msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { d.l.Warn(msg, args...) }
func (d defLogger) Error(msg string, args ...any) { d.l.Error(msg, args...) }

func resolveLogger(name string, l Logger) Logger {
	if l == nil {
		return newDefLogger(name)
	}
	return l
}
