package blog

import (
	"context"
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/secure-blog/blog/middleware/jwtware"
)

type tokenValidatorAdapter struct {
	ts TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.ts.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Authenticate returns the middleware that requires a valid bearer token
// and attaches the token's user to the request.
func (s *Auther) Authenticate() fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator: tokenValidatorAdapter{ts: s.tokenService},
		TokenLookup:    s.tokenLookup(),
		AuthScheme:     s.cfg.GetAuthScheme(),
		ContextKey:     s.claimsLocalsKey(),
		IdentityKey:    LocalsUserKey,
		IdentityLoader: s.loadIdentity,
		ErrorHandler:   s.authErrorHandler,
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims, identity any) context.Context {
			if c, ok := claims.(AuthClaims); ok {
				ctx = WithClaimsContext(ctx, c)
			}
			if user, ok := identity.(*User); ok {
				ctx = WithContext(ctx, user)
			}
			return ctx
		},
	})
}

// ClaimsFromFiber returns the claims Authenticate attached to the request
func (s *Auther) ClaimsFromFiber(c *fiber.Ctx) (AuthClaims, bool) {
	raw, ok := c.Locals(s.claimsLocalsKey()).(AuthClaims)
	return raw, ok
}

func (s *Auther) claimsLocalsKey() string {
	if key := s.cfg.GetContextKey(); key != "" {
		return key
	}
	return LocalsClaimsKey
}

func (s *Auther) tokenLookup() string {
	if lookup := s.cfg.GetTokenLookup(); lookup != "" {
		return lookup
	}
	return "header:" + fiber.HeaderAuthorization
}

func (s *Auther) loadIdentity(ctx context.Context, claims jwtware.AuthClaims) (any, error) {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return s.IdentityFromSession(ctx, authClaims)
}

// authErrorHandler maps middleware failures onto the package errors,
// the app ErrorHandler renders them.
func (s *Auther) authErrorHandler(_ *fiber.Ctx, err error) error {
	if stderrors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return ErrTokenMissing
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return err
	}

	s.logger.Error("unexpected auth middleware error", "error", err)
	return ErrTokenInvalid
}

// RequireRole only lets users holding role through. Mount it after Authenticate.
func RequireRole(role UserRole, loggers ...Logger) fiber.Handler {
	var logger Logger
	if len(loggers) > 0 {
		logger = loggers[0]
	}
	logger = resolveLogger("blog.gate", logger)

	return func(c *fiber.Ctx) error {
		user, ok := UserFromFiber(c)
		if !ok {
			logger.Error("role gate mounted without authentication", "path", c.Path())
			return ErrMissingIdentity
		}
		if user.Role != role {
			return ErrAdminRequired
		}
		return c.Next()
	}
}

// AuthorizeAdmin requires the admin role
func AuthorizeAdmin(loggers ...Logger) fiber.Handler {
	return RequireRole(RoleAdmin, loggers...)
}
