package blog

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

const (
	// LocalsUserKey is the fiber locals key the authenticated *User is stored under
	LocalsUserKey = "user"
	// LocalsClaimsKey is the default fiber locals key for the validated AuthClaims,
	// Config.GetContextKey overrides it
	LocalsClaimsKey = "claims"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok && raw != nil
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// UserFromFiber returns the user the auth middleware attached to the request
func UserFromFiber(c *fiber.Ctx) (*User, bool) {
	raw, ok := c.Locals(LocalsUserKey).(*User)
	return raw, ok && raw != nil
}
