package blog_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/secure-blog/blog"
	"github.com/stretchr/testify/assert"
)

func TestJWTClaims_Subject(t *testing.T) {
	claims := &blog.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "42",
		},
	}

	assert.Equal(t, "42", claims.Subject())
}

func TestJWTClaims_UserID(t *testing.T) {
	t.Run("returns UID when present", func(t *testing.T) {
		claims := &blog.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
			UID:              "7",
		}
		assert.Equal(t, "7", claims.UserID())
	})

	t.Run("fallback to subject when UID is empty", func(t *testing.T) {
		claims := &blog.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
		}
		assert.Equal(t, "42", claims.UserID())
	})
}

func TestJWTClaims_Roles(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		check     string
		hasRole   bool
		isAtLeast bool
	}{
		{name: "admin checks admin", role: "admin", check: "admin", hasRole: true, isAtLeast: true},
		{name: "admin checks user", role: "admin", check: "user", hasRole: false, isAtLeast: true},
		{name: "user checks admin", role: "user", check: "admin", hasRole: false, isAtLeast: false},
		{name: "user checks user", role: "user", check: "user", hasRole: true, isAtLeast: true},
		{name: "unknown role", role: "owner", check: "user", hasRole: false, isAtLeast: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &blog.JWTClaims{UserRole: tt.role}
			assert.Equal(t, tt.role, claims.Role())
			assert.Equal(t, tt.hasRole, claims.HasRole(tt.check))
			assert.Equal(t, tt.isAtLeast, claims.IsAtLeast(tt.check))
		})
	}
}

func TestJWTClaims_Times(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	claims := &blog.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "token-id",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(24 * time.Hour)),
		},
		UserEmail: "ada@example.com",
	}

	assert.True(t, claims.IssuedAt().Equal(issued))
	assert.True(t, claims.Expires().Equal(issued.Add(24*time.Hour)))
	assert.Equal(t, "token-id", claims.TokenID())
	assert.Equal(t, "ada@example.com", claims.Email())

	empty := &blog.JWTClaims{}
	assert.True(t, empty.IssuedAt().IsZero())
	assert.True(t, empty.Expires().IsZero())
}
