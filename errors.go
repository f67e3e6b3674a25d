package blog

import (
	"sort"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/gofiber/fiber/v2"
)

const (
	TextCodeTokenMissing    = "TOKEN_MISSING"
	TextCodeTokenExpired    = "TOKEN_EXPIRED"
	TextCodeTokenInvalid    = "TOKEN_INVALID"
	TextCodeTokenNoUser     = "TOKEN_USER_NOT_FOUND"
	TextCodeAdminRequired   = "ADMIN_REQUIRED"
	TextCodeBadCredentials  = "INVALID_CREDENTIALS"
	TextCodeValidation      = "VALIDATION_ERROR"
	TextCodeInvalidPayload  = "INVALID_PAYLOAD"
	TextCodeDuplicate       = "DUPLICATE_RECORD"
	TextCodeUserNotFound    = "USER_NOT_FOUND"
	TextCodePostNotFound    = "POST_NOT_FOUND"
	TextCodeInternal        = "INTERNAL_ERROR"
	TextCodeEmptyPassword   = "EMPTY_PASSWORD"
	TextCodeMissingIdentity = "MISSING_IDENTITY"
)

var (
	// ErrTokenMissing is returned when the request carries no bearer token
	ErrTokenMissing = errors.New("Access denied. No token provided.", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(TextCodeTokenMissing)

	// ErrTokenExpired is returned for well formed tokens past their exp claim
	ErrTokenExpired = errors.New("Token expired.", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(TextCodeTokenExpired)

	// ErrTokenInvalid covers bad signatures, malformed tokens and unknown keys
	ErrTokenInvalid = errors.New("Invalid token.", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(TextCodeTokenInvalid)

	// ErrTokenUserNotFound is returned when a valid token names a missing user
	ErrTokenUserNotFound = errors.New("Invalid token. User not found.", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode(TextCodeTokenNoUser)

	// ErrAdminRequired is returned when a non admin hits an admin route
	ErrAdminRequired = errors.New("Access denied. Admin privileges required.", errors.CategoryAuthz).
				WithCode(errors.CodeForbidden).
				WithTextCode(TextCodeAdminRequired)

	// ErrInvalidCredentials does not tell unknown emails from wrong passwords
	ErrInvalidCredentials = errors.New("Invalid email or password", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode(TextCodeBadCredentials)

	ErrValidation = errors.New("Validation error", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode(TextCodeValidation)

	ErrInvalidPayload = errors.New("Invalid request body", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest).
				WithTextCode(TextCodeInvalidPayload)

	ErrNoEmptyString = errors.New("Password is required", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest).
				WithTextCode(TextCodeEmptyPassword)

	ErrDuplicateRecord = errors.New("Username or email already exists", errors.CategoryConflict).
				WithCode(errors.CodeConflict).
				WithTextCode(TextCodeDuplicate)

	ErrUserNotFound = errors.New("User not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithTextCode(TextCodeUserNotFound)

	ErrPostNotFound = errors.New("Post not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithTextCode(TextCodePostNotFound)

	ErrMissingIdentity = errors.New("Access denied. No token provided.", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode(TextCodeMissingIdentity)
)

const internalErrorMessage = "Internal server error"

// validationFailed builds a validation error that lists the
// given field messages in the response body.
func validationFailed(messages ...string) error {
	return ErrValidation.Clone().WithMetadata(map[string]any{
		"errors": messages,
	})
}

// validationMessages flattens field errors into "field: message" lines.
func validationMessages(fields map[string]error) []string {
	out := make([]string, 0, len(fields))
	for field, err := range fields {
		if err == nil {
			continue
		}
		out = append(out, field+": "+err.Error())
	}
	sort.Strings(out)
	return out
}

// StatusFromError returns the HTTP status code an error renders with.
func StatusFromError(err error) int {
	if err == nil {
		return fiber.StatusOK
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return statusFromCategory(richErr.Category)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	return fiber.StatusInternalServerError
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// IsUniqueViolation reports whether a driver error comes from a
// UNIQUE constraint, for sqlite and postgres.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if isPQUniqueViolation(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func isInternal(err error) bool {
	return StatusFromError(err) >= fiber.StatusInternalServerError
}
