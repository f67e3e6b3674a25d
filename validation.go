package blog

import (
	stderrors "errors"
	"strings"

	"github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	maxEmailLength    = 100
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes
	maxPasswordLength = 72
	minTitleLength    = 3
	maxTitleLength    = 200
)

// Validate checks a new user before it reaches storage
func (in UserInput) Validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.RuneLength(minUsernameLength, maxUsernameLength)),
		validation.Field(&in.Email, validation.Required, validation.RuneLength(0, maxEmailLength), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
		validation.Field(&in.Role, validation.Required, validation.In(RoleAdmin, RoleUser)),
	))
}

// Validate checks the non empty fields of a user update
func (in UserUpdate) Validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.RuneLength(minUsernameLength, maxUsernameLength)),
		validation.Field(&in.Email, validation.RuneLength(0, maxEmailLength), is.Email),
		validation.Field(&in.Password, validation.Length(minPasswordLength, maxPasswordLength)),
		validation.Field(&in.Role, validation.In(RoleAdmin, RoleUser)),
	))
}

// Validate checks a post before it reaches storage
func (in PostInput) Validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(minTitleLength, maxTitleLength)),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Status, validation.Required, validation.In(PostDraft, PostPublished)),
	))
}

// Validate checks the non empty fields of a post update
func (in PostUpdate) Validate() error {
	return asValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.RuneLength(minTitleLength, maxTitleLength)),
		validation.Field(&in.Status, validation.In(PostDraft, PostPublished)),
	))
}

func normalizeUserInput(in UserInput) UserInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.Role = ParseRole(string(in.Role))
	if in.Role == "" {
		in.Role = RoleUser
	}
	return in
}

func normalizeUserUpdate(in UserUpdate) UserUpdate {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.Role = ParseRole(string(in.Role))
	return in
}

func normalizePostInput(in PostInput) PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Status = PostStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if in.Status == "" {
		in.Status = PostDraft
	}
	return in
}

func normalizePostUpdate(in PostUpdate) PostUpdate {
	in.Title = strings.TrimSpace(in.Title)
	in.Status = PostStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))
	return in
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fields validation.Errors
	if stderrors.As(err, &fields) {
		return validationFailed(validationMessages(fields)...)
	}

	return errors.Wrap(err, errors.CategoryInternal, "validation failed")
}
