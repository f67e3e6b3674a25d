package blog

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserFinder is the subset of Users needed to authenticate
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// UserProvider verifies credentials against the credential store
type UserProvider struct {
	store  UserFinder
	hasher PasswordHasher
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserFinder, hasher PasswordHasher) *UserProvider {
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultPasswordCost)
	}
	return &UserProvider{
		store:  store,
		hasher: hasher,
		logger: resolveLogger("blog.user_provider", nil),
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = resolveLogger("blog.user_provider", l)
	return u
}

// VerifyIdentity will find the user and compare the password.
// Unknown emails and wrong passwords both fail with ErrInvalidCredentials.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (*User, error) {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			// equalize timing with the wrong password path
			u.hasher.Verify(password, dummyDigest)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if !u.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// FindIdentityByID loads the user a token subject points to
func (u *UserProvider) FindIdentityByID(ctx context.Context, id string) (*User, error) {
	userID, ok := parseID(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.store.GetByID(ctx, userID)
}

// bcrypt digest of a random string, cost 10
const dummyDigest = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z7T/8S4tC8GfFVxMAo2Ym0eC"
