package blog

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the credential store
type Users interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, input UserInput) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, input UserInput) (*User, error)
	Update(ctx context.Context, id int64, input UserUpdate) (*User, error)
	Delete(ctx context.Context, id int64) error
}

type users struct {
	db     *bun.DB
	hasher PasswordHasher
	now    func() time.Time
}

var _ Users = (*users)(nil)

// UsersOption configures the users repository
type UsersOption func(*users)

// WithUsersHasher sets the password hasher used on create and update
func WithUsersHasher(hasher PasswordHasher) UsersOption {
	return func(u *users) {
		if hasher != nil {
			u.hasher = hasher
		}
	}
}

// WithUsersClock overrides the timestamp source
func WithUsersClock(now func() time.Time) UsersOption {
	return func(u *users) {
		if now != nil {
			u.now = now
		}
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := &users{
		db:     db,
		hasher: NewBcryptHasher(DefaultPasswordCost),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, userLookupError(err)
	}
	return record, nil
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, userLookupError(err)
	}
	return record, nil
}

func (a *users) Create(ctx context.Context, input UserInput) (*User, error) {
	return a.CreateTx(ctx, a.db, input)
}

// CreateTx validates the input, hashes the raw password and inserts the user.
// Duplicate usernames or emails surface as ErrDuplicateRecord.
func (a *users) CreateTx(ctx context.Context, tx bun.IDB, input UserInput) (*User, error) {
	input = normalizeUserInput(input)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	digest, err := a.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	record := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: digest,
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, userWriteError(err)
	}

	return record, nil
}

// Update applies the non empty fields of input. The password is
// re-hashed only when a new one is given.
func (a *users) Update(ctx context.Context, id int64, input UserUpdate) (*User, error) {
	input = normalizeUserUpdate(input)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	record := &User{}
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx); err != nil {
			return userLookupError(err)
		}

		if input.Username != "" {
			record.Username = input.Username
		}
		if input.Email != "" {
			record.Email = input.Email
		}
		if input.Role != "" {
			record.Role = input.Role
		}
		if input.Password != "" {
			digest, err := a.hasher.Hash(input.Password)
			if err != nil {
				return err
			}
			record.PasswordHash = digest
		}
		record.UpdatedAt = a.now().UTC()

		_, err := tx.NewUpdate().
			Model(record).
			Column("username", "email", "password_hash", "role", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return userWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (a *users) Delete(ctx context.Context, id int64) error {
	res, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}
	return requireAffected(res, ErrUserNotFound)
}

func userLookupError(err error) error {
	if isNoRows(err) {
		return ErrUserNotFound
	}
	return errors.Wrap(err, errors.CategoryInternal, "failed to load user")
}

func userWriteError(err error) error {
	if IsUniqueViolation(err) {
		return ErrDuplicateRecord
	}
	return errors.Wrap(err, errors.CategoryInternal, "failed to store user")
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
