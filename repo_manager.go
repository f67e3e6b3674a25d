package blog

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Ping(ctx context.Context) error
	Users() Users
	Posts() Posts
}

type mngr struct {
	db    *bun.DB
	users Users
	posts Posts
}

// RepositoryOption configures the repository manager
type RepositoryOption func(*mngr)

// WithPasswordHasher sets the hasher used by the users repository
func WithPasswordHasher(hasher PasswordHasher) RepositoryOption {
	return func(m *mngr) {
		m.users = NewUsersRepository(m.db, WithUsersHasher(hasher))
	}
}

func NewRepositoryManager(db *bun.DB, opts ...RepositoryOption) RepositoryManager {
	m := &mngr{
		db:    db,
		users: NewUsersRepository(db),
		posts: NewPostsRepository(db),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository database should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.posts == nil {
		return errors.New("repository posts should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

// Ping checks the database connection
func (m mngr) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Posts() Posts {
	return m.posts
}
