package blog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// PoolOptions mirrors the database/sql pool knobs
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// DefaultPoolOptions keeps at most five connections, idle ones are
// closed after ten seconds.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 10 * time.Second,
	}
}

// OpenDB opens a bun database for the given driver and checks it is reachable.
func OpenDB(ctx context.Context, driver, dsn string, pool PoolOptions) (*bun.DB, error) {
	var db *bun.DB

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres, "postgresql", "pg":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open postgres database")
		}
		sqldb.SetMaxOpenConns(pool.MaxOpenConns)
		sqldb.SetMaxIdleConns(pool.MaxIdleConns)
		sqldb.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
		sqldb.SetConnMaxLifetime(pool.ConnMaxLifetime)
		db = bun.NewDB(sqldb, pgdialect.New())

	case DriverSQLite, "sqlite3":
		sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open sqlite database")
		}
		// a single long lived connection keeps in memory databases alive
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
		sqldb.SetConnMaxIdleTime(0)
		sqldb.SetConnMaxLifetime(0)
		db = bun.NewDB(sqldb, sqlitedialect.New())

		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to enable sqlite foreign keys")
		}

	default:
		return nil, errors.New("unsupported database driver: "+driver, errors.CategoryBadInput)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CategoryInternal, "database is not reachable")
	}

	return db, nil
}

// Migrate applies pending migrations for the dialect of db.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	sub, err := fs.Sub(migrationsFS, migrationsDir(db))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load migrations")
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(sub); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to discover migrations")
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to init migrations")
	}

	if err := migrator.Lock(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to lock migrations")
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to run migrations")
	}
	return group, nil
}

func migrationsDir(db *bun.DB) string {
	if _, ok := db.Dialect().(*pgdialect.Dialect); ok {
		return "data/sql/migrations/postgres"
	}
	return "data/sql/migrations/sqlite"
}

func isPQUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func isNoRows(err error) bool {
	return stderrors.Is(err, sql.ErrNoRows)
}
