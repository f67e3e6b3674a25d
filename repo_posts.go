package blog

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Posts is the post store. Reads take a Scope from Decide and
// filter on it in SQL.
type Posts interface {
	List(ctx context.Context, scope Scope, page Page) ([]*Post, int, error)
	GetByID(ctx context.Context, scope Scope, id int64) (*Post, error)
	Create(ctx context.Context, authorID int64, input PostInput) (*Post, error)
	Update(ctx context.Context, id int64, input PostUpdate) (*Post, error)
	Delete(ctx context.Context, id int64) error
}

type posts struct {
	db  *bun.DB
	now func() time.Time
}

var _ Posts = (*posts)(nil)

// PostsOption configures the posts repository
type PostsOption func(*posts)

// WithPostsClock overrides the timestamp source
func WithPostsClock(now func() time.Time) PostsOption {
	return func(p *posts) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPostsRepository(db *bun.DB, opts ...PostsOption) Posts {
	repo := &posts{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

// List returns one page of posts inside scope, newest first, plus the
// total number of matching posts.
func (r *posts) List(ctx context.Context, scope Scope, page Page) ([]*Post, int, error) {
	if scope.IsEmpty() {
		return []*Post{}, 0, nil
	}

	page = page.Normalize()
	records := make([]*Post, 0, page.Limit)

	total, err := r.db.NewSelect().
		Model(&records).
		Relation("Author").
		Where("p.status IN (?)", bun.In(scope.Statuses())).
		OrderExpr("p.created_at DESC, p.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		ScanAndCount(ctx)
	if err != nil && !isNoRows(err) {
		return nil, 0, errors.Wrap(err, errors.CategoryInternal, "failed to list posts")
	}

	return records, total, nil
}

func (r *posts) GetByID(ctx context.Context, scope Scope, id int64) (*Post, error) {
	if scope.IsEmpty() {
		return nil, ErrPostNotFound
	}
	return r.getTx(ctx, r.db, scope, id)
}

// Create inserts the post and reads it back with its author in the
// same transaction.
func (r *posts) Create(ctx context.Context, authorID int64, input PostInput) (*Post, error) {
	input = normalizePostInput(input)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var created *Post
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := r.now().UTC()
		record := &Post{
			Title:     input.Title,
			Content:   input.Content,
			Status:    input.Status,
			AuthorID:  authorID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to store post")
		}

		post, err := r.getTx(ctx, tx, ScopeAll, record.ID)
		if err != nil {
			return err
		}
		created = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies the non empty fields of input, any status may move
// to any other status.
func (r *posts) Update(ctx context.Context, id int64, input PostUpdate) (*Post, error) {
	input = normalizePostUpdate(input)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *Post
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := r.getTx(ctx, tx, ScopeAll, id)
		if err != nil {
			return err
		}

		if input.Title != "" {
			record.Title = input.Title
		}
		if input.Content != "" {
			record.Content = input.Content
		}
		if input.Status != "" {
			record.Status = input.Status
		}
		record.UpdatedAt = r.now().UTC()

		_, err = tx.NewUpdate().
			Model(record).
			Column("title", "content", "status", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to update post")
		}

		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *posts) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*Post)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete post")
	}
	return requireAffected(res, ErrPostNotFound)
}

func (r *posts) getTx(ctx context.Context, tx bun.IDB, scope Scope, id int64) (*Post, error) {
	record := &Post{}
	err := tx.NewSelect().
		Model(record).
		Relation("Author").
		Where("p.id = ?", id).
		Where("p.status IN (?)", bun.In(scope.Statuses())).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrPostNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load post")
	}
	return record, nil
}
