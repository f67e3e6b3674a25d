package blog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secure-blog/blog"
)

func postTitles(posts []*blog.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestPosts_CreateDefaultsAndAuthor(t *testing.T) {
	repo := newTestRepo(t)
	admin := seedUser(t, repo, "admin", blog.RoleAdmin)

	post, err := repo.Posts().Create(context.Background(), admin.ID, blog.PostInput{
		Title:   "  First post  ",
		Content: "Hello",
	})
	require.NoError(t, err)

	assert.NotZero(t, post.ID)
	assert.Equal(t, "First post", post.Title)
	assert.Equal(t, blog.PostDraft, post.Status, "status defaults to draft")
	assert.Equal(t, admin.ID, post.AuthorID)
	require.NotNil(t, post.Author)
	assert.Equal(t, admin.ID, post.Author.ID)
	assert.Equal(t, "admin", post.Author.Username)
}

func TestPosts_CreateValidation(t *testing.T) {
	repo := newTestRepo(t)
	admin := seedUser(t, repo, "admin", blog.RoleAdmin)

	tests := []struct {
		name  string
		input blog.PostInput
	}{
		{"missing title", blog.PostInput{Content: "body"}},
		{"short title", blog.PostInput{Title: "ab", Content: "body"}},
		{"long title", blog.PostInput{Title: strings.Repeat("a", 201), Content: "body"}},
		{"missing content", blog.PostInput{Title: "Valid title"}},
		{"unknown status", blog.PostInput{Title: "Valid title", Content: "body", Status: "archived"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Posts().Create(context.Background(), admin.ID, tt.input)
			require.Error(t, err)
			assert.Equal(t, 400, blog.StatusFromError(err))
		})
	}
}

func TestPosts_ListExcludesDrafts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	admin := seedUser(t, repo, "admin", blog.RoleAdmin)

	seedPost(t, repo, admin, "Published one", blog.PostPublished)
	seedPost(t, repo, admin, "Secret draft", blog.PostDraft)
	seedPost(t, repo, admin, "Published two", blog.PostPublished)

	public, total, err := repo.Posts().List(ctx, blog.ScopePublished, blog.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"Published two", "Published one"}, postTitles(public))
	for _, p := range public {
		assert.Equal(t, blog.PostPublished, p.Status)
		require.NotNil(t, p.Author)
		assert.Equal(t, "admin", p.Author.Username)
	}

	all, total, err := repo.Posts().List(ctx, blog.ScopeAll, blog.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.ElementsMatch(t, []string{"Published one", "Secret draft", "Published two"}, postTitles(all))
	for _, p := range public {
		assert.Contains(t, postTitles(all), p.Title, "admin listing is a superset of the public one")
	}

	empty, total, err := repo.Posts().List(ctx, blog.Scope{}, blog.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, empty)
}

func TestPosts_ListPagination(t *testing.T) {
	db := newTestDB(t)
	clock := &fixedClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	users := blog.NewUsersRepository(db, blog.WithUsersHasher(blog.NewBcryptHasher(4)))
	posts := blog.NewPostsRepository(db, blog.WithPostsClock(func() time.Time {
		clock.Advance(time.Minute)
		return clock.Now()
	}))
	ctx := context.Background()

	admin, err := users.Create(ctx, blog.UserInput{
		Username: "admin", Email: "admin@example.com", Password: "password123", Role: blog.RoleAdmin,
	})
	require.NoError(t, err)

	for _, title := range []string{"Oldest", "Middle", "Newest"} {
		_, err := posts.Create(ctx, admin.ID, blog.PostInput{Title: title, Content: "body", Status: blog.PostPublished})
		require.NoError(t, err)
	}

	page := blog.Page{Page: 2, Limit: 1}
	records, total, err := posts.List(ctx, blog.ScopePublished, page)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Middle", records[0].Title)
	assert.Equal(t, 3, total)

	pagination := blog.NewPagination(page, total)
	assert.Equal(t, blog.Pagination{Total: 3, Page: 2, Limit: 1, TotalPages: 3}, pagination)

	records, total, err = posts.List(ctx, blog.ScopePublished, blog.Page{Page: 9, Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, records, "pages past the end are empty")
	assert.Equal(t, 3, total)
}

func TestPosts_GetByIDHonorsScope(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	admin := seedUser(t, repo, "admin", blog.RoleAdmin)

	draft := seedPost(t, repo, admin, "Secret draft", blog.PostDraft)
	published := seedPost(t, repo, admin, "Published", blog.PostPublished)

	got, err := repo.Posts().GetByID(ctx, blog.ScopePublished, published.ID)
	require.NoError(t, err)
	assert.Equal(t, published.ID, got.ID)

	_, err = repo.Posts().GetByID(ctx, blog.ScopePublished, draft.ID)
	assert.True(t, errors.Is(err, blog.ErrPostNotFound), "drafts look missing to the public")

	got, err = repo.Posts().GetByID(ctx, blog.ScopeAll, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, blog.PostDraft, got.Status)

	_, err = repo.Posts().GetByID(ctx, blog.ScopeAll, 999)
	assert.True(t, errors.Is(err, blog.ErrPostNotFound))
}

func TestPosts_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	admin := seedUser(t, repo, "admin", blog.RoleAdmin)
	post := seedPost(t, repo, admin, "Draft title", blog.PostDraft)

	updated, err := repo.Posts().Update(ctx, post.ID, blog.PostUpdate{Status: blog.PostPublished})
	require.NoError(t, err)
	assert.Equal(t, blog.PostPublished, updated.Status)
	assert.Equal(t, "Draft title", updated.Title, "omitted fields are kept")
	assert.Equal(t, post.Content, updated.Content)
	assert.False(t, updated.UpdatedAt.Before(post.UpdatedAt))

	got, err := repo.Posts().GetByID(ctx, blog.ScopePublished, post.ID)
	require.NoError(t, err)
	assert.Equal(t, blog.PostPublished, got.Status)

	updated, err = repo.Posts().Update(ctx, post.ID, blog.PostUpdate{Status: blog.PostDraft, Title: "Back to draft"})
	require.NoError(t, err)
	assert.Equal(t, blog.PostDraft, updated.Status, "published posts can move back to draft")
	assert.Equal(t, "Back to draft", updated.Title)

	_, err = repo.Posts().Update(ctx, post.ID, blog.PostUpdate{Status: "archived"})
	assert.Equal(t, 400, blog.StatusFromError(err))

	_, err = repo.Posts().Update(ctx, 999, blog.PostUpdate{Title: "Nothing here"})
	assert.True(t, errors.Is(err, blog.ErrPostNotFound))
}

func TestPosts_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	admin := seedUser(t, repo, "admin", blog.RoleAdmin)
	post := seedPost(t, repo, admin, "Short lived", blog.PostPublished)

	require.NoError(t, repo.Posts().Delete(ctx, post.ID))

	_, err := repo.Posts().GetByID(ctx, blog.ScopeAll, post.ID)
	assert.True(t, errors.Is(err, blog.ErrPostNotFound))

	assert.True(t, errors.Is(repo.Posts().Delete(ctx, post.ID), blog.ErrPostNotFound))
}
