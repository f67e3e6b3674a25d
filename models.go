package blog

import (
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is the default role, read only access to published posts
	RoleUser UserRole = "user"
	// RoleAdmin can manage posts in any status
	RoleAdmin UserRole = "admin"
)

// PostStatus is the publication state of a post
type PostStatus string

const (
	// PostDraft is only visible to admins
	PostDraft PostStatus = "draft"
	// PostPublished is visible to everyone
	PostPublished PostStatus = "published"
)

// IsValid checks if the status is one of the known statuses
func (s PostStatus) IsValid() bool {
	switch s {
	case PostDraft, PostPublished:
		return true
	default:
		return false
	}
}

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Username      string    `bun:"username,notnull,unique" json:"username"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	Role          UserRole  `bun:"role,notnull" json:"role"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Post is a blog post
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`
	ID            int64       `bun:"id,pk,autoincrement" json:"id"`
	Title         string      `bun:"title,notnull" json:"title"`
	Content       string      `bun:"content,notnull" json:"content"`
	Status        PostStatus  `bun:"status,notnull" json:"status"`
	AuthorID      int64       `bun:"author_id,notnull" json:"authorId"`
	Author        *PostAuthor `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	CreatedAt     time.Time   `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time   `bun:"updated_at,notnull" json:"updatedAt"`
}

// PostAuthor is the public projection of a post's author
type PostAuthor struct {
	bun.BaseModel `bun:"table:users,alias:author"`
	ID            int64  `bun:"id,pk" json:"id"`
	Username      string `bun:"username" json:"username"`
}

// UserInput holds the attributes to create a user
type UserInput struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// UserUpdate holds the attributes to update a user.
// Empty fields keep their stored value.
type UserUpdate struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// PostInput holds the attributes to create a post
type PostInput struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Status  PostStatus `json:"status"`
}

// PostUpdate holds the attributes to update a post.
// Empty fields keep their stored value.
type PostUpdate struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Status  PostStatus `json:"status"`
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
