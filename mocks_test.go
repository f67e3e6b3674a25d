package blog_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/secure-blog/blog"
)

const testSigningKey = "test-signing-key"

// testConfig implements blog.Config
type testConfig struct {
	signingKey string
	previous   []string
	expiration time.Duration
	contextKey string
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return testSigningKey
	}
	return c.signingKey
}

func (c testConfig) GetPreviousSigningKeys() []string { return c.previous }
func (c testConfig) GetIssuer() string                { return "secure-blog" }
func (c testConfig) GetTokenLookup() string           { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string            { return "Bearer" }
func (c testConfig) GetPasswordCost() int             { return bcrypt.MinCost }

func (c testConfig) GetContextKey() string {
	if c.contextKey == "" {
		return "claims"
	}
	return c.contextKey
}

func (c testConfig) GetTokenExpiration() time.Duration {
	if c.expiration == 0 {
		return 24 * time.Hour
	}
	return c.expiration
}

// nopLogger silences component logs in tests
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// MockUserFinder implements blog.UserFinder
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindByEmail(ctx context.Context, email string) (*blog.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*blog.User)
	return user, args.Error(1)
}

func (m *MockUserFinder) GetByID(ctx context.Context, id int64) (*blog.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*blog.User)
	return user, args.Error(1)
}

// captureSink records activity events
type captureSink struct {
	mu     sync.Mutex
	events []blog.ActivityEvent
}

func (s *captureSink) Record(_ context.Context, event blog.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Types() []blog.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]blog.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

func (s *captureSink) Last() blog.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return blog.ActivityEvent{}
	}
	return s.events[len(s.events)-1]
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := blog.OpenDB(ctx, blog.DriverSQLite, "file::memory:", blog.DefaultPoolOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = blog.Migrate(ctx, db)
	require.NoError(t, err)

	return db
}

func newTestRepo(t *testing.T) blog.RepositoryManager {
	t.Helper()
	repo := blog.NewRepositoryManager(newTestDB(t),
		blog.WithPasswordHasher(blog.NewBcryptHasher(bcrypt.MinCost)),
	)
	repo.MustValidate()
	return repo
}

func newTestAuther(t *testing.T, repo blog.RepositoryManager) *blog.Auther {
	t.Helper()
	auther, err := blog.NewAuthenticator(repo, testConfig{})
	require.NoError(t, err)
	return auther.WithLogger(nopLogger{})
}

func seedUser(t *testing.T, repo blog.RepositoryManager, username string, role blog.UserRole) *blog.User {
	t.Helper()
	user, err := repo.Users().Create(context.Background(), blog.UserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func seedPost(t *testing.T, repo blog.RepositoryManager, author *blog.User, title string, status blog.PostStatus) *blog.Post {
	t.Helper()
	post, err := repo.Posts().Create(context.Background(), author.ID, blog.PostInput{
		Title:   title,
		Content: "Content of " + title,
		Status:  status,
	})
	require.NoError(t, err)
	return post
}

type testServer struct {
	app    *fiber.App
	repo   blog.RepositoryManager
	auther *blog.Auther
	sink   *captureSink
}

func newTestServer(t *testing.T, opts ...func(*blog.HTTPOptions)) *testServer {
	t.Helper()

	repo := newTestRepo(t)
	auther := newTestAuther(t, repo)
	sink := &captureSink{}
	auther.WithActivitySink(sink)

	options := blog.HTTPOptions{
		Environment:  "test",
		Logger:       nopLogger{},
		ActivitySink: sink,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &testServer{
		app:    blog.NewHTTPApp(auther, repo, options),
		repo:   repo,
		auther: auther,
		sink:   sink,
	}
}

func (s *testServer) tokenFor(t *testing.T, user *blog.User) string {
	t.Helper()
	token, err := s.auther.TokenService().Generate(blog.IdentityFromUser(user))
	require.NoError(t, err)
	return token
}

// envelope mirrors blog.Response with raw data for decoding per test
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func (e envelope) decode(t *testing.T, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, out), string(e.Data))
}

func (s *testServer) do(t *testing.T, method, target, body, token string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}
