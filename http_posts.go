package blog

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// PostController serves the post endpoints. Every handler asks Decide
// for the viewer's scope before touching the store.
type PostController struct {
	Logger       Logger
	Posts        Posts
	ActivitySink ActivitySink
}

type PostControllerOption func(*PostController) *PostController

// WithPostControllerLogger sets the controller logger
func WithPostControllerLogger(logger Logger) PostControllerOption {
	return func(c *PostController) *PostController {
		c.Logger = logger
		return c
	}
}

// WithPostActivitySink sets the sink for post mutation events
func WithPostActivitySink(sink ActivitySink) PostControllerOption {
	return func(c *PostController) *PostController {
		c.ActivitySink = sink
		return c
	}
}

func NewPostController(posts Posts, opts ...PostControllerOption) *PostController {
	c := &PostController{
		Posts: posts,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Posts == nil {
		panic("Missing Posts repository in post controller...")
	}

	c.Logger = resolveLogger("blog.http.posts", c.Logger)
	c.ActivitySink = normalizeActivitySink(c.ActivitySink)

	return c
}

// PostList is the body of list responses
type PostList struct {
	Posts      []*Post    `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

func (p *PostController) scope(c *fiber.Ctx, action PostAction) (Scope, *User, error) {
	user, _ := UserFromFiber(c)
	scope, err := Decide(ViewerFor(user), action)
	return scope, user, err
}

// List returns published posts
func (p *PostController) List(c *fiber.Ctx) error {
	return p.list(c, ActionList)
}

// ListAll returns posts in every status, admins only
func (p *PostController) ListAll(c *fiber.Ctx) error {
	return p.list(c, ActionListAll)
}

func (p *PostController) list(c *fiber.Ctx, action PostAction) error {
	scope, _, err := p.scope(c, action)
	if err != nil {
		return err
	}

	page := Page{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", DefaultPageLimit),
	}.Normalize()

	records, total, err := p.Posts.List(c.UserContext(), scope, page)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "", PostList{
		Posts:      records,
		Pagination: NewPagination(page, total),
	})
}

// Get returns a single published post
func (p *PostController) Get(c *fiber.Ctx) error {
	scope, _, err := p.scope(c, ActionRead)
	if err != nil {
		return err
	}

	id, ok := parseID(c.Params("id"))
	if !ok {
		return ErrPostNotFound
	}

	post, err := p.Posts.GetByID(c.UserContext(), scope, id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "", fiber.Map{"post": post})
}

func (p *PostController) Create(c *fiber.Ctx) error {
	_, user, err := p.scope(c, ActionCreate)
	if err != nil {
		return err
	}

	payload := new(PostInput)
	if err := bindJSON(c, payload); err != nil {
		return err
	}
	debugPayload(p.Logger, "create post", payload)

	post, err := p.Posts.Create(c.UserContext(), user.ID, *payload)
	if err != nil {
		return err
	}

	p.record(c.UserContext(), ActivityEventPostCreated, user, post.ID, map[string]any{
		"status": string(post.Status),
	})

	return respond(c, fiber.StatusCreated, "Post created successfully", fiber.Map{"post": post})
}

func (p *PostController) Update(c *fiber.Ctx) error {
	_, user, err := p.scope(c, ActionUpdate)
	if err != nil {
		return err
	}

	id, ok := parseID(c.Params("id"))
	if !ok {
		return ErrPostNotFound
	}

	payload := new(PostUpdate)
	if err := bindJSON(c, payload); err != nil {
		return err
	}
	debugPayload(p.Logger, "update post", payload)

	post, err := p.Posts.Update(c.UserContext(), id, *payload)
	if err != nil {
		return err
	}

	p.record(c.UserContext(), ActivityEventPostUpdated, user, post.ID, map[string]any{
		"status": string(post.Status),
	})

	return respond(c, fiber.StatusOK, "Post updated successfully", fiber.Map{"post": post})
}

func (p *PostController) Delete(c *fiber.Ctx) error {
	_, user, err := p.scope(c, ActionDelete)
	if err != nil {
		return err
	}

	id, ok := parseID(c.Params("id"))
	if !ok {
		return ErrPostNotFound
	}

	if err := p.Posts.Delete(c.UserContext(), id); err != nil {
		return err
	}

	p.record(c.UserContext(), ActivityEventPostDeleted, user, id, nil)

	return respond(c, fiber.StatusOK, "Post deleted successfully", nil)
}

func (p *PostController) record(ctx context.Context, eventType ActivityEventType, user *User, postID int64, metadata map[string]any) {
	recordActivity(ctx, p.ActivitySink, p.Logger, ActivityEvent{
		EventType: eventType,
		Actor:     actorFromUser(user),
		UserID:    formatID(user.ID),
		PostID:    formatID(postID),
		Metadata:  metadata,
	})
}
