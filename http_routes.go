package blog

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/secure-blog/blog/middleware/metrics"
)

const (
	DefaultRateLimitMax    = 100
	DefaultRateLimitWindow = 15 * time.Minute
	DefaultBodyLimit       = 10 * 1024 * 1024
	DefaultHealthTimeout   = 3 * time.Second

	rateLimitMessage = "Too many requests. Please try again later."
)

// HTTPOptions configures NewHTTPApp
type HTTPOptions struct {
	Name        string
	Version     string
	Environment string
	// CORSOrigins is a comma separated list, "*" allows any origin
	CORSOrigins string
	// RateLimitMax <= 0 disables the /api limiter
	RateLimitMax    int
	RateLimitWindow time.Duration
	BodyLimit       int
	// AccessLog receives one line per request, nil disables it
	AccessLog io.Writer
	Metrics   *metrics.Metrics
	Logger    Logger
	// ActivitySink receives post mutation events
	ActivitySink ActivitySink
}

// NewHTTPApp builds the fiber app with every blog route mounted
func NewHTTPApp(auther *Auther, repo RepositoryManager, opts HTTPOptions) *fiber.App {
	if auther == nil {
		panic("Missing Auther in HTTP app...")
	}
	if repo == nil {
		panic("Missing RepositoryManager in HTTP app...")
	}

	opts = opts.withDefaults()
	logger := resolveLogger("blog.http", opts.Logger)

	app := fiber.New(fiber.Config{
		AppName:               opts.Name,
		BodyLimit:             opts.BodyLimit,
		ErrorHandler:          NewErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
	}
	if opts.AccessLog != nil {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${ip} - [${time}] \"${method} ${url} ${protocol}\" ${status} ${bytesSent} \"${referer}\" \"${ua}\" ${locals:requestid}\n",
			Output: opts.AccessLog,
		}))
	}
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: opts.CORSOrigins != "*",
	}))

	if opts.Metrics != nil {
		app.Get("/metrics", opts.Metrics.Handler())
	}

	app.Get("/", indexHandler(opts))

	api := app.Group("/api")
	if opts.RateLimitMax > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: opts.RateLimitWindow,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(Response{
					Message: rateLimitMessage,
				})
			},
		}))
	}

	api.Get("/health", healthHandler(repo, opts.Environment, logger))

	RegisterAuthRoutes(api.Group("/auth"), auther, WithAuthControllerLogger(logger))
	RegisterPostRoutes(api.Group("/posts"), auther, repo.Posts(),
		WithPostControllerLogger(logger),
		WithPostActivitySink(opts.ActivitySink),
	)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route "+c.OriginalURL()+" not found")
	})

	return app
}

func (o HTTPOptions) withDefaults() HTTPOptions {
	if o.Name == "" {
		o.Name = "Secure Blog Platform API"
	}
	if o.Version == "" {
		o.Version = "1.0.0"
	}
	if o.CORSOrigins == "" {
		o.CORSOrigins = "*"
	}
	if o.RateLimitWindow <= 0 {
		o.RateLimitWindow = DefaultRateLimitWindow
	}
	if o.BodyLimit <= 0 {
		o.BodyLimit = DefaultBodyLimit
	}
	return o
}

// RegisterAuthRoutes mounts register, login and me on router
func RegisterAuthRoutes(router fiber.Router, auther *Auther, opts ...AuthControllerOption) *AuthController {
	ctrl := NewAuthController(auther, opts...)

	router.Post("/register", ctrl.Register)
	router.Post("/login", ctrl.Login)
	router.Get("/me", auther.Authenticate(), ctrl.Me)

	return ctrl
}

// RegisterPostRoutes mounts the post routes on router. Reads are public,
// writes and the full listing need an admin token.
func RegisterPostRoutes(router fiber.Router, auther *Auther, posts Posts, opts ...PostControllerOption) *PostController {
	ctrl := NewPostController(posts, opts...)
	admin := []fiber.Handler{auther.Authenticate(), AuthorizeAdmin()}

	router.Get("/", ctrl.List)
	router.Get("/admin/all", append(admin, ctrl.ListAll)...)
	router.Get("/:id", ctrl.Get)
	router.Post("/", append(admin, ctrl.Create)...)
	router.Put("/:id", append(admin, ctrl.Update)...)
	router.Delete("/:id", append(admin, ctrl.Delete)...)

	return ctrl
}

// HealthStatus is the /api/health body
type HealthStatus struct {
	Success     bool    `json:"success"`
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime,omitempty"`
	Environment string  `json:"environment,omitempty"`
	Database    string  `json:"database"`
}

func healthHandler(repo RepositoryManager, env string, logger Logger) fiber.Handler {
	started := time.Now()

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), DefaultHealthTimeout)
		defer cancel()

		now := time.Now().UTC().Format(time.RFC3339)

		if err := repo.Ping(ctx); err != nil {
			logger.Error("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthStatus{
				Status:    "unhealthy",
				Timestamp: now,
				Database:  "disconnected",
			})
		}

		return c.JSON(HealthStatus{
			Success:     true,
			Status:      "healthy",
			Timestamp:   now,
			Uptime:      time.Since(started).Seconds(),
			Environment: env,
			Database:    "connected",
		})
	}
}

func indexHandler(opts HTTPOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": opts.Name,
			"version": opts.Version,
			"endpoints": fiber.Map{
				"health": "/api/health",
				"auth":   "/api/auth",
				"posts":  "/api/posts",
			},
		})
	}
}
