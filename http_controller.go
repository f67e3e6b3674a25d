package blog

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AuthController serves the register, login and me endpoints
type AuthController struct {
	Logger Logger
	Auther *Auther
}

type AuthControllerOption func(*AuthController) *AuthController

// WithAuthControllerLogger sets the controller logger
func WithAuthControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func NewAuthController(auther *Auther, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Auther: auther,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	c.Logger = resolveLogger("blog.http.auth", c.Logger)

	return c
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate only checks presence, credentials are verified by the Auther
func (r LoginRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email: cannot be blank")
	}
	if r.Password == "" {
		missing = append(missing, "password: cannot be blank")
	}
	if len(missing) > 0 {
		err := ErrValidation.Clone().WithMetadata(map[string]any{"errors": missing})
		err.Message = "Email and password are required"
		return err
	}
	return nil
}

// AuthResult is returned by register and login
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)
	if err := bindJSON(c, payload); err != nil {
		return err
	}

	user, token, err := a.Auther.Register(c.UserContext(), UserInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     ParseRole(payload.Role),
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, "User registered successfully", AuthResult{
		User:  user,
		Token: token,
	})
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := bindJSON(c, payload); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	user, token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, "Login successful", AuthResult{
		User:  user,
		Token: token,
	})
}

func (a *AuthController) Me(c *fiber.Ctx) error {
	user, ok := UserFromFiber(c)
	if !ok {
		return ErrMissingIdentity
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"user": user})
}
