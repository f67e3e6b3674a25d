package blog

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Auther registers users, logs them in and resolves sessions from tokens
type Auther struct {
	repo         RepositoryManager
	provider     IdentityProvider
	tokenService TokenService
	cfg          Config
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, opts Config) (*Auther, error) {
	keys, err := NewSigningKeys(opts.GetSigningKey(), opts.GetPreviousSigningKeys()...)
	if err != nil {
		return nil, err
	}

	logger := resolveLogger("blog.auth", nil)

	return &Auther{
		repo:         repo,
		provider:     NewUserProvider(repo.Users(), NewBcryptHasher(opts.GetPasswordCost())),
		tokenService: NewTokenService(keys, opts.GetTokenExpiration(), opts.GetIssuer(), WithTokenLogger(logger)),
		cfg:          opts,
		logger:       logger,
		activitySink: noopActivitySink{},
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = resolveLogger("blog.auth", logger)
	if p, ok := s.provider.(*UserProvider); ok {
		p.WithLogger(logger)
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService replaces the token service, e.g. one with a fixed clock
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithIdentityProvider replaces the identity provider
func (s *Auther) WithIdentityProvider(provider IdentityProvider) *Auther {
	if provider != nil {
		s.provider = provider
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Register creates the user and issues its first token. The user row is
// rolled back if the token cannot be signed.
func (s *Auther) Register(ctx context.Context, input UserInput) (*User, string, error) {
	var user *User
	var token string

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := s.repo.Users().CreateTx(ctx, tx, input)
		if err != nil {
			return err
		}

		token, err = s.tokenService.Generate(IdentityFromUser(created))
		if err != nil {
			return err
		}

		user = created
		return nil
	})
	if err != nil {
		if isInternal(err) {
			s.logger.Error("register failed", "error", err)
		}
		return nil, "", err
	}

	recordActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: ActivityEventRegistered,
		Actor:     actorFromUser(user),
		UserID:    formatID(user.ID),
	})

	return user, token, nil
}

// Login checks the credentials and issues a token
func (s *Auther) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Debug("login verify identity error", "error", err)
		recordActivity(ctx, s.activitySink, s.logger, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Actor:     ActorRef{Type: "unknown"},
			Metadata: map[string]any{
				"identifier": normalizeEmail(email),
				"error":      err.Error(),
			},
		})
		return nil, "", err
	}

	token, err := s.tokenService.Generate(IdentityFromUser(user))
	if err != nil {
		s.logger.Error("login token generation failed", "error", err)
		return nil, "", err
	}

	recordActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Actor:     actorFromUser(user),
		UserID:    formatID(user.ID),
	})

	return user, token, nil
}

// SessionFromToken validates a raw token
func (s *Auther) SessionFromToken(raw string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Debug("session from token validation failed", "error", err)
		return nil, err
	}
	return claims, nil
}

// IdentityFromSession loads the user a validated token belongs to.
// Users deleted after issuance fail with ErrTokenUserNotFound.
func (s *Auther) IdentityFromSession(ctx context.Context, claims AuthClaims) (*User, error) {
	if claims == nil {
		return nil, ErrTokenInvalid
	}

	user, err := s.provider.FindIdentityByID(ctx, claims.UserID())
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrTokenUserNotFound
		}
		s.logger.Error("identity from session lookup failed", "error", err)
		return nil, err
	}
	return user, nil
}
