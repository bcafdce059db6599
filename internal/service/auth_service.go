package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/contactkeeper/contact-service/internal/auth"
	"github.com/contactkeeper/contact-service/internal/config"
	"github.com/contactkeeper/contact-service/internal/domain"
	"github.com/contactkeeper/contact-service/internal/events"
	"github.com/contactkeeper/contact-service/internal/repository"
	apperrors "github.com/contactkeeper/contact-service/pkg/util"
)

// dummyPassword is hashed once at startup so unknown-email logins pay the same bcrypt cost.
const dummyPassword = "contact-service/unknown-account"

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	dummyHash  string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service. It fails when the signing secret is missing.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) (*AuthService, error) {
	tokenMgr, err := auth.NewTokenManager(cfg.AccessTokenSecret, cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		hasher:     hasher,
		tokenMgr:   tokenMgr,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		dummyHash:  dummyHash,
	}, nil
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *domain.User
}

// RegisterUser creates a new account. Values are stored as given; only empty strings count as missing.
func (s *AuthService) RegisterUser(ctx context.Context, username, email, password string) (*domain.User, error) {
	if missing := missingFields(field{"username", username}, field{"email", email}, field{"password", password}); len(missing) > 0 {
		return nil, apperrors.NewMissingField("all the fields are mandatory", missing...)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewDuplicateEmail("user already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError("password is too long", map[string]any{"max_bytes": 72})
		}
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail("user already registered")
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventUserRegistered,
		ActorID:    user.ID,
		ResourceID: user.ID,
		Payload:    events.UserRegisteredPayload{Username: user.Username, Email: user.Email},
	})
	return user, nil
}

// LoginUser authenticates a user and issues an access token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*LoginResult, error) {
	if missing := missingFields(field{"email", email}, field{"password", password}); len(missing) > 0 {
		return nil, apperrors.NewMissingField("all fields are mandatory", missing...)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInternalError(err)
		}
		s.hasher.Verify(password, s.dummyHash)
		return nil, apperrors.NewInvalidCredentials("email or password not valid")
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.NewInvalidCredentials("email or password not valid")
	}

	token, exp, err := s.tokenMgr.Issue(user.Subject())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Debug("access token issued", zap.String("user_id", user.ID), zap.Time("expires_at", exp))
	return &LoginResult{AccessToken: token, ExpiresAt: exp, User: user}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

type field struct {
	name  string
	value string
}

func missingFields(fields ...field) []string {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
