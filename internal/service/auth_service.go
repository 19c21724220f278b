package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/enquirydesk/enquiry-service/internal/auth"
	"github.com/enquirydesk/enquiry-service/internal/cache"
	"github.com/enquirydesk/enquiry-service/internal/domain"
	"github.com/enquirydesk/enquiry-service/internal/events"
	"github.com/enquirydesk/enquiry-service/internal/repository"
	apperrors "github.com/enquirydesk/enquiry-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	cache      cache.Cache
	bcryptCost int
	dummyHash  string
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	// Cache holds the admin user listings; registrations invalidate them.
	Cache      cache.Cache
	BcryptCost int
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) (*AuthService, error) {
	// Compared against when the email is unknown so both failure paths cost one bcrypt run.
	dummy, err := auth.HashPassword("enquiry-service-dummy-password", deps.BcryptCost)
	if err != nil {
		return nil, err
	}
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.TokenManager,
		cache:      c,
		bcryptCost: deps.BcryptCost,
		dummyHash:  dummy,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}, nil
}

// Register creates a new account. The role is always user.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapUserError(err, "")
	}
	invalidateUserListings(ctx, s.cache, s.logger)

	if s.dispatcher != nil {
		event := events.Event{
			Type:      events.EventUserCreated,
			SubjectID: user.ID,
			Actor:     events.Actor{UserID: user.ID, Role: user.Role},
			Payload:   events.UserPayload{Email: user.Email, Role: user.Role},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return user, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password yield the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		_ = auth.ComparePassword(s.dummyHash, password)
		return nil, apperrors.NewInvalidCredentials()
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.Identity())
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated("account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, identity domain.Identity, currentPassword, newPassword string) error {
	user, err := s.Me(ctx, identity)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewInvalidCredentials()
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return mapUserError(err, identity.ID)
	}
	invalidateUserListings(ctx, s.cache, s.logger)
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
