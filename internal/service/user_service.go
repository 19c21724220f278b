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

// RoleFilterAll lists users of every role.
const RoleFilterAll = "all"

const userListCacheKey = "users:list:"

// UserService implements admin user management.
type UserService struct {
	users      repository.UserRepository
	cache      cache.Cache
	cacheTTL   time.Duration
	bcryptCost int
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Cache      cache.Cache
	CacheTTL   time.Duration
	BcryptCost int
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// UserCreateInput describes an admin created account.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UserUpdateInput is a partial update; a new password is re-hashed.
type UserUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		cache:      c,
		cacheTTL:   deps.CacheTTL,
		bcryptCost: deps.BcryptCost,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns users with the given role, newest first. An empty filter
// means role "user"; RoleFilterAll lists everyone.
func (s *UserService) List(ctx context.Context, roleFilter string) ([]domain.User, error) {
	filter := repository.UserFilter{}
	key := RoleFilterAll
	if !strings.EqualFold(strings.TrimSpace(roleFilter), RoleFilterAll) {
		role, err := domain.ParseRole(roleFilter)
		if err != nil {
			return nil, apperrors.NewFieldError("role", "must be one of: user staff admin all")
		}
		filter.Role = &role
		key = string(role)
	}

	var cached []domain.User
	if found, err := s.cache.Get(ctx, userListCacheKey+key, &cached); err != nil {
		s.logger.Warn("user list cache read failed", zap.Error(err))
	} else if found {
		return cached, nil
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	if err := s.cache.Set(ctx, userListCacheKey+key, users, s.cacheTTL); err != nil {
		s.logger.Warn("user list cache write failed", zap.Error(err))
	}
	return users, nil
}

// Get fetches a single user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if !isUUID(id) {
		return nil, userNotFound(id)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserError(err, id)
	}
	return user, nil
}

// Create adds an account with any role.
func (s *UserService) Create(ctx context.Context, actor domain.Identity, input UserCreateInput) (*domain.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.NewFieldError("role", "must be one of: user staff admin")
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapUserError(err, "")
	}

	s.afterWrite(ctx, events.EventUserCreated, actor, user)
	return user, nil
}

// Update changes profile fields, role or password of a user.
func (s *UserService) Update(ctx context.Context, actor domain.Identity, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewFieldError("role", "must be one of: user staff admin")
		}
		user.Role = *input.Role
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserError(err, id)
	}

	s.afterWrite(ctx, events.EventUserUpdated, actor, user)
	return user, nil
}

// Delete removes a user. Users that created enquiries cannot be removed and
// an admin cannot remove their own account.
func (s *UserService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user.ID == actor.ID {
		return apperrors.NewConflict("cannot delete your own account", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return mapUserError(err, id)
	}

	s.afterWrite(ctx, events.EventUserDeleted, actor, user)
	return nil
}

// EnsureAdmin creates an admin account with the given credentials unless the
// email is already registered. It reports whether an account was created. An
// existing non-admin account is left untouched and logged as a warning.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		if existing.Role != domain.RoleAdmin {
			s.logger.Warn("bootstrap admin email belongs to a non-admin account; no admin created",
				zap.String("email", email),
				zap.String("role", string(existing.Role)))
		}
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	_, err := s.Create(ctx, domain.Identity{}, UserCreateInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *UserService) afterWrite(ctx context.Context, eventType events.EventType, actor domain.Identity, user *domain.User) {
	s.invalidateListings(ctx)
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		Type:      eventType,
		SubjectID: user.ID,
		Actor:     events.ActorFrom(actor),
		Payload:   events.UserPayload{Email: user.Email, Role: user.Role},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func (s *UserService) invalidateListings(ctx context.Context) {
	invalidateUserListings(ctx, s.cache, s.logger)
}

// invalidateUserListings drops every cached user listing. Any write to the
// users table must call it.
func invalidateUserListings(ctx context.Context, c cache.Cache, logger *zap.Logger) {
	keys := []string{userListCacheKey + RoleFilterAll}
	for _, role := range domain.Roles {
		keys = append(keys, userListCacheKey+string(role))
	}
	if err := c.Delete(ctx, keys...); err != nil {
		logger.Warn("user list cache invalidation failed", zap.Error(err))
	}
}

func mapUserError(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return userNotFound(id)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewConflict("email already registered", map[string]any{"email": "already registered"})
	case errors.Is(err, repository.ErrReferenceViolation):
		return apperrors.NewConflict("user has filed enquiries and cannot be deleted", nil)
	}
	return err
}

func userNotFound(id string) error {
	details := map[string]any{}
	if id != "" {
		details["id"] = id
	}
	return apperrors.NewNotFound("user", details)
}
