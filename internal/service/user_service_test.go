package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/enquirydesk/enquiry-service/internal/auth"
	"github.com/enquirydesk/enquiry-service/internal/domain"
	"github.com/enquirydesk/enquiry-service/internal/repository"
	apperrors "github.com/enquirydesk/enquiry-service/pkg/util/errorutil"
)

// mapCache is a JSON round-tripping cache for tests.
type mapCache struct {
	items map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{items: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	b, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = b
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func newUserService(t *testing.T) (*UserService, *repository.MemoryStore, *mapCache) {
	t.Helper()
	store := repository.NewMemoryStore()
	c := newMapCache()
	svc := NewUserService(UserDependencies{
		UserRepo:   store.Users(),
		Cache:      c,
		CacheTTL:   time.Minute,
		BcryptCost: bcrypt.MinCost,
	})
	return svc, store, c
}

func TestUserListDefaultsToUserRole(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)
	root := domain.Identity{ID: "root", Role: domain.RoleAdmin}

	_, err := svc.Create(ctx, root, UserCreateInput{Name: "Cust", Email: "cust@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, root, UserCreateInput{Name: "Staff", Email: "staff@example.com", Password: "password123", Role: domain.RoleStaff})
	require.NoError(t, err)

	users, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "cust@example.com", users[0].Email)
	require.Empty(t, users[0].PasswordHash)

	all, err := svc.List(ctx, "all")
	require.NoError(t, err)
	require.Len(t, all, 2)

	staff, err := svc.List(ctx, "staff")
	require.NoError(t, err)
	require.Len(t, staff, 1)

	_, err = svc.List(ctx, "root")
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUserListCacheInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	svc, _, c := newUserService(t)
	root := domain.Identity{ID: "root", Role: domain.RoleAdmin}

	first, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, first)
	require.Contains(t, c.items, userListCacheKey+"user")

	created, err := svc.Create(ctx, root, UserCreateInput{Name: "Cust", Email: "Cust@Example.com ", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, "cust@example.com", created.Email)
	require.NotContains(t, c.items, userListCacheKey+"user")

	second, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, second, 1)

	cached, err := svc.List(ctx, "user")
	require.NoError(t, err)
	require.Equal(t, second[0].ID, cached[0].ID)
}

func TestUserCreateDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)
	root := domain.Identity{ID: "root", Role: domain.RoleAdmin}

	_, err := svc.Create(ctx, root, UserCreateInput{Name: "A", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, root, UserCreateInput{Name: "B", Email: "A@example.com", Password: "password123"})
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserUpdateRehashesPassword(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newUserService(t)
	root := domain.Identity{ID: "root", Role: domain.RoleAdmin}

	u, err := svc.Create(ctx, root, UserCreateInput{Name: "A", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	role := domain.RoleStaff
	updated, err := svc.Update(ctx, root, u.ID, UserUpdateInput{Name: strPtr("Alice"), Password: strPtr("newpassword1"), Role: &role})
	require.NoError(t, err)
	require.Equal(t, "Alice", updated.Name)
	require.Equal(t, domain.RoleStaff, updated.Role)

	stored, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, auth.ComparePassword(stored.PasswordHash, "newpassword1"))

	_, err = svc.Update(ctx, root, "nope", UserUpdateInput{Name: strPtr("x")})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserDeleteRules(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newUserService(t)
	admin, err := svc.Create(ctx, domain.Identity{}, UserCreateInput{Name: "Admin", Email: "admin@example.com", Password: "password123", Role: domain.RoleAdmin})
	require.NoError(t, err)
	actor := admin.Identity()

	creator, err := svc.Create(ctx, actor, UserCreateInput{Name: "C", Email: "c@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, store.Enquiries().Create(ctx, &domain.Enquiry{
		CustomerName: "Jane",
		Status:       domain.EnquiryStatusOpen,
		CreatedBy:    creator.ID,
	}))

	require.ErrorIs(t, svc.Delete(ctx, actor, creator.ID), apperrors.ErrConflict)
	require.ErrorIs(t, svc.Delete(ctx, actor, admin.ID), apperrors.ErrConflict)

	spare, err := svc.Create(ctx, actor, UserCreateInput{Name: "S", Email: "s@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, actor, spare.ID))
	require.ErrorIs(t, svc.Delete(ctx, actor, spare.ID), apperrors.ErrNotFound)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newUserService(t)

	created, err := svc.EnsureAdmin(ctx, "Root", "Root@example.com", "password123")
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "Root", "root@example.com", "password123")
	require.NoError(t, err)
	require.False(t, created)

	u, err := store.Users().GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)
}

func TestEnsureAdminWarnsWhenEmailBelongsToNonAdmin(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	store := repository.NewMemoryStore()
	svc := NewUserService(UserDependencies{
		UserRepo:   store.Users(),
		BcryptCost: bcrypt.MinCost,
		Logger:     zap.New(core),
	})

	_, err := svc.Create(ctx, domain.Identity{}, UserCreateInput{Name: "Cust", Email: "boss@example.com", Password: "password123"})
	require.NoError(t, err)

	created, err := svc.EnsureAdmin(ctx, "Boss", "Boss@example.com", "password123")
	require.NoError(t, err)
	require.False(t, created)

	warnings := logs.FilterMessageSnippet("non-admin").All()
	require.Len(t, warnings, 1)
	require.Equal(t, "user", warnings[0].ContextMap()["role"])

	u, err := store.Users().GetByEmail(ctx, "boss@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, u.Role)
}

func TestEnsureAdminExistingAdminIsQuiet(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	svc := NewUserService(UserDependencies{
		UserRepo:   repository.NewMemoryStore().Users(),
		BcryptCost: bcrypt.MinCost,
		Logger:     zap.New(core),
	})

	_, err := svc.EnsureAdmin(ctx, "Root", "root@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.EnsureAdmin(ctx, "Root", "root@example.com", "password123")
	require.NoError(t, err)
	require.Zero(t, logs.Len())
}

func TestSelfServiceWritesInvalidateCachedListings(t *testing.T) {
	ctx := context.Background()
	users, store, c := newUserService(t)
	authService, err := NewAuthService(AuthDependencies{
		UserRepo:     store.Users(),
		TokenManager: auth.NewTokenManager("test-secret", time.Hour),
		Cache:        c,
		BcryptCost:   bcrypt.MinCost,
	})
	require.NoError(t, err)

	before, err := users.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, before)

	registered, err := authService.Register(ctx, "New", "new@example.com", "password123")
	require.NoError(t, err)

	after, err := users.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, after, 1)
	require.Equal(t, registered.ID, after[0].ID)
	require.Contains(t, c.items, userListCacheKey+"user")

	require.NoError(t, authService.ChangePassword(ctx, registered.Identity(), "password123", "password456"))
	require.NotContains(t, c.items, userListCacheKey+"user")
}
