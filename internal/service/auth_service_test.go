package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/enquirydesk/enquiry-service/internal/auth"
	"github.com/enquirydesk/enquiry-service/internal/domain"
	"github.com/enquirydesk/enquiry-service/internal/repository"
	apperrors "github.com/enquirydesk/enquiry-service/pkg/util/errorutil"
)

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc, err := NewAuthService(AuthDependencies{
		UserRepo:     store.Users(),
		TokenManager: auth.NewTokenManager("test-secret", time.Hour),
		BcryptCost:   bcrypt.MinCost,
	})
	require.NoError(t, err)
	return svc, store
}

func TestRegisterForcesUserRole(t *testing.T) {
	svc, _ := newAuthService(t)

	u, err := svc.Register(context.Background(), " Jane ", "Jane@Example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, u.Role)
	require.Equal(t, "Jane", u.Name)
	require.Equal(t, "jane@example.com", u.Email)

	_, err = svc.Register(context.Background(), "Again", "jane@example.com", "password123")
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLoginIssuesParsableToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	u, err := svc.Register(ctx, "Jane", "jane@example.com", "password123")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "JANE@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, u.ID, result.User.ID)

	identity, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, domain.Identity{ID: u.ID, Role: domain.RoleUser}, identity)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	_, err := svc.Register(ctx, "Jane", "jane@example.com", "password123")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "jane@example.com", "wrong-password")
	_, unknownEmail := svc.Login(ctx, "ghost@example.com", "password123")

	require.ErrorIs(t, wrongPassword, apperrors.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, apperrors.ErrInvalidCredentials)

	a, b := apperrors.ToDomainError(wrongPassword), apperrors.ToDomainError(unknownEmail)
	require.Equal(t, a.Code, b.Code)
	require.Equal(t, a.Message, b.Message)
	require.Equal(t, a.HTTPStatus, b.HTTPStatus)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	u, err := svc.Register(ctx, "Jane", "jane@example.com", "password123")
	require.NoError(t, err)
	identity := u.Identity()

	err = svc.ChangePassword(ctx, identity, "bad", "newpassword1")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, identity, "password123", "newpassword1"))

	_, err = svc.Login(ctx, "jane@example.com", "password123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "jane@example.com", "newpassword1")
	require.NoError(t, err)
}

func TestMeForMissingAccount(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Me(context.Background(), domain.Identity{ID: "gone", Role: domain.RoleUser})
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
