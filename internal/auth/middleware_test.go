package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/enquirydesk/enquiry-service/internal/domain"
	apperrors "github.com/enquirydesk/enquiry-service/pkg/util/errorutil"
)

func newGuardedApp(tm *TokenManager, roles ...domain.Role) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	mw := NewAuthMiddleware(tm)
	app.Get("/guarded", mw.Handle, RequireRoles(roles...), func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(identity.ID + ":" + identity.Role.String())
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestGuardAuthenticationFailures(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	app := newGuardedApp(tm, EnquiryHandlers...)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doGet(t, app, tt.header)
			require.Equal(t, http.StatusUnauthorized, status)
			require.Equal(t, apperrors.CodeUnauthenticated, body)
		})
	}
}

func TestGuardAuthorization(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	app := newGuardedApp(tm, EnquiryHandlers...)

	tests := []struct {
		role       domain.Role
		wantStatus int
	}{
		{domain.RoleUser, http.StatusOK},
		{domain.RoleAdmin, http.StatusOK},
		{domain.RoleStaff, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			token, _, err := tm.GenerateToken(domain.Identity{ID: "id-1", Role: tt.role})
			require.NoError(t, err)

			status, body := doGet(t, app, "Bearer "+token)
			require.Equal(t, tt.wantStatus, status)
			if tt.wantStatus == http.StatusOK {
				require.Equal(t, "id-1:"+tt.role.String(), body)
			}
		})
	}
}

func TestGuardCreatorSetIsUserOnly(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	app := newGuardedApp(tm, EnquiryCreators...)

	token, _, err := tm.GenerateToken(domain.Identity{ID: "admin-1", Role: domain.RoleAdmin})
	require.NoError(t, err)
	status, _ := doGet(t, app, "Bearer "+token)
	require.Equal(t, http.StatusForbidden, status)
}

func TestRequireRolesWithoutAuthenticationIsUnauthenticated(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.SendStatus(de.HTTPStatus)
		},
	})
	app.Get("/x", RequireRoles(domain.RoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
