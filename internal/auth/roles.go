package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/enquirydesk/enquiry-service/internal/domain"
	apperrors "github.com/enquirydesk/enquiry-service/pkg/util/errorutil"
)

// Role sets declared per route group.
var (
	EnquiryCreators    = []domain.Role{domain.RoleUser}
	EnquiryHandlers    = []domain.Role{domain.RoleUser, domain.RoleAdmin}
	UserAdministrators = []domain.Role{domain.RoleAdmin}
)

// RequireRoles ensures the authenticated identity holds one of the allowed
// roles. It must run after AuthMiddleware.Handle.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !identity.Role.In(allowed...) {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures any identity is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}
