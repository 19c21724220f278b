package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/enquirydesk/enquiry-service/internal/auth"
	"github.com/enquirydesk/enquiry-service/internal/domain"
	apperrors "github.com/enquirydesk/enquiry-service/pkg/util/errorutil"
	"github.com/enquirydesk/enquiry-service/pkg/util/validation"
)

// bind parses a JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return validation.Struct(dst)
}

func callerIdentity(c *fiber.Ctx) (domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthenticated("authentication required")
	}
	return identity, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.NewFieldError(key, "must be a non-negative integer")
	}
	return v, nil
}
