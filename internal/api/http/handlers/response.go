package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/property-moderation/internal/api/dto"
	"github.com/estatehub/property-moderation/internal/auth"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
	"github.com/estatehub/property-moderation/pkg/util/pagination"
)

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(dto.SuccessEnvelope{Success: true, Message: message, Data: data})
}

func respondPage(c *fiber.Ctx, message string, data interface{}, meta pagination.Meta) error {
	return c.Status(fiber.StatusOK).JSON(dto.SuccessEnvelope{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    &dto.Meta{Pagination: meta},
	})
}

// parseBody decodes a JSON body. An empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("Invalid request payload", nil)
	}
	return nil
}

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("Authentication required")
	}
	return p, nil
}
