package handler

import (
	"errors"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// statusForKind maps error kinds to HTTP status codes. Every failure out of
// the service layer passes through here; nothing is string-matched.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindInsufficientStock,
		apperr.KindAssetUnavailable,
		apperr.KindAlreadyBorrowed,
		apperr.KindNotBorrowed,
		apperr.KindNotReturned,
		apperr.KindCannotDeleteReturn,
		apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body := fiber.Map{"error": appErr.Message, "kind": appErr.Kind}
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
		return c.Status(statusForKind(appErr.Kind)).JSON(body)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}

// getActor builds the acting user from the JWT context set by RequireAuth.
func getActor(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if id, ok := c.Locals("user_id").(string); ok {
		if parsed, err := uuid.Parse(id); err == nil {
			actor.ID = parsed
		}
	}
	if name, ok := c.Locals("user_name").(string); ok {
		actor.Name = name
	}
	if email, ok := c.Locals("user_email").(string); ok {
		actor.Email = email
	}
	return actor
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}
