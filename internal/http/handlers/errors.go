package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"basket/internal/domain"
	applog "basket/internal/log"
)

// statusOf maps service errors onto HTTP codes.
func statusOf(err error) int {
	var se *domain.StockError
	switch {
	case errors.As(err, &se), errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// fail writes err as {"message": ...} and logs it under action.
func fail(c *fiber.Ctx, action string, err error) error {
	status := statusOf(err)
	c.Status(status)
	switch {
	case status >= 500:
		applog.Error(c, action+".fail", err, nil)
	case status == fiber.StatusNotFound || status == fiber.StatusConflict:
		applog.Info(c, action+".fail", map[string]any{"reason": err.Error()})
	default:
		applog.Security(c, action+".fail", map[string]any{"reason": err.Error()})
	}
	return c.JSON(fiber.Map{"message": err.Error()})
}

// ErrorHandler catches anything a handler returned without writing a response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return fail(c, "server.error", err)
}

// badBody is the response for an unparseable JSON body.
func badBody(c *fiber.Ctx, action string) error {
	return fail(c, action, domain.Invalid("Invalid request body"))
}
