package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mealsnap/internal/estimation"
	"github.com/terraincognita07/mealsnap/internal/nutrition"
	"github.com/terraincognita07/mealsnap/internal/services"
	"github.com/terraincognita07/mealsnap/internal/session"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognised is logged and answered with fallback as a 500.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrMealNotFound):
		return apiError(c, fiber.StatusNotFound, "meal not found")
	case errors.Is(err, services.ErrDraftNotFound):
		return apiError(c, fiber.StatusNotFound, "draft not found")
	case errors.Is(err, services.ErrPhotoUnavailable):
		return apiError(c, fiber.StatusNotFound, "photo not found")
	case errors.Is(err, nutrition.ErrItemIndexOutOfRange):
		return apiError(c, fiber.StatusBadRequest, "invalid item index")
	case errors.Is(err, nutrition.ErrFieldNotEditable):
		return apiError(c, fiber.StatusBadRequest, "invalid field")
	case errors.Is(err, services.ErrInvalidMealCursor):
		return apiError(c, fiber.StatusBadRequest, "invalid cursor")
	case errors.Is(err, services.ErrPhotoRequired):
		return apiError(c, fiber.StatusBadRequest, "photo is required")
	case errors.Is(err, services.ErrPhotoTooLarge):
		return apiError(c, fiber.StatusBadRequest, "photo is too large")
	case errors.Is(err, services.ErrPhotoUnsupported):
		return apiError(c, fiber.StatusBadRequest, "photo must be an image")
	case errors.Is(err, services.ErrWeakPassword):
		return apiError(c, fiber.StatusBadRequest, "weak password")
	case errors.Is(err, services.ErrPasswordMismatch):
		return apiError(c, fiber.StatusBadRequest, "invalid password")
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	case errors.Is(err, services.ErrEmailAlreadyRegistered):
		return apiError(c, fiber.StatusConflict, "email already exists")
	case errors.Is(err, estimation.ErrAnalysisFailed):
		handler.logger.Warn("photo analysis failed", "path", c.Path(), "error", err)
		return apiError(c, fiber.StatusBadGateway, "analysis failed")
	default:
		handler.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return apiError(c, fiber.StatusInternalServerError, fallback)
	}
}
