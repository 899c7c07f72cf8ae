package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mealsnap/internal/services"
)

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if err := handler.authService.ChangePassword(sess, input.CurrentPassword, input.NewPassword); err != nil {
		return handler.respondServiceError(c, err, "failed to update password")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// DeleteAccount removes the account with all meals, drafts and photos, then
// drops the session cookie.
func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := deleteAccountInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if err := handler.authService.DeleteAccount(c.UserContext(), sess, input.Password); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return handler.respondServiceError(c, err, "failed to delete account")
	}

	handler.clearAuthCookie(c)
	handler.logger.Info("account deleted", "user_id", sess.UserID)
	return c.JSON(fiber.Map{"ok": true})
}
