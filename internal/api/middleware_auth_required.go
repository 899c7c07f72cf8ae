package api

import (
	"github.com/gofiber/fiber/v2"
)

// AuthRequired resolves the request's session and stores it in Locals.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	sess, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextSessionKey, sess)
	return c.Next()
}
