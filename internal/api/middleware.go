package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mealsnap/internal/session"
)

const (
	authCookieName    = "mealsnap_auth"
	contextSessionKey = "current_session"
)

func currentSession(c *fiber.Ctx) (session.Session, bool) {
	sess, ok := c.Locals(contextSessionKey).(session.Session)
	if !ok || sess.UserID == 0 {
		return session.Session{}, false
	}
	return sess, true
}
