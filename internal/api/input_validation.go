package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func parseCredentials(c *fiber.Ctx) (credentialsInput, error) {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return credentialsInput{}, err
	}
	credentials.RememberMe = credentials.RememberMe || parseBoolValue(c.FormValue("remember_me"))
	return credentials, nil
}

func parseItemEdit(c *fiber.Ctx) (int, itemEditInput, bool) {
	index, err := strconv.Atoi(strings.TrimSpace(c.Params("index")))
	if err != nil {
		return 0, itemEditInput{}, false
	}
	input := itemEditInput{}
	if err := c.BodyParser(&input); err != nil {
		return 0, itemEditInput{}, false
	}
	return index, input, true
}

// rawAmount renders a decoded JSON value back into the text the amount
// parser expects.
func rawAmount(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

func parseBoolValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
