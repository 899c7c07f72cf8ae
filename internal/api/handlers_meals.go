package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mealsnap/internal/services"
)

func (handler *Handler) ListMeals(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	page, err := handler.mealService.ListMeals(sess, parseLimit(c.Query("limit")), c.Query("cursor"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load meals")
	}
	return c.JSON(page)
}

func (handler *Handler) GetMeal(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	meal, err := handler.mealService.GetMeal(sess, c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load meal")
	}
	return c.JSON(meal)
}

// AdjustMeal edits one item of a saved meal and records the change.
func (handler *Handler) AdjustMeal(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	index, input, ok := parseItemEdit(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	meal, err := handler.mealService.AdjustMeal(sess, c.Params("id"), index, input.Field, rawAmount(input.Value))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update meal")
	}
	return c.JSON(meal)
}

func (handler *Handler) DeleteMeal(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if err := handler.mealService.DeleteMeal(sess, c.Params("id")); err != nil {
		return handler.respondServiceError(c, err, "failed to delete meal")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) DeleteAllMeals(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	deleted, err := handler.mealService.DeleteAllMeals(c.UserContext(), sess)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to delete meals")
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

func (handler *Handler) MealPhoto(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	location, err := handler.mealService.MealPhoto(c.UserContext(), sess, c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load photo")
	}
	return sendPhoto(c, location)
}

func sendPhoto(c *fiber.Ctx, location services.PhotoLocation) error {
	if location.URL != "" {
		return c.Redirect(location.URL, fiber.StatusFound)
	}
	c.Set(fiber.HeaderContentType, location.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.SendStream(location.Body)
}
