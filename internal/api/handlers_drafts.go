package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mealsnap/internal/services"
)

// CreateDraft accepts a multipart "photo" upload, runs the estimator and
// returns the draft for review.
func (handler *Handler) CreateDraft(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return handler.respondServiceError(c, services.ErrPhotoRequired, "failed to read photo")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "failed to read photo")
	}
	defer file.Close()

	draft, err := handler.mealService.CreateDraft(c.UserContext(), sess, file)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create draft")
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

func (handler *Handler) GetDraft(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	draft, err := handler.mealService.GetDraft(sess, c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load draft")
	}
	return c.JSON(draft)
}

func (handler *Handler) UpdateDraftItem(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	index, input, ok := parseItemEdit(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	draft, err := handler.mealService.UpdateDraftItem(sess, c.Params("id"), index, input.Field, rawAmount(input.Value))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update draft")
	}
	return c.JSON(draft)
}

func (handler *Handler) SaveDraft(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := saveDraftInput{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
	}

	meal, err := handler.mealService.SaveDraft(sess, c.Params("id"), input.Notes)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to save meal")
	}
	return c.Status(fiber.StatusCreated).JSON(meal)
}

func (handler *Handler) DiscardDraft(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if err := handler.mealService.DiscardDraft(sess, c.Params("id")); err != nil {
		return handler.respondServiceError(c, err, "failed to discard draft")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) DraftPhoto(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	location, err := handler.mealService.DraftPhoto(c.UserContext(), sess, c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load photo")
	}
	return sendPhoto(c, location)
}
