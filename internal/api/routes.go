package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	drafts := api.Group("/drafts", handler.AuthRequired)
	drafts.Post("", handler.CreateDraft)
	drafts.Get("/:id", handler.GetDraft)
	drafts.Get("/:id/photo", handler.DraftPhoto)
	drafts.Patch("/:id/items/:index", handler.UpdateDraftItem)
	drafts.Post("/:id/save", handler.SaveDraft)
	drafts.Delete("/:id", handler.DiscardDraft)

	meals := api.Group("/meals", handler.AuthRequired)
	meals.Get("", handler.ListMeals)
	meals.Delete("", handler.DeleteAllMeals)
	meals.Get("/:id", handler.GetMeal)
	meals.Get("/:id/photo", handler.MealPhoto)
	meals.Patch("/:id/items/:index", handler.AdjustMeal)
	meals.Delete("/:id", handler.DeleteMeal)

	reports := api.Group("/reports", handler.AuthRequired)
	reports.Get("/summary", handler.ReportSummary)
	reports.Get("/csv", handler.ReportCSV)

	account := api.Group("/account", handler.AuthRequired)
	account.Post("/password", handler.ChangePassword)
	account.Delete("", handler.DeleteAccount)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
