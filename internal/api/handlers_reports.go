package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mealsnap/internal/report"
)

func (handler *Handler) ReportSummary(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	summary, err := handler.reportService.Summary(sess, report.ParsePeriod(c.Query("period")), handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to build summary")
	}
	return c.JSON(summary)
}

func (handler *Handler) ReportCSV(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	filename, body, err := handler.reportService.ExportCSV(sess, report.ParsePeriod(c.Query("period")), handler.now())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to build export")
	}

	setExportAttachmentHeaders(c, "text/csv", filename)
	return c.Send(body)
}
