package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/terraincognita07/mealsnap/internal/models"
	"github.com/terraincognita07/mealsnap/internal/report"
	"github.com/terraincognita07/mealsnap/internal/session"
)

type ReportMealStore interface {
	ListByUserRange(userID uint, from time.Time, to time.Time) ([]models.Meal, error)
}

// ReportService builds period summaries and CSV exports from saved meals.
type ReportService struct {
	meals    ReportMealStore
	location *time.Location
}

func NewReportService(meals ReportMealStore, location *time.Location) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{meals: meals, location: location}
}

// PeriodMeals returns the user's meals inside period, newest first.
func (service *ReportService) PeriodMeals(sess session.Session, period report.Period, now time.Time) ([]models.Meal, error) {
	if sess.UserID == 0 {
		return nil, session.ErrNoSession
	}
	start, end := period.Range(now, service.location)
	meals, err := service.meals.ListByUserRange(sess.UserID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load period meals: %w", err)
	}
	return report.FilterByRange(meals, start, end), nil
}

func (service *ReportService) Summary(sess session.Session, period report.Period, now time.Time) (report.Summary, error) {
	meals, err := service.PeriodMeals(sess, period, now)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(meals, period), nil
}

// ExportCSV renders the period as CSV and names the attachment after the
// period and the local date.
func (service *ReportService) ExportCSV(sess session.Session, period report.Period, now time.Time) (string, []byte, error) {
	meals, err := service.PeriodMeals(sess, period, now)
	if err != nil {
		return "", nil, err
	}

	var output bytes.Buffer
	if err := report.WriteCSV(&output, meals); err != nil {
		return "", nil, fmt.Errorf("render csv: %w", err)
	}
	return report.Filename(period, now.In(service.location)), output.Bytes(), nil
}
