package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/mealsnap/internal/models"
	"github.com/terraincognita07/mealsnap/internal/report"
	"github.com/terraincognita07/mealsnap/internal/session"
)

type stubReportMealStore struct {
	meals    []models.Meal
	err      error
	lastFrom time.Time
	lastTo   time.Time
}

// ListByUserRange ignores the bounds so the service's own filtering is
// what the tests observe.
func (stub *stubReportMealStore) ListByUserRange(_ uint, from time.Time, to time.Time) ([]models.Meal, error) {
	stub.lastFrom = from
	stub.lastTo = to
	if stub.err != nil {
		return nil, stub.err
	}
	result := make([]models.Meal, len(stub.meals))
	copy(result, stub.meals)
	return result, nil
}

func reportMeal(id string, at time.Time, kcal float64, protein float64, carbs float64, fat float64) models.Meal {
	return models.Meal{
		ID:        id,
		CreatedAt: at,
		Detection: &models.DetectionResult{
			Total: models.NutritionTotal{Kcal: kcal, Protein: protein, Carbs: carbs, Fat: fat},
		},
	}
}

func TestReportServiceSummaryFiltersToPeriod(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)
	store := &stubReportMealStore{meals: []models.Meal{
		reportMeal("late", now.Add(time.Minute), 1000, 0, 0, 0),
		reportMeal("lunch", now.Add(-3*time.Hour), 500, 20, 60, 10),
		reportMeal("breakfast", time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), 300, 10, 40, 5),
		reportMeal("yesterday", now.Add(-24*time.Hour), 700, 0, 0, 0),
	}}
	service := NewReportService(store, time.UTC)

	summary, err := service.Summary(session.Session{UserID: 1}, report.PeriodToday, now)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 800.0, summary.Totals.Kcal)
	assert.Equal(t, 800.0, summary.DailyAverages.Kcal)
	assert.True(t, store.lastFrom.Equal(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)), "from %s", store.lastFrom)
	assert.True(t, store.lastTo.Equal(now), "to %s", store.lastTo)
}

func TestReportServiceSummaryUsesConfiguredLocation(t *testing.T) {
	location := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2026, time.March, 10, 1, 0, 0, 0, time.UTC)
	store := &stubReportMealStore{meals: []models.Meal{
		reportMeal("local-morning", time.Date(2026, time.March, 9, 22, 30, 0, 0, time.UTC), 400, 0, 0, 0),
		reportMeal("local-yesterday", time.Date(2026, time.March, 9, 20, 30, 0, 0, time.UTC), 900, 0, 0, 0),
	}}
	service := NewReportService(store, location)

	summary, err := service.Summary(session.Session{UserID: 1}, report.PeriodToday, now)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count, "only the meal after local midnight counts")
	assert.Equal(t, 400.0, summary.Totals.Kcal)
}

func TestReportServiceExportCSV(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)
	store := &stubReportMealStore{meals: []models.Meal{
		reportMeal("lunch", time.Date(2026, time.March, 10, 12, 30, 0, 0, time.UTC), 512.5, 20, 60, 10),
	}}
	service := NewReportService(store, time.UTC)

	filename, body, err := service.ExportCSV(session.Session{UserID: 1}, report.PeriodSevenDays, now)
	require.NoError(t, err)
	assert.Equal(t, "mealsnap-7d-2026-03-10.csv", filename)
	assert.Equal(t, "datetime,kcal,protein,carbs,fat\n2026-03-10T12:30:00.000Z,512.5,20,60,10\n", string(body))
}

func TestReportServiceExportCSVEmptyPeriodHasHeaderOnly(t *testing.T) {
	service := NewReportService(&stubReportMealStore{}, nil)

	_, body, err := service.ExportCSV(session.Session{UserID: 1}, report.PeriodThirtyDays, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "datetime,kcal,protein,carbs,fat", strings.TrimSpace(string(body)))
}

func TestReportServiceRequiresSessionAndPropagatesErrors(t *testing.T) {
	service := NewReportService(&stubReportMealStore{err: errors.New("disk gone")}, time.UTC)

	_, err := service.Summary(session.Session{}, report.PeriodToday, time.Now())
	assert.ErrorIs(t, err, session.ErrNoSession)
	_, err = service.Summary(session.Session{UserID: 1}, report.PeriodToday, time.Now())
	assert.Error(t, err, "store error propagates")
}
