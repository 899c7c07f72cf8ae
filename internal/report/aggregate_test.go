package report

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/mealsnap/internal/models"
)

func mealAt(id string, createdAt time.Time, total *models.NutritionTotal) models.Meal {
	meal := models.Meal{ID: id, CreatedAt: createdAt}
	if total != nil {
		meal.Detection = &models.DetectionResult{Total: *total}
	}
	return meal
}

func TestFilterByRangeIncludesBothBounds(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	meals := []models.Meal{
		mealAt("before", start.Add(-time.Millisecond), nil),
		mealAt("start", start, nil),
		mealAt("middle", start.Add(12*time.Hour), nil),
		mealAt("end", end, nil),
		mealAt("after", end.Add(time.Millisecond), nil),
		mealAt("missing", time.Time{}, nil),
	}

	filtered := FilterByRange(meals, start, end)
	ids := make([]string, 0, len(filtered))
	for _, meal := range filtered {
		ids = append(ids, meal.ID)
	}
	assert.Equal(t, []string{"start", "middle", "end"}, ids)
}

func TestFilterByRangeComparesInstantsAcrossZones(t *testing.T) {
	t.Parallel()

	berlin := time.FixedZone("CET", 60*60)
	start := time.Date(2024, 1, 1, 1, 0, 0, 0, berlin)
	meals := []models.Meal{mealAt("utc-midnight", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)}

	assert.Len(t, FilterByRange(meals, start, start.Add(time.Hour)), 1)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	for _, period := range []Period{PeriodToday, PeriodSevenDays, PeriodThirtyDays} {
		summary := Summarize(nil, period)
		assert.Equal(t, 0, summary.Count)
		assert.Equal(t, MacroPercentages{}, summary.MacroPercentages)
		assert.Equal(t, models.NutritionTotal{}, summary.DailyAverages)
		assert.False(t, math.IsNaN(summary.DailyAverages.Kcal))
		assert.Equal(t, period.Days(), summary.PeriodDays)
	}
}

func TestSummarizeTotalsAveragesAndPercentages(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	meals := []models.Meal{
		mealAt("a", now, &models.NutritionTotal{Kcal: 500, Protein: 30, Carbs: 50, Fat: 20}),
		mealAt("b", now, &models.NutritionTotal{Kcal: 200, Protein: 10, Carbs: 30, Fat: 0}),
	}

	summary := Summarize(meals, PeriodSevenDays)
	require.Equal(t, 2, summary.Count)
	assert.Equal(t, models.NutritionTotal{Kcal: 700, Protein: 40, Carbs: 80, Fat: 20}, summary.Totals)
	assert.Equal(t, models.NutritionTotal{Kcal: 100, Protein: 5.7, Carbs: 11.4, Fat: 2.9}, summary.DailyAverages)
	// 160 + 320 + 180 = 660 kcal from macros
	assert.Equal(t, MacroPercentages{Protein: 24.2, Carbs: 48.5, Fat: 27.3}, summary.MacroPercentages)
}

func TestSummarizeCountsMealsWithoutTotals(t *testing.T) {
	t.Parallel()

	meals := []models.Meal{
		mealAt("empty", time.Now(), nil),
		mealAt("full", time.Now(), &models.NutritionTotal{Kcal: 100, Protein: 10, Carbs: 20, Fat: 5}),
	}

	summary := Summarize(meals, PeriodToday)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, models.NutritionTotal{Kcal: 100, Protein: 10, Carbs: 20, Fat: 5}, summary.Totals)
	assert.Equal(t, summary.Totals, summary.DailyAverages)
}

func TestSummarizeUnknownPeriodFallsBackToOneDay(t *testing.T) {
	t.Parallel()

	summary := Summarize([]models.Meal{mealAt("a", time.Now(), &models.NutritionTotal{Kcal: 90})}, Period("year"))
	assert.Equal(t, 1, summary.PeriodDays)
	assert.Equal(t, 90.0, summary.DailyAverages.Kcal)
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PeriodToday, ParsePeriod(""))
	assert.Equal(t, PeriodToday, ParsePeriod("today"))
	assert.Equal(t, PeriodSevenDays, ParsePeriod(" 7D "))
	assert.Equal(t, PeriodThirtyDays, ParsePeriod("30d"))
	assert.Equal(t, PeriodToday, ParsePeriod("90d"))
}

func TestPeriodRange(t *testing.T) {
	t.Parallel()

	location := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, location)

	start, end := PeriodToday.Range(now, location)
	assert.True(t, start.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, location)))
	assert.True(t, end.Equal(now))

	start, end = PeriodSevenDays.Range(now, location)
	assert.True(t, start.Equal(now.AddDate(0, 0, -7)))
	assert.True(t, end.Equal(now))

	start, _ = PeriodThirtyDays.Range(now, nil)
	assert.True(t, start.Equal(now.AddDate(0, 0, -30)))
}
