package report

import (
	"time"

	"github.com/terraincognita07/mealsnap/internal/models"
	"github.com/terraincognita07/mealsnap/internal/nutrition"
)

const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

type MacroPercentages struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type Summary struct {
	Period           Period                `json:"period"`
	PeriodDays       int                   `json:"periodDays"`
	Count            int                   `json:"count"`
	Totals           models.NutritionTotal `json:"totals"`
	DailyAverages    models.NutritionTotal `json:"dailyAverages"`
	MacroPercentages MacroPercentages      `json:"macroPercentages"`
}

// FilterByRange keeps meals created within [start, end], both ends
// included, preserving input order. Meals without a creation time are
// dropped.
func FilterByRange(meals []models.Meal, start time.Time, end time.Time) []models.Meal {
	filtered := make([]models.Meal, 0, len(meals))
	for _, meal := range meals {
		if meal.CreatedAt.IsZero() {
			continue
		}
		if meal.CreatedAt.Before(start) || meal.CreatedAt.After(end) {
			continue
		}
		filtered = append(filtered, meal)
	}
	return filtered
}

// Summarize aggregates meals for a period. Meals without detection data
// count toward Count and contribute zeros.
func Summarize(meals []models.Meal, period Period) Summary {
	totals := models.NutritionTotal{}
	for _, meal := range meals {
		mealTotal := meal.Totals()
		totals.Kcal += mealTotal.Kcal
		totals.Protein += mealTotal.Protein
		totals.Carbs += mealTotal.Carbs
		totals.Fat += mealTotal.Fat
	}

	days := period.Days()
	if days <= 0 {
		days = 1
	}

	return Summary{
		Period:     period,
		PeriodDays: days,
		Count:      len(meals),
		Totals:     roundTotal(totals),
		DailyAverages: roundTotal(models.NutritionTotal{
			Kcal:    totals.Kcal / float64(days),
			Protein: totals.Protein / float64(days),
			Carbs:   totals.Carbs / float64(days),
			Fat:     totals.Fat / float64(days),
		}),
		MacroPercentages: macroPercentages(totals),
	}
}

func macroPercentages(totals models.NutritionTotal) MacroPercentages {
	protein := totals.Protein * kcalPerGramProtein
	carbs := totals.Carbs * kcalPerGramCarbs
	fat := totals.Fat * kcalPerGramFat
	energy := protein + carbs + fat
	if energy <= 0 {
		return MacroPercentages{}
	}
	return MacroPercentages{
		Protein: nutrition.Round1(100 * protein / energy),
		Carbs:   nutrition.Round1(100 * carbs / energy),
		Fat:     nutrition.Round1(100 * fat / energy),
	}
}

func roundTotal(total models.NutritionTotal) models.NutritionTotal {
	return models.NutritionTotal{
		Kcal:    nutrition.Round1(total.Kcal),
		Protein: nutrition.Round1(total.Protein),
		Carbs:   nutrition.Round1(total.Carbs),
		Fat:     nutrition.Round1(total.Fat),
	}
}
