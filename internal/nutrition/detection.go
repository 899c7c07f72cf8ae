package nutrition

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/mealsnap/internal/models"
)

var ErrItemIndexOutOfRange = errors.New("item index out of range")

var editableFields = []Field{FieldGrams, FieldKcal, FieldProtein, FieldCarbs, FieldFat}

// Recompute sums the items field by field from zero and rounds each
// component to one decimal.
func Recompute(items []models.FoodItem) models.NutritionTotal {
	total := models.NutritionTotal{}
	for _, item := range items {
		total.Kcal += item.Kcal
		total.Protein += item.Protein
		total.Carbs += item.Carbs
		total.Fat += item.Fat
	}
	return models.NutritionTotal{
		Kcal:    Round1(total.Kcal),
		Protein: Round1(total.Protein),
		Carbs:   Round1(total.Carbs),
		Fat:     Round1(total.Fat),
	}
}

// UpdateItemField sets one numeric field of one item from raw user input and
// returns a copy of result with the total recomputed. The input is never
// modified. Unparsable input is stored as 0.
func UpdateItemField(result models.DetectionResult, index int, field Field, raw string) (models.DetectionResult, error) {
	if index < 0 || index >= len(result.Items) {
		return result, ErrItemIndexOutOfRange
	}
	field, err := ParseField(string(field))
	if err != nil {
		return result, err
	}

	items := cloneItems(result.Items)
	field.set(&items[index], field.coerce(ParseAmount(raw)))

	return models.DetectionResult{
		Items: items,
		Total: Recompute(items),
	}, nil
}

// Normalize coerces every numeric field of every item and recomputes the
// total. Collaborator output goes through here before it is shown or stored.
func Normalize(result models.DetectionResult) models.DetectionResult {
	items := cloneItems(result.Items)
	for index := range items {
		items[index].Name = strings.TrimSpace(items[index].Name)
		for _, field := range editableFields {
			field.set(&items[index], field.coerce(field.get(items[index])))
		}
		if confidence := items[index].Confidence; confidence != nil {
			clamped := clampConfidence(*confidence)
			items[index].Confidence = &clamped
		}
	}
	return models.DetectionResult{
		Items: items,
		Total: Recompute(items),
	}
}

// MealDraft is the finalized payload handed to persistence on save.
type MealDraft struct {
	Detection models.DetectionResult
	Notes     *string
}

// Finalize snapshots a reviewed result for saving. Blank notes become nil.
func Finalize(result models.DetectionResult, notes string) MealDraft {
	items := cloneItems(result.Items)
	finalized := MealDraft{
		Detection: models.DetectionResult{Items: items, Total: Recompute(items)},
	}
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		finalized.Notes = &trimmed
	}
	return finalized
}

// ApplyAdjustment edits a saved detection and describes the change for the
// meal's adjustment log.
func ApplyAdjustment(result models.DetectionResult, index int, field Field, raw string, at time.Time) (models.DetectionResult, models.Adjustment, error) {
	field, err := ParseField(string(field))
	if err != nil {
		return result, models.Adjustment{}, err
	}
	updated, err := UpdateItemField(result, index, field, raw)
	if err != nil {
		return result, models.Adjustment{}, err
	}
	return updated, models.Adjustment{
		ItemIndex: index,
		ItemName:  result.Items[index].Name,
		Field:     string(field),
		Previous:  field.get(result.Items[index]),
		Value:     field.get(updated.Items[index]),
		At:        at.UTC(),
	}, nil
}

func cloneItems(items []models.FoodItem) []models.FoodItem {
	cloned := make([]models.FoodItem, len(items))
	for index, item := range items {
		if item.Confidence != nil {
			confidence := *item.Confidence
			item.Confidence = &confidence
		}
		cloned[index] = item
	}
	return cloned
}

func clampConfidence(value float64) float64 {
	value = sanitize(value)
	if value > 1 {
		return 1
	}
	return value
}
