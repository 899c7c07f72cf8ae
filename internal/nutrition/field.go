package nutrition

import (
	"errors"
	"strings"

	"github.com/terraincognita07/mealsnap/internal/models"
)

var ErrFieldNotEditable = errors.New("field is not editable")

type Field string

const (
	FieldGrams   Field = "grams"
	FieldKcal    Field = "kcal"
	FieldProtein Field = "protein"
	FieldCarbs   Field = "carbs"
	FieldFat     Field = "fat"
)

func ParseField(raw string) (Field, error) {
	field := Field(strings.ToLower(strings.TrimSpace(raw)))
	switch field {
	case FieldGrams, FieldKcal, FieldProtein, FieldCarbs, FieldFat:
		return field, nil
	default:
		return "", ErrFieldNotEditable
	}
}

func (field Field) get(item models.FoodItem) float64 {
	switch field {
	case FieldGrams:
		return item.Grams
	case FieldKcal:
		return item.Kcal
	case FieldProtein:
		return item.Protein
	case FieldCarbs:
		return item.Carbs
	case FieldFat:
		return item.Fat
	default:
		return 0
	}
}

func (field Field) set(item *models.FoodItem, value float64) {
	switch field {
	case FieldGrams:
		item.Grams = value
	case FieldKcal:
		item.Kcal = value
	case FieldProtein:
		item.Protein = value
	case FieldCarbs:
		item.Carbs = value
	case FieldFat:
		item.Fat = value
	}
}

// coerce applies the stored precision of a field: grams keep what was
// typed, macros carry one decimal.
func (field Field) coerce(value float64) float64 {
	value = sanitize(value)
	if field == FieldGrams {
		return value
	}
	return Round1(value)
}
