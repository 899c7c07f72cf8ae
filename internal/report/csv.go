package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/terraincognita07/mealsnap/internal/models"
)

// CSVHeader is the column layout consumers of the export rely on.
var CSVHeader = []string{"datetime", "kcal", "protein", "carbs", "fat"}

const csvTimeLayout = "2006-01-02T15:04:05.000Z"

// WriteCSV writes one row per meal in input order after the header.
func WriteCSV(w io.Writer, meals []models.Meal) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, meal := range meals {
		total := meal.Totals()
		if err := writer.Write([]string{
			csvTimestamp(meal.CreatedAt),
			csvNumber(total.Kcal),
			csvNumber(total.Protein),
			csvNumber(total.Carbs),
			csvNumber(total.Fat),
		}); err != nil {
			return fmt.Errorf("write csv row %s: %w", meal.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Filename builds the attachment name for a period export.
func Filename(period Period, now time.Time) string {
	return fmt.Sprintf("mealsnap-%s-%s.csv", period, now.Format("2006-01-02"))
}

func csvTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(csvTimeLayout)
}

func csvNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
