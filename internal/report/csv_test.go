package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/mealsnap/internal/models"
)

func renderCSV(t *testing.T, meals []models.Meal) string {
	t.Helper()

	var output bytes.Buffer
	require.NoError(t, WriteCSV(&output, meals))
	return output.String()
}

func TestCSVLiteralExample(t *testing.T) {
	t.Parallel()

	meals := []models.Meal{
		mealAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), &models.NutritionTotal{Kcal: 100, Protein: 10, Carbs: 20, Fat: 5}),
	}

	assert.Equal(t, "datetime,kcal,protein,carbs,fat\n2024-01-01T00:00:00.000Z,100,10,20,5\n", renderCSV(t, meals))
}

func TestCSVKeepsInputOrderAndDefaults(t *testing.T) {
	t.Parallel()

	local := time.FixedZone("UTC-5", -5*60*60)
	meals := []models.Meal{
		mealAt("b", time.Date(2024, 2, 1, 19, 30, 15, 250_000_000, local), &models.NutritionTotal{Kcal: 95, Protein: 0.5, Carbs: 25, Fat: 0.3}),
		mealAt("missing-time", time.Time{}, nil),
	}

	assert.Equal(t, "datetime,kcal,protein,carbs,fat\n"+
		"2024-02-02T00:30:15.250Z,95,0.5,25,0.3\n"+
		",0,0,0,0\n", renderCSV(t, meals))
}

func TestCSVEmptyHasHeaderOnly(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "datetime,kcal,protein,carbs,fat\n", renderCSV(t, nil))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteCSVReportsWriterErrors(t *testing.T) {
	t.Parallel()

	err := WriteCSV(failingWriter{}, []models.Meal{mealAt("a", time.Now(), nil)})
	assert.Error(t, err)

	var output bytes.Buffer
	require.NoError(t, WriteCSV(&output, nil))
}

func TestFilename(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 7, 4, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "mealsnap-7d-2024-07-04.csv", Filename(PeriodSevenDays, now))
}
