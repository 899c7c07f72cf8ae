package estimation

import (
	"context"
	"errors"
	"time"

	"github.com/terraincognita07/mealsnap/internal/models"
	"github.com/terraincognita07/mealsnap/internal/nutrition"
)

// ErrAnalysisFailed wraps every failure surfaced by an Estimator.
var ErrAnalysisFailed = errors.New("analysis failed")

// Photo is an uploaded meal image handed to an estimator.
type Photo struct {
	Ref         string
	ContentType string
	Data        []byte
}

type Estimator interface {
	Analyze(ctx context.Context, photo Photo) (models.DetectionResult, error)
}

const DefaultStubDelay = 1200 * time.Millisecond

// StubEstimator answers every photo with a single apple after a fixed delay.
type StubEstimator struct {
	Delay time.Duration
}

func NewStubEstimator(delay time.Duration) *StubEstimator {
	if delay < 0 {
		delay = 0
	}
	return &StubEstimator{Delay: delay}
}

func (stub *StubEstimator) Analyze(ctx context.Context, _ Photo) (models.DetectionResult, error) {
	if stub.Delay > 0 {
		timer := time.NewTimer(stub.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return models.DetectionResult{}, errors.Join(ErrAnalysisFailed, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return models.DetectionResult{}, errors.Join(ErrAnalysisFailed, err)
	}

	confidence := 0.9
	return nutrition.Normalize(models.DetectionResult{
		Items: []models.FoodItem{{
			Name:       "Apple",
			Grams:      182,
			Kcal:       95,
			Protein:    0.5,
			Carbs:      25,
			Fat:        0.3,
			Confidence: &confidence,
		}},
	}), nil
}
