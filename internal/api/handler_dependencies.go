package api

import (
	"log/slog"
	"time"

	"github.com/terraincognita07/mealsnap/internal/blob"
	"github.com/terraincognita07/mealsnap/internal/db"
	"github.com/terraincognita07/mealsnap/internal/estimation"
	"github.com/terraincognita07/mealsnap/internal/services"
	"github.com/terraincognita07/mealsnap/internal/session"
	"gorm.io/gorm"
)

type Dependencies struct {
	Auth    *services.AuthService
	Meals   *services.MealService
	Reports *services.ReportService
}

// DependencyConfig lists what the services need beyond the database.
type DependencyConfig struct {
	Photos          blob.Store
	Estimator       estimation.Estimator
	Tracker         *session.Tracker
	Location        *time.Location
	MaxPhotoBytes   int
	HistoryPageSize int
	Logger          *slog.Logger
}

// NewDependencies wires repositories on database into the services used by
// the handlers.
func NewDependencies(database *gorm.DB, cfg DependencyConfig) Dependencies {
	repositories := db.NewRepositories(database)
	return Dependencies{
		Auth: services.NewAuthService(repositories.Users, cfg.Photos, cfg.Tracker),
		Meals: services.NewMealService(repositories.Meals, repositories.Drafts, cfg.Photos, cfg.Estimator, services.MealServiceOptions{
			MaxPhotoBytes:   cfg.MaxPhotoBytes,
			HistoryPageSize: cfg.HistoryPageSize,
			Logger:          cfg.Logger,
		}),
		Reports: services.NewReportService(repositories.Meals, cfg.Location),
	}
}
