package db

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/mealsnap/internal/models"
	"gorm.io/gorm"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// MealCursor marks the last meal of a history page. Pages are ordered by
// created_at then id, both descending.
type MealCursor struct {
	CreatedAt time.Time
	ID        string
}

func (cursor MealCursor) Encode() string {
	raw := cursor.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + cursor.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeMealCursor(encoded string) (MealCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return MealCursor{}, ErrInvalidCursor
	}
	stamp, id, found := strings.Cut(string(raw), "|")
	if !found || id == "" {
		return MealCursor{}, ErrInvalidCursor
	}
	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return MealCursor{}, ErrInvalidCursor
	}
	return MealCursor{CreatedAt: createdAt.UTC(), ID: id}, nil
}

type MealPage struct {
	Meals []models.Meal
	Next  *MealCursor
}

type MealRepository struct {
	database *gorm.DB
}

func NewMealRepository(database *gorm.DB) *MealRepository {
	return &MealRepository{database: database}
}

// CreateFromDraft stores meal and removes the draft it came from in one
// transaction. When the draft no longer exists nothing is written.
func (repo *MealRepository) CreateFromDraft(meal *models.Meal, userID uint, draftID string) error {
	meal.CreatedAt = meal.CreatedAt.UTC()
	return repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND id = ?", userID, draftID).Delete(&models.Draft{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(meal).Error
	})
}

func (repo *MealRepository) FindByUserAndID(userID uint, mealID string) (models.Meal, error) {
	var meal models.Meal
	if err := repo.database.Where("user_id = ? AND id = ?", userID, mealID).First(&meal).Error; err != nil {
		return models.Meal{}, err
	}
	return meal, nil
}

// ListPage returns up to limit meals older than after, newest first.
func (repo *MealRepository) ListPage(userID uint, limit int, after *MealCursor) (MealPage, error) {
	if limit <= 0 {
		limit = 1
	}
	query := repo.database.Where("user_id = ?", userID)
	if after != nil {
		createdAt := after.CreatedAt.UTC()
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", createdAt, createdAt, after.ID)
	}

	meals := make([]models.Meal, 0, limit+1)
	if err := query.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&meals).Error; err != nil {
		return MealPage{}, err
	}

	page := MealPage{Meals: meals}
	if len(meals) > limit {
		page.Meals = meals[:limit]
		last := page.Meals[limit-1]
		page.Next = &MealCursor{CreatedAt: last.CreatedAt.UTC(), ID: last.ID}
	}
	return page, nil
}

// ListByUserRange narrows by created_at in [from, to]. Callers still run
// the result through report.FilterByRange.
func (repo *MealRepository) ListByUserRange(userID uint, from time.Time, to time.Time) ([]models.Meal, error) {
	meals := make([]models.Meal, 0)
	if err := repo.database.
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, from.UTC(), to.UTC()).
		Order("created_at DESC, id DESC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

func (repo *MealRepository) UpdateDetection(meal *models.Meal) error {
	return repo.database.Model(meal).Select("detection", "adjustments", "updated_at").Updates(meal).Error
}

func (repo *MealRepository) DeleteByUserAndID(userID uint, mealID string) error {
	result := repo.database.Where("user_id = ? AND id = ?", userID, mealID).Delete(&models.Meal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *MealRepository) DeleteAllByUser(userID uint) (int64, error) {
	result := repo.database.Where("user_id = ?", userID).Delete(&models.Meal{})
	return result.RowsAffected, result.Error
}

// PhotoRefsByUser lists every photo referenced by the user's meals and
// drafts.
func (repo *MealRepository) PhotoRefsByUser(userID uint) ([]string, error) {
	var refs []string
	if err := repo.database.Model(&models.Meal{}).Where("user_id = ?", userID).Pluck("photo_ref", &refs).Error; err != nil {
		return nil, err
	}
	var draftRefs []string
	if err := repo.database.Model(&models.Draft{}).Where("user_id = ?", userID).Pluck("photo_ref", &draftRefs).Error; err != nil {
		return nil, err
	}
	return append(refs, draftRefs...), nil
}
