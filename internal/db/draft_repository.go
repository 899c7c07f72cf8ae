package db

import (
	"github.com/terraincognita07/mealsnap/internal/models"
	"gorm.io/gorm"
)

type DraftRepository struct {
	database *gorm.DB
}

func NewDraftRepository(database *gorm.DB) *DraftRepository {
	return &DraftRepository{database: database}
}

func (repo *DraftRepository) Create(draft *models.Draft) error {
	return repo.database.Create(draft).Error
}

func (repo *DraftRepository) FindByUserAndID(userID uint, draftID string) (models.Draft, error) {
	var draft models.Draft
	if err := repo.database.Where("user_id = ? AND id = ?", userID, draftID).First(&draft).Error; err != nil {
		return models.Draft{}, err
	}
	return draft, nil
}

func (repo *DraftRepository) SaveDetection(draft *models.Draft) error {
	return repo.database.Model(draft).Select("detection", "updated_at").Updates(draft).Error
}

func (repo *DraftRepository) DeleteByUserAndID(userID uint, draftID string) error {
	result := repo.database.Where("user_id = ? AND id = ?", userID, draftID).Delete(&models.Draft{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *DraftRepository) DeleteAllByUser(userID uint) error {
	return repo.database.Where("user_id = ?", userID).Delete(&models.Draft{}).Error
}
