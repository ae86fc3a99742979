package repository

import (
	"chatgenius_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) Create(ch *model.Challenge) error {
	return r.DB.Create(ch).Error
}

func (r *ChallengeRepository) FindByID(id string, userID uint) (*model.Challenge, error) {
	var ch model.Challenge
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&ch).Error
	return &ch, err
}

func (r *ChallengeRepository) ListByOwner(userID uint, limit, offset int) ([]model.Challenge, error) {
	var chs []model.Challenge
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&chs).Error
	return chs, err
}

func (r *ChallengeRepository) Delete(id string, userID uint) error {
	result := r.DB.Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Challenge{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
