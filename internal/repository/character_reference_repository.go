package repository

import (
	"chatgenius_backend/internal/model"

	"gorm.io/gorm"
)

type CharacterReferenceRepository struct {
	DB *gorm.DB
}

func NewCharacterReferenceRepository(db *gorm.DB) *CharacterReferenceRepository {
	return &CharacterReferenceRepository{DB: db}
}

// Create 收藏公开角色，(user, original) 去重：已存在时直接返回现有引用
func (r *CharacterReferenceRepository) Create(userID uint, characterID string) (*model.CharacterReference, error) {
	var existing model.CharacterReference
	err := r.DB.Where("user_id = ? AND original_character_id = ?", userID, characterID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	ref := &model.CharacterReference{
		UserID:              userID,
		OriginalCharacterID: characterID,
	}
	if err := r.DB.Create(ref).Error; err != nil {
		return nil, err
	}
	return ref, nil
}

// ListCharactersByOwner 引用连原角色一起取出
func (r *CharacterReferenceRepository) ListCharactersByOwner(userID uint) ([]model.Character, error) {
	var chars []model.Character
	err := r.DB.Model(&model.Character{}).
		Joins("JOIN character_references ON character_references.original_character_id = characters.id").
		Where("character_references.user_id = ?", userID).
		Where("character_references.deleted_at IS NULL").
		Order("character_references.created_at DESC").
		Find(&chars).Error
	return chars, err
}

func (r *CharacterReferenceRepository) Delete(userID uint, characterID string) error {
	return r.DB.Where("user_id = ? AND original_character_id = ?", userID, characterID).
		Delete(&model.CharacterReference{}).Error
}
