package repository

import (
	"chatgenius_backend/internal/model"

	"gorm.io/gorm"
)

type CharacterRepository struct {
	DB *gorm.DB
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{DB: db}
}

func (r *CharacterRepository) Create(ch *model.Character) error {
	return r.DB.Create(ch).Error
}

func (r *CharacterRepository) FindByID(id string) (*model.Character, error) {
	var ch model.Character
	err := r.DB.First(&ch, "id = ?", id).Error
	return &ch, err
}

// ListByOwner 当前用户的角色，按创建时间倒序
func (r *CharacterRepository) ListByOwner(userID uint) ([]model.Character, error) {
	var chars []model.Character
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&chars).Error
	return chars, err
}

// Update 仅更新属主自己的角色；一次性整体写入，不做部分持久化
func (r *CharacterRepository) Update(ch *model.Character) error {
	result := r.DB.Model(&model.Character{}).
		Where("id = ? AND user_id = ?", ch.ID, ch.UserID).
		Updates(map[string]interface{}{
			"name":        ch.Name,
			"description": ch.Description,
			"voice_tone":  ch.VoiceTone,
			"mood":        ch.Mood,
			"skills":      ch.Skills,
			"emoji":       ch.Emoji,
			"is_public":   ch.IsPublic,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CharacterRepository) Delete(id string, userID uint) error {
	result := r.DB.Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Character{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPublic 公开角色广场，按创建时间倒序分页
func (r *CharacterRepository) ListPublic(limit, offset int) ([]model.Character, error) {
	var chars []model.Character
	err := r.DB.Where("is_public = ?", true).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&chars).Error
	return chars, err
}

// SearchPublic 按名称/描述模糊搜索公开角色
func (r *CharacterRepository) SearchPublic(query string, limit, offset int) ([]model.Character, error) {
	var chars []model.Character
	searchTerm := "%" + query + "%"
	err := r.DB.Where("is_public = ?", true).
		Where("name LIKE ? OR description LIKE ?", searchTerm, searchTerm).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&chars).Error
	return chars, err
}
