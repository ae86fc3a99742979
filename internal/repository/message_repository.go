package repository

import (
	"chatgenius_backend/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.DB.Create(msg).Error
}

// ListByBucket 某个角色桶下的全部消息，按时间升序
func (r *MessageRepository) ListByBucket(userID uint, characterID string) ([]model.Message, error) {
	var msgs []model.Message
	err := r.DB.Where("user_id = ? AND character_id = ?", userID, characterID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// DeleteByBucket 清空某个角色桶下的全部消息
func (r *MessageRepository) DeleteByBucket(userID uint, characterID string) error {
	return r.DB.Where("user_id = ? AND character_id = ?", userID, characterID).
		Delete(&model.Message{}).Error
}
