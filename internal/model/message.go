package model

import (
	"time"
)

type MessageSender string

const (
	SenderUser MessageSender = "user"
	SenderBot  MessageSender = "bot"
)

// Message 一条聊天消息，按角色分桶存储；默认助手使用 "default-ai" 桶
type Message struct {
	UUIDBase
	UserID      uint          `gorm:"index;index:idx_owner_bucket;type:bigint unsigned;not null" json:"userId"`
	CharacterID string        `gorm:"index:idx_owner_bucket;type:varchar(36);not null" json:"characterId"`
	Content     string        `gorm:"type:text;not null" json:"content"`
	Sender      MessageSender `gorm:"type:enum('user','bot');not null" json:"sender"`
	CreatedAt   time.Time     `gorm:"index" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
