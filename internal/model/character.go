package model

import (
	"database/sql/driver"
	"time"
)

// DefaultCharacterID 内置默认助手的固定 ID，不入库
const DefaultCharacterID = "default-ai"

// Character 用户可配置的 AI 角色（人设）
type Character struct {
	UUIDBase
	UserID      uint        `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Name        string      `gorm:"size:30;not null" json:"name"`
	Description string      `gorm:"size:200;not null" json:"description"`
	VoiceTone   string      `gorm:"size:50;not null" json:"voice_tone"`
	Mood        string      `gorm:"size:50;not null" json:"mood"`
	Skills      SkillList   `gorm:"type:json" json:"skills"`
	Emoji       string      `gorm:"size:16" json:"emoji"`
	IsPublic    bool        `gorm:"default:false;index" json:"is_public"`
}

func (Character) TableName() string {
	return "characters"
}

// SkillList 有序技能列表，JSON 列存储
type SkillList []string

func (s SkillList) Value() (driver.Value, error) {
	return jsonValue(s)
}

func (s *SkillList) Scan(value interface{}) error {
	return jsonScan(value, s)
}

// CharacterReference 公共角色的收藏引用（引用原角色，不复制数据）
type CharacterReference struct {
	UUIDBase
	UserID              uint   `gorm:"index:idx_user_original,unique;type:bigint unsigned;not null" json:"userId"`
	OriginalCharacterID string `gorm:"index:idx_user_original,unique;type:varchar(36);not null" json:"originalCharacterId"`
}

func (CharacterReference) TableName() string {
	return "character_references"
}

// DefaultCharacter 返回进程内置的默认助手角色
func DefaultCharacter() *Character {
	now := time.Now()
	return &Character{
		UUIDBase: UUIDBase{
			ID:        DefaultCharacterID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        "AI Assistant",
		Description: "A helpful and knowledgeable AI assistant ready to help with any questions or tasks.",
		VoiceTone:   "casual",
		Mood:        "friendly",
		Skills:      SkillList{"general knowledge", "problem solving", "conversation"},
		Emoji:       "🤖",
		IsPublic:    false,
	}
}
