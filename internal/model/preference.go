package model

import "database/sql/driver"

// UserPreference 用户偏好，替代前端散落的本地存储：
// 启动时加载一次，变更时整体保存
type UserPreference struct {
	BaseModel
	UserID                   uint       `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	SpeechLanguage           string     `gorm:"size:20;default:'en-US'" json:"speechLanguage"`
	PinnedCharacterIDs       StringList `gorm:"type:json" json:"pinnedCharacterIds"`
	DefaultSystemInstruction string     `gorm:"type:text" json:"defaultSystemInstruction"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

// StringList JSON 列存储的字符串列表
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	return jsonValue(s)
}

func (s *StringList) Scan(value interface{}) error {
	return jsonScan(value, s)
}
