package repository

import (
	"chatgenius_backend/internal/model"

	"gorm.io/gorm"
)

type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

// FindByUser 不存在时返回带默认值的新记录，不落库
func (r *PreferenceRepository) FindByUser(userID uint) (*model.UserPreference, error) {
	var pref model.UserPreference
	err := r.DB.Where("user_id = ?", userID).First(&pref).Error
	if err == gorm.ErrRecordNotFound {
		return &model.UserPreference{
			UserID:             userID,
			SpeechLanguage:     "en-US",
			PinnedCharacterIDs: model.StringList{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// Save 整体保存（upsert 语义）
func (r *PreferenceRepository) Save(pref *model.UserPreference) error {
	var existing model.UserPreference
	err := r.DB.Where("user_id = ?", pref.UserID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.DB.Create(pref).Error
	}
	if err != nil {
		return err
	}
	pref.ID = existing.ID
	return r.DB.Save(pref).Error
}

// ClearDefaultInstruction 退出登录时清除默认助手指令
func (r *PreferenceRepository) ClearDefaultInstruction(userID uint) error {
	return r.DB.Model(&model.UserPreference{}).
		Where("user_id = ?", userID).
		Update("default_system_instruction", "").Error
}
