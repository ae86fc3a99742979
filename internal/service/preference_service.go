package service

import (
	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/repository"
)

// PreferenceInput 偏好保存请求
type PreferenceInput struct {
	SpeechLanguage           string   `json:"speechLanguage"`
	PinnedCharacterIDs       []string `json:"pinnedCharacterIds"`
	DefaultSystemInstruction string   `json:"defaultSystemInstruction"`
}

// PreferenceService 用户偏好：语音语言、置顶角色、默认助手指令覆盖
type PreferenceService struct {
	PrefRepo *repository.PreferenceRepository
}

func NewPreferenceService(prefRepo *repository.PreferenceRepository) *PreferenceService {
	return &PreferenceService{PrefRepo: prefRepo}
}

// Get 不存在时返回默认偏好，不落库
func (s *PreferenceService) Get(userID uint) (*model.UserPreference, error) {
	return s.PrefRepo.FindByUser(userID)
}

// Save 整体覆盖保存
func (s *PreferenceService) Save(userID uint, in *PreferenceInput) (*model.UserPreference, error) {
	pref, err := s.PrefRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	pref.UserID = userID
	if in.SpeechLanguage != "" {
		pref.SpeechLanguage = in.SpeechLanguage
	}
	pref.PinnedCharacterIDs = model.StringList(in.PinnedCharacterIDs)
	pref.DefaultSystemInstruction = in.DefaultSystemInstruction
	if err := s.PrefRepo.Save(pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// DefaultInstruction 默认助手的指令覆盖文本，未设置时为空串
func (s *PreferenceService) DefaultInstruction(userID uint) string {
	pref, err := s.PrefRepo.FindByUser(userID)
	if err != nil {
		return ""
	}
	return pref.DefaultSystemInstruction
}
