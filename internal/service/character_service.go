package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/repository"
	"chatgenius_backend/internal/util"
	"chatgenius_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	characterHubKeyPrefix = "character_hub:"
	characterHubCacheTTL  = 5 * time.Minute

	maxSkills = 10
)

// CharacterInput 创建与编辑共用的请求体，编辑走同一套校验
type CharacterInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Mood        string   `json:"mood" binding:"required"`
	VoiceTone   string   `json:"voice_tone" binding:"required"`
	Skills      []string `json:"skills" binding:"required"`
	Emoji       string   `json:"emoji"`
	IsPublic    bool     `json:"isPublic"`
}

// Validate 角色构建器的五步校验合并为一次请求校验
func (in *CharacterInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return errors.New("Character name is required")
	case utf8.RuneCountInString(in.Name) < 2:
		return errors.New("Name must be at least 2 characters")
	case utf8.RuneCountInString(in.Name) > 30:
		return errors.New("Name must be less than 30 characters")
	}
	if strings.TrimSpace(in.Mood) == "" {
		return errors.New("Please select a mood or enter a custom one")
	}
	if len(in.Skills) == 0 {
		return errors.New("Please select at least one skill")
	}
	if len(in.Skills) > maxSkills {
		return fmt.Errorf("A character can have at most %d skills", maxSkills)
	}
	if strings.TrimSpace(in.VoiceTone) == "" {
		return errors.New("Please select a communication style")
	}
	desc := strings.TrimSpace(in.Description)
	switch {
	case desc == "":
		return errors.New("Character description is required")
	case utf8.RuneCountInString(in.Description) < 10:
		return errors.New("Description must be at least 10 characters")
	case utf8.RuneCountInString(in.Description) > 200:
		return errors.New("Description must be less than 200 characters")
	}
	return nil
}

// CharacterService 角色增删改查、公共角色广场与引用收藏
type CharacterService struct {
	CharacterRepo *repository.CharacterRepository
	ReferenceRepo *repository.CharacterReferenceRepository
	Redis         *redis.Client
}

func NewCharacterService(characterRepo *repository.CharacterRepository, referenceRepo *repository.CharacterReferenceRepository, rdb *redis.Client) *CharacterService {
	return &CharacterService{
		CharacterRepo: characterRepo,
		ReferenceRepo: referenceRepo,
		Redis:         rdb,
	}
}

// Create 校验通过后一次性写入，不存在部分持久化
func (s *CharacterService) Create(userID uint, in *CharacterInput) (*model.Character, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ch := &model.Character{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Mood:        in.Mood,
		VoiceTone:   in.VoiceTone,
		Skills:      model.SkillList(in.Skills),
		Emoji:       in.Emoji,
		IsPublic:    in.IsPublic,
	}
	if err := s.CharacterRepo.Create(ch); err != nil {
		logger.Logger.Error("角色创建失败", zap.Error(err))
		return nil, err
	}
	return ch, nil
}

// Get 按 ID 取角色；合成默认角色不落库，命中固定 ID 时直接构造
func (s *CharacterService) Get(id string) (*model.Character, error) {
	if id == model.DefaultCharacterID {
		return model.DefaultCharacter(), nil
	}
	ch, err := s.CharacterRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrCharacterNotFound
	}
	return ch, nil
}

// List 用户自建角色，倒序
func (s *CharacterService) List(userID uint) ([]model.Character, error) {
	return s.CharacterRepo.ListByOwner(userID)
}

// Update 仅限本人，编辑与创建同一套校验
func (s *CharacterService) Update(userID uint, id string, in *CharacterInput) (*model.Character, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ch := &model.Character{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Mood:        in.Mood,
		VoiceTone:   in.VoiceTone,
		Skills:      model.SkillList(in.Skills),
		Emoji:       in.Emoji,
		IsPublic:    in.IsPublic,
	}
	ch.ID = id
	if err := s.CharacterRepo.Update(ch); err != nil {
		return nil, util.ErrCharacterNotFound
	}
	return s.CharacterRepo.FindByID(id)
}

// Delete 仅限本人
func (s *CharacterService) Delete(userID uint, id string) error {
	if id == model.DefaultCharacterID {
		return util.ErrPermissionDenied
	}
	if err := s.CharacterRepo.Delete(id, userID); err != nil {
		return util.ErrCharacterNotFound
	}
	return nil
}

// ListPublic 角色广场，Redis 短缓存抗热点
func (s *CharacterService) ListPublic(ctx context.Context, limit, offset int) ([]model.Character, error) {
	key := fmt.Sprintf("%s%d:%d", characterHubKeyPrefix, limit, offset)
	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var cached []model.Character
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			logger.Logger.Warn("角色广场缓存读取失败", zap.Error(err))
		}
	}

	characters, err := s.CharacterRepo.ListPublic(limit, offset)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(characters); err == nil {
			if err := s.Redis.Set(ctx, key, data, characterHubCacheTTL).Err(); err != nil {
				logger.Logger.Warn("角色广场缓存写入失败", zap.Error(err))
			}
		}
	}
	return characters, nil
}

// SearchPublic 广场搜索不走缓存
func (s *CharacterService) SearchPublic(query string, limit, offset int) ([]model.Character, error) {
	return s.CharacterRepo.SearchPublic(query, limit, offset)
}

// AddReference 收藏他人公开角色，幂等
func (s *CharacterService) AddReference(userID uint, characterID string) (*model.CharacterReference, error) {
	ch, err := s.CharacterRepo.FindByID(characterID)
	if err != nil {
		return nil, util.ErrCharacterNotFound
	}
	if !ch.IsPublic && ch.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return s.ReferenceRepo.Create(userID, characterID)
}

// ListReferences 已收藏的角色列表
func (s *CharacterService) ListReferences(userID uint) ([]model.Character, error) {
	return s.ReferenceRepo.ListCharactersByOwner(userID)
}

// RemoveReference 取消收藏
func (s *CharacterService) RemoveReference(userID uint, characterID string) error {
	return s.ReferenceRepo.Delete(userID, characterID)
}

// Instruction 编译角色的系统指令。
// 默认角色支持用偏好里的自定义指令整体覆盖。
func (s *CharacterService) Instruction(ch *model.Character, defaultOverride string) string {
	if ch.ID == model.DefaultCharacterID && strings.TrimSpace(defaultOverride) != "" {
		return defaultOverride
	}
	return CompileInstruction(ch)
}
