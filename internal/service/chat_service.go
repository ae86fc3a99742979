package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/repository"
	"chatgenius_backend/internal/util"
	"chatgenius_backend/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrNoActiveSession   = errors.New("没有活跃会话，请先选择角色")
	ErrSessionSuperseded = errors.New("会话已被新会话替换")
	ErrEmptyMessage      = errors.New("消息内容不能为空")
)

// chatState 单个用户的活跃会话。
// 同一用户同时只有一个活跃会话；切换角色即整体替换。
type chatState struct {
	session     ChatSession
	instruction string
	// 指令尚未随首条消息送出
	pendingInstruction bool
	bucketID           string
	generation         uint64
}

// MessageStore 消息持久化依赖，生产实现为 repository.MessageRepository
type MessageStore interface {
	Create(msg *model.Message) error
	ListByBucket(userID uint, bucketID string) ([]model.Message, error)
	DeleteByBucket(userID uint, bucketID string) error
}

var _ MessageStore = (*repository.MessageRepository)(nil)

// ChatService 会话管理：活跃会话内存态 + 消息落库
type ChatService struct {
	starter     ChatStarter
	messageRepo MessageStore

	mu     sync.Mutex
	states map[uint]*chatState
}

func NewChatService(starter ChatStarter, messageRepo MessageStore) *ChatService {
	return &ChatService{
		starter:     starter,
		messageRepo: messageRepo,
		states:      make(map[uint]*chatState),
	}
}

// StartSession 以给定指令开启新会话，替换该用户已有会话。
// bucketID 为消息归档桶，默认角色使用 model.DefaultCharacterID。
func (s *ChatService) StartSession(ctx context.Context, userID uint, bucketID, instruction string) error {
	session, err := s.starter.StartChat(ctx, "", nil)
	if err != nil {
		logger.Logger.Error("创建会话失败", zap.Uint("user_id", userID), zap.Error(err))
		return util.ErrAIUnavailable
	}

	s.mu.Lock()
	prev := s.states[userID]
	var generation uint64
	if prev != nil {
		generation = prev.generation + 1
	}
	s.states[userID] = &chatState{
		session:            session,
		instruction:        instruction,
		pendingInstruction: instruction != "",
		bucketID:           bucketID,
		generation:         generation,
	}
	s.mu.Unlock()
	return nil
}

// SetInstruction 更换系统指令并重开会话，消息桶保持不变
func (s *ChatService) SetInstruction(ctx context.Context, userID uint, instruction string) error {
	s.mu.Lock()
	st, ok := s.states[userID]
	s.mu.Unlock()
	if !ok {
		return ErrNoActiveSession
	}
	return s.StartSession(ctx, userID, st.bucketID, instruction)
}

// Send 发送一条消息并返回回复。
// 首条消息在历史为空时将系统指令前置；发送期间不持锁，
// 回复到达后校验会话代数，旧会话的迟到回复直接丢弃。
func (s *ChatService) Send(ctx context.Context, userID uint, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	s.mu.Lock()
	st, ok := s.states[userID]
	if !ok {
		s.mu.Unlock()
		return "", ErrNoActiveSession
	}
	outgoing := text
	if st.pendingInstruction && len(st.session.History(ctx)) == 0 {
		outgoing = st.instruction + "\n\nUser: " + text
	}
	st.pendingInstruction = false
	session := st.session
	generation := st.generation
	bucketID := st.bucketID
	s.mu.Unlock()

	if err := s.messageRepo.Create(&model.Message{
		UserID:      userID,
		CharacterID: bucketID,
		Content:     text,
		Sender:      model.SenderUser,
	}); err != nil {
		logger.Logger.Error("用户消息保存失败", zap.Error(err))
	}

	reply, err := session.SendMessage(ctx, outgoing)

	s.mu.Lock()
	current, exists := s.states[userID]
	stale := !exists || current.generation != generation
	s.mu.Unlock()
	if stale {
		return "", ErrSessionSuperseded
	}

	if err != nil {
		logger.Logger.Error("获取 AI 回复失败", zap.Uint("user_id", userID), zap.Error(err))
		return "", util.ErrAIUnavailable
	}

	if err := s.messageRepo.Create(&model.Message{
		UserID:      userID,
		CharacterID: bucketID,
		Content:     reply,
		Sender:      model.SenderBot,
	}); err != nil {
		logger.Logger.Error("回复消息保存失败", zap.Error(err))
	}
	return reply, nil
}

// History 返回活跃会话历史；无会话或获取失败时返回空切片
func (s *ChatService) History(ctx context.Context, userID uint) []ChatTurn {
	s.mu.Lock()
	st, ok := s.states[userID]
	s.mu.Unlock()
	if !ok || st.session == nil {
		return []ChatTurn{}
	}
	return st.session.History(ctx)
}

// EndSession 丢弃活跃会话，已落库消息不受影响
func (s *ChatService) EndSession(userID uint) {
	s.mu.Lock()
	delete(s.states, userID)
	s.mu.Unlock()
}

// ListMessages 按桶拉取历史消息，时间升序
func (s *ChatService) ListMessages(ctx context.Context, userID uint, bucketID string) ([]model.Message, error) {
	return s.messageRepo.ListByBucket(userID, bucketID)
}

// ClearMessages 清空某个桶的全部消息
func (s *ChatService) ClearMessages(ctx context.Context, userID uint, bucketID string) error {
	return s.messageRepo.DeleteByBucket(userID, bucketID)
}
