package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatgenius_backend/internal/config"
	"chatgenius_backend/internal/util"
	"chatgenius_backend/pkg/logger"
	"chatgenius_backend/pkg/monitoring"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ErrEmptyResponse 模型返回空候选（通常是安全拦截或截断）
var ErrEmptyResponse = errors.New("model returned no content")

// ContentPart 一段发送给模型的内容，文本或二进制附件二选一
type ContentPart struct {
	Text     string
	Data     []byte
	MIMEType string
}

// ChatTurn 会话历史中的一轮
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Generator 单次内容生成，挑战生成管线依赖该接口
type Generator interface {
	GenerateContent(ctx context.Context, parts []ContentPart) (string, error)
}

// ChatSession 一个持续的多轮会话
type ChatSession interface {
	SendMessage(ctx context.Context, text string) (string, error)
	History(ctx context.Context) []ChatTurn
}

// ChatStarter 创建带系统指令的会话
type ChatStarter interface {
	StartChat(ctx context.Context, systemInstruction string, history []ChatTurn) (ChatSession, error)
}

// AIService Gemini 客户端封装，实现 Generator 和 ChatStarter
type AIService struct {
	client *genai.Client
	cfg    config.AIConfig
}

// NewAIService 初始化 Gemini 客户端。
// API Key 缺失立即失败，不做延迟报错。
func NewAIService(ctx context.Context, cfg *config.Config) (*AIService, error) {
	if cfg.AI.APIKey == "" {
		return nil, util.ErrAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.AI.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &AIService{
		client: client,
		cfg:    cfg.AI,
	}, nil
}

// 全部安全类别放开，由角色指令和上层产品策略约束输出
func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}
	return settings
}

func (s *AIService) generationConfig(systemInstruction string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: s.cfg.MaxOutputTokens,
		Temperature:     genai.Ptr(s.cfg.Temperature),
		TopP:            genai.Ptr(s.cfg.TopP),
		TopK:            genai.Ptr(s.cfg.TopK),
		SafetySettings:  safetySettings(),
	}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	return cfg
}

func toGenaiParts(parts []ContentPart) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Data != nil {
			out = append(out, &genai.Part{
				InlineData: &genai.Blob{Data: p.Data, MIMEType: p.MIMEType},
			})
			continue
		}
		out = append(out, &genai.Part{Text: p.Text})
	}
	return out
}

func extractText(res *genai.GenerateContentResponse) (string, error) {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return res.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateContent 单次调用，支持文本与附件混合输入
func (s *AIService) GenerateContent(ctx context.Context, parts []ContentPart) (string, error) {
	start := time.Now()
	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: toGenaiParts(parts)},
	}

	res, err := s.client.Models.GenerateContent(ctx, s.cfg.Model, contents, s.generationConfig(""))
	monitoring.ObserveAICall("generate", start, err)
	if err != nil {
		logger.Logger.Error("生成内容失败", zap.Error(err))
		return "", fmt.Errorf("generate content: %w", err)
	}
	return extractText(res)
}

type geminiChat struct {
	chat    *genai.Chat
	service *AIService
}

// StartChat 创建一个带角色系统指令的会话，history 用于恢复历史会话
func (s *AIService) StartChat(ctx context.Context, systemInstruction string, history []ChatTurn) (ChatSession, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(turn.Role)))
	}

	chat, err := s.client.Chats.Create(ctx, s.cfg.Model, s.generationConfig(systemInstruction), contents)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return &geminiChat{chat: chat, service: s}, nil
}

func (c *geminiChat) SendMessage(ctx context.Context, text string) (string, error) {
	start := time.Now()
	res, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	monitoring.ObserveAICall("chat", start, err)
	if err != nil {
		logger.Logger.Error("会话消息发送失败", zap.Error(err))
		return "", fmt.Errorf("send message: %w", err)
	}
	return extractText(res)
}

// History 返回会话历史，失败时返回空切片而非报错
func (c *geminiChat) History(ctx context.Context) []ChatTurn {
	contents := c.chat.History(false)
	turns := make([]ChatTurn, 0, len(contents))
	for _, content := range contents {
		if content == nil || len(content.Parts) == 0 {
			continue
		}
		turns = append(turns, ChatTurn{
			Role: content.Role,
			Text: content.Parts[0].Text,
		})
	}
	return turns
}
