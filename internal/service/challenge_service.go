package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/repository"
	"chatgenius_backend/internal/util"
	"chatgenius_backend/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrTopicRequired       = errors.New("主题不能为空")
	ErrDocumentRequired    = errors.New("请上传文档")
	ErrBadQuestionCount    = errors.New("题目数量必须在 1 到 25 之间")
	ErrBadQuestionType     = errors.New("无效的题目类型")
	ErrBadAnswerTiming     = errors.New("无效的答案揭示时机")
	ErrTopicProcessing     = errors.New("Failed to process topic challenge. Please try again.")
	ErrDocumentProcessing  = errors.New("Failed to process document challenge. Please try again.")
	ErrUnsupportedDocument = errors.New("仅支持 PDF、图片或纯文本文档")
)

var (
	leadingFence  = regexp.MustCompile("^```json\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// ChallengeRequest 出题配置
type ChallengeRequest struct {
	Source            model.ChallengeSource `json:"source"`
	QuestionType      model.QuestionType    `json:"questionType"`
	NumberOfQuestions int                   `json:"numberOfQuestions"`
	AnswerTiming      model.AnswerTiming    `json:"answerTiming"`
	CustomInstruction string                `json:"customInstruction"`
	Topic             string                `json:"topic"`
}

// Validate 网络调用前的领域前置校验
func (r *ChallengeRequest) Validate() error {
	if r.NumberOfQuestions < 1 || r.NumberOfQuestions > 25 {
		return ErrBadQuestionCount
	}
	if r.QuestionType != model.QuestionObjective && r.QuestionType != model.QuestionSubjective {
		return ErrBadQuestionType
	}
	if r.AnswerTiming != model.TimingAfterEach && r.AnswerTiming != model.TimingAtFinal {
		return ErrBadAnswerTiming
	}
	switch r.Source {
	case model.SourceTopic:
		if strings.TrimSpace(r.Topic) == "" {
			return ErrTopicRequired
		}
	case model.SourceDocument:
		// 文件在调用处单独传入并校验
	default:
		return fmt.Errorf("无效的出题来源: %q", r.Source)
	}
	return nil
}

// ChallengeStore 挑战记录持久化依赖
type ChallengeStore interface {
	Create(ch *model.Challenge) error
	FindByID(id string, userID uint) (*model.Challenge, error)
	ListByOwner(userID uint, limit, offset int) ([]model.Challenge, error)
	Delete(id string, userID uint) error
}

var _ ChallengeStore = (*repository.ChallengeRepository)(nil)

// DocumentStorer 上传文档归档依赖，生产实现为 StorageService
type DocumentStorer interface {
	Store(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

// ChallengeService 出题管线：构造提示词、调用模型、校验 JSON、落库
type ChallengeService struct {
	generator Generator
	repo      ChallengeStore
	storage   DocumentStorer
}

func NewChallengeService(generator Generator, repo ChallengeStore, storage DocumentStorer) *ChallengeService {
	return &ChallengeService{generator: generator, repo: repo, storage: storage}
}

// GenerateFromTopic 主题路径：先分析主题，再基于分析出题。
// 两次模型调用严格顺序执行，第二次的提示词内嵌第一次的完整输出。
func (s *ChallengeService) GenerateFromTopic(ctx context.Context, userID uint, req *ChallengeRequest) (*model.Challenge, error) {
	req.Source = model.SourceTopic
	if err := req.Validate(); err != nil {
		return nil, err
	}

	analysis, err := s.generator.GenerateContent(ctx, []ContentPart{
		{Text: topicAnalysisPrompt(req.Topic)},
	})
	if err != nil {
		logger.Logger.Error("主题分析失败", zap.String("topic", req.Topic), zap.Error(err))
		return nil, ErrTopicProcessing
	}

	enriched := *req
	enriched.CustomInstruction = mergeTopicInstruction(req.CustomInstruction)
	prompt := contentChallengePrompt("Topic Analysis:\n"+analysis, &enriched)

	raw, err := s.generator.GenerateContent(ctx, []ContentPart{{Text: prompt}})
	if err != nil {
		logger.Logger.Error("主题出题失败", zap.String("topic", req.Topic), zap.Error(err))
		return nil, ErrTopicProcessing
	}

	canonical, err := validateQuestions(raw)
	if err != nil {
		return nil, err
	}

	challenge := &model.Challenge{
		UserID:            userID,
		Title:             req.Topic,
		Source:            model.SourceTopic,
		Topic:             req.Topic,
		QuestionType:      req.QuestionType,
		NumberOfQuestions: req.NumberOfQuestions,
		AnswerTiming:      req.AnswerTiming,
		CustomInstruction: req.CustomInstruction,
		Questions:         json.RawMessage(canonical),
	}
	if err := s.repo.Create(challenge); err != nil {
		logger.Logger.Error("挑战保存失败", zap.Error(err))
		return nil, err
	}
	return challenge, nil
}

// GenerateFromDocument 文档路径：按 MIME 分流。
// PDF 与图片作为附件随提示词单次多模态调用；纯文本读入后走文本提示词。
func (s *ChallengeService) GenerateFromDocument(ctx context.Context, userID uint, req *ChallengeRequest, data []byte, filename, mimeType string) (*model.Challenge, error) {
	req.Source = model.SourceDocument
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrDocumentRequired
	}

	var parts []ContentPart
	switch {
	case util.IsPDF(mimeType):
		parts = []ContentPart{
			{Text: documentChallengePrompt(req)},
			{Data: data, MIMEType: mimeType},
		}
	case util.IsImage(mimeType):
		parts = []ContentPart{
			{Text: imageChallengePrompt(req)},
			{Data: data, MIMEType: mimeType},
		}
	case util.IsPlainText(mimeType, filename):
		parts = []ContentPart{
			{Text: contentChallengePrompt(string(data), req)},
		}
	default:
		return nil, ErrUnsupportedDocument
	}

	raw, err := s.generator.GenerateContent(ctx, parts)
	if err != nil {
		logger.Logger.Error("文档出题失败", zap.String("filename", filename), zap.Error(err))
		return nil, ErrDocumentProcessing
	}

	canonical, err := validateQuestions(raw)
	if err != nil {
		return nil, err
	}

	var documentURL string
	if s.storage != nil {
		documentURL, err = s.storage.Store(ctx, data, filename, mimeType)
		if err != nil {
			// 归档失败不阻断出题，记录后继续
			logger.Logger.Warn("文档归档失败", zap.String("filename", filename), zap.Error(err))
		}
	}

	challenge := &model.Challenge{
		UserID:            userID,
		Title:             filename,
		Source:            model.SourceDocument,
		DocumentURL:       documentURL,
		QuestionType:      req.QuestionType,
		NumberOfQuestions: req.NumberOfQuestions,
		AnswerTiming:      req.AnswerTiming,
		CustomInstruction: req.CustomInstruction,
		Questions:         json.RawMessage(canonical),
	}
	if err := s.repo.Create(challenge); err != nil {
		logger.Logger.Error("挑战保存失败", zap.Error(err))
		return nil, err
	}
	return challenge, nil
}

// Get 按 ID 取回挑战，owner 校验在仓储层
func (s *ChallengeService) Get(id string, userID uint) (*model.Challenge, error) {
	return s.repo.FindByID(id, userID)
}

// List 按创建时间倒序分页
func (s *ChallengeService) List(userID uint, limit, offset int) ([]model.Challenge, error) {
	return s.repo.ListByOwner(userID, limit, offset)
}

func (s *ChallengeService) Delete(id string, userID uint) error {
	return s.repo.Delete(id, userID)
}

// validateQuestions 校验模型返回的题目 JSON 并规范化。
// 解析失败时剥掉 Markdown 代码围栏重试一次；校验按原始字段的
// 真值语义进行，保证错误信息里的题号从 1 开始。
func validateQuestions(response string) (string, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		cleaned := leadingFence.ReplaceAllString(response, "")
		cleaned = trailingFence.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)
		if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
			return "", errors.New("Invalid JSON format in response")
		}
	}

	questions, ok := parsed["questions"].([]interface{})
	if !ok {
		return "", errors.New("Invalid response format: missing questions array")
	}

	for idx, item := range questions {
		q, ok := item.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("Question %d is missing required fields", idx+1)
		}
		if !truthy(q["id"]) || !truthy(q["text"]) || !truthy(q["type"]) || !truthy(q["marks"]) {
			return "", fmt.Errorf("Question %d is missing required fields", idx+1)
		}

		if q["type"] == string(model.QuestionObjective) {
			options, ok := q["options"].([]interface{})
			if !ok || len(options) != 4 {
				return "", fmt.Errorf("Question %d must have exactly 4 options", idx+1)
			}
			if !truthy(q["correctAnswer"]) || !truthy(q["explanation"]) {
				return "", fmt.Errorf("Question %d is missing correctAnswer or explanation", idx+1)
			}
		} else {
			scheme, ok := q["markingScheme"].(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("Question %d has invalid marking scheme", idx+1)
			}
			points, pok := scheme["points"].([]interface{})
			marks, mok := scheme["marksPerPoint"].([]interface{})
			if !pok || !mok {
				return "", fmt.Errorf("Question %d has invalid marking scheme", idx+1)
			}
			if len(points) != len(marks) {
				return "", fmt.Errorf("Question %d has mismatched points and marks arrays", idx+1)
			}
		}
	}

	canonical, err := json.Marshal(parsed)
	if err != nil {
		return "", errors.New("Invalid JSON format in response")
	}
	return string(canonical), nil
}

// truthy JSON 值的真值判断：nil、空串、0、false 视为缺失
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}
