package controller

import (
	"errors"
	"io"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/service"
	"chatgenius_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
}

func NewChallengeController(challengeService *service.ChallengeService) *ChallengeController {
	return &ChallengeController{ChallengeService: challengeService}
}

// TopicChallengeRequest 主题出题请求
type TopicChallengeRequest struct {
	Topic             string             `json:"topic" binding:"required"`
	QuestionType      model.QuestionType `json:"questionType" binding:"required"`
	NumberOfQuestions int                `json:"numberOfQuestions" binding:"required"`
	AnswerTiming      model.AnswerTiming `json:"answerTiming" binding:"required"`
	CustomInstruction string             `json:"customInstruction"`
}

// GenerateFromTopic godoc
// @Summary 主题出题
// @Description 基于主题两段式生成题目：先分析主题再出题
// @Tags 挑战
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body TopicChallengeRequest true "出题配置"
// @Success 201 {object} util.Response{data=model.Challenge} "成功"
// @Failure 400 {object} util.Response "配置非法或题目 JSON 校验失败"
// @Failure 502 {object} util.Response "AI 服务不可用"
// @Router /api/challenges/topic [post]
func (c *ChallengeController) GenerateFromTopic(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req TopicChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.GenerateFromTopic(ctx.Request.Context(), claims.UserID, &service.ChallengeRequest{
		Topic:             req.Topic,
		QuestionType:      req.QuestionType,
		NumberOfQuestions: req.NumberOfQuestions,
		AnswerTiming:      req.AnswerTiming,
		CustomInstruction: req.CustomInstruction,
	})
	if err != nil {
		if errors.Is(err, service.ErrTopicProcessing) {
			util.Error(ctx, 502, err.Error())
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, challenge)
}

// GenerateFromDocument godoc
// @Summary 文档出题
// @Description multipart 上传 PDF/图片/纯文本文档并出题
// @Tags 挑战
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "文档文件"
// @Param   questionType formData string true "objective 或 subjective"
// @Param   numberOfQuestions formData int true "题目数 1-25"
// @Param   answerTiming formData string true "after_each 或 at_final"
// @Param   customInstruction formData string false "自定义指令"
// @Success 201 {object} util.Response{data=model.Challenge} "成功"
// @Failure 400 {object} util.Response "文件缺失、过大或格式不支持"
// @Failure 502 {object} util.Response "AI 服务不可用"
// @Router /api/challenges/document [post]
func (c *ChallengeController) GenerateFromDocument(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "请上传文档")
		return
	}
	if fileHeader.Size > util.MaxDocumentSize {
		util.BadRequest(ctx, "文件过大，最大 20MB")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimePDF, util.MimeImage, util.MimeText})
	if err != nil {
		util.BadRequest(ctx, "仅支持 PDF、图片或纯文本文档")
		return
	}
	if util.IsImage(mimeType) && fileHeader.Size > util.MaxImageSize {
		util.BadRequest(ctx, "图片过大，最大 4MB")
		return
	}

	// MIME 嗅探消耗了前 512 字节，读全文前回到文件开头
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	data, err := io.ReadAll(src)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	req := &service.ChallengeRequest{
		QuestionType:      model.QuestionType(ctx.PostForm("questionType")),
		NumberOfQuestions: util.ParseIntDefault(ctx.PostForm("numberOfQuestions"), 0),
		AnswerTiming:      model.AnswerTiming(ctx.PostForm("answerTiming")),
		CustomInstruction: ctx.PostForm("customInstruction"),
	}

	challenge, err := c.ChallengeService.GenerateFromDocument(ctx.Request.Context(), claims.UserID, req, data, fileHeader.Filename, mimeType)
	if err != nil {
		if errors.Is(err, service.ErrDocumentProcessing) {
			util.Error(ctx, 502, err.Error())
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, challenge)
}

// List godoc
// @Summary 我的挑战列表
// @Tags 挑战
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "每页数量" default(20)
// @Param   offset query int false "偏移" default(0)
// @Success 200 {object} util.Response{data=[]model.Challenge} "成功"
// @Router /api/challenges [get]
func (c *ChallengeController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	limit := util.ParseIntDefault(ctx.Query("limit"), 20)
	offset := util.ParseIntDefault(ctx.Query("offset"), 0)

	challenges, err := c.ChallengeService.List(claims.UserID, limit, offset)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, challenges)
}

// Get godoc
// @Summary 挑战详情
// @Tags 挑战
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "挑战 ID"
// @Success 200 {object} util.Response{data=model.Challenge} "成功"
// @Failure 404 {object} util.Response "挑战不存在"
// @Router /api/challenges/{id} [get]
func (c *ChallengeController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	challenge, err := c.ChallengeService.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, challenge)
}

// Delete godoc
// @Summary 删除挑战
// @Tags 挑战
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "挑战 ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "挑战不存在"
// @Router /api/challenges/{id} [delete]
func (c *ChallengeController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.ChallengeService.Delete(ctx.Param("id"), claims.UserID); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"message": "挑战已删除"})
}
