package controller

import (
	"errors"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/service"
	"chatgenius_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	ChatService       *service.ChatService
	CharacterService  *service.CharacterService
	PreferenceService *service.PreferenceService
}

func NewChatController(chatService *service.ChatService, characterService *service.CharacterService, preferenceService *service.PreferenceService) *ChatController {
	return &ChatController{
		ChatService:       chatService,
		CharacterService:  characterService,
		PreferenceService: preferenceService,
	}
}

// StartSessionRequest 开启会话请求。
// characterId 省略时使用内置默认助手；instruction 直接指定指令文本。
type StartSessionRequest struct {
	CharacterID string `json:"characterId"`
	Instruction string `json:"instruction"`
}

// StartSession godoc
// @Summary 开启新会话
// @Description 以指定角色（或裸指令）开始会话，替换当前活跃会话
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body StartSessionRequest true "会话配置"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "角色不存在"
// @Failure 502 {object} util.Response "AI 服务不可用"
// @Router /api/chat/session [post]
func (c *ChatController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	instruction := req.Instruction
	bucketID := model.DefaultCharacterID
	if req.CharacterID != "" {
		ch, err := c.CharacterService.Get(req.CharacterID)
		if err != nil {
			util.NotFound(ctx)
			return
		}
		bucketID = ch.ID
		override := c.PreferenceService.DefaultInstruction(claims.UserID)
		instruction = c.CharacterService.Instruction(ch, override)
	} else if instruction == "" {
		override := c.PreferenceService.DefaultInstruction(claims.UserID)
		instruction = c.CharacterService.Instruction(model.DefaultCharacter(), override)
	}

	if err := c.ChatService.StartSession(ctx.Request.Context(), claims.UserID, bucketID, instruction); err != nil {
		util.Error(ctx, 502, err.Error())
		return
	}
	util.Success(ctx, gin.H{"bucketId": bucketID})
}

// SendRequest 发送消息请求
type SendRequest struct {
	Message string `json:"message" binding:"required"`
}

// Send godoc
// @Summary 发送消息
// @Description 在活跃会话中发送一条消息并等待回复
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body SendRequest true "消息"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "消息为空或无活跃会话"
// @Failure 409 {object} util.Response "会话已被替换"
// @Failure 502 {object} util.Response "AI 服务不可用"
// @Router /api/chat/send [post]
func (c *ChatController) Send(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req SendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.ChatService.Send(ctx.Request.Context(), claims.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveSession), errors.Is(err, service.ErrEmptyMessage):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, service.ErrSessionSuperseded):
			util.Error(ctx, 409, err.Error())
		default:
			util.Error(ctx, 502, err.Error())
		}
		return
	}
	util.Success(ctx, gin.H{"reply": reply})
}

// History godoc
// @Summary 活跃会话历史
// @Description 无活跃会话或获取失败时返回空列表
// @Tags 会话
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.ChatTurn} "成功"
// @Router /api/chat/history [get]
func (c *ChatController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	util.Success(ctx, c.ChatService.History(ctx.Request.Context(), claims.UserID))
}

// SetInstructionRequest 更换指令请求
type SetInstructionRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

// SetInstruction godoc
// @Summary 更换系统指令
// @Description 替换活跃会话的指令并重开会话
// @Tags 会话
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body SetInstructionRequest true "新指令"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "无活跃会话"
// @Router /api/chat/instruction [put]
func (c *ChatController) SetInstruction(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req SetInstructionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ChatService.SetInstruction(ctx.Request.Context(), claims.UserID, req.Instruction); err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.Error(ctx, 502, err.Error())
		}
		return
	}
	util.Success(ctx, gin.H{"message": "指令已更新"})
}

// ListMessages godoc
// @Summary 历史消息
// @Description 按角色桶取已落库消息，时间升序
// @Tags 会话
// @Produce  json
// @Security BearerAuth
// @Param   bucketId path string true "消息桶（角色 ID 或 default-ai）"
// @Success 200 {object} util.Response{data=[]model.Message} "成功"
// @Router /api/messages/{bucketId} [get]
func (c *ChatController) ListMessages(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	messages, err := c.ChatService.ListMessages(ctx.Request.Context(), claims.UserID, ctx.Param("bucketId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, messages)
}

// ClearMessages godoc
// @Summary 清空历史消息
// @Tags 会话
// @Produce  json
// @Security BearerAuth
// @Param   bucketId path string true "消息桶"
// @Success 200 {object} util.Response "成功"
// @Router /api/messages/{bucketId} [delete]
func (c *ChatController) ClearMessages(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.ChatService.ClearMessages(ctx.Request.Context(), claims.UserID, ctx.Param("bucketId")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "消息已清空"})
}
