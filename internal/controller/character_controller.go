package controller

import (
	"errors"

	"chatgenius_backend/internal/service"
	"chatgenius_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CharacterController struct {
	CharacterService  *service.CharacterService
	PreferenceService *service.PreferenceService
}

func NewCharacterController(characterService *service.CharacterService, preferenceService *service.PreferenceService) *CharacterController {
	return &CharacterController{
		CharacterService:  characterService,
		PreferenceService: preferenceService,
	}
}

// Create godoc
// @Summary 创建角色
// @Description 创建自定义 AI 角色，校验失败不写库
// @Tags 角色
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CharacterInput true "角色信息"
// @Success 201 {object} util.Response{data=model.Character} "创建成功"
// @Failure 400 {object} util.Response "校验失败"
// @Router /api/characters [post]
func (c *CharacterController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var in service.CharacterInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ch, err := c.CharacterService.Create(claims.UserID, &in)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, ch)
}

// List godoc
// @Summary 我的角色列表
// @Tags 角色
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Character} "成功"
// @Router /api/characters [get]
func (c *CharacterController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	characters, err := c.CharacterService.List(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, characters)
}

// Get godoc
// @Summary 角色详情
// @Description 固定 ID default-ai 返回内置默认助手
// @Tags 角色
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "角色 ID"
// @Success 200 {object} util.Response{data=model.Character} "成功"
// @Failure 404 {object} util.Response "角色不存在"
// @Router /api/characters/{id} [get]
func (c *CharacterController) Get(ctx *gin.Context) {
	ch, err := c.CharacterService.Get(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, ch)
}

// Update godoc
// @Summary 编辑角色
// @Description 仅限本人，套用与创建相同的校验
// @Tags 角色
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "角色 ID"
// @Param   body body service.CharacterInput true "角色信息"
// @Success 200 {object} util.Response{data=model.Character} "成功"
// @Failure 400 {object} util.Response "校验失败"
// @Failure 404 {object} util.Response "角色不存在"
// @Router /api/characters/{id} [put]
func (c *CharacterController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var in service.CharacterInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ch, err := c.CharacterService.Update(claims.UserID, ctx.Param("id"), &in)
	if err != nil {
		if errors.Is(err, util.ErrCharacterNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, ch)
}

// Delete godoc
// @Summary 删除角色
// @Tags 角色
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "角色 ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "角色不存在"
// @Router /api/characters/{id} [delete]
func (c *CharacterController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.CharacterService.Delete(claims.UserID, ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.NotFound(ctx)
		}
		return
	}
	util.Success(ctx, gin.H{"message": "角色已删除"})
}

// Instruction godoc
// @Summary 预览编译后的系统指令
// @Tags 角色
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "角色 ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "角色不存在"
// @Router /api/characters/{id}/instruction [get]
func (c *CharacterController) Instruction(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	ch, err := c.CharacterService.Get(ctx.Param("id"))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	override := c.PreferenceService.DefaultInstruction(claims.UserID)
	util.Success(ctx, gin.H{"instruction": c.CharacterService.Instruction(ch, override)})
}

// ListPublic godoc
// @Summary 角色广场
// @Description 公开角色分页列表，短缓存
// @Tags 角色
// @Produce  json
// @Security BearerAuth
// @Param   limit query int false "每页数量" default(20)
// @Param   offset query int false "偏移" default(0)
// @Success 200 {object} util.Response{data=[]model.Character} "成功"
// @Router /api/characters/public [get]
func (c *CharacterController) ListPublic(ctx *gin.Context) {
	limit := util.ParseIntDefault(ctx.Query("limit"), 20)
	offset := util.ParseIntDefault(ctx.Query("offset"), 0)

	characters, err := c.CharacterService.ListPublic(ctx.Request.Context(), limit, offset)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, characters)
}

// SearchPublic godoc
// @Summary 角色广场搜索
// @Tags 角色
// @Produce  json
// @Security BearerAuth
// @Param   q query string true "搜索词"
// @Param   limit query int false "每页数量" default(20)
// @Param   offset query int false "偏移" default(0)
// @Success 200 {object} util.Response{data=[]model.Character} "成功"
// @Router /api/characters/public/search [get]
func (c *CharacterController) SearchPublic(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		util.BadRequest(ctx, "搜索词不能为空")
		return
	}
	limit := util.ParseIntDefault(ctx.Query("limit"), 20)
	offset := util.ParseIntDefault(ctx.Query("offset"), 0)

	characters, err := c.CharacterService.SearchPublic(query, limit, offset)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, characters)
}

// AddReference godoc
// @Summary 收藏公开角色
// @Description 幂等，同一角色重复收藏返回已有引用
// @Tags 角色
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "角色 ID"
// @Success 201 {object} util.Response{data=model.CharacterReference} "成功"
// @Failure 403 {object} util.Response "角色未公开"
// @Failure 404 {object} util.Response "角色不存在"
// @Router /api/characters/{id}/reference [post]
func (c *CharacterController) AddReference(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	ref, err := c.CharacterService.AddReference(claims.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.NotFound(ctx)
		}
		return
	}
	util.Created(ctx, ref)
}

// ListReferences godoc
// @Summary 我收藏的角色
// @Tags 角色
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Character} "成功"
// @Router /api/characters/references [get]
func (c *CharacterController) ListReferences(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	characters, err := c.CharacterService.ListReferences(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, characters)
}

// RemoveReference godoc
// @Summary 取消收藏
// @Tags 角色
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "角色 ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/characters/{id}/reference [delete]
func (c *CharacterController) RemoveReference(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.CharacterService.RemoveReference(claims.UserID, ctx.Param("id")); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"message": "已取消收藏"})
}
