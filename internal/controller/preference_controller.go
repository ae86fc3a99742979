package controller

import (
	"chatgenius_backend/internal/service"
	"chatgenius_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PreferenceController struct {
	PreferenceService *service.PreferenceService
}

func NewPreferenceController(preferenceService *service.PreferenceService) *PreferenceController {
	return &PreferenceController{PreferenceService: preferenceService}
}

// Get godoc
// @Summary 用户偏好
// @Description 启动时加载；从未保存过时返回默认值
// @Tags 偏好
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.UserPreference} "成功"
// @Router /api/preferences [get]
func (c *PreferenceController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	pref, err := c.PreferenceService.Get(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, pref)
}

// Save godoc
// @Summary 保存偏好
// @Description 变更即保存，整体覆盖
// @Tags 偏好
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.PreferenceInput true "偏好"
// @Success 200 {object} util.Response{data=model.UserPreference} "成功"
// @Router /api/preferences [put]
func (c *PreferenceController) Save(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var in service.PreferenceInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pref, err := c.PreferenceService.Save(claims.UserID, &in)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, pref)
}
