package controller

import (
	"errors"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/service"
	"chatgenius_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// StartAttemptRequest 开始作答请求。
// challengeId 指向已保存的挑战；或直接内联题目与揭示时机。
type StartAttemptRequest struct {
	ChallengeID  string             `json:"challengeId"`
	Title        string             `json:"title"`
	Questions    []model.Question   `json:"questions"`
	AnswerTiming model.AnswerTiming `json:"answerTiming"`
}

// Start godoc
// @Summary 开始作答
// @Description 作答是纯内存态，服务重启后丢失
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body StartAttemptRequest true "作答配置"
// @Success 201 {object} util.Response{data=service.AttemptView} "成功"
// @Failure 400 {object} util.Response "题目为空或揭示时机非法"
// @Failure 404 {object} util.Response "挑战不存在"
// @Router /api/quiz/attempts [post]
func (c *QuizController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var attempt *service.QuizAttempt
	var err error
	if req.ChallengeID != "" {
		attempt, err = c.QuizService.StartFromChallenge(claims.UserID, req.ChallengeID)
	} else {
		attempt, err = c.QuizService.Start(claims.UserID, "", req.Title, req.Questions, req.AnswerTiming)
	}
	if err != nil {
		if errors.Is(err, util.ErrChallengeNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, attempt.View())
}

// Get godoc
// @Summary 作答快照
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "作答 ID"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Failure 404 {object} util.Response "作答不存在"
// @Router /api/quiz/attempts/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attempt, err := c.QuizService.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, attempt.View())
}

// AnswerRequest 作答请求：客观题为选项 ID，主观题为答案全文
type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// Answer godoc
// @Summary 作答当前题目
// @Description after_each 客观题立即判分并揭示；at_final 只缓存答案
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "作答 ID"
// @Param   body body AnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Failure 400 {object} util.Response "空答案或该题已锁定"
// @Failure 404 {object} util.Response "作答不存在"
// @Router /api/quiz/attempts/{id}/answer [post]
func (c *QuizController) Answer(ctx *gin.Context) {
	c.mutate(ctx, func(attempt *service.QuizAttempt) error {
		var req AnswerRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			return err
		}
		return attempt.Answer(req.Answer)
	})
}

// Next godoc
// @Summary 下一题
// @Description 在最后一题上等价于终卷提交
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "作答 ID"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Failure 400 {object} util.Response "当前题未作答"
// @Router /api/quiz/attempts/{id}/next [post]
func (c *QuizController) Next(ctx *gin.Context) {
	c.mutate(ctx, func(attempt *service.QuizAttempt) error {
		_, err := attempt.Next()
		return err
	})
}

// Previous godoc
// @Summary 上一题
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "作答 ID"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Router /api/quiz/attempts/{id}/previous [post]
func (c *QuizController) Previous(ctx *gin.Context) {
	c.mutate(ctx, func(attempt *service.QuizAttempt) error {
		return attempt.Previous()
	})
}

// GotoRequest 跳题请求
type GotoRequest struct {
	Index int `json:"index"`
}

// Goto godoc
// @Summary 跳转题目
// @Description 向前只能跳入已作答的题目
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "作答 ID"
// @Param   body body GotoRequest true "目标序号（从 0 开始）"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Failure 400 {object} util.Response "目标不可达"
// @Router /api/quiz/attempts/{id}/goto [post]
func (c *QuizController) Goto(ctx *gin.Context) {
	c.mutate(ctx, func(attempt *service.QuizAttempt) error {
		var req GotoRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			return err
		}
		return attempt.Goto(req.Index)
	})
}

// Submit godoc
// @Summary 终卷提交
// @Description at_final 在此一次性判分并揭示全部答案
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "作答 ID"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Router /api/quiz/attempts/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	c.mutate(ctx, func(attempt *service.QuizAttempt) error {
		return attempt.Submit()
	})
}

// Retry godoc
// @Summary 重新作答
// @Description 同一套题从头开始，清空全部进度
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "作答 ID"
// @Success 200 {object} util.Response{data=service.AttemptView} "成功"
// @Failure 400 {object} util.Response "作答尚未提交"
// @Router /api/quiz/attempts/{id}/retry [post]
func (c *QuizController) Retry(ctx *gin.Context) {
	c.mutate(ctx, func(attempt *service.QuizAttempt) error {
		return attempt.Retry()
	})
}

// Quit godoc
// @Summary 放弃作答
// @Description 进度直接丢弃，不做任何持久化
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "作答 ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "作答不存在"
// @Router /api/quiz/attempts/{id} [delete]
func (c *QuizController) Quit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.QuizService.Quit(ctx.Param("id"), claims.UserID); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"message": "已放弃作答"})
}

// mutate 取回作答、执行变更、返回最新快照
func (c *QuizController) mutate(ctx *gin.Context, fn func(*service.QuizAttempt) error) {
	claims := util.GetUserFromContext(ctx)
	attempt, err := c.QuizService.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	if err := fn(attempt); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, attempt.View())
}
