package app

import (
	"chatgenius_backend/docs"
	"chatgenius_backend/internal/config"
	"chatgenius_backend/internal/middleware"

	"chatgenius_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.POST("/logout", c.auth.Logout)
		authGroup.GET("/me", c.auth.Me)

		// 角色管理
		characters := authGroup.Group("/characters")
		{
			characters.POST("", c.character.Create)
			characters.GET("", c.character.List)
			characters.GET("/public", c.character.ListPublic)
			characters.GET("/public/search", c.character.SearchPublic)
			characters.GET("/references", c.character.ListReferences)
			characters.GET("/:id", c.character.Get)
			characters.PUT("/:id", c.character.Update)
			characters.DELETE("/:id", c.character.Delete)
			characters.GET("/:id/instruction", c.character.Instruction)
			characters.POST("/:id/reference", c.character.AddReference)
			characters.DELETE("/:id/reference", c.character.RemoveReference)
		}

		// 会话与消息
		chat := authGroup.Group("/chat")
		{
			chat.POST("/session", c.chat.StartSession)
			chat.POST("/send", c.chat.Send)
			chat.GET("/history", c.chat.History)
			chat.PUT("/instruction", c.chat.SetInstruction)
		}
		authGroup.GET("/messages/:bucketId", c.chat.ListMessages)
		authGroup.DELETE("/messages/:bucketId", c.chat.ClearMessages)

		// 挑战生成
		challenges := authGroup.Group("/challenges")
		{
			challenges.POST("/topic", c.challenge.GenerateFromTopic)
			challenges.POST("/document", c.challenge.GenerateFromDocument)
			challenges.GET("", c.challenge.List)
			challenges.GET("/:id", c.challenge.Get)
			challenges.DELETE("/:id", c.challenge.Delete)
		}

		// 答题
		quiz := authGroup.Group("/quiz/attempts")
		{
			quiz.POST("", c.quiz.Start)
			quiz.GET("/:id", c.quiz.Get)
			quiz.POST("/:id/answer", c.quiz.Answer)
			quiz.POST("/:id/next", c.quiz.Next)
			quiz.POST("/:id/previous", c.quiz.Previous)
			quiz.POST("/:id/goto", c.quiz.Goto)
			quiz.POST("/:id/submit", c.quiz.Submit)
			quiz.POST("/:id/retry", c.quiz.Retry)
			quiz.DELETE("/:id", c.quiz.Quit)
		}

		// 用户偏好
		authGroup.GET("/preferences", c.preference.Get)
		authGroup.PUT("/preferences", c.preference.Save)
	}
}
