package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatgenius_backend/internal/config"
	"chatgenius_backend/internal/controller"
	"chatgenius_backend/internal/repository"
	"chatgenius_backend/internal/service"
	"chatgenius_backend/pkg/configwatcher"
	"chatgenius_backend/pkg/database"
	"chatgenius_backend/pkg/logger"
	"chatgenius_backend/pkg/monitoring"
	"chatgenius_backend/pkg/security"
	"chatgenius_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	character  *repository.CharacterRepository
	reference  *repository.CharacterReferenceRepository
	message    *repository.MessageRepository
	challenge  *repository.ChallengeRepository
	preference *repository.PreferenceRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	ai         *service.AIService
	chat       *service.ChatService
	character  *service.CharacterService
	challenge  *service.ChallengeService
	quiz       *service.QuizService
	preference *service.PreferenceService
}

type controllers struct {
	auth       *controller.AuthController
	character  *controller.CharacterController
	chat       *controller.ChatController
	challenge  *controller.ChallengeController
	quiz       *controller.QuizController
	preference *controller.PreferenceController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		character:  repository.NewCharacterRepository(db),
		reference:  repository.NewCharacterReferenceRepository(db),
		message:    repository.NewMessageRepository(db),
		challenge:  repository.NewChallengeRepository(db),
		preference: repository.NewPreferenceRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	storageService := service.NewStorageService(cfg)

	aiService, err := service.NewAIService(context.Background(), cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize AI client", zap.Error(err))
	}

	return &services{
		auth:       service.NewAuthService(repos.user, repos.preference, cfg),
		storage:    storageService,
		ai:         aiService,
		chat:       service.NewChatService(aiService, repos.message),
		character:  service.NewCharacterService(repos.character, repos.reference, rdb),
		challenge:  service.NewChallengeService(aiService, repos.challenge, storageService),
		quiz:       service.NewQuizService(repos.challenge),
		preference: service.NewPreferenceService(repos.preference),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.chat),
		character:  controller.NewCharacterController(s.character, s.preference),
		chat:       controller.NewChatController(s.chat, s.character, s.preference),
		challenge:  controller.NewChallengeController(s.challenge),
		quiz:       controller.NewQuizController(s.quiz),
		preference: controller.NewPreferenceController(s.preference),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Logger.Info("Logger initialized successfully")

	// release 模式默认跳过自动迁移，除非显式要求
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode != "release" || cfg.ForceMigrate)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("chatgenius", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Logger.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	// 配置热更新，回调方只读新配置
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		reloaded, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		app.Config = reloaded
		for _, cb := range app.configCallbacks {
			cb(reloaded)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Logger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
