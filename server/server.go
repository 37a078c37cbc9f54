package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"quoteserver/database"
	"quoteserver/internal/config"
	"quoteserver/promotion"
	apperrors "quoteserver/server/errors"
	"quoteserver/server/handlers"
	"quoteserver/server/middleware"
	"quoteserver/server/services"
)

// Server HTTP сервер системы котирования и промоции
type Server struct {
	config *config.Config

	stagingDB   *database.StagingDB
	promotionDB *database.PromotionDB

	notificationService *services.NotificationService
	errorLogService     *services.ErrorLogService
	prospectService     *services.ProspectService
	promotionService    *services.PromotionService

	prospectsHandler    *handlers.ProspectsHandler
	promotionHandler    *handlers.PromotionHandler
	errorLogHandler     *handlers.ErrorLogHandler
	notificationHandler *handlers.NotificationHandler
	exportHandler       *handlers.ExportHandler
	systemHandler       *handlers.SystemHandler

	httpServer  *http.Server
	httpHandler http.Handler
	handlerOnce sync.Once
	handlerErr  error
}

// NewServer создает сервер и собирает граф сервисов.
// Подключения к обеим базам открываются здесь и закрываются в Shutdown.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	stagingDB, err := database.NewStagingDBWithConfig(cfg.StagingDatabasePath, database.DBConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open staging database: %w", err)
	}

	promotionDB, err := database.NewPromotionDB(cfg.PromotionDatabasePath)
	if err != nil {
		stagingDB.Close()
		return nil, fmt.Errorf("failed to open promotion database: %w", err)
	}

	s := &Server{
		config:      cfg,
		stagingDB:   stagingDB,
		promotionDB: promotionDB,
	}

	if err := s.initServices(); err != nil {
		stagingDB.Close()
		promotionDB.Close()
		return nil, err
	}
	s.initHandlers()

	return s, nil
}

func (s *Server) initServices() error {
	s.notificationService = services.NewNotificationService(s.stagingDB)
	s.errorLogService = services.NewErrorLogService(
		s.stagingDB,
		s.promotionDB,
		s.notificationService,
		apperrors.Severity(s.config.NotificationSeverity),
	)

	prospectService, err := services.NewProspectService(s.stagingDB, s.errorLogService, s.config.DefaultIterations)
	if err != nil {
		return fmt.Errorf("failed to create prospect service: %w", err)
	}
	s.prospectService = prospectService

	retryConfig := promotion.DefaultRetryConfig()
	retryConfig.MaxAttempts = s.config.RetryAttempts
	retryConfig.InitialDelay = s.config.RetryBaseDelay
	promotionService, err := services.NewPromotionService(
		s.stagingDB,
		s.promotionDB,
		s.errorLogService,
		retryConfig,
		promotion.NewGatekeeperWithWindow(s.config.FreshnessWindow),
	)
	if err != nil {
		return fmt.Errorf("failed to create promotion service: %w", err)
	}
	s.promotionService = promotionService

	return nil
}

func (s *Server) initHandlers() {
	metrics := s.errorLogService.Metrics()

	s.prospectsHandler = handlers.NewProspectsHandler(s.prospectService, metrics)
	s.promotionHandler = handlers.NewPromotionHandler(s.promotionService, metrics)
	s.errorLogHandler = handlers.NewErrorLogHandler(s.errorLogService)
	s.notificationHandler = handlers.NewNotificationHandler(s.notificationService)
	s.exportHandler = handlers.NewExportHandler(s.prospectService, metrics)
	s.systemHandler = handlers.NewSystemHandler(s.stagingDB, s.promotionDB, s.promotionService, metrics)
}

// Handler возвращает корневой http.Handler сервера
func (s *Server) Handler() (http.Handler, error) {
	s.handlerOnce.Do(func() {
		s.httpHandler = s.buildRouter()
	})
	if s.handlerErr != nil {
		return nil, s.handlerErr
	}
	return s.httpHandler, nil
}

func (s *Server) buildRouter() *gin.Engine {
	// Режим Gin: release по умолчанию, переопределяется через GIN_MODE
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinRateLimitMiddleware(s.config.RateLimitPerSecond, s.config.RateLimitBurst))

	handlers.RegisterSwaggerRoutes(router)
	s.registerRoutes(router)

	return router
}

func (s *Server) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// Staging и движки котирования
	prospectsAPI := api.Group("/prospects")
	{
		prospectsAPI.POST("", s.prospectsHandler.Create)
		prospectsAPI.GET("", s.prospectsHandler.List)
		prospectsAPI.GET("/:id", s.prospectsHandler.Get)
		prospectsAPI.GET("/:id/artifacts", s.prospectsHandler.Artifacts)

		prospectsAPI.POST("/:id/simulate", s.prospectsHandler.Simulate)
		prospectsAPI.POST("/:id/split", s.prospectsHandler.Split)
		prospectsAPI.POST("/:id/savings", s.prospectsHandler.Savings)
		prospectsAPI.POST("/:id/compliance", s.prospectsHandler.Compliance)
		prospectsAPI.POST("/:id/quote", s.prospectsHandler.Quote)

		prospectsAPI.POST("/:id/promote", s.promotionHandler.Promote)
		prospectsAPI.GET("/:id/export", s.exportHandler.Export)
	}

	// Журнал промоций и целевая схема
	promotionsAPI := api.Group("/promotions")
	{
		promotionsAPI.GET("/log", s.promotionHandler.Log)
		promotionsAPI.GET("/:id", s.promotionHandler.Get)
		promotionsAPI.POST("/:id/rollback", s.promotionHandler.Rollback)
	}
	api.GET("/clients/:id", s.promotionHandler.GetClient)

	// Журнал ошибок и метрики
	errorsAPI := api.Group("/errors")
	{
		errorsAPI.GET("", s.errorLogHandler.List)
		errorsAPI.GET("/metrics", s.errorLogHandler.Metrics)
		errorsAPI.POST("/metrics/reset", s.errorLogHandler.ResetMetrics)
		errorsAPI.PUT("/:id/resolution", s.errorLogHandler.UpdateResolution)
	}

	// Уведомления
	notificationsAPI := api.Group("/notifications")
	{
		notificationsAPI.GET("", s.notificationHandler.List)
		notificationsAPI.POST("/:id/read", s.notificationHandler.MarkAsRead)
	}

	// Система
	api.GET("/health", s.systemHandler.Health)
	api.GET("/stats", s.systemHandler.Stats)
}

// Start запускает HTTP сервер и блокируется до его остановки
func (s *Server) Start() error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%s", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.RequestTimeout,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Сервер запускается на порту %s", s.config.Port)
	log.Printf("API доступно по адресу: http://localhost%s", addr)
	log.Printf("Swagger UI: http://localhost%s/swagger/index.html", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown останавливает HTTP сервер gracefully и закрывает базы
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Initiating graceful shutdown...")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("ошибка остановки сервера: %w", err)
		}
	}

	if err := s.stagingDB.Close(); err != nil {
		log.Printf("failed to close staging database: %v", err)
	}
	if err := s.promotionDB.Close(); err != nil {
		log.Printf("failed to close promotion database: %v", err)
	}

	log.Println("Graceful shutdown completed")
	return nil
}
