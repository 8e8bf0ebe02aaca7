// Package main runs the FormFlow HTTP server with WebSocket live feeds and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/formflow/backend/config"
	"github.com/formflow/backend/internal/applications"
	"github.com/formflow/backend/internal/auth"
	"github.com/formflow/backend/internal/forms"
	"github.com/formflow/backend/internal/insights"
	"github.com/formflow/backend/internal/middleware"
	"github.com/formflow/backend/internal/realtime"
	"github.com/formflow/backend/internal/responses"
	"github.com/formflow/backend/internal/worker"
	"github.com/formflow/backend/pkg/database"
	"github.com/formflow/backend/pkg/queue"
	"github.com/formflow/backend/pkg/redis"
	"github.com/formflow/backend/pkg/response"
	"github.com/formflow/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ResumesBucket:        cfg.AWS.ResumesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Forms
	formRepo := forms.NewRepository(pool)
	formHandler := forms.NewHandler(formRepo, logger)

	// Responses (live feed via hub, async count refresh via queue)
	responseRepo := responses.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	responseHandler := responses.NewHandler(formRepo, responseRepo, jobQueue, hub, logger)
	countProcessor := worker.NewResponseCountProcessor(formRepo, responseRepo, jobQueue, logger)

	// AI insights (summary + inconsistency detection)
	var insightHandler *insights.Handler
	if cfg.AI.APIKey != "" {
		gen, err := insights.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			logger.Fatal("gemini client", zap.Error(err))
		}
		svc := insights.NewService(gen, time.Duration(cfg.AI.TimeoutSec)*time.Second, logger)
		insightHandler = insights.NewHandler(formRepo, responseRepo, svc, logger)
	} else {
		logger.Warn("insights disabled: GEMINI_API_KEY not set")
	}

	// Candidate applications (S3-backed resumes)
	applicationRepo := applications.NewRepository(pool)
	applicationHandler := applications.NewHandler(applicationRepo, s3Client, logger)

	jwtValidate := func(token string) (userID string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", err
		}
		return claims.UserID.String(), nil
	}
	mayWatch := func(formID, userID uuid.UUID) bool {
		form, err := formRepo.GetByID(context.Background(), formID)
		if err != nil {
			return false
		}
		return form.CreatedBy == userID
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Public: candidate applications
	if s3Client != nil {
		router.POST("/apply", applicationHandler.Submit)
	} else {
		logger.Warn("applications disabled: S3 not configured")
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		// Forms
		api.GET("/forms", formHandler.List)
		api.POST("/forms", formHandler.Create)
		api.GET("/forms/:id", formHandler.GetByID)
		api.PUT("/forms/:id", formHandler.Update)
		api.DELETE("/forms/:id", formHandler.Delete)

		// Responses
		api.POST("/forms/:id/responses", responseHandler.Submit)
		api.GET("/forms/:id/responses", responseHandler.ListByForm)

		// Insights (owner only)
		if insightHandler != nil {
			api.POST("/forms/:id/insights/summary", insightHandler.Summarize)
			api.POST("/forms/:id/insights/inconsistencies", insightHandler.DetectInconsistencies)
		}

		// Candidate applications (admin review)
		if s3Client != nil {
			api.GET("/applications", middleware.RequireRole("admin"), applicationHandler.List)
			api.GET("/applications/:id/resume-url", middleware.RequireRole("admin"), applicationHandler.ResumeURL)
		}
	}

	// WebSocket live response feed (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate, mayWatch))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (response count refresh)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go countProcessor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
