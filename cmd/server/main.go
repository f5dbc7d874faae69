// Package main runs the PurrScribe API server with WebSocket call sessions
// and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/purrscribe/backend/config"
	"github.com/purrscribe/backend/internal/approval"
	"github.com/purrscribe/backend/internal/auth"
	"github.com/purrscribe/backend/internal/calls"
	"github.com/purrscribe/backend/internal/clinics"
	"github.com/purrscribe/backend/internal/files"
	"github.com/purrscribe/backend/internal/middleware"
	"github.com/purrscribe/backend/internal/models"
	"github.com/purrscribe/backend/internal/pets"
	"github.com/purrscribe/backend/internal/transcription"
	"github.com/purrscribe/backend/internal/worker"
	"github.com/purrscribe/backend/pkg/database"
	"github.com/purrscribe/backend/pkg/queue"
	"github.com/purrscribe/backend/pkg/redis"
	"github.com/purrscribe/backend/pkg/response"
	"github.com/purrscribe/backend/pkg/storage"
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
			AudioBucket:          cfg.AWS.AudioBucket,
			FilesBucket:          cfg.AWS.FilesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Call recordings live in an in-process store for the server's lifetime.
	// Audio bytes go to S3 when configured, otherwise to process memory.
	var audioStore calls.AudioStore
	var audioSigner *calls.S3AudioStore
	if s3Client != nil {
		audioSigner = calls.NewS3AudioStore(s3Client)
		audioStore = audioSigner
	} else {
		audioStore = calls.NewMemoryAudioStore()
	}
	callStore := calls.NewStore(audioStore, logger)
	pipeline := transcription.NewPipeline(callStore, cfg.Call.TranscribeDelay, cfg.Call.SummarizeDelay, logger)
	reviewFlow := approval.NewWorkflow(callStore, cfg.Approval.AllowReversal, logger)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	transcriptionWorker := worker.NewTranscriptionProcessor(pipeline, jobQueue, logger)

	callHandler := calls.NewHandler(callStore, pipeline, reviewFlow, cfg.Call.MaxAudioBytes, logger)
	callHandler.SetJobQueue(jobQueue)
	if audioSigner != nil {
		callHandler.SetAudioSigner(audioSigner)
	}
	gateway := calls.NewGateway(callStore, logger,
		calls.WithConnectDelay(cfg.Call.ConnectDelay),
		calls.WithTickInterval(cfg.Call.TickInterval),
	)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Pets
	petRepo := pets.NewRepository(pool)
	petHandler := pets.NewHandler(petRepo, logger)

	// Clinics
	clinicRepo := clinics.NewRepository(pool)
	clinicHandler := clinics.NewHandler(clinicRepo, logger)

	// File attachments (S3-backed)
	fileRepo := files.NewRepository(pool)
	var fileHandler *files.Handler
	if s3Client != nil {
		fileHandler = files.NewHandler(fileRepo, s3Client, logger)
	}

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
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

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)
		api.PATCH("/auth/me", authHandler.UpdateMe)
		api.GET("/users", middleware.RequireRole(models.RoleAdmin), authHandler.List)

		// Call recordings
		api.GET("/calls", callHandler.List)
		api.POST("/calls", callHandler.Create)
		api.GET("/calls/:id", callHandler.GetByID)
		api.DELETE("/calls/:id", callHandler.Delete)
		api.POST("/calls/:id/transcribe", callHandler.Transcribe)
		api.POST("/calls/:id/summarize", callHandler.Summarize)
		api.POST("/calls/:id/approve", middleware.RequireRole(models.RoleAdmin, models.RoleVet), callHandler.Approve)
		api.POST("/calls/:id/reject", middleware.RequireRole(models.RoleAdmin, models.RoleVet), callHandler.Reject)
		api.GET("/calls/:id/audio-url", callHandler.AudioURL)

		// Pets
		api.GET("/pets", petHandler.List)
		api.POST("/pets", petHandler.Create)
		api.GET("/pets/:id", petHandler.GetByID)
		api.PUT("/pets/:id", petHandler.Update)
		api.DELETE("/pets/:id", petHandler.Delete)

		// Clinics
		api.GET("/clinics", clinicHandler.List)
		api.POST("/clinics", middleware.RequireRole(models.RoleAdmin), clinicHandler.Create)
		api.GET("/clinics/:id", clinicHandler.GetByID)
		api.PUT("/clinics/:id", middleware.RequireRole(models.RoleAdmin), clinicHandler.Update)
		api.DELETE("/clinics/:id", middleware.RequireRole(models.RoleAdmin), clinicHandler.Delete)

		// File attachments (requires S3)
		if fileHandler != nil {
			api.POST("/files", fileHandler.Upload)
			api.GET("/files", fileHandler.List)
			api.GET("/files/:id/download-url", fileHandler.DownloadURL)
			api.GET("/files/:id/content", fileHandler.Download)
			api.DELETE("/files/:id", fileHandler.Delete)
		}
	}

	// WebSocket call sessions (token in query; no Authorization header)
	router.GET("/ws/call", gateway.ServeWs(jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Transcription jobs reference the in-process store, so the worker runs
	// inside the server process rather than as a separate binary.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go transcriptionWorker.Run(workerCtx)
	logger.Info("transcription worker started")

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
