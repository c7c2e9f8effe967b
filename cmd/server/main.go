package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/coaching-app/internal/api"
	"courtside/coaching-app/internal/config"
	"courtside/coaching-app/internal/repository/mongo"
	"courtside/coaching-app/internal/service"
	"courtside/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Courtside Coaching API
// @version 1.0
// @description API for the Courtside coaching marketplace: players upload match videos, coaches review them with rated feedback.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Starting Courtside server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("Could not load config", zap.Error(err))
	}
	logger.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("Could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("Database connection established.")

	// --- Ensure Indexes and Seed Data ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		ensure := func(name string, err error) {
			if err != nil {
				logger.Error("Index creation failed", zap.String("collection", name), zap.Error(err))
			}
		}
		ensure("users", mongo.EnsureUserIndexes(ctx, appDB.Collection("users")))
		ensure("videos", mongo.EnsureVideoIndexes(ctx, appDB.Collection("videos")))
		ensure("video_coaches", mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("video_coaches")))
		ensure("video_feedback", mongo.EnsureFeedbackIndexes(ctx, appDB.Collection("video_feedback")))
		ensure("pricing_plans", mongo.EnsurePlanIndexes(ctx, appDB.Collection("pricing_plans")))
		ensure("subscriptions", mongo.EnsureSubscriptionIndexes(ctx, appDB.Collection("subscriptions")))
		ensure("survey_responses", mongo.EnsureSurveyIndexes(ctx, appDB.Collection("survey_responses")))

		if err := mongo.SeedDefaultPlans(ctx, appDB); err != nil {
			logger.Error("Default plan seeding failed", zap.Error(err))
		}
		logger.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	logger.Info("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3, logger)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", zap.Error(err))
	}

	// --- Initialize Repositories ---
	logger.Info("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	videoRepo := mongo.NewMongoVideoRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	feedbackRepo := mongo.NewMongoFeedbackRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	subRepo := mongo.NewMongoSubscriptionRepository(appDB)
	surveyRepo := mongo.NewMongoSurveyRepository(appDB)
	txManager := mongo.NewTransactionManager(dbClient)

	// --- Initialize Services ---
	logger.Info("Initializing services...")
	authService := service.NewAuthService(userRepo, planRepo, subRepo, cfg.JWT.Secret, cfg.JWT.Expiration, logger)
	quotaService := service.NewQuotaService(subRepo, planRepo, videoRepo)
	videoService := service.NewVideoService(videoRepo, assignmentRepo, feedbackRepo, userRepo, quotaService, fileStorage, txManager, cfg.Upload.MaxVideoSizeBytes, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, assignmentRepo, videoRepo, fileStorage, txManager, cfg.Upload.MaxImageSizeBytes, cfg.Upload.MaxVideoSizeBytes, logger)
	surveyService := service.NewSurveyService(surveyRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	logger.Info("Setting up API routes...")
	api.SetupRoutes(router, cfg, authService, videoService, quotaService, feedbackService, surveyService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("Server starting", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting.")
}
