// Package main runs the story platform HTTP server.
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

	"github.com/gramkatha/backend/config"
	"github.com/gramkatha/backend/internal/access"
	"github.com/gramkatha/backend/internal/activity"
	"github.com/gramkatha/backend/internal/auth"
	"github.com/gramkatha/backend/internal/categories"
	"github.com/gramkatha/backend/internal/middleware"
	"github.com/gramkatha/backend/internal/models"
	"github.com/gramkatha/backend/internal/organizations"
	"github.com/gramkatha/backend/internal/rbac"
	"github.com/gramkatha/backend/internal/regions"
	"github.com/gramkatha/backend/internal/stories"
	"github.com/gramkatha/backend/internal/users"
	"github.com/gramkatha/backend/internal/worker"
	"github.com/gramkatha/backend/pkg/database"
	"github.com/gramkatha/backend/pkg/queue"
	"github.com/gramkatha/backend/pkg/redis"
	"github.com/gramkatha/backend/pkg/response"
	"github.com/gramkatha/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
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
			PhotosBucket:         cfg.AWS.PhotosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Permissions and category access
	permResolver := rbac.NewResolver(rbac.NewRepository(pool))
	accessResolver := access.NewResolver(access.NewRepository(pool))

	// Activity trail
	activityRepo := activity.NewRepository(pool)
	recorder := activity.NewRecorder(jobQueue, logger)
	activityHandler := activity.NewHandler(activityRepo, recorder, logger)
	activityProcessor := worker.NewActivityProcessor(activityRepo, jobQueue, logger)

	// Users and auth
	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo, permResolver, recorder, logger)
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, permResolver, userRepo, logger)

	// Stories
	storyRepo := stories.NewRepository(pool)
	storySvc := stories.NewService(storyRepo, userRepo, permResolver, accessResolver, recorder, logger)
	storyHandler := stories.NewHandler(storySvc, storyRepo, s3Client, logger)
	storyPublic := stories.NewPublicHandler(storyRepo, logger)

	// Categories, organizations, regions
	categoryRepo := categories.NewRepository(pool)
	categoryHandler := categories.NewHandler(categoryRepo, accessResolver, recorder, logger)
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, recorder, logger)
	regionRepo := regions.NewRepository(pool)
	regionHandler := regions.NewHandler(regionRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api")

	// Public surface
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/regions", regionHandler.List)
	api.GET("/story-categories", categoryHandler.List)
	api.GET("/stories/published", storyPublic.List)
	api.GET("/stories/slug/:slug", storyPublic.GetBySlug)
	api.GET("/stories/:id", storyPublic.Get)

	// Authenticated surface
	authed := api.Group("")
	authed.Use(middleware.JWT(jwtService))
	{
		authed.GET("/auth/me", userHandler.Me)

		viewStories := middleware.RequirePermission(userRepo, permResolver, models.PermViewStories)
		manageCategories := middleware.RequirePermission(userRepo, permResolver, models.PermManageStoryCategories)
		postStories := middleware.RequirePermission(userRepo, permResolver, models.PermPostStories)

		authed.POST("/stories", postStories, storyHandler.Submit)
		authed.POST("/stories/photo-upload-url", postStories, storyHandler.PhotoUploadURL)
		authed.GET("/stories/pending", viewStories, storyHandler.ListPending)
		authed.GET("/stories/pending/count", viewStories, storyHandler.CountPending)
		authed.GET("/stories/approved/all", viewStories, storyHandler.ListApproved)
		authed.GET("/stories/approved/:adminId", viewStories, storyHandler.ListApprovedBy)
		authed.GET("/stories/writer/:userId", viewStories, storyHandler.ListByWriter)
		authed.POST("/stories/:id/approve", storyHandler.Approve)
		authed.POST("/stories/:id/reject", storyHandler.Reject)
		authed.PUT("/stories/:id", storyHandler.Edit)
		authed.DELETE("/stories/:id", storyHandler.Delete)

		authed.GET("/story-categories/:id", manageCategories, categoryHandler.Get)
		authed.POST("/story-categories", manageCategories, categoryHandler.Create)
		authed.PUT("/story-categories/:id", manageCategories, categoryHandler.Update)
		authed.PATCH("/story-categories/:id/active", manageCategories, categoryHandler.SetActive)
		authed.DELETE("/story-categories/:id", manageCategories, categoryHandler.Delete)
		authed.PUT("/story-categories/:id/organizations", manageCategories, categoryHandler.SetOrganizations)
		authed.PUT("/story-categories/:id/regions", manageCategories, categoryHandler.SetRegions)
		authed.GET("/story-categories/organization/:orgId", viewStories, categoryHandler.ListForOrganization)

		manageOrgs := middleware.RequirePermission(userRepo, permResolver, models.PermManageOrganizations)
		authed.GET("/organizations", manageOrgs, orgHandler.List)
		authed.GET("/organizations/:id", manageOrgs, orgHandler.Get)
		authed.POST("/organizations", manageOrgs, orgHandler.Create)
		authed.PUT("/organizations/:id", manageOrgs, orgHandler.Update)
		authed.PATCH("/organizations/:id/active", manageOrgs, orgHandler.SetActive)
		authed.DELETE("/organizations/:id", manageOrgs, orgHandler.Delete)
		authed.POST("/regions", manageOrgs, regionHandler.Create)

		manageUsers := middleware.RequirePermission(userRepo, permResolver, models.PermManageUsers)
		authed.GET("/users", manageUsers, userHandler.List)
		authed.GET("/users/:id", manageUsers, userHandler.Get)
		authed.POST("/users", manageUsers, userHandler.Create)
		authed.PUT("/users/:id", manageUsers, userHandler.Update)
		authed.PATCH("/users/:id/active", manageUsers, userHandler.SetActive)
		authed.DELETE("/users/:id", manageUsers, userHandler.Delete)
		authed.GET("/roles", manageUsers, userHandler.ListRoles)
		authed.POST("/roles", manageUsers, userHandler.CreateRole)

		viewActivity := middleware.RequirePermission(userRepo, permResolver, models.PermViewActivity)
		authed.GET("/activities", viewActivity, activityHandler.List)
		authed.POST("/activities", viewActivity, activityHandler.Store)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Drain activity jobs in-process too, so a single-binary deployment
	// still persists the trail. cmd/worker runs the same processor alone.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go activityProcessor.Run(workerCtx)

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
