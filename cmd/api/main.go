package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ucl-grp21/student-records-api/api/swagger"
	"github.com/ucl-grp21/student-records-api/internal/handler"
	"github.com/ucl-grp21/student-records-api/internal/middleware"
	"github.com/ucl-grp21/student-records-api/internal/repository"
	"github.com/ucl-grp21/student-records-api/internal/service"
	"github.com/ucl-grp21/student-records-api/pkg/cache"
	"github.com/ucl-grp21/student-records-api/pkg/config"
	"github.com/ucl-grp21/student-records-api/pkg/database"
	"github.com/ucl-grp21/student-records-api/pkg/export"
	"github.com/ucl-grp21/student-records-api/pkg/logger"
	corsmiddleware "github.com/ucl-grp21/student-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ucl-grp21/student-records-api/pkg/middleware/requestid"
)

// @title Student Records API
// @version 1.0.0
// @description Course management backend: students, modules, registrations, grades
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	studentRepo := repository.NewStudentRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	userRepo := repository.NewUserRepository(db)

	studentSvc := service.NewStudentService(studentRepo, nil, logr)
	moduleSvc := service.NewModuleService(moduleRepo, redisClient, cfg.Cache.ModuleTTL, nil, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, studentRepo, moduleRepo, nil, logr)
	gradeSvc := service.NewGradeService(gradeRepo, studentRepo, moduleRepo, cfg.Grades.StrictCreate, nil, logr)
	transcriptSvc := service.NewTranscriptService(gradeRepo, studentRepo, export.NewTranscriptPDF(), logr)
	authSvc := service.NewAuthService(userRepo, service.AuthConfig{Secret: cfg.Auth.Secret, Expiration: cfg.Auth.Expiration}, nil, logr)
	metricsSvc := service.NewMetricsService()

	studentHandler := handler.NewStudentHandler(studentSvc)
	moduleHandler := handler.NewModuleHandler(moduleSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	transcriptHandler := handler.NewTranscriptHandler(transcriptSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	guard := func(c *gin.Context) { c.Next() }
	if cfg.Auth.Enabled {
		guard = middleware.JWT(authSvc)
		r.POST("/auth/login", authHandler.Login)
	}

	r.GET("/students", studentHandler.List)
	r.GET("/students/:id", studentHandler.Get)
	r.GET("/students/:id/average", transcriptHandler.Average)
	r.GET("/students/:id/transcript", transcriptHandler.Transcript)
	r.POST("/students", guard, studentHandler.Create)
	r.PUT("/students/:id", guard, studentHandler.Update)
	r.DELETE("/students/:id", guard, studentHandler.Delete)

	r.GET("/modules", moduleHandler.List)
	r.GET("/modules/:code", moduleHandler.Get)
	r.POST("/modules/add", guard, moduleHandler.Add)
	r.DELETE("/modules/:code", guard, moduleHandler.Delete)

	r.GET("/registrations", registrationHandler.List)
	r.GET("/registrations/student/:studentId", registrationHandler.ListByStudent)
	r.POST("/registrations", guard, registrationHandler.Create)

	r.GET("/grades", gradeHandler.List)
	r.GET("/grades/student/:studentId/module/:moduleCode", gradeHandler.GetForModule)
	r.POST("/grades/addGrade", guard, gradeHandler.Add)
	r.PUT("/grades/:id", guard, gradeHandler.Update)
	r.DELETE("/grades/:id", guard, gradeHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "auth", cfg.Auth.Enabled)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
