package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"moodtracker/docs" // swagger docs
	"moodtracker/internal/auth"
	"moodtracker/internal/cache"
	"moodtracker/internal/config"
	"moodtracker/internal/db"
	"moodtracker/internal/handler"
	"moodtracker/internal/logging"
	"moodtracker/internal/repository"
	"moodtracker/internal/router"
	"moodtracker/internal/service"
)

// @title Mood Tracker API
// @version 1.0
// @description Mood tracking API for patients and their doctors, with JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}
	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.WithError(err).Fatal("database migrate")
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.WithError(err).Fatal("database handle")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.WithError(err).Warn("redis unavailable, continuing without cache")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	moodRepo := repository.NewMoodRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, log)
	moodService := service.NewMoodService(moodRepo, log, nil)
	assignmentService := service.NewAssignmentService(userRepo, moodRepo, userService, log)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Health: handler.NewHealthHandler(sqlDB),
		Auth:   handler.NewAuthHandler(authService, userService, log),
		Mood:   handler.NewMoodHandler(moodService, log),
		Doctor: handler.NewDoctorHandler(assignmentService, log),
	}, auth.NewMiddleware(jwtService, tokenStore, userService, log), log)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}
	log.Infof("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		log.WithField("addr", addr).Info("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server start")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	log.Info("server stopped")
}
