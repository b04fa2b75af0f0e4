package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/driveops/driveops/internal/auth"
	"github.com/driveops/driveops/internal/config"
	"github.com/driveops/driveops/internal/db"
	"github.com/driveops/driveops/internal/excel"
	httphandler "github.com/driveops/driveops/internal/http"
	"github.com/driveops/driveops/internal/http/middleware"
	"github.com/driveops/driveops/internal/logger"
	"github.com/driveops/driveops/internal/notify"
	"github.com/driveops/driveops/internal/pdf"
	"github.com/driveops/driveops/internal/ratelimit"
	"github.com/driveops/driveops/internal/repository"
	"github.com/driveops/driveops/internal/service"
	"github.com/driveops/driveops/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid operating timezone")
	}

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	mailer, err := notify.NewMailer(cfg.SMTP)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init mailer")
	}

	driverRepo := repository.NewDriverRepository(database)
	dayLogRepo := repository.NewDayLogRepository(database)
	reportRepo := repository.NewReportRepository(database)
	fileStore := storage.NewFileStore(cfg.Upload.StorageRoot)

	limiter := ratelimit.New(
		ratelimit.NewRedisStore(redisClient),
		"login",
		cfg.Login.MaxAttempts,
		cfg.Login.AttemptWindow,
	)
	issuer := auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.TokenTTL)

	driverService := service.NewDriverService(
		driverRepo, dayLogRepo, fileStore, mailer, limiter, issuer,
		cfg.Upload.MaxScreenshotBytes, loc, log, repository.IsDuplicate,
	)
	dayLogService := service.NewDayLogService(
		driverRepo, dayLogRepo, fileStore, cfg.Upload, loc, log, repository.IsDuplicate,
	)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), pdf.NewGenerator(), loc)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(driverService, dayLogService, reportService, loc, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting driveops service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
