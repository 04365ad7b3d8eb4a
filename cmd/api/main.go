package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/activity-report-api/internal/config"
	"github.com/noah-isme/activity-report-api/internal/database"
	"github.com/noah-isme/activity-report-api/internal/handler"
	"github.com/noah-isme/activity-report-api/internal/middleware"
	"github.com/noah-isme/activity-report-api/internal/models"
	"github.com/noah-isme/activity-report-api/internal/repository"
	"github.com/noah-isme/activity-report-api/internal/router"
	"github.com/noah-isme/activity-report-api/internal/service"
	"github.com/noah-isme/activity-report-api/pkg/renderer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// The identity and submission services own the schema; only local runs migrate it here.
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&models.User{}, &models.ActivityTemplate{}, &models.Submission{}); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access database handle: %v", err)
	}
	defer sqlDB.Close()

	probes := []handler.HealthProbe{
		{Name: "database", Check: sqlDB.PingContext},
	}

	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		limiterStorage = database.NewRedisStorage(redisClient, "")
		probes = append(probes, handler.HealthProbe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	} else {
		logger.Warn().Msg("redis url not configured, export rate limits are per instance")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	pdfRenderer := renderer.NewPlaywrightRenderer(renderer.Config{
		BrowserPath:     cfg.RenderBrowserPath,
		InstallBrowsers: cfg.RenderInstallBrowsers,
		Logger:          logger,
	})
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to stop pdf renderer")
		}
	}()

	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	reportService := service.NewReportService(userRepo, templateRepo, submissionRepo, pdfRenderer, validate, service.ReportConfig{
		Location:        cfg.ReportLocation,
		DefaultPageSize: cfg.ReportDefaultPageSize,
		Render: renderer.Budget{
			Timeout:  cfg.RenderTimeout,
			MaxBytes: cfg.RenderMaxBytes,
		},
	}, logger)
	templateService := service.NewTemplateService(templateRepo, logger)

	reportHandler := handler.NewReportHandler(reportService, logger)
	exportHandler := handler.NewExportHandler(reportService, middleware.RateLimit("exports", cfg.ExportRateLimit, cfg.ExportRateWindow, limiterStorage), logger)
	templateHandler := handler.NewTemplateHandler(templateService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		// Rendering dominates export latency.
		WriteTimeout: cfg.RenderTimeout + 15*time.Second,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		ReportHandler:   reportHandler,
		ExportHandler:   exportHandler,
		TemplateHandler: templateHandler,
		HealthProbes:    probes,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
