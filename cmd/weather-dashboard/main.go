package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/preview"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/view"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logging.New("weather-dashboard", cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	// Shared HTTP client for calls to the dashboard API.
	httpClient := &http.Client{
		Timeout: cfg.APITimeout,
	}

	api := providers.NewDashboardAPI(httpClient, cfg.APIBase, providers.BackoffConfig{
		MaxRetries:      cfg.APIMaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	})

	// The service is the only writer of the location list and the regions.
	service := dashboard.NewService(api, store.NewLocationStore(), logr, dashboard.Options{
		DefaultLimit: cfg.DefaultLimit,
		LoadAllLimit: cfg.LoadAllLimit,
		PreviewCount: cfg.PreviewCount,
	})

	renderer, err := view.NewRenderer()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	previews := preview.NewRegistry(preview.Limits{
		MaxBytes: cfg.PreviewMaxBytes,
		MaxLive:  cfg.PreviewMaxLive,
		TTL:      cfg.PreviewTTL,
	})
	defer previews.Close()

	// Initial load runs in the background; regions show "Loading…" until it lands.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout*2)
		defer cancel()
		service.Boot(ctx)
	}()

	sched := scheduler.New(service, cfg.RefreshInterval, cfg.APITimeout*2, logr)
	sched.AddSweep("previews", cfg.PreviewSweepInterval, previews)
	if err := sched.Start(); err != nil {
		logr.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.APITimeout + 10*time.Second,
		BodyLimit:             int(cfg.PreviewMaxBytes) + 1<<20,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})

	httpapi.RegisterRoutes(app, &httpapi.Handlers{
		Service:    service,
		Renderer:   renderer,
		Previews:   previews,
		ImagesDir:  cfg.ImagesDir,
		MaxLimit:   cfg.LoadAllLimit,
		PreviewTTL: cfg.PreviewTTL,
		Log:        logr,
	})

	go func() {
		logr.Info("listening", zap.String("port", cfg.Port), zap.String("api", cfg.APIBase))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logr.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logr.Error("error during shutdown", zap.Error(err))
	}
}
