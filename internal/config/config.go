package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type AppConfig struct {
	// APIBase is the root URL of the dashboard API.
	APIBase       string        `validate:"required,url"`
	APITimeout    time.Duration `validate:"gt=0"`
	APIMaxRetries int           `validate:"gte=0,lte=10"`

	DefaultLimit int `validate:"gt=0"`
	LoadAllLimit int `validate:"gtefield=DefaultLimit"`
	PreviewCount int `validate:"gt=0"`

	// ImagesDir holds the tile images and placeholder.jpg.
	ImagesDir       string `validate:"required"`
	PreviewMaxBytes int64  `validate:"gt=0"`
	// PreviewMaxLive caps previews held across all visitors.
	PreviewMaxLive int `validate:"gt=0"`
	// PreviewTTL releases a visitor's preview after this long unseen; the
	// owner cookie lives as long.
	PreviewTTL           time.Duration `validate:"gt=0"`
	PreviewSweepInterval time.Duration `validate:"gt=0"`

	// RefreshInterval re-runs boot periodically (0 = disabled).
	RefreshInterval time.Duration `validate:"gte=0"`

	LogLevel string `validate:"oneof=debug info warn error"`
	Port     string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from environment (and an optional .env file)
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.APIBase = getenvDefault("DASHBOARD_API_BASE", "http://localhost:3000")

	timeout, err := time.ParseDuration(getenvDefault("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	cfg.APITimeout = timeout
	cfg.APIMaxRetries = getenvInt("API_MAX_RETRIES", 0)

	cfg.DefaultLimit = getenvInt("DEFAULT_LIMIT", weather.DefaultLimit)
	cfg.LoadAllLimit = getenvInt("LOAD_ALL_LIMIT", weather.LoadAllLimit)
	cfg.PreviewCount = getenvInt("SEARCH_PREVIEW_COUNT", weather.PreviewCount)

	cfg.ImagesDir = getenvDefault("IMAGES_DIR", "images")
	cfg.PreviewMaxBytes = int64(getenvInt("PREVIEW_MAX_BYTES", 10<<20))
	cfg.PreviewMaxLive = getenvInt("PREVIEW_MAX_LIVE", 256)

	ttl, err := time.ParseDuration(getenvDefault("PREVIEW_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREVIEW_TTL: %w", err)
	}
	cfg.PreviewTTL = ttl

	sweep, err := time.ParseDuration(getenvDefault("PREVIEW_SWEEP_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREVIEW_SWEEP_INTERVAL: %w", err)
	}
	cfg.PreviewSweepInterval = sweep

	refresh, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = refresh

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
