package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DataDir string
	APIPort string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	GenerationTimeout time.Duration
	PollInterval      time.Duration
	PollTimeout       time.Duration

	CacheSize int
	CacheTTL  time.Duration

	// MaintenanceSchedule is a cron expression; empty disables the janitor.
	MaintenanceSchedule string
	JobRetention        time.Duration
	IdleStoreTimeout    time.Duration

	// InvitationCodes gate the API; empty disables authentication.
	InvitationCodes []string
	SessionTTL      time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config.
// It applies defaults for optional fields and validates the rest. A .env file
// in the current directory or a parent directory is loaded automatically;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up from the working directory looking for a project-root .env
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		DataDir:             getEnv("DATA_DIR", "./data"),
		APIPort:             getEnv("API_PORT", "9000"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_API_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-5"),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 3 * * *"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	var err error
	if cfg.GenerationTimeout, err = getDuration("GENERATION_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getDuration("POLL_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.PollTimeout, err = getDuration("POLL_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JobRetention, err = getDuration("JOB_RETENTION", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.IdleStoreTimeout, err = getDuration("IDLE_STORE_TIMEOUT", time.Hour); err != nil {
		return nil, err
	}
	// A store handle acquired at dispatch stays in use for up to the
	// generation timeout; evicting sooner would close it mid-generation.
	if cfg.IdleStoreTimeout < cfg.GenerationTimeout {
		return nil, fmt.Errorf("IDLE_STORE_TIMEOUT must be at least GENERATION_TIMEOUT")
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}

	cacheSizeStr := getEnv("CACHE_SIZE", "50")
	cfg.CacheSize, err = strconv.Atoi(cacheSizeStr)
	if err != nil || cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("CACHE_SIZE must be a positive integer")
	}

	for _, code := range strings.Split(getEnv("INVITATION_CODES", ""), ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			cfg.InvitationCodes = append(cfg.InvitationCodes, code)
		}
	}

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\"")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
}
