package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"wikigen/internal/auth"
	"wikigen/internal/config"
	"wikigen/internal/engine"
	"wikigen/internal/generator"
	"wikigen/internal/http"
	"wikigen/internal/maintenance"
	"wikigen/internal/tenant"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Tenant registry: one sqlite store per named database under the data dir
	registry, err := tenant.NewRegistry(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize database registry: %v", err)
	}
	defer func() {
		_ = registry.Close()
	}()

	// The default store is opened eagerly so schema problems fail at startup
	if _, err := registry.Get(tenant.DefaultName); err != nil {
		log.Fatalf("Failed to open default database: %v", err)
	}
	slog.Info("Database registry initialized", "data_dir", cfg.DataDir)

	// Content generation client with an LRU/TTL cache in front
	var gen generator.Service = generator.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	gen = generator.NewCachedService(gen, generator.NewLRUCache(cfg.CacheSize, cfg.CacheTTL))
	slog.Info("Generator initialized", "model", cfg.OpenAIModel, "cache_size", cfg.CacheSize)

	eng := engine.New(gen, cfg.GenerationTimeout)
	poller := engine.NewPoller(cfg.PollInterval, cfg.PollTimeout)

	// Invitation-code gate; no codes means an open API
	var gate auth.Gate
	if len(cfg.InvitationCodes) > 0 {
		gate = auth.NewCodeGate(cfg.InvitationCodes, cfg.SessionTTL)
		slog.Info("Authentication enabled", "codes", len(cfg.InvitationCodes))
	} else {
		slog.Warn("No invitation codes configured; API is open")
	}

	// Scheduled housekeeping: duplicate sweeps, job expiry, idle store cleanup
	if cfg.MaintenanceSchedule != "" {
		janitor := maintenance.New(registry, cfg.JobRetention, cfg.IdleStoreTimeout, logger)
		if err := janitor.Start(cfg.MaintenanceSchedule); err != nil {
			log.Fatalf("Failed to start maintenance schedule: %v", err)
		}
		defer janitor.Stop()
		slog.Info("Maintenance scheduled", "schedule", cfg.MaintenanceSchedule)
	}

	// Create router with dependencies
	deps := &http.Deps{
		Registry: registry,
		Engine:   eng,
		Poller:   poller,
		Gate:     gate,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
