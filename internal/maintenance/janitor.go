// Package maintenance runs scheduled housekeeping over every tenant store:
// duplicate-page sweeps, terminal-job expiry, and idle handle cleanup.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"wikigen/internal/tenant"
)

// Janitor runs periodic cleanup across all tenant stores.
type Janitor struct {
	registry     *tenant.Registry
	jobRetention time.Duration
	idleTimeout  time.Duration
	logger       *slog.Logger

	cron *cron.Cron
	now  func() time.Time
}

// New creates a Janitor. jobRetention bounds how long terminal jobs are kept;
// idleTimeout bounds how long unused store handles stay open.
func New(registry *tenant.Registry, jobRetention, idleTimeout time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		registry:     registry,
		jobRetention: jobRetention,
		idleTimeout:  idleTimeout,
		logger:       logger,
		cron:         cron.New(),
		now:          time.Now,
	}
}

// Start schedules the cleanup run on the given cron expression.
func (j *Janitor) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// Run executes one cleanup pass over every tenant store. Per-store failures
// are logged and do not stop the pass. Cached handles are inspected without
// refreshing their recency, and uncached stores are opened outside the cache,
// so the sweep never keeps a handle alive past the idle cutoff.
func (j *Janitor) Run(ctx context.Context) {
	names, err := j.registry.List()
	if err != nil {
		j.logger.ErrorContext(ctx, "maintenance: failed to list databases", "error", err)
		return
	}

	cutoff := j.now().Add(-j.jobRetention)
	for _, name := range names {
		store, cached := j.registry.Peek(name)
		if !cached {
			opened, err := j.registry.OpenOnce(name)
			if err != nil {
				j.logger.ErrorContext(ctx, "maintenance: failed to open store", "database", name, "error", err)
				continue
			}
			store = opened
		}

		removed, err := store.Pages.RemoveDuplicates(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "maintenance: duplicate sweep failed", "database", name, "error", err)
		} else if removed > 0 {
			j.logger.InfoContext(ctx, "maintenance: removed duplicate pages", "database", name, "removed", removed)
		}

		expired, err := store.Jobs.DeleteTerminalBefore(ctx, cutoff)
		if err != nil {
			j.logger.ErrorContext(ctx, "maintenance: job expiry failed", "database", name, "error", err)
		} else if expired > 0 {
			j.logger.InfoContext(ctx, "maintenance: expired terminal jobs", "database", name, "expired", expired)
		}

		if !cached {
			_ = store.Close()
		}
	}

	if closed := j.registry.CloseIdle(j.idleTimeout); closed > 0 {
		j.logger.InfoContext(ctx, "maintenance: closed idle stores", "closed", closed)
	}
}
