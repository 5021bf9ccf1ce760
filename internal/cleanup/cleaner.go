// Package cleanup prunes progress sessions whose roadmap no longer
// exists. Live sessions expire through their redis TTL; this worker
// only handles orphans left behind by removed content.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/terra-clan/roadmap-engine/internal/sessions"
	"github.com/terra-clan/roadmap-engine/internal/storage"
)

// Cleaner handles periodic cleanup of orphaned progress sessions
type Cleaner struct {
	repo     storage.Repository
	store    *sessions.Store
	interval time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(repo storage.Repository, store *sessions.Store, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Cleaner{repo: repo, store: store, interval: interval}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	slog.Debug("running cleanup cycle")

	roadmapIDs, err := c.store.RoadmapIDs(ctx)
	if err != nil {
		slog.Error("failed to scan progress sessions", "error", err)
		return
	}

	for _, id := range roadmapIDs {
		roadmap, err := c.repo.GetRoadmap(ctx, id)
		if err != nil {
			slog.Error("failed to check roadmap", "error", err, "id", id)
			continue
		}
		if roadmap != nil {
			continue
		}

		deleted, err := c.store.PurgeRoadmap(ctx, id)
		if err != nil {
			slog.Error("failed to purge orphaned sessions", "error", err, "roadmap", id)
			continue
		}
		slog.Info("orphaned progress sessions purged", "roadmap", id, "count", deleted)
	}
}
