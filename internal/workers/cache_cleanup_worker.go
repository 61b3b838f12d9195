package workers

import (
	"context"
	"time"

	"github.com/alimgiray/contribstats/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ExpiredEntryPurger is a cache that can drop its expired entries
type ExpiredEntryPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CacheCleanupWorker reclaims space held by expired contribution cache entries.
// Reads already ignore expired entries, so a missed run only delays cleanup.
type CacheCleanupWorker struct {
	*BaseWorker
	cache    ExpiredEntryPurger
	interval time.Duration
	log      *logrus.Entry
}

// NewCacheCleanupWorker creates a new cache cleanup worker
func NewCacheCleanupWorker(workerID string, cache ExpiredEntryPurger, interval time.Duration) *CacheCleanupWorker {
	return &CacheCleanupWorker{
		BaseWorker: NewBaseWorker(workerID),
		cache:      cache,
		interval:   interval,
		log:        logger.Component("cache-cleanup").WithField("worker_id", workerID),
	}
}

// Start begins the cleanup loop
func (w *CacheCleanupWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)
	w.log.WithField("interval", w.interval.String()).Info("Cache cleanup worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Cache cleanup worker stopping due to context cancellation")
			return ctx.Err()
		case <-w.StopChan:
			w.log.Info("Cache cleanup worker stopping")
			return nil
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce purges expired entries a single time
func (w *CacheCleanupWorker) RunOnce(ctx context.Context) int64 {
	removed, err := w.cache.DeleteExpired(ctx)
	if err != nil {
		w.log.WithError(err).Warn("Failed to purge expired cache entries")
		return 0
	}
	if removed > 0 {
		w.log.WithField("removed", removed).Debug("Purged expired cache entries")
	}
	return removed
}
