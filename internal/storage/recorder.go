package storage

import (
	"context"
	"time"

	"github.com/container-census/containerwatch/internal/engines"
	log "github.com/sirupsen/logrus"
)

const cleanupEvery = time.Hour

// Recorder persists every collected snapshot and prunes rows older than
// the retention window at most once per hour
type Recorder struct {
	db          *DB
	retention   time.Duration
	lastCleanup time.Time
}

// NewRecorder creates a recorder; a retention of zero disables pruning
func NewRecorder(db *DB, retention time.Duration) *Recorder {
	return &Recorder{db: db, retention: retention}
}

// Consume saves stats and runs retention cleanup when due
func (r *Recorder) Consume(ctx context.Context, stats engines.ContainersStatistics, at time.Time) error {
	if _, err := r.db.SaveSnapshot(stats, at); err != nil {
		return err
	}

	if r.retention <= 0 || at.Sub(r.lastCleanup) < cleanupEvery {
		return nil
	}
	r.lastCleanup = at

	deleted, err := r.db.CleanupOlderThan(at.Add(-r.retention))
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Infof("Cleaned up %d snapshots older than %v", deleted, r.retention)
	}
	return nil
}
