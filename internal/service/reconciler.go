package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/storebox/storebox/internal/repository"
	"github.com/storebox/storebox/internal/storage"
)

// Reconciler sweeps the bucket for blobs no file record references and
// deletes them. Uploads and deletes are best-effort, non-atomic pairs, so
// a crash between the two halves can leave an orphan behind; the sweep is
// the cleanup path for both directions.
type Reconciler struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
	interval time.Duration
	grace    time.Duration
}

func NewReconciler(fileRepo repository.FileRepository, storage storage.Storage, interval, grace time.Duration) *Reconciler {
	return &Reconciler{
		fileRepo: fileRepo,
		storage:  storage,
		interval: interval,
		grace:    grace,
	}
}

// Start runs the sweep on a ticker until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := r.Sweep()
			if err != nil {
				slog.Error("reconciliation sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("reconciliation sweep removed orphaned blobs", "count", removed)
			}
		}
	}
}

// Sweep deletes every bucket object that no file record references and
// that is older than the grace period. The grace period keeps the sweep
// from racing an upload whose record has not been created yet.
func (r *Reconciler) Sweep() (int, error) {
	referenced, err := r.fileRepo.AllBucketFileIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list referenced blobs: %w", err)
	}

	known := make(map[string]bool, len(referenced))
	for _, key := range referenced {
		known[key] = true
	}

	objects, err := r.storage.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list bucket: %w", err)
	}

	cutoff := time.Now().Add(-r.grace)
	removed := 0
	for _, obj := range objects {
		if known[obj.Key] || obj.LastModified.After(cutoff) {
			continue
		}

		err = r.storage.Delete(obj.Key)
		if err != nil {
			slog.Warn("failed to delete orphaned blob", "error", err, "key", obj.Key)
			continue
		}

		slog.Info("deleted orphaned blob", "key", obj.Key)
		removed++
	}

	return removed, nil
}
