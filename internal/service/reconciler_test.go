package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storebox/storebox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepDeletesOrphanedBlobs(t *testing.T) {
	repo := newFakeFileRepo()
	store := newFakeStorage()
	reconciler := NewReconciler(repo, store, time.Hour, time.Hour)

	owner := newTestUser("alice@example.com")
	file := seedFile(t, repo, owner, "kept.pdf", 100, time.Now())

	old := time.Now().Add(-2 * time.Hour)
	store.objects[file.BucketFileID] = old
	store.objects["orphan-old"] = old
	store.objects["orphan-fresh"] = time.Now()

	removed, err := reconciler.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// the referenced blob survives
	_, ok := store.objects[file.BucketFileID]
	assert.True(t, ok)

	// the stale orphan is gone; the fresh one is inside the grace period
	_, ok = store.objects["orphan-old"]
	assert.False(t, ok)
	_, ok = store.objects["orphan-fresh"]
	assert.True(t, ok)
}

func TestSweepWithEmptyBucket(t *testing.T) {
	reconciler := NewReconciler(newFakeFileRepo(), newFakeStorage(), time.Hour, time.Hour)

	removed, err := reconciler.Sweep()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSweepIgnoresEveryReferencedBlob(t *testing.T) {
	repo := newFakeFileRepo()
	store := newFakeStorage()
	reconciler := NewReconciler(repo, store, time.Hour, time.Hour)

	old := time.Now().Add(-2 * time.Hour)
	for i := 0; i < 3; i++ {
		file := &model.File{
			ID:           uuid.New().String(),
			Name:         "f.pdf",
			Type:         model.FileTypeDocument,
			BucketFileID: uuid.New().String(),
		}
		require.NoError(t, repo.Create(file))
		store.objects[file.BucketFileID] = old
	}

	removed, err := reconciler.Sweep()
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Len(t, store.objects, 3)
}
