package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func TestRecordingStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewRecordingStore()

	rec := &domain.Recording{ID: "rec-1", Title: "Morning walk", Tags: []string{"walk"}}
	require.NoError(t, store.SaveRecording(ctx, rec))

	got, err := store.GetRecording(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Morning walk", got.Title)

	// Returned values are copies.
	got.Tags[0] = "changed"
	again, err := store.GetRecording(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"walk"}, again.Tags)
}

func TestRecordingStore_GetMissing(t *testing.T) {
	store := NewRecordingStore()
	_, err := store.GetRecording(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordingStore_SaveInvalid(t *testing.T) {
	store := NewRecordingStore()
	assert.ErrorIs(t, store.SaveRecording(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveRecording(context.Background(), &domain.Recording{}), domain.ErrInvalidInput)
}

func TestRecordingStore_ListNewestFirst(t *testing.T) {
	now := time.Now()
	store := NewRecordingStore(
		domain.Recording{ID: "old", CreatedAt: now.Add(-2 * time.Hour)},
		domain.Recording{ID: "new", CreatedAt: now},
		domain.Recording{ID: "mid", CreatedAt: now.Add(-time.Hour)},
	)

	recs, err := store.ListRecordings(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "new", recs[0].ID)
	assert.Equal(t, "mid", recs[1].ID)
	assert.Equal(t, "old", recs[2].ID)
}

func TestRecordingStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewRecordingStore(domain.Recording{ID: "rec-1"})

	require.NoError(t, store.DeleteRecording(ctx, "rec-1"))
	require.NoError(t, store.DeleteRecording(ctx, "rec-1"))

	_, err := store.GetRecording(ctx, "rec-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
