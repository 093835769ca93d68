package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func chunk(text string, emb ...float32) domain.Chunk {
	return domain.Chunk{Text: text, Embedding: emb}
}

func TestVectorIndex_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	index := setupTestStore(t).VectorIndex()

	require.NoError(t, index.AddChunks(ctx, "rec-1", domain.FieldTranscript, []domain.Chunk{
		chunk("about the lake", 1, 0, 0),
		chunk("about dinner", 0, 1, 0),
	}))
	require.NoError(t, index.AddChunks(ctx, "rec-2", domain.FieldContext, []domain.Chunk{
		chunk("near the lake", 0.8, 0.6, 0),
	}))

	results, err := index.Search(ctx, []float32{3, 0, 0}, 2, 0.1)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, domain.VectorSearchResult{
		ChunkID:     "rec-1:transcript:0",
		RecordingID: "rec-1",
		Field:       domain.FieldTranscript,
		ChunkIndex:  0,
		ChunkText:   "about the lake",
		Score:       results[0].Score,
	}, results[0])
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "rec-2:context:0", results[1].ChunkID)
	assert.InDelta(t, 0.8, results[1].Score, 1e-6)
}

func TestVectorIndex_StoresNormalisedEmbeddings(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	index := store.VectorIndex()

	require.NoError(t, index.AddChunks(ctx, "rec-1", domain.FieldTranscript, []domain.Chunk{chunk("a", 3, 4)}))

	var blob []byte
	require.NoError(t, store.db.QueryRow("SELECT embedding FROM recording_chunks").Scan(&blob))
	assert.True(t, domain.IsUnit(bytesToFloat32Slice(blob)))
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	index := setupTestStore(t).VectorIndex()
	require.NoError(t, index.AddChunks(ctx, "rec-1", domain.FieldTranscript, []domain.Chunk{chunk("a", 1, 0, 0)}))

	err := index.AddChunks(ctx, "rec-2", domain.FieldTranscript, []domain.Chunk{chunk("b", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = index.Search(ctx, []float32{1, 0}, 5, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorIndex_AddChunksReplacesField(t *testing.T) {
	ctx := context.Background()
	index := setupTestStore(t).VectorIndex()

	require.NoError(t, index.AddChunks(ctx, "rec", domain.FieldTranscript, []domain.Chunk{chunk("a", 1, 0), chunk("b", 0, 1)}))
	require.NoError(t, index.AddChunks(ctx, "rec", domain.FieldContext, []domain.Chunk{chunk("c", 1, 0)}))
	require.NoError(t, index.AddChunks(ctx, "rec", domain.FieldTranscript, []domain.Chunk{chunk("d", 1, 0)}))

	stats, err := index.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 2, stats.Dimensions)
}

func TestVectorIndex_ManifestAndRemove(t *testing.T) {
	ctx := context.Background()
	index := setupTestStore(t).VectorIndex()

	_, err := index.GetContentHash(ctx, "rec-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, index.AddChunks(ctx, "rec-1", domain.FieldTranscript, []domain.Chunk{chunk("a", 1, 0)}))
	require.NoError(t, index.UpdateManifest(ctx, "rec-1", "h1"))
	require.NoError(t, index.UpdateManifest(ctx, "rec-1", "h2"))
	require.NoError(t, index.AddChunks(ctx, "rec-2", domain.FieldTranscript, []domain.Chunk{chunk("b", 0, 1)}))
	require.NoError(t, index.UpdateManifest(ctx, "rec-2", "h3"))

	hash, err := index.GetContentHash(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "h2", hash)

	ids, err := index.GetIndexedRecordingIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-1", "rec-2"}, ids)

	require.NoError(t, index.RemoveChunks(ctx, "rec-1"))

	indexed, err := index.IsIndexed(ctx, "rec-1")
	require.NoError(t, err)
	assert.False(t, indexed)

	results, err := index.Search(ctx, []float32{1, 0}, 10, -1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "rec-2", results[0].RecordingID)

	stats, err := index.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.VectorIndexStats{Recordings: 1, Chunks: 1, Dimensions: 2}, stats)
}

func TestVectorIndex_Clear(t *testing.T) {
	ctx := context.Background()
	index := setupTestStore(t).VectorIndex()

	require.NoError(t, index.AddChunks(ctx, "rec-1", domain.FieldTranscript, []domain.Chunk{chunk("a", 1, 0)}))
	require.NoError(t, index.UpdateManifest(ctx, "rec-1", "h"))
	require.NoError(t, index.Clear(ctx))

	stats, err := index.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.VectorIndexStats{}, stats)

	ids, err := index.GetIndexedRecordingIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	results, err := index.Search(ctx, []float32{1, 0, 0, 0}, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, index.Close())
}

func TestVectorIndex_InvalidInput(t *testing.T) {
	ctx := context.Background()
	index := setupTestStore(t).VectorIndex()

	assert.ErrorIs(t, index.AddChunks(ctx, "", domain.FieldTranscript, []domain.Chunk{chunk("a", 1)}), domain.ErrInvalidInput)
	assert.ErrorIs(t, index.AddChunks(ctx, "rec", domain.FieldTranscript, []domain.Chunk{{Text: "a"}}), domain.ErrInvalidInput)
	assert.ErrorIs(t, index.UpdateManifest(ctx, "", "h"), domain.ErrInvalidInput)
	_, err := index.Search(ctx, nil, 5, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorIndex_ReplaceChunks(t *testing.T) {
	ctx := context.Background()
	index := setupTestStore(t).VectorIndex()
	require.NoError(t, index.AddChunks(ctx, "rec-1", domain.FieldTranscript, []domain.Chunk{
		chunk("old one", 1, 0), chunk("old two", 0, 1),
	}))
	require.NoError(t, index.AddChunks(ctx, "rec-1", domain.FieldContext, []domain.Chunk{chunk("old context", 1, 1)}))
	require.NoError(t, index.UpdateManifest(ctx, "rec-1", "hash-1"))

	err := index.ReplaceChunks(ctx, "rec-1", []domain.FieldChunks{
		{Field: domain.FieldTranscript, Chunks: []domain.Chunk{chunk("new", 1, 0)}},
	}, "hash-2")
	require.NoError(t, err)

	results, err := index.Search(ctx, []float32{1, 0}, 10, -1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].ChunkText)
	assert.Equal(t, "rec-1:transcript:0", results[0].ChunkID)

	hash, err := index.GetContentHash(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", hash)
}

func TestVectorIndex_ReplaceChunksRollsBackOnMismatch(t *testing.T) {
	ctx := context.Background()
	index := setupTestStore(t).VectorIndex()
	require.NoError(t, index.AddChunks(ctx, "rec-1", domain.FieldTranscript, []domain.Chunk{chunk("a", 1, 0, 0)}))
	require.NoError(t, index.AddChunks(ctx, "rec-2", domain.FieldTranscript, []domain.Chunk{chunk("b", 0, 1, 0)}))
	require.NoError(t, index.UpdateManifest(ctx, "rec-2", "hash-1"))

	err := index.ReplaceChunks(ctx, "rec-2", []domain.FieldChunks{
		{Field: domain.FieldTranscript, Chunks: []domain.Chunk{chunk("b2", 0, 1, 0)}},
		{Field: domain.FieldContext, Chunks: []domain.Chunk{chunk("bad", 1, 0)}},
	}, "hash-2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	results, err := index.Search(ctx, []float32{0, 1, 0}, 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ChunkText)

	hash, err := index.GetContentHash(ctx, "rec-2")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", hash)
}

func TestVectorIndex_ReplaceChunksSoleRecordingMayChangeDimensions(t *testing.T) {
	ctx := context.Background()
	index := setupTestStore(t).VectorIndex()
	require.NoError(t, index.AddChunks(ctx, "rec-1", domain.FieldTranscript, []domain.Chunk{chunk("a", 1, 0, 0)}))

	require.NoError(t, index.ReplaceChunks(ctx, "rec-1", []domain.FieldChunks{
		{Field: domain.FieldTranscript, Chunks: []domain.Chunk{chunk("a", 1, 0)}},
	}, "h"))

	stats, err := index.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Dimensions)
	assert.Equal(t, 1, stats.Recordings)
}
