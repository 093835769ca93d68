package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/adapters/driven/index/bm25"
	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/cache"
	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/murmur/internal/core/domain"
)

type indexFixture struct {
	store   *memory.RecordingStore
	keyword *bm25.Index
	vectors *memory.VectorStore
	chunker *mockChunker
}

func newIndexFixture(recs ...domain.Recording) *indexFixture {
	return &indexFixture{
		store:   memory.NewRecordingStore(recs...),
		keyword: bm25.New(),
		vectors: memory.NewVectorStore(),
		chunker: &mockChunker{},
	}
}

func (f *indexFixture) service(opts ...IndexingOption) *IndexingService {
	return NewIndexingService(f.store, f.keyword, f.vectors, f.chunker, opts...)
}

func TestIndexingService_IndexRecording(t *testing.T) {
	r := rec("a", 0)
	r.Context = "kitchen table"
	f := newIndexFixture(r)
	svc := f.service()
	ctx := context.Background()

	require.NoError(t, svc.IndexRecording(ctx, r, false))

	hash, err := f.vectors.GetContentHash(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, r.ContentHash(), hash)

	stats, err := f.vectors.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Recordings)
	assert.Equal(t, 2, stats.Chunks, "transcript and context each produce a chunk")
	assert.Equal(t, 1, f.keyword.IndexSize())
}

func TestIndexingService_SkipsUnchangedContent(t *testing.T) {
	r := rec("a", 0)
	f := newIndexFixture(r)
	svc := f.service()
	ctx := context.Background()

	require.NoError(t, svc.IndexRecording(ctx, r, false))
	calls := f.chunker.callCount()

	// A title change does not alter the embedded text.
	r.Title = "renamed"
	require.NoError(t, svc.IndexRecording(ctx, r, false))
	assert.Equal(t, calls, f.chunker.callCount())

	require.NoError(t, svc.IndexRecording(ctx, r, true))
	assert.Greater(t, f.chunker.callCount(), calls)

	r.Transcript = "something else entirely"
	calls = f.chunker.callCount()
	require.NoError(t, svc.IndexRecording(ctx, r, false))
	assert.Greater(t, f.chunker.callCount(), calls)
}

func TestIndexingService_ReplacesChunksWithoutResidue(t *testing.T) {
	r := rec("a", 0)
	r.Context = "first context"
	f := newIndexFixture(r)
	svc := f.service()
	ctx := context.Background()

	require.NoError(t, svc.IndexRecording(ctx, r, false))

	r.Context = ""
	require.NoError(t, svc.IndexRecording(ctx, r, false))

	stats, err := f.vectors.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Chunks)

	hits, err := f.vectors.Search(ctx, []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	for _, h := range hits {
		assert.Equal(t, domain.FieldTranscript, h.Field)
	}
}

func TestIndexingService_ChunkFailureKeepsPreviousChunks(t *testing.T) {
	r := rec("a", 0)
	f := newIndexFixture(r)
	svc := f.service()
	ctx := context.Background()

	require.NoError(t, svc.IndexRecording(ctx, r, false))

	f.chunker.err = domain.ErrEmbeddingUnavailable
	r.Transcript = "changed"
	err := svc.IndexRecording(ctx, r, false)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	indexed, err := f.vectors.IsIndexed(ctx, "a")
	require.NoError(t, err)
	assert.True(t, indexed)
}

func TestIndexingService_ModelNotReady(t *testing.T) {
	r := rec("a", 0)
	f := newIndexFixture(r)
	svc := f.service(WithIndexReadiness(staticReadiness(false)))

	err := svc.IndexRecording(context.Background(), r, false)

	assert.ErrorIs(t, err, domain.ErrModelNotReady)
	assert.Zero(t, f.chunker.callCount())
	// Keyword side is still maintained.
	assert.Equal(t, 1, f.keyword.IndexSize())
}

func TestIndexingService_KeywordOnly(t *testing.T) {
	r := rec("a", 0)
	store := memory.NewRecordingStore(r)
	keyword := bm25.New()
	svc := NewIndexingService(store, keyword, nil, nil)

	require.NoError(t, svc.IndexRecording(context.Background(), r, false))
	assert.Equal(t, 1, keyword.IndexSize())

	report, err := svc.Rebuild(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.KeywordDocuments)
	assert.Zero(t, report.Indexed)
}

func TestIndexingService_InvalidRecording(t *testing.T) {
	svc := newIndexFixture().service()

	err := svc.IndexRecording(context.Background(), domain.Recording{}, false)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexingService_RemoveRecording(t *testing.T) {
	r := rec("a", 0)
	f := newIndexFixture(r)
	svc := f.service()
	ctx := context.Background()
	require.NoError(t, svc.IndexRecording(ctx, r, false))

	require.NoError(t, svc.RemoveRecording(ctx, "a"))

	assert.Zero(t, f.keyword.IndexSize())
	indexed, err := f.vectors.IsIndexed(ctx, "a")
	require.NoError(t, err)
	assert.False(t, indexed)
}

func TestIndexingService_Rebuild(t *testing.T) {
	var recs []domain.Recording
	for i := 0; i < 12; i++ {
		recs = append(recs, rec(fmt.Sprintf("r%02d", i), time.Duration(i)*time.Minute))
	}
	f := newIndexFixture(recs...)
	svc := f.service(WithIndexWorkers(3))
	ctx := context.Background()

	// A recording that was indexed and later deleted from the store.
	require.NoError(t, f.vectors.AddChunks(ctx, "gone", domain.FieldTranscript,
		[]domain.Chunk{{Text: "x", Embedding: []float32{1, 0, 0}}}))
	require.NoError(t, f.vectors.UpdateManifest(ctx, "gone", "hash"))

	report, err := svc.Rebuild(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 12, report.Indexed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 1, report.Removed)
	assert.Equal(t, 12, report.KeywordDocuments)
	assert.False(t, f.keyword.NeedsRebuild())

	ids, err := f.vectors.GetIndexedRecordingIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 12)
	assert.NotContains(t, ids, "gone")

	report, err = svc.Rebuild(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Indexed)
	assert.Equal(t, 12, report.Skipped)

	report, err = svc.Rebuild(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 12, report.Indexed)
}

func TestIndexingService_RebuildPropagatesEmbeddingFailure(t *testing.T) {
	f := newIndexFixture(rec("a", 0), rec("b", 0))
	f.chunker.err = errors.New("embedding backend offline")

	_, err := f.service().Rebuild(context.Background(), false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding backend offline")
}

func TestIndexingService_RebuildModelNotReady(t *testing.T) {
	f := newIndexFixture(rec("a", 0))

	report, err := f.service(WithIndexReadiness(staticReadiness(false))).Rebuild(context.Background(), false)

	assert.ErrorIs(t, err, domain.ErrModelNotReady)
	assert.Equal(t, 1, report.KeywordDocuments)
}

func TestIndexingService_Stats(t *testing.T) {
	r := rec("a", 0)
	f := newIndexFixture(r)
	svc := f.service()
	ctx := context.Background()
	require.NoError(t, svc.IndexRecording(ctx, r, false))

	stats, keywordSize, err := svc.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, keywordSize)
	assert.Equal(t, 1, stats.Recordings)
	assert.Equal(t, 3, stats.Dimensions)
}

func TestNewIndexingService_Workers(t *testing.T) {
	svc := NewIndexingService(nil, nil, nil, nil, WithIndexWorkers(0))
	assert.Equal(t, DefaultIndexWorkers, svc.workers)

	svc = NewIndexingService(nil, nil, nil, nil, WithIndexWorkers(8))
	assert.Equal(t, 8, svc.workers)
}

// observedVectorStore runs a search after every write, recording what a
// concurrent reader would see for one recording at that moment.
type observedVectorStore struct {
	*memory.VectorStore
	watch string
	ops   []string
	seen  []int
}

func (o *observedVectorStore) observe(ctx context.Context, op string) {
	o.ops = append(o.ops, op)
	hits, err := o.VectorStore.Search(ctx, []float32{1, 0, 0}, 10, 0)
	if err != nil {
		o.seen = append(o.seen, -1)
		return
	}
	n := 0
	for _, h := range hits {
		if h.RecordingID == o.watch {
			n++
		}
	}
	o.seen = append(o.seen, n)
}

func (o *observedVectorStore) ReplaceChunks(ctx context.Context, id string, fields []domain.FieldChunks, hash string) error {
	err := o.VectorStore.ReplaceChunks(ctx, id, fields, hash)
	o.observe(ctx, "replace")
	return err
}

func (o *observedVectorStore) RemoveChunks(ctx context.Context, id string) error {
	err := o.VectorStore.RemoveChunks(ctx, id)
	o.observe(ctx, "remove")
	return err
}

func (o *observedVectorStore) AddChunks(ctx context.Context, id, field string, chunks []domain.Chunk) error {
	err := o.VectorStore.AddChunks(ctx, id, field, chunks)
	o.observe(ctx, "add")
	return err
}

func (o *observedVectorStore) UpdateManifest(ctx context.Context, id, hash string) error {
	err := o.VectorStore.UpdateManifest(ctx, id, hash)
	o.observe(ctx, "manifest")
	return err
}

func TestIndexingService_ReindexNeverExposesPartialChunks(t *testing.T) {
	r := rec("a", 0)
	r.Context = "kitchen table"
	ctx := context.Background()

	vectors := &observedVectorStore{VectorStore: memory.NewVectorStore(), watch: "a"}
	svc := NewIndexingService(memory.NewRecordingStore(r), bm25.New(), vectors, &mockChunker{})
	require.NoError(t, svc.IndexRecording(ctx, r, false))

	vectors.ops, vectors.seen = nil, nil
	r.Transcript = "a different morning"
	require.NoError(t, svc.IndexRecording(ctx, r, false))

	assert.Equal(t, []string{"replace"}, vectors.ops, "a re-index is a single write")
	assert.Equal(t, []int{2}, vectors.seen, "both fields stay searchable across the re-index")

	hash, err := vectors.GetContentHash(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, r.ContentHash(), hash)
}

func TestIndexingService_ReindexDropsRemovedField(t *testing.T) {
	r := rec("a", 0)
	r.Context = "kitchen table"
	f := newIndexFixture(r)
	svc := f.service()
	ctx := context.Background()
	require.NoError(t, svc.IndexRecording(ctx, r, false))

	r.Context = ""
	require.NoError(t, svc.IndexRecording(ctx, r, false))

	stats, err := f.vectors.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Chunks)
}

func TestIndexingService_RebuildRefreshesCachedStore(t *testing.T) {
	backing := memory.NewRecordingStore(rec("a", 0))
	cached := cache.NewRecordingCache(backing, time.Hour)
	keyword := bm25.New()
	vectors := memory.NewVectorStore()
	svc := NewIndexingService(cached, keyword, vectors, &mockChunker{})
	ctx := context.Background()

	_, err := svc.Rebuild(ctx, false)
	require.NoError(t, err)

	// Written by another process, bypassing this process's cache.
	b := rec("b", 0)
	b.Transcript = "a zebra at the crossing"
	require.NoError(t, backing.SaveRecording(ctx, &b))

	report, err := svc.Rebuild(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.KeywordDocuments)
	assert.Equal(t, 1, report.Indexed)

	hits, err := keyword.Search(ctx, "zebra", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].Recording.ID)
}

// failingRefreshStore is a cached store whose refresh fails.
type failingRefreshStore struct {
	*memory.RecordingStore
}

func (failingRefreshStore) ForceRefresh(context.Context) error {
	return errors.New("disk unavailable")
}

func TestIndexingService_RebuildRefreshFailure(t *testing.T) {
	store := failingRefreshStore{RecordingStore: memory.NewRecordingStore(rec("a", 0))}
	svc := NewIndexingService(store, bm25.New(), memory.NewVectorStore(), &mockChunker{})

	_, err := svc.Rebuild(context.Background(), false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk unavailable")
}
