package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockKeywordIndex implements driven.KeywordIndex with canned hits.
type mockKeywordIndex struct {
	mu        sync.Mutex
	hits      []domain.KeywordSearchResult
	searchErr error
	lastLimit int

	built    []domain.Recording
	upserted []string
	removed  []string
	buildErr error
}

var _ driven.KeywordIndex = (*mockKeywordIndex)(nil)

func (m *mockKeywordIndex) BuildIndex(_ context.Context, recordings []domain.Recording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buildErr != nil {
		return m.buildErr
	}
	m.built = append([]domain.Recording(nil), recordings...)
	return nil
}

func (m *mockKeywordIndex) Upsert(_ context.Context, rec domain.Recording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, rec.ID)
	return nil
}

func (m *mockKeywordIndex) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, id)
	return nil
}

func (m *mockKeywordIndex) Search(_ context.Context, _ string, limit int) ([]domain.KeywordSearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > 0 && limit < len(m.hits) {
		return m.hits[:limit], nil
	}
	return m.hits, nil
}

func (m *mockKeywordIndex) Clear() {}

func (m *mockKeywordIndex) IndexSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.built)
}

func (m *mockKeywordIndex) NeedsRebuild() bool { return false }

// mockVectorIndex implements driven.VectorIndex with canned hits.
type mockVectorIndex struct {
	hits         []domain.VectorSearchResult
	searchErr    error
	lastMinScore float64
	searchCalls  atomic.Int32
}

var _ driven.VectorIndex = (*mockVectorIndex)(nil)

func (m *mockVectorIndex) AddChunks(context.Context, string, string, []domain.Chunk) error {
	return nil
}

func (m *mockVectorIndex) ReplaceChunks(context.Context, string, []domain.FieldChunks, string) error {
	return nil
}

func (m *mockVectorIndex) RemoveChunks(context.Context, string) error { return nil }

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, limit int, minScore float64) ([]domain.VectorSearchResult, error) {
	m.searchCalls.Add(1)
	m.lastMinScore = minScore
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > 0 && limit < len(m.hits) {
		return m.hits[:limit], nil
	}
	return m.hits, nil
}

func (m *mockVectorIndex) IsIndexed(context.Context, string) (bool, error) { return false, nil }

func (m *mockVectorIndex) GetContentHash(context.Context, string) (string, error) {
	return "", domain.ErrNotFound
}

func (m *mockVectorIndex) UpdateManifest(context.Context, string, string) error { return nil }

func (m *mockVectorIndex) GetIndexedRecordingIDs(context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockVectorIndex) GetStats(context.Context) (domain.VectorIndexStats, error) {
	return domain.VectorIndexStats{}, nil
}

func (m *mockVectorIndex) Clear(context.Context) error { return nil }

func (m *mockVectorIndex) Close() error { return nil }

// mockEmbeddingService implements driven.EmbeddingService.
// Every text embeds to the same fixed vector.
type mockEmbeddingService struct {
	embedding []float32
	err       error
	calls     atomic.Int32
}

var _ driven.EmbeddingService = (*mockEmbeddingService)(nil)

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	if m.embedding == nil {
		return []float32{1, 0, 0}, nil
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int   { return 3 }
func (m *mockEmbeddingService) ModelName() string { return "mock" }
func (m *mockEmbeddingService) Ping(context.Context) error {
	return m.err
}
func (m *mockEmbeddingService) Close() error { return nil }

// staticReadiness implements driven.ModelReadiness.
type staticReadiness bool

func (r staticReadiness) IsReady() bool { return bool(r) }

// mockChunker implements driven.TranscriptChunker. Each call returns one
// chunk holding the whole text.
type mockChunker struct {
	mu    sync.Mutex
	calls []string
	err   error
}

var _ driven.TranscriptChunker = (*mockChunker)(nil)

func (m *mockChunker) ChunkTranscript(_ context.Context, text string) ([]domain.Chunk, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if text == "" {
		return nil, nil
	}
	return []domain.Chunk{{
		Text:          text,
		Embedding:     []float32{1, 0, 0},
		SentenceRange: &domain.SentenceRange{Start: 0, End: 1},
	}}, nil
}

func (m *mockChunker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockProvisioner implements driven.ModelProvisioner.
type mockProvisioner struct {
	status      domain.ModelStatus
	statusErr   error
	downloadErr error
	steps       []domain.ModelStatus
	block       chan struct{}
	downloads   atomic.Int32
}

var _ driven.ModelProvisioner = (*mockProvisioner)(nil)

func (m *mockProvisioner) Status(context.Context) (domain.ModelStatus, error) {
	if m.statusErr != nil {
		return domain.ModelStatus{}, m.statusErr
	}
	return m.status, nil
}

func (m *mockProvisioner) Download(ctx context.Context, progress func(domain.ModelStatus)) error {
	m.downloads.Add(1)
	for _, st := range m.steps {
		progress(st)
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.downloadErr != nil {
		return m.downloadErr
	}
	progress(domain.ModelStatus{Phase: domain.ModelReady, Progress: 1})
	return nil
}
