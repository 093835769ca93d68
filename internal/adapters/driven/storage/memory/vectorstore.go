package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorIndex = (*VectorStore)(nil)

type storedChunk struct {
	text      string
	embedding []float32
}

// VectorStore is an in-memory driven.VectorIndex using exact cosine search.
// Embeddings are normalised on insert so search is a dot product.
type VectorStore struct {
	mu         sync.RWMutex
	chunks     map[string]map[string][]storedChunk // recordingID -> field -> chunks
	manifest   map[string]string
	dimensions int
	closed     bool
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		chunks:   make(map[string]map[string][]storedChunk),
		manifest: make(map[string]string),
	}
}

// AddChunks stores the chunks of one field of a recording, replacing any
// chunks previously stored for that field.
func (s *VectorStore) AddChunks(_ context.Context, recordingID, field string, chunks []domain.Chunk) error {
	if recordingID == "" || field == "" {
		return fmt.Errorf("%w: recording ID and field are required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrVectorIndexUnavailable
	}

	stored, dims, err := prepareChunks(chunks, s.dimensions)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return nil
	}

	fields, ok := s.chunks[recordingID]
	if !ok {
		fields = make(map[string][]storedChunk)
		s.chunks[recordingID] = fields
	}
	fields[field] = stored
	s.dimensions = dims
	return nil
}

// ReplaceChunks swaps all chunks of a recording and its manifest entry
// under a single write lock.
func (s *VectorStore) ReplaceChunks(
	_ context.Context,
	recordingID string,
	fields []domain.FieldChunks,
	contentHash string,
) error {
	if recordingID == "" {
		return fmt.Errorf("%w: recording ID is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrVectorIndexUnavailable
	}

	// The recording's own chunks do not pin the dimensions it is replaced with.
	dims := s.dimensions
	if _, ok := s.chunks[recordingID]; ok && len(s.chunks) == 1 {
		dims = 0
	}

	replacement := make(map[string][]storedChunk, len(fields))
	for _, fc := range fields {
		if fc.Field == "" {
			return fmt.Errorf("%w: field is required", domain.ErrInvalidInput)
		}
		stored, d, err := prepareChunks(fc.Chunks, dims)
		if err != nil {
			return fmt.Errorf("field %s: %w", fc.Field, err)
		}
		dims = d
		if len(stored) > 0 {
			replacement[fc.Field] = stored
		}
	}

	if len(replacement) == 0 {
		delete(s.chunks, recordingID)
	} else {
		s.chunks[recordingID] = replacement
	}
	s.manifest[recordingID] = contentHash
	if len(s.chunks) == 0 {
		dims = 0
	}
	s.dimensions = dims
	return nil
}

// prepareChunks validates embedding sizes against dims (0 means unset) and
// normalises them. It returns the dimensions the chunks agree on.
func prepareChunks(chunks []domain.Chunk, dims int) ([]storedChunk, int, error) {
	stored := make([]storedChunk, 0, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return nil, dims, fmt.Errorf("%w: chunk %d has no embedding", domain.ErrInvalidInput, i)
		}
		if dims == 0 {
			dims = len(c.Embedding)
		}
		if len(c.Embedding) != dims {
			return nil, dims, fmt.Errorf("%w: chunk %d has %d dimensions, index has %d",
				domain.ErrInvalidInput, i, len(c.Embedding), dims)
		}
		stored = append(stored, storedChunk{text: c.Text, embedding: domain.Normalize(c.Embedding)})
	}
	return stored, dims, nil
}

// RemoveChunks deletes every chunk and the manifest entry of a recording.
func (s *VectorStore) RemoveChunks(_ context.Context, recordingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrVectorIndexUnavailable
	}

	delete(s.chunks, recordingID)
	delete(s.manifest, recordingID)
	if len(s.chunks) == 0 {
		s.dimensions = 0
	}
	return nil
}

// Search returns the top limit chunks with similarity >= minScore.
func (s *VectorStore) Search(_ context.Context, embedding []float32, limit int, minScore float64) ([]domain.VectorSearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrInvalidInput)
	}
	if s.dimensions > 0 && len(embedding) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(embedding), s.dimensions)
	}
	if limit <= 0 {
		return []domain.VectorSearchResult{}, nil
	}

	query := domain.Normalize(embedding)
	top := ranking.NewTopK(limit)

	for recordingID, fields := range s.chunks {
		for field, chunks := range fields {
			for i, c := range chunks {
				score := domain.Dot(query, c.embedding)
				if score < minScore {
					continue
				}
				top.Offer(domain.VectorSearchResult{
					ChunkID:     domain.ChunkID(recordingID, field, i),
					RecordingID: recordingID,
					Field:       field,
					ChunkIndex:  i,
					ChunkText:   c.text,
					Score:       score,
				})
			}
		}
	}

	return top.Results(), nil
}

// IsIndexed returns true if the recording has a manifest entry.
func (s *VectorStore) IsIndexed(_ context.Context, recordingID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.manifest[recordingID]
	return ok, nil
}

// GetContentHash returns the hash recorded for a recording.
func (s *VectorStore) GetContentHash(_ context.Context, recordingID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.manifest[recordingID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return hash, nil
}

// UpdateManifest records the content hash a recording was indexed from.
func (s *VectorStore) UpdateManifest(_ context.Context, recordingID, contentHash string) error {
	if recordingID == "" {
		return fmt.Errorf("%w: recording ID is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrVectorIndexUnavailable
	}
	s.manifest[recordingID] = contentHash
	return nil
}

// GetIndexedRecordingIDs lists recordings with a manifest entry, sorted.
func (s *VectorStore) GetIndexedRecordingIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.manifest))
	for id := range s.manifest {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetStats summarises the store contents.
func (s *VectorStore) GetStats(_ context.Context) (domain.VectorIndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.VectorIndexStats{
		Recordings: len(s.manifest),
		Dimensions: s.dimensions,
	}
	for _, fields := range s.chunks {
		for _, chunks := range fields {
			stats.Chunks += len(chunks)
		}
	}
	return stats, nil
}

// Clear removes all chunks and manifest entries.
func (s *VectorStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = make(map[string]map[string][]storedChunk)
	s.manifest = make(map[string]string)
	s.dimensions = 0
	return nil
}

// Close marks the store unusable.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
