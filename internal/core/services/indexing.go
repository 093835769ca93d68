package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexService = (*IndexingService)(nil)

// DefaultIndexWorkers bounds concurrent re-embedding when no worker count is set.
const DefaultIndexWorkers = 4

// IndexingService derives keyword postings and embedded chunks from recordings.
//
// The vector side is optional: without a vector index or chunker, only the
// keyword index is maintained.
type IndexingService struct {
	recordings   driven.RecordingStore
	keywordIndex driven.KeywordIndex
	vectorIndex  driven.VectorIndex
	chunker      driven.TranscriptChunker
	readiness    driven.ModelReadiness
	workers      int
}

// IndexingOption configures an IndexingService.
type IndexingOption func(*IndexingService)

// WithIndexReadiness sets the embedding model precondition checked before chunking.
func WithIndexReadiness(r driven.ModelReadiness) IndexingOption {
	return func(s *IndexingService) {
		s.readiness = r
	}
}

// WithIndexWorkers bounds the number of recordings embedded concurrently during Rebuild.
func WithIndexWorkers(n int) IndexingOption {
	return func(s *IndexingService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewIndexingService creates a new indexing service.
func NewIndexingService(
	recordings driven.RecordingStore,
	keywordIndex driven.KeywordIndex,
	vectorIndex driven.VectorIndex,
	chunker driven.TranscriptChunker,
	opts ...IndexingOption,
) *IndexingService {
	s := &IndexingService{
		recordings:   recordings,
		keywordIndex: keywordIndex,
		vectorIndex:  vectorIndex,
		chunker:      chunker,
		workers:      DefaultIndexWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IndexingService) vectorEnabled() bool {
	return s.vectorIndex != nil && s.chunker != nil
}

func (s *IndexingService) modelReady() bool {
	return s.readiness == nil || s.readiness.IsReady()
}

// IndexRecording updates both indexes for one recording.
func (s *IndexingService) IndexRecording(ctx context.Context, rec domain.Recording, force bool) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: recording ID is required", domain.ErrInvalidInput)
	}

	if s.keywordIndex != nil {
		if err := s.keywordIndex.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("keyword upsert %s: %w", rec.ID, err)
		}
	}

	if !s.vectorEnabled() {
		logger.Debug("Vector indexing disabled, skipping embeddings for %s", rec.ID)
		return nil
	}
	if !s.modelReady() {
		return domain.ErrModelNotReady
	}

	embedded, err := s.embedRecording(ctx, rec, force)
	if err != nil {
		return err
	}
	if embedded {
		logger.Info("Indexed recording %s", rec.ID)
	} else {
		logger.Debug("Recording %s unchanged, skipped", rec.ID)
	}
	return nil
}

// embedRecording replaces the recording's chunks unless its content hash
// matches the manifest. It reports whether chunks were written.
func (s *IndexingService) embedRecording(ctx context.Context, rec domain.Recording, force bool) (bool, error) {
	hash := rec.ContentHash()

	if !force {
		existing, err := s.vectorIndex.GetContentHash(ctx, rec.ID)
		switch {
		case err == nil && existing == hash:
			return false, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return false, fmt.Errorf("read manifest %s: %w", rec.ID, err)
		}
	}

	// Chunk everything before touching the index, so a failed embedding
	// leaves the previous chunks in place.
	fields := rec.EmbeddableFields()
	chunked := make([]domain.FieldChunks, 0, len(fields))
	for _, f := range fields {
		c, err := s.chunker.ChunkTranscript(ctx, f.Text)
		if err != nil {
			return false, fmt.Errorf("chunk %s of %s: %w", f.Field, rec.ID, err)
		}
		chunked = append(chunked, domain.FieldChunks{Field: f.Field, Chunks: c})
	}

	if err := s.vectorIndex.ReplaceChunks(ctx, rec.ID, chunked, hash); err != nil {
		return false, fmt.Errorf("replace chunks %s: %w", rec.ID, err)
	}

	return true, nil
}

// RemoveRecording drops a recording from both indexes.
func (s *IndexingService) RemoveRecording(ctx context.Context, recordingID string) error {
	var errs []error

	if s.keywordIndex != nil {
		if err := s.keywordIndex.Remove(ctx, recordingID); err != nil {
			errs = append(errs, fmt.Errorf("keyword remove: %w", err))
		}
	}
	if s.vectorIndex != nil {
		if err := s.vectorIndex.RemoveChunks(ctx, recordingID); err != nil {
			errs = append(errs, fmt.Errorf("vector remove: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Rebuild rebuilds the keyword index from the store, purges vector entries
// for recordings that no longer exist, and re-embeds stale recordings.
func (s *IndexingService) Rebuild(ctx context.Context, force bool) (domain.IndexReport, error) {
	logger.Section("Index Rebuild")

	var report domain.IndexReport

	// Other processes may have written to the store since it was cached.
	if r, ok := s.recordings.(driven.RefreshableStore); ok {
		if err := r.ForceRefresh(ctx); err != nil {
			return report, fmt.Errorf("refresh recordings: %w", err)
		}
	}

	recs, err := s.recordings.ListRecordings(ctx)
	if err != nil {
		return report, fmt.Errorf("list recordings: %w", err)
	}
	logger.Debug("Recordings in store: %d", len(recs))

	if s.keywordIndex != nil {
		if err := s.keywordIndex.BuildIndex(ctx, recs); err != nil {
			return report, fmt.Errorf("build keyword index: %w", err)
		}
		report.KeywordDocuments = s.keywordIndex.IndexSize()
	}

	if !s.vectorEnabled() {
		return report, nil
	}

	removed, err := s.purgeStale(ctx, recs)
	report.Removed = removed
	if err != nil {
		return report, err
	}

	if !s.modelReady() {
		return report, domain.ErrModelNotReady
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, rec := range recs {
		g.Go(func() error {
			embedded, err := s.embedRecording(gctx, rec, force)
			if err != nil {
				return err
			}
			mu.Lock()
			if embedded {
				report.Indexed++
			} else {
				report.Skipped++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("rebuild: %w", err)
	}

	logger.Info("Rebuild complete: %d indexed, %d skipped, %d removed",
		report.Indexed, report.Skipped, report.Removed)
	return report, nil
}

// purgeStale removes vector entries whose recording is no longer in recs.
func (s *IndexingService) purgeStale(ctx context.Context, recs []domain.Recording) (int, error) {
	live := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		live[r.ID] = struct{}{}
	}

	indexed, err := s.vectorIndex.GetIndexedRecordingIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list indexed recordings: %w", err)
	}

	removed := 0
	for _, id := range indexed {
		if _, ok := live[id]; ok {
			continue
		}
		if err := s.vectorIndex.RemoveChunks(ctx, id); err != nil {
			return removed, fmt.Errorf("purge %s: %w", id, err)
		}
		logger.Debug("Purged stale recording %s", id)
		removed++
	}
	return removed, nil
}

// Stats returns vector index statistics and the keyword index size.
func (s *IndexingService) Stats(ctx context.Context) (domain.VectorIndexStats, int, error) {
	var keywordSize int
	if s.keywordIndex != nil {
		keywordSize = s.keywordIndex.IndexSize()
	}

	if s.vectorIndex == nil {
		return domain.VectorIndexStats{}, keywordSize, nil
	}

	stats, err := s.vectorIndex.GetStats(ctx)
	if err != nil {
		return domain.VectorIndexStats{}, keywordSize, fmt.Errorf("vector stats: %w", err)
	}
	return stats, keywordSize, nil
}
