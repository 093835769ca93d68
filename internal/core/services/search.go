package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// RRFConstant is the K in the reciprocal rank fusion term 1/(K+rank).
const RRFConstant = 60

// Candidate pool multipliers. A recording ranked just outside the page on
// both sides can still out-fuse one ranked first on a single side, so each
// side fetches more than the page it serves. The vector side fetches chunks,
// several of which may belong to the same recording.
const (
	keywordPoolFactor = 2
	vectorPoolFactor  = 4
)

// fusedEntry accumulates the contributions of both sources for one recording.
type fusedEntry struct {
	recordingID  string
	rrf          float64
	vectorScore  *float64
	keywordScore *float64
	chunkText    string
	chunkField   string
	fields       []string
}

// SearchService provides hybrid search over journal recordings.
type SearchService struct {
	recordings       driven.RecordingStore
	keywordIndex     driven.KeywordIndex
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	readiness        driven.ModelReadiness
	minVectorScore   float64
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithSearchReadiness sets the embedding model precondition consulted before
// every vector query.
func WithSearchReadiness(r driven.ModelReadiness) SearchOption {
	return func(s *SearchService) {
		s.readiness = r
	}
}

// WithMinVectorScore drops vector hits below the given similarity.
func WithMinVectorScore(score float64) SearchOption {
	return func(s *SearchService) {
		s.minVectorScore = score
	}
}

// NewSearchService creates a new search service.
// The vectorIndex and embeddingService parameters are optional (can be nil);
// without them hybrid queries degrade to keyword-only.
func NewSearchService(
	recordings driven.RecordingStore,
	keywordIndex driven.KeywordIndex,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	opts ...SearchOption,
) *SearchService {
	s := &SearchService{
		recordings:       recordings,
		keywordIndex:     keywordIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search performs hybrid search across all indexed recordings.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	mode := opts.Mode
	if mode == "" {
		mode = domain.SearchModeHybrid
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidInput, mode)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	window := offset + limit
	logger.Debug("Mode: %s, Limit: %d, Offset: %d", mode, limit, offset)

	var keywordHits []domain.KeywordSearchResult
	var vectorHits []domain.VectorSearchResult
	var keywordErr, vectorErr error

	var wg sync.WaitGroup
	if mode.UsesKeyword() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keywordHits, keywordErr = s.keywordSearch(ctx, query, window*keywordPoolFactor)
		}()
	}
	if mode.UsesVector() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vectorHits, vectorErr = s.vectorSearch(ctx, query, window*vectorPoolFactor)
		}()
	}
	wg.Wait()

	if err := s.sideFailure(mode, keywordErr, vectorErr); err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, err
	}
	if keywordErr != nil {
		logger.Warn("Keyword search failed, using vector results only: %v", keywordErr)
	}
	if vectorErr != nil {
		logger.Warn("Vector search failed, using keyword results only: %v", vectorErr)
	}

	logger.Debug("Merging %d keyword + %d vector results with RRF", len(keywordHits), len(vectorHits))
	entries := fuse(keywordHits, vectorHits)

	results, err := s.resolve(ctx, entries)
	if err != nil {
		return nil, err
	}
	sortResults(results)

	results = paginate(results, offset, limit)
	logger.Info("Final results: %d", len(results))

	return results, nil
}

// sideFailure returns an error when every side the mode asked for failed.
func (s *SearchService) sideFailure(mode domain.SearchMode, keywordErr, vectorErr error) error {
	switch mode {
	case domain.SearchModeKeyword:
		if keywordErr != nil {
			return fmt.Errorf("%w: keyword=%w", domain.ErrSearchFailed, keywordErr)
		}
	case domain.SearchModeSemantic:
		if vectorErr != nil {
			return fmt.Errorf("%w: vector=%w", domain.ErrSearchFailed, vectorErr)
		}
	default:
		if keywordErr != nil && vectorErr != nil {
			return fmt.Errorf("%w: keyword=%w, vector=%w", domain.ErrSearchFailed, keywordErr, vectorErr)
		}
	}
	return nil
}

// keywordSearch queries the BM25 index.
func (s *SearchService) keywordSearch(
	ctx context.Context, query string, limit int,
) ([]domain.KeywordSearchResult, error) {
	if s.keywordIndex == nil {
		return nil, domain.ErrSearchUnavailable
	}

	hits, err := s.keywordIndex.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	logger.Debug("Keyword search: %d hits", len(hits))
	return hits, nil
}

// vectorSearch embeds the query and returns the best chunk per recording,
// ordered by descending similarity.
func (s *SearchService) vectorSearch(
	ctx context.Context, query string, limit int,
) ([]domain.VectorSearchResult, error) {
	if s.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.readiness != nil && !s.readiness.IsReady() {
		return nil, domain.ErrModelNotReady
	}

	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.vectorIndex.Search(ctx, embedding, limit, s.minVectorScore)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	best := dedupeByRecording(hits)
	logger.Debug("Vector search: %d chunk hits across %d recordings", len(hits), len(best))
	return best, nil
}

// dedupeByRecording keeps the highest-scoring chunk of each recording.
func dedupeByRecording(hits []domain.VectorSearchResult) []domain.VectorSearchResult {
	pos := make(map[string]int, len(hits))
	out := make([]domain.VectorSearchResult, 0, len(hits))

	for _, hit := range hits {
		if i, ok := pos[hit.RecordingID]; ok {
			if hit.Score > out[i].Score {
				out[i] = hit
			}
			continue
		}
		pos[hit.RecordingID] = len(out)
		out = append(out, hit)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// fuse merges both record-level ranked lists with reciprocal rank fusion.
// Ranks are 0-based, so a first place contributes 1/K.
func fuse(keywordHits []domain.KeywordSearchResult, vectorHits []domain.VectorSearchResult) []*fusedEntry {
	byID := make(map[string]*fusedEntry, len(keywordHits)+len(vectorHits))
	order := make([]*fusedEntry, 0, len(keywordHits)+len(vectorHits))

	entry := func(id string) *fusedEntry {
		e, ok := byID[id]
		if !ok {
			e = &fusedEntry{recordingID: id}
			byID[id] = e
			order = append(order, e)
		}
		return e
	}

	for rank, hit := range vectorHits {
		e := entry(hit.RecordingID)
		score := hit.Score
		e.rrf += rrfTerm(rank)
		e.vectorScore = &score
		e.chunkText = hit.ChunkText
		e.chunkField = hit.Field
		e.fields = appendField(e.fields, hit.Field)
	}

	for rank, hit := range keywordHits {
		e := entry(hit.Recording.ID)
		score := hit.Score
		e.rrf += rrfTerm(rank)
		e.keywordScore = &score
		for _, f := range hit.MatchedFields {
			e.fields = appendField(e.fields, f)
		}
	}

	return order
}

func rrfTerm(rank int) float64 {
	return 1.0 / float64(RRFConstant+rank)
}

func appendField(fields []string, field string) []string {
	if field == "" {
		return fields
	}
	for _, f := range fields {
		if f == field {
			return fields
		}
	}
	return append(fields, field)
}

// resolve looks up the recording behind each entry. Recordings that can no
// longer be found are dropped.
func (s *SearchService) resolve(ctx context.Context, entries []*fusedEntry) ([]domain.SearchResult, error) {
	if s.recordings == nil {
		return nil, errors.New("recording store unavailable")
	}

	results := make([]domain.SearchResult, 0, len(entries))
	for _, e := range entries {
		rec, err := s.recordings.GetRecording(ctx, e.recordingID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("Dropping result %s: %v", e.recordingID, err)
			}
			continue
		}

		results = append(results, domain.SearchResult{
			Recording:     *rec,
			MatchedChunk:  e.chunkText,
			MatchedField:  e.chunkField,
			MatchedFields: e.fields,
			RRFScore:      e.rrf,
			VectorScore:   e.vectorScore,
			KeywordScore:  e.keywordScore,
		})
	}
	return results, nil
}

// sortResults orders by fused score, then recordings matched by both
// sources, then newer recordings, then ID.
func sortResults(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RRFScore != b.RRFScore {
			return a.RRFScore > b.RRFScore
		}
		if a.IsBothMatch() != b.IsBothMatch() {
			return a.IsBothMatch()
		}
		if !a.Recording.CreatedAt.Equal(b.Recording.CreatedAt) {
			return a.Recording.CreatedAt.After(b.Recording.CreatedAt)
		}
		return a.Recording.ID < b.Recording.ID
	})
}

// paginate applies offset and limit to results.
func paginate(results []domain.SearchResult, offset, limit int) []domain.SearchResult {
	if offset >= len(results) {
		return []domain.SearchResult{}
	}

	end := offset + limit
	if end > len(results) {
		end = len(results)
	}

	return results[offset:end]
}
