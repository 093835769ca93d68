package cli

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/services"
)

var testTime = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

// mockSearchService returns canned results and records the last call.
type mockSearchService struct {
	results   []domain.SearchResult
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, nil
}

// mockSearchServiceError always fails.
type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(
	context.Context, string, domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return nil, errors.New("index unavailable")
}

// mockIndexService records rebuild calls.
type mockIndexService struct {
	report    domain.IndexReport
	stats     domain.VectorIndexStats
	keyword   int
	lastForce bool
	err       error
}

func (m *mockIndexService) IndexRecording(context.Context, domain.Recording, bool) error {
	return m.err
}

func (m *mockIndexService) RemoveRecording(context.Context, string) error {
	return m.err
}

func (m *mockIndexService) Rebuild(_ context.Context, force bool) (domain.IndexReport, error) {
	m.lastForce = force
	return m.report, m.err
}

func (m *mockIndexService) Stats(context.Context) (domain.VectorIndexStats, int, error) {
	return m.stats, m.keyword, m.err
}

// mockModelService reports a fixed status and simulates a download.
type mockModelService struct {
	status      domain.ModelStatus
	downloadErr error
}

func (m *mockModelService) Status() domain.ModelStatus { return m.status }

func (m *mockModelService) Refresh(context.Context) (domain.ModelStatus, error) {
	return m.status, nil
}

func (m *mockModelService) Download(_ context.Context, progress func(domain.ModelStatus)) error {
	if m.downloadErr != nil {
		return m.downloadErr
	}
	for _, p := range []float64{0, 0.5, 0.5, 1} {
		progress(domain.ModelStatus{Phase: domain.ModelDownloading, Progress: p})
	}
	m.status = domain.ModelStatus{Phase: domain.ModelReady, Progress: 1}
	progress(m.status)
	return nil
}

func (m *mockModelService) IsReady() bool { return m.status.IsReady() }

// mockRecordingService keeps recordings in a map.
type mockRecordingService struct {
	items map[string]domain.Recording
}

func newMockRecordingService(recs ...domain.Recording) *mockRecordingService {
	m := &mockRecordingService{items: make(map[string]domain.Recording)}
	for _, r := range recs {
		m.items[r.ID] = r
	}
	return m
}

func (m *mockRecordingService) Add(_ context.Context, rec domain.Recording) (*domain.Recording, error) {
	if rec.Transcript == "" {
		return nil, domain.ErrInvalidInput
	}
	if rec.ID == "" {
		rec.ID = "generated-id"
	}
	m.items[rec.ID] = rec
	return &rec, nil
}

func (m *mockRecordingService) Get(_ context.Context, id string) (*domain.Recording, error) {
	rec, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *mockRecordingService) List(context.Context) ([]domain.Recording, error) {
	recs := make([]domain.Recording, 0, len(m.items))
	for _, r := range m.items {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}

func (m *mockRecordingService) Remove(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func testResults() []domain.SearchResult {
	kw := 3.2
	vec := 0.81
	return []domain.SearchResult{
		{
			Recording: domain.Recording{
				ID:         "rec-1",
				Title:      "Canal walk",
				Transcript: "Saw a heron by the lock.",
				Tags:       []string{"outdoors"},
				CreatedAt:  testTime,
			},
			MatchedChunk:  "Saw a heron by the lock.",
			MatchedFields: []string{domain.FieldTranscript},
			RRFScore:      0.04,
			KeywordScore:  &kw,
			VectorScore:   &vec,
		},
	}
}

// setupTestServices installs mock services and returns a function restoring the previous ones.
func setupTestServices() func() {
	oldSearch := searchService
	oldIndex := indexService
	oldModel := modelService
	oldSettings := settingsService
	oldRecordings := recordingService

	searchService = &mockSearchService{results: testResults()}
	indexService = &mockIndexService{}
	modelService = &mockModelService{status: domain.ModelStatus{Phase: domain.ModelReady}}
	settingsService = services.NewSettingsService(memory.NewConfigStore())
	recordingService = newMockRecordingService(testResults()[0].Recording)

	return func() {
		searchService = oldSearch
		indexService = oldIndex
		modelService = oldModel
		settingsService = oldSettings
		recordingService = oldRecordings
	}
}
