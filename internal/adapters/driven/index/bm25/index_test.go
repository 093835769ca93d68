package bm25

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

func testRecordings() []domain.Recording {
	return []domain.Recording{
		{
			ID:         "rec-title",
			Title:      "Alpha Alpha",
			Transcript: "we met at the cafe and talked for a while",
		},
		{
			ID:         "rec-transcript",
			Title:      "Meeting notes",
			Transcript: "the alpha release was mentioned once in passing",
		},
		{
			ID:         "rec-other",
			Title:      "Groceries",
			Transcript: "buy milk and bread",
			Tags:       []string{"errands", "home"},
		},
	}
}

func builtIndex(t *testing.T, recs []domain.Recording) *Index {
	t.Helper()
	idx := New()
	require.NoError(t, idx.BuildIndex(context.Background(), recs))
	return idx
}

func TestIndex_SearchBeforeBuild(t *testing.T) {
	idx := New()

	assert.True(t, idx.NeedsRebuild())
	_, err := idx.Search(context.Background(), "alpha", 10)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestIndex_TitleOutranksTranscript(t *testing.T) {
	idx := builtIndex(t, testRecordings())

	results, err := idx.Search(context.Background(), "Alpha", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "rec-title", results[0].Recording.ID)
	assert.Equal(t, "rec-transcript", results[1].Recording.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, []string{domain.FieldTitle}, results[0].MatchedFields)
	assert.Equal(t, []string{domain.FieldTranscript}, results[1].MatchedFields)
}

func TestIndex_FieldWeightAtEqualDensity(t *testing.T) {
	// Same term, same field lengths; only the field differs.
	recs := []domain.Recording{
		{ID: "a", Title: "kayak trip", Transcript: "quiet morning"},
		{ID: "b", Title: "quiet morning", Transcript: "kayak trip"},
	}
	idx := builtIndex(t, recs)

	results, err := idx.Search(context.Background(), "kayak", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Recording.ID)
}

func TestIndex_EmptyQuery(t *testing.T) {
	idx := builtIndex(t, testRecordings())

	for _, q := range []string{"", "   ", "\n\t", "?!"} {
		results, err := idx.Search(context.Background(), q, 10)
		require.NoError(t, err)
		assert.Empty(t, results, "query %q", q)
		assert.NotNil(t, results)
	}
}

func TestIndex_CaseInsensitive(t *testing.T) {
	idx := builtIndex(t, testRecordings())

	lower, err := idx.Search(context.Background(), "alpha", 10)
	require.NoError(t, err)
	upper, err := idx.Search(context.Background(), "ALPHA", 10)
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
}

func TestIndex_TagsAreTerms(t *testing.T) {
	idx := builtIndex(t, testRecordings())

	results, err := idx.Search(context.Background(), "errands", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "rec-other", results[0].Recording.ID)
	assert.Equal(t, []string{domain.FieldTags}, results[0].MatchedFields)
}

func TestIndex_MultiTermCombines(t *testing.T) {
	recs := []domain.Recording{
		{ID: "both", Transcript: "milk and bread from the shop"},
		{ID: "one", Transcript: "milk from the shop"},
	}
	idx := builtIndex(t, recs)

	results, err := idx.Search(context.Background(), "milk bread", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "both", results[0].Recording.ID)
}

func TestIndex_MatchedFieldsListsEveryContributor(t *testing.T) {
	recs := []domain.Recording{
		{ID: "r", Title: "Lake day", Context: "by the lake", Summary: "lake swim", Transcript: "the lake was cold"},
	}
	idx := builtIndex(t, recs)

	results, err := idx.Search(context.Background(), "lake", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ElementsMatch(t,
		[]string{domain.FieldTitle, domain.FieldSummary, domain.FieldContext, domain.FieldTranscript},
		results[0].MatchedFields)
}

func TestIndex_Limit(t *testing.T) {
	var recs []domain.Recording
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		recs = append(recs, domain.Recording{ID: id, Transcript: "shared word"})
	}
	idx := builtIndex(t, recs)

	results, err := idx.Search(context.Background(), "shared", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// Equal scores fall back to ID order.
	assert.Equal(t, "a", results[0].Recording.ID)
	assert.Equal(t, "c", results[2].Recording.ID)

	all, err := idx.Search(context.Background(), "shared", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestIndex_BuildReplaces(t *testing.T) {
	idx := builtIndex(t, testRecordings())
	assert.Equal(t, 3, idx.IndexSize())

	require.NoError(t, idx.BuildIndex(context.Background(), []domain.Recording{
		{ID: "new", Transcript: "fresh start"},
	}))
	assert.Equal(t, 1, idx.IndexSize())

	results, err := idx.Search(context.Background(), "alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_Clear(t *testing.T) {
	idx := builtIndex(t, testRecordings())
	assert.False(t, idx.NeedsRebuild())

	idx.Clear()

	assert.True(t, idx.NeedsRebuild())
	assert.Equal(t, 0, idx.IndexSize())
	_, err := idx.Search(context.Background(), "alpha", 10)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestIndex_UpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	idx := builtIndex(t, testRecordings())

	require.NoError(t, idx.Upsert(ctx, domain.Recording{ID: "rec-other", Title: "Alpha shopping"}))
	assert.Equal(t, 3, idx.IndexSize())

	results, err := idx.Search(ctx, "milk", 10)
	require.NoError(t, err)
	assert.Empty(t, results, "old postings must be replaced")

	results, err = idx.Search(ctx, "alpha", 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	require.NoError(t, idx.Remove(ctx, "rec-title"))
	require.NoError(t, idx.Remove(ctx, "missing"))
	assert.Equal(t, 2, idx.IndexSize())

	results, err = idx.Search(ctx, "alpha", 10)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "rec-title", r.Recording.ID)
	}

	assert.ErrorIs(t, idx.Upsert(ctx, domain.Recording{}), domain.ErrInvalidInput)
}

func TestIndex_RemoveRestoresStatistics(t *testing.T) {
	ctx := context.Background()
	idx := builtIndex(t, testRecordings())
	before, err := idx.Search(ctx, "alpha", 10)
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(ctx, domain.Recording{ID: "tmp", Transcript: "alpha alpha alpha"}))
	require.NoError(t, idx.Remove(ctx, "tmp"))

	after, err := idx.Search(ctx, "alpha", 10)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.InDelta(t, before[i].Score, after[i].Score, 1e-9)
	}
}

func TestIndex_ConcurrentSearchDuringRebuild(t *testing.T) {
	ctx := context.Background()
	idx := builtIndex(t, testRecordings())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				results, err := idx.Search(ctx, "alpha", 10)
				assert.NoError(t, err)
				assert.Len(t, results, 2)
			}
		}()
	}
	for n := 0; n < 20; n++ {
		require.NoError(t, idx.BuildIndex(ctx, testRecordings()))
	}
	wg.Wait()
}

func TestNew_Options(t *testing.T) {
	idx := New(WithK1(2.0), WithB(0.5))
	assert.Equal(t, 2.0, idx.k1)
	assert.Equal(t, 0.5, idx.b)

	idx = New(WithK1(-1), WithB(3))
	assert.Equal(t, DefaultK1, idx.k1)
	assert.Equal(t, DefaultB, idx.b)
}
