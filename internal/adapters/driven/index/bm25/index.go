package bm25

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/logger"
)

// Verify interface compliance at compile time.
var _ driven.KeywordIndex = (*Index)(nil)

// Default scoring parameters.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// field is an indexed recording field with its weight.
type field struct {
	name   string
	weight float64
	text   func(domain.Recording) []string
}

var fields = []field{
	{name: domain.FieldTitle, weight: 3.0, text: func(r domain.Recording) []string { return []string{r.Title} }},
	{name: domain.FieldTags, weight: 2.0, text: func(r domain.Recording) []string { return r.Tags }},
	{name: domain.FieldSummary, weight: 1.5, text: func(r domain.Recording) []string { return []string{r.Summary} }},
	{name: domain.FieldContext, weight: 1.2, text: func(r domain.Recording) []string { return []string{r.Context} }},
	{name: domain.FieldTranscript, weight: 1.0, text: func(r domain.Recording) []string { return []string{r.Transcript} }},
}

// document holds the per-field term frequencies of one recording.
type document struct {
	recording domain.Recording
	tf        []map[string]int
	length    []int
}

func newDocument(rec domain.Recording) *document {
	d := &document{
		recording: rec,
		tf:        make([]map[string]int, len(fields)),
		length:    make([]int, len(fields)),
	}
	for i, f := range fields {
		d.tf[i] = make(map[string]int)
		for _, text := range f.text(rec) {
			for _, tok := range Tokenize(text) {
				d.tf[i][tok]++
				d.length[i]++
			}
		}
	}
	return d
}

// terms returns the distinct terms across all fields.
func (d *document) terms() map[string]struct{} {
	out := make(map[string]struct{})
	for _, tf := range d.tf {
		for t := range tf {
			out[t] = struct{}{}
		}
	}
	return out
}

// Index is a BM25F keyword index. It is safe for concurrent use; writers
// hold the lock exclusively so searches never see a half-built index.
type Index struct {
	mu          sync.RWMutex
	k1          float64
	b           float64
	docs        map[string]*document
	df          map[string]int
	totalLength []int
	built       bool
}

// Option configures the index.
type Option func(*Index)

// WithK1 sets the term frequency saturation parameter.
func WithK1(k1 float64) Option {
	return func(i *Index) {
		if k1 > 0 {
			i.k1 = k1
		}
	}
}

// WithB sets the length normalisation parameter.
func WithB(b float64) Option {
	return func(i *Index) {
		if b >= 0 && b <= 1 {
			i.b = b
		}
	}
}

// New creates an empty index. It must be built before it can be searched.
func New(opts ...Option) *Index {
	idx := &Index{
		k1: DefaultK1,
		b:  DefaultB,
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.reset()
	return idx
}

func (i *Index) reset() {
	i.docs = make(map[string]*document)
	i.df = make(map[string]int)
	i.totalLength = make([]int, len(fields))
}

// BuildIndex replaces the entire index with the given recordings.
func (i *Index) BuildIndex(_ context.Context, recordings []domain.Recording) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.reset()
	for _, rec := range recordings {
		i.insert(rec)
	}
	i.built = true

	logger.Debug("bm25: built index with %d recordings", len(i.docs))
	return nil
}

// Upsert replaces the postings of a single recording.
func (i *Index) Upsert(_ context.Context, rec domain.Recording) error {
	if rec.ID == "" {
		return domain.ErrInvalidInput
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.delete(rec.ID)
	i.insert(rec)
	return nil
}

// Remove drops a recording's postings. Unknown IDs are ignored.
func (i *Index) Remove(_ context.Context, recordingID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.delete(recordingID)
	return nil
}

func (i *Index) insert(rec domain.Recording) {
	d := newDocument(rec)
	i.docs[rec.ID] = d
	for t := range d.terms() {
		i.df[t]++
	}
	for f, n := range d.length {
		i.totalLength[f] += n
	}
}

func (i *Index) delete(id string) {
	d, ok := i.docs[id]
	if !ok {
		return
	}
	for t := range d.terms() {
		if i.df[t]--; i.df[t] <= 0 {
			delete(i.df, t)
		}
	}
	for f, n := range d.length {
		i.totalLength[f] -= n
	}
	delete(i.docs, id)
}

// Search returns up to limit recordings ranked by descending score, ties
// broken by recording ID. A limit of zero or less returns every match.
func (i *Index) Search(_ context.Context, query string, limit int) ([]domain.KeywordSearchResult, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if !i.built {
		return nil, domain.ErrIndexNotReady
	}

	terms := queryTerms(query)
	if len(terms) == 0 {
		return []domain.KeywordSearchResult{}, nil
	}

	n := float64(len(i.docs))
	avgLength := make([]float64, len(fields))
	for f, total := range i.totalLength {
		if len(i.docs) > 0 {
			avgLength[f] = float64(total) / n
		}
	}

	var results []domain.KeywordSearchResult
	for _, d := range i.docs {
		var score float64
		matched := make([]bool, len(fields))

		for _, t := range terms {
			df := i.df[t]
			if df == 0 {
				continue
			}

			var weighted float64
			for f, fd := range fields {
				tf := d.tf[f][t]
				if tf == 0 {
					continue
				}
				matched[f] = true
				norm := 1.0
				if avgLength[f] > 0 {
					norm = 1 - i.b + i.b*float64(d.length[f])/avgLength[f]
				}
				weighted += fd.weight * float64(tf) / norm
			}
			if weighted == 0 {
				continue
			}

			idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
			score += idf * weighted * (i.k1 + 1) / (weighted + i.k1)
		}

		if score <= 0 {
			continue
		}

		var matchedFields []string
		for f, ok := range matched {
			if ok {
				matchedFields = append(matchedFields, fields[f].name)
			}
		}
		results = append(results, domain.KeywordSearchResult{
			Recording:     d.recording,
			Score:         score,
			MatchedFields: matchedFields,
		})
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].Recording.ID < results[b].Recording.ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []domain.KeywordSearchResult{}
	}

	logger.Debug("bm25: query %q matched %d recordings", query, len(results))
	return results, nil
}

// Clear empties the index and marks it as needing a rebuild.
func (i *Index) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.reset()
	i.built = false
}

// IndexSize returns the number of indexed recordings.
func (i *Index) IndexSize() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// NeedsRebuild returns true until BuildIndex has been called, and again after Clear.
func (i *Index) NeedsRebuild() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return !i.built
}
