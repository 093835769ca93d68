package domain

import "unicode/utf8"

// DefaultSearchLimit is the number of results returned when no limit is given.
const DefaultSearchLimit = 20

// Ellipsis is appended to truncated snippets.
const Ellipsis = "..."

// SearchMode selects which retrieval sources a query uses.
type SearchMode string

// Available search modes.
const (
	// SearchModeHybrid combines keyword and semantic (vector) search.
	SearchModeHybrid SearchMode = "hybrid"

	// SearchModeKeyword uses only the keyword index.
	SearchModeKeyword SearchMode = "keyword"

	// SearchModeSemantic uses only the vector index.
	SearchModeSemantic SearchMode = "semantic"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeHybrid, SearchModeKeyword, SearchModeSemantic:
		return true
	default:
		return false
	}
}

// UsesKeyword returns true if the mode queries the keyword index.
func (m SearchMode) UsesKeyword() bool {
	return m == SearchModeHybrid || m == SearchModeKeyword
}

// UsesVector returns true if the mode queries the vector index.
func (m SearchMode) UsesVector() bool {
	return m == SearchModeHybrid || m == SearchModeSemantic
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SearchMode) Description() string {
	switch m {
	case SearchModeHybrid:
		return "Hybrid (keyword + semantic search)"
	case SearchModeKeyword:
		return "Keyword only (BM25)"
	case SearchModeSemantic:
		return "Semantic only (vector search)"
	default:
		return "Unknown"
	}
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results (default 20).
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// Mode restricts the retrieval sources. Empty means hybrid.
	Mode SearchMode
}

// VectorSearchResult is one ranked hit from the vector index.
type VectorSearchResult struct {
	ChunkID     string
	RecordingID string
	Field       string
	ChunkIndex  int
	ChunkText   string

	// Score is the cosine similarity; higher is more relevant.
	Score float64
}

// KeywordSearchResult is one ranked hit from the keyword index.
type KeywordSearchResult struct {
	Recording Recording

	// Score is a non-negative BM25 weight; higher is more relevant.
	Score float64

	// MatchedFields lists every field that contributed a non-zero score.
	MatchedFields []string
}

// SearchResult is a fused, user-facing search hit.
// At least one of VectorScore and KeywordScore is set.
type SearchResult struct {
	// Recording is the resolved journal entry.
	Recording Recording

	// MatchedChunk is the text of the best vector chunk, if any.
	MatchedChunk string

	// MatchedField is the field the best vector chunk came from, if any.
	MatchedField string

	// MatchedFields is the union of fields matched by either source.
	MatchedFields []string

	// RRFScore is the reciprocal-rank-fusion score.
	RRFScore float64

	// VectorScore is the best chunk similarity, nil without a vector match.
	VectorScore *float64

	// KeywordScore is the BM25 score, nil without a keyword match.
	KeywordScore *float64
}

// HasVectorMatch reports whether the vector index matched this recording.
func (r SearchResult) HasVectorMatch() bool {
	return r.VectorScore != nil
}

// HasKeywordMatch reports whether the keyword index matched this recording.
func (r SearchResult) HasKeywordMatch() bool {
	return r.KeywordScore != nil
}

// IsBothMatch reports whether both sources matched this recording.
func (r SearchResult) IsBothMatch() bool {
	return r.HasVectorMatch() && r.HasKeywordMatch()
}

// Relevance buckets the fused score.
func (r SearchResult) Relevance() Relevance {
	return RelevanceFor(r.RRFScore)
}

// Snippet returns display text for the result: the matched chunk when
// present, otherwise a prefix of the transcript. Text longer than maxLen
// runes is cut to maxLen runes and suffixed with Ellipsis.
func (r SearchResult) Snippet(maxLen int) string {
	text := r.MatchedChunk
	if text == "" {
		text = r.Recording.Transcript
	}
	return Truncate(text, maxLen)
}

// Truncate cuts text to maxLen runes and appends Ellipsis when it was longer.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + Ellipsis
}

// Relevance is a coarse label derived from the fused score.
type Relevance int

// Relevance levels, ordered from least to most relevant.
const (
	RelevanceLow Relevance = iota
	RelevanceMedium
	RelevanceHigh
)

// Relevance bucket boundaries on the fused score.
const (
	HighRelevanceScore   = 0.035
	MediumRelevanceScore = 0.02
)

// RelevanceFor maps a fused score to its relevance level.
func RelevanceFor(score float64) Relevance {
	switch {
	case score >= HighRelevanceScore:
		return RelevanceHigh
	case score >= MediumRelevanceScore:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}

// String returns the display label.
func (r Relevance) String() string {
	switch r {
	case RelevanceHigh:
		return "High relevance"
	case RelevanceMedium:
		return "Medium relevance"
	default:
		return "Low relevance"
	}
}

// VectorIndexStats summarises the contents of a vector index.
type VectorIndexStats struct {
	Recordings int
	Chunks     int
	Dimensions int
}

// IndexReport summarises a rebuild.
type IndexReport struct {
	// Indexed is the number of recordings whose chunks were (re)embedded.
	Indexed int

	// Skipped is the number of recordings whose content hash was unchanged.
	Skipped int

	// Removed is the number of stale recordings purged from the vector index.
	Removed int

	// KeywordDocuments is the keyword index size after the rebuild.
	KeywordDocuments int
}
