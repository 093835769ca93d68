package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// DefaultToolLimit is the result count used when the caller gives none.
const DefaultToolLimit = 10

// snippetLength is the rune length of snippets returned to the assistant.
const snippetLength = 240

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"what to look for in the voice journal"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Mode  string `json:"mode,omitempty" jsonschema:"hybrid (default), keyword or semantic"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	RecordingID   string   `json:"recording_id"`
	Title         string   `json:"title"`
	CreatedAt     string   `json:"created_at"`
	Tags          []string `json:"tags,omitempty"`
	Score         float64  `json:"score"`
	Relevance     string   `json:"relevance"`
	VectorScore   *float64 `json:"vector_score,omitempty"`
	KeywordScore  *float64 `json:"keyword_score,omitempty"`
	MatchedFields []string `json:"matched_fields,omitempty"`
	Snippet       string   `json:"snippet"`
}

// ReindexInput is the input schema for the reindex tool.
type ReindexInput struct {
	Force bool `json:"force,omitempty" jsonschema:"re-embed every recording even if unchanged"`
}

// ReindexOutput is the output schema for the reindex tool.
type ReindexOutput struct {
	Indexed          int `json:"indexed"`
	Skipped          int `json:"skipped"`
	Removed          int `json:"removed"`
	KeywordDocuments int `json:"keyword_documents"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the voice journal by meaning and by keyword",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reindex",
		Description: "Rebuild the keyword index and re-embed changed recordings",
	}, s.handleReindex)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultToolLimit
	}

	opts := domain.SearchOptions{Limit: limit, Mode: domain.SearchMode(input.Mode)}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		r := results[i]
		output.Results[i] = SearchResultOutput{
			RecordingID:   r.Recording.ID,
			Title:         r.Recording.Title,
			CreatedAt:     r.Recording.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Tags:          r.Recording.Tags,
			Score:         r.RRFScore,
			Relevance:     r.Relevance().String(),
			VectorScore:   r.VectorScore,
			KeywordScore:  r.KeywordScore,
			MatchedFields: r.MatchedFields,
			Snippet:       r.Snippet(snippetLength),
		}
	}

	return nil, output, nil
}

// handleReindex handles the reindex tool invocation.
func (s *Server) handleReindex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReindexInput,
) (*mcp.CallToolResult, ReindexOutput, error) {
	if s.ports.Index == nil {
		return nil, ReindexOutput{}, ErrReindexUnavailable
	}

	report, err := s.ports.Index.Rebuild(ctx, input.Force)
	if err != nil {
		return nil, ReindexOutput{}, fmt.Errorf("rebuilding index: %w", err)
	}

	return nil, ReindexOutput{
		Indexed:          report.Indexed,
		Skipped:          report.Skipped,
		Removed:          report.Removed,
		KeywordDocuments: report.KeywordDocuments,
	}, nil
}
