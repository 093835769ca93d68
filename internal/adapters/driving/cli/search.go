package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/murmur/internal/core/domain"
)

// searchSnippetLength is the rune length of snippets in table output.
const searchSnippetLength = 160

var (
	searchLimit int
	searchMode  string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the voice journal",
	Long: `Performs hybrid search across all recordings.
Combines keyword (BM25) and semantic (vector) search with reciprocal rank
fusion, returning at most one result per recording.

Modes:
  hybrid   - keyword and semantic results fused (default)
  keyword  - BM25 only, works without the embedding model
  semantic - vector similarity only`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "", "search mode: hybrid, keyword or semantic")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Limit: searchLimit,
		Mode:  domain.SearchMode(searchMode),
	}
	if settingsService != nil {
		settings := settingsService.Get()
		if !cmd.Flags().Changed("limit") && settings.Search.Limit > 0 {
			opts.Limit = settings.Search.Limit
		}
		if opts.Mode == "" {
			opts.Mode = settings.Search.Mode
		}
	}
	if opts.Mode != "" && !opts.Mode.IsValid() {
		return fmt.Errorf("unknown search mode %q (use hybrid, keyword or semantic)", opts.Mode)
	}

	results, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

// searchResultJSON is the --json shape of a result.
type searchResultJSON struct {
	RecordingID   string   `json:"recording_id"`
	Title         string   `json:"title"`
	CreatedAt     string   `json:"created_at"`
	Tags          []string `json:"tags,omitempty"`
	Score         float64  `json:"score"`
	Relevance     string   `json:"relevance"`
	VectorScore   *float64 `json:"vector_score,omitempty"`
	KeywordScore  *float64 `json:"keyword_score,omitempty"`
	MatchedFields []string `json:"matched_fields,omitempty"`
	MatchedChunk  string   `json:"matched_chunk,omitempty"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		r := results[i]
		out[i] = searchResultJSON{
			RecordingID:   r.Recording.ID,
			Title:         r.Recording.Title,
			CreatedAt:     r.Recording.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Tags:          r.Recording.Tags,
			Score:         r.RRFScore,
			Relevance:     r.Relevance().String(),
			VectorScore:   r.VectorScore,
			KeywordScore:  r.KeywordScore,
			MatchedFields: r.MatchedFields,
			MatchedChunk:  r.MatchedChunk,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	s := styles.DefaultStyles()

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]

		// Format: [N] Title  Relevance
		title := r.Recording.Title
		if title == "" {
			title = r.Recording.ID
		}
		badge := s.Relevance(r.Relevance()).Render(r.Relevance().String())
		cmd.Printf("  [%d] %s  %s\n", i+1, s.Title.Render(title), badge)

		meta := r.Recording.CreatedAt.Format("2006-01-02 15:04")
		if src := styles.MatchSource(r); src != "" {
			meta += " · " + src
		}
		if len(r.Recording.Tags) > 0 {
			meta += " · #" + strings.Join(r.Recording.Tags, " #")
		}
		cmd.Printf("      %s\n", s.Muted.Render(meta))

		if snippet := r.Snippet(searchSnippetLength); snippet != "" {
			cmd.Printf("      %s\n", strings.Join(strings.Fields(snippet), " "))
		}
		cmd.Println()
	}

	return nil
}
