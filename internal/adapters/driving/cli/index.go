package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the search indexes",
	Long: `Commands for the keyword and vector indexes.

The keyword index is rebuilt from the recording store at startup. The vector
index is persistent; rebuild re-embeds only recordings whose transcript
changed unless --force is given.`,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the keyword index and re-embed changed recordings",
	RunE:  runIndexRebuild,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runIndexStats,
}

func init() {
	indexRebuildCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "re-embed every recording")
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatsCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if modelService != nil && !modelService.IsReady() {
		cmd.Println("Embedding model not ready: rebuilding the keyword index only.")
	}

	report, err := indexService.Rebuild(cmd.Context(), indexForce)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	cmd.Println("Index rebuilt.")
	cmd.Printf("  Keyword documents: %d\n", report.KeywordDocuments)
	cmd.Printf("  Re-embedded:       %d\n", report.Indexed)
	cmd.Printf("  Unchanged:         %d\n", report.Skipped)
	cmd.Printf("  Removed:           %d\n", report.Removed)
	return nil
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats, keywordDocs, err := indexService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Println("[Keyword Index]")
	cmd.Printf("  Documents: %d\n", keywordDocs)
	cmd.Println()
	cmd.Println("[Vector Index]")
	cmd.Printf("  Recordings: %d\n", stats.Recordings)
	cmd.Printf("  Chunks: %d\n", stats.Chunks)
	if stats.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", stats.Dimensions)
	}
	return nil
}
