package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage the embedding model",
	Long: `Check and download the embedding model used for semantic search.

Keyword search works without the model. Local providers (Ollama) must pull
the model once; remote providers are always ready.`,
}

var modelStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the embedding model status",
	RunE:  runModelStatus,
}

var modelPullCmd = &cobra.Command{
	Use:     "pull",
	Aliases: []string{"download"},
	Short:   "Download the embedding model",
	RunE:    runModelPull,
}

func init() {
	modelCmd.AddCommand(modelStatusCmd)
	modelCmd.AddCommand(modelPullCmd)
	rootCmd.AddCommand(modelCmd)
}

func runModelStatus(cmd *cobra.Command, _ []string) error {
	if modelService == nil {
		return errors.New("model service not configured")
	}

	status, err := modelService.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to check model: %w", err)
	}

	if settingsService != nil {
		emb := settingsService.Get().Embedding
		cmd.Printf("Provider: %s\n", emb.Provider.Description())
		cmd.Printf("Model: %s\n", emb.Model)
	}
	cmd.Printf("Status: %s\n", status)

	if status.Phase == domain.ModelNotDownloaded {
		cmd.Println("Run 'murmur model pull' to enable semantic search.")
	}
	return nil
}

func runModelPull(cmd *cobra.Command, _ []string) error {
	if modelService == nil {
		return errors.New("model service not configured")
	}

	if st, err := modelService.Refresh(cmd.Context()); err == nil && st.IsReady() {
		cmd.Println("Embedding model is already available.")
		return nil
	}

	lastPct := -1
	err := modelService.Download(cmd.Context(), func(st domain.ModelStatus) {
		if st.Phase != domain.ModelDownloading {
			return
		}
		pct := int(st.Progress * 100)
		if pct == lastPct {
			return
		}
		lastPct = pct
		cmd.Printf("\rDownloading... %3d%%", pct)
	})
	if lastPct >= 0 {
		cmd.Println()
	}
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	cmd.Println("Embedding model ready.")
	cmd.Println("Run 'murmur index rebuild' to embed existing recordings.")
	return nil
}
