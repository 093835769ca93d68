// Package cli provides the murmur command line interface.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

var verbose bool

// Services used by the commands. Set once at startup by SetServices.
var (
	searchService    driving.SearchService
	indexService     driving.IndexService
	modelService     driving.ModelService
	settingsService  driving.SettingsService
	recordingService driving.RecordingService
)

// Services bundles the driving ports the commands call into.
type Services struct {
	Search     driving.SearchService
	Index      driving.IndexService
	Model      driving.ModelService
	Settings   driving.SettingsService
	Recordings driving.RecordingService
}

// SetServices wires the application services into the commands.
func SetServices(s Services) {
	searchService = s.Search
	indexService = s.Index
	modelService = s.Model
	settingsService = s.Settings
	recordingService = s.Recordings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "murmur",
	Short: "Search your voice journal",
	Long: `Murmur indexes voice journal transcripts and finds entries by what you
said and by what you meant.

Searches combine a BM25 keyword index with semantic vector search over
topic-coherent transcript chunks.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetStyled(term.IsTerminal(int(os.Stderr.Fd())))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
