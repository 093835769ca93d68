package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for Murmur.

The TUI lets you search the journal, browse recordings and read transcripts
with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Open transcript
  Tab      - Cycle search mode
  Esc      - Back
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newTUIApp()
	if err != nil {
		return err
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// newTUIApp builds the TUI from the configured services.
func newTUIApp() (*tui.App, error) {
	ports := &tui.Ports{
		Search:     searchService,
		Recordings: recordingService,
		Model:      modelService,
	}

	var opts []tui.AppOption
	if settingsService != nil {
		opts = append(opts, tui.WithSearchLimit(settingsService.Get().Search.Limit))
	}

	app, err := tui.NewApp(ports, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app, nil
}
