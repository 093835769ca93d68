package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/adapters/driving/watcher"
)

var watchNoScan bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import transcripts dropped into an inbox folder",
	Long: `Watch a folder for transcript files and keep the journal in sync.

New or changed .txt files are added as recordings, deleted files are removed.
Files already in the folder are imported when the watch starts.

The folder defaults to the watch.inbox_dir setting, or ~/.murmur/inbox.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoScan, "no-scan", false, "skip importing files already in the folder")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if recordingService == nil {
		return errors.New("recording service not configured")
	}

	dir, err := inboxDir(args)
	if err != nil {
		return err
	}

	w, err := watcher.New(dir, recordingService)
	if err != nil {
		return err
	}

	if !watchNoScan {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating inbox: %w", err)
		}
		n, err := w.Scan(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Printf("Imported %d existing transcript(s) from %s\n", n, dir)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	return w.Run(cmd.Context())
}

// inboxDir resolves the folder to watch from args, settings, then the default.
func inboxDir(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if settingsService != nil {
		if dir := settingsService.Get().Watch.InboxDir; dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".murmur", "inbox"), nil
}
