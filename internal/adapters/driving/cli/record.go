package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/normalisers/plaintext"
)

var (
	recordTitle   string
	recordTags    []string
	recordContext string
	recordSummary string
)

var recordCmd = &cobra.Command{
	Use:     "record",
	Aliases: []string{"recording", "rec"},
	Short:   "Manage journal recordings",
	Long:    `Add, list, show and remove voice journal recordings.`,
}

var recordAddCmd = &cobra.Command{
	Use:   "add [file|-]",
	Short: "Add a transcript to the journal",
	Long: `Add a transcript file to the journal and index it.

The file may start with "Key: value" header lines (Title, Tags, Context,
Summary) followed by a blank line. Use "-" to read the transcript from stdin.
Flags override header values.

Examples:
  murmur record add notes/2026-05-04-walk.txt
  pbpaste | murmur record add - --title "Call with Sam" --tag work`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordAdd,
}

var recordListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recordings, newest first",
	RunE:    runRecordList,
}

var recordShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a recording's transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordShow,
}

var recordRemoveCmd = &cobra.Command{
	Use:     "remove [id]",
	Aliases: []string{"rm"},
	Short:   "Remove a recording and its index entries",
	Args:    cobra.ExactArgs(1),
	RunE:    runRecordRemove,
}

func init() {
	recordAddCmd.Flags().StringVarP(&recordTitle, "title", "t", "", "recording title")
	recordAddCmd.Flags().StringSliceVar(&recordTags, "tag", nil, "tag to attach (repeatable)")
	recordAddCmd.Flags().StringVar(&recordContext, "context", "", "free-text context for the recording")
	recordAddCmd.Flags().StringVar(&recordSummary, "summary", "", "short summary of the recording")

	recordCmd.AddCommand(recordAddCmd)
	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordShowCmd)
	recordCmd.AddCommand(recordRemoveCmd)
	rootCmd.AddCommand(recordCmd)
}

func runRecordAdd(cmd *cobra.Command, args []string) error {
	if recordingService == nil {
		return errors.New("recording service not configured")
	}

	rec, err := readRecording(cmd, args[0])
	if err != nil {
		return err
	}

	if recordTitle != "" {
		rec.Title = recordTitle
	}
	if len(recordTags) > 0 {
		rec.Tags = recordTags
	}
	if recordContext != "" {
		rec.Context = recordContext
	}
	if recordSummary != "" {
		rec.Summary = recordSummary
	}

	added, err := recordingService.Add(cmd.Context(), rec)
	if err != nil {
		if added != nil {
			cmd.Printf("Saved %s but indexing failed.\n", added.ID)
		}
		return fmt.Errorf("failed to add recording: %w", err)
	}

	cmd.Printf("Added recording: %s\n", added.ID)
	if added.Title != "" {
		cmd.Printf("  Title: %s\n", added.Title)
	}
	if modelService != nil && !modelService.IsReady() {
		cmd.Println("Note: the embedding model is not ready, so only keyword search will find it.")
		cmd.Println("Run 'murmur model pull' and then 'murmur index rebuild'.")
	}
	return nil
}

// readRecording builds a recording from a transcript file or from stdin.
func readRecording(cmd *cobra.Command, source string) (domain.Recording, error) {
	if source == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return domain.Recording{}, fmt.Errorf("reading stdin: %w", err)
		}
		return domain.Recording{Transcript: strings.TrimSpace(string(data))}, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return domain.Recording{}, fmt.Errorf("reading transcript: %w", err)
	}
	if info.IsDir() {
		return domain.Recording{}, fmt.Errorf("%s is a directory (use 'murmur watch' to import a folder)", source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return domain.Recording{}, fmt.Errorf("reading transcript: %w", err)
	}

	rec, err := plaintext.New().Normalise(source, data, info.ModTime())
	if err != nil {
		return domain.Recording{}, err
	}
	return rec, nil
}

func runRecordList(cmd *cobra.Command, _ []string) error {
	if recordingService == nil {
		return errors.New("recording service not configured")
	}

	recs, err := recordingService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list recordings: %w", err)
	}

	if len(recs) == 0 {
		cmd.Println("No recordings yet.")
		cmd.Println("Add one with 'murmur record add <file>'.")
		return nil
	}

	cmd.Printf("Recordings (%d):\n\n", len(recs))
	for i := range recs {
		title := recs[i].Title
		if title == "" {
			title = "(Untitled)"
		}
		cmd.Printf("  %s  %s  %s\n", recs[i].CreatedAt.Format("2006-01-02 15:04"), recs[i].ID, title)
		if len(recs[i].Tags) > 0 {
			cmd.Printf("      Tags: %s\n", strings.Join(recs[i].Tags, ", "))
		}
	}
	return nil
}

func runRecordShow(cmd *cobra.Command, args []string) error {
	if recordingService == nil {
		return errors.New("recording service not configured")
	}

	rec, err := recordingService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("recording %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get recording: %w", err)
	}

	if rec.Title != "" {
		cmd.Printf("Title: %s\n", rec.Title)
	}
	cmd.Printf("Recorded: %s\n", rec.CreatedAt.Format("2006-01-02 15:04"))
	if len(rec.Tags) > 0 {
		cmd.Printf("Tags: %s\n", strings.Join(rec.Tags, ", "))
	}
	if rec.Context != "" {
		cmd.Printf("Context: %s\n", rec.Context)
	}
	if rec.Summary != "" {
		cmd.Printf("Summary: %s\n", rec.Summary)
	}
	cmd.Println()
	cmd.Println(rec.Transcript)
	return nil
}

func runRecordRemove(cmd *cobra.Command, args []string) error {
	if recordingService == nil {
		return errors.New("recording service not configured")
	}

	if err := recordingService.Remove(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("recording %s not found", args[0])
		}
		return fmt.Errorf("failed to remove recording: %w", err)
	}

	cmd.Printf("Removed recording: %s\n", args[0])
	return nil
}
