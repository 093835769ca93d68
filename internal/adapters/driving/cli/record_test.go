package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/normalisers/plaintext"
)

func resetRecordFlags() {
	recordTitle = ""
	recordTags = nil
	recordContext = ""
	recordSummary = ""
}

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRecordCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(recordCmd.Commands()))
	for _, c := range recordCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"add", "list", "show", "remove"}, names)
}

func TestRecordAdd_FromFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetRecordFlags()

	path := filepath.Join(t.TempDir(), "morning-pages.txt")
	require.NoError(t, os.WriteFile(path, []byte("Tags: writing\n\nWoke early and wrote three pages."), 0o600))

	out, err := runRoot(t, "", "record", "add", path)

	require.NoError(t, err)
	id := plaintext.RecordingID(path)
	assert.Contains(t, out, "Added recording: "+id)
	assert.Contains(t, out, "Title: morning pages")

	rec, err := recordingService.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"writing"}, rec.Tags)
	assert.Equal(t, "Woke early and wrote three pages.", rec.Transcript)
}

func TestRecordAdd_FromStdinWithFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetRecordFlags()

	out, err := runRoot(t, "Talked through the budget with Sam.\n",
		"record", "add", "-", "--title", "Call with Sam", "--tag", "work", "--tag", "money", "--context", "phone")

	require.NoError(t, err)
	assert.Contains(t, out, "Added recording: generated-id")

	rec, err := recordingService.Get(t.Context(), "generated-id")
	require.NoError(t, err)
	assert.Equal(t, "Call with Sam", rec.Title)
	assert.Equal(t, []string{"work", "money"}, rec.Tags)
	assert.Equal(t, "phone", rec.Context)
	assert.Equal(t, "Talked through the budget with Sam.", rec.Transcript)
}

func TestRecordAdd_ModelNotReadyNote(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetRecordFlags()
	modelService = &mockModelService{status: domain.ModelStatus{Phase: domain.ModelNotDownloaded}}

	out, err := runRoot(t, "A short note.", "record", "add", "-")

	require.NoError(t, err)
	assert.Contains(t, out, "only keyword search")
}

func TestRecordAdd_Errors(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetRecordFlags()

	_, err := runRoot(t, "", "record", "add", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "reading transcript")

	_, err = runRoot(t, "", "record", "add", t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = runRoot(t, "   ", "record", "add", "-")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runRoot(t, "", "record", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Recordings (1):")
	assert.Contains(t, out, "2026-05-04 08:30  rec-1  Canal walk")
	assert.Contains(t, out, "Tags: outdoors")
}

func TestRecordList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	recordingService = newMockRecordingService()

	out, err := runRoot(t, "", "record", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No recordings yet.")
}

func TestRecordShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runRoot(t, "", "record", "show", "rec-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Title: Canal walk")
	assert.Contains(t, out, "Recorded: 2026-05-04 08:30")
	assert.Contains(t, out, "Saw a heron by the lock.")

	_, err = runRoot(t, "", "record", "show", "nope")
	assert.ErrorContains(t, err, "recording nope not found")
}

func TestRecordRemove(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runRoot(t, "", "record", "rm", "rec-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed recording: rec-1")

	_, err = runRoot(t, "", "record", "remove", "rec-1")
	assert.ErrorContains(t, err, "not found")
}

func TestRecordCmds_ServiceNotConfigured(t *testing.T) {
	old := recordingService
	recordingService = nil
	defer func() { recordingService = old }()

	for _, args := range [][]string{
		{"record", "add", "-"},
		{"record", "list"},
		{"record", "show", "x"},
		{"record", "remove", "x"},
	} {
		_, err := runRoot(t, "text", args...)
		assert.ErrorContains(t, err, "recording service not configured", args)
	}
}
