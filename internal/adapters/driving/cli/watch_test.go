package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/murmur/internal/normalisers/plaintext"
)

func TestInboxDir(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir, err := inboxDir([]string{"/tmp/explicit"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit", dir)

	require.NoError(t, settingsService.Set("watch.inbox_dir", "/tmp/configured"))
	dir, err = inboxDir(nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/configured", dir)

	settingsService = nil
	dir, err = inboxDir(nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(dir, filepath.Join(".murmur", "inbox")), dir)
}

func TestWatchCmd_ImportsExistingFiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	path := filepath.Join(dir, "evening.txt")
	require.NoError(t, os.WriteFile(path, []byte("Long day, glad it is over."), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"watch", dir})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetContext(context.Background())
	}()

	err := rootCmd.ExecuteContext(ctx)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Imported 1 existing transcript(s)")
	assert.Contains(t, buf.String(), "Watching "+dir)

	_, err = recordingService.Get(context.Background(), plaintext.RecordingID(path))
	assert.NoError(t, err)
}

func TestWatchCmd_ServiceNotConfigured(t *testing.T) {
	old := recordingService
	recordingService = nil
	defer func() { recordingService = old }()

	_, err := runRoot(t, "", "watch", t.TempDir())

	assert.ErrorContains(t, err, "recording service not configured")
}
