package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(dir, DatabaseFile)
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Contains(t, store.Path(), filepath.Join(".murmur", "data", DatabaseFile))
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "path")

	store, err := NewStore(nested)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nested)
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{"recordings", "recording_chunks", "vector_manifest"} {
		var exists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.Equal(t, 1, exists, "table %s should exist", table)
	}
}

func TestNewStore_ReopenKeepsDataAndVersion(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.VectorIndex().UpdateManifest(ctx, "rec-1", "hash"))
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	hash, err := store.VectorIndex().GetContentHash(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "hash", hash)
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

func TestStore_InterfaceGetters(t *testing.T) {
	store := setupTestStore(t)

	assert.NotNil(t, store.RecordingStore())
	assert.NotNil(t, store.VectorIndex())
}

func TestFloat32SliceToBytes(t *testing.T) {
	tests := []struct {
		name   string
		input  []float32
		output []byte
	}{
		{name: "empty slice", input: []float32{}, output: nil},
		{name: "nil slice", input: nil, output: nil},
		{name: "single value", input: []float32{1.0}, output: []byte{0x00, 0x00, 0x80, 0x3f}},
		{
			name:  "multiple values",
			input: []float32{0.0, 1.0, -1.0},
			output: []byte{
				0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x80, 0x3f,
				0x00, 0x00, 0x80, 0xbf,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.output, float32SliceToBytes(tt.input))
		})
	}
}

func TestFloat32Roundtrip(t *testing.T) {
	original := []float32{0.1, 0.2, 0.3, -0.5, 100.5, -200.75}
	assert.Equal(t, original, bytesToFloat32Slice(float32SliceToBytes(original)))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
