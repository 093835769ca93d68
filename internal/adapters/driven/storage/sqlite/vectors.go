package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/murmur/internal/adapters/driven/storage/ranking"
	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

const upsertManifestSQL = `
	INSERT INTO vector_manifest (recording_id, content_hash, indexed_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(recording_id) DO UPDATE SET
		content_hash = excluded.content_hash,
		indexed_at = excluded.indexed_at
`

// vectorIndex implements driven.VectorIndex with an exact scan over
// stored chunk embeddings. Embeddings are normalised before they are
// written, so the similarity is a dot product.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// AddChunks replaces the stored chunks of one field of a recording.
func (v *vectorIndex) AddChunks(ctx context.Context, recordingID, field string, chunks []domain.Chunk) error {
	if recordingID == "" || field == "" {
		return fmt.Errorf("%w: recording ID and field are required", domain.ErrInvalidInput)
	}
	if len(chunks) == 0 {
		return nil
	}

	dims, err := v.dimensions(ctx)
	if err != nil {
		return err
	}
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %d has no embedding", domain.ErrInvalidInput, i)
		}
		if dims == 0 {
			dims = len(c.Embedding)
		}
		if len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %d has %d dimensions, index has %d",
				domain.ErrInvalidInput, i, len(c.Embedding), dims)
		}
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM recording_chunks WHERE recording_id = ? AND field = ?", recordingID, field); err != nil {
		return fmt.Errorf("deleting previous chunks: %w", err)
	}

	if err := insertChunks(ctx, tx, recordingID, field, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceChunks swaps all chunks of a recording and its manifest entry in
// one transaction.
func (v *vectorIndex) ReplaceChunks(
	ctx context.Context,
	recordingID string,
	fields []domain.FieldChunks,
	contentHash string,
) error {
	if recordingID == "" {
		return fmt.Errorf("%w: recording ID is required", domain.ErrInvalidInput)
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Only other recordings constrain the embedding size.
	var dims int
	err = tx.QueryRowContext(ctx,
		"SELECT dimensions FROM recording_chunks WHERE recording_id != ? LIMIT 1", recordingID).Scan(&dims)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("querying dimensions: %w", err)
	}

	for _, fc := range fields {
		if fc.Field == "" {
			return fmt.Errorf("%w: field is required", domain.ErrInvalidInput)
		}
		for i, c := range fc.Chunks {
			if len(c.Embedding) == 0 {
				return fmt.Errorf("%w: %s chunk %d has no embedding", domain.ErrInvalidInput, fc.Field, i)
			}
			if dims == 0 {
				dims = len(c.Embedding)
			}
			if len(c.Embedding) != dims {
				return fmt.Errorf("%w: %s chunk %d has %d dimensions, index has %d",
					domain.ErrInvalidInput, fc.Field, i, len(c.Embedding), dims)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM recording_chunks WHERE recording_id = ?", recordingID); err != nil {
		return fmt.Errorf("deleting previous chunks: %w", err)
	}
	for _, fc := range fields {
		if err := insertChunks(ctx, tx, recordingID, fc.Field, fc.Chunks); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, upsertManifestSQL, recordingID, contentHash); err != nil {
		return fmt.Errorf("updating manifest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertChunks(ctx context.Context, tx *sql.Tx, recordingID, field string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recording_chunks (id, recording_id, field, chunk_index, content, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		blob := float32SliceToBytes(domain.Normalize(c.Embedding))
		if _, err := stmt.ExecContext(ctx, domain.ChunkID(recordingID, field, i),
			recordingID, field, i, c.Text, blob, len(c.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}
	return nil
}

// RemoveChunks deletes every chunk and the manifest entry of a recording.
func (v *vectorIndex) RemoveChunks(ctx context.Context, recordingID string) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM recording_chunks WHERE recording_id = ?", recordingID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM vector_manifest WHERE recording_id = ?", recordingID); err != nil {
		return fmt.Errorf("deleting manifest entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search returns the top limit chunks with similarity >= minScore.
func (v *vectorIndex) Search(ctx context.Context, embedding []float32, limit int, minScore float64) ([]domain.VectorSearchResult, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", domain.ErrInvalidInput)
	}

	dims, err := v.dimensions(ctx)
	if err != nil {
		return nil, err
	}
	if dims > 0 && len(embedding) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(embedding), dims)
	}
	if limit <= 0 {
		return []domain.VectorSearchResult{}, nil
	}

	rows, err := v.store.db.QueryContext(ctx,
		"SELECT id, recording_id, field, chunk_index, content, embedding FROM recording_chunks")
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	query := domain.Normalize(embedding)
	top := ranking.NewTopK(limit)

	for rows.Next() {
		var r domain.VectorSearchResult
		var blob []byte
		if err := rows.Scan(&r.ChunkID, &r.RecordingID, &r.Field, &r.ChunkIndex, &r.ChunkText, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		r.Score = domain.Dot(query, bytesToFloat32Slice(blob))
		if r.Score < minScore {
			continue
		}
		top.Offer(r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return top.Results(), nil
}

// IsIndexed returns true if the recording has a manifest entry.
func (v *vectorIndex) IsIndexed(ctx context.Context, recordingID string) (bool, error) {
	_, err := v.GetContentHash(ctx, recordingID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetContentHash returns the hash recorded for a recording.
func (v *vectorIndex) GetContentHash(ctx context.Context, recordingID string) (string, error) {
	var hash string
	err := v.store.db.QueryRowContext(ctx,
		"SELECT content_hash FROM vector_manifest WHERE recording_id = ?", recordingID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying manifest: %w", err)
	}
	return hash, nil
}

// UpdateManifest records the content hash a recording was indexed from.
func (v *vectorIndex) UpdateManifest(ctx context.Context, recordingID, contentHash string) error {
	if recordingID == "" {
		return fmt.Errorf("%w: recording ID is required", domain.ErrInvalidInput)
	}
	_, err := v.store.db.ExecContext(ctx, upsertManifestSQL, recordingID, contentHash)
	if err != nil {
		return fmt.Errorf("updating manifest: %w", err)
	}
	return nil
}

// GetIndexedRecordingIDs lists recordings with a manifest entry, sorted.
func (v *vectorIndex) GetIndexedRecordingIDs(ctx context.Context) ([]string, error) {
	rows, err := v.store.db.QueryContext(ctx, "SELECT recording_id FROM vector_manifest ORDER BY recording_id")
	if err != nil {
		return nil, fmt.Errorf("querying manifest: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning manifest: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating manifest: %w", err)
	}
	return ids, nil
}

// GetStats summarises the index contents.
func (v *vectorIndex) GetStats(ctx context.Context) (domain.VectorIndexStats, error) {
	var stats domain.VectorIndexStats

	if err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vector_manifest").Scan(&stats.Recordings); err != nil {
		return stats, fmt.Errorf("counting recordings: %w", err)
	}
	if err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM recording_chunks").Scan(&stats.Chunks); err != nil {
		return stats, fmt.Errorf("counting chunks: %w", err)
	}

	dims, err := v.dimensions(ctx)
	if err != nil {
		return stats, err
	}
	stats.Dimensions = dims
	return stats, nil
}

// Clear removes all chunks and manifest entries.
func (v *vectorIndex) Clear(ctx context.Context) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM recording_chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM vector_manifest"); err != nil {
		return fmt.Errorf("clearing manifest: %w", err)
	}
	return tx.Commit()
}

// Close is a no-op; the owning Store closes the database.
func (v *vectorIndex) Close() error {
	return nil
}

// dimensions returns the embedding size of stored chunks, or 0 when empty.
func (v *vectorIndex) dimensions(ctx context.Context) (int, error) {
	var dims int
	err := v.store.db.QueryRowContext(ctx, "SELECT dimensions FROM recording_chunks LIMIT 1").Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying dimensions: %w", err)
	}
	return dims, nil
}
