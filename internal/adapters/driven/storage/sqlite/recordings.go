package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
)

// recordingStore implements driven.RecordingStore.
type recordingStore struct {
	store *Store
}

var _ driven.RecordingStore = (*recordingStore)(nil)

const recordingColumns = `id, title, transcript, context, summary, tags, created_at`

// SaveRecording stores or updates a recording.
func (s *recordingStore) SaveRecording(ctx context.Context, rec *domain.Recording) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("%w: recording ID is required", domain.ErrInvalidInput)
	}

	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO recordings (id, title, transcript, context, summary, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			transcript = excluded.transcript,
			context = excluded.context,
			summary = excluded.summary,
			tags = excluded.tags,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, rec.ID, rec.Title, rec.Transcript, rec.Context, rec.Summary, string(tagsJSON),
		createdAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving recording: %w", err)
	}
	return nil
}

// GetRecording retrieves a recording by ID.
func (s *recordingStore) GetRecording(ctx context.Context, id string) (*domain.Recording, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+recordingColumns+` FROM recordings WHERE id = ?`, id)

	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRecordings returns every recording, newest first.
func (s *recordingStore) ListRecordings(ctx context.Context) ([]domain.Recording, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+recordingColumns+` FROM recordings ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying recordings: %w", err)
	}
	defer rows.Close()

	var recordings []domain.Recording //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recordings: %w", err)
	}

	return recordings, nil
}

// DeleteRecording removes a recording.
func (s *recordingStore) DeleteRecording(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM recordings WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting recording: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*domain.Recording, error) {
	var rec domain.Recording
	var tagsJSON string

	err := row.Scan(&rec.ID, &rec.Title, &rec.Transcript, &rec.Context, &rec.Summary,
		&tagsJSON, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning recording: %w", err)
	}

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &rec.Tags); err != nil {
			return nil, fmt.Errorf("unmarshalling tags: %w", err)
		}
	}
	if len(rec.Tags) == 0 {
		rec.Tags = nil
	}

	return &rec, nil
}
