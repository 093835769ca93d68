package plaintext

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/murmur/internal/core/domain"
)

// headerKeys are the recognised "Key: value" lines at the top of a transcript file.
var headerKeys = map[string]struct{}{
	"title":   {},
	"tags":    {},
	"context": {},
	"summary": {},
}

// Normaliser handles plain text transcript files.
//
// A file may start with a header block of "Key: value" lines (title, tags,
// context, summary) terminated by a blank line:
//
//	Title: Call with Sam
//	Tags: work, planning
//
//	So the plan for next week is...
//
// Everything after the header is the transcript.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt"}
}

// Supports reports whether path has a supported extension and is not hidden.
func (n *Normaliser) Supports(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range n.SupportedExtensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// RecordingID derives a stable recording ID from a file path, so re-importing
// the same file updates the same recording.
func RecordingID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}

// Normalise converts a transcript file into a recording.
// createdAt is normally the file's modification time.
func (n *Normaliser) Normalise(path string, content []byte, createdAt time.Time) (domain.Recording, error) {
	text := strings.TrimPrefix(string(content), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	header, body := splitHeader(text)

	rec := domain.Recording{
		ID:         RecordingID(path),
		Title:      header["title"],
		Transcript: strings.TrimSpace(body),
		Context:    header["context"],
		Summary:    header["summary"],
		Tags:       parseTags(header["tags"]),
		CreatedAt:  createdAt,
	}
	if rec.Title == "" {
		rec.Title = extractTitle(path)
	}

	if rec.Transcript == "" {
		return domain.Recording{}, fmt.Errorf("%w: %s has no transcript", domain.ErrInvalidInput, filepath.Base(path))
	}
	return rec, nil
}

// splitHeader separates a leading header block from the body. Text without
// a header block is returned whole as the body.
func splitHeader(text string) (map[string]string, string) {
	header := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)

	consumed := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if len(header) == 0 {
				return map[string]string{}, text
			}
			consumed += len(line) + 1
			break
		}

		key, value, ok := strings.Cut(line, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		if _, known := headerKeys[key]; !ok || !known {
			// Not a header line: either there is no header at all, or the
			// header ran straight into the body.
			if len(header) == 0 {
				return map[string]string{}, text
			}
			break
		}

		header[key] = strings.TrimSpace(value)
		consumed += len(line) + 1
	}

	if consumed > len(text) {
		consumed = len(text)
	}
	return header, text[consumed:]
}

// parseTags splits a comma-separated tag list.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// extractTitle extracts a human-readable title from a file path.
func extractTitle(path string) string {
	filename := filepath.Base(path)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
