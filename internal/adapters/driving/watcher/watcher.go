// Package watcher imports transcript files dropped into an inbox directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	retry "github.com/sethvargo/go-retry"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driving"
	"github.com/custodia-labs/murmur/internal/logger"
	"github.com/custodia-labs/murmur/internal/normalisers/plaintext"
)

const (
	// DefaultDebounce coalesces the burst of events an editor or a copy emits.
	DefaultDebounce = 250 * time.Millisecond

	// readRetries bounds re-reads of a file that is still being written.
	readRetries = 5
)

var (
	// ErrNoRecordingService is returned when the watcher has nowhere to store recordings.
	ErrNoRecordingService = errors.New("recording service not configured")

	// ErrNoInboxDir is returned when no inbox directory is given.
	ErrNoInboxDir = errors.New("inbox directory not set")

	// errFileEmpty marks a file that exists but has no content yet.
	errFileEmpty = errors.New("file is empty")
)

// Watcher keeps the journal in sync with a directory of transcript files.
// New or changed files are added as recordings, deleted or renamed files are
// removed.
type Watcher struct {
	dir        string
	recordings driving.RecordingService
	normaliser *plaintext.Normaliser
	debounce   time.Duration
	backoff    time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a path must be quiet before it is processed.
// Zero processes every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithReadBackoff sets the base delay between reads of a file that is not ready.
func WithReadBackoff(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.backoff = d
		}
	}
}

// New creates a watcher for dir.
func New(dir string, recordings driving.RecordingService, opts ...Option) (*Watcher, error) {
	if dir == "" {
		return nil, ErrNoInboxDir
	}
	if recordings == nil {
		return nil, ErrNoRecordingService
	}

	w := &Watcher{
		dir:        dir,
		recordings: recordings,
		normaliser: plaintext.New(),
		debounce:   DefaultDebounce,
		backoff:    100 * time.Millisecond,
		timers:     make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Scan imports every supported file already in the directory and returns the
// number imported.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("reading inbox: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !w.normaliser.Supports(path) {
			continue
		}
		if err := w.Import(ctx, path); err != nil {
			logger.Warn("Skipping %s: %v", entry.Name(), err)
			continue
		}
		imported++
	}
	return imported, nil
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("creating inbox: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for transcripts", w.dir)

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handleEvent schedules the work for a single filesystem event.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name
	if !w.normaliser.Supports(path) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.schedule(path, func() {
			if err := w.Forget(ctx, path); err != nil {
				logger.Warn("Removing %s: %v", filepath.Base(path), err)
			}
		})
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.schedule(path, func() {
			if err := w.Import(ctx, path); err != nil {
				logger.Warn("Importing %s: %v", filepath.Base(path), err)
			}
		})
	}
}

// schedule runs fn once path has been quiet for the debounce interval.
// A newer event for the same path replaces the pending one.
func (w *Watcher) schedule(path string, fn func()) {
	if w.debounce == 0 {
		fn()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		fn()
	})
}

// stop cancels pending work and waits for running work to finish.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// Import reads path and stores it as a recording. A file that has vanished
// by the time it is read is ignored.
func (w *Watcher) Import(ctx context.Context, path string) error {
	content, modTime, err := w.readFile(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	rec, err := w.normaliser.Normalise(path, content, modTime)
	if err != nil {
		return err
	}

	if _, err := w.recordings.Add(ctx, rec); err != nil {
		return fmt.Errorf("adding recording: %w", err)
	}
	logger.Info("Imported %s", filepath.Base(path))
	return nil
}

// Forget removes the recording imported from path, if any.
func (w *Watcher) Forget(ctx context.Context, path string) error {
	err := w.recordings.Remove(ctx, plaintext.RecordingID(path))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err == nil {
		logger.Info("Removed %s", filepath.Base(path))
	}
	return nil
}

// readFile reads a file, retrying while it is empty or transiently unreadable.
func (w *Watcher) readFile(ctx context.Context, path string) ([]byte, time.Time, error) {
	var (
		content []byte
		modTime time.Time
	)

	b := retry.WithMaxRetries(readRetries, retry.NewFibonacci(w.backoff))
	err := retry.Do(ctx, b, func(_ context.Context) error {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err != nil {
			return retry.RetryableError(err)
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err != nil {
			return retry.RetryableError(err)
		}
		if len(data) == 0 {
			return retry.RetryableError(errFileEmpty)
		}
		content = data
		modTime = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return content, modTime, nil
}
