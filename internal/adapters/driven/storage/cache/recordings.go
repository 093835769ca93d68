// Package cache provides an explicit, caller-owned cache in front of a
// recording store.
//
// Nothing is cached globally: whoever constructs a RecordingCache owns it
// and decides when to Invalidate, InvalidateAll or ForceRefresh.
package cache

import (
	"context"
	"fmt"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/murmur/internal/core/domain"
	"github.com/custodia-labs/murmur/internal/core/ports/driven"
	"github.com/custodia-labs/murmur/internal/logger"
)

// DefaultTTL is how long cached recordings stay valid.
const DefaultTTL = 5 * time.Minute

// listKey holds the cached full listing. Recording IDs never contain NUL.
const listKey = "\x00list"

// Ensure RecordingCache implements the interface.
var (
	_ driven.RecordingStore   = (*RecordingCache)(nil)
	_ driven.RefreshableStore = (*RecordingCache)(nil)
)

// RecordingCache decorates a RecordingStore with a TTL cache.
// Writes made through the cache invalidate the affected entries.
type RecordingCache struct {
	store driven.RecordingStore
	items *gocache.Cache
}

// NewRecordingCache wraps store. A non-positive ttl uses DefaultTTL.
func NewRecordingCache(store driven.RecordingStore, ttl time.Duration) *RecordingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RecordingCache{
		store: store,
		items: gocache.New(ttl, 2*ttl),
	}
}

// GetRecording returns a cached recording or loads it from the store.
// Missing recordings are not cached.
func (c *RecordingCache) GetRecording(ctx context.Context, id string) (*domain.Recording, error) {
	if v, ok := c.items.Get(id); ok {
		rec := clone(v.(domain.Recording))
		return &rec, nil
	}

	rec, err := c.store.GetRecording(ctx, id)
	if err != nil {
		return nil, err
	}
	c.items.SetDefault(id, clone(*rec))
	return rec, nil
}

// ListRecordings returns the cached listing or loads it from the store.
func (c *RecordingCache) ListRecordings(ctx context.Context) ([]domain.Recording, error) {
	if v, ok := c.items.Get(listKey); ok {
		return cloneAll(v.([]domain.Recording)), nil
	}

	recs, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return cloneAll(recs), nil
}

// SaveRecording writes through to the store and invalidates the entry.
func (c *RecordingCache) SaveRecording(ctx context.Context, rec *domain.Recording) error {
	if err := c.store.SaveRecording(ctx, rec); err != nil {
		return err
	}
	c.Invalidate(rec.ID)
	return nil
}

// DeleteRecording deletes from the store and invalidates the entry.
func (c *RecordingCache) DeleteRecording(ctx context.Context, id string) error {
	if err := c.store.DeleteRecording(ctx, id); err != nil {
		return err
	}
	c.Invalidate(id)
	return nil
}

// Invalidate drops one recording and the cached listing.
func (c *RecordingCache) Invalidate(id string) {
	c.items.Delete(id)
	c.items.Delete(listKey)
}

// InvalidateAll empties the cache.
func (c *RecordingCache) InvalidateAll() {
	c.items.Flush()
}

// ForceRefresh empties the cache and reloads every recording from the store.
func (c *RecordingCache) ForceRefresh(ctx context.Context) error {
	c.items.Flush()
	if _, err := c.load(ctx); err != nil {
		return fmt.Errorf("refreshing recording cache: %w", err)
	}
	return nil
}

// Len returns the number of cached entries, including the listing.
func (c *RecordingCache) Len() int {
	return c.items.ItemCount()
}

func (c *RecordingCache) load(ctx context.Context) ([]domain.Recording, error) {
	recs, err := c.store.ListRecordings(ctx)
	if err != nil {
		return nil, err
	}

	stored := cloneAll(recs)
	for _, r := range stored {
		c.items.SetDefault(r.ID, clone(r))
	}
	c.items.SetDefault(listKey, stored)

	logger.Debug("cache: loaded %d recordings", len(stored))
	return recs, nil
}

func clone(r domain.Recording) domain.Recording {
	r.Tags = slices.Clone(r.Tags)
	return r
}

func cloneAll(recs []domain.Recording) []domain.Recording {
	out := make([]domain.Recording, len(recs))
	for i, r := range recs {
		out[i] = clone(r)
	}
	return out
}
