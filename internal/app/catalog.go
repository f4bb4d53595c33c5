package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hostel_hub/internal/adapters/observability"
	"hostel_hub/internal/domain"
)

const catalogCacheKey = "catalog:hostels"

// Catalog is the in-memory hostel list shared by every search controller.
// The slice it hands out is never mutated in place; ApplyRoom swaps in a new one.
type Catalog struct {
	store    domain.Persistence
	cache    domain.Cache
	cacheTTL time.Duration

	mu      sync.RWMutex
	hostels []domain.Hostel
	err     error

	hooksMu sync.Mutex
	hooks   []func()
}

func NewCatalog(p domain.Persistence, c domain.Cache, ttl time.Duration) *Catalog {
	return &Catalog{store: p, cache: c, cacheTTL: ttl}
}

// Load replaces the catalog with the persistence collection. On failure the
// catalog is left empty and Err reports why; there is no retry.
func (c *Catalog) Load(ctx context.Context) error {
	var hs []domain.Hostel
	hit := false
	if c.cache != nil {
		var err error
		hit, err = c.cache.Get(ctx, catalogCacheKey, &hs)
		if err != nil {
			// an unreadable entry is a miss; drop it so the next load repopulates it
			log.Warn().Err(err).Str("key", catalogCacheKey).Msg("catalog cache read failed")
			hit, hs = false, nil
			_ = c.cache.Del(ctx, catalogCacheKey)
		}
	}
	if !hit {
		var err error
		hs, err = c.store.ListHostels(ctx)
		if err != nil {
			perr := &domain.PersistenceError{Op: "list hostels", Err: err}
			c.mu.Lock()
			c.hostels, c.err = nil, perr
			c.mu.Unlock()
			observability.ObserveCatalogLoad("error")
			log.Error().Err(err).Msg("catalog load failed")
			c.notify()
			return perr
		}
		if c.cache != nil {
			// size guard
			if b, _ := json.Marshal(hs); len(b) < 4_000_000 {
				_ = c.cache.Set(ctx, catalogCacheKey, hs, int(c.cacheTTL.Seconds()))
			}
		}
	}

	c.mu.Lock()
	c.hostels, c.err = hs, nil
	c.mu.Unlock()
	if hit {
		observability.ObserveCatalogLoad("cache")
	} else {
		observability.ObserveCatalogLoad("store")
	}
	log.Info().Int("hostels", len(hs)).Bool("cached", hit).Msg("catalog loaded")
	c.notify()
	return nil
}

// OnChange registers fn to run after every load and every merged room.
// Hooks run without the catalog lock held.
func (c *Catalog) OnChange(fn func()) {
	c.hooksMu.Lock()
	c.hooks = append(c.hooks, fn)
	c.hooksMu.Unlock()
}

func (c *Catalog) notify() {
	c.hooksMu.Lock()
	hooks := append([]func(){}, c.hooks...)
	c.hooksMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Snapshot returns the current hostels. Callers must not modify the result.
func (c *Catalog) Snapshot() []domain.Hostel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hostels
}

// Hostel looks id up in memory and falls back to the store for hostels
// created after the last load.
func (c *Catalog) Hostel(ctx context.Context, id string) (domain.Hostel, error) {
	for _, h := range c.Snapshot() {
		if h.ID == id {
			return h, nil
		}
	}
	h, err := c.store.GetHostel(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Hostel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hostel{}, &domain.PersistenceError{Op: "get hostel", Err: err}
	}
	return h, nil
}

// Room returns a room together with its hostel.
func (c *Catalog) Room(roomID string) (domain.Hostel, domain.Room, error) {
	for _, h := range c.Snapshot() {
		for _, r := range h.Rooms {
			if r.ID == roomID {
				return h, r, nil
			}
		}
	}
	return domain.Hostel{}, domain.Room{}, domain.ErrNotFound
}

// ApplyRoom merges an updated room into the catalog by id and drops the
// shared cache entry. Unknown rooms are ignored.
func (c *Catalog) ApplyRoom(ctx context.Context, room domain.Room) {
	c.mu.Lock()
	next := make([]domain.Hostel, len(c.hostels))
	copy(next, c.hostels)
	found := false
	for i := range next {
		for j := range next[i].Rooms {
			if next[i].Rooms[j].ID != room.ID {
				continue
			}
			rooms := make([]domain.Room, len(next[i].Rooms))
			copy(rooms, next[i].Rooms)
			if room.HostelID == "" {
				room.HostelID = rooms[j].HostelID
			}
			rooms[j] = room
			next[i].Rooms = rooms
			found = true
		}
	}
	if found {
		c.hostels = next
	}
	c.mu.Unlock()

	if !found {
		return
	}
	if c.cache != nil {
		_ = c.cache.Del(ctx, catalogCacheKey)
	}
	c.notify()
}

// InvalidateCatalog drops the shared catalog cache entry.
func InvalidateCatalog(ctx context.Context, cache domain.Cache) {
	if cache != nil {
		_ = cache.Del(ctx, catalogCacheKey)
	}
}
