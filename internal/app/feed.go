package app

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"hostel_hub/internal/adapters/observability"
	"hostel_hub/internal/domain"
)

// BookingFeed is an owner's live view of bookings on their hostels. Events
// are merged by booking id instead of reloading the collection.
type BookingFeed struct {
	ownerID string

	mu    sync.RWMutex
	items map[string]domain.Booking
	stop  func() error
}

func NewBookingFeed(ownerID string) *BookingFeed {
	return &BookingFeed{ownerID: ownerID, items: map[string]domain.Booking{}}
}

// Start subscribes first and seeds afterwards so no event between the two is
// lost; seeded rows never overwrite an entry an event already delivered.
func (f *BookingFeed) Start(ctx context.Context, store domain.Persistence, bus domain.EventBus) error {
	stop, err := bus.Subscribe(ctx, f.ownerID, f.Apply)
	if err != nil {
		return err
	}
	seed, err := store.ListBookings(ctx, domain.BookingQuery{OwnerID: f.ownerID})
	if err != nil {
		_ = stop()
		return &domain.PersistenceError{Op: "list bookings", Err: err}
	}
	f.mu.Lock()
	f.stop = stop
	for _, b := range seed {
		if _, ok := f.items[b.ID]; !ok {
			f.items[b.ID] = b
		}
	}
	f.mu.Unlock()
	return nil
}

func (f *BookingFeed) Apply(e domain.BookingEvent) {
	if e.OwnerID != f.ownerID || e.Booking.ID == "" {
		return
	}
	f.mu.Lock()
	f.items[e.Booking.ID] = e.Booking
	f.mu.Unlock()
	observability.ObserveFeedEvent(string(e.Kind))
}

// Snapshot lists bookings newest first.
func (f *BookingFeed) Snapshot() []domain.Booking {
	f.mu.RLock()
	out := make([]domain.Booking, 0, len(f.items))
	for _, b := range f.items {
		out = append(out, b)
	}
	f.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *BookingFeed) Close() error {
	f.mu.Lock()
	stop := f.stop
	f.stop = nil
	f.mu.Unlock()
	if stop == nil {
		return nil
	}
	return stop()
}

// Feeds starts one BookingFeed per owner on first use.
type Feeds struct {
	store domain.Persistence
	bus   domain.EventBus

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	feeds map[string]*BookingFeed
}

func NewFeeds(p domain.Persistence, bus domain.EventBus) *Feeds {
	ctx, cancel := context.WithCancel(context.Background())
	return &Feeds{store: p, bus: bus, ctx: ctx, cancel: cancel, feeds: map[string]*BookingFeed{}}
}

func (fs *Feeds) For(ownerID string) (*BookingFeed, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.feeds[ownerID]; ok {
		return f, nil
	}
	f := NewBookingFeed(ownerID)
	if err := f.Start(fs.ctx, fs.store, fs.bus); err != nil {
		return nil, err
	}
	fs.feeds[ownerID] = f
	log.Debug().Str("owner_id", ownerID).Msg("booking feed started")
	return f, nil
}

func (fs *Feeds) Close() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for id, f := range fs.feeds {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Str("owner_id", id).Msg("close booking feed")
		}
		delete(fs.feeds, id)
	}
	fs.cancel()
}
