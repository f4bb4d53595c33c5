package memory

import (
	"context"
	"sync"

	"hostel_hub/internal/domain"
)

// Bus delivers booking events synchronously to in-process subscribers. It is
// used when no redis is configured.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func(domain.BookingEvent)
}

func NewBus() *Bus { return &Bus{subs: map[string]map[int]func(domain.BookingEvent){}} }

func (b *Bus) Publish(ctx context.Context, e domain.BookingEvent) error {
	b.mu.RLock()
	fns := make([]func(domain.BookingEvent), 0, len(b.subs[e.OwnerID]))
	for _, fn := range b.subs[e.OwnerID] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(e)
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, ownerID string, fn func(domain.BookingEvent)) (func() error, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.subs[ownerID] == nil {
		b.subs[ownerID] = map[int]func(domain.BookingEvent){}
	}
	b.subs[ownerID][id] = fn
	return func() error {
		b.mu.Lock()
		delete(b.subs[ownerID], id)
		b.mu.Unlock()
		return nil
	}, nil
}

type Sessions struct {
	mu   sync.RWMutex
	byID map[string]domain.Session
}

func NewSessions() *Sessions { return &Sessions{byID: map[string]domain.Session{}} }

func (s *Sessions) Load(ctx context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.byID[id]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return sess, nil
}

func (s *Sessions) Save(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	s.byID[sess.ID] = sess
	s.mu.Unlock()
	return nil
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
	return nil
}
