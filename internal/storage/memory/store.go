// Package memory is a seeded in-process stand-in for the hosted database.
package memory

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"hostel_hub/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Hostels []domain.Hostel `yaml:"hostels"`
}

// ParseSeed decodes a YAML catalog and validates every hostel in it.
func ParseSeed(b []byte) ([]domain.Hostel, error) {
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i := range f.Hostels {
		h := &f.Hostels[i]
		for j := range h.Rooms {
			if h.Rooms[j].HostelID == "" {
				h.Rooms[j].HostelID = h.ID
			}
			if h.Rooms[j].Status == "" {
				h.Rooms[j].Status = domain.RoomAvailable
			}
		}
		if err := h.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Hostels, nil
}

// Seed returns the embedded demo catalog.
func Seed() ([]domain.Hostel, error) { return ParseSeed(seedYAML) }

type Store struct {
	mu       sync.RWMutex
	hostels  []domain.Hostel
	bookings map[string]domain.Booking
	now      func() time.Time
}

func New(hostels []domain.Hostel) *Store {
	s := &Store{bookings: map[string]domain.Booking{}, now: time.Now}
	for _, h := range hostels {
		s.hostels = append(s.hostels, cloneHostel(h))
	}
	return s
}

// NewSeeded returns a store holding the embedded demo catalog.
func NewSeeded() (*Store, error) {
	hs, err := Seed()
	if err != nil {
		return nil, err
	}
	return New(hs), nil
}

func cloneHostel(h domain.Hostel) domain.Hostel {
	h.Rooms = append([]domain.Room(nil), h.Rooms...)
	h.Amenities = append([]string(nil), h.Amenities...)
	h.Images = append([]string(nil), h.Images...)
	return h
}

func (s *Store) ListHostels(ctx context.Context) ([]domain.Hostel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Hostel, 0, len(s.hostels))
	for _, h := range s.hostels {
		out = append(out, cloneHostel(h))
	}
	return out, nil
}

func (s *Store) GetHostel(ctx context.Context, id string) (domain.Hostel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.hostels {
		if h.ID == id {
			return cloneHostel(h), nil
		}
	}
	return domain.Hostel{}, domain.ErrNotFound
}

func (s *Store) UpsertHostel(ctx context.Context, h domain.Hostel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.hostels {
		if s.hostels[i].ID == h.ID {
			s.hostels[i] = cloneHostel(h)
			return nil
		}
	}
	s.hostels = append(s.hostels, cloneHostel(h))
	return nil
}

func (s *Store) CreateBooking(ctx context.Context, d domain.BookingDraft) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, ok := s.findRoom(d.RoomID); !ok {
		return domain.Booking{}, fmt.Errorf("room %s: %w", d.RoomID, domain.ErrNotFound)
	}
	b := domain.Booking{
		ID:         uuid.NewString(),
		RoomID:     d.RoomID,
		UserID:     d.UserID,
		Status:     d.Status,
		CheckIn:    d.CheckIn,
		CheckOut:   d.CheckOut,
		TotalPrice: d.TotalPrice,
		CreatedAt:  s.now().UTC(),
	}
	s.bookings[b.ID] = b
	return b, nil
}

func (s *Store) UpdateRoomStatus(ctx context.Context, roomID string, status domain.RoomStatus) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hi, ri, ok := s.findRoom(roomID)
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	// copy-on-write so hostels handed out earlier keep their rooms
	rooms := append([]domain.Room(nil), s.hostels[hi].Rooms...)
	rooms[ri].Status = status
	s.hostels[hi].Rooms = rooms
	return rooms[ri], nil
}

func (s *Store) findRoom(roomID string) (hostel, room int, ok bool) {
	for i, h := range s.hostels {
		for j, r := range h.Rooms {
			if r.ID == roomID {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (s *Store) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBookings(ctx context.Context, q domain.BookingQuery) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Booking{}
	for _, b := range s.bookings {
		if q.UserID != "" && b.UserID != q.UserID {
			continue
		}
		if q.OwnerID != "" {
			hi, _, ok := s.findRoom(b.RoomID)
			if !ok || s.hostels[hi].OwnerID != q.OwnerID {
				continue
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	b.Status = status
	s.bookings[id] = b
	return b, nil
}

var (
	_ domain.Persistence  = (*Store)(nil)
	_ domain.HostelWriter = (*Store)(nil)
	_ domain.EventBus     = (*Bus)(nil)
	_ domain.SessionStore = (*Sessions)(nil)
)
