package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hostel_hub/internal/domain"
)

// BookingService moves existing bookings through their status lifecycle.
// Bookings are never deleted; cancelling is a transition to cancelled.
type BookingService struct {
	store   domain.Persistence
	catalog *Catalog
	events  domain.EventPublisher
}

func NewBookingService(p domain.Persistence, c *Catalog, ev domain.EventPublisher) *BookingService {
	return &BookingService{store: p, catalog: c, events: ev}
}

var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingConfirmed: {domain.BookingCancelled},
}

func canTransition(from, to domain.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Confirm is reserved to the owner of the booked hostel.
func (s *BookingService) Confirm(ctx context.Context, id string) (domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingConfirmed)
}

// Cancel may be called by the student who made the booking or by the hostel
// owner. The room is released afterwards with a separate write.
func (s *BookingService) Cancel(ctx context.Context, id string) (domain.Booking, error) {
	b, err := s.transition(ctx, id, domain.BookingCancelled)
	if err != nil {
		return b, err
	}
	room, err := s.store.UpdateRoomStatus(ctx, b.RoomID, domain.RoomAvailable)
	if err != nil {
		log.Warn().Err(err).Str("room_id", b.RoomID).Str("booking_id", b.ID).Msg("room release failed after cancel")
		return b, nil
	}
	if s.catalog != nil {
		s.catalog.ApplyRoom(ctx, room)
	}
	return b, nil
}

func (s *BookingService) transition(ctx context.Context, id string, to domain.BookingStatus) (domain.Booking, error) {
	sess, ok := SessionFrom(ctx)
	if !ok {
		return domain.Booking{}, domain.ErrUnauthenticated
	}
	b, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, &domain.PersistenceError{Op: "get booking", Err: err}
	}

	owner := ownerOf(ctx, s.catalog, "", b.RoomID)
	allowed := sess.UserID == owner
	if to == domain.BookingCancelled && sess.UserID == b.UserID {
		allowed = true
	}
	if !allowed {
		return domain.Booking{}, domain.ErrForbidden
	}

	if !canTransition(b.Status, to) {
		verr := &domain.ValidationError{}
		verr.Add("status", fmt.Sprintf("cannot move booking from %s to %s", b.Status, to))
		return domain.Booking{}, verr
	}

	updated, err := s.store.UpdateBookingStatus(ctx, id, to)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Str("status", string(to)).Msg("update booking status failed")
		return domain.Booking{}, &domain.PersistenceError{Op: "update booking status", Err: err}
	}
	publish(ctx, s.events, s.catalog, domain.EventUpdate, "", updated)
	return updated, nil
}

func (s *BookingService) ForUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	bs, err := s.store.ListBookings(ctx, domain.BookingQuery{UserID: userID})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list bookings", Err: err}
	}
	return bs, nil
}

func (s *BookingService) ForOwner(ctx context.Context, ownerID string) ([]domain.Booking, error) {
	bs, err := s.store.ListBookings(ctx, domain.BookingQuery{OwnerID: ownerID})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list bookings", Err: err}
	}
	return bs, nil
}
