package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hostel_hub/internal/adapters/observability"
	"hostel_hub/internal/domain"
)

type FlowState int

const (
	StateIdle FlowState = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s FlowState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type BookingForm struct {
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	AcceptTerms bool   `json:"accept_terms"`
}

// BookingFlow submits a booking for a room and then marks the room booked.
// The two writes are independent: a failed room update does not undo the
// booking, and a retried submission may create a second booking.
type BookingFlow struct {
	store   domain.Persistence
	catalog *Catalog
	events  domain.EventPublisher

	OnTransition func(from, to FlowState)
	OnSuccess    func(domain.Booking)
}

func NewBookingFlow(p domain.Persistence, c *Catalog, ev domain.EventPublisher) *BookingFlow {
	return &BookingFlow{store: p, catalog: c, events: ev}
}

func (f *BookingFlow) Submit(ctx context.Context, room domain.Room, form BookingForm) (domain.Booking, error) {
	sess, ok := SessionFrom(ctx)
	if !ok {
		return domain.Booking{}, domain.ErrUnauthenticated
	}

	state := StateIdle
	move := func(to FlowState) {
		if f.OnTransition != nil {
			f.OnTransition(state, to)
		}
		state = to
	}

	move(StateValidating)
	checkIn, checkOut, verr := validateForm(form)
	if !verr.Empty() {
		move(StateIdle)
		observability.ObserveBooking("invalid")
		return domain.Booking{}, verr
	}

	move(StateSubmitting)
	draft := domain.BookingDraft{
		RoomID:     room.ID,
		UserID:     sess.UserID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: room.Price,
		Status:     domain.BookingPending,
	}
	b, err := f.store.CreateBooking(ctx, draft)
	if err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Str("user_id", sess.UserID).Msg("create booking failed")
		move(StateFailed)
		move(StateIdle)
		observability.ObserveBooking("failed")
		return domain.Booking{}, &domain.PersistenceError{Op: "create booking", Err: err}
	}

	updated, err := f.store.UpdateRoomStatus(ctx, room.ID, domain.RoomBooked)
	if err != nil {
		// booking stays; the room is still listed as available
		log.Warn().Err(err).Str("room_id", room.ID).Str("booking_id", b.ID).Msg("room status update failed after booking")
		observability.ObserveRoomStatusFailure()
	} else if f.catalog != nil {
		f.catalog.ApplyRoom(ctx, updated)
	}

	publish(ctx, f.events, f.catalog, domain.EventInsert, room.HostelID, b)

	move(StateSucceeded)
	if f.OnSuccess != nil {
		f.OnSuccess(b)
	}
	move(StateIdle)
	observability.ObserveBooking("succeeded")
	log.Info().Str("booking_id", b.ID).Str("room_id", room.ID).Msg("booking submitted")
	return b, nil
}

func validateForm(form BookingForm) (checkIn, checkOut time.Time, verr *domain.ValidationError) {
	verr = &domain.ValidationError{}
	checkIn = parseDate(verr, "check_in", form.CheckIn)
	checkOut = parseDate(verr, "check_out", form.CheckOut)
	if !form.AcceptTerms {
		verr.Add("accept_terms", "you must accept the terms and conditions")
	}
	if !checkIn.IsZero() && !checkOut.IsZero() && !checkOut.After(checkIn) {
		verr.Add("check_out", "check-out date must be after check-in date")
	}
	return checkIn, checkOut, verr
}

func parseDate(verr *domain.ValidationError, field, v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		verr.Add(field, "date is required")
		return time.Time{}
	}
	t, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		verr.Add(field, "date must look like 2006-01-02")
		return time.Time{}
	}
	return t
}

// publish sends a best-effort booking event to the owner of the booked room.
func publish(ctx context.Context, ev domain.EventPublisher, c *Catalog, kind domain.EventKind, hostelID string, b domain.Booking) {
	if ev == nil {
		return
	}
	owner := ownerOf(ctx, c, hostelID, b.RoomID)
	if owner == "" {
		log.Warn().Str("booking_id", b.ID).Msg("no owner for booking event")
		return
	}
	if err := ev.Publish(ctx, domain.BookingEvent{Kind: kind, OwnerID: owner, Booking: b}); err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID).Msg("publish booking event failed")
	}
}

func ownerOf(ctx context.Context, c *Catalog, hostelID, roomID string) string {
	if c == nil {
		return ""
	}
	if h, _, err := c.Room(roomID); err == nil {
		return h.OwnerID
	}
	if hostelID == "" {
		return ""
	}
	if h, err := c.Hostel(ctx, hostelID); err == nil {
		return h.OwnerID
	}
	return ""
}
