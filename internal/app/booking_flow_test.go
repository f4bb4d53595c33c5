package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel_hub/internal/app"
	"hostel_hub/internal/domain"
)

var student = domain.Session{ID: "s1", UserID: "student-1", Role: domain.RoleStudent}

func validForm() app.BookingForm {
	return app.BookingForm{CheckIn: "2026-01-10", CheckOut: "2026-05-10", AcceptTerms: true}
}

func newFlow(t *testing.T, store *fakeStore, bus *fakeBus) (*app.BookingFlow, *app.Catalog) {
	t.Helper()
	c := loadedCatalog(t, store)
	return app.NewBookingFlow(store, c, bus), c
}

func TestSubmit_RequiresSession(t *testing.T) {
	store := newFakeStore(catalogFixture()...)
	flow, _ := newFlow(t, store, &fakeBus{})
	_, err := flow.Submit(context.Background(), catalogFixture()[0].Rooms[0], validForm())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.NotContains(t, store.Calls(), "CreateBooking")
}

func TestSubmit_ValidationGate(t *testing.T) {
	cases := []struct {
		name  string
		form  app.BookingForm
		field string
	}{
		{"missing check-out", app.BookingForm{CheckIn: "2026-01-10", AcceptTerms: true}, "check_out"},
		{"missing check-in", app.BookingForm{CheckOut: "2026-01-10", AcceptTerms: true}, "check_in"},
		{"bad date", app.BookingForm{CheckIn: "10/01/2026", CheckOut: "2026-05-10", AcceptTerms: true}, "check_in"},
		{"terms not accepted", app.BookingForm{CheckIn: "2026-01-10", CheckOut: "2026-05-10"}, "accept_terms"},
		{"check-out before check-in", app.BookingForm{CheckIn: "2026-05-10", CheckOut: "2026-01-10", AcceptTerms: true}, "check_out"},
		{"same day", app.BookingForm{CheckIn: "2026-05-10", CheckOut: "2026-05-10", AcceptTerms: true}, "check_out"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore(catalogFixture()...)
			flow, _ := newFlow(t, store, &fakeBus{})
			var states []app.FlowState
			flow.OnTransition = func(from, to app.FlowState) { states = append(states, to) }

			ctx := app.WithSession(context.Background(), student)
			_, err := flow.Submit(ctx, catalogFixture()[0].Rooms[0], tc.form)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
			assert.NotContains(t, store.Calls(), "CreateBooking")
			assert.Equal(t, []app.FlowState{app.StateValidating, app.StateIdle}, states)
		})
	}
}

func TestSubmit_CreatesBookingThenMarksRoom(t *testing.T) {
	store := newFakeStore(catalogFixture()...)
	bus := &fakeBus{}
	flow, catalog := newFlow(t, store, bus)
	var states []app.FlowState
	flow.OnTransition = func(from, to app.FlowState) { states = append(states, to) }
	var succeeded *domain.Booking
	flow.OnSuccess = func(b domain.Booking) { succeeded = &b }

	r := catalogFixture()[0].Rooms[0]
	b, err := flow.Submit(app.WithSession(context.Background(), student), r, validForm())
	require.NoError(t, err)

	assert.Equal(t, []string{"ListHostels", "CreateBooking", "UpdateRoomStatus"}, store.Calls())
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, r.Price, b.TotalPrice)
	assert.Equal(t, "student-1", b.UserID)
	assert.Equal(t, []app.FlowState{app.StateValidating, app.StateSubmitting, app.StateSucceeded, app.StateIdle}, states)
	require.NotNil(t, succeeded)
	assert.Equal(t, b.ID, succeeded.ID)

	_, got, err := catalog.Room(r.ID)
	require.NoError(t, err)
	assert.False(t, got.Available(), "catalog reflects the booked room")

	require.Len(t, bus.published, 1)
	assert.Equal(t, domain.EventInsert, bus.published[0].Kind)
	assert.Equal(t, "owner-1", bus.published[0].OwnerID)
}

func TestSubmit_RoomUpdateFailureKeepsBooking(t *testing.T) {
	store := newFakeStore(catalogFixture()...)
	store.roomStatusErr = errors.New("timeout")
	flow, catalog := newFlow(t, store, &fakeBus{})

	r := catalogFixture()[0].Rooms[0]
	b, err := flow.Submit(app.WithSession(context.Background(), student), r, validForm())
	require.NoError(t, err, "the booking stands even though the room write failed")
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, []string{"ListHostels", "CreateBooking", "UpdateRoomStatus"}, store.Calls())

	_, got, err := catalog.Room(r.ID)
	require.NoError(t, err)
	assert.True(t, got.Available(), "room stays listed as available")

	stored, err := store.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, stored)
}

func TestSubmit_CreateFailureSkipsRoomUpdate(t *testing.T) {
	store := newFakeStore(catalogFixture()...)
	store.createErr = errors.New("503")
	flow, _ := newFlow(t, store, &fakeBus{})
	var states []app.FlowState
	flow.OnTransition = func(from, to app.FlowState) { states = append(states, to) }

	_, err := flow.Submit(app.WithSession(context.Background(), student), catalogFixture()[0].Rooms[0], validForm())
	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create booking", perr.Op)
	assert.NotContains(t, store.Calls(), "UpdateRoomStatus")
	assert.Equal(t, []app.FlowState{app.StateValidating, app.StateSubmitting, app.StateFailed, app.StateIdle}, states)
}

func TestFlowState_String(t *testing.T) {
	assert.Equal(t, "submitting", app.StateSubmitting.String())
	assert.Equal(t, "unknown", app.FlowState(42).String())
}
