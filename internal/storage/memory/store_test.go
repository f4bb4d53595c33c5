package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel_hub/internal/domain"
	"hostel_hub/internal/storage/memory"
)

func TestSeed_IsValid(t *testing.T) {
	hs, err := memory.Seed()
	require.NoError(t, err)
	require.NotEmpty(t, hs)
	for _, h := range hs {
		for _, r := range h.Rooms {
			assert.Equal(t, h.ID, r.HostelID, "room %s", r.ID)
		}
	}
}

func TestParseSeed_RejectsHostelWithoutRooms(t *testing.T) {
	_, err := memory.ParseSeed([]byte("hostels:\n  - id: h-1\n    name: Empty\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one room")
}

func TestStore_BookingLifecycle(t *testing.T) {
	s, err := memory.NewSeeded()
	require.NoError(t, err)
	ctx := context.Background()

	in := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	b, err := s.CreateBooking(ctx, domain.BookingDraft{
		RoomID: "r-olympia-1", UserID: "student-1", CheckIn: in, CheckOut: in.AddDate(0, 4, 0),
		TotalPrice: 450000, Status: domain.BookingPending,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)

	before, err := s.GetHostel(ctx, "h-olympia")
	require.NoError(t, err)

	room, err := s.UpdateRoomStatus(ctx, "r-olympia-1", domain.RoomBooked)
	require.NoError(t, err)
	assert.False(t, room.Available())
	assert.True(t, before.Rooms[0].Available(), "earlier reads must not observe the write")

	owned, err := s.ListBookings(ctx, domain.BookingQuery{OwnerID: "owner-nakato"})
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, b.ID, owned[0].ID)

	none, err := s.ListBookings(ctx, domain.BookingQuery{OwnerID: "owner-okello"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.UpdateRoomStatus(ctx, "missing", domain.RoomBooked)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
