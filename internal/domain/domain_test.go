package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel_hub/internal/domain"
)

func TestRole_TextRoundTrip(t *testing.T) {
	for _, in := range []string{"student", "Hostel_Owner", " broker "} {
		r, err := domain.ParseRole(in)
		require.NoError(t, err, in)
		b, err := json.Marshal(domain.Session{ID: "s", UserID: "u", Role: r})
		require.NoError(t, err)
		var back domain.Session
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, r, back.Role)
	}

	_, err := domain.ParseRole("admin")
	assert.Error(t, err)
	_, err = json.Marshal(domain.Session{ID: "s"})
	assert.Error(t, err, "the zero role is not a valid session role")
}

func TestValidationError_SortedMessage(t *testing.T) {
	verr := &domain.ValidationError{}
	assert.True(t, verr.Empty())
	verr.Add("check_out", "date is required")
	verr.Add("accept_terms", "must accept")
	assert.Equal(t, "validation error: accept_terms: must accept; check_out: date is required", verr.Error())
}

func TestPersistenceError_Unwraps(t *testing.T) {
	err := error(&domain.PersistenceError{Op: "get hostel", Err: domain.ErrNotFound})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "persistence: get hostel: not found", err.Error())
}

func TestHostel_ValidateAndMinPrice(t *testing.T) {
	h := domain.Hostel{ID: "h1", Rating: 4, Rooms: []domain.Room{
		{ID: "r1", Price: 450000, Capacity: 1, Status: domain.RoomAvailable},
		{ID: "r2", Price: 350000, Capacity: 2, Status: domain.RoomBooked},
	}}
	require.NoError(t, h.Validate())
	min, ok := h.MinPrice()
	assert.True(t, ok)
	assert.Equal(t, int64(350000), min)

	h.Rooms[1].Status = "occupied"
	assert.Error(t, h.Validate())

	_, ok = domain.Hostel{ID: "h2"}.MinPrice()
	assert.False(t, ok)
}

func TestPriceRange_InclusiveBounds(t *testing.T) {
	lo, hi := int64(300000), int64(400000)
	p := domain.PriceRange{Min: &lo, Max: &hi}
	assert.True(t, p.Contains(300000))
	assert.True(t, p.Contains(400000))
	assert.False(t, p.Contains(400001))
	assert.True(t, domain.PriceRange{}.Contains(-1))
}
