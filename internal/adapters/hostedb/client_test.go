package hostedb_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hostel_hub/internal/adapters/hostedb"
	"hostel_hub/internal/domain"
)

const olympiaRow = `[{
  "id": "h-olympia", "name": "Olympia", "owner_id": "o-1",
  "university": "Makerere University", "distance_km": "0,8", "rating": 4.5,
  "amenities": ["WiFi", "Security"],
  "rooms": [
    {"id": "r-1", "type": "Single", "price": 450000, "status": "available", "capacity": 1},
    {"id": "r-2", "room_type": "Double", "price": 350000, "available": false, "capacity": 2}
  ]
}]`

func TestClient_ListHostels_RetriesThenMaps(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "test-key" || r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_, _ = w.Write([]byte(olympiaRow))
		}
	}))
	defer ts.Close()

	cl, err := hostedb.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hs, err := cl.ListHostels(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
	if len(hs) != 1 {
		t.Fatalf("expected 1 hostel, got %d", len(hs))
	}
	h := hs[0]
	if h.University != "Makerere University" || h.Location.DistanceKm != 0.8 || len(h.Rooms) != 2 {
		t.Fatalf("unexpected hostel: %+v", h)
	}
	if h.Rooms[0].HostelID != "h-olympia" || !h.Rooms[0].Available() {
		t.Fatalf("unexpected first room: %+v", h.Rooms[0])
	}
	if h.Rooms[1].Type != "Double" || h.Rooms[1].Available() {
		t.Fatalf("unexpected second room: %+v", h.Rooms[1])
	}
}

func TestClient_GetHostel_EmptyIsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	cl, _ := hostedb.New(ts.URL, "test-key", 100)
	_, err := cl.GetHostel(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_CreateBooking_SingleAttempt(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	cl, _ := hostedb.New(ts.URL, "test-key", 100)
	_, err := cl.CreateBooking(context.Background(), domain.BookingDraft{RoomID: "r-1", UserID: "u-1"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("writes must not be retried, got %d calls", got)
	}
}

func TestClient_CreateBooking_SendsDraft(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bookings" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("missing Prefer header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"b-1","room_id":"r-1","user_id":"u-1","status":"pending",
			"check_in":"2026-01-10","check_out":"2026-05-01","total_price":450000,
			"created_at":"2026-01-02T10:00:00Z"}]`))
	}))
	defer ts.Close()

	cl, _ := hostedb.New(ts.URL, "test-key", 100)
	in := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	b, err := cl.CreateBooking(context.Background(), domain.BookingDraft{
		RoomID: "r-1", UserID: "u-1", CheckIn: in, CheckOut: in.AddDate(0, 3, 22),
		TotalPrice: 450000, Status: domain.BookingPending,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["check_in"] != "2026-01-10" || got["status"] != "pending" {
		t.Fatalf("unexpected body: %+v", got)
	}
	if b.ID != "b-1" || b.Status != domain.BookingPending || !b.CheckIn.Equal(in) {
		t.Fatalf("unexpected booking: %+v", b)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := hostedb.New("http://example", "", 5); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
