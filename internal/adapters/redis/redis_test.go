package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "hostel_hub/internal/adapters/redis"
	"hostel_hub/internal/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redisad.Cache, *redisad.Sessions, *redisad.Bus) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return mr, redisad.NewCache(c), redisad.NewSessions(c, time.Hour), redisad.NewBus(c)
}

func TestCache_MissSetHitDel(t *testing.T) {
	_, cache, _, _ := newClient(t)
	ctx := context.Background()

	var got []domain.Hostel
	if ok, err := cache.Get(ctx, "catalog:hostels", &got); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := []domain.Hostel{{ID: "h-1", Name: "Olympia"}}
	if err := cache.Set(ctx, "catalog:hostels", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err := cache.Get(ctx, "catalog:hostels", &got)
	if !ok || err != nil {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Name != "Olympia" {
		t.Fatalf("unexpected cached value: %+v", got)
	}

	if err := cache.Del(ctx, "catalog:hostels"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := cache.Get(ctx, "catalog:hostels", &got); ok {
		t.Fatalf("expected miss after del")
	}
}

func TestCache_Expires(t *testing.T) {
	mr, cache, _, _ := newClient(t)
	ctx := context.Background()
	_ = cache.Set(ctx, "k", "v", 10)
	mr.FastForward(11 * time.Second)

	var s string
	if ok, _ := cache.Get(ctx, "k", &s); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestSessions_SaveLoadDelete(t *testing.T) {
	_, _, sessions, _ := newClient(t)
	ctx := context.Background()

	s := domain.Session{ID: "s-1", UserID: "u-1", Name: "Amina", Role: domain.RoleOwner}
	if err := sessions.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := sessions.Load(ctx, "s-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != s {
		t.Fatalf("got %+v, want %+v", got, s)
	}

	if err := sessions.Delete(ctx, "s-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := sessions.Load(ctx, "s-1"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBus_PublishReachesOwnerSubscriber(t *testing.T) {
	_, _, _, bus := newClient(t)
	ctx := context.Background()

	got := make(chan domain.BookingEvent, 1)
	stop, err := bus.Subscribe(ctx, "owner-1", func(e domain.BookingEvent) { got <- e })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer func() { _ = stop() }()

	// other owners' channels are not delivered
	_ = bus.Publish(ctx, domain.BookingEvent{Kind: domain.EventInsert, OwnerID: "owner-2", Booking: domain.Booking{ID: "b-0"}})
	if err := bus.Publish(ctx, domain.BookingEvent{Kind: domain.EventInsert, OwnerID: "owner-1", Booking: domain.Booking{ID: "b-1"}}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case e := <-got:
		if e.Booking.ID != "b-1" || e.Kind != domain.EventInsert {
			t.Fatalf("unexpected event: %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}
