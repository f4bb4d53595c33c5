package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "hostel_hub/internal/adapters/redis"
	"hostel_hub/internal/app"
	"hostel_hub/internal/domain"
)

func TestCatalog_CacheMissThenHit(t *testing.T) {
	store := newFakeStore(catalogFixture()...)
	cache := &fakeCache{}
	ctx := context.Background()

	require.NoError(t, app.NewCatalog(store, cache, time.Minute).Load(ctx))
	require.NoError(t, app.NewCatalog(store, cache, time.Minute).Load(ctx))
	assert.Equal(t, []string{"ListHostels"}, store.Calls(), "second load is served from cache")
}

func TestCatalog_ApplyRoomIsCopyOnWrite(t *testing.T) {
	cache := &fakeCache{}
	c := app.NewCatalog(newFakeStore(catalogFixture()...), cache, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	before := c.Snapshot()

	booked := before[0].Rooms[0]
	booked.Status = domain.RoomBooked
	c.ApplyRoom(ctx, booked)

	assert.True(t, before[0].Rooms[0].Available(), "earlier snapshot is untouched")
	_, r, err := c.Room(booked.ID)
	require.NoError(t, err)
	assert.False(t, r.Available())
	assert.Equal(t, 1, cache.dels)

	c.ApplyRoom(ctx, domain.Room{ID: "unknown"})
	assert.Equal(t, 1, cache.dels, "unknown rooms leave the cache alone")
}

func TestCatalog_HostelFallsBackToStore(t *testing.T) {
	store := newFakeStore(catalogFixture()...)
	c := app.NewCatalog(store, nil, time.Minute)
	ctx := context.Background()

	h, err := c.Hostel(ctx, "h-nana")
	require.NoError(t, err)
	assert.Equal(t, "Nana Hostel", h.Name)

	_, err = c.Hostel(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = c.Room("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_CorruptCacheEntryFallsBackToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redisad.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	require.NoError(t, mr.Set("catalog:hostels", "{not json"))

	store := newFakeStore(catalogFixture()...)
	c := app.NewCatalog(store, redisad.NewCache(rc), time.Minute)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Err())

	assert.Equal(t, []string{"ListHostels"}, store.Calls())
	assert.Len(t, c.Snapshot(), 4)
	assert.Len(t, app.NewSearchController(c).State().Results, 4)

	// the bad entry was replaced by the fresh listing
	again := app.NewCatalog(store, redisad.NewCache(rc), time.Minute)
	require.NoError(t, again.Load(context.Background()))
	assert.Len(t, again.Snapshot(), 4)
	assert.Equal(t, []string{"ListHostels"}, store.Calls(), "second load is a cache hit")
}

func TestCatalog_OnChangeRunsAfterLoadAndMerge(t *testing.T) {
	c := app.NewCatalog(newFakeStore(catalogFixture()...), nil, time.Minute)
	changes := 0
	c.OnChange(func() { changes++ })
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	assert.Equal(t, 1, changes)

	booked := c.Snapshot()[0].Rooms[0]
	booked.Status = domain.RoomBooked
	c.ApplyRoom(ctx, booked)
	assert.Equal(t, 2, changes)

	c.ApplyRoom(ctx, domain.Room{ID: "unknown"})
	assert.Equal(t, 2, changes, "unknown rooms change nothing")
}
