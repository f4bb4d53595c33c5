package main

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOut_CountsAndBoundsConcurrency(t *testing.T) {
	var (
		mu       sync.Mutex
		seen     []string
		inFlight int
		peak     int
	)
	ok, failed := fanOut(context.Background(), 2, []string{"a", "b", "c", "d"}, func(ctx context.Context, id string) error {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		seen = append(seen, id)
		mu.Unlock()
		defer func() { mu.Lock(); inFlight--; mu.Unlock() }()
		if id == "c" {
			return errors.New("boom")
		}
		return nil
	})
	assert.Equal(t, int64(3), ok)
	assert.Equal(t, int64(1), failed)
	assert.LessOrEqual(t, peak, 2)
	sort.Strings(seen)
	assert.Equal(t, []string{"a", "b", "c", "d"}, seen)
}

func TestFanOut_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, failed := fanOut(ctx, 1, []string{"a", "b"}, func(context.Context, string) error { return nil })
	assert.Zero(t, ok+failed)
}

func TestSearchCommand_MemoryCatalog(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"search", "--from", "memory", "--university", "Makerere University", "--max_price", "400000"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "h-olympia"))
	assert.Contains(t, lines[1], "UGX 350,000")
	assert.True(t, strings.HasPrefix(lines[2], "h-nana"))
}

func TestSyncResult_FailsWhenAnyHostelFailed(t *testing.T) {
	assert.NoError(t, syncResult(4, 0))
	err := syncResult(3, 1)
	require.Error(t, err)
	assert.Equal(t, "1 of 4 hostels failed to sync", err.Error())
}

func TestCache_CloserReleasesClient(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cfg.RedisAddr = ""
	c, closeFn := cache()
	assert.Nil(t, c)
	closeFn()

	cfg.RedisAddr = miniredis.RunT(t).Addr()
	c, closeFn = cache()
	require.NotNil(t, c)
	var v []string
	_, err := c.Get(context.Background(), "k", &v)
	require.NoError(t, err)

	closeFn()
	_, err = c.Get(context.Background(), "k", &v)
	assert.Error(t, err, "client is closed")
}
