package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"hostel_hub/internal/app"
	"hostel_hub/internal/domain"
	mysqlrepo "hostel_hub/internal/storage/mysql"
)

var (
	syncFrom string
	syncIDs  []string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy hostels from a source into MySQL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), syncFrom, syncIDs)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled demo catalog into MySQL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), "memory", nil)
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncFrom, "from", "hosted", "source to read from: hosted or memory")
	syncCmd.Flags().StringSliceVar(&syncIDs, "id", nil, "sync only these hostel ids")
}

func runSync(ctx context.Context, from string, ids []string) error {
	src, err := source(from)
	if err != nil {
		return err
	}
	db, err := openMySQL(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	c, closeCache := cache()
	defer closeCache()

	svc := app.NewSyncService(src, mysqlrepo.New(db), c)
	log.Info().Str("from", from).Int("workers", cfg.SyncWorkers).Msg("sync starting")

	var ok, failed int64
	if len(ids) > 0 {
		ok, failed = fanOut(ctx, cfg.SyncWorkers, ids, svc.SyncHostel)
	} else {
		hs, err := svc.Hostels(ctx)
		if err != nil {
			return err
		}
		byID := make(map[string]domain.Hostel, len(hs))
		keys := make([]string, 0, len(hs))
		for _, h := range hs {
			byID[h.ID] = h
			keys = append(keys, h.ID)
		}
		ok, failed = fanOut(ctx, cfg.SyncWorkers, keys, func(ctx context.Context, id string) error {
			return svc.Store(ctx, byID[id])
		})
	}
	log.Info().Int64("ok", ok).Int64("failed", failed).Msg("sync completed")
	return syncResult(ok, failed)
}

// syncResult turns the counts into the command's exit status.
func syncResult(ok, failed int64) error {
	if failed > 0 {
		return fmt.Errorf("%d of %d hostels failed to sync", failed, ok+failed)
	}
	return nil
}

// fanOut runs fn for every id with at most workers in flight. Failures are
// logged and counted; they do not stop the run.
func fanOut(ctx context.Context, workers int, ids []string, fn func(context.Context, string) error) (ok, failed int64) {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var nOK, nFailed atomic.Int64

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("sync interrupted")
			break
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer sem.Release(1)
			if err := fn(ctx, id); err != nil {
				nFailed.Add(1)
				log.Warn().Str("hostel_id", id).Err(err).Msg("sync failed")
				return
			}
			nOK.Add(1)
			log.Debug().Str("hostel_id", id).Msg("sync ok")
		}(id)
	}
	wg.Wait()
	return nOK.Load(), nFailed.Load()
}
