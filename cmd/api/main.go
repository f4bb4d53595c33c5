package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hostel_hub/internal/adapters/hostedb"
	server "hostel_hub/internal/adapters/http_server"
	"hostel_hub/internal/adapters/observability"
	redisad "hostel_hub/internal/adapters/redis"
	"hostel_hub/internal/app"
	"hostel_hub/internal/domain"
	"hostel_hub/internal/shared"
	"hostel_hub/internal/storage/memory"
	mysqlrepo "hostel_hub/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("open store failed")
	}
	defer closeStore()

	var (
		cache    domain.Cache
		sessions domain.SessionStore
		bus      domain.EventBus
	)
	if cfg.RedisAddr != "" {
		rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		cache, sessions, bus = redisad.NewCache(rc), redisad.NewSessions(rc, cfg.SessionTTL), redisad.NewBus(rc)
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
	} else {
		sessions, bus = memory.NewSessions(), memory.NewBus()
		log.Warn().Msg("REDIS_ADDR is empty; sessions and events stay in process")
	}

	catalog := app.NewCatalog(store, cache, cfg.CacheTTL)
	if err := catalog.Load(ctx); err != nil {
		// served as an empty catalog with the load error surfaced to searches
		log.Error().Err(err).Msg("initial catalog load failed")
	}
	controllers := app.NewControllers(catalog)
	bookings := app.NewBookingService(store, catalog, bus)
	feeds := app.NewFeeds(store, bus)
	defer feeds.Close()

	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:     catalog,
		Controllers: controllers,
		Flow:        app.NewBookingFlow(store, catalog, bus),
		Bookings:    bookings,
		Dashboards:  app.NewDashboards(catalog, bookings, feeds),
		Sessions:    sessions,
		LoginURL:    cfg.LoginURL,
		Currency:    cfg.Currency,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.StoreBackend).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// refresh the catalog whenever the cache entry would have expired
		if cfg.CacheTTL <= 0 {
			return nil
		}
		t := time.NewTicker(cfg.CacheTTL)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				// controllers refresh through the catalog's change hook
				_ = catalog.Load(gctx)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg shared.Config) (domain.Persistence, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		s, err := memory.NewSeeded()
		return s, func() {}, err
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db.Ping: %w", err)
		}
		log.Info().Msg("database connection ok")
		if cfg.MigrateOnStart {
			if err := mysqlrepo.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil
	case "hosted":
		c, err := hostedb.New(cfg.HostedURL, cfg.HostedKey, cfg.HostedRPS)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}
