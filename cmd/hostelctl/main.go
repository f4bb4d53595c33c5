// Command hostelctl runs maintenance tasks against the hostel database:
// schema migrations, catalog sync and ad-hoc searches.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hostel_hub/internal/adapters/hostedb"
	"hostel_hub/internal/adapters/observability"
	redisad "hostel_hub/internal/adapters/redis"
	"hostel_hub/internal/domain"
	"hostel_hub/internal/shared"
	"hostel_hub/internal/storage/memory"
)

var cfg shared.Config

var rootCmd = &cobra.Command{
	Use:           "hostelctl",
	Short:         "Maintenance commands for the hostel catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = shared.Load()
		log.Logger = observability.NewLogger(cfg.AppEnv)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, syncCmd, seedCmd, searchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openMySQL(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	log.Info().Msg("db ping ok")
	return db, nil
}

// source opens a read side by name; mysql is not a valid source.
func source(name string) (domain.Persistence, error) {
	switch name {
	case "memory":
		return memory.NewSeeded()
	case "hosted":
		return hostedb.New(cfg.HostedURL, cfg.HostedKey, cfg.HostedRPS)
	}
	return nil, fmt.Errorf("unknown source %q (want memory or hosted)", name)
}

// cache returns the shared catalog cache when redis is configured, with a
// func that releases its client.
func cache() (domain.Cache, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	return redisad.NewCache(rc), func() { _ = rc.Close() }
}
