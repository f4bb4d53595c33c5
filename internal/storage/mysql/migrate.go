package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"hostel_hub/internal/storage/mysql/migrations"
)

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectMySQL, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		log.Info().Str("migration", r.Source.Path).Dur("took", r.Duration).Msg("migration applied")
	}
	return nil
}
