// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/and161185/lingua-auth/migrations"
)

// Up runs all pending migrations from the embedded filesystem and logs each
// applied version. The sex reference table is seeded by the first migration.
func Up(ctx context.Context, dsn string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		log.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.String("path", r.Source.Path),
			zap.Duration("dur", r.Duration),
		)
	}
	if len(results) == 0 {
		log.Info("schema up to date")
	}
	return nil
}
