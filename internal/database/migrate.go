package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies all pending goose migrations from the embedded schema directory.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	// Convert pgx pool to database/sql interface that Goose expects
	var db *sql.DB = stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(schemaFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "schema"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
