package store

import (
	"context"
	"embed"
	"fmt"

	"github.com/frahmantamala/missiontime/internal"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

const migrationsTable = "schema_migrations"

// Migrate brings an empty database up to SchemaVersion.
func Migrate(ctx context.Context, db *DB) error {
	dir, err := prepareGoose(db.Driver)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.SQL.DB, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Rollback drops the schema created by Migrate.
func Rollback(ctx context.Context, db *DB) error {
	dir, err := prepareGoose(db.Driver)
	if err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db.SQL.DB, dir); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

func prepareGoose(driver string) (string, error) {
	dialect, dir := "sqlite3", "migrations/sqlite"
	if driver == internal.DriverPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationsTable)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("goose: set dialect: %w", err)
	}
	return dir, nil
}
