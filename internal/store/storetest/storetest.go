// Package storetest provides migrated in-memory databases for tests.
package storetest

import (
	"context"

	"github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/store"
	"gorm.io/gorm/logger"
)

// NewMemoryDB returns an empty, fully migrated in-memory SQLite database.
func NewMemoryDB() (*store.DB, error) {
	db, err := store.Connect(internal.DatabaseConfig{
		Driver: internal.DriverSQLite,
		Source: ":memory:",
	}, logger.Default.LogMode(logger.Silent))
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
