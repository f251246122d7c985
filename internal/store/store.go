package store

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/missiontime/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB bundles the write-side gorm handle and the read-side sqlx handle.
// Both share one connection pool.
type DB struct {
	Gorm   *gorm.DB
	SQL    *sqlx.DB
	Driver string
}

// Connect opens the configured database without checking its schema.
func Connect(cfg internal.DatabaseConfig, lg gormlogger.Interface) (*DB, error) {
	if lg == nil {
		lg = gormlogger.Default.LogMode(gormlogger.Warn)
	}
	gormCfg := &gorm.Config{Logger: lg}

	switch cfg.Driver {
	case internal.DriverPostgres:
		return connectPostgres(cfg, gormCfg)
	case internal.DriverSQLite, "":
		return connectSQLite(cfg, gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func connectSQLite(cfg internal.DatabaseConfig, gormCfg *gorm.Config) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(sqliteDSN(cfg.Source)), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// a single connection keeps writes serialized and in-memory databases alive
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{
		Gorm:   gdb,
		SQL:    sqlx.NewDb(sqlDB, "sqlite3"),
		Driver: internal.DriverSQLite,
	}, nil
}

func connectPostgres(cfg internal.DatabaseConfig, gormCfg *gorm.Config) (*DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), gormCfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to open gorm on postgres: %w", err)
	}

	return &DB{
		Gorm:   gdb,
		SQL:    dbConn,
		Driver: internal.DriverPostgres,
	}, nil
}

// Open connects and validates the schema. Any SchemaError is returned before the
// database is handed to callers.
func Open(cfg internal.DatabaseConfig, lg gormlogger.Interface) (*DB, error) {
	if cfg.Driver == internal.DriverSQLite || cfg.Driver == "" {
		if err := CheckFileHeader(cfg.Source); err != nil {
			return nil, err
		}
	}

	db, err := Connect(cfg, lg)
	if err != nil {
		return nil, err
	}

	if err := CheckSchema(db.Gorm); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.SQL.Close()
}

func sqliteDSN(source string) string {
	if strings.Contains(source, "_foreign_keys") {
		return source
	}
	if strings.Contains(source, "?") {
		return source + "&_foreign_keys=on"
	}
	return source + "?_foreign_keys=on"
}

func isMemorySource(source string) bool {
	return strings.HasPrefix(source, ":memory:") || strings.HasPrefix(source, "file::memory:")
}
