// Package migration applies the warehouse schema with golang-migrate from an
// embedded migrations directory.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/velotrend/velotrend/internal/support/logger"
)

// MigrationsTable tracks applied schema versions in the warehouse.
const MigrationsTable = "velotrend_schema_migrations"

// Up applies all pending migrations found under path in migrationFS. A
// warehouse already at the latest version is not an error.
func Up(sqlDB *sql.DB, dbType string, migrationFS fs.FS, path string) error {
	sourceDriver, err := iofs.New(migrationFS, path)
	if err != nil {
		return fmt.Errorf("failed to create migration source for path '%s': %w", path, err)
	}

	dbDriver, err := databaseDriver(sqlDB, dbType)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbType, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed (db type %s): %w", dbType, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Infof("Migration: warehouse schema at version %d (dirty=%v).", version, dirty)
	return nil
}

func databaseDriver(sqlDB *sql.DB, dbType string) (database.Driver, error) {
	switch dbType {
	case "postgres", "redshift":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: MigrationsTable})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: MigrationsTable})
	case "sqlite":
		return sqlite3.WithInstance(sqlDB, &sqlite3.Config{MigrationsTable: MigrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", dbType)
	}
}
