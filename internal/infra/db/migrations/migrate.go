// Package migrations embeds the schema for every supported SQL engine and
// applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed mysql/*.sql postgres/*.sql sqlite/*.sql
var files embed.FS

// Up applies pending migrations for dialect ("mysql", "postgres" or "sqlite").
// The migrate instance is not closed because that would close db as well.
func Up(db *sql.DB, dialect string) error {
	src, err := iofs.New(files, dialect)
	if err != nil {
		return fmt.Errorf("migration source %s: %w", dialect, err)
	}

	var drv database.Driver
	switch dialect {
	case "mysql":
		drv, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case "postgres":
		drv, err = migratepg.WithInstance(db, &migratepg.Config{})
	case "sqlite":
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("migration driver %s: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, drv)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
