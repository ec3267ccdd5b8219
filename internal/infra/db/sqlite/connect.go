package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/migrations"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/sqlstore"
)

// DSN builds a modernc DSN for a database file with a busy timeout and
// foreign keys on.
func DSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Connect opens path with a single pooled connection. A path that already
// starts with "file:" is used as the DSN verbatim.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		dsn = DSN(path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Open connects, migrates and returns the catalog store.
func Open(ctx context.Context, path string, clock core.Clock) (*sqlstore.Store, error) {
	db, err := Connect(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if err := migrations.Up(db, sqlstore.SQLite.Name); err != nil {
		db.Close()
		return nil, err
	}
	return sqlstore.New(db, sqlstore.SQLite, clock), nil
}
