package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/migrations"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/sqlstore"
)

// Connect opens a pool and pings it. The DSN must carry parseTime=true;
// multiStatements=true is needed for migrations.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Open connects, migrates and returns the catalog store.
func Open(ctx context.Context, dsn string, clock core.Clock) (*sqlstore.Store, error) {
	db, err := Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql connect: %w", err)
	}
	if err := migrations.Up(db, sqlstore.MySQL.Name); err != nil {
		db.Close()
		return nil, err
	}
	return sqlstore.New(db, sqlstore.MySQL, clock), nil
}
