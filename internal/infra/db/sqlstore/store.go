package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
)

// Store hands out repositories sharing one pool.
type Store struct {
	db      *sql.DB
	dialect Dialect
	clock   core.Clock
}

func New(db *sql.DB, dialect Dialect, clock core.Clock) *Store {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Store{db: db, dialect: dialect, clock: clock}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Models() *ModelRepository { return &ModelRepository{s: s} }

func (s *Store) Datasets() *DatasetRepository { return &DatasetRepository{s: s} }

func (s *Store) Analyses() *AnalysisRepository { return &AnalysisRepository{s: s} }

func (s *Store) Visualizations() *VisualizationRepository { return &VisualizationRepository{s: s} }

// Check pings the database for health reporting.
func (s *Store) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error { return s.db.Close() }

var (
	_ models.Repository         = (*ModelRepository)(nil)
	_ datasets.Repository       = (*DatasetRepository)(nil)
	_ analyses.Repository       = (*AnalysisRepository)(nil)
	_ visualizations.Repository = (*VisualizationRepository)(nil)
)

// inTx runs fn in a transaction and commits when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// queryList runs q and scans each row with scan.
func queryList[T any](ctx context.Context, s *Store, q string, scan func(rowScanner) (T, error), args ...any) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func notFound(err error, entity core.Entity, id core.ID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &core.NotFoundError{Entity: entity, ID: id}
	}
	return err
}
