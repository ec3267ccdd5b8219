package sqlstore

import (
	"context"
	"database/sql"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

const selectModel = `
SELECT id, name, description, model_type, framework, file_path, file_size,
       status, metadata, created_at, updated_at
FROM models`

type ModelRepository struct{ s *Store }

func scanModel(row rowScanner) (*models.Model, error) {
	var m models.Model
	if err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.ModelType, &m.Framework, &m.FilePath, &m.FileSize,
		&m.Status, &m.Metadata, timeScan{&m.CreatedAt}, timeScan{&m.UpdatedAt},
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create insert Model record
func (r *ModelRepository) Create(ctx context.Context, m *models.Model) error {
	const q = `
INSERT INTO models
(name, description, model_type, framework, file_path, file_size, status, metadata, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?)`
	now := core.Stamp(r.s.clock.Now())
	d := r.s.dialect
	id, err := d.insert(ctx, r.s.db, q,
		m.Name, m.Description, m.ModelType, m.Framework, m.FilePath, m.FileSize,
		m.Status, m.Metadata, d.timeArg(now), d.timeArg(now),
	)
	if err != nil {
		return err
	}
	m.ID, m.CreatedAt, m.UpdatedAt = core.ID(id), now, now
	return nil
}

func (r *ModelRepository) Get(ctx context.Context, id core.ID) (*models.Model, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.dialect.rebind(selectModel+" WHERE id=?"), id)
	m, err := scanModel(row)
	if err != nil {
		return nil, notFound(err, core.EntityModel, id)
	}
	return m, nil
}

func (r *ModelRepository) List(ctx context.Context, f models.Filter) ([]*models.Model, error) {
	if f.Status != "" {
		return queryList(ctx, r.s, selectModel+" WHERE status=? ORDER BY id", scanModel, f.Status)
	}
	return queryList(ctx, r.s, selectModel+" ORDER BY id", scanModel)
}

// Update reads the row under lock, applies fn and writes every mutable column back.
func (r *ModelRepository) Update(ctx context.Context, id core.ID, fn func(*models.Model) error) (*models.Model, error) {
	const q = `
UPDATE models SET name=?, description=?, model_type=?, framework=?, file_path=?, file_size=?,
       status=?, metadata=?, updated_at=?
WHERE id=?`
	d := r.s.dialect
	var out *models.Model
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		m, err := scanModel(tx.QueryRowContext(ctx, d.rebind(selectModel+" WHERE id=?"+d.Lock), id))
		if err != nil {
			return notFound(err, core.EntityModel, id)
		}
		prevUpdated, created := m.UpdatedAt, m.CreatedAt
		if err := fn(m); err != nil {
			return err
		}
		m.ID, m.CreatedAt = id, created
		m.UpdatedAt = core.NextStamp(prevUpdated, r.s.clock.Now())
		if _, err := tx.ExecContext(ctx, d.rebind(q),
			m.Name, m.Description, m.ModelType, m.Framework, m.FilePath, m.FileSize,
			m.Status, m.Metadata, d.timeArg(m.UpdatedAt), id,
		); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
