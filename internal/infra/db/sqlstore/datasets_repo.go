package sqlstore

import (
	"context"
	"database/sql"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
)

const selectDataset = `
SELECT id, name, description, file_type, file_path, file_size, columns, row_count,
       status, metadata, created_at, updated_at
FROM datasets`

type DatasetRepository struct{ s *Store }

func scanDataset(row rowScanner) (*datasets.Dataset, error) {
	var ds datasets.Dataset
	if err := row.Scan(
		&ds.ID, &ds.Name, &ds.Description, &ds.FileType, &ds.FilePath, &ds.FileSize, &ds.Columns, &ds.RowCount,
		&ds.Status, &ds.Metadata, timeScan{&ds.CreatedAt}, timeScan{&ds.UpdatedAt},
	); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (r *DatasetRepository) Create(ctx context.Context, ds *datasets.Dataset) error {
	const q = `
INSERT INTO datasets
(name, description, file_type, file_path, file_size, columns, row_count, status, metadata, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	if ds.Columns == nil {
		ds.Columns = datasets.Columns{}
	}
	now := core.Stamp(r.s.clock.Now())
	d := r.s.dialect
	id, err := d.insert(ctx, r.s.db, q,
		ds.Name, ds.Description, ds.FileType, ds.FilePath, ds.FileSize, ds.Columns, ds.RowCount,
		ds.Status, ds.Metadata, d.timeArg(now), d.timeArg(now),
	)
	if err != nil {
		return err
	}
	ds.ID, ds.CreatedAt, ds.UpdatedAt = core.ID(id), now, now
	return nil
}

func (r *DatasetRepository) Get(ctx context.Context, id core.ID) (*datasets.Dataset, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.dialect.rebind(selectDataset+" WHERE id=?"), id)
	ds, err := scanDataset(row)
	if err != nil {
		return nil, notFound(err, core.EntityDataset, id)
	}
	return ds, nil
}

func (r *DatasetRepository) List(ctx context.Context, f datasets.Filter) ([]*datasets.Dataset, error) {
	if f.Status != "" {
		return queryList(ctx, r.s, selectDataset+" WHERE status=? ORDER BY id", scanDataset, f.Status)
	}
	return queryList(ctx, r.s, selectDataset+" ORDER BY id", scanDataset)
}

func (r *DatasetRepository) Update(ctx context.Context, id core.ID, fn func(*datasets.Dataset) error) (*datasets.Dataset, error) {
	const q = `
UPDATE datasets SET name=?, description=?, file_type=?, file_path=?, file_size=?, columns=?, row_count=?,
       status=?, metadata=?, updated_at=?
WHERE id=?`
	d := r.s.dialect
	var out *datasets.Dataset
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		ds, err := scanDataset(tx.QueryRowContext(ctx, d.rebind(selectDataset+" WHERE id=?"+d.Lock), id))
		if err != nil {
			return notFound(err, core.EntityDataset, id)
		}
		prevUpdated, created := ds.UpdatedAt, ds.CreatedAt
		if err := fn(ds); err != nil {
			return err
		}
		ds.ID, ds.CreatedAt = id, created
		ds.UpdatedAt = core.NextStamp(prevUpdated, r.s.clock.Now())
		if ds.Columns == nil {
			ds.Columns = datasets.Columns{}
		}
		if _, err := tx.ExecContext(ctx, d.rebind(q),
			ds.Name, ds.Description, ds.FileType, ds.FilePath, ds.FileSize, ds.Columns, ds.RowCount,
			ds.Status, ds.Metadata, d.timeArg(ds.UpdatedAt), id,
		); err != nil {
			return err
		}
		out = ds
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
