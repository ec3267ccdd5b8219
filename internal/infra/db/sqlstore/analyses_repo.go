package sqlstore

import (
	"context"
	"database/sql"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

const selectAnalysis = `
SELECT id, name, model_id, dataset_id, analysis_type, parameters, results,
       status, created_at, updated_at
FROM analyses`

type AnalysisRepository struct{ s *Store }

func scanAnalysis(row rowScanner) (*analyses.Analysis, error) {
	var a analyses.Analysis
	if err := row.Scan(
		&a.ID, &a.Name, &a.ModelID, &a.DatasetID, &a.AnalysisType, &a.Parameters, &a.Results,
		&a.Status, timeScan{&a.CreatedAt}, timeScan{&a.UpdatedAt},
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnalysisRepository) Create(ctx context.Context, a *analyses.Analysis) error {
	const q = `
INSERT INTO analyses
(name, model_id, dataset_id, analysis_type, parameters, results, status, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?)`
	now := core.Stamp(r.s.clock.Now())
	d := r.s.dialect
	id, err := d.insert(ctx, r.s.db, q,
		a.Name, a.ModelID, a.DatasetID, a.AnalysisType, a.Parameters, a.Results,
		a.Status, d.timeArg(now), d.timeArg(now),
	)
	if err != nil {
		return err
	}
	a.ID, a.CreatedAt, a.UpdatedAt = core.ID(id), now, now
	return nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id core.ID) (*analyses.Analysis, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.dialect.rebind(selectAnalysis+" WHERE id=?"), id)
	a, err := scanAnalysis(row)
	if err != nil {
		return nil, notFound(err, core.EntityAnalysis, id)
	}
	return a, nil
}

func (r *AnalysisRepository) List(ctx context.Context, f analyses.Filter) ([]*analyses.Analysis, error) {
	if f.Status != "" {
		return queryList(ctx, r.s, selectAnalysis+" WHERE status=? ORDER BY id", scanAnalysis, f.Status)
	}
	return queryList(ctx, r.s, selectAnalysis+" ORDER BY id", scanAnalysis)
}

func (r *AnalysisRepository) ListByModel(ctx context.Context, modelID core.ID) ([]*analyses.Analysis, error) {
	return queryList(ctx, r.s, selectAnalysis+" WHERE model_id=? ORDER BY id", scanAnalysis, modelID)
}

func (r *AnalysisRepository) ListByDataset(ctx context.Context, datasetID core.ID) ([]*analyses.Analysis, error) {
	return queryList(ctx, r.s, selectAnalysis+" WHERE dataset_id=? ORDER BY id", scanAnalysis, datasetID)
}

func (r *AnalysisRepository) Update(ctx context.Context, id core.ID, fn func(*analyses.Analysis) error) (*analyses.Analysis, error) {
	const q = `
UPDATE analyses SET name=?, model_id=?, dataset_id=?, analysis_type=?, parameters=?, results=?,
       status=?, updated_at=?
WHERE id=?`
	d := r.s.dialect
	var out *analyses.Analysis
	err := r.s.inTx(ctx, func(tx *sql.Tx) error {
		a, err := scanAnalysis(tx.QueryRowContext(ctx, d.rebind(selectAnalysis+" WHERE id=?"+d.Lock), id))
		if err != nil {
			return notFound(err, core.EntityAnalysis, id)
		}
		prevUpdated, created := a.UpdatedAt, a.CreatedAt
		if err := fn(a); err != nil {
			return err
		}
		a.ID, a.CreatedAt = id, created
		a.UpdatedAt = core.NextStamp(prevUpdated, r.s.clock.Now())
		if _, err := tx.ExecContext(ctx, d.rebind(q),
			a.Name, a.ModelID, a.DatasetID, a.AnalysisType, a.Parameters, a.Results,
			a.Status, d.timeArg(a.UpdatedAt), id,
		); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
