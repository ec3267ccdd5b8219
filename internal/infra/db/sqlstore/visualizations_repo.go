package sqlstore

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
)

const selectVisualization = `
SELECT id, analysis_id, chart_type, config, data, created_at
FROM visualizations`

type VisualizationRepository struct{ s *Store }

func scanVisualization(row rowScanner) (*visualizations.Visualization, error) {
	var v visualizations.Visualization
	if err := row.Scan(&v.ID, &v.AnalysisID, &v.ChartType, &v.Config, &v.Data, timeScan{&v.CreatedAt}); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VisualizationRepository) Create(ctx context.Context, v *visualizations.Visualization) error {
	const q = `
INSERT INTO visualizations (analysis_id, chart_type, config, data, created_at)
VALUES (?,?,?,?,?)`
	now := core.Stamp(r.s.clock.Now())
	d := r.s.dialect
	id, err := d.insert(ctx, r.s.db, q, v.AnalysisID, v.ChartType, v.Config, v.Data, d.timeArg(now))
	if err != nil {
		return err
	}
	v.ID, v.CreatedAt = core.ID(id), now
	return nil
}

func (r *VisualizationRepository) Get(ctx context.Context, id core.ID) (*visualizations.Visualization, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.dialect.rebind(selectVisualization+" WHERE id=?"), id)
	v, err := scanVisualization(row)
	if err != nil {
		return nil, notFound(err, core.EntityVisualization, id)
	}
	return v, nil
}

func (r *VisualizationRepository) List(ctx context.Context) ([]*visualizations.Visualization, error) {
	return queryList(ctx, r.s, selectVisualization+" ORDER BY id", scanVisualization)
}

func (r *VisualizationRepository) ListByAnalysis(ctx context.Context, analysisID core.ID) ([]*visualizations.Visualization, error) {
	return queryList(ctx, r.s, selectVisualization+" WHERE analysis_id=? ORDER BY id", scanVisualization, analysisID)
}
