package memory

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
)

// Store owns the four collections and the clock used to stamp rows.
type Store struct {
	clock          core.Clock
	models         *table[*models.Model]
	datasets       *table[*datasets.Dataset]
	analyses       *table[*analyses.Analysis]
	visualizations *table[*visualizations.Visualization]
}

// New returns an empty store. A nil clock means the system clock.
func New(clock core.Clock) *Store {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Store{
		clock:          clock,
		models:         newTable((*models.Model).Clone),
		datasets:       newTable((*datasets.Dataset).Clone),
		analyses:       newTable((*analyses.Analysis).Clone),
		visualizations: newTable((*visualizations.Visualization).Clone),
	}
}

func (s *Store) Models() *ModelRepository { return &ModelRepository{s: s} }

func (s *Store) Datasets() *DatasetRepository { return &DatasetRepository{s: s} }

func (s *Store) Analyses() *AnalysisRepository { return &AnalysisRepository{s: s} }

func (s *Store) Visualizations() *VisualizationRepository { return &VisualizationRepository{s: s} }

// Check satisfies the health checker contract; memory is always up.
func (s *Store) Check(context.Context) error { return nil }

// Compile-time port checks.
var (
	_ models.Repository         = (*ModelRepository)(nil)
	_ datasets.Repository       = (*DatasetRepository)(nil)
	_ analyses.Repository       = (*AnalysisRepository)(nil)
	_ visualizations.Repository = (*VisualizationRepository)(nil)
)

type ModelRepository struct{ s *Store }

func (r *ModelRepository) Create(_ context.Context, m *models.Model) error {
	now := core.Stamp(r.s.clock.Now())
	r.s.models.insert(m, func(m *models.Model, id core.ID) {
		m.ID, m.CreatedAt, m.UpdatedAt = id, now, now
	})
	return nil
}

func (r *ModelRepository) Get(_ context.Context, id core.ID) (*models.Model, error) {
	m, ok := r.s.models.get(id)
	if !ok {
		return nil, &core.NotFoundError{Entity: core.EntityModel, ID: id}
	}
	return m, nil
}

func (r *ModelRepository) List(_ context.Context, f models.Filter) ([]*models.Model, error) {
	return r.s.models.list(func(m *models.Model) bool {
		return f.Status == "" || m.Status == f.Status
	}), nil
}

func (r *ModelRepository) Update(_ context.Context, id core.ID, fn func(*models.Model) error) (*models.Model, error) {
	m, ok, err := r.s.models.update(id, fn, func(prev, next *models.Model) {
		next.ID, next.CreatedAt = prev.ID, prev.CreatedAt
		next.UpdatedAt = core.NextStamp(prev.UpdatedAt, r.s.clock.Now())
	})
	if !ok {
		return nil, &core.NotFoundError{Entity: core.EntityModel, ID: id}
	}
	return m, err
}

type DatasetRepository struct{ s *Store }

func (r *DatasetRepository) Create(_ context.Context, d *datasets.Dataset) error {
	now := core.Stamp(r.s.clock.Now())
	if d.Columns == nil {
		d.Columns = datasets.Columns{}
	}
	r.s.datasets.insert(d, func(d *datasets.Dataset, id core.ID) {
		d.ID, d.CreatedAt, d.UpdatedAt = id, now, now
	})
	return nil
}

func (r *DatasetRepository) Get(_ context.Context, id core.ID) (*datasets.Dataset, error) {
	d, ok := r.s.datasets.get(id)
	if !ok {
		return nil, &core.NotFoundError{Entity: core.EntityDataset, ID: id}
	}
	return d, nil
}

func (r *DatasetRepository) List(_ context.Context, f datasets.Filter) ([]*datasets.Dataset, error) {
	return r.s.datasets.list(func(d *datasets.Dataset) bool {
		return f.Status == "" || d.Status == f.Status
	}), nil
}

func (r *DatasetRepository) Update(_ context.Context, id core.ID, fn func(*datasets.Dataset) error) (*datasets.Dataset, error) {
	d, ok, err := r.s.datasets.update(id, fn, func(prev, next *datasets.Dataset) {
		next.ID, next.CreatedAt = prev.ID, prev.CreatedAt
		next.UpdatedAt = core.NextStamp(prev.UpdatedAt, r.s.clock.Now())
	})
	if !ok {
		return nil, &core.NotFoundError{Entity: core.EntityDataset, ID: id}
	}
	return d, err
}

type AnalysisRepository struct{ s *Store }

func (r *AnalysisRepository) Create(_ context.Context, a *analyses.Analysis) error {
	now := core.Stamp(r.s.clock.Now())
	r.s.analyses.insert(a, func(a *analyses.Analysis, id core.ID) {
		a.ID, a.CreatedAt, a.UpdatedAt = id, now, now
	})
	return nil
}

func (r *AnalysisRepository) Get(_ context.Context, id core.ID) (*analyses.Analysis, error) {
	a, ok := r.s.analyses.get(id)
	if !ok {
		return nil, &core.NotFoundError{Entity: core.EntityAnalysis, ID: id}
	}
	return a, nil
}

func (r *AnalysisRepository) List(_ context.Context, f analyses.Filter) ([]*analyses.Analysis, error) {
	return r.s.analyses.list(func(a *analyses.Analysis) bool {
		return f.Status == "" || a.Status == f.Status
	}), nil
}

func (r *AnalysisRepository) ListByModel(_ context.Context, modelID core.ID) ([]*analyses.Analysis, error) {
	return r.s.analyses.list(func(a *analyses.Analysis) bool { return a.ModelID == modelID }), nil
}

func (r *AnalysisRepository) ListByDataset(_ context.Context, datasetID core.ID) ([]*analyses.Analysis, error) {
	return r.s.analyses.list(func(a *analyses.Analysis) bool { return a.DatasetID == datasetID }), nil
}

func (r *AnalysisRepository) Update(_ context.Context, id core.ID, fn func(*analyses.Analysis) error) (*analyses.Analysis, error) {
	a, ok, err := r.s.analyses.update(id, fn, func(prev, next *analyses.Analysis) {
		next.ID, next.CreatedAt = prev.ID, prev.CreatedAt
		next.UpdatedAt = core.NextStamp(prev.UpdatedAt, r.s.clock.Now())
	})
	if !ok {
		return nil, &core.NotFoundError{Entity: core.EntityAnalysis, ID: id}
	}
	return a, err
}

type VisualizationRepository struct{ s *Store }

func (r *VisualizationRepository) Create(_ context.Context, v *visualizations.Visualization) error {
	now := core.Stamp(r.s.clock.Now())
	r.s.visualizations.insert(v, func(v *visualizations.Visualization, id core.ID) {
		v.ID, v.CreatedAt = id, now
	})
	return nil
}

func (r *VisualizationRepository) Get(_ context.Context, id core.ID) (*visualizations.Visualization, error) {
	v, ok := r.s.visualizations.get(id)
	if !ok {
		return nil, &core.NotFoundError{Entity: core.EntityVisualization, ID: id}
	}
	return v, nil
}

func (r *VisualizationRepository) List(context.Context) ([]*visualizations.Visualization, error) {
	return r.s.visualizations.list(nil), nil
}

func (r *VisualizationRepository) ListByAnalysis(_ context.Context, analysisID core.ID) ([]*visualizations.Visualization, error) {
	return r.s.visualizations.list(func(v *visualizations.Visualization) bool {
		return v.AnalysisID == analysisID
	}), nil
}
