package catalog

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/lifecycle"
)

// CreateAnalysis validates input, then references, then inserts a pending
// analysis with no results. Nothing is written when a reference is broken.
func (s *Service) CreateAnalysis(ctx context.Context, in analyses.Input) (*analyses.Analysis, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.refs.AnalysisRefs(ctx, in.ModelID, in.DatasetID); err != nil {
		return nil, err
	}
	a := in.Build()
	if err := s.repos.Analyses.Create(ctx, a); err != nil {
		return nil, err
	}
	s.created(ctx, core.EntityAnalysis, a.ID, string(a.Status), a.CreatedAt)
	return a, nil
}

func (s *Service) ListAnalyses(ctx context.Context, f analyses.Filter) ([]*analyses.Analysis, error) {
	if f.Status != "" {
		if err := lifecycle.RequireState(s.machines.Analysis, string(f.Status)); err != nil {
			return nil, err
		}
	}
	return s.repos.Analyses.List(ctx, f)
}

// GetAnalysisByID returns nil, nil when the analysis does not exist.
func (s *Service) GetAnalysisByID(ctx context.Context, id core.ID) (*analyses.Analysis, error) {
	a, err := s.repos.Analyses.Get(ctx, id)
	if err != nil {
		return nil, absent(err)
	}
	return a, nil
}

// ListAnalysesByModel returns an empty slice for unknown model ids.
func (s *Service) ListAnalysesByModel(ctx context.Context, modelID core.ID) ([]*analyses.Analysis, error) {
	return s.repos.Analyses.ListByModel(ctx, modelID)
}

// ListAnalysesByDataset returns an empty slice for unknown dataset ids.
func (s *Service) ListAnalysesByDataset(ctx context.Context, datasetID core.ID) ([]*analyses.Analysis, error) {
	return s.repos.Analyses.ListByDataset(ctx, datasetID)
}

// UpdateAnalysisStatus moves an analysis to status. Completing without
// results is allowed.
func (s *Service) UpdateAnalysisStatus(ctx context.Context, id core.ID, status analyses.Status, results core.OptionalObject) (*analyses.Analysis, error) {
	machine := s.machines.Analysis
	if err := lifecycle.RequireState(machine, string(status)); err != nil {
		return nil, err
	}
	results, err := payload("results", results)
	if err != nil {
		return nil, err
	}

	var tr lifecycle.Transition
	a, err := s.repos.Analyses.Update(ctx, id, func(a *analyses.Analysis) error {
		t, err := lifecycle.Check(machine, id, string(a.Status), string(status), core.Stamp(s.clock.Now()))
		if err != nil {
			return err
		}
		tr = t
		a.Status = status
		a.Results = results.Apply(a.Results)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tr.At = a.UpdatedAt
	s.transitioned(ctx, tr)
	return a, nil
}

// StartAnalysisRun moves a pending or failed analysis to running in one
// locked update. Any other current status is a TransitionError, so two
// concurrent runs of the same analysis cannot both start.
func (s *Service) StartAnalysisRun(ctx context.Context, id core.ID) (*analyses.Analysis, error) {
	machine := s.machines.Analysis
	var tr lifecycle.Transition
	a, err := s.repos.Analyses.Update(ctx, id, func(a *analyses.Analysis) error {
		if !a.Status.Runnable() {
			return &core.TransitionError{
				Entity: core.EntityAnalysis, ID: id, From: string(a.Status), To: string(analyses.StatusRunning),
			}
		}
		t, err := lifecycle.Check(machine, id, string(a.Status), string(analyses.StatusRunning), core.Stamp(s.clock.Now()))
		if err != nil {
			return err
		}
		tr = t
		a.Status = analyses.StatusRunning
		return nil
	})
	if err != nil {
		return nil, err
	}
	tr.At = a.UpdatedAt
	s.transitioned(ctx, tr)
	return a, nil
}
