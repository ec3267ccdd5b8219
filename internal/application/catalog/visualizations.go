package catalog

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
)

// CreateVisualization stores chart type, config and data as given once the
// analysis is known to exist.
func (s *Service) CreateVisualization(ctx context.Context, in visualizations.Input) (*visualizations.Visualization, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.refs.VisualizationRef(ctx, in.AnalysisID); err != nil {
		return nil, err
	}
	v := in.Build()
	if err := s.repos.Visualizations.Create(ctx, v); err != nil {
		return nil, err
	}
	s.created(ctx, core.EntityVisualization, v.ID, "", v.CreatedAt)
	return v, nil
}

func (s *Service) ListVisualizationsByAnalysis(ctx context.Context, analysisID core.ID) ([]*visualizations.Visualization, error) {
	return s.repos.Visualizations.ListByAnalysis(ctx, analysisID)
}

// GetVisualizationByID returns nil, nil when the visualization does not exist.
func (s *Service) GetVisualizationByID(ctx context.Context, id core.ID) (*visualizations.Visualization, error) {
	v, err := s.repos.Visualizations.Get(ctx, id)
	if err != nil {
		return nil, absent(err)
	}
	return v, nil
}
