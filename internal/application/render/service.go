package render

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
)

// Catalog is the part of the facade rendering needs.
type Catalog interface {
	GetAnalysisByID(ctx context.Context, id core.ID) (*analyses.Analysis, error)
	CreateVisualization(ctx context.Context, in visualizations.Input) (*visualizations.Visualization, error)
}

type Service struct {
	Catalog Catalog
}

// Render drafts a visualization from the analysis results and stores it.
func (s *Service) Render(ctx context.Context, analysisID core.ID, chart visualizations.ChartType) (*visualizations.Visualization, error) {
	a, err := s.Catalog.GetAnalysisByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &core.NotFoundError{Entity: core.EntityAnalysis, ID: analysisID}
	}
	in, err := Draft(a, chart)
	if err != nil {
		return nil, err
	}
	return s.Catalog.CreateVisualization(ctx, in)
}
