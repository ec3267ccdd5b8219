package visualizations

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// Repository port. Visualizations are never updated.
type Repository interface {
	Create(ctx context.Context, v *Visualization) error
	Get(ctx context.Context, id core.ID) (*Visualization, error)
	List(ctx context.Context) ([]*Visualization, error)
	ListByAnalysis(ctx context.Context, analysisID core.ID) ([]*Visualization, error)
}
