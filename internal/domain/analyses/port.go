package analyses

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

type Filter struct {
	Status Status
}

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, id core.ID) (*Analysis, error)
	List(ctx context.Context, f Filter) ([]*Analysis, error)
	// ListByModel and ListByDataset never fail on an unknown parent id;
	// they return an empty slice.
	ListByModel(ctx context.Context, modelID core.ID) ([]*Analysis, error)
	ListByDataset(ctx context.Context, datasetID core.ID) ([]*Analysis, error)
	Update(ctx context.Context, id core.ID, fn func(*Analysis) error) (*Analysis, error)
}

// Job is everything an engine needs to compute results.
type Job struct {
	Analysis *Analysis
	Model    *models.Model
	Dataset  *datasets.Dataset
}

// Engine port (interface untuk eksekusi analisis)
type Engine interface {
	Run(ctx context.Context, job Job) (core.Object, error)
}
