package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

// Validator checks foreign keys at creation time only.
type Validator struct {
	Models   models.Repository
	Datasets datasets.Repository
	Analyses analyses.Repository
}

// AnalysisRefs checks the model first and the dataset second; when both are
// missing only the model is reported.
func (v Validator) AnalysisRefs(ctx context.Context, modelID, datasetID core.ID) error {
	if err := resolve(ctx, core.EntityModel, modelID, func(ctx context.Context, id core.ID) error {
		_, err := v.Models.Get(ctx, id)
		return err
	}); err != nil {
		return err
	}
	return resolve(ctx, core.EntityDataset, datasetID, func(ctx context.Context, id core.ID) error {
		_, err := v.Datasets.Get(ctx, id)
		return err
	})
}

func (v Validator) VisualizationRef(ctx context.Context, analysisID core.ID) error {
	return resolve(ctx, core.EntityAnalysis, analysisID, func(ctx context.Context, id core.ID) error {
		_, err := v.Analyses.Get(ctx, id)
		return err
	})
}

func resolve(ctx context.Context, entity core.Entity, id core.ID, get func(context.Context, core.ID) error) error {
	err := get(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, core.ErrNotFound):
		return &core.InvalidReferenceError{Entity: entity, ID: id}
	default:
		return fmt.Errorf("lookup %s %d: %w", entity, id, err)
	}
}
