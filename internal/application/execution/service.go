// Package execution drives an analysis through its engine run.
package execution

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

// Catalog is the slice of the facade the executor touches.
type Catalog interface {
	GetAnalysisByID(ctx context.Context, id core.ID) (*analyses.Analysis, error)
	GetModelByID(ctx context.Context, id core.ID) (*models.Model, error)
	GetDatasetByID(ctx context.Context, id core.ID) (*datasets.Dataset, error)
	StartAnalysisRun(ctx context.Context, id core.ID) (*analyses.Analysis, error)
	UpdateAnalysisStatus(ctx context.Context, id core.ID, status analyses.Status, results core.OptionalObject) (*analyses.Analysis, error)
}

type Service struct {
	Catalog Catalog
	Engine  analyses.Engine
	Log     *zap.Logger
}

// Execute marks the analysis running, runs the engine once (no retry) and
// records completed with results or failed with {"error": msg}. On engine
// failure the failed analysis is returned along with the error. Only pending
// or failed analyses start; others yield a TransitionError and stay as they are.
func (s *Service) Execute(ctx context.Context, id core.ID) (*analyses.Analysis, error) {
	log := s.logger().With(zap.Int64("analysis_id", int64(id)))

	a, err := s.Catalog.GetAnalysisByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &core.NotFoundError{Entity: core.EntityAnalysis, ID: id}
	}
	running, err := s.Catalog.StartAnalysisRun(ctx, id)
	if err != nil {
		return nil, err
	}

	m, err := s.Catalog.GetModelByID(ctx, a.ModelID)
	if err != nil {
		return s.fail(ctx, id, err)
	}
	d, err := s.Catalog.GetDatasetByID(ctx, a.DatasetID)
	if err != nil {
		return s.fail(ctx, id, err)
	}
	if m == nil || d == nil {
		return s.fail(ctx, id, fmt.Errorf("analysis %d lost its model or dataset", id))
	}
	log.Info("analysis started", zap.String("type", string(a.AnalysisType)))

	results, err := s.Engine.Run(ctx, analyses.Job{Analysis: running, Model: m, Dataset: d})
	if err != nil {
		log.Warn("analysis failed", zap.Error(err))
		return s.fail(ctx, id, err)
	}
	if results == nil {
		results = core.Object{}
	}

	done, err := s.Catalog.UpdateAnalysisStatus(ctx, id, analyses.StatusCompleted, core.Some(results))
	if err != nil {
		return nil, err
	}
	log.Info("analysis completed")
	return done, nil
}

func (s *Service) fail(ctx context.Context, id core.ID, cause error) (*analyses.Analysis, error) {
	// context asli bisa sudah cancel, status failed tetap harus tersimpan
	failed, err := s.Catalog.UpdateAnalysisStatus(context.WithoutCancel(ctx), id, analyses.StatusFailed,
		core.Some(core.Object{"error": cause.Error()}))
	if err != nil {
		return nil, fmt.Errorf("record failure of analysis %d: %w (run error: %v)", id, err, cause)
	}
	return failed, cause
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
