package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/events"
	"github.com/bryanwahyu/interpretlab/internal/domain/lifecycle"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/memory"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type captureRecorder struct {
	mu          sync.Mutex
	created     map[core.Entity]int
	transitions []string
}

func (r *captureRecorder) EntityCreated(e core.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.created == nil {
		r.created = map[core.Entity]int{}
	}
	r.created[e]++
}

func (r *captureRecorder) StatusChanged(e core.Entity, from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, string(e)+":"+from+"->"+to)
}

// frozen never advances, so every strictly increasing updated_at comes from the store.
var frozen = core.FuncClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) })

type fixture struct {
	svc *Service
	pub *capturePublisher
	rec *captureRecorder
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	store := memory.New(frozen)
	pub := &capturePublisher{}
	rec := &captureRecorder{}
	base := []Option{WithPublisher(pub), WithRecorder(rec), WithClock(frozen), WithLogger(zaptest.NewLogger(t))}
	svc := NewService(Repositories{
		Models:         store.Models(),
		Datasets:       store.Datasets(),
		Analyses:       store.Analyses(),
		Visualizations: store.Visualizations(),
	}, append(base, opts...)...)
	return fixture{svc: svc, pub: pub, rec: rec}
}

func modelInput(name string) models.Input {
	return models.Input{
		Name:      name,
		ModelType: models.TypeTraditionalML,
		Framework: "scikit-learn",
		FilePath:  "models/" + name + ".pkl",
		FileSize:  4096,
	}
}

func datasetInput(name string) datasets.Input {
	return datasets.Input{
		Name:     name,
		FileType: datasets.FileTypeCSV,
		FilePath: "datasets/" + name + ".csv",
		FileSize: 2048,
		Columns:  []string{"age", "income"},
		RowCount: 10,
	}
}

func (f fixture) seedPair(t *testing.T) (*models.Model, *datasets.Dataset) {
	t.Helper()
	ctx := context.Background()
	m, err := f.svc.CreateModel(ctx, modelInput("m"))
	require.NoError(t, err)
	d, err := f.svc.CreateDataset(ctx, datasetInput("d"))
	require.NoError(t, err)
	return m, d
}

func (f fixture) seedAnalysis(t *testing.T) *analyses.Analysis {
	t.Helper()
	m, d := f.seedPair(t)
	a, err := f.svc.CreateAnalysis(context.Background(), analyses.Input{
		Name: "fi", ModelID: m.ID, DatasetID: d.ID, AnalysisType: analyses.TypeFeatureImportance,
	})
	require.NoError(t, err)
	return a
}

func TestCreateModelStartsUploading(t *testing.T) {
	f := newFixture(t)
	m, err := f.svc.CreateModel(context.Background(), modelInput("churn"))
	require.NoError(t, err)

	assert.True(t, m.ID.Valid())
	assert.Equal(t, models.StatusUploading, m.Status)
	assert.True(t, m.CreatedAt.Equal(m.UpdatedAt))
	assert.Equal(t, []events.Type{"model.created"}, f.pub.types())
	assert.Equal(t, 1, f.rec.created[core.EntityModel])
}

func TestCreateRejectsMalformedInputBeforeWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := modelInput("x")
	in.FileSize = 0
	_, err := f.svc.CreateModel(ctx, in)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "file_size", verr.Field)

	_, err = f.svc.CreateAnalysis(ctx, analyses.Input{Name: "a", ModelID: 0, DatasetID: 1, AnalysisType: analyses.TypeDecisionPath})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "model_id", verr.Field)

	ms, err := f.svc.ListModels(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Empty(t, ms)
	assert.Empty(t, f.pub.types())
}

func TestCreateAnalysisChecksModelBeforeDataset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAnalysis(ctx, analyses.Input{
		Name: "a", ModelID: 11, DatasetID: 22, AnalysisType: analyses.TypeFeatureImportance,
	})
	var ref *core.InvalidReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, core.EntityModel, ref.Entity)
	assert.Equal(t, core.ID(11), ref.ID)

	m, err := f.svc.CreateModel(ctx, modelInput("m"))
	require.NoError(t, err)
	_, err = f.svc.CreateAnalysis(ctx, analyses.Input{
		Name: "a", ModelID: m.ID, DatasetID: 22, AnalysisType: analyses.TypeFeatureImportance,
	})
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, core.EntityDataset, ref.Entity)
	assert.Equal(t, core.ID(22), ref.ID)
	assert.NotErrorIs(t, err, core.ErrNotFound)

	all, err := f.svc.ListAnalyses(ctx, analyses.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateAnalysisIsPending(t *testing.T) {
	f := newFixture(t)
	m, d := f.seedPair(t)
	params := core.Object{"top_k": 5, "features": []any{"age", "income"}}

	a, err := f.svc.CreateAnalysis(context.Background(), analyses.Input{
		Name: "fi", ModelID: m.ID, DatasetID: d.ID,
		AnalysisType: analyses.TypeFeatureImportance, Parameters: params,
	})
	require.NoError(t, err)
	assert.Equal(t, analyses.StatusPending, a.Status)
	assert.Nil(t, a.Results)

	got, err := f.svc.GetAnalysisByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, core.Equal(params, got.Parameters))
}

func TestCreateVisualizationRequiresAnalysis(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateVisualization(ctx, visualizations.Input{
		AnalysisID: 5, ChartType: visualizations.ChartBar, Config: core.Object{}, Data: core.Object{},
	})
	var ref *core.InvalidReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, core.EntityAnalysis, ref.Entity)
	assert.Equal(t, core.ID(5), ref.ID)

	a := f.seedAnalysis(t)
	data := core.Object{"labels": []any{"age", "income"}, "values": []any{0.7, 0.3}}
	cfg := core.Object{"title": "Feature importance", "axis": map[string]any{"x": "feature"}}
	v, err := f.svc.CreateVisualization(ctx, visualizations.Input{
		AnalysisID: a.ID, ChartType: visualizations.ChartBar, Config: cfg, Data: data,
	})
	require.NoError(t, err)

	got, err := f.svc.GetVisualizationByID(ctx, v.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(data, got.Data); diff != "" {
		t.Errorf("data (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(cfg, got.Config); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}

	list, err := f.svc.ListVisualizationsByAnalysis(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	none, err := f.svc.ListVisualizationsByAnalysis(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateModelStatusUnknownID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateModelStatus(context.Background(), 77, models.StatusReady, core.Omitted())
	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, core.EntityModel, nf.Entity)
	assert.Equal(t, core.ID(77), nf.ID)
	assert.NotErrorIs(t, err, core.ErrInvalidReference)
}

func TestUpdateModelStatusPayloadSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, err := f.svc.CreateModel(ctx, modelInput("m"))
	require.NoError(t, err)

	withMeta, err := f.svc.UpdateModelStatus(ctx, m.ID, models.StatusProcessing, core.Some(core.Object{"stage": "parse", "n": 1}))
	require.NoError(t, err)
	assert.True(t, withMeta.UpdatedAt.After(m.UpdatedAt))
	assert.Equal(t, core.Object{"stage": "parse", "n": 1.0}, withMeta.Metadata)

	kept, err := f.svc.UpdateModelStatus(ctx, m.ID, models.StatusReady, core.Omitted())
	require.NoError(t, err)
	assert.True(t, kept.UpdatedAt.After(withMeta.UpdatedAt))
	assert.Equal(t, withMeta.Metadata, kept.Metadata)

	replaced, err := f.svc.UpdateModelStatus(ctx, m.ID, models.StatusReady, core.Some(core.Object{"other": true}))
	require.NoError(t, err)
	assert.Equal(t, core.Object{"other": true}, replaced.Metadata)

	cleared, err := f.svc.UpdateModelStatus(ctx, m.ID, models.StatusError, core.Some(nil))
	require.NoError(t, err)
	assert.Nil(t, cleared.Metadata)

	got, err := f.svc.GetModelByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, got.Status)
	assert.Nil(t, got.Metadata)
	assert.True(t, got.CreatedAt.Equal(m.CreatedAt))

	assert.Equal(t, []string{
		"model:uploading->processing",
		"model:processing->ready",
		"model:ready->ready",
		"model:ready->error",
	}, f.rec.transitions)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, err := f.svc.CreateModel(ctx, modelInput("m"))
	require.NoError(t, err)

	_, err = f.svc.UpdateModelStatus(ctx, m.ID, "completed", core.Omitted())
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	// validation happens before the lookup
	_, err = f.svc.UpdateAnalysisStatus(ctx, 12345, "done", core.Omitted())
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestPermissiveTransitionsAcceptAnything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAnalysis(t)

	_, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusCompleted, core.Omitted())
	require.NoError(t, err, "completing without results is allowed")
	back, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusPending, core.Omitted())
	require.NoError(t, err)
	assert.Equal(t, analyses.StatusPending, back.Status)

	_, d := f.seedPair(t)
	_, err = f.svc.UpdateDatasetStatus(ctx, d.ID, datasets.StatusReady, core.Omitted())
	require.NoError(t, err)
	again, err := f.svc.UpdateDatasetStatus(ctx, d.ID, datasets.StatusUploading, core.Omitted())
	require.NoError(t, err)
	assert.Equal(t, datasets.StatusUploading, again.Status)
}

func TestStrictMachineRejectsAndLeavesRowUntouched(t *testing.T) {
	f := newFixture(t, WithMachines(lifecycle.StrictSet()))
	ctx := context.Background()
	a := f.seedAnalysis(t)

	_, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusCompleted, core.Some(core.Object{"x": 1}))
	var terr *core.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "pending", terr.From)
	assert.Equal(t, "completed", terr.To)

	got, err := f.svc.GetAnalysisByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, analyses.StatusPending, got.Status)
	assert.Nil(t, got.Results)
	assert.True(t, got.UpdatedAt.Equal(a.UpdatedAt))

	_, err = f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusRunning, core.Omitted())
	require.NoError(t, err)
	done, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusCompleted, core.Some(core.Object{"x": 1}))
	require.NoError(t, err)
	assert.Equal(t, core.Object{"x": 1.0}, done.Results)
}

func TestUpdateAnalysisStatusIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAnalysis(t)

	first, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusPending, core.Omitted())
	require.NoError(t, err)
	second, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusPending, core.Omitted())
	require.NoError(t, err)

	assert.Equal(t, analyses.StatusPending, first.Status)
	assert.Equal(t, analyses.StatusPending, second.Status)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Parameters, second.Parameters)
}

func TestResultsRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAnalysis(t)

	results := core.Object{
		"importances": []any{
			map[string]any{"feature": "age", "score": 0.61},
			map[string]any{"feature": "income", "score": 0.39},
		},
		"meta": map[string]any{"method": "permutation", "repeats": 10, "warnings": []any{}},
	}
	_, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusCompleted, core.Some(results))
	require.NoError(t, err)

	got, err := f.svc.GetAnalysisByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, core.Equal(results, got.Results))

	// omitted results on a later update leave them in place
	failed, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusFailed, core.Omitted())
	require.NoError(t, err)
	assert.True(t, core.Equal(results, failed.Results))
}

func TestGetByIDAbsentIsNotAnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.GetModelByID(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, m)
	d, err := f.svc.GetDatasetByID(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, d)
	a, err := f.svc.GetAnalysisByID(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, a)
	v, err := f.svc.GetVisualizationByID(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestListAnalysesByModelAndDataset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m1, d := f.seedPair(t)
	m2, err := f.svc.CreateModel(ctx, modelInput("second"))
	require.NoError(t, err)

	var want []core.ID
	for i := 0; i < 2; i++ {
		a, err := f.svc.CreateAnalysis(ctx, analyses.Input{
			Name: "a", ModelID: m1.ID, DatasetID: d.ID, AnalysisType: analyses.TypeBiasDetection,
		})
		require.NoError(t, err)
		want = append(want, a.ID)
	}
	_, err = f.svc.CreateAnalysis(ctx, analyses.Input{
		Name: "b", ModelID: m2.ID, DatasetID: d.ID, AnalysisType: analyses.TypeDecisionPath,
	})
	require.NoError(t, err)

	got, err := f.svc.ListAnalysesByModel(ctx, m1.ID)
	require.NoError(t, err)
	var ids []core.ID
	for _, a := range got {
		assert.Equal(t, m1.ID, a.ModelID)
		ids = append(ids, a.ID)
	}
	assert.Equal(t, want, ids)

	none, err := f.svc.ListAnalysesByModel(ctx, 4242)
	require.NoError(t, err)
	assert.Empty(t, none)

	byDataset, err := f.svc.ListAnalysesByDataset(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, byDataset, 3)
}

func TestListFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAnalysis(t)
	_, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusRunning, core.Omitted())
	require.NoError(t, err)

	running, err := f.svc.ListAnalyses(ctx, analyses.Filter{Status: analyses.StatusRunning})
	require.NoError(t, err)
	assert.Len(t, running, 1)

	pending, err := f.svc.ListAnalyses(ctx, analyses.Filter{Status: analyses.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.svc.ListModels(ctx, models.Filter{Status: "bogus"})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestPublishFailureIsLoggedNotReturned(t *testing.T) {
	obsCore, logs := observer.New(zap.ErrorLevel)
	f := newFixture(t, WithLogger(zap.New(obsCore)))
	f.pub.err = errors.New("broker down")

	m, err := f.svc.CreateModel(context.Background(), modelInput("m"))
	require.NoError(t, err)

	got, err := f.svc.GetModelByID(context.Background(), m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	entries := logs.FilterMessage("event publish failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "model.created", entries[0].ContextMap()["type"])
}

func TestStatusEventsCarryTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAnalysis(t)

	updated, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusRunning, core.Omitted())
	require.NoError(t, err)

	last := f.pub.events[len(f.pub.events)-1]
	assert.Equal(t, events.Type("analysis.status_changed"), last.Type)
	assert.Equal(t, "pending", last.From)
	assert.Equal(t, "running", last.Status)
	assert.Equal(t, a.ID, last.ID)
	assert.True(t, last.At.Equal(updated.UpdatedAt))
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAnalysis(t)
	_, err := f.svc.UpdateModelStatus(ctx, a.ModelID, models.StatusReady, core.Omitted())
	require.NoError(t, err)
	_, err = f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusCompleted, core.Some(core.Object{}))
	require.NoError(t, err)
	_, err = f.svc.CreateModel(ctx, modelInput("other"))
	require.NoError(t, err)

	sum, err := f.svc.Summary(ctx, SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Models.Total)
	assert.Equal(t, 1, sum.Models.Matching)
	assert.Equal(t, "ready", sum.Models.Status)
	assert.Equal(t, map[string]int{"uploading": 1, "processing": 0, "ready": 1, "error": 0}, sum.Models.ByStatus)
	assert.Equal(t, 0, sum.Datasets.Matching)
	assert.Equal(t, 1, sum.Analyses.Matching)
	assert.Equal(t, 0, sum.Visualizations)

	uploading, err := f.svc.Summary(ctx, SummaryQuery{ModelStatus: models.StatusUploading, DatasetStatus: datasets.StatusUploading})
	require.NoError(t, err)
	assert.Equal(t, 1, uploading.Models.Matching)
	assert.Equal(t, 1, uploading.Datasets.Matching)

	_, err = f.svc.Summary(ctx, SummaryQuery{AnalysisStatus: "ready"})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestConcurrentUpdatesOnDistinctIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []core.ID
	for i := 0; i < 8; i++ {
		m, err := f.svc.CreateModel(ctx, modelInput("m"))
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id core.ID) {
			defer wg.Done()
			for _, st := range []models.Status{models.StatusProcessing, models.StatusReady} {
				if _, err := f.svc.UpdateModelStatus(ctx, id, st, core.Omitted()); err != nil {
					t.Error(err)
				}
			}
		}(id)
	}
	wg.Wait()

	ready, err := f.svc.ListModels(ctx, models.Filter{Status: models.StatusReady})
	require.NoError(t, err)
	assert.Len(t, ready, len(ids))
}

func TestStartAnalysisRunOnlyFromPendingOrFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAnalysis(t)

	running, err := f.svc.StartAnalysisRun(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, analyses.StatusRunning, running.Status)

	_, err = f.svc.StartAnalysisRun(ctx, a.ID)
	var te *core.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "running", te.From)
	assert.Equal(t, "running", te.To)

	done, err := f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusCompleted, core.Some(core.Object{"k": 1.0}))
	require.NoError(t, err)
	_, err = f.svc.StartAnalysisRun(ctx, a.ID)
	require.ErrorIs(t, err, core.ErrTransition)

	stored, err := f.svc.GetAnalysisByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, analyses.StatusCompleted, stored.Status)
	assert.Equal(t, done.UpdatedAt, stored.UpdatedAt, "rejected start writes nothing")

	_, err = f.svc.UpdateAnalysisStatus(ctx, a.ID, analyses.StatusFailed, core.Omitted())
	require.NoError(t, err)
	restarted, err := f.svc.StartAnalysisRun(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, analyses.StatusRunning, restarted.Status)

	_, err = f.svc.StartAnalysisRun(ctx, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStartAnalysisRunConcurrentCallsStartOnce(t *testing.T) {
	f := newFixture(t)
	a := f.seedAnalysis(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.StartAnalysisRun(context.Background(), a.ID); err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, started)
}

func TestCreatedEventCarriesRowTimestamp(t *testing.T) {
	// service clock disagrees with the store clock on purpose
	later := core.FuncClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) })
	f := newFixture(t, WithClock(later))

	m, err := f.svc.CreateModel(context.Background(), modelInput("stamped"))
	require.NoError(t, err)

	f.pub.mu.Lock()
	defer f.pub.mu.Unlock()
	require.Len(t, f.pub.events, 1)
	assert.True(t, f.pub.events[0].At.Equal(m.CreatedAt), "event %v row %v", f.pub.events[0].At, m.CreatedAt)
	assert.False(t, f.pub.events[0].At.Equal(later.Now()))
}
