// Package storetest is a behavioural suite every repository backend must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
)

// Repos is one backend's set of repositories.
type Repos struct {
	Models         models.Repository
	Datasets       datasets.Repository
	Analyses       analyses.Repository
	Visualizations visualizations.Repository
}

// Factory builds a fresh, empty backend whose clock is fixed at now.
type Factory func(t *testing.T, clock core.Clock) Repos

// FixedNow is the instant every suite clock reports.
var FixedNow = time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)

func fixedClock() core.Clock { return core.FuncClock(func() time.Time { return FixedNow }) }

func Run(t *testing.T, newRepos Factory) {
	t.Run("create assigns id and timestamps", func(t *testing.T) { testCreate(t, newRepos(t, fixedClock())) })
	t.Run("get missing is not found", func(t *testing.T) { testGetMissing(t, newRepos(t, fixedClock())) })
	t.Run("opaque maps round trip", func(t *testing.T) { testRoundTrip(t, newRepos(t, fixedClock())) })
	t.Run("update refreshes updated_at", func(t *testing.T) { testUpdate(t, newRepos(t, fixedClock())) })
	t.Run("update rejected by mutator", func(t *testing.T) { testUpdateAborted(t, newRepos(t, fixedClock())) })
	t.Run("list filters and orders", func(t *testing.T) { testList(t, newRepos(t, fixedClock())) })
	t.Run("list by parent", func(t *testing.T) { testListByParent(t, newRepos(t, fixedClock())) })
}

func newModel(name string) *models.Model {
	return &models.Model{
		Name:      name,
		ModelType: models.TypeDeepLearning,
		Framework: "pytorch",
		FilePath:  "models/" + name + ".pt",
		FileSize:  1024,
		Status:    models.StatusUploading,
	}
}

func newDataset(name string) *datasets.Dataset {
	return &datasets.Dataset{
		Name:     name,
		FileType: datasets.FileTypeCSV,
		FilePath: "datasets/" + name + ".csv",
		FileSize: 512,
		Columns:  datasets.Columns{"age", "income", "label"},
		RowCount: 100,
		Status:   datasets.StatusUploading,
	}
}

func seed(t *testing.T, r Repos) (*models.Model, *datasets.Dataset, *analyses.Analysis) {
	t.Helper()
	ctx := context.Background()
	m := newModel("seed")
	require.NoError(t, r.Models.Create(ctx, m))
	d := newDataset("seed")
	require.NoError(t, r.Datasets.Create(ctx, d))
	a := &analyses.Analysis{
		Name: "fi", ModelID: m.ID, DatasetID: d.ID,
		AnalysisType: analyses.TypeFeatureImportance, Status: analyses.StatusPending,
	}
	require.NoError(t, r.Analyses.Create(ctx, a))
	return m, d, a
}

func testCreate(t *testing.T, r Repos) {
	ctx := context.Background()
	a, b := newModel("a"), newModel("b")
	require.NoError(t, r.Models.Create(ctx, a))
	require.NoError(t, r.Models.Create(ctx, b))

	assert.True(t, a.ID.Valid())
	assert.Greater(t, b.ID, a.ID)
	assert.True(t, core.Stamp(FixedNow).Equal(a.CreatedAt))
	assert.True(t, a.CreatedAt.Equal(a.UpdatedAt))

	got, err := r.Models.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUploading, got.Status)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(a.CreatedAt))
	assert.Nil(t, got.Description)
	assert.Nil(t, got.Metadata)

	d := newDataset("empty")
	d.Columns = nil
	require.NoError(t, r.Datasets.Create(ctx, d))
	gotD, err := r.Datasets.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.NotNil(t, gotD.Columns)
	assert.Empty(t, gotD.Columns)
}

func testGetMissing(t *testing.T, r Repos) {
	ctx := context.Background()
	_, err := r.Models.Get(ctx, 404)
	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, core.EntityModel, nf.Entity)
	assert.Equal(t, core.ID(404), nf.ID)

	_, err = r.Datasets.Get(ctx, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = r.Analyses.Get(ctx, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = r.Visualizations.Get(ctx, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testRoundTrip(t *testing.T, r Repos) {
	ctx := context.Background()
	nested := core.Object{
		"layers": []any{map[string]any{"units": 64.0, "act": "relu"}, map[string]any{"units": 1.0}},
		"flags":  map[string]any{"calibrated": true, "notes": nil},
		"score":  0.875,
		"tags":   []any{"a", "b"},
	}

	desc := "resnet baseline"
	m := newModel("rt")
	m.Description = &desc
	m.Metadata = nested
	require.NoError(t, r.Models.Create(ctx, m))
	gotM, err := r.Models.Get(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, gotM.Description)
	assert.Equal(t, desc, *gotM.Description)
	if diff := cmp.Diff(nested, gotM.Metadata); diff != "" {
		t.Errorf("model metadata (-want +got):\n%s", diff)
	}

	d := newDataset("rt")
	require.NoError(t, r.Datasets.Create(ctx, d))
	gotD, err := r.Datasets.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, datasets.Columns{"age", "income", "label"}, gotD.Columns)
	assert.Equal(t, int64(100), gotD.RowCount)

	a := &analyses.Analysis{
		Name: "rt", ModelID: m.ID, DatasetID: d.ID, AnalysisType: analyses.TypeBiasDetection,
		Parameters: core.Object{"groups": []any{"f", "m"}}, Status: analyses.StatusPending,
	}
	require.NoError(t, r.Analyses.Create(ctx, a))
	gotA, err := r.Analyses.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, core.Equal(a.Parameters, gotA.Parameters))
	assert.Nil(t, gotA.Results)

	v := &visualizations.Visualization{
		AnalysisID: a.ID, ChartType: visualizations.ChartHeatmap,
		Config: core.Object{"axes": map[string]any{"x": "feature"}},
		Data:   core.Object{"cells": []any{[]any{1.0, 2.0}, []any{3.0, 4.0}}},
	}
	require.NoError(t, r.Visualizations.Create(ctx, v))
	gotV, err := r.Visualizations.Get(ctx, v.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(v.Data, gotV.Data); diff != "" {
		t.Errorf("visualization data (-want +got):\n%s", diff)
	}
	assert.True(t, core.Equal(v.Config, gotV.Config))
	assert.True(t, core.Stamp(FixedNow).Equal(gotV.CreatedAt))
}

func testUpdate(t *testing.T, r Repos) {
	ctx := context.Background()
	m := newModel("upd")
	m.Metadata = core.Object{"k": "v"}
	require.NoError(t, r.Models.Create(ctx, m))

	first, err := r.Models.Update(ctx, m.ID, func(m *models.Model) error {
		m.Status = models.StatusReady
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, first.Status)
	assert.True(t, first.UpdatedAt.After(m.UpdatedAt), "updated_at must increase even with a frozen clock")
	assert.True(t, first.CreatedAt.Equal(m.CreatedAt))
	assert.Equal(t, core.Object{"k": "v"}, first.Metadata)

	second, err := r.Models.Update(ctx, m.ID, func(m *models.Model) error {
		m.Status = models.StatusReady
		return nil
	})
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	got, err := r.Models.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(second.UpdatedAt))

	_, _, a := seed(t, r)
	done, err := r.Analyses.Update(ctx, a.ID, func(a *analyses.Analysis) error {
		a.Status = analyses.StatusCompleted
		a.Results = core.Object{"importance": []any{0.5, 0.25}}
		return nil
	})
	require.NoError(t, err)
	gotA, err := r.Analyses.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, analyses.StatusCompleted, gotA.Status)
	assert.True(t, core.Equal(done.Results, gotA.Results))

	_, err = r.Datasets.Update(ctx, 999, func(*datasets.Dataset) error { return nil })
	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, core.EntityDataset, nf.Entity)
}

func testUpdateAborted(t *testing.T, r Repos) {
	ctx := context.Background()
	d := newDataset("abort")
	require.NoError(t, r.Datasets.Create(ctx, d))

	boom := &core.ValidationError{Field: "status", Reason: "nope"}
	_, err := r.Datasets.Update(ctx, d.ID, func(d *datasets.Dataset) error {
		d.Status = datasets.StatusError
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := r.Datasets.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, datasets.StatusUploading, got.Status)
	assert.True(t, got.UpdatedAt.Equal(d.UpdatedAt))
}

func testList(t *testing.T, r Repos) {
	ctx := context.Background()
	empty, err := r.Models.List(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	var ids []core.ID
	for _, name := range []string{"x", "y", "z"} {
		m := newModel(name)
		require.NoError(t, r.Models.Create(ctx, m))
		ids = append(ids, m.ID)
	}
	_, err = r.Models.Update(ctx, ids[1], func(m *models.Model) error {
		m.Status = models.StatusReady
		return nil
	})
	require.NoError(t, err)

	all, err := r.Models.List(ctx, models.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, m := range all {
		assert.Equal(t, ids[i], m.ID)
	}

	ready, err := r.Models.List(ctx, models.Filter{Status: models.StatusReady})
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, ids[1], ready[0].ID)
}

func testListByParent(t *testing.T, r Repos) {
	ctx := context.Background()
	m, d, a := seed(t, r)

	other := newModel("other")
	require.NoError(t, r.Models.Create(ctx, other))
	b := &analyses.Analysis{
		Name: "dp", ModelID: other.ID, DatasetID: d.ID,
		AnalysisType: analyses.TypeDecisionPath, Status: analyses.StatusPending,
	}
	require.NoError(t, r.Analyses.Create(ctx, b))

	byModel, err := r.Analyses.ListByModel(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, a.ID, byModel[0].ID)

	byDataset, err := r.Analyses.ListByDataset(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, byDataset, 2)

	none, err := r.Analyses.ListByModel(ctx, 12345)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	v := &visualizations.Visualization{
		AnalysisID: a.ID, ChartType: visualizations.ChartBar,
		Config: core.Object{}, Data: core.Object{"values": []any{1.0}},
	}
	require.NoError(t, r.Visualizations.Create(ctx, v))

	vs, err := r.Visualizations.ListByAnalysis(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, v.ID, vs[0].ID)

	vs, err = r.Visualizations.ListByAnalysis(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, vs)

	all, err := r.Visualizations.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
