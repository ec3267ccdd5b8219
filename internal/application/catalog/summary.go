package catalog

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/lifecycle"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

// SummaryQuery names the status each dashboard card highlights. Empty
// fields fall back to ready, ready and completed.
type SummaryQuery struct {
	ModelStatus    models.Status
	DatasetStatus  datasets.Status
	AnalysisStatus analyses.Status
}

// Tally counts one entity kind.
type Tally struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Status   string         `json:"status"`
	Matching int            `json:"matching"`
}

type Summary struct {
	Models         Tally `json:"models"`
	Datasets       Tally `json:"datasets"`
	Analyses       Tally `json:"analyses"`
	Visualizations int   `json:"visualizations"`
}

// Summary computes fresh counts on every call.
func (s *Service) Summary(ctx context.Context, q SummaryQuery) (Summary, error) {
	if q.ModelStatus == "" {
		q.ModelStatus = models.StatusReady
	}
	if q.DatasetStatus == "" {
		q.DatasetStatus = datasets.StatusReady
	}
	if q.AnalysisStatus == "" {
		q.AnalysisStatus = analyses.StatusCompleted
	}
	if err := lifecycle.RequireState(s.machines.Model, string(q.ModelStatus)); err != nil {
		return Summary{}, err
	}
	if err := lifecycle.RequireState(s.machines.Dataset, string(q.DatasetStatus)); err != nil {
		return Summary{}, err
	}
	if err := lifecycle.RequireState(s.machines.Analysis, string(q.AnalysisStatus)); err != nil {
		return Summary{}, err
	}

	var out Summary

	ms, err := s.repos.Models.List(ctx, models.Filter{})
	if err != nil {
		return Summary{}, err
	}
	out.Models = newTally(s.machines.Model, string(q.ModelStatus))
	for _, m := range ms {
		out.Models.add(string(m.Status))
	}

	ds, err := s.repos.Datasets.List(ctx, datasets.Filter{})
	if err != nil {
		return Summary{}, err
	}
	out.Datasets = newTally(s.machines.Dataset, string(q.DatasetStatus))
	for _, d := range ds {
		out.Datasets.add(string(d.Status))
	}

	as, err := s.repos.Analyses.List(ctx, analyses.Filter{})
	if err != nil {
		return Summary{}, err
	}
	out.Analyses = newTally(s.machines.Analysis, string(q.AnalysisStatus))
	for _, a := range as {
		out.Analyses.add(string(a.Status))
	}

	vs, err := s.repos.Visualizations.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	out.Visualizations = len(vs)
	return out, nil
}

func newTally(m lifecycle.Machine, status string) Tally {
	t := Tally{ByStatus: make(map[string]int), Status: status}
	for _, st := range m.States() {
		t.ByStatus[st] = 0
	}
	return t
}

func (t *Tally) add(status string) {
	t.Total++
	t.ByStatus[status]++
	if status == t.Status {
		t.Matching++
	}
}
