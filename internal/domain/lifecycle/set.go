package lifecycle

import (
	"fmt"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

// Mode selects the machine family.
type Mode string

const (
	ModePermissive Mode = "permissive"
	ModeStrict     Mode = "strict"
)

// Set holds one machine per stateful entity.
type Set struct {
	Model    Machine
	Dataset  Machine
	Analysis Machine
}

// fileEdges is shared by models and datasets: uploads settle, errors retry,
// ready files may be reprocessed.
var fileEdges = map[string][]string{
	"uploading":  {"processing", "ready", "error"},
	"processing": {"ready", "error"},
	"error":      {"processing"},
	"ready":      {"processing"},
}

var analysisEdges = map[string][]string{
	string(analyses.StatusPending): {string(analyses.StatusRunning), string(analyses.StatusFailed)},
	string(analyses.StatusRunning): {string(analyses.StatusCompleted), string(analyses.StatusFailed)},
	string(analyses.StatusFailed):  {string(analyses.StatusPending)},
}

// PermissiveSet is the default.
func PermissiveSet() Set {
	return Set{
		Model:    NewPermissive(core.EntityModel, models.Statuses()),
		Dataset:  NewPermissive(core.EntityDataset, datasets.Statuses()),
		Analysis: NewPermissive(core.EntityAnalysis, analyses.Statuses()),
	}
}

func StrictSet() Set {
	return Set{
		Model:    NewTable(core.EntityModel, models.Statuses(), fileEdges),
		Dataset:  NewTable(core.EntityDataset, datasets.Statuses(), fileEdges),
		Analysis: NewTable(core.EntityAnalysis, analyses.Statuses(), analysisEdges),
	}
}

// ForMode resolves a configured mode; empty means permissive.
func ForMode(mode Mode) (Set, error) {
	switch mode {
	case "", ModePermissive:
		return PermissiveSet(), nil
	case ModeStrict:
		return StrictSet(), nil
	}
	return Set{}, fmt.Errorf("unknown lifecycle mode %q", mode)
}
