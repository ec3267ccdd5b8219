package analyses

import (
	"time"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// Type enum
type Type string

const (
	TypeFeatureImportance       Type = "feature_importance"
	TypeDecisionPath            Type = "decision_path"
	TypeBiasDetection           Type = "bias_detection"
	TypeInputOutputRelationship Type = "input_output_relationship"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFeatureImportance, TypeDecisionPath, TypeBiasDetection, TypeInputOutputRelationship:
		return true
	}
	return false
}

// Status enum
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Runnable reports whether an engine run may start from s. Running and
// completed analyses have to be reset to pending first.
func (s Status) Runnable() bool { return s == StatusPending || s == StatusFailed }

func Statuses() []string {
	return []string{
		string(StatusPending),
		string(StatusRunning),
		string(StatusCompleted),
		string(StatusFailed),
	}
}

// Aggregate Root: Analysis. ModelID and DatasetID are checked only when
// the row is created.
type Analysis struct {
	ID           core.ID     `json:"id"`
	Name         string      `json:"name"`
	ModelID      core.ID     `json:"model_id"`
	DatasetID    core.ID     `json:"dataset_id"`
	AnalysisType Type        `json:"analysis_type"`
	Parameters   core.Object `json:"parameters"`
	Results      core.Object `json:"results"`
	Status       Status      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Parameters = a.Parameters.Clone()
	cp.Results = a.Results.Clone()
	return &cp
}

type Input struct {
	Name         string      `json:"name"`
	ModelID      core.ID     `json:"model_id"`
	DatasetID    core.ID     `json:"dataset_id"`
	AnalysisType Type        `json:"analysis_type"`
	Parameters   core.Object `json:"parameters"`
}

func (in *Input) Validate() error {
	if err := core.RequireText("name", in.Name); err != nil {
		return err
	}
	if err := core.RequireID("model_id", in.ModelID); err != nil {
		return err
	}
	if err := core.RequireID("dataset_id", in.DatasetID); err != nil {
		return err
	}
	if !in.AnalysisType.Valid() {
		return &core.ValidationError{
			Field:  "analysis_type",
			Reason: "must be one of feature_importance, decision_path, bias_detection, input_output_relationship",
		}
	}
	params, err := core.RequireObject("parameters", in.Parameters, true)
	if err != nil {
		return err
	}
	in.Parameters = params
	return nil
}

// Build returns a pending analysis with no results.
func (in Input) Build() *Analysis {
	return &Analysis{
		Name:         in.Name,
		ModelID:      in.ModelID,
		DatasetID:    in.DatasetID,
		AnalysisType: in.AnalysisType,
		Parameters:   in.Parameters,
		Status:       StatusPending,
	}
}
