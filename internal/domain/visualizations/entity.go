package visualizations

import (
	"time"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// ChartType enum
type ChartType string

const (
	ChartBar             ChartType = "bar_chart"
	ChartLine            ChartType = "line_chart"
	ChartScatter         ChartType = "scatter_plot"
	ChartHeatmap         ChartType = "heatmap"
	ChartDecisionTree    ChartType = "decision_tree"
	ChartConfusionMatrix ChartType = "confusion_matrix"
)

func (c ChartType) Valid() bool {
	switch c {
	case ChartBar, ChartLine, ChartScatter, ChartHeatmap, ChartDecisionTree, ChartConfusionMatrix:
		return true
	}
	return false
}

// Visualization is immutable once created and has no status.
type Visualization struct {
	ID         core.ID     `json:"id"`
	AnalysisID core.ID     `json:"analysis_id"`
	ChartType  ChartType   `json:"chart_type"`
	Config     core.Object `json:"config"`
	Data       core.Object `json:"data"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (v *Visualization) Clone() *Visualization {
	if v == nil {
		return nil
	}
	cp := *v
	cp.Config = v.Config.Clone()
	cp.Data = v.Data.Clone()
	return &cp
}

type Input struct {
	AnalysisID core.ID     `json:"analysis_id"`
	ChartType  ChartType   `json:"chart_type"`
	Config     core.Object `json:"config"`
	Data       core.Object `json:"data"`
}

// Validate checks shape only; data is never matched against the chart type.
func (in *Input) Validate() error {
	if err := core.RequireID("analysis_id", in.AnalysisID); err != nil {
		return err
	}
	if !in.ChartType.Valid() {
		return &core.ValidationError{
			Field:  "chart_type",
			Reason: "must be one of bar_chart, line_chart, scatter_plot, heatmap, decision_tree, confusion_matrix",
		}
	}
	cfg, err := core.RequireObject("config", in.Config, false)
	if err != nil {
		return err
	}
	data, err := core.RequireObject("data", in.Data, false)
	if err != nil {
		return err
	}
	in.Config, in.Data = cfg, data
	return nil
}

func (in Input) Build() *Visualization {
	return &Visualization{
		AnalysisID: in.AnalysisID,
		ChartType:  in.ChartType,
		Config:     in.Config,
		Data:       in.Data,
	}
}
