// Package render turns completed analysis results into visualization rows.
package render

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
)

var palette = []string{"#3B82F6", "#8B5CF6", "#10B981", "#F59E0B", "#EF4444"}

const (
	biasHigh     = "#EF4444"
	biasModerate = "#F59E0B"
	// biasThreshold separates high from moderate disparity scores.
	biasThreshold = 0.1
)

// DefaultChart is the chart used when the caller does not pick one.
func DefaultChart(t analyses.Type) visualizations.ChartType {
	switch t {
	case analyses.TypeDecisionPath:
		return visualizations.ChartDecisionTree
	case analyses.TypeInputOutputRelationship:
		return visualizations.ChartScatter
	default:
		return visualizations.ChartBar
	}
}

// seriesKeys lists, per analysis type, where results usually keep their
// named scores. The first key present wins.
var seriesKeys = map[analyses.Type][]string{
	analyses.TypeFeatureImportance:       {"feature_importance", "importances", "features"},
	analyses.TypeBiasDetection:           {"bias_scores", "groups", "disparity"},
	analyses.TypeInputOutputRelationship: {"relationships", "sensitivity", "effects"},
	analyses.TypeDecisionPath:            {"path_importance", "node_values"},
}

// Draft builds the visualization input for a. chart may be empty.
func Draft(a *analyses.Analysis, chart visualizations.ChartType) (visualizations.Input, error) {
	if a.Status != analyses.StatusCompleted {
		return visualizations.Input{}, &core.ValidationError{Field: "status", Reason: "analysis must be completed before rendering"}
	}
	if a.Results == nil {
		return visualizations.Input{}, &core.ValidationError{Field: "results", Reason: "analysis has no results"}
	}
	if chart == "" {
		chart = DefaultChart(a.AnalysisType)
	}
	if !chart.Valid() {
		return visualizations.Input{}, &core.ValidationError{Field: "chart_type", Reason: "unknown chart type"}
	}

	var (
		data core.Object
		err  error
	)
	switch chart {
	case visualizations.ChartDecisionTree:
		data, err = decisionData(a.Results)
	case visualizations.ChartConfusionMatrix:
		data, err = confusionData(a.Results)
	default:
		data, err = seriesData(a, chart)
	}
	if err != nil {
		return visualizations.Input{}, err
	}

	return visualizations.Input{
		AnalysisID: a.ID,
		ChartType:  chart,
		Config:     config(a, chart),
		Data:       data,
	}, nil
}

func config(a *analyses.Analysis, chart visualizations.ChartType) core.Object {
	xAxis, yAxis := "Elements", "Importance Score"
	if a.AnalysisType == analyses.TypeFeatureImportance {
		xAxis = "Features"
	}
	if a.AnalysisType == analyses.TypeBiasDetection {
		yAxis = "Bias Score"
	}
	return core.Object{
		"title": strings.ToUpper(strings.ReplaceAll(string(chart), "_", " ")) + " - " + a.Name,
		"xAxis": xAxis,
		"yAxis": yAxis,
		"theme": "professional",
	}
}

type point struct {
	label string
	value float64
}

func seriesData(a *analyses.Analysis, chart visualizations.ChartType) (core.Object, error) {
	points := extractSeries(a.Results, seriesKeys[a.AnalysisType])
	if len(points) == 0 {
		return nil, &core.ValidationError{Field: "results", Reason: "no numeric scores to plot"}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].value > points[j].value })

	labels := make([]any, len(points))
	raw := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.label
		raw[i] = p.value
	}
	values := scaled(raw)

	data := core.Object{
		"labels":     labels,
		"values":     toAny(values),
		"raw_values": toAny(raw),
	}
	switch chart {
	case visualizations.ChartBar:
		colors := make([]any, len(points))
		for i := range points {
			if a.AnalysisType == analyses.TypeBiasDetection {
				colors[i] = biasModerate
				if raw[i] > biasThreshold {
					colors[i] = biasHigh
				}
				continue
			}
			colors[i] = palette[i%len(palette)]
		}
		data["colors"] = colors
	case visualizations.ChartScatter, visualizations.ChartLine:
		pts := make([]any, len(values))
		for i, v := range values {
			pts[i] = []any{float64(i), v}
		}
		data["points"] = pts
	case visualizations.ChartHeatmap:
		data["matrix"] = []any{toAny(values)}
	}
	return data, nil
}

// scaled maps values into [0, 1] by the largest magnitude; all-zero input
// is returned unchanged.
func scaled(raw []float64) []float64 {
	out := append([]float64(nil), raw...)
	abs := make([]float64, len(out))
	for i, v := range out {
		if v < 0 {
			v = -v
		}
		abs[i] = v
	}
	if top := floats.Max(abs); top > 1 {
		floats.Scale(1/top, out)
	}
	return out
}

// extractSeries finds named scores under the first matching key, falling
// back to the numeric top-level fields of results.
func extractSeries(results core.Object, keys []string) []point {
	for _, k := range keys {
		if pts := pointsFrom(results[k]); len(pts) > 0 {
			return pts
		}
	}
	var pts []point
	for k, v := range results {
		if f, ok := number(v); ok {
			pts = append(pts, point{label: k, value: f})
		}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].label < pts[j].label })
	return pts
}

// pointsFrom accepts {"name": score} maps and [{"feature"|"group"|"name"|"label": ..., "score"|"value"|"importance": ...}] lists.
func pointsFrom(v any) []point {
	switch t := v.(type) {
	case map[string]any:
		var pts []point
		for k, raw := range t {
			if f, ok := number(raw); ok {
				pts = append(pts, point{label: k, value: f})
			}
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].label < pts[j].label })
		return pts
	case []any:
		var pts []point
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			label, ok := firstString(m, "feature", "group", "name", "label", "input")
			if !ok {
				continue
			}
			if f, ok := firstNumber(m, "score", "value", "importance", "weight", "effect"); ok {
				pts = append(pts, point{label: label, value: f})
			}
		}
		return pts
	}
	return nil
}

func decisionData(results core.Object) (core.Object, error) {
	nodes, ok := results["nodes"].([]any)
	if !ok || len(nodes) == 0 {
		return nil, &core.ValidationError{Field: "results", Reason: "no decision path nodes"}
	}
	data := core.Object{"nodes": nodes}
	if conns, ok := results["connections"].([]any); ok {
		data["connections"] = conns
	} else if edges, ok := results["edges"].([]any); ok {
		data["connections"] = edges
	} else {
		conns := make([]any, 0, len(nodes)-1)
		for i := 1; i < len(nodes); i++ {
			conns = append(conns, []any{float64(i - 1), float64(i)})
		}
		data["connections"] = conns
	}
	if vals, ok := results["values"].([]any); ok {
		data["values"] = vals
	}
	return data, nil
}

func confusionData(results core.Object) (core.Object, error) {
	matrix, ok := results["confusion_matrix"].([]any)
	if !ok || len(matrix) == 0 {
		return nil, &core.ValidationError{Field: "results", Reason: "no confusion_matrix in results"}
	}
	data := core.Object{"matrix": matrix}
	if labels, ok := results["labels"].([]any); ok {
		data["labels"] = labels
	}
	return data, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func firstString(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s, true
		}
	}
	return "", false
}

func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := number(m[k]); ok {
			return f, true
		}
	}
	return 0, false
}

func toAny(fs []float64) []any {
	out := make([]any, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}
