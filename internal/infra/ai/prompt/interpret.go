// Package prompt holds the interpretability prompts sent to the LLM engine
// and the parsing of its replies.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
)

const base = `You are a senior machine learning interpretability analyst. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Scores are numbers between 0 and 1 unless stated otherwise.
- Only use column names that appear in the dataset description.
- Keep "summary" under 80 words.
- If the model file cannot be inspected, reason from the model type, framework and dataset columns conservatively.
`

var schemas = map[analyses.Type]string{
	analyses.TypeFeatureImportance: `Task: estimate global feature importance.

Schema (example):
{
  "feature_importance": {"<column>": 0.0},
  "method": "<permutation|shap|gain|heuristic>",
  "summary": "<string>"
}`,
	analyses.TypeDecisionPath: `Task: describe the dominant decision path the model follows.

Schema (example):
{
  "nodes": [{"id": "n0", "feature": "<column>", "threshold": 0.0, "samples": 0}],
  "edges": [{"from": "n0", "to": "n1", "condition": "<= threshold"}],
  "summary": "<string>"
}`,
	analyses.TypeBiasDetection: `Task: estimate outcome disparity across groups of the protected attributes.
bias_scores values are absolute disparity (0 means parity).

Schema (example):
{
  "protected_attributes": ["<column>"],
  "bias_scores": {"<attribute>=<group>": 0.0},
  "summary": "<string>"
}`,
	analyses.TypeInputOutputRelationship: `Task: estimate how each input moves the model output.
effect is signed; positive means the output grows with the input.

Schema (example):
{
  "relationships": [{"input": "<column>", "effect": 0.0, "shape": "<linear|monotonic|non-linear>"}],
  "summary": "<string>"
}`,
}

// System returns the system prompt for the analysis type.
func System(t analyses.Type) (string, error) {
	schema, ok := schemas[t]
	if !ok {
		return "", fmt.Errorf("no prompt for analysis type %q", t)
	}
	return base + "\n" + schema, nil
}

type modelBrief struct {
	Name      string         `json:"name"`
	Type      string         `json:"model_type"`
	Framework string         `json:"framework"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type datasetBrief struct {
	Name     string   `json:"name"`
	FileType string   `json:"file_type"`
	Columns  []string `json:"columns"`
	RowCount int64    `json:"row_count"`
}

type brief struct {
	Analysis   string         `json:"analysis"`
	Model      modelBrief     `json:"model"`
	Dataset    datasetBrief   `json:"dataset"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// User builds the user message describing the job.
func User(job analyses.Job) (string, error) {
	b := brief{
		Analysis: job.Analysis.Name,
		Model: modelBrief{
			Name:      job.Model.Name,
			Type:      string(job.Model.ModelType),
			Framework: job.Model.Framework,
			Metadata:  job.Model.Metadata,
		},
		Dataset: datasetBrief{
			Name:     job.Dataset.Name,
			FileType: string(job.Dataset.FileType),
			Columns:  append([]string{}, job.Dataset.Columns...),
			RowCount: job.Dataset.RowCount,
		},
		Parameters: job.Analysis.Parameters,
	}
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", err
	}
	return "Run the analysis described below and respond with the JSON per schema.\n\n" + string(raw), nil
}
