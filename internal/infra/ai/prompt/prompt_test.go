package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

func TestSystemCoversEveryType(t *testing.T) {
	for _, typ := range []analyses.Type{
		analyses.TypeFeatureImportance,
		analyses.TypeDecisionPath,
		analyses.TypeBiasDetection,
		analyses.TypeInputOutputRelationship,
	} {
		s, err := System(typ)
		require.NoError(t, err, typ)
		assert.True(t, strings.HasPrefix(s, "You are a senior machine learning"))
	}
	_, err := System("clustering")
	assert.Error(t, err)
}

func TestUserDescribesJob(t *testing.T) {
	job := analyses.Job{
		Analysis: &analyses.Analysis{Name: "bias check", AnalysisType: analyses.TypeBiasDetection, Parameters: core.Object{"protected": "gender"}},
		Model:    &models.Model{Name: "credit", ModelType: models.TypeTraditionalML, Framework: "xgboost"},
		Dataset:  &datasets.Dataset{Name: "applicants", FileType: datasets.FileTypeCSV, Columns: datasets.Columns{"gender", "income"}, RowCount: 500},
	}
	msg, err := User(job)
	require.NoError(t, err)

	raw := msg[strings.Index(msg, "{"):]
	var got brief
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "bias check", got.Analysis)
	assert.Equal(t, "xgboost", got.Model.Framework)
	assert.Equal(t, []string{"gender", "income"}, got.Dataset.Columns)
	assert.Equal(t, int64(500), got.Dataset.RowCount)
	assert.Equal(t, "gender", got.Parameters["protected"])
}

func TestParse(t *testing.T) {
	out, err := Parse(analyses.TypeFeatureImportance, "```json\n{\"feature_importance\": {\"age\": 0.6}, \"summary\": \"age\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, core.Object{"feature_importance": map[string]any{"age": 0.6}, "summary": "age"}, out)

	_, err = Parse(analyses.TypeDecisionPath, `{"nodes": [{"id": "n0"}]}`)
	assert.NoError(t, err)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]struct {
		typ     analyses.Type
		content string
	}{
		"not json":      {analyses.TypeFeatureImportance, "sorry, I cannot"},
		"array":         {analyses.TypeFeatureImportance, `[1]`},
		"null":          {analyses.TypeFeatureImportance, `null`},
		"missing key":   {analyses.TypeBiasDetection, `{"summary": "x"}`},
		"string score":  {analyses.TypeFeatureImportance, `{"feature_importance": {"a": "high"}}`},
		"empty nodes":   {analyses.TypeDecisionPath, `{"nodes": []}`},
		"wrong io type": {analyses.TypeInputOutputRelationship, `{"relationships": {"a": 1}}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(tc.typ, tc.content)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
