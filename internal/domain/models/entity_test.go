package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

func validInput() Input {
	return Input{
		Name:      "churn-xgb",
		ModelType: TypeTraditionalML,
		Framework: "xgboost",
		FilePath:  "models/churn.pkl",
		FileSize:  2048,
		Metadata:  core.Object{"version": 3},
	}
}

func TestInputValidate(t *testing.T) {
	in := validInput()
	require.NoError(t, in.Validate())
	assert.Equal(t, core.Object{"version": 3.0}, in.Metadata)

	cases := map[string]func(*Input){
		"name":       func(in *Input) { in.Name = " " },
		"model_type": func(in *Input) { in.ModelType = "llm" },
		"framework":  func(in *Input) { in.Framework = "" },
		"file_path":  func(in *Input) { in.FilePath = "" },
		"file_size":  func(in *Input) { in.FileSize = 0 },
	}
	for field, mutate := range cases {
		in := validInput()
		mutate(&in)
		err := in.Validate()
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)
	}
}

func TestBuildStartsUploading(t *testing.T) {
	m := validInput().Build()
	assert.Equal(t, StatusUploading, m.Status)
	assert.Zero(t, m.ID)
}

func TestCloneDetaches(t *testing.T) {
	desc := "d"
	m := &Model{Description: &desc, Metadata: core.Object{"a": map[string]any{"b": 1.0}}}
	cp := m.Clone()
	*cp.Description = "changed"
	cp.Metadata["a"].(map[string]any)["b"] = 2.0
	assert.Equal(t, "d", *m.Description)
	assert.Equal(t, 1.0, m.Metadata["a"].(map[string]any)["b"])
}
