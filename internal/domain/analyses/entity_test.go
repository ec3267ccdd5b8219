package analyses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

func TestInputValidate(t *testing.T) {
	in := Input{Name: "fi", ModelID: 1, DatasetID: 2, AnalysisType: TypeFeatureImportance}
	require.NoError(t, in.Validate())

	for field, mutate := range map[string]func(*Input){
		"model_id":      func(in *Input) { in.ModelID = 0 },
		"dataset_id":    func(in *Input) { in.DatasetID = -4 },
		"analysis_type": func(in *Input) { in.AnalysisType = "shap" },
		"name":          func(in *Input) { in.Name = "" },
	} {
		bad := in
		mutate(&bad)
		var verr *core.ValidationError
		require.ErrorAs(t, bad.Validate(), &verr, field)
		assert.Equal(t, field, verr.Field)
	}
}

func TestBuildIsPendingWithoutResults(t *testing.T) {
	a := Input{Name: "x", ModelID: 1, DatasetID: 1, AnalysisType: TypeDecisionPath}.Build()
	assert.Equal(t, StatusPending, a.Status)
	assert.Nil(t, a.Results)
}
