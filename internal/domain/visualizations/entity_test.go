package visualizations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

func TestInputValidate(t *testing.T) {
	in := Input{AnalysisID: 1, ChartType: ChartHeatmap, Config: core.Object{}, Data: core.Object{"cells": []int{1}}}
	require.NoError(t, in.Validate())
	assert.Equal(t, core.Object{"cells": []any{1.0}}, in.Data)

	missing := in
	missing.Config = nil
	var verr *core.ValidationError
	require.ErrorAs(t, missing.Validate(), &verr)
	assert.Equal(t, "config", verr.Field)

	wrongChart := in
	wrongChart.ChartType = "pie"
	assert.ErrorIs(t, wrongChart.Validate(), core.ErrValidation)
}
