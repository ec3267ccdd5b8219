package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

func TestInputValidate(t *testing.T) {
	in := Input{Name: "iris", FileType: FileTypeCSV, FilePath: "d/iris.csv", FileSize: 10}
	require.NoError(t, in.Validate())

	bad := in
	bad.RowCount = -1
	assert.ErrorIs(t, bad.Validate(), core.ErrValidation)

	bad = in
	bad.FileType = "xlsx"
	assert.ErrorIs(t, bad.Validate(), core.ErrValidation)
}

func TestBuildNeverNilColumns(t *testing.T) {
	d := Input{Name: "x"}.Build()
	require.NotNil(t, d.Columns)
	assert.Empty(t, d.Columns)
	assert.Equal(t, StatusUploading, d.Status)
}

func TestColumnsValueScan(t *testing.T) {
	v, err := Columns(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var c Columns
	require.NoError(t, c.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, Columns{"a", "b"}, c)

	require.NoError(t, c.Scan(nil))
	assert.NotNil(t, c)
	assert.Empty(t, c)
}
