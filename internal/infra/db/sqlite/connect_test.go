package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
	"github.com/bryanwahyu/interpretlab/internal/infra/db/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, clock core.Clock) storetest.Repos {
		s, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"), clock)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return storetest.Repos{
			Models:         s.Models(),
			Datasets:       s.Datasets(),
			Analyses:       s.Analyses(),
			Visualizations: s.Visualizations(),
		}
	})
}

func TestReopenKeepsRowsAndMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	m := &models.Model{Name: "keep", ModelType: models.TypeTraditionalML, Framework: "sklearn",
		FilePath: "m.pkl", FileSize: 1, Status: models.StatusUploading, Metadata: core.Object{"v": 1.0}}
	require.NoError(t, s.Models().Create(ctx, m))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Check(ctx))

	got, err := s.Models().Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Name)
	assert.Equal(t, core.Object{"v": 1.0}, got.Metadata)
	assert.True(t, got.CreatedAt.Equal(m.CreatedAt))
}
