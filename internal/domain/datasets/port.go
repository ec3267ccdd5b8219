package datasets

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

type Filter struct {
	Status Status
}

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, d *Dataset) error
	Get(ctx context.Context, id core.ID) (*Dataset, error)
	List(ctx context.Context, f Filter) ([]*Dataset, error)
	Update(ctx context.Context, id core.ID, fn func(*Dataset) error) (*Dataset, error)
}

// Shape is what introspection learns about a stored file.
type Shape struct {
	Columns  []string
	RowCount int64
}

// Introspector port (interface untuk baca struktur file dataset)
type Introspector interface {
	Inspect(ctx context.Context, localPath string, fileType FileType) (Shape, error)
}
