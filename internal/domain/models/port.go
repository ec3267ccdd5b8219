package models

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// Filter narrows List; the zero value lists everything.
type Filter struct {
	Status Status
}

// Repository port (interface untuk persistence)
type Repository interface {
	// Create assigns ID, CreatedAt and UpdatedAt on m.
	Create(ctx context.Context, m *Model) error
	// Get returns *core.NotFoundError when id is absent.
	Get(ctx context.Context, id core.ID) (*Model, error)
	// List is ordered by id.
	List(ctx context.Context, f Filter) ([]*Model, error)
	// Update runs fn against the current row and persists the result
	// atomically, refreshing UpdatedAt. An error from fn aborts the write.
	Update(ctx context.Context, id core.ID, fn func(*Model) error) (*Model, error)
}
