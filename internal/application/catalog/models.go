package catalog

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/lifecycle"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
)

// CreateModel stores a new model. The status is always uploading.
func (s *Service) CreateModel(ctx context.Context, in models.Input) (*models.Model, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m := in.Build()
	if err := s.repos.Models.Create(ctx, m); err != nil {
		return nil, err
	}
	s.created(ctx, core.EntityModel, m.ID, string(m.Status), m.CreatedAt)
	return m, nil
}

func (s *Service) ListModels(ctx context.Context, f models.Filter) ([]*models.Model, error) {
	if f.Status != "" {
		if err := lifecycle.RequireState(s.machines.Model, string(f.Status)); err != nil {
			return nil, err
		}
	}
	return s.repos.Models.List(ctx, f)
}

// GetModelByID returns nil, nil when the model does not exist.
func (s *Service) GetModelByID(ctx context.Context, id core.ID) (*models.Model, error) {
	m, err := s.repos.Models.Get(ctx, id)
	if err != nil {
		return nil, absent(err)
	}
	return m, nil
}

// UpdateModelStatus moves a model to status. metadata is left alone when
// omitted, cleared on explicit null and replaced wholesale otherwise.
func (s *Service) UpdateModelStatus(ctx context.Context, id core.ID, status models.Status, metadata core.OptionalObject) (*models.Model, error) {
	machine := s.machines.Model
	if err := lifecycle.RequireState(machine, string(status)); err != nil {
		return nil, err
	}
	metadata, err := payload("metadata", metadata)
	if err != nil {
		return nil, err
	}

	var tr lifecycle.Transition
	m, err := s.repos.Models.Update(ctx, id, func(m *models.Model) error {
		t, err := lifecycle.Check(machine, id, string(m.Status), string(status), core.Stamp(s.clock.Now()))
		if err != nil {
			return err
		}
		tr = t
		m.Status = status
		m.Metadata = metadata.Apply(m.Metadata)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tr.At = m.UpdatedAt
	s.transitioned(ctx, tr)
	return m, nil
}
