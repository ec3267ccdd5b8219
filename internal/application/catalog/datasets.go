package catalog

import (
	"context"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/lifecycle"
)

// CreateDataset stores a new dataset. The status is always uploading.
func (s *Service) CreateDataset(ctx context.Context, in datasets.Input) (*datasets.Dataset, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	d := in.Build()
	if err := s.repos.Datasets.Create(ctx, d); err != nil {
		return nil, err
	}
	s.created(ctx, core.EntityDataset, d.ID, string(d.Status), d.CreatedAt)
	return d, nil
}

func (s *Service) ListDatasets(ctx context.Context, f datasets.Filter) ([]*datasets.Dataset, error) {
	if f.Status != "" {
		if err := lifecycle.RequireState(s.machines.Dataset, string(f.Status)); err != nil {
			return nil, err
		}
	}
	return s.repos.Datasets.List(ctx, f)
}

// GetDatasetByID returns nil, nil when the dataset does not exist.
func (s *Service) GetDatasetByID(ctx context.Context, id core.ID) (*datasets.Dataset, error) {
	d, err := s.repos.Datasets.Get(ctx, id)
	if err != nil {
		return nil, absent(err)
	}
	return d, nil
}

func (s *Service) UpdateDatasetStatus(ctx context.Context, id core.ID, status datasets.Status, metadata core.OptionalObject) (*datasets.Dataset, error) {
	machine := s.machines.Dataset
	if err := lifecycle.RequireState(machine, string(status)); err != nil {
		return nil, err
	}
	metadata, err := payload("metadata", metadata)
	if err != nil {
		return nil, err
	}

	var tr lifecycle.Transition
	d, err := s.repos.Datasets.Update(ctx, id, func(d *datasets.Dataset) error {
		t, err := lifecycle.Check(machine, id, string(d.Status), string(status), core.Stamp(s.clock.Now()))
		if err != nil {
			return err
		}
		tr = t
		d.Status = status
		d.Metadata = metadata.Apply(d.Metadata)
		return nil
	})
	if err != nil {
		return nil, err
	}
	tr.At = d.UpdatedAt
	s.transitioned(ctx, tr)
	return d, nil
}

// ApplyShape records introspected columns and row count on a dataset
// without touching its status.
func (s *Service) ApplyShape(ctx context.Context, id core.ID, shape datasets.Shape) (*datasets.Dataset, error) {
	if shape.RowCount < 0 {
		return nil, &core.ValidationError{Field: "row_count", Reason: "must not be negative"}
	}
	return s.repos.Datasets.Update(ctx, id, func(d *datasets.Dataset) error {
		d.Columns = append(datasets.Columns{}, shape.Columns...)
		d.RowCount = shape.RowCount
		return nil
	})
}
