// Package catalog is the operation surface for models, datasets, analyses
// and visualizations. Each operation validates input, checks references,
// applies the lifecycle machine and persists through the repositories.
package catalog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
	"github.com/bryanwahyu/interpretlab/internal/domain/datasets"
	"github.com/bryanwahyu/interpretlab/internal/domain/events"
	"github.com/bryanwahyu/interpretlab/internal/domain/lifecycle"
	"github.com/bryanwahyu/interpretlab/internal/domain/models"
	"github.com/bryanwahyu/interpretlab/internal/domain/visualizations"
)

// Repositories groups the four stores a Service writes to.
type Repositories struct {
	Models         models.Repository
	Datasets       datasets.Repository
	Analyses       analyses.Repository
	Visualizations visualizations.Repository
}

// Recorder receives counters for committed writes.
type Recorder interface {
	EntityCreated(entity core.Entity)
	StatusChanged(entity core.Entity, from, to string)
}

type nopRecorder struct{}

func (nopRecorder) EntityCreated(core.Entity)                 {}
func (nopRecorder) StatusChanged(core.Entity, string, string) {}

// Service implements use-cases untuk catalog.
// Service is safe for concurrent use; all state lives in the repositories.
type Service struct {
	repos    Repositories
	refs     Validator
	machines lifecycle.Set
	events   events.Publisher
	metrics  Recorder
	clock    core.Clock
	log      *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

func WithMachines(set lifecycle.Set) Option { return func(s *Service) { s.machines = set } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.events = p } }

func WithRecorder(r Recorder) Option { return func(s *Service) { s.metrics = r } }

func WithClock(c core.Clock) Option { return func(s *Service) { s.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

// NewService wires the facade. Without options it uses the permissive
// machines, drops events and logs nothing.
func NewService(repos Repositories, opts ...Option) *Service {
	s := &Service{
		repos:    repos,
		machines: lifecycle.PermissiveSet(),
		events:   events.Discard{},
		metrics:  nopRecorder{},
		clock:    core.SystemClock{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.refs = Validator{Models: repos.Models, Datasets: repos.Datasets, Analyses: repos.Analyses}
	return s
}

// Machines exposes the active lifecycle set, e.g. for status listings.
func (s *Service) Machines() lifecycle.Set { return s.machines }

// created records and announces a new row; at is the row's created_at.
func (s *Service) created(ctx context.Context, entity core.Entity, id core.ID, status string, at time.Time) {
	s.log.Info("entity created",
		zap.String("entity", string(entity)),
		zap.Int64("id", int64(id)),
		zap.String("status", status),
	)
	s.metrics.EntityCreated(entity)
	s.publish(ctx, events.Event{
		Type:   events.TypeOf(entity, events.Created),
		Entity: entity,
		ID:     id,
		Status: status,
		At:     at,
	})
}

// transitioned records and announces a committed status update.
func (s *Service) transitioned(ctx context.Context, tr lifecycle.Transition) {
	s.log.Info("status updated",
		zap.String("entity", string(tr.Entity)),
		zap.Int64("id", int64(tr.ID)),
		zap.String("from", tr.From),
		zap.String("to", tr.To),
	)
	s.metrics.StatusChanged(tr.Entity, tr.From, tr.To)
	s.publish(ctx, events.Event{
		Type:   events.TypeOf(tr.Entity, events.StatusChanged),
		Entity: tr.Entity,
		ID:     tr.ID,
		Status: tr.To,
		From:   tr.From,
		At:     tr.At,
	})
}

// publish never fails the caller: the write it describes is already committed.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Error("event publish failed",
			zap.String("type", string(e.Type)),
			zap.Int64("id", int64(e.ID)),
			zap.Error(err),
		)
	}
}

// payload normalizes an optional map supplied with a status update.
func payload(field string, p core.OptionalObject) (core.OptionalObject, error) {
	if !p.Set || p.Value == nil {
		return p, nil
	}
	v, err := core.RequireObject(field, p.Value, true)
	if err != nil {
		return p, err
	}
	return core.Some(v), nil
}

// absent turns a NotFoundError into the (nil, nil) single-item lookup result.
func absent(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return err
}
