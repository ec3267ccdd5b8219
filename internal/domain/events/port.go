package events

import (
	"context"
	"time"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// Type names what happened, e.g. "analysis.status_changed".
type Type string

const (
	Created       = "created"
	StatusChanged = "status_changed"
)

// TypeOf builds "<entity>.<action>".
func TypeOf(entity core.Entity, action string) Type {
	return Type(string(entity) + "." + action)
}

// Event is published after a write has been committed.
type Event struct {
	Type   Type        `json:"type"`
	Entity core.Entity `json:"entity"`
	ID     core.ID     `json:"id"`
	Status string      `json:"status,omitempty"`
	From   string      `json:"from,omitempty"`
	At     time.Time   `json:"at"`
}

// Publisher port (interface untuk notifikasi ke worker eksternal)
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Discard drops every event. Used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
func (Discard) Close() error                         { return nil }
