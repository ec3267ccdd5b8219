// Package lifecycle decides which status changes an update may apply.
//
// The default machines are permissive: every declared status is a legal
// target from every source, so they only validate enum membership and
// record transitions. Strict tables exist for deployments that want
// gatekeeping and are selected through configuration.
package lifecycle

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// Machine is the swappable transition policy for one entity kind.
type Machine interface {
	Entity() core.Entity
	States() []string
	Valid(status string) bool
	CanTransition(from, to string) bool
}

// Transition records an applied status change.
type Transition struct {
	Entity core.Entity
	ID     core.ID
	From   string
	To     string
	At     time.Time
}

// Changed is false for repeated updates to the same status.
func (t Transition) Changed() bool { return t.From != t.To }

type states struct {
	entity core.Entity
	order  []string
	set    map[string]struct{}
}

func newStates(entity core.Entity, order []string) states {
	set := make(map[string]struct{}, len(order))
	for _, s := range order {
		set[s] = struct{}{}
	}
	return states{entity: entity, order: append([]string(nil), order...), set: set}
}

func (s states) Entity() core.Entity { return s.entity }

func (s states) States() []string { return append([]string(nil), s.order...) }

func (s states) Valid(status string) bool {
	_, ok := s.set[status]
	return ok
}

// Permissive accepts any declared status from any declared status.
type Permissive struct{ states }

func NewPermissive(entity core.Entity, order []string) *Permissive {
	return &Permissive{states: newStates(entity, order)}
}

func (p *Permissive) CanTransition(from, to string) bool {
	return p.Valid(from) && p.Valid(to)
}

// Table only allows the listed edges. Self transitions are always legal so
// repeating an update stays idempotent.
type Table struct {
	states
	edges map[string]map[string]struct{}
}

func NewTable(entity core.Entity, order []string, edges map[string][]string) *Table {
	t := &Table{states: newStates(entity, order), edges: make(map[string]map[string]struct{}, len(edges))}
	for from, tos := range edges {
		set := make(map[string]struct{}, len(tos))
		for _, to := range tos {
			set[to] = struct{}{}
		}
		t.edges[from] = set
	}
	return t
}

func (t *Table) CanTransition(from, to string) bool {
	if !t.Valid(from) || !t.Valid(to) {
		return false
	}
	if from == to {
		return true
	}
	_, ok := t.edges[from][to]
	return ok
}

// Targets lists the statuses reachable from from, sorted.
func (t *Table) Targets(from string) []string {
	out := make([]string, 0, len(t.edges[from]))
	for to := range t.edges[from] {
		out = append(out, to)
	}
	sort.Strings(out)
	return out
}

// Check validates a requested change for entity id and returns the
// transition to record. An unknown target is a validation error; a known
// target the machine refuses is a TransitionError.
func Check(m Machine, id core.ID, from, to string, at time.Time) (Transition, error) {
	if err := RequireState(m, to); err != nil {
		return Transition{}, err
	}
	if !m.CanTransition(from, to) {
		return Transition{}, &core.TransitionError{Entity: m.Entity(), ID: id, From: from, To: to}
	}
	return Transition{Entity: m.Entity(), ID: id, From: from, To: to, At: at}, nil
}

// RequireState fails with a ValidationError when status is not in m's enum.
func RequireState(m Machine, status string) error {
	if m.Valid(status) {
		return nil
	}
	return &core.ValidationError{
		Field:  "status",
		Reason: fmt.Sprintf("must be one of %s", strings.Join(m.States(), ", ")),
	}
}
