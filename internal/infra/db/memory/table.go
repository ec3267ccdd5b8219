// Package memory keeps every entity in process memory. It is the default
// backend for tests and single-node development.
package memory

import (
	"sort"
	"sync"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// table is one entity collection. Rows are stored and returned as clones so
// callers never alias stored state.
type table[T any] struct {
	mu    sync.RWMutex
	seq   core.ID
	rows  map[core.ID]T
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	return &table[T]{rows: make(map[core.ID]T), clone: clone}
}

// insert assigns the next id through prepare and stores a copy of v.
func (t *table[T]) insert(v T, prepare func(T, core.ID)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	prepare(v, t.seq)
	t.rows[t.seq] = t.clone(v)
}

func (t *table[T]) get(id core.ID) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(v), true
}

// list returns matching rows ordered by id.
func (t *table[T]) list(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]core.ID, 0, len(t.rows))
	for id, v := range t.rows {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.clone(t.rows[id]))
	}
	return out
}

// update runs fn on a working copy and commits it only when fn succeeds.
// finish restores immutable fields and refreshes timestamps.
func (t *table[T]) update(id core.ID, fn func(T) error, finish func(prev, next T)) (T, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	prev, ok := t.rows[id]
	if !ok {
		return zero, false, nil
	}
	next := t.clone(prev)
	if err := fn(next); err != nil {
		return zero, true, err
	}
	finish(prev, next)
	t.rows[id] = t.clone(next)
	return next, true, nil
}
