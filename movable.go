// SPDX-License-Identifier: Apache-2.0

package genref

import (
	"sync"
)

// MovableRef is a reference whose payload locator is itself mutable, for
// values that may relocate within storage that outlives them. Whoever moves
// the value repairs the reference by rewriting only the locator; the liveness
// gate stays pinned to the owning slot's generation cell throughout.
//
// Unlike Ref and WideRef, a MovableRef is handled by pointer so that every
// holder observes locator rewrites.
type MovableRef[T any] struct {
	gen     Generation
	slotGen *uint64
	data    *T
	table   *RelocationTable[T]
}

// IsAlive reports whether the owning slot still holds the captured generation.
func (m *MovableRef[T]) IsAlive() bool {
	return m.slotGen != nil && Generation(*m.slotGen) == m.gen
}

// Relocate records the payload's new location after the caller has moved the
// value. If the reference is bound to a relocation table the table is updated
// too, so repair lookups observe the move.
func (m *MovableRef[T]) Relocate(data *T) {
	m.data = data
	if m.table != nil {
		m.table.record(m.gen, data)
	}
}

// ForceResolve returns the currently recorded payload location
// unconditionally, even if the reference is dead or the location is stale.
// Callers take on the full aliasing burden; this is the escape hatch for
// relocation machinery itself.
func (m *MovableRef[T]) ForceResolve() *T {
	return m.data
}

// RepairResolve returns the payload's current location, re-deriving it from
// the bound relocation table when the recorded one is stale.
//
// On a dead reference it reports ErrDangling. Without a bound table there is
// nothing to re-derive from and it reports ErrRepairUnsupported instead of
// guessing; automatic staleness discovery beyond the table is an open
// extension point.
func (m *MovableRef[T]) RepairResolve() (*T, error) {
	if !m.IsAlive() {
		return nil, ErrDangling
	}
	if m.table == nil {
		return nil, ErrRepairUnsupported
	}
	data, ok := m.table.lookup(m.gen)
	if !ok {
		// Alive but never recorded: the captured locator is authoritative.
		return m.data, nil
	}
	m.data = data
	return data, nil
}

// Bind attaches a relocation table. Subsequent Relocate calls publish into
// it and RepairResolve re-derives from it.
func (m *MovableRef[T]) Bind(table *RelocationTable[T]) {
	m.table = table
	if m.data != nil {
		table.record(m.gen, m.data)
	}
}

// RelocationTable maps generations to the current payload location of the
// value minted under them. Movers record every relocation; movable references
// bound to the table use it to repair themselves. Registration and lookup are
// guarded by one mutex, mirroring the arena's generation side index.
type RelocationTable[T any] struct {
	mu sync.Mutex
	m  map[Generation]*T
}

// NewRelocationTable creates an empty relocation table.
func NewRelocationTable[T any]() *RelocationTable[T] {
	return &RelocationTable[T]{m: make(map[Generation]*T)}
}

func (t *RelocationTable[T]) record(gen Generation, data *T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[gen] = data
}

func (t *RelocationTable[T]) lookup(gen Generation) (*T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.m[gen]
	return p, ok
}

// Forget drops the entry for gen, typically when the value is destroyed.
func (t *RelocationTable[T]) Forget(gen Generation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, gen)
}
