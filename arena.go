// SPDX-License-Identifier: Apache-2.0

package genref

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Arena owns an indexed collection of slots and is the only component allowed
// to create, overwrite, or reclaim slot storage. References handed out by an
// arena never own anything; destroying the arena immediately and irrevocably
// invalidates every reference derived from it.
//
// Generation registration and removal go through a mutex-guarded side index;
// the value read/write path itself is not synchronized. Concurrent mutation of
// one slot's value from multiple goroutines is outside the contract and must
// be serialized by the caller.
type Arena[T any] struct {
	slab   slab[T]
	alloc  Allocator
	index  *genIndex
	logger *slog.Logger
	peak   atomic.Int64 // high-water slot index + 1, used for pool sizing
}

// Option configures an Arena.
type Option[T any] func(*Arena[T])

// WithAllocator sets the generation allocator. Arenas that should not share
// the process-wide counter get their own allocator here; the caller then owns
// the "one allocator per sharing domain" contract.
func WithAllocator[T any](alloc Allocator) Option[T] {
	return func(a *Arena[T]) {
		a.alloc = alloc
	}
}

// WithLogger sets a logger for arena lifecycle events, emitted at Debug level.
// Without it the arena is silent.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(a *Arena[T]) {
		a.logger = logger
	}
}

// New creates an arena with the given number of empty slots. Slot storage is
// materialized lazily in chunks on first touch and owned by the arena until
// Dealloc.
func New[T any](capacity int, opts ...Option[T]) *Arena[T] {
	if capacity < 0 {
		panic(fmt.Sprintf("genref: negative arena capacity %d", capacity))
	}
	a := &Arena[T]{
		alloc: defaultAllocator,
		index: newGenIndex(),
	}
	a.slab.init(capacity)
	for _, opt := range opts {
		opt(a)
	}
	if a.logger != nil {
		a.logger.Debug("arena created", "capacity", capacity)
	}
	return a
}

// Put writes value into the slot at index under a freshly allocated
// generation, dropping any prior occupant, and returns a live reference.
// Every reference previously minted against this slot is dead afterwards.
// An out-of-range index is a programmer error and panics.
func (a *Arena[T]) Put(index int, value T) Ref[T] {
	return a.putWithGen(index, a.alloc.Next(), value)
}

// PutWithGen is Put with a caller-supplied generation, for callers that keep
// their own generation bookkeeping. The generation must come from a conforming
// allocator: reserved sentinel values and generations still registered for a
// live occupant panic.
func (a *Arena[T]) PutWithGen(index int, gen Generation, value T) Ref[T] {
	if !gen.occupied() {
		panic(fmt.Sprintf("genref: generation %d is reserved", gen))
	}
	return a.putWithGen(index, gen, value)
}

func (a *Arena[T]) putWithGen(index int, gen Generation, value T) Ref[T] {
	if index < 0 || index >= a.slab.capacity {
		panicOutOfRange(index, a.slab.capacity)
	}
	a.index.register(gen, index, a.registrationStale)
	s := a.slab.at(index)
	if prev := s.generation(); prev.occupied() {
		a.index.unregister(prev)
	}
	s.value = value
	s.gen = uint64(gen)
	for {
		peak := a.peak.Load()
		if int64(index+1) <= peak || a.peak.CompareAndSwap(peak, int64(index+1)) {
			break
		}
	}
	return Ref[T]{gen: gen, slot: s}
}

// registrationStale reports whether an existing index entry no longer
// describes a live occupant, which makes overwriting it legitimate rather
// than a generation collision.
func (a *Arena[T]) registrationStale(gen Generation, index int) bool {
	s := a.slab.peek(index)
	return s == nil || s.generation() != gen
}

// Take removes and returns the occupant of the slot at index, leaving the
// slot allocated-uninitialized. Outstanding references to the removed value
// become permanently dead. Returns false if the slot holds no value.
func (a *Arena[T]) Take(index int) (T, bool) {
	if index < 0 || index >= a.slab.capacity {
		panicOutOfRange(index, a.slab.capacity)
	}
	var zero T
	s := a.slab.peek(index)
	if s == nil || !s.generation().occupied() {
		return zero, false
	}
	a.index.unregister(s.generation())
	v := s.value
	s.clear()
	return v, true
}

// TryGet returns a fresh live reference to the occupant of the slot at index,
// or false if the slot holds no value.
func (a *Arena[T]) TryGet(index int) (Ref[T], bool) {
	if index < 0 || index >= a.slab.capacity {
		panicOutOfRange(index, a.slab.capacity)
	}
	s := a.slab.peek(index)
	if s == nil || !s.generation().occupied() {
		return Ref[T]{}, false
	}
	return Ref[T]{gen: s.generation(), slot: s}, true
}

// Get is TryGet for callers that know the slot is occupied; it panics on an
// empty slot.
func (a *Arena[T]) Get(index int) Ref[T] {
	r, ok := a.TryGet(index)
	if !ok {
		panic(fmt.Sprintf("genref: no value in slot %d", index))
	}
	return r
}

// Reset drops every occupant but keeps the slot storage for reuse. All
// references issued so far become permanently dead; the next Put mints new
// generations, so pooled reuse can never resurrect an old reference.
func (a *Arena[T]) Reset() {
	a.index.clear()
	a.slab.reset()
	if a.logger != nil {
		a.logger.Debug("arena reset", "capacity", a.slab.capacity)
	}
}

// Dealloc drops every occupant and releases the backing storage. All
// references issued from this arena become permanently dead. The arena itself
// must not be used afterwards.
func (a *Arena[T]) Dealloc() {
	a.index.clear()
	a.slab.release()
	if a.logger != nil {
		a.logger.Debug("arena deallocated", "capacity", a.slab.capacity)
	}
}

// Cap returns the number of slots.
func (a *Arena[T]) Cap() int {
	return a.slab.capacity
}

// Len returns the number of occupied slots.
func (a *Arena[T]) Len() int {
	n := 0
	a.slab.each(func(s *slot[T]) {
		if s.generation().occupied() {
			n++
		}
	})
	return n
}

// Peak returns the high-water slot index ever written, plus one. It is not
// reset by Reset, so pools can size future arenas from actual usage.
func (a *Arena[T]) Peak() int {
	return int(a.peak.Load())
}

// Stats describes an arena's current usage.
type Stats struct {
	Capacity      int
	Live          int
	Peak          int
	BytesReserved int
}

// Stats returns the current usage counters.
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Capacity:      a.slab.capacity,
		Live:          a.Len(),
		Peak:          a.Peak(),
		BytesReserved: a.slab.reservedBytes(),
	}
}

func (a *Arena[T]) String() string {
	st := a.Stats()
	return fmt.Sprintf("genref.Arena{slots: %d/%d, peak: %d, reserved: %s}",
		st.Live, st.Capacity, st.Peak, humanize.Bytes(uint64(st.BytesReserved)))
}
