// SPDX-License-Identifier: Apache-2.0

// Package genref implements a generational-reference memory model: arena-backed
// slots whose handles carry a generation tag, so that using a handle after its
// backing slot has been cleared or reused is detected instead of silently
// reading reused memory. Cyclic and self-referential structures (doubly linked
// lists, graphs) become pairs of liveness-checked handles with no reference
// counting and no tracing collector.
package genref

import (
	"sync/atomic"
)

// Generation is a monotonically increasing tag distinguishing successive
// occupants of the same slot. The zero value always means "no initialized
// value"; a reference carrying it can never be live.
type Generation uint64

const (
	// genNone marks an empty slot. No read or write is ever issued against it.
	genNone = Generation(0)
	// genReserved marks a slot that is allocated but holds no initialized value.
	genReserved = Generation(1)
	// genNever is carried by references minted from a slot that was not
	// occupied at capture time. It compares live against no slot.
	genNever = Generation(2)
	// genMin is the first allocator-issued generation.
	genMin = Generation(3)
)

func (g Generation) occupied() bool { return g >= genMin }

// Allocator issues generation tags. Every call returns a value strictly
// greater than any value previously returned by the same allocator, and never
// one of the reserved sentinels below genMin.
type Allocator interface {
	Next() Generation
}

// NewAllocator returns an allocator backed by a single atomic counter, safe to
// share across goroutines. Generation allocation order is a valid logical
// timestamp within one allocator; no ordering exists across allocators.
func NewAllocator() Allocator {
	a := &atomicAllocator{}
	a.next.Store(uint64(genMin) - 1)
	return a
}

type atomicAllocator struct {
	next atomic.Uint64
}

func (a *atomicAllocator) Next() Generation {
	g := Generation(a.next.Add(1))
	if g < genMin {
		// The counter wrapped. At one allocation per nanosecond this takes
		// centuries, so treat it as a defect rather than defining reuse.
		panic("genref: generation counter exhausted")
	}
	return g
}

// defaultAllocator backs every arena that is not given its own allocator via
// WithAllocator. Sharing one counter keeps generations unique process-wide,
// which the side index relies on.
var defaultAllocator = NewAllocator()
