// SPDX-License-Identifier: Apache-2.0

package genref

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

const defaultChunkSlots = 256

// chunk is one materialized run of slots. Its backing array never moves, so
// slot addresses taken from it are stable until the slab is released.
type chunk[T any] struct {
	slots []slot[T]
}

// slab is the backing storage for an arena's slots: a fixed capacity split
// into chunks that are materialized lazily on first write. Chunk pointers are
// read atomically so that putting into distinct slots from multiple
// goroutines is safe; only materialization itself takes the lock. References
// handed out against a slot keep the chunk memory alive on their own even
// after release, but can never observe a live generation again.
type slab[T any] struct {
	chunks     []atomic.Pointer[chunk[T]]
	chunkSlots int
	capacity   int
	mu         sync.Mutex // guards chunk materialization
}

func (s *slab[T]) init(capacity int) {
	chunkSlots := defaultChunkSlots
	if capacity < chunkSlots {
		chunkSlots = capacity
	}
	numChunks := 0
	if chunkSlots > 0 {
		numChunks = (capacity + chunkSlots - 1) / chunkSlots
	}
	s.chunks = make([]atomic.Pointer[chunk[T]], numChunks)
	s.chunkSlots = chunkSlots
	s.capacity = capacity
}

// at returns the slot at index, materializing its chunk on first touch.
// Callers must have bounds-checked index against capacity.
func (s *slab[T]) at(index int) *slot[T] {
	ci := index / s.chunkSlots
	c := s.chunks[ci].Load()
	if c == nil {
		s.mu.Lock()
		if c = s.chunks[ci].Load(); c == nil {
			c = &chunk[T]{slots: make([]slot[T], s.chunkSlots)}
			s.chunks[ci].Store(c)
		}
		s.mu.Unlock()
	}
	return &c.slots[index%s.chunkSlots]
}

// peek returns the slot at index without materializing anything, or nil if
// the chunk was never touched.
func (s *slab[T]) peek(index int) *slot[T] {
	c := s.chunks[index/s.chunkSlots].Load()
	if c == nil {
		return nil
	}
	return &c.slots[index%s.chunkSlots]
}

// reset empties every materialized slot, keeping the chunk memory for reuse.
func (s *slab[T]) reset() {
	for i := range s.chunks {
		c := s.chunks[i].Load()
		if c == nil {
			continue
		}
		for j := range c.slots {
			if c.slots[j].gen != uint64(genNone) {
				c.slots[j].gen = uint64(genNone)
				var zero T
				c.slots[j].value = zero
			}
		}
	}
}

// release empties every materialized slot and drops the chunks.
func (s *slab[T]) release() {
	s.reset()
	for i := range s.chunks {
		s.chunks[i].Store(nil)
	}
}

// reservedBytes reports the memory held by materialized chunks.
func (s *slab[T]) reservedBytes() int {
	var x slot[T]
	total := 0
	for i := range s.chunks {
		if c := s.chunks[i].Load(); c != nil {
			total += len(c.slots) * int(unsafe.Sizeof(x))
		}
	}
	return total
}

// each calls fn for every materialized slot.
func (s *slab[T]) each(fn func(*slot[T])) {
	for i := range s.chunks {
		c := s.chunks[i].Load()
		if c == nil {
			continue
		}
		for j := range c.slots {
			fn(&c.slots[j])
		}
	}
}
