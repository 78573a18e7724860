// SPDX-License-Identifier: Apache-2.0

package genref

import (
	"sync"
	"weak"
)

// Pool provides a thread-safe pool of arenas for allocation-heavy phases that
// build and tear down whole object graphs repeatedly.
//
// Pooled arenas are held through weak pointers, so the GC can collect them at
// any time: before handing an item out we upgrade the weak pointer to a strong
// one, and on Release the arena is reset (invalidating every outstanding
// reference) and parked behind a weak pointer again. The GC thereby manages
// the pool size according to memory pressure on its own.
type Pool[T any] struct {
	pool  []weak.Pointer[PoolItem[T]]
	sizes map[uint64]*poolItemSize
	mu    sync.Mutex
}

// poolItemSize tracks the required slot count across the last 50 arenas
// released under one key.
type poolItemSize struct {
	count      int
	totalSlots int
}

// PoolItem wraps a pooled arena together with the use-case key it was
// acquired under.
type PoolItem[T any] struct {
	Arena *Arena[T]
	Key   uint64
}

// NewPool creates a new arena pool.
func NewPool[T any]() *Pool[T] {
	return &Pool[T]{
		sizes: make(map[uint64]*poolItemSize),
	}
}

// Acquire gets an arena from the pool or creates a new one if none are
// available. The key identifies a use case; recorded high-water usage per key
// sizes freshly created arenas.
func (p *Pool[T]) Acquire(key uint64) *PoolItem[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Try to find an available arena in the pool
	for len(p.pool) > 0 {
		lastIdx := len(p.pool) - 1
		wp := p.pool[lastIdx]
		p.pool = p.pool[:lastIdx]

		v := wp.Value()
		if v != nil {
			v.Key = key
			return v
		}
		// If weak pointer was nil (GC collected), continue to next item
	}

	// No arena available, create a new one
	return &PoolItem[T]{
		Arena: New[T](p.arenaSlots(key)),
		Key:   key,
	}
}

// Release resets the arena, permanently invalidating every reference issued
// from it, and returns it to the pool for reuse. The high-water slot usage is
// recorded to size future arenas for this use case.
func (p *Pool[T]) Release(item *PoolItem[T]) {
	peak := item.Arena.Peak()
	item.Arena.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.recordSize(item.Key, peak)
	item.Key = 0

	w := weak.Make(item)
	p.pool = append(p.pool, w)
}

// ReleaseMany releases a batch of items under one lock acquisition.
func (p *Pool[T]) ReleaseMany(items []*PoolItem[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, item := range items {
		peak := item.Arena.Peak()
		item.Arena.Reset()

		p.recordSize(item.Key, peak)
		item.Key = 0

		w := weak.Make(item)
		p.pool = append(p.pool, w)
	}
}

func (p *Pool[T]) recordSize(key uint64, peak int) {
	if size, ok := p.sizes[key]; ok {
		if size.count == 50 {
			size.count = 1
			size.totalSlots = size.totalSlots / 50
		}
		size.count++
		size.totalSlots += peak
	} else {
		p.sizes[key] = &poolItemSize{
			count:      1,
			totalSlots: peak,
		}
	}
}

// arenaSlots returns the slot capacity for a fresh arena under the given key.
// If no usage is recorded, it defaults to defaultPoolSlots.
func (p *Pool[T]) arenaSlots(key uint64) int {
	if size, ok := p.sizes[key]; ok {
		if n := size.totalSlots / size.count; n > 0 {
			return n
		}
	}
	return defaultPoolSlots
}

const defaultPoolSlots = 1024
