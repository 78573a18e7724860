// SPDX-License-Identifier: Apache-2.0

package genref

import (
	"sync"
)

// genIndex maps live generations to slot positions. It exists for two
// consumers: duplicate detection in PutWithGen, and relocation lookups for
// movable references. Only registration and removal take the lock; the slot
// read/write path never touches the index and is deliberately unsynchronized.
type genIndex struct {
	mu sync.Mutex
	m  map[Generation]int
}

func newGenIndex() *genIndex {
	return &genIndex{m: make(map[Generation]int)}
}

// register records gen as live at slot index. Registering a generation that
// is still live elsewhere is a GenerationCollisionError panic: with a correct
// allocator this cannot happen, so it always indicates a fabricated or reused
// generation value. Entries whose slot has since moved on (the slot's current
// generation no longer matches the key) are stale, not collisions, and are
// overwritten.
func (ix *genIndex) register(gen Generation, index int, stale func(Generation, int) bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if prev, ok := ix.m[gen]; ok && !stale(gen, prev) {
		panic(&GenerationCollisionError{Gen: gen, Slot: prev})
	}
	ix.m[gen] = index
}

func (ix *genIndex) unregister(gen Generation) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.m, gen)
}

func (ix *genIndex) lookup(gen Generation) (int, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	i, ok := ix.m[gen]
	return i, ok
}

func (ix *genIndex) clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.m = make(map[Generation]int)
}
