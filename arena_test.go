// SPDX-License-Identifier: Apache-2.0

package genref

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestArenaPutGetRoundTrip(t *testing.T) {
	arena := New[int](4)

	r := arena.Put(0, 42)
	require.True(t, r.IsAlive())
	require.Equal(t, 42, r.Read())

	got := arena.Get(0)
	require.True(t, got.IsAlive())
	require.Equal(t, 42, got.Read())
}

func TestArenaTryGetEmpty(t *testing.T) {
	arena := New[int](4)

	_, ok := arena.TryGet(0)
	require.False(t, ok)

	arena.Put(1, 7)
	r, ok := arena.TryGet(1)
	require.True(t, ok)
	require.Equal(t, 7, r.Read())
}

func TestArenaGetEmptyPanics(t *testing.T) {
	arena := New[int](4)
	require.Panics(t, func() {
		arena.Get(2)
	})
}

func TestArenaIndexOutOfRangePanics(t *testing.T) {
	arena := New[int](3)

	require.Panics(t, func() { arena.Put(3, 1) })
	require.Panics(t, func() { arena.Put(-1, 1) })
	require.Panics(t, func() { arena.Take(3) })
	require.Panics(t, func() { _, _ = arena.TryGet(3) })
}

func TestArenaTake(t *testing.T) {
	arena := New[string](2)

	r := arena.Put(0, "hello")
	v, ok := arena.Take(0)
	require.True(t, ok)
	require.Equal(t, "hello", v)
	require.False(t, r.IsAlive())

	// Already empty
	_, ok = arena.Take(0)
	require.False(t, ok)

	// Untouched slot
	_, ok = arena.Take(1)
	require.False(t, ok)
}

func TestArenaPutReplacesOccupant(t *testing.T) {
	arena := New[int](1)

	r1 := arena.Put(0, 1)
	r2 := arena.Put(0, 2)

	require.False(t, r1.IsAlive())
	require.True(t, r2.IsAlive())
	require.Equal(t, 2, r2.Read())
	require.NotEqual(t, r1.Gen(), r2.Gen())
}

func TestArenaPutWithGen(t *testing.T) {
	arena := New[int](4)
	alloc := NewAllocator()

	gen := alloc.Next()
	r := arena.PutWithGen(0, gen, 10)
	require.True(t, r.IsAlive())
	require.Equal(t, gen, r.Gen())
}

func TestArenaPutWithGenCollisionPanics(t *testing.T) {
	arena := New[int](4)
	alloc := NewAllocator()

	gen := alloc.Next()
	arena.PutWithGen(0, gen, 10)
	require.Panics(t, func() {
		arena.PutWithGen(1, gen, 11)
	})
}

func TestArenaPutWithGenStaleEntryIsNotCollision(t *testing.T) {
	arena := New[int](4)
	alloc := NewAllocator()

	gen := alloc.Next()
	arena.PutWithGen(0, gen, 10)
	_, ok := arena.Take(0)
	require.True(t, ok)

	// gen is no longer live anywhere, re-registering it must succeed.
	r := arena.PutWithGen(1, gen, 11)
	require.True(t, r.IsAlive())
}

func TestArenaPutWithGenReservedPanics(t *testing.T) {
	arena := New[int](4)

	require.Panics(t, func() { arena.PutWithGen(0, 0, 1) })
	require.Panics(t, func() { arena.PutWithGen(0, 1, 1) })
	require.Panics(t, func() { arena.PutWithGen(0, 2, 1) })
}

func TestArenaDealloc(t *testing.T) {
	arena := New[int](3)

	r0 := arena.Put(0, 1)
	r1 := arena.Put(1, 2)

	arena.Dealloc()

	require.False(t, r0.IsAlive())
	require.False(t, r1.IsAlive())
	_, ok := r0.TryRead()
	require.False(t, ok)
}

func TestArenaReset(t *testing.T) {
	arena := New[int](3)

	r := arena.Put(0, 1)
	arena.Reset()
	require.False(t, r.IsAlive())
	require.Equal(t, 0, arena.Len())

	// Storage is reusable and mints fresh references.
	r2 := arena.Put(0, 5)
	require.True(t, r2.IsAlive())
	require.False(t, r.IsAlive())
	require.NotEqual(t, r.Gen(), r2.Gen())
}

func TestArenaLenCapPeak(t *testing.T) {
	arena := New[int](8)
	require.Equal(t, 0, arena.Len())
	require.Equal(t, 8, arena.Cap())
	require.Equal(t, 0, arena.Peak())

	arena.Put(0, 1)
	arena.Put(5, 2)
	require.Equal(t, 2, arena.Len())
	require.Equal(t, 6, arena.Peak())

	arena.Take(5)
	require.Equal(t, 1, arena.Len())
	// Peak survives removals and resets.
	arena.Reset()
	require.Equal(t, 6, arena.Peak())
}

func TestArenaLazyChunks(t *testing.T) {
	arena := New[int](defaultChunkSlots * 4)
	require.Equal(t, 0, arena.Stats().BytesReserved)

	arena.Put(0, 1)
	first := arena.Stats().BytesReserved
	require.Greater(t, first, 0)

	// Touching a slot in a later chunk materializes only that chunk.
	arena.Put(defaultChunkSlots*3, 2)
	require.Equal(t, 2*first, arena.Stats().BytesReserved)
}

func TestArenaString(t *testing.T) {
	arena := New[int](4)
	arena.Put(0, 1)
	s := arena.String()
	require.True(t, strings.HasPrefix(s, "genref.Arena{"), s)
	require.Contains(t, s, "1/4")
}

func TestArenaNegativeCapacityPanics(t *testing.T) {
	require.Panics(t, func() {
		New[int](-1)
	})
}

func TestArenaConcurrentPutDistinctSlots(t *testing.T) {
	const slots = 64
	arena := New[int](slots)

	var eg errgroup.Group
	for i := 0; i < slots; i++ {
		eg.Go(func() error {
			arena.Put(i, i)
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	require.Equal(t, slots, arena.Len())
	for i := 0; i < slots; i++ {
		require.Equal(t, i, arena.Get(i).Read())
	}
}
