// SPDX-License-Identifier: Apache-2.0

package genref

// slot is one storage cell: a generation tag plus storage for one T. Slots are
// exclusively owned by their arena; only the arena ever rewrites gen.
//
// States, encoded entirely in gen:
//
//	genNone      empty, never holds a value
//	genReserved  allocated but uninitialized (value field is garbage)
//	>= genMin    occupied by a live T under that generation
type slot[T any] struct {
	gen   uint64
	value T
}

func (s *slot[T]) generation() Generation { return Generation(s.gen) }

// clear demotes the slot to allocated-uninitialized, making every reference
// that captured the current generation permanently dead, and zeroes the value
// so the garbage collector can reclaim anything it pointed at.
func (s *slot[T]) clear() {
	s.gen = uint64(genReserved)
	var zero T
	s.value = zero
}
