// SPDX-License-Identifier: Apache-2.0

package genref

// Ref is a liveness-checked handle to a slot's payload. It owns nothing: every
// access re-validates the handle by comparing the generation captured at
// creation against the slot's current generation. Once they diverge the
// reference is dead forever; a later Put on the same slot mints a distinct
// reference under a new generation.
//
// The direct entry points (Get, Read, Write, Destroy) panic on a dead
// reference and are the fast path for callers that know better. The Try
// variants report absence instead. Copies of a Ref are all equally valid;
// there is nothing to release.
type Ref[T any] struct {
	gen  Generation
	slot *slot[T]
}

// Gen returns the generation captured when the reference was minted.
func (r Ref[T]) Gen() Generation { return r.gen }

// IsAlive reports whether the reference still addresses its original
// occupant. It has no side effects and is safe on a dead or zero reference.
func (r Ref[T]) IsAlive() bool {
	return r.slot != nil && r.slot.generation() == r.gen
}

// TryGet returns a pointer to the payload, or false if the reference is dead.
// The pointer stays valid as Go memory but must not be used after the slot is
// cleared or reused; re-check liveness across any operation that could do so.
func (r Ref[T]) TryGet() (*T, bool) {
	if !r.IsAlive() {
		return nil, false
	}
	return &r.slot.value, true
}

// Get is TryGet that panics on a dead reference.
func (r Ref[T]) Get() *T {
	p, ok := r.TryGet()
	if !ok {
		panic(ErrDangling)
	}
	return p
}

// TryRead returns a copy of the payload, or false if the reference is dead.
func (r Ref[T]) TryRead() (T, bool) {
	if p, ok := r.TryGet(); ok {
		return *p, true
	}
	var zero T
	return zero, false
}

// Read is TryRead that panics on a dead reference.
func (r Ref[T]) Read() T {
	v, ok := r.TryRead()
	if !ok {
		panic(ErrDangling)
	}
	return v
}

// TryWrite replaces the payload and returns the prior value, or false if the
// reference is dead. The slot's generation is untouched: the reference and
// every copy of it stay live.
func (r Ref[T]) TryWrite(value T) (T, bool) {
	p, ok := r.TryGet()
	if !ok {
		var zero T
		return zero, false
	}
	prev := *p
	*p = value
	return prev, true
}

// Write is TryWrite that panics on a dead reference.
func (r Ref[T]) Write(value T) T {
	prev, ok := r.TryWrite(value)
	if !ok {
		panic(ErrDangling)
	}
	return prev
}

// Take removes and returns the payload, leaving the slot
// allocated-uninitialized. Every reference sharing this generation (including
// r itself) is dead afterwards. Returns false if the reference is already
// dead.
func (r Ref[T]) Take() (T, bool) {
	if !r.IsAlive() {
		var zero T
		return zero, false
	}
	v := r.slot.value
	r.slot.clear()
	return v, true
}

// TryDestroy drops the payload in place, leaving the slot
// allocated-uninitialized, and reports whether it did. Calling it on an
// already-dead reference is a no-op returning false, never a double drop.
func (r Ref[T]) TryDestroy() bool {
	if !r.IsAlive() {
		return false
	}
	r.slot.clear()
	return true
}

// Destroy is TryDestroy that panics on a dead reference.
func (r Ref[T]) Destroy() {
	if !r.TryDestroy() {
		panic(ErrDangling)
	}
}

// Wide converts the reference into its field-projecting form. The wide
// reference checks liveness against the same slot; if r was minted against a
// slot that is no longer occupied, the result carries a generation that can
// never be live.
func (r Ref[T]) Wide() WideRef[T] {
	if r.slot == nil {
		return WideRef[T]{gen: genNever}
	}
	gen := r.gen
	if !gen.occupied() {
		gen = genNever
	}
	return WideRef[T]{gen: gen, slotGen: &r.slot.gen, data: &r.slot.value}
}
