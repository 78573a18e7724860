// SPDX-License-Identifier: Apache-2.0

package genref

// WideRef is the field-projecting reference form. It splits the locator used
// for the liveness check from the locator of the actual payload: slotGen
// always points at the owning slot's generation cell, while data may point at
// a sub-field nested inside the slot's value. That split is what makes safe
// field-level access possible without a per-field generation — a projected
// field reference lives and dies with its parent slot, never independently.
type WideRef[T any] struct {
	gen     Generation
	slotGen *uint64
	data    *T
}

// Gen returns the generation the reference validates against.
func (w WideRef[T]) Gen() Generation { return w.gen }

// IsAlive reports whether the owning slot still holds the generation this
// reference captured. Safe on a dead or zero reference.
func (w WideRef[T]) IsAlive() bool {
	return w.slotGen != nil && Generation(*w.slotGen) == w.gen
}

// TryGet returns the payload pointer, or false if the reference is dead.
func (w WideRef[T]) TryGet() (*T, bool) {
	if !w.IsAlive() {
		return nil, false
	}
	return w.data, true
}

// Get is TryGet that panics on a dead reference.
func (w WideRef[T]) Get() *T {
	p, ok := w.TryGet()
	if !ok {
		panic(ErrDangling)
	}
	return p
}

// TryRead returns a copy of the payload, or false if the reference is dead.
func (w WideRef[T]) TryRead() (T, bool) {
	if p, ok := w.TryGet(); ok {
		return *p, true
	}
	var zero T
	return zero, false
}

// Read is TryRead that panics on a dead reference.
func (w WideRef[T]) Read() T {
	v, ok := w.TryRead()
	if !ok {
		panic(ErrDangling)
	}
	return v
}

// TryWrite replaces the payload and returns the prior value, or false if the
// reference is dead.
func (w WideRef[T]) TryWrite(value T) (T, bool) {
	p, ok := w.TryGet()
	if !ok {
		var zero T
		return zero, false
	}
	prev := *p
	*p = value
	return prev, true
}

// Write is TryWrite that panics on a dead reference.
func (w WideRef[T]) Write(value T) T {
	prev, ok := w.TryWrite(value)
	if !ok {
		panic(ErrDangling)
	}
	return prev
}

// killSlot terminates the liveness of the entire owning slot by zeroing its
// generation cell, even when w addresses only a sub-field. Every reference
// into the slot dies at once and the slot reads as empty until its arena
// writes it again. Deliberately unexported: a field-level handle that can end
// its whole parent is for trusted internal use only.
func (w WideRef[T]) killSlot() bool {
	if !w.IsAlive() {
		return false
	}
	*w.slotGen = uint64(genNone)
	return true
}

// Movable converts the reference into its relocatable form, which shares the
// same liveness gate but records a payload location that can be rewritten.
func (w WideRef[T]) Movable() *MovableRef[T] {
	return &MovableRef[T]{gen: w.gen, slotGen: w.slotGen, data: w.data}
}
