// SPDX-License-Identifier: Apache-2.0

package genref

import (
	"fmt"
	"unsafe"
)

// Field describes one field of struct type S with field type F as an offset
// into S. Field values are cheap, immutable, and meant to be computed once at
// package init by FieldOf; the accessor generator emits one per struct field.
type Field[S, F any] struct {
	offset uintptr
}

// FieldOf derives a Field from a selector like
//
//	FieldOf(func(n *Node) *int { return &n.value })
//
// The selector is probed once against a stack value to learn the field's
// offset; it must return the address of a field directly inside *S. Selectors
// that reach through pointers or return addresses outside S panic here rather
// than producing references that alias unrelated memory.
func FieldOf[S, F any](sel func(*S) *F) Field[S, F] {
	var probe S
	base := uintptr(unsafe.Pointer(&probe))
	addr := uintptr(unsafe.Pointer(sel(&probe)))
	var f F
	if addr < base || addr+unsafe.Sizeof(f) > base+unsafe.Sizeof(probe) {
		panic(fmt.Sprintf("genref: field selector escapes %T", probe))
	}
	return Field[S, F]{offset: addr - base}
}

// Subfield projects a reference to a struct into a reference to one of its
// fields. The result shares the parent's exact liveness gate: it addresses
// the field payload but still validates against the owning slot's generation
// cell, so it can never outlive the parent occupant and never has a lifetime
// of its own.
//
// Liveness is not re-checked here. Projecting a dead reference is allowed and
// yields a dead field reference; the check happens lazily on the result's
// first dereference. The field storage lies inside the parent payload, so the
// computed pointer is valid exactly as long as the slot's storage.
func Subfield[S, F any](r WideRef[S], field Field[S, F]) WideRef[F] {
	var data *F
	if r.data != nil {
		data = (*F)(unsafe.Add(unsafe.Pointer(r.data), field.offset))
	}
	return WideRef[F]{gen: r.gen, slotGen: r.slotGen, data: data}
}
