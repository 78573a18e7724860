// SPDX-License-Identifier: Apache-2.0

package genref

import (
	"errors"
	"fmt"
)

var (
	// ErrDangling is reported when an access-class operation is attempted on a
	// reference whose captured generation no longer matches its slot.
	// Liveness failures are permanent: a dead reference never becomes live again.
	ErrDangling = errors.New("genref: dangling reference")

	// ErrRepairUnsupported is reported by MovableRef.RepairResolve when the
	// reference has no relocation table to re-derive its payload location from.
	ErrRepairUnsupported = errors.New("genref: movable reference repair requires a relocation table")
)

// GenerationCollisionError is the panic value raised when a generation is
// registered twice in an arena's side index. A correct allocator makes this
// structurally impossible; seeing it means a caller fabricated or reused a
// generation value.
type GenerationCollisionError struct {
	Gen  Generation
	Slot int
}

func (e *GenerationCollisionError) Error() string {
	return fmt.Sprintf("genref: generation %d already registered for slot %d", e.Gen, e.Slot)
}

func panicOutOfRange(index, capacity int) {
	panic(fmt.Sprintf("genref: slot index %d out of range [0, %d)", index, capacity))
}
