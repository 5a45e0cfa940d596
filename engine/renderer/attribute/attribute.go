// Package attribute enumerates the per-instance vertex attribute slots shared by the
// instance buffer producers and the WGSL shader metadata. Slot names are the only strings
// that ever cross between the two; everything else is keyed by Slot.
package attribute

import "fmt"

// Slot identifies one per-instance attribute buffer.
type Slot int

const (
	// SlotMatrix holds one column-major 4x4 world transform per instance.
	SlotMatrix Slot = iota

	// SlotHovered holds one float highlight flag per instance (1 = hovered).
	SlotHovered

	slotCount
)

// bytesPerComponent is the size of one float32 component.
const bytesPerComponent = 4

var slotNames = [slotCount]string{
	SlotMatrix:  "matrix",
	SlotHovered: "hovered",
}

var slotComponents = [slotCount]int{
	SlotMatrix:  16,
	SlotHovered: 1,
}

// Slots returns every slot in vertex buffer order.
//
// Returns:
//   - []Slot: all known slots, ordered by their enum value
func Slots() []Slot {
	out := make([]Slot, 0, slotCount)
	for s := Slot(0); s < slotCount; s++ {
		out = append(out, s)
	}
	return out
}

// ParseSlot resolves a shader-side slot name (as written in an @oxy:instance annotation).
//
// Parameters:
//   - name: the slot name, e.g. "matrix"
//
// Returns:
//   - Slot: the matching slot
//   - error: an error if the name does not match a known slot
func ParseSlot(name string) (Slot, error) {
	for s, n := range slotNames {
		if n == name {
			return Slot(s), nil
		}
	}
	return 0, fmt.Errorf("attribute: unknown instance slot %q", name)
}

// Valid reports whether s is one of the enumerated slots.
func (s Slot) Valid() bool {
	return s >= 0 && s < slotCount
}

// String returns the slot's shader-side name.
func (s Slot) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// Components returns the number of float32 components written per instance.
func (s Slot) Components() int {
	if !s.Valid() {
		return 0
	}
	return slotComponents[s]
}

// Stride returns the per-instance byte stride of the slot's vertex buffer.
func (s Slot) Stride() uint64 {
	return uint64(s.Components() * bytesPerComponent)
}
