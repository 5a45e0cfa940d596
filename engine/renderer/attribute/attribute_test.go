package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotMetadata(t *testing.T) {
	assert.Equal(t, "matrix", SlotMatrix.String())
	assert.Equal(t, 16, SlotMatrix.Components())
	assert.Equal(t, uint64(64), SlotMatrix.Stride())

	assert.Equal(t, "hovered", SlotHovered.String())
	assert.Equal(t, 1, SlotHovered.Components())
	assert.Equal(t, uint64(4), SlotHovered.Stride())
}

func TestSlotsOrder(t *testing.T) {
	assert.Equal(t, []Slot{SlotMatrix, SlotHovered}, Slots())
}

func TestParseSlot(t *testing.T) {
	for _, s := range Slots() {
		got, err := ParseSlot(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseSlot("color")
	assert.Error(t, err)
}

func TestInvalidSlot(t *testing.T) {
	bad := Slot(42)
	assert.False(t, bad.Valid())
	assert.Equal(t, 0, bad.Components())
	assert.Equal(t, "Slot(42)", bad.String())
}
