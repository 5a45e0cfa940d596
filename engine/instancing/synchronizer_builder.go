package instancing

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrLengthMismatch is returned when replacement placements do not match the instance count.
var ErrLengthMismatch = errors.New("instancing: placement count mismatch")

// SynchronizerBuilderOption is a functional option for configuring a Synchronizer.
type SynchronizerBuilderOption func(*synchronizer)

// WithOrigin sets the world position that placement value 0 maps to.
//
// Parameters:
//   - x, y, z: the layout origin in world space
//
// Returns:
//   - SynchronizerBuilderOption: a function that applies the origin to a synchronizer
func WithOrigin(x, y, z float32) SynchronizerBuilderOption {
	return func(s *synchronizer) {
		s.origin = mgl32.Vec3{x, y, z}
	}
}

// WithAxis sets the direction placements are laid out along. The vector is normalized;
// a zero vector keeps the default +X axis.
//
// Parameters:
//   - x, y, z: the layout direction
//
// Returns:
//   - SynchronizerBuilderOption: a function that applies the axis to a synchronizer
func WithAxis(x, y, z float32) SynchronizerBuilderOption {
	return func(s *synchronizer) {
		v := mgl32.Vec3{x, y, z}
		if v.Len() == 0 {
			return
		}
		s.axis = v.Normalize()
	}
}
