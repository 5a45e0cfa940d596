package game_object

import "github.com/go-gl/mathgl/mgl32"

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is drawn.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithPickable marks the GameObject as the target of pointer hover and drag.
//
// Parameters:
//   - pickable: true to enable picking
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Pickable flag
func WithPickable(pickable bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.pickable = pickable
	}
}

// WithPlacements sets the initial placement list, one instance per value. The list is copied.
//
// Parameters:
//   - placements: scalar positions along the layout axis
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the placements
func WithPlacements(placements ...float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.placements = append([]float32(nil), placements...)
	}
}

// WithOrigin sets the world position that placement 0 maps to.
//
// Parameters:
//   - x, y, z: the layout origin
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the origin
func WithOrigin(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.origin = mgl32.Vec3{x, y, z}
	}
}

// WithAxis sets the direction placements are laid out along. The axis is normalized, so a
// placement value is a distance in world units whatever the length passed here.
//
// Parameters:
//   - x, y, z: the layout direction; a zero vector keeps the default +X
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the axis
func WithAxis(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.axis = mgl32.Vec3{x, y, z}
	}
}
