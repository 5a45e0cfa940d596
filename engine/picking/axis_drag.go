package picking

import "github.com/go-gl/mathgl/mgl32"

// AxisDrag turns pointer rays into positions along a fixed axis. The grab offset between the
// pointer and the dragged instance is preserved, so the instance does not jump on the first move.
type AxisDrag struct {
	axis       mgl32.Vec3
	anchor     mgl32.Vec3
	startValue float32
	startParam float32
	active     bool
}

// NewAxisDrag creates an idle drag along axis. The axis is normalized; a zero axis becomes +X.
//
// Parameters:
//   - axis: the drag direction in world space
//
// Returns:
//   - *AxisDrag: an inactive drag
func NewAxisDrag(axis mgl32.Vec3) *AxisDrag {
	if axis.Len() == 0 {
		axis = mgl32.Vec3{1, 0, 0}
	}
	return &AxisDrag{axis: axis.Normalize()}
}

// Begin starts a drag of an instance whose axis position is value and whose world center is anchor.
//
// Parameters:
//   - r: the pointer ray at drag start
//   - anchor: the dragged instance's world center
//   - value: the instance's current position along the axis
//
// Returns:
//   - bool: false if the ray runs parallel to the axis and no drag was started
func (d *AxisDrag) Begin(r Ray, anchor mgl32.Vec3, value float32) bool {
	t, ok := ClosestAxisParam(r, anchor, d.axis)
	if !ok {
		d.active = false
		return false
	}
	d.anchor = anchor
	d.startValue = value
	d.startParam = t
	d.active = true
	return true
}

// Move returns the axis position implied by the current pointer ray.
//
// Parameters:
//   - r: the current pointer ray
//
// Returns:
//   - float32: the new position along the axis
//   - bool: false if no drag is active or the ray runs parallel to the axis
func (d *AxisDrag) Move(r Ray) (float32, bool) {
	if !d.active {
		return 0, false
	}
	t, ok := ClosestAxisParam(r, d.anchor, d.axis)
	if !ok {
		return 0, false
	}
	return d.startValue + (t - d.startParam), true
}

// End stops the drag.
func (d *AxisDrag) End() {
	d.active = false
}

// Active reports whether a drag is in progress.
func (d *AxisDrag) Active() bool {
	return d.active
}

// Axis returns the normalized drag axis.
func (d *AxisDrag) Axis() mgl32.Vec3 {
	return d.axis
}
