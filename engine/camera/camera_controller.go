package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns the eye and target of a camera. It orbits the eye around the target
// on a sphere and pans both along the camera's local axes.
type CameraController interface {
	// Position returns the eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space eye position
	Position() mgl32.Vec3

	// Target returns the orbit pivot the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space target
	Target() mgl32.Vec3

	// SetTarget moves the pivot, keeping radius and angles.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target mgl32.Vec3)

	// LookFrom re-seeds radius, azimuth and elevation so the eye sits at eye looking at target.
	//
	// Parameters:
	//   - eye: the eye position
	//   - target: the pivot
	LookFrom(eye, target mgl32.Vec3)

	// Orbit rotates the eye around the target by a pointer delta in pixels, scaled by the
	// mouse sensitivity. Positive dx increases the azimuth, positive dy raises the eye.
	//
	// Parameters:
	//   - dx, dy: pointer movement in pixels
	Orbit(dx, dy float32)

	// Zoom moves the eye toward the target by delta scaled by the zoom speed, clamped to the
	// radius limits.
	//
	// Parameters:
	//   - delta: positive zooms in
	Zoom(delta float32)

	// PanRight moves eye and target along the camera's right axis.
	//
	// Parameters:
	//   - delta: distance in world units before the pan speed is applied
	PanRight(delta float32)

	// PanUp moves eye and target along the camera's up axis.
	//
	// Parameters:
	//   - delta: distance in world units before the pan speed is applied
	PanUp(delta float32)

	// PanForward moves eye and target along the view direction.
	//
	// Parameters:
	//   - delta: distance in world units before the pan speed is applied
	PanForward(delta float32)

	Radius() float32
	Azimuth() float32
	Elevation() float32
	MouseSensitivity() float32
	SetMouseSensitivity(s float32)
	ZoomSpeed() float32
	SetZoomSpeed(s float32)
}
