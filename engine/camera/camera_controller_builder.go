package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithEye seeds the orbit so the camera starts at eye looking at target.
//
// Parameters:
//   - eye: the starting eye position
//   - target: the orbit pivot
//
// Returns:
//   - CameraControllerOption: functional option to seed the orbit
func WithEye(eye, target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.lookFrom(eye, target)
	}
}

// WithRadiusLimits bounds the orbit radius.
//
// Parameters:
//   - lo: the closest the eye may get to the target
//   - hi: the farthest the eye may get from the target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius limits
func WithRadiusLimits(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = lo
		cc.maxRadius = hi
	}
}

// WithMouseSensitivity sets the radians of orbit per pixel of pointer movement.
func WithMouseSensitivity(s float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = s
	}
}

// WithZoomSpeed sets the radius change per scroll unit.
func WithZoomSpeed(s float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = s
	}
}

// WithPanSpeed sets the multiplier applied to pan deltas.
func WithPanSpeed(s float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = s
	}
}
