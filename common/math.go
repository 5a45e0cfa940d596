package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Perspective creates a right-handed perspective projection for WebGPU clip space, where
// depth maps to [0, 1] instead of OpenGL's [-1, 1] produced by mgl32.Perspective.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / math32.Tan(fovY/2.0)
	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// Unproject maps a point in normalized device coordinates (x, y in [-1, 1], z in [0, 1])
// back to world space through an inverse view-projection matrix.
//
// Parameters:
//   - invViewProj: the inverse of the camera's view-projection matrix
//   - ndc: the normalized device coordinate
//
// Returns:
//   - mgl32.Vec3: the world-space point after the perspective divide
func Unproject(invViewProj mgl32.Mat4, ndc mgl32.Vec3) mgl32.Vec3 {
	p := invViewProj.Mul4x1(ndc.Vec4(1))
	if p.W() == 0 {
		return p.Vec3()
	}
	return p.Vec3().Mul(1 / p.W())
}

// ScreenToNDC converts a window pixel position (origin top-left) to normalized device x and y.
//
// Parameters:
//   - px, py: pointer position in pixels
//   - width, height: viewport size in pixels
//
// Returns:
//   - x, y: normalized device coordinates, +y up
func ScreenToNDC(px, py, width, height float32) (x, y float32) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return 2*px/width - 1, 1 - 2*py/height
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
