// Package picking resolves pointer rays against thin-instanced spheres and projects
// pointer movement onto a drag axis.
package picking

import (
	"github.com/Carmen-Shannon/oxy-canvas/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NoHit is returned by Pick when the ray misses every instance.
const NoHit = -1

// parallelEpsilon bounds the line-line denominator below which two lines count as parallel.
const parallelEpsilon = 1e-6

// Ray is a half-line in world space. Dir is unit length when built with NewRay.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// NewRay builds a ray with a normalized direction.
//
// Parameters:
//   - origin: the ray origin
//   - dir: the ray direction, any non-zero length
//
// Returns:
//   - Ray: the ray with unit direction
func NewRay(origin, dir mgl32.Vec3) Ray {
	if dir.Len() == 0 {
		return Ray{Origin: origin}
	}
	return Ray{Origin: origin, Dir: dir.Normalize()}
}

// ScreenRay builds a pick ray from a pointer position by unprojecting it onto the near and
// far planes of the camera.
//
// Parameters:
//   - invViewProj: the inverse camera view-projection matrix
//   - px, py: pointer position in pixels, origin top-left
//   - width, height: viewport size in pixels
//
// Returns:
//   - Ray: a world-space ray starting on the near plane
func ScreenRay(invViewProj mgl32.Mat4, px, py, width, height float32) Ray {
	x, y := common.ScreenToNDC(px, py, width, height)
	near := common.Unproject(invViewProj, mgl32.Vec3{x, y, 0})
	far := common.Unproject(invViewProj, mgl32.Vec3{x, y, 1})
	return NewRay(near, far.Sub(near))
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// RaySphere intersects a ray with a sphere.
//
// Parameters:
//   - r: the ray, with unit direction
//   - center: the sphere center
//   - radius: the sphere radius
//
// Returns:
//   - float32: the distance to the nearest intersection in front of the origin
//   - bool: false if the sphere is missed or lies entirely behind the ray
func RaySphere(r Ray, center mgl32.Vec3, radius float32) (float32, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		// origin inside the sphere
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Pick returns the index of the closest sphere hit by the ray.
//
// Parameters:
//   - r: the pick ray
//   - centers: one sphere center per instance
//   - radius: the shared sphere radius
//
// Returns:
//   - int: the nearest hit index, or NoHit
func Pick(r Ray, centers []mgl32.Vec3, radius float32) int {
	best := NoHit
	bestT := math32.Inf(1)
	for i, c := range centers {
		if t, ok := RaySphere(r, c, radius); ok && t < bestT {
			best, bestT = i, t
		}
	}
	return best
}

// ClosestAxisParam finds the point on the line point + axis*s closest to the ray's line and
// returns s. The axis must be unit length for s to be a world distance.
//
// Parameters:
//   - r: the pointer ray
//   - point: any point on the axis line
//   - axis: the axis direction
//
// Returns:
//   - float32: the line parameter of the closest point
//   - bool: false when the ray runs parallel to the axis
func ClosestAxisParam(r Ray, point, axis mgl32.Vec3) (float32, bool) {
	w0 := point.Sub(r.Origin)
	a := axis.Dot(axis)
	b := axis.Dot(r.Dir)
	c := r.Dir.Dot(r.Dir)
	d := axis.Dot(w0)
	e := r.Dir.Dot(w0)
	denom := a*c - b*b
	if math32.Abs(denom) < parallelEpsilon {
		return 0, false
	}
	return (b*e - c*d) / denom, true
}
