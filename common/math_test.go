package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	proj := Perspective(math32.Pi/2, 1, near, far)

	clipNear := proj.Mul4x1(mgl32.Vec4{0, 0, -near, 1})
	clipFar := proj.Mul4x1(mgl32.Vec4{0, 0, -far, 1})

	assert.InDelta(t, 0, clipNear.Z()/clipNear.W(), 1e-5)
	assert.InDelta(t, 1, clipFar.Z()/clipFar.W(), 1e-5)
}

func TestUnprojectRoundTrip(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 5, -10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := Perspective(0.8, 16.0/9.0, 0.1, 100)
	vp := proj.Mul4(view)

	world := mgl32.Vec3{1, 2, 3}
	clip := vp.Mul4x1(world.Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())

	got := Unproject(vp.Inv(), ndc)
	assert.InDelta(t, world.X(), got.X(), 1e-3)
	assert.InDelta(t, world.Y(), got.Y(), 1e-3)
	assert.InDelta(t, world.Z(), got.Z(), 1e-3)
}

func TestScreenToNDC(t *testing.T) {
	x, y := ScreenToNDC(0, 0, 800, 600)
	assert.Equal(t, float32(-1), x)
	assert.Equal(t, float32(1), y)

	x, y = ScreenToNDC(400, 300, 800, 600)
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(0), y)

	x, y = ScreenToNDC(10, 10, 0, 0)
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestClampAndCoalesce(t *testing.T) {
	assert.Equal(t, float32(1), Clamp(3, -1, 1))
	assert.Equal(t, float32(-1), Clamp(-3, -1, 1))
	assert.Equal(t, float32(0.5), Clamp(0.5, -1, 1))

	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))

	type rgba struct{ r, g, b, a float64 }
	fallback := rgba{0.1, 0.1, 0.1, 1}
	assert.Equal(t, fallback, Coalesce(rgba{}, fallback))
	assert.Equal(t, rgba{a: 1}, Coalesce(rgba{a: 1}, fallback))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)

	v := struct{ A, B uint32 }{1, 2}
	assert.Len(t, StructToBytes(&v), 8)
}
