package picking

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-canvas/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func down(x, z float32) Ray {
	return NewRay(mgl32.Vec3{x, 10, z}, mgl32.Vec3{0, -1, 0})
}

func TestRaySphere(t *testing.T) {
	d, ok := RaySphere(down(0, 0), mgl32.Vec3{}, 1)
	require.True(t, ok)
	assert.InDelta(t, 9, d, 1e-5)

	_, ok = RaySphere(down(2, 0), mgl32.Vec3{}, 1)
	assert.False(t, ok)

	behind := NewRay(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{0, 1, 0})
	_, ok = RaySphere(behind, mgl32.Vec3{}, 1)
	assert.False(t, ok)

	inside := NewRay(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	d, ok = RaySphere(inside, mgl32.Vec3{}, 1)
	require.True(t, ok)
	assert.InDelta(t, 1, d, 1e-5)
}

func TestPickNearest(t *testing.T) {
	centers := []mgl32.Vec3{{-2, 0, 0}, {0, 0, 0}, {2, 0, 0}}

	assert.Equal(t, 0, Pick(down(-2, 0), centers, 1))
	assert.Equal(t, 1, Pick(down(0.5, 0), centers, 1))
	assert.Equal(t, 2, Pick(down(2.2, 0), centers, 1))
	assert.Equal(t, NoHit, Pick(down(0, 5), centers, 1))
	assert.Equal(t, NoHit, Pick(down(0, 0), nil, 1))

	stacked := []mgl32.Vec3{{0, 0, 0}, {0, 5, 0}}
	assert.Equal(t, 1, Pick(down(0, 0), stacked, 1))
}

func TestClosestAxisParam(t *testing.T) {
	s, ok := ClosestAxisParam(down(3, 0), mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, 3, s, 1e-5)

	along := NewRay(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0})
	_, ok = ClosestAxisParam(along, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	assert.False(t, ok)
}

func TestAxisDragKeepsGrabOffset(t *testing.T) {
	d := NewAxisDrag(mgl32.Vec3{2, 0, 0})
	assert.False(t, d.Active())
	_, ok := d.Move(down(1, 0))
	assert.False(t, ok)

	// grab the instance at x=-2 half a unit right of its center
	require.True(t, d.Begin(down(-1.5, 0), mgl32.Vec3{-2, 0, 0}, -2))
	assert.True(t, d.Active())

	x, ok := d.Move(down(5.5, 0))
	require.True(t, ok)
	assert.InDelta(t, 5, x, 1e-5)

	d.End()
	_, ok = d.Move(down(1, 0))
	assert.False(t, ok)
}

func TestAxisDragWithOffsetOrigin(t *testing.T) {
	d := NewAxisDrag(mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, d.Axis())

	// axis line at y=1, placement value 0 at world x=0
	require.True(t, d.Begin(down(0, 0), mgl32.Vec3{0, 1, 0}, 0))
	x, ok := d.Move(down(-3, 2))
	require.True(t, ok)
	assert.InDelta(t, -3, x, 1e-5)
}

func TestScreenRayThroughCenter(t *testing.T) {
	eye := mgl32.Vec3{0, 0, 10}
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := common.Perspective(0.8, 1, 0.1, 100)
	inv := proj.Mul4(view).Inv()

	r := ScreenRay(inv, 400, 400, 800, 800)
	assert.InDelta(t, 0, r.Dir.X(), 1e-4)
	assert.InDelta(t, 0, r.Dir.Y(), 1e-4)
	assert.InDelta(t, -1, r.Dir.Z(), 1e-4)
	assert.InDelta(t, 9.9, r.Origin.Z(), 1e-3)

	left := ScreenRay(inv, 0, 400, 800, 800)
	assert.Less(t, left.Dir.X(), float32(0))

	centers := []mgl32.Vec3{{0, 0, 0}}
	assert.Equal(t, 0, Pick(r, centers, 1))
}
