package interaction

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-canvas/engine/instancing"
	"github.com/Carmen-Shannon/oxy-canvas/engine/picking"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// topDown maps pixel (px, py) to a ray falling straight onto world (px, 0, py).
type topDown struct{}

func (topDown) Ray(px, py float32) picking.Ray {
	return picking.NewRay(mgl32.Vec3{px, 10, py}, mgl32.Vec3{0, -1, 0})
}

type countingSink struct {
	hovered []float32
	frames  int
}

func (s *countingSink) SetInstanceBuffer(_ string, slot attribute.Slot, data []float32, _ int) error {
	if slot == attribute.SlotHovered {
		s.hovered = append([]float32(nil), data...)
	}
	return nil
}

func (s *countingSink) RequestFrame() {
	s.frames++
}

type recordingOrbiter struct {
	dx, dy float32
}

func (o *recordingOrbiter) Orbit(dx, dy float32) {
	o.dx += dx
	o.dy += dy
}

func setup(t *testing.T, options ...PointerControllerBuilderOption) (PointerController, instancing.Synchronizer, *countingSink) {
	t.Helper()
	sink := &countingSink{}
	sync := instancing.NewSynchronizer("spheres", sink, []float32{-2, 0, 2})
	require.NoError(t, sync.Synchronize())
	return NewPointerController(sync, topDown{}, options...), sync, sink
}

func TestHoverEnterAndExit(t *testing.T) {
	c, sync, sink := setup(t)

	require.NoError(t, c.PointerMove(0.2, 0))
	assert.Equal(t, 1, sync.HoveredIndex())
	assert.Equal(t, []float32{0, 1, 0}, sink.hovered)

	framesBefore := sink.frames
	require.NoError(t, c.PointerMove(0.3, 0.1))
	assert.Equal(t, framesBefore, sink.frames, "same instance must not resynchronize")

	require.NoError(t, c.PointerMove(0, 4))
	assert.Equal(t, instancing.NoIndex, sync.HoveredIndex())
	assert.Equal(t, []float32{0, 0, 0}, sink.hovered)
}

func TestDragMovesPickedInstance(t *testing.T) {
	c, sync, _ := setup(t)

	c.PointerDown(-2, 0)
	assert.True(t, c.Dragging())
	assert.Equal(t, 0, sync.MovingIndex())

	require.NoError(t, c.PointerMove(5, 0))
	assert.Equal(t, []float32{5, 0, 2}, sync.Placements())
	assert.Equal(t, float32(5), sync.TransformBuffer()[12])

	require.NoError(t, c.PointerUp(5, 0))
	assert.False(t, c.Dragging())
	assert.Equal(t, instancing.NoIndex, sync.MovingIndex())
	assert.Equal(t, 0, sync.HoveredIndex())
}

func TestDragPreservesGrabOffset(t *testing.T) {
	c, sync, _ := setup(t)

	c.PointerDown(2.5, 0)
	require.NoError(t, c.PointerMove(3.5, 0))
	assert.InDelta(t, 3, sync.Placement(2), 1e-5)
}

func TestPressOnEmptySpaceOrbits(t *testing.T) {
	orbiter := &recordingOrbiter{}
	frames := 0
	c, sync, _ := setup(t, WithOrbiter(orbiter), WithFrameRequester(func() { frames++ }))

	c.PointerDown(0, 5)
	assert.False(t, c.Dragging())
	assert.True(t, c.Orbiting())
	assert.Equal(t, instancing.NoIndex, sync.MovingIndex())

	require.NoError(t, c.PointerMove(3, 7))
	assert.Equal(t, float32(3), orbiter.dx)
	assert.Equal(t, float32(2), orbiter.dy)
	assert.Equal(t, 1, frames)
	assert.Equal(t, []float32{-2, 0, 2}, sync.Placements())

	require.NoError(t, c.PointerUp(3, 7))
	assert.False(t, c.Orbiting())
}

func TestPressOnEmptySpaceWithoutOrbiter(t *testing.T) {
	c, sync, _ := setup(t)

	c.PointerDown(0, 5)
	assert.False(t, c.Orbiting())
	require.NoError(t, c.PointerMove(0, 6))
	assert.Equal(t, []float32{-2, 0, 2}, sync.Placements())
}

func TestPickRadius(t *testing.T) {
	c, sync, _ := setup(t, WithPickRadius(0.25))

	require.NoError(t, c.PointerMove(0.5, 0))
	assert.Equal(t, instancing.NoIndex, sync.HoveredIndex())

	require.NoError(t, c.PointerMove(0.2, 0))
	assert.Equal(t, 1, sync.HoveredIndex())
}
