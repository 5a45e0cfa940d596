package instancing

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submission struct {
	mesh       string
	slot       attribute.Slot
	data       []float32
	components int
}

type recordingSink struct {
	submissions []submission
	frames      int
	failSlot    attribute.Slot
	fail        error
}

func (r *recordingSink) SetInstanceBuffer(mesh string, slot attribute.Slot, data []float32, components int) error {
	if r.fail != nil && slot == r.failSlot {
		return r.fail
	}
	r.submissions = append(r.submissions, submission{
		mesh:       mesh,
		slot:       slot,
		data:       append([]float32(nil), data...),
		components: components,
	})
	return nil
}

func (r *recordingSink) RequestFrame() {
	r.frames++
}

func (r *recordingSink) last(slot attribute.Slot) []float32 {
	for i := len(r.submissions) - 1; i >= 0; i-- {
		if r.submissions[i].slot == slot {
			return r.submissions[i].data
		}
	}
	return nil
}

func newTestSynchronizer(t *testing.T, placements ...float32) (Synchronizer, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	s := NewSynchronizer("spheres", sink, placements)
	require.NoError(t, s.Synchronize())
	return s, sink
}

func TestBufferLengths(t *testing.T) {
	for _, n := range []int{0, 1, 3, 17} {
		placements := make([]float32, n)
		for i := range placements {
			placements[i] = float32(i)
		}
		s, sink := newTestSynchronizer(t, placements...)

		assert.Len(t, s.TransformBuffer(), 16*n)
		assert.Len(t, s.HighlightBuffer(), n)
		assert.Len(t, sink.last(attribute.SlotMatrix), 16*n)
		assert.Len(t, sink.last(attribute.SlotHovered), n)
	}
}

func TestSynchronizeSubmitsBothSlotsThenRequestsFrame(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2)

	require.Len(t, sink.submissions, 2)
	assert.Equal(t, attribute.SlotMatrix, sink.submissions[0].slot)
	assert.Equal(t, 16, sink.submissions[0].components)
	assert.Equal(t, attribute.SlotHovered, sink.submissions[1].slot)
	assert.Equal(t, 1, sink.submissions[1].components)
	assert.Equal(t, "spheres", sink.submissions[0].mesh)
	assert.Equal(t, s.Mesh(), sink.submissions[1].mesh)
	assert.Equal(t, 1, sink.frames)
}

func TestHoverEnterIsOneHot(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2, 4)

	for i := 0; i < s.Len(); i++ {
		require.NoError(t, s.OnHoverEnter(i))
		for j, v := range sink.last(attribute.SlotHovered) {
			if j == i {
				assert.Equal(t, float32(1), v)
			} else {
				assert.Equal(t, float32(0), v)
			}
		}
		assert.Equal(t, i, s.HoveredIndex())
	}
}

func TestHoverExitClearsHighlight(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2)

	require.NoError(t, s.OnHoverEnter(2))
	require.NoError(t, s.OnHoverExit())
	assert.Equal(t, []float32{0, 0, 0}, sink.last(attribute.SlotHovered))
	assert.Equal(t, NoIndex, s.HoveredIndex())

	require.NoError(t, s.OnHoverExit())
	assert.Equal(t, []float32{0, 0, 0}, sink.last(attribute.SlotHovered))
}

func TestHoverEnterNoIndexClears(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2)

	require.NoError(t, s.OnHoverEnter(0))
	require.NoError(t, s.OnHoverEnter(NoIndex))
	assert.Equal(t, []float32{0, 0, 0}, sink.last(attribute.SlotHovered))
}

func TestDragUpdatesOnlyMovingIndex(t *testing.T) {
	s, _ := newTestSynchronizer(t, -2, 0, 2)

	s.OnDragStart(1)
	assert.Equal(t, 1, s.MovingIndex())
	require.NoError(t, s.OnDrag(7.5))
	assert.Equal(t, []float32{-2, 7.5, 2}, s.Placements())
}

func TestDragStartDoesNotRedraw(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2)
	before := len(sink.submissions)

	s.OnDragStart(0)
	s.OnDragEnd()
	assert.Len(t, sink.submissions, before)
	assert.Equal(t, 1, sink.frames)
}

func TestDragWithoutStartIsNoop(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2)

	require.NoError(t, s.OnDrag(9))
	assert.Equal(t, []float32{-2, 0, 2}, s.Placements())
	assert.Equal(t, 1, sink.frames)

	s.OnDragStart(NoIndex)
	require.NoError(t, s.OnDrag(9))
	assert.Equal(t, []float32{-2, 0, 2}, s.Placements())
}

func TestDragEndClearsMovingIndex(t *testing.T) {
	s, _ := newTestSynchronizer(t, -2, 0, 2)

	s.OnDragStart(2)
	require.NoError(t, s.OnDrag(3))
	s.OnDragEnd()
	assert.Equal(t, NoIndex, s.MovingIndex())

	require.NoError(t, s.OnDrag(100))
	assert.Equal(t, []float32{-2, 0, 3}, s.Placements())
}

func TestHoverAndDragAreIndependent(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2)

	require.NoError(t, s.OnHoverEnter(0))
	s.OnDragStart(0)
	require.NoError(t, s.OnDrag(1))
	assert.Equal(t, 0, s.HoveredIndex())
	assert.Equal(t, 0, s.MovingIndex())
	assert.Equal(t, []float32{1, 0, 0}, sink.last(attribute.SlotHovered))
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2)
	require.NoError(t, s.OnHoverEnter(1))

	require.NoError(t, s.Synchronize())
	firstMatrix := sink.last(attribute.SlotMatrix)
	firstHover := sink.last(attribute.SlotHovered)

	require.NoError(t, s.Synchronize())
	assert.Equal(t, firstMatrix, sink.last(attribute.SlotMatrix))
	assert.Equal(t, firstHover, sink.last(attribute.SlotHovered))
}

func TestHoverThenDragScenario(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2)

	require.NoError(t, s.OnHoverEnter(1))
	assert.Equal(t, []float32{0, 1, 0}, sink.last(attribute.SlotHovered))

	s.OnDragStart(0)
	require.NoError(t, s.OnDrag(5))
	assert.Equal(t, []float32{5, 0, 2}, s.Placements())

	want := []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		5, 0, 0, 1,
	}
	assert.Equal(t, want, sink.last(attribute.SlotMatrix)[:16])
	// x translation sits at offset 12 of each 16-float matrix
	matrices := sink.last(attribute.SlotMatrix)
	require.Len(t, matrices, 3*16)
	assert.Equal(t, float32(0), matrices[1*16+12])
	assert.Equal(t, float32(2), matrices[2*16+12])
}

func TestOriginAndAxis(t *testing.T) {
	sink := &recordingSink{}
	s := NewSynchronizer("column", sink, []float32{2}, WithOrigin(1, 1, 0), WithAxis(0, 0, 4))
	require.NoError(t, s.Synchronize())

	m := s.TransformBuffer()
	assert.Equal(t, []float32{1, 1, 2}, m[12:15])
	assert.Equal(t, float32(1), s.Center(0).X())
	assert.Equal(t, float32(2), s.Center(0).Z())
	assert.InDelta(t, 1.0, float64(s.Axis().Len()), 1e-6)
}

func TestZeroAxisKeepsDefault(t *testing.T) {
	s := NewSynchronizer("m", &recordingSink{}, []float32{1}, WithAxis(0, 0, 0))
	assert.Equal(t, float32(1), s.Axis().X())
}

func TestSetPlacements(t *testing.T) {
	s, sink := newTestSynchronizer(t, -2, 0, 2)

	require.NoError(t, s.SetPlacements([]float32{1, 2, 3}))
	assert.Equal(t, []float32{1, 2, 3}, s.Placements())
	assert.Equal(t, 2, sink.frames)

	err := s.SetPlacements([]float32{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestPlacementsAreCopied(t *testing.T) {
	in := []float32{-2, 0, 2}
	s := NewSynchronizer("m", &recordingSink{}, in)
	in[0] = 99
	assert.Equal(t, float32(-2), s.Placement(0))

	out := s.Placements()
	out[1] = 99
	assert.Equal(t, float32(0), s.Placement(1))
}

func TestOutOfRangeIndexPanics(t *testing.T) {
	s, _ := newTestSynchronizer(t, -2, 0, 2)

	assert.Panics(t, func() { s.OnDragStart(3) })
	assert.Panics(t, func() { _ = s.OnHoverEnter(-2) })
	assert.Panics(t, func() { s.Placement(5) })
}

func TestSinkErrorSkipsFrameRequest(t *testing.T) {
	boom := errors.New("device lost")
	sink := &recordingSink{failSlot: attribute.SlotHovered, fail: boom}
	s := NewSynchronizer("m", sink, []float32{0})

	err := s.Synchronize()
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "hovered")
	assert.Equal(t, 0, sink.frames)
}

func TestNilSinkPanics(t *testing.T) {
	assert.Panics(t, func() { NewSynchronizer("m", nil, nil) })
}
