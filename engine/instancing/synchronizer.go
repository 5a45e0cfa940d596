// Package instancing keeps the GPU-facing per-instance buffers of one thin-instanced mesh
// consistent with an application-side placement model.
//
// A Synchronizer owns an ordered list of scalar placements plus two optional indices: the
// instance under the pointer (hovered) and the instance being dragged (moving). Every
// mutation that changes what is drawn rebuilds both instance buffers in full, hands them to
// a Sink and asks the Sink for one frame. All methods must be called from the engine's main
// thread; the Synchronizer does no locking.
package instancing

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/go-gl/mathgl/mgl32"
)

// NoIndex marks an empty hovered or moving index (a pick miss).
const NoIndex = -1

// Sink is the rendering side of a Synchronizer.
type Sink interface {
	// SetInstanceBuffer replaces the contents of one per-instance attribute buffer of a mesh.
	// The data slice is only valid for the duration of the call.
	//
	// Parameters:
	//   - mesh: the name of the mesh the buffer belongs to
	//   - slot: the attribute slot being written
	//   - data: the packed per-instance components
	//   - componentsPerInstance: float32 components per instance, always slot.Components()
	//
	// Returns:
	//   - error: an error if the buffer could not be written
	SetInstanceBuffer(mesh string, slot attribute.Slot, data []float32, componentsPerInstance int) error

	// RequestFrame asks for one redraw. Multiple requests before the next frame coalesce.
	RequestFrame()
}

// synchronizer is the implementation of the Synchronizer interface.
type synchronizer struct {
	mesh string
	sink Sink

	placements   []float32
	hoveredIndex int
	movingIndex  int

	origin mgl32.Vec3
	axis   mgl32.Vec3

	transforms []float32
	highlights []float32
}

// Synchronizer maps a placement list and hover/drag state onto instance buffers.
type Synchronizer interface {
	// Mesh returns the name of the mesh whose instance buffers are synchronized.
	//
	// Returns:
	//   - string: the mesh name passed to the Sink
	Mesh() string

	// Len returns the fixed number of instances.
	//
	// Returns:
	//   - int: the placement count
	Len() int

	// Placements returns a copy of the current placement list.
	//
	// Returns:
	//   - []float32: one scalar position per instance, in index order
	Placements() []float32

	// Placement returns the scalar position of instance i.
	//
	// Parameters:
	//   - i: a valid instance index
	//
	// Returns:
	//   - float32: the instance's position along the layout axis
	Placement(i int) float32

	// SetPlacements overwrites every placement and synchronizes. The length may not change.
	//
	// Parameters:
	//   - values: the new placements, one per instance
	//
	// Returns:
	//   - error: ErrLengthMismatch if len(values) != Len(), or a Sink error
	SetPlacements(values []float32) error

	// Center returns the world-space translation of instance i.
	//
	// Parameters:
	//   - i: a valid instance index
	//
	// Returns:
	//   - mgl32.Vec3: origin + axis * placement
	Center(i int) mgl32.Vec3

	// Origin returns the world position of placement value 0.
	//
	// Returns:
	//   - mgl32.Vec3: the layout origin
	Origin() mgl32.Vec3

	// Axis returns the unit direction placements are laid out along.
	//
	// Returns:
	//   - mgl32.Vec3: the layout axis
	Axis() mgl32.Vec3

	// HoveredIndex returns the instance under the pointer, or NoIndex.
	//
	// Returns:
	//   - int: the hovered index
	HoveredIndex() int

	// MovingIndex returns the instance being dragged, or NoIndex.
	//
	// Returns:
	//   - int: the moving index
	MovingIndex() int

	// TransformBuffer returns the last synchronized transform buffer (16 floats per instance).
	// The slice is owned by the Synchronizer and is overwritten by the next synchronize.
	//
	// Returns:
	//   - []float32: the packed column-major instance matrices
	TransformBuffer() []float32

	// HighlightBuffer returns the last synchronized highlight buffer (1 float per instance).
	// The slice is owned by the Synchronizer and is overwritten by the next synchronize.
	//
	// Returns:
	//   - []float32: 1 at the hovered index, 0 elsewhere
	HighlightBuffer() []float32

	// OnDragStart records the picked instance as the one being dragged. Nothing is redrawn.
	// Panics if i is neither NoIndex nor a valid index.
	//
	// Parameters:
	//   - i: the picked instance index, or NoIndex on a pick miss
	OnDragStart(i int)

	// OnDrag moves the dragged instance to x and synchronizes. Does nothing when no drag is in progress.
	//
	// Parameters:
	//   - x: the new position along the layout axis
	//
	// Returns:
	//   - error: a Sink error from synchronizing
	OnDrag(x float32) error

	// OnDragEnd clears the moving index. Nothing is redrawn.
	OnDragEnd()

	// OnHoverEnter marks instance i as hovered and synchronizes. NoIndex behaves like OnHoverExit.
	// Panics if i is neither NoIndex nor a valid index.
	//
	// Parameters:
	//   - i: the instance now under the pointer
	//
	// Returns:
	//   - error: a Sink error from synchronizing
	OnHoverEnter(i int) error

	// OnHoverExit clears the hovered index and synchronizes.
	//
	// Returns:
	//   - error: a Sink error from synchronizing
	OnHoverExit() error

	// Synchronize rebuilds both instance buffers from the current model, submits them to the
	// Sink (matrix slot first, then hovered) and requests one frame. No frame is requested
	// when a submission fails.
	//
	// Returns:
	//   - error: the first Sink error, wrapped
	Synchronize() error
}

var _ Synchronizer = &synchronizer{}

// NewSynchronizer creates a Synchronizer for the named mesh. The placement slice is copied and
// its length is fixed for the Synchronizer's lifetime. The owner calls Synchronize once the Sink
// can accept buffers.
//
// Parameters:
//   - mesh: the mesh name handed to the Sink
//   - sink: the renderer side receiving buffers and frame requests
//   - placements: the initial scalar placements
//   - options: optional configuration such as WithOrigin and WithAxis
//
// Returns:
//   - Synchronizer: the new synchronizer with no hovered or moving instance
func NewSynchronizer(mesh string, sink Sink, placements []float32, options ...SynchronizerBuilderOption) Synchronizer {
	if sink == nil {
		panic(fmt.Sprintf("instancing: synchronizer %q requires a sink", mesh))
	}
	s := &synchronizer{
		mesh:         mesh,
		sink:         sink,
		placements:   append([]float32(nil), placements...),
		hoveredIndex: NoIndex,
		movingIndex:  NoIndex,
		axis:         mgl32.Vec3{1, 0, 0},
	}
	for _, opt := range options {
		opt(s)
	}
	s.transforms = make([]float32, len(s.placements)*attribute.SlotMatrix.Components())
	s.highlights = make([]float32, len(s.placements)*attribute.SlotHovered.Components())
	return s
}

func (s *synchronizer) Mesh() string {
	return s.mesh
}

func (s *synchronizer) Len() int {
	return len(s.placements)
}

func (s *synchronizer) Placements() []float32 {
	return append([]float32(nil), s.placements...)
}

func (s *synchronizer) Placement(i int) float32 {
	s.mustIndex("Placement", i)
	return s.placements[i]
}

func (s *synchronizer) SetPlacements(values []float32) error {
	if len(values) != len(s.placements) {
		return fmt.Errorf("%w: mesh %q has %d instances, got %d", ErrLengthMismatch, s.mesh, len(s.placements), len(values))
	}
	copy(s.placements, values)
	return s.Synchronize()
}

func (s *synchronizer) Center(i int) mgl32.Vec3 {
	s.mustIndex("Center", i)
	return s.origin.Add(s.axis.Mul(s.placements[i]))
}

func (s *synchronizer) Origin() mgl32.Vec3 {
	return s.origin
}

func (s *synchronizer) Axis() mgl32.Vec3 {
	return s.axis
}

func (s *synchronizer) HoveredIndex() int {
	return s.hoveredIndex
}

func (s *synchronizer) MovingIndex() int {
	return s.movingIndex
}

func (s *synchronizer) TransformBuffer() []float32 {
	return s.transforms
}

func (s *synchronizer) HighlightBuffer() []float32 {
	return s.highlights
}

func (s *synchronizer) OnDragStart(i int) {
	s.mustIndexOrNone("OnDragStart", i)
	s.movingIndex = i
}

func (s *synchronizer) OnDrag(x float32) error {
	if s.movingIndex == NoIndex {
		return nil
	}
	s.placements[s.movingIndex] = x
	return s.Synchronize()
}

func (s *synchronizer) OnDragEnd() {
	s.movingIndex = NoIndex
}

func (s *synchronizer) OnHoverEnter(i int) error {
	s.mustIndexOrNone("OnHoverEnter", i)
	s.hoveredIndex = i
	return s.Synchronize()
}

func (s *synchronizer) OnHoverExit() error {
	s.hoveredIndex = NoIndex
	return s.Synchronize()
}

func (s *synchronizer) Synchronize() error {
	s.rebuild()
	if err := s.sink.SetInstanceBuffer(s.mesh, attribute.SlotMatrix, s.transforms, attribute.SlotMatrix.Components()); err != nil {
		return fmt.Errorf("instancing: failed to submit %s buffer for %q: %w", attribute.SlotMatrix, s.mesh, err)
	}
	if err := s.sink.SetInstanceBuffer(s.mesh, attribute.SlotHovered, s.highlights, attribute.SlotHovered.Components()); err != nil {
		return fmt.Errorf("instancing: failed to submit %s buffer for %q: %w", attribute.SlotHovered, s.mesh, err)
	}
	s.sink.RequestFrame()
	return nil
}

// rebuild regenerates both buffers in full from the placement list and hovered index.
func (s *synchronizer) rebuild() {
	stride := attribute.SlotMatrix.Components()
	for i, p := range s.placements {
		t := s.origin.Add(s.axis.Mul(p))
		m := mgl32.Translate3D(t.X(), t.Y(), t.Z())
		copy(s.transforms[i*stride:(i+1)*stride], m[:])
	}
	for i := range s.highlights {
		s.highlights[i] = 0
	}
	if s.hoveredIndex != NoIndex {
		s.highlights[s.hoveredIndex] = 1
	}
}

// mustIndex panics when i does not address an instance. Picking only ever resolves
// indices it obtained from this synchronizer, so a bad index is a caller bug.
func (s *synchronizer) mustIndex(op string, i int) {
	if i < 0 || i >= len(s.placements) {
		panic(fmt.Sprintf("instancing: %s: index %d out of range for mesh %q with %d instances", op, i, s.mesh, len(s.placements)))
	}
}

func (s *synchronizer) mustIndexOrNone(op string, i int) {
	if i == NoIndex {
		return
	}
	s.mustIndex(op, i)
}
