// Package interaction turns raw pointer events into hover and drag transitions on an
// instancing.Synchronizer, the way a pointer-drag behavior does in a scene graph engine.
package interaction

import (
	"github.com/Carmen-Shannon/oxy-canvas/engine/instancing"
	"github.com/Carmen-Shannon/oxy-canvas/engine/picking"
	"github.com/go-gl/mathgl/mgl32"
)

// RayCaster builds world-space pick rays from pointer positions.
type RayCaster interface {
	// Ray returns the pick ray through a pointer position.
	//
	// Parameters:
	//   - px, py: pointer position in pixels, origin top-left
	//
	// Returns:
	//   - picking.Ray: the world-space ray
	Ray(px, py float32) picking.Ray
}

// Orbiter receives pointer drags that start on empty space.
type Orbiter interface {
	// Orbit rotates the view by a pointer delta in pixels.
	//
	// Parameters:
	//   - dx, dy: pointer movement since the last event
	Orbit(dx, dy float32)
}

// pointerController is the implementation of the PointerController interface.
type pointerController struct {
	sync   instancing.Synchronizer
	caster RayCaster
	drag   *picking.AxisDrag

	orbiter      Orbiter
	requestFrame func()
	radius       float32

	orbiting     bool
	lastX, lastY float32
}

// PointerController routes pointer events to one synchronizer. Moving over an instance enters
// hover, moving off it exits hover, pressing on an instance starts a drag along the
// synchronizer's axis and releasing ends it. Pressing on empty space orbits instead.
type PointerController interface {
	// PointerMove handles pointer motion.
	//
	// Parameters:
	//   - px, py: pointer position in pixels
	//
	// Returns:
	//   - error: a synchronizer error from a hover or drag update
	PointerMove(px, py float32) error

	// PointerDown handles the primary button being pressed.
	//
	// Parameters:
	//   - px, py: pointer position in pixels
	PointerDown(px, py float32)

	// PointerUp handles the primary button being released.
	//
	// Parameters:
	//   - px, py: pointer position in pixels
	//
	// Returns:
	//   - error: a synchronizer error from refreshing hover after the release
	PointerUp(px, py float32) error

	// Dragging reports whether an instance drag is in progress.
	//
	// Returns:
	//   - bool: true between a PointerDown on an instance and the next PointerUp
	Dragging() bool

	// Orbiting reports whether an empty-space orbit drag is in progress.
	//
	// Returns:
	//   - bool: true between a PointerDown on empty space and the next PointerUp
	Orbiting() bool
}

var _ PointerController = &pointerController{}

// NewPointerController creates a PointerController for sync, picking instances as spheres of
// the configured radius around each instance center.
//
// Parameters:
//   - sync: the synchronizer receiving hover and drag transitions
//   - caster: the ray source, usually the scene camera
//   - options: optional configuration such as WithPickRadius and WithOrbiter
//
// Returns:
//   - PointerController: the new controller
func NewPointerController(sync instancing.Synchronizer, caster RayCaster, options ...PointerControllerBuilderOption) PointerController {
	c := &pointerController{
		sync:         sync,
		caster:       caster,
		drag:         picking.NewAxisDrag(sync.Axis()),
		radius:       1,
		requestFrame: func() {},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *pointerController) PointerMove(px, py float32) error {
	dx, dy := px-c.lastX, py-c.lastY
	c.lastX, c.lastY = px, py

	switch {
	case c.drag.Active():
		x, ok := c.drag.Move(c.caster.Ray(px, py))
		if !ok {
			return nil
		}
		return c.sync.OnDrag(x)
	case c.orbiting:
		c.orbiter.Orbit(dx, dy)
		c.requestFrame()
		return nil
	default:
		return c.updateHover(px, py)
	}
}

func (c *pointerController) PointerDown(px, py float32) {
	c.lastX, c.lastY = px, py
	ray := c.caster.Ray(px, py)
	idx := c.pick(ray)
	c.sync.OnDragStart(idx)
	if idx == instancing.NoIndex {
		c.orbiting = c.orbiter != nil
		return
	}
	if !c.drag.Begin(ray, c.sync.Center(idx), c.sync.Placement(idx)) {
		c.sync.OnDragEnd()
	}
}

func (c *pointerController) PointerUp(px, py float32) error {
	c.drag.End()
	c.sync.OnDragEnd()
	c.orbiting = false
	return c.updateHover(px, py)
}

func (c *pointerController) Dragging() bool {
	return c.drag.Active()
}

func (c *pointerController) Orbiting() bool {
	return c.orbiting
}

// updateHover issues a hover transition only when the instance under the pointer changed.
func (c *pointerController) updateHover(px, py float32) error {
	idx := c.pick(c.caster.Ray(px, py))
	if idx == c.sync.HoveredIndex() {
		return nil
	}
	if idx == instancing.NoIndex {
		return c.sync.OnHoverExit()
	}
	return c.sync.OnHoverEnter(idx)
}

func (c *pointerController) pick(ray picking.Ray) int {
	centers := make([]mgl32.Vec3, c.sync.Len())
	for i := range centers {
		centers[i] = c.sync.Center(i)
	}
	if idx := picking.Pick(ray, centers, c.radius); idx != picking.NoHit {
		return idx
	}
	return instancing.NoIndex
}
