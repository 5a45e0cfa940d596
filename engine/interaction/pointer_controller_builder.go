package interaction

// PointerControllerBuilderOption is a functional option for configuring a PointerController.
type PointerControllerBuilderOption func(*pointerController)

// WithPickRadius sets the sphere radius used to hit-test each instance.
//
// Parameters:
//   - radius: the pick radius in world units
//
// Returns:
//   - PointerControllerBuilderOption: a function that applies the radius to a controller
func WithPickRadius(radius float32) PointerControllerBuilderOption {
	return func(c *pointerController) {
		if radius > 0 {
			c.radius = radius
		}
	}
}

// WithOrbiter sets the target of drags that start on empty space.
//
// Parameters:
//   - o: the orbit target, usually a camera controller
//
// Returns:
//   - PointerControllerBuilderOption: a function that applies the orbiter to a controller
func WithOrbiter(o Orbiter) PointerControllerBuilderOption {
	return func(c *pointerController) {
		c.orbiter = o
	}
}

// WithFrameRequester sets the callback used to redraw after an orbit step.
//
// Parameters:
//   - fn: the frame request callback
//
// Returns:
//   - PointerControllerBuilderOption: a function that applies the callback to a controller
func WithFrameRequester(fn func()) PointerControllerBuilderOption {
	return func(c *pointerController) {
		if fn != nil {
			c.requestFrame = fn
		}
	}
}
