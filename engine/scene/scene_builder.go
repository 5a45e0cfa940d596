package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is drawn. Scenes are active by default.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithRequestHook sets a function called on every RequestFrame after the pending flag is set.
// The engine uses it to wake a window that is blocked waiting for events.
//
// Parameters:
//   - fn: the hook, called on the requesting goroutine
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRequestHook(fn func()) SceneBuilderOption {
	return func(s *scene) {
		s.onRequest = fn
	}
}
