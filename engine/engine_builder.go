package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-canvas/engine/profiler"
	"github.com/Carmen-Shannon/oxy-canvas/engine/scene"
	"github.com/Carmen-Shannon/oxy-canvas/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilingInterval sets how often profiling stats are logged.
// Values <= 0 will be treated as the default (1 second).
//
// Parameters:
//   - interval: the minimum time between log lines
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilingInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(interval)
	}
}

// WithWindow sets the window the engine pumps messages for and draws into.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene sets the scene the engine draws and routes input to.
//
// Parameters:
//   - s: the Scene to draw
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithIdleWait sets whether the message loop blocks while no frame is requested (default true).
// Disabling it makes the loop poll, which only costs CPU since frames are still drawn on request.
//
// Parameters:
//   - enabled: if true, the loop sleeps until the next event or frame request
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithIdleWait(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.idleWait = enabled
	}
}
