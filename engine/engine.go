package engine

import (
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-canvas/common"
	"github.com/Carmen-Shannon/oxy-canvas/engine/instancing"
	"github.com/Carmen-Shannon/oxy-canvas/engine/interaction"
	"github.com/Carmen-Shannon/oxy-canvas/engine/profiler"
	"github.com/Carmen-Shannon/oxy-canvas/engine/scene"
	"github.com/Carmen-Shannon/oxy-canvas/engine/window"
)

// postedQueueSize bounds the number of main-thread tasks waiting for the next iteration.
const postedQueueSize = 64

// engine implements the Engine interface.
// Everything except Post, RequestFrame and Quit runs on the main thread inside the window's
// message loop.
type engine struct {
	mu *sync.Mutex

	window window.Window
	scene  scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool
	idleWait         bool

	posted   chan func()
	quitOnce sync.Once

	// Pointer input. pointer is rebuilt whenever the scene's pickable object changes; without
	// one, left drags orbit the camera directly.
	pointer      interaction.PointerController
	pointerSync  instancing.Synchronizer
	orbiting     bool
	lastX, lastY float32

	// Held pan keys and the time of the last pan step.
	held     map[uint32]bool
	lastStep time.Time
}

// Engine is the main entry point for the engine.
// It pumps window messages on the main thread, routes input to the scene and draws a frame only
// when one was requested. Requests made between two iterations coalesce into one frame.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene drawn by the engine.
	//
	// Returns:
	//   - scene.Scene: the scene instance
	Scene() scene.Scene

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// RequestFrame asks for one frame to be drawn on the next iteration. Safe to call from any
	// goroutine.
	RequestFrame()

	// Post schedules fn to run on the main thread before the next frame is drawn. Tasks run in
	// the order they were posted. Safe to call from any goroutine; it blocks while the queue is
	// full.
	//
	// Parameters:
	//   - fn: the task to run
	Post(fn func())

	// Run pumps window messages until the window closes. Must be called from the main thread.
	Run()

	// Quit closes the window on the next iteration, which ends Run.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine and wires the window's input and resize callbacks to the scene.
// WithWindow and WithScene are required and NewEngine panics without them.
//
// Parameters:
//   - options: functional options for engine configuration (window, scene, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:       &sync.Mutex{},
		profiler: profiler.NewProfiler(time.Second),
		idleWait: true,
		posted:   make(chan func(), postedQueueSize),
		held:     make(map[uint32]bool),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		panic("engine: a window is required")
	}
	if e.scene == nil {
		panic("engine: a scene is required")
	}

	e.scene.Camera().SetViewport(e.window.Width(), e.window.Height())
	e.scene.SetRequestHook(e.onRequest)

	e.window.SetIdleCheck(e.idle)
	e.window.SetUpdateCallback(e.update)
	e.window.SetResizeCallback(e.resize)
	e.window.SetScrollCallback(e.scroll)
	e.window.SetKeyDownCallback(e.keyDown)
	e.window.SetKeyUpCallback(e.keyUp)
	e.window.SetMouseButtonCallback(e.mouseButton)
	e.window.SetMouseMoveCallback(e.mouseMove)

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) RequestFrame() {
	e.scene.RequestFrame()
}

func (e *engine) Post(fn func()) {
	if fn == nil {
		return
	}
	e.posted <- fn
	e.window.Wake()
}

func (e *engine) Run() {
	log.Printf("[Engine] Running scene %q", e.scene.Name())
	e.scene.RequestFrame()
	e.window.ProcessMessages()
	log.Printf("[Engine] Window closed")
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.Post(func() {
			if err := e.window.Close(); err != nil {
				log.Printf("[Engine] Failed to close window: %v", err)
			}
		})
	})
}

// onRequest is the scene's request hook. It only wakes the message loop; the pending flag lives
// on the scene so repeated requests collapse into one frame.
func (e *engine) onRequest() {
	e.profiler.Request()
	e.window.Wake()
}

// idle reports whether the message loop may block until the next event.
func (e *engine) idle() bool {
	return e.idleWait && !e.scene.FrameRequested() && len(e.posted) == 0 && len(e.held) == 0
}

// update runs once per message loop iteration: posted tasks first, then held-key panning, then
// at most one frame.
func (e *engine) update() {
	e.drain()
	if !e.window.IsRunning() {
		return
	}
	e.pan(time.Now())

	if !e.scene.Active() || !e.scene.TakeFrameRequest() {
		return
	}
	if err := e.scene.Render(); err != nil {
		log.Printf("[Engine] Render failed: %v", err)
		return
	}

	e.mu.Lock()
	profiling := e.profilingEnabled
	e.mu.Unlock()
	if profiling {
		e.profiler.Tick()
	}
}

// drain runs every task posted before the call.
func (e *engine) drain() {
	for {
		select {
		case fn := <-e.posted:
			fn()
		default:
			return
		}
	}
}

func (e *engine) resize(width, height int) {
	if r := e.scene.Renderer(); r != nil {
		r.Resize(width, height)
	}
	e.scene.Camera().SetViewport(width, height)
	e.scene.RequestFrame()
}

func (e *engine) scroll(delta float32) {
	ctrl := e.scene.Camera().Controller()
	if ctrl == nil {
		return
	}
	ctrl.Zoom(delta)
	e.scene.Camera().Update()
	e.scene.RequestFrame()
}

func (e *engine) keyDown(keyCode uint32) {
	if _, ok := panAxes[keyCode]; !ok {
		return
	}
	if len(e.held) == 0 {
		e.lastStep = time.Now()
	}
	e.held[keyCode] = true
}

func (e *engine) keyUp(keyCode uint32) {
	delete(e.held, keyCode)
}

// panAxes maps pan keys to a (right, up, forward) direction.
var panAxes = map[uint32][3]float32{
	common.KeyD: {1, 0, 0},
	common.KeyA: {-1, 0, 0},
	common.KeyE: {0, 1, 0},
	common.KeyQ: {0, -1, 0},
	common.KeyW: {0, 0, 1},
	common.KeyS: {0, 0, -1},
}

// pan moves the camera along its local axes for every held pan key, scaled by the time since
// the previous step.
func (e *engine) pan(now time.Time) {
	if len(e.held) == 0 {
		return
	}
	dt := float32(now.Sub(e.lastStep).Seconds())
	e.lastStep = now

	ctrl := e.scene.Camera().Controller()
	if ctrl == nil || dt <= 0 {
		return
	}
	var dir [3]float32
	for key := range e.held {
		a := panAxes[key]
		dir[0] += a[0]
		dir[1] += a[1]
		dir[2] += a[2]
	}
	if dir == ([3]float32{}) {
		return
	}
	ctrl.PanRight(dir[0] * dt)
	ctrl.PanUp(dir[1] * dt)
	ctrl.PanForward(dir[2] * dt)
	e.scene.Camera().Update()
	e.scene.RequestFrame()
}

// controller returns the pointer controller for the scene's current pickable object, rebuilding
// it when that object changed. It returns nil when nothing in the scene is pickable.
func (e *engine) controller() interaction.PointerController {
	obj := e.scene.Pickable()
	if obj == nil {
		e.pointer, e.pointerSync = nil, nil
		return nil
	}
	syncer := obj.Synchronizer()
	if syncer == nil {
		return nil
	}
	if e.pointer == nil || e.pointerSync != syncer {
		cam := e.scene.Camera()
		e.pointer = interaction.NewPointerController(syncer, cam,
			interaction.WithPickRadius(obj.Model().BoundingRadius()),
			interaction.WithOrbiter(cam),
			interaction.WithFrameRequester(e.scene.RequestFrame),
		)
		e.pointerSync = syncer
	}
	return e.pointer
}

func (e *engine) mouseButton(button window.MouseButton, pressed bool, x, y float32) {
	if button != window.MouseButtonLeft {
		return
	}
	if pc := e.controller(); pc != nil {
		if pressed {
			pc.PointerDown(x, y)
			return
		}
		if err := pc.PointerUp(x, y); err != nil {
			log.Printf("[Engine] Pointer release failed: %v", err)
		}
		return
	}
	e.orbiting = pressed
	e.lastX, e.lastY = x, y
}

func (e *engine) mouseMove(x, y float32) {
	if pc := e.controller(); pc != nil {
		if err := pc.PointerMove(x, y); err != nil {
			log.Printf("[Engine] Pointer move failed: %v", err)
		}
		return
	}
	dx, dy := x-e.lastX, y-e.lastY
	e.lastX, e.lastY = x, y
	if !e.orbiting {
		return
	}
	e.scene.Camera().Orbit(dx, dy)
	e.scene.RequestFrame()
}
