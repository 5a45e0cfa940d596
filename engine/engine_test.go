package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-canvas/common"
	"github.com/Carmen-Shannon/oxy-canvas/engine/camera"
	"github.com/Carmen-Shannon/oxy-canvas/engine/game_object"
	"github.com/Carmen-Shannon/oxy-canvas/engine/model"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-canvas/engine/renderer/attribute"
	"github.com/Carmen-Shannon/oxy-canvas/engine/scene"
	"github.com/Carmen-Shannon/oxy-canvas/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow stands in for the GLFW window. Callbacks are stored but never driven; tests call
// the engine's handlers directly.
type fakeWindow struct {
	window.Window
	width, height int
	wakes         int
	closed        bool
}

func (w *fakeWindow) SetUpdateCallback(func()) {}
func (w *fakeWindow) SetResizeCallback(func(int, int)) {}
func (w *fakeWindow) SetScrollCallback(func(float32)) {}
func (w *fakeWindow) SetKeyDownCallback(func(uint32)) {}
func (w *fakeWindow) SetKeyUpCallback(func(uint32)) {}
func (w *fakeWindow) SetMouseButtonCallback(func(window.MouseButton, bool, float32, float32)) {}
func (w *fakeWindow) SetMouseMoveCallback(func(float32, float32)) {}
func (w *fakeWindow) SetIdleCheck(func() bool) {}

func (w *fakeWindow) Wake() { w.wakes++ }
func (w *fakeWindow) Width() int { return w.width }
func (w *fakeWindow) Height() int { return w.height }
func (w *fakeWindow) IsRunning() bool { return !w.closed }

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

// fakeScene implements the parts of scene.Scene the engine touches and doubles as the sink of
// its pickable object.
type fakeScene struct {
	scene.Scene
	cam      camera.Camera
	pickable game_object.GameObject
	hook     func()
	pending  bool
	requests int
	renders  int
	hovered  []float32
}

func (s *fakeScene) Name() string { return "fake" }
func (s *fakeScene) Active() bool { return true }
func (s *fakeScene) Camera() camera.Camera { return s.cam }
func (s *fakeScene) Renderer() renderer.Renderer { return nil }
func (s *fakeScene) Pickable() game_object.GameObject { return s.pickable }
func (s *fakeScene) SetRequestHook(fn func()) { s.hook = fn }
func (s *fakeScene) FrameRequested() bool { return s.pending }

func (s *fakeScene) RequestFrame() {
	s.pending = true
	s.requests++
	if s.hook != nil {
		s.hook()
	}
}

func (s *fakeScene) TakeFrameRequest() bool {
	p := s.pending
	s.pending = false
	return p
}

func (s *fakeScene) Render() error {
	s.renders++
	return nil
}

func (s *fakeScene) SetInstanceBuffer(_ string, slot attribute.Slot, data []float32, _ int) error {
	if slot == attribute.SlotHovered {
		s.hovered = append([]float32(nil), data...)
	}
	return nil
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (*engine, *fakeWindow, *fakeScene) {
	t.Helper()
	w := &fakeWindow{width: 800, height: 600}
	s := &fakeScene{
		cam: camera.NewCamera(camera.WithController(camera.NewCameraController(
			camera.WithEye(mgl32.Vec3{0, 5, -10}, mgl32.Vec3{}),
		))),
	}
	e := NewEngine(append([]EngineBuilderOption{WithWindow(w), WithScene(s)}, options...)...).(*engine)
	return e, w, s
}

func TestNewEngineRequiresWindowAndScene(t *testing.T) {
	assert.Panics(t, func() { NewEngine(WithScene(&fakeScene{})) })
	assert.Panics(t, func() { NewEngine(WithWindow(&fakeWindow{})) })
}

func TestNewEngineSetsViewport(t *testing.T) {
	_, _, s := newTestEngine(t)
	w, h := s.cam.Viewport()
	assert.Equal(t, float32(800), w)
	assert.Equal(t, float32(600), h)
}

func TestRequestsCoalesceIntoOneFrame(t *testing.T) {
	e, w, s := newTestEngine(t)

	e.update()
	assert.Zero(t, s.renders)

	e.RequestFrame()
	e.RequestFrame()
	e.RequestFrame()
	assert.Equal(t, 3, w.wakes)

	e.update()
	e.update()
	assert.Equal(t, 1, s.renders)
}

func TestIdle(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.True(t, e.idle())

	e.RequestFrame()
	assert.False(t, e.idle())
	e.update()
	assert.True(t, e.idle())

	e.keyDown(common.KeyW)
	assert.False(t, e.idle())
	e.keyUp(common.KeyW)
	assert.True(t, e.idle())

	polling, _, _ := newTestEngine(t, WithIdleWait(false))
	assert.False(t, polling.idle())
}

func TestPostRunsInOrderOnUpdate(t *testing.T) {
	e, w, _ := newTestEngine(t)
	var order []int
	e.Post(func() { order = append(order, 1) })
	e.Post(func() { order = append(order, 2) })
	e.Post(nil)

	assert.Equal(t, 2, w.wakes)
	assert.False(t, e.idle())
	assert.Empty(t, order)

	e.update()
	assert.Equal(t, []int{1, 2}, order)
}

func TestResizeUpdatesViewport(t *testing.T) {
	e, _, s := newTestEngine(t)
	e.resize(1024, 512)

	w, h := s.cam.Viewport()
	assert.Equal(t, float32(1024), w)
	assert.Equal(t, float32(512), h)
	assert.InDelta(t, 2, s.cam.Aspect(), 1e-6)
	assert.True(t, s.pending)
}

func TestScrollZooms(t *testing.T) {
	e, _, s := newTestEngine(t)
	before := s.cam.Controller().Radius()

	e.scroll(2)
	assert.Less(t, s.cam.Controller().Radius(), before)
	assert.True(t, s.pending)
}

func TestHeldKeysPan(t *testing.T) {
	e, _, s := newTestEngine(t)
	target := s.cam.Controller().Target()

	e.keyDown(common.KeyR)
	assert.Empty(t, e.held)

	e.keyDown(common.KeyE)
	start := e.lastStep
	e.pan(start.Add(time.Second))
	assert.InDelta(t, 1, s.cam.Controller().Target().Sub(target).Len(), 1e-4)
	assert.Greater(t, s.cam.Controller().Target().Y(), target.Y())
	assert.True(t, s.pending)

	e.keyUp(common.KeyE)
	s.pending = false
	e.pan(start.Add(2 * time.Second))
	assert.False(t, s.pending)
}

func TestOrbitWithoutPickable(t *testing.T) {
	e, _, s := newTestEngine(t)
	az := s.cam.Controller().Azimuth()

	e.mouseMove(100, 100)
	assert.False(t, s.pending)

	e.mouseButton(window.MouseButtonLeft, true, 100, 100)
	e.mouseMove(120, 100)
	assert.Greater(t, s.cam.Controller().Azimuth(), az)
	assert.True(t, s.pending)

	e.mouseButton(window.MouseButtonLeft, false, 120, 100)
	s.pending = false
	e.mouseMove(200, 100)
	assert.False(t, s.pending)
}

func TestPointerHoversPickableInstance(t *testing.T) {
	e, _, s := newTestEngine(t)
	obj := game_object.NewGameObject(
		model.NewSphere("sphere", 1, 16, [4]float32{1, 1, 1, 1}),
		"lit",
		game_object.WithPickable(true),
		game_object.WithPlacements(-2, 0, 2),
	)
	syncer, err := obj.Bind(s)
	require.NoError(t, err)
	require.NoError(t, syncer.Synchronize())
	s.pickable = obj

	e.mouseMove(400, 300)
	assert.Equal(t, 1, syncer.HoveredIndex())
	assert.Equal(t, []float32{0, 1, 0}, s.hovered)

	first := e.pointer
	e.mouseMove(0, 0)
	assert.Same(t, first, e.pointer)
	assert.Equal(t, []float32{0, 0, 0}, s.hovered)

	s.pickable = nil
	e.mouseMove(10, 10)
	assert.Nil(t, e.pointer)
}

func TestQuitClosesWindowWithoutRendering(t *testing.T) {
	e, w, s := newTestEngine(t)
	e.RequestFrame()
	e.Quit()
	e.Quit()

	e.update()
	assert.True(t, w.closed)
	assert.Zero(t, s.renders)
}
