package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// MouseButton identifies a mouse button in button callbacks.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Window is a desktop window with a WebGPU surface. It delivers input to the callbacks installed
// by the engine and runs the message loop on the main thread.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseButtonCallback sets the callback for mouse button presses and releases.
	//
	// Parameters:
	//   - callback: function receiving the button, whether it was pressed, and the cursor position in pixels
	SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y float32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in pixels
	SetMouseMoveCallback(callback func(x, y float32))

	// SetIdleCheck sets the function consulted before each message loop iteration. When it
	// returns true the loop blocks until the next window event or Wake instead of polling.
	//
	// Parameters:
	//   - check: function reporting whether there is nothing to draw (or nil to always poll)
	SetIdleCheck(check func() bool)

	// Wake unblocks a message loop that is waiting for events. Safe to call from any goroutine.
	Wake()

	// SurfaceDescriptor describes the native surface of the window for wgpu surface creation.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open and has not been asked to close.
	//
	// Returns:
	//   - bool: false once the user or Close closed the window
	IsRunning() bool

	// Close destroys the window and shuts GLFW down.
	//
	// Returns:
	//   - error: an error if the window was never opened
	Close() error

	// ProcessMessages runs the message loop until the window closes, calling the update callback
	// once per iteration.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// sizeLimits bounds the client area during resize. A zero field is unbounded.
type sizeLimits struct {
	minWidth, minHeight int
	maxWidth, maxHeight int
}

// callbacks are the handlers installed by the engine. Any of them may be nil.
type callbacks struct {
	update      func()
	resize      func(width, height int)
	scroll      func(delta float32)
	keyDown     func(keyCode uint32)
	keyUp       func(keyCode uint32)
	mouseButton func(button MouseButton, pressed bool, x, y float32)
	mouseMove   func(x, y float32)
	idle        func() bool
}

// engineWindow is the implementation of the Window interface. width and height track the
// framebuffer in pixels once the GLFW window exists.
type engineWindow struct {
	title         string
	width, height int
	limits        sizeLimits
	on            callbacks

	// handle is nil until the GLFW window is created.
	handle *glfwWindow
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a GLFW window on the calling thread, which must stay the main
// thread for the lifetime of the window. It panics if GLFW cannot create the window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:  "oxy-canvas",
		width:  1280,
		height: 720,
		limits: sizeLimits{minWidth: 320, minHeight: 240},
	}
	for _, opt := range options {
		opt(w)
	}
	w.clampSize()

	h, err := openGLFWWindow(w)
	if err != nil {
		panic(fmt.Sprintf("window: %v", err))
	}
	w.handle = h
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.on.update = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.on.resize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.on.scroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.on.keyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.on.keyUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float32)) {
	w.on.mouseMove = callback
}

func (w *engineWindow) SetIdleCheck(check func() bool) {
	w.on.idle = check
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y float32)) {
	w.on.mouseButton = callback
}

func (w *engineWindow) Wake() {
	if w.handle != nil {
		w.handle.wake()
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.handle == nil {
		return nil
	}
	return w.handle.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.handle != nil && w.handle.open()
}

func (w *engineWindow) Close() error {
	if w.handle == nil {
		return errors.New("window: not open")
	}
	w.handle.destroy()
	return nil
}

// ProcessMessages blocks in WaitEvents while the idle check reports nothing to do, and polls
// otherwise. The update callback runs once per iteration.
func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		w.handle.pump(w.on.idle != nil && w.on.idle())
		if !w.IsRunning() {
			return
		}
		if w.on.update != nil {
			w.on.update()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// setFramebufferSize records a new framebuffer size and notifies the resize callback.
func (w *engineWindow) setFramebufferSize(width, height int) {
	w.width, w.height = width, height
	if w.on.resize != nil {
		w.on.resize(width, height)
	}
}

// clampSize keeps the requested size inside the size limits. A zero limit is unbounded.
func (w *engineWindow) clampSize() {
	l := w.limits
	if l.minWidth > 0 {
		w.width = max(w.width, l.minWidth)
	}
	if l.minHeight > 0 {
		w.height = max(w.height, l.minHeight)
	}
	if l.maxWidth > 0 {
		w.width = min(w.width, l.maxWidth)
	}
	if l.maxHeight > 0 {
		w.height = min(w.height, l.maxHeight)
	}
}

// scaleCursor maps a cursor position in window coordinates onto framebuffer pixels.
func scaleCursor(x, y float64, windowWidth, windowHeight, fbWidth, fbHeight int) (float32, float32) {
	if windowWidth > 0 && windowHeight > 0 {
		x *= float64(fbWidth) / float64(windowWidth)
		y *= float64(fbHeight) / float64(windowHeight)
	}
	return float32(x), float32(y)
}
