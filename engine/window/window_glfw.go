package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the GLFW side of an engineWindow.
type glfwWindow struct {
	win    *glfw.Window
	closed bool
}

var glfwButtons = map[glfw.MouseButton]MouseButton{
	glfw.MouseButtonLeft:   MouseButtonLeft,
	glfw.MouseButtonRight:  MouseButtonRight,
	glfw.MouseButtonMiddle: MouseButtonMiddle,
}

// openGLFWWindow creates a window without a client API (wgpu owns the surface), applies the
// size limits and forwards input to w's callbacks. The calling goroutine is locked to its
// thread since GLFW must be driven from the thread that initialized it.
//
// Reference: https://www.glfw.org/docs/latest/window_guide.html
func openGLFWWindow(w *engineWindow) (*glfwWindow, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw create window: %w", err)
	}
	h := &glfwWindow{win: win}
	l := w.limits
	win.SetSizeLimits(sizeLimit(l.minWidth), sizeLimit(l.minHeight), sizeLimit(l.maxWidth), sizeLimit(l.maxHeight))

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
			return
		}
		if action == glfw.Release {
			if w.on.keyUp != nil {
				w.on.keyUp(uint32(key))
			}
		} else if w.on.keyDown != nil {
			w.on.keyDown(uint32(key))
		}
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		if w.on.scroll != nil {
			w.on.scroll(float32(dy))
		}
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		mb, ok := glfwButtons[button]
		if ok && action != glfw.Repeat && w.on.mouseButton != nil {
			x, y := h.cursor()
			w.on.mouseButton(mb, action == glfw.Press, x, y)
		}
	})
	win.SetCursorPosCallback(func(*glfw.Window, float64, float64) {
		if w.on.mouseMove != nil {
			w.on.mouseMove(h.cursor())
		}
	})
	// Framebuffer size, not window size: the two differ on high-DPI displays and the surface is
	// configured in pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setFramebufferSize(width, height)
	})

	w.width, w.height = win.GetFramebufferSize()
	return h, nil
}

func (h *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(h.win)
}

func (h *glfwWindow) open() bool {
	return !h.closed && !h.win.ShouldClose()
}

func (h *glfwWindow) destroy() {
	if h.closed {
		return
	}
	h.closed = true
	h.win.Destroy()
	glfw.Terminate()
}

// pump handles pending events, blocking until one arrives when wait is set.
func (h *glfwWindow) pump(wait bool) {
	if wait {
		glfw.WaitEvents()
		return
	}
	glfw.PollEvents()
}

// wake makes a blocked WaitEvents return. GLFW allows it from any thread.
func (h *glfwWindow) wake() {
	if !h.closed {
		glfw.PostEmptyEvent()
	}
}

// cursor returns the cursor position in framebuffer pixels.
func (h *glfwWindow) cursor() (float32, float32) {
	x, y := h.win.GetCursorPos()
	ww, wh := h.win.GetSize()
	fw, fh := h.win.GetFramebufferSize()
	return scaleCursor(x, y, ww, wh, fw, fh)
}

// sizeLimit maps an unset limit to glfw.DontCare.
func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}
