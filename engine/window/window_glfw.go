package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwWindow struct {
	window *glfw.Window
}

// openPlatformWindow creates the GLFW window without a client API, since WebGPU creates
// its own surface, and routes the GLFW callbacks to w.
func openPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create GLFW window: %w", err)
	}
	minW, minH, maxW, maxH := w.minWidth, w.minHeight, w.maxWidth, w.maxHeight
	if minW <= 0 {
		minW = glfw.DontCare
	}
	if minH <= 0 {
		minH = glfw.DontCare
	}
	if maxW <= 0 {
		maxW = glfw.DontCare
	}
	if maxH <= 0 {
		maxH = glfw.DontCare
	}
	win.SetSizeLimits(minW, minH, maxW, maxH)
	w.platform = &glfwWindow{window: win}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
			return
		}
		if w.onKey == nil || key == glfw.KeyUnknown {
			return
		}
		w.onKey(uint32(key), action != glfw.Release)
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if w.onMouseButton == nil {
			return
		}
		var b MouseButton
		switch button {
		case glfw.MouseButtonLeft:
			b = MouseLeft
		case glfw.MouseButtonRight:
			b = MouseRight
		case glfw.MouseButtonMiddle:
			b = MouseMiddle
		default:
			return
		}
		x, y := win.GetCursorPos()
		w.onMouseButton(b, action == glfw.Press, float32(x), float32(y))
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(float32(x), float32(y))
		}
	})

	// Framebuffer size is in pixels, which differs from the window size on high-DPI
	// displays and is what the surface must be configured with.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})
	w.width, w.height = win.GetFramebufferSize()
	return nil
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.platform.window)
}

func (w *engineWindow) Poll() bool {
	if w.platform == nil {
		return false
	}
	glfw.PollEvents()
	return !w.platform.window.ShouldClose()
}

func (w *engineWindow) Time() float64 {
	return glfw.GetTime()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return errors.New("window is not open")
	}
	w.platform.window.Destroy()
	w.platform = nil
	glfw.Terminate()
	return nil
}
