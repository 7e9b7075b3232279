// Package window opens the GLFW window the demo engine draws into.
package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// MouseButton identifies a mouse button in button callbacks.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// Window is a platform window with input callbacks. Every method must be called from the
// goroutine that created the window; callbacks fire from inside Poll.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the function called when a key is pressed, repeated or released.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*) and whether it is down
	SetKeyCallback(callback func(keyCode uint32, down bool))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta, positive when scrolling up
	SetScrollCallback(callback func(delta float32))

	// SetMouseButtonCallback sets the callback for mouse button presses and releases.
	SetMouseButtonCallback(callback func(button MouseButton, down bool, x, y float32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	SetMouseMoveCallback(callback func(x, y float32))

	// SurfaceDescriptor returns the platform surface descriptor for the WebGPU context.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Poll processes pending events without blocking.
	//
	// Returns:
	//   - bool: false once the window was asked to close
	Poll() bool

	// Time returns the seconds elapsed since the window was created.
	Time() float64

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int

	// Close destroys the window.
	//
	// Returns:
	//   - error: an error if the window was already closed
	Close() error
}

// engineWindow holds the window settings and callbacks. The GLFW state lives in
// window_glfw.go.
type engineWindow struct {
	title     string
	width     int
	height    int
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	platform *glfwWindow

	onResize      func(width, height int)
	onKey         func(keyCode uint32, down bool)
	onScroll      func(delta float32)
	onMouseButton func(button MouseButton, down bool, x, y float32)
	onMouseMove   func(x, y float32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. It locks the calling goroutine to its OS thread.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: an error if GLFW cannot initialize or create the window
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-scene",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 200,
		maxWidth:  -1,
		maxHeight: -1,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %dx%d", w.width, w.height)
	}
	if err := openPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyCallback(callback func(keyCode uint32, down bool)) {
	w.onKey = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button MouseButton, down bool, x, y float32)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// resized records the framebuffer size and forwards it. Zero sizes (minimized windows)
// are recorded but not forwarded.
func (w *engineWindow) resized(width, height int) {
	w.width, w.height = width, height
	if w.onResize != nil && width > 0 && height > 0 {
		w.onResize(width, height)
	}
}
