package common

// Key codes passed to window key callbacks. They match GLFW key codes, which use ASCII for
// printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32
	KeyA     = 65
	KeyD     = 68
	KeyE     = 69
	KeyQ     = 81
	KeyS     = 83
	KeyW     = 87

	KeyEscape = 256
	KeyRight  = 262
	KeyLeft   = 263
	KeyDown   = 264
	KeyUp     = 265
)
