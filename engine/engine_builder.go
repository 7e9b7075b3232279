package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithWindow sets the window polled by Run.
//
// Parameters:
//   - w: an open window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithResizer sets the context resized with the window, usually the backend context.
//
// Parameters:
//   - r: the surface owner
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResizer(r Resizer) EngineBuilderOption {
	return func(e *engine) {
		e.resizer = r
	}
}

// WithLoader sets the loader drained at the start of every frame.
func WithLoader(l *loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.loader = l
	}
}

// WithProfiling enables or disables the frame stats log.
//
// Parameters:
//   - enabled: if true, logs frame stats once per interval
//   - interval: the time between two log lines, one second when not positive
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool, interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
		e.profiler = profiler.NewProfiler(interval)
	}
}

// WithFrameLimit caps Run at fps frames per second. Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}
