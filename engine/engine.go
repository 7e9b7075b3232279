// Package engine drives the frame loop of one or more scenes on a single goroutine.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
)

// ErrNoSceneManager is returned by AddScene for a root without a scene.SceneManager.
var ErrNoSceneManager = errors.New("scene root has no SceneManager")

// Resizer is implemented by GPU contexts whose surface follows the window size.
type Resizer interface {
	Resize(width, height int) error
}

// Engine runs the frame loop. Each frame, on the calling goroutine, it polls the window,
// delivers finished loads, calls the tick callback, renders every scene in ascending key
// order and feeds the profiler.
type Engine interface {
	// Window returns the window, nil for a headless engine.
	Window() window.Window

	// Loader returns the asset loader drained every frame, nil if none was configured.
	Loader() *loader.Loader

	// AddScene registers a scene at the given key. Scenes render in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - root: the root node, carrying a scene.SceneManager
	//
	// Returns:
	//   - error: ErrNoSceneManager if the root has no manager
	AddScene(key int, root scene.Node) error

	// RemoveScene removes the scene at the given key.
	RemoveScene(key int)

	// Scene returns the root registered at key, or nil.
	Scene(key int) scene.Node

	// SetTickCallback registers the function called once per frame before rendering.
	//
	// Parameters:
	//   - callback: function receiving the frame delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// EnableProfiler turns the periodic frame stats log on.
	EnableProfiler()

	// DisableProfiler turns the periodic frame stats log off.
	DisableProfiler()

	// Frame runs one iteration of the loop without polling the window.
	//
	// Parameters:
	//   - now: the absolute time in seconds
	//
	// Returns:
	//   - error: the joined scene errors, if any
	Frame(now float64) error

	// Run polls the window and runs frames until the window closes or Quit is called.
	Run()

	// Quit makes Run return after the current frame.
	Quit()
}

type engine struct {
	window  window.Window
	resizer Resizer
	loader  *loader.Loader

	scenes map[int]scene.Node
	keys   []int

	tickCallback func(deltaTime float32)

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameLimit time.Duration
	lastTime   float64
	started    bool
	quit       bool

	logger *slog.Logger
}

var _ Engine = &engine{}

// NewEngine creates an engine. Without WithWindow the engine is headless and only Frame
// drives it.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		scenes:   make(map[int]scene.Node),
		profiler: profiler.NewProfiler(time.Second),
		logger:   common.Logger("Engine"),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Loader() *loader.Loader {
	return e.loader
}

func (e *engine) AddScene(key int, root scene.Node) error {
	if _, ok := scene.ComponentOf[*scene.SceneManager](root); !ok {
		return fmt.Errorf("add scene %s: %w", root.Name(), ErrNoSceneManager)
	}
	if _, ok := e.scenes[key]; !ok {
		e.keys = append(e.keys, key)
		sort.Ints(e.keys)
	}
	e.scenes[key] = root
	return nil
}

func (e *engine) RemoveScene(key int) {
	if _, ok := e.scenes[key]; !ok {
		return
	}
	delete(e.scenes, key)
	for i, k := range e.keys {
		if k == key {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
}

func (e *engine) Scene(key int) scene.Node {
	return e.scenes[key]
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Frame(now float64) error {
	if !e.started {
		e.lastTime, e.started = now, true
	}
	dt := float32(now - e.lastTime)
	e.lastTime = now

	if e.loader != nil {
		e.loader.Drain()
	}
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}

	var errs []error
	var drawCalls, culled int
	for _, key := range e.keys {
		root := e.scenes[key]
		manager, ok := scene.ComponentOf[*scene.SceneManager](root)
		if !ok {
			errs = append(errs, fmt.Errorf("scene %d: %w", key, ErrNoSceneManager))
			continue
		}
		if err := manager.NextFrame(float32(now), dt); err != nil {
			errs = append(errs, fmt.Errorf("scene %d: %w", key, err))
		}
		for _, r := range scene.Components[*renderer.Renderer](scene.NewNodeSet(root).Descendants(true, true)) {
			stats := r.Stats()
			drawCalls += stats.DrawCalls
			culled += stats.Culled
		}
	}

	if e.profilingEnabled {
		e.profiler.Tick(drawCalls, culled)
	}
	return errors.Join(errs...)
}

func (e *engine) Run() {
	if e.window == nil {
		e.logger.Error("run requires a window")
		return
	}
	e.quit = false
	for !e.quit && e.window.Poll() {
		start := time.Now()
		if err := e.Frame(e.window.Time()); err != nil {
			e.logger.Error("frame failed", "error", err)
		}
		if e.frameLimit > 0 {
			if remaining := e.frameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) Quit() {
	e.quit = true
}

// resize reconfigures the surface and keeps every camera aspect in step with the window.
func (e *engine) resize(width, height int) {
	if e.resizer != nil {
		if err := e.resizer.Resize(width, height); err != nil {
			e.logger.Error("resize failed", "width", width, "height", height, "error", err)
		}
	}
	aspect := float32(width) / float32(height)
	for _, root := range e.scenes {
		for _, c := range scene.Components[*camera.Camera](scene.NewNodeSet(root).Descendants(true, true)) {
			c.SetAspect(aspect)
		}
	}
	e.logger.Debug("resized", "width", width, "height", height)
}
