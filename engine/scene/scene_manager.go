package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
)

// FrameRenderer is implemented by components that draw once per frame, such as the
// renderer. SceneManager discovers them in its tree and calls them in priority order.
type FrameRenderer interface {
	Component

	// Enabled reports whether the renderer takes part in the next frame.
	Enabled() bool

	// RenderPriority orders renderers, higher first.
	RenderPriority() float32

	// Render collects, sorts and issues the draw calls of one frame.
	//
	// Parameters:
	//   - ctx: the GPU context to draw with
	//
	// Returns:
	//   - error: the first issue failure, if any
	Render(ctx gpu.Context) error
}

// FrameEvent is emitted by FrameBegin and FrameEnd.
type FrameEvent struct {
	Manager   *SceneManager
	Time      float32
	DeltaTime float32
	FrameID   uint64
}

// SceneManager is the root component of a scene. It publishes time, deltaTime and
// frameId into the root data container and drives every FrameRenderer of the tree.
type SceneManager struct {
	BaseComponent

	ctx      gpu.Context
	provider *data.Provider
	frameID  uint64

	frameBegin *signal.Signal[FrameEvent]
	frameEnd   *signal.Signal[FrameEvent]
}

// NewSceneManager creates a scene manager bound to ctx. Panics when ctx is nil.
//
// Parameters:
//   - ctx: the GPU context handed to every renderer
//
// Returns:
//   - *SceneManager: the unattached manager
func NewSceneManager(ctx gpu.Context) *SceneManager {
	if ctx == nil {
		panic("scene: NewSceneManager requires a non-nil gpu.Context")
	}
	m := &SceneManager{
		ctx:        ctx,
		provider:   data.NewProvider("sceneManager"),
		frameBegin: signal.New[FrameEvent](),
		frameEnd:   signal.New[FrameEvent](),
	}
	_ = data.Set(m.provider, "time", float32(0))
	_ = data.Set(m.provider, "deltaTime", float32(0))
	_ = data.Set(m.provider, "frameId", 0)
	return m
}

// Context returns the GPU context.
func (m *SceneManager) Context() gpu.Context {
	return m.ctx
}

// FrameBegin fires before any renderer runs.
func (m *SceneManager) FrameBegin() *signal.Signal[FrameEvent] {
	return m.frameBegin
}

// FrameEnd fires after every renderer ran.
func (m *SceneManager) FrameEnd() *signal.Signal[FrameEvent] {
	return m.frameEnd
}

// FrameID returns the number of frames rendered so far.
func (m *SceneManager) FrameID() uint64 {
	return m.frameID
}

func (m *SceneManager) OnAttach(target Node) error {
	if target.Parent() != nil {
		common.Logger("SceneManager").Warn("attached to a non-root node", "node", target.Name())
	}
	if err := target.Data().AddProvider(m.provider); err != nil {
		return fmt.Errorf("publish frame data: %w", err)
	}
	return nil
}

func (m *SceneManager) OnDetach(target Node) {
	_ = target.Data().RemoveProvider(m.provider)
}

// NextFrame advances the clock and renders every enabled FrameRenderer found under the
// root, highest priority first.
//
// Parameters:
//   - time: the absolute time in seconds
//   - deltaTime: the time since the previous frame in seconds
//
// Returns:
//   - error: the joined render errors, if any
func (m *SceneManager) NextFrame(time, deltaTime float32) error {
	target := m.Target()
	if target == nil {
		return fmt.Errorf("next frame: %w", ErrNotAttached)
	}

	_ = data.Set(m.provider, "time", time)
	_ = data.Set(m.provider, "deltaTime", deltaTime)
	_ = data.Set(m.provider, "frameId", int(m.frameID))

	ev := FrameEvent{Manager: m, Time: time, DeltaTime: deltaTime, FrameID: m.frameID}
	m.frameBegin.Emit(ev)

	renderers := Components[FrameRenderer](NewNodeSet(target.Root()).Descendants(true, true))
	sort.SliceStable(renderers, func(i, j int) bool {
		return renderers[i].RenderPriority() > renderers[j].RenderPriority()
	})

	var errs []error
	for _, r := range renderers {
		if !r.Enabled() {
			continue
		}
		if err := r.Render(m.ctx); err != nil {
			errs = append(errs, err)
		}
	}

	m.frameEnd.Emit(ev)
	m.frameID++
	return errors.Join(errs...)
}
