package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
	"github.com/Carmen-Shannon/oxy-scene/engine/surface"
)

// DefaultMaxDrawCalls is the id capacity of a renderer built without WithMaxDrawCalls.
const DefaultMaxDrawCalls = 65536

// Viewport is a rectangle in pixels. A zero width or height leaves the backend viewport
// untouched.
type Viewport struct {
	X, Y, Width, Height int
}

// Renderer is the component that turns the surfaces of its scene into sorted draw calls
// once per frame. The node holding it is the renderer tier of every draw call scope, so
// a Camera on the same node feeds worldToScreenMatrix and eyePosition.
//
// Structural changes (surfaces added, removed or swapped) are queued and applied at the
// start of the next Render, never while a frame is issued.
type Renderer struct {
	scene.BaseComponent

	name        string
	effect      *render.Effect
	layoutMask  scene.Layout
	priority    float32
	enabled     bool
	clear       bool
	clearColor  [4]float32
	viewport    Viewport
	present     bool
	culling     bool
	triggers    []render.ZSortTrigger
	maxDrawCall int

	ids  *common.LinearIdAllocator
	root scene.Node

	surfaces   []*surface.Surface
	registered map[*surface.Surface]*signal.Connection
	pending    []*surface.Surface
	queued     map[*surface.Surface]struct{}
	issuing    bool

	targetSlots signal.Slots
	rootSlots   signal.Slots

	renderingBegin *signal.Signal[*Renderer]
	beforePresent  *signal.Signal[*Renderer]
	renderingEnd   *signal.Signal[*Renderer]

	stats  FrameStats
	logger *slog.Logger
}

// FrameStats describes the last frame of a renderer.
type FrameStats struct {
	DrawCalls   int
	Visible     int
	Culled      int
	Opaque      int
	Transparent int
}

var _ scene.FrameRenderer = &Renderer{}

// NewRenderer creates a renderer with the default layout mask, a black clear color and
// DefaultMaxDrawCalls ids. Panics when the id capacity is not positive.
//
// Parameters:
//   - options: functional options applied after defaults
//
// Returns:
//   - *Renderer: the unattached renderer
func NewRenderer(options ...RendererBuilderOption) *Renderer {
	r := &Renderer{
		name:           "renderer",
		layoutMask:     scene.LayoutVisibleDefault,
		enabled:        true,
		clear:          true,
		clearColor:     gpu.DefaultClearOptions().Color,
		present:        true,
		culling:        true,
		triggers:       render.DefaultZSortTriggers(),
		maxDrawCall:    DefaultMaxDrawCalls,
		registered:     make(map[*surface.Surface]*signal.Connection),
		queued:         make(map[*surface.Surface]struct{}),
		renderingBegin: signal.New[*Renderer](),
		beforePresent:  signal.New[*Renderer](),
		renderingEnd:   signal.New[*Renderer](),
	}
	for _, option := range options {
		option(r)
	}
	r.ids = common.NewLinearIdAllocator(r.maxDrawCall)
	r.logger = common.Logger("Renderer").With("renderer", r.name)
	return r
}

// Name returns the renderer name.
func (r *Renderer) Name() string {
	return r.name
}

// Enabled reports whether the renderer takes part in SceneManager frames.
func (r *Renderer) Enabled() bool {
	return r.enabled
}

// SetEnabled turns the renderer on or off.
func (r *Renderer) SetEnabled(enabled bool) {
	r.enabled = enabled
}

// RenderPriority returns the order among renderers of one scene, higher first.
func (r *Renderer) RenderPriority() float32 {
	return r.priority
}

// SetRenderPriority sets the order among renderers of one scene.
func (r *Renderer) SetRenderPriority(priority float32) {
	r.priority = priority
}

// LayoutMask returns the mask a surface layout must intersect to be drawn.
func (r *Renderer) LayoutMask() scene.Layout {
	return r.layoutMask
}

// SetLayoutMask replaces the layout mask. It applies from the next frame.
func (r *Renderer) SetLayoutMask(mask scene.Layout) {
	r.layoutMask = mask
}

// Effect returns the override effect, or nil when surfaces draw with their own.
func (r *Renderer) Effect() *render.Effect {
	return r.effect
}

// SetEffect installs an effect used instead of every surface effect, or removes the
// override when nil. Every surface is rebuilt at the next frame.
//
// Parameters:
//   - effect: the override effect, or nil
func (r *Renderer) SetEffect(effect *render.Effect) {
	if effect == r.effect {
		return
	}
	r.effect = effect
	for _, s := range r.surfaces {
		r.queue(s)
	}
}

// ClearColor returns the RGBA color the frame starts from.
func (r *Renderer) ClearColor() [4]float32 {
	return r.clearColor
}

// SetClearColor sets the RGBA color the frame starts from.
func (r *Renderer) SetClearColor(color [4]float32) {
	r.clearColor = color
}

// Viewport returns the viewport applied before issuing.
func (r *Renderer) Viewport() Viewport {
	return r.viewport
}

// SetViewport sets the viewport applied before issuing.
func (r *Renderer) SetViewport(v Viewport) {
	r.viewport = v
}

// FrustumCulling reports whether draw calls outside the camera frustum are skipped.
func (r *Renderer) FrustumCulling() bool {
	return r.culling
}

// SetFrustumCulling turns frustum culling on or off.
func (r *Renderer) SetFrustumCulling(enabled bool) {
	r.culling = enabled
}

// Stats returns the counters of the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// RenderingBegin fires before the renderer collects its draw calls.
func (r *Renderer) RenderingBegin() *signal.Signal[*Renderer] {
	return r.renderingBegin
}

// BeforePresent fires after every draw call was issued and before Present.
func (r *Renderer) BeforePresent() *signal.Signal[*Renderer] {
	return r.beforePresent
}

// RenderingEnd fires once the frame was presented.
func (r *Renderer) RenderingEnd() *signal.Signal[*Renderer] {
	return r.renderingEnd
}

// Surfaces returns the surfaces the renderer tracks, in registration order.
func (r *Renderer) Surfaces() []*surface.Surface {
	out := make([]*surface.Surface, len(r.surfaces))
	copy(out, r.surfaces)
	return out
}

// Pending reports how many surfaces wait for the next frame to be rebuilt.
func (r *Renderer) Pending() int {
	return len(r.pending)
}

func (r *Renderer) OnAttach(target scene.Node) error {
	r.targetSlots.Add(
		target.Added().Connect(r.onTargetMoved),
		target.Removed().Connect(r.onTargetMoved),
	)
	r.setRoot(target.Root())
	return nil
}

func (r *Renderer) OnDetach(scene.Node) {
	r.targetSlots.DisconnectAll()
	r.setRoot(nil)
}

func (r *Renderer) OnClone() scene.Component {
	c := NewRenderer(
		WithName(r.name),
		WithEffect(r.effect),
		WithLayoutMask(r.layoutMask),
		WithRenderPriority(r.priority),
		WithClearColor(r.clearColor),
		WithViewport(r.viewport),
		WithPresent(r.present),
		WithFrustumCulling(r.culling),
		WithZSortTriggers(r.triggers),
		WithMaxDrawCalls(r.maxDrawCall),
	)
	c.enabled = r.enabled
	c.clear = r.clear
	return c
}

// Render runs one frame: RenderingBegin, collect, sort, clear, issue, BeforePresent,
// Present and RenderingEnd. Build and issue failures are logged and joined into the
// returned error; the frame still completes.
//
// Parameters:
//   - ctx: the GPU context draw calls are built and issued on
//
// Returns:
//   - error: the joined build and issue failures, if any
func (r *Renderer) Render(ctx gpu.Context) error {
	if ctx == nil {
		panic("renderer: Render requires a non-nil gpu.Context")
	}
	if r.Target() == nil {
		return fmt.Errorf("render %s: %w", r.name, scene.ErrNotAttached)
	}
	r.renderingBegin.Emit(r)

	var errs []error
	visible, err := r.collect(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	opaque, transparent := render.Partition(visible)
	render.SortOpaque(opaque)
	render.SortTransparent(transparent)
	r.stats.Opaque, r.stats.Transparent = len(opaque), len(transparent)

	if r.viewport.Width > 0 && r.viewport.Height > 0 {
		v := r.viewport
		if err := ctx.ConfigureViewport(v.X, v.Y, v.Width, v.Height); err != nil {
			errs = append(errs, fmt.Errorf("configure viewport: %w", err))
		}
	}
	if r.clear {
		opts := gpu.DefaultClearOptions()
		opts.Color = r.clearColor
		if err := ctx.Clear(opts); err != nil {
			errs = append(errs, fmt.Errorf("clear: %w", err))
		}
	}

	r.issuing = true
	for _, list := range [][]*render.DrawCall{opaque, transparent} {
		for _, d := range list {
			if err := d.Issue(); err != nil {
				r.logger.Error("failed to issue draw call", "id", d.ID(), "pass", d.Pass().Name(), "error", err)
				errs = append(errs, err)
			}
		}
	}
	r.issuing = false

	r.beforePresent.Emit(r)
	if r.present {
		if err := ctx.Present(); err != nil {
			errs = append(errs, fmt.Errorf("present: %w", err))
		}
	}
	r.renderingEnd.Emit(r)
	return errors.Join(errs...)
}

// collect applies the queued structural changes, rebuilds dirty draw calls and returns
// the ready ones that pass the layout and frustum tests.
func (r *Renderer) collect(ctx gpu.Context) ([]*render.DrawCall, error) {
	var errs []error
	r.applyPending(ctx)

	frustum, cull := r.frustum()
	r.stats = FrameStats{}
	var visible []*render.DrawCall
	for _, s := range r.surfaces {
		drawCalls := s.DrawCalls(r)
		r.stats.DrawCalls += len(drawCalls)
		if len(drawCalls) == 0 {
			continue
		}
		layout := s.Layout()
		inLayout := layout.Intersects(r.layoutMask)
		culled := inLayout && cull && !layout.Has(scene.LayoutIgnoreCulling) && !r.inFrustum(s, frustum)
		if culled {
			r.stats.Culled += len(drawCalls)
		}
		for _, d := range drawCalls {
			if err := d.Update(); err != nil {
				r.logger.Error("failed to build draw call", "surface", s.Name(), "pass", d.Pass().Name(), "error", err)
				errs = append(errs, err)
				continue
			}
			if !d.Ready() || !inLayout || culled {
				continue
			}
			visible = append(visible, d)
		}
	}
	r.stats.Visible = len(visible)
	return visible, errors.Join(errs...)
}

// frustum extracts the camera frustum from the renderer tier. ok is false when the
// renderer node publishes no worldToScreenMatrix or culling is off.
func (r *Renderer) frustum() (common.Frustum, bool) {
	if !r.culling {
		return common.Frustum{}, false
	}
	w2s, err := data.Get[mgl32.Mat4](r.Target().Data(), render.WorldToScreenMatrixProperty)
	if err != nil {
		return common.Frustum{}, false
	}
	return common.ExtractFrustum(w2s), true
}

// inFrustum tests the world-space bounding sphere of the surface geometry. Surfaces
// without bounds are kept.
func (r *Renderer) inFrustum(s *surface.Surface, f common.Frustum) bool {
	c := s.Target().Data()
	center, err := data.Get[mgl32.Vec3](c, geometry.CenterPositionProperty)
	if err != nil {
		return true
	}
	radius, err := data.Get[float32](c, geometry.BoundingRadiusProperty)
	if err != nil {
		return true
	}
	world, err := data.Get[mgl32.Mat4](c, render.ModelToWorldMatrixProperty)
	if err != nil {
		world = mgl32.Ident4()
	}
	scale := max(world.Col(0).Vec3().Len(), world.Col(1).Vec3().Len(), world.Col(2).Vec3().Len())
	worldCenter := world.Mul4x1(center.Vec4(1)).Vec3()
	return f.ContainsSphere(worldCenter, radius*scale)
}

// applyPending disposes the draw calls of every queued surface and rebuilds those still
// in the scene. Surfaces queued while this runs wait for the next frame.
func (r *Renderer) applyPending(ctx gpu.Context) {
	pending := r.pending
	r.pending = nil
	clear(r.queued)
	for _, s := range pending {
		r.disposeDrawCalls(s)
		if !r.inScene(s) {
			r.unregister(s)
			continue
		}
		r.createDrawCalls(ctx, s)
	}
}

func (r *Renderer) createDrawCalls(ctx gpu.Context, s *surface.Surface) {
	effect := r.effect
	if effect == nil {
		effect = s.Effect()
	}
	if effect == nil || s.Geometry() == nil || s.Material() == nil {
		return
	}
	scope := data.Scope{Target: s.Target().Data(), Renderer: r.Target().Data(), Root: r.root.Data()}
	drawCalls := make([]*render.DrawCall, 0, len(effect.Passes()))
	for _, pass := range effect.Passes() {
		id, err := r.ids.Allocate()
		if err != nil {
			r.logger.Error("no draw call id left", "surface", s.Name(), "pass", pass.Name(), "error", err)
			break
		}
		drawCalls = append(drawCalls, render.NewDrawCall(id, pass, scope, ctx, render.WithZSortTriggers(r.triggers)))
	}
	s.SetDrawCalls(r, drawCalls)
}

func (r *Renderer) disposeDrawCalls(s *surface.Surface) {
	for _, d := range s.TakeDrawCalls(r) {
		if err := d.Dispose(); err != nil {
			r.logger.Error("failed to dispose draw call", "id", d.ID(), "error", err)
		}
		if err := r.ids.Free(d.ID()); err != nil {
			r.logger.Error("failed to free draw call id", "id", d.ID(), "error", err)
		}
	}
}

func (r *Renderer) inScene(s *surface.Surface) bool {
	t := s.Target()
	return r.root != nil && t != nil && t.Root() == r.root
}

// setRoot moves the renderer to another scene. Every draw call of the previous scene is
// disposed immediately.
func (r *Renderer) setRoot(root scene.Node) {
	if root == r.root {
		return
	}
	r.rootSlots.DisconnectAll()
	for _, s := range r.surfaces {
		r.disposeDrawCalls(s)
		if conn := r.registered[s]; conn != nil {
			conn.Disconnect()
		}
	}
	r.surfaces = nil
	clear(r.registered)
	r.pending = nil
	clear(r.queued)

	r.root = root
	if root == nil {
		return
	}
	r.rootSlots.Add(
		root.Added().Connect(r.onRootAdded),
		root.Removed().Connect(r.onRootRemoved),
		root.ComponentAdded().Connect(r.onComponentAdded),
		root.ComponentRemoved().Connect(r.onComponentRemoved),
	)
	r.scan(root)
}

func (r *Renderer) scan(n scene.Node) {
	for _, s := range scene.Components[*surface.Surface](scene.NewNodeSet(n).Descendants(true, true)) {
		r.register(s)
	}
}

func (r *Renderer) register(s *surface.Surface) {
	if _, ok := r.registered[s]; ok {
		r.queue(s)
		return
	}
	r.registered[s] = s.Changed().Connect(func(e surface.Event) {
		if e.Kind != surface.VisibilityChanged {
			r.queue(e.Surface)
		}
	})
	r.surfaces = append(r.surfaces, s)
	r.queue(s)
}

func (r *Renderer) unregister(s *surface.Surface) {
	conn, ok := r.registered[s]
	if !ok {
		return
	}
	conn.Disconnect()
	delete(r.registered, s)
	for i, other := range r.surfaces {
		if other == s {
			r.surfaces = append(r.surfaces[:i], r.surfaces[i+1:]...)
			break
		}
	}
}

func (r *Renderer) queue(s *surface.Surface) {
	if _, ok := r.queued[s]; ok {
		return
	}
	if r.issuing {
		r.logger.Debug("structural change queued during issue", "surface", s.Name())
	}
	r.queued[s] = struct{}{}
	r.pending = append(r.pending, s)
}

func (r *Renderer) onTargetMoved(scene.NodeEvent) {
	if t := r.Target(); t != nil {
		r.setRoot(t.Root())
	}
}

func (r *Renderer) onRootAdded(e scene.NodeEvent) {
	if e.Node != r.root {
		return
	}
	r.scan(e.Target)
}

func (r *Renderer) onRootRemoved(e scene.NodeEvent) {
	if e.Node != r.root {
		return
	}
	for _, s := range scene.Components[*surface.Surface](scene.NewNodeSet(e.Target).Descendants(true, true)) {
		if _, ok := r.registered[s]; ok {
			r.queue(s)
		}
	}
}

func (r *Renderer) onComponentAdded(e scene.ComponentEvent) {
	if s, ok := e.Component.(*surface.Surface); ok && e.Node == r.root {
		r.register(s)
	}
}

func (r *Renderer) onComponentRemoved(e scene.ComponentEvent) {
	if s, ok := e.Component.(*surface.Surface); ok && e.Node == r.root {
		if _, registered := r.registered[s]; registered {
			r.queue(s)
		}
	}
}
