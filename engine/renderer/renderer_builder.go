package renderer

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*Renderer)

// WithName sets the name the renderer logs with.
//
// Parameters:
//   - name: the renderer name
//
// Returns:
//   - RendererBuilderOption: a function that applies the name option to a renderer
func WithName(name string) RendererBuilderOption {
	return func(r *Renderer) {
		r.name = name
	}
}

// WithEffect installs an effect used instead of every surface effect.
//
// Parameters:
//   - effect: the override effect, or nil to draw surfaces with their own
//
// Returns:
//   - RendererBuilderOption: a function that applies the effect option to a renderer
func WithEffect(effect *render.Effect) RendererBuilderOption {
	return func(r *Renderer) {
		r.effect = effect
	}
}

// WithLayoutMask sets the mask a surface layout must intersect to be drawn.
//
// Parameters:
//   - mask: the layout mask, scene.LayoutVisibleDefault by default
//
// Returns:
//   - RendererBuilderOption: a function that applies the layout mask option to a renderer
func WithLayoutMask(mask scene.Layout) RendererBuilderOption {
	return func(r *Renderer) {
		r.layoutMask = mask
	}
}

// WithRenderPriority sets the order among renderers of one scene, higher first.
//
// Parameters:
//   - priority: the render priority
//
// Returns:
//   - RendererBuilderOption: a function that applies the priority option to a renderer
func WithRenderPriority(priority float32) RendererBuilderOption {
	return func(r *Renderer) {
		r.priority = priority
	}
}

// WithClearColor sets the RGBA color every frame starts from.
//
// Parameters:
//   - color: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(color [4]float32) RendererBuilderOption {
	return func(r *Renderer) {
		r.clearColor = color
	}
}

// WithClear controls whether the renderer clears the targets before issuing. Overlay
// renderers drawing on top of another one turn it off.
//
// Parameters:
//   - clear: false to keep the previous content
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear option to a renderer
func WithClear(clear bool) RendererBuilderOption {
	return func(r *Renderer) {
		r.clear = clear
	}
}

// WithViewport sets the viewport applied before issuing.
//
// Parameters:
//   - v: the viewport rectangle in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the viewport option to a renderer
func WithViewport(v Viewport) RendererBuilderOption {
	return func(r *Renderer) {
		r.viewport = v
	}
}

// WithPresent controls whether the renderer presents at the end of its frame.
//
// Parameters:
//   - present: false when a later renderer presents
//
// Returns:
//   - RendererBuilderOption: a function that applies the present option to a renderer
func WithPresent(present bool) RendererBuilderOption {
	return func(r *Renderer) {
		r.present = present
	}
}

// WithFrustumCulling turns frustum culling on or off.
func WithFrustumCulling(enabled bool) RendererBuilderOption {
	return func(r *Renderer) {
		r.culling = enabled
	}
}

// WithZSortTriggers replaces render.DefaultZSortTriggers for every draw call the renderer builds.
//
// Parameters:
//   - triggers: the properties whose change invalidates a draw call depth
//
// Returns:
//   - RendererBuilderOption: a function that applies the triggers option to a renderer
func WithZSortTriggers(triggers []render.ZSortTrigger) RendererBuilderOption {
	return func(r *Renderer) {
		r.triggers = triggers
	}
}

// WithMaxDrawCalls sets the number of draw call ids the renderer can hand out at once.
//
// Parameters:
//   - capacity: the id capacity, DefaultMaxDrawCalls by default
//
// Returns:
//   - RendererBuilderOption: a function that applies the capacity option to a renderer
func WithMaxDrawCalls(capacity int) RendererBuilderOption {
	return func(r *Renderer) {
		r.maxDrawCall = capacity
	}
}
