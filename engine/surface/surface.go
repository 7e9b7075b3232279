// Package surface joins a geometry, a material and an effect on a scene node. Renderers
// discover surfaces in their tree and build one draw call per effect pass for each.
package surface

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
)

// ChangeKind tells what a Changed event is about.
type ChangeKind int

const (
	GeometryChanged ChangeKind = iota
	MaterialChanged
	EffectChanged
	VisibilityChanged
)

// Event is emitted by Surface.Changed.
type Event struct {
	Surface *Surface
	Kind    ChangeKind
}

// Surface is the component that makes a node drawable. While attached it registers the
// geometry and material providers into the node container, where the passes of the effect
// find them through target-scope bindings.
//
// Draw calls are owned by the surface and keyed by the renderer that built them; the
// renderer creates and disposes them.
type Surface struct {
	scene.BaseComponent

	name       string
	geometry   geometry.Geometry
	material   material.Material
	effect     *render.Effect
	layoutMask scene.Layout

	drawCalls map[any][]*render.DrawCall
	changed   *signal.Signal[Event]
}

var _ scene.Component = &Surface{}

// NewSurface creates a detached surface. Any of geometry, material and effect may be nil,
// in which case the surface produces no draw calls until it is set.
//
// Parameters:
//   - name: the surface name used in logs
//   - geom: the geometry to draw
//   - mat: the material providing per-surface properties
//   - effect: the effect whose passes draw the surface
//
// Returns:
//   - *Surface: the new surface
func NewSurface(name string, geom geometry.Geometry, mat material.Material, effect *render.Effect) *Surface {
	return &Surface{
		name:       name,
		geometry:   geom,
		material:   mat,
		effect:     effect,
		layoutMask: scene.LayoutEverything,
		drawCalls:  make(map[any][]*render.DrawCall),
		changed:    signal.New[Event](),
	}
}

// Name returns the surface name.
func (s *Surface) Name() string {
	return s.name
}

func (s *Surface) String() string {
	return fmt.Sprintf("Surface(%s)", s.name)
}

// Geometry returns the current geometry, or nil.
func (s *Surface) Geometry() geometry.Geometry {
	return s.geometry
}

// Material returns the current material, or nil.
func (s *Surface) Material() material.Material {
	return s.material
}

// Effect returns the current effect, or nil.
func (s *Surface) Effect() *render.Effect {
	return s.effect
}

// Changed fires after a swap or a visibility change.
func (s *Surface) Changed() *signal.Signal[Event] {
	return s.changed
}

// Complete reports whether geometry, material and effect are all set.
func (s *Surface) Complete() bool {
	return s.geometry != nil && s.material != nil && s.effect != nil
}

// SetGeometry swaps the geometry. The renderers rebuild the draw calls of the surface at
// their next frame.
//
// Parameters:
//   - geom: the new geometry, or nil
//
// Returns:
//   - error: data.ErrDuplicatePropertyName when the node already defines one of its names
func (s *Surface) SetGeometry(geom geometry.Geometry) error {
	if geom == s.geometry {
		return nil
	}
	if err := s.swap(providerOf(s.geometry), providerOf(geom)); err != nil {
		return fmt.Errorf("set geometry of %s: %w", s.name, err)
	}
	s.geometry = geom
	s.changed.Emit(Event{Surface: s, Kind: GeometryChanged})
	return nil
}

// SetMaterial swaps the material.
//
// Parameters:
//   - mat: the new material, or nil
//
// Returns:
//   - error: data.ErrDuplicatePropertyName when the node already defines one of its names
func (s *Surface) SetMaterial(mat material.Material) error {
	if mat == s.material {
		return nil
	}
	if err := s.swap(providerOf(s.material), providerOf(mat)); err != nil {
		return fmt.Errorf("set material of %s: %w", s.name, err)
	}
	s.material = mat
	s.changed.Emit(Event{Surface: s, Kind: MaterialChanged})
	return nil
}

// SetEffect swaps the effect.
func (s *Surface) SetEffect(effect *render.Effect) {
	if effect == s.effect {
		return
	}
	s.effect = effect
	s.changed.Emit(Event{Surface: s, Kind: EffectChanged})
}

// LayoutMask returns the surface mask, intersected with the node layout when filtering.
func (s *Surface) LayoutMask() scene.Layout {
	return s.layoutMask
}

// SetLayoutMask replaces the surface mask.
func (s *Surface) SetLayoutMask(mask scene.Layout) {
	if mask == s.layoutMask {
		return
	}
	s.layoutMask = mask
	s.changed.Emit(Event{Surface: s, Kind: VisibilityChanged})
}

// Visible reports whether the surface mask lets any layout through.
func (s *Surface) Visible() bool {
	return s.layoutMask != 0
}

// SetVisible shows the surface to every renderer, or hides it from all of them.
func (s *Surface) SetVisible(visible bool) {
	if visible {
		s.SetLayoutMask(scene.LayoutEverything)
	} else {
		s.SetLayoutMask(0)
	}
}

// Layout returns the node layout filtered by the surface mask, 0 when detached.
//
// Returns:
//   - scene.Layout: the layout a renderer matches against its own mask
func (s *Surface) Layout() scene.Layout {
	target := s.Target()
	if target == nil {
		return 0
	}
	return target.Layout() & s.layoutMask
}

// DrawCalls returns the draw calls built for the surface by owner.
//
// Parameters:
//   - owner: the renderer that built them
//
// Returns:
//   - []*render.DrawCall: one draw call per pass, or nil
func (s *Surface) DrawCalls(owner any) []*render.DrawCall {
	return s.drawCalls[owner]
}

// SetDrawCalls stores the draw calls owner built for the surface.
func (s *Surface) SetDrawCalls(owner any, drawCalls []*render.DrawCall) {
	if len(drawCalls) == 0 {
		delete(s.drawCalls, owner)
		return
	}
	s.drawCalls[owner] = drawCalls
}

// TakeDrawCalls removes and returns the draw calls of owner, leaving disposal to the caller.
func (s *Surface) TakeDrawCalls(owner any) []*render.DrawCall {
	dcs := s.drawCalls[owner]
	delete(s.drawCalls, owner)
	return dcs
}

func (s *Surface) OnAttach(target scene.Node) error {
	container := target.Data()
	var added []*data.Provider
	for _, p := range []*data.Provider{providerOf(s.geometry), providerOf(s.material)} {
		if p == nil {
			continue
		}
		if err := container.AddProvider(p); err != nil {
			for _, a := range added {
				_ = container.RemoveProvider(a)
			}
			return fmt.Errorf("attach %s: %w", s.name, err)
		}
		added = append(added, p)
	}
	return nil
}

func (s *Surface) OnDetach(target scene.Node) {
	container := target.Data()
	for _, p := range []*data.Provider{providerOf(s.geometry), providerOf(s.material)} {
		if p != nil && container.HasProvider(p) {
			_ = container.RemoveProvider(p)
		}
	}
}

func (s *Surface) OnClone() scene.Component {
	clone := NewSurface(s.name, s.geometry, s.material, s.effect)
	clone.layoutMask = s.layoutMask
	return clone
}

// swap replaces old with next in the target container. On failure old stays registered.
func (s *Surface) swap(old, next *data.Provider) error {
	target := s.Target()
	if target == nil {
		return nil
	}
	container := target.Data()
	if old != nil && container.HasProvider(old) {
		if err := container.RemoveProvider(old); err != nil {
			return err
		}
	}
	if next == nil {
		return nil
	}
	if err := container.AddProvider(next); err != nil {
		if old != nil {
			_ = container.AddProvider(old)
		}
		return err
	}
	return nil
}

type providerHolder interface {
	Provider() *data.Provider
}

// providerOf returns nil for a nil geometry or material.
func providerOf(h providerHolder) *data.Provider {
	if h == nil {
		return nil
	}
	return h.Provider()
}
