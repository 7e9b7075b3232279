package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
)

// Property names read by the z-sorter.
const (
	ModelToWorldMatrixProperty  = "modelToWorldMatrix"
	WorldToScreenMatrixProperty = "worldToScreenMatrix"
	CenterPositionProperty      = "centerPosition"
)

// ZSortTrigger is a property whose change invalidates the depth of a draw call.
type ZSortTrigger struct {
	Name   string
	Source data.Source
}

// DefaultZSortTriggers returns the target priority, zSorted, position and
// modelToWorldMatrix properties plus the renderer worldToScreenMatrix.
func DefaultZSortTriggers() []ZSortTrigger {
	return []ZSortTrigger{
		{Name: StatePriority, Source: data.SourceTarget},
		{Name: StateZSorted, Source: data.SourceTarget},
		{Name: "position", Source: data.SourceTarget},
		{Name: ModelToWorldMatrixProperty, Source: data.SourceTarget},
		{Name: WorldToScreenMatrixProperty, Source: data.SourceRenderer},
	}
}

// ZSorter caches the eye-space position of a draw call and recomputes it lazily after
// one of its trigger properties changed.
type ZSorter struct {
	scope    data.Scope
	triggers []ZSortTrigger
	slots    signal.Slots
	dirty    bool
	eye      mgl32.Vec3
	request  func()
}

func newZSorter(scope data.Scope, triggers []ZSortTrigger, request func()) *ZSorter {
	z := &ZSorter{scope: scope, triggers: triggers, dirty: true, request: request}

	watched := map[string]struct{}{CenterPositionProperty: {}}
	for _, t := range triggers {
		watched[t.Name] = struct{}{}
		containers := scope.Containers()
		if t.Source != data.SourceAny {
			containers = nil
			if c := scope.Container(t.Source); c != nil {
				containers = []*data.Container{c}
			}
		}
		for _, c := range containers {
			z.slots.Add(c.PropertyChanged(t.Name).Connect(func(data.PropertyEvent) { z.RequestZSort() }))
		}
	}
	if c := scope.Target; c != nil {
		z.slots.Add(c.PropertyChanged(CenterPositionProperty).Connect(func(data.PropertyEvent) { z.RequestZSort() }))
	}
	structural := func(e data.PropertyEvent) {
		if _, ok := watched[e.Name]; ok {
			z.RequestZSort()
		}
	}
	for _, c := range scope.Containers() {
		z.slots.Add(c.PropertyAdded().Connect(structural), c.PropertyRemoved().Connect(structural))
	}
	return z
}

// Triggers returns the watched properties.
func (z *ZSorter) Triggers() []ZSortTrigger {
	return z.triggers
}

// Dirty reports whether the next EyeSpacePosition call recomputes.
func (z *ZSorter) Dirty() bool {
	return z.dirty
}

// RequestZSort marks the cached depth stale and notifies the owner.
func (z *ZSorter) RequestZSort() {
	z.dirty = true
	if z.request != nil {
		z.request()
	}
}

// EyeSpacePosition returns worldToScreen * modelToWorld * (center, 1), recomputing it
// only when a trigger changed since the last call. Missing matrices count as identity
// and a missing centerPosition as the origin.
//
// Returns:
//   - mgl32.Vec3: the transformed center; larger Z is farther from the viewer
func (z *ZSorter) EyeSpacePosition() mgl32.Vec3 {
	if !z.dirty {
		return z.eye
	}
	modelToWorld := mat4From(z.scope, data.SourceTarget, ModelToWorldMatrixProperty)
	worldToScreen := mat4From(z.scope, data.SourceRenderer, WorldToScreenMatrixProperty)

	var center mgl32.Vec3
	if p, _, ok := z.scope.ResolveFrom(data.SourceTarget, CenterPositionProperty); ok {
		center, _ = data.As[mgl32.Vec3](p.Value())
	}
	z.eye = worldToScreen.Mul4(modelToWorld).Mul4x1(center.Vec4(1)).Vec3()
	z.dirty = false
	return z.eye
}

func (z *ZSorter) dispose() {
	z.slots.DisconnectAll()
	z.request = nil
}

func mat4From(scope data.Scope, src data.Source, name string) mgl32.Mat4 {
	if p, _, ok := scope.ResolveFrom(src, name); ok {
		if m, ok := data.As[mgl32.Mat4](p.Value()); ok {
			return m
		}
	}
	return mgl32.Ident4()
}
