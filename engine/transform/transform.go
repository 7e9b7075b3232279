// Package transform places nodes in the scene. A Transform publishes the node's local
// matrix and its model-to-world matrix into the node container and keeps the world
// matrices of the whole subtree current when a local matrix changes or a node moves.
package transform

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
)

// Property names published by a Transform.
const (
	MatrixProperty             = "matrix"
	ModelToWorldMatrixProperty = "modelToWorldMatrix"
)

// Transform is the component holding a node's placement.
type Transform struct {
	scene.BaseComponent

	provider *data.Provider
	slots    signal.Slots
}

var _ scene.Component = &Transform{}

// NewTransform creates an identity Transform configured with the provided options.
//
// Parameters:
//   - options: variadic list of TransformBuilderOption functions to configure the transform
//
// Returns:
//   - *Transform: a new detached Transform
func NewTransform(options ...TransformBuilderOption) *Transform {
	t := &Transform{provider: data.NewProvider("transform")}
	t.set(MatrixProperty, mgl32.Ident4())
	t.set(ModelToWorldMatrixProperty, mgl32.Ident4())
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *Transform) set(name string, m mgl32.Mat4) {
	if err := t.provider.SetValue(name, data.ValueOf(m)); err != nil {
		common.Logger("Transform").Error("matrix not published", "property", name, "err", err)
	}
}

// Provider returns the provider holding matrix and modelToWorldMatrix.
func (t *Transform) Provider() *data.Provider {
	return t.provider
}

// Matrix returns the local matrix.
func (t *Transform) Matrix() mgl32.Mat4 {
	m, _ := data.Get[mgl32.Mat4](t.provider, MatrixProperty)
	return m
}

// ModelToWorld returns the world matrix: the product of every ancestor transform and the
// local matrix.
func (t *Transform) ModelToWorld() mgl32.Mat4 {
	m, _ := data.Get[mgl32.Mat4](t.provider, ModelToWorldMatrixProperty)
	return m
}

// SetMatrix replaces the local matrix and updates the world matrix of every transform in
// the subtree.
//
// Parameters:
//   - m: the new local matrix
func (t *Transform) SetMatrix(m mgl32.Mat4) {
	t.set(MatrixProperty, m)
	t.updateSubtree()
}

// SetTRS sets the local matrix from translation, Euler rotation and scale.
//
// Parameters:
//   - position: translation in parent space
//   - rotation: rotation angles in radians around each axis
//   - scale: scale factors along each axis
func (t *Transform) SetTRS(position, rotation, scale mgl32.Vec3) {
	t.SetMatrix(common.ModelMatrix(position, rotation, scale))
}

// LookAt places the node at eye looking toward center, the placement a camera node uses.
//
// Parameters:
//   - eye: the node position in parent space
//   - center: the point to look at
//   - up: the up direction
func (t *Transform) LookAt(eye, center, up mgl32.Vec3) {
	t.SetMatrix(mgl32.LookAtV(eye, center, up).Inv())
}

// Position returns the translation part of the world matrix.
func (t *Transform) Position() mgl32.Vec3 {
	return t.ModelToWorld().Col(3).Vec3()
}

func (t *Transform) OnAttach(target scene.Node) error {
	if err := target.Data().AddProvider(t.provider); err != nil {
		return fmt.Errorf("attach transform: %w", err)
	}
	t.slots.Add(
		target.Added().Connect(t.onMoved),
		target.Removed().Connect(t.onMoved),
	)
	t.updateSubtree()
	return nil
}

func (t *Transform) OnDetach(target scene.Node) {
	t.slots.DisconnectAll()
	if target.Data().HasProvider(t.provider) {
		_ = target.Data().RemoveProvider(t.provider)
	}
	t.set(ModelToWorldMatrixProperty, t.Matrix())
	updateDescendants(target, false)
}

func (t *Transform) OnClone() scene.Component {
	return NewTransform(WithMatrix(t.Matrix()))
}

// onMoved recomputes the world matrix when the node or one of its ancestors moved. Events
// bubbling up from a descendant are ignored: the descendants update themselves.
func (t *Transform) onMoved(e scene.NodeEvent) {
	target := t.Target()
	for n := target; n != nil; n = n.Parent() {
		if n == e.Target {
			t.updateWorld()
			return
		}
	}
}

func (t *Transform) updateSubtree() {
	target := t.Target()
	if target == nil {
		t.set(ModelToWorldMatrixProperty, t.Matrix())
		return
	}
	updateDescendants(target, true)
}

// updateDescendants recomputes every transform below n, parents before children.
func updateDescendants(n scene.Node, andSelf bool) {
	for _, d := range scene.NewNodeSet(n).Descendants(andSelf, true) {
		for _, tr := range scene.ComponentsOf[*Transform](d) {
			tr.updateWorld()
		}
	}
}

func (t *Transform) updateWorld() {
	target := t.Target()
	if target == nil {
		return
	}
	t.set(ModelToWorldMatrixProperty, ParentWorld(target).Mul4(t.Matrix()))
}

// ParentWorld returns the world matrix of the nearest ancestor of n carrying a Transform,
// or identity when there is none.
//
// Parameters:
//   - n: the node to start from, excluded from the search
//
// Returns:
//   - mgl32.Mat4: the parent world matrix
func ParentWorld(n scene.Node) mgl32.Mat4 {
	for a := n.Parent(); a != nil; a = a.Parent() {
		if tr, ok := scene.ComponentOf[*Transform](a); ok {
			return tr.ModelToWorld()
		}
	}
	return mgl32.Ident4()
}
