package transform

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

func attach(t *testing.T, name string, tr *Transform) scene.Node {
	t.Helper()
	n := scene.NewNode(name)
	require.NoError(t, n.AddComponent(tr))
	return n
}

func worldOf(t *testing.T, n scene.Node) mgl32.Mat4 {
	t.Helper()
	m, err := data.Get[mgl32.Mat4](n.Data(), ModelToWorldMatrixProperty)
	require.NoError(t, err)
	return m
}

func TestWorldMatrixFollowsParents(t *testing.T) {
	root := attach(t, "root", NewTransform(WithPosition(1, 0, 0)))
	child := attach(t, "child", NewTransform(WithPosition(0, 2, 0)))
	plain := scene.NewNode("plain")
	leaf := attach(t, "leaf", NewTransform(WithPosition(0, 0, 3)))

	require.NoError(t, root.AddChild(plain))
	require.NoError(t, plain.AddChild(child))
	require.NoError(t, child.AddChild(leaf))

	assert.Equal(t, mgl32.Translate3D(1, 2, 3), worldOf(t, leaf))
	assert.Equal(t, mgl32.Translate3D(1, 2, 0), worldOf(t, child))
}

func TestSetMatrixUpdatesSubtree(t *testing.T) {
	rootTr := NewTransform()
	root := attach(t, "root", rootTr)
	leafTr := NewTransform(WithPosition(0, 1, 0))
	leaf := attach(t, "leaf", leafTr)
	require.NoError(t, root.AddChild(leaf))

	var changes int
	leaf.Data().PropertyChanged(ModelToWorldMatrixProperty).Connect(func(data.PropertyEvent) { changes++ })

	rootTr.SetMatrix(mgl32.Translate3D(5, 0, 0))

	assert.Equal(t, mgl32.Translate3D(5, 1, 0), leafTr.ModelToWorld())
	assert.Equal(t, mgl32.Vec3{5, 1, 0}, leafTr.Position())
	assert.Equal(t, 1, changes)
}

func TestReparentRecomputes(t *testing.T) {
	a := attach(t, "a", NewTransform(WithPosition(1, 0, 0)))
	b := attach(t, "b", NewTransform(WithPosition(0, 0, 7)))
	moved := attach(t, "moved", NewTransform(WithPosition(0, 1, 0)))
	below := attach(t, "below", NewTransform())
	require.NoError(t, moved.AddChild(below))

	require.NoError(t, a.AddChild(moved))
	assert.Equal(t, mgl32.Translate3D(1, 1, 0), worldOf(t, below))

	require.NoError(t, b.AddChild(moved))
	assert.Equal(t, mgl32.Translate3D(0, 1, 7), worldOf(t, below))

	require.NoError(t, b.RemoveChild(moved))
	assert.Equal(t, mgl32.Translate3D(0, 1, 0), worldOf(t, below))
}

func TestDescendantEventsIgnored(t *testing.T) {
	root := attach(t, "root", NewTransform())
	var changes int
	root.Data().PropertyChanged(ModelToWorldMatrixProperty).Connect(func(data.PropertyEvent) { changes++ })

	require.NoError(t, root.AddChild(attach(t, "child", NewTransform(WithPosition(1, 1, 1)))))

	assert.Zero(t, changes)
}

func TestDetach(t *testing.T) {
	tr := NewTransform(WithPosition(2, 0, 0))
	root := attach(t, "root", tr)
	leaf := attach(t, "leaf", NewTransform(WithPosition(0, 1, 0)))
	require.NoError(t, root.AddChild(leaf))

	require.NoError(t, root.RemoveComponent(tr))

	assert.False(t, root.Data().Has(ModelToWorldMatrixProperty))
	assert.Equal(t, mgl32.Translate3D(0, 1, 0), worldOf(t, leaf))
}

func TestLookAt(t *testing.T) {
	tr := NewTransform()
	tr.LookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	assert.True(t, tr.Position().ApproxEqual(mgl32.Vec3{0, 0, 5}))
	forward := tr.Matrix().Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	assert.True(t, forward.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5))
}

func TestClone(t *testing.T) {
	n := attach(t, "n", NewTransform(WithPosition(0, 3, 0)))
	clone := n.Clone()

	tr, ok := scene.ComponentOf[*Transform](clone)
	require.True(t, ok)
	assert.Equal(t, mgl32.Translate3D(0, 3, 0), tr.Matrix())
	assert.Equal(t, mgl32.Translate3D(0, 3, 0), worldOf(t, clone))
}

func TestSecondTransformIsRejected(t *testing.T) {
	n := attach(t, "n", NewTransform(WithPosition(1, 0, 0)))
	other := NewTransform(WithPosition(5, 0, 0))

	assert.ErrorIs(t, n.AddComponent(other), data.ErrDuplicatePropertyName)
	assert.Nil(t, other.Target())
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), worldOf(t, n))
}
