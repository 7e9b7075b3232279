package surface

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

func TestSurfaceRegistersProviders(t *testing.T) {
	n := scene.NewNode("cube")
	geom := geometry.Cube()
	mat := material.NewMaterial()
	s := NewSurface("cube", geom, mat, nil)

	require.NoError(t, n.AddComponent(s))
	assert.True(t, n.Data().HasProvider(geom.Provider()))
	assert.True(t, n.Data().HasProvider(mat.Provider()))
	assert.False(t, s.Complete())

	require.NoError(t, n.RemoveComponent(s))
	assert.False(t, n.Data().Has(geometry.PositionProperty))
	assert.False(t, n.Data().Has(material.DiffuseColorProperty))
}

func TestSurfaceSwapMaterial(t *testing.T) {
	n := scene.NewNode("quad")
	s := NewSurface("quad", geometry.Quad(), material.NewMaterial(), nil)
	require.NoError(t, n.AddComponent(s))

	var events []ChangeKind
	s.Changed().Connect(func(e Event) { events = append(events, e.Kind) })

	red := material.NewMaterial(material.WithDiffuseColor(mgl32.Vec4{1, 0, 0, 1}))
	require.NoError(t, s.SetMaterial(red))
	color, err := data.Get[mgl32.Vec4](n.Data(), material.DiffuseColorProperty)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, color)

	require.NoError(t, s.SetMaterial(red))
	require.NoError(t, s.SetMaterial(nil))
	assert.False(t, n.Data().Has(material.DiffuseColorProperty))
	assert.Equal(t, []ChangeKind{MaterialChanged, MaterialChanged}, events)
}

func TestSurfaceSwapCollisionKeepsOld(t *testing.T) {
	n := scene.NewNode("n")
	taken := data.NewProvider("other")
	require.NoError(t, taken.SetValue(material.MetallicProperty, data.ValueOf[float32](1)))
	require.NoError(t, n.Data().AddProvider(taken))

	s := NewSurface("s", geometry.Quad(), nil, nil)
	require.NoError(t, n.AddComponent(s))

	err := s.SetMaterial(material.NewMaterial())
	require.Error(t, err)
	assert.True(t, errors.Is(err, data.ErrDuplicatePropertyName))
	assert.Nil(t, s.Material())
	assert.True(t, n.Data().Has(geometry.PositionProperty))

	require.NoError(t, s.SetGeometry(geometry.Cube()))
	assert.Equal(t, "cube", s.Geometry().Name())
}

func TestSurfaceAttachRejectsCollision(t *testing.T) {
	n := scene.NewNode("n")
	geom := geometry.Quad()
	first := NewSurface("red", geom, material.NewMaterial(material.WithDiffuseColor(mgl32.Vec4{1, 0, 0, 1})), nil)
	require.NoError(t, n.AddComponent(first))

	second := NewSurface("blue", geom, material.NewMaterial(material.WithDiffuseColor(mgl32.Vec4{0, 0, 1, 1})), nil)
	err := n.AddComponent(second)
	require.Error(t, err)
	assert.ErrorIs(t, err, data.ErrDuplicatePropertyName)
	assert.Nil(t, second.Target())
	assert.Equal(t, []scene.Component{first}, n.Components())

	color, err := data.Get[mgl32.Vec4](n.Data(), material.DiffuseColorProperty)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, color)

	// The shared geometry reference taken by the rejected surface is given back.
	require.NoError(t, n.RemoveComponent(first))
	assert.False(t, n.Data().Has(geometry.PositionProperty))
}

func TestSurfaceLayout(t *testing.T) {
	n := scene.NewNode("n", scene.WithLayout(scene.LayoutDefault|scene.LayoutPicking))
	s := NewSurface("s", nil, nil, nil)
	assert.Equal(t, scene.Layout(0), s.Layout())

	require.NoError(t, n.AddComponent(s))
	assert.Equal(t, scene.LayoutDefault|scene.LayoutPicking, s.Layout())

	s.SetLayoutMask(scene.LayoutPicking)
	assert.Equal(t, scene.LayoutPicking, s.Layout())

	s.SetVisible(false)
	assert.False(t, s.Visible())
	assert.Equal(t, scene.Layout(0), s.Layout())
	s.SetVisible(true)
	assert.True(t, s.Visible())
}

func TestSurfaceDrawCallStore(t *testing.T) {
	s := NewSurface("s", nil, nil, nil)
	owner := &struct{ name string }{"renderer"}

	assert.Nil(t, s.DrawCalls(owner))
	s.SetDrawCalls(owner, nil)
	assert.Nil(t, s.TakeDrawCalls(owner))
}

func TestSurfaceClone(t *testing.T) {
	n := scene.NewNode("n")
	s := NewSurface("s", geometry.Quad(), material.NewMaterial(), nil)
	s.SetVisible(false)
	require.NoError(t, n.AddComponent(s))

	clone, ok := scene.ComponentOf[*Surface](n.Clone())
	require.True(t, ok)
	assert.Same(t, s.Geometry(), clone.Geometry())
	assert.False(t, clone.Visible())
	assert.True(t, clone.Target().Data().Has(geometry.PositionProperty))
}
