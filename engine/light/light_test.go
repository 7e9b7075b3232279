package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

func lightNode(t *testing.T, l *Light, options ...transform.TransformBuilderOption) scene.Node {
	t.Helper()
	n := scene.NewNode("light")
	require.NoError(t, n.AddComponent(transform.NewTransform(options...)))
	require.NoError(t, n.AddComponent(l))
	return n
}

func TestLightRegistersIntoRoot(t *testing.T) {
	root := scene.NewNode("root")
	group := scene.NewNode("group")
	require.NoError(t, root.AddChild(group))

	n := lightNode(t, NewLight(LightTypePoint, WithColor(1, 0, 0)))
	require.NoError(t, group.AddChild(n))

	color, err := data.Get[mgl32.Vec3](root.Data(), "pointLights[0].color")
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, color)
	length, err := data.Get[int](root.Data(), "pointLights.length")
	require.NoError(t, err)
	assert.Equal(t, 1, length)
	assert.False(t, n.Data().Has("pointLights[0].color"))

	require.NoError(t, group.RemoveChild(n))
	assert.False(t, root.Data().Has("pointLights[0].color"))
	assert.True(t, n.Data().Has("pointLights[0].color"))
}

func TestLightsShareArray(t *testing.T) {
	root := scene.NewNode("root")
	first := lightNode(t, NewLight(LightTypeDirectional, WithIntensity(0.25)))
	second := lightNode(t, NewLight(LightTypeDirectional, WithIntensity(0.75)))
	require.NoError(t, root.AddChild(first))
	require.NoError(t, root.AddChild(second))

	diffuse, err := data.Get[float32](root.Data(), "directionalLights[1].diffuse")
	require.NoError(t, err)
	assert.Equal(t, float32(0.75), diffuse)

	require.NoError(t, root.RemoveChild(first))
	diffuse, err = data.Get[float32](root.Data(), "directionalLights[0].diffuse")
	require.NoError(t, err)
	assert.Equal(t, float32(0.75), diffuse)
	assert.False(t, root.Data().Has("directionalLights[1].diffuse"))
}

func TestLightFollowsTransform(t *testing.T) {
	root := scene.NewNode("root")
	point := NewLight(LightTypePoint, WithPosition(0, 1, 0))
	n := lightNode(t, point, transform.WithPosition(2, 0, 0))
	require.NoError(t, root.AddChild(n))

	pos, err := data.Get[mgl32.Vec3](root.Data(), "pointLights[0].position")
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, pos)

	tr, _ := scene.ComponentOf[*transform.Transform](n)
	tr.SetMatrix(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)))
	pos, _ = data.Get[mgl32.Vec3](root.Data(), "pointLights[0].position")
	assert.True(t, pos.ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5))
}

func TestDirectionalLightDirection(t *testing.T) {
	sun := NewLight(LightTypeDirectional, WithDirection(0, 0, -2))
	n := lightNode(t, sun, transform.WithMatrix(mgl32.HomogRotate3DY(mgl32.DegToRad(90))))

	dir, err := data.Get[mgl32.Vec3](n.Data(), "directionalLights[0].direction")
	require.NoError(t, err)
	assert.True(t, dir.ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5))
	assert.False(t, n.Data().Has("directionalLights[0].position"))
}

func TestAmbientLightProperties(t *testing.T) {
	n := lightNode(t, NewLight(LightTypeAmbient, WithIntensity(0.2)))

	ambient, err := data.Get[float32](n.Data(), "ambientLights[0].ambient")
	require.NoError(t, err)
	assert.Equal(t, float32(0.2), ambient)
	assert.False(t, n.Data().Has("ambientLights[0].diffuse"))
}

func TestSpotLightCone(t *testing.T) {
	spot := NewLight(LightTypeSpot, WithSpotCone(60, 90))
	n := lightNode(t, spot)

	inner, err := data.Get[float32](n.Data(), "spotLights[0].innerCone")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, inner, 1e-5)
	outer, _ := data.Get[float32](n.Data(), "spotLights[0].outerCone")
	assert.InDelta(t, 0, outer, 1e-5)
}

func TestLightEnableAndDetach(t *testing.T) {
	root := scene.NewNode("root")
	l := NewLight(LightTypePoint, WithEnabled(false))
	n := lightNode(t, l)
	require.NoError(t, root.AddChild(n))
	assert.False(t, root.Data().Has("pointLights[0].color"))

	l.SetEnabled(true)
	assert.True(t, root.Data().Has("pointLights[0].color"))

	var changed int
	root.Data().PropertyChanged("pointLights[0].color").Connect(func(data.PropertyEvent) { changed++ })
	l.SetColor(0, 0, 1)
	assert.Equal(t, 1, changed)

	require.NoError(t, n.RemoveComponent(l))
	assert.False(t, root.Data().Has("pointLights[0].color"))
	assert.False(t, root.Data().HasProvider(l.Provider()))
}
