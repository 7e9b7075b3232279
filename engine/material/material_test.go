package material

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(WithName("white"))

	assert.Equal(t, "white", m.Name())
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, m.DiffuseColor())
	assert.Equal(t, render.PriorityOpaque, m.Priority())
	assert.False(t, m.ZSorted())
	assert.True(t, m.DepthMask())
	assert.Equal(t, "default", m.BlendingMode())
	assert.Equal(t, "back", m.TriangleCulling())
	assert.Nil(t, m.DiffuseMap())
	assert.False(t, m.Provider().Has(DiffuseMapProperty))
}

func TestMaterialStatesApply(t *testing.T) {
	m := NewMaterial(WithTransparent())

	states := render.DefaultStates()
	for _, name := range render.StateNames {
		if v, err := m.Provider().Value(name); err == nil {
			require.NoError(t, states.Apply(name, v))
		}
	}

	assert.Equal(t, render.PriorityTransparent, states.Priority)
	assert.True(t, states.ZSorted)
	assert.Equal(t, gpu.BlendingAlpha, states.Blending)
	assert.False(t, states.DepthMask)
}

func TestMaterialSettersEmitChanges(t *testing.T) {
	m := NewMaterial()
	var changed []string
	m.Provider().PropertyChanged().Connect(func(e data.PropertyEvent) {
		changed = append(changed, e.Name)
	})

	m.SetDiffuseColor(mgl32.Vec4{1, 0, 0, 1})
	m.SetDiffuseColor(mgl32.Vec4{1, 0, 0, 1})
	m.SetPriority(render.PriorityBackground)

	assert.Equal(t, []string{DiffuseColorProperty, render.StatePriority}, changed)
}

func TestMaterialDiffuseMap(t *testing.T) {
	m := NewMaterial()
	tex := gpu.NewTexture(common.TextureStagingData{Width: 1, Height: 1, Pixels: make([]byte, 4)}, false)

	var added, removed int
	m.Provider().PropertyAdded().Connect(func(data.PropertyEvent) { added++ })
	m.Provider().PropertyRemoved().Connect(func(data.PropertyEvent) { removed++ })

	require.NoError(t, m.SetDiffuseMap(tex))
	assert.Same(t, tex, m.DiffuseMap())
	require.NoError(t, m.SetDiffuseMap(nil))
	require.NoError(t, m.SetDiffuseMap(nil))
	assert.Nil(t, m.DiffuseMap())
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}

func TestMaterialRejectsUnknownStateNames(t *testing.T) {
	m := NewMaterial(WithBlendingMode("sparkly"), WithTriangleCulling("sideways"))

	assert.Equal(t, "default", m.BlendingMode())
	assert.Equal(t, "back", m.TriangleCulling())
	assert.Error(t, m.SetBlendingMode("sparkly"))
	require.NoError(t, m.SetBlendingMode("additive"))
	assert.Equal(t, "additive", m.BlendingMode())
}

func TestMaterialClone(t *testing.T) {
	m := NewMaterial(WithName("a"), WithDiffuseColor(mgl32.Vec4{0, 1, 0, 1}))
	c := m.Clone()
	c.SetDiffuseColor(mgl32.Vec4{0, 0, 1, 1})

	assert.Equal(t, "a", c.Name())
	assert.NotSame(t, m.Provider(), c.Provider())
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, m.DiffuseColor())
}
