package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
)

func TestZSorterEyeSpacePosition(t *testing.T) {
	f := newFixture(t)
	d := f.drawCall(0, f.pass())

	require.NoError(t, data.Set(f.geometry, ModelToWorldMatrixProperty, mgl32.Translate3D(1, 2, 3)))
	require.NoError(t, data.Set(f.geometry, CenterPositionProperty, mgl32.Vec3{0, 0, 1}))
	require.NoError(t, data.Set(f.camera, WorldToScreenMatrixProperty, mgl32.Scale3D(2, 2, 2)))

	assert.Equal(t, mgl32.Vec3{2, 4, 8}, d.ZSorter().EyeSpacePosition())
	assert.False(t, d.ZSorter().Dirty())
}

func TestZSorterRecomputesOnlyAfterTrigger(t *testing.T) {
	f := newFixture(t)
	d := f.drawCall(0, f.pass())
	z := d.ZSorter()
	var requests int
	d.ZSortNeeded().Connect(func(dc *DrawCall) {
		assert.Same(t, d, dc)
		requests++
	})

	assert.Equal(t, float32(0), z.EyeSpacePosition().Z())

	require.NoError(t, data.Set(f.material, "diffuseColor", mgl32.Vec4{0, 0, 0, 1}))
	assert.False(t, z.Dirty(), "non-trigger properties are ignored")

	require.NoError(t, data.Set(f.geometry, ModelToWorldMatrixProperty, mgl32.Translate3D(0, 0, 5)))
	assert.True(t, z.Dirty())
	assert.Equal(t, 1, requests)
	assert.Equal(t, float32(5), z.EyeSpacePosition().Z())

	require.NoError(t, data.Set(f.camera, WorldToScreenMatrixProperty, mgl32.Translate3D(0, 0, 1)))
	assert.Equal(t, 2, requests)
	assert.Equal(t, float32(6), z.EyeSpacePosition().Z())
}

func TestZSorterCustomTriggers(t *testing.T) {
	f := newFixture(t)
	d := f.drawCall(0, f.pass(), WithZSortTriggers([]ZSortTrigger{{Name: "depthBias", Source: data.SourceTarget}}))
	z := d.ZSorter()
	z.EyeSpacePosition()

	require.NoError(t, data.Set(f.geometry, ModelToWorldMatrixProperty, mgl32.Translate3D(0, 0, 5)))
	assert.False(t, z.Dirty(), "default triggers are replaced")

	require.NoError(t, data.Set(f.material, "depthBias", float32(1)))
	assert.True(t, z.Dirty(), "adding a trigger name invalidates")
	z.EyeSpacePosition()

	require.NoError(t, data.Set(f.material, "depthBias", float32(2)))
	assert.True(t, z.Dirty())
}
