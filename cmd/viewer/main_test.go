package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// diffuseColor is the third member of the basic effect uniform block.
const locDiffuseColor = 2

func TestViewerSceneDrawsOpaqueThenTransparent(t *testing.T) {
	rec := gputest.NewRecorder()
	manager := scene.NewSceneManager(rec)
	options, err := config.Default().RendererOptions()
	require.NoError(t, err)
	v := newViewer(manager, 16.0/9.0, options)

	// Nothing is drawable until the effect arrives.
	require.NoError(t, manager.NextFrame(0, 0))
	assert.Empty(t, rec.Draws)

	effect, err := render.LoadEffectFile("../../effects/basic.yaml")
	require.NoError(t, err)
	for _, s := range v.surfaces {
		s.SetEffect(effect)
	}
	rec.Draws = nil
	require.NoError(t, manager.NextFrame(0.016, 0.016))

	require.Len(t, rec.Draws, 3)
	colors := make([]mgl32.Vec4, len(rec.Draws))
	for i, d := range rec.Draws {
		copy(colors[i][:], d.Uniforms[locDiffuseColor])
	}
	assert.Equal(t, []mgl32.Vec4{
		{0.8, 0.25, 0.2, 1},
		{0.3, 1, 0.4, 0.5},
		{0.2, 0.5, 1, 0.5},
	}, colors, "the cube first, then the quads back to front")
	assert.Equal(t, gpu.BlendingDefault, rec.Draws[0].State.Blending)
	assert.Equal(t, gpu.BlendingAlpha, rec.Draws[2].State.Blending)
	assert.Equal(t, gpu.CullNone, rec.Draws[2].State.TriangleCulling)
}

func TestViewerTickRotatesCube(t *testing.T) {
	manager := scene.NewSceneManager(gputest.NewRecorder())
	v := newViewer(manager, 1, nil)

	before := v.cube.Matrix()
	v.tick(0.5)
	assert.NotEqual(t, before, v.cube.Matrix())

	v.paused = true
	rotated := v.cube.Matrix()
	v.tick(0.5)
	assert.Equal(t, rotated, v.cube.Matrix())
}
