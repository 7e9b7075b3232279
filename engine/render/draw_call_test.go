package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/gputest"
)

func TestDrawCallBuildsAndIssues(t *testing.T) {
	f := newFixture(t)
	d := f.drawCall(7, f.pass())

	require.NoError(t, d.Update())
	require.True(t, d.Ready())
	require.NoError(t, d.Issue())

	require.Len(t, f.rec.Draws, 1)
	draw := f.rec.Draws[0]
	assert.Equal(t, d.ProgramHandle(), draw.Program)
	assert.Equal(t, f.ib.Handle(), draw.IndexBuffer)
	assert.Equal(t, 1, draw.NumTriangles)
	assert.Equal(t, f.vb.Handle(), draw.Attributes[0])
	assert.Equal(t, []float32{1, 0, 0, 1}, draw.Uniforms[locDiffuseColor])
	assert.Equal(t, gpu.DefaultRenderState(), draw.State)
}

func TestDrawCallValueChangeDoesNotRebuild(t *testing.T) {
	f := newFixture(t)
	d := f.drawCall(0, f.pass())
	require.NoError(t, d.Update())

	require.NoError(t, data.Set(f.material, "diffuseColor", mgl32.Vec4{0, 0, 1, 1}))
	assert.False(t, d.Dirty())
	require.NoError(t, d.Update())
	assert.Equal(t, 1, d.Generation())

	require.NoError(t, d.Issue())
	assert.Equal(t, []float32{0, 0, 1, 1}, f.rec.Draws[0].Uniforms[locDiffuseColor])
}

func TestDrawCallRebuildsOnceWithStableHandles(t *testing.T) {
	f := newFixture(t)
	d := f.drawCall(0, f.pass())
	require.NoError(t, d.Update())
	program, vb, ib := d.ProgramHandle(), f.vb.Handle(), f.ib.Handle()

	// Two structural changes on referenced names coalesce into one rebuild.
	require.NoError(t, data.Set(f.global, "diffuseColor", mgl32.Vec4{0, 1, 0, 1}))
	require.NoError(t, data.Set(f.global, WorldToScreenMatrixProperty, mgl32.Ident4()))
	assert.True(t, d.Dirty())

	require.NoError(t, d.Update())
	require.NoError(t, d.Update())
	assert.Equal(t, 2, d.Generation())

	assert.Equal(t, program, d.ProgramHandle())
	assert.Equal(t, vb, f.vb.Handle())
	assert.Equal(t, ib, f.ib.Handle())
	assert.Equal(t, 1, f.rec.Created(gputest.KindProgram))
	assert.Equal(t, 1, f.rec.Created(gputest.KindVertexBuffer))
	assert.Equal(t, 0, f.rec.Deleted(gputest.KindVertexBuffer))

	require.NoError(t, d.Issue())
	assert.Equal(t, []float32{1, 0, 0, 1}, f.rec.Draws[0].Uniforms[locDiffuseColor], "target still shadows root")
}

func TestDrawCallRebuildsOnBufferReplacement(t *testing.T) {
	f := newFixture(t)
	d := f.drawCall(0, f.pass())
	require.NoError(t, d.Update())
	require.NoError(t, d.Issue())

	quad := gpu.NewIndexBuffer([]uint32{0, 1, 2, 2, 1, 0})
	require.NoError(t, data.Set(f.geometry, IndicesProperty, quad))
	assert.True(t, d.Dirty())
	require.NoError(t, d.Update())
	assert.Equal(t, 2, d.Generation())

	require.NoError(t, d.Issue())
	require.Len(t, f.rec.Draws, 2)
	assert.NotEqual(t, gpu.InvalidHandle, quad.Handle())
	assert.Equal(t, quad.Handle(), f.rec.Draws[1].IndexBuffer)
	assert.Equal(t, 2, f.rec.Draws[1].NumTriangles)
	assert.Equal(t, 1, f.rec.Deleted(gputest.KindIndexBuffer))

	moved := gpu.NewVertexBuffer([]float32{0, 0, 1, 1, 0, 1, 0, 1, 1}, 3)
	require.NoError(t, data.Set(f.geometry, "position", gpu.VertexAttribute{Buffer: moved, Name: "position", Size: 3}))
	assert.True(t, d.Dirty())
	require.NoError(t, d.Update())
	require.NoError(t, d.Issue())
	assert.Equal(t, moved.Handle(), f.rec.Draws[2].Attributes[0])
	assert.Equal(t, 1, f.rec.Deleted(gputest.KindVertexBuffer))

	// Disposed draw calls stop listening.
	require.NoError(t, d.Dispose())
	require.NoError(t, data.Set(f.geometry, IndicesProperty, f.ib))
	assert.False(t, d.Dirty())
}

func TestDrawCallIgnoresUnrelatedNames(t *testing.T) {
	f := newFixture(t)
	d := f.drawCall(0, f.pass())
	require.NoError(t, d.Update())

	require.NoError(t, data.Set(f.material, "specular", float32(1)))
	require.NoError(t, data.Set(f.global, "time", float32(1)))
	assert.False(t, d.Dirty())
}

func TestDrawCallWaitsForMissingBinding(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.material.Unset("diffuseColor"))
	d := f.drawCall(0, f.pass())

	require.NoError(t, d.Update(), "unresolved bindings are not errors")
	assert.False(t, d.Ready())
	assert.Equal(t, "diffuseColor", d.Missing())
	assert.Equal(t, 0, f.rec.LiveTotal())
	assert.ErrorIs(t, d.Issue(), ErrDrawCallNotReady)

	require.NoError(t, data.Set(f.material, "diffuseColor", mgl32.Vec4{1, 1, 1, 1}))
	assert.True(t, d.Dirty())
	require.NoError(t, d.Update())
	assert.True(t, d.Ready())
	assert.Empty(t, d.Missing())
}

func TestDrawCallBecomesUnreadyWhenNameIsRemoved(t *testing.T) {
	f := newFixture(t)
	d := f.drawCall(0, f.pass())
	require.NoError(t, d.Update())

	require.NoError(t, f.material.Unset("diffuseColor"))
	require.NoError(t, d.Update())
	assert.False(t, d.Ready())
	assert.Equal(t, 0, f.rec.LiveTotal(), "an unready draw call holds nothing")
}

func TestDrawCallDefaultLiteral(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.material.Unset("diffuseColor"))
	p := f.pass(WithUniformBinding("diffuseColor", Bind("diffuseColor").WithDefault(data.ValueOf(mgl32.Vec4{0.5, 0.5, 0.5, 1}))))
	d := f.drawCall(0, p)

	require.NoError(t, d.Update())
	require.NoError(t, d.Issue())
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 1}, f.rec.Draws[0].Uniforms[locDiffuseColor])

	// A root property wins over the literal.
	require.NoError(t, data.Set(f.global, "diffuseColor", mgl32.Vec4{0, 0, 0, 1}))
	require.NoError(t, d.Update())
	require.NoError(t, d.Issue())
	assert.Equal(t, []float32{0, 0, 0, 1}, f.rec.Draws[1].Uniforms[locDiffuseColor])
}

func TestDrawCallSourceRestrictedBinding(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, data.Set(f.global, "rootColor", mgl32.Vec4{0, 1, 1, 1}))
	p := f.pass(WithUniformBinding("diffuseColor", BindFrom(data.SourceRoot, "rootColor")))
	d := f.drawCall(0, p)

	require.NoError(t, d.Update())
	require.NoError(t, d.Issue())
	assert.Equal(t, []float32{0, 1, 1, 1}, f.rec.Draws[0].Uniforms[locDiffuseColor])
	assert.True(t, d.References("rootColor"))
}

func TestDrawCallTypeMismatchSkipsPass(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.material.Unset("diffuseColor"))
	require.NoError(t, data.Set(f.material, "diffuseColor", float32(1)))
	d := f.drawCall(0, f.pass())

	require.NoError(t, d.Update())
	assert.False(t, d.Ready())
	assert.Equal(t, 0, f.rec.LiveTotal())
}

func TestDrawCallGPUFailureReleasesEverything(t *testing.T) {
	f := newFixture(t)
	f.rec.FailOn("LinkProgram", nil)
	d := f.drawCall(3, f.pass())

	err := d.Update()
	require.ErrorIs(t, err, gpu.ErrProgramLink)
	assert.False(t, d.Ready())
	assert.Equal(t, 0, f.rec.LiveTotal(), "live: %v", f.rec.LiveHandles())

	f.rec.ClearFailures()
	d.Invalidate()
	require.NoError(t, d.Update())
	assert.True(t, d.Ready())
}

func TestDrawCallDisposeReleasesResources(t *testing.T) {
	f := newFixture(t)
	p := f.pass()
	a, b := f.drawCall(0, p), f.drawCall(1, p)
	require.NoError(t, a.Update())
	require.NoError(t, b.Update())
	assert.Equal(t, 1, f.rec.Created(gputest.KindProgram), "passes share their program")

	require.NoError(t, a.Dispose())
	assert.Equal(t, 0, f.rec.Deleted(gputest.KindProgram))
	require.NoError(t, b.Dispose())
	require.NoError(t, b.Dispose())

	for _, k := range []gputest.Kind{gputest.KindVertexBuffer, gputest.KindIndexBuffer, gputest.KindProgram, gputest.KindShader} {
		assert.Equal(t, f.rec.Created(k), f.rec.Deleted(k), "kind %s", k)
	}
	assert.Equal(t, 0, f.rec.LiveTotal())
	assert.ErrorIs(t, a.Update(), ErrDrawCallDisposed)

	require.NoError(t, data.Set(f.global, "diffuseColor", mgl32.Vec4{}))
	assert.False(t, a.Dirty(), "disposed draw calls stop listening")
}

func TestDrawCallSwapsTextureAtIssue(t *testing.T) {
	f := newFixture(t)
	first, second := texture(2), texture(4)
	require.NoError(t, data.Set(f.material, "diffuseMap", first))
	d := f.drawCall(0, f.texturedPass())

	require.NoError(t, d.Update())
	require.NoError(t, d.Issue())
	firstHandle := first.Handle()
	assert.Equal(t, firstHandle, f.rec.Draws[0].Textures[0])

	require.NoError(t, data.Set(f.material, "diffuseMap", second))
	assert.False(t, d.Dirty())
	require.NoError(t, d.Issue())
	assert.Equal(t, second.Handle(), f.rec.Draws[1].Textures[0])
	assert.Equal(t, 1, f.rec.Live(gputest.KindTexture))
	assert.False(t, first.Handle().Valid())

	require.NoError(t, d.Dispose())
	assert.Equal(t, 0, f.rec.LiveTotal())
}

func TestDrawCallStatesFromBindings(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, data.Set(f.material, StatePriority, float32(PriorityTransparent)))
	require.NoError(t, data.Set(f.material, StateBlendingMode, "alpha"))
	p := f.pass(
		WithStateBinding(StatePriority, Bind(StatePriority)),
		WithStateBinding(StateBlendingMode, Bind(StateBlendingMode)),
		WithStateBinding(StateZSorted, Bind(StateZSorted).WithDefault(data.ValueOf(true))),
	)
	d := f.drawCall(0, p)
	require.NoError(t, d.Update())

	s := d.States()
	assert.Equal(t, PriorityTransparent, s.Priority)
	assert.True(t, s.ZSorted)
	assert.Equal(t, gpu.BlendingAlpha, s.Blending)

	require.NoError(t, data.Set(f.material, StatePriority, float32(PriorityLast)))
	assert.Equal(t, PriorityLast, d.States().Priority, "states read live properties")

	require.NoError(t, d.Issue())
	assert.Equal(t, gpu.BlendingAlpha, f.rec.Draws[0].State.Blending)
}
