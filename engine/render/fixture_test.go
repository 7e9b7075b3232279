package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/gputest"
)

const colorShader = `
struct VertexInput {
    @location(0) position: vec3f,
}

struct Uniforms {
    modelToWorldMatrix: mat4x4f,
    worldToScreenMatrix: mat4x4f,
    diffuseColor: vec4f,
}

@group(0) @binding(0) var<uniform> u: Uniforms;

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4f {
    return u.worldToScreenMatrix * u.modelToWorldMatrix * vec4f(in.position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4f {
    return u.diffuseColor;
}
`

const texturedShader = `
struct VertexInput {
    @location(0) position: vec3f,
}

struct Uniforms {
    modelToWorldMatrix: mat4x4f,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(1) @binding(0) var diffuseMap: texture_2d<f32>;
@group(1) @binding(1) var diffuseMapSampler: sampler;

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4f {
    return u.modelToWorldMatrix * vec4f(in.position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4f {
    return textureSample(diffuseMap, diffuseMapSampler, vec2f(0.0, 0.0));
}
`

// Uniform locations follow declaration order in colorShader.
const (
	locModelToWorld  = 0
	locWorldToScreen = 1
	locDiffuseColor  = 2
)

type fixture struct {
	rec      *gputest.Recorder
	scope    data.Scope
	geometry *data.Provider
	material *data.Provider
	camera   *data.Provider
	global   *data.Provider
	vb       *gpu.VertexBuffer
	ib       *gpu.IndexBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rec:      gputest.NewRecorder(),
		scope:    data.Scope{Target: data.NewContainer(), Renderer: data.NewContainer(), Root: data.NewContainer()},
		geometry: data.NewProvider("geometry"),
		material: data.NewProvider("material"),
		camera:   data.NewProvider("camera"),
		global:   data.NewProvider("root"),
		vb:       gpu.NewVertexBuffer([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, 3),
		ib:       gpu.NewIndexBuffer([]uint32{0, 1, 2}),
	}
	require.NoError(t, data.Set(f.geometry, "position", gpu.VertexAttribute{Buffer: f.vb, Name: "position", Size: 3}))
	require.NoError(t, data.Set(f.geometry, IndicesProperty, f.ib))
	require.NoError(t, data.Set(f.geometry, ModelToWorldMatrixProperty, mgl32.Ident4()))
	require.NoError(t, data.Set(f.material, "diffuseColor", mgl32.Vec4{1, 0, 0, 1}))
	require.NoError(t, data.Set(f.camera, WorldToScreenMatrixProperty, mgl32.Ident4()))

	require.NoError(t, f.scope.Target.AddProvider(f.geometry))
	require.NoError(t, f.scope.Target.AddProvider(f.material))
	require.NoError(t, f.scope.Renderer.AddProvider(f.camera))
	require.NoError(t, f.scope.Root.AddProvider(f.global))
	return f
}

func (f *fixture) pass(options ...PassBuilderOption) *Pass {
	return NewPass("color", gpu.NewProgram("color", colorShader, colorShader), options...)
}

func (f *fixture) texturedPass(options ...PassBuilderOption) *Pass {
	return NewPass("textured", gpu.NewProgram("textured", texturedShader, texturedShader), options...)
}

func (f *fixture) drawCall(id uint32, p *Pass, options ...DrawCallBuilderOption) *DrawCall {
	return NewDrawCall(id, p, f.scope, f.rec, options...)
}

func texture(size uint32) *gpu.Texture {
	return gpu.NewTexture(common.TextureStagingData{Pixels: make([]byte, size*size*4), Width: size, Height: size}, false)
}
