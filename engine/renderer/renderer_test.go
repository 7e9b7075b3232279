package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-scene/engine/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/surface"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
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

// locDiffuseColor follows the member order of Uniforms.
const locDiffuseColor = 2

var (
	red   = mgl32.Vec4{1, 0, 0, 1}
	green = mgl32.Vec4{0, 1, 0, 0.5}
	blue  = mgl32.Vec4{0, 0, 1, 0.5}
)

func colorEffect() *render.Effect {
	states := []string{render.StatePriority, render.StateZSorted, render.StateBlendingMode, render.StateDepthMask, render.StateTriangleCulling}
	options := make([]render.PassBuilderOption, 0, len(states))
	for _, s := range states {
		options = append(options, render.WithStateBinding(s, render.Bind(s)))
	}
	return render.NewEffect("color", render.NewPass("color", gpu.NewProgram("color", colorShader, colorShader), options...))
}

type fixture struct {
	rec      *gputest.Recorder
	root     scene.Node
	manager  *scene.SceneManager
	eye      scene.Node
	renderer *Renderer
	effect   *render.Effect
}

// newFixture builds a scene whose camera sits at the origin looking down -Z.
func newFixture(t *testing.T, options ...RendererBuilderOption) *fixture {
	t.Helper()
	f := &fixture{
		rec:      gputest.NewRecorder(),
		root:     scene.NewNode("root"),
		eye:      scene.NewNode("camera"),
		renderer: NewRenderer(options...),
		effect:   colorEffect(),
	}
	f.manager = scene.NewSceneManager(f.rec)
	require.NoError(t, f.root.AddComponent(f.manager))
	require.NoError(t, f.eye.AddComponent(transform.NewTransform()))
	require.NoError(t, f.eye.AddComponent(camera.NewCamera()))
	require.NoError(t, f.eye.AddComponent(f.renderer))
	require.NoError(t, f.root.AddChild(f.eye))
	return f
}

func (f *fixture) add(t *testing.T, name string, z float32, mat material.Material, options ...scene.NodeBuilderOption) (scene.Node, *surface.Surface) {
	t.Helper()
	n := scene.NewNode(name, options...)
	require.NoError(t, n.AddComponent(transform.NewTransform(transform.WithPosition(0, 0, z))))
	s := surface.NewSurface(name, geometry.Quad(), mat, f.effect)
	require.NoError(t, n.AddComponent(s))
	require.NoError(t, f.root.AddChild(n))
	return n, s
}

func (f *fixture) frame(t *testing.T) {
	t.Helper()
	f.rec.Draws = nil
	require.NoError(t, f.manager.NextFrame(0, 0))
}

func (f *fixture) colors() []mgl32.Vec4 {
	out := make([]mgl32.Vec4, 0, len(f.rec.Draws))
	for _, d := range f.rec.Draws {
		var c mgl32.Vec4
		copy(c[:], d.Uniforms[locDiffuseColor])
		out = append(out, c)
	}
	return out
}

func TestRendererSortsOpaqueThenTransparentBackToFront(t *testing.T) {
	f := newFixture(t)
	f.add(t, "near", -3, material.NewMaterial(material.WithDiffuseColor(green), material.WithTransparent()))
	f.add(t, "opaque", -5, material.NewMaterial(material.WithDiffuseColor(red)))
	f.add(t, "far", -8, material.NewMaterial(material.WithDiffuseColor(blue), material.WithTransparent()))

	f.frame(t)
	assert.Equal(t, []mgl32.Vec4{red, blue, green}, f.colors())
	assert.Equal(t, gpu.BlendingAlpha, f.rec.Draws[1].State.Blending)
	assert.Equal(t, 1, f.rec.Frames)
	assert.Equal(t, gpu.DefaultClearOptions(), f.rec.Cleared)

	stats := f.renderer.Stats()
	assert.Equal(t, 3, stats.Visible)
	assert.Equal(t, 1, stats.Opaque)
	assert.Equal(t, 2, stats.Transparent)
}

func TestRendererSkipsRejectedSurface(t *testing.T) {
	f := newFixture(t)
	n, s := f.add(t, "red", -5, material.NewMaterial(material.WithDiffuseColor(red)))

	rejected := surface.NewSurface("blue", s.Geometry(), material.NewMaterial(material.WithDiffuseColor(blue)), f.effect)
	err := n.AddComponent(rejected)
	assert.ErrorIs(t, err, data.ErrDuplicatePropertyName)

	f.frame(t)
	assert.Equal(t, []mgl32.Vec4{red}, f.colors())
	assert.Empty(t, rejected.DrawCalls(f.renderer))
}

func TestRendererLayoutFiltering(t *testing.T) {
	f := newFixture(t)
	hidden, _ := f.add(t, "hidden", -5, material.NewMaterial(), scene.WithLayout(scene.LayoutHidden))
	_, s := f.add(t, "shown", -5, material.NewMaterial(material.WithDiffuseColor(red)))

	f.frame(t)
	assert.Equal(t, []mgl32.Vec4{red}, f.colors())

	hidden.SetLayout(scene.LayoutDefault)
	s.SetVisible(false)
	f.frame(t)
	assert.Equal(t, []mgl32.Vec4{{1, 1, 1, 1}}, f.colors())

	f.renderer.SetLayoutMask(scene.LayoutPicking)
	f.frame(t)
	assert.Empty(t, f.rec.Draws)
	assert.Equal(t, 2, f.renderer.Stats().DrawCalls, "filtered draw calls stay built")
}

func TestRendererQueuesStructuralChanges(t *testing.T) {
	f := newFixture(t)
	_, first := f.add(t, "first", -5, material.NewMaterial())
	assert.Equal(t, 1, f.renderer.Pending())
	assert.Empty(t, first.DrawCalls(f.renderer))

	var late *surface.Surface
	f.renderer.BeforePresent().Connect(func(*Renderer) {
		if late == nil {
			_, late = f.add(t, "late", -5, material.NewMaterial())
		}
	})

	f.frame(t)
	assert.Len(t, f.rec.Draws, 1)
	assert.Len(t, first.DrawCalls(f.renderer), 1)
	assert.Equal(t, 1, f.renderer.Pending())
	assert.Empty(t, late.DrawCalls(f.renderer))

	f.frame(t)
	assert.Len(t, f.rec.Draws, 2)
	assert.Equal(t, 0, f.renderer.Pending())
}

func TestRendererRebuildsOnMaterialSwap(t *testing.T) {
	f := newFixture(t)
	_, s := f.add(t, "quad", -5, material.NewMaterial(material.WithDiffuseColor(red)))
	f.frame(t)
	old := s.DrawCalls(f.renderer)
	require.Len(t, old, 1)

	require.NoError(t, s.SetMaterial(material.NewMaterial(material.WithDiffuseColor(blue))))
	assert.False(t, old[0].Disposed(), "swaps apply at the next frame")

	f.frame(t)
	assert.True(t, old[0].Disposed())
	current := s.DrawCalls(f.renderer)
	require.Len(t, current, 1)
	assert.NotSame(t, old[0], current[0])
	assert.Equal(t, []mgl32.Vec4{blue}, f.colors())
}

func TestRendererValueChangeDoesNotRebuild(t *testing.T) {
	f := newFixture(t)
	mat := material.NewMaterial(material.WithDiffuseColor(red))
	_, s := f.add(t, "quad", -5, mat)
	f.frame(t)
	d := s.DrawCalls(f.renderer)[0]
	generation := d.Generation()

	mat.SetDiffuseColor(blue)
	f.frame(t)
	assert.Same(t, d, s.DrawCalls(f.renderer)[0])
	assert.Equal(t, generation, d.Generation())
	assert.Equal(t, []mgl32.Vec4{blue}, f.colors())
}

func TestRendererReleasesResources(t *testing.T) {
	f := newFixture(t)
	n, s := f.add(t, "a", -5, material.NewMaterial())
	f.add(t, "b", -6, material.NewMaterial())
	f.frame(t)
	require.Len(t, f.rec.Draws, 2)
	assert.Positive(t, f.rec.LiveTotal())

	require.NoError(t, f.root.RemoveChild(n))
	f.frame(t)
	assert.Len(t, f.rec.Draws, 1)
	assert.Empty(t, s.DrawCalls(f.renderer))
	assert.Len(t, f.renderer.Surfaces(), 1)

	require.NoError(t, f.eye.RemoveComponent(f.renderer))
	assert.Equal(t, 0, f.rec.LiveTotal())
	for _, kind := range []gputest.Kind{gputest.KindVertexBuffer, gputest.KindIndexBuffer, gputest.KindProgram} {
		assert.Equal(t, f.rec.Created(kind), f.rec.Deleted(kind), kind)
	}
}

func TestRendererFrustumCulling(t *testing.T) {
	f := newFixture(t)
	f.add(t, "front", -5, material.NewMaterial(material.WithDiffuseColor(red)))
	behind, _ := f.add(t, "behind", 5, material.NewMaterial(material.WithDiffuseColor(blue)))

	f.frame(t)
	assert.Equal(t, []mgl32.Vec4{red}, f.colors())
	assert.Equal(t, 1, f.renderer.Stats().Culled)

	behind.SetLayout(scene.LayoutDefault | scene.LayoutIgnoreCulling)
	f.frame(t)
	assert.Len(t, f.rec.Draws, 2)

	behind.SetLayout(scene.LayoutDefault)
	f.renderer.SetFrustumCulling(false)
	f.frame(t)
	assert.Len(t, f.rec.Draws, 2)
}

func TestRendererSignalOrder(t *testing.T) {
	f := newFixture(t, WithViewport(Viewport{Width: 640, Height: 480}), WithClearColor([4]float32{0.1, 0.2, 0.3, 1}))
	f.add(t, "quad", -5, material.NewMaterial())

	var order []string
	f.renderer.RenderingBegin().Connect(func(*Renderer) { order = append(order, "begin") })
	f.renderer.BeforePresent().Connect(func(*Renderer) {
		assert.Equal(t, 0, f.rec.Frames)
		assert.Len(t, f.rec.Draws, 1)
		order = append(order, "beforePresent")
	})
	f.renderer.RenderingEnd().Connect(func(*Renderer) {
		assert.Equal(t, 1, f.rec.Frames)
		order = append(order, "end")
	})

	f.frame(t)
	assert.Equal(t, []string{"begin", "beforePresent", "end"}, order)
	assert.Equal(t, [4]int{0, 0, 640, 480}, f.rec.Viewport)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, f.rec.Cleared.Color)
}

func TestRendererEffectOverride(t *testing.T) {
	f := newFixture(t)
	n := scene.NewNode("bare")
	s := surface.NewSurface("bare", geometry.Quad(), material.NewMaterial(), nil)
	require.NoError(t, n.AddComponent(transform.NewTransform(transform.WithPosition(0, 0, -5))))
	require.NoError(t, n.AddComponent(s))
	require.NoError(t, f.root.AddChild(n))

	f.frame(t)
	assert.Empty(t, f.rec.Draws)

	f.renderer.SetEffect(colorEffect())
	f.frame(t)
	assert.Len(t, f.rec.Draws, 1)
}

func TestRendererIdCapacity(t *testing.T) {
	f := newFixture(t, WithMaxDrawCalls(1))
	f.add(t, "a", -5, material.NewMaterial())
	f.add(t, "b", -5, material.NewMaterial())

	f.frame(t)
	assert.Len(t, f.rec.Draws, 1)
}

func TestRendererFollowsItsScene(t *testing.T) {
	f := newFixture(t)
	f.add(t, "quad", -5, material.NewMaterial())
	f.frame(t)
	require.Len(t, f.renderer.Surfaces(), 1)

	require.NoError(t, f.root.RemoveChild(f.eye))
	assert.Empty(t, f.renderer.Surfaces())
	assert.Equal(t, 0, f.rec.LiveTotal())

	require.NoError(t, f.root.AddChild(f.eye))
	assert.Len(t, f.renderer.Surfaces(), 1)
	assert.Equal(t, 1, f.renderer.Pending())
}

func TestRenderDetached(t *testing.T) {
	r := NewRenderer()
	assert.ErrorIs(t, r.Render(gputest.NewRecorder()), scene.ErrNotAttached)
}
