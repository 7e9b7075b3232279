package loader

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
)

const shaderSource = `
struct VertexInput {
    @location(0) position: vec3f,
}

struct Uniforms {
    modelToWorldMatrix: mat4x4f,
    diffuseColor: vec4f,
}

@group(0) @binding(0) var<uniform> u: Uniforms;

@vertex
fn vs_main(in: VertexInput) -> @builtin(position) vec4f {
    return u.modelToWorldMatrix * vec4f(in.position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4f {
    return u.diffuseColor;
}
`

const effectPasses = `
passes:
  - shaderFile: color.wgsl
    attributes:
      position: vertexPosition
`

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func writeEffect(t *testing.T, dir, name string) string {
	t.Helper()
	writeFile(t, dir, "color.wgsl", []byte(shaderSource))
	return writeFile(t, dir, name+".yaml", []byte("name: "+name+effectPasses))
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return writeFile(t, dir, name, buf.Bytes())
}

func newLoader(t *testing.T, options ...LoaderBuilderOption) *Loader {
	t.Helper()
	l, err := NewLoader(append([]LoaderBuilderOption{WithWorkers(2)}, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLoadFileDeliversOnDrain(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.bin", []byte("hello"))
	l := newLoader(t)

	var got []byte
	var progress []float32
	completed := 0
	l.Progress().Connect(func(p float32) { progress = append(progress, p) })
	l.Complete().Connect(func(*Loader) { completed++ })

	l.LoadFile(path, func(b []byte) { got = b })
	assert.Equal(t, 1, l.Pending())

	l.Wait()
	assert.Nil(t, got, "handlers only run from Drain")
	assert.Equal(t, 1, l.Drain())
	assert.Equal(t, []byte("hello"), got)
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, []float32{1}, progress)
	assert.Equal(t, 1, completed)

	// A second request for a loaded asset is answered at once.
	var again []byte
	l.LoadFile(path, func(b []byte) { again = b })
	assert.Equal(t, []byte("hello"), again)
	assert.Equal(t, 0, l.Pending())
}

func TestLoadEffectAndTexture(t *testing.T) {
	dir := t.TempDir()
	effectPath := writeEffect(t, dir, "basic")
	texturePath := writePNG(t, dir, "red.png", 8, 4)
	l := newLoader(t, WithMaxTextureSize(4))

	var effect *render.Effect
	var texture *gpu.Texture
	completed := 0
	l.Complete().Connect(func(*Loader) { completed++ })
	l.LoadEffect(effectPath, func(e *render.Effect) { effect = e })
	l.LoadTexture(texturePath, func(tex *gpu.Texture) { texture = tex })

	l.Wait()
	assert.Equal(t, 2, l.Drain())
	assert.Equal(t, 1, completed)

	require.NotNil(t, effect)
	assert.Equal(t, "basic", effect.Name())
	require.Len(t, effect.Passes(), 1)

	require.NotNil(t, texture)
	assert.Equal(t, 4, texture.Width())
	assert.Equal(t, 2, texture.Height())
}

func TestLoadErrorsNamePath(t *testing.T) {
	dir := t.TempDir()
	l := newLoader(t)

	var errs []error
	completed := 0
	l.Error().Connect(func(err error) { errs = append(errs, err) })
	l.Complete().Connect(func(*Loader) { completed++ })

	missing := filepath.Join(dir, "missing.bin")
	called := false
	l.LoadFile(missing, func([]byte) { called = true })
	l.LoadTexture(filepath.Join(dir, "notes.txt"), func(*gpu.Texture) { called = true })
	require.Len(t, errs, 1, "unsupported formats fail before reaching a worker")
	assert.ErrorContains(t, errs[0], "unsupported texture format")

	l.Wait()
	l.Drain()
	require.Len(t, errs, 2)
	assert.True(t, errors.Is(errs[1], fs.ErrNotExist))
	assert.ErrorContains(t, errs[1], "missing.bin")
	assert.False(t, called)
	assert.Equal(t, 1, completed, "a failed job still counts as delivered")
}

func TestReloadDeliversAgain(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.bin", []byte("v1"))
	l := newLoader(t)

	var got [][]byte
	l.LoadFile(path, func(b []byte) { got = append(got, b) })
	l.Wait()
	l.Drain()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	l.Reload(path)
	l.Wait()
	l.Drain()

	assert.Equal(t, [][]byte{[]byte("v1"), []byte("v2")}, got)
}

func TestHotReloadOnShaderChange(t *testing.T) {
	dir := t.TempDir()
	effectPath := writeEffect(t, dir, "basic")
	l := newLoader(t, WithHotReload(true))

	loads := 0
	l.LoadEffect(effectPath, func(*render.Effect) { loads++ })
	l.Wait()
	l.Drain()
	require.Equal(t, 1, loads)

	writeFile(t, dir, "color.wgsl", []byte(shaderSource+"\n// edited\n"))
	require.Eventually(t, func() bool {
		l.Drain()
		l.Wait()
		l.Drain()
		return loads >= 2
	}, 5*time.Second, 20*time.Millisecond)
}
