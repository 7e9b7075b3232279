package material

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
)

// Property names published by every material.
const (
	DiffuseColorProperty = "diffuseColor"
	DiffuseMapProperty   = "diffuseMap"
	MetallicProperty     = "metallic"
	RoughnessProperty    = "roughness"
)

// material is the implementation of the Material interface.
type material struct {
	name     string
	provider *data.Provider
}

// Material defines the interface for a render material. A material is a thin typed view
// over a data.Provider: every setter writes a property that effect bindings can read, so a
// value change reaches the GPU at the next issue without rebuilding draw calls.
//
// The render states a material carries (priority, zSorted, blendingMode, triangleCulling,
// depthMask) use the same property names as render.States so passes bind them by default.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Provider retrieves the data provider holding the material properties.
	//
	// Returns:
	//   - *data.Provider: the provider a Surface registers into its node container
	Provider() *data.Provider

	// DiffuseColor retrieves the RGBA diffuse color.
	//
	// Returns:
	//   - mgl32.Vec4: the diffuse color
	DiffuseColor() mgl32.Vec4

	// SetDiffuseColor sets the RGBA diffuse color.
	//
	// Parameters:
	//   - color: the new diffuse color
	SetDiffuseColor(color mgl32.Vec4)

	// DiffuseMap retrieves the diffuse texture, or nil if none is set.
	//
	// Returns:
	//   - *gpu.Texture: the diffuse texture, or nil
	DiffuseMap() *gpu.Texture

	// SetDiffuseMap sets the diffuse texture. A nil texture removes the diffuseMap property,
	// which invalidates the draw calls bound to it.
	//
	// Parameters:
	//   - texture: the diffuse texture, or nil
	//
	// Returns:
	//   - error: data.ErrDuplicatePropertyName if a sibling provider already defines diffuseMap
	SetDiffuseMap(texture *gpu.Texture) error

	// Metallic retrieves the metallic factor.
	Metallic() float32

	// SetMetallic sets the metallic factor.
	SetMetallic(metallic float32)

	// Roughness retrieves the roughness factor.
	Roughness() float32

	// SetRoughness sets the roughness factor.
	SetRoughness(roughness float32)

	// Priority retrieves the draw priority. Higher priorities draw first.
	//
	// Returns:
	//   - float32: the draw priority
	Priority() float32

	// SetPriority sets the draw priority.
	//
	// Parameters:
	//   - priority: the draw priority, see render.PriorityOpaque and friends
	SetPriority(priority float32)

	// ZSorted reports whether draw calls using this material are depth sorted.
	ZSorted() bool

	// SetZSorted toggles depth sorting.
	SetZSorted(zSorted bool)

	// BlendingMode retrieves the blending mode name.
	BlendingMode() string

	// SetBlendingMode sets the blending mode by name, see gpu.ParseBlendingMode.
	//
	// Parameters:
	//   - mode: the blending mode name
	//
	// Returns:
	//   - error: an error if the name is unknown
	SetBlendingMode(mode string) error

	// TriangleCulling retrieves the triangle culling name.
	TriangleCulling() string

	// SetTriangleCulling sets the triangle culling by name, see gpu.ParseTriangleCulling.
	//
	// Parameters:
	//   - culling: the culling name
	//
	// Returns:
	//   - error: an error if the name is unknown
	SetTriangleCulling(culling string) error

	// DepthMask reports whether depth writes are enabled.
	DepthMask() bool

	// SetDepthMask toggles depth writes.
	SetDepthMask(depthMask bool)

	// Clone creates a material with a copy of every property.
	//
	// Returns:
	//   - Material: the copy
	Clone() Material
}

var _ Material = &material{}

// NewMaterial creates a new opaque white Material configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{provider: data.NewProvider("material")}
	m.set(DiffuseColorProperty, data.ValueOf(mgl32.Vec4{1, 1, 1, 1}))
	m.set(MetallicProperty, data.ValueOf[float32](0))
	m.set(RoughnessProperty, data.ValueOf[float32](1))
	m.set(render.StatePriority, data.ValueOf(render.PriorityOpaque))
	m.set(render.StateZSorted, data.ValueOf(false))
	m.set(render.StateBlendingMode, data.ValueOf("default"))
	m.set(render.StateTriangleCulling, data.ValueOf("back"))
	m.set(render.StateDepthMask, data.ValueOf(true))
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) set(name string, v data.Value) {
	if err := m.provider.SetValue(name, v); err != nil {
		common.Logger("Material").Warn("property not set", "material", m.name, "property", name, "err", err)
	}
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Provider() *data.Provider {
	return m.provider
}

func (m *material) DiffuseColor() mgl32.Vec4 {
	c, _ := data.Get[mgl32.Vec4](m.provider, DiffuseColorProperty)
	return c
}

func (m *material) SetDiffuseColor(color mgl32.Vec4) {
	m.set(DiffuseColorProperty, data.ValueOf(color))
}

func (m *material) DiffuseMap() *gpu.Texture {
	t, _ := data.Get[*gpu.Texture](m.provider, DiffuseMapProperty)
	return t
}

func (m *material) SetDiffuseMap(texture *gpu.Texture) error {
	if texture == nil {
		if !m.provider.Has(DiffuseMapProperty) {
			return nil
		}
		return m.provider.Unset(DiffuseMapProperty)
	}
	return m.provider.SetValue(DiffuseMapProperty, data.ValueOf(texture))
}

func (m *material) Metallic() float32 {
	v, _ := data.Get[float32](m.provider, MetallicProperty)
	return v
}

func (m *material) SetMetallic(metallic float32) {
	m.set(MetallicProperty, data.ValueOf(metallic))
}

func (m *material) Roughness() float32 {
	v, _ := data.Get[float32](m.provider, RoughnessProperty)
	return v
}

func (m *material) SetRoughness(roughness float32) {
	m.set(RoughnessProperty, data.ValueOf(roughness))
}

func (m *material) Priority() float32 {
	v, _ := data.Get[float32](m.provider, render.StatePriority)
	return v
}

func (m *material) SetPriority(priority float32) {
	m.set(render.StatePriority, data.ValueOf(priority))
}

func (m *material) ZSorted() bool {
	v, _ := data.Get[bool](m.provider, render.StateZSorted)
	return v
}

func (m *material) SetZSorted(zSorted bool) {
	m.set(render.StateZSorted, data.ValueOf(zSorted))
}

func (m *material) BlendingMode() string {
	v, _ := data.Get[string](m.provider, render.StateBlendingMode)
	return v
}

func (m *material) SetBlendingMode(mode string) error {
	if _, err := gpu.ParseBlendingMode(mode); err != nil {
		return err
	}
	return m.provider.SetValue(render.StateBlendingMode, data.ValueOf(mode))
}

func (m *material) TriangleCulling() string {
	v, _ := data.Get[string](m.provider, render.StateTriangleCulling)
	return v
}

func (m *material) SetTriangleCulling(culling string) error {
	if _, err := gpu.ParseTriangleCulling(culling); err != nil {
		return err
	}
	return m.provider.SetValue(render.StateTriangleCulling, data.ValueOf(culling))
}

func (m *material) DepthMask() bool {
	v, _ := data.Get[bool](m.provider, render.StateDepthMask)
	return v
}

func (m *material) SetDepthMask(depthMask bool) {
	m.set(render.StateDepthMask, data.ValueOf(depthMask))
}

func (m *material) Clone() Material {
	return &material{name: m.name, provider: m.provider.Clone()}
}
