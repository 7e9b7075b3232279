package material

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/render"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithDiffuseColor is an option builder that sets the RGBA diffuse color of the material.
//
// Parameters:
//   - color: the diffuse color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse color option to a material
func WithDiffuseColor(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.set(DiffuseColorProperty, data.ValueOf(color))
	}
}

// WithDiffuseMap is an option builder that sets the diffuse texture of the material.
//
// Parameters:
//   - texture: the diffuse texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse map option to a material
func WithDiffuseMap(texture *gpu.Texture) MaterialBuilderOption {
	return func(m *material) {
		if texture != nil {
			m.set(DiffuseMapProperty, data.ValueOf(texture))
		}
	}
}

// WithMetallic is an option builder that sets the metallic factor of the material.
//
// Parameters:
//   - metallic: the metallic factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.set(MetallicProperty, data.ValueOf(metallic))
	}
}

// WithRoughness is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.set(RoughnessProperty, data.ValueOf(roughness))
	}
}

// WithPriority is an option builder that sets the draw priority of the material.
//
// Parameters:
//   - priority: the draw priority, higher first
//
// Returns:
//   - MaterialBuilderOption: a function that applies the priority option to a material
func WithPriority(priority float32) MaterialBuilderOption {
	return func(m *material) {
		m.set(render.StatePriority, data.ValueOf(priority))
	}
}

// WithZSorted is an option builder that toggles depth sorting of the material.
func WithZSorted(zSorted bool) MaterialBuilderOption {
	return func(m *material) {
		m.set(render.StateZSorted, data.ValueOf(zSorted))
	}
}

// WithBlendingMode is an option builder that sets the blending mode by name.
// Unknown names are ignored and logged.
//
// Parameters:
//   - mode: the blending mode name, e.g. "alpha"
//
// Returns:
//   - MaterialBuilderOption: a function that applies the blending option to a material
func WithBlendingMode(mode string) MaterialBuilderOption {
	return func(m *material) {
		if _, err := gpu.ParseBlendingMode(mode); err != nil {
			common.Logger("Material").Warn("ignoring blending mode", "material", m.name, "err", err)
			return
		}
		m.set(render.StateBlendingMode, data.ValueOf(mode))
	}
}

// WithTriangleCulling is an option builder that sets the triangle culling by name.
// Unknown names are ignored and logged.
func WithTriangleCulling(culling string) MaterialBuilderOption {
	return func(m *material) {
		if _, err := gpu.ParseTriangleCulling(culling); err != nil {
			common.Logger("Material").Warn("ignoring triangle culling", "material", m.name, "err", err)
			return
		}
		m.set(render.StateTriangleCulling, data.ValueOf(culling))
	}
}

// WithDepthMask is an option builder that toggles depth writes.
func WithDepthMask(depthMask bool) MaterialBuilderOption {
	return func(m *material) {
		m.set(render.StateDepthMask, data.ValueOf(depthMask))
	}
}

// WithTransparent is an option builder for alpha blended, depth sorted materials drawn in
// the transparent priority range without depth writes.
//
// Returns:
//   - MaterialBuilderOption: a function that applies the transparency settings to a material
func WithTransparent() MaterialBuilderOption {
	return func(m *material) {
		m.set(render.StatePriority, data.ValueOf(render.PriorityTransparent))
		m.set(render.StateZSorted, data.ValueOf(true))
		m.set(render.StateBlendingMode, data.ValueOf("alpha"))
		m.set(render.StateDepthMask, data.ValueOf(false))
	}
}
