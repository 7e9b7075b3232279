// Package wgsl reflects the inputs of WGSL programs: vertex attributes, the members of the
// uniform block and the sampled textures.
//
// Programs follow one binding convention:
//   - vertex attributes are the @location fields of the vertex input struct;
//   - uniforms are the members of the struct bound at @group(0) @binding(0) as var<uniform>;
//   - textures are texture_2d<f32> variables in @group(1); a sampler named <texture>Sampler in the
//     same group is paired with its texture.
package wgsl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// UniformGroup and TextureGroup are the bind groups used by the binding convention.
const (
	UniformGroup = 0
	TextureGroup = 1
)

// Reflect extracts the inputs of a program from its vertex and fragment sources. The two
// sources may be the same module.
//
// Parameters:
//   - vertexSource: the WGSL source holding the @vertex entry point
//   - fragmentSource: the WGSL source holding the @fragment entry point
//
// Returns:
//   - gpu.ProgramInputs: the reflected attributes, uniforms and textures
//   - error: an error if an entry point is missing or the uniform block cannot be laid out
func Reflect(vertexSource, fragmentSource string) (gpu.ProgramInputs, error) {
	var inputs gpu.ProgramInputs

	vs, fs := stripComments(vertexSource), stripComments(fragmentSource)
	if EntryPoint(vs, StageVertex) == "" {
		return inputs, fmt.Errorf("no @vertex entry point")
	}
	if EntryPoint(fs, StageFragment) == "" {
		return inputs, fmt.Errorf("no @fragment entry point")
	}

	vsStructs := parseStructBlocks(vs)
	inputs.Attributes = reflectAttributes(vsStructs)

	if err := reflectUniforms(&inputs, vs, vsStructs); err != nil {
		return inputs, err
	}
	if fs != vs {
		if err := reflectUniforms(&inputs, fs, parseStructBlocks(fs)); err != nil {
			return inputs, err
		}
	}

	reflectTextures(&inputs, vs)
	if fs != vs {
		reflectTextures(&inputs, fs)
	}
	return inputs, nil
}

func reflectAttributes(structs []parsedStruct) []gpu.AttributeInput {
	var attrs []gpu.AttributeInput
	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		for _, f := range ps.fields {
			if f.location < 0 {
				continue
			}
			attrs = append(attrs, gpu.AttributeInput{
				Name:     f.name,
				Location: f.location,
				Size:     vertexComponents[f.typeName],
			})
		}
		break
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Location < attrs[j].Location })
	return attrs
}

func reflectUniforms(inputs *gpu.ProgramInputs, source string, structs []parsedStruct) error {
	known := computeStructSizes(structs)
	byName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		byName[ps.name] = ps
	}

	for _, decl := range parseResourceDecls(source) {
		if decl.group != UniformGroup || decl.addressSpace != "uniform" {
			continue
		}
		ps, ok := byName[decl.typeName]
		if !ok {
			return fmt.Errorf("uniform %q: block type %q is not a struct", decl.name, decl.typeName)
		}
		offsets, layout, ok := fieldOffsets(ps, known)
		if !ok {
			return fmt.Errorf("uniform %q: cannot lay out struct %q", decl.name, ps.name)
		}
		for i, f := range ps.fields {
			if _, exists := inputs.Uniform(f.name); exists {
				continue
			}
			fieldLayout, _ := resolveTypeLayout(f.typeName, known)
			inputs.Uniforms = append(inputs.Uniforms, gpu.UniformInput{
				Name:     f.name,
				Location: len(inputs.Uniforms),
				Type:     inputTypes[f.typeName],
				Offset:   int(offsets[i]),
				Size:     int(fieldLayout.size),
			})
		}
		if int(layout.size) > inputs.UniformBlockSize {
			inputs.UniformBlockSize = int(layout.size)
		}
	}
	return nil
}

func reflectTextures(inputs *gpu.ProgramInputs, source string) {
	decls := parseResourceDecls(source)
	samplers := make(map[string]int)
	for _, decl := range decls {
		if decl.group == TextureGroup && decl.typeName == "sampler" {
			samplers[decl.name] = decl.binding
		}
	}
	for _, decl := range decls {
		if decl.group != TextureGroup || !strings.HasPrefix(decl.typeName, "texture_2d") {
			continue
		}
		if _, exists := inputs.Texture(decl.name); exists {
			continue
		}
		samplerBinding := -1
		if b, ok := samplers[decl.name+"Sampler"]; ok {
			samplerBinding = b
		}
		inputs.Textures = append(inputs.Textures, gpu.TextureInput{
			Name:           decl.name,
			Slot:           len(inputs.Textures),
			Binding:        decl.binding,
			SamplerBinding: samplerBinding,
		})
	}
}
