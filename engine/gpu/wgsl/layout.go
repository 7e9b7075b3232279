package wgsl

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// primitiveLayouts maps WGSL scalar, vector and matrix type names to their size and
// alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]typeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// inputTypes maps the WGSL types a uniform binding can feed to their input type.
var inputTypes = map[string]gpu.InputType{
	"f32":         gpu.InputTypeFloat1,
	"vec2<f32>":   gpu.InputTypeFloat2,
	"vec2f":       gpu.InputTypeFloat2,
	"vec3<f32>":   gpu.InputTypeFloat3,
	"vec3f":       gpu.InputTypeFloat3,
	"vec4<f32>":   gpu.InputTypeFloat4,
	"vec4f":       gpu.InputTypeFloat4,
	"i32":         gpu.InputTypeInt1,
	"u32":         gpu.InputTypeInt1,
	"bool":        gpu.InputTypeInt1,
	"vec2<i32>":   gpu.InputTypeInt2,
	"vec2i":       gpu.InputTypeInt2,
	"vec3<i32>":   gpu.InputTypeInt3,
	"vec3i":       gpu.InputTypeInt3,
	"vec4<i32>":   gpu.InputTypeInt4,
	"vec4i":       gpu.InputTypeInt4,
	"mat4x4<f32>": gpu.InputTypeFloat16,
	"mat4x4f":     gpu.InputTypeFloat16,
}

// vertexComponents maps vertex input types to their component count.
var vertexComponents = map[string]int{
	"f32":       1,
	"vec2f":     2,
	"vec2<f32>": 2,
	"vec3f":     3,
	"vec3<f32>": 3,
	"vec4f":     4,
	"vec4<f32>": 4,
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment using primitives
// and previously-computed struct layouts. Handles fixed-size arrays (array<T, N>) and returns
// false for runtime-sized arrays or unknown types.
func resolveTypeLayout(typeName string, knownTypes map[string]typeLayout) (typeLayout, bool) {
	if layout, ok := primitiveLayouts[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	if strings.HasPrefix(typeName, "array<") && strings.HasSuffix(typeName, ">") {
		inner := typeName[6 : len(typeName)-1]
		parts := strings.SplitN(inner, ",", 2)
		if len(parts) != 2 {
			return typeLayout{}, false
		}
		elemLayout, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), knownTypes)
		if !ok {
			return typeLayout{}, false
		}
		count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return typeLayout{}, false
		}
		stride := roundUpAlign(elemLayout.align, elemLayout.size)
		return typeLayout{count * stride, elemLayout.align}, true
	}

	return typeLayout{}, false
}

// fieldOffsets places each non-builtin field at its aligned offset and returns the offsets
// together with the struct layout. ok is false when a field type cannot be resolved.
func fieldOffsets(ps parsedStruct, knownTypes map[string]typeLayout) (offsets []uint64, layout typeLayout, ok bool) {
	offset := uint64(0)
	maxAlign := uint64(1)
	offsets = make([]uint64, len(ps.fields))

	for i, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fieldLayout, resolved := resolveTypeLayout(field.typeName, knownTypes)
		if !resolved {
			return nil, typeLayout{}, false
		}
		offset = roundUpAlign(fieldLayout.align, offset)
		offsets[i] = offset
		offset += fieldLayout.size
		if fieldLayout.align > maxAlign {
			maxAlign = fieldLayout.align
		}
	}

	return offsets, typeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// computeStructSizes computes the layout of every parsed struct, resolving structs that
// embed other structs iteratively.
func computeStructSizes(structs []parsedStruct) map[string]typeLayout {
	resolved := make(map[string]typeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)

	for len(remaining) > 0 {
		progress := false
		next := remaining[:0]
		for _, ps := range remaining {
			if _, layout, ok := fieldOffsets(ps, resolved); ok {
				resolved[ps.name] = layout
				progress = true
			} else {
				next = append(next, ps)
			}
		}
		remaining = next
		if !progress {
			break
		}
	}

	return resolved
}
