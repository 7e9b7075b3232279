package data

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// Kind tags the type held by a Value.
type Kind int

const (
	KindNone Kind = iota
	KindFloat
	KindInt
	KindBool
	KindString
	KindVec2
	KindVec3
	KindVec4
	KindMat4
	KindTexture
	KindVertexAttribute
	KindIndexBuffer
)

var kindNames = [...]string{
	KindNone:            "none",
	KindFloat:           "float",
	KindInt:             "int",
	KindBool:            "bool",
	KindString:          "string",
	KindVec2:            "vec2",
	KindVec3:            "vec3",
	KindVec4:            "vec4",
	KindMat4:            "mat4",
	KindTexture:         "texture",
	KindVertexAttribute: "vertexAttribute",
	KindIndexBuffer:     "indexBuffer",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type lists the Go types a property can hold.
type Type interface {
	float32 | int | bool | string |
		mgl32.Vec2 | mgl32.Vec3 | mgl32.Vec4 | mgl32.Mat4 |
		*gpu.Texture | gpu.VertexAttribute | *gpu.IndexBuffer
}

// Value is a tagged property value. Values are comparable with ==.
type Value struct {
	kind Kind
	data any
}

// ValueOf wraps v in a Value.
func ValueOf[T Type](v T) Value {
	return Value{kind: kindOf(any(v)), data: v}
}

func kindOf(v any) Kind {
	switch v.(type) {
	case float32:
		return KindFloat
	case int:
		return KindInt
	case bool:
		return KindBool
	case string:
		return KindString
	case mgl32.Vec2:
		return KindVec2
	case mgl32.Vec3:
		return KindVec3
	case mgl32.Vec4:
		return KindVec4
	case mgl32.Mat4:
		return KindMat4
	case *gpu.Texture:
		return KindTexture
	case gpu.VertexAttribute:
		return KindVertexAttribute
	case *gpu.IndexBuffer:
		return KindIndexBuffer
	}
	return KindNone
}

// Kind returns the tag of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsZero reports whether v holds nothing.
func (v Value) IsZero() bool {
	return v.kind == KindNone
}

// Interface returns the wrapped Go value.
func (v Value) Interface() any {
	return v.data
}

// As returns the value held by v as T. ok is false when the kinds disagree.
func As[T Type](v Value) (T, bool) {
	t, ok := v.data.(T)
	return t, ok
}

// Floats flattens numeric kinds for float uniform upload. ok is false for non-float kinds.
func (v Value) Floats() (values []float32, ok bool) {
	switch d := v.data.(type) {
	case float32:
		return []float32{d}, true
	case mgl32.Vec2:
		return d[:], true
	case mgl32.Vec3:
		return d[:], true
	case mgl32.Vec4:
		return d[:], true
	case mgl32.Mat4:
		return d[:], true
	}
	return nil, false
}

// Ints flattens integer and boolean kinds for integer uniform upload.
func (v Value) Ints() (values []int32, ok bool) {
	switch d := v.data.(type) {
	case int:
		return []int32{int32(d)}, true
	case bool:
		if d {
			return []int32{1}, true
		}
		return []int32{0}, true
	}
	return nil, false
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%v)", v.kind, v.data)
}
