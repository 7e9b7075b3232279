package gpu

import (
	"fmt"
	"strings"
)

var blendingNames = map[string]BlendingMode{
	"default":  BlendingDefault,
	"opaque":   BlendingDefault,
	"alpha":    BlendingAlpha,
	"additive": BlendingAdditive,
}

var compareNames = map[string]CompareMode{
	"never":        CompareNever,
	"less":         CompareLess,
	"equal":        CompareEqual,
	"lessequal":    CompareLessEqual,
	"greater":      CompareGreater,
	"notequal":     CompareNotEqual,
	"greaterequal": CompareGreaterEqual,
	"always":       CompareAlways,
}

var cullingNames = map[string]TriangleCulling{
	"none":  CullNone,
	"front": CullFront,
	"back":  CullBack,
	"both":  CullBoth,
}

var stencilNames = map[string]StencilOperation{
	"keep":          StencilKeep,
	"zero":          StencilZero,
	"replace":       StencilReplace,
	"increment":     StencilIncrement,
	"incrementwrap": StencilIncrementWrap,
	"decrement":     StencilDecrement,
	"decrementwrap": StencilDecrementWrap,
	"invert":        StencilInvert,
}

// normalizeName lowercases s and drops separators so "less_equal", "lessEqual" and
// "LESS-EQUAL" all match.
func normalizeName(s string) string {
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
}

func parseNamed[T any](kind string, table map[string]T, s string) (T, error) {
	v, ok := table[normalizeName(s)]
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s %q", kind, s)
	}
	return v, nil
}

// ParseBlendingMode accepts default, opaque, alpha and additive.
func ParseBlendingMode(s string) (BlendingMode, error) {
	return parseNamed("blending mode", blendingNames, s)
}

// ParseCompareMode accepts never, less, equal, less_equal, greater, not_equal,
// greater_equal and always.
func ParseCompareMode(s string) (CompareMode, error) {
	return parseNamed("compare mode", compareNames, s)
}

// ParseTriangleCulling accepts none, front, back and both.
func ParseTriangleCulling(s string) (TriangleCulling, error) {
	return parseNamed("triangle culling", cullingNames, s)
}

// ParseStencilOperation accepts keep, zero, replace, increment, increment_wrap,
// decrement, decrement_wrap and invert.
func ParseStencilOperation(s string) (StencilOperation, error) {
	return parseNamed("stencil operation", stencilNames, s)
}
