package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// Named draw priorities. Higher priorities are drawn first.
const (
	PriorityBackground  float32 = 4
	PriorityOpaque      float32 = 3
	PriorityTransparent float32 = 2
	PriorityLast        float32 = 1
)

// State property names understood by state bindings and material providers.
const (
	StatePriority              = "priority"
	StateZSorted               = "zSorted"
	StateBlendingMode          = "blendingMode"
	StateColorMask             = "colorMask"
	StateDepthMask             = "depthMask"
	StateDepthFunction         = "depthFunction"
	StateTriangleCulling       = "triangleCulling"
	StateStencilFunction       = "stencilFunction"
	StateStencilReference      = "stencilReference"
	StateStencilMask           = "stencilMask"
	StateStencilFailOperation  = "stencilFailOperation"
	StateStencilZFailOperation = "stencilZFailOperation"
	StateStencilZPassOperation = "stencilZPassOperation"
	StateScissorTest           = "scissorTest"
	StateScissorBox            = "scissorBox"
)

// StateNames lists every state a pass can bind, in application order.
var StateNames = []string{
	StatePriority, StateZSorted, StateBlendingMode, StateColorMask, StateDepthMask,
	StateDepthFunction, StateTriangleCulling, StateStencilFunction, StateStencilReference,
	StateStencilMask, StateStencilFailOperation, StateStencilZFailOperation,
	StateStencilZPassOperation, StateScissorTest, StateScissorBox,
}

// States is the resolved per-draw state: sort keys plus the fixed-function render state.
type States struct {
	Priority float32
	ZSorted  bool
	gpu.RenderState
}

// DefaultStates returns priority 0, not z-sorted, with gpu.DefaultRenderState.
func DefaultStates() States {
	return States{RenderState: gpu.DefaultRenderState()}
}

// Apply sets one named state from v. Enumerations accept their string names; numeric
// states accept int or float values.
//
// Parameters:
//   - name: one of StateNames
//   - v: the value to apply
//
// Returns:
//   - error: an error for unknown names or values of the wrong kind
func (s *States) Apply(name string, v data.Value) error {
	var err error
	switch name {
	case StatePriority:
		s.Priority, err = floatOf(v)
	case StateZSorted:
		s.ZSorted, err = boolOf(v)
	case StateColorMask:
		s.ColorMask, err = boolOf(v)
	case StateDepthMask:
		s.DepthMask, err = boolOf(v)
	case StateScissorTest:
		s.ScissorTest, err = boolOf(v)
	case StateStencilReference:
		var f float32
		f, err = floatOf(v)
		s.StencilReference = int(f)
	case StateStencilMask:
		var f float32
		f, err = floatOf(v)
		s.StencilMask = uint32(f)
	case StateBlendingMode:
		err = parseInto(v, &s.Blending, gpu.ParseBlendingMode)
	case StateDepthFunction:
		err = parseInto(v, &s.DepthFunction, gpu.ParseCompareMode)
	case StateStencilFunction:
		err = parseInto(v, &s.StencilFunction, gpu.ParseCompareMode)
	case StateTriangleCulling:
		err = parseInto(v, &s.TriangleCulling, gpu.ParseTriangleCulling)
	case StateStencilFailOperation:
		err = parseInto(v, &s.StencilFailOp, gpu.ParseStencilOperation)
	case StateStencilZFailOperation:
		err = parseInto(v, &s.StencilZFailOp, gpu.ParseStencilOperation)
	case StateStencilZPassOperation:
		err = parseInto(v, &s.StencilZPassOp, gpu.ParseStencilOperation)
	case StateScissorBox:
		box, ok := data.As[mgl32.Vec4](v)
		if !ok {
			return fmt.Errorf("state %s: want vec4, got %s", name, v.Kind())
		}
		s.ScissorBox = gpu.ScissorBox{X: int(box[0]), Y: int(box[1]), Width: int(box[2]), Height: int(box[3])}
	default:
		return fmt.Errorf("unknown state %q", name)
	}
	if err != nil {
		return fmt.Errorf("state %s: %w", name, err)
	}
	return nil
}

func floatOf(v data.Value) (float32, error) {
	switch v.Kind() {
	case data.KindFloat:
		f, _ := data.As[float32](v)
		return f, nil
	case data.KindInt:
		i, _ := data.As[int](v)
		return float32(i), nil
	}
	return 0, fmt.Errorf("want number, got %s", v.Kind())
}

func boolOf(v data.Value) (bool, error) {
	b, ok := data.As[bool](v)
	if !ok {
		return false, fmt.Errorf("want bool, got %s", v.Kind())
	}
	return b, nil
}

func parseInto[T any](v data.Value, dst *T, parse func(string) (T, error)) error {
	s, ok := data.As[string](v)
	if !ok {
		return fmt.Errorf("want string, got %s", v.Kind())
	}
	parsed, err := parse(s)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}
