package gpu

// BlendFactor is a source or destination blend factor.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendDstColor
	BlendOneMinusDstColor
)

// BlendingMode pairs a source and destination factor.
type BlendingMode struct {
	Source      BlendFactor
	Destination BlendFactor
}

// Common blending modes.
var (
	BlendingDefault  = BlendingMode{BlendOne, BlendZero}
	BlendingAlpha    = BlendingMode{BlendSrcAlpha, BlendOneMinusSrcAlpha}
	BlendingAdditive = BlendingMode{BlendSrcAlpha, BlendOne}
)

// Opaque reports whether the mode writes the source unblended.
func (b BlendingMode) Opaque() bool {
	return b == BlendingDefault
}

// CompareMode is a depth or stencil comparison function.
type CompareMode int

const (
	CompareNever CompareMode = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// TriangleCulling selects which faces are discarded.
type TriangleCulling int

const (
	CullNone TriangleCulling = iota
	CullFront
	CullBack
	CullBoth
)

// StencilOperation is applied to the stencil buffer after a stencil/depth test.
type StencilOperation int

const (
	StencilKeep StencilOperation = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilIncrementWrap
	StencilDecrement
	StencilDecrementWrap
	StencilInvert
)

// ScissorBox is a pixel rectangle. A negative width or height means the full viewport.
type ScissorBox struct {
	X, Y, Width, Height int
}

// RenderState is the fixed-function state a context applies before a draw.
type RenderState struct {
	Blending         BlendingMode
	ColorMask        bool
	DepthMask        bool
	DepthFunction    CompareMode
	TriangleCulling  TriangleCulling
	StencilFunction  CompareMode
	StencilReference int
	StencilMask      uint32
	StencilFailOp    StencilOperation
	StencilZFailOp   StencilOperation
	StencilZPassOp   StencilOperation
	ScissorTest      bool
	ScissorBox       ScissorBox
}

// DefaultRenderState returns opaque blending, depth LESS with writes, back-face culling,
// an always-passing stencil and no scissor.
func DefaultRenderState() RenderState {
	return RenderState{
		Blending:         BlendingDefault,
		ColorMask:        true,
		DepthMask:        true,
		DepthFunction:    CompareLess,
		TriangleCulling:  CullBack,
		StencilFunction:  CompareAlways,
		StencilReference: 0,
		StencilMask:      0x1,
		StencilFailOp:    StencilKeep,
		StencilZFailOp:   StencilKeep,
		StencilZPassOp:   StencilKeep,
		ScissorTest:      false,
		ScissorBox:       ScissorBox{0, 0, -1, -1},
	}
}
