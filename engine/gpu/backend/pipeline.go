package backend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// pipelineKey identifies one render pipeline of a program. Scissor and stencil reference are
// dynamic pass state and are zeroed out of the key.
type pipelineKey struct {
	state  gpu.RenderState
	layout string
}

func newPipelineKey(state gpu.RenderState, layout vertexLayout) pipelineKey {
	state.ScissorTest = false
	state.ScissorBox = gpu.ScissorBox{}
	state.StencilReference = 0
	return pipelineKey{state: state, layout: layout.key}
}

// vertexSlot is one bound vertex buffer and the attributes read from it.
type vertexSlot struct {
	buffer     gpu.Handle
	stride     int
	attributes []wgpu.VertexAttribute
}

type vertexLayout struct {
	slots []vertexSlot
	key   string
}

// buildVertexLayout groups the attributes a program reads by the buffer they were bound to.
// Every attribute of the program must be bound.
func buildVertexLayout(inputs gpu.ProgramInputs, bindings map[int]vertexBinding) (vertexLayout, error) {
	attrs := append([]gpu.AttributeInput(nil), inputs.Attributes...)
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Location < attrs[j].Location })

	var layout vertexLayout
	slotOf := make(map[gpu.Handle]int)
	var key strings.Builder
	for _, a := range attrs {
		b, ok := bindings[a.Location]
		if !ok {
			return vertexLayout{}, fmt.Errorf("attribute %q at location %d is not bound", a.Name, a.Location)
		}
		format, err := vertexFormat(b.size)
		if err != nil {
			return vertexLayout{}, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		slot, ok := slotOf[b.buffer]
		if !ok {
			slot = len(layout.slots)
			slotOf[b.buffer] = slot
			layout.slots = append(layout.slots, vertexSlot{buffer: b.buffer, stride: b.stride})
		}
		if layout.slots[slot].stride != b.stride {
			return vertexLayout{}, fmt.Errorf("attribute %q: buffer %d bound with strides %d and %d",
				a.Name, b.buffer, layout.slots[slot].stride, b.stride)
		}
		layout.slots[slot].attributes = append(layout.slots[slot].attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         uint64(b.offset * 4),
			ShaderLocation: uint32(a.Location),
		})
		fmt.Fprintf(&key, "%d:%d:%d:%d:%d;", slot, a.Location, b.size, b.offset, b.stride)
	}
	layout.key = key.String()
	return layout, nil
}

func (l vertexLayout) buffers() []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, len(l.slots))
	for i, s := range l.slots {
		out[i] = wgpu.VertexBufferLayout{
			ArrayStride: uint64(s.stride * 4),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  s.attributes,
		}
	}
	return out
}

// pipeline returns the cached render pipeline for the current state, creating it on first use.
func (c *Context) pipeline(p *programObject, state gpu.RenderState, layout vertexLayout) (*wgpu.RenderPipeline, error) {
	key := newPipelineKey(state, layout)
	if pl, ok := p.pipelines[key]; ok {
		return pl, nil
	}

	cull, _ := cullMode(state.TriangleCulling)
	stencil := wgpu.StencilFaceState{
		Compare:     compareFunction(state.StencilFunction),
		FailOp:      stencilOperation(state.StencilFailOp),
		DepthFailOp: stencilOperation(state.StencilZFailOp),
		PassOp:      stencilOperation(state.StencilZPassOp),
	}
	target := wgpu.ColorTargetState{
		Format:    c.surfaceFormat,
		Blend:     blendState(state.Blending),
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if !state.ColorMask {
		target.WriteMask = wgpu.ColorWriteMaskNone
	}

	pl, err := c.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.vertex.entry + "/" + p.frag.entry,
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.vertex.module,
			EntryPoint: p.vertex.entry,
			Buffers:    layout.buffers(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.frag.module,
			EntryPoint: p.frag.entry,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cull,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(c.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: state.DepthMask,
			DepthCompare:      compareFunction(state.DepthFunction),
			StencilFront:      stencil,
			StencilBack:       stencil,
			StencilReadMask:   state.StencilMask,
			StencilWriteMask:  state.StencilMask,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipelines[key] = pl
	return pl, nil
}

func vertexFormat(size int) (wgpu.VertexFormat, error) {
	switch size {
	case 1:
		return wgpu.VertexFormatFloat32, nil
	case 2:
		return wgpu.VertexFormatFloat32x2, nil
	case 3:
		return wgpu.VertexFormatFloat32x3, nil
	case 4:
		return wgpu.VertexFormatFloat32x4, nil
	}
	return 0, fmt.Errorf("unsupported attribute size %d", size)
}

// blendState returns nil for the opaque mode so the target writes unblended.
func blendState(mode gpu.BlendingMode) *wgpu.BlendState {
	if mode.Opaque() {
		return nil
	}
	component := wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: blendFactor(mode.Source),
		DstFactor: blendFactor(mode.Destination),
	}
	return &wgpu.BlendState{Color: component, Alpha: component}
}

func blendFactor(f gpu.BlendFactor) wgpu.BlendFactor {
	switch f {
	case gpu.BlendZero:
		return wgpu.BlendFactorZero
	case gpu.BlendSrcColor:
		return wgpu.BlendFactorSrc
	case gpu.BlendOneMinusSrcColor:
		return wgpu.BlendFactorOneMinusSrc
	case gpu.BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case gpu.BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case gpu.BlendDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case gpu.BlendOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	case gpu.BlendDstColor:
		return wgpu.BlendFactorDst
	case gpu.BlendOneMinusDstColor:
		return wgpu.BlendFactorOneMinusDst
	default:
		return wgpu.BlendFactorOne
	}
}

func compareFunction(m gpu.CompareMode) wgpu.CompareFunction {
	switch m {
	case gpu.CompareNever:
		return wgpu.CompareFunctionNever
	case gpu.CompareLess:
		return wgpu.CompareFunctionLess
	case gpu.CompareEqual:
		return wgpu.CompareFunctionEqual
	case gpu.CompareLessEqual:
		return wgpu.CompareFunctionLessEqual
	case gpu.CompareGreater:
		return wgpu.CompareFunctionGreater
	case gpu.CompareNotEqual:
		return wgpu.CompareFunctionNotEqual
	case gpu.CompareGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	default:
		return wgpu.CompareFunctionAlways
	}
}

// cullMode maps the triangle culling to a pipeline cull mode. It reports false for CullBoth,
// which WebGPU cannot express; such draws are skipped.
func cullMode(c gpu.TriangleCulling) (wgpu.CullMode, bool) {
	switch c {
	case gpu.CullFront:
		return wgpu.CullModeFront, true
	case gpu.CullBack:
		return wgpu.CullModeBack, true
	case gpu.CullBoth:
		return wgpu.CullModeNone, false
	default:
		return wgpu.CullModeNone, true
	}
}

func stencilOperation(op gpu.StencilOperation) wgpu.StencilOperation {
	switch op {
	case gpu.StencilZero:
		return wgpu.StencilOperationZero
	case gpu.StencilReplace:
		return wgpu.StencilOperationReplace
	case gpu.StencilIncrement:
		return wgpu.StencilOperationIncrementClamp
	case gpu.StencilIncrementWrap:
		return wgpu.StencilOperationIncrementWrap
	case gpu.StencilDecrement:
		return wgpu.StencilOperationDecrementClamp
	case gpu.StencilDecrementWrap:
		return wgpu.StencilOperationDecrementWrap
	case gpu.StencilInvert:
		return wgpu.StencilOperationInvert
	default:
		return wgpu.StencilOperationKeep
	}
}

// mipLevelCount returns the length of a full mip chain down to 1x1.
func mipLevelCount(width, height int) int {
	levels := 1
	for size := max(width, height); size > 1; size >>= 1 {
		levels++
	}
	return levels
}

// downsample halves an RGBA8 image with a 2x2 box filter. Odd edges reuse the last texel.
func downsample(pixels []byte, width, height int) ([]byte, int, int) {
	w, h := max(1, width/2), max(1, height/2)
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		y0, y1 := min(2*y, height-1), min(2*y+1, height-1)
		for x := 0; x < w; x++ {
			x0, x1 := min(2*x, width-1), min(2*x+1, width-1)
			for ch := 0; ch < 4; ch++ {
				sum := int(pixels[(y0*width+x0)*4+ch]) +
					int(pixels[(y0*width+x1)*4+ch]) +
					int(pixels[(y1*width+x0)*4+ch]) +
					int(pixels[(y1*width+x1)*4+ch])
				out[(y*w+x)*4+ch] = byte((sum + 2) / 4)
			}
		}
	}
	return out, w, h
}
