package backend

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// uniformAlignment is the WebGPU default minUniformBufferOffsetAlignment.
const uniformAlignment = 256

// uniformRing hands out aligned slices of one uniform buffer. Every draw writes the current
// program block at a fresh offset; the ring rewinds when the frame is presented.
type uniformRing struct {
	buffer *wgpu.Buffer
	size   uint64
	head   uint64
}

func newUniformRing(device *wgpu.Device, size uint64) (*uniformRing, error) {
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform Ring",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform ring: %w", err)
	}
	return &uniformRing{buffer: buf, size: size}, nil
}

// reserve returns the offset for a block of n bytes.
func (r *uniformRing) reserve(n uint64) (uint64, error) {
	offset := r.head
	if offset+n > r.size {
		return 0, fmt.Errorf("uniform ring of %d bytes exhausted", r.size)
	}
	r.head = uint64(alignUp(int(offset+n), uniformAlignment))
	return offset, nil
}

func (r *uniformRing) rewind() {
	r.head = 0
}

func (r *uniformRing) release() {
	r.buffer.Release()
}

type vertexBinding struct {
	buffer gpu.Handle
	size   int
	stride int
	offset int
}

// drawState is what the Set* calls accumulate for the next draw.
type drawState struct {
	program    gpu.Handle
	attributes map[int]vertexBinding
	textures   map[int]gpu.Handle
	state      gpu.RenderState
}

func (d *drawState) reset() {
	d.program = gpu.InvalidHandle
	d.resetBindings()
	d.state = gpu.DefaultRenderState()
}

func (d *drawState) resetBindings() {
	d.attributes = make(map[int]vertexBinding)
	d.textures = make(map[int]gpu.Handle)
}

func (d *drawState) dropBuffer(h gpu.Handle) {
	for location, b := range d.attributes {
		if b.buffer == h {
			delete(d.attributes, location)
		}
	}
}

func (d *drawState) dropTexture(h gpu.Handle) {
	for slot, t := range d.textures {
		if t == h {
			delete(d.textures, slot)
		}
	}
}

// frame is the swap chain image being rendered and the pass recording into it.
type frame struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
}

func (f *frame) release() {
	if f.pass != nil {
		f.pass.End()
		f.pass = nil
	}
	if f.encoder != nil {
		f.encoder.Release()
	}
	if f.view != nil {
		f.view.Release()
	}
	if f.texture != nil {
		f.texture.Release()
	}
}

func (c *Context) SetProgram(program gpu.Handle) error {
	p, err := c.handles.program(program)
	if err != nil {
		return err
	}
	if !p.linked {
		return fmt.Errorf("program %d not linked: %w", program, gpu.ErrInvalidHandle)
	}
	if c.draw.program != program {
		c.draw.resetBindings()
	}
	c.draw.program = program
	return nil
}

func (c *Context) SetVertexBufferAt(location int, vertexBuffer gpu.Handle, size, stride, offset int) error {
	if _, err := c.handles.buffer(vertexBuffer, false); err != nil {
		return err
	}
	c.draw.attributes[location] = vertexBinding{buffer: vertexBuffer, size: size, stride: stride, offset: offset}
	return nil
}

func (c *Context) currentProgram() (*programObject, error) {
	if !c.draw.program.Valid() {
		return nil, fmt.Errorf("no current program: %w", gpu.ErrInvalidHandle)
	}
	return c.handles.program(c.draw.program)
}

// writeUniform copies raw little endian words into the program block at the uniform offset.
func (c *Context) writeUniform(location int, words []uint32) error {
	p, err := c.currentProgram()
	if err != nil {
		return err
	}
	u, ok := p.uniforms[location]
	if !ok {
		return fmt.Errorf("program %d has no uniform at location %d", c.draw.program, location)
	}
	n := min(len(words), u.Size/4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(p.block[u.Offset+i*4:], words[i])
	}
	return nil
}

func (c *Context) SetUniformFloats(location int, values []float32) error {
	words := make([]uint32, len(values))
	for i, v := range values {
		words[i] = math.Float32bits(v)
	}
	return c.writeUniform(location, words)
}

func (c *Context) SetUniformInts(location int, values []int32) error {
	words := make([]uint32, len(values))
	for i, v := range values {
		words[i] = uint32(v)
	}
	return c.writeUniform(location, words)
}

func (c *Context) SetTextureAt(slot int, texture gpu.Handle) error {
	if _, err := c.handles.texture(texture); err != nil {
		return err
	}
	c.draw.textures[slot] = texture
	return nil
}

func (c *Context) SetRenderState(state gpu.RenderState) error {
	c.draw.state = state
	return nil
}

// textureGroup returns the bind group for the textures bound to the program slots.
func (c *Context) textureGroup(p *programObject) (*wgpu.BindGroup, error) {
	if len(p.inputs.Textures) == 0 {
		return c.emptyGroup, nil
	}
	handles := make([]gpu.Handle, len(p.inputs.Textures))
	var key strings.Builder
	for i, t := range p.inputs.Textures {
		h, ok := c.draw.textures[t.Slot]
		if !ok {
			return nil, fmt.Errorf("texture %q at slot %d is not bound", t.Name, t.Slot)
		}
		handles[i] = h
		fmt.Fprintf(&key, "%d,", h)
	}
	if tg, ok := p.textureGroups[key.String()]; ok {
		return tg.group, nil
	}

	var entries []wgpu.BindGroupEntry
	for i, t := range p.inputs.Textures {
		tex, err := c.handles.texture(handles[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     uint32(t.Binding),
			TextureView: tex.view,
		})
		if t.SamplerBinding >= 0 {
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: uint32(t.SamplerBinding),
				Sampler: tex.sampler,
			})
		}
	}
	group, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Texture Bind Group",
		Layout:  p.textureLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture bind group: %w", err)
	}
	p.textureGroups[key.String()] = &textureGroup{group: group, textures: handles}
	return group, nil
}

// DrawTriangles records an indexed draw into the current pass. A frame is begun with the
// default clear values when Clear was not called first. Triangles culled on both faces are
// not drawn.
func (c *Context) DrawTriangles(indexBuffer gpu.Handle, firstIndex, numTriangles int) error {
	ib, err := c.handles.buffer(indexBuffer, true)
	if err != nil {
		return err
	}
	p, err := c.currentProgram()
	if err != nil {
		return err
	}
	if firstIndex < 0 || firstIndex+numTriangles*3 > ib.size {
		return fmt.Errorf("draw of %d triangles at %d overflows index buffer %d", numTriangles, firstIndex, indexBuffer)
	}
	if _, drawable := cullMode(c.draw.state.TriangleCulling); !drawable || numTriangles == 0 {
		return nil
	}

	layout, err := buildVertexLayout(p.inputs, c.draw.attributes)
	if err != nil {
		return fmt.Errorf("program %d: %w", c.draw.program, err)
	}
	pl, err := c.pipeline(p, c.draw.state, layout)
	if err != nil {
		return err
	}
	textures, err := c.textureGroup(p)
	if err != nil {
		return err
	}
	if c.frame == nil {
		if err := c.beginFrame(gpu.DefaultClearOptions()); err != nil {
			return err
		}
	}

	pass := c.frame.pass
	pass.SetPipeline(pl)
	if p.uniformGroup != nil {
		offset, err := c.ring.reserve(p.blockSize)
		if err != nil {
			return err
		}
		c.queue.WriteBuffer(c.ring.buffer, offset, p.block)
		pass.SetBindGroup(0, p.uniformGroup, []uint32{uint32(offset)})
	} else {
		pass.SetBindGroup(0, c.emptyGroup, nil)
	}
	pass.SetBindGroup(1, textures, nil)

	for i, slot := range layout.slots {
		vb, err := c.handles.buffer(slot.buffer, false)
		if err != nil {
			return err
		}
		pass.SetVertexBuffer(uint32(i), vb.buffer, 0, wgpu.WholeSize)
	}
	pass.SetIndexBuffer(ib.buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.SetStencilReference(uint32(c.draw.state.StencilReference))
	c.applyScissor(pass)
	pass.DrawIndexed(uint32(numTriangles*3), 1, uint32(firstIndex), 0, 0)
	return nil
}

func (c *Context) applyScissor(pass *wgpu.RenderPassEncoder) {
	x, y, w, h := 0, 0, c.width, c.height
	box := c.draw.state.ScissorBox
	if c.draw.state.ScissorTest && box.Width >= 0 && box.Height >= 0 {
		x, y = min(max(box.X, 0), c.width), min(max(box.Y, 0), c.height)
		w, h = min(box.Width, c.width-x), min(box.Height, c.height-y)
	}
	pass.SetScissorRect(uint32(x), uint32(y), uint32(w), uint32(h))
}

// Clear starts a frame when none is in flight. Inside a frame it ends the current pass and
// begins a new one that clears the targets.
func (c *Context) Clear(options gpu.ClearOptions) error {
	if c.frame == nil {
		return c.beginFrame(options)
	}
	c.frame.pass.End()
	c.frame.pass = c.frame.encoder.BeginRenderPass(c.passDescriptor(options))
	c.applyViewport()
	return nil
}

func (c *Context) beginFrame(options gpu.ClearOptions) error {
	if c.width <= 0 || c.height <= 0 {
		return fmt.Errorf("surface has no size")
	}
	surfaceTexture, err := c.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("create surface view: %w", err)
	}
	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("create command encoder: %w", err)
	}
	c.frame = &frame{texture: surfaceTexture, view: view, encoder: encoder}
	c.frame.pass = encoder.BeginRenderPass(c.passDescriptor(options))
	c.applyViewport()
	return nil
}

// passDescriptor clears every target. When MSAA is on the multisampled texture is drawn to
// and resolved into the swap chain view.
func (c *Context) passDescriptor(options gpu.ClearOptions) *wgpu.RenderPassDescriptor {
	color := wgpu.RenderPassColorAttachment{
		View:    c.frame.view,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(options.Color[0]),
			G: float64(options.Color[1]),
			B: float64(options.Color[2]),
			A: float64(options.Color[3]),
		},
	}
	if c.sampleCount > 1 {
		color.View = c.msaaView
		color.ResolveTarget = c.frame.view
	}
	return &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:              c.depthView,
			DepthLoadOp:       wgpu.LoadOpClear,
			DepthStoreOp:      wgpu.StoreOpStore,
			DepthClearValue:   options.Depth,
			StencilLoadOp:     wgpu.LoadOpClear,
			StencilStoreOp:    wgpu.StoreOpStore,
			StencilClearValue: options.Stencil,
		},
	}
}

func (c *Context) ConfigureViewport(x, y, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("viewport size must be positive, got %dx%d", width, height)
	}
	c.viewport = [4]int{x, y, width, height}
	if c.frame != nil {
		c.applyViewport()
	}
	return nil
}

// applyViewport clamps the configured viewport to the target; an unset viewport covers it.
func (c *Context) applyViewport() {
	x, y, w, h := c.viewport[0], c.viewport[1], c.viewport[2], c.viewport[3]
	if w <= 0 || h <= 0 {
		x, y, w, h = 0, 0, c.width, c.height
	}
	x, y = min(max(x, 0), c.width-1), min(max(y, 0), c.height-1)
	w, h = min(w, c.width-x), min(h, c.height-y)
	c.frame.pass.SetViewport(float32(x), float32(y), float32(w), float32(h), 0, 1)
}

// Present submits the frame and presents the swap chain image. Without a frame in flight
// it does nothing.
func (c *Context) Present() error {
	if c.frame == nil {
		return nil
	}
	f := c.frame
	c.frame = nil
	defer c.ring.rewind()

	f.pass.End()
	f.pass = nil
	commandBuffer, err := f.encoder.Finish(nil)
	if err != nil {
		f.release()
		return fmt.Errorf("finish frame: %w", err)
	}
	c.queue.Submit(commandBuffer)
	commandBuffer.Release()

	c.surface.Present()
	f.release()
	return nil
}
