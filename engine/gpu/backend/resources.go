package backend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/wgsl"
)

func (c *Context) createBuffer(size int, index bool) (gpu.Handle, error) {
	if size <= 0 {
		return gpu.InvalidHandle, fmt.Errorf("buffer size must be positive, got %d", size)
	}
	label, usage := "Vertex Buffer", wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst
	if index {
		label, usage = "Index Buffer", wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst
	}
	buf, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(size * 4),
		Usage: usage,
	})
	if err != nil {
		return gpu.InvalidHandle, fmt.Errorf("create %s: %w", label, err)
	}
	h := c.handles.allocate()
	c.handles.buffers[h] = &bufferObject{buffer: buf, size: size, index: index}
	return h, nil
}

func (c *Context) uploadBuffer(h gpu.Handle, index bool, offset, count int, data []byte) error {
	b, err := c.handles.buffer(h, index)
	if err != nil {
		return err
	}
	if offset < 0 || offset+count > b.size {
		return fmt.Errorf("upload of %d elements at %d overflows buffer %d of %d", count, offset, h, b.size)
	}
	if count == 0 {
		return nil
	}
	c.queue.WriteBuffer(b.buffer, uint64(offset*4), data)
	return nil
}

func (c *Context) deleteBuffer(h gpu.Handle, index bool) error {
	b, err := c.handles.buffer(h, index)
	if err != nil {
		return err
	}
	b.buffer.Release()
	delete(c.handles.buffers, h)
	c.draw.dropBuffer(h)
	return nil
}

func (c *Context) CreateVertexBuffer(size int) (gpu.Handle, error) {
	return c.createBuffer(size, false)
}

func (c *Context) UploadVertexBufferData(vertexBuffer gpu.Handle, offset int, data []float32) error {
	return c.uploadBuffer(vertexBuffer, false, offset, len(data), common.SliceToBytes(data))
}

func (c *Context) DeleteVertexBuffer(vertexBuffer gpu.Handle) error {
	return c.deleteBuffer(vertexBuffer, false)
}

func (c *Context) CreateIndexBuffer(size int) (gpu.Handle, error) {
	return c.createBuffer(size, true)
}

func (c *Context) UploadIndexBufferData(indexBuffer gpu.Handle, offset int, data []uint32) error {
	return c.uploadBuffer(indexBuffer, true, offset, len(data), common.SliceToBytes(data))
}

func (c *Context) DeleteIndexBuffer(indexBuffer gpu.Handle) error {
	return c.deleteBuffer(indexBuffer, true)
}

// CreateTexture allocates an sRGB RGBA8 texture sampled with repeat addressing and linear
// filtering.
func (c *Context) CreateTexture(width, height int, mipMapping bool) (gpu.Handle, error) {
	if width <= 0 || height <= 0 {
		return gpu.InvalidHandle, fmt.Errorf("texture size must be positive, got %dx%d", width, height)
	}
	mips := 1
	if mipMapping {
		mips = mipLevelCount(width, height)
	}
	tex, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: uint32(mips),
		SampleCount:   1,
	})
	if err != nil {
		return gpu.InvalidHandle, fmt.Errorf("create texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return gpu.InvalidHandle, fmt.Errorf("create texture view: %w", err)
	}
	mipmapFilter := wgpu.MipmapFilterModeNearest
	if mipMapping {
		mipmapFilter = wgpu.MipmapFilterModeLinear
	}
	samp, err := c.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Texture Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  mipmapFilter,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		tex.Release()
		return gpu.InvalidHandle, fmt.Errorf("create sampler: %w", err)
	}
	h := c.handles.allocate()
	c.handles.textures[h] = &textureObject{
		texture: tex,
		view:    view,
		sampler: samp,
		width:   width,
		height:  height,
		mips:    mips,
	}
	return h, nil
}

// UploadTextureData writes one mip level. Uploading level 0 of a mip mapped texture also
// fills every smaller level with a box filtered copy.
func (c *Context) UploadTextureData(texture gpu.Handle, width, height, mipLevel int, data []byte) error {
	tex, err := c.handles.texture(texture)
	if err != nil {
		return err
	}
	if mipLevel < 0 || mipLevel >= tex.mips {
		return fmt.Errorf("texture %d has no mip level %d", texture, mipLevel)
	}
	if width != max(1, tex.width>>mipLevel) || height != max(1, tex.height>>mipLevel) {
		return fmt.Errorf("texture %d level %d expects %dx%d, got %dx%d", texture, mipLevel,
			max(1, tex.width>>mipLevel), max(1, tex.height>>mipLevel), width, height)
	}
	if len(data) != width*height*4 {
		return fmt.Errorf("texture %d level %d expects %d bytes, got %d", texture, mipLevel, width*height*4, len(data))
	}

	c.writeMip(tex, mipLevel, width, height, data)
	if mipLevel == 0 {
		for level := 1; level < tex.mips; level++ {
			data, width, height = downsample(data, width, height)
			c.writeMip(tex, level, width, height, data)
		}
	}
	return nil
}

func (c *Context) writeMip(tex *textureObject, level, width, height int, pixels []byte) {
	c.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex.texture,
			MipLevel: uint32(level),
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width * 4),
			RowsPerImage: uint32(height),
		},
		&wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
	)
}

func (c *Context) DeleteTexture(texture gpu.Handle) error {
	tex, err := c.handles.texture(texture)
	if err != nil {
		return err
	}
	for _, p := range c.handles.programs {
		p.dropTextureGroups(texture)
	}
	tex.release()
	delete(c.handles.textures, texture)
	c.draw.dropTexture(texture)
	return nil
}

func (c *Context) createShader(stage wgsl.Stage) (gpu.Handle, error) {
	h := c.handles.allocate()
	c.handles.shaders[h] = &shaderObject{stage: stage}
	return h, nil
}

func (c *Context) CreateVertexShader() (gpu.Handle, error) {
	return c.createShader(wgsl.StageVertex)
}

func (c *Context) CreateFragmentShader() (gpu.Handle, error) {
	return c.createShader(wgsl.StageFragment)
}

func (c *Context) SetShaderSource(shader gpu.Handle, source string) error {
	s, err := c.handles.shader(shader)
	if err != nil {
		return err
	}
	s.source = source
	return nil
}

// CompileShader creates the shader module. The entry point is looked up first so a source
// without one fails before reaching the device.
func (c *Context) CompileShader(shader gpu.Handle) error {
	s, err := c.handles.shader(shader)
	if err != nil {
		return err
	}
	entry := wgsl.EntryPoint(s.source, s.stage)
	if entry == "" {
		return fmt.Errorf("shader %d has no entry point: %w", shader, gpu.ErrShaderCompile)
	}
	module, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: entry,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	})
	if err != nil {
		return fmt.Errorf("shader %d: %w: %w", shader, gpu.ErrShaderCompile, err)
	}
	if s.module != nil {
		if s.users > 0 {
			module.Release()
			return fmt.Errorf("shader %d is used by a linked program", shader)
		}
		s.module.Release()
	}
	s.module, s.entry = module, entry
	return nil
}

func (c *Context) DeleteShader(shader gpu.Handle) error {
	s, err := c.handles.shader(shader)
	if err != nil {
		return err
	}
	delete(c.handles.shaders, shader)
	s.deleted = true
	s.tryRelease()
	return nil
}

func (c *Context) CreateProgram() (gpu.Handle, error) {
	h := c.handles.allocate()
	c.handles.programs[h] = &programObject{}
	return h, nil
}

func (c *Context) AttachShader(program, shader gpu.Handle) error {
	p, err := c.handles.program(program)
	if err != nil {
		return err
	}
	s, err := c.handles.shader(shader)
	if err != nil {
		return err
	}
	p.shaders = append(p.shaders, s)
	return nil
}

// LinkProgram reflects the attached sources and creates the bind group layouts. Group 0
// holds the uniform block bound with a dynamic offset into the uniform ring; group 1 holds
// the textures and their samplers.
func (c *Context) LinkProgram(program gpu.Handle) (gpu.ProgramInputs, error) {
	p, err := c.handles.program(program)
	if err != nil {
		return gpu.ProgramInputs{}, err
	}
	if p.linked {
		return p.inputs, nil
	}
	var vs, fs *shaderObject
	for _, s := range p.shaders {
		if s.module == nil {
			return gpu.ProgramInputs{}, fmt.Errorf("program %d: shader not compiled: %w", program, gpu.ErrProgramLink)
		}
		if s.stage == wgsl.StageVertex {
			vs = s
		} else {
			fs = s
		}
	}
	if vs == nil || fs == nil {
		return gpu.ProgramInputs{}, fmt.Errorf("program %d: needs a vertex and a fragment shader: %w", program, gpu.ErrProgramLink)
	}
	inputs, err := wgsl.Reflect(vs.source, fs.source)
	if err != nil {
		return gpu.ProgramInputs{}, fmt.Errorf("%w: %w", gpu.ErrProgramLink, err)
	}

	p.inputs, p.vertex, p.frag = inputs, vs, fs
	p.uniforms = make(map[int]gpu.UniformInput, len(inputs.Uniforms))
	for _, u := range inputs.Uniforms {
		p.uniforms[u.Location] = u
	}
	p.pipelines = make(map[pipelineKey]*wgpu.RenderPipeline)
	p.textureGroups = make(map[string]*textureGroup)
	vs.users++
	fs.users++
	p.linked = true

	if err := c.createProgramLayouts(p); err != nil {
		p.release()
		return gpu.ProgramInputs{}, fmt.Errorf("%w: %w", gpu.ErrProgramLink, err)
	}
	return inputs, nil
}

func (c *Context) createProgramLayouts(p *programObject) error {
	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	groups := []*wgpu.BindGroupLayout{c.emptyLayout, c.emptyLayout}

	if p.inputs.UniformBlockSize > 0 {
		p.blockSize = uint64(alignUp(p.inputs.UniformBlockSize, 16))
		p.block = make([]byte, p.blockSize)
		layout, err := c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: "Uniform Block Layout",
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: visibility,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   p.blockSize,
				},
			}},
		})
		if err != nil {
			return fmt.Errorf("create uniform layout: %w", err)
		}
		p.uniformLayout = layout
		group, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "Uniform Block",
			Layout: layout,
			Entries: []wgpu.BindGroupEntry{{
				Binding: 0,
				Buffer:  c.ring.buffer,
				Offset:  0,
				Size:    p.blockSize,
			}},
		})
		if err != nil {
			return fmt.Errorf("create uniform bind group: %w", err)
		}
		p.uniformGroup = group
		groups[wgsl.UniformGroup] = layout
	}

	if len(p.inputs.Textures) > 0 {
		var entries []wgpu.BindGroupLayoutEntry
		for _, t := range p.inputs.Textures {
			entries = append(entries, wgpu.BindGroupLayoutEntry{
				Binding:    uint32(t.Binding),
				Visibility: visibility,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			})
			if t.SamplerBinding >= 0 {
				entries = append(entries, wgpu.BindGroupLayoutEntry{
					Binding:    uint32(t.SamplerBinding),
					Visibility: visibility,
					Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
				})
			}
		}
		layout, err := c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   "Texture Layout",
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("create texture layout: %w", err)
		}
		p.textureLayout = layout
		groups[wgsl.TextureGroup] = layout
	}

	layout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Program Layout",
		BindGroupLayouts: groups,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipelineLayout = layout
	return nil
}

func (c *Context) DeleteProgram(program gpu.Handle) error {
	p, err := c.handles.program(program)
	if err != nil {
		return err
	}
	p.release()
	delete(c.handles.programs, program)
	if c.draw.program == program {
		c.draw.program = gpu.InvalidHandle
	}
	return nil
}

func alignUp(value, alignment int) int {
	return (value + alignment - 1) / alignment * alignment
}
