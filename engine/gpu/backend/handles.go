package backend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/wgsl"
)

type bufferObject struct {
	buffer *wgpu.Buffer
	size   int
	index  bool
}

type textureObject struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	width   int
	height  int
	mips    int
}

func (t *textureObject) release() {
	t.sampler.Release()
	t.view.Release()
	t.texture.Release()
}

// shaderObject is released once it is deleted and no linked program still uses its module.
type shaderObject struct {
	stage   wgsl.Stage
	source  string
	module  *wgpu.ShaderModule
	entry   string
	users   int
	deleted bool
}

func (s *shaderObject) unref() {
	s.users--
	s.tryRelease()
}

func (s *shaderObject) tryRelease() {
	if s.deleted && s.users <= 0 && s.module != nil {
		s.module.Release()
		s.module = nil
	}
}

type textureGroup struct {
	group    *wgpu.BindGroup
	textures []gpu.Handle
}

type programObject struct {
	shaders []*shaderObject
	vertex  *shaderObject
	frag    *shaderObject
	linked  bool
	inputs  gpu.ProgramInputs

	uniforms       map[int]gpu.UniformInput
	block          []byte
	blockSize      uint64
	uniformLayout  *wgpu.BindGroupLayout
	uniformGroup   *wgpu.BindGroup
	textureLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipelines      map[pipelineKey]*wgpu.RenderPipeline
	textureGroups  map[string]*textureGroup
}

func (p *programObject) dropTextureGroups(texture gpu.Handle) {
	for key, tg := range p.textureGroups {
		for _, h := range tg.textures {
			if h == texture {
				tg.group.Release()
				delete(p.textureGroups, key)
				break
			}
		}
	}
}

func (p *programObject) release() {
	for _, tg := range p.textureGroups {
		tg.group.Release()
	}
	for _, pl := range p.pipelines {
		pl.Release()
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
	}
	if p.uniformGroup != nil {
		p.uniformGroup.Release()
	}
	if p.uniformLayout != nil {
		p.uniformLayout.Release()
	}
	if p.textureLayout != nil {
		p.textureLayout.Release()
	}
	if p.linked {
		p.vertex.unref()
		p.frag.unref()
	}
	p.textureGroups, p.pipelines = nil, nil
	p.linked = false
}

// handleTable maps handles to backend objects. Handles are never reused.
type handleTable struct {
	next     gpu.Handle
	buffers  map[gpu.Handle]*bufferObject
	textures map[gpu.Handle]*textureObject
	shaders  map[gpu.Handle]*shaderObject
	programs map[gpu.Handle]*programObject
}

func newHandleTable() handleTable {
	return handleTable{
		buffers:  make(map[gpu.Handle]*bufferObject),
		textures: make(map[gpu.Handle]*textureObject),
		shaders:  make(map[gpu.Handle]*shaderObject),
		programs: make(map[gpu.Handle]*programObject),
	}
}

func (t *handleTable) allocate() gpu.Handle {
	h := t.next
	t.next++
	return h
}

func (t *handleTable) buffer(h gpu.Handle, index bool) (*bufferObject, error) {
	b, ok := t.buffers[h]
	if !ok || b.index != index {
		return nil, fmt.Errorf("buffer %d: %w", h, gpu.ErrInvalidHandle)
	}
	return b, nil
}

func (t *handleTable) texture(h gpu.Handle) (*textureObject, error) {
	tex, ok := t.textures[h]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", h, gpu.ErrInvalidHandle)
	}
	return tex, nil
}

func (t *handleTable) shader(h gpu.Handle) (*shaderObject, error) {
	s, ok := t.shaders[h]
	if !ok {
		return nil, fmt.Errorf("shader %d: %w", h, gpu.ErrInvalidHandle)
	}
	return s, nil
}

func (t *handleTable) program(h gpu.Handle) (*programObject, error) {
	p, ok := t.programs[h]
	if !ok {
		return nil, fmt.Errorf("program %d: %w", h, gpu.ErrInvalidHandle)
	}
	return p, nil
}

func (t *handleTable) releaseAll() {
	for _, p := range t.programs {
		p.release()
	}
	for _, s := range t.shaders {
		s.deleted, s.users = true, 0
		s.tryRelease()
	}
	for _, tex := range t.textures {
		tex.release()
	}
	for _, b := range t.buffers {
		b.buffer.Release()
	}
	*t = newHandleTable()
}
