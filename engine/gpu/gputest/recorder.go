// Package gputest provides a recording gpu.Context for tests.
package gputest

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/wgsl"
)

// Kind identifies a handle family.
type Kind string

const (
	KindVertexBuffer Kind = "vertexBuffer"
	KindIndexBuffer  Kind = "indexBuffer"
	KindTexture      Kind = "texture"
	KindProgram      Kind = "program"
	KindShader       Kind = "shader"
)

// Draw records one DrawTriangles call together with the state bound at that moment.
type Draw struct {
	Program      gpu.Handle
	IndexBuffer  gpu.Handle
	NumTriangles int
	Uniforms     map[int][]float32
	Ints         map[int][]int32
	Textures     map[int]gpu.Handle
	Attributes   map[int]gpu.Handle
	State        gpu.RenderState
}

type shaderObject struct {
	stage    wgsl.Stage
	source   string
	compiled bool
}

type programObject struct {
	shaders []gpu.Handle
	inputs  gpu.ProgramInputs
	linked  bool
}

// Recorder is an in-memory gpu.Context. Handles are never reused, so a use-after-delete
// surfaces as gpu.ErrInvalidHandle. LinkProgram reflects WGSL sources with the wgsl package.
type Recorder struct {
	next     gpu.Handle
	live     map[gpu.Handle]Kind
	created  map[Kind]int
	deleted  map[Kind]int
	shaders  map[gpu.Handle]*shaderObject
	programs map[gpu.Handle]*programObject
	failOn   map[string]error

	current  gpu.Handle
	uniforms map[int][]float32
	ints     map[int][]int32
	textures map[int]gpu.Handle
	attribs  map[int]gpu.Handle
	state    gpu.RenderState

	// Draws holds every draw since the last Reset, in issue order.
	Draws []Draw
	// Calls holds the name of every method invoked, in order.
	Calls []string
	// Frames counts Present calls.
	Frames int
	// Viewport holds the last ConfigureViewport rectangle.
	Viewport [4]int
	// Cleared holds the options of the last Clear call.
	Cleared gpu.ClearOptions
}

var _ gpu.Context = &Recorder{}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	r := &Recorder{
		next:     1,
		live:     make(map[gpu.Handle]Kind),
		created:  make(map[Kind]int),
		deleted:  make(map[Kind]int),
		shaders:  make(map[gpu.Handle]*shaderObject),
		programs: make(map[gpu.Handle]*programObject),
		failOn:   make(map[string]error),
		current:  gpu.InvalidHandle,
	}
	r.resetBindings()
	return r
}

// FailOn makes every later call of method return an error wrapping err (or a generic error
// when err is nil). Method names match the gpu.Context method names.
func (r *Recorder) FailOn(method string, err error) {
	if err == nil {
		err = fmt.Errorf("injected %s failure", method)
	}
	r.failOn[method] = err
}

// ClearFailures removes every injected failure.
func (r *Recorder) ClearFailures() {
	r.failOn = make(map[string]error)
}

// Created returns how many handles of kind were created.
func (r *Recorder) Created(kind Kind) int {
	return r.created[kind]
}

// Deleted returns how many handles of kind were deleted.
func (r *Recorder) Deleted(kind Kind) int {
	return r.deleted[kind]
}

// Live returns the number of handles of kind that are not yet deleted.
func (r *Recorder) Live(kind Kind) int {
	n := 0
	for _, k := range r.live {
		if k == kind {
			n++
		}
	}
	return n
}

// LiveTotal returns the number of handles of every kind that are not yet deleted.
func (r *Recorder) LiveTotal() int {
	return len(r.live)
}

// LiveHandles returns the sorted live handles, handy in failure messages.
func (r *Recorder) LiveHandles() []gpu.Handle {
	out := make([]gpu.Handle, 0, len(r.live))
	for h := range r.live {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Reset forgets recorded draws and calls but keeps live handles.
func (r *Recorder) Reset() {
	r.Draws = nil
	r.Calls = nil
}

func (r *Recorder) call(method string) error {
	r.Calls = append(r.Calls, method)
	if err, ok := r.failOn[method]; ok {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (r *Recorder) create(method string, kind Kind) (gpu.Handle, error) {
	if err := r.call(method); err != nil {
		return gpu.InvalidHandle, err
	}
	h := r.next
	r.next++
	r.live[h] = kind
	r.created[kind]++
	return h, nil
}

func (r *Recorder) check(h gpu.Handle, kind Kind) error {
	if k, ok := r.live[h]; !ok || k != kind {
		return fmt.Errorf("%s %d: %w", kind, h, gpu.ErrInvalidHandle)
	}
	return nil
}

func (r *Recorder) remove(method string, h gpu.Handle, kind Kind) error {
	if err := r.call(method); err != nil {
		return err
	}
	if err := r.check(h, kind); err != nil {
		return err
	}
	delete(r.live, h)
	r.deleted[kind]++
	return nil
}

func (r *Recorder) CreateVertexBuffer(size int) (gpu.Handle, error) {
	return r.create("CreateVertexBuffer", KindVertexBuffer)
}

func (r *Recorder) UploadVertexBufferData(vertexBuffer gpu.Handle, offset int, data []float32) error {
	if err := r.call("UploadVertexBufferData"); err != nil {
		return err
	}
	return r.check(vertexBuffer, KindVertexBuffer)
}

func (r *Recorder) DeleteVertexBuffer(vertexBuffer gpu.Handle) error {
	return r.remove("DeleteVertexBuffer", vertexBuffer, KindVertexBuffer)
}

func (r *Recorder) CreateIndexBuffer(size int) (gpu.Handle, error) {
	return r.create("CreateIndexBuffer", KindIndexBuffer)
}

func (r *Recorder) UploadIndexBufferData(indexBuffer gpu.Handle, offset int, data []uint32) error {
	if err := r.call("UploadIndexBufferData"); err != nil {
		return err
	}
	return r.check(indexBuffer, KindIndexBuffer)
}

func (r *Recorder) DeleteIndexBuffer(indexBuffer gpu.Handle) error {
	return r.remove("DeleteIndexBuffer", indexBuffer, KindIndexBuffer)
}

func (r *Recorder) CreateTexture(width, height int, mipMapping bool) (gpu.Handle, error) {
	return r.create("CreateTexture", KindTexture)
}

func (r *Recorder) UploadTextureData(texture gpu.Handle, width, height, mipLevel int, data []byte) error {
	if err := r.call("UploadTextureData"); err != nil {
		return err
	}
	return r.check(texture, KindTexture)
}

func (r *Recorder) DeleteTexture(texture gpu.Handle) error {
	return r.remove("DeleteTexture", texture, KindTexture)
}

func (r *Recorder) CreateProgram() (gpu.Handle, error) {
	h, err := r.create("CreateProgram", KindProgram)
	if err == nil {
		r.programs[h] = &programObject{}
	}
	return h, err
}

func (r *Recorder) CreateVertexShader() (gpu.Handle, error) {
	h, err := r.create("CreateVertexShader", KindShader)
	if err == nil {
		r.shaders[h] = &shaderObject{stage: wgsl.StageVertex}
	}
	return h, err
}

func (r *Recorder) CreateFragmentShader() (gpu.Handle, error) {
	h, err := r.create("CreateFragmentShader", KindShader)
	if err == nil {
		r.shaders[h] = &shaderObject{stage: wgsl.StageFragment}
	}
	return h, err
}

func (r *Recorder) SetShaderSource(shader gpu.Handle, source string) error {
	if err := r.call("SetShaderSource"); err != nil {
		return err
	}
	if err := r.check(shader, KindShader); err != nil {
		return err
	}
	r.shaders[shader].source = source
	return nil
}

func (r *Recorder) CompileShader(shader gpu.Handle) error {
	if err := r.call("CompileShader"); err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrShaderCompile, err)
	}
	if err := r.check(shader, KindShader); err != nil {
		return err
	}
	s := r.shaders[shader]
	if wgsl.EntryPoint(s.source, s.stage) == "" {
		return fmt.Errorf("shader %d has no entry point: %w", shader, gpu.ErrShaderCompile)
	}
	s.compiled = true
	return nil
}

func (r *Recorder) AttachShader(program, shader gpu.Handle) error {
	if err := r.call("AttachShader"); err != nil {
		return err
	}
	if err := r.check(program, KindProgram); err != nil {
		return err
	}
	if err := r.check(shader, KindShader); err != nil {
		return err
	}
	p := r.programs[program]
	p.shaders = append(p.shaders, shader)
	return nil
}

func (r *Recorder) LinkProgram(program gpu.Handle) (gpu.ProgramInputs, error) {
	if err := r.call("LinkProgram"); err != nil {
		return gpu.ProgramInputs{}, fmt.Errorf("%w: %w", gpu.ErrProgramLink, err)
	}
	if err := r.check(program, KindProgram); err != nil {
		return gpu.ProgramInputs{}, err
	}
	p := r.programs[program]
	var vs, fs string
	for _, h := range p.shaders {
		s, ok := r.shaders[h]
		if !ok || !s.compiled {
			return gpu.ProgramInputs{}, fmt.Errorf("shader %d not compiled: %w", h, gpu.ErrProgramLink)
		}
		if s.stage == wgsl.StageVertex {
			vs = s.source
		} else {
			fs = s.source
		}
	}
	inputs, err := wgsl.Reflect(vs, fs)
	if err != nil {
		return gpu.ProgramInputs{}, fmt.Errorf("%w: %w", gpu.ErrProgramLink, err)
	}
	p.inputs, p.linked = inputs, true
	return inputs, nil
}

func (r *Recorder) DeleteShader(shader gpu.Handle) error {
	if err := r.remove("DeleteShader", shader, KindShader); err != nil {
		return err
	}
	delete(r.shaders, shader)
	return nil
}

func (r *Recorder) DeleteProgram(program gpu.Handle) error {
	if err := r.remove("DeleteProgram", program, KindProgram); err != nil {
		return err
	}
	delete(r.programs, program)
	if r.current == program {
		r.current = gpu.InvalidHandle
	}
	return nil
}

func (r *Recorder) SetProgram(program gpu.Handle) error {
	if err := r.call("SetProgram"); err != nil {
		return err
	}
	if err := r.check(program, KindProgram); err != nil {
		return err
	}
	if !r.programs[program].linked {
		return fmt.Errorf("program %d not linked: %w", program, gpu.ErrInvalidHandle)
	}
	if r.current != program {
		r.resetBindings()
	}
	r.current = program
	return nil
}

func (r *Recorder) SetVertexBufferAt(location int, vertexBuffer gpu.Handle, size, stride, offset int) error {
	if err := r.call("SetVertexBufferAt"); err != nil {
		return err
	}
	if err := r.check(vertexBuffer, KindVertexBuffer); err != nil {
		return err
	}
	r.attribs[location] = vertexBuffer
	return nil
}

func (r *Recorder) SetUniformFloats(location int, values []float32) error {
	if err := r.call("SetUniformFloats"); err != nil {
		return err
	}
	r.uniforms[location] = append([]float32(nil), values...)
	return nil
}

func (r *Recorder) SetUniformInts(location int, values []int32) error {
	if err := r.call("SetUniformInts"); err != nil {
		return err
	}
	r.ints[location] = append([]int32(nil), values...)
	return nil
}

func (r *Recorder) SetTextureAt(slot int, texture gpu.Handle) error {
	if err := r.call("SetTextureAt"); err != nil {
		return err
	}
	if err := r.check(texture, KindTexture); err != nil {
		return err
	}
	r.textures[slot] = texture
	return nil
}

func (r *Recorder) SetRenderState(state gpu.RenderState) error {
	if err := r.call("SetRenderState"); err != nil {
		return err
	}
	r.state = state
	return nil
}

func (r *Recorder) DrawTriangles(indexBuffer gpu.Handle, firstIndex, numTriangles int) error {
	if err := r.call("DrawTriangles"); err != nil {
		return err
	}
	if err := r.check(indexBuffer, KindIndexBuffer); err != nil {
		return err
	}
	if !r.current.Valid() {
		return fmt.Errorf("draw without program: %w", gpu.ErrInvalidHandle)
	}
	r.Draws = append(r.Draws, Draw{
		Program:      r.current,
		IndexBuffer:  indexBuffer,
		NumTriangles: numTriangles,
		Uniforms:     copyMap(r.uniforms),
		Ints:         copyMap(r.ints),
		Textures:     copyMap(r.textures),
		Attributes:   copyMap(r.attribs),
		State:        r.state,
	})
	return nil
}

func (r *Recorder) Clear(options gpu.ClearOptions) error {
	if err := r.call("Clear"); err != nil {
		return err
	}
	r.Cleared = options
	return nil
}

func (r *Recorder) Present() error {
	if err := r.call("Present"); err != nil {
		return err
	}
	r.Frames++
	return nil
}

func (r *Recorder) ConfigureViewport(x, y, width, height int) error {
	if err := r.call("ConfigureViewport"); err != nil {
		return err
	}
	r.Viewport = [4]int{x, y, width, height}
	return nil
}

func (r *Recorder) Dispose() {
	_ = r.call("Dispose")
}

func (r *Recorder) resetBindings() {
	r.uniforms = make(map[int][]float32)
	r.ints = make(map[int][]int32)
	r.textures = make(map[int]gpu.Handle)
	r.attribs = make(map[int]gpu.Handle)
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
