package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
)

type boundAttribute struct {
	input gpu.AttributeInput
	attr  gpu.VertexAttribute
}

type boundUniform struct {
	input   gpu.UniformInput
	binding Binding
	res     resolution
}

type boundTexture struct {
	input   gpu.TextureInput
	binding Binding
	res     resolution
	current *gpu.Texture
}

type boundState struct {
	name    string
	binding Binding
	res     resolution
}

type bound struct {
	attributes []boundAttribute
	uniforms   []boundUniform
	textures   []boundTexture
	states     []boundState
	indices    *gpu.IndexBuffer
}

// DrawCall is one pass joined against a target/renderer/root scope. It holds live property
// references, so uniform and texture value changes are picked up at issue without
// rebuilding. Adding or removing a property it references marks it dirty, and so does
// replacing the value of a vertex attribute or index buffer property, since buffers are
// acquired at build. Update then rebuilds it once, acquiring the new resources before
// releasing the old ones so shared handles survive.
//
// A draw call whose required bindings do not resolve stays unready and holds no GPU
// resources. It keeps watching the missing names and binds once they appear.
type DrawCall struct {
	id     uint32
	pass   *Pass
	scope  data.Scope
	ctx    gpu.Context
	logger *slog.Logger

	resources *gpu.ResourceSet
	bound

	watched     map[string]struct{}
	slots       signal.Slots
	bufferSlots signal.Slots
	dirty       bool
	ready       bool
	disposed    bool
	missing     string
	generation  int

	zSorter     *ZSorter
	zSortNeeded *signal.Signal[*DrawCall]
}

// NewDrawCall creates a dirty draw call. Nothing is acquired until the first Update.
// Panics when pass or ctx is nil.
//
// Parameters:
//   - id: the identifier used as the final sort tie-breaker
//   - pass: the pass to draw
//   - scope: the containers bindings resolve against
//   - ctx: the GPU context resources are acquired on
//   - options: functional options applied after defaults
//
// Returns:
//   - *DrawCall: the unbuilt draw call
func NewDrawCall(id uint32, pass *Pass, scope data.Scope, ctx gpu.Context, options ...DrawCallBuilderOption) *DrawCall {
	if pass == nil {
		panic("render: NewDrawCall requires a non-nil pass")
	}
	if ctx == nil {
		panic("render: NewDrawCall requires a non-nil gpu.Context")
	}
	d := &DrawCall{
		id:          id,
		pass:        pass,
		scope:       scope,
		ctx:         ctx,
		logger:      common.Logger("DrawCall"),
		watched:     make(map[string]struct{}),
		dirty:       true,
		zSortNeeded: signal.New[*DrawCall](),
	}
	cfg := drawCallConfig{triggers: DefaultZSortTriggers()}
	for _, option := range options {
		option(&cfg)
	}

	for _, c := range scope.Containers() {
		d.slots.Add(
			c.PropertyAdded().Connect(d.onStructuralChange),
			c.PropertyRemoved().Connect(d.onStructuralChange),
		)
	}
	d.zSorter = newZSorter(scope, cfg.triggers, func() { d.zSortNeeded.Emit(d) })
	return d
}

// ID returns the draw call identifier.
func (d *DrawCall) ID() uint32 {
	return d.id
}

// Pass returns the pass being drawn.
func (d *DrawCall) Pass() *Pass {
	return d.pass
}

// Scope returns the scope bindings resolve against.
func (d *DrawCall) Scope() data.Scope {
	return d.scope
}

// Ready reports whether the last build bound every required input.
func (d *DrawCall) Ready() bool {
	return d.ready
}

// Dirty reports whether the draw call needs a rebuild: a referenced name was added or removed,
// or a bound buffer property was given a new value, since the last build.
func (d *DrawCall) Dirty() bool {
	return d.dirty
}

// Disposed reports whether Dispose was called.
func (d *DrawCall) Disposed() bool {
	return d.disposed
}

// Missing returns the property name that left the draw call unready, or "".
func (d *DrawCall) Missing() string {
	return d.missing
}

// Generation returns how many times the draw call was built.
func (d *DrawCall) Generation() int {
	return d.generation
}

// ZSorter returns the depth cache of the draw call.
func (d *DrawCall) ZSorter() *ZSorter {
	return d.zSorter
}

// ZSortNeeded fires when a z-sort trigger of the draw call changed.
func (d *DrawCall) ZSortNeeded() *signal.Signal[*DrawCall] {
	return d.zSortNeeded
}

// ProgramHandle returns the program handle, or gpu.InvalidHandle when unready.
func (d *DrawCall) ProgramHandle() gpu.Handle {
	if !d.ready {
		return gpu.InvalidHandle
	}
	return d.pass.Program().Handle()
}

// References reports whether name is read by one of the draw call bindings.
func (d *DrawCall) References(name string) bool {
	_, ok := d.watched[name]
	return ok
}

// States resolves the current states from the live state properties over the pass defaults.
//
// Returns:
//   - States: the states to sort and draw with
func (d *DrawCall) States() States {
	s := d.pass.DefaultStates()
	for _, st := range d.states {
		if err := s.Apply(st.name, st.res.value(st.binding)); err != nil {
			d.logger.Debug("ignoring state", "pass", d.pass.Name(), "error", err)
		}
	}
	return s
}

// Invalidate marks the draw call for a rebuild at the next Update.
func (d *DrawCall) Invalidate() {
	d.dirty = true
}

func (d *DrawCall) onStructuralChange(e data.PropertyEvent) {
	if _, ok := d.watched[e.Name]; ok {
		d.dirty = true
	}
}

// Update rebuilds the draw call when it is dirty.
//
// Returns:
//   - error: a wrapped GPU error; unresolved bindings are not errors
func (d *DrawCall) Update() error {
	if d.disposed {
		return ErrDrawCallDisposed
	}
	if !d.dirty {
		return nil
	}
	return d.Build()
}

// Build binds every input of the pass against the scope and acquires the resources it
// needs. On success the previous resources are released after the new ones are held. On
// failure the draw call is left unready with no resources.
//
// Returns:
//   - error: a wrapped GPU error; unresolved bindings only log at debug level
func (d *DrawCall) Build() error {
	if d.disposed {
		return ErrDrawCallDisposed
	}
	d.dirty = false
	d.generation++
	d.bufferSlots.DisconnectAll()

	set := gpu.NewResourceSet(d.ctx)
	watched := make(map[string]struct{})
	b, err := d.bind(set, watched)
	d.watched = watched

	if err != nil {
		releaseErr := set.ReleaseAll()
		d.releaseCurrent()
		if IsBindingError(err) {
			d.logger.Debug("pass skipped", "pass", d.pass.Name(), "id", d.id, "reason", err)
			return releaseErr
		}
		return errors.Join(fmt.Errorf("build draw call %d (%s): %w", d.id, d.pass.Name(), err), releaseErr)
	}

	old := d.resources
	d.resources = set
	d.bound = b
	d.ready = true
	d.missing = ""
	d.watchBuffers()
	if old != nil {
		if err := old.ReleaseAll(); err != nil {
			return fmt.Errorf("release previous resources of draw call %d: %w", d.id, err)
		}
	}
	return nil
}

// watchBuffers marks the draw call dirty when the value of a bound vertex attribute or
// index buffer property is replaced.
func (d *DrawCall) watchBuffers() {
	names := make([]string, 0, len(d.attributes)+1)
	for _, a := range d.attributes {
		names = append(names, d.pass.AttributeBinding(a.input.Name).PropertyName)
	}
	names = append(names, d.pass.IndicesBinding().PropertyName)

	onChanged := func(data.PropertyEvent) { d.dirty = true }
	for _, c := range d.scope.Containers() {
		for _, name := range names {
			d.bufferSlots.Add(c.PropertyChanged(name).Connect(onChanged))
		}
	}
}

func (d *DrawCall) releaseCurrent() {
	if d.resources != nil {
		if err := d.resources.ReleaseAll(); err != nil {
			d.logger.Error("failed to release draw call resources", "id", d.id, "error", err)
		}
	}
	d.resources = nil
	d.bound = bound{}
	d.ready = false
}

func (d *DrawCall) unresolved(b Binding) error {
	d.missing = b.PropertyName
	return fmt.Errorf("%q: %w", b.PropertyName, ErrUnresolvedBinding)
}

func (d *DrawCall) bind(set *gpu.ResourceSet, watched map[string]struct{}) (bound, error) {
	var out bound
	program := d.pass.Program()
	if err := set.Acquire(program); err != nil {
		return out, fmt.Errorf("acquire program %s: %w", program.Name(), err)
	}
	inputs := program.Inputs()

	for _, in := range inputs.Attributes {
		b := d.pass.AttributeBinding(in.Name)
		watched[b.PropertyName] = struct{}{}
		r, ok := b.resolve(d.scope)
		if !ok {
			return out, d.unresolved(b)
		}
		attr, isAttr := data.As[gpu.VertexAttribute](r.value(b))
		if !isAttr || attr.Buffer == nil {
			return out, fmt.Errorf("attribute %s from %q: %w", in.Name, b.PropertyName, ErrBindingType)
		}
		if attr.Size != in.Size {
			return out, fmt.Errorf("attribute %s has %d components, shader reads %d: %w", in.Name, attr.Size, in.Size, ErrBindingType)
		}
		if err := set.Acquire(attr.Buffer); err != nil {
			return out, fmt.Errorf("acquire vertex buffer for %s: %w", in.Name, err)
		}
		out.attributes = append(out.attributes, boundAttribute{input: in, attr: attr})
	}

	ib := d.pass.IndicesBinding()
	watched[ib.PropertyName] = struct{}{}
	r, ok := ib.resolve(d.scope)
	if !ok {
		return out, d.unresolved(ib)
	}
	indices, isIndices := data.As[*gpu.IndexBuffer](r.value(ib))
	if !isIndices || indices == nil {
		return out, fmt.Errorf("indices from %q: %w", ib.PropertyName, ErrBindingType)
	}
	if err := set.Acquire(indices); err != nil {
		return out, fmt.Errorf("acquire index buffer: %w", err)
	}
	out.indices = indices

	for _, in := range inputs.Uniforms {
		b := d.pass.UniformBinding(in.Name)
		watched[b.PropertyName] = struct{}{}
		r, ok := b.resolve(d.scope)
		if !ok {
			if b.Optional {
				continue
			}
			return out, d.unresolved(b)
		}
		if _, err := uniformData(in, r.value(b)); err != nil {
			return out, fmt.Errorf("uniform %s from %q: %w", in.Name, b.PropertyName, err)
		}
		out.uniforms = append(out.uniforms, boundUniform{input: in, binding: b, res: r})
	}

	for _, in := range inputs.Textures {
		b := d.pass.UniformBinding(in.Name)
		watched[b.PropertyName] = struct{}{}
		r, ok := b.resolve(d.scope)
		if !ok {
			if b.Optional {
				continue
			}
			return out, d.unresolved(b)
		}
		tex, isTex := data.As[*gpu.Texture](r.value(b))
		if !isTex || tex == nil {
			return out, fmt.Errorf("texture %s from %q: %w", in.Name, b.PropertyName, ErrBindingType)
		}
		if err := set.Acquire(tex); err != nil {
			return out, fmt.Errorf("acquire texture %s: %w", in.Name, err)
		}
		out.textures = append(out.textures, boundTexture{input: in, binding: b, res: r, current: tex})
	}

	stateBindings := d.pass.states
	for _, name := range StateNames {
		b, declared := stateBindings[name]
		if !declared {
			continue
		}
		watched[b.PropertyName] = struct{}{}
		r, ok := b.resolve(d.scope)
		if !ok {
			continue
		}
		scratch := DefaultStates()
		if err := scratch.Apply(name, r.value(b)); err != nil {
			return out, fmt.Errorf("%w: %w", ErrBindingType, err)
		}
		out.states = append(out.states, boundState{name: name, binding: b, res: r})
	}
	return out, nil
}

// uniformData flattens v for upload to in. Integer inputs accept int and bool values,
// float inputs accept float, vector and matrix values of the same component count.
func uniformData(in gpu.UniformInput, v data.Value) (any, error) {
	want := in.Type.Components()
	if in.Type.IsInt() {
		ints, ok := v.Ints()
		if !ok || len(ints) != want {
			return nil, fmt.Errorf("%s cannot feed %d ints: %w", v.Kind(), want, ErrBindingType)
		}
		return ints, nil
	}
	floats, ok := v.Floats()
	if !ok || len(floats) != want {
		return nil, fmt.Errorf("%s cannot feed %d floats: %w", v.Kind(), want, ErrBindingType)
	}
	return floats, nil
}

// Issue binds the program, buffers, uniforms, textures and states on the context and draws.
// Uniform values are read from the live properties. A texture uniform whose value changed
// since the build is swapped here.
//
// Returns:
//   - error: ErrDrawCallNotReady when unready, or the first context error
func (d *DrawCall) Issue() error {
	if d.disposed {
		return ErrDrawCallDisposed
	}
	if !d.ready {
		return ErrDrawCallNotReady
	}
	ctx := d.ctx
	if err := ctx.SetProgram(d.pass.Program().Handle()); err != nil {
		return fmt.Errorf("set program: %w", err)
	}
	for _, a := range d.attributes {
		if err := ctx.SetVertexBufferAt(a.input.Location, a.attr.Buffer.Handle(), a.attr.Size, a.attr.Stride(), a.attr.Offset); err != nil {
			return fmt.Errorf("set vertex buffer %s: %w", a.input.Name, err)
		}
	}
	for _, u := range d.uniforms {
		values, err := uniformData(u.input, u.res.value(u.binding))
		if err != nil {
			return fmt.Errorf("uniform %s: %w", u.input.Name, err)
		}
		switch v := values.(type) {
		case []int32:
			err = ctx.SetUniformInts(u.input.Location, v)
		case []float32:
			err = ctx.SetUniformFloats(u.input.Location, v)
		}
		if err != nil {
			return fmt.Errorf("set uniform %s: %w", u.input.Name, err)
		}
	}
	for i := range d.textures {
		t := &d.textures[i]
		if err := d.swapTexture(t); err != nil {
			return err
		}
		if err := ctx.SetTextureAt(t.input.Slot, t.current.Handle()); err != nil {
			return fmt.Errorf("set texture %s: %w", t.input.Name, err)
		}
	}
	if err := ctx.SetRenderState(d.States().RenderState); err != nil {
		return fmt.Errorf("set render state: %w", err)
	}
	if err := ctx.DrawTriangles(d.indices.Handle(), 0, d.indices.NumTriangles()); err != nil {
		return fmt.Errorf("draw triangles: %w", err)
	}
	return nil
}

func (d *DrawCall) swapTexture(t *boundTexture) error {
	next, ok := data.As[*gpu.Texture](t.res.value(t.binding))
	if !ok || next == nil || next == t.current {
		return nil
	}
	if err := d.resources.Acquire(next); err != nil {
		return fmt.Errorf("acquire texture %s: %w", t.input.Name, err)
	}
	if err := d.resources.Release(t.current); err != nil {
		return fmt.Errorf("release texture %s: %w", t.input.Name, err)
	}
	t.current = next
	return nil
}

// Dispose unsubscribes the draw call and releases every resource it holds.
//
// Returns:
//   - error: the joined release errors, if any
func (d *DrawCall) Dispose() error {
	if d.disposed {
		return nil
	}
	d.disposed = true
	d.slots.DisconnectAll()
	d.bufferSlots.DisconnectAll()
	d.zSorter.dispose()
	d.zSortNeeded.DisconnectAll()

	var err error
	if d.resources != nil {
		err = d.resources.ReleaseAll()
	}
	d.resources = nil
	d.bound = bound{}
	d.ready = false
	return err
}
