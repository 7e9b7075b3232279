package render

import (
	"maps"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// IndicesProperty is the default property name of the index buffer a pass draws.
const IndicesProperty = "indices"

// Pass is one program plus the bindings that feed it. A pass is immutable once built.
// Shader inputs without an explicit binding bind to the property of the same name.
type Pass struct {
	name          string
	program       *gpu.Program
	attributes    map[string]Binding
	uniforms      map[string]Binding
	states        map[string]Binding
	indices       Binding
	defaultStates States
}

// NewPass creates a pass drawing with program. Panics when program is nil.
//
// Parameters:
//   - name: the pass name, used in logs
//   - program: the program the pass draws with
//   - options: functional options adding bindings and default states
//
// Returns:
//   - *Pass: the pass
func NewPass(name string, program *gpu.Program, options ...PassBuilderOption) *Pass {
	if program == nil {
		panic("render: NewPass requires a non-nil program")
	}
	p := &Pass{
		name:          name,
		program:       program,
		attributes:    make(map[string]Binding),
		uniforms:      make(map[string]Binding),
		states:        make(map[string]Binding),
		indices:       Bind(IndicesProperty),
		defaultStates: DefaultStates(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Name returns the pass name.
func (p *Pass) Name() string {
	return p.name
}

// Program returns the pass program.
func (p *Pass) Program() *gpu.Program {
	return p.program
}

// AttributeBinding returns the binding of a vertex input. Inputs without an explicit
// binding bind to the property of the same name.
func (p *Pass) AttributeBinding(input string) Binding {
	if b, ok := p.attributes[input]; ok {
		return b
	}
	return Bind(input)
}

// UniformBinding returns the binding of a uniform or texture input.
func (p *Pass) UniformBinding(input string) Binding {
	if b, ok := p.uniforms[input]; ok {
		return b
	}
	return Bind(input)
}

// StateBindings returns a copy of the state bindings keyed by state name.
func (p *Pass) StateBindings() map[string]Binding {
	return maps.Clone(p.states)
}

// IndicesBinding returns the binding of the index buffer.
func (p *Pass) IndicesBinding() Binding {
	return p.indices
}

// DefaultStates returns the states used where no state binding resolves.
func (p *Pass) DefaultStates() States {
	return p.defaultStates
}
