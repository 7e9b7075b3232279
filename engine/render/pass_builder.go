package render

// PassBuilderOption is a functional option for configuring a Pass.
type PassBuilderOption func(p *Pass)

// WithAttributeBinding binds a vertex input.
//
// Parameters:
//   - input: the shader attribute name
//   - b: the binding
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithAttributeBinding(input string, b Binding) PassBuilderOption {
	return func(p *Pass) {
		p.attributes[input] = b
	}
}

// WithUniformBinding binds a uniform block member or a texture.
//
// Parameters:
//   - input: the shader uniform or texture name
//   - b: the binding
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithUniformBinding(input string, b Binding) PassBuilderOption {
	return func(p *Pass) {
		p.uniforms[input] = b
	}
}

// WithStateBinding binds one of StateNames.
//
// Parameters:
//   - state: the state name
//   - b: the binding
//
// Returns:
//   - PassBuilderOption: option function to apply
func WithStateBinding(state string, b Binding) PassBuilderOption {
	return func(p *Pass) {
		p.states[state] = b
	}
}

// WithIndicesBinding replaces the default index buffer binding.
func WithIndicesBinding(b Binding) PassBuilderOption {
	return func(p *Pass) {
		p.indices = b
	}
}

// WithDefaultStates sets the states used where no state binding resolves.
func WithDefaultStates(s States) PassBuilderOption {
	return func(p *Pass) {
		p.defaultStates = s
	}
}
