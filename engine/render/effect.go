package render

import "slices"

// Effect is an immutable, ordered list of passes. Every pass of an effect produces its
// own draw call per surface.
type Effect struct {
	name   string
	passes []*Pass
}

// NewEffect creates an effect. Panics when no pass is given or a pass is nil.
//
// Parameters:
//   - name: the effect name
//   - passes: the passes in draw order
//
// Returns:
//   - *Effect: the effect
func NewEffect(name string, passes ...*Pass) *Effect {
	if len(passes) == 0 {
		panic("render: NewEffect requires at least one pass")
	}
	for _, p := range passes {
		if p == nil {
			panic("render: NewEffect given a nil pass")
		}
	}
	return &Effect{name: name, passes: slices.Clone(passes)}
}

// Name returns the effect name.
func (e *Effect) Name() string {
	return e.name
}

// Passes returns a copy of the pass list.
func (e *Effect) Passes() []*Pass {
	return slices.Clone(e.passes)
}
