package render

import "github.com/Carmen-Shannon/oxy-scene/engine/data"

// Binding maps a shader input or a state to a property name. Resolution searches the
// Source tier (every tier for data.SourceAny), then falls back to Default. A binding
// with neither a match nor a default leaves its pass unresolved unless Optional is set.
type Binding struct {
	PropertyName string
	Source       data.Source
	Default      data.Value
	Optional     bool
}

// Bind returns a binding on name searched in every tier.
func Bind(name string) Binding {
	return Binding{PropertyName: name}
}

// BindFrom returns a binding on name restricted to one tier.
func BindFrom(src data.Source, name string) Binding {
	return Binding{PropertyName: name, Source: src}
}

// WithDefault returns a copy of b that falls back to v.
func (b Binding) WithDefault(v data.Value) Binding {
	b.Default = v
	return b
}

// HasDefault reports whether b carries a default literal.
func (b Binding) HasDefault() bool {
	return !b.Default.IsZero()
}

// resolution is the outcome of resolving one binding against a scope.
type resolution struct {
	property *data.Property
	source   data.Source
}

// value returns the live value, or the binding default when no property matched.
func (r resolution) value(b Binding) data.Value {
	if r.property != nil {
		return r.property.Value()
	}
	return b.Default
}

// resolve looks b up in scope. ok is false only when neither a property nor a default exists.
func (b Binding) resolve(scope data.Scope) (r resolution, ok bool) {
	if p, src, found := scope.ResolveFrom(b.Source, b.PropertyName); found {
		return resolution{property: p, source: src}, true
	}
	if b.HasDefault() {
		return resolution{source: data.SourceDefault}, true
	}
	return resolution{}, false
}
