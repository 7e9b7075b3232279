package data

// Source names the tier a binding resolves from.
type Source int

const (
	// SourceAny searches target, then renderer, then root.
	SourceAny Source = iota
	SourceTarget
	SourceRenderer
	SourceRoot
	// SourceDefault marks a value taken from a binding's literal default.
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceTarget:
		return "target"
	case SourceRenderer:
		return "renderer"
	case SourceRoot:
		return "root"
	case SourceDefault:
		return "default"
	}
	return "any"
}

// ParseSource maps "target", "renderer", "root" and "" or "any" to a Source.
func ParseSource(s string) (Source, bool) {
	switch s {
	case "", "any":
		return SourceAny, true
	case "target":
		return SourceTarget, true
	case "renderer":
		return SourceRenderer, true
	case "root":
		return SourceRoot, true
	}
	return SourceAny, false
}

// Scope is the three nested data contexts a draw call resolves against. Any tier may be
// nil, and tiers may alias each other when the surface, renderer and root share a node.
type Scope struct {
	Target   *Container
	Renderer *Container
	Root     *Container
}

// Container returns the container for a single tier.
func (s Scope) Container(src Source) *Container {
	switch src {
	case SourceTarget:
		return s.Target
	case SourceRenderer:
		return s.Renderer
	case SourceRoot:
		return s.Root
	}
	return nil
}

// Resolve looks name up in target, then renderer, then root. The first hit wins.
//
// Parameters:
//   - name: the fully qualified property name
//
// Returns:
//   - *Property: the live property
//   - Source: the tier it was found in
//   - bool: false when no tier defines name
func (s Scope) Resolve(name string) (*Property, Source, bool) {
	return s.ResolveFrom(SourceAny, name)
}

// ResolveFrom looks name up in a single tier, or in every tier when src is SourceAny.
func (s Scope) ResolveFrom(src Source, name string) (*Property, Source, bool) {
	if src != SourceAny {
		if c := s.Container(src); c != nil {
			if p, ok := c.Property(name); ok {
				return p, src, true
			}
		}
		return nil, src, false
	}
	for _, tier := range [...]Source{SourceTarget, SourceRenderer, SourceRoot} {
		if p, found, ok := s.ResolveFrom(tier, name); ok {
			return p, found, true
		}
	}
	return nil, SourceAny, false
}

// Containers returns the distinct non-nil containers of the scope in resolution order.
func (s Scope) Containers() []*Container {
	var out []*Container
	for _, c := range [...]*Container{s.Target, s.Renderer, s.Root} {
		if c == nil {
			continue
		}
		dup := false
		for _, o := range out {
			if o == c {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}
