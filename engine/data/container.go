package data

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
)

// Container aggregates providers into a single namespace. Names are unique across the
// providers of one container. The reverse index is kept live by listening to every
// registered provider, so properties set after registration are visible immediately.
type Container struct {
	providers []*Provider
	refs      map[*Provider]int
	index     map[string]*Provider
	slots     map[*Provider]*signal.Slots

	arrays  map[string][]*Provider
	lengths *Provider

	propertyAdded   *signal.Signal[PropertyEvent]
	propertyRemoved *signal.Signal[PropertyEvent]
	changed         map[string]*signal.Signal[PropertyEvent]
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	c := &Container{
		refs:            make(map[*Provider]int),
		index:           make(map[string]*Provider),
		slots:           make(map[*Provider]*signal.Slots),
		arrays:          make(map[string][]*Provider),
		lengths:         NewProvider("arrayLengths"),
		propertyAdded:   signal.New[PropertyEvent](),
		propertyRemoved: signal.New[PropertyEvent](),
		changed:         make(map[string]*signal.Signal[PropertyEvent]),
	}
	c.lengths.attach(c)
	c.listen(c.lengths)
	return c
}

// PropertyAdded fires whenever a name becomes resolvable in the container.
func (c *Container) PropertyAdded() *signal.Signal[PropertyEvent] {
	return c.propertyAdded
}

// PropertyRemoved fires whenever a name stops being resolvable in the container.
func (c *Container) PropertyRemoved() *signal.Signal[PropertyEvent] {
	return c.propertyRemoved
}

// PropertyChanged returns the change signal for one name. The signal is created on first
// use and survives the name being removed and added again.
func (c *Container) PropertyChanged(name string) *signal.Signal[PropertyEvent] {
	s, ok := c.changed[name]
	if !ok {
		s = signal.New[PropertyEvent]()
		c.changed[name] = s
	}
	return s
}

// AddProvider registers every property of p. Adding a provider that is already registered
// only increments its reference count. Array providers receive the next free index of
// their array and bump the <array>.length property.
//
// Parameters:
//   - p: the provider to register
//
// Returns:
//   - error: ErrDuplicatePropertyName when a name collides, ErrArrayProviderShared when an
//     array provider already belongs to another container
func (c *Container) AddProvider(p *Provider) error {
	if p == nil {
		panic("data: nil provider")
	}
	if c.refs[p] > 0 {
		c.refs[p]++
		return nil
	}

	if p.arrayName != "" {
		if len(p.containers) > 0 {
			return fmt.Errorf("add provider %s: %w", p.label, ErrArrayProviderShared)
		}
		lengthName := p.arrayName + ".length"
		if owner, ok := c.index[lengthName]; ok && owner != c.lengths {
			return fmt.Errorf("add provider %s %q: %w", p.label, lengthName, ErrDuplicatePropertyName)
		}
		p.index = len(c.arrays[p.arrayName])
	}

	for _, name := range p.Names() {
		if _, ok := c.index[name]; ok {
			if p.arrayName != "" {
				p.index = -1
			}
			return fmt.Errorf("add provider %s %q: %w", p.label, name, ErrDuplicatePropertyName)
		}
	}

	c.refs[p] = 1
	c.providers = append(c.providers, p)
	p.attach(c)
	c.listen(p)

	names := p.Names()
	for _, name := range names {
		c.index[name] = p
	}
	for _, name := range names {
		c.propertyAdded.Emit(PropertyEvent{Provider: p, Name: name})
	}

	if p.arrayName != "" {
		c.arrays[p.arrayName] = append(c.arrays[p.arrayName], p)
		c.updateLength(p.arrayName)
	}
	return nil
}

// RemoveProvider drops one reference to p and unregisters it once none remain. Removing an
// array provider compacts the indices of the providers after it.
//
// Parameters:
//   - p: the provider to unregister
//
// Returns:
//   - error: ErrProviderNotFound when p is not registered
func (c *Container) RemoveProvider(p *Provider) error {
	if c.refs[p] == 0 {
		return fmt.Errorf("remove provider: %w", ErrProviderNotFound)
	}
	c.refs[p]--
	if c.refs[p] > 0 {
		return nil
	}
	delete(c.refs, p)

	if s, ok := c.slots[p]; ok {
		s.DisconnectAll()
		delete(c.slots, p)
	}
	p.detach(c)
	c.providers = slices.DeleteFunc(c.providers, func(q *Provider) bool { return q == p })
	c.unregisterNames(p)

	if p.arrayName == "" {
		return nil
	}
	members := c.arrays[p.arrayName]
	pos := slices.Index(members, p)
	members = slices.Delete(members, pos, pos+1)
	c.arrays[p.arrayName] = members
	p.index = -1

	for i := pos; i < len(members); i++ {
		q := members[i]
		c.unregisterNames(q)
		q.index = i
		names := q.Names()
		for _, name := range names {
			c.index[name] = q
		}
		for _, name := range names {
			c.propertyAdded.Emit(PropertyEvent{Provider: q, Name: name})
		}
	}
	c.updateLength(p.arrayName)
	return nil
}

// HasProvider reports whether p is registered.
func (c *Container) HasProvider(p *Provider) bool {
	return c.refs[p] > 0
}

// Providers returns the registered providers in registration order.
func (c *Container) Providers() []*Provider {
	return slices.Clone(c.providers)
}

// ArrayProviders returns the members of one array ordered by index.
func (c *Container) ArrayProviders(arrayName string) []*Provider {
	return slices.Clone(c.arrays[arrayName])
}

// Names returns every resolvable name in provider order.
func (c *Container) Names() []string {
	var names []string
	for _, p := range c.providers {
		names = append(names, p.Names()...)
	}
	return append(names, c.lengths.Names()...)
}

// Has reports whether name resolves in the container.
func (c *Container) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Provider returns the provider that defines name.
func (c *Container) Provider(name string) (*Provider, bool) {
	p, ok := c.index[name]
	return p, ok
}

// Property returns the live property for name.
func (c *Container) Property(name string) (*Property, bool) {
	p, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return p.Property(name)
}

// Value returns the value of name or ErrPropertyNotFound.
func (c *Container) Value(name string) (Value, error) {
	p, ok := c.index[name]
	if !ok {
		return Value{}, fmt.Errorf("container %q: %w", name, ErrPropertyNotFound)
	}
	return p.Value(name)
}

// SetValue updates name through its owning provider. Unknown names fail with
// ErrPropertyNotFound; the container never creates properties on its own.
func (c *Container) SetValue(name string, v Value) error {
	p, ok := c.index[name]
	if !ok {
		return fmt.Errorf("container %q: %w", name, ErrPropertyNotFound)
	}
	return p.SetValue(name, v)
}

func (c *Container) listen(p *Provider) {
	s := &signal.Slots{}
	s.Add(
		p.PropertyAdded().Connect(func(e PropertyEvent) {
			c.index[e.Name] = e.Provider
			c.propertyAdded.Emit(e)
		}),
		p.PropertyRemoved().Connect(func(e PropertyEvent) {
			delete(c.index, e.Name)
			c.propertyRemoved.Emit(e)
		}),
		p.PropertyChanged().Connect(func(e PropertyEvent) {
			if s, ok := c.changed[e.Name]; ok {
				s.Emit(e)
			}
		}),
	)
	c.slots[p] = s
}

func (c *Container) unregisterNames(p *Provider) {
	names := p.Names()
	for _, name := range names {
		delete(c.index, name)
	}
	for _, name := range names {
		c.propertyRemoved.Emit(PropertyEvent{Provider: p, Name: name})
	}
}

func (c *Container) updateLength(arrayName string) {
	// lengths is owned by the container and its names are reserved in AddProvider.
	_ = c.lengths.SetValue(arrayName+".length", ValueOf(len(c.arrays[arrayName])))
}
