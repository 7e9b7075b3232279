package data

import (
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
)

// Property is one named value of a Provider. The pointer stays stable for as long as the
// property exists, so consumers can hold it and read the current value on demand.
type Property struct {
	name     string
	value    Value
	provider *Provider
}

// Name returns the local name of the property inside its provider.
func (p *Property) Name() string {
	return p.name
}

// Value returns the current value.
func (p *Property) Value() Value {
	return p.value
}

// Provider returns the provider that owns the property.
func (p *Property) Provider() *Provider {
	return p.provider
}

// PropertyEvent is emitted by providers and containers. Name is the fully qualified name,
// including the array prefix of an array provider.
type PropertyEvent struct {
	Provider *Provider
	Name     string
}

// Provider is a named bag of typed properties with change notification. Providers are the
// unit of data ownership: each material, light, transform or camera owns one.
type Provider struct {
	label      string
	properties map[string]*Property
	order      []string

	// arrayName is non-empty for array providers; index is -1 until a container assigns one.
	arrayName string
	index     int

	containers []*Container

	propertyAdded   *signal.Signal[PropertyEvent]
	propertyChanged *signal.Signal[PropertyEvent]
	propertyRemoved *signal.Signal[PropertyEvent]
}

// NewProvider creates an empty provider. The label is only used in logs and errors.
func NewProvider(label string) *Provider {
	return &Provider{
		label:           label,
		properties:      make(map[string]*Property),
		index:           -1,
		propertyAdded:   signal.New[PropertyEvent](),
		propertyChanged: signal.New[PropertyEvent](),
		propertyRemoved: signal.New[PropertyEvent](),
	}
}

// NewArrayProvider creates a provider whose properties are exposed as
// arrayName[index].property once a container assigns it an index.
//
// Parameters:
//   - arrayName: the shared array name, e.g. "pointLights"
//
// Returns:
//   - *Provider: the unindexed array provider
func NewArrayProvider(arrayName string) *Provider {
	if arrayName == "" {
		panic("data: empty array name")
	}
	p := NewProvider(arrayName)
	p.arrayName = arrayName
	return p
}

// Label returns the provider label.
func (p *Provider) Label() string {
	return p.label
}

// ArrayName returns the array name of an array provider, or "".
func (p *Provider) ArrayName() string {
	return p.arrayName
}

// Index returns the array index assigned by a container, or -1.
func (p *Provider) Index() int {
	return p.index
}

// PropertyAdded fires after a property is created.
func (p *Provider) PropertyAdded() *signal.Signal[PropertyEvent] {
	return p.propertyAdded
}

// PropertyChanged fires after an existing property takes a different value, or on Touch.
func (p *Provider) PropertyChanged() *signal.Signal[PropertyEvent] {
	return p.propertyChanged
}

// PropertyRemoved fires after a property is removed.
func (p *Provider) PropertyRemoved() *signal.Signal[PropertyEvent] {
	return p.propertyRemoved
}

// FullName returns the name under which local is exposed to containers.
func (p *Provider) FullName(local string) string {
	if p.arrayName == "" || p.index < 0 {
		return local
	}
	return p.arrayName + "[" + strconv.Itoa(p.index) + "]." + local
}

// localName strips the array prefix from a fully qualified name.
func (p *Provider) localName(name string) string {
	if p.arrayName == "" || p.index < 0 {
		return name
	}
	prefix := p.FullName("")
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):]
	}
	return name
}

// Names returns the fully qualified names of every property in insertion order.
func (p *Provider) Names() []string {
	names := make([]string, len(p.order))
	for i, local := range p.order {
		names[i] = p.FullName(local)
	}
	return names
}

// Len returns the number of properties.
func (p *Provider) Len() int {
	return len(p.order)
}

// Has reports whether the provider defines name (local or fully qualified).
func (p *Provider) Has(name string) bool {
	_, ok := p.properties[p.localName(name)]
	return ok
}

// Property returns the live property for name (local or fully qualified).
func (p *Provider) Property(name string) (*Property, bool) {
	prop, ok := p.properties[p.localName(name)]
	return prop, ok
}

// Value returns the value of name or ErrPropertyNotFound.
func (p *Provider) Value(name string) (Value, error) {
	prop, ok := p.Property(name)
	if !ok {
		return Value{}, fmt.Errorf("%s %q: %w", p.label, name, ErrPropertyNotFound)
	}
	return prop.value, nil
}

// SetValue creates or updates name. Creating fires PropertyAdded; updating to a different
// value fires PropertyChanged. Creating a name that another provider already defines in a
// container holding p fails with ErrDuplicatePropertyName and leaves p unchanged.
//
// Parameters:
//   - name: the local or fully qualified property name
//   - v: the new value
//
// Returns:
//   - error: ErrDuplicatePropertyName on a container collision
func (p *Provider) SetValue(name string, v Value) error {
	local := p.localName(name)
	if prop, ok := p.properties[local]; ok {
		if prop.value == v {
			return nil
		}
		prop.value = v
		p.propertyChanged.Emit(PropertyEvent{Provider: p, Name: p.FullName(local)})
		return nil
	}

	full := p.FullName(local)
	for _, c := range p.containers {
		if owner, taken := c.index[full]; taken && owner != p {
			return fmt.Errorf("%s %q: %w", p.label, full, ErrDuplicatePropertyName)
		}
	}

	p.properties[local] = &Property{name: local, value: v, provider: p}
	p.order = append(p.order, local)
	p.propertyAdded.Emit(PropertyEvent{Provider: p, Name: full})
	return nil
}

// Unset removes name and fires PropertyRemoved.
func (p *Provider) Unset(name string) error {
	local := p.localName(name)
	if _, ok := p.properties[local]; !ok {
		return fmt.Errorf("%s %q: %w", p.label, name, ErrPropertyNotFound)
	}
	delete(p.properties, local)
	for i, n := range p.order {
		if n == local {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.propertyRemoved.Emit(PropertyEvent{Provider: p, Name: p.FullName(local)})
	return nil
}

// Touch fires PropertyChanged for name without modifying it, for values mutated in place
// such as re-uploaded vertex data.
func (p *Provider) Touch(name string) error {
	local := p.localName(name)
	if _, ok := p.properties[local]; !ok {
		return fmt.Errorf("%s %q: %w", p.label, name, ErrPropertyNotFound)
	}
	p.propertyChanged.Emit(PropertyEvent{Provider: p, Name: p.FullName(local)})
	return nil
}

// Clone copies every property into a new unregistered provider of the same kind.
func (p *Provider) Clone() *Provider {
	c := NewProvider(p.label)
	c.arrayName = p.arrayName
	for _, local := range p.order {
		c.properties[local] = &Property{name: local, value: p.properties[local].value, provider: c}
		c.order = append(c.order, local)
	}
	return c
}

func (p *Provider) attach(c *Container) {
	p.containers = append(p.containers, c)
}

func (p *Provider) detach(c *Container) {
	for i, owner := range p.containers {
		if owner == c {
			p.containers = append(p.containers[:i], p.containers[i+1:]...)
			return
		}
	}
}
