package scene

import "github.com/Carmen-Shannon/oxy-scene/engine/signal"

// Component is a unit of behavior attached to at most one Node. Implementations embed
// BaseComponent, which provides the target bookkeeping and no-op hooks.
type Component interface {
	// Target returns the node the component is attached to, or nil.
	//
	// Returns:
	//   - Node: the current target or nil
	Target() Node

	// OnAttach runs once the component is in the component list of target. An error undoes
	// the attachment, so an implementation returning one must leave target as it found it.
	//
	// Parameters:
	//   - target: the new target node
	//
	// Returns:
	//   - error: the reason the component cannot live on target
	OnAttach(target Node) error

	// OnDetach runs after the component is detached from target.
	//
	// Parameters:
	//   - target: the former target node
	OnDetach(target Node)

	// OnClone returns a copy of the component for a cloned node, or nil to skip it.
	//
	// Returns:
	//   - Component: the unattached copy or nil
	OnClone() Component

	// TargetAdded fires after the component is attached.
	TargetAdded() *signal.Signal[ComponentEvent]

	// TargetRemoved fires after the component is detached.
	TargetRemoved() *signal.Signal[ComponentEvent]

	base() *BaseComponent
}

// BaseComponent implements the bookkeeping half of Component.
type BaseComponent struct {
	target        Node
	targetAdded   *signal.Signal[ComponentEvent]
	targetRemoved *signal.Signal[ComponentEvent]
}

func (b *BaseComponent) base() *BaseComponent {
	return b
}

// Target returns the node the component is attached to, or nil.
func (b *BaseComponent) Target() Node {
	return b.target
}

// OnAttach is a no-op.
func (b *BaseComponent) OnAttach(Node) error {
	return nil
}

// OnDetach is a no-op.
func (b *BaseComponent) OnDetach(Node) {}

// OnClone returns nil, so components without a clone hook are not copied.
func (b *BaseComponent) OnClone() Component {
	return nil
}

// TargetAdded fires after the component is attached.
func (b *BaseComponent) TargetAdded() *signal.Signal[ComponentEvent] {
	if b.targetAdded == nil {
		b.targetAdded = signal.New[ComponentEvent]()
	}
	return b.targetAdded
}

// TargetRemoved fires after the component is detached.
func (b *BaseComponent) TargetRemoved() *signal.Signal[ComponentEvent] {
	if b.targetRemoved == nil {
		b.targetRemoved = signal.New[ComponentEvent]()
	}
	return b.targetRemoved
}

// ComponentOf returns the first component of n that has type T.
//
// Parameters:
//   - n: the node to search
//
// Returns:
//   - T: the component
//   - bool: false when no component of type T is attached
func ComponentOf[T Component](n Node) (T, bool) {
	for _, c := range n.Components() {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// ComponentsOf returns every component of n that has type T.
func ComponentsOf[T Component](n Node) []T {
	var out []T
	for _, c := range n.Components() {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
