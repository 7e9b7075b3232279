package scene

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
)

// Node is an element of the scene tree. A node owns its children, its components and one
// data container; the parent reference is non-owning. Structural signals bubble: Added and
// Removed fire on every node of the moved subtree and on every ancestor of the parent it
// moved under or out of.
type Node interface {
	// Name returns the node name.
	Name() string

	// SetName sets the node name.
	SetName(name string)

	// Layout returns the node layout mask.
	//
	// Returns:
	//   - Layout: the current mask
	Layout() Layout

	// SetLayout replaces the layout mask and fires LayoutChanged on the node and its
	// ancestors when the value differs.
	//
	// Parameters:
	//   - layout: the new mask
	SetLayout(layout Layout)

	// Parent returns the parent node, or nil for a root.
	Parent() Node

	// Root follows parents up to the node that has none.
	//
	// Returns:
	//   - Node: the root of the tree holding this node
	Root() Node

	// Children returns a copy of the child list.
	Children() []Node

	// AddChild appends child, detaching it from its current parent first.
	//
	// Parameters:
	//   - child: the node to adopt
	//
	// Returns:
	//   - error: ErrCycle when child is this node or one of its ancestors
	AddChild(child Node) error

	// RemoveChild detaches a direct child.
	//
	// Parameters:
	//   - child: the node to detach
	//
	// Returns:
	//   - error: ErrNotChild when child is not a direct child
	RemoveChild(child Node) error

	// RemoveChildren detaches every child.
	RemoveChildren()

	// Contains reports whether n is a direct child.
	Contains(n Node) bool

	// Components returns a copy of the component list.
	Components() []Component

	// AddComponent attaches c to the node and fires ComponentAdded on the node and its ancestors.
	//
	// Parameters:
	//   - c: the component to attach
	//
	// Returns:
	//   - error: ErrAlreadyAttached when c already has a target, or the OnAttach error of c,
	//     in which case c is left detached
	AddComponent(c Component) error

	// RemoveComponent detaches c and fires ComponentRemoved on the node and its ancestors.
	//
	// Parameters:
	//   - c: the component to detach
	//
	// Returns:
	//   - error: ErrComponentNotFound when c is not attached to this node
	RemoveComponent(c Component) error

	// HasComponent reports whether c is attached to this node.
	HasComponent(c Component) bool

	// Data returns the data container owned by the node.
	//
	// Returns:
	//   - *data.Container: the node container
	Data() *data.Container

	// Clone deep-copies the node, its children and every component whose OnClone returns
	// a copy. The clone has no parent.
	//
	// Returns:
	//   - Node: the detached copy
	Clone() Node

	Added() *signal.Signal[NodeEvent]
	Removed() *signal.Signal[NodeEvent]
	ComponentAdded() *signal.Signal[ComponentEvent]
	ComponentRemoved() *signal.Signal[ComponentEvent]
	LayoutChanged() *signal.Signal[LayoutEvent]
}

type node struct {
	name       string
	layout     Layout
	parent     *node
	children   []*node
	components []Component
	container  *data.Container

	added            *signal.Signal[NodeEvent]
	removed          *signal.Signal[NodeEvent]
	componentAdded   *signal.Signal[ComponentEvent]
	componentRemoved *signal.Signal[ComponentEvent]
	layoutChanged    *signal.Signal[LayoutEvent]
}

var _ Node = &node{}

// NewNode creates a detached node with the LayoutDefault mask.
//
// Parameters:
//   - name: the node name
//   - options: functional options applied after defaults
//
// Returns:
//   - Node: the new node
func NewNode(name string, options ...NodeBuilderOption) Node {
	n := &node{
		name:             name,
		layout:           LayoutDefault,
		container:        data.NewContainer(),
		added:            signal.New[NodeEvent](),
		removed:          signal.New[NodeEvent](),
		componentAdded:   signal.New[ComponentEvent](),
		componentRemoved: signal.New[ComponentEvent](),
		layoutChanged:    signal.New[LayoutEvent](),
	}
	for _, option := range options {
		option(n)
	}
	return n
}

func (n *node) Name() string {
	return n.name
}

func (n *node) SetName(name string) {
	n.name = name
}

func (n *node) String() string {
	return fmt.Sprintf("Node(%s)", n.name)
}

func (n *node) Layout() Layout {
	return n.layout
}

func (n *node) SetLayout(layout Layout) {
	if layout == n.layout {
		return
	}
	previous := n.layout
	n.layout = layout
	for a := n; a != nil; a = a.parent {
		a.layoutChanged.Emit(LayoutEvent{Node: a, Target: n, Previous: previous})
	}
}

func (n *node) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Root() Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (n *node) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *node) Contains(other Node) bool {
	c, ok := other.(*node)
	return ok && c.parent == n
}

func (n *node) AddChild(child Node) error {
	c := child.(*node)
	for a := n; a != nil; a = a.parent {
		if a == c {
			return fmt.Errorf("add %s to %s: %w", c.name, n.name, ErrCycle)
		}
	}
	if c.parent == n {
		return nil
	}
	if c.parent != nil {
		if err := c.parent.RemoveChild(c); err != nil {
			return err
		}
	}

	c.parent = n
	n.children = append(n.children, c)
	n.emitStructural(c, n, func(x *node) *signal.Signal[NodeEvent] { return x.added })
	return nil
}

func (n *node) RemoveChild(child Node) error {
	c, ok := child.(*node)
	if !ok || c.parent != n {
		return fmt.Errorf("remove %s from %s: %w", child.Name(), n.name, ErrNotChild)
	}
	n.children = slices.DeleteFunc(n.children, func(x *node) bool { return x == c })
	c.parent = nil
	n.emitStructural(c, n, func(x *node) *signal.Signal[NodeEvent] { return x.removed })
	return nil
}

func (n *node) RemoveChildren() {
	for len(n.children) > 0 {
		_ = n.RemoveChild(n.children[len(n.children)-1])
	}
}

// emitStructural fires on the moved subtree first, then on the parent chain.
func (n *node) emitStructural(target, ancestor *node, sig func(*node) *signal.Signal[NodeEvent]) {
	for _, d := range NewNodeSet(target).Descendants(true, true) {
		x := d.(*node)
		sig(x).Emit(NodeEvent{Node: x, Target: target, Ancestor: ancestor})
	}
	for a := ancestor; a != nil; a = a.parent {
		sig(a).Emit(NodeEvent{Node: a, Target: target, Ancestor: ancestor})
	}
}

func (n *node) Components() []Component {
	return slices.Clone(n.components)
}

func (n *node) HasComponent(c Component) bool {
	return slices.Contains(n.components, c)
}

func (n *node) AddComponent(c Component) error {
	if c == nil {
		panic("scene: nil component")
	}
	b := c.base()
	if b.target != nil {
		return fmt.Errorf("add component to %s: %w", n.name, ErrAlreadyAttached)
	}
	n.components = append(n.components, c)
	b.target = n
	if err := c.OnAttach(n); err != nil {
		if i := slices.Index(n.components, c); i >= 0 {
			n.components = slices.Delete(n.components, i, i+1)
		}
		b.target = nil
		return fmt.Errorf("add component to %s: %w", n.name, err)
	}
	if b.targetAdded != nil {
		b.targetAdded.Emit(ComponentEvent{Node: n, Target: n, Component: c})
	}
	for a := n; a != nil; a = a.parent {
		a.componentAdded.Emit(ComponentEvent{Node: a, Target: n, Component: c})
	}
	return nil
}

func (n *node) RemoveComponent(c Component) error {
	i := slices.Index(n.components, c)
	if i < 0 {
		return fmt.Errorf("remove component from %s: %w", n.name, ErrComponentNotFound)
	}
	n.components = slices.Delete(n.components, i, i+1)
	b := c.base()
	b.target = nil
	c.OnDetach(n)
	if b.targetRemoved != nil {
		b.targetRemoved.Emit(ComponentEvent{Node: n, Target: n, Component: c})
	}
	for a := n; a != nil; a = a.parent {
		a.componentRemoved.Emit(ComponentEvent{Node: a, Target: n, Component: c})
	}
	return nil
}

func (n *node) Data() *data.Container {
	return n.container
}

func (n *node) Clone() Node {
	clone := NewNode(n.name, WithLayout(n.layout)).(*node)
	for _, c := range n.components {
		if cc := c.OnClone(); cc != nil {
			if err := clone.AddComponent(cc); err != nil {
				common.Logger("Node").Error("component not cloned", "node", n.name, "error", err)
			}
		}
	}
	for _, child := range n.children {
		_ = clone.AddChild(child.Clone())
	}
	return clone
}

func (n *node) Added() *signal.Signal[NodeEvent] {
	return n.added
}

func (n *node) Removed() *signal.Signal[NodeEvent] {
	return n.removed
}

func (n *node) ComponentAdded() *signal.Signal[ComponentEvent] {
	return n.componentAdded
}

func (n *node) ComponentRemoved() *signal.Signal[ComponentEvent] {
	return n.componentRemoved
}

func (n *node) LayoutChanged() *signal.Signal[LayoutEvent] {
	return n.layoutChanged
}
