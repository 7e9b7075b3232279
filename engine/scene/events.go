package scene

// NodeEvent is emitted by Added and Removed. Node is the node the signal belongs to,
// Target the node that was added or removed, and Ancestor the parent it was added to or
// removed from.
type NodeEvent struct {
	Node     Node
	Target   Node
	Ancestor Node
}

// ComponentEvent is emitted by ComponentAdded, ComponentRemoved and the component-side
// TargetAdded and TargetRemoved signals. Node is the node the signal belongs to and Target
// the node holding the component.
type ComponentEvent struct {
	Node      Node
	Target    Node
	Component Component
}

// LayoutEvent is emitted by LayoutChanged on the changed node and its ancestors.
type LayoutEvent struct {
	Node     Node
	Target   Node
	Previous Layout
}
