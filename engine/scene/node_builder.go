package scene

import "github.com/Carmen-Shannon/oxy-scene/common"

// NodeBuilderOption is a functional option for configuring a Node.
type NodeBuilderOption func(n *node)

// WithLayout sets the initial layout mask without firing LayoutChanged.
//
// Parameters:
//   - layout: the layout mask
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithLayout(layout Layout) NodeBuilderOption {
	return func(n *node) {
		n.layout = layout
	}
}

// WithComponents attaches components at construction. Components that fail to attach are
// skipped and logged; call AddComponent directly to handle the error.
//
// Parameters:
//   - components: the components to attach
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithComponents(components ...Component) NodeBuilderOption {
	return func(n *node) {
		for _, c := range components {
			if err := n.AddComponent(c); err != nil {
				common.Logger("Node").Error("component skipped", "node", n.name, "error", err)
			}
		}
	}
}

// WithChildren adopts children at construction.
//
// Parameters:
//   - children: the nodes to add as children
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		for _, c := range children {
			_ = n.AddChild(c)
		}
	}
}
