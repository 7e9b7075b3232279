package scene

// NodeSet is an ordered list of distinct nodes with structural queries. Every query
// returns a new set and never modifies the receiver.
type NodeSet []Node

// NewNodeSet builds a set from nodes, dropping duplicates and nils.
func NewNodeSet(nodes ...Node) NodeSet {
	s := make(NodeSet, 0, len(nodes))
	seen := make(map[Node]struct{}, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		s = append(s, n)
	}
	return s
}

// Descendants walks the subtree of every node in the set.
//
// Parameters:
//   - andSelf: include the starting nodes
//   - depthFirst: pre-order depth-first when true, breadth-first otherwise
//
// Returns:
//   - NodeSet: the visited nodes, each at most once
func (s NodeSet) Descendants(andSelf, depthFirst bool) NodeSet {
	var out []Node
	for _, start := range s {
		var queue []Node
		if andSelf {
			queue = []Node{start}
		} else {
			queue = start.Children()
		}
		for len(queue) > 0 {
			var n Node
			if depthFirst {
				n = queue[0]
				queue = append(n.Children(), queue[1:]...)
			} else {
				n, queue = queue[0], queue[1:]
				queue = append(queue, n.Children()...)
			}
			out = append(out, n)
		}
	}
	return NewNodeSet(out...)
}

// Ancestors walks up from every node in the set, nearest parent first.
//
// Parameters:
//   - andSelf: include the starting nodes
//
// Returns:
//   - NodeSet: the ancestors, each at most once
func (s NodeSet) Ancestors(andSelf bool) NodeSet {
	var out []Node
	for _, n := range s {
		if andSelf {
			out = append(out, n)
		}
		for p := n.Parent(); p != nil; p = p.Parent() {
			out = append(out, p)
		}
	}
	return NewNodeSet(out...)
}

// Children returns the direct children of every node in the set.
func (s NodeSet) Children(andSelf bool) NodeSet {
	var out []Node
	for _, n := range s {
		if andSelf {
			out = append(out, n)
		}
		out = append(out, n.Children()...)
	}
	return NewNodeSet(out...)
}

// Roots returns the root of every node in the set.
func (s NodeSet) Roots() NodeSet {
	out := make([]Node, len(s))
	for i, n := range s {
		out[i] = n.Root()
	}
	return NewNodeSet(out...)
}

// Where keeps the nodes for which pred returns true.
func (s NodeSet) Where(pred func(Node) bool) NodeSet {
	var out NodeSet
	for _, n := range s {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// Contains reports whether n is in the set.
func (s NodeSet) Contains(n Node) bool {
	for _, x := range s {
		if x == n {
			return true
		}
	}
	return false
}

// Components collects every component of type T held by the nodes in the set.
func Components[T Component](s NodeSet) []T {
	var out []T
	for _, n := range s {
		out = append(out, ComponentsOf[T](n)...)
	}
	return out
}
