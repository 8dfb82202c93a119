package profile

import (
	"slices"
	"strings"
)

// RootName is the name of the synthetic root of parsed profiles.
const RootName = "all"

// Node is one call site in the tree.
type Node struct {
	// Name is the frame name with any kind annotation stripped.
	Name string
	// Kind is how the frame was executed, when the profiler reported it.
	Kind Kind
	// Value is the inclusive weight: the node's own weight plus the weight
	// of all its descendants.
	Value float64
	// Self is the weight of samples ending in this node.
	Self     float64
	Children []*Node
}

// NewRoot returns an empty root node.
func NewRoot(name string) *Node {
	if name == "" {
		name = RootName
	}
	return &Node{Name: name}
}

// Child returns the child called name with the given kind, creating it at
// the end of the children when missing.
func (n *Node) Child(name string, kind Kind) *Node {
	for _, c := range n.Children {
		if c.Name == name && c.Kind == kind {
			return c
		}
	}
	c := &Node{Name: name, Kind: kind}
	n.Children = append(n.Children, c)
	return c
}

// Add records value samples for stack, outermost frame first. Every node on
// the path gains value; the last one also gains it as self weight.
func (n *Node) Add(stack []string, value float64) {
	n.Value += value
	cur := n
	for _, raw := range stack {
		name, kind := ParseName(raw)
		cur = cur.Child(name, kind)
		cur.Value += value
	}
	cur.Self += value
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Walk calls fn for n and its descendants in pre-order with their depth.
// Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, int) bool { count++; return true })
	return count
}

// Depth returns the number of levels of the tree rooted at n.
func (n *Node) Depth() int {
	depth := 0
	n.Walk(func(_ *Node, d int) bool { depth = max(depth, d+1); return true })
	return depth
}

// Sort orders the children of every node by descending value, ties broken
// by name. Folded-stack tools emit stacks sorted by name, so this is only
// applied on request.
func (n *Node) Sort() {
	n.Walk(func(x *Node, _ int) bool {
		slices.SortStableFunc(x.Children, func(a, b *Node) int {
			switch {
			case a.Value > b.Value:
				return -1
			case a.Value < b.Value:
				return 1
			}
			return strings.Compare(a.Name, b.Name)
		})
		return true
	})
}

// Normalize fills in the inclusive value of nodes that only carry self
// weight, which is common in hand written JSON trees.
func (n *Node) Normalize() {
	var sum float64
	for _, c := range n.Children {
		c.Normalize()
		sum += c.Value
	}
	if n.Value < sum+n.Self {
		n.Value = sum + n.Self
	}
	if n.Self == 0 && n.Value > sum {
		n.Self = n.Value - sum
	}
}
