package profile

import (
	"slices"
	"strings"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
)

// Tree is the accessor set [frame.Flatten] uses to lay out a profile. Child
// widths are proportional to their share of the parent's children, so the
// parent's self time is spread over its children. Children without weight
// are left out.
var Tree = frame.Tree[*Node]{
	Children: weighted,
	Weight:   func(n *Node) float64 { return n.Value },
}

// InclusiveTree lays children out relative to the parent's inclusive
// value, leaving the self time as an empty tail on the right.
var InclusiveTree = frame.Tree[*Node]{
	Children: Tree.Children,
	Weight:   Tree.Weight,
	Total:    func(n *Node) float64 { return n.Value },
}

func weighted(n *Node) []*Node {
	for i, c := range n.Children {
		if c.Value <= 0 {
			out := slices.Clone(n.Children[:i])
			for _, c := range n.Children[i+1:] {
				if c.Value > 0 {
					out = append(out, c)
				}
			}
			return out
		}
	}
	return n.Children
}

// ModelOptions configures [ToModel].
type ModelOptions struct {
	// ShowSelf lays out children against the inclusive value of their
	// parent instead of the sum of their siblings.
	ShowSelf bool
}

// ToModel flattens root into a frame model. Frames with the same name
// compare equal.
func ToModel(root *Node, title string, opts ModelOptions) (*frame.Model[*Node], error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidProfile, "nil profile")
	}
	tree := Tree
	if opts.ShowSelf {
		tree = InclusiveTree
	}
	boxes, err := frame.Flatten(root, tree)
	if err != nil {
		return nil, err
	}
	return frame.NewModel(title, boxes, frame.WithEquality(frame.KeyEquality(Name)))
}

// Name returns the name of n.
func Name(n *Node) string { return n.Name }

// Matching returns the frames of m whose name contains text, in model
// order. The root never matches. An empty text matches nothing.
func Matching(m *frame.Model[*Node], text string) []*frame.Box[*Node] {
	if text == "" {
		return nil
	}
	var out []*frame.Box[*Node]
	for i := 1; i < m.Len(); i++ {
		if f := m.Frame(i); strings.Contains(f.Node.Name, text) {
			out = append(out, f)
		}
	}
	return out
}

// Share returns the fraction of the total profile weight f accounts for.
func Share(m *frame.Model[*Node], f *frame.Box[*Node]) float64 {
	root := m.Root()
	if root == nil || root.Node.Value <= 0 {
		return 0
	}
	return f.Node.Value / root.Node.Value
}
