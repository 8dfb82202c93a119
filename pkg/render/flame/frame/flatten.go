package frame

import (
	"github.com/matzehuels/stackflame/pkg/errors"
)

// Tree describes how to walk a caller owned weighted tree.
type Tree[T any] struct {
	// Children returns the ordered children of a node, nil for a leaf.
	Children func(T) []T

	// Weight returns the weight of a node.
	Weight func(T) float64

	// Total returns the weight a node distributes among its children.
	// When nil the sum of the children's weights is used, so children
	// exactly cover their parent. Supplying the node's own inclusive
	// weight instead leaves the self time as an empty tail.
	Total func(T) float64
}

// Flatten lays out the whole tree over [0,1] starting at depth 0.
//
// The root always spans the full width regardless of its own weight.
func Flatten[T any](root T, tree Tree[T]) ([]Box[T], error) {
	return FlattenSpan(nil, root, tree, 0, 1, 0)
}

// FlattenSpan appends the box of node at [startX,endX] and depth to dst,
// then recursively appends its descendants in pre-order.
//
// Each child receives min(startX + weight/total*parentWidth, 1). A child
// with zero weight collapses to a zero width box that is still emitted. A
// node with children and a zero total weight is a precondition violation.
func FlattenSpan[T any](dst []Box[T], node T, tree Tree[T], startX, endX float64, depth int) ([]Box[T], error) {
	if tree.Children == nil || tree.Weight == nil {
		return dst, errors.New(errors.ErrCodeInvalidInput, "tree needs both Children and Weight accessors")
	}
	box, err := NewBox(node, startX, endX, depth)
	if err != nil {
		return dst, err
	}
	dst = append(dst, box)

	children := tree.Children(node)
	if len(children) == 0 {
		return dst, nil
	}

	total, err := totalWeight(node, children, tree)
	if err != nil {
		return dst, err
	}

	parentWidth := endX - startX
	for _, child := range children {
		w := tree.Weight(child)
		if err := errors.ValidateWeight(w); err != nil {
			return dst, err
		}
		childEnd := min(startX+(w/total)*parentWidth, 1.0)
		if dst, err = FlattenSpan(dst, child, tree, startX, childEnd, depth+1); err != nil {
			return dst, err
		}
		startX = childEnd
	}
	return dst, nil
}

func totalWeight[T any](node T, children []T, tree Tree[T]) (float64, error) {
	var total float64
	if tree.Total != nil {
		total = tree.Total(node)
	} else {
		for _, c := range children {
			total += tree.Weight(c)
		}
	}
	return total, errors.ValidateTotalWeight(total)
}
