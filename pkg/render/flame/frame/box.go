package frame

import (
	"github.com/matzehuels/stackflame/pkg/errors"
)

// Box is one stack frame positioned in the proportional layout.
//
// StartX and EndX are fractions of the total width, 0 <= StartX <= EndX <= 1.
// Depth 0 is the root. Node is the caller's payload and is never inspected.
type Box[T any] struct {
	Node   T
	StartX float64
	EndX   float64
	Depth  int
}

// NewBox validates the coordinates and returns the box.
func NewBox[T any](node T, startX, endX float64, depth int) (Box[T], error) {
	if err := errors.ValidateSpan(startX, endX); err != nil {
		return Box[T]{}, err
	}
	if err := errors.ValidateDepth(depth); err != nil {
		return Box[T]{}, err
	}
	return Box[T]{Node: node, StartX: startX, EndX: endX, Depth: depth}, nil
}

// Width returns the fraction of the total width the box spans.
func (b Box[T]) Width() float64 { return b.EndX - b.StartX }

// IsRoot reports whether the box is the root frame.
func (b Box[T]) IsRoot() bool { return b.Depth == 0 }

// CenterX returns the horizontal middle of the span.
func (b Box[T]) CenterX() float64 { return (b.StartX + b.EndX) / 2 }

// Contains reports whether the fractional x coordinate falls inside the span.
func (b Box[T]) Contains(x float64) bool { return b.StartX <= x && x <= b.EndX }

// Encloses reports whether o lies in the subtree rooted at b, b included.
// Spans at a given depth never overlap, so depth and span containment
// identify descendants without walking the tree.
func (b Box[T]) Encloses(o Box[T]) bool {
	return o.Depth >= b.Depth && o.StartX >= b.StartX && o.EndX <= b.EndX
}

func (b Box[T]) validate() error {
	if err := errors.ValidateSpan(b.StartX, b.EndX); err != nil {
		return err
	}
	return errors.ValidateDepth(b.Depth)
}
