package frame

import (
	"slices"

	"github.com/matzehuels/stackflame/pkg/errors"
)

// Equality decides whether two boxes stand for the same logical frame,
// typically the same function reached through different call paths.
type Equality[T any] func(a, b *Box[T]) bool

// NodeEquality compares payloads with ==.
func NodeEquality[T comparable](a, b *Box[T]) bool { return a.Node == b.Node }

// KeyEquality compares the keys extracted from both payloads.
func KeyEquality[T any, K comparable](key func(T) K) Equality[T] {
	return func(a, b *Box[T]) bool { return key(a.Node) == key(b.Node) }
}

// Model is an immutable snapshot of a flattened tree: a title, the boxes in
// pre-order (root first) and the equality predicate used for siblings.
//
// Pointers returned by [Model.Frame] and [Model.Root] stay valid and unique
// for the lifetime of the model, so callers compare frames by pointer.
type Model[T comparable] struct {
	title  string
	frames []Box[T]
	equal  Equality[T]
	depth  int
}

// ModelOption configures a [Model].
type ModelOption[T comparable] func(*Model[T])

// WithEquality replaces the default payload equality.
func WithEquality[T comparable](eq Equality[T]) ModelOption[T] {
	return func(m *Model[T]) {
		if eq != nil {
			m.equal = eq
		}
	}
}

// NewModel validates frames and builds a model holding its own copy of them.
//
// An empty frame list yields an empty model. Otherwise the first box must be
// the only root, and depths must follow pre-order: a box is at most one level
// deeper than the box before it.
func NewModel[T comparable](title string, frames []Box[T], opts ...ModelOption[T]) (*Model[T], error) {
	m := &Model[T]{
		title:  title,
		frames: slices.Clone(frames),
		equal:  NodeEquality[T],
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.depth = maxDepth(m.frames)
	return m, nil
}

// Empty returns a model without frames.
func Empty[T comparable]() *Model[T] {
	return &Model[T]{equal: NodeEquality[T]}
}

// Validate checks the structural invariants of the model.
func (m *Model[T]) Validate() error {
	if m == nil {
		return errors.New(errors.ErrCodeInvalidModel, "nil model")
	}
	for i := range m.frames {
		f := &m.frames[i]
		if err := f.validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidModel, err, "frame %d", i)
		}
		switch {
		case i == 0 && f.Depth != 0:
			return errors.New(errors.ErrCodeInvalidModel, "first frame has depth %d, want root", f.Depth)
		case i > 0 && f.Depth == 0:
			return errors.New(errors.ErrCodeInvalidModel, "frame %d is a second root", i)
		case i > 0 && f.Depth > m.frames[i-1].Depth+1:
			return errors.New(errors.ErrCodeInvalidModel, "frame %d skips from depth %d to %d", i, m.frames[i-1].Depth, f.Depth)
		}
	}
	return nil
}

// Title returns the model title, painted on the root frame.
func (m *Model[T]) Title() string { return m.title }

// Len returns the number of frames.
func (m *Model[T]) Len() int { return len(m.frames) }

// IsEmpty reports whether the model has no frames.
func (m *Model[T]) IsEmpty() bool { return len(m.frames) == 0 }

// Depth returns max(Depth)+1, or 0 for an empty model.
func (m *Model[T]) Depth() int { return m.depth }

// Frames returns the boxes in pre-order. The slice must not be modified.
func (m *Model[T]) Frames() []Box[T] { return m.frames }

// Frame returns the box at index i.
func (m *Model[T]) Frame(i int) *Box[T] { return &m.frames[i] }

// Root returns the root box, or nil for an empty model.
func (m *Model[T]) Root() *Box[T] {
	if len(m.frames) == 0 {
		return nil
	}
	return &m.frames[0]
}

// Index returns the position of f in the model, or -1 if f does not belong
// to it.
func (m *Model[T]) Index(f *Box[T]) int {
	for i := range m.frames {
		if &m.frames[i] == f {
			return i
		}
	}
	return -1
}

// Equal applies the model's equality predicate.
func (m *Model[T]) Equal(a, b *Box[T]) bool { return m.equal(a, b) }

// Siblings returns every frame equal to f, f included, in model order.
func (m *Model[T]) Siblings(f *Box[T]) []*Box[T] {
	var out []*Box[T]
	for i := range m.frames {
		if o := &m.frames[i]; o == f || m.equal(f, o) {
			out = append(out, o)
		}
	}
	return out
}

// Children returns the direct children of the frame at index i. It relies on
// descendants being contiguous after their parent.
func (m *Model[T]) Children(i int) []*Box[T] {
	var out []*Box[T]
	parent := m.frames[i].Depth
	for j := i + 1; j < len(m.frames) && m.frames[j].Depth > parent; j++ {
		if m.frames[j].Depth == parent+1 {
			out = append(out, &m.frames[j])
		}
	}
	return out
}

func maxDepth[T any](frames []Box[T]) int {
	if len(frames) == 0 {
		return 0
	}
	d := 0
	for i := range frames {
		d = max(d, frames[i].Depth)
	}
	return d + 1
}
