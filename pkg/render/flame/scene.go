package flame

import (
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

const (
	// VisibilityThreshold is the pixel width under which frames are culled
	// from interactive paints and hit-tests.
	VisibilityThreshold = 2.0

	minimapBoxHeight = 1
)

// frameSet is an ordered set of frames compared by pointer. Once built it is
// never modified, which lets a minimap snapshot share it with the engine.
type frameSet[T any] struct {
	frames []*frame.Box[T]
	index  map[*frame.Box[T]]struct{}
}

func newFrameSet[T any](frames []*frame.Box[T]) frameSet[T] {
	s := frameSet[T]{index: make(map[*frame.Box[T]]struct{}, len(frames))}
	for _, f := range frames {
		if f == nil {
			continue
		}
		if _, dup := s.index[f]; dup {
			continue
		}
		s.index[f] = struct{}{}
		s.frames = append(s.frames, f)
	}
	return s
}

func (s frameSet[T]) has(f *frame.Box[T]) bool {
	_, ok := s.index[f]
	return ok
}

func (s frameSet[T]) len() int { return len(s.frames) }

// scene is everything a paint pass reads. The engine owns one; a minimap
// snapshot owns a copy.
type scene[T comparable] struct {
	model       *frame.Model[T]
	renderer    *FrameRenderer[T]
	theme       colors.Theme
	icicle      bool
	hovered     *frame.Box[T]
	siblings    frameSet[T]
	selected    *frame.Box[T]
	highlighted frameSet[T]
}

// y returns the top of a box at depth, relative to the canvas top.
func (sc *scene[T]) y(depth, boxHeight, canvasHeight int) int {
	if sc.icicle {
		return depth * boxHeight
	}
	return canvasHeight - boxHeight*(depth+1)
}

// boxRect returns the unclipped pixel rectangle of f. The root always spans
// the full width.
func (sc *scene[T]) boxRect(f *frame.Box[T], bounds Rect, boxHeight int) Rect {
	r := Rect{X: bounds.X, W: bounds.W, H: boxHeight}
	if !f.IsRoot() {
		width := float64(bounds.W)
		x := int(width * f.StartX)
		r.X = bounds.X + x
		r.W = int(width*f.EndX) - x
	}
	r.Y = bounds.Y + sc.y(f.Depth, boxHeight, bounds.H)
	return r
}

// flags computes the render state of f.
func (sc *scene[T]) flags(f *frame.Box[T], r, visible Rect, minimap bool) styles.Flags {
	return styles.FlagsOf(
		minimap,
		sc.highlighted.len() > 0,
		!f.IsRoot() && sc.highlighted.has(f),
		f == sc.hovered,
		f != sc.hovered && sc.siblings.has(f),
		sc.selected != nil,
		sc.selected != nil && sc.selected.Encloses(*f),
		r.X < visible.X,
	)
}

// walk calls fn for every frame intersecting view, in model order, and
// returns how many frames it visited. Frames narrower than the visibility
// threshold are skipped outside minimap mode. Nothing is visited for an empty
// model or degenerate geometry.
func (sc *scene[T]) walk(bounds, view Rect, boxHeight int, minimap bool, fn func(f *frame.Box[T], r, visible Rect, flags styles.Flags)) int {
	if sc.model == nil || sc.model.IsEmpty() || bounds.Empty() || view.Empty() || boxHeight <= 0 {
		return 0
	}
	visited := 0
	frames := sc.model.Frames()
	for i := range frames {
		f := &frames[i]
		r := sc.boxRect(f, bounds, boxHeight)
		if !f.IsRoot() && !minimap && float64(r.W) < VisibilityThreshold {
			continue
		}
		visible := view.Intersect(r)
		if visible.Empty() {
			continue
		}
		fn(f, r, visible, sc.flags(f, r, visible, minimap))
		visited++
	}
	return visited
}

// paint draws every frame intersecting view and returns how many were
// painted.
func (sc *scene[T]) paint(s Surface, bounds, view Rect, minimap bool) int {
	if sc.model == nil || sc.model.IsEmpty() || bounds.Empty() || view.Empty() {
		return 0
	}
	boxHeight := minimapBoxHeight
	if !minimap {
		boxHeight = sc.renderer.BoxHeight(s)
	}
	return sc.walk(bounds, view, boxHeight, minimap, func(f *frame.Box[T], r, visible Rect, flags styles.Flags) {
		sc.renderer.Paint(s, sc.model, f, r, visible, flags, sc.theme)
	})
}
