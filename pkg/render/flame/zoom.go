package flame

import (
	"math"

	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
)

// ZoomTarget is the canvas size and scroll offset that make Frame fill the
// viewport width. It is computed on demand and never stored by the engine.
type ZoomTarget[T any] struct {
	X, Y          int
	Width, Height int
	Frame         *frame.Box[T]
}

// Bounds returns the new canvas rectangle.
func (z ZoomTarget[T]) Bounds() Rect { return Rect{W: z.Width, H: z.Height} }

// Viewport returns the visible rectangle of a w by h view after the zoom.
func (z ZoomTarget[T]) Viewport(w, h int) Rect { return Rect{X: z.X, Y: z.Y, W: w, H: h} }

// maxZoomWidth caps the canvas width of a zoom target so that very narrow
// frames cannot overflow the pixel coordinates.
const maxZoomWidth = 1 << 30

// ScaleFactor returns how much a frame of the given fractional width must be
// stretched so that it spans viewWidth on a canvas canvasWidth wide.
//
//	factor = viewWidth / (canvasWidth * frameWidth)
func ScaleFactor(viewWidth, canvasWidth int, frameWidth float64) float64 {
	return float64(viewWidth) / (float64(canvasWidth) * frameWidth)
}

// ZoomTargetAt finds the frame under p, marks it selected and returns the
// zoom target for it.
func (e *Engine[T]) ZoomTargetAt(s Surface, bounds, view Rect, p Point) (ZoomTarget[T], bool) {
	f, ok := e.FrameAt(s, bounds, p)
	if !ok {
		return ZoomTarget[T]{}, false
	}
	e.SetSelectedFrame(f)
	return e.ZoomTarget(s, bounds, view, f, 0)
}

// ZoomTarget computes the geometry bringing f to the viewport width.
//
// contextBefore is the number of parent levels kept in view above (icicle)
// or below (flame) the frame. A negative value keeps the current vertical
// offset. Frames narrower than VisibilityThreshold pixels on the current
// canvas and degenerate geometry yield no target.
func (e *Engine[T]) ZoomTarget(s Surface, bounds, view Rect, f *frame.Box[T], contextBefore int) (ZoomTarget[T], bool) {
	if f == nil || e.sc.model.IsEmpty() || bounds.W <= 0 || view.W <= 0 {
		return ZoomTarget[T]{}, false
	}
	if f.Width()*float64(bounds.W) < VisibilityThreshold {
		return ZoomTarget[T]{}, false
	}
	boxHeight := e.sc.renderer.BoxHeight(s)

	factor := ScaleFactor(view.W, bounds.W, f.Width())
	width := int(math.Min(math.Round(float64(bounds.W)*factor), maxZoomWidth))
	height := e.VisibleDepth(width) * boxHeight

	z := ZoomTarget[T]{
		X:      int(f.StartX * float64(width)),
		Width:  width,
		Height: height,
		Frame:  f,
	}
	switch {
	case contextBefore < 0:
		z.Y = view.Y
	case e.sc.icicle:
		z.Y = boxHeight * max(f.Depth-contextBefore, 0)
	default:
		bottom := height - boxHeight*f.Depth
		z.Y = bottom + boxHeight*contextBefore - view.H
		z.Y = min(max(z.Y, 0), max(height-view.H, 0))
	}
	return z, true
}

// ResetZoomTarget returns the geometry fitting the whole graph to the view
// width. In flame mode the view is scrolled to the root at the bottom.
func (e *Engine[T]) ResetZoomTarget(s Surface, view Rect) (ZoomTarget[T], bool) {
	if e.sc.model.IsEmpty() || view.W <= 0 {
		return ZoomTarget[T]{}, false
	}
	height := e.VisibleDepth(view.W) * e.sc.renderer.BoxHeight(s)
	z := ZoomTarget[T]{Width: view.W, Height: height, Frame: e.sc.model.Root()}
	if !e.sc.icicle {
		z.Y = max(height-view.H, 0)
	}
	return z, true
}
