package session

import (
	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
)

// Default viewport size.
const (
	DefaultViewWidth  = 1200
	DefaultViewHeight = 600
)

// View is the serializable interaction state of a viewer. Frames are
// referenced by model index, -1 meaning none.
type View struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Canvas   int    `json:"canvas"` // zoomed canvas width, 0 fits the viewport
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Flame    bool   `json:"flame"`
	Theme    string `json:"theme"`
	Search   string `json:"search,omitempty"`
	Selected int    `json:"selected"`
	Hovered  int    `json:"hovered"`
}

// DefaultView returns an unzoomed icicle view.
func DefaultView() View {
	return View{
		Width:    DefaultViewWidth,
		Height:   DefaultViewHeight,
		Theme:    colors.Light.String(),
		Selected: -1,
		Hovered:  -1,
	}
}

// CanvasWidth returns the width of the whole graph at the current zoom.
func (v View) CanvasWidth() int {
	if v.Canvas <= 0 {
		return v.Width
	}
	return v.Canvas
}

// Viewport returns the visible rectangle in canvas coordinates.
func (v View) Viewport() flame.Rect {
	return flame.Rect{X: v.X, Y: v.Y, W: v.Width, H: v.Height}
}

// Resize changes the viewport size, keeping the zoom factor.
func (v View) Resize(width, height int) View {
	if v.Canvas > 0 && v.Width > 0 {
		v.Canvas = v.Canvas * width / v.Width
		v.X = v.X * width / v.Width
	}
	v.Width, v.Height = width, height
	return v
}

// Flipped returns v after switching between icicle and flame orientation
// on a canvas height tall. The scroll offset is mirrored so that the same
// levels stay in view.
func (v View) Flipped(height int) View {
	v.Flame = !v.Flame
	v.Y = min(max(height-v.Height-v.Y, 0), max(height-v.Height, 0))
	return v
}

// Zoomed returns v moved to the zoom target z.
func Zoomed[T any](v View, z flame.ZoomTarget[T]) View {
	v.Canvas, v.X, v.Y = z.Width, z.X, z.Y
	if v.Canvas == v.Width {
		v.Canvas = 0
	}
	return v
}

// Restore applies v to e. search, when not nil, resolves the search text to
// the frames to highlight.
func Restore[T comparable](e *flame.Engine[T], v View, search func(string) []*frame.Box[T]) {
	e.SetIcicleMode(!v.Flame)
	if t, err := colors.ParseTheme(v.Theme); err == nil {
		e.SetTheme(t)
	}
	m := e.Model()
	e.SetSelectedFrame(frameAt(m, v.Selected))
	e.HoverFrame(frameAt(m, v.Hovered), nil, flame.Rect{}, nil)
	if search != nil {
		e.SetHighlightFrames(search(v.Search), v.Search)
	}
}

// Capture copies the interaction state of e into v.
func Capture[T comparable](e *flame.Engine[T], v View) View {
	m := e.Model()
	v.Flame = !e.IsIcicle()
	v.Theme = e.Theme().String()
	v.Search = e.SearchText()
	v.Selected = indexOf(m, e.SelectedFrame())
	v.Hovered = indexOf(m, e.HoveredFrame())
	return v
}

func frameAt[T comparable](m *frame.Model[T], i int) *frame.Box[T] {
	if i < 0 || i >= m.Len() {
		return nil
	}
	return m.Frame(i)
}

func indexOf[T comparable](m *frame.Model[T], f *frame.Box[T]) int {
	if f == nil {
		return -1
	}
	return m.Index(f)
}
