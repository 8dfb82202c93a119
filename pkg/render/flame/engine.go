package flame

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

const depthCacheSize = 64

var (
	statsBackground = colors.RGB(0x404040)
	statsForeground = colors.RGB(0xFFFF00)
)

// PaintStats describes the last interactive paint.
type PaintStats struct {
	Painted  int
	Total    int
	Zoom     float64
	Duration time.Duration
}

func (s PaintStats) String() string {
	return fmt.Sprintf("%d/%d frames, zoom %.2fx, %s", s.Painted, s.Total, s.Zoom, s.Duration.Round(time.Microsecond))
}

// Engine lays out and paints one frame model and answers geometry queries
// about it. It also owns the interaction state: hovered, selected and
// highlighted frames.
//
// An Engine is not safe for concurrent use. Paint it from a single goroutine
// and hand [Snapshot] values to other goroutines for minimap rendering.
type Engine[T comparable] struct {
	sc scene[T]

	depth        int
	visibleDepth int
	depthCache   map[int]int
	cacheOff     bool

	showSiblings bool
	paintBorder  bool
	borderColor  colors.Pair
	showStats    bool
	searchText   string
	stats        PaintStats

	generation atomic.Uint64
}

// EngineOption configures an [Engine].
type EngineOption[T comparable] func(*Engine[T])

// WithIcicle selects top-down (true, the default) or bottom-up stacking.
func WithIcicle[T comparable](on bool) EngineOption[T] {
	return func(e *Engine[T]) { e.sc.icicle = on }
}

// WithTheme sets the initial theme.
func WithTheme[T comparable](t colors.Theme) EngineOption[T] {
	return func(e *Engine[T]) { e.sc.theme = t }
}

// WithHoveredSiblings toggles the hover tint of frames equal to the hovered one.
func WithHoveredSiblings[T comparable](on bool) EngineOption[T] {
	return func(e *Engine[T]) { e.showSiblings = on }
}

// WithHoveredBorder toggles the border around the hovered frame.
func WithHoveredBorder[T comparable](on bool) EngineOption[T] {
	return func(e *Engine[T]) { e.paintBorder = on }
}

// WithBorderColor sets the hovered frame border color.
func WithBorderColor[T comparable](p colors.Pair) EngineOption[T] {
	return func(e *Engine[T]) { e.borderColor = p }
}

// WithStats toggles the paint statistics overlay.
func WithStats[T comparable](on bool) EngineOption[T] {
	return func(e *Engine[T]) { e.showStats = on }
}

// WithoutDepthCache disables the width to visible depth memo.
func WithoutDepthCache[T comparable]() EngineOption[T] {
	return func(e *Engine[T]) { e.cacheOff = true }
}

// NewEngine returns an uninitialized engine painting with r.
func NewEngine[T comparable](r *FrameRenderer[T], opts ...EngineOption[T]) *Engine[T] {
	e := &Engine[T]{
		sc: scene[T]{
			model:    frame.Empty[T](),
			renderer: r,
			theme:    colors.Light,
			icicle:   true,
		},
		depthCache:   make(map[int]int),
		showSiblings: true,
		paintBorder:  true,
		borderColor:  styles.FrameBorder,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// Lifecycle
// =============================================================================

// Init installs m and clears all interaction state. When m fails validation
// the engine keeps its previous model untouched.
func (e *Engine[T]) Init(m *frame.Model[T]) error {
	if m == nil {
		return errors.New(errors.ErrCodeInvalidModel, "nil model")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	e.sc.model = m
	e.depth = m.Depth()
	e.visibleDepth = e.depth
	clear(e.depthCache)
	e.clearInteraction()
	e.generation.Add(1)
	return nil
}

// Reset returns the engine to the uninitialized state.
func (e *Engine[T]) Reset() {
	e.sc.model = frame.Empty[T]()
	e.depth = 0
	e.visibleDepth = 0
	clear(e.depthCache)
	e.clearInteraction()
	e.generation.Add(1)
}

func (e *Engine[T]) clearInteraction() {
	e.sc.hovered = nil
	e.sc.siblings = frameSet[T]{}
	e.sc.selected = nil
	e.sc.highlighted = frameSet[T]{}
	e.searchText = ""
}

// Model returns the installed model, empty before Init.
func (e *Engine[T]) Model() *frame.Model[T] { return e.sc.model }

// Initialized reports whether a non-empty model is installed.
func (e *Engine[T]) Initialized() bool { return !e.sc.model.IsEmpty() }

// Depth returns the number of levels of the model.
func (e *Engine[T]) Depth() int { return e.depth }

// Generation changes whenever the minimap would look different: a new
// model, theme, orientation, selection, highlight or renderer.
func (e *Engine[T]) Generation() uint64 { return e.generation.Load() }

// IsCurrent reports whether an asynchronous result stamped with gen still
// matches the engine.
func (e *Engine[T]) IsCurrent(gen uint64) bool { return gen == e.Generation() }

func (e *Engine[T]) touch() { e.generation.Add(1) }

// =============================================================================
// Settings
// =============================================================================

// Renderer returns the frame renderer.
func (e *Engine[T]) Renderer() *FrameRenderer[T] { return e.sc.renderer }

// SetRenderer replaces the frame renderer.
func (e *Engine[T]) SetRenderer(r *FrameRenderer[T]) {
	e.sc.renderer = r
	e.touch()
}

// SetColorProvider swaps the color strategy.
func (e *Engine[T]) SetColorProvider(c styles.ColorProvider[T]) { e.SetRenderer(e.sc.renderer.WithColors(c)) }

// SetFontProvider swaps the font strategy.
func (e *Engine[T]) SetFontProvider(f styles.FontProvider[T]) { e.SetRenderer(e.sc.renderer.WithFonts(f)) }

// SetTextProvider swaps the label strategy.
func (e *Engine[T]) SetTextProvider(t styles.TextProvider[T]) { e.SetRenderer(e.sc.renderer.WithTexts(t)) }

// IsIcicle reports whether depth grows downward.
func (e *Engine[T]) IsIcicle() bool { return e.sc.icicle }

// SetIcicleMode selects top-down (true) or bottom-up stacking.
func (e *Engine[T]) SetIcicleMode(on bool) {
	if e.sc.icicle != on {
		e.sc.icicle = on
		e.touch()
	}
}

// Theme returns the current theme.
func (e *Engine[T]) Theme() colors.Theme { return e.sc.theme }

// SetTheme switches between light and dark colors.
func (e *Engine[T]) SetTheme(t colors.Theme) {
	if e.sc.theme != t {
		e.sc.theme = t
		e.touch()
	}
}

// ShowHoveredSiblings reports whether equal frames are tinted on hover.
func (e *Engine[T]) ShowHoveredSiblings() bool { return e.showSiblings }

// SetShowHoveredSiblings toggles the hover tint of equal frames. It applies
// from the next hover.
func (e *Engine[T]) SetShowHoveredSiblings(on bool) { e.showSiblings = on }

// SetPaintHoveredFrameBorder toggles the hovered frame border.
func (e *Engine[T]) SetPaintHoveredFrameBorder(on bool) { e.paintBorder = on }

// SetShowStats toggles the statistics overlay.
func (e *Engine[T]) SetShowStats(on bool) { e.showStats = on }

// Stats returns the statistics of the last interactive paint.
func (e *Engine[T]) Stats() PaintStats { return e.stats }

// =============================================================================
// Layout
// =============================================================================

// VisibleDepth returns how many levels hold at least one frame wide enough
// to be painted at the given canvas width.
func (e *Engine[T]) VisibleDepth(width int) int {
	if width <= 0 || e.sc.model.IsEmpty() {
		return 0
	}
	if d, ok := e.depthCache[width]; ok && !e.cacheOff {
		return d
	}

	d := 0
	frames := e.sc.model.Frames()
	for i := range frames {
		if float64(width)*frames[i].Width() >= VisibilityThreshold {
			d = max(d, frames[i].Depth+1)
		}
	}
	d = min(d, e.depth)

	if !e.cacheOff {
		if len(e.depthCache) >= depthCacheSize {
			clear(e.depthCache)
		}
		e.depthCache[width] = d
	}
	return d
}

// CurrentVisibleDepth returns the depth computed by the last VisibleHeight.
func (e *Engine[T]) CurrentVisibleDepth() int { return e.visibleDepth }

// VisibleHeight returns the canvas height needed at the given width and
// records the visible depth.
func (e *Engine[T]) VisibleHeight(s Surface, width int) int {
	e.visibleDepth = e.VisibleDepth(width)
	if e.visibleDepth == 0 {
		return 0
	}
	return e.visibleDepth * e.sc.renderer.BoxHeight(s)
}

// MinimapHeight returns the thumbnail height at the given width, one pixel
// per visible level.
func (e *Engine[T]) MinimapHeight(width int) int {
	return e.VisibleDepth(width) * minimapBoxHeight
}

// BoxHeight returns the pixel height of one level.
func (e *Engine[T]) BoxHeight(s Surface) int { return e.sc.renderer.BoxHeight(s) }

// =============================================================================
// Painting
// =============================================================================

// Paint draws the part of the graph inside view, the whole graph occupying
// bounds. view is expressed in the same coordinates as bounds.
func (e *Engine[T]) Paint(s Surface, bounds, view Rect) {
	start := time.Now()
	painted := e.sc.paint(s, bounds, view, false)
	if painted == 0 && (e.sc.model.IsEmpty() || bounds.Empty() || view.Empty()) {
		return
	}
	e.paintHoveredBorder(s, bounds, view)

	e.stats = PaintStats{
		Painted:  painted,
		Total:    e.sc.model.Len(),
		Zoom:     float64(bounds.W) / float64(view.W),
		Duration: time.Since(start),
	}
	if e.showStats {
		e.paintStats(s, view)
	}
}

// FrameVisitor receives a frame, its full pixel rectangle, the part of it
// inside the view and its render flags.
type FrameVisitor[T any] func(f *frame.Box[T], r, visible Rect, flags styles.Flags)

// Walk visits the frames Paint would draw, without drawing. It returns the
// number of visited frames.
func (e *Engine[T]) Walk(s Surface, bounds, view Rect, fn FrameVisitor[T]) int {
	if e.sc.model.IsEmpty() || bounds.Empty() || view.Empty() {
		return 0
	}
	return e.sc.walk(bounds, view, e.sc.renderer.BoxHeight(s), false, fn)
}

// PaintMinimap draws the whole graph into bounds at one pixel per level,
// synchronously. Use [Engine.Snapshot] to paint from another goroutine.
func (e *Engine[T]) PaintMinimap(s Surface, bounds Rect) {
	e.sc.paint(s, bounds, bounds, true)
}

func (e *Engine[T]) paintHoveredBorder(s Surface, bounds, view Rect) {
	f := e.sc.hovered
	if f == nil || !e.paintBorder {
		return
	}
	gap := float64(e.sc.renderer.gapThickness())
	boxHeight := e.sc.renderer.BoxHeight(s)
	width := float64(bounds.W)

	x := width * f.StartX
	w := width*f.EndX - x - gap
	if w < VisibilityThreshold {
		return
	}
	r := Rect{
		X: bounds.X + int(x),
		Y: bounds.Y + e.sc.y(f.Depth, boxHeight, bounds.H),
		W: int(w),
		H: boxHeight - int(gap),
	}
	if view.Intersects(r) {
		s.StrokeRect(r, e.borderColor.For(e.sc.theme))
	}
}

func (e *Engine[T]) paintStats(s Surface, view Rect) {
	text := e.stats.String()
	font := e.sc.renderer.ReferenceFont()
	pad := e.sc.renderer.TextPadding()
	boxHeight := e.sc.renderer.BoxHeight(s)
	tw := int(math.Ceil(s.StringWidth(font, text)))

	s.FillRect(Rect{
		X: view.X + view.W - tw - 2*pad,
		Y: view.Y + view.H - boxHeight,
		W: tw + 2*pad,
		H: boxHeight,
	}, statsBackground)
	s.DrawString(text, float64(view.X+view.W-tw-pad), float64(view.Y+view.H-pad), font, statsForeground)
}

// =============================================================================
// Hit-testing
// =============================================================================

// FrameAt returns the frame painted under p, the whole graph occupying
// bounds. Frames narrower than the visibility threshold are never hit.
func (e *Engine[T]) FrameAt(s Surface, bounds Rect, p Point) (*frame.Box[T], bool) {
	if e.sc.model.IsEmpty() || bounds.Empty() || !bounds.Contains(p) {
		return nil, false
	}
	boxHeight := e.sc.renderer.BoxHeight(s)
	if boxHeight <= 0 {
		return nil, false
	}

	py := p.Y - bounds.Y
	depth := py / boxHeight
	if !e.sc.icicle {
		depth = (bounds.H - py) / boxHeight
	}
	x := float64(p.X-bounds.X) / float64(bounds.W)
	threshold := VisibilityThreshold / float64(bounds.W)

	frames := e.sc.model.Frames()
	for i := range frames {
		f := &frames[i]
		if f.Depth == depth && f.Contains(x) && f.Width() > threshold {
			return f, true
		}
	}
	return nil, false
}

// FrameRect returns the pixel rectangle of f widened by the gap on every
// side, suitable for repaint invalidation.
func (e *Engine[T]) FrameRect(s Surface, bounds Rect, f *frame.Box[T]) Rect {
	gap := e.sc.renderer.GapWidth()
	r := e.sc.boxRect(f, bounds, e.sc.renderer.BoxHeight(s))
	return Rect{X: r.X - gap, Y: r.Y - gap, W: r.W + 2*gap, H: r.H + 2*gap}
}

// =============================================================================
// Interaction
// =============================================================================

// HoveredFrame returns the frame under the pointer, or nil.
func (e *Engine[T]) HoveredFrame() *frame.Box[T] { return e.sc.hovered }

// HoveredSiblings returns the frames tinted by the current hover, the
// hovered frame included.
func (e *Engine[T]) HoveredSiblings() []*frame.Box[T] { return e.sc.siblings.frames }

// SelectedFrame returns the focused frame, or nil.
func (e *Engine[T]) SelectedFrame() *frame.Box[T] { return e.sc.selected }

// HoverFrame marks f as hovered. invalidate, when not nil, receives the
// rectangle of every frame of the new and then the old sibling sets. A nil
// frame is the same as StopHover.
func (e *Engine[T]) HoverFrame(f *frame.Box[T], s Surface, bounds Rect, invalidate func(Rect)) {
	if f == nil {
		e.StopHover(s, bounds, invalidate)
		return
	}
	if f == e.sc.hovered {
		return
	}
	old := e.sc.siblings
	e.sc.hovered = f
	e.sc.siblings = e.siblingsOf(f)
	e.invalidate(s, bounds, invalidate, e.sc.siblings, old)
}

// StopHover clears the hover and reports the previous sibling set.
func (e *Engine[T]) StopHover(s Surface, bounds Rect, invalidate func(Rect)) {
	old := e.sc.siblings
	e.sc.hovered = nil
	e.sc.siblings = frameSet[T]{}
	e.invalidate(s, bounds, invalidate, old)
}

func (e *Engine[T]) siblingsOf(f *frame.Box[T]) frameSet[T] {
	if !e.showSiblings {
		return newFrameSet([]*frame.Box[T]{f})
	}
	return newFrameSet(e.sc.model.Siblings(f))
}

func (e *Engine[T]) invalidate(s Surface, bounds Rect, fn func(Rect), sets ...frameSet[T]) {
	if fn == nil {
		return
	}
	for _, set := range sets {
		for _, f := range set.frames {
			fn(e.FrameRect(s, bounds, f))
		}
	}
}

// ToggleSelection selects the frame under p, or deselects it when it is
// already selected. fn, when not nil, receives the frame and its rectangle.
func (e *Engine[T]) ToggleSelection(s Surface, bounds Rect, p Point, fn func(*frame.Box[T], Rect)) (*frame.Box[T], bool) {
	f, ok := e.FrameAt(s, bounds, p)
	if !ok {
		return nil, false
	}
	if e.sc.selected == f {
		e.sc.selected = nil
	} else {
		e.sc.selected = f
	}
	e.touch()
	if fn != nil {
		fn(f, e.FrameRect(s, bounds, f))
	}
	return f, true
}

// SetSelectedFrame focuses f, or clears the focus when f is nil.
func (e *Engine[T]) SetSelectedFrame(f *frame.Box[T]) {
	if e.sc.selected != f {
		e.sc.selected = f
		e.touch()
	}
}

// SetHighlightFrames replaces the highlighted set. An empty set turns
// highlighting off. The root is never drawn highlighted.
func (e *Engine[T]) SetHighlightFrames(frames []*frame.Box[T], searchText string) {
	e.sc.highlighted = newFrameSet(frames)
	e.searchText = searchText
	e.touch()
}

// HighlightedFrames returns the highlighted frames.
func (e *Engine[T]) HighlightedFrames() []*frame.Box[T] { return e.sc.highlighted.frames }

// SearchText returns the text that produced the highlighted set.
func (e *Engine[T]) SearchText() string { return e.searchText }
