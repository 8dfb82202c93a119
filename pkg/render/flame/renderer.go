package flame

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

const (
	DefaultGapWidth    = 1
	DefaultTextPadding = 2
	frameBorderWidth   = 1
)

// FrameRenderer paints a single frame box. It holds no per-paint state, so
// one renderer can serve the interactive pass and a minimap worker at once.
// The strategy setters return modified copies instead of mutating.
type FrameRenderer[T comparable] struct {
	colors      styles.ColorProvider[T]
	fonts       styles.FontProvider[T]
	texts       styles.TextProvider[T]
	gaps        bool
	gapWidth    int
	textPadding int
	placeholder string
}

// RendererOption configures a [FrameRenderer].
type RendererOption[T comparable] func(*FrameRenderer[T])

// WithFrameGaps toggles the gap drawn between adjacent frames.
func WithFrameGaps[T comparable](on bool) RendererOption[T] {
	return func(r *FrameRenderer[T]) { r.gaps = on }
}

// WithGapWidth sets the gap thickness in pixels.
func WithGapWidth[T comparable](px int) RendererOption[T] {
	return func(r *FrameRenderer[T]) { r.gapWidth = max(px, 0) }
}

// WithTextPadding sets the space around labels in pixels.
func WithTextPadding[T comparable](px int) RendererOption[T] {
	return func(r *FrameRenderer[T]) { r.textPadding = max(px, 0) }
}

// WithPlaceholder replaces the glyph appended to clipped labels.
func WithPlaceholder[T comparable](s string) RendererOption[T] {
	return func(r *FrameRenderer[T]) { r.placeholder = s }
}

// NewFrameRenderer builds a renderer from the three strategies.
func NewFrameRenderer[T comparable](c styles.ColorProvider[T], f styles.FontProvider[T], t styles.TextProvider[T], opts ...RendererOption[T]) *FrameRenderer[T] {
	r := &FrameRenderer[T]{
		colors:      c,
		fonts:       f,
		texts:       t,
		gaps:        true,
		gapWidth:    DefaultGapWidth,
		textPadding: DefaultTextPadding,
		placeholder: styles.Placeholder,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithColors returns a copy of r using c.
func (r *FrameRenderer[T]) WithColors(c styles.ColorProvider[T]) *FrameRenderer[T] {
	cp := *r
	cp.colors = c
	return &cp
}

// WithFonts returns a copy of r using f.
func (r *FrameRenderer[T]) WithFonts(f styles.FontProvider[T]) *FrameRenderer[T] {
	cp := *r
	cp.fonts = f
	return &cp
}

// WithTexts returns a copy of r using t.
func (r *FrameRenderer[T]) WithTexts(t styles.TextProvider[T]) *FrameRenderer[T] {
	cp := *r
	cp.texts = t
	return &cp
}

// WithGaps returns a copy of r with gaps toggled.
func (r *FrameRenderer[T]) WithGaps(on bool) *FrameRenderer[T] {
	cp := *r
	cp.gaps = on
	return &cp
}

// WithSpacing returns a copy of r with the given label padding and gap
// width. Character-cell surfaces use zero for both to get one row per level.
func (r *FrameRenderer[T]) WithSpacing(textPadding, gapWidth int) *FrameRenderer[T] {
	cp := *r
	cp.textPadding = max(textPadding, 0)
	cp.gapWidth = max(gapWidth, 0)
	return &cp
}

// Colors returns the color strategy.
func (r *FrameRenderer[T]) Colors() styles.ColorProvider[T] { return r.colors }

// Fonts returns the font strategy.
func (r *FrameRenderer[T]) Fonts() styles.FontProvider[T] { return r.fonts }

// Texts returns the label strategy.
func (r *FrameRenderer[T]) Texts() styles.TextProvider[T] { return r.texts }

// Gaps reports whether gaps are drawn.
func (r *FrameRenderer[T]) Gaps() bool { return r.gaps }

// GapWidth returns the gap thickness.
func (r *FrameRenderer[T]) GapWidth() int { return r.gapWidth }

// TextPadding returns the label padding.
func (r *FrameRenderer[T]) TextPadding() int { return r.textPadding }

// ReferenceFont returns the font used to size boxes.
func (r *FrameRenderer[T]) ReferenceFont() styles.Font { return r.fonts.Font(nil, 0) }

// BoxHeight returns the pixel height of one depth level.
func (r *FrameRenderer[T]) BoxHeight(s Surface) int {
	m := s.Metrics(r.ReferenceFont())
	return int(math.Ceil(m.Ascent)) + 2*r.textPadding + 2*r.gapWidth
}

func (r *FrameRenderer[T]) gapThickness() int {
	if r.gaps {
		return r.gapWidth
	}
	return 0
}

// textOffset is the baseline distance from the top of a box.
func (r *FrameRenderer[T]) textOffset(s Surface, boxHeight int) float64 {
	m := s.Metrics(r.ReferenceFont())
	return float64(boxHeight) - m.Descent/2 - float64(r.textPadding) - float64(r.gapWidth)
}

// Paint draws f. frameRect is the full, unclipped box and visible its
// intersection with the viewport. In minimap mode only the background is
// filled.
func (r *FrameRenderer[T]) Paint(s Surface, m *frame.Model[T], f *frame.Box[T], frameRect, visible Rect, flags styles.Flags, theme colors.Theme) {
	cm := r.colors.Colors(f, flags, theme)
	minimap := flags.Has(styles.Minimap)

	fill := frameRect
	if !minimap {
		gap := r.gapThickness()
		fill.W -= gap
		fill.H -= gap
	}
	if fill = fill.Intersect(visible); !fill.Empty() {
		s.FillRect(fill, cm.Background)
	}
	if minimap {
		return
	}

	font := r.fonts.Font(f, flags)
	target := float64(visible.W - 2*r.textPadding - 2*r.gapWidth)
	text := r.fitText(s, font, target, m.Title(), f)
	if strings.TrimSpace(text) == "" {
		return
	}
	x := float64(visible.X + r.textPadding + frameBorderWidth)
	y := float64(frameRect.Y) + r.textOffset(s, frameRect.H)
	s.DrawString(text, x, y, font, cm.Foreground)
}

// fitText returns the first candidate fitting target, or the clipped last
// candidate. The root frame only carries the title. It returns "" rather
// than a label too short to read.
func (r *FrameRenderer[T]) fitText(s Surface, font styles.Font, target float64, title string, f *frame.Box[T]) string {
	var text string
	if f.IsRoot() {
		text = title
		if strings.TrimSpace(text) == "" {
			return ""
		}
		if s.StringWidth(font, text) <= target {
			return text
		}
	} else {
		for _, candidate := range r.texts.Candidates() {
			text = candidate(f)
			if s.StringWidth(font, text) <= target {
				return text
			}
		}
	}

	text = r.texts.Clipper()(s, font, target, text, r.placeholder)
	if s.StringWidth(font, text) > target || utf8.RuneCountInString(text) <= utf8.RuneCountInString(r.placeholder)+1 {
		return ""
	}
	return text
}
