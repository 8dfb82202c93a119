package styles

import (
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
)

// Placeholder is appended to clipped labels.
const Placeholder = "…"

// Measurer reports the rendered width of a string in a font.
type Measurer interface {
	StringWidth(f Font, s string) float64
}

// Clipper shortens text to fit width, appending placeholder when it cuts.
type Clipper func(m Measurer, f Font, width float64, text, placeholder string) string

// ClipNone returns the text untouched.
func ClipNone(_ Measurer, _ Font, _ float64, text, _ string) string { return text }

// ClipRight keeps the longest prefix that fits together with the
// placeholder. When not even the placeholder fits it returns the
// placeholder alone.
func ClipRight(m Measurer, f Font, width float64, text, placeholder string) string {
	avail := width - m.StringWidth(f, placeholder)
	if avail <= 0 {
		return placeholder
	}
	used := 0.0
	for i, r := range text {
		used += m.StringWidth(f, string(r))
		if used > avail {
			return text[:i] + placeholder
		}
	}
	return text + placeholder
}

// TextProvider lists the label candidates of a frame, most preferred first,
// and the clipper applied to the last one when none fits.
type TextProvider[T any] interface {
	Candidates() []func(f *frame.Box[T]) string
	Clipper() Clipper
}

// Texts is the default [TextProvider].
type Texts[T any] struct {
	candidates []func(f *frame.Box[T]) string
	clip       Clipper
}

// NewTexts builds a provider clipping on the right.
func NewTexts[T any](candidates ...func(f *frame.Box[T]) string) *Texts[T] {
	return &Texts[T]{candidates: candidates, clip: ClipRight}
}

// WithClipper returns a copy using c.
func (t *Texts[T]) WithClipper(c Clipper) *Texts[T] {
	return &Texts[T]{candidates: t.candidates, clip: c}
}

// Candidates implements [TextProvider].
func (t *Texts[T]) Candidates() []func(f *frame.Box[T]) string { return t.candidates }

// Clipper implements [TextProvider].
func (t *Texts[T]) Clipper() Clipper { return t.clip }
