package styles

import (
	"golang.org/x/image/font"

	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
)

// FontStyle is the weight/slant combination of a label font.
type FontStyle uint8

const (
	Regular FontStyle = iota
	Italic
	Bold
	BoldItalic
)

// IsBold reports whether the style is bold.
func (s FontStyle) IsBold() bool { return s == Bold || s == BoldItalic }

// IsItalic reports whether the style is italic.
func (s FontStyle) IsItalic() bool { return s == Italic || s == BoldItalic }

// Font is a label font. Face provides metrics to raster and vector
// surfaces; character-cell surfaces ignore it and only honor Style.
type Font struct {
	Face  font.Face
	Style FontStyle
	Size  float64
}

// FontSet holds the four precomputed fonts a provider chooses from.
type FontSet struct {
	Regular    Font
	Italic     Font
	Bold       Font
	BoldItalic Font
}

// Select picks bold for highlighted frames and italic for partially
// visible ones.
func (s FontSet) Select(flags Flags) Font {
	if flags.Has(Highlighted) {
		if flags.Has(Partial) {
			return s.BoldItalic
		}
		return s.Bold
	}
	if flags.Has(Partial) {
		return s.Italic
	}
	return s.Regular
}

// FontProvider chooses the label font of a frame. It is also asked with a
// nil frame and zero flags for the reference font used to size boxes.
type FontProvider[T any] interface {
	Font(f *frame.Box[T], flags Flags) Font
}

// FontFunc adapts a function to [FontProvider].
type FontFunc[T any] func(f *frame.Box[T], flags Flags) Font

// Font implements [FontProvider].
func (fn FontFunc[T]) Font(f *frame.Box[T], flags Flags) Font { return fn(f, flags) }

// DefaultFontProvider selects from set with [FontSet.Select].
func DefaultFontProvider[T any](set FontSet) FontProvider[T] {
	return FontFunc[T](func(_ *frame.Box[T], flags Flags) Font { return set.Select(flags) })
}
