// Package fonts provides the label fonts used by the raster and SVG sinks.
//
// The Go font family ships inside golang.org/x/image, so labels render the
// same everywhere without system fonts. The TTF data is parsed once; faces
// are created per caller because a face is not safe for concurrent use.
package fonts

import (
	"encoding/base64"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

// DefaultSize is the label size in points at 72 DPI, so one point is one pixel.
const DefaultSize = 12

// FontFamily is the CSS font-family name of the embedded font.
const FontFamily = "Go"

// FallbackFontFamily provides fallback fonts for viewers that ignore the
// embedded font.
const FallbackFontFamily = `'Go', 'DejaVu Sans', Verdana, sans-serif`

// TTF returns the raw font data of a style.
func TTF(style styles.FontStyle) []byte {
	switch style {
	case styles.Italic:
		return goitalic.TTF
	case styles.Bold:
		return gobold.TTF
	case styles.BoldItalic:
		return gobolditalic.TTF
	default:
		return goregular.TTF
	}
}

// Parsed fonts (computed once on first access).
var (
	parsed     [4]*opentype.Font
	parsedErr  error
	parsedOnce sync.Once
)

func parse() error {
	parsedOnce.Do(func() {
		for _, style := range []styles.FontStyle{styles.Regular, styles.Italic, styles.Bold, styles.BoldItalic} {
			f, err := opentype.Parse(TTF(style))
			if err != nil {
				parsedErr = errors.Wrap(errors.ErrCodeInternal, err, "parse font style %d", style)
				return
			}
			parsed[style] = f
		}
	})
	return parsedErr
}

// Face returns a new face of the given style and pixel size.
func Face(style styles.FontStyle, size float64) (font.Face, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultSize
	}
	return opentype.NewFace(parsed[style], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Set returns the four label fonts at the given size, freshly allocated.
func Set(size float64) (styles.FontSet, error) {
	if size <= 0 {
		size = DefaultSize
	}
	var set styles.FontSet
	for _, slot := range []struct {
		dst   *styles.Font
		style styles.FontStyle
	}{
		{&set.Regular, styles.Regular},
		{&set.Italic, styles.Italic},
		{&set.Bold, styles.Bold},
		{&set.BoldItalic, styles.BoldItalic},
	} {
		face, err := Face(slot.style, size)
		if err != nil {
			return styles.FontSet{}, err
		}
		*slot.dst = styles.Font{Face: face, Style: slot.style, Size: size}
	}
	return set, nil
}

// Cache for base64-encoded fonts (computed once on first access).
var (
	regularBase64     string
	regularBase64Once sync.Once
)

// RegularTTFBase64 returns the regular font as a base64 string for
// embedding in SVG documents. The result is cached after first computation.
func RegularTTFBase64() string {
	regularBase64Once.Do(func() {
		regularBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return regularBase64
}
