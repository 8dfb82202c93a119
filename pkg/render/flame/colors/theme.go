// Package colors implements the color arithmetic of the flame graph:
// theme-aware color pairs, alpha blending, HSL dimming, perceived
// brightness and palette mapping.
//
// The theme is always an explicit argument. No function here reads global
// state, so every result is a pure function of its inputs and safe to
// memoize with [Memo].
package colors

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/stackflame/pkg/errors"
)

// Theme selects the light or dark variant of theme dependent colors.
type Theme uint8

const (
	Light Theme = iota
	Dark
)

// ParseTheme parses "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "light":
		return Light, nil
	case "dark":
		return Dark, nil
	}
	return Light, errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (want light or dark)", s)
}

func (t Theme) String() string {
	if t == Dark {
		return "dark"
	}
	return "light"
}

// Pair holds the light and dark variants of one logical color.
type Pair struct {
	Light color.NRGBA
	Dark  color.NRGBA
}

// Same returns a pair using c for both themes.
func Same(c color.NRGBA) Pair { return Pair{Light: c, Dark: c} }

// For returns the variant matching the theme.
func (p Pair) For(t Theme) color.NRGBA {
	if t == Dark {
		return p.Dark
	}
	return p.Light
}

// ARGB decodes a packed 0xAARRGGBB value.
func ARGB(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(v >> 24)}
}

// RGB decodes a packed opaque 0xRRGGBB value.
func RGB(v uint32) color.NRGBA {
	return ARGB(0xFF000000 | v)
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa". The leading '#' is
// optional.
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	alpha := uint8(0xFF)
	if len(s) == 9 {
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad alpha in %q", s)
		}
		alpha = a
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Hex formats c as "#rrggbb", or "#rrggbbaa" when it is translucent.
func Hex(c color.NRGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Common colors.
var (
	White = RGB(0xFFFFFF)
	Black = RGB(0x000000)

	// PanelForeground is the text color used on bright backgrounds in light
	// mode; PanelBackground is its counterpart in dark mode.
	PanelForeground = RGB(0x000000)
	PanelBackground = RGB(0x3C3F41)

	TranslucentBlack60 = ARGB(0x60000000)
	TranslucentWhite60 = ARGB(0x60FFFFFF)
)
