package colors

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Dimmed lightness targets.
const (
	dimLightL     = 0.93
	dimDarkL      = 0.20
	halfDimLightL = 0.68
	halfDimDarkL  = 0.48
)

// darkBrightnessThreshold is the perceived brightness at and above which a
// background needs dark text.
var darkBrightnessThreshold = gamma(0.45)

// Blend averages two colors weighted by their own alpha. The result takes
// the larger alpha of the two.
func Blend(c0, c1 color.NRGBA) color.NRGBA {
	total := float64(c0.A) + float64(c1.A)
	if total == 0 {
		return color.NRGBA{}
	}
	w0 := float64(c0.A) / total
	w1 := float64(c1.A) / total
	return color.NRGBA{
		R: uint8(w0*float64(c0.R) + w1*float64(c1.R)),
		G: uint8(w0*float64(c0.G) + w1*float64(c1.G)),
		B: uint8(w0*float64(c0.B) + w1*float64(c1.B)),
		A: max(c0.A, c1.A),
	}
}

// Over composites src over an opaque or transparent dst.
func Over(dst, src color.NRGBA) color.NRGBA {
	if src.A == 0xFF || dst.A == 0 {
		return src
	}
	a := float64(src.A) / 0xFF
	mix := func(d, s uint8) uint8 { return uint8(float64(s)*a + float64(d)*(1-a) + 0.5) }
	return color.NRGBA{
		R: mix(dst.R, src.R),
		G: mix(dst.G, src.G),
		B: mix(dst.B, src.B),
		A: max(dst.A, src.A),
	}
}

// Dim washes c out strongly: lightness 0.93 for the light theme and 0.20 for
// the dark theme, with saturation capped.
func Dim(c color.NRGBA) Pair {
	return washOut(c, dimLightL, dimDarkL)
}

// HalfDim washes c out moderately: lightness 0.68 (light) and 0.48 (dark).
func HalfDim(c color.NRGBA) Pair {
	return washOut(c, halfDimLightL, halfDimDarkL)
}

func washOut(c color.NRGBA, lightL, darkL float64) Pair {
	h, s, _ := HSL(c)

	lightS := s
	if lightS >= 0.2 {
		lightS = 0.4
	}
	darkS := s
	if darkS >= 0.1 {
		darkS = 0.2
	}
	return Pair{
		Light: FromHSL(h, lightS, lightL, c.A),
		Dark:  FromHSL(h, darkS, darkL, c.A),
	}
}

// HSL returns hue in degrees [0,360), saturation and lightness in [0,1].
func HSL(c color.NRGBA) (h, s, l float64) {
	return toColorful(c).Hsl()
}

// FromHSL builds an opaque-or-translucent color from HSL components.
func FromHSL(h, s, l float64, alpha uint8) color.NRGBA {
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Brightness returns the perceived brightness of c on a 0..255 scale,
// computed from sRGB relative luminance.
func Brightness(c color.NRGBA) int {
	return gamma(
		0.212655*inverseGamma(c.R) +
			0.715158*inverseGamma(c.G) +
			0.072187*inverseGamma(c.B),
	)
}

// IsBright reports whether dark text reads better than white text on c.
func IsBright(c color.NRGBA) bool {
	return Brightness(c) >= darkBrightnessThreshold
}

// Foreground picks the text color for a background under the given theme.
func Foreground(bg color.NRGBA, t Theme) color.NRGBA {
	if !IsBright(bg) {
		return White
	}
	if t == Dark {
		return PanelBackground
	}
	return PanelForeground
}

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.NRGBA, alpha uint8) color.NRGBA {
	c.A = alpha
	return c
}

func gamma(v float64) int {
	if v <= 0.0031308 {
		v *= 12.92
	} else {
		v = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return int(math.Round(v * 255))
}

func inverseGamma(ic uint8) float64 {
	c := float64(ic) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}
