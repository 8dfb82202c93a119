package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"

	"github.com/matzehuels/stackflame/pkg/fonts"
	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

// SVGOption configures an [SVG] surface.
type SVGOption func(*SVG)

// WithSVGBackground fills the document background.
func WithSVGBackground(c color.NRGBA) SVGOption { return func(s *SVG) { s.background = c } }

// WithSVGTitle sets the document title.
func WithSVGTitle(title string) SVGOption { return func(s *SVG) { s.title = title } }

// WithEmbeddedFont embeds the regular label font so text renders with the
// metrics used for layout.
func WithEmbeddedFont() SVGOption { return func(s *SVG) { s.embedFont = true } }

// SVG is a [flame.Surface] that accumulates SVG elements. Text is measured
// with the same faces as [Raster], so labels are clipped identically.
type SVG struct {
	width, height int
	background    color.NRGBA
	title         string
	embedFont     bool
	body          bytes.Buffer
}

// NewSVG returns an empty width by height document.
func NewSVG(width, height int, opts ...SVGOption) *SVG {
	s := &SVG{width: width, height: height}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FillRect implements [flame.Surface].
func (s *SVG) FillRect(r flame.Rect, c color.NRGBA) {
	fmt.Fprintf(&s.body, `  <rect x="%d" y="%d" width="%d" height="%d" %s/>`+"\n", r.X, r.Y, r.W, r.H, paint("fill", c))
}

// StrokeRect implements [flame.Surface].
func (s *SVG) StrokeRect(r flame.Rect, c color.NRGBA) {
	fmt.Fprintf(&s.body, `  <rect x="%.1f" y="%.1f" width="%d" height="%d" fill="none" stroke-width="1" %s/>`+"\n",
		float64(r.X)+0.5, float64(r.Y)+0.5, r.W, r.H, paint("stroke", c))
}

// DrawString implements [flame.Surface].
func (s *SVG) DrawString(text string, x, y float64, f styles.Font, c color.NRGBA) {
	size := f.Size
	if size <= 0 {
		size = fonts.DefaultSize
	}
	weight, slant := "normal", "normal"
	if f.Style.IsBold() {
		weight = "bold"
	}
	if f.Style.IsItalic() {
		slant = "italic"
	}
	fmt.Fprintf(&s.body, `  <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="%s" font-style="%s" %s>%s</text>`+"\n",
		x, y, size, weight, slant, paint("fill", c), escapeXML(text))
}

// Metrics implements [flame.Surface].
func (s *SVG) Metrics(f styles.Font) flame.FontMetrics { return faceMetrics(f) }

// StringWidth implements [flame.Surface].
func (s *SVG) StringWidth(f styles.Font, text string) float64 { return faceWidth(f, text) }

// Bytes returns the complete document.
func (s *SVG) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.width, s.height, s.width, s.height)
	if s.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(s.title))
	}
	s.renderDefs(&buf)
	if s.background.A > 0 {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" %s/>`+"\n", paint("fill", s.background))
	}
	fmt.Fprintf(&buf, `  <g font-family="%s">`+"\n", fonts.FallbackFontFamily)
	buf.Write(s.body.Bytes())
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func (s *SVG) renderDefs(buf *bytes.Buffer) {
	if !s.embedFont {
		return
	}
	fmt.Fprintf(buf, "  <defs><style>@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }</style></defs>\n",
		fonts.FontFamily, fonts.RegularTTFBase64())
}

// paint renders an SVG paint attribute with its opacity when translucent.
func paint(attr string, c color.NRGBA) string {
	hex := colors.Hex(colors.WithAlpha(c, 0xFF))
	if c.A == 0xFF {
		return fmt.Sprintf(`%s="%s"`, attr, hex)
	}
	return fmt.Sprintf(`%s="%s" %s-opacity="%.3f"`, attr, hex, attr, float64(c.A)/255)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
