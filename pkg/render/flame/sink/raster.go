package sink

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

// Raster is a [flame.Canvas] backed by an in-memory RGBA image.
type Raster struct {
	dc *gg.Context
}

// NewRaster allocates a width by height image filled with background. A
// zero background leaves the image transparent.
func NewRaster(width, height int, background color.NRGBA) *Raster {
	dc := gg.NewContext(max(width, 1), max(height, 1))
	if background.A > 0 {
		dc.SetColor(background)
		dc.Clear()
	}
	return &Raster{dc: dc}
}

// RasterFactory returns a [flame.CanvasFactory] producing rasters with a
// transparent background, suitable for minimaps.
func RasterFactory() flame.CanvasFactory {
	return func(width, height int) flame.Canvas {
		return NewRaster(width, height, color.NRGBA{})
	}
}

// FillRect implements [flame.Surface].
func (r *Raster) FillRect(rect flame.Rect, c color.NRGBA) {
	r.dc.SetColor(c)
	r.dc.DrawRectangle(float64(rect.X), float64(rect.Y), float64(rect.W), float64(rect.H))
	r.dc.Fill()
}

// StrokeRect implements [flame.Surface]. The one pixel line is centered on
// pixel boundaries so it stays crisp.
func (r *Raster) StrokeRect(rect flame.Rect, c color.NRGBA) {
	r.dc.SetColor(c)
	r.dc.SetLineWidth(1)
	r.dc.DrawRectangle(float64(rect.X)+0.5, float64(rect.Y)+0.5, float64(rect.W), float64(rect.H))
	r.dc.Stroke()
}

// DrawString implements [flame.Surface].
func (r *Raster) DrawString(s string, x, y float64, f styles.Font, c color.NRGBA) {
	r.dc.SetFontFace(faceOf(f))
	r.dc.SetColor(c)
	r.dc.DrawString(s, x, y)
}

// Metrics implements [flame.Surface].
func (r *Raster) Metrics(f styles.Font) flame.FontMetrics { return faceMetrics(f) }

// StringWidth implements [flame.Surface].
func (r *Raster) StringWidth(f styles.Font, s string) float64 { return faceWidth(f, s) }

// Image implements [flame.Canvas].
func (r *Raster) Image() image.Image { return r.dc.Image() }

// EncodePNG writes the image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }
