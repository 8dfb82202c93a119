package flame

import (
	"image"
	"image/color"

	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

// FontMetrics are the vertical metrics of a font in pixels.
type FontMetrics struct {
	Ascent  float64
	Descent float64
}

// Surface is the drawing target supplied by the host. Coordinates are in
// pixels with the origin at the top left and y growing downward.
//
// Surfaces also measure text, which makes them a [styles.Measurer].
type Surface interface {
	FillRect(r Rect, c color.NRGBA)
	StrokeRect(r Rect, c color.NRGBA)
	// DrawString draws s with its baseline starting at (x, y).
	DrawString(s string, x, y float64, f styles.Font, c color.NRGBA)
	Metrics(f styles.Font) FontMetrics
	StringWidth(f styles.Font, s string) float64
}

// Canvas is a Surface backed by an image, used for detached renders such as
// the minimap.
type Canvas interface {
	Surface
	Image() image.Image
}

// CanvasFactory allocates a fresh canvas of the given pixel size.
type CanvasFactory func(width, height int) Canvas
