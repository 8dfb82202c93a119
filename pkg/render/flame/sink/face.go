package sink

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

// faceOf returns the face of f, or a fixed 7x13 face when f has none.
func faceOf(f styles.Font) font.Face {
	if f.Face != nil {
		return f.Face
	}
	return basicfont.Face7x13
}

func faceMetrics(f styles.Font) flame.FontMetrics {
	m := faceOf(f).Metrics()
	return flame.FontMetrics{Ascent: fixedToFloat(m.Ascent), Descent: fixedToFloat(m.Descent)}
}

func faceWidth(f styles.Font, s string) float64 {
	return fixedToFloat(font.MeasureString(faceOf(f), s))
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
