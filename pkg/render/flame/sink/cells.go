package sink

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

type cell struct {
	r         rune
	fg, bg    color.NRGBA
	bold      bool
	italic    bool
	underline bool
	// wide marks the second column of a double width rune.
	wide bool
}

// Cells is a [flame.Canvas] over a terminal character grid: one pixel is
// one cell, and a string is as wide as its display columns. Strokes are
// shown by underlining the covered cells.
type Cells struct {
	width, height int
	grid          []cell
	background    color.NRGBA
}

// NewCells allocates a width by height grid.
func NewCells(width, height int, background color.NRGBA) *Cells {
	width, height = max(width, 0), max(height, 0)
	c := &Cells{width: width, height: height, grid: make([]cell, width*height), background: background}
	for i := range c.grid {
		c.grid[i] = cell{r: ' ', bg: background}
	}
	return c
}

// CellsFactory returns a [flame.CanvasFactory] producing cell grids.
func CellsFactory(background color.NRGBA) flame.CanvasFactory {
	return func(width, height int) flame.Canvas { return NewCells(width, height, background) }
}

// Size returns the grid dimensions.
func (c *Cells) Size() (width, height int) { return c.width, c.height }

func (c *Cells) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return nil
	}
	return &c.grid[y*c.width+x]
}

func (c *Cells) each(r flame.Rect, fn func(*cell)) {
	r = r.Intersect(flame.Rect{W: c.width, H: c.height})
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			fn(c.at(x, y))
		}
	}
}

// FillRect implements [flame.Surface].
func (c *Cells) FillRect(r flame.Rect, col color.NRGBA) {
	c.each(r, func(cl *cell) {
		*cl = cell{r: ' ', bg: colors.Over(cl.bg, col)}
	})
}

// StrokeRect implements [flame.Surface].
func (c *Cells) StrokeRect(r flame.Rect, col color.NRGBA) {
	c.each(r, func(cl *cell) { cl.underline = true })
}

// DrawString implements [flame.Surface]. y is the baseline, so the text
// lands on the row above it.
func (c *Cells) DrawString(s string, x, y float64, f styles.Font, col color.NRGBA) {
	row := int(math.Ceil(y)) - 1
	col0 := int(x)
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		cl := c.at(col0, row)
		if cl == nil {
			return
		}
		cl.r, cl.fg, cl.bold, cl.italic, cl.wide = r, col, f.Style.IsBold(), f.Style.IsItalic(), false
		if w == 2 {
			if next := c.at(col0+1, row); next != nil {
				next.wide = true
				next.bg = cl.bg
			}
		}
		col0 += w
	}
}

// Metrics implements [flame.Surface]. A label fills exactly one row.
func (c *Cells) Metrics(styles.Font) flame.FontMetrics { return flame.FontMetrics{Ascent: 1} }

// StringWidth implements [flame.Surface].
func (c *Cells) StringWidth(_ styles.Font, s string) float64 {
	return float64(runewidth.StringWidth(s))
}

// Image implements [flame.Canvas] with one pixel per cell background.
func (c *Cells) Image() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, c.width, c.height))
	for y := range c.height {
		for x := range c.width {
			img.SetNRGBA(x, y, c.at(x, y).bg)
		}
	}
	return img
}

// Rune returns the character at (x, y), or 0 outside the grid.
func (c *Cells) Rune(x, y int) rune {
	if cl := c.at(x, y); cl != nil && !cl.wide {
		return cl.r
	}
	return 0
}

// Background returns the background of the cell at (x, y).
func (c *Cells) Background(x, y int) color.NRGBA {
	if cl := c.at(x, y); cl != nil {
		return cl.bg
	}
	return color.NRGBA{}
}

// Line returns row y as plain text.
func (c *Cells) Line(y int) string {
	var b strings.Builder
	for x := range c.width {
		if cl := c.at(x, y); !cl.wide {
			b.WriteRune(cl.r)
		}
	}
	return b.String()
}

// Render returns the grid as styled terminal output, one line per row.
// Runs of cells sharing a style are rendered together.
func (c *Cells) Render() string {
	lines := make([]string, c.height)
	for y := range c.height {
		var line strings.Builder
		var run strings.Builder
		var style cell
		flush := func() {
			if run.Len() > 0 {
				line.WriteString(styleOf(style).Render(run.String()))
				run.Reset()
			}
		}
		for x := range c.width {
			cl := c.at(x, y)
			if cl.wide {
				continue
			}
			if x == 0 || !sameStyle(*cl, style) {
				flush()
				style = *cl
			}
			run.WriteRune(cl.r)
		}
		flush()
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bg == b.bg && a.bold == b.bold && a.italic == b.italic && a.underline == b.underline
}

func styleOf(cl cell) lipgloss.Style {
	s := lipgloss.NewStyle().
		Background(lipgloss.Color(colors.Hex(colors.WithAlpha(cl.bg, 0xFF)))).
		Bold(cl.bold).
		Italic(cl.italic).
		Underline(cl.underline)
	if cl.fg.A > 0 {
		s = s.Foreground(lipgloss.Color(colors.Hex(colors.WithAlpha(cl.fg, 0xFF))))
	}
	return s
}
