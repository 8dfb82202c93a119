package pipeline

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"strings"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/profile"
	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/sink"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
	"github.com/matzehuels/stackflame/pkg/render/nodelink"
)

// canvasBackground is the page color behind the frames.
var canvasBackground = colors.Pair{Light: colors.White, Dark: colors.RGB(0x1E1F22)}

// Background returns the page color of theme t.
func Background(t colors.Theme) color.NRGBA { return canvasBackground.For(t) }

// RenderFormat renders one artifact. Each call needs its own engine: engines
// are not safe for concurrent painting.
func RenderFormat(ctx context.Context, e *Engine, root *profile.Node, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatPNG:
		return RenderPNG(e, opts.Width, opts.ThemeValue())
	case FormatSVG:
		return RenderSVG(e, opts.Width, opts.ThemeValue(), opts.EmbedFont), nil
	case FormatJSON:
		return sink.RenderJSON(e, sink.NewRaster(1, 1, colors.White), opts.Width, profile.Name, sink.WithJSONPalette(opts.Palette))
	case FormatText:
		return []byte(RenderText(e, opts.Width, opts.ThemeValue(), false)), nil
	case FormatMinimap:
		return RenderMinimap(ctx, e, opts.MinimapWidth, opts)
	case FormatDOT:
		return RenderDOT(ctx, root, opts)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
}

// imageBounds returns the canvas of a full, unzoomed export at width.
func imageBounds(e *Engine, s flame.Surface, width int) flame.Rect {
	return flame.Rect{W: width, H: max(e.VisibleHeight(s, width), 1)}
}

// RenderPNG paints the whole graph at width and encodes it as PNG. The
// height is the visible height at that width.
func RenderPNG(e *Engine, width int, theme colors.Theme) ([]byte, error) {
	probe := sink.NewRaster(1, 1, colors.White)
	bounds := imageBounds(e, probe, width)
	r := sink.NewRaster(bounds.W, bounds.H, canvasBackground.For(theme))
	e.Paint(r, bounds, bounds)

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode PNG")
	}
	return buf.Bytes(), nil
}

// RenderSVG paints the whole graph at width as an SVG document.
func RenderSVG(e *Engine, width int, theme colors.Theme, embedFont bool) []byte {
	svgOpts := []sink.SVGOption{
		sink.WithSVGBackground(canvasBackground.For(theme)),
		sink.WithSVGTitle(e.Model().Title()),
	}
	if embedFont {
		svgOpts = append(svgOpts, sink.WithEmbeddedFont())
	}
	probe := sink.NewSVG(0, 0)
	bounds := imageBounds(e, probe, width)
	s := sink.NewSVG(bounds.W, bounds.H, svgOpts...)
	e.Paint(s, bounds, bounds)
	return s.Bytes()
}

// RenderViewport paints the part of the graph inside view, the whole graph
// being canvasWidth wide, as a view.W by view.H PNG or SVG. view is in
// canvas coordinates.
func RenderViewport(e *Engine, canvasWidth int, view flame.Rect, format string) ([]byte, error) {
	if view.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty viewport %dx%d", view.W, view.H)
	}
	theme := e.Theme()
	var s flame.Surface
	switch format {
	case FormatPNG:
		s = sink.NewRaster(view.W, view.H, canvasBackground.For(theme))
	case FormatSVG:
		s = sink.NewSVG(view.W, view.H,
			sink.WithSVGBackground(canvasBackground.For(theme)),
			sink.WithSVGTitle(e.Model().Title()))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "viewport format %s", format)
	}

	// Shift the canvas so that the viewport lands at the surface origin.
	canvas := imageBounds(e, s, canvasWidth)
	canvas.X, canvas.Y = -view.X, -view.Y
	e.Paint(s, canvas, flame.Rect{W: view.W, H: view.H})

	switch s := s.(type) {
	case *sink.Raster:
		var buf bytes.Buffer
		if err := s.EncodePNG(&buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode PNG")
		}
		return buf.Bytes(), nil
	case *sink.SVG:
		return s.Bytes(), nil
	}
	return nil, nil
}

// TextRenderer returns a copy of r laid out for character cells: one row
// per level, no padding and no gaps.
func TextRenderer(r *flame.FrameRenderer[*profile.Node]) *flame.FrameRenderer[*profile.Node] {
	return r.WithGaps(false).WithSpacing(0, 0)
}

// RenderText paints the whole graph on a character grid of the given
// number of columns. With styled set the output carries terminal colors,
// otherwise it is plain text.
func RenderText(e *Engine, columns int, theme colors.Theme, styled bool) string {
	saved := e.Renderer()
	e.SetRenderer(TextRenderer(saved))
	defer e.SetRenderer(saved)

	probe := sink.NewCells(0, 0, colors.White)
	bounds := imageBounds(e, probe, columns)
	c := sink.NewCells(bounds.W, bounds.H, canvasBackground.For(theme))
	e.Paint(c, bounds, bounds)
	if styled {
		return c.Render()
	}

	lines := make([]string, bounds.H)
	for y := range bounds.H {
		lines[y] = strings.TrimRight(c.Line(y), " ")
	}
	return strings.Join(lines, "\n") + "\n"
}

// RenderMinimap paints the minimap thumbnail and encodes it as PNG.
func RenderMinimap(ctx context.Context, e *Engine, width int, opts Options) ([]byte, error) {
	gen := flame.NewMinimapGenerator[*profile.Node](sink.RasterFactory(), opts.Logger)
	m, err := gen.Generate(ctx, e.Snapshot(width))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.Image); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode minimap")
	}
	return buf.Bytes(), nil
}

// RenderDOT renders the call tree as a node-link SVG, colored like the
// flame graph.
func RenderDOT(ctx context.Context, root *profile.Node, opts Options) ([]byte, error) {
	dot, err := DOT(root, opts)
	if err != nil {
		return nil, err
	}
	return nodelink.RenderSVG(ctx, dot)
}

// DOT returns the Graphviz source of the call tree.
func DOT(root *profile.Node, opts Options) (string, error) {
	palette, err := colors.LookupPalette(opts.Palette)
	if err != nil {
		return "", err
	}
	mode, err := profile.ParseColorMode(opts.ColorMode)
	if err != nil {
		return "", err
	}
	base := profile.BaseColor(mode, palette)
	return nodelink.ToDOT(root, nodelink.Options{
		MaxDepth: opts.DotDepth,
		MinWidth: opts.DotMinWidth,
		Detailed: true,
		Fill: func(n *profile.Node) color.NRGBA {
			if n == root {
				return styles.RootBackground.For(opts.ThemeValue())
			}
			return base(&frame.Box[*profile.Node]{Node: n, Depth: 1})
		},
	}), nil
}
