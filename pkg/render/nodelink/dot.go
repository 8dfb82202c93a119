package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/profile"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
)

// DefaultMaxDepth bounds the exported tree when Options.MaxDepth is zero.
const DefaultMaxDepth = 12

// Options configures call-tree diagram generation.
type Options struct {
	// MaxDepth is the number of levels below the root to include.
	MaxDepth int

	// MinWidth drops nodes whose share of the total weight is below it.
	MinWidth float64

	// Detailed adds the inclusive share and self weight to node labels.
	Detailed bool

	// Fill colors a node. Nodes are white when nil.
	Fill func(n *profile.Node) color.NRGBA
}

// ToDOT converts the call tree rooted at root to Graphviz DOT. Nodes are
// numbered in pre-order; edges carry the callee's share of the total.
func ToDOT(root *profile.Node, opts Options) string {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	total := root.Value

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#666666\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	var edges []string
	next := 0
	var visit func(n *profile.Node, depth int) int
	visit = func(n *profile.Node, depth int) int {
		id := next
		next++
		fmt.Fprintf(&buf, "  n%d [%s];\n", id, strings.Join(fmtAttrs(n, share(n, total), opts), ", "))
		if depth >= opts.MaxDepth {
			return id
		}
		for _, c := range n.Children {
			s := share(c, total)
			if s < opts.MinWidth || c.Value <= 0 {
				continue
			}
			child := visit(c, depth+1)
			edges = append(edges, fmt.Sprintf("  n%d -> n%d [label=%q, penwidth=%.2f];\n", id, child, percent(s), 1+4*s))
		}
		return id
	}
	visit(root, 0)

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func share(n *profile.Node, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return n.Value / total
}

func percent(s float64) string {
	return strconv.FormatFloat(s*100, 'f', 1, 64) + "%"
}

func fmtLabel(n *profile.Node, s float64, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{percent(s)}
	if n.Self > 0 {
		parts = append(parts, "self: "+strconv.FormatFloat(n.Self, 'f', -1, 64))
	}
	if n.Kind != profile.KindUnknown {
		parts = append(parts, n.Kind.String())
	}
	return n.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *profile.Node, s float64, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, s, opts.Detailed))}
	if opts.Fill != nil {
		fill := colors.WithAlpha(opts.Fill(n), 0xFF)
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", colors.Hex(fill)), fmt.Sprintf("fontcolor=%q", colors.Hex(colors.Foreground(fill, colors.Light))))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
