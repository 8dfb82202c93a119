// Package render turns call-stack profiles into pictures.
//
// # Flame Graphs
//
// The [flame] subpackage lays out a weighted call tree as proportional
// boxes and paints them through a host supplied surface, with hover,
// selection, search highlighting, zoom and a minimap.
//
// Key flame subpackages:
//   - [flame/frame]: Tree flattening and the immutable frame model
//   - [flame/colors]: Themes, palettes, dimming and blending math
//   - [flame/styles]: Per-frame color, font and label strategies
//   - [flame/sink]: Output surfaces (PNG, SVG, terminal cells, JSON)
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the heaviest paths of a call tree as a
// directed graph using Graphviz.
//
//	dot := nodelink.ToDOT(root, nodelink.Options{MaxDepth: 8})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [flame]: github.com/matzehuels/stackflame/pkg/render/flame
// [flame/frame]: github.com/matzehuels/stackflame/pkg/render/flame/frame
// [flame/colors]: github.com/matzehuels/stackflame/pkg/render/flame/colors
// [flame/styles]: github.com/matzehuels/stackflame/pkg/render/flame/styles
// [flame/sink]: github.com/matzehuels/stackflame/pkg/render/flame/sink
// [nodelink]: github.com/matzehuels/stackflame/pkg/render/nodelink
package render
