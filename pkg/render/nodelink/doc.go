// Package nodelink renders profile call trees as node-link diagrams.
//
// # Overview
//
// A flame graph shows where time goes by width; a node-link diagram shows
// the same call tree as boxes connected by arrows, which is easier to
// follow for narrow, deep paths. The diagram keeps the heaviest part of the
// tree: levels beyond Options.MaxDepth and nodes below Options.MinWidth of
// the total weight are dropped.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, nodelink.Options{MaxDepth: 8, MinWidth: 0.01})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Edges are labeled with the callee's share of the total weight and drawn
// thicker for heavier calls. Options.Fill reuses the flame graph colors.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering.
package nodelink
