// Package pkg provides the core libraries for Stackflame flame graph
// visualization.
//
// # Overview
//
// Stackflame turns sampled call stacks into interactive flame graphs: every
// frame is a box whose width is proportional to its total weight, resting on
// (or hanging from) the frame that called it. The pkg directory is organized
// into four areas:
//
//  1. [profile] - The weighted call tree and its input formats
//  2. [render] - Layout, painting and interaction (hover, select, zoom)
//  3. [pipeline] - Orchestration (parse → layout → render)
//  4. Infrastructure - [cache], [session], [observability], [errors]
//
// # Architecture
//
// The typical data flow through Stackflame:
//
//	Collapsed stacks / JSON tree
//	         ↓
//	    [profile] package (parse, sort, merge)
//	         ↓
//	    [render/flame/frame] package (flatten into an immutable model)
//	         ↓
//	    [render/flame] package (engine: paint, hit-test, zoom)
//	         ↓
//	    PNG/SVG/terminal/DOT output
//
// # Quick Start
//
// Parse a profile and render it to SVG:
//
//	opts := pipeline.Options{Path: "cpu.folded", Formats: []string{"svg"}}
//	res, err := pipeline.NewRunner(nil, nil, logger).Execute(ctx, opts)
//	svg := res.Artifacts["svg"]
//
// Drive the engine directly:
//
//	root, _ := pipeline.Parse(ctx, data, opts)
//	m, _ := pipeline.Layout(ctx, root, opts)
//	e, _ := pipeline.NewEngine(m, opts)
//	png, _ := pipeline.RenderPNG(e, 1200, colors.Light)
//
// # Main Packages
//
// [profile] - Call tree nodes, the collapsed-stack and JSON readers, frame
// kinds and the top-N self/total table.
//
// [render/flame] - The flame graph engine. Owns the per-view state (hover,
// selection, highlights, zoom, icicle orientation, theme) and paints through a
// host supplied surface. Also computes zoom targets, zoom animations and
// minimap thumbnails.
//
// [render/nodelink] - Heaviest call paths as a Graphviz diagram.
//
// [pipeline] - The parse → layout → render pipeline shared by the CLI
// commands and the HTTP server, with artifact caching.
//
// [session] - Saved views (canvas width, scroll, selection, search) with
// memory, file and cache-backed stores.
//
// [cache] - Content-addressed caching backed by the filesystem or Redis.
//
// [observability] - Hook interfaces for pipeline, cache, minimap and server
// events.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [profile]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/profile
// [render]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/render
// [render/flame]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/render/flame
// [render/flame/frame]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/render/flame/frame
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stackflame/pkg/errors
package pkg
