// Package sink provides the concrete drawing surfaces for flame graphs.
//
//   - [Raster] paints into an image with fogleman/gg and encodes PNG
//   - [SVG] writes vector markup with the Go font embedded
//   - [Cells] paints into a terminal character grid styled with lipgloss
//   - [RenderJSON] exports the laid out frames with their colors
//
// Raster and SVG measure text with real font faces. Cells measures in
// terminal columns, so an engine painting cells should use a renderer
// without padding or gaps to get one row per level.
package sink
