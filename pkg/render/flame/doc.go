// Package flame paints flame graphs and icicle graphs from a [frame.Model].
//
// # Engine
//
// [Engine] owns one model and the interaction state around it. Given the
// canvas bounds and the visible part of the canvas it:
//
//   - computes how many levels are worth showing at a width ([Engine.VisibleDepth])
//   - paints only frames wider than [VisibilityThreshold] that intersect the view
//   - maps pointer positions back to frames ([Engine.FrameAt])
//   - computes the canvas size and scroll offset that zoom onto a frame
//
// Painting goes through a [Surface], the only contact with the host. The
// sink subpackage provides raster, SVG, terminal and JSON surfaces.
//
//	r := flame.NewFrameRenderer(colorProvider, fontProvider, textProvider)
//	e := flame.NewEngine(r)
//	if err := e.Init(model); err != nil {
//	    return err
//	}
//	h := e.VisibleHeight(surface, width)
//	e.Paint(surface, flame.Rect{W: width, H: h}, view)
//
// # Minimap
//
// The thumbnail is painted at one pixel per level, colors only. The engine
// is confined to one goroutine, so a minimap is painted from a [Snapshot]
// that copies the scene. Results carry the engine generation they were taken
// at; hosts drop results for which [Engine.IsCurrent] is false.
//
// # Zoom
//
// [Engine.ZoomTarget] returns the geometry that stretches a frame to the
// viewport width. [ZoomAnimation] interpolates from the current geometry to
// the target with a sine ease over [DefaultZoomDuration].
//
// [frame.Model]: github.com/matzehuels/stackflame/pkg/render/flame/frame.Model
package flame
