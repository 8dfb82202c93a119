package flame

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/observability"
)

// DefaultMinimapWidth is the thumbnail width in pixels.
const DefaultMinimapWidth = 200

// Snapshot is a detached copy of everything a minimap pass reads. It can be
// painted on any goroutine while the engine keeps serving the interactive
// path.
type Snapshot[T comparable] struct {
	sc         scene[T]
	width      int
	height     int
	generation uint64
}

// Snapshot captures the engine for a thumbnail of the given width.
func (e *Engine[T]) Snapshot(width int) *Snapshot[T] {
	return &Snapshot[T]{
		sc:         e.sc,
		width:      width,
		height:     e.MinimapHeight(width),
		generation: e.Generation(),
	}
}

// Width returns the thumbnail width.
func (sn *Snapshot[T]) Width() int { return sn.width }

// Height returns the thumbnail height.
func (sn *Snapshot[T]) Height() int { return sn.height }

// Generation returns the engine generation the snapshot was taken at.
func (sn *Snapshot[T]) Generation() uint64 { return sn.generation }

// Paint draws the thumbnail onto s and returns the number of painted frames.
func (sn *Snapshot[T]) Paint(s Surface) int {
	bounds := Rect{W: sn.width, H: sn.height}
	return sn.sc.paint(s, bounds, bounds, true)
}

// Minimap is a finished thumbnail.
type Minimap struct {
	Image      image.Image
	Generation uint64
}

// MinimapGenerator paints snapshots into fresh canvases, synchronously or
// on a background goroutine.
type MinimapGenerator[T comparable] struct {
	newCanvas CanvasFactory
	logger    *log.Logger
}

// NewMinimapGenerator returns a generator allocating canvases with
// newCanvas. A nil logger falls back to the default logger.
func NewMinimapGenerator[T comparable](newCanvas CanvasFactory, logger *log.Logger) *MinimapGenerator[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &MinimapGenerator[T]{newCanvas: newCanvas, logger: logger}
}

// Generate paints sn. A panic in a strategy is recovered and returned as an
// error.
func (g *MinimapGenerator[T]) Generate(ctx context.Context, sn *Snapshot[T]) (m Minimap, err error) {
	m.Generation = sn.generation
	if sn.width <= 0 || sn.height <= 0 {
		return m, errors.New(errors.ErrCodeInvalidInput, "empty minimap %dx%d", sn.width, sn.height)
	}

	ctx = observability.Minimap().OnMinimapStart(ctx, sn.generation, sn.width)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeInternal, "minimap paint panicked: %v", r)
		}
		observability.Minimap().OnMinimapComplete(ctx, sn.generation, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return m, err
	}
	c := g.newCanvas(sn.width, sn.height)
	n := sn.Paint(c)
	m.Image = c.Image()
	g.logger.Debug("minimap painted", "generation", sn.generation, "frames", n, "width", sn.width, "height", sn.height)
	return m, nil
}

// Start paints sn on a new goroutine and hands the result to deliver.
// Failures are logged and produce no thumbnail. Callers should check the
// generation against [Engine.IsCurrent] before using the result.
func (g *MinimapGenerator[T]) Start(ctx context.Context, sn *Snapshot[T], deliver func(Minimap)) {
	go func() {
		m, err := g.Generate(ctx, sn)
		if err != nil {
			g.logger.Warn("minimap unavailable", "generation", sn.generation, "err", err)
			return
		}
		deliver(m)
	}()
}
