package flame

import (
	"math"
	"time"
)

// DefaultZoomDuration is the length of a zoom transition.
const DefaultZoomDuration = 400 * time.Millisecond

// Ease maps linear progress in [0,1] onto a sine ease-out curve.
func Ease(progress float64) float64 {
	progress = min(max(progress, 0), 1)
	return math.Sin(progress * math.Pi / 2)
}

// Interpolate returns the geometry between from and to at the given linear
// progress. The result depends only on its arguments, so a transition can be
// stopped at any tick.
func Interpolate[T any](from, to ZoomTarget[T], progress float64) ZoomTarget[T] {
	p := Ease(progress)
	lerp := func(a, b int) int { return a + int(math.Round(float64(b-a)*p)) }
	return ZoomTarget[T]{
		X:      lerp(from.X, to.X),
		Y:      lerp(from.Y, to.Y),
		Width:  lerp(from.Width, to.Width),
		Height: lerp(from.Height, to.Height),
		Frame:  to.Frame,
	}
}

// ZoomAnimation drives a transition from one geometry to another over a
// fixed duration. Hosts call At on each timer tick and stop ticking once it
// reports done.
type ZoomAnimation[T any] struct {
	from, to ZoomTarget[T]
	start    time.Time
	duration time.Duration
}

// NewZoomAnimation starts a transition at start.
func NewZoomAnimation[T any](from, to ZoomTarget[T], start time.Time, duration time.Duration) *ZoomAnimation[T] {
	return &ZoomAnimation[T]{from: from, to: to, start: start, duration: duration}
}

// Target returns the final geometry.
func (a *ZoomAnimation[T]) Target() ZoomTarget[T] { return a.to }

// Progress returns the linear progress at now, clamped to [0,1].
func (a *ZoomAnimation[T]) Progress(now time.Time) float64 {
	if a.duration <= 0 {
		return 1
	}
	return min(max(float64(now.Sub(a.start))/float64(a.duration), 0), 1)
}

// At returns the geometry at now and whether the transition is over.
func (a *ZoomAnimation[T]) At(now time.Time) (ZoomTarget[T], bool) {
	p := a.Progress(now)
	if p >= 1 {
		return a.to, true
	}
	return Interpolate(a.from, a.to, p), false
}
