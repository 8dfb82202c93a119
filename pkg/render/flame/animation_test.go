package flame

import (
	"math"
	"testing"
	"time"
)

func TestEase(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, math.Sqrt2 / 2},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := Ease(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Ease(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInterpolate(t *testing.T) {
	from := ZoomTarget[string]{X: 0, Y: 100, Width: 1000, Height: 200}
	to := ZoomTarget[string]{X: 500, Y: 0, Width: 2000, Height: 400}

	if got := Interpolate(from, to, 0); got.X != from.X || got.Width != from.Width || got.Y != from.Y {
		t.Errorf("Interpolate(0) = %+v, want %+v", got, from)
	}
	if got := Interpolate(from, to, 1); got.X != to.X || got.Width != to.Width || got.Height != to.Height {
		t.Errorf("Interpolate(1) = %+v, want %+v", got, to)
	}

	prev := from
	for i := 1; i <= 10; i++ {
		got := Interpolate(from, to, float64(i)/10)
		if got.Width < prev.Width || got.Y > prev.Y {
			t.Errorf("Interpolate(%v) = %+v is not monotonic after %+v", float64(i)/10, got, prev)
		}
		prev = got
	}
}

func TestZoomAnimation(t *testing.T) {
	start := time.Unix(100, 0)
	from := ZoomTarget[string]{Width: 100}
	to := ZoomTarget[string]{Width: 300, X: 40}
	a := NewZoomAnimation(from, to, start, DefaultZoomDuration)

	if got, done := a.At(start); done || got.Width != 100 {
		t.Errorf("At(start) = %+v, %v", got, done)
	}
	mid, done := a.At(start.Add(DefaultZoomDuration / 2))
	if done || mid.Width <= 100 || mid.Width >= 300 {
		t.Errorf("At(half) = %+v, %v", mid, done)
	}
	if got, done := a.At(start.Add(DefaultZoomDuration)); !done || got != to {
		t.Errorf("At(end) = %+v, %v", got, done)
	}
	if got, done := a.At(start.Add(time.Hour)); !done || got != a.Target() {
		t.Errorf("At(late) = %+v, %v", got, done)
	}

	instant := NewZoomAnimation(from, to, start, 0)
	if _, done := instant.At(start); !done {
		t.Error("zero duration should finish immediately")
	}
}
