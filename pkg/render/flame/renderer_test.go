package flame

import (
	"testing"

	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

func constant(s string) func(*frame.Box[*node]) string {
	return func(*frame.Box[*node]) string { return s }
}

func TestFitText(t *testing.T) {
	texts := styles.NewTexts(constant("com.foo.Bar#baz(int)"), constant("baz(int)"), constant("baz"))
	r := NewFrameRenderer[*node](&recordingColors{}, styles.DefaultFontProvider[*node](styles.FontSet{}), texts)
	leaf := &frame.Box[*node]{Node: n("baz", 1), StartX: 0, EndX: 0.5, Depth: 1}
	s := newFakeSurface()

	tests := []struct {
		name   string
		target float64
		want   string
	}{
		{"longest fits", 20, "com.foo.Bar#baz(int)"},
		{"medium fits", 10, "baz(int)"},
		{"shortest fits", 3, "baz"},
		{"clip too short to read", 2, ""},
		{"nothing fits", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.fitText(s, styles.Font{}, tt.target, "", leaf); got != tt.want {
				t.Errorf("fitText(%v) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}

	clipped := r.WithTexts(styles.NewTexts(constant("com.foo.Bar#baz(int)"), constant("bazooka")))
	if got := clipped.fitText(s, styles.Font{}, 4, "", leaf); got != "baz…" {
		t.Errorf("fitText() = %q, want clipped last candidate", got)
	}
}

func TestFitTextRootUsesTitle(t *testing.T) {
	r := NewFrameRenderer[*node](&recordingColors{}, styles.DefaultFontProvider[*node](styles.FontSet{}), styles.NewTexts(constant("candidate")))
	root := &frame.Box[*node]{Node: n("root", 1), EndX: 1}
	s := newFakeSurface()

	tests := []struct {
		title  string
		target float64
		want   string
	}{
		{"all samples", 50, "all samples"},
		{"all samples", 6, "all s…"},
		{"all", 2, ""},
		{"   ", 50, ""},
	}
	for _, tt := range tests {
		if got := r.fitText(s, styles.Font{}, tt.target, tt.title, root); got != tt.want {
			t.Errorf("fitText(%q, %v) = %q, want %q", tt.title, tt.target, got, tt.want)
		}
	}
}

func TestRendererBoxHeight(t *testing.T) {
	s := newFakeSurface()
	fonts := styles.DefaultFontProvider[*node](styles.FontSet{})
	texts := styles.NewTexts(names)

	if got := NewFrameRenderer[*node](&recordingColors{}, fonts, texts).BoxHeight(s); got != testBoxHeight {
		t.Errorf("BoxHeight() = %d, want %d", got, testBoxHeight)
	}
	tight := NewFrameRenderer[*node](&recordingColors{}, fonts, texts, WithTextPadding[*node](0), WithGapWidth[*node](0))
	if got := tight.BoxHeight(s); got != 10 {
		t.Errorf("BoxHeight() without padding = %d, want 10", got)
	}
}

func TestRendererPaint(t *testing.T) {
	fonts := styles.DefaultFontProvider[*node](styles.FontSet{})
	m := buildModel(t, "all", n("root", 1, n("main", 1)))
	child := m.Frame(1)
	rect := Rect{X: 10, Y: testBoxHeight, W: 50, H: testBoxHeight}

	tests := []struct {
		name     string
		opts     []RendererOption[*node]
		flags    styles.Flags
		wantFill Rect
		wantText bool
	}{
		{"gaps", nil, 0, Rect{X: 10, Y: testBoxHeight, W: 49, H: testBoxHeight - 1}, true},
		{"no gaps", []RendererOption[*node]{WithFrameGaps[*node](false)}, 0, rect, true},
		{"minimap ignores gaps", nil, styles.Minimap, rect, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFrameRenderer[*node](&recordingColors{}, fonts, styles.NewTexts(names), tt.opts...)
			s := newFakeSurface()
			r.Paint(s, m, child, rect, rect, tt.flags, 0)

			fills := s.ops("fill")
			if len(fills) != 1 || fills[0].rect != tt.wantFill {
				t.Errorf("fills = %+v, want %+v", fills, tt.wantFill)
			}
			if got := len(s.ops("text")) == 1; got != tt.wantText {
				t.Errorf("text drawn = %v, want %v", got, tt.wantText)
			}
		})
	}
}

func TestRendererCopies(t *testing.T) {
	r := NewFrameRenderer[*node](&recordingColors{}, styles.DefaultFontProvider[*node](styles.FontSet{}), styles.NewTexts(names))
	off := r.WithGaps(false)
	if !r.Gaps() || off.Gaps() {
		t.Error("WithGaps() should not modify the receiver")
	}
	other := &recordingColors{}
	if r.WithColors(other).Colors() != other || r.Colors() == other {
		t.Error("WithColors() should return a modified copy")
	}
	compact := r.WithSpacing(0, -3)
	if got := compact.BoxHeight(newFakeSurface()); got != 10 {
		t.Errorf("WithSpacing(0, -3).BoxHeight() = %d, want 10", got)
	}
	if got := r.BoxHeight(newFakeSurface()); got != testBoxHeight {
		t.Errorf("BoxHeight() after WithSpacing = %d, want %d", got, testBoxHeight)
	}
}
