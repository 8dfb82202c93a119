package flame

import (
	"image"
	"image/color"
	"testing"
	"unicode/utf8"

	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

type node struct {
	name     string
	weight   float64
	children []*node
}

func n(name string, weight float64, children ...*node) *node {
	return &node{name: name, weight: weight, children: children}
}

func buildModel(t *testing.T, title string, root *node) *frame.Model[*node] {
	t.Helper()
	boxes, err := frame.Flatten(root, frame.Tree[*node]{
		Children: func(n *node) []*node { return n.children },
		Weight:   func(n *node) float64 { return n.weight },
	})
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	m, err := frame.NewModel(title, boxes, frame.WithEquality(frame.KeyEquality(func(n *node) string { return n.name })))
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

func byName(m *frame.Model[*node], name string) *frame.Box[*node] {
	for i := range m.Len() {
		if f := m.Frame(i); f.Node.name == name {
			return f
		}
	}
	return nil
}

type drawCall struct {
	op    string
	rect  Rect
	text  string
	x, y  float64
	color color.NRGBA
}

// fakeSurface records draw calls. Every rune is charWidth pixels wide.
type fakeSurface struct {
	calls     []drawCall
	charWidth float64
}

func newFakeSurface() *fakeSurface { return &fakeSurface{charWidth: 1} }

func (s *fakeSurface) FillRect(r Rect, c color.NRGBA) {
	s.calls = append(s.calls, drawCall{op: "fill", rect: r, color: c})
}

func (s *fakeSurface) StrokeRect(r Rect, c color.NRGBA) {
	s.calls = append(s.calls, drawCall{op: "stroke", rect: r, color: c})
}

func (s *fakeSurface) DrawString(text string, x, y float64, _ styles.Font, c color.NRGBA) {
	s.calls = append(s.calls, drawCall{op: "text", text: text, x: x, y: y, color: c})
}

func (s *fakeSurface) Metrics(styles.Font) FontMetrics { return FontMetrics{Ascent: 10, Descent: 4} }

func (s *fakeSurface) StringWidth(_ styles.Font, text string) float64 {
	return float64(utf8.RuneCountInString(text)) * s.charWidth
}

func (s *fakeSurface) Image() image.Image { return image.NewNRGBA(image.Rect(0, 0, 1, 1)) }

func (s *fakeSurface) ops(op string) []drawCall {
	var out []drawCall
	for _, c := range s.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// testBoxHeight is ceil(ascent) + 2*padding + 2*gap for the fake metrics.
const testBoxHeight = 16

// recordingColors remembers the flags each frame was last painted with.
type recordingColors struct {
	flags map[*frame.Box[*node]]styles.Flags
}

func (r *recordingColors) Colors(f *frame.Box[*node], flags styles.Flags, _ colors.Theme) styles.ColorModel {
	if r.flags == nil {
		r.flags = make(map[*frame.Box[*node]]styles.Flags)
	}
	r.flags[f] = flags
	return styles.ColorModel{Background: colors.RGB(0x336699), Foreground: colors.White}
}

func names(f *frame.Box[*node]) string { return f.Node.name }

func newTestEngine(opts ...EngineOption[*node]) (*Engine[*node], *recordingColors) {
	rec := &recordingColors{}
	r := NewFrameRenderer[*node](rec, styles.DefaultFontProvider[*node](styles.FontSet{}), styles.NewTexts(names))
	return NewEngine(r, opts...), rec
}
