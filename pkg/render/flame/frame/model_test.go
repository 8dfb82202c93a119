package frame

import (
	"testing"

	"github.com/matzehuels/stackflame/pkg/errors"
)

func TestNewBox(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		depth      int
		wantErr    bool
	}{
		{"root", 0, 1, 0, false},
		{"reversed", 0.7, 0.2, 1, true},
		{"outside", 0.5, 1.5, 1, true},
		{"negative depth", 0, 1, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBox("x", tt.start, tt.end, tt.depth)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBox() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBoxGeometry(t *testing.T) {
	parent := Box[string]{Node: "p", StartX: 0.2, EndX: 0.6, Depth: 1}
	child := Box[string]{Node: "c", StartX: 0.3, EndX: 0.5, Depth: 2}
	other := Box[string]{Node: "o", StartX: 0.6, EndX: 0.9, Depth: 2}

	if w := parent.Width(); w < 0.4-eps || w > 0.4+eps {
		t.Errorf("Width() = %v, want 0.4", w)
	}
	if !parent.Contains(0.2) || !parent.Contains(0.6) || parent.Contains(0.61) {
		t.Error("Contains() should include both edges only")
	}
	if !parent.Encloses(child) {
		t.Error("parent should enclose child")
	}
	if parent.Encloses(other) {
		t.Error("parent should not enclose a frame outside its span")
	}
	if child.Encloses(parent) {
		t.Error("child should not enclose its parent")
	}
}

func TestNewModelValidation(t *testing.T) {
	root := Box[string]{Node: "root", StartX: 0, EndX: 1, Depth: 0}
	tests := []struct {
		name    string
		frames  []Box[string]
		wantErr bool
	}{
		{"empty", nil, false},
		{"root only", []Box[string]{root}, false},
		{"first not root", []Box[string]{{Node: "a", EndX: 1, Depth: 1}}, true},
		{"two roots", []Box[string]{root, root}, true},
		{"skipped level", []Box[string]{root, {Node: "a", EndX: 1, Depth: 2}}, true},
		{"bad span", []Box[string]{root, {Node: "a", StartX: 0.9, EndX: 0.1, Depth: 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel("t", tt.frames)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewModel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidModel) {
				t.Errorf("NewModel() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidModel)
			}
		})
	}
}

func TestModelCopiesFrames(t *testing.T) {
	frames := []Box[string]{{Node: "root", EndX: 1}}
	m, err := NewModel("t", frames)
	if err != nil {
		t.Fatal(err)
	}
	frames[0].Node = "mutated"
	if m.Root().Node != "root" {
		t.Errorf("model root = %q, mutation of the input leaked", m.Root().Node)
	}
}

func TestModelDepthAndIndex(t *testing.T) {
	boxes, err := Flatten(n("root", 3, n("a", 1, n("a1", 1, n("a2", 1))), n("b", 2)), nodeTree)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel("t", boxes)
	if err != nil {
		t.Fatal(err)
	}

	if m.Depth() != 4 {
		t.Errorf("Depth() = %d, want 4", m.Depth())
	}
	if Empty[*node]().Depth() != 0 {
		t.Error("empty model depth should be 0")
	}
	if i := m.Index(m.Frame(2)); i != 2 {
		t.Errorf("Index() = %d, want 2", i)
	}
	stray := boxes[2]
	if m.Index(&stray) != -1 {
		t.Error("Index() of a foreign box should be -1")
	}
}

func TestModelSiblings(t *testing.T) {
	boxes, err := Flatten(n("root", 2, n("a", 1, n("x", 1)), n("b", 1, n("x", 1))), nodeTree)
	if err != nil {
		t.Fatal(err)
	}
	byName := WithEquality(KeyEquality[*node](func(x *node) string { return x.name }))
	m, err := NewModel("t", boxes, byName)
	if err != nil {
		t.Fatal(err)
	}

	x := m.Frame(2)
	siblings := m.Siblings(x)
	if len(siblings) != 2 {
		t.Fatalf("Siblings() returned %d frames, want 2", len(siblings))
	}
	if siblings[0] != x || siblings[1] != m.Frame(4) {
		t.Error("Siblings() should return both occurrences in model order")
	}

	plain, _ := NewModel("t", boxes)
	if got := plain.Siblings(plain.Frame(2)); len(got) != 1 {
		t.Errorf("pointer payload equality should only match itself, got %d", len(got))
	}
}
