package profile

import (
	"strings"
	"testing"

	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
)

func mustModel(t *testing.T, input string) *frame.Model[*Node] {
	t.Helper()
	root, err := ReadCollapsed(strings.NewReader(input), "")
	if err != nil {
		t.Fatalf("ReadCollapsed() error = %v", err)
	}
	m, err := ToModel(root, "test", ModelOptions{})
	if err != nil {
		t.Fatalf("ToModel() error = %v", err)
	}
	return m
}

func TestToModel(t *testing.T) {
	m := mustModel(t, "a;b 3\na;c 1\nd 4\n")

	want := []struct {
		name       string
		start, end float64
		depth      int
	}{
		{RootName, 0, 1, 0},
		{"a", 0, 0.5, 1},
		{"b", 0, 0.375, 2},
		{"c", 0.375, 0.5, 2},
		{"d", 0.5, 1, 1},
	}
	if m.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", m.Len(), len(want))
	}
	for i, w := range want {
		f := m.Frame(i)
		if f.Node.Name != w.name || f.StartX != w.start || f.EndX != w.end || f.Depth != w.depth {
			t.Errorf("frame %d = %s [%v,%v] d%d, want %s [%v,%v] d%d",
				i, f.Node.Name, f.StartX, f.EndX, f.Depth, w.name, w.start, w.end, w.depth)
		}
	}
	if m.Title() != "test" || m.Depth() != 3 {
		t.Errorf("Title/Depth = %q/%d", m.Title(), m.Depth())
	}
}

func TestToModelShowSelf(t *testing.T) {
	root, err := ReadCollapsed(strings.NewReader("a 2\na;b 2\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	m, err := ToModel(root, "", ModelOptions{ShowSelf: true})
	if err != nil {
		t.Fatalf("ToModel() error = %v", err)
	}
	if b := m.Frame(2); b.Node.Name != "b" || b.EndX != 0.5 {
		t.Errorf("b = %s ends at %v, want 0.5 leaving a's self time empty", b.Node.Name, b.EndX)
	}
}

func TestToModelSkipsWeightless(t *testing.T) {
	m := mustModel(t, "a;x 0\na 2\nb 2\n")
	for i := range m.Len() {
		if m.Frame(i).Node.Name == "x" {
			t.Error("zero weight frame was laid out")
		}
	}
}

func TestToModelSiblingsByName(t *testing.T) {
	m := mustModel(t, "a;work 1\nb;work 1\nc 1\n")
	var work *frame.Box[*Node]
	for i := range m.Len() {
		if m.Frame(i).Node.Name == "work" {
			work = m.Frame(i)
			break
		}
	}
	if got := len(m.Siblings(work)); got != 2 {
		t.Errorf("Siblings(work) = %d frames, want 2", got)
	}
}

func TestMatching(t *testing.T) {
	m := mustModel(t, "main;parseJSON 1\nmain;parseXML 1\nmain;render 1\n")
	tests := []struct {
		text string
		want string
	}{
		{"parse", "parseJSON,parseXML"},
		{"main", "main"},
		{"all", ""},
		{"", ""},
		{"nope", ""},
	}
	for _, tt := range tests {
		var names []string
		for _, f := range Matching(m, tt.text) {
			names = append(names, f.Node.Name)
		}
		if got := strings.Join(names, ","); got != tt.want {
			t.Errorf("Matching(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestShare(t *testing.T) {
	m := mustModel(t, "a 1\nb 3\n")
	if got := Share(m, m.Frame(2)); got != 0.75 {
		t.Errorf("Share(b) = %v, want 0.75", got)
	}
}
