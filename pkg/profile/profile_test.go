package profile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
)

const folded = `# sample profile
main;run;parse 3
main;run;render 5
main;run;parse 2
main;gc_[k] 1

main 1
`

func TestReadCollapsed(t *testing.T) {
	root, err := ReadCollapsed(strings.NewReader(folded), "")
	if err != nil {
		t.Fatalf("ReadCollapsed() error = %v", err)
	}
	if root.Name != RootName || root.Value != 12 {
		t.Errorf("root = %s/%v, want %s/12", root.Name, root.Value, RootName)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children))
	}
	main := root.Children[0]
	if main.Value != 12 || main.Self != 1 {
		t.Errorf("main value/self = %v/%v, want 12/1", main.Value, main.Self)
	}
	run := main.Children[0]
	if got := childNames(run); got != "parse,render" {
		t.Errorf("run children = %s, want parse,render", got)
	}
	if parse := run.Children[0]; parse.Value != 5 || parse.Self != 5 {
		t.Errorf("parse value/self = %v/%v, want 5/5", parse.Value, parse.Self)
	}
	gc := main.Children[1]
	if gc.Name != "gc" || gc.Kind != KindKernel {
		t.Errorf("gc = %q/%v, want gc/kernel", gc.Name, gc.Kind)
	}
	if got := root.Count(); got != 6 {
		t.Errorf("Count() = %d, want 6", got)
	}
	if got := root.Depth(); got != 4 {
		t.Errorf("Depth() = %d, want 4", got)
	}
}

func TestReadCollapsedErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no weight", "main;run\n"},
		{"bad weight", "main;run x\n"},
		{"negative weight", "main -1\n"},
		{"nan weight", "main NaN\n"},
		{"empty stack", ";; 3\n"},
		{"no samples", "# nothing\n\n"},
		{"zero samples", "main 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCollapsed(strings.NewReader(tt.input), "")
			if !errors.Is(err, errors.ErrCodeInvalidProfile) {
				t.Errorf("ReadCollapsed() error = %v, want %s", err, errors.ErrCodeInvalidProfile)
			}
		})
	}
}

func TestCollapsedRoundTrip(t *testing.T) {
	root, err := ReadCollapsed(strings.NewReader(folded), "")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteCollapsed(root, &buf); err != nil {
		t.Fatalf("WriteCollapsed() error = %v", err)
	}
	want := "main 1\nmain;run;parse 5\nmain;run;render 5\nmain;gc_[k] 1\n"
	if buf.String() != want {
		t.Errorf("WriteCollapsed() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	input := `{"name": "all", "children": [
		{"name": "main", "self": 1, "children": [
			{"name": "work_[j]", "value": 3},
			{"name": "idle", "value": 2, "kind": "interpreted"}
		]}
	]}`
	root, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if root.Value != 6 {
		t.Errorf("root value = %v, want 6 derived from children", root.Value)
	}
	main := root.Children[0]
	if main.Value != 6 || main.Self != 1 {
		t.Errorf("main value/self = %v/%v, want 6/1", main.Value, main.Self)
	}
	if work := main.Children[0]; work.Name != "work" || work.Kind != KindJIT {
		t.Errorf("work = %q/%v, want work/jit", work.Name, work.Kind)
	}
	if idle := main.Children[1]; idle.Kind != KindInterpreted {
		t.Errorf("idle kind = %v, want interpreted", idle.Kind)
	}

	var buf bytes.Buffer
	if err := WriteJSON(root, &buf); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	again, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON(WriteJSON()) error = %v", err)
	}
	if again.Count() != root.Count() || again.Value != root.Value || again.Children[0].Children[0].Kind != KindJIT {
		t.Error("JSON round trip changed the tree")
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []string{
		`{"name": "all"`,
		`{"name": "all", "value": -1}`,
		`{"name": "all", "children": [null]}`,
		`{"name": "all"}`,
	}
	for _, input := range tests {
		if _, err := ReadJSON(strings.NewReader(input)); !errors.Is(err, errors.ErrCodeInvalidProfile) {
			t.Errorf("ReadJSON(%s) error = %v, want %s", input, err, errors.ErrCodeInvalidProfile)
		}
	}
}

func TestReadSniffsFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"  \n {\"name\": \"x\", \"value\": 1}", FormatJSON},
		{"a;b 1\n", FormatCollapsed},
	}
	for _, tt := range tests {
		root, got, err := Read(strings.NewReader(tt.input), FormatAuto, "title")
		if err != nil {
			t.Fatalf("Read(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Read(%q) format = %s, want %s", tt.input, got, tt.want)
		}
		if root.Name != "title" {
			t.Errorf("Read(%q) root = %q, want title", tt.input, root.Name)
		}
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpu.folded")
	if err := os.WriteFile(path, []byte(folded), 0o644); err != nil {
		t.Fatal(err)
	}
	root, format, err := Import(path)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if format != FormatCollapsed || root.Name != "cpu" {
		t.Errorf("Import() = %s/%s, want collapsed/cpu", format, root.Name)
	}

	_, _, err = Import(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Import(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "folded": FormatCollapsed, "JSON": FormatJSON} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %s, %v, want %s", in, got, err, want)
		}
	}
	if _, err := ParseFormat("pprof"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(pprof) error = %v", err)
	}
}

func TestSort(t *testing.T) {
	root, _ := ReadCollapsed(strings.NewReader("a 1\nb 3\nc 3\n"), "")
	root.Sort()
	if got := childNames(root); got != "b,c,a" {
		t.Errorf("Sort() order = %s, want b,c,a", got)
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		raw, name, group, short, fn string
		kind                        Kind
	}{
		{"java/util/HashMap.get_[j]", "java/util/HashMap.get", "java/util", "HashMap.get", "get", KindJIT},
		{"github.com/a/b.(*T).Run", "github.com/a/b.(*T).Run", "github.com/a/b", "b.(*T).Run", "Run", KindUnknown},
		{"std::vector<int>::push_back", "std::vector<int>::push_back", "std::vector<int>", "std::vector<int>::push_back", "push_back", KindUnknown},
		{"main.run", "main.run", "main", "main.run", "run", KindUnknown},
		{"malloc", "malloc", "malloc", "malloc", "malloc", KindNative},
		{"[unknown]", "[unknown]", "[unknown]", "[unknown]", "[unknown]", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, kind := ParseName(tt.raw)
			if name != tt.name || kind != tt.kind {
				t.Errorf("ParseName() = %q/%v, want %q/%v", name, kind, tt.name, tt.kind)
			}
			if got := Group(name); got != tt.group {
				t.Errorf("Group() = %q, want %q", got, tt.group)
			}
			if got := ShortName(name); got != tt.short {
				t.Errorf("ShortName() = %q, want %q", got, tt.short)
			}
			if got := FuncName(name); got != tt.fn {
				t.Errorf("FuncName() = %q, want %q", got, tt.fn)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	for k := KindUnknown; k <= KindKernel; k++ {
		if got := ParseKind(k.String()); got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if got := Kind(200).String(); got != "unknown" {
		t.Errorf("Kind(200).String() = %q", got)
	}
}

func TestColorModes(t *testing.T) {
	m := mustModel(t, "main;java/util/HashMap.get 1\nmain;app/core.Run_[i] 2\nmain;malloc 1\n")
	p, err := colors.LookupPalette("light-black-to-yellow")
	if err != nil {
		t.Fatal(err)
	}

	byPackage := BaseColor(ByPackage, p)
	byKind := BaseColor(ByKind, p)
	frames := map[string]int{}
	for i := range m.Len() {
		frames[m.Frame(i).Node.Name] = i
	}
	if got := byPackage(m.Frame(frames["java/util/HashMap.get"])); got != RuntimeColor {
		t.Errorf("runtime frame = %v, want %v", got, RuntimeColor)
	}
	if got := byPackage(m.Frame(frames["malloc"])); got != RuntimeColor {
		t.Errorf("native frame = %v, want %v", got, RuntimeColor)
	}
	if got, want := byPackage(m.Frame(frames["app/core.Run"])), p.Map("app"); got != want {
		t.Errorf("app frame = %v, want palette color %v", got, want)
	}
	if got := byKind(m.Frame(frames["app/core.Run"])); got != InlinedColor {
		t.Errorf("inlined frame = %v, want %v", got, InlinedColor)
	}

	if mode, err := ParseColorMode(""); err != nil || mode != ByPackage {
		t.Errorf("ParseColorMode(\"\") = %v, %v", mode, err)
	}
	if _, err := ParseColorMode("rainbow"); err == nil {
		t.Error("ParseColorMode(rainbow) succeeded")
	}
}

func childNames(n *Node) string {
	var names []string
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return strings.Join(names, ",")
}
