package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/sink"
)

const folded = `main;parse 3
main;render 1
`

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = bytes.Clone(data)
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func TestExecute(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	opts := Options{
		Data:    []byte(folded),
		Title:   "cpu",
		Width:   200,
		Search:  "parse",
		Formats: []string{FormatPNG, FormatSVG, FormatJSON, FormatText, FormatMinimap},
	}

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.LoadHit || res.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", res.CacheInfo)
	}
	if res.Stats.NodeCount != 4 || res.Stats.FrameCount != 4 || res.Stats.Matches != 1 {
		t.Errorf("Stats = %+v, want 4 nodes, 4 frames, 1 match", res.Stats)
	}
	if res.ProfileHash == "" {
		t.Error("ProfileHash should be set")
	}

	for _, f := range []string{FormatPNG, FormatMinimap} {
		if !bytes.HasPrefix(res.Artifacts[f], []byte("\x89PNG")) {
			t.Errorf("%s artifact is not a PNG", f)
		}
	}
	if !bytes.Contains(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact has no <svg element")
	}
	if !bytes.Contains(res.Artifacts[FormatSVG], []byte("<title>cpu</title>")) {
		t.Error("svg artifact has no title")
	}

	var doc struct {
		Title       string `json:"title"`
		Mode        string `json:"mode"`
		Highlighted []int  `json:"highlighted"`
		Frames      []struct {
			Label string `json:"label"`
		} `json:"frames"`
	}
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc.Title != "cpu" || doc.Mode != "icicle" || len(doc.Frames) != 4 {
		t.Errorf("json artifact = %+v", doc)
	}
	if len(doc.Highlighted) != 1 || doc.Highlighted[0] != 2 {
		t.Errorf("highlighted = %v, want [2]", doc.Highlighted)
	}

	if !strings.Contains(string(res.Artifacts[FormatText]), "parse") {
		t.Errorf("txt artifact = %q", res.Artifacts[FormatText])
	}

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !again.CacheInfo.LoadHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", again.CacheInfo)
	}
	if !bytes.Equal(again.Artifacts[FormatSVG], res.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from the rendered one")
	}
}

func TestExecuteNoCache(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	_, err := r.Execute(context.Background(), Options{Data: []byte(folded), NoCache: true})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(c.data) != 0 {
		t.Errorf("cache has %d entries, want 0", len(c.data))
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing file", Options{Path: "/nonexistent/cpu.folded"}, errors.ErrCodeFileNotFound},
		{"bad profile", Options{Data: []byte("main;parse x\n")}, errors.ErrCodeInvalidProfile},
		{"empty profile", Options{Data: []byte("# nothing\n")}, errors.ErrCodeInvalidProfile},
		{"bad format", Options{Data: []byte(folded), Formats: []string{"bmp"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderText(t *testing.T) {
	root, err := Parse(context.Background(), []byte(folded), Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Title: "cpu", Width: 40}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	m, err := Layout(context.Background(), root, opts)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(m, opts)
	if err != nil {
		t.Fatal(err)
	}
	probe := sink.NewCells(0, 0, colors.White)
	before := e.BoxHeight(probe)

	lines := strings.Split(strings.TrimSuffix(RenderText(e, 40, opts.ThemeValue(), false), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), lines)
	}
	if lines[0] != " cpu" {
		t.Errorf("line 0 = %q, want %q", lines[0], " cpu")
	}
	if lines[1] != " main" {
		t.Errorf("line 1 = %q, want %q", lines[1], " main")
	}
	if got := strings.Fields(lines[2]); len(got) != 2 || got[0] != "parse" || got[1] != "render" {
		t.Errorf("line 2 = %q", lines[2])
	}
	if e.BoxHeight(probe) != before {
		t.Error("RenderText should restore the engine renderer")
	}

	// Flame mode puts the root at the bottom.
	e.SetIcicleMode(false)
	lines = strings.Split(strings.TrimSuffix(RenderText(e, 40, opts.ThemeValue(), false), "\n"), "\n")
	if lines[len(lines)-1] != " cpu" {
		t.Errorf("flame last line = %q, want %q", lines[len(lines)-1], " cpu")
	}
}

func TestDOT(t *testing.T) {
	root, err := Parse(context.Background(), []byte(folded), Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{}
	opts.SetRenderDefaults()
	dot, err := DOT(root, opts)
	if err != nil {
		t.Fatalf("DOT() error = %v", err)
	}
	for _, want := range []string{"digraph G {", "parse", "render", "fillcolor=", "n1 -> n2"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT() missing %q:\n%s", want, dot)
		}
	}

	opts.Palette = "nope"
	if _, err := DOT(root, opts); !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("DOT() with bad palette error = %v", err)
	}
}

func TestParseSortsAndSniffs(t *testing.T) {
	data := []byte("a;small 1\na;big 5\n")
	root, err := Parse(context.Background(), data, Options{Sort: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := root.Children[0].Children[0].Name; got != "big" {
		t.Errorf("first child = %q, want big", got)
	}

	jsonData := []byte(`{"name":"all","children":[{"name":"x","value":2}]}`)
	root, err = Parse(context.Background(), jsonData, Options{})
	if err != nil {
		t.Fatalf("Parse(json) error = %v", err)
	}
	if root.Value != 2 || root.Children[0].Name != "x" {
		t.Errorf("Parse(json) = %+v", root)
	}
}

func TestRenderViewport(t *testing.T) {
	root, err := Parse(context.Background(), []byte(folded), Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{}
	opts.SetRenderDefaults()
	m, err := Layout(context.Background(), root, opts)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(m, opts)
	if err != nil {
		t.Fatal(err)
	}

	png, err := RenderViewport(e, 800, flame.Rect{X: 200, W: 400, H: 50}, FormatPNG)
	if err != nil {
		t.Fatalf("RenderViewport(png) error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("viewport is not a PNG")
	}
	svg, err := RenderViewport(e, 800, flame.Rect{X: 200, W: 400, H: 50}, FormatSVG)
	if err != nil {
		t.Fatalf("RenderViewport(svg) error = %v", err)
	}
	if !bytes.Contains(svg, []byte(`width="400"`)) {
		t.Error("svg viewport should be 400 wide")
	}

	if _, err := RenderViewport(e, 800, flame.Rect{W: 400}, FormatPNG); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty viewport error = %v", err)
	}
	if _, err := RenderViewport(e, 800, flame.Rect{W: 10, H: 10}, FormatJSON); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("json viewport error = %v", err)
	}
}
