package sink

import (
	"encoding/json"

	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	palette string
	all     bool
}

// WithJSONPalette records the palette name in the output.
func WithJSONPalette(name string) JSONOption { return func(r *jsonRenderer) { r.palette = name } }

// WithJSONAllFrames exports every frame, including the ones too narrow to be
// painted at the export width. Those carry no pixel rectangle.
func WithJSONAllFrames() JSONOption { return func(r *jsonRenderer) { r.all = true } }

type jsonOutput struct {
	Title       string      `json:"title,omitempty"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	BoxHeight   int         `json:"box_height"`
	Mode        string      `json:"mode"`
	Theme       string      `json:"theme"`
	Palette     string      `json:"palette,omitempty"`
	Depth       int         `json:"depth"`
	Search      string      `json:"search,omitempty"`
	FrameCount  int         `json:"frame_count"`
	Frames      []jsonFrame `json:"frames"`
	Highlighted []int       `json:"highlighted,omitempty"`
}

type jsonFrame struct {
	Index      int         `json:"index"`
	Label      string      `json:"label"`
	Depth      int         `json:"depth"`
	StartX     float64     `json:"start_x"`
	EndX       float64     `json:"end_x"`
	Rect       *flame.Rect `json:"rect,omitempty"`
	Background string      `json:"background,omitempty"`
	Foreground string      `json:"foreground,omitempty"`
	Flags      string      `json:"flags,omitempty"`
}

// RenderJSON exports the frames e paints on a width pixel canvas, with
// their geometry, colors and render flags. s is only used to measure the
// box height.
func RenderJSON[T comparable](e *flame.Engine[T], s flame.Surface, width int, label func(T) string, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	m := e.Model()
	height := e.VisibleHeight(s, width)
	bounds := flame.Rect{W: width, H: height}
	out := jsonOutput{
		Title:      m.Title(),
		Width:      width,
		Height:     height,
		BoxHeight:  e.BoxHeight(s),
		Mode:       modeName(e.IsIcicle()),
		Theme:      e.Theme().String(),
		Palette:    r.palette,
		Depth:      m.Depth(),
		Search:     e.SearchText(),
		FrameCount: m.Len(),
		Frames:     []jsonFrame{},
	}

	provider := e.Renderer().Colors()
	painted := make(map[*frame.Box[T]]jsonFrame)
	e.Walk(s, bounds, bounds, func(f *frame.Box[T], rect, _ flame.Rect, flags styles.Flags) {
		cm := provider.Colors(f, flags, e.Theme())
		painted[f] = jsonFrame{
			Rect:       &rect,
			Background: colors.Hex(cm.Background),
			Foreground: colors.Hex(cm.Foreground),
			Flags:      flagString(flags),
		}
	})

	for i := range m.Len() {
		f := m.Frame(i)
		jf, ok := painted[f]
		if !ok && !r.all {
			continue
		}
		jf.Index, jf.Label, jf.Depth, jf.StartX, jf.EndX = i, label(f.Node), f.Depth, f.StartX, f.EndX
		out.Frames = append(out.Frames, jf)
	}
	for _, f := range e.HighlightedFrames() {
		if i := m.Index(f); i >= 0 {
			out.Highlighted = append(out.Highlighted, i)
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

func modeName(icicle bool) string {
	if icicle {
		return "icicle"
	}
	return "flame"
}

func flagString(f styles.Flags) string {
	if f == 0 {
		return ""
	}
	return f.String()
}
