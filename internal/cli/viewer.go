package cli

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflame/pkg/observability"
	"github.com/matzehuels/stackflame/pkg/pipeline"
	"github.com/matzehuels/stackflame/pkg/profile"
	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/sink"
	"github.com/matzehuels/stackflame/pkg/session"
)

// Terminal rows taken by the header and the footer.
const (
	headerRows = 1
	footerRows = 1

	// maxMinimapRows caps the thumbnail at two levels per row.
	maxMinimapRows = 6

	animationTick = 16 * time.Millisecond
)

type (
	animationMsg time.Time

	minimapMsg struct {
		minimap flame.Minimap
		err     error
	}
)

// viewer is the terminal flame graph explorer. The graph is painted on a
// character grid, one level per row.
type viewer struct {
	ctx    context.Context
	engine *pipeline.Engine
	model  *pipeline.Model
	probe  flame.Surface
	logger *log.Logger

	view session.View
	anim *flame.ZoomAnimation[*profile.Node]

	search    textinput.Model
	searching bool

	stats          bool
	showMinimap    bool
	minimap        image.Image
	minimapGen     uint64
	minimapPending bool

	width, height int
	err           error
}

func newViewer(ctx context.Context, e *pipeline.Engine, v session.View) *viewer {
	e.SetRenderer(pipeline.TextRenderer(e.Renderer()))

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search frames"
	ti.CharLimit = 200
	ti.Width = 40

	return &viewer{
		ctx:    ctx,
		engine: e,
		model:  e.Model(),
		probe:  sink.NewCells(0, 0, colors.White),
		logger: loggerFromContext(ctx),
		view:   v,
		search: ti,
	}
}

// State returns the view to remember for the next session.
func (m *viewer) State() session.View {
	return session.Capture(m.engine, m.view)
}

func (m *viewer) Init() tea.Cmd { return nil }

// =============================================================================
// Geometry
// =============================================================================

func (m *viewer) minimapRows() int {
	if !m.showMinimap || m.minimap == nil {
		return 0
	}
	return min((m.minimap.Bounds().Dy()+1)/2, maxMinimapRows)
}

// graphTop returns the terminal row of the first graph row.
func (m *viewer) graphTop() int { return headerRows + m.minimapRows() }

func (m *viewer) graphSize() (int, int) {
	return max(m.width, 0), max(m.height-m.graphTop()-footerRows, 0)
}

// bounds returns the whole-graph rectangle in graph area coordinates. A
// flame graph shorter than the area sits at the bottom.
func (m *viewer) bounds() flame.Rect {
	cw := m.view.CanvasWidth()
	ch := m.engine.VisibleHeight(m.probe, cw)
	b := flame.Rect{X: -m.view.X, Y: -m.view.Y, W: cw, H: max(ch, 1)}
	if _, gh := m.graphSize(); !m.engine.IsIcicle() && ch < gh {
		b.Y = gh - ch
	}
	return b
}

func (m *viewer) current() flame.ZoomTarget[*profile.Node] {
	b := m.bounds()
	return flame.ZoomTarget[*profile.Node]{X: m.view.X, Y: m.view.Y, Width: b.W, Height: b.H}
}

// mouse converts terminal coordinates to graph area coordinates.
func (m *viewer) mouse(x, y int) (flame.Point, bool) {
	gw, gh := m.graphSize()
	p := flame.Point{X: x, Y: y - m.graphTop()}
	return p, p.X >= 0 && p.Y >= 0 && p.X < gw && p.Y < gh
}

// resize fits the view to the graph area.
func (m *viewer) resize() {
	gw, gh := m.graphSize()
	m.view = m.view.Resize(gw, gh)
	m.pan(0, 0)
}

// pan scrolls the view, staying within the canvas.
func (m *viewer) pan(dx, dy int) {
	gw, gh := m.graphSize()
	b := m.bounds()
	m.view.X = min(max(m.view.X+dx, 0), max(b.W-gw, 0))
	m.view.Y = min(max(m.view.Y+dy, 0), max(b.H-gh, 0))
}

// =============================================================================
// Update
// =============================================================================

func (m *viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.search.Width = max(msg.Width-2, 1)
		m.resize()

	case animationMsg:
		if m.anim == nil {
			break
		}
		z, done := m.anim.At(time.Time(msg))
		m.view = session.Zoomed(m.view, z)
		if done {
			m.anim = nil
		} else {
			cmds = append(cmds, animate())
		}

	case minimapMsg:
		m.minimapPending = false
		if msg.err != nil {
			m.err = msg.err
			break
		}
		if !m.engine.IsCurrent(msg.minimap.Generation) {
			observability.Minimap().OnMinimapDiscarded(m.ctx, msg.minimap.Generation)
			break
		}
		m.minimap = msg.minimap.Image
		m.minimapGen = msg.minimap.Generation
		m.resize()

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case tea.KeyMsg:
		if m.searching {
			cmds = append(cmds, m.handleSearchKey(msg))
			break
		}
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if m.showMinimap && !m.minimapPending && (m.minimap == nil || !m.engine.IsCurrent(m.minimapGen)) {
		if cmd := m.refreshMinimap(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *viewer) handleMouse(msg tea.MouseMsg) tea.Cmd {
	p, inside := m.mouse(msg.X, msg.Y)
	b := m.bounds()

	switch {
	case msg.Action == tea.MouseActionMotion:
		if !inside {
			m.engine.StopHover(m.probe, b, nil)
			return nil
		}
		f, _ := m.engine.FrameAt(m.probe, b, p)
		m.engine.HoverFrame(f, m.probe, b, nil)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inside:
		gw, gh := m.graphSize()
		z, ok := m.engine.ZoomTargetAt(m.probe, b, flame.Rect{X: m.view.X, Y: m.view.Y, W: gw, H: gh}, p)
		if ok {
			return m.zoomTo(z)
		}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight && inside:
		m.engine.ToggleSelection(m.probe, b, p, nil)

	case msg.Button == tea.MouseButtonWheelUp:
		m.pan(0, -1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.pan(0, 1)
	}
	return nil
}

func (m *viewer) handleKey(msg tea.KeyMsg) tea.Cmd {
	gw, _ := m.graphSize()
	step := max(gw/10, 1)

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "/":
		m.searching = true
		m.search.SetValue(m.engine.SearchText())
		return m.search.Focus()
	case "esc":
		m.setSearch("")
	case "f":
		m.view = m.view.Flipped(m.bounds().H)
		m.engine.SetIcicleMode(!m.engine.IsIcicle())
	case "t":
		if m.engine.Theme() == colors.Dark {
			m.engine.SetTheme(colors.Light)
		} else {
			m.engine.SetTheme(colors.Dark)
		}
	case "s":
		m.stats = !m.stats
		m.engine.SetShowStats(m.stats)
	case "m":
		m.showMinimap = !m.showMinimap
		m.resize()
	case "r", "backspace":
		return m.reset()
	case "enter":
		return m.zoomToFrame(m.engine.HoveredFrame())
	case "z":
		return m.zoomToFrame(m.engine.SelectedFrame())
	case "left", "h":
		m.pan(-step, 0)
	case "right", "l":
		m.pan(step, 0)
	case "up", "k":
		m.pan(0, -1)
	case "down", "j":
		m.pan(0, 1)
	}
	return nil
}

func (m *viewer) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.setSearch(strings.TrimSpace(m.search.Value()))
		m.searching = false
		m.search.Blur()
		return nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *viewer) setSearch(text string) {
	m.engine.SetHighlightFrames(profile.Matching(m.model, text), text)
}

// =============================================================================
// Zoom
// =============================================================================

func animate() tea.Cmd {
	return tea.Tick(animationTick, func(t time.Time) tea.Msg { return animationMsg(t) })
}

// zoomTo starts the transition from the current geometry to z.
func (m *viewer) zoomTo(z flame.ZoomTarget[*profile.Node]) tea.Cmd {
	from := m.current()
	if m.anim != nil {
		from, _ = m.anim.At(time.Now())
	}
	m.anim = flame.NewZoomAnimation(from, z, time.Now(), flame.DefaultZoomDuration)
	return animate()
}

func (m *viewer) zoomToFrame(f *frame.Box[*profile.Node]) tea.Cmd {
	if f == nil {
		return nil
	}
	gw, gh := m.graphSize()
	m.engine.SetSelectedFrame(f)
	z, ok := m.engine.ZoomTarget(m.probe, m.bounds(), flame.Rect{X: m.view.X, Y: m.view.Y, W: gw, H: gh}, f, 0)
	if !ok {
		return nil
	}
	return m.zoomTo(z)
}

func (m *viewer) reset() tea.Cmd {
	gw, gh := m.graphSize()
	z, ok := m.engine.ResetZoomTarget(m.probe, flame.Rect{W: gw, H: gh})
	if !ok {
		return nil
	}
	m.engine.SetSelectedFrame(nil)
	return m.zoomTo(z)
}

// =============================================================================
// Minimap
// =============================================================================

// refreshMinimap paints a thumbnail of the current state off the update
// loop. Results from an older engine state are dropped on arrival.
func (m *viewer) refreshMinimap() tea.Cmd {
	gw, _ := m.graphSize()
	if gw <= 0 {
		return nil
	}
	sn := m.engine.Snapshot(gw)
	if sn.Height() <= 0 {
		return nil
	}
	m.minimapPending = true
	ctx := m.ctx
	gen := flame.NewMinimapGenerator[*profile.Node](sink.CellsFactory(pipeline.Background(m.engine.Theme())), m.logger)
	return func() tea.Msg {
		mm, err := gen.Generate(ctx, sn)
		return minimapMsg{minimap: mm, err: err}
	}
}

// halfBlocks renders img with two pixel rows per terminal row.
func halfBlocks(img image.Image, rows int) []string {
	b := img.Bounds()
	lines := make([]string, 0, rows)
	for y := b.Min.Y; y < b.Max.Y && len(lines) < rows; y += 2 {
		var line strings.Builder
		for x := b.Min.X; x < b.Max.X; x++ {
			top := nrgba(img.At(x, y))
			bottom := top
			if y+1 < b.Max.Y {
				bottom = nrgba(img.At(x, y+1))
			}
			line.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(colors.Hex(top))).
				Background(lipgloss.Color(colors.Hex(bottom))).
				Render("▀"))
		}
		lines = append(lines, line.String())
	}
	return lines
}

func nrgba(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xFF
	return n
}

// =============================================================================
// View
// =============================================================================

func (m *viewer) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	gw, gh := m.graphSize()
	bg := pipeline.Background(m.engine.Theme())

	lines := make([]string, 0, m.height)
	lines = append(lines, m.header())
	if rows := m.minimapRows(); rows > 0 {
		lines = append(lines, halfBlocks(m.minimap, rows)...)
	}

	if gw > 0 && gh > 0 {
		c := sink.NewCells(gw, gh, bg)
		m.engine.Paint(c, m.bounds(), flame.Rect{W: gw, H: gh})
		lines = append(lines, c.Render())
	}
	lines = append(lines, m.footer())
	return strings.Join(lines, "\n")
}

func (m *viewer) header() string {
	title := StyleTitle.Render(m.model.Title())
	f := m.engine.HoveredFrame()
	if f == nil {
		f = m.engine.SelectedFrame()
	}
	if f == nil {
		return title
	}
	detail := fmt.Sprintf("%s  %s total, %s self, %.1f%%",
		f.Node.Name, formatWeight(f.Node.Value), formatWeight(f.Node.Self), 100*profile.Share(m.model, f))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(title + "  " + StyleValue.Render(detail))
}

func (m *viewer) footer() string {
	if m.searching {
		return m.search.View()
	}
	var parts []string
	if text := m.engine.SearchText(); text != "" {
		parts = append(parts, StyleHighlight.Render(fmt.Sprintf("/%s: %d matches", text, len(m.engine.HighlightedFrames()))))
	}
	if m.err != nil {
		parts = append(parts, StyleWarning.Render(m.err.Error()))
	}
	parts = append(parts, StyleDim.Render("click zoom · / search · f flip · t theme · m minimap · r reset · q quit"))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, "  "))
}
