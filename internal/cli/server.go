package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/observability"
	"github.com/matzehuels/stackflame/pkg/pipeline"
	"github.com/matzehuels/stackflame/pkg/profile"
	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/sink"
	"github.com/matzehuels/stackflame/pkg/session"
)

// =============================================================================
// Server
// =============================================================================

// server serves one loaded profile to browser viewers. The frame model is
// shared and never mutated; every request builds a fresh engine from it
// and the caller's session.
type server struct {
	logger   *log.Logger
	runner   *pipeline.Runner
	sessions session.Store
	root     *profile.Node
	hash     string
	model    *pipeline.Model
	opts     pipeline.Options
	ttl      time.Duration
}

func newServer(logger *log.Logger, runner *pipeline.Runner, sessions session.Store, root *profile.Node, hash string, opts pipeline.Options) (*server, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	m, err := pipeline.Layout(context.Background(), root, opts)
	if err != nil {
		return nil, err
	}
	return &server{
		logger:   logger,
		runner:   runner,
		sessions: sessions,
		root:     root,
		hash:     hash,
		model:    m,
		opts:     opts,
		ttl:      session.DefaultTTL,
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph.{format}", s.handleGraph)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/", s.handleUpdateSession)
			r.Get("/view.{format}", s.handleView)
			r.Get("/minimap.png", s.handleMinimap)
			r.Get("/frame", s.handleFrameAt)
			r.Post("/hover", s.handleHover)
			r.Post("/select", s.handleSelect)
			r.Post("/zoom", s.handleZoom)
			r.Post("/reset", s.handleReset)
			r.Put("/search", s.handleSearch)
		})
	})
	return r
}

// observe reports every request to the registered server hooks.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), errorResponse{Code: code, Message: errors.UserMessage(err)})
}

var contentTypes = map[string]string{
	pipeline.FormatPNG:     "image/png",
	pipeline.FormatMinimap: "image/png",
	pipeline.FormatSVG:     "image/svg+xml",
	pipeline.FormatJSON:    "application/json",
	pipeline.FormatText:    "text/plain; charset=utf-8",
	pipeline.FormatDOT:     "image/svg+xml",
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// frameInfo describes one frame to the browser.
type frameInfo struct {
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Depth int     `json:"depth"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Total float64 `json:"total"`
	Self  float64 `json:"self"`
	Share float64 `json:"share"`
}

func (s *server) frameInfo(f *frame.Box[*profile.Node]) *frameInfo {
	if f == nil {
		return nil
	}
	return &frameInfo{
		Index: s.model.Index(f),
		Name:  f.Node.Name,
		Kind:  f.Node.Kind.String(),
		Depth: f.Depth,
		Start: f.StartX,
		End:   f.EndX,
		Total: f.Node.Value,
		Self:  f.Node.Self,
		Share: profile.Share(s.model, f),
	}
}

// sessionResponse is the session state returned by every session endpoint.
type sessionResponse struct {
	ID        string          `json:"id"`
	View      session.View    `json:"view"`
	ExpiresAt time.Time       `json:"expires_at"`
	Selected  *frameInfo      `json:"selected,omitempty"`
	Hovered   *frameInfo      `json:"hovered,omitempty"`
	Matches   int             `json:"matches"`
	Zoom      *zoomTransition `json:"zoom,omitempty"`
}

// zoomTransition lets the browser animate from the old geometry to the new.
type zoomTransition struct {
	From       zoomGeometry `json:"from"`
	To         zoomGeometry `json:"to"`
	DurationMS int64        `json:"duration_ms"`
}

type zoomGeometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Canvas int `json:"canvas"`
	Height int `json:"height"`
}

func (s *server) respond(w http.ResponseWriter, status int, sess *session.Session, e *pipeline.Engine, zoom *zoomTransition) {
	writeJSON(w, status, sessionResponse{
		ID:        sess.ID,
		View:      sess.View,
		ExpiresAt: sess.ExpiresAt,
		Selected:  s.frameInfo(e.SelectedFrame()),
		Hovered:   s.frameInfo(e.HoveredFrame()),
		Matches:   len(e.HighlightedFrames()),
		Zoom:      zoom,
	})
}

// =============================================================================
// Engine and geometry
// =============================================================================

// engine builds a render engine over the shared model showing v.
func (s *server) engine(v session.View) (*pipeline.Engine, error) {
	e, err := pipeline.NewEngine(s.model, s.opts)
	if err != nil {
		return nil, err
	}
	session.Restore(e, v, func(text string) []*frame.Box[*profile.Node] {
		return profile.Matching(s.model, text)
	})
	return e, nil
}

// probe is the surface used for font metrics outside of painting.
func probe() flame.Surface { return sink.NewRaster(1, 1, colors.White) }

// canvas returns the rectangle of the whole graph at the zoom of v, in
// canvas coordinates.
func canvas(e *pipeline.Engine, p flame.Surface, v session.View) flame.Rect {
	w := v.CanvasWidth()
	return flame.Rect{W: w, H: max(e.VisibleHeight(p, w), 1)}
}

// point reads the x and y query parameters, relative to the viewport, and
// returns them in canvas coordinates.
func point(r *http.Request, v session.View) (flame.Point, error) {
	x, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		return flame.Point{}, errors.New(errors.ErrCodeInvalidInput, "invalid x %q", r.URL.Query().Get("x"))
	}
	y, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		return flame.Point{}, errors.New(errors.ErrCodeInvalidInput, "invalid y %q", r.URL.Query().Get("y"))
	}
	return flame.Point{X: x + v.X, Y: y + v.Y}, nil
}

func geometryOf(v session.View, height int) zoomGeometry {
	return zoomGeometry{X: v.X, Y: v.Y, Canvas: v.CanvasWidth(), Height: height}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"title":  s.model.Title(),
		"frames": s.model.Len(),
	})
}

// handleGraph renders a whole-graph export. Query parameters theme, flame,
// search and width override the server defaults.
func (s *server) handleGraph(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts := s.opts
	opts.Formats = []string{format}
	q := r.URL.Query()
	if v := q.Get("theme"); v != "" {
		opts.Theme = v
	}
	if v := q.Get("search"); v != "" {
		opts.Search = v
	}
	if v := q.Get("flame"); v != "" {
		opts.Flame, _ = strconv.ParseBool(v)
	}
	if v := q.Get("width"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid width %q", v))
			return
		}
		opts.Width = width
	}

	artifacts, err := s.runner.Render(r.Context(), s.root, s.hash, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeArtifact(w, format, artifacts[format])
}

// createRequest is the optional body of POST /sessions.
type createRequest struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Flame  *bool   `json:"flame"`
	Theme  string  `json:"theme"`
	Search *string `json:"search"`
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
			return
		}
	}

	sess := session.New(s.hash, s.ttl)
	v := sess.View
	v.Flame, v.Theme, v.Search = s.opts.Flame, s.opts.Theme, s.opts.Search
	if req.Width > 0 && req.Height > 0 {
		v.Width, v.Height = req.Width, req.Height
	}
	if req.Flame != nil {
		v.Flame = *req.Flame
	}
	if req.Theme != "" {
		if _, err := colors.ParseTheme(req.Theme); err != nil {
			writeError(w, err)
			return
		}
		v.Theme = req.Theme
	}
	if req.Search != nil {
		v.Search = *req.Search
	}

	e, err := s.engine(v)
	if err != nil {
		writeError(w, err)
		return
	}
	if z, ok := e.ResetZoomTarget(probe(), v.Viewport()); ok {
		v = session.Zoomed(v, z)
	}
	sess.View = v
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Debug("session created", "id", sess.ID, "width", v.Width, "height", v.Height)
	s.respond(w, http.StatusCreated, sess, e, nil)
}

// load fetches the session named in the URL, writing the error response
// when there is none.
func (s *server) load(w http.ResponseWriter, r *http.Request) (*session.Session, *pipeline.Engine, bool) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid session id %q", id))
		return nil, nil, false
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, nil, false
	}
	if sess == nil || sess.ProfileHash != s.hash {
		writeError(w, session.ErrNotFound)
		return nil, nil, false
	}
	e, err := s.engine(sess.View)
	if err != nil {
		writeError(w, err)
		return nil, nil, false
	}
	return sess, e, true
}

// save captures the engine state into the session and stores it.
func (s *server) save(ctx context.Context, sess *session.Session, e *pipeline.Engine) error {
	sess.View = session.Capture(e, sess.View)
	sess.Touch(s.ttl)
	return s.sessions.Set(ctx, sess)
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, e, ok := s.load(w, r)
	if !ok {
		return
	}
	s.respond(w, http.StatusOK, sess, e, nil)
}

func (s *server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid session id %q", id))
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateRequest changes the viewport size, orientation or theme.
type updateRequest struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Flame  *bool  `json:"flame"`
	Theme  string `json:"theme"`
}

func (s *server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	sess, e, ok := s.load(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	if req.Theme != "" {
		t, err := colors.ParseTheme(req.Theme)
		if err != nil {
			writeError(w, err)
			return
		}
		e.SetTheme(t)
	}
	if req.Width > 0 && req.Height > 0 {
		sess.View = sess.View.Resize(req.Width, req.Height)
	}
	if req.Flame != nil && *req.Flame == e.IsIcicle() {
		e.SetIcicleMode(!*req.Flame)
		sess.View = sess.View.Flipped(canvas(e, probe(), sess.View).H)
	}
	if err := s.save(r.Context(), sess, e); err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess, e, nil)
}

// handleView paints the current viewport of the session.
func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, e, ok := s.load(w, r)
	if !ok {
		return
	}
	format := chi.URLParam(r, "format")
	e.SetShowStats(r.URL.Query().Has("stats"))
	data, err := pipeline.RenderViewport(e, sess.View.CanvasWidth(), sess.View.Viewport(), format)
	if err != nil {
		writeError(w, err)
		return
	}
	writeArtifact(w, format, data)
}

func (s *server) handleMinimap(w http.ResponseWriter, r *http.Request) {
	_, e, ok := s.load(w, r)
	if !ok {
		return
	}
	width := s.opts.MinimapWidth
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > pipeline.MaxWidth {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid width %q", v))
			return
		}
		width = n
	}
	data, err := pipeline.RenderMinimap(r.Context(), e, width, s.opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeArtifact(w, pipeline.FormatMinimap, data)
}

// handleFrameAt reports the frame under a viewport point without changing
// the session.
func (s *server) handleFrameAt(w http.ResponseWriter, r *http.Request) {
	sess, e, ok := s.load(w, r)
	if !ok {
		return
	}
	p, err := point(r, sess.View)
	if err != nil {
		writeError(w, err)
		return
	}
	pr := probe()
	f, found := e.FrameAt(pr, canvas(e, pr, sess.View), p)
	if !found {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no frame at %d,%d", p.X, p.Y))
		return
	}
	writeJSON(w, http.StatusOK, s.frameInfo(f))
}

// handleHover moves the hover to the frame under the point, or clears it
// when the point is outside every frame.
func (s *server) handleHover(w http.ResponseWriter, r *http.Request) {
	sess, e, ok := s.load(w, r)
	if !ok {
		return
	}
	pr := probe()
	bounds := canvas(e, pr, sess.View)
	if r.URL.Query().Has("x") {
		p, err := point(r, sess.View)
		if err != nil {
			writeError(w, err)
			return
		}
		f, _ := e.FrameAt(pr, bounds, p)
		e.HoverFrame(f, pr, bounds, nil)
	} else {
		e.StopHover(pr, bounds, nil)
	}
	if err := s.save(r.Context(), sess, e); err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess, e, nil)
}

// handleSelect toggles the selection of the frame under the point.
func (s *server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, e, ok := s.load(w, r)
	if !ok {
		return
	}
	p, err := point(r, sess.View)
	if err != nil {
		writeError(w, err)
		return
	}
	pr := probe()
	e.ToggleSelection(pr, canvas(e, pr, sess.View), p, nil)
	if err := s.save(r.Context(), sess, e); err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess, e, nil)
}

// handleZoom zooms to the frame under the point, or to the frame with the
// given index. The response carries both geometries for the browser to
// animate between.
func (s *server) handleZoom(w http.ResponseWriter, r *http.Request) {
	sess, e, ok := s.load(w, r)
	if !ok {
		return
	}
	pr := probe()
	v := sess.View
	bounds := canvas(e, pr, v)

	var (
		z     flame.ZoomTarget[*profile.Node]
		found bool
	)
	if idx := r.URL.Query().Get("frame"); idx != "" {
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 || i >= s.model.Len() {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid frame %q", idx))
			return
		}
		f := s.model.Frame(i)
		e.SetSelectedFrame(f)
		z, found = e.ZoomTarget(pr, bounds, v.Viewport(), f, 0)
	} else {
		p, err := point(r, v)
		if err != nil {
			writeError(w, err)
			return
		}
		z, found = e.ZoomTargetAt(pr, bounds, v.Viewport(), p)
	}
	if !found {
		writeError(w, errors.New(errors.ErrCodeNotFound, "nothing to zoom to"))
		return
	}

	from := geometryOf(v, bounds.H)
	sess.View = session.Zoomed(v, z)
	if err := s.save(r.Context(), sess, e); err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess, e, &zoomTransition{
		From:       from,
		To:         geometryOf(sess.View, z.Height),
		DurationMS: flame.DefaultZoomDuration.Milliseconds(),
	})
}

// handleReset zooms back out to the whole graph and clears the selection.
func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, e, ok := s.load(w, r)
	if !ok {
		return
	}
	pr := probe()
	v := sess.View
	v.Canvas = 0
	z, found := e.ResetZoomTarget(pr, v.Viewport())
	if !found {
		writeError(w, errors.New(errors.ErrCodeNotFound, "nothing to reset"))
		return
	}
	e.SetSelectedFrame(nil)

	from := geometryOf(sess.View, canvas(e, pr, sess.View).H)
	sess.View = session.Zoomed(v, z)
	if err := s.save(r.Context(), sess, e); err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess, e, &zoomTransition{
		From:       from,
		To:         geometryOf(sess.View, z.Height),
		DurationMS: flame.DefaultZoomDuration.Milliseconds(),
	})
}

// handleSearch replaces the highlighted frames with those matching q. An
// empty q clears the search.
func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, e, ok := s.load(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	e.SetHighlightFrames(profile.Matching(s.model, q), q)
	if err := s.save(r.Context(), sess, e); err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess, e, nil)
}
