package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflame/pkg/cache"
	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/pipeline"
	"github.com/matzehuels/stackflame/pkg/session"
)

const testProfile = `main;parse 3
main;render 1
`

func newTestServer(t *testing.T) (*httptest.Server, *session.MemoryStore) {
	t.Helper()
	data := []byte(testProfile)
	opts := pipeline.Options{Title: "cpu"}
	root, err := pipeline.Parse(context.Background(), data, opts)
	if err != nil {
		t.Fatal(err)
	}
	store := session.NewMemoryStore()
	logger := log.New(io.Discard)
	srv, err := newServer(logger, pipeline.NewRunner(nil, nil, logger), store, root, cache.Hash(data), opts)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, method, url string, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status = %d, want %d (%s)", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func TestServerHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	expectStatus(t, resp, http.StatusOK)
	got := decode[map[string]any](t, resp)
	if got["frames"] != float64(4) || got["title"] != "cpu" {
		t.Errorf("healthz = %v", got)
	}
}

func TestServerGraph(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/graph.svg?theme=dark&width=300", "")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("<title>cpu</title>")) {
		t.Error("svg should carry the title")
	}

	tests := []struct {
		path string
		want int
		code errors.Code
	}{
		{"/graph.bmp", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"/graph.svg?theme=blue", http.StatusBadRequest, errors.ErrCodeInvalidTheme},
		{"/graph.svg?width=x", http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := do(t, http.MethodGet, ts.URL+tt.path, "")
			expectStatus(t, resp, tt.want)
			if got := decode[errorResponse](t, resp); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestServerSession(t *testing.T) {
	ts, store := newTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/sessions", `{"width":400,"height":100}`)
	expectStatus(t, resp, http.StatusCreated)
	created := decode[sessionResponse](t, resp)
	if !session.ValidID(created.ID) {
		t.Fatalf("id = %q", created.ID)
	}
	if created.View.Width != 400 || created.View.Canvas != 0 || created.Selected != nil {
		t.Errorf("new view = %+v", created.View)
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d sessions", store.Len())
	}
	base := ts.URL + "/sessions/" + created.ID

	t.Run("frame", func(t *testing.T) {
		resp := do(t, http.MethodGet, base+"/frame?x=10&y=1", "")
		expectStatus(t, resp, http.StatusOK)
		if f := decode[frameInfo](t, resp); f.Index != 0 || f.Depth != 0 || f.Share != 1 {
			t.Errorf("frame = %+v", f)
		}
		expectStatus(t, do(t, http.MethodGet, base+"/frame?x=10&y=5000", ""), http.StatusNotFound)
		expectStatus(t, do(t, http.MethodGet, base+"/frame?x=a&y=1", ""), http.StatusBadRequest)
	})

	t.Run("hover", func(t *testing.T) {
		resp := do(t, http.MethodPost, base+"/hover?x=10&y=1", "")
		expectStatus(t, resp, http.StatusOK)
		if got := decode[sessionResponse](t, resp); got.Hovered == nil || got.View.Hovered != 0 {
			t.Errorf("hover = %+v", got.View)
		}
		resp = do(t, http.MethodPost, base+"/hover", "")
		expectStatus(t, resp, http.StatusOK)
		if got := decode[sessionResponse](t, resp); got.Hovered != nil || got.View.Hovered != -1 {
			t.Errorf("stop hover = %+v", got.View)
		}
	})

	t.Run("zoom", func(t *testing.T) {
		resp := do(t, http.MethodPost, base+"/zoom?frame=2", "")
		expectStatus(t, resp, http.StatusOK)
		got := decode[sessionResponse](t, resp)
		if got.Selected == nil || got.Selected.Name != "parse" {
			t.Fatalf("selected = %+v", got.Selected)
		}
		if got.View.Canvas != 533 || got.View.X != 0 {
			t.Errorf("zoomed view = %+v", got.View)
		}
		if got.Zoom == nil || got.Zoom.From.Canvas != 400 || got.Zoom.To.Canvas != 533 || got.Zoom.DurationMS != 400 {
			t.Errorf("transition = %+v", got.Zoom)
		}
		expectStatus(t, do(t, http.MethodPost, base+"/zoom?frame=99", ""), http.StatusBadRequest)
	})

	t.Run("search", func(t *testing.T) {
		resp := do(t, http.MethodPut, base+"/search?q=render", "")
		expectStatus(t, resp, http.StatusOK)
		if got := decode[sessionResponse](t, resp); got.Matches != 1 || got.View.Search != "render" {
			t.Errorf("search = %d matches, view %+v", got.Matches, got.View)
		}
	})

	t.Run("view", func(t *testing.T) {
		resp := do(t, http.MethodGet, base+"/view.png", "")
		expectStatus(t, resp, http.StatusOK)
		body, _ := io.ReadAll(resp.Body)
		if !bytes.HasPrefix(body, []byte("\x89PNG")) {
			t.Error("view is not a PNG")
		}
		resp = do(t, http.MethodGet, base+"/view.svg", "")
		expectStatus(t, resp, http.StatusOK)
		expectStatus(t, do(t, http.MethodGet, base+"/view.json", ""), http.StatusNotImplemented)
		expectStatus(t, do(t, http.MethodGet, base+"/minimap.png?width=50", ""), http.StatusOK)
	})

	t.Run("update", func(t *testing.T) {
		resp := do(t, http.MethodPut, base, `{"flame":true,"theme":"dark"}`)
		expectStatus(t, resp, http.StatusOK)
		if got := decode[sessionResponse](t, resp); !got.View.Flame || got.View.Theme != "dark" || got.View.Search != "render" {
			t.Errorf("updated view = %+v", got.View)
		}
	})

	t.Run("reset", func(t *testing.T) {
		resp := do(t, http.MethodPost, base+"/reset", "")
		expectStatus(t, resp, http.StatusOK)
		got := decode[sessionResponse](t, resp)
		if got.View.Canvas != 0 || got.Selected != nil || got.Zoom == nil || got.Zoom.From.Canvas != 533 {
			t.Errorf("reset = %+v, zoom %+v", got.View, got.Zoom)
		}
	})

	t.Run("delete", func(t *testing.T) {
		expectStatus(t, do(t, http.MethodDelete, base, ""), http.StatusNoContent)
		resp := do(t, http.MethodGet, base, "")
		expectStatus(t, resp, http.StatusNotFound)
		if got := decode[errorResponse](t, resp); got.Code != errors.ErrCodeSessionNotFound {
			t.Errorf("code = %s", got.Code)
		}
	})
}

func TestServerSessionErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed id", http.MethodGet, "/sessions/nope", "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/sessions/2b1c7f0e-4a43-4c4e-9a43-3f2d0c8f6a11", "", http.StatusNotFound},
		{"bad body", http.MethodPost, "/sessions", "{", http.StatusBadRequest},
		{"bad theme", http.MethodPost, "/sessions", `{"theme":"blue"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, do(t, tt.method, ts.URL+tt.path, tt.body), tt.want)
		})
	}
}
