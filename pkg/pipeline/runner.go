package pipeline

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/stackflame/pkg/cache"
	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/observability"
	"github.com/matzehuels/stackflame/pkg/profile"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options; identical concurrent renders are
// performed once.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	flight singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	root, hash, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Profile = root
	result.ProfileHash = hash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = root.Count()
	result.Stats.Depth = root.Depth()
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded profile",
		"nodes", result.Stats.NodeCount,
		"depth", result.Stats.Depth,
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stages 2 and 3: Layout and render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, root, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	if m, err := Layout(ctx, root, opts); err == nil {
		result.Stats.FrameCount = m.Len()
		result.Stats.Matches = len(profile.Matching(m, opts.Search))
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads and parses the profile, returning the call tree,
// the content hash of the input and whether the parsed tree came from
// cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*profile.Node, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, "", false, err
	}

	data, err := ReadInput(opts)
	if err != nil {
		return nil, "", false, err
	}
	hash := cache.Hash(data)
	// The title and sort order change the tree, so they are part of the key.
	key := r.Keyer.TreeKey(cache.TreeVariant(hash, opts.Title, opts.Sort))

	if !opts.NoCache {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if root, err := profile.ReadJSON(bytes.NewReader(cached)); err == nil {
				observability.Cache().OnCacheHit(ctx, cache.KeyTypeTree)
				return root, hash, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeTree)
	}

	root, err := Parse(ctx, data, opts)
	if err != nil {
		return nil, "", false, err
	}

	if !opts.NoCache {
		var buf bytes.Buffer
		if err := profile.WriteJSON(root, &buf); err == nil {
			if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TreeTTL); err != nil {
				opts.Logger.Debug("cache write failed", "key_type", cache.KeyTypeTree, "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, cache.KeyTypeTree, buf.Len())
			}
		}
	}
	return root, hash, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards
// the hash and cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*profile.Node, error) {
	root, _, _, err := r.LoadWithCacheInfo(ctx, opts)
	return root, err
}

// RenderWithCacheInfo renders every requested format of the profile,
// reusing cached artifacts. Missing formats render concurrently, each on
// its own engine. It reports whether every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, root *profile.Node, hash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
		allHit    = true
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, hit, err := r.renderCached(gctx, root, hash, format, opts)
			if err != nil {
				code := errors.GetCode(err)
				if code == "" {
					code = errors.ErrCodeInternal
				}
				return errors.Wrap(code, err, "render %s", format)
			}
			mu.Lock()
			defer mu.Unlock()
			artifacts[format] = data
			allHit = allHit && hit
			return nil
		})
	}
	err := g.Wait()
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return artifacts, allHit, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, root *profile.Node, hash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, root, hash, opts)
	return artifacts, err
}

func (r *Runner) renderCached(ctx context.Context, root *profile.Node, hash, format string, opts Options) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
	if !opts.NoCache && hash != "" {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, cache.KeyTypeArtifact)
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeArtifact)
	}

	v, err, shared := r.flight.Do(key, func() (any, error) {
		return r.render(ctx, root, format, opts)
	})
	if err != nil {
		return nil, false, err
	}
	data := v.([]byte)
	if shared {
		opts.Logger.Debug("shared concurrent render", "format", format)
	}

	if !opts.NoCache && hash != "" {
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			opts.Logger.Debug("cache write failed", "key_type", cache.KeyTypeArtifact, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeArtifact, len(data))
		}
	}
	return data, false, nil
}

func (r *Runner) render(ctx context.Context, root *profile.Node, format string, opts Options) ([]byte, error) {
	if format == FormatDOT {
		return RenderDOT(ctx, root, opts)
	}
	m, err := Layout(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	e, err := NewEngine(m, opts)
	if err != nil {
		return nil, err
	}
	data, err := RenderFormat(ctx, e, root, format, opts)
	if err == nil {
		opts.Logger.Debug("rendered", "format", format, "frames", m.Len(), "bytes", len(data))
	}
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
