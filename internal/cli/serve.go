package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflame/pkg/cache"
	"github.com/matzehuels/stackflame/pkg/pipeline"
	"github.com/matzehuels/stackflame/pkg/profile"
	"github.com/matzehuels/stackflame/pkg/session"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address
	redis   string // redis address shared by several instances, empty for local state
	noCache bool
	pipeline.Options
}

// serveCommand creates the serve command for browser viewers.
func (c *CLI) serveCommand() *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve [profile]",
		Short: "Serve an interactive flame graph over HTTP",
		Long: `Serve a profile over HTTP.

Each browser viewer opens a session (POST /sessions) and drives it with
hover, zoom, select and search requests; GET /sessions/{id}/view.png paints
the current viewport. With --redis, sessions and renders are shared through
Redis so that several instances can serve the same profile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			c.applyConfig(cmd, &opts.Options)
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis address (host:port or redis:// URL) for shared sessions and renders")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().IntVar(&opts.MinimapWidth, "minimap-width", 0, fmt.Sprintf("minimap width in pixels (default %d)", pipeline.DefaultMinimapWidth))
	addProfileFlags(cmd, &opts.Options)
	addStyleFlags(cmd, &opts.Options)

	return cmd
}

// backends returns the render cache and the session store of the server.
func (c *CLI) backends(ctx context.Context, opts *serveOpts) (cache.Cache, session.Store, error) {
	if opts.redis != "" {
		rc, err := cache.NewRedisCache(ctx, opts.redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rc, session.NewCacheStore(rc), nil
	}
	local, err := newCache(opts.noCache)
	if err != nil {
		return nil, nil, err
	}
	return local, session.NewMemoryStore(), nil
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	store, sessions, err := c.backends(ctx, opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, nil, logger)
	defer runner.Close()

	root, hash, _, err := runner.LoadWithCacheInfo(ctx, opts.Options)
	if err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = profile.Title(opts.Path)
	}
	srv, err := newServer(logger, runner, sessions, root, hash, opts.Options)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSuccess("Serving %s", StyleTitle.Render(srv.model.Title()))
	printKeyValue("Address", "http://"+ln.Addr().String())
	printKeyValue("Frames", fmt.Sprint(srv.model.Len()))
	printNextStep("Open a session", "curl -X POST http://"+ln.Addr().String()+"/sessions")

	go sweepSessions(ctx, sessions, logger)

	errc := make(chan error, 1)
	go func() { errc <- httpServer.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// sweepSessions removes expired sessions until ctx is done.
func sweepSessions(ctx context.Context, store session.Store, logger *log.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				logger.Debug("session cleanup failed", "err", err)
			}
		}
	}
}
