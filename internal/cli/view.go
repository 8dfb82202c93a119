package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflame/pkg/pipeline"
	"github.com/matzehuels/stackflame/pkg/profile"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/session"
)

// viewOpts holds the command-line flags for the view command.
type viewOpts struct {
	noCache  bool
	noResume bool
	minimap  bool
	pipeline.Options
}

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	opts := &viewOpts{}

	cmd := &cobra.Command{
		Use:   "view [profile]",
		Short: "Explore a profile interactively in the terminal",
		Long: `Explore a profile as a flame graph in the terminal.

Hover frames with the mouse, click to zoom, right-click to select. Keys:
  /        search frames (esc clears)
  enter, z zoom to the hovered or selected frame
  r        zoom back out
  f        flip between icicle and flame graph
  t        toggle the dark theme
  m        show the minimap
  s        show paint statistics
  arrows   pan
  q        quit

The view of each profile is remembered and restored on the next run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			c.applyConfig(cmd, &opts.Options)
			return c.runView(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the profile cache")
	cmd.Flags().BoolVar(&opts.noResume, "no-resume", false, "start from the default view instead of the remembered one")
	cmd.Flags().BoolVar(&opts.minimap, "minimap", false, "show the minimap on start")
	addProfileFlags(cmd, &opts.Options)
	addStyleFlags(cmd, &opts.Options)

	return cmd
}

func (c *CLI) runView(ctx context.Context, opts *viewOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	root, hash, _, err := runner.LoadWithCacheInfo(ctx, opts.Options)
	if err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = profile.Title(opts.Path)
	}
	if err := opts.ValidateForRender(); err != nil {
		return err
	}
	m, err := pipeline.Layout(ctx, root, opts.Options)
	if err != nil {
		return err
	}
	e, err := pipeline.NewEngine(m, opts.Options)
	if err != nil {
		return err
	}

	store, sess := c.resume(ctx, hash, opts)
	session.Restore(e, sess.View, func(text string) []*frame.Box[*profile.Node] {
		return profile.Matching(m, text)
	})

	v := newViewer(ctx, e, sess.View)
	v.showMinimap = opts.minimap
	p := tea.NewProgram(v, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("viewer: %w", err)
	}

	if store != nil {
		sess.View = v.State()
		sess.Touch(session.ResumeTTL)
		if err := store.Set(context.WithoutCancel(ctx), sess); err != nil {
			logger.Warn("could not remember the view", "err", err)
		}
	}
	return nil
}

// initialView is the view of a profile opened for the first time.
func initialView(opts *viewOpts) session.View {
	v := session.DefaultView()
	v.Flame, v.Theme, v.Search = opts.Flame, opts.Theme, opts.Search
	return v
}

// resume returns the remembered view of the profile, or the initial view.
// The store is nil when views cannot be remembered.
func (c *CLI) resume(ctx context.Context, hash string, opts *viewOpts) (*session.FileStore, *session.Session) {
	logger := loggerFromContext(ctx)
	fresh := func() *session.Session {
		s := session.New(hash, session.ResumeTTL)
		s.ID = session.ResumeID(hash)
		s.View = initialView(opts)
		return s
	}

	store, err := session.NewFileStore("")
	if err != nil {
		logger.Debug("view store unavailable", "err", err)
		return nil, fresh()
	}
	if opts.noResume {
		return store, fresh()
	}
	sess, err := store.LoadResume(ctx, hash)
	if err != nil {
		logger.Debug("could not load the remembered view", "err", err)
		return store, fresh()
	}
	if sess.View == session.DefaultView() {
		sess.View = initialView(opts)
	} else {
		logger.Debug("resuming view", "id", sess.ID, "canvas", sess.View.Canvas, "search", sess.View.Search)
	}
	return store, sess
}
