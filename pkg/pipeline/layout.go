package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/stackflame/pkg/fonts"
	"github.com/matzehuels/stackflame/pkg/observability"
	"github.com/matzehuels/stackflame/pkg/profile"
	"github.com/matzehuels/stackflame/pkg/render/flame"
	"github.com/matzehuels/stackflame/pkg/render/flame/colors"
	"github.com/matzehuels/stackflame/pkg/render/flame/frame"
	"github.com/matzehuels/stackflame/pkg/render/flame/styles"
)

// Engine is the render engine specialized to profile call trees.
type Engine = flame.Engine[*profile.Node]

// Model is the frame model of a profile.
type Model = frame.Model[*profile.Node]

// =============================================================================
// Layout
// =============================================================================

// Layout flattens the call tree into a frame model.
func Layout(ctx context.Context, root *profile.Node, opts Options) (*Model, error) {
	mode := modeName(opts.Flame)
	observability.Pipeline().OnLayoutStart(ctx, mode, root.Count())
	start := time.Now()

	m, err := profile.ToModel(root, opts.Title, profile.ModelOptions{ShowSelf: opts.ShowSelf})
	count := 0
	if err == nil {
		count = m.Len()
	}
	observability.Pipeline().OnLayoutComplete(ctx, mode, count, time.Since(start), err)
	return m, err
}

// NewEngine builds an engine over m configured from opts. Label fonts are
// allocated per engine, so engines can paint concurrently. The search text,
// if any, is installed as the highlight set.
func NewEngine(m *Model, opts Options) (*Engine, error) {
	r, err := NewRenderer(opts)
	if err != nil {
		return nil, err
	}

	engineOpts := []flame.EngineOption[*profile.Node]{
		flame.WithIcicle[*profile.Node](!opts.Flame),
		flame.WithTheme[*profile.Node](opts.ThemeValue()),
		flame.WithHoveredSiblings[*profile.Node](!opts.HideSiblings),
	}
	if !opts.Colors.Border.IsZero() {
		border, err := opts.Colors.Border.Pair()
		if err != nil {
			return nil, err
		}
		engineOpts = append(engineOpts, flame.WithBorderColor[*profile.Node](border))
	}

	e := flame.NewEngine(r, engineOpts...)
	if err := e.Init(m); err != nil {
		return nil, err
	}
	if opts.Search != "" {
		e.SetHighlightFrames(profile.Matching(m, opts.Search), opts.Search)
	}
	return e, nil
}

// NewRenderer builds the frame renderer described by opts: palette colors
// by color mode, Go fonts at the configured size and progressively shorter
// frame labels.
func NewRenderer(opts Options) (*flame.FrameRenderer[*profile.Node], error) {
	colorProvider, err := NewColorProvider(opts)
	if err != nil {
		return nil, err
	}
	set, err := fonts.Set(opts.FontSize)
	if err != nil {
		return nil, err
	}
	return flame.NewFrameRenderer[*profile.Node](
		colorProvider,
		styles.DefaultFontProvider[*profile.Node](set),
		styles.NewTexts(profile.Labels()...),
		flame.WithFrameGaps[*profile.Node](!opts.NoGaps),
		flame.WithTextPadding[*profile.Node](opts.TextPadding),
	), nil
}

// NewColorProvider builds the color strategy described by opts.
func NewColorProvider(opts Options) (styles.ColorProvider[*profile.Node], error) {
	palette, err := colors.LookupPalette(opts.Palette)
	if err != nil {
		return nil, err
	}
	mode, err := profile.ParseColorMode(opts.ColorMode)
	if err != nil {
		return nil, err
	}
	base := profile.BaseColor(mode, palette)
	if opts.BlendingColors {
		return styles.NewBlendingColorProvider(base), nil
	}

	var dimming []styles.DimmingOption
	for _, o := range []struct {
		pair  ColorPair
		apply func(colors.Pair) styles.DimmingOption
	}{
		{opts.Colors.Root, styles.WithRootBackground},
		{opts.Colors.DimmedText, styles.WithDimmedText},
		{opts.Colors.Hovered, styles.WithHoveredBackground},
	} {
		if o.pair.IsZero() {
			continue
		}
		p, err := o.pair.Pair()
		if err != nil {
			return nil, err
		}
		dimming = append(dimming, o.apply(p))
	}
	return styles.NewDimmingColorProvider(base, dimming...), nil
}

func modeName(flameMode bool) string {
	if flameMode {
		return "flame"
	}
	return "icicle"
}
