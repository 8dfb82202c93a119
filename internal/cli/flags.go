package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflame/pkg/pipeline"
	"github.com/matzehuels/stackflame/pkg/profile"
)

// addProfileFlags registers the flags that control how a profile is read.
func addProfileFlags(cmd *cobra.Command, opts *pipeline.Options) {
	var format string
	cmd.Flags().StringVar(&format, "input-format", "", "profile format: collapsed, json (default: detect)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "graph title (default: file name)")
	cmd.Flags().BoolVar(&opts.Sort, "sort", false, "order children by weight instead of input order")
	cmd.Flags().BoolVar(&opts.ShowSelf, "show-self", false, "size frames by inclusive weight, leaving room for self time")

	prev := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		f, err := profile.ParseFormat(format)
		if err != nil {
			return err
		}
		opts.Format = f
		if prev != nil {
			return prev(cmd, args)
		}
		return nil
	}
}

// addStyleFlags registers the flags that control how frames look.
func addStyleFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().BoolVar(&opts.Flame, "flame", false, "draw a flame graph (root at the bottom) instead of an icicle graph")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "color theme: light (default), dark")
	cmd.Flags().StringVar(&opts.Palette, "palette", "", "frame palette (default "+pipeline.DefaultPalette+")")
	cmd.Flags().StringVar(&opts.ColorMode, "color-mode", "", "color frames by: package (default), name, kind")
	cmd.Flags().StringVar(&opts.Search, "search", "", "highlight frames whose name contains text")
	cmd.Flags().BoolVar(&opts.NoGaps, "no-gaps", false, "draw frames without gaps")
	cmd.Flags().BoolVar(&opts.HideSiblings, "hide-siblings", false, "do not tint other occurrences of a hovered frame")
	cmd.Flags().BoolVar(&opts.BlendingColors, "blending", false, "tint hovered frames instead of dimming the others")
	cmd.Flags().IntVar(&opts.TextPadding, "text-padding", 0, "label padding in pixels")
	cmd.Flags().Float64Var(&opts.FontSize, "font-size", 0, "label size in points")
}
