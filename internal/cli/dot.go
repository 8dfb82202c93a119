package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflame/pkg/pipeline"
	"github.com/matzehuels/stackflame/pkg/render/nodelink"
)

// dotCommand creates the dot command exporting the call tree.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		opts   pipeline.Options
		output string
		png    bool
		source bool
	)
	cmd := &cobra.Command{
		Use:   "dot [profile]",
		Short: "Export the call tree as a node-link diagram",
		Long: `Export the heaviest part of the call tree as a Graphviz diagram.

Nodes are colored like the flame graph and edges are labeled with the share
of the total weight. Subtrees deeper than --max-depth or lighter than
--min-width (a fraction of the total) are left out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts.Path = args[0]
			c.applyConfig(cmd, &opts)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}

			runner, err := c.newRunner(opts.NoCache)
			if err != nil {
				return err
			}
			defer runner.Close()
			root, err := runner.Load(ctx, opts)
			if err != nil {
				return err
			}

			dot, err := pipeline.DOT(root, opts)
			if err != nil {
				return err
			}
			var data []byte
			ext := pipeline.Extension(pipeline.FormatDOT)
			switch {
			case source:
				data, ext = []byte(dot), ".dot"
			case png:
				data, err = nodelink.RenderPNG(ctx, dot)
				ext = ".tree.png"
			default:
				data, err = nodelink.RenderSVG(ctx, dot)
			}
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if output == "" {
				output = basePath("", opts.Path) + ext
			}
			if err := writeFile(output, data); err != nil {
				return err
			}
			printSuccess("Exported call tree")
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; - for stdout")
	cmd.Flags().IntVar(&opts.DotDepth, "max-depth", pipeline.DefaultDotDepth, "deepest level to include")
	cmd.Flags().Float64Var(&opts.DotMinWidth, "min-width", 0.01, "smallest share of the total weight to include")
	cmd.Flags().BoolVar(&png, "png", false, "write PNG instead of SVG")
	cmd.Flags().BoolVar(&source, "source", false, "write the Graphviz source instead of rendering it")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the profile cache")
	cmd.Flags().StringVar(&opts.Palette, "palette", "", fmt.Sprintf("frame palette (default %s)", pipeline.DefaultPalette))
	cmd.Flags().StringVar(&opts.ColorMode, "color-mode", "", "color nodes by: package (default), name, kind")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "color theme: light (default), dark")
	addProfileFlags(cmd, &opts)
	return cmd
}
