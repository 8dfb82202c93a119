package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflame/pkg/pipeline"
	"github.com/matzehuels/stackflame/pkg/profile"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file path (or base path for multiple outputs)
	formats string // comma-separated output formats
	minimap bool   // also write the minimap thumbnail
	pipeline.Options
}

// renderCommand creates the render command for generating flame graph files.
func (c *CLI) renderCommand() *cobra.Command {
	opts := &renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [profile]",
		Short: "Render a profile to PNG, SVG, JSON or text",
		Long: `Render a profile as a flame graph.

The profile is read as folded stacks ("main;parse;lex 12" per line) or as a
JSON call tree. Use -o - to write a single format to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			opts.Formats = parseFormats(opts.formats)
			if opts.minimap {
				opts.Formats = append(opts.Formats, pipeline.FormatMinimap)
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.Formats) != 1 {
				return fmt.Errorf("-o - needs exactly one format, got %d", len(opts.Formats))
			}
			c.applyConfig(cmd, &opts.Options)
			return c.runRender(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, json, txt, minimap, dot (comma-separated)")
	cmd.Flags().IntVar(&opts.Width, "width", 0, fmt.Sprintf("image width in pixels, or columns for txt (default %d)", pipeline.DefaultWidth))
	cmd.Flags().BoolVar(&opts.minimap, "minimap", false, "also write the minimap thumbnail")
	cmd.Flags().IntVar(&opts.MinimapWidth, "minimap-width", 0, fmt.Sprintf("minimap width in pixels (default %d)", pipeline.DefaultMinimapWidth))
	cmd.Flags().BoolVar(&opts.EmbedFont, "embed-font", false, "embed the label font in SVG output")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the render cache")
	addProfileFlags(cmd, &opts.Options)
	addStyleFlags(cmd, &opts.Options)

	return cmd
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// Longer extensions first: ".minimap.png" before ".png".
	exts := make([]string, 0, len(pipeline.ValidFormats))
	for format := range pipeline.ValidFormats {
		exts = append(exts, pipeline.Extension(format))
	}
	slices.SortFunc(exts, func(a, b string) int { return len(b) - len(a) })
	for _, ext := range exts {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// outputPath returns where one format of a render is written.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + pipeline.Extension(format)
}

// runRender renders the profile through the cached pipeline and writes one
// file per format.
func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(opts.NoCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Rendering "+filepath.Base(opts.Path))
	if opts.output != "-" {
		spinner.Start()
	}
	result, err := runner.Execute(ctx, opts.Options)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("pipeline finished", "formats", opts.Formats, "load", result.Stats.LoadTime, "render", result.Stats.RenderTime)

	if opts.output == "-" {
		_, err := os.Stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	title := opts.Title
	if title == "" {
		title = profile.Title(opts.Path)
	}
	printSuccess("Rendered %s", StyleHighlight.Render(title))
	printStats(result.Stats, opts.Search, result.CacheInfo.RenderHit)
	single := len(opts.Formats) == 1
	for _, format := range opts.Formats {
		path := outputPath(opts.output, opts.Path, format, single)
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	if opts.Search != "" && result.Stats.Matches == 0 {
		printWarning("No frames match %q", opts.Search)
	}
	printNextStep("Explore interactively", appName+" view "+opts.Path)
	return nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
