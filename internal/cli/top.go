package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflame/pkg/pipeline"
	"github.com/matzehuels/stackflame/pkg/profile"
)

// topCommand creates the top command listing the heaviest functions.
func (c *CLI) topCommand() *cobra.Command {
	var (
		opts  pipeline.Options
		limit int
	)
	cmd := &cobra.Command{
		Use:   "top [profile]",
		Short: "Print the functions with the most self weight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			runner, err := c.newRunner(opts.NoCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			root, err := runner.Load(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Println(topTable(profile.Top(root, limit), root.Value))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of functions to list (0 for all)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the profile cache")
	addProfileFlags(cmd, &opts)
	return cmd
}

// topTable renders the function statistics as a bordered table.
func topTable(stats []profile.FuncStat, total float64) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	pct := func(v float64) string {
		if total <= 0 {
			return "-"
		}
		return fmt.Sprintf("%.1f%%", 100*v/total)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("SELF", "SELF%", "TOTAL", "TOTAL%", "FUNCTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if col == 4 {
				if row == 0 {
					return base.Foreground(colorFlame).Bold(true)
				}
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorGray).Align(lipgloss.Right)
		})

	for _, s := range stats {
		name := s.Name
		if s.Kind != profile.KindUnknown {
			name += " " + StyleDim.Render("["+s.Kind.String()+"]")
		}
		t.Row(formatWeight(s.Self), pct(s.Self), formatWeight(s.Total), pct(s.Total), name)
	}
	return t.Render()
}

// formatWeight prints integral weights without decimals.
func formatWeight(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
