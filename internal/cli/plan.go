package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/viewsplit/pkg/core/interval"
	"github.com/matzehuels/viewsplit/pkg/pipeline"
)

// maxPlanWindows is how many windows per axis the plan table lists before
// eliding the middle.
const maxPlanWindows = 6

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var (
		flags splitFlags
		size  []int64
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show how an entity of a given size would be split",
		Long: `Show how an entity of a given size would be split.

Plan prints the windows of every axis and the number of tiles without
reading a dataset. Without --step every axis has step size 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			plan, err := runner.Plan(size, flags.options(cfg))
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, renderPlan(size, plan))
			for d, axis := range plan.Axes {
				if !axis.Converged {
					printWarning("axis %d: tile size search did not converge, using %d", d, axis.TileSize)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64SliceVar(&size, "size", nil, "entity size per axis (e.g. 2048,2048,500)")
	cmd.MarkFlagRequired("size")

	return cmd
}

// renderPlan formats a plan as a table with one row per axis.
func renderPlan(size []int64, plan *pipeline.PlanResult) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, len(plan.Axes))
	for d, axis := range plan.Axes {
		rows[d] = []string{
			strconv.Itoa(d),
			strconv.FormatInt(size[d], 10),
			strconv.FormatInt(plan.Params.TargetSize[d], 10),
			strconv.FormatInt(axis.TileSize, 10),
			strconv.FormatInt(plan.Params.Overlap[d], 10),
			strconv.Itoa(len(axis.Ranges)),
			formatWindows(axis.Ranges),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Axis", "Length", "Target", "Tile", "Overlap", "Windows", "Ranges").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if col == 3 && plan.Axes[row].TileSize != plan.Params.TargetSize[row] {
				return cellStyle.Foreground(colorYellow)
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Split plan"))
	b.WriteString("\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d tiles · step %v", plan.TileCount(), plan.Params.StepSize)))
	return b.String()
}

// formatWindows lists ranges, eliding the middle of long lists.
func formatWindows(ranges []interval.Range) string {
	parts := make([]string, 0, maxPlanWindows+1)
	for i, r := range ranges {
		if len(ranges) > maxPlanWindows && i == maxPlanWindows/2 {
			parts = append(parts, "…")
		}
		if len(ranges) > maxPlanWindows && i >= maxPlanWindows/2 && i < len(ranges)-maxPlanWindows/2 {
			continue
		}
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " ")
}
