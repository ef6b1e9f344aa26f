package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	splitio "github.com/matzehuels/viewsplit/pkg/io"
	"github.com/matzehuels/viewsplit/pkg/pipeline"
)

// stepsCommand creates the steps command.
func (c *CLI) stepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "steps [dataset.json]",
		Short: "Print the step size resolved from a dataset's pyramids",
		Long: `Print the step size resolved from a dataset's pyramids.

The step size is the least common multiple, per axis, of the coarsest
downsampling factors of all entities. Target size and overlap of a split
must be multiples of it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := splitio.ImportDataset(args[0])
			if err != nil {
				return fmt.Errorf("load dataset %s: %w", args[0], err)
			}
			dims, err := ds.NumDimensions()
			if err != nil {
				return err
			}

			// Any target vector of the right length passes the runner's dimension check.
			opts := pipeline.Options{TargetSize: make([]int64, dims)}
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			step, err := runner.ResolveStepSize(cmd.Context(), ds, opts)
			if err != nil {
				return err
			}

			printKeyValue("Entities", fmt.Sprint(len(ds.Entities)))
			printKeyValue("Pyramids", fmt.Sprint(len(ds.Pyramids)))
			printKeyValue("Step size", fmt.Sprint(step))
			return nil
		},
	}
}
