package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/viewsplit/pkg/config"
	"github.com/matzehuels/viewsplit/pkg/errors"
	splitio "github.com/matzehuels/viewsplit/pkg/io"
	"github.com/matzehuels/viewsplit/pkg/pipeline"
)

// splitCommand creates the split command.
func (c *CLI) splitCommand() *cobra.Command {
	var (
		flags   splitFlags
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "split [dataset.json]",
		Short: "Split every entity of a dataset into overlapping tiles",
		Long: `Split every entity of a dataset into overlapping tiles.

The step size is resolved from the dataset's resolution pyramids unless
--step is given. Target size and overlap must be multiples of the step size;
pass --snap to round them automatically.

The result (split dataset plus identifier map) is written as JSON and cached
locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cfg)
			opts.Refresh = refresh
			return c.runSplit(cmd.Context(), args[0], output, opts, c.newRunnerFunc(cfg, noCache))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>_split.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if a cached result exists")

	return cmd
}

// runnerFunc creates the runner lazily so that input errors surface before
// a cache backend is contacted.
type runnerFunc func(ctx context.Context) (*pipeline.Runner, error)

func (c *CLI) newRunnerFunc(cfg config.Config, noCache bool) runnerFunc {
	return func(ctx context.Context) (*pipeline.Runner, error) {
		return c.newRunner(ctx, cfg, noCache)
	}
}

// runSplit loads the dataset, runs the pipeline and writes the result.
func (c *CLI) runSplit(ctx context.Context, input, output string, opts pipeline.Options, newRunner runnerFunc) error {
	prog := newProgress(c.Logger)

	ds, err := splitio.ImportDataset(input)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", input, err)
	}
	c.Logger.Debug("loaded dataset", "entities", len(ds.Entities), "timepoints", len(ds.Timepoints))

	runner, err := newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Splitting %d entities...", len(ds.Entities)))
	spinner.Start()

	result, err := runner.Execute(ctx, ds, opts)
	if err != nil {
		spinner.StopWithError("Split failed")
		if errors.IsFatal(err) {
			return fmt.Errorf("cannot split %s: %w", input, err)
		}
		return err
	}
	if output == "" {
		output = basePath("", input) + "_split.json"
	}
	spinner.SetMessage(fmt.Sprintf("Writing %s...", output))
	if err := splitio.ExportResult(result.Split, output); err != nil {
		spinner.StopWithError("Write failed")
		return err
	}
	spinner.Stop()

	printSuccess("Split %s", input)
	printStats(result.Stats.Entities, result.Stats.Tiles, result.CacheInfo.SplitHit)
	printDetail("step %v · target %v · overlap %v", result.Params.StepSize, result.Params.TargetSize, result.Params.Overlap)
	printFile(output)
	printNewline()
	printNextStep("Browse the tiles", fmt.Sprintf("%s inspect %s", appName, output))
	prog.done("Finished")
	return nil
}
