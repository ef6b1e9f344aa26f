package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	splitio "github.com/matzehuels/viewsplit/pkg/io"
	"github.com/matzehuels/viewsplit/pkg/pipeline"
)

// graphCommand creates the graph command for rendering identifier maps.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		detailed   bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "graph [result.json]",
		Short: "Render the identifier map of a split result",
		Long: `Render the identifier map of a split result.

Every original entity becomes a cluster holding the tiles carved from it.
With --detailed each tile is labeled with its original tile and region.

Formats: dot (Graphviz source) and svg. Use "-o -" to write a single format
to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := pipeline.Options{Formats: formats, Detailed: detailed, Logger: c.Logger}
			return c.runGraph(cmd.Context(), runner, args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label tiles with their original tile and region")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runGraph loads a split result and writes one file per format.
func (c *CLI) runGraph(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) error {
	res, err := splitio.ImportResult(input)
	if err != nil {
		return fmt.Errorf("load result %s: %w", input, err)
	}
	c.Logger.Debug("loaded result", "entities", len(res.Entities), "originals", len(res.Map.Originals()))

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if output == "-" && len(opts.Formats) == 1 {
		_, err := os.Stdout.Write(artifacts[opts.Formats[0]])
		return err
	}

	base := basePath(output, input)
	for _, format := range opts.Formats {
		path := base + "." + format
		if output != "" && len(opts.Formats) == 1 {
			path = output
		}
		if err := writeFile(path, artifacts[format]); err != nil {
			return err
		}
		c.Logger.Debug("generated", "path", path, "bytes", len(artifacts[format]), "cached", cacheHit)
		printFile(path)
	}
	return nil
}

// writeFile writes data to path, or to stdout when path is "-".
func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

// openOutput returns stdout for "" and "-", and creates path otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
