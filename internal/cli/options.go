package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/viewsplit/pkg/config"
	"github.com/matzehuels/viewsplit/pkg/pipeline"
)

// splitFlags are the splitting parameters shared by split, plan and serve.
// Flags that are not set on the command line fall back to the config file.
type splitFlags struct {
	targetSize             []int64
	overlap                []int64
	minStepSize            []int64
	optimize               bool
	snap                   bool
	illuminationsFromTiles bool

	flags *pflag.FlagSet
}

func (f *splitFlags) register(cmd *cobra.Command) {
	f.flags = cmd.Flags()
	f.flags.Int64SliceVar(&f.targetSize, "target", nil, "target tile size per axis (e.g. 512,512,128)")
	f.flags.Int64SliceVar(&f.overlap, "overlap", nil, "overlap per axis (e.g. 64,64,16)")
	f.flags.Int64SliceVar(&f.minStepSize, "step", nil, "minimal step size per axis (default: resolved from pyramids)")
	f.flags.BoolVar(&f.optimize, "optimize", false, "adjust tile sizes to balance the last tile of each axis")
	f.flags.BoolVar(&f.snap, "snap", false, "round target size and overlap to multiples of the step size")
	f.flags.BoolVar(&f.illuminationsFromTiles, "illuminations-from-tiles", false, "name illuminations after the original tiles")
}

// options merges the flags over the split section of cfg.
func (f *splitFlags) options(cfg config.Config) pipeline.Options {
	s := cfg.Split
	opts := pipeline.Options{
		TargetSize:             s.TargetSize,
		Overlap:                s.Overlap,
		MinStepSize:            s.MinStepSize,
		Optimize:               s.Optimize,
		Snap:                   s.Snap,
		IlluminationsFromTiles: s.IlluminationsFromTiles,
	}
	if f.changed("target") {
		opts.TargetSize = f.targetSize
	}
	if f.changed("overlap") {
		opts.Overlap = f.overlap
	}
	if f.changed("step") {
		opts.MinStepSize = f.minStepSize
	}
	if f.changed("optimize") {
		opts.Optimize = f.optimize
	}
	if f.changed("snap") {
		opts.Snap = f.snap
	}
	if f.changed("illuminations-from-tiles") {
		opts.IlluminationsFromTiles = f.illuminationsFromTiles
	}
	return opts
}

func (f *splitFlags) changed(name string) bool {
	return f.flags != nil && f.flags.Changed(name)
}
