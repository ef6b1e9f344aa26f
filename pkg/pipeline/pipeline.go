// Package pipeline runs the resolve → split → render sequence shared by the
// CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: derive the minimal step size from the dataset's pyramids
//     (skipped when a step size is given)
//  2. Split: partition every entity and rewrite the metadata
//  3. Render: draw the identifier map as DOT or SVG (only when formats are
//     requested)
//
// Split results and rendered artifacts are cached by content hash, so
// re-running with the same dataset and options is a cache hit.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    TargetSize: []int64{512, 512, 128},
//	    Overlap:    []int64{64, 64, 16},
//	    Optimize:   true,
//	}
//	result, err := runner.Execute(ctx, ds, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.Tiles)
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/viewsplit/pkg/cache"
	"github.com/matzehuels/viewsplit/pkg/core/interval"
	"github.com/matzehuels/viewsplit/pkg/core/partition"
	"github.com/matzehuels/viewsplit/pkg/core/split"
	"github.com/matzehuels/viewsplit/pkg/errors"
	"github.com/matzehuels/viewsplit/pkg/render"
)

// Format constants for rendered artifacts.
const (
	FormatDOT = render.FormatDOT
	FormatSVG = render.FormatSVG
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Split options
	TargetSize             []int64 `json:"target_size"`
	Overlap                []int64 `json:"overlap"`
	MinStepSize            []int64 `json:"min_step_size,omitempty"` // empty: resolve from pyramids
	Optimize               bool    `json:"optimize,omitempty"`
	Snap                   bool    `json:"snap,omitempty"` // round target and overlap to legal values
	IlluminationsFromTiles bool    `json:"illuminations_from_tiles,omitempty"`
	Refresh                bool    `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger `json:"-"`
	Workers int         `json:"-"`
}

// Validate checks the option vectors for internal consistency. Whether the
// vectors fit a dataset is checked when splitting.
func (o *Options) Validate() error {
	if len(o.TargetSize) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "target_size is required")
	}
	if err := errors.ValidateDimensions("overlap", o.Overlap, len(o.TargetSize)); err != nil {
		return err
	}
	if len(o.MinStepSize) > 0 {
		if err := errors.ValidateDimensions("min_step_size", o.MinStepSize, len(o.TargetSize)); err != nil {
			return err
		}
	}
	return ValidateFormats(o.Formats)
}

// SplitKeyOpts returns the options that make up the split cache key.
func (o *Options) SplitKeyOpts() cache.SplitKeyOpts {
	return cache.SplitKeyOpts{
		TargetSize:             o.TargetSize,
		Overlap:                o.Overlap,
		MinStepSize:            o.MinStepSize,
		Optimize:               o.Optimize,
		Snap:                   o.Snap,
		IlluminationsFromTiles: o.IlluminationsFromTiles,
	}
}

// ArtifactKeyOpts returns the options that make up an artifact cache key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}

// Params returns the partition parameters for a resolved step size,
// snapped when o.Snap is set.
func (o *Options) Params(step []int64) partition.Params {
	p := partition.Params{
		TargetSize: slices.Clone(o.TargetSize),
		Overlap:    slices.Clone(o.Overlap),
		StepSize:   slices.Clone(step),
		Optimize:   o.Optimize,
	}
	if o.Snap {
		p = partition.SnapParams(p)
	}
	return p
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Split is the split dataset with its identifier map.
	Split *split.Result

	// Params are the effective partition parameters (after resolve and snap).
	Params partition.Params

	// DatasetHash is the content hash of the input dataset.
	DatasetHash string

	// Artifacts contains rendered diagrams keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Entities    int           `json:"entities"`
	Tiles       int           `json:"tiles"`
	MaxSpread   int           `json:"max_spread"`
	ResolveTime time.Duration `json:"resolve_time"`
	SplitTime   time.Duration `json:"split_time"`
	RenderTime  time.Duration `json:"render_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SplitHit  bool `json:"split_hit"`  // Whether the split result came from cache
	RenderHit bool `json:"render_hit"` // Whether all artifacts came from cache
}

// PlanResult describes how one entity size would be split.
type PlanResult struct {
	Params partition.Params     `json:"params"`
	Axes   []partition.AxisPlan `json:"axes"`
	Tiles  []interval.Interval  `json:"tiles"`
}

// TileCount returns the number of tiles of the plan.
func (p *PlanResult) TileCount() int { return len(p.Tiles) }

func (s Stats) String() string {
	return fmt.Sprintf("%d entities -> %d tiles (max spread %d)", s.Entities, s.Tiles, s.MaxSpread)
}
