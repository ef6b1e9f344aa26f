package partition

import (
	"slices"

	"github.com/matzehuels/viewsplit/pkg/core/interval"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

// Params are the per-axis splitting parameters shared by every entity of one
// split.
type Params struct {
	TargetSize []int64 `json:"target_size"`
	Overlap    []int64 `json:"overlap"`
	StepSize   []int64 `json:"min_step_size"`
	Optimize   bool    `json:"optimize"`
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	return Params{
		TargetSize: slices.Clone(p.TargetSize),
		Overlap:    slices.Clone(p.Overlap),
		StepSize:   slices.Clone(p.StepSize),
		Optimize:   p.Optimize,
	}
}

// Validate checks the vector lengths against dims and every axis with
// [ValidateAxis]. The first failing axis is reported.
func (p Params) Validate(dims int) error {
	if err := errors.ValidateDimensions("targetSize", p.TargetSize, dims); err != nil {
		return err
	}
	if err := errors.ValidateDimensions("overlapPx", p.Overlap, dims); err != nil {
		return err
	}
	if err := errors.ValidateDimensions("minStepSize", p.StepSize, dims); err != nil {
		return err
	}
	for d := 0; d < dims; d++ {
		if err := ValidateAxis(d, p.TargetSize[d], p.Overlap[d], p.StepSize[d]); err != nil {
			return err
		}
	}
	return nil
}

// Plan partitions every axis of extent. Parameters must be valid for
// extent.NumDimensions().
func (p Params) Plan(extent interval.Interval) []AxisPlan {
	plans := make([]AxisPlan, extent.NumDimensions())
	for d := range plans {
		plans[d] = PlanAxis(extent.Axis(d), p.TargetSize[d], p.Overlap[d], p.StepSize[d], p.Optimize)
	}
	return plans
}

// Compose returns the Cartesian product of the per-axis ranges.
//
// Tiles are enumerated with axis 0 varying fastest: for two axes with ranges
// a0,a1 and b0,b1 the order is (a0,b0), (a1,b0), (a0,b1), (a1,b1). The number
// of tiles is the product of the axis lengths; any empty axis yields no tiles.
func Compose(axes [][]interval.Range) []interval.Interval {
	if len(axes) == 0 {
		return nil
	}

	total := 1
	for _, ranges := range axes {
		total *= len(ranges)
	}
	if total == 0 {
		return nil
	}

	tiles := make([]interval.Interval, 0, total)
	pos := make([]int, len(axes))
	for i := 0; i < total; i++ {
		ranges := make([]interval.Range, len(axes))
		for d, p := range pos {
			ranges[d] = axes[d][p]
		}
		tiles = append(tiles, interval.FromRanges(ranges))

		// advance the mixed-radix counter, axis 0 first
		for d := range pos {
			pos[d]++
			if pos[d] < len(axes[d]) {
				break
			}
			pos[d] = 0
		}
	}
	return tiles
}

// TileIndex returns the enumeration index [Compose] assigns to the tile built
// from the given per-axis positions.
func TileIndex(pos, counts []int) int {
	idx, stride := 0, 1
	for d := range pos {
		idx += pos[d] * stride
		stride *= counts[d]
	}
	return idx
}

// Distribute splits the zero-min extent of size into tiles.
//
// Every axis is validated before any partitioning happens, so a bad axis
// produces no partial output.
func Distribute(size []int64, p Params) ([]interval.Interval, error) {
	extent, err := interval.FromSize(size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid size %v", size)
	}
	if err := p.Validate(len(size)); err != nil {
		return nil, err
	}

	plans := p.Plan(extent)
	axes := make([][]interval.Range, len(plans))
	for d, plan := range plans {
		axes[d] = plan.Ranges
	}
	return Compose(axes), nil
}
