package partition

import (
	"github.com/matzehuels/viewsplit/pkg/core/interval"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

// MaxOptimizeSteps bounds the tile size search in [OptimizeTileSize].
const MaxOptimizeSteps = 1 << 16

// AxisPlan is the partition of one axis.
type AxisPlan struct {
	// Ranges are the windows in ascending order.
	Ranges []interval.Range `json:"ranges"`

	// TileSize is the window width used for the iteration. It differs from
	// the requested target size only when the optimizer picked another size.
	TileSize int64 `json:"tile_size"`

	// Converged is false when optimization was requested but the search hit
	// its bounds and fell back to the target size.
	Converged bool `json:"converged"`
}

// ValidateAxis checks the parameters of axis d.
//
// Target size and step must be positive and the overlap non-negative
// ([errors.ErrCodeInvalidInput]). Target size and overlap must be multiples of
// the step ([errors.ErrCodeAlignment]) and the overlap must be smaller than the
// target size ([errors.ErrCodeOverlapExceedsSize]); an overlap equal to the
// target size would never advance the window.
func ValidateAxis(d int, targetSize, overlap, step int64) error {
	if targetSize <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "targetSize %d must be positive for dim=%d", targetSize, d)
	}
	if step <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "minStepSize %d must be positive for dim=%d", step, d)
	}
	if overlap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "overlapPx %d must not be negative for dim=%d", overlap, d)
	}
	if targetSize%step != 0 {
		return errors.New(errors.ErrCodeAlignment, "targetSize %d not divisible by minStepSize %d for dim=%d", targetSize, step, d)
	}
	if overlap%step != 0 {
		return errors.New(errors.ErrCodeAlignment, "overlapPx %d not divisible by minStepSize %d for dim=%d", overlap, step, d)
	}
	if overlap >= targetSize {
		return errors.New(errors.ErrCodeOverlapExceedsSize, "overlapPx %d must be smaller than targetSize %d for dim=%d", overlap, targetSize, d)
	}
	return nil
}

// LastTileSize estimates the width of the last window when an axis of length
// l is tiled with windows of size s overlapping by o, ignoring clamping:
//
//	o + ((l − 2(s−o) − o) mod (s−o))
//
// The modulo truncates toward zero; a negative result (two overlapping
// windows) is shifted by l. The estimate only steers [OptimizeTileSize]; the
// real windows always come from [SplitAxis]. s must be greater than o.
func LastTileSize(l, s, o int64) int64 {
	size := o + (l-2*(s-o)-o)%(s-o)
	if size < 0 {
		size += l
	}
	return size
}

// OptimizeTileSize searches for a tile size near s, in steps of step, that
// evens out the last window of an axis of length l.
//
// If the estimated last window is at most half of s, the size grows while the
// estimate keeps shrinking and the first size where it stops shrinking is
// returned. Otherwise the size shrinks while the estimate keeps growing and
// the last size before it stopped growing is returned.
//
// The search assumes the estimate is unimodal around s. It gives up after
// [MaxOptimizeSteps] steps or when a smaller size would no longer exceed the
// overlap; it then returns s and false.
func OptimizeTileSize(l, s, o, step int64) (int64, bool) {
	last := LastTileSize(l, s, o)
	if last == s {
		return s, true
	}

	size := s
	if last <= s/2 {
		for i := 0; i < MaxOptimizeSteps; i++ {
			size += step
			current := LastTileSize(l, size, o)
			delta := last - current
			last = current
			if delta <= 0 {
				return size, true
			}
		}
		return s, false
	}

	for i := 0; i < MaxOptimizeSteps; i++ {
		if size-step <= o {
			return s, false
		}
		size -= step
		current := LastTileSize(l, size, o)
		delta := last - current
		last = current
		if delta >= 0 {
			return size + step, true
		}
	}
	return s, false
}

// SplitAxis tiles axis with windows of width s overlapping by o.
//
// Consecutive windows satisfy next.Min = prev.Max − o + 1; the first window
// starts at axis.Min and the last one ends at axis.Max. The last window may be
// narrower than s, even narrower than o. s must be greater than o.
func SplitAxis(axis interval.Range, s, o int64) []interval.Range {
	var ranges []interval.Range
	from := axis.Min
	for {
		to := min(axis.Max, from+s-1)
		ranges = append(ranges, interval.Range{Min: from, Max: to})
		if to >= axis.Max {
			return ranges
		}
		from = to - o + 1
	}
}

// PlanAxis partitions one axis. Parameters must have passed [ValidateAxis].
//
// An axis no longer than the target size becomes a single window and overlap
// does not apply. Otherwise the axis is tiled by [SplitAxis], with the tile
// size tuned by [OptimizeTileSize] first when optimize is set.
func PlanAxis(axis interval.Range, targetSize, overlap, step int64, optimize bool) AxisPlan {
	length := axis.Size()
	if length <= targetSize {
		return AxisPlan{Ranges: []interval.Range{axis}, TileSize: targetSize, Converged: true}
	}

	size, converged := targetSize, true
	if optimize {
		size, converged = OptimizeTileSize(length, targetSize, overlap, step)
	}

	return AxisPlan{
		Ranges:    SplitAxis(axis, size, overlap),
		TileSize:  size,
		Converged: converged,
	}
}
