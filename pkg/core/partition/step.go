package partition

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/viewsplit/pkg/errors"
)

// Pyramid lists the downsampling factors of one entity's resolution levels.
// Factors holds one vector per level, one value per axis, coarsest level last.
type Pyramid struct {
	Entity  int         `json:"entity"`
	Factors [][]float64 `json:"factors"`
}

// Coarsest returns the factor vector of the coarsest level, or nil when the
// entity has no pyramid.
func (p Pyramid) Coarsest() []float64 {
	if len(p.Factors) == 0 {
		return nil
	}
	return p.Factors[len(p.Factors)-1]
}

// ResolveStepSize computes the minimal step size per axis so that every tile
// offset and tile size maps onto whole voxels at every pyramid level of every
// entity.
//
// For each entity the coarsest level's factors are combined into a running
// least common multiple per axis. Without any pyramid the result is 1 on every
// axis.
//
// ResolveStepSize fails with [errors.ErrCodeFractionalDownsampling] if a
// coarsest factor has a fractional part; such a pyramid has to be recomputed
// before the data can be split. Factors below 1 or factor vectors with the
// wrong number of axes are [errors.ErrCodeInvalidInput].
//
// Pyramids are evaluated in ascending entity order, so the reported failure is
// the same on every run. The input slice is not modified.
func ResolveStepSize(dims int, pyramids []Pyramid) ([]int64, error) {
	if dims <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "number of dimensions must be positive, got %d", dims)
	}

	step := make([]int64, dims)
	for d := range step {
		step[d] = 1
	}

	ordered := slices.Clone(pyramids)
	slices.SortStableFunc(ordered, func(a, b Pyramid) int { return cmp.Compare(a.Entity, b.Entity) })

	for _, p := range ordered {
		factors := p.Coarsest()
		if factors == nil {
			continue
		}
		if len(factors) != dims {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"entity %d: downsampling factors have %d axes, want %d", p.Entity, len(factors), dims)
		}
		for d, f := range factors {
			if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"entity %d: invalid downsampling factor %v for dim=%d", p.Entity, f, d)
			}
			if f != math.Trunc(f) {
				return nil, errors.New(errors.ErrCodeFractionalDownsampling,
					"entity %d: downsampling factor %v for dim=%d is not an integer; recompute the multi-resolution pyramid before splitting",
					p.Entity, f, d)
			}
			step[d] = lcm(step[d], int64(math.Round(f)))
		}
	}

	return step, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}
