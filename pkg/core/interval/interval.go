// Package interval provides axis-aligned N-dimensional boxes with inclusive
// integer bounds.
//
// An [Interval] holds one (min, max) pair per axis; a [Range] is a single
// such pair. Both bounds are inclusive, so a range covering the first 1000
// voxels of an axis is Range{Min: 0, Max: 999} and has Size 1000.
package interval

import (
	"fmt"
	"slices"
	"strings"
)

// Range is an inclusive (min, max) pair on one axis.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Size returns the number of coordinates covered by r.
func (r Range) Size() int64 { return r.Max - r.Min + 1 }

// Contains reports whether v lies within r, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= float64(r.Min) && v <= float64(r.Max)
}

// String formats r as "[min, max]".
func (r Range) String() string { return fmt.Sprintf("[%d, %d]", r.Min, r.Max) }

// Interval is an N-dimensional box with inclusive bounds.
//
// Min and Max have the same length and Min[d] <= Max[d] holds for every axis.
// Use [New] or [FromSize] to get a validated value.
type Interval struct {
	Min []int64 `json:"min"`
	Max []int64 `json:"max"`
}

// New builds an interval from per-axis bounds. The slices are copied.
// It returns an error if the lengths differ or any min exceeds its max.
func New(min, max []int64) (Interval, error) {
	if len(min) != len(max) {
		return Interval{}, fmt.Errorf("interval: min has %d axes, max has %d", len(min), len(max))
	}
	for d := range min {
		if min[d] > max[d] {
			return Interval{}, fmt.Errorf("interval: min %d > max %d on axis %d", min[d], max[d], d)
		}
	}
	return Interval{Min: slices.Clone(min), Max: slices.Clone(max)}, nil
}

// FromSize returns the zero-min interval of the given size.
// Every size must be positive.
func FromSize(size []int64) (Interval, error) {
	min := make([]int64, len(size))
	max := make([]int64, len(size))
	for d, s := range size {
		if s <= 0 {
			return Interval{}, fmt.Errorf("interval: size %d on axis %d is not positive", s, d)
		}
		max[d] = s - 1
	}
	return Interval{Min: min, Max: max}, nil
}

// FromRanges assembles an interval from one range per axis.
func FromRanges(ranges []Range) Interval {
	iv := Interval{Min: make([]int64, len(ranges)), Max: make([]int64, len(ranges))}
	for d, r := range ranges {
		iv.Min[d] = r.Min
		iv.Max[d] = r.Max
	}
	return iv
}

// NumDimensions returns the number of axes.
func (iv Interval) NumDimensions() int { return len(iv.Min) }

// Axis returns the range of axis d.
func (iv Interval) Axis(d int) Range { return Range{Min: iv.Min[d], Max: iv.Max[d]} }

// Dimensions returns the per-axis sizes.
func (iv Interval) Dimensions() []int64 {
	dims := make([]int64, len(iv.Min))
	for d := range iv.Min {
		dims[d] = iv.Max[d] - iv.Min[d] + 1
	}
	return dims
}

// NumElements returns the product of all axis sizes.
func (iv Interval) NumElements() int64 {
	n := int64(1)
	for _, s := range iv.Dimensions() {
		n *= s
	}
	return n
}

// Contains reports whether the point p lies inside iv on every axis.
// Points with a different number of coordinates are never contained.
func (iv Interval) Contains(p []float64) bool {
	if len(p) != len(iv.Min) {
		return false
	}
	for d, v := range p {
		if v < float64(iv.Min[d]) || v > float64(iv.Max[d]) {
			return false
		}
	}
	return true
}

// ContainsInterval reports whether other lies entirely inside iv.
func (iv Interval) ContainsInterval(other Interval) bool {
	if len(other.Min) != len(iv.Min) {
		return false
	}
	for d := range iv.Min {
		if other.Min[d] < iv.Min[d] || other.Max[d] > iv.Max[d] {
			return false
		}
	}
	return true
}

// Translate returns iv shifted by offset on every axis.
func (iv Interval) Translate(offset []int64) Interval {
	out := Interval{Min: slices.Clone(iv.Min), Max: slices.Clone(iv.Max)}
	for d := range offset {
		out.Min[d] += offset[d]
		out.Max[d] += offset[d]
	}
	return out
}

// Equal reports whether both intervals have identical bounds.
func (iv Interval) Equal(other Interval) bool {
	if len(iv.Min) != len(other.Min) {
		return false
	}
	for d := range iv.Min {
		if iv.Min[d] != other.Min[d] || iv.Max[d] != other.Max[d] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of iv.
func (iv Interval) Clone() Interval {
	return Interval{Min: slices.Clone(iv.Min), Max: slices.Clone(iv.Max)}
}

// String formats iv as "[0, 0] -> [249, 249], dimensions (250, 250)".
func (iv Interval) String() string {
	return fmt.Sprintf("%s -> %s, dimensions %s",
		join(iv.Min, "[", "]"), join(iv.Max, "[", "]"), join(iv.Dimensions(), "(", ")"))
}

func join(v []int64, open, close string) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return open + strings.Join(parts, ", ") + close
}
