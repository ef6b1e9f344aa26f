package dataset

import (
	"slices"

	"github.com/matzehuels/viewsplit/pkg/core/interval"
)

// Point is one interest point in a view's local coordinates.
type Point struct {
	ID  int       `json:"id"`
	Loc []float64 `json:"loc"`
}

// PointList is a labeled list of interest points of one view.
type PointList struct {
	Label      string  `json:"label"`
	Parameters string  `json:"parameters,omitempty"`
	Points     []Point `json:"points"`
}

// Clone returns a deep copy of pl.
func (pl PointList) Clone() PointList {
	out := PointList{Label: pl.Label, Parameters: pl.Parameters, Points: make([]Point, len(pl.Points))}
	for i, p := range pl.Points {
		out.Points[i] = Point{ID: p.ID, Loc: slices.Clone(p.Loc)}
	}
	return out
}

// Crop keeps the points inside iv, moves them into the local coordinates of
// iv and numbers them from zero in their original order. The result always
// has a non-nil Points slice, so an empty crop is still a list.
func (pl PointList) Crop(iv interval.Interval, label string) PointList {
	out := PointList{Label: label, Parameters: pl.Parameters, Points: []Point{}}
	for _, p := range pl.Points {
		if !iv.Contains(p.Loc) {
			continue
		}
		loc := slices.Clone(p.Loc)
		for d := range loc {
			loc[d] -= float64(iv.Min[d])
		}
		out.Points = append(out.Points, Point{ID: len(out.Points), Loc: loc})
	}
	return out
}
