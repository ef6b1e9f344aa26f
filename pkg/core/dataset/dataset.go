// Package dataset defines the multi-view dataset model that splitting reads
// and produces.
//
// A dataset is a set of entities (view setups) observed at a list of
// timepoints. Everything attached to one observation is keyed by a [ViewID]
// (timepoint × entity) in flat maps:
//
//   - Registrations: the ordered affine transforms placing the view in world space
//   - Points: labeled interest point lists in the view's local coordinates
//   - Missing: the views that were never acquired
//
// There are no back-pointers between these records, so a dataset can be
// rewritten as a pure function from old maps to new maps. Values returned by
// this package are not shared with their inputs unless documented otherwise.
package dataset

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/viewsplit/pkg/core/interval"
	"github.com/matzehuels/viewsplit/pkg/core/partition"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

// Attribute is a named grouping value such as a channel, angle or illumination.
type Attribute struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Tile is the acquisition tile an entity belongs to. Its ID is the grouping
// key that is rescaled when entities are split.
type Tile struct {
	ID       int       `json:"id"`
	Name     string    `json:"name,omitempty"`
	Location []float64 `json:"location,omitempty"`
}

// VoxelSize is the physical size of one voxel.
type VoxelSize struct {
	Unit string    `json:"unit"`
	Size []float64 `json:"size"`
}

// Entity is one view setup: an N-dimensional array plus its grouping
// attributes.
type Entity struct {
	ID           int        `json:"id"`
	Name         string     `json:"name,omitempty"`
	Size         []int64    `json:"size"`
	VoxelSize    *VoxelSize `json:"voxel_size,omitempty"`
	Tile         Tile       `json:"tile"`
	Channel      Attribute  `json:"channel"`
	Angle        Attribute  `json:"angle"`
	Illumination Attribute  `json:"illumination"`
}

// NumDimensions returns the number of axes of the entity.
func (e Entity) NumDimensions() int { return len(e.Size) }

// Extent returns the zero-min interval covering the entity.
func (e Entity) Extent() (interval.Interval, error) {
	return interval.FromSize(e.Size)
}

// ViewID identifies one entity at one timepoint.
type ViewID struct {
	Timepoint int `json:"timepoint"`
	Entity    int `json:"entity"`
}

// Compare orders views by timepoint, then entity.
func (v ViewID) Compare(other ViewID) int {
	if c := cmp.Compare(v.Timepoint, other.Timepoint); c != 0 {
		return c
	}
	return cmp.Compare(v.Entity, other.Entity)
}

// String formats v as "tp=0 entity=3".
func (v ViewID) String() string {
	return fmt.Sprintf("tp=%d entity=%d", v.Timepoint, v.Entity)
}

// ViewSet is a set of views.
type ViewSet map[ViewID]struct{}

// NewViewSet returns a set holding the given views.
func NewViewSet(views ...ViewID) ViewSet {
	s := make(ViewSet, len(views))
	for _, v := range views {
		s.Add(v)
	}
	return s
}

// Add inserts v.
func (s ViewSet) Add(v ViewID) { s[v] = struct{}{} }

// Contains reports whether v is in the set. A nil set contains nothing.
func (s ViewSet) Contains(v ViewID) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the views in ascending order.
func (s ViewSet) Sorted() []ViewID {
	out := make([]ViewID, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.SortFunc(out, ViewID.Compare)
	return out
}

// BoundingBox is a named region of interest in world coordinates.
type BoundingBox struct {
	Title string  `json:"title"`
	Min   []int64 `json:"min"`
	Max   []int64 `json:"max"`
}

// Dataset is an immutable snapshot of a multi-view acquisition.
type Dataset struct {
	Timepoints    []int
	Entities      []Entity
	Registrations map[ViewID][]Affine
	Points        map[ViewID][]PointList
	Missing       ViewSet
	Pyramids      []partition.Pyramid
	BoundingBoxes []BoundingBox
}

// Entity returns the entity with the given ID.
func (ds *Dataset) Entity(id int) (Entity, bool) {
	for _, e := range ds.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// SortedEntities returns the entities in ascending ID order.
func (ds *Dataset) SortedEntities() []Entity {
	out := slices.Clone(ds.Entities)
	slices.SortStableFunc(out, func(a, b Entity) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// SortedTimepoints returns the timepoints in ascending order.
func (ds *Dataset) SortedTimepoints() []int {
	out := slices.Clone(ds.Timepoints)
	slices.Sort(out)
	return out
}

// IsMissing reports whether view v was not acquired.
func (ds *Dataset) IsMissing(v ViewID) bool {
	return ds.Missing.Contains(v)
}

// Views returns every (timepoint, entity) pair in ascending order.
func (ds *Dataset) Views() []ViewID {
	views := make([]ViewID, 0, len(ds.Timepoints)*len(ds.Entities))
	for _, tp := range ds.SortedTimepoints() {
		for _, e := range ds.SortedEntities() {
			views = append(views, ViewID{Timepoint: tp, Entity: e.ID})
		}
	}
	return views
}

// NumDimensions returns the dimensionality shared by all entities.
// It fails if the dataset has no entities, the entities have no axes or
// their dimensionality differs.
func (ds *Dataset) NumDimensions() (int, error) {
	if len(ds.Entities) == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "dataset has no entities")
	}
	dims := ds.Entities[0].NumDimensions()
	if dims == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "entity %d has no dimensions", ds.Entities[0].ID)
	}
	for _, e := range ds.Entities[1:] {
		if e.NumDimensions() != dims {
			return 0, errors.New(errors.ErrCodeInvalidInput,
				"entity %d has %d dimensions, entity %d has %d", e.ID, e.NumDimensions(), ds.Entities[0].ID, dims)
		}
	}
	return dims, nil
}

// Illuminations returns the distinct illumination IDs in ascending order.
func (ds *Dataset) Illuminations() []int {
	seen := make(map[int]bool)
	var ids []int
	for _, e := range ds.Entities {
		if !seen[e.Illumination.ID] {
			seen[e.Illumination.ID] = true
			ids = append(ids, e.Illumination.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// Validate checks the structural invariants of the dataset:
//   - at least one entity, all with the same dimensionality and positive sizes
//   - unique entity IDs and unique timepoints
//   - every record references a known timepoint and entity
//   - transforms and points match the dimensionality
//   - labels are valid and unique per view
func (ds *Dataset) Validate() error {
	dims, err := ds.NumDimensions()
	if err != nil {
		return err
	}

	entities := make(map[int]bool, len(ds.Entities))
	for _, e := range ds.Entities {
		if entities[e.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate entity id %d", e.ID)
		}
		entities[e.ID] = true
		if err := errors.ValidatePositive(fmt.Sprintf("size of entity %d", e.ID), e.Size); err != nil {
			return err
		}
		if loc := e.Tile.Location; loc != nil && len(loc) != dims {
			return errors.New(errors.ErrCodeInvalidInput,
				"tile location of entity %d has %d values, want %d", e.ID, len(loc), dims)
		}
	}

	timepoints := make(map[int]bool, len(ds.Timepoints))
	for _, tp := range ds.Timepoints {
		if timepoints[tp] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate timepoint %d", tp)
		}
		timepoints[tp] = true
	}

	known := func(v ViewID) error {
		if !timepoints[v.Timepoint] || !entities[v.Entity] {
			return errors.New(errors.ErrCodeInvalidInput, "record for unknown view %s", v)
		}
		return nil
	}

	for v, transforms := range ds.Registrations {
		if err := known(v); err != nil {
			return err
		}
		for _, a := range transforms {
			if err := a.validate(dims); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "registration of %s", v)
			}
		}
	}

	for v, lists := range ds.Points {
		if err := known(v); err != nil {
			return err
		}
		labels := make(map[string]bool, len(lists))
		for _, pl := range lists {
			if err := errors.ValidateLabel(pl.Label); err != nil {
				return err
			}
			if labels[pl.Label] {
				return errors.New(errors.ErrCodeInvalidInput, "duplicate label %q for %s", pl.Label, v)
			}
			labels[pl.Label] = true
			for _, p := range pl.Points {
				if len(p.Loc) != dims {
					return errors.New(errors.ErrCodeInvalidInput,
						"point %d of %q for %s has %d coordinates, want %d", p.ID, pl.Label, v, len(p.Loc), dims)
				}
			}
		}
	}

	for v := range ds.Missing {
		if err := known(v); err != nil {
			return err
		}
	}

	for _, p := range ds.Pyramids {
		if !entities[p.Entity] {
			return errors.New(errors.ErrCodeInvalidInput, "pyramid for unknown entity %d", p.Entity)
		}
	}

	return nil
}
