package split

import (
	"maps"
	"slices"

	"github.com/matzehuels/viewsplit/pkg/core/interval"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

// Mapping records where one split entity came from.
type Mapping struct {
	New      int               `json:"new"`
	Original int               `json:"original"`
	Local    int               `json:"local"`
	Region   interval.Interval `json:"region"`
}

// IdentifierMap is the bidirectional relation between split entity IDs and
// the original entity IDs they were cut from.
//
// Every new ID maps to exactly one original. Every original maps to the
// ordered list of new IDs generated from it, in tile enumeration order.
type IdentifierMap struct {
	byNew      map[int]Mapping
	byOriginal map[int][]int
}

// NewIdentifierMap builds a map from explicit mappings, for example ones
// read back from disk. Mappings are applied in the given order.
func NewIdentifierMap(mappings []Mapping) (*IdentifierMap, error) {
	m := newIdentifierMap()
	for _, mp := range mappings {
		if err := m.add(mp); err != nil {
			return nil, err
		}
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}

func newIdentifierMap() *IdentifierMap {
	return &IdentifierMap{
		byNew:      make(map[int]Mapping),
		byOriginal: make(map[int][]int),
	}
}

func (m *IdentifierMap) add(mp Mapping) error {
	if _, dup := m.byNew[mp.New]; dup {
		return errors.New(errors.ErrCodeInternalConsistency, "new entity id %d assigned twice", mp.New)
	}
	if want := len(m.byOriginal[mp.Original]); mp.Local != want {
		return errors.New(errors.ErrCodeInternalConsistency,
			"entity %d has local index %d, want %d for original %d", mp.New, mp.Local, want, mp.Original)
	}
	mp.Region = mp.Region.Clone()
	m.byNew[mp.New] = mp
	m.byOriginal[mp.Original] = append(m.byOriginal[mp.Original], mp.New)
	return nil
}

// check verifies that both directions agree.
func (m *IdentifierMap) check() error {
	for orig, ids := range m.byOriginal {
		for _, id := range ids {
			mp, ok := m.byNew[id]
			if !ok || mp.Original != orig {
				return errors.New(errors.ErrCodeInternalConsistency,
					"reverse entry for new entity %d of original %d is missing", id, orig)
			}
		}
	}
	return nil
}

// covers verifies that every original has at least one split entity.
func (m *IdentifierMap) covers(originals []int) error {
	for _, orig := range originals {
		if len(m.byOriginal[orig]) == 0 {
			return errors.New(errors.ErrCodeInternalConsistency, "original entity %d has no split entities", orig)
		}
	}
	return nil
}

// Len returns the number of split entities.
func (m *IdentifierMap) Len() int { return len(m.byNew) }

// Source returns the original entity ID of a split entity.
func (m *IdentifierMap) Source(id int) (int, bool) {
	mp, ok := m.byNew[id]
	return mp.Original, ok
}

// LocalIndex returns the position of a split entity among the tiles of its
// original, in enumeration order.
func (m *IdentifierMap) LocalIndex(id int) (int, bool) {
	mp, ok := m.byNew[id]
	return mp.Local, ok
}

// Region returns the region of the original entity that a split entity covers.
func (m *IdentifierMap) Region(id int) (interval.Interval, bool) {
	mp, ok := m.byNew[id]
	if !ok {
		return interval.Interval{}, false
	}
	return mp.Region.Clone(), true
}

// Tiles returns the split entity IDs generated from an original entity.
func (m *IdentifierMap) Tiles(original int) []int {
	return slices.Clone(m.byOriginal[original])
}

// Originals returns the original entity IDs in ascending order.
func (m *IdentifierMap) Originals() []int {
	return slices.Sorted(maps.Keys(m.byOriginal))
}

// NewToOriginal returns a copy of the forward relation.
func (m *IdentifierMap) NewToOriginal() map[int]int {
	out := make(map[int]int, len(m.byNew))
	for id, mp := range m.byNew {
		out[id] = mp.Original
	}
	return out
}

// OriginalToNew returns a copy of the reverse relation.
func (m *IdentifierMap) OriginalToNew() map[int][]int {
	out := make(map[int][]int, len(m.byOriginal))
	for orig, ids := range m.byOriginal {
		out[orig] = slices.Clone(ids)
	}
	return out
}

// Mappings returns every mapping in ascending new ID order.
func (m *IdentifierMap) Mappings() []Mapping {
	out := make([]Mapping, 0, len(m.byNew))
	for _, id := range slices.Sorted(maps.Keys(m.byNew)) {
		mp := m.byNew[id]
		mp.Region = mp.Region.Clone()
		out = append(out, mp)
	}
	return out
}

// SourceRegion translates a region given in the local coordinates of split
// entity id into the coordinates of its original entity.
//
// This is the offset a pixel loader applies when it serves a split entity
// from the original data. The local region must lie within the split entity.
func (m *IdentifierMap) SourceRegion(id int, local interval.Interval) (interval.Interval, error) {
	mp, ok := m.byNew[id]
	if !ok {
		return interval.Interval{}, errors.New(errors.ErrCodeNotFound, "unknown split entity %d", id)
	}
	bounds, err := interval.FromSize(mp.Region.Dimensions())
	if err != nil {
		return interval.Interval{}, errors.Wrap(errors.ErrCodeInternalConsistency, err, "region of entity %d", id)
	}
	if !bounds.ContainsInterval(local) {
		return interval.Interval{}, errors.New(errors.ErrCodeInvalidInput,
			"region %s is outside split entity %d (%s)", local, id, bounds)
	}
	return local.Translate(mp.Region.Min), nil
}
