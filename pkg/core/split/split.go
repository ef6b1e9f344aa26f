// Package split cuts every entity of a dataset into overlapping tiles and
// rewrites the dataset's metadata so the result can stand in for the
// original.
//
// # Overview
//
// [Split] partitions each entity with the grid of the partition package and
// turns every tile into a new entity:
//
//	tiles per entity   partition.Params.Plan + partition.Compose
//	new entity IDs     0, 1, 2, ... in ascending original ID order
//	new tile IDs       originalTile*MaxSpread + local index
//	registrations      source list + translation by the tile's min corner
//	interest points    cropped to the tile, shifted, renumbered, relabeled
//	missing views      inherited from the source at the same timepoint
//
// The input dataset is never modified. The returned [IdentifierMap] relates
// every new ID to its original and to the region it covers there.
//
// # Concurrency
//
// Entities are partitioned concurrently. Identifier assignment runs on a
// single counter afterwards, so the result is identical for any worker
// count.
package split

import (
	"context"
	"runtime"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/viewsplit/pkg/core/dataset"
	"github.com/matzehuels/viewsplit/pkg/core/interval"
	"github.com/matzehuels/viewsplit/pkg/core/partition"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

const (
	// TransformName names the translation appended to every split view's
	// registration.
	TransformName = "Image Splitting"

	// LabelSuffix is appended to interest point labels of split views.
	LabelSuffix = "_split"

	// IlluminationPrefix names illuminations derived from original tile IDs.
	IlluminationPrefix = "old_tile_"
)

// Spec holds the splitting parameters. Every vector has one entry per axis.
type Spec struct {
	TargetSize  []int64 `json:"target_size"`
	Overlap     []int64 `json:"overlap"`
	MinStepSize []int64 `json:"min_step_size"`
	Optimize    bool    `json:"optimize"`

	// IlluminationsFromTiles replaces the illumination of every split entity
	// with one named after its original tile. Only allowed when the dataset
	// has a single illumination.
	IlluminationsFromTiles bool `json:"illuminations_from_tiles"`

	// Workers bounds concurrent partitioning. Zero means GOMAXPROCS.
	Workers int `json:"-"`
}

// Params returns the partition parameters of s.
func (s Spec) Params() partition.Params {
	return partition.Params{
		TargetSize: slices.Clone(s.TargetSize),
		Overlap:    slices.Clone(s.Overlap),
		StepSize:   slices.Clone(s.MinStepSize),
		Optimize:   s.Optimize,
	}
}

// Entity is a split entity together with where it came from.
type Entity struct {
	dataset.Entity
	Source int               `json:"source"`
	Region interval.Interval `json:"region"`
}

// Result is the output of [Split].
type Result struct {
	Dataset   *dataset.Dataset
	Entities  []Entity
	Map       *IdentifierMap
	MaxSpread int
}

// Split partitions every entity of ds and derives the split dataset.
//
// All parameters are checked before any identifier is generated. Errors
// carry the codes of the errors package: INVALID_INPUT for malformed input,
// ALIGNMENT and OVERLAP_EXCEEDS_SIZE for illegal parameters, and
// INTERNAL_CONSISTENCY if identifier bookkeeping breaks.
func Split(ctx context.Context, ds *dataset.Dataset, spec Spec) (*Result, error) {
	if ds == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dataset is nil")
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	dims, err := ds.NumDimensions()
	if err != nil {
		return nil, err
	}
	params := spec.Params()
	if err := params.Validate(dims); err != nil {
		return nil, err
	}
	if spec.IlluminationsFromTiles {
		if ills := ds.Illuminations(); len(ills) > 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"cannot assign illuminations from tile ids: %d illuminations exist", len(ills))
		}
	}
	for _, v := range ds.Views() {
		if ds.IsMissing(v) {
			continue
		}
		if _, ok := ds.Registrations[v]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "present view %s has no registration", v)
		}
	}

	originals := ds.SortedEntities()
	tiles, err := partitionAll(ctx, originals, params, spec.Workers)
	if err != nil {
		return nil, err
	}

	maxSpread := 1
	for _, t := range tiles {
		maxSpread = max(maxSpread, len(t))
	}

	idm := newIdentifierMap()
	entities := make([]Entity, 0, len(originals)*maxSpread)
	nextID := 0
	for i, orig := range originals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for local, region := range tiles[i] {
			e := deriveEntity(orig, nextID, local, region, maxSpread, spec.IlluminationsFromTiles)
			if err := idm.add(Mapping{New: e.ID, Original: orig.ID, Local: local, Region: region}); err != nil {
				return nil, err
			}
			entities = append(entities, e)
			nextID++
		}
	}
	if err := idm.check(); err != nil {
		return nil, err
	}
	ids := make([]int, len(originals))
	for i, orig := range originals {
		ids[i] = orig.ID
	}
	if err := idm.covers(ids); err != nil {
		return nil, err
	}

	return &Result{
		Dataset:   deriveDataset(ds, entities),
		Entities:  entities,
		Map:       idm,
		MaxSpread: maxSpread,
	}, nil
}

// partitionAll computes the tiles of every entity, indexed like entities.
func partitionAll(ctx context.Context, entities []dataset.Entity, params partition.Params, workers int) ([][]interval.Interval, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	tiles := make([][]interval.Interval, len(entities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range entities {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			extent, err := e.Extent()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "entity %d", e.ID)
			}
			axes := make([][]interval.Range, extent.NumDimensions())
			for d, plan := range params.Plan(extent) {
				axes[d] = plan.Ranges
			}
			tiles[i] = partition.Compose(axes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}

func deriveEntity(orig dataset.Entity, id, local int, region interval.Interval, maxSpread int, illumFromTile bool) Entity {
	dims := region.NumDimensions()
	location := make([]float64, dims)
	if orig.Tile.Location != nil {
		copy(location, orig.Tile.Location)
	}
	for d := range location {
		location[d] += float64(region.Min[d])
	}

	tileID := orig.Tile.ID*maxSpread + local
	illum := orig.Illumination
	if illumFromTile {
		illum = dataset.Attribute{ID: orig.Tile.ID, Name: IlluminationPrefix + strconv.Itoa(orig.Tile.ID)}
	}

	var voxel *dataset.VoxelSize
	if orig.VoxelSize != nil {
		voxel = &dataset.VoxelSize{Unit: orig.VoxelSize.Unit, Size: slices.Clone(orig.VoxelSize.Size)}
	}

	return Entity{
		Entity: dataset.Entity{
			ID:           id,
			Size:         region.Dimensions(),
			VoxelSize:    voxel,
			Tile:         dataset.Tile{ID: tileID, Name: strconv.Itoa(tileID), Location: location},
			Channel:      orig.Channel,
			Angle:        orig.Angle,
			Illumination: illum,
		},
		Source: orig.ID,
		Region: region.Clone(),
	}
}

// deriveDataset rewrites the per-view records of ds for the split entities.
func deriveDataset(ds *dataset.Dataset, entities []Entity) *dataset.Dataset {
	out := &dataset.Dataset{
		Timepoints:    slices.Clone(ds.Timepoints),
		Entities:      make([]dataset.Entity, len(entities)),
		Registrations: make(map[dataset.ViewID][]dataset.Affine),
		Points:        make(map[dataset.ViewID][]dataset.PointList),
		Missing:       make(dataset.ViewSet),
	}
	for i, e := range entities {
		out.Entities[i] = e.Entity
	}

	for _, tp := range ds.SortedTimepoints() {
		for _, e := range entities {
			src := dataset.ViewID{Timepoint: tp, Entity: e.Source}
			dst := dataset.ViewID{Timepoint: tp, Entity: e.ID}
			if ds.IsMissing(src) {
				out.Missing.Add(dst)
				continue
			}

			transforms := dataset.CloneTransforms(ds.Registrations[src])
			out.Registrations[dst] = append(transforms, dataset.Translation(TransformName, e.Region.Min))

			if lists, ok := ds.Points[src]; ok {
				cropped := make([]dataset.PointList, len(lists))
				for j, pl := range lists {
					cropped[j] = pl.Crop(e.Region, pl.Label+LabelSuffix)
				}
				out.Points[dst] = cropped
			}
		}
	}

	// Split entities are served from the source pyramid, so they keep its levels.
	factors := make(map[int][][]float64, len(ds.Pyramids))
	for _, p := range ds.Pyramids {
		factors[p.Entity] = p.Factors
	}
	for _, e := range entities {
		if f, ok := factors[e.Source]; ok {
			out.Pyramids = append(out.Pyramids, partition.Pyramid{Entity: e.ID, Factors: cloneFactors(f)})
		}
	}

	for _, bb := range ds.BoundingBoxes {
		out.BoundingBoxes = append(out.BoundingBoxes, dataset.BoundingBox{
			Title: bb.Title, Min: slices.Clone(bb.Min), Max: slices.Clone(bb.Max),
		})
	}
	return out
}

func cloneFactors(f [][]float64) [][]float64 {
	out := make([][]float64, len(f))
	for i, level := range f {
		out[i] = slices.Clone(level)
	}
	return out
}
