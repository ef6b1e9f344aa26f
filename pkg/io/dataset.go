package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/viewsplit/pkg/core/dataset"
	"github.com/matzehuels/viewsplit/pkg/core/partition"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

type datasetJSON struct {
	Timepoints    []int                 `json:"timepoints"`
	Entities      []dataset.Entity      `json:"entities"`
	Views         []viewJSON            `json:"views"`
	Missing       []dataset.ViewID      `json:"missing,omitempty"`
	Pyramids      []pyramidJSON         `json:"pyramids,omitempty"`
	BoundingBoxes []dataset.BoundingBox `json:"bounding_boxes,omitempty"`
}

type viewJSON struct {
	Timepoint  int                 `json:"timepoint"`
	Entity     int                 `json:"entity"`
	Transforms []dataset.Affine    `json:"transforms"`
	Points     []dataset.PointList `json:"points"`
}

type pyramidJSON struct {
	Entity  int         `json:"entity"`
	Factors [][]float64 `json:"factors"`
}

func toJSON(ds *dataset.Dataset) datasetJSON {
	out := datasetJSON{
		Timepoints:    ds.Timepoints,
		Entities:      ds.Entities,
		Views:         []viewJSON{},
		Missing:       ds.Missing.Sorted(),
		BoundingBoxes: ds.BoundingBoxes,
	}

	seen := make(dataset.ViewSet)
	for v := range ds.Registrations {
		seen.Add(v)
	}
	for v := range ds.Points {
		seen.Add(v)
	}
	for _, v := range seen.Sorted() {
		out.Views = append(out.Views, viewJSON{
			Timepoint:  v.Timepoint,
			Entity:     v.Entity,
			Transforms: ds.Registrations[v],
			Points:     ds.Points[v],
		})
	}

	for _, p := range ds.Pyramids {
		out.Pyramids = append(out.Pyramids, pyramidJSON{Entity: p.Entity, Factors: p.Factors})
	}
	return out
}

func fromJSON(in datasetJSON) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{
		Timepoints:    in.Timepoints,
		Entities:      in.Entities,
		Registrations: make(map[dataset.ViewID][]dataset.Affine),
		Points:        make(map[dataset.ViewID][]dataset.PointList),
		Missing:       dataset.NewViewSet(in.Missing...),
		BoundingBoxes: in.BoundingBoxes,
	}
	for _, v := range in.Views {
		id := dataset.ViewID{Timepoint: v.Timepoint, Entity: v.Entity}
		if _, dup := ds.Registrations[id]; dup {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "view %s listed twice", id)
		}
		if _, dup := ds.Points[id]; dup {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "view %s listed twice", id)
		}
		if v.Transforms != nil {
			ds.Registrations[id] = v.Transforms
		}
		if v.Points != nil {
			ds.Points[id] = v.Points
		}
	}
	for _, p := range in.Pyramids {
		ds.Pyramids = append(ds.Pyramids, partition.Pyramid{Entity: p.Entity, Factors: p.Factors})
	}
	return ds, nil
}

// WriteDataset encodes ds as indented JSON and writes it to w.
func WriteDataset(ds *dataset.Dataset, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(ds)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadDataset decodes a dataset from r and validates it.
//
// Malformed JSON is reported as INVALID_FORMAT; structural problems such as
// duplicate entities or records for unknown views are reported by
// [dataset.Dataset.Validate] as INVALID_INPUT. ReadDataset does not close r.
func ReadDataset(r io.Reader) (*dataset.Dataset, error) {
	var in datasetJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode dataset")
	}
	ds, err := fromJSON(in)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// ImportDataset reads a dataset file.
func ImportDataset(path string) (*dataset.Dataset, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := ReadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// ExportDataset writes ds to a file at path.
func ExportDataset(ds *dataset.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDataset(ds, f)
}

// MarshalDataset returns the canonical encoding of ds. Equal datasets yield
// equal bytes, which makes the output suitable for hashing.
func MarshalDataset(ds *dataset.Dataset) ([]byte, error) {
	in := toJSON(ds)
	in.Timepoints = slices.Clone(in.Timepoints)
	slices.Sort(in.Timepoints)
	in.Entities = ds.SortedEntities()
	slices.SortStableFunc(in.Pyramids, func(a, b pyramidJSON) int { return a.Entity - b.Entity })
	return json.Marshal(in)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
