package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/viewsplit/pkg/core/split"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

type resultJSON struct {
	MaxSpread int             `json:"max_spread"`
	Dataset   datasetJSON     `json:"dataset"`
	Mappings  []split.Mapping `json:"mappings"`
}

// WriteResult encodes a split result as indented JSON and writes it to w.
func WriteResult(res *split.Result, w io.Writer) error {
	out := resultJSON{
		MaxSpread: res.MaxSpread,
		Dataset:   toJSON(res.Dataset),
		Mappings:  res.Map.Mappings(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadResult decodes a split result from r.
//
// The identifier map is rebuilt from the mappings and every split entity of
// the dataset must have exactly one mapping.
func ReadResult(r io.Reader) (*split.Result, error) {
	var in resultJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode result")
	}
	ds, err := fromJSON(in.Dataset)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	idm, err := split.NewIdentifierMap(in.Mappings)
	if err != nil {
		return nil, err
	}
	if idm.Len() != len(ds.Entities) {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"result has %d mappings for %d entities", idm.Len(), len(ds.Entities))
	}

	entities := make([]split.Entity, 0, len(ds.Entities))
	for _, e := range ds.SortedEntities() {
		src, ok := idm.Source(e.ID)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "entity %d has no mapping", e.ID)
		}
		region, _ := idm.Region(e.ID)
		entities = append(entities, split.Entity{Entity: e, Source: src, Region: region})
	}

	return &split.Result{
		Dataset:   ds,
		Entities:  entities,
		Map:       idm,
		MaxSpread: in.MaxSpread,
	}, nil
}

// ImportResult reads a split result file.
func ImportResult(path string) (*split.Result, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	res, err := ReadResult(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// ExportResult writes a split result to a file at path.
func ExportResult(res *split.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(res, f)
}
