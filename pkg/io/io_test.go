package io

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/viewsplit/pkg/core/dataset"
	"github.com/matzehuels/viewsplit/pkg/core/split"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

const sampleDataset = `{
  "timepoints": [0, 1],
  "entities": [
    {"id": 2, "size": [1000, 300], "tile": {"id": 1, "location": [50, 0]}},
    {"id": 0, "size": [400, 300], "tile": {"id": 0}}
  ],
  "views": [
    {"timepoint": 0, "entity": 0, "transforms": [{"name": "calibration", "matrix": [1,0,0, 0,1,0]}],
     "points": [{"label": "beads", "parameters": "sigma=2", "points": [{"id": 0, "loc": [10, 20]}]}]},
    {"timepoint": 1, "entity": 0, "transforms": []},
    {"timepoint": 0, "entity": 2, "transforms": [{"name": "calibration", "matrix": [1,0,0, 0,1,0]}]}
  ],
  "missing": [{"timepoint": 1, "entity": 2}],
  "pyramids": [{"entity": 2, "factors": [[1, 1], [2, 2]]}]
}`

func TestReadDataset(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatal(err)
	}

	if len(ds.Entities) != 2 || len(ds.Timepoints) != 2 {
		t.Fatalf("got %d entities, %d timepoints", len(ds.Entities), len(ds.Timepoints))
	}
	if got, ok := ds.Registrations[dataset.ViewID{Timepoint: 1, Entity: 0}]; !ok || len(got) != 0 {
		t.Errorf("empty registration = %v,%v, want present and empty", got, ok)
	}
	if _, ok := ds.Points[dataset.ViewID{Timepoint: 0, Entity: 2}]; ok {
		t.Error("view without points has a point entry")
	}
	if !ds.IsMissing(dataset.ViewID{Timepoint: 1, Entity: 2}) {
		t.Error("missing view not decoded")
	}
	if len(ds.Pyramids) != 1 || ds.Pyramids[0].Entity != 2 {
		t.Errorf("pyramids = %+v", ds.Pyramids)
	}
}

func TestReadDataset_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"malformed", `{"entities": [`, errors.ErrCodeInvalidFormat},
		{"duplicate view", `{"timepoints": [0], "entities": [{"id": 0, "size": [1]}],
			"views": [{"timepoint": 0, "entity": 0, "transforms": []}, {"timepoint": 0, "entity": 0, "transforms": []}]}`,
			errors.ErrCodeInvalidFormat},
		{"unknown view", `{"timepoints": [0], "entities": [{"id": 0, "size": [1]}],
			"views": [{"timepoint": 0, "entity": 9, "transforms": []}]}`,
			errors.ErrCodeInvalidInput},
		{"no entities", `{"timepoints": [0], "entities": []}`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteDataset(ds, &buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadDataset(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ds, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalDataset_Canonical(t *testing.T) {
	a, err := ReadDataset(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ReadDataset(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatal(err)
	}
	b.Entities[0], b.Entities[1] = b.Entities[1], b.Entities[0]
	b.Timepoints[0], b.Timepoints[1] = b.Timepoints[1], b.Timepoints[0]

	x, err := MarshalDataset(a)
	if err != nil {
		t.Fatal(err)
	}
	y, err := MarshalDataset(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(x, y) {
		t.Error("equal datasets in different order encode differently")
	}
}

func TestResultRoundTrip(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatal(err)
	}
	res, err := split.Split(context.Background(), ds, split.Spec{
		TargetSize:  []int64{300, 300},
		Overlap:     []int64{100, 0},
		MinStepSize: []int64{100, 100},
	})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "result.json")
	if err := ExportResult(res, path); err != nil {
		t.Fatal(err)
	}
	back, err := ImportResult(path)
	if err != nil {
		t.Fatal(err)
	}

	if back.MaxSpread != res.MaxSpread {
		t.Errorf("MaxSpread = %d, want %d", back.MaxSpread, res.MaxSpread)
	}
	if diff := cmp.Diff(res.Entities, back.Entities); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(res.Map.Mappings(), back.Map.Mappings()); diff != "" {
		t.Errorf("mappings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(res.Dataset, back.Dataset); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_FileNotFound(t *testing.T) {
	_, err := ImportDataset(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestReadResult_MappingMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	body := `{"max_spread": 1, "dataset": {"timepoints": [0], "entities": [{"id": 0, "size": [5]}], "views": []}, "mappings": []}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportResult(path); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}
