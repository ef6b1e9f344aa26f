// Package io reads and writes datasets and split results as JSON.
//
// # Dataset Format
//
// Per-view records are flattened into one "views" array so the file stays
// readable and diffable:
//
//	{
//	  "timepoints": [0, 1],
//	  "entities": [
//	    {"id": 0, "size": [2048, 2048, 500], "tile": {"id": 3, "location": [0, 0, 0]},
//	     "channel": {"id": 0}, "angle": {"id": 0}, "illumination": {"id": 0}}
//	  ],
//	  "views": [
//	    {"timepoint": 0, "entity": 0,
//	     "transforms": [{"name": "calibration", "matrix": [1,0,0,0, 0,1,0,0, 0,0,3.5,0]}],
//	     "points": [{"label": "beads", "points": [{"id": 0, "loc": [10, 20, 30]}]}]}
//	  ],
//	  "missing": [{"timepoint": 1, "entity": 0}],
//	  "pyramids": [{"entity": 0, "factors": [[1,1,1], [2,2,1], [4,4,2]]}]
//	}
//
// A view without a "transforms" array has no registration; an empty array is
// an empty registration. The same holds for "points".
//
// # Result Format
//
// A split result wraps the split dataset with the identifier mappings:
//
//	{
//	  "max_spread": 4,
//	  "dataset": { ... },
//	  "mappings": [{"new": 0, "original": 3, "local": 0, "region": {"min": [0,0], "max": [249,99]}}]
//	}
//
// Use [ReadDataset] / [WriteDataset] for streams and [ImportDataset] /
// [ExportDataset] for files; the result functions follow the same pattern.
// Encoding is deterministic: views and mappings are written in ascending
// order, so equal inputs produce identical bytes.
package io
