// Package pkg provides the libraries behind viewsplit.
//
// # Overview
//
// Viewsplit cuts every view setup of a multi-view, multi-timepoint dataset
// into overlapping tiles of bounded size and rewrites the metadata that
// referred to the original view setups. The pkg directory is organized into
// three areas:
//
//  1. [core] - Pure splitting logic (intervals, partitioning, data model, split)
//  2. Infrastructure - [io], [cache], [config], [observability], [render]
//  3. Orchestration - [pipeline] and the HTTP [api]
//
// # Architecture
//
// The typical data flow:
//
//	dataset JSON
//	     ↓
//	[io] ReadDataset
//	     ↓
//	[core/partition] ResolveStepSize (from resolution pyramids)
//	     ↓
//	[core/split] Split (partition each entity, assign identifiers, rewrite metadata)
//	     ↓
//	[io] WriteResult / [render] DOT, SVG
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/viewsplit/pkg/core/split"
//	    splitio "github.com/matzehuels/viewsplit/pkg/io"
//	)
//
//	ds, _ := splitio.ImportDataset("dataset.json")
//	res, _ := split.Split(context.Background(), ds, split.Spec{
//	    TargetSize:  []int64{512, 512, 128},
//	    Overlap:     []int64{64, 64, 16},
//	    MinStepSize: []int64{4, 4, 2},
//	    Optimize:    true,
//	})
//	_ = splitio.WriteResult(res, os.Stdout)
//
// # Main Packages
//
// [core/interval] - Inclusive N-d intervals and axis ranges.
//
// [core/partition] - Step size resolution, per-axis windows with the optional
// tile size search, and the Cartesian grid (axis 0 varies fastest).
//
// [core/dataset] - View setups, view identifiers, affine registrations,
// interest points and missing views.
//
// [core/split] - The split itself and the bidirectional identifier map.
//
// [pipeline] - Resolve, split and render with caching, shared by the CLI and
// the API.
//
// [cache] - File, Redis and MongoDB caches behind one interface.
//
// [errors] - Coded errors with a fatal classification.
//
// [core]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/core
// [core/interval]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/core/interval
// [core/partition]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/core/partition
// [core/dataset]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/core/dataset
// [core/split]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/core/split
// [io]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/observability
// [render]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/pipeline
// [api]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/api
// [errors]: https://pkg.go.dev/github.com/matzehuels/viewsplit/pkg/errors
package pkg
