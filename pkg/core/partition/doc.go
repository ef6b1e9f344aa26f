// Package partition distributes N-dimensional extents into overlapping tiles.
//
// # Overview
//
// Splitting a large volume into tiles has to respect three constraints at the
// same time:
//
//   - Tiles are bounded by a target size per axis
//   - Adjacent tiles share a fixed overlap per axis
//   - Tile sizes and tile offsets are multiples of a step size derived from
//     the multi-resolution pyramid, so the pyramid stays valid per tile
//
// The package is organized leaf-first:
//
//  1. [ResolveStepSize] derives the step size from pyramid downsampling factors
//  2. [PlanAxis] partitions one axis, optionally tuning the tile size
//  3. [Compose] builds the Cartesian product of the per-axis partitions
//  4. [Distribute] runs 2 and 3 for a whole extent after validating every axis
//
// # Axis Partitioning
//
// An axis of length L with target size S and overlap O is covered by stepping
// a window of width S whose start advances by S−O until the window reaches the
// axis end. The last window is clamped and may be much smaller than S:
//
//	L=1000, S=250, O=50:  [0,249] [200,449] [400,649] [600,849] [800,999]
//
// With optimization enabled, [OptimizeTileSize] hill-climbs S in steps of the
// alignment step to make the last window less lopsided. The climb is capped by
// [MaxOptimizeSteps]; if it does not settle, the target size is used as is.
//
// # Ordering
//
// [Compose] enumerates tiles with axis 0 varying fastest. The enumeration index
// is the tile's local index within its source extent and must be stable across
// runs, so nothing in this package depends on map iteration order.
package partition
