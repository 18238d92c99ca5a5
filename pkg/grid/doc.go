// Package grid implements the collision-resolving tile container that backs
// every group of a live tiles layout.
//
// # Overview
//
// Geometry is expressed in integer "small tile" units: a small tile is 1x1,
// a medium tile 2x2, a wide tile 4x2 and a large tile 4x4. A [Grid] holds
// named [Cell] rectangles and is bounded on exactly one axis. Row-flow
// groups bound the height and grow to the right; column-flow groups bound
// the width and grow downward. The bound is at least [MinBound].
//
// Two invariants hold between calls:
//
//   - no two tiles intersect (touching edges are fine)
//   - every tile has non-negative coordinates and respects the bound
//
// # Mutations
//
// [Grid.AddTile], [Grid.MoveTile] and [Grid.ResizeTile] are transactional.
// The grid is snapshotted, the change is applied, and conflict resolution
// relocates every tile that now overlaps the changed one (or lies out of
// bounds). Relocated tiles are checked in turn, so displacement cascades
// until nothing conflicts. When a tile cannot be relocated the snapshot is
// restored and the call returns false. That outcome is expected during
// drag-and-drop exploration and is never an error.
//
// Relocation first tries positions at growing Manhattan distance from the
// tile's current place, up to [NearbyRadius], and then falls back to the
// first free slot in row-major order.
//
// Passing a nil point to [Grid.AddTile] places the tile in the first free
// slot in row-major order. For a tile that fits the bound this always
// succeeds because the unbounded axis always has room.
//
// [Grid.RemoveTile] is unconditional and idempotent. It compacts tiles that
// were aligned with the removed one into the freed space.
//
// # Rollback
//
// [Grid.Snapshot] and [Grid.Restore] copy the tile map by value. Grids are
// small, so no finer-grained undo log is kept.
package grid
