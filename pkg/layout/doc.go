// Package layout arranges live tile groups and maps pointer positions back
// to grid cells.
//
// # Overview
//
// A [Layout] is an ordered list of groups. Each group owns one
// [grid.Grid], bounded according to the container [Direction]:
//
//   - [Horizontal] (row-flow): groups sit left to right and every group is
//     [Config.Height] small tiles tall.
//   - [Vertical] (column-flow): groups are dealt into
//     [Config.InlineGroups] columns, [Config.GroupWidth] small tiles wide,
//     and stack downward.
//
// Tile ids are unique across the whole layout. Group indices are always
// 0..n-1 and are renumbered after every insert, remove or reorder.
//
// # State mirror
//
// Every successful mutation updates a [state.State] mirror, including the
// positions of tiles that conflict resolution displaced. Failed mutations
// leave groups, grids and mirror untouched. [Layout.State] returns a copy
// and [Layout.Restore] rebuilds a layout from one.
//
// Subscribers registered with [Layout.Subscribe] get a copy after each
// change. Wrap several calls in [Layout.Batch] to receive one notification
// for all of them.
//
// # Measurement and grid-snap
//
// [Layout.Arrange] measures groups in em from [Config.SmallSize],
// [Config.TileGap], [Config.GroupGap] and [Config.LabelHeight].
// [Layout.SnapToGrid] inverts that: given an em offset it returns the group
// and cell a dragged tile would take, a request for a new group past the
// last one, or nothing. Pixel offsets are converted with
// [OffsetFromPixels] and a caller-supplied [UnitScale].
//
// # Dragging
//
// [Layout.BeginDrag] returns a [DragPreview] that owns the pre-drag
// snapshot. [Layout.UpdateDrag] places a preview of the tile at the
// snapped cell, pushing neighbours aside; [Layout.EndDrag] commits the drop
// or reverts; [Layout.CancelDrag] always reverts. Groups emptied by a drop
// are reported, not removed.
package layout
