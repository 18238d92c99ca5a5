package layout

import (
	"time"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/grid"
	"github.com/matzehuels/livetiles/pkg/state"
)

// TileSpec describes a tile to add.
type TileSpec struct {
	ID string
	// Group is the target group. Empty reuses the last group when it has no
	// label and creates an anonymous group otherwise.
	Group string
	// At is the requested cell; nil places the tile at the best position.
	At *grid.Point
	// Size defaults to medium.
	Size state.Size
}

// TileInfo describes a placed tile.
type TileInfo struct {
	ID    string     `json:"id"`
	Group string     `json:"group"`
	Size  state.Size `json:"size"`
	grid.Cell
	// Ghost marks the preview placement of a tile being dragged.
	Ghost bool `json:"ghost,omitempty"`
}

// AddTile places a new tile. The boolean is false when the requested cell
// leads to an unresolvable conflict, in which case nothing changes (an
// anonymous group created for the tile is discarded again).
//
// Errors: DUPLICATE_ID when the id is taken, UNKNOWN_ID for a missing
// group, INVALID_INPUT for a bad id or size.
func (l *Layout) AddTile(spec TileSpec) (bool, error) {
	start := time.Now()
	if err := l.idle(); err != nil {
		return false, err
	}
	if err := errors.ValidateID(spec.ID); err != nil {
		return false, err
	}
	size := spec.Size
	if size == "" {
		size = state.Medium
	}
	if !size.Valid() {
		return false, errors.New(errors.ErrCodeInvalidInput, "unknown tile size %q", size)
	}
	if _, ok := l.tiles[spec.ID]; ok {
		return false, errors.New(errors.ErrCodeDuplicateID, "tile %q already exists", spec.ID)
	}

	snap := l.snapshot()
	var g *group
	switch {
	case spec.Group != "":
		i := l.find(spec.Group)
		if i < 0 {
			return false, errors.New(errors.ErrCodeUnknownID, "group %q does not exist", spec.Group)
		}
		g = l.groups[i]
	case len(l.groups) > 0 && l.groups[len(l.groups)-1].label == "":
		g = l.groups[len(l.groups)-1]
	default:
		g = l.appendGroup(l.newAnonymousID(), "")
	}

	ok, err := g.grid.AddTile(spec.ID, spec.At, size.Width(), size.Height())
	if err != nil || !ok {
		l.restore(snap)
		l.record("add_tile", spec.ID, false, start)
		return false, err
	}

	l.tiles[spec.ID] = g.id
	l.sizes[spec.ID] = size
	l.state.Tiles[spec.ID] = state.Tile{Size: size, Group: g.id}
	l.sync(g)
	l.record("add_tile", spec.ID, true, start)
	l.logger.Debug("tile added", "id", spec.ID, "group", g.id, "size", size)
	l.changed()
	return true, nil
}

// MoveTile moves a tile within its group. The boolean is false, with
// nothing changed, when the conflict cannot be resolved.
func (l *Layout) MoveTile(id string, x, y int) (bool, error) {
	start := time.Now()
	if err := l.idle(); err != nil {
		return false, err
	}
	g, ok := l.groupOf(id)
	if !ok {
		return false, errors.New(errors.ErrCodeUnknownID, "tile %q does not exist", id)
	}
	ok, err := g.grid.MoveTile(id, x, y)
	if err != nil {
		return false, err
	}
	l.record("move_tile", id, ok, start)
	if !ok {
		return false, nil
	}
	l.sync(g)
	l.changed()
	return true, nil
}

// ResizeTile changes a tile's size. The boolean is false, with nothing
// changed, when the conflict cannot be resolved.
func (l *Layout) ResizeTile(id string, size state.Size) (bool, error) {
	start := time.Now()
	if err := l.idle(); err != nil {
		return false, err
	}
	if !size.Valid() {
		return false, errors.New(errors.ErrCodeInvalidInput, "unknown tile size %q", size)
	}
	g, ok := l.groupOf(id)
	if !ok {
		return false, errors.New(errors.ErrCodeUnknownID, "tile %q does not exist", id)
	}
	ok, err := g.grid.ResizeTile(id, size.Width(), size.Height())
	if err != nil {
		return false, err
	}
	l.record("resize_tile", id, ok, start)
	if !ok {
		return false, nil
	}
	l.sizes[id] = size
	st := l.state.Tiles[id]
	st.Size = size
	l.state.Tiles[id] = st
	l.sync(g)
	l.changed()
	return true, nil
}

// RemoveTile deletes a tile and compacts its group. Removing an unknown
// tile is a no-op that returns false. A group left empty is kept.
func (l *Layout) RemoveTile(id string) bool {
	if l.drag != nil {
		return false
	}
	g, ok := l.groupOf(id)
	if !ok {
		return false
	}
	g.grid.RemoveTile(id)
	delete(l.tiles, id)
	delete(l.sizes, id)
	delete(l.state.Tiles, id)
	l.sync(g)
	l.logger.Debug("tile removed", "id", id, "group", g.id)
	l.changed()
	return true
}

// Tile returns a tile. While the tile is being dragged it reports the
// preview placement, if any.
func (l *Layout) Tile(id string) (TileInfo, bool) {
	for _, t := range l.Tiles() {
		if t.ID == id {
			return t, true
		}
	}
	return TileInfo{}, false
}

// TileGroup returns the id of the group owning the tile.
func (l *Layout) TileGroup(id string) (string, bool) {
	gid, ok := l.tiles[id]
	return gid, ok
}

// Tiles lists every tile, group by group in index order.
func (l *Layout) Tiles() []TileInfo {
	var out []TileInfo
	for _, g := range l.groups {
		for _, t := range g.grid.Tiles() {
			info := TileInfo{ID: t.ID, Group: g.id, Size: l.sizes[t.ID], Cell: t.Cell}
			if l.drag != nil && t.ID == l.drag.ghost {
				info.ID, info.Size, info.Ghost = l.drag.Tile, l.drag.Size, true
			}
			out = append(out, info)
		}
	}
	return out
}

// Len returns the number of tiles.
func (l *Layout) Len() int { return len(l.tiles) }
