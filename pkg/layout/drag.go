package layout

import (
	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/grid"
	"github.com/matzehuels/livetiles/pkg/observability"
	"github.com/matzehuels/livetiles/pkg/state"
)

const ghostPrefix = "__ghost$"

// DragPreview is an in-progress tile drag. It owns the pre-drag snapshot
// and the preview (ghost) placement; the state mirror keeps describing the
// pre-drag layout until the drag ends.
type DragPreview struct {
	// Tile is the dragged tile's id.
	Tile string
	// Size is the dragged tile's size.
	Size state.Size
	// Origin is the group the tile was lifted from.
	Origin string

	before layoutSnapshot // committed layout
	lifted layoutSnapshot // dragged tile removed
	ghost  string
	placed bool // ghost is in a grid
	snap   SnapResult
	target bool // snap is valid
	layout *Layout
}

// Snap returns the current drop candidate, if any.
func (p *DragPreview) Snap() (SnapResult, bool) { return p.snap, p.target }

// DropResult describes how a drag ended.
type DropResult struct {
	// Committed is false when the tile went back to where it started.
	Committed bool   `json:"committed"`
	Group     string `json:"group"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	// NewGroup is true when an anonymous group was created for the drop.
	NewGroup bool `json:"new_group,omitempty"`
	// Emptied names the group the tile left if no tiles remain in it.
	// Callers decide whether to remove it.
	Emptied string `json:"emptied,omitempty"`
}

// BeginDrag lifts a tile out of its group. Other tiles of the group compact
// into the space it leaves while the drag lasts. Only one drag can be in
// progress; other mutators fail with INVALID_STATE until it ends.
func (l *Layout) BeginDrag(id string) (*DragPreview, error) {
	if err := l.idle(); err != nil {
		return nil, err
	}
	g, ok := l.groupOf(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownID, "tile %q does not exist", id)
	}

	p := &DragPreview{
		Tile:   id,
		Size:   l.sizes[id],
		Origin: g.id,
		before: l.snapshot(),
		ghost:  ghostPrefix + l.newID(),
		layout: l,
	}
	g.grid.RemoveTile(id)
	p.lifted = l.snapshot()
	l.drag = p
	l.logger.Debug("drag started", "tile", id, "group", g.id)
	return p, nil
}

// UpdateDrag moves the preview to the cell under off. Tiles displaced by
// the previous preview go back first. The boolean reports whether the
// offset maps to a drop target; a target whose preview cannot be placed
// counts as none.
func (l *Layout) UpdateDrag(p *DragPreview, off Offset) (SnapResult, bool, error) {
	if err := l.active(p); err != nil {
		return SnapResult{}, false, err
	}
	if p.placed {
		l.restoreGrids(p.lifted)
		p.placed = false
	}

	res, ok := l.SnapToGrid(off, p.Size)
	p.snap, p.target = res, ok
	if !ok || res.New {
		return res, ok, nil
	}

	g := l.groups[l.find(res.Group)]
	placed, err := g.grid.AddTile(p.ghost, grid.At(res.X, res.Y), p.Size.Width(), p.Size.Height())
	if err != nil {
		return SnapResult{}, false, err
	}
	if !placed {
		p.target = false
		return SnapResult{}, false, nil
	}
	p.placed = true
	return res, true, nil
}

// EndDrag drops the tile at the current target. Without a target, or when
// the drop cannot be resolved, the layout returns to its pre-drag state.
func (l *Layout) EndDrag(p *DragPreview) (DropResult, error) {
	if err := l.active(p); err != nil {
		return DropResult{}, err
	}
	l.restoreGrids(p.lifted)
	l.drag = nil

	if !p.target {
		return l.revert(p), nil
	}

	var g *group
	if p.snap.New {
		g = l.appendGroup(l.newAnonymousID(), "")
	} else {
		g = l.groups[l.find(p.snap.Group)]
	}
	ok, err := g.grid.AddTile(p.Tile, grid.At(p.snap.X, p.snap.Y), p.Size.Width(), p.Size.Height())
	if err != nil || !ok {
		res := l.revert(p)
		return res, err
	}

	l.tiles[p.Tile] = g.id
	st := l.state.Tiles[p.Tile]
	st.Group = g.id
	l.state.Tiles[p.Tile] = st
	if i := l.find(p.Origin); i >= 0 {
		l.sync(l.groups[i])
	}
	l.sync(g)

	cell, _ := g.grid.Tile(p.Tile)
	res := DropResult{Committed: true, Group: g.id, X: cell.X, Y: cell.Y, NewGroup: p.snap.New}
	if i := l.find(p.Origin); i >= 0 && p.Origin != g.id && l.groups[i].grid.Len() == 0 {
		res.Emptied = p.Origin
	}

	outcome := "committed"
	if p.snap.New {
		outcome = "new_group"
	}
	observability.Layout().OnDrop(outcome)
	l.logger.Debug("drag committed", "tile", p.Tile, "group", g.id, "x", cell.X, "y", cell.Y)
	l.changed()
	return res, nil
}

// CancelDrag abandons the drag and restores the pre-drag layout.
func (l *Layout) CancelDrag(p *DragPreview) error {
	if err := l.active(p); err != nil {
		return err
	}
	l.restore(p.before)
	l.drag = nil
	observability.Layout().OnDrop("cancelled")
	l.logger.Debug("drag cancelled", "tile", p.Tile)
	return nil
}

// Dragging returns the drag in progress, if any.
func (l *Layout) Dragging() (*DragPreview, bool) {
	return l.drag, l.drag != nil
}

func (l *Layout) active(p *DragPreview) error {
	if p == nil || l.drag != p || p.layout != l {
		return errors.New(errors.ErrCodeInvalidState, "drag is not in progress")
	}
	return nil
}

// revert restores the pre-drag layout and reports where the tile is.
func (l *Layout) revert(p *DragPreview) DropResult {
	l.restore(p.before)
	l.drag = nil
	observability.Layout().OnDrop("reverted")
	l.logger.Debug("drag reverted", "tile", p.Tile)

	res := DropResult{Group: p.Origin}
	if t, ok := l.state.Tiles[p.Tile]; ok {
		res.X, res.Y = t.X, t.Y
	}
	return res
}
