package grid

import (
	"slices"

	"github.com/matzehuels/livetiles/pkg/errors"
)

// Point is a concrete placement passed to [Grid.AddTile]. A nil *Point asks
// for the best last position instead.
type Point struct {
	X, Y int
}

// At returns a *Point for (x, y).
func At(x, y int) *Point { return &Point{X: x, Y: y} }

// Tile pairs a tile id with its cell.
type Tile struct {
	ID string
	Cell
}

// Grid is a single collision-resolving container of named tiles bounded on
// exactly one axis. No two tiles intersect and every tile lies within the
// bound at all times between calls.
//
// Mutators are transactional: they either satisfy those invariants or
// restore the state they started from and report false.
//
// A Grid is not safe for concurrent use.
type Grid struct {
	bounds Bounds
	cells  map[string]Cell
	order  []string // insertion order, drives every scan
}

// New creates an empty grid. It returns an INVALID_CONFIGURATION error when
// both or neither bound is set, or when the bound is below [MinBound].
func New(b Bounds) (*Grid, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &Grid{
		bounds: b,
		cells:  make(map[string]Cell),
	}, nil
}

// Bounds returns the grid's bound.
func (g *Grid) Bounds() Bounds { return g.bounds }

// Len returns the number of tiles.
func (g *Grid) Len() int { return len(g.order) }

// Has reports whether the tile exists.
func (g *Grid) Has(id string) bool {
	_, ok := g.cells[id]
	return ok
}

// Tile returns the cell of the tile.
func (g *Grid) Tile(id string) (Cell, bool) {
	c, ok := g.cells[id]
	return c, ok
}

// IDs returns the tile ids in insertion order.
func (g *Grid) IDs() []string { return slices.Clone(g.order) }

// Tiles returns every tile in insertion order.
func (g *Grid) Tiles() []Tile {
	out := make([]Tile, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, Tile{ID: id, Cell: g.cells[id]})
	}
	return out
}

// AddTile inserts a tile. With a concrete point the tile is placed there and
// conflicting tiles are relocated; if that cannot be done the grid is left
// untouched and false is returned. With a nil point the tile goes to the
// first free slot in row-major order, which always exists for a tile that
// fits the bound.
//
// Errors are structural: DUPLICATE_ID for an existing id and INVALID_INPUT
// for an empty id or a non-positive size.
func (g *Grid) AddTile(id string, at *Point, width, height int) (bool, error) {
	if id == "" {
		return false, errors.New(errors.ErrCodeInvalidInput, "tile id cannot be empty")
	}
	if err := checkSize(id, width, height); err != nil {
		return false, err
	}
	if g.Has(id) {
		return false, errors.New(errors.ErrCodeDuplicateID, "tile %q already exists", id)
	}

	if at == nil {
		pos, ok := g.bestPosition(width, height)
		if !ok {
			return false, nil
		}
		g.insert(id, Cell{X: pos.X, Y: pos.Y, Width: width, Height: height})
		return true, nil
	}

	snap := g.Snapshot()
	g.insert(id, Cell{X: at.X, Y: at.Y, Width: width, Height: height})
	return g.commit(id, snap), nil
}

// MoveTile moves a tile to (x, y), relocating conflicting tiles. It returns
// false and leaves the grid untouched when the conflict cannot be resolved.
func (g *Grid) MoveTile(id string, x, y int) (bool, error) {
	c, ok := g.cells[id]
	if !ok {
		return false, errors.New(errors.ErrCodeUnknownID, "tile %q does not exist", id)
	}
	snap := g.Snapshot()
	g.cells[id] = c.At(x, y)
	return g.commit(id, snap), nil
}

// ResizeTile changes a tile's size in place, relocating conflicting tiles.
// It returns false and leaves the grid untouched when the conflict cannot
// be resolved.
func (g *Grid) ResizeTile(id string, width, height int) (bool, error) {
	c, ok := g.cells[id]
	if !ok {
		return false, errors.New(errors.ErrCodeUnknownID, "tile %q does not exist", id)
	}
	if err := checkSize(id, width, height); err != nil {
		return false, err
	}
	snap := g.Snapshot()
	c.Width, c.Height = width, height
	g.cells[id] = c
	return g.commit(id, snap), nil
}

// RemoveTile deletes a tile and compacts its aligned neighbours into the
// freed space. Removing an absent tile is a no-op that returns false.
//
// In a height-bounded grid, tiles below the removed one that lie within its
// horizontal span move up by its height. In a width-bounded grid, tiles to
// its right that lie within its vertical span move left by its width. A
// shift that would overlap another tile is skipped.
func (g *Grid) RemoveTile(id string) bool {
	removed, ok := g.cells[id]
	if !ok {
		return false
	}
	delete(g.cells, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	g.compact(removed)
	return true
}

// LayoutSize returns the bounding extent of all tiles. The bounded axis
// reports at least its bound.
func (g *Grid) LayoutSize() Size {
	s := g.extent()
	s.Width = max(s.Width, g.bounds.MaxWidth)
	s.Height = max(s.Height, g.bounds.MaxHeight)
	return s
}

// Extent returns the bounding extent of all tiles without padding the
// bounded axis.
func (g *Grid) Extent() Size { return g.extent() }

// Clear removes every tile.
func (g *Grid) Clear() {
	clear(g.cells)
	g.order = g.order[:0]
}

// Snapshot is a value copy of a grid's tiles used for rollback.
type Snapshot struct {
	cells map[string]Cell
	order []string
}

// Snapshot captures the current tiles.
func (g *Grid) Snapshot() Snapshot {
	cells := make(map[string]Cell, len(g.cells))
	for id, c := range g.cells {
		cells[id] = c
	}
	return Snapshot{cells: cells, order: slices.Clone(g.order)}
}

// Restore replaces the tiles with a snapshot taken from this or another
// grid. The snapshot stays valid and can be restored again.
func (g *Grid) Restore(s Snapshot) {
	g.cells = make(map[string]Cell, len(s.cells))
	for id, c := range s.cells {
		g.cells[id] = c
	}
	g.order = slices.Clone(s.order)
}

// =============================================================================
// Internals
// =============================================================================

func checkSize(id string, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tile %q size %dx%d must be positive", id, width, height)
	}
	return nil
}

func (g *Grid) insert(id string, c Cell) {
	g.cells[id] = c
	g.order = append(g.order, id)
}

// commit resolves conflicts around id, rolling back to snap on failure.
func (g *Grid) commit(id string, snap Snapshot) bool {
	if g.resolve(id) {
		return true
	}
	g.Restore(snap)
	return false
}

func (g *Grid) extent() Size {
	var s Size
	for _, c := range g.cells {
		s.Width = max(s.Width, c.Right())
		s.Height = max(s.Height, c.Bottom())
	}
	return s
}

// free reports whether c overlaps no tile other than skip.
func (g *Grid) free(c Cell, skip string) bool {
	for _, id := range g.order {
		if id != skip && g.cells[id].Intersects(c) {
			return false
		}
	}
	return true
}

// compact shifts tiles aligned with removed into the space it vacated.
func (g *Grid) compact(removed Cell) {
	var movable []string
	for _, id := range g.order {
		c := g.cells[id]
		if g.bounds.HeightBounded() {
			if c.Y > removed.Y && c.X >= removed.X && c.Right() <= removed.Right() {
				movable = append(movable, id)
			}
		} else if c.X > removed.X && c.Y >= removed.Y && c.Bottom() <= removed.Bottom() {
			movable = append(movable, id)
		}
	}

	// Nearest first, so a tile moves into space freed by the one before it.
	slices.SortStableFunc(movable, func(a, b string) int {
		ca, cb := g.cells[a], g.cells[b]
		if g.bounds.HeightBounded() {
			return ca.Y - cb.Y
		}
		return ca.X - cb.X
	})

	for _, id := range movable {
		c := g.cells[id]
		var next Cell
		if g.bounds.HeightBounded() {
			next = c.At(c.X, max(0, c.Y-removed.Height))
		} else {
			next = c.At(max(0, c.X-removed.Width), c.Y)
		}
		if g.free(next, id) {
			g.cells[id] = next
		}
	}
}
