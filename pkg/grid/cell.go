package grid

import (
	"fmt"

	"github.com/matzehuels/livetiles/pkg/errors"
)

// MinBound is the smallest allowed value for the bounded axis of a grid,
// in small-tile units.
const MinBound = 4

// Cell is an axis-aligned rectangle in small-tile units. X and Y may be
// negative transiently while a mutation is being resolved; Width and
// Height are always positive.
type Cell struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Left returns the left edge (X).
func (c Cell) Left() int { return c.X }

// Top returns the top edge (Y).
func (c Cell) Top() int { return c.Y }

// Right returns the exclusive right edge.
func (c Cell) Right() int { return c.X + c.Width }

// Bottom returns the exclusive bottom edge.
func (c Cell) Bottom() int { return c.Y + c.Height }

// Area returns Width*Height.
func (c Cell) Area() int { return c.Width * c.Height }

// At returns a copy of c moved to (x, y).
func (c Cell) At(x, y int) Cell {
	c.X, c.Y = x, y
	return c
}

// Translate returns a copy of c shifted by (dx, dy).
func (c Cell) Translate(dx, dy int) Cell {
	c.X += dx
	c.Y += dy
	return c
}

// Intersects reports whether c and o overlap with non-zero area.
// Touching edges do not count as overlap.
func (c Cell) Intersects(o Cell) bool {
	return c.X < o.Right() && o.X < c.Right() &&
		c.Y < o.Bottom() && o.Y < c.Bottom()
}

// Intersection returns the overlapping rectangle of c and o. The boolean is
// false when they do not intersect.
func (c Cell) Intersection(o Cell) (Cell, bool) {
	if !c.Intersects(o) {
		return Cell{}, false
	}
	x, y := max(c.X, o.X), max(c.Y, o.Y)
	return Cell{
		X:      x,
		Y:      y,
		Width:  min(c.Right(), o.Right()) - x,
		Height: min(c.Bottom(), o.Bottom()) - y,
	}, true
}

// Union returns the smallest rectangle containing both c and o.
func (c Cell) Union(o Cell) Cell {
	x, y := min(c.X, o.X), min(c.Y, o.Y)
	return Cell{
		X:      x,
		Y:      y,
		Width:  max(c.Right(), o.Right()) - x,
		Height: max(c.Bottom(), o.Bottom()) - y,
	}
}

// Contains reports whether the point (x, y) lies inside c. The right and
// bottom edges are exclusive.
func (c Cell) Contains(x, y int) bool {
	return x >= c.X && x < c.Right() && y >= c.Y && y < c.Bottom()
}

// Within reports whether c lies inside b: non-negative coordinates and,
// for whichever bound is set, not extending past it.
func (c Cell) Within(b Bounds) bool {
	if c.X < 0 || c.Y < 0 {
		return false
	}
	if b.MaxWidth > 0 && c.Right() > b.MaxWidth {
		return false
	}
	if b.MaxHeight > 0 && c.Bottom() > b.MaxHeight {
		return false
	}
	return true
}

func (c Cell) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", c.Width, c.Height, c.X, c.Y)
}

// Bounds holds the hard limit of a grid. Exactly one of MaxWidth and
// MaxHeight is set; zero means unbounded.
type Bounds struct {
	MaxWidth  int
	MaxHeight int
}

// Width returns a width-bounded Bounds (column-flow groups).
func Width(w int) Bounds { return Bounds{MaxWidth: w} }

// Height returns a height-bounded Bounds (row-flow groups).
func Height(h int) Bounds { return Bounds{MaxHeight: h} }

// HeightBounded reports whether the vertical axis is the bounded one.
func (b Bounds) HeightBounded() bool { return b.MaxHeight > 0 }

// Fits reports whether a tile of the given size can ever be placed within
// the bounded axis.
func (b Bounds) Fits(width, height int) bool {
	if b.MaxWidth > 0 && width > b.MaxWidth {
		return false
	}
	if b.MaxHeight > 0 && height > b.MaxHeight {
		return false
	}
	return true
}

// Validate checks that exactly one bound is set and that it is at least
// [MinBound].
func (b Bounds) Validate() error {
	if b.MaxWidth < 0 || b.MaxHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "grid bounds must not be negative")
	}
	switch {
	case b.MaxWidth > 0 && b.MaxHeight > 0:
		return errors.New(errors.ErrCodeInvalidConfig, "grid must bound width or height, not both")
	case b.MaxWidth == 0 && b.MaxHeight == 0:
		return errors.New(errors.ErrCodeInvalidConfig, "grid must bound either width or height")
	case b.MaxWidth > 0 && b.MaxWidth < MinBound:
		return errors.New(errors.ErrCodeInvalidConfig, "max width %d is below minimum %d", b.MaxWidth, MinBound)
	case b.MaxHeight > 0 && b.MaxHeight < MinBound:
		return errors.New(errors.ErrCodeInvalidConfig, "max height %d is below minimum %d", b.MaxHeight, MinBound)
	}
	return nil
}

// Size is a width/height extent in small-tile units.
type Size struct {
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}
