package grid

// NearbyRadius is the largest Manhattan distance the nearby search tries
// before falling back to a full scan.
const NearbyRadius = 10

// resolve restores the grid invariants after id was inserted, moved or
// resized. Every tile that overlaps the tile being checked, or lies out of
// bounds, is relocated and then checked in turn. It reports false as soon
// as a tile cannot be relocated.
func (g *Grid) resolve(id string) bool {
	work := []string{id}
	budget := len(g.order)*len(g.order) + 16

	for len(work) > 0 {
		if budget == 0 {
			return false
		}
		budget--

		cur := work[len(work)-1]
		work = work[:len(work)-1]
		c, ok := g.cells[cur]
		if !ok {
			continue
		}

		for _, other := range g.order {
			if other == cur {
				continue
			}
			oc := g.cells[other]
			if !oc.Intersects(c) && oc.Within(g.bounds) {
				continue
			}
			pos, ok := g.relocate(other, oc)
			if !ok {
				return false
			}
			g.cells[other] = pos
			work = append(work, other)
		}

		if c = g.cells[cur]; !c.Within(g.bounds) {
			pos, ok := g.relocate(cur, c)
			if !ok {
				return false
			}
			g.cells[cur] = pos
			work = append(work, cur)
		}
	}
	return true
}

// relocate finds a new in-bounds, non-overlapping cell for tile id, trying
// the nearby search first.
func (g *Grid) relocate(id string, c Cell) (Cell, bool) {
	if pos, ok := g.nearby(id, c); ok {
		return pos, true
	}
	return g.scan(id, c)
}

// nearby tests positions in Manhattan rings of growing radius around c,
// top to bottom and left to right inside each ring.
func (g *Grid) nearby(id string, c Cell) (Cell, bool) {
	for r := 0; r <= NearbyRadius; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx)+abs(dy) != r {
					continue
				}
				cand := c.Translate(dx, dy)
				if cand.Within(g.bounds) && g.free(cand, id) {
					return cand, true
				}
			}
		}
	}
	return Cell{}, false
}

// scan returns the first free cell for tile id in row-major order.
func (g *Grid) scan(id string, c Cell) (Cell, bool) {
	pos, ok := g.firstFree(c.Width, c.Height, id)
	if !ok {
		return Cell{}, false
	}
	return c.At(pos.X, pos.Y), true
}

// bestPosition is the placement used when no coordinates are given.
func (g *Grid) bestPosition(width, height int) (Point, bool) {
	return g.firstFree(width, height, "")
}

// firstFree scans rows from the top and columns from the left for a slot
// where a width x height tile overlaps nothing but skip. The unbounded axis
// is scanned up to the current extent, past which space is always free, so
// the scan only fails when the tile does not fit the bound.
func (g *Grid) firstFree(width, height int, skip string) (Point, bool) {
	if !g.bounds.Fits(width, height) {
		return Point{}, false
	}
	ext := g.extent()

	maxX := ext.Width
	if g.bounds.MaxWidth > 0 {
		maxX = g.bounds.MaxWidth - width
	}
	maxY := ext.Height
	if g.bounds.MaxHeight > 0 {
		maxY = g.bounds.MaxHeight - height
	}

	for y := 0; y <= maxY; y++ {
		for x := 0; x <= maxX; x++ {
			if g.free(Cell{X: x, Y: y, Width: width, Height: height}, skip) {
				return Point{X: x, Y: y}, true
			}
		}
	}
	return Point{}, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
