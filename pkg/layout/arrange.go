package layout

import "github.com/matzehuels/livetiles/pkg/grid"

// Box is a group's measured rectangle in em, relative to the container's
// top-left corner. The tile area starts [Config.LabelHeight] plus
// [Config.TileGap] below Y.
type Box struct {
	ID     string    `json:"id"`
	Index  int       `json:"index"`
	Column int       `json:"column"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Cells  grid.Size `json:"cells"`
}

// Right returns the em coordinate of the box's right edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns the em coordinate of the box's bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Arrangement is the measured container.
type Arrangement struct {
	Groups []Box   `json:"groups"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Arrange measures every group in em. Row-flow groups sit side by side,
// each as wide as its tiles (at least one small tile). Column-flow groups
// are dealt round-robin into [Config.InlineGroups] columns and stacked,
// each as tall as its tiles.
func (l *Layout) Arrange() Arrangement {
	if l.cfg.Direction == Vertical {
		return l.arrangeColumns()
	}
	return l.arrangeRow()
}

func (l *Layout) arrangeRow() Arrangement {
	var a Arrangement
	height := l.cfg.Header() + l.cfg.Span(l.cfg.Height)
	x := 0.0
	for i, g := range l.groups {
		ext := g.grid.Extent()
		cols := max(1, ext.Width)
		box := Box{
			ID:     g.id,
			Index:  i,
			X:      x,
			Width:  l.cfg.Span(cols),
			Height: height,
			Cells:  grid.Size{Width: ext.Width, Height: l.cfg.Height},
		}
		a.Groups = append(a.Groups, box)
		a.Width = box.Right()
		x = box.Right() + l.cfg.GroupGap
	}
	if len(l.groups) > 0 {
		a.Height = height
	}
	return a
}

func (l *Layout) arrangeColumns() Arrangement {
	var a Arrangement
	width := l.cfg.Span(l.cfg.GroupWidth)
	bottoms := make([]float64, l.cfg.InlineGroups)
	used := make([]bool, l.cfg.InlineGroups)

	for i, g := range l.groups {
		col := i % l.cfg.InlineGroups
		ext := g.grid.Extent()
		rows := max(1, ext.Height)
		y := 0.0
		if used[col] {
			y = bottoms[col] + l.cfg.GroupGap
		}
		box := Box{
			ID:     g.id,
			Index:  i,
			Column: col,
			X:      l.columnX(col),
			Y:      y,
			Width:  width,
			Height: l.cfg.Header() + l.cfg.Span(rows),
			Cells:  grid.Size{Width: l.cfg.GroupWidth, Height: ext.Height},
		}
		a.Groups = append(a.Groups, box)
		bottoms[col] = box.Bottom()
		used[col] = true
		a.Width = max(a.Width, box.Right())
		a.Height = max(a.Height, box.Bottom())
	}
	return a
}

// columnX is the em x coordinate of a column-flow column.
func (l *Layout) columnX(col int) float64 {
	return float64(col) * (l.cfg.Span(l.cfg.GroupWidth) + l.cfg.GroupGap)
}

// Rect is a rectangle in em.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TileRect returns the em rectangle a cell of box occupies.
func (c Config) TileRect(box Box, cell grid.Cell) Rect {
	u := c.Unit()
	return Rect{
		X:      box.X + float64(cell.X)*u,
		Y:      box.Y + c.Header() + float64(cell.Y)*u,
		Width:  c.Span(cell.Width),
		Height: c.Span(cell.Height),
	}
}
