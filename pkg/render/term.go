package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/state"
)

// Terminal cell size, in columns and lines per small tile.
const (
	DefaultCellWidth  = 6
	DefaultCellHeight = 3
)

// TermOption configures [RenderTerminal].
type TermOption func(*termRenderer)

type termRenderer struct {
	r          *lipgloss.Renderer
	cellWidth  int
	cellHeight int
	selected   string
}

// WithRenderer selects the lipgloss renderer, and with it the color
// profile. The default renderer writes to stdout.
func WithRenderer(r *lipgloss.Renderer) TermOption {
	return func(t *termRenderer) { t.r = r }
}

// WithCellSize sets how many columns and lines one small tile takes,
// including the gap to its neighbours. Values below 3 and 2 are raised.
func WithCellSize(cols, lines int) TermOption {
	return func(t *termRenderer) { t.cellWidth, t.cellHeight = max(cols, 3), max(lines, 2) }
}

// WithSelected highlights one tile.
func WithSelected(id string) TermOption {
	return func(t *termRenderer) { t.selected = id }
}

type palette struct {
	label    lipgloss.Style
	frame    lipgloss.Style
	empty    lipgloss.Style
	ghost    lipgloss.Style
	selected lipgloss.Style
	tiles    map[state.Size]lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	tile := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }
	return palette{
		label:    r.NewStyle().Bold(true),
		frame:    r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")),
		empty:    r.NewStyle().Faint(true),
		ghost:    r.NewStyle().Foreground(lipgloss.Color("8")),
		selected: r.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		tiles: map[state.Size]lipgloss.Style{
			state.Small:  tile("12"),
			state.Medium: tile("10"),
			state.Wide:   tile("11"),
			state.Large:  tile("9"),
		},
	}
}

// RenderTerminal draws a scene with box-drawing characters. Row-flow groups
// sit side by side; column-flow groups are stacked per column.
func RenderTerminal(s Scene, opts ...TermOption) string {
	t := &termRenderer{cellWidth: DefaultCellWidth, cellHeight: DefaultCellHeight}
	for _, opt := range opts {
		opt(t)
	}
	if t.r == nil {
		t.r = lipgloss.DefaultRenderer()
	}
	p := newPalette(t.r)

	if len(s.Groups) == 0 {
		return p.empty.Render("(no groups)")
	}

	blocks := make([]string, len(s.Groups))
	for i, g := range s.Groups {
		title := p.label.Render(truncate(g.Title(), t.cellWidth*max(1, g.Cells.Width)))
		blocks[i] = lipgloss.JoinVertical(lipgloss.Left, title, p.frame.Render(t.canvas(g, p)))
	}

	if s.Direction != layout.Vertical {
		return joinSpaced(lipgloss.JoinHorizontal, lipgloss.Top, blocks, " ")
	}

	var columns [][]string
	for i, g := range s.Groups {
		for len(columns) <= g.Column {
			columns = append(columns, nil)
		}
		columns[g.Column] = append(columns[g.Column], blocks[i])
	}
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = joinSpaced(lipgloss.JoinVertical, lipgloss.Left, c, "")
	}
	return joinSpaced(lipgloss.JoinHorizontal, lipgloss.Top, cols, " ")
}

func joinSpaced(join func(lipgloss.Position, ...string) string, pos lipgloss.Position, parts []string, gap string) string {
	spaced := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			spaced = append(spaced, gap)
		}
		spaced = append(spaced, p)
	}
	return join(pos, spaced...)
}

// canvas paints one group's tiles into a character grid.
func (t *termRenderer) canvas(g SceneGroup, p palette) string {
	cols := max(1, g.Cells.Width)
	rows := max(1, g.Cells.Height)
	w, h := cols*t.cellWidth, rows*t.cellHeight

	chars := make([][]rune, h)
	owner := make([][]int, h)
	for y := range chars {
		chars[y] = []rune(strings.Repeat(" ", w))
		owner[y] = make([]int, w)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}
	for y := 0; y < h; y += t.cellHeight {
		for x := 0; x < w; x += t.cellWidth {
			chars[y][x] = '·'
		}
	}

	for i, tile := range g.Tiles {
		x0, y0 := tile.Cell.X*t.cellWidth, tile.Cell.Y*t.cellHeight
		x1 := min(w, x0+tile.Cell.Width*t.cellWidth-1)
		y1 := min(h, y0+tile.Cell.Height*t.cellHeight-1)
		t.box(chars, owner, i, x0, y0, x1, y1, tile)
	}

	var out strings.Builder
	for y := range chars {
		if y > 0 {
			out.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= w; x++ {
			if x < w && owner[y][x] == owner[y][start] {
				continue
			}
			run := string(chars[y][start:x])
			out.WriteString(t.style(g, owner[y][start], p).Render(run))
			start = x
		}
	}
	return out.String()
}

// box draws a tile outline over [x0,x1) x [y0,y1) with its id inside.
func (t *termRenderer) box(chars [][]rune, owner [][]int, idx, x0, y0, x1, y1 int, tile SceneTile) {
	hz, vt := '─', '│'
	tl, tr, bl, br := '╭', '╮', '╰', '╯'
	if tile.Ghost {
		hz, vt = '╌', '┆'
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r := ' '
			switch {
			case y == y0 && x == x0:
				r = tl
			case y == y0 && x == x1-1:
				r = tr
			case y == y1-1 && x == x0:
				r = bl
			case y == y1-1 && x == x1-1:
				r = br
			case y == y0 || y == y1-1:
				r = hz
			case x == x0 || x == x1-1:
				r = vt
			}
			chars[y][x] = r
			owner[y][x] = idx
		}
	}
	if inner := x1 - x0 - 2; inner > 0 && y1-y0 > 2 {
		for i, r := range []rune(truncate(tile.ID, inner)) {
			chars[y0+1][x0+1+i] = r
		}
	}
}

func (t *termRenderer) style(g SceneGroup, idx int, p palette) lipgloss.Style {
	if idx < 0 {
		return p.empty
	}
	tile := g.Tiles[idx]
	switch {
	case tile.Ghost:
		return p.ghost
	case tile.ID == t.selected:
		return p.selected
	}
	return p.tiles[tile.Size]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
