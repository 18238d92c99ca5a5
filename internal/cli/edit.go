package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/render"
	"github.com/matzehuels/livetiles/pkg/state"
	"github.com/matzehuels/livetiles/pkg/store"
)

// editCommand opens the interactive editor.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Rearrange tiles interactively",
		Long: `Rearrange tiles interactively.

Select a tile with tab, pick it up with enter and move it with the arrow
keys; the other tiles make room as it passes. Enter drops it, esc puts it
back. q saves and quits, ctrl+c quits without saving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.openLayout()
			if err != nil {
				return err
			}
			return c.runEdit(withLogger(cmd.Context(), c.Logger), l)
		},
	}
}

func (c *CLI) runEdit(ctx context.Context, l *layout.Layout) error {
	m := newEditModel(ctx, l)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	if !m.save || !m.changed {
		printInfo("No changes written")
		return nil
	}
	if err := writeDocument(c.layoutPath, store.NewDocument(l)); err != nil {
		return err
	}
	printSuccess("Saved %s", c.layoutPath)
	return nil
}

// =============================================================================
// editModel - Interactive drag editor
// =============================================================================

// editModel drives drag previews from the keyboard. It is used through a
// pointer so the layout subscription can mark it changed.
type editModel struct {
	layout *layout.Layout
	opts   []render.TermOption

	selected string
	drag     *layout.DragPreview
	off      layout.Offset

	status  string
	changed bool
	save    bool
}

func newEditModel(ctx context.Context, l *layout.Layout, opts ...render.TermOption) *editModel {
	m := &editModel{layout: l, opts: opts}
	l.Subscribe(func(*state.State) { m.changed = true })
	if ids := m.tileIDs(); len(ids) > 0 {
		m.selected = ids[0]
	}
	loggerFromContext(ctx).Debug("editor started", "tiles", l.Len())
	return m
}

func (m *editModel) Init() tea.Cmd {
	return nil
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.drag != nil {
		return m, m.updateDrag(key.String())
	}

	switch key.String() {
	case "q":
		m.save = true
		return m, tea.Quit
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "right", "l", "down", "j":
		m.step(1)
	case "shift+tab", "left", "h", "up", "k":
		m.step(-1)
	case "enter", " ":
		m.pickUp()
	case "s":
		m.cycleSize()
	case "x", "delete":
		m.remove()
	}
	return m, nil
}

// updateDrag handles keys while a tile is lifted.
func (m *editModel) updateDrag(key string) tea.Cmd {
	u := m.layout.Config().Unit()
	switch key {
	case "ctrl+c":
		_ = m.layout.CancelDrag(m.drag)
		m.drag = nil
		return tea.Quit
	case "esc":
		_ = m.layout.CancelDrag(m.drag)
		m.drag = nil
		m.status = "put back " + m.selected
		return nil
	case "enter", " ":
		m.drop()
		return nil
	case "left", "h":
		m.off.X -= u
	case "right", "l":
		m.off.X += u
	case "up", "k":
		m.off.Y -= u
	case "down", "j":
		m.off.Y += u
	default:
		return nil
	}
	m.preview()
	return nil
}

func (m *editModel) pickUp() {
	if m.selected == "" {
		return
	}
	rect, ok := m.tileRect(m.selected)
	if !ok {
		return
	}
	p, err := m.layout.BeginDrag(m.selected)
	if err != nil {
		m.fail(err)
		return
	}
	m.drag = p
	m.off = layout.Offset{X: rect.X, Y: rect.Y}
	m.preview()
}

func (m *editModel) preview() {
	res, ok, err := m.layout.UpdateDrag(m.drag, m.off)
	switch {
	case err != nil:
		m.fail(err)
	default:
		m.status = "over " + snapText(res, ok)
	}
}

func (m *editModel) drop() {
	res, err := m.layout.EndDrag(m.drag)
	m.drag = nil
	switch {
	case err != nil:
		m.fail(err)
		return
	case !res.Committed:
		m.status = "no drop target; " + m.selected + " went back"
		return
	}
	m.status = fmt.Sprintf("dropped %s at (%d,%d) in %s", m.selected, res.X, res.Y, res.Group)
	if res.Emptied != "" && m.layout.RemoveGroup(res.Emptied) == nil {
		m.status += "; removed empty group " + res.Emptied
	}
}

func (m *editModel) fail(err error) {
	m.status = styleIconError.Render(iconError) + " " + err.Error()
}

func (m *editModel) cycleSize() {
	t, ok := m.layout.Tile(m.selected)
	if !ok {
		return
	}
	next := state.Sizes[(slices.Index(state.Sizes, t.Size)+1)%len(state.Sizes)]
	placed, err := m.layout.ResizeTile(m.selected, next)
	switch {
	case err != nil:
		m.fail(err)
	case !placed:
		m.status = fmt.Sprintf("%s does not fit as %s", m.selected, next)
	default:
		m.status = fmt.Sprintf("%s is now %s", m.selected, next)
	}
}

func (m *editModel) remove() {
	if m.selected == "" {
		return
	}
	ids := m.tileIDs()
	i := slices.Index(ids, m.selected)
	m.layout.RemoveTile(m.selected)
	m.status = "removed " + m.selected

	ids = m.tileIDs()
	switch {
	case len(ids) == 0:
		m.selected = ""
	case i >= len(ids):
		m.selected = ids[len(ids)-1]
	default:
		m.selected = ids[max(i, 0)]
	}
}

// step moves the selection through the tiles in layout order.
func (m *editModel) step(d int) {
	ids := m.tileIDs()
	if len(ids) == 0 {
		return
	}
	i := slices.Index(ids, m.selected)
	m.selected = ids[((i+d)%len(ids)+len(ids))%len(ids)]
}

func (m *editModel) tileIDs() []string {
	tiles := m.layout.Tiles()
	ids := make([]string, 0, len(tiles))
	for _, t := range tiles {
		if !t.Ghost {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (m *editModel) tileRect(id string) (layout.Rect, bool) {
	for _, g := range render.Build(m.layout).Groups {
		for _, t := range g.Tiles {
			if t.ID == id {
				return t.Rect, true
			}
		}
	}
	return layout.Rect{}, false
}

func (m *editModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("livetiles"))
	if m.selected != "" {
		b.WriteString(StyleDim.Render("  selected: ") + StyleHighlight.Render(m.selected))
	}
	b.WriteString("\n\n")

	opts := append(slices.Clone(m.opts), render.WithSelected(m.selected))
	b.WriteString(render.RenderTerminal(render.Build(m.layout), opts...))
	b.WriteString("\n\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	help := "tab select  ⏎ pick up  s size  x remove  q save+quit  ctrl+c quit"
	if m.drag != nil {
		help = "←↑↓→ move  ⏎ drop  esc put back"
	}
	b.WriteString(StyleDim.Render(help))
	return b.String()
}
