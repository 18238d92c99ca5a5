package layout

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/grid"
	"github.com/matzehuels/livetiles/pkg/observability"
	"github.com/matzehuels/livetiles/pkg/state"
)

// AnonymousPrefix starts the id of every group the engine creates on its
// own, for tiles added without a group or dropped past the last group.
const AnonymousPrefix = "__anonymous$"

// group is one entry of the ordered group list. It owns its grid.
type group struct {
	id    string
	label string
	grid  *grid.Grid
}

// Layout is an ordered list of groups, each owning one collision-resolving
// grid, together with the state mirror kept in sync with them.
//
// Every mutator either succeeds or leaves groups, grids and mirror exactly
// as they were. A Layout is not safe for concurrent use.
type Layout struct {
	cfg    Config
	groups []*group
	tiles  map[string]string // tile id -> group id
	sizes  map[string]state.Size
	state  *state.State
	drag   *DragPreview
	notify notifier
	logger *log.Logger
	newID  func() string
}

// Option configures a [Layout].
type Option func(*Layout)

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(lay *Layout) {
		if l != nil {
			lay.logger = l
		}
	}
}

// WithIDGenerator replaces the random suffix source for anonymous group ids.
func WithIDGenerator(fn func() string) Option {
	return func(l *Layout) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// New creates an empty layout. It returns an INVALID_CONFIGURATION error
// when cfg does not validate.
func New(cfg Config, opts ...Option) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Layout{
		cfg:    cfg,
		tiles:  make(map[string]string),
		sizes:  make(map[string]state.Size),
		state:  state.New(),
		logger: log.New(io.Discard),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Config returns the layout configuration.
func (l *Layout) Config() Config { return l.cfg }

// =============================================================================
// Groups
// =============================================================================

// GroupInfo describes a group.
type GroupInfo struct {
	ID    string    `json:"id"`
	Index int       `json:"index"`
	Label string    `json:"label"`
	Tiles int       `json:"tiles"`
	Size  grid.Size `json:"size"`
}

// AddGroup appends a group with the next index. It fails with DUPLICATE_ID
// when the id is taken.
func (l *Layout) AddGroup(id, label string) error {
	if err := l.idle(); err != nil {
		return err
	}
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	if err := errors.ValidateLabel(label); err != nil {
		return err
	}
	if l.find(id) >= 0 {
		return errors.New(errors.ErrCodeDuplicateID, "group %q already exists", id)
	}
	l.appendGroup(id, label)
	l.logger.Debug("group added", "id", id, "index", len(l.groups)-1)
	l.changed()
	return nil
}

// RemoveGroup deletes a group and all of its tiles, then renumbers the
// remaining groups. It fails with UNKNOWN_ID when the group does not exist.
func (l *Layout) RemoveGroup(id string) error {
	if err := l.idle(); err != nil {
		return err
	}
	i := l.find(id)
	if i < 0 {
		return errors.New(errors.ErrCodeUnknownID, "group %q does not exist", id)
	}
	l.dropGroup(i)
	l.logger.Debug("group removed", "id", id)
	l.changed()
	return nil
}

// RenameGroup changes a group's label.
func (l *Layout) RenameGroup(id, label string) error {
	if err := l.idle(); err != nil {
		return err
	}
	if err := errors.ValidateLabel(label); err != nil {
		return err
	}
	i := l.find(id)
	if i < 0 {
		return errors.New(errors.ErrCodeUnknownID, "group %q does not exist", id)
	}
	l.groups[i].label = label
	l.reindex()
	l.changed()
	return nil
}

// MoveGroup moves a group to index, shifting the groups in between. The
// index is clamped to the valid range.
func (l *Layout) MoveGroup(id string, index int) error {
	if err := l.idle(); err != nil {
		return err
	}
	i := l.find(id)
	if i < 0 {
		return errors.New(errors.ErrCodeUnknownID, "group %q does not exist", id)
	}
	index = max(0, min(index, len(l.groups)-1))
	if index == i {
		return nil
	}
	g := l.groups[i]
	l.groups = slices.Delete(l.groups, i, i+1)
	l.groups = slices.Insert(l.groups, index, g)
	l.reindex()
	l.logger.Debug("group moved", "id", id, "from", i, "to", index)
	l.changed()
	return nil
}

// Groups returns every group in index order.
func (l *Layout) Groups() []GroupInfo {
	out := make([]GroupInfo, len(l.groups))
	for i, g := range l.groups {
		out[i] = l.info(i, g)
	}
	return out
}

// Group returns one group.
func (l *Layout) Group(id string) (GroupInfo, bool) {
	i := l.find(id)
	if i < 0 {
		return GroupInfo{}, false
	}
	return l.info(i, l.groups[i]), true
}

// EmptyGroups returns the ids of groups without tiles. The engine never
// prunes them on its own.
func (l *Layout) EmptyGroups() []string {
	var ids []string
	for _, g := range l.groups {
		if g.grid.Len() == 0 {
			ids = append(ids, g.id)
		}
	}
	return ids
}

// GroupLayoutSize returns the extent of a group's grid in small tiles.
func (l *Layout) GroupLayoutSize(id string) (grid.Size, error) {
	i := l.find(id)
	if i < 0 {
		return grid.Size{}, errors.New(errors.ErrCodeUnknownID, "group %q does not exist", id)
	}
	return l.groups[i].grid.LayoutSize(), nil
}

// =============================================================================
// Whole-layout operations
// =============================================================================

// Clear removes every group and tile. A drag in progress is dropped.
func (l *Layout) Clear() {
	l.drag = nil
	l.groups = nil
	clear(l.tiles)
	clear(l.sizes)
	l.state.Clear()
	l.changed()
}

// State returns a copy of the state mirror.
func (l *Layout) State() *state.State { return l.state.Clone() }

// Restore rebuilds the layout from a persisted state. Groups are created
// in index order and each group's tiles are placed at their recorded cells
// in row-major order. Conflicts in the document are resolved the usual
// way; if that fails the layout is left unchanged and an INVALID_STATE
// error is returned.
func (l *Layout) Restore(s *state.State) error {
	if err := l.idle(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	snap := l.snapshot()
	l.groups = nil
	clear(l.tiles)
	clear(l.sizes)
	l.state.Clear()

	for _, gid := range s.SortedGroupIDs() {
		g := l.appendGroup(gid, s.Groups[gid].Label)
		for _, tid := range s.TilesIn(gid) {
			t := s.Tiles[tid]
			ok, err := g.grid.AddTile(tid, grid.At(t.X, t.Y), t.Size.Width(), t.Size.Height())
			if err != nil || !ok {
				l.restore(snap)
				if err == nil {
					err = errors.New(errors.ErrCodeUnresolvable, "tile %q cannot be placed at (%d,%d)", tid, t.X, t.Y)
				}
				return errors.Wrap(errors.ErrCodeInvalidState, err, "restore layout")
			}
			l.tiles[tid] = gid
			l.sizes[tid] = t.Size
			l.state.Tiles[tid] = state.Tile{Size: t.Size, Group: gid}
		}
	}
	for _, g := range l.groups {
		l.sync(g)
	}
	l.logger.Debug("layout restored", "groups", len(l.groups), "tiles", len(l.tiles))
	l.changed()
	return nil
}

// =============================================================================
// Internals
// =============================================================================

func (l *Layout) idle() error {
	if l.drag != nil {
		return errors.New(errors.ErrCodeInvalidState, "tile %q is being dragged", l.drag.Tile)
	}
	return nil
}

func (l *Layout) find(id string) int {
	return slices.IndexFunc(l.groups, func(g *group) bool { return g.id == id })
}

func (l *Layout) groupOf(tile string) (*group, bool) {
	gid, ok := l.tiles[tile]
	if !ok {
		return nil, false
	}
	i := l.find(gid)
	if i < 0 {
		return nil, false
	}
	return l.groups[i], true
}

func (l *Layout) info(i int, g *group) GroupInfo {
	return GroupInfo{
		ID:    g.id,
		Index: i,
		Label: g.label,
		Tiles: g.grid.Len(),
		Size:  g.grid.LayoutSize(),
	}
}

// appendGroup adds a group without notifying.
func (l *Layout) appendGroup(id, label string) *group {
	// Bounds were validated with the config, so New cannot fail here.
	gr, _ := grid.New(l.cfg.Bounds())
	g := &group{id: id, label: label, grid: gr}
	l.groups = append(l.groups, g)
	l.state.Groups[id] = state.Group{Index: len(l.groups) - 1, Label: label}
	return g
}

// dropGroup removes the group at index i and its tiles without notifying.
func (l *Layout) dropGroup(i int) {
	g := l.groups[i]
	for _, tid := range g.grid.IDs() {
		delete(l.tiles, tid)
		delete(l.sizes, tid)
		delete(l.state.Tiles, tid)
	}
	l.groups = slices.Delete(l.groups, i, i+1)
	delete(l.state.Groups, g.id)
	l.reindex()
}

func (l *Layout) newAnonymousID() string {
	for {
		id := AnonymousPrefix + l.newID()
		if l.find(id) < 0 {
			return id
		}
	}
}

// reindex writes contiguous indices to the mirror.
func (l *Layout) reindex() {
	for i, g := range l.groups {
		l.state.Groups[g.id] = state.Group{Index: i, Label: g.label}
	}
}

// sync copies the positions of a group's tiles into the mirror.
func (l *Layout) sync(g *group) {
	for _, t := range g.grid.Tiles() {
		st, ok := l.state.Tiles[t.ID]
		if !ok {
			continue
		}
		st.X, st.Y, st.Group = t.X, t.Y, g.id
		l.state.Tiles[t.ID] = st
	}
}

func (l *Layout) record(op, id string, ok bool, start time.Time) {
	observability.Layout().OnMutation(op, id, ok, time.Since(start))
	if !ok {
		l.logger.Debug("conflict unresolvable, rolled back", "op", op, "id", id)
	}
}

// layoutSnapshot is a value copy of everything a mutation can touch.
type layoutSnapshot struct {
	groups []groupSnapshot
	tiles  map[string]string
	sizes  map[string]state.Size
	state  *state.State
}

type groupSnapshot struct {
	g     *group
	label string
	cells grid.Snapshot
}

func (l *Layout) snapshot() layoutSnapshot {
	s := layoutSnapshot{
		groups: make([]groupSnapshot, len(l.groups)),
		tiles:  make(map[string]string, len(l.tiles)),
		sizes:  make(map[string]state.Size, len(l.sizes)),
		state:  l.state.Clone(),
	}
	for i, g := range l.groups {
		s.groups[i] = groupSnapshot{g: g, label: g.label, cells: g.grid.Snapshot()}
	}
	for k, v := range l.tiles {
		s.tiles[k] = v
	}
	for k, v := range l.sizes {
		s.sizes[k] = v
	}
	return s
}

// restore puts back a snapshot. The snapshot remains usable afterwards.
func (l *Layout) restore(s layoutSnapshot) {
	l.restoreGrids(s)
	l.tiles = make(map[string]string, len(s.tiles))
	for k, v := range s.tiles {
		l.tiles[k] = v
	}
	l.sizes = make(map[string]state.Size, len(s.sizes))
	for k, v := range s.sizes {
		l.sizes[k] = v
	}
	l.state.Replace(s.state)
}

// restoreGrids puts back group order, labels and cells only.
func (l *Layout) restoreGrids(s layoutSnapshot) {
	l.groups = make([]*group, len(s.groups))
	for i, gs := range s.groups {
		gs.g.label = gs.label
		gs.g.grid.Restore(gs.cells)
		l.groups[i] = gs.g
	}
}
