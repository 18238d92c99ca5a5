package layout

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/grid"
	"github.com/matzehuels/livetiles/pkg/state"
)

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprint(n)
	}
}

func newLayout(t *testing.T, cfg Config) *Layout {
	t.Helper()
	l, err := New(cfg, WithIDGenerator(counterIDs()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func addTile(t *testing.T, l *Layout, spec TileSpec) {
	t.Helper()
	ok, err := l.AddTile(spec)
	if err != nil {
		t.Fatalf("AddTile(%q): %v", spec.ID, err)
	}
	if !ok {
		t.Fatalf("AddTile(%q) = false", spec.ID)
	}
}

func stateJSON(t *testing.T, l *Layout) string {
	t.Helper()
	data, err := l.State().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	return string(data)
}

// checkLayout asserts grid invariants and that the mirror matches the grids.
func checkLayout(t *testing.T, l *Layout) {
	t.Helper()
	s := l.State()
	byGroup := map[string][]TileInfo{}
	for _, ti := range l.Tiles() {
		byGroup[ti.Group] = append(byGroup[ti.Group], ti)
		if !ti.Within(l.Config().Bounds()) {
			t.Fatalf("tile %q %v out of bounds", ti.ID, ti.Cell)
		}
		st, ok := s.Tiles[ti.ID]
		if !ok {
			t.Fatalf("tile %q missing from mirror", ti.ID)
		}
		if st.X != ti.X || st.Y != ti.Y || st.Group != ti.Group || st.Size != ti.Size {
			t.Fatalf("mirror %+v disagrees with tile %+v", st, ti)
		}
	}
	for g, tiles := range byGroup {
		for i, a := range tiles {
			for _, b := range tiles[i+1:] {
				if a.Intersects(b.Cell) {
					t.Fatalf("group %s: %q %v overlaps %q %v", g, a.ID, a.Cell, b.ID, b.Cell)
				}
			}
		}
	}
	if len(s.Tiles) != l.Len() {
		t.Fatalf("mirror has %d tiles, layout %d", len(s.Tiles), l.Len())
	}
	for i, g := range l.Groups() {
		if g.Index != i || s.Groups[g.ID].Index != i {
			t.Fatalf("group %q index %d/%d, want %d", g.ID, g.Index, s.Groups[g.ID].Index, i)
		}
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("mirror invalid: %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"height below minimum", func(c *Config) { c.Height = 3 }},
		{"unknown direction", func(c *Config) { c.Direction = "diagonal" }},
		{"group width below minimum", func(c *Config) { c.Direction = Vertical; c.GroupWidth = 2 }},
		{"no inline groups", func(c *Config) { c.Direction = Vertical; c.InlineGroups = 0 }},
		{"zero small size", func(c *Config) { c.SmallSize = 0 }},
		{"negative gap", func(c *Config) { c.TileGap = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("New() error = %v, want INVALID_CONFIGURATION", err)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Direction != Horizontal || cfg.Height != DefaultHeight || cfg.SmallSize != DefaultSmallSize {
		t.Errorf("SetDefaults() = %+v", cfg)
	}
}

func TestGroups(t *testing.T) {
	l := newLayout(t, DefaultConfig())
	for _, id := range []string{"a", "b", "c"} {
		if err := l.AddGroup(id, strings.ToUpper(id)); err != nil {
			t.Fatalf("AddGroup(%s): %v", id, err)
		}
	}

	if err := l.AddGroup("b", ""); !errors.Is(err, errors.ErrCodeDuplicateID) {
		t.Errorf("AddGroup(dup) error = %v, want DUPLICATE_ID", err)
	}
	if err := l.RemoveGroup("zzz"); !errors.Is(err, errors.ErrCodeUnknownID) {
		t.Errorf("RemoveGroup(unknown) error = %v, want UNKNOWN_ID", err)
	}
	if err := l.AddGroup("bad id", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddGroup(bad id) error = %v, want INVALID_INPUT", err)
	}

	if err := l.RemoveGroup("a"); err != nil {
		t.Fatalf("RemoveGroup: %v", err)
	}
	checkLayout(t, l)
	if got := l.State().SortedGroupIDs(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("groups = %v, want [b c]", got)
	}

	if err := l.MoveGroup("c", 0); err != nil {
		t.Fatalf("MoveGroup: %v", err)
	}
	if err := l.RenameGroup("b", "Bee"); err != nil {
		t.Fatalf("RenameGroup: %v", err)
	}
	checkLayout(t, l)
	s := l.State()
	if s.Groups["c"].Index != 0 || s.Groups["b"].Index != 1 || s.Groups["b"].Label != "Bee" {
		t.Errorf("groups after move/rename = %+v", s.Groups)
	}

	if err := l.MoveGroup("c", 99); err != nil {
		t.Fatalf("MoveGroup(clamped): %v", err)
	}
	if g, _ := l.Group("c"); g.Index != 1 {
		t.Errorf("MoveGroup(99) index = %d, want 1", g.Index)
	}
}

func TestRemoveGroupDropsTiles(t *testing.T) {
	l := newLayout(t, DefaultConfig())
	_ = l.AddGroup("a", "A")
	_ = l.AddGroup("b", "B")
	addTile(t, l, TileSpec{ID: "t1", Group: "a"})
	addTile(t, l, TileSpec{ID: "t2", Group: "b"})

	if err := l.RemoveGroup("a"); err != nil {
		t.Fatalf("RemoveGroup: %v", err)
	}
	checkLayout(t, l)
	s := l.State()
	if s.TileExists("t1") {
		t.Error("t1 still in mirror")
	}
	if !s.TileExists("t2") || s.Groups["b"].Index != 0 {
		t.Errorf("mirror after remove = %+v", s)
	}
	if _, ok := l.Tile("t1"); ok {
		t.Error("t1 still in layout")
	}
}

func TestAddTileGroupSelection(t *testing.T) {
	l := newLayout(t, DefaultConfig())

	addTile(t, l, TileSpec{ID: "t1", Size: state.Small})
	g1, _ := l.TileGroup("t1")
	if !strings.HasPrefix(g1, AnonymousPrefix) {
		t.Fatalf("t1 group = %q, want anonymous", g1)
	}

	// The last group has no label, so it is reused.
	addTile(t, l, TileSpec{ID: "t2", Size: state.Small})
	if g2, _ := l.TileGroup("t2"); g2 != g1 {
		t.Errorf("t2 group = %q, want %q", g2, g1)
	}

	_ = l.AddGroup("named", "Named")
	addTile(t, l, TileSpec{ID: "t3"})
	g3, _ := l.TileGroup("t3")
	if g3 == "named" || g3 == g1 || !strings.HasPrefix(g3, AnonymousPrefix) {
		t.Errorf("t3 group = %q, want a fresh anonymous group", g3)
	}
	if ti, _ := l.Tile("t3"); ti.Size != state.Medium {
		t.Errorf("default size = %q, want medium", ti.Size)
	}
	checkLayout(t, l)
}

func TestAddTileErrorsLeaveStateUntouched(t *testing.T) {
	l := newLayout(t, DefaultConfig())
	_ = l.AddGroup("g", "G")
	addTile(t, l, TileSpec{ID: "t", Group: "g", At: grid.At(0, 0)})
	before := stateJSON(t, l)

	tests := []struct {
		name string
		spec TileSpec
		code errors.Code
	}{
		{"duplicate", TileSpec{ID: "t", Group: "g"}, errors.ErrCodeDuplicateID},
		{"unknown group", TileSpec{ID: "u", Group: "nope"}, errors.ErrCodeUnknownID},
		{"bad size", TileSpec{ID: "u", Group: "g", Size: "huge"}, errors.ErrCodeInvalidInput},
		{"empty id", TileSpec{Group: "g"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.AddTile(tt.spec); !errors.Is(err, tt.code) {
				t.Errorf("AddTile() error = %v, want %s", err, tt.code)
			}
			if after := stateJSON(t, l); after != before {
				t.Errorf("state changed:\n%s\n%s", before, after)
			}
			if len(l.Groups()) != 1 {
				t.Errorf("groups = %v, want only g", l.Groups())
			}
		})
	}

	if _, err := l.MoveTile("nope", 0, 0); !errors.Is(err, errors.ErrCodeUnknownID) {
		t.Errorf("MoveTile(unknown) error = %v", err)
	}
	if _, err := l.ResizeTile("nope", state.Small); !errors.Is(err, errors.ErrCodeUnknownID) {
		t.Errorf("ResizeTile(unknown) error = %v", err)
	}
	if _, err := l.ResizeTile("t", "huge"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ResizeTile(bad size) error = %v", err)
	}
	if after := stateJSON(t, l); after != before {
		t.Errorf("state changed after failed calls")
	}
}

func TestMoveAndResizeSyncDisplacedTiles(t *testing.T) {
	l := newLayout(t, DefaultConfig())
	_ = l.AddGroup("g", "G")
	addTile(t, l, TileSpec{ID: "a", Group: "g", At: grid.At(0, 0)})
	addTile(t, l, TileSpec{ID: "b", Group: "g", At: grid.At(2, 0)})

	ok, err := l.MoveTile("b", 0, 0)
	if err != nil || !ok {
		t.Fatalf("MoveTile() = %v, %v", ok, err)
	}
	checkLayout(t, l)
	s := l.State()
	if s.Tiles["b"].X != 0 || s.Tiles["b"].Y != 0 {
		t.Errorf("b = %+v, want (0,0)", s.Tiles["b"])
	}
	if a := s.Tiles["a"]; a.X == 0 && a.Y == 0 {
		t.Errorf("a was not displaced: %+v", a)
	}

	ok, err = l.ResizeTile("b", state.Large)
	if err != nil || !ok {
		t.Fatalf("ResizeTile() = %v, %v", ok, err)
	}
	checkLayout(t, l)
	if got := l.State().Tiles["b"].Size; got != state.Large {
		t.Errorf("b size = %q, want large", got)
	}
}

func TestRemoveTile(t *testing.T) {
	l := newLayout(t, DefaultConfig())
	_ = l.AddGroup("g", "G")
	addTile(t, l, TileSpec{ID: "a", Group: "g", At: grid.At(0, 0)})
	addTile(t, l, TileSpec{ID: "c", Group: "g", At: grid.At(0, 2)})

	if !l.RemoveTile("a") {
		t.Fatal("RemoveTile(a) = false")
	}
	checkLayout(t, l)
	if c := l.State().Tiles["c"]; c.Y != 0 {
		t.Errorf("c = %+v, want compacted to y=0", c)
	}

	size, _ := l.GroupLayoutSize("g")
	if l.RemoveTile("a") {
		t.Error("second RemoveTile(a) = true")
	}
	if again, _ := l.GroupLayoutSize("g"); again != size {
		t.Errorf("GroupLayoutSize changed: %v -> %v", size, again)
	}

	l.RemoveTile("c")
	if got := l.EmptyGroups(); !slices.Equal(got, []string{"g"}) {
		t.Errorf("EmptyGroups() = %v, want [g]", got)
	}
	if _, ok := l.Group("g"); !ok {
		t.Error("empty group was removed")
	}
	if _, err := l.GroupLayoutSize("nope"); !errors.Is(err, errors.ErrCodeUnknownID) {
		t.Errorf("GroupLayoutSize(unknown) error = %v", err)
	}
}

func TestClear(t *testing.T) {
	l := newLayout(t, DefaultConfig())
	addTile(t, l, TileSpec{ID: "a"})
	l.Clear()
	if l.Len() != 0 || len(l.Groups()) != 0 {
		t.Errorf("Clear() left %d tiles, %d groups", l.Len(), len(l.Groups()))
	}
	if got := stateJSON(t, l); got != `{"groups":{},"tiles":{}}` {
		t.Errorf("state after Clear = %s", got)
	}
}

func TestNotificationsCoalesce(t *testing.T) {
	l := newLayout(t, DefaultConfig())
	var got []*state.State
	unsubscribe := l.Subscribe(func(s *state.State) { got = append(got, s) })

	_ = l.AddGroup("g", "G")
	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}

	l.Batch(func() {
		addTile(t, l, TileSpec{ID: "a", Group: "g"})
		l.Batch(func() {
			addTile(t, l, TileSpec{ID: "b", Group: "g"})
			_, _ = l.MoveTile("a", 0, 2)
		})
		if len(got) != 1 {
			t.Errorf("notified inside batch: %d", len(got))
		}
	})
	if len(got) != 2 {
		t.Fatalf("notifications = %d, want 2", len(got))
	}
	if !got[1].TileExists("a") || !got[1].TileExists("b") {
		t.Errorf("batched notification missing tiles: %+v", got[1])
	}

	// Subscribers get their own copy.
	got[1].Tiles["a"] = state.Tile{}
	if l.State().Tiles["a"].Size == "" {
		t.Error("subscriber mutation leaked into layout")
	}

	l.Batch(func() {})
	if len(got) != 2 {
		t.Errorf("empty batch notified")
	}

	unsubscribe()
	l.RemoveTile("a")
	if len(got) != 2 {
		t.Errorf("notified after unsubscribe")
	}
}

func TestRestore(t *testing.T) {
	src := newLayout(t, DefaultConfig())
	_ = src.AddGroup("work", "Work")
	_ = src.AddGroup("fun", "")
	addTile(t, src, TileSpec{ID: "mail", Group: "work", At: grid.At(0, 0)})
	addTile(t, src, TileSpec{ID: "calendar", Group: "work", Size: state.Wide, At: grid.At(2, 0)})
	addTile(t, src, TileSpec{ID: "music", Group: "fun", Size: state.Small})

	data, err := src.State().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	s, err := state.FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	dst := newLayout(t, DefaultConfig())
	_ = dst.AddGroup("stale", "")
	if err := dst.Restore(s); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	checkLayout(t, dst)
	back, _ := dst.State().ToJSON()
	if !bytes.Equal(data, back) {
		t.Errorf("restored state differs:\n%s\n%s", data, back)
	}
}

func TestRestoreRejectsInvalidState(t *testing.T) {
	l := newLayout(t, DefaultConfig())
	_ = l.AddGroup("g", "G")
	before := stateJSON(t, l)

	s := state.New()
	s.Groups["x"] = state.Group{Index: 3}
	if err := l.Restore(s); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("Restore() error = %v, want INVALID_STATE", err)
	}
	if after := stateJSON(t, l); after != before {
		t.Errorf("failed restore changed state")
	}
}

func TestRandomOperationsKeepLayoutConsistent(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), func() Config {
		c := DefaultConfig()
		c.Direction = Vertical
		c.GroupWidth = 4
		c.InlineGroups = 2
		return c
	}()} {
		t.Run(string(cfg.Direction), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(7, 11))
			l := newLayout(t, cfg)
			for _, g := range []string{"a", "b", "c"} {
				_ = l.AddGroup(g, g)
			}
			groups := []string{"a", "b", "c"}

			for step := 0; step < 300; step++ {
				var ids []string
				for _, ti := range l.Tiles() {
					ids = append(ids, ti.ID)
				}
				before := stateJSON(t, l)
				size := state.Sizes[rng.IntN(len(state.Sizes))]
				var ok bool
				var err error

				switch op := rng.IntN(4); {
				case op == 0 || len(ids) == 0:
					spec := TileSpec{ID: fmt.Sprintf("t%d", step), Group: groups[rng.IntN(3)], Size: size}
					if rng.IntN(2) == 0 {
						spec.At = grid.At(rng.IntN(10)-1, rng.IntN(10)-1)
					}
					ok, err = l.AddTile(spec)
				case op == 1:
					ok, err = l.MoveTile(ids[rng.IntN(len(ids))], rng.IntN(10)-1, rng.IntN(10)-1)
				case op == 2:
					ok, err = l.ResizeTile(ids[rng.IntN(len(ids))], size)
				default:
					ok = l.RemoveTile(ids[rng.IntN(len(ids))])
				}
				if err != nil {
					t.Fatalf("step %d: %v", step, err)
				}
				checkLayout(t, l)
				if !ok && stateJSON(t, l) != before {
					t.Fatalf("step %d: failed mutation changed state", step)
				}
			}
		})
	}
}
