package grid

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/livetiles/pkg/errors"
)

func mustGrid(t *testing.T, b Bounds) *Grid {
	t.Helper()
	g, err := New(b)
	if err != nil {
		t.Fatalf("New(%+v): %v", b, err)
	}
	return g
}

func mustAdd(t *testing.T, g *Grid, id string, at *Point, w, h int) {
	t.Helper()
	ok, err := g.AddTile(id, at, w, h)
	if err != nil {
		t.Fatalf("AddTile(%q): %v", id, err)
	}
	if !ok {
		t.Fatalf("AddTile(%q) = false, want true", id)
	}
}

func checkInvariants(t *testing.T, g *Grid) {
	t.Helper()
	tiles := g.Tiles()
	for i, a := range tiles {
		if !a.Within(g.Bounds()) {
			t.Fatalf("tile %q %v out of bounds %+v", a.ID, a.Cell, g.Bounds())
		}
		for _, b := range tiles[i+1:] {
			if a.Intersects(b.Cell) {
				t.Fatalf("tiles %q %v and %q %v overlap", a.ID, a.Cell, b.ID, b.Cell)
			}
		}
	}
}

func cellOf(t *testing.T, g *Grid, id string) Cell {
	t.Helper()
	c, ok := g.Tile(id)
	if !ok {
		t.Fatalf("tile %q missing", id)
	}
	return c
}

func TestNew(t *testing.T) {
	if _, err := New(Bounds{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New(no bounds) error = %v, want INVALID_CONFIGURATION", err)
	}
	if _, err := New(Bounds{MaxWidth: 4, MaxHeight: 4}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New(both bounds) error = %v, want INVALID_CONFIGURATION", err)
	}
	g := mustGrid(t, Height(4))
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
}

// A tile dropped onto an occupied cell keeps its place; the tile it landed
// on is relocated next to it.
func TestAddTileDisplacesOccupant(t *testing.T) {
	g := mustGrid(t, Height(4))
	mustAdd(t, g, "a", At(0, 0), 2, 2)
	mustAdd(t, g, "b", At(0, 0), 1, 1)

	checkInvariants(t, g)
	if got := cellOf(t, g, "b"); got != (Cell{X: 0, Y: 0, Width: 1, Height: 1}) {
		t.Errorf("b = %v, want 1x1@(0,0)", got)
	}
	if got := cellOf(t, g, "a"); got != (Cell{X: 1, Y: 0, Width: 2, Height: 2}) {
		t.Errorf("a = %v, want 2x2@(1,0)", got)
	}
}

func TestAddTileUnresolvable(t *testing.T) {
	g := mustGrid(t, Height(4))
	mustAdd(t, g, "a", At(0, 0), 4, 4)

	// Taller than the bound: nothing can place it.
	ok, err := g.AddTile("b", At(0, 0), 1, 5)
	if err != nil {
		t.Fatalf("AddTile: %v", err)
	}
	if ok {
		t.Fatal("AddTile() = true, want false")
	}
	if got := g.IDs(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("IDs() = %v, want [a]", got)
	}
	if got := cellOf(t, g, "a"); got != (Cell{Width: 4, Height: 4}) {
		t.Errorf("a = %v, want untouched 4x4@(0,0)", got)
	}
}

func TestAddTileFullBoundStillResolves(t *testing.T) {
	g := mustGrid(t, Height(4))
	mustAdd(t, g, "a", At(0, 0), 4, 4)
	mustAdd(t, g, "b", At(0, 0), 1, 1)

	checkInvariants(t, g)
	if got := cellOf(t, g, "a"); got.X != 1 || got.Y != 0 {
		t.Errorf("a = %v, want moved to (1,0)", got)
	}
}

func TestAddTileBestPosition(t *testing.T) {
	t.Run("height bounded fills first row", func(t *testing.T) {
		g := mustGrid(t, Height(6))
		for _, id := range []string{"a", "b", "c"} {
			mustAdd(t, g, id, nil, 1, 1)
		}
		want := map[string]Cell{
			"a": {X: 0, Y: 0, Width: 1, Height: 1},
			"b": {X: 1, Y: 0, Width: 1, Height: 1},
			"c": {X: 2, Y: 0, Width: 1, Height: 1},
		}
		for id, c := range want {
			if got := cellOf(t, g, id); got != c {
				t.Errorf("%s = %v, want %v", id, got, c)
			}
		}
	})

	t.Run("width bounded wraps rows", func(t *testing.T) {
		g := mustGrid(t, Width(4))
		for _, id := range []string{"a", "b", "c"} {
			mustAdd(t, g, id, nil, 2, 2)
		}
		if got := cellOf(t, g, "c"); got.X != 0 || got.Y != 2 {
			t.Errorf("c = %v, want (0,2)", got)
		}
	})

	t.Run("fills holes first", func(t *testing.T) {
		g := mustGrid(t, Width(4))
		mustAdd(t, g, "a", At(2, 0), 2, 2)
		mustAdd(t, g, "b", nil, 1, 1)
		if got := cellOf(t, g, "b"); got.X != 0 || got.Y != 0 {
			t.Errorf("b = %v, want (0,0)", got)
		}
	})

	t.Run("oversized tile", func(t *testing.T) {
		g := mustGrid(t, Width(4))
		ok, err := g.AddTile("wide", nil, 5, 1)
		if err != nil || ok {
			t.Errorf("AddTile() = %v, %v; want false, nil", ok, err)
		}
	})
}

func TestAddTileErrors(t *testing.T) {
	g := mustGrid(t, Height(4))
	mustAdd(t, g, "a", nil, 1, 1)

	tests := []struct {
		name string
		id   string
		w, h int
		code errors.Code
	}{
		{"duplicate", "a", 1, 1, errors.ErrCodeDuplicateID},
		{"empty id", "", 1, 1, errors.ErrCodeInvalidInput},
		{"zero width", "b", 0, 1, errors.ErrCodeInvalidInput},
		{"negative height", "b", 1, -2, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddTile(tt.id, nil, tt.w, tt.h)
			if !errors.Is(err, tt.code) {
				t.Errorf("AddTile() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestMoveTile(t *testing.T) {
	g := mustGrid(t, Height(4))
	mustAdd(t, g, "a", At(0, 0), 2, 2)
	mustAdd(t, g, "b", At(2, 0), 2, 2)

	ok, err := g.MoveTile("a", 2, 0)
	if err != nil || !ok {
		t.Fatalf("MoveTile() = %v, %v", ok, err)
	}
	checkInvariants(t, g)
	if got := cellOf(t, g, "a"); got.X != 2 || got.Y != 0 {
		t.Errorf("a = %v, want (2,0)", got)
	}

	if _, err := g.MoveTile("missing", 0, 0); !errors.Is(err, errors.ErrCodeUnknownID) {
		t.Errorf("MoveTile(missing) error = %v, want UNKNOWN_ID", err)
	}
}

func TestMoveTileOutOfBoundsIsPulledBack(t *testing.T) {
	g := mustGrid(t, Height(4))
	mustAdd(t, g, "a", At(0, 0), 2, 2)

	ok, err := g.MoveTile("a", 0, 3)
	if err != nil || !ok {
		t.Fatalf("MoveTile() = %v, %v", ok, err)
	}
	checkInvariants(t, g)
	if got := cellOf(t, g, "a"); got.Y != 2 {
		t.Errorf("a = %v, want y=2", got)
	}
}

func TestResizeTile(t *testing.T) {
	g := mustGrid(t, Height(4))
	mustAdd(t, g, "a", At(0, 0), 1, 1)
	mustAdd(t, g, "b", At(1, 0), 1, 1)
	mustAdd(t, g, "c", At(0, 1), 1, 1)

	ok, err := g.ResizeTile("a", 2, 2)
	if err != nil || !ok {
		t.Fatalf("ResizeTile() = %v, %v", ok, err)
	}
	checkInvariants(t, g)
	if got := cellOf(t, g, "a"); got != (Cell{Width: 2, Height: 2}) {
		t.Errorf("a = %v, want 2x2@(0,0)", got)
	}

	before := g.Tiles()
	ok, err = g.ResizeTile("a", 2, 5)
	if err != nil {
		t.Fatalf("ResizeTile: %v", err)
	}
	if ok {
		t.Fatal("ResizeTile(2x5) in height-4 grid = true, want false")
	}
	if after := g.Tiles(); !slices.Equal(before, after) {
		t.Errorf("failed resize changed tiles:\nbefore %v\nafter  %v", before, after)
	}

	if _, err := g.ResizeTile("a", 0, 1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ResizeTile(0x1) error = %v, want INVALID_INPUT", err)
	}
}

func TestRemoveTileCompacts(t *testing.T) {
	t.Run("height bounded pulls aligned tiles up", func(t *testing.T) {
		g := mustGrid(t, Height(4))
		mustAdd(t, g, "a", At(0, 0), 2, 2)
		mustAdd(t, g, "b", At(2, 0), 2, 2)
		mustAdd(t, g, "c", At(0, 2), 2, 2)

		if !g.RemoveTile("a") {
			t.Fatal("RemoveTile(a) = false")
		}
		checkInvariants(t, g)
		if got := cellOf(t, g, "b"); got.X != 2 || got.Y != 0 {
			t.Errorf("b = %v, want unaffected at (2,0)", got)
		}
		if got := cellOf(t, g, "c"); got.X != 0 || got.Y != 0 {
			t.Errorf("c = %v, want shifted to (0,0)", got)
		}
	})

	t.Run("unaligned tiles stay", func(t *testing.T) {
		g := mustGrid(t, Height(4))
		mustAdd(t, g, "a", At(0, 0), 1, 1)
		mustAdd(t, g, "b", At(0, 1), 2, 1)
		g.RemoveTile("a")
		if got := cellOf(t, g, "b"); got.Y != 1 {
			t.Errorf("b = %v, want y=1", got)
		}
	})

	t.Run("stacked tiles shift in order", func(t *testing.T) {
		g := mustGrid(t, Height(4))
		mustAdd(t, g, "a", At(0, 1), 1, 1)
		mustAdd(t, g, "low", At(0, 3), 1, 1)
		mustAdd(t, g, "mid", At(0, 2), 1, 1)
		g.RemoveTile("a")
		checkInvariants(t, g)
		if got := cellOf(t, g, "mid"); got.Y != 1 {
			t.Errorf("mid = %v, want y=1", got)
		}
		if got := cellOf(t, g, "low"); got.Y != 2 {
			t.Errorf("low = %v, want y=2", got)
		}
	})

	t.Run("width bounded pulls aligned tiles left", func(t *testing.T) {
		g := mustGrid(t, Width(6))
		mustAdd(t, g, "a", At(0, 0), 2, 2)
		mustAdd(t, g, "b", At(2, 0), 2, 2)
		mustAdd(t, g, "c", At(0, 2), 2, 2)
		g.RemoveTile("a")
		checkInvariants(t, g)
		if got := cellOf(t, g, "b"); got.X != 0 || got.Y != 0 {
			t.Errorf("b = %v, want (0,0)", got)
		}
		if got := cellOf(t, g, "c"); got.X != 0 || got.Y != 2 {
			t.Errorf("c = %v, want unaffected at (0,2)", got)
		}
	})
}

func TestRemoveTileIdempotent(t *testing.T) {
	g := mustGrid(t, Height(4))
	mustAdd(t, g, "a", At(0, 0), 2, 2)
	mustAdd(t, g, "b", At(2, 0), 1, 1)

	if !g.RemoveTile("a") {
		t.Fatal("first RemoveTile = false, want true")
	}
	first := g.LayoutSize()
	if g.RemoveTile("a") {
		t.Error("second RemoveTile = true, want false")
	}
	if second := g.LayoutSize(); second != first {
		t.Errorf("LayoutSize changed after no-op removal: %v -> %v", first, second)
	}
}

func TestLayoutSize(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		tiles  []Cell
		want   Size
	}{
		{"empty height bound", Height(6), nil, Size{Width: 0, Height: 6}},
		{"empty width bound", Width(4), nil, Size{Width: 4, Height: 0}},
		{"row flow", Height(4), []Cell{{X: 0, Y: 0, Width: 2, Height: 2}, {X: 4, Y: 2, Width: 4, Height: 2}}, Size{Width: 8, Height: 4}},
		{"column flow", Width(4), []Cell{{X: 0, Y: 5, Width: 2, Height: 2}}, Size{Width: 4, Height: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGrid(t, tt.bounds)
			for i, c := range tt.tiles {
				mustAdd(t, g, fmt.Sprint(i), At(c.X, c.Y), c.Width, c.Height)
			}
			if got := g.LayoutSize(); got != tt.want {
				t.Errorf("LayoutSize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := mustGrid(t, Height(4))
	mustAdd(t, g, "a", At(0, 0), 2, 2)
	snap := g.Snapshot()

	mustAdd(t, g, "b", At(0, 0), 2, 2)
	g.RemoveTile("a")
	g.Restore(snap)

	if got := g.IDs(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("IDs() after restore = %v, want [a]", got)
	}

	// Restoring twice must not alias the snapshot.
	mustAdd(t, g, "c", nil, 1, 1)
	g.Restore(snap)
	if g.Has("c") {
		t.Error("snapshot was mutated through the grid")
	}
}

func TestClear(t *testing.T) {
	g := mustGrid(t, Width(4))
	mustAdd(t, g, "a", nil, 1, 1)
	g.Clear()
	if g.Len() != 0 || g.Has("a") {
		t.Errorf("Clear() left %v", g.IDs())
	}
}

var sizes = [][2]int{{1, 1}, {2, 2}, {4, 2}, {4, 4}}

// Random operation sequences must never break the invariants, and every
// failed mutation must leave the grid exactly as it was.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	for _, b := range []Bounds{Height(4), Height(6), Width(4), Width(6)} {
		t.Run(fmt.Sprintf("%+v", b), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(42, uint64(b.MaxWidth*10+b.MaxHeight)))
			g := mustGrid(t, b)
			next := 0

			for step := 0; step < 400; step++ {
				ids := g.IDs()
				before := g.Tiles()
				var ok bool
				var err error

				switch op := rng.IntN(5); {
				case op <= 1 || len(ids) == 0:
					s := sizes[rng.IntN(len(sizes))]
					id := fmt.Sprintf("t%d", next)
					next++
					if rng.IntN(3) == 0 {
						ok, err = g.AddTile(id, nil, s[0], s[1])
						if !ok && b.Fits(s[0], s[1]) {
							t.Fatalf("step %d: best-position AddTile(%dx%d) failed", step, s[0], s[1])
						}
					} else {
						ok, err = g.AddTile(id, At(rng.IntN(12)-2, rng.IntN(12)-2), s[0], s[1])
					}
				case op == 2:
					id := ids[rng.IntN(len(ids))]
					ok, err = g.MoveTile(id, rng.IntN(12)-2, rng.IntN(12)-2)
				case op == 3:
					s := sizes[rng.IntN(len(sizes))]
					ok, err = g.ResizeTile(ids[rng.IntN(len(ids))], s[0], s[1])
				default:
					ok = g.RemoveTile(ids[rng.IntN(len(ids))])
				}

				if err != nil {
					t.Fatalf("step %d: %v", step, err)
				}
				checkInvariants(t, g)
				if !ok && !slices.Equal(before, g.Tiles()) {
					t.Fatalf("step %d: failed mutation changed the grid", step)
				}
			}
		})
	}
}
