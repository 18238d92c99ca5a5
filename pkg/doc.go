// Package pkg holds the livetiles libraries.
//
// # Overview
//
// A live tile layout is an ordered list of groups. Each group owns a grid of
// square tiles in four sizes (small 1x1, medium 2x2, wide 4x2, large 4x4)
// that never overlap and never leave the grid's bounded axis. Moving or
// resizing a tile pushes its neighbours out of the way; a placement that
// cannot be resolved is rolled back and reported as false.
//
// The packages build on each other leaf first:
//
//	[grid]      one container: cells, conflict resolution, best position
//	   ↓
//	[layout]    groups, direction, em measurement, grid-snap, drag previews
//	   ↓
//	[state]     the {groups, tiles} mirror and its JSON form
//	   ↓
//	[store]     persisted documents (file, Redis, MongoDB)
//	[render]    terminal preview, DOT, SVG, PNG, PDF and JSON export
//
// [errors], [observability] and [buildinfo] support all of them.
//
// # Quick Start
//
//	l, _ := layout.New(layout.DefaultConfig())
//	_ = l.AddGroup("home", "Home")
//	l.AddTile(layout.TileSpec{ID: "mail", Group: "home", Size: state.Wide})
//	l.AddTile(layout.TileSpec{ID: "clock", Group: "home"})
//
//	res, ok := l.SnapToGrid(layout.Offset{X: 4.1, Y: 2.6}, state.Medium)
//	if ok && !res.New {
//	    l.MoveTile("clock", res.X, res.Y)
//	}
//
//	data, _ := l.State().ToJSON()
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/livetiles/pkg/grid
// [layout]: https://pkg.go.dev/github.com/matzehuels/livetiles/pkg/layout
// [state]: https://pkg.go.dev/github.com/matzehuels/livetiles/pkg/state
// [store]: https://pkg.go.dev/github.com/matzehuels/livetiles/pkg/store
// [render]: https://pkg.go.dev/github.com/matzehuels/livetiles/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/livetiles/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/livetiles/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/livetiles/pkg/buildinfo
package pkg
