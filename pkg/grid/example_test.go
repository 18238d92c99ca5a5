package grid_test

import (
	"fmt"

	"github.com/matzehuels/livetiles/pkg/grid"
)

func ExampleGrid_AddTile() {
	// A row-flow group: four small tiles tall, unbounded to the right.
	g, _ := grid.New(grid.Height(4))
	_, _ = g.AddTile("mail", grid.At(0, 0), 2, 2)

	// Dropping a tile onto "mail" pushes "mail" aside.
	ok, _ := g.AddTile("clock", grid.At(0, 0), 1, 1)

	mail, _ := g.Tile("mail")
	fmt.Println("placed:", ok)
	fmt.Println("mail:", mail)
	// Output:
	// placed: true
	// mail: 2x2@(1,0)
}

func ExampleGrid_AddTile_bestPosition() {
	g, _ := grid.New(grid.Height(6))
	for _, id := range []string{"a", "b", "c"} {
		_, _ = g.AddTile(id, nil, 1, 1)
	}
	for _, t := range g.Tiles() {
		fmt.Println(t.ID, t.Cell)
	}
	// Output:
	// a 1x1@(0,0)
	// b 1x1@(1,0)
	// c 1x1@(2,0)
}

func ExampleGrid_RemoveTile() {
	g, _ := grid.New(grid.Height(4))
	_, _ = g.AddTile("a", grid.At(0, 0), 2, 2)
	_, _ = g.AddTile("b", grid.At(2, 0), 2, 2)
	_, _ = g.AddTile("c", grid.At(0, 2), 2, 2)

	g.RemoveTile("a")

	b, _ := g.Tile("b")
	c, _ := g.Tile("c")
	fmt.Println("b:", b)
	fmt.Println("c:", c)
	fmt.Println("size:", g.LayoutSize())
	// Output:
	// b: 2x2@(2,0)
	// c: 2x2@(0,0)
	// size: {4 4}
}
