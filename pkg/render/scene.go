package render

import (
	"github.com/matzehuels/livetiles/pkg/grid"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/state"
)

// Scene is a measured layout: every group's box and every tile's cell and
// em rectangle. All renderers work from a Scene.
type Scene struct {
	Direction layout.Direction `json:"direction"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Groups    []SceneGroup     `json:"groups"`
}

// SceneGroup is one group of a [Scene].
type SceneGroup struct {
	layout.Box
	Label string      `json:"label,omitempty"`
	Tiles []SceneTile `json:"tiles"`
}

// Title is the label, or the id for unlabeled groups.
func (g SceneGroup) Title() string {
	if g.Label != "" {
		return g.Label
	}
	return g.ID
}

// SceneTile is one tile of a [Scene].
type SceneTile struct {
	ID    string      `json:"id"`
	Size  state.Size  `json:"size"`
	Cell  grid.Cell   `json:"cell"`
	Rect  layout.Rect `json:"rect"`
	Ghost bool        `json:"ghost,omitempty"`
}

// Build measures l. While a drag is in progress the dragged tile appears at
// its preview cell, marked as a ghost.
func Build(l *layout.Layout) Scene {
	cfg := l.Config()
	arr := l.Arrange()

	byGroup := map[string][]layout.TileInfo{}
	for _, t := range l.Tiles() {
		byGroup[t.Group] = append(byGroup[t.Group], t)
	}
	labels := map[string]string{}
	for _, g := range l.Groups() {
		labels[g.ID] = g.Label
	}

	s := Scene{Direction: cfg.Direction, Width: arr.Width, Height: arr.Height}
	for _, box := range arr.Groups {
		sg := SceneGroup{Box: box, Label: labels[box.ID], Tiles: []SceneTile{}}
		for _, t := range byGroup[box.ID] {
			sg.Tiles = append(sg.Tiles, SceneTile{
				ID:    t.ID,
				Size:  t.Size,
				Cell:  t.Cell,
				Rect:  cfg.TileRect(box, t.Cell),
				Ghost: t.Ghost,
			})
		}
		s.Groups = append(s.Groups, sg)
	}
	return s
}
