// Package render draws an arranged layout.
//
// [Build] measures a [layout.Layout] into a [Scene]: group boxes and tile
// rectangles in em, plus grid cells. Each output format works from a
// scene:
//
//   - [RenderTerminal]: box-drawing preview styled with lipgloss
//   - [ToDOT] and [RenderSVG]: Graphviz neato graph with every box pinned
//     at its measured position, rendered through go-graphviz
//   - [RenderJSON]: the scene itself, for web front ends
//
// [ToPDF] and [ToPNG] convert SVG output with the external rsvg-convert
// tool.
//
//	scene := render.Build(l)
//	fmt.Println(render.RenderTerminal(scene))
//
//	svg, err := render.RenderSVG(ctx, render.ToDOT(scene, render.DOTOptions{}))
package render
