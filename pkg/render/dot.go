package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/livetiles/pkg/state"
)

// DefaultPointsPerEm maps one em to 16 points in DOT and SVG output.
const DefaultPointsPerEm = 16.0

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// PointsPerEm scales em to Graphviz points. Zero selects
	// [DefaultPointsPerEm].
	PointsPerEm float64
	// Labels prints tile sizes under tile ids.
	Labels bool
}

var tileColors = map[state.Size]string{
	state.Small:  "#60a5fa",
	state.Medium: "#34d399",
	state.Wide:   "#fbbf24",
	state.Large:  "#f87171",
}

// ToDOT converts a scene to a neato graph in which every group and tile is
// a fixed-size box pinned at its measured position. Group frames come
// first so tiles draw on top of them.
func ToDOT(s Scene, opts DOTOptions) string {
	ppe := opts.PointsPerEm
	if !(ppe > 0) {
		ppe = DefaultPointsPerEm
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fixedsize=true, fontname=\"Helvetica\", fontsize=10, penwidth=1];\n")
	buf.WriteString("\n")

	// pin writes a node at an em rectangle; Graphviz y grows upwards.
	pin := func(id, label string, x, y, w, h float64, attrs string) {
		cx := (x + w/2) * ppe
		cy := (s.Height - y - h/2) * ppe
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%.2f,%.2f!\", width=%.4f, height=%.4f%s];\n",
			id, label, cx, cy, w*ppe/72, h*ppe/72, attrs)
	}

	for _, g := range s.Groups {
		pin("group:"+g.ID, g.Title(), g.X, g.Y, g.Width, g.Height,
			`, labelloc=t, fillcolor="#f3f4f6", color="#d1d5db", fontsize=12`)
	}
	if len(s.Groups) > 0 {
		buf.WriteString("\n")
	}
	for _, g := range s.Groups {
		for _, t := range g.Tiles {
			label := t.ID
			if opts.Labels {
				label += "\n" + string(t.Size)
			}
			attrs := fmt.Sprintf(", fillcolor=%q, color=%q", tileColors[t.Size], "#374151")
			if t.Ghost {
				attrs = `, style="rounded,dashed", color="#6b7280", fontcolor="#6b7280"`
			}
			pin("tile:"+t.ID, label, t.Rect.X, t.Rect.Y, t.Rect.Width, t.Rect.Height, attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out a DOT graph with neato and returns SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// unitless one so the SVG scales to its container.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
