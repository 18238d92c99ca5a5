package layout

import (
	"math"

	"github.com/matzehuels/livetiles/pkg/observability"
	"github.com/matzehuels/livetiles/pkg/state"
)

// Offset is a pointer position in em, relative to the container's top-left
// corner.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UnitScale converts pointer pixels to em. The caller measures it per
// frame; the engine never reads font or zoom state itself.
type UnitScale interface {
	PixelsPerEm() float64
}

// FixedScale is a constant [UnitScale].
type FixedScale float64

// PixelsPerEm implements [UnitScale].
func (s FixedScale) PixelsPerEm() float64 { return float64(s) }

// OffsetFromPixels converts a pixel offset to em. A non-positive scale
// yields the zero offset.
func OffsetFromPixels(x, y float64, scale UnitScale) Offset {
	ppe := scale.PixelsPerEm()
	if !(ppe > 0) {
		return Offset{}
	}
	return Offset{X: x / ppe, Y: y / ppe}
}

// SnapResult is a grid-snap candidate. When New is true, Group is empty
// and the cell belongs to a group that does not exist yet and would be
// appended after the last one.
type SnapResult struct {
	Group string `json:"group,omitempty"`
	New   bool   `json:"new"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// SnapToGrid maps an em offset to the cell a tile of the given size would
// take. The boolean is false when the offset maps to no placeable cell:
// negative offsets, gaps between groups, columns past the last one, or a
// cell that would grow a group past its extent limit.
//
// The extent limit keeps continuous dragging from growing a group without
// end: a candidate may reach at most 2, 4 or 6 small tiles past the
// group's current extent on its unbounded axis, for a tile whose size on
// that axis is 1, 2 or more. A new group has extent zero.
func (l *Layout) SnapToGrid(off Offset, size state.Size) (SnapResult, bool) {
	if !size.Valid() {
		size = state.Medium
	}
	var (
		res SnapResult
		ok  bool
	)
	if l.cfg.Direction == Vertical {
		res, ok = l.snapColumn(off, size)
	} else {
		res, ok = l.snapRow(off, size)
	}

	outcome := "none"
	switch {
	case ok && res.New:
		outcome = "new"
	case ok:
		outcome = "group"
	}
	observability.Layout().OnSnap(outcome)
	return res, ok
}

func (l *Layout) tolerance() float64 { return l.cfg.Unit() / 2 }

// cellIndex converts an em distance into the nearest cell index.
func (l *Layout) cellIndex(d float64) int {
	return int(math.Round(d / l.cfg.Unit()))
}

// extentMargin is how far a tile dropped past the last group may reach into
// the new group.
func extentMargin(dim int) int {
	switch dim {
	case 1:
		return 2
	case 2:
		return 4
	}
	return 6
}

func (l *Layout) snapRow(off Offset, size state.Size) (SnapResult, bool) {
	tol := l.tolerance()
	if off.X < -tol || off.Y < -tol {
		return SnapResult{}, false
	}
	w, h := size.Width(), size.Height()
	y := clamp(l.cellIndex(off.Y-l.cfg.Header()), 0, l.cfg.Height-h)

	arr := l.Arrange()
	for _, box := range arr.Groups {
		if off.X < box.X-tol || off.X >= box.Right()+tol {
			continue
		}
		// The hit test keeps x within cols+1, inside any extent margin.
		x := max(0, l.cellIndex(off.X-box.X))
		return SnapResult{Group: box.ID, X: x, Y: y}, true
	}

	start, end := 0.0, 0.0
	if n := len(arr.Groups); n > 0 {
		end = arr.Groups[n-1].Right()
		start = end + l.cfg.GroupGap
		if off.X < end+tol {
			return SnapResult{}, false
		}
	}
	x := max(0, l.cellIndex(off.X-start))
	if x+w > extentMargin(w) {
		return SnapResult{}, false
	}
	return SnapResult{New: true, X: x, Y: y}, true
}

func (l *Layout) snapColumn(off Offset, size state.Size) (SnapResult, bool) {
	tol := l.tolerance()
	if off.X < -tol || off.Y < -tol {
		return SnapResult{}, false
	}
	w, h := size.Width(), size.Height()

	pitch := l.cfg.Span(l.cfg.GroupWidth) + l.cfg.GroupGap
	col := int(math.Floor((off.X + tol) / pitch))
	if col >= l.cfg.InlineGroups {
		return SnapResult{}, false
	}
	x := clamp(l.cellIndex(off.X-l.columnX(col)), 0, l.cfg.GroupWidth-w)

	var (
		end  float64
		seen bool
	)
	for _, box := range l.Arrange().Groups {
		if box.Column != col {
			continue
		}
		seen = true
		end = box.Bottom()
		if off.Y < box.Y-tol || off.Y >= box.Bottom()+tol {
			continue
		}
		y := max(0, l.cellIndex(off.Y-box.Y-l.cfg.Header()))
		return SnapResult{Group: box.ID, X: x, Y: y}, true
	}

	start := 0.0
	if seen {
		if off.Y < end+tol {
			return SnapResult{}, false
		}
		start = end + l.cfg.GroupGap
	}
	y := max(0, l.cellIndex(off.Y-start-l.cfg.Header()))
	if y+h > extentMargin(h) {
		return SnapResult{}, false
	}
	return SnapResult{New: true, X: x, Y: y}, true
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
