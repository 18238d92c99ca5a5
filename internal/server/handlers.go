package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/livetiles/pkg/buildinfo"
	lterrors "github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/grid"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/render"
	"github.com/matzehuels/livetiles/pkg/state"
)

const maxBody = 1 << 20

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return lterrors.Wrap(lterrors.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "build": buildinfo.Get()})
}

// =============================================================================
// State
// =============================================================================

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, err := s.layout.State().ToJSON()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeError(w, lterrors.Wrap(lterrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	st, err := state.FromJSON(data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	err = s.withLayout(r.Context(), func(l *layout.Layout) error { return l.Restore(st) })
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.handleGetState(w, r)
}

func (s *Server) handleArrange(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	scene := render.Build(s.layout)
	cfg := s.layout.Config()
	s.mu.Unlock()

	data, err := render.RenderJSON(scene, render.WithJSONConfig(cfg))
	if err != nil {
		s.writeError(w, lterrors.Wrap(lterrors.ErrCodeInternal, err, "encode arrangement"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleRender serves ?format=svg (default) or dot.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	dot := render.ToDOT(render.Build(s.layout), render.DOTOptions{})
	s.mu.Unlock()

	switch format := r.URL.Query().Get("format"); format {
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = io.WriteString(w, dot)
	case "", "svg":
		svg, err := render.RenderSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, lterrors.Wrap(lterrors.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		s.writeError(w, lterrors.New(lterrors.ErrCodeUnsupported, "unsupported render format %q", format))
	}
}

type snapRequest struct {
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
	Size state.Size `json:"size"`
	// PixelsPerEm, when set, interprets X and Y as pixels.
	PixelsPerEm float64 `json:"pixels_per_em,omitempty"`
}

type snapResponse struct {
	OK bool `json:"ok"`
	layout.SnapResult
}

func (s *Server) handleSnap(w http.ResponseWriter, r *http.Request) {
	var req snapRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	size := req.Size
	if size == "" {
		size = state.Medium
	}
	if !size.Valid() {
		s.writeError(w, lterrors.New(lterrors.ErrCodeInvalidInput, "unknown tile size %q", size))
		return
	}
	off := layout.Offset{X: req.X, Y: req.Y}
	if req.PixelsPerEm > 0 {
		off = layout.OffsetFromPixels(req.X, req.Y, layout.FixedScale(req.PixelsPerEm))
	}

	s.mu.Lock()
	res, ok := s.layout.SnapToGrid(off, size)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snapResponse{OK: ok, SnapResult: res})
}

// =============================================================================
// Groups
// =============================================================================

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	groups := s.layout.Groups()
	s.mu.Unlock()
	if groups == nil {
		groups = []layout.GroupInfo{}
	}
	writeJSON(w, http.StatusOK, groups)
}

type groupRequest struct {
	ID    string  `json:"id"`
	Label *string `json:"label"`
	Index *int    `json:"index"`
}

func (s *Server) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	var info layout.GroupInfo
	err := s.withLayout(r.Context(), func(l *layout.Layout) error {
		label := ""
		if req.Label != nil {
			label = *req.Label
		}
		if err := l.AddGroup(req.ID, label); err != nil {
			return err
		}
		if req.Index != nil {
			if err := l.MoveGroup(req.ID, *req.Index); err != nil {
				return err
			}
		}
		info, _ = l.Group(req.ID)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handlePatchGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req groupRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	var info layout.GroupInfo
	err := s.withLayout(r.Context(), func(l *layout.Layout) error {
		if _, ok := l.Group(id); !ok {
			return lterrors.New(lterrors.ErrCodeUnknownID, "group %q does not exist", id)
		}
		if req.Label != nil {
			if err := l.RenameGroup(id, *req.Label); err != nil {
				return err
			}
		}
		if req.Index != nil {
			if err := l.MoveGroup(id, *req.Index); err != nil {
				return err
			}
		}
		info, _ = l.Group(id)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.withLayout(r.Context(), func(l *layout.Layout) error { return l.RemoveGroup(id) })
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Tiles
// =============================================================================

func (s *Server) handleListTiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tiles := s.layout.Tiles()
	s.mu.Unlock()
	if tiles == nil {
		tiles = []layout.TileInfo{}
	}
	writeJSON(w, http.StatusOK, tiles)
}

type tileRequest struct {
	ID    string     `json:"id"`
	Group string     `json:"group"`
	Size  state.Size `json:"size"`
	X     *int       `json:"x"`
	Y     *int       `json:"y"`
}

type tileResponse struct {
	OK   bool            `json:"ok"`
	Tile layout.TileInfo `json:"tile"`
}

func (s *Server) handleAddTile(w http.ResponseWriter, r *http.Request) {
	var req tileRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	spec := layout.TileSpec{ID: req.ID, Group: req.Group, Size: req.Size}
	if req.X != nil || req.Y != nil {
		spec.At = grid.At(deref(req.X), deref(req.Y))
	}

	var (
		placed bool
		info   layout.TileInfo
	)
	err := s.withLayout(r.Context(), func(l *layout.Layout) error {
		ok, err := l.AddTile(spec)
		if err != nil || !ok {
			return err
		}
		placed = true
		info, _ = l.Tile(req.ID)
		return nil
	})
	switch {
	case err != nil:
		s.writeError(w, err)
	case !placed:
		writeUnresolvable(w, req.ID)
	default:
		writeJSON(w, http.StatusCreated, tileResponse{OK: true, Tile: info})
	}
}

type tilePatch struct {
	X    *int       `json:"x"`
	Y    *int       `json:"y"`
	Size state.Size `json:"size"`
}

// handlePatchTile resizes and/or moves a tile. When both are requested and
// the move fails, the resize is undone too.
func (s *Server) handlePatchTile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req tilePatch
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var (
		placed = true
		info   layout.TileInfo
	)
	err := s.withLayout(r.Context(), func(l *layout.Layout) error {
		cur, ok := l.Tile(id)
		if !ok {
			return lterrors.New(lterrors.ErrCodeUnknownID, "tile %q does not exist", id)
		}
		before := l.State()
		var err error
		l.Batch(func() {
			if req.Size != "" && req.Size != cur.Size {
				if placed, err = l.ResizeTile(id, req.Size); err != nil || !placed {
					return
				}
			}
			if req.X != nil || req.Y != nil {
				x, y := cur.X, cur.Y
				if req.X != nil {
					x = *req.X
				}
				if req.Y != nil {
					y = *req.Y
				}
				if placed, err = l.MoveTile(id, x, y); err != nil || !placed {
					if rerr := l.Restore(before); rerr != nil {
						err = rerr
					}
				}
			}
		})
		if err != nil || !placed {
			return err
		}
		info, _ = l.Tile(id)
		return nil
	})
	switch {
	case err != nil:
		s.writeError(w, err)
	case !placed:
		writeUnresolvable(w, id)
	default:
		writeJSON(w, http.StatusOK, tileResponse{OK: true, Tile: info})
	}
}

func (s *Server) handleDeleteTile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.withLayout(r.Context(), func(l *layout.Layout) error {
		if !l.RemoveTile(id) {
			return lterrors.New(lterrors.ErrCodeUnknownID, "tile %q does not exist", id)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
