// Package state holds the declarative mirror of a live tiles layout: which
// groups exist, in what order, and where each tile sits.
//
// The mirror is a derived projection. The layout engine updates it after
// every successful mutation and never reads geometry back from it, except
// when a whole layout is restored from a persisted document.
package state

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/livetiles/pkg/errors"
)

// Group is the persisted record of a group.
type Group struct {
	Index int    `json:"index" bson:"index"`
	Label string `json:"label" bson:"label"`
}

// Tile is the persisted record of a tile. X and Y are in small-tile units
// relative to the owning group.
type Tile struct {
	Size  Size   `json:"size" bson:"size"`
	X     int    `json:"x" bson:"x"`
	Y     int    `json:"y" bson:"y"`
	Group string `json:"group" bson:"group"`
}

// State is the {groups, tiles} record kept in lock-step with a layout.
// The zero value is not usable; call [New].
type State struct {
	Groups map[string]Group `json:"groups" bson:"groups"`
	Tiles  map[string]Tile  `json:"tiles" bson:"tiles"`
}

// New returns an empty state.
func New() *State {
	return &State{
		Groups: make(map[string]Group),
		Tiles:  make(map[string]Tile),
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := New()
	c.Set(s)
	return c
}

// Set copies every entry of other into s, overwriting entries with the same
// id. Entries only present in s are kept.
func (s *State) Set(other *State) {
	s.init()
	maps.Copy(s.Groups, other.Groups)
	maps.Copy(s.Tiles, other.Tiles)
}

// Replace makes s an exact copy of other.
func (s *State) Replace(other *State) {
	s.Clear()
	s.Set(other)
}

// Clear removes every group and tile.
func (s *State) Clear() {
	s.init()
	clear(s.Groups)
	clear(s.Tiles)
}

// GroupExists reports whether the group is recorded.
func (s *State) GroupExists(id string) bool {
	_, ok := s.Groups[id]
	return ok
}

// TileExists reports whether the tile is recorded.
func (s *State) TileExists(id string) bool {
	_, ok := s.Tiles[id]
	return ok
}

// SortedGroupIDs returns group ids ordered by index, ties broken by id.
func (s *State) SortedGroupIDs() []string {
	ids := slices.Collect(maps.Keys(s.Groups))
	slices.SortFunc(ids, func(a, b string) int {
		if d := s.Groups[a].Index - s.Groups[b].Index; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return ids
}

// TilesIn returns the ids of the tiles in a group, in row-major order of
// their position.
func (s *State) TilesIn(group string) []string {
	var ids []string
	for id, t := range s.Tiles {
		if t.Group == group {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b string) int {
		ta, tb := s.Tiles[a], s.Tiles[b]
		if ta.Y != tb.Y {
			return ta.Y - tb.Y
		}
		if ta.X != tb.X {
			return ta.X - tb.X
		}
		return strings.Compare(a, b)
	})
	return ids
}

// Validate checks the persisted-document rules: known sizes, non-negative
// coordinates, tiles referencing existing groups, and group indices that
// are exactly 0..n-1.
func (s *State) Validate() error {
	seen := make([]bool, len(s.Groups))
	for id, g := range s.Groups {
		if err := errors.ValidateID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidState, err, "group id")
		}
		if g.Index < 0 || g.Index >= len(s.Groups) || seen[g.Index] {
			return errors.New(errors.ErrCodeInvalidState, "group %q has non-contiguous index %d", id, g.Index)
		}
		seen[g.Index] = true
	}
	for id, t := range s.Tiles {
		if err := errors.ValidateID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidState, err, "tile id")
		}
		if !t.Size.Valid() {
			return errors.New(errors.ErrCodeInvalidState, "tile %q has unknown size %q", id, t.Size)
		}
		if t.X < 0 || t.Y < 0 {
			return errors.New(errors.ErrCodeInvalidState, "tile %q has negative position (%d,%d)", id, t.X, t.Y)
		}
		if !s.GroupExists(t.Group) {
			return errors.New(errors.ErrCodeInvalidState, "tile %q references unknown group %q", id, t.Group)
		}
	}
	return nil
}

func (s *State) init() {
	if s.Groups == nil {
		s.Groups = make(map[string]Group)
	}
	if s.Tiles == nil {
		s.Tiles = make(map[string]Tile)
	}
}
