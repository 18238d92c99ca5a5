package state

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/livetiles/pkg/errors"
)

// ToJSON returns the persisted document form of s. Map keys are sorted, so
// equal states produce identical bytes.
func (s *State) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON parses a persisted document. Scalar fields are coerced to their
// declared types: numbers may arrive as JSON numbers, numeric strings,
// booleans or null, and strings may arrive as numbers, booleans or null.
// Non-integral numbers are rejected with INVALID_FORMAT.
func FromJSON(data []byte) (*State, error) {
	s := New()
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

type stateAlias State

// MarshalJSON writes empty objects for missing maps.
func (s State) MarshalJSON() ([]byte, error) {
	if s.Groups == nil {
		s.Groups = map[string]Group{}
	}
	if s.Tiles == nil {
		s.Tiles = map[string]Tile{}
	}
	return json.Marshal(stateAlias(s))
}

// UnmarshalJSON replaces the contents of s with the coerced document.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw struct {
		Groups map[string]map[string]any `json:"groups"`
		Tiles  map[string]map[string]any `json:"tiles"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode state")
	}

	out := New()
	for id, g := range raw.Groups {
		index, err := toInt(g["index"])
		if err != nil {
			return fieldError(err, "groups", id, "index")
		}
		label, err := toString(g["label"])
		if err != nil {
			return fieldError(err, "groups", id, "label")
		}
		out.Groups[id] = Group{Index: index, Label: label}
	}
	for id, t := range raw.Tiles {
		var tile Tile
		size, err := toString(t["size"])
		if err != nil {
			return fieldError(err, "tiles", id, "size")
		}
		tile.Size = Size(size)
		if tile.X, err = toInt(t["x"]); err != nil {
			return fieldError(err, "tiles", id, "x")
		}
		if tile.Y, err = toInt(t["y"]); err != nil {
			return fieldError(err, "tiles", id, "y")
		}
		if tile.Group, err = toString(t["group"]); err != nil {
			return fieldError(err, "tiles", id, "group")
		}
		out.Tiles[id] = tile
	}

	s.Groups, s.Tiles = out.Groups, out.Tiles
	return nil
}

func fieldError(err error, section, id, field string) error {
	return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s.%s.%s", section, id, field)
}

// toInt applies numeric coercion to a decoded JSON value.
func toInt(v any) (int, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return parseInt(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		return parseInt(s)
	}
	return 0, errors.New(errors.ErrCodeInvalidFormat, "cannot coerce %T to a number", v)
}

func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "%q is not a number", s)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "%q is not an integer", s)
	}
	return int(f), nil
}

// toString applies string coercion to a decoded JSON value.
func toString(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot coerce %T to a string", v)
}
