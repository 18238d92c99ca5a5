package state

import (
	"strings"

	"github.com/matzehuels/livetiles/pkg/errors"
)

// Size is the tile size enumeration used by the persisted state.
type Size string

const (
	Small  Size = "small"  // 1x1
	Medium Size = "medium" // 2x2
	Wide   Size = "wide"   // 4x2
	Large  Size = "large"  // 4x4
)

// Sizes lists every valid size, smallest first.
var Sizes = []Size{Small, Medium, Wide, Large}

// Width returns the width in small-tile units, or 0 for an unknown size.
func (s Size) Width() int {
	switch s {
	case Small:
		return 1
	case Medium:
		return 2
	case Wide, Large:
		return 4
	}
	return 0
}

// Height returns the height in small-tile units, or 0 for an unknown size.
func (s Size) Height() int {
	switch s {
	case Small:
		return 1
	case Medium, Wide:
		return 2
	case Large:
		return 4
	}
	return 0
}

// Valid reports whether s is one of [Sizes].
func (s Size) Valid() bool { return s.Width() > 0 }

// ParseSize parses a size name, case-insensitively.
func ParseSize(name string) (Size, error) {
	s := Size(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown tile size %q (want small, medium, wide or large)", name)
	}
	return s, nil
}
