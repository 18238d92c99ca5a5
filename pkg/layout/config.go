package layout

import (
	"math"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/grid"
)

// Direction selects how groups flow inside the container.
type Direction string

const (
	// Horizontal lays groups left to right. Each group is bounded in height
	// and grows to the right.
	Horizontal Direction = "horizontal"
	// Vertical stacks groups top to bottom in one or more parallel columns.
	// Each group is bounded in width and grows downward.
	Vertical Direction = "vertical"
)

// Default configuration values.
const (
	DefaultHeight       = 6
	DefaultGroupWidth   = 6
	DefaultInlineGroups = 1
	DefaultSmallSize    = 3.5
	DefaultTileGap      = 0.6
	DefaultGroupGap     = 3
	DefaultLabelHeight  = 2
)

// Config describes the container. Integer fields are in small-tile units,
// float fields in em.
type Config struct {
	Direction    Direction `toml:"direction" json:"direction"`
	Height       int       `toml:"height" json:"height"`               // row-flow bound
	GroupWidth   int       `toml:"group_width" json:"group_width"`     // column-flow bound
	InlineGroups int       `toml:"inline_groups" json:"inline_groups"` // column-flow parallel columns
	SmallSize    float64   `toml:"small_size" json:"small_size"`
	TileGap      float64   `toml:"tile_gap" json:"tile_gap"`
	GroupGap     float64   `toml:"group_gap" json:"group_gap"`
	LabelHeight  float64   `toml:"label_height" json:"label_height"`
}

// DefaultConfig returns a row-flow configuration six small tiles tall.
func DefaultConfig() Config {
	return Config{
		Direction:    Horizontal,
		Height:       DefaultHeight,
		GroupWidth:   DefaultGroupWidth,
		InlineGroups: DefaultInlineGroups,
		SmallSize:    DefaultSmallSize,
		TileGap:      DefaultTileGap,
		GroupGap:     DefaultGroupGap,
		LabelHeight:  DefaultLabelHeight,
	}
}

// SetDefaults fills zero-valued direction, bounds and tile size. Gaps and
// label height are left alone since zero is a valid value for them.
func (c *Config) SetDefaults() {
	if c.Direction == "" {
		c.Direction = Horizontal
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.GroupWidth == 0 {
		c.GroupWidth = DefaultGroupWidth
	}
	if c.InlineGroups == 0 {
		c.InlineGroups = DefaultInlineGroups
	}
	if c.SmallSize == 0 {
		c.SmallSize = DefaultSmallSize
	}
}

// Validate returns an INVALID_CONFIGURATION error describing the first
// invalid field.
func (c Config) Validate() error {
	switch c.Direction {
	case Horizontal:
		if c.Height < grid.MinBound {
			return errors.New(errors.ErrCodeInvalidConfig, "height %d is below minimum %d", c.Height, grid.MinBound)
		}
	case Vertical:
		if c.GroupWidth < grid.MinBound {
			return errors.New(errors.ErrCodeInvalidConfig, "group width %d is below minimum %d", c.GroupWidth, grid.MinBound)
		}
		if c.InlineGroups < 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "inline groups must be at least 1, got %d", c.InlineGroups)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown direction %q (want horizontal or vertical)", c.Direction)
	}

	if !(c.SmallSize > 0) || math.IsInf(c.SmallSize, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "small tile size must be positive, got %v", c.SmallSize)
	}
	for name, v := range map[string]float64{
		"tile gap":     c.TileGap,
		"group gap":    c.GroupGap,
		"label height": c.LabelHeight,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be a non-negative number, got %v", name, v)
		}
	}
	return nil
}

// Bounds returns the bound every group grid gets.
func (c Config) Bounds() grid.Bounds {
	if c.Direction == Vertical {
		return grid.Width(c.GroupWidth)
	}
	return grid.Height(c.Height)
}

// Unit is the pitch of one small tile including its trailing gap, in em.
func (c Config) Unit() float64 { return c.SmallSize + c.TileGap }

// Span is the em length of n small tiles laid next to each other.
func (c Config) Span(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*c.SmallSize + float64(n-1)*c.TileGap
}

// Header is the em height of a group label plus the gap below it.
func (c Config) Header() float64 { return c.LabelHeight + c.TileGap }
