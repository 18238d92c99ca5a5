package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/grid"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/state"
)

// tileCommand manages tiles.
func (c *CLI) tileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tile",
		Short: "Add, move, resize and remove tiles",
	}

	cmd.AddCommand(c.tileAddCommand())
	cmd.AddCommand(c.tileMoveCommand())
	cmd.AddCommand(c.tileResizeCommand())
	cmd.AddCommand(c.tileRemoveCommand())

	return cmd
}

func (c *CLI) tileAddCommand() *cobra.Command {
	var group, size, at string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Place a new tile",
		Long: `Place a new tile. Without --at the tile takes the first free cell.

Without --group the tile joins the last group when that group has no
label; otherwise a new anonymous group is appended for it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := layout.TileSpec{ID: args[0], Group: group}
			var err error
			if spec.Size, err = state.ParseSize(size); err != nil {
				return err
			}
			if at != "" {
				if spec.At, err = parsePoint(at); err != nil {
					return err
				}
			}

			var placed bool
			l, err := c.editLayout(func(l *layout.Layout) error {
				placed, err = l.AddTile(spec)
				return err
			})
			if err != nil {
				return err
			}
			if !placed {
				return unresolvable(spec.ID)
			}
			printPlaced(l, spec.ID, "Added")
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "target group")
	cmd.Flags().StringVarP(&size, "size", "s", string(state.Medium), "tile size: small, medium, wide or large")
	cmd.Flags().StringVar(&at, "at", "", "requested cell as x,y")
	return cmd
}

func (c *CLI) tileMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <x> <y>",
		Short: "Move a tile within its group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[1] + "," + args[2])
			if err != nil {
				return err
			}
			var placed bool
			l, err := c.editLayout(func(l *layout.Layout) error {
				placed, err = l.MoveTile(args[0], p.X, p.Y)
				return err
			})
			if err != nil {
				return err
			}
			if !placed {
				return unresolvable(args[0])
			}
			printPlaced(l, args[0], "Moved")
			return nil
		},
	}
}

func (c *CLI) tileResizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "resize <id> <size>",
		Short:     "Change a tile's size",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"small", "medium", "wide", "large"},
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := state.ParseSize(args[1])
			if err != nil {
				return err
			}
			var placed bool
			l, err := c.editLayout(func(l *layout.Layout) error {
				placed, err = l.ResizeTile(args[0], size)
				return err
			})
			if err != nil {
				return err
			}
			if !placed {
				return unresolvable(args[0])
			}
			printPlaced(l, args[0], "Resized")
			return nil
		},
	}
}

func (c *CLI) tileRemoveCommand() *cobra.Command {
	var keepEmpty bool

	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a tile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			var (
				removed bool
				emptied string
			)
			_, err := c.editLayout(func(l *layout.Layout) error {
				group, _ := l.TileGroup(id)
				l.Batch(func() {
					removed = l.RemoveTile(id)
					if g, ok := l.Group(group); removed && ok && g.Tiles == 0 && !keepEmpty {
						if l.RemoveGroup(group) == nil {
							emptied = group
						}
					}
				})
				return nil
			})
			if err != nil {
				return err
			}
			if !removed {
				printWarning("Tile %s does not exist", id)
				return nil
			}
			printSuccess("Removed tile %s", StyleHighlight.Render(id))
			if emptied != "" {
				printDetail("group %s was empty and was removed", emptied)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepEmpty, "keep-empty", false, "keep the tile's group when it becomes empty")
	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

func printPlaced(l *layout.Layout, id, verb string) {
	t, _ := l.Tile(id)
	printSuccess("%s %s %s at (%d,%d) in %s", verb, t.Size, StyleHighlight.Render(id), t.X, t.Y, t.Group)
}

// parsePoint parses "x,y".
func parsePoint(s string) (*grid.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return nil, invalidArg("cell", s)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return nil, invalidArg("cell", s)
	}
	return grid.At(x, y), nil
}

func invalidArg(name, value string) error {
	return errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, value)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
