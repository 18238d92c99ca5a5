package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/state"
)

// snapCommand maps a container offset to a grid cell without changing the
// layout.
func (c *CLI) snapCommand() *cobra.Command {
	var (
		size string
		ppe  float64
	)

	cmd := &cobra.Command{
		Use:   "snap <x> <y>",
		Short: "Show which cell an offset snaps to",
		Long: `Show which cell a tile dropped at an offset would snap to.

The offset is the tile's top-left corner relative to the container, in em.
With --pixels-per-em it is read as pixels instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, errX := strconv.ParseFloat(args[0], 64)
			y, errY := strconv.ParseFloat(args[1], 64)
			if errX != nil || errY != nil {
				return invalidArg("offset", args[0]+" "+args[1])
			}
			sz, err := state.ParseSize(size)
			if err != nil {
				return err
			}
			l, err := c.openLayout()
			if err != nil {
				return err
			}

			off := layout.Offset{X: x, Y: y}
			if ppe > 0 {
				off = layout.OffsetFromPixels(x, y, layout.FixedScale(ppe))
			}
			res, ok := l.SnapToGrid(off, sz)
			fmt.Fprintln(cmd.OutOrStdout(), snapText(res, ok))
			return nil
		},
	}

	cmd.Flags().StringVarP(&size, "size", "s", string(state.Medium), "size of the dragged tile")
	cmd.Flags().Float64Var(&ppe, "pixels-per-em", 0, "read the offset as pixels at this scale")
	return cmd
}

func snapText(res layout.SnapResult, ok bool) string {
	switch {
	case !ok:
		return "no cell"
	case res.New:
		return fmt.Sprintf("new group (%d,%d)", res.X, res.Y)
	default:
		return fmt.Sprintf("%s (%d,%d)", res.Group, res.X, res.Y)
	}
}
