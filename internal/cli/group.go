package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/pkg/layout"
)

// groupCommand manages groups.
func (c *CLI) groupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Add, remove, rename and reorder groups",
	}

	cmd.AddCommand(c.groupAddCommand())
	cmd.AddCommand(c.groupRemoveCommand())
	cmd.AddCommand(c.groupRenameCommand())
	cmd.AddCommand(c.groupMoveCommand())

	return cmd
}

func (c *CLI) groupAddCommand() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Append a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			l, err := c.editLayout(func(l *layout.Layout) error { return l.AddGroup(id, label) })
			if err != nil {
				return err
			}
			g, _ := l.Group(id)
			printSuccess("Added group %s at index %d", StyleHighlight.Render(id), g.Index)
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "group label")
	return cmd
}

func (c *CLI) groupRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a group and all of its tiles",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			var tiles int
			_, err := c.editLayout(func(l *layout.Layout) error {
				if g, ok := l.Group(id); ok {
					tiles = g.Tiles
				}
				return l.RemoveGroup(id)
			})
			if err != nil {
				return err
			}
			printSuccess("Removed group %s", StyleHighlight.Render(id))
			if tiles > 0 {
				printDetail("%s removed with it", plural(tiles, "tile"))
			}
			return nil
		},
	}
}

func (c *CLI) groupRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <label>",
		Short: "Change a group's label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.editLayout(func(l *layout.Layout) error { return l.RenameGroup(args[0], args[1]) })
			if err != nil {
				return err
			}
			printSuccess("Renamed group %s to %q", StyleHighlight.Render(args[0]), args[1])
			return nil
		},
	}
}

func (c *CLI) groupMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a group to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return invalidArg("index", args[1])
			}
			if _, err := c.editLayout(func(l *layout.Layout) error { return l.MoveGroup(args[0], index) }); err != nil {
				return err
			}
			printSuccess("Moved group %s to index %d", StyleHighlight.Render(args[0]), index)
			return nil
		},
	}
}
