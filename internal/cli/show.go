package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/pkg/render"
)

// showCommand previews the layout in the terminal.
func (c *CLI) showCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Preview the layout in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.openLayout()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if list {
				fmt.Fprintln(out, groupTable(l.Groups()))
				fmt.Fprintln(out, tileTable(l.Tiles()))
				return nil
			}
			fmt.Fprintln(out, render.RenderTerminal(render.Build(l)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print group and tile tables instead of the preview")
	return cmd
}
