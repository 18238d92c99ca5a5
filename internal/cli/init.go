package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/store"
)

type initOpts struct {
	direction string
	height    int
	width     int
	inline    int
	force     bool
}

// initCommand creates an empty layout document. The [layout] section of the
// config file supplies defaults; flags override it.
func (c *CLI) initCommand() *cobra.Command {
	var opts initOpts

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty layout file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			lc := cfg.Layout
			flags := cmd.Flags()
			if flags.Changed("direction") {
				lc.Direction = layout.Direction(opts.direction)
			}
			if flags.Changed("height") {
				lc.Height = opts.height
			}
			if flags.Changed("group-width") {
				lc.GroupWidth = opts.width
			}
			if flags.Changed("inline") {
				lc.InlineGroups = opts.inline
			}
			return c.runInit(lc, opts.force)
		},
	}

	cmd.Flags().StringVar(&opts.direction, "direction", "", "group flow: horizontal or vertical")
	cmd.Flags().IntVar(&opts.height, "height", 0, "group height in small tiles (horizontal)")
	cmd.Flags().IntVar(&opts.width, "group-width", 0, "group width in small tiles (vertical)")
	cmd.Flags().IntVar(&opts.inline, "inline", 0, "number of group columns (vertical)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing layout file")

	return cmd
}

func (c *CLI) runInit(cfg layout.Config, force bool) error {
	if _, err := os.Stat(c.layoutPath); err == nil && !force {
		return errors.New(errors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", c.layoutPath)
	}
	l, err := layout.New(cfg, layout.WithLogger(c.Logger))
	if err != nil {
		return err
	}
	if err := writeDocument(c.layoutPath, store.NewDocument(l)); err != nil {
		return err
	}

	printSuccess("Created %s", c.layoutPath)
	printDetail("%s flow, %s", cfg.Direction, boundText(cfg))
	printNextStep("Add a tile", "livetiles tile add <id>")
	return nil
}

func boundText(cfg layout.Config) string {
	if cfg.Direction == layout.Vertical {
		return plural(cfg.GroupWidth, "tile") + " wide"
	}
	return plural(cfg.Height, "tile") + " tall"
}
