package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/internal/config"
	"github.com/matzehuels/livetiles/pkg/store"
)

// storeCommand moves layout documents between the layout file and the
// configured store backend.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save and load layouts in the configured store",
	}

	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeLoadCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

// withStore loads the config, opens its store and runs fn.
func (c *CLI) withStore(ctx context.Context, fn func(cfg config.Config, s store.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	s, err := c.openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(cfg, s)
}

func (c *CLI) storeSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name>",
		Short: "Save the layout file under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(c.layoutPath)
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(cfg config.Config, s store.Store) error {
				_, err := spin(cmd.Context(), "Saving "+args[0], func(ctx context.Context) (struct{}, error) {
					return struct{}{}, store.Save(ctx, s, cfg.Store.Keyer(), args[0], doc, cfg.Store.TTL)
				})
				if err != nil {
					return err
				}
				printSuccess("Saved %s as %s", c.layoutPath, StyleHighlight.Render(args[0]))
				printDetail("backend: %s", backendName(cfg.Store))
				return nil
			})
		},
	}
}

func (c *CLI) storeLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Replace the layout file with a saved layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(cfg config.Config, s store.Store) error {
				doc, err := spin(cmd.Context(), "Loading "+args[0], func(ctx context.Context) (store.Document, error) {
					return store.Load(ctx, s, cfg.Store.Keyer(), args[0])
				})
				if err != nil {
					return err
				}
				if err := writeDocument(c.layoutPath, doc); err != nil {
					return err
				}
				printSuccess("Loaded %s", StyleHighlight.Render(args[0]))
				printFile(c.layoutPath)
				return nil
			})
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved layout",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(cfg config.Config, s store.Store) error {
				if err := store.Remove(cmd.Context(), s, cfg.Store.Keyer(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}
}

func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path [name]",
		Short: "Print where the store keeps layouts",
		Long: `Print where the store keeps layouts. With a name, print the storage
key of that layout, or its file when the file backend is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Store.Backend != store.BackendFile && cfg.Store.Backend != "" {
				if len(args) == 1 {
					fmt.Fprintln(out, cfg.Store.Keyer().StateKey(args[0]))
					return nil
				}
				fmt.Fprintln(out, backendName(cfg.Store))
				return nil
			}

			fs, err := store.NewFileStore(cfg.Store.Dir)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Fprintln(out, fs.Path(cfg.Store.Keyer().StateKey(args[0])))
				return nil
			}
			fmt.Fprintln(out, fs.Dir())
			return nil
		},
	}
}

// backendName describes a store config for status output.
func backendName(cfg store.Config) string {
	switch cfg.Backend {
	case store.BackendRedis:
		addr := cfg.RedisAddr
		if addr == "" {
			addr = store.DefaultRedisAddr
		}
		return fmt.Sprintf("redis %s/%d", addr, cfg.RedisDB)
	case store.BackendMongo:
		uri := cfg.MongoURI
		if uri == "" {
			uri = store.DefaultMongoURI
		}
		return "mongo " + uri
	case store.BackendNone:
		return "none"
	}
	if cfg.Dir != "" {
		return "file " + cfg.Dir
	}
	return "file"
}
