package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/internal/config"
	"github.com/matzehuels/livetiles/internal/server"
	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/store"
)

// serveCommand serves a layout over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, document string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a layout over HTTP",
		Long: `Serve a layout over HTTP.

The layout is loaded from the store document named by --document (or
[server] document in the config file). When the store has no such
document the layout file is used, or an empty layout when that is missing
too. Every change is saved back to the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("document") {
				cfg.Server.Document = document
				if err := errors.ValidateDocumentName(document); err != nil {
					return err
				}
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&document, "document", config.DefaultDocument, "stored layout to serve")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	s, err := c.openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	l, err := c.serveLayout(ctx, cfg, s)
	if err != nil {
		return err
	}

	opts := server.Options{
		Addr:            cfg.Server.Addr,
		Keyer:           cfg.Store.Keyer(),
		Document:        cfg.Server.Document,
		TTL:             cfg.Store.TTL,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          c.Logger,
	}
	printInfo("Serving %s", StyleHighlight.Render(cfg.Server.Document))
	printKeyValue("Address", cfg.Server.Addr)
	printKeyValue("Store", backendName(cfg.Store))
	if cfg.Store.Backend != store.BackendNone {
		opts.Store = s
	} else {
		printWarning("Changes are kept in memory only")
	}
	return server.New(l, opts).ListenAndServe(ctx)
}

// serveLayout picks the initial layout: the stored document, then the
// layout file, then an empty layout.
func (c *CLI) serveLayout(ctx context.Context, cfg config.Config, s store.Store) (*layout.Layout, error) {
	doc, err := store.Load(ctx, s, cfg.Store.Keyer(), cfg.Server.Document)
	switch {
	case err == nil:
		c.Logger.Info("loaded stored layout", "document", cfg.Server.Document)
		return doc.Layout(layout.WithLogger(c.Logger))
	case !errors.Is(err, errors.ErrCodeNotFound):
		return nil, err
	}

	doc, err = readDocument(c.layoutPath)
	switch {
	case err == nil:
		c.Logger.Info("loaded layout file", "file", c.layoutPath)
		return doc.Layout(layout.WithLogger(c.Logger))
	case !errors.Is(err, errors.ErrCodeFileNotFound):
		return nil, err
	}

	c.Logger.Info("starting with an empty layout")
	return layout.New(cfg.Layout, layout.WithLogger(c.Logger))
}
