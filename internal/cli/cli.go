// Package cli implements the livetiles command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/internal/config"
	"github.com/matzehuels/livetiles/pkg/buildinfo"
	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/state"
	"github.com/matzehuels/livetiles/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "livetiles"

	// defaultLayoutFile is the layout document edited when --file is not set.
	defaultLayoutFile = "layout.tiles.json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	layoutPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "livetiles edits grouped tile layouts",
		Long:         `livetiles keeps live tile layouts: groups of square tiles in four sizes that never overlap. It edits layout files, previews them in the terminal, renders them to SVG and serves them over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/livetiles/config.toml)")
	root.PersistentFlags().StringVarP(&c.layoutPath, "file", "F", defaultLayoutFile, "layout document to edit")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.groupCommand())
	root.AddCommand(c.tileCommand())
	root.AddCommand(c.snapCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Store
// =============================================================================

func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "backend", cfg.Store.Backend)
	return cfg, nil
}

// configCommand prints the effective configuration. The Redis password is
// masked.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store.RedisPassword != "" {
				cfg.Store.RedisPassword = "********"
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}

func (c *CLI) openStore(ctx context.Context, cfg store.Config) (store.Store, error) {
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("store opened", "backend", cfg.Backend)
	return s, nil
}

// =============================================================================
// Layout Documents
// =============================================================================

// readDocument loads a layout document from path.
func readDocument(path string) (store.Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store.Document{}, errors.New(errors.ErrCodeFileNotFound, "layout file %s does not exist (run `livetiles init`)", path)
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("read layout: %w", err)
	}
	return store.DecodeDocument(data)
}

// writeDocument writes doc to path through a temporary file.
func writeDocument(path string, doc store.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create layout dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// openLayout reads the layout document named by --file.
func (c *CLI) openLayout() (*layout.Layout, error) {
	doc, err := readDocument(c.layoutPath)
	if err != nil {
		return nil, err
	}
	return doc.Layout(layout.WithLogger(c.Logger))
}

// editLayout opens the layout document, applies fn and writes the document
// back when fn changed it.
func (c *CLI) editLayout(fn func(l *layout.Layout) error) (*layout.Layout, error) {
	l, err := c.openLayout()
	if err != nil {
		return nil, err
	}
	changed := false
	unsub := l.Subscribe(func(*state.State) { changed = true })
	defer unsub()

	if err := fn(l); err != nil {
		return nil, err
	}
	if !changed {
		c.Logger.Debug("layout unchanged", "file", c.layoutPath)
		return l, nil
	}
	if err := writeDocument(c.layoutPath, store.NewDocument(l)); err != nil {
		return nil, err
	}
	c.Logger.Debug("layout written", "file", c.layoutPath)
	return l, nil
}

// unresolvable is returned when a placement has no solution.
func unresolvable(id string) error {
	return errors.New(errors.ErrCodeUnresolvable, "no placement found for tile %q; layout unchanged", id)
}
