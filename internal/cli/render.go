package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/livetiles/pkg/errors"
	"github.com/matzehuels/livetiles/pkg/layout"
	"github.com/matzehuels/livetiles/pkg/render"
)

// Output formats.
const (
	formatSVG  = "svg"
	formatDOT  = "dot"
	formatJSON = "json"
	formatPNG  = "png"
	formatPDF  = "pdf"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatDOT: true, formatJSON: true, formatPNG: true, formatPDF: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output string  // output file; stdout for text formats when empty
	format string  // svg, dot, json, png or pdf
	labels bool    // print tile sizes in DOT/SVG
	scale  float64 // PNG scale factor
	ppe    float64 // points per em in DOT/SVG
}

// renderCommand exports the layout.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: 2, ppe: render.DefaultPointsPerEm}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the layout to SVG, DOT, JSON, PNG or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = formatSVG
				if ext := strings.TrimPrefix(filepath.Ext(opts.output), "."); ext != "" {
					opts.format = ext
				}
			}
			if !validFormats[opts.format] {
				return errors.New(errors.ErrCodeUnsupported, "invalid format: %s (must be svg, dot, json, png or pdf)", opts.format)
			}
			return c.runRender(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout for svg, dot and json)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot, json, png, pdf; inferred from --output")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "print tile sizes under tile ids")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().Float64Var(&opts.ppe, "points-per-em", opts.ppe, "Graphviz points per em")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	l, err := c.openLayout()
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	scene := render.Build(l)

	data, err := renderScene(cmd.Context(), scene, l.Config(), opts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		if opts.format == formatPNG || opts.format == formatPDF {
			opts.output = strings.TrimSuffix(filepath.Base(c.layoutPath), ".tiles.json") + "." + opts.format
		} else {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("Rendered " + opts.format)
	printFile(opts.output)
	return nil
}

func renderScene(ctx context.Context, scene render.Scene, cfg layout.Config, opts *renderOpts) ([]byte, error) {
	if opts.format == formatJSON {
		return render.RenderJSON(scene, render.WithJSONIndent(), render.WithJSONConfig(cfg))
	}

	dot := render.ToDOT(scene, render.DOTOptions{PointsPerEm: opts.ppe, Labels: opts.labels})
	if opts.format == formatDOT {
		return []byte(dot), nil
	}

	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	switch opts.format {
	case formatPNG:
		return spin(ctx, "Converting to PNG", func(ctx context.Context) ([]byte, error) {
			return render.ToPNG(ctx, svg, opts.scale)
		})
	case formatPDF:
		return spin(ctx, "Converting to PDF", func(ctx context.Context) ([]byte, error) {
			return render.ToPDF(ctx, svg)
		})
	}
	return svg, nil
}
