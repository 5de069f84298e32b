package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/export"
)

type renderOptions struct {
	out    string
	format string
	title  string
	width  float64
	height float64
	events []string
}

func newRenderCmd(a *app) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the board to an SVG, PNG or Markdown file",
		Example: `  # SVG next to the snapshot
  stageboard render -s stages.json -o board.svg

  # PNG with Onboard1 activated
  stageboard render -o board.png --event click:Onboard1

  # Markdown report on stdout
  stageboard render --format md`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, a, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "", "output path (default: board.<format>, stdout for md)")
	f.StringVar(&opts.format, "format", "", "svg, png or md (default: from the output extension)")
	f.StringVar(&opts.title, "title", "", "title drawn above the board")
	f.Float64Var(&opts.width, "width", 0, "viewport width in px (default: board.viewport.width)")
	f.Float64Var(&opts.height, "height", 0, "viewport height in px (default: board.viewport.height)")
	f.StringSliceVar(&opts.events, "event", nil, "pointer events to apply before rendering, as event:id")
	return cmd
}

func runRender(cmd *cobra.Command, a *app, opts *renderOptions) error {
	viewport := a.cfg.Viewport()
	if opts.width > 0 {
		viewport.Width = opts.width
	}
	if opts.height > 0 {
		viewport.Height = opts.height
	}
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = board.DefaultViewport
	}

	l, err := a.load(viewport)
	if err != nil {
		return err
	}
	if err := applyEvents(l.Container, opts.events); err != nil {
		return err
	}

	format, path, err := export.InferFormat(opts.format, opts.out)
	if err != nil {
		return err
	}

	if path == "" && format != export.FormatMarkdown {
		path = "board." + format
	}

	if format == export.FormatMarkdown {
		if path == "" || path == "-" {
			return export.WriteBoardMarkdown(cmd.OutOrStdout(), l.VM, opts.title)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		if err := export.WriteBoardMarkdown(f, l.VM, opts.title); err != nil {
			return err
		}
	} else {
		err := export.SaveBoardSnapshot(export.BoardSnapshotOptions{
			Path:      path,
			Format:    format,
			Title:     opts.title,
			Container: l.Container,
			DataHash:  dataHash(l.Snap),
		})
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%d tiles from %s)\n", path, len(l.VM.Tiles), l.Source.Path)
	if l.Result.Overflow {
		fmt.Fprintln(out, "Board overflows the viewport; the image was grown to fit.")
	}
	return nil
}
