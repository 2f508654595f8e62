package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	layoutio "github.com/shawnoster/bookcover-wallpaper/pkg/io"
	"github.com/shawnoster/bookcover-wallpaper/pkg/masonry"
	"github.com/shawnoster/bookcover-wallpaper/pkg/pipeline"
)

// layoutCommand creates the layout command, a dry run of the grid engine.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  canvasFlags
		count  int
		asJSON bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the masonry layout for a number of covers",
		Long: `Layout computes the grid for --count covers without fetching or drawing
anything. Use it to tune width, height, gap, aspect and overfill.`,
		Example: `  bookcover-wallpaper layout --count 24
  bookcover-wallpaper layout --count 60 --width 3840 --height 2160 --json
  bookcover-wallpaper layout --count 30 -o layout.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.applyConfig(cmd.Flags(), c.cfg)
			if !cmd.Flags().Changed("count") {
				count = c.cfg.Limit
			}

			if count < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "count must be non-negative, got %d", count)
			}

			var opts pipeline.Options
			flags.options(&opts)
			opts.Logger = c.Logger
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			l, err := masonry.Build(opts.Canvas(), opts.AspectRatio(), coverRefs(count), opts.LayoutOptions()...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				if err := layoutio.ExportJSON(l, output); err != nil {
					return err
				}
				printSuccess(out, "Layout exported")
				printFile(out, output)
				return nil
			}
			if asJSON {
				return layoutio.WriteJSON(l, out)
			}
			printLayout(out, l)
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().IntVarP(&count, "count", "n", pipeline.DefaultLimit, "number of covers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout as JSON to a file")

	return cmd
}

// coverRefs returns placeholder refs "cover-1" through "cover-n".
func coverRefs(n int) []string {
	refs := make([]string, n)
	for i := range refs {
		refs[i] = fmt.Sprintf("cover-%d", i+1)
	}
	return refs
}

// printLayout prints a summary followed by one table row per placement.
func printLayout(w io.Writer, l masonry.Layout) {
	printKeyValue(w, "Canvas", fmt.Sprintf("%dx%d gap %d", l.Canvas.Width, l.Canvas.Height, l.Canvas.Gap))
	printKeyValue(w, "Aspect", l.Aspect.String())
	printKeyValue(w, "Columns", strconv.Itoa(l.Plan.Columns))
	printKeyValue(w, "Cell", fmt.Sprintf("%dx%d", l.Plan.CoverWidth, l.Plan.CoverHeight))
	printKeyValue(w, "Overflow", fmt.Sprintf("%dpx", l.Overflow()))

	if len(l.Placements) == 0 {
		return
	}
	printNewline(w)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return styleTableCell
		}).
		Headers("#", "Cover", "X", "Y", "W", "H")
	for i, p := range l.Placements {
		t.Row(
			strconv.Itoa(i+1), p.Ref,
			strconv.Itoa(p.X), strconv.Itoa(p.Y),
			strconv.Itoa(p.Width), strconv.Itoa(p.Height),
		)
	}
	fmt.Fprintln(w, t.String())
}
