package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shawnoster/bookcover-wallpaper/pkg/compose"
	"github.com/shawnoster/bookcover-wallpaper/pkg/config"
	"github.com/shawnoster/bookcover-wallpaper/pkg/errors"
	layoutio "github.com/shawnoster/bookcover-wallpaper/pkg/io"
	"github.com/shawnoster/bookcover-wallpaper/pkg/pipeline"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source"
	"github.com/shawnoster/bookcover-wallpaper/pkg/source/local"
	"github.com/shawnoster/bookcover-wallpaper/pkg/watcher"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags      wallpaperFlags
		output     string
		layoutPath string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a wallpaper from book covers",
		Long: `Generate resolves books from a source, downloads their covers, arranges them
in a masonry grid and writes the wallpaper image.

The output format follows the file extension (.png, .jpg or .jpeg).

With --layout, covers fill the cells of a layout exported by
"bookcover-wallpaper layout -o" in order, and the canvas size comes from
that file.`,
		Example: `  # Covers from a local directory
  bookcover-wallpaper generate --path ~/Pictures/covers

  # Goodreads export, 4K, shuffled
  bookcover-wallpaper generate --source goodreads --goodreads export.csv \
      --width 3840 --height 2160 --shuffle -o wall.jpg

  # Search Google Books and Open Library
  bookcover-wallpaper generate --source search --genre "science fiction"

  # Reuse an exported layout
  bookcover-wallpaper layout --count 40 -o layout.json
  bookcover-wallpaper generate --path ~/Pictures/covers --layout layout.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.applyConfig(cmd.Flags(), c.cfg)
			if !cmd.Flags().Changed("output") {
				output = c.cfg.Output
			}
			output = config.ExpandHome(output)

			opts := flags.options()
			format, err := compose.FormatFromPath(output)
			if err != nil {
				return err
			}
			opts.Format = format
			opts.Logger = c.Logger
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if watch && opts.Source != string(source.KindLocal) {
				return errors.New(errors.ErrCodeInvalidSource, "--watch requires the local source")
			}
			if watch && layoutPath != "" {
				return errors.New(errors.ErrCodeInvalidInput, "--watch cannot be combined with --layout")
			}

			var execute executeFunc = func(ctx context.Context, runner *pipeline.Runner) (*pipeline.Result, error) {
				return runner.Execute(ctx, opts)
			}
			if layoutPath != "" {
				l, err := layoutio.ImportJSON(config.ExpandHome(layoutPath))
				if err != nil {
					return err
				}
				execute = func(ctx context.Context, runner *pipeline.Runner) (*pipeline.Result, error) {
					return runner.ExecuteLayout(ctx, l, opts)
				}
			}

			runner, err := c.newRunner(cmd.Context(), flags.runnerOpts())
			if err != nil {
				return err
			}
			defer runner.Close()

			if watch {
				return c.watch(cmd.Context(), cmd.OutOrStdout(), runner, opts, output)
			}
			return c.generate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), runner, execute, output)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", config.Default().Output, "output file")
	cmd.Flags().StringVar(&layoutPath, "layout", "", "render into the cells of an exported layout JSON file")
	cmd.Flags().BoolVar(&watch, "watch", false, "regenerate when the cover directory changes (local source)")

	return cmd
}

// executeFunc runs one pipeline pass on runner.
type executeFunc func(ctx context.Context, runner *pipeline.Runner) (*pipeline.Result, error)

// generate runs the pipeline once and reports the result.
func (c *CLI) generate(ctx context.Context, out, errOut io.Writer, runner *pipeline.Runner, execute executeFunc, output string) error {
	spinner := newSpinnerWithContext(ctx, errOut, "Building wallpaper...")
	spinner.Start()
	result, err := execute(ctx, runner)
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := writeOutput(output, result.Data); err != nil {
		return err
	}

	printSuccess(out, "Wallpaper generated")
	printFile(out, output)
	printStats(out, wallpaperStats{
		covers:  len(result.Books),
		columns: result.Layout.Plan.Columns,
		width:   result.Layout.Plan.CoverWidth,
		height:  result.Layout.Plan.CoverHeight,
		cached:  result.CacheInfo.WallpaperHit,
	})
	if result.Seed != 0 {
		printDetail(out, "seed %d", result.Seed)
	}
	if result.Stats.Failed > 0 {
		printWarning(out, "%d covers could not be downloaded", result.Stats.Failed)
	}
	for _, skip := range result.Skipped {
		printWarning(out, "skipped %s: %s", filepath.Base(skip.Ref), errors.UserMessage(skip.Err))
	}
	return nil
}

// watch generates once, then regenerates whenever an image in the cover
// directory changes. It returns when ctx is cancelled.
func (c *CLI) watch(ctx context.Context, out io.Writer, runner *pipeline.Runner, opts pipeline.Options, output string) error {
	execute := func(ctx context.Context, runner *pipeline.Runner) (*pipeline.Result, error) {
		return runner.Execute(ctx, opts)
	}
	if err := c.generate(ctx, out, io.Discard, runner, execute, output); err != nil {
		return err
	}

	dir := config.ExpandHome(opts.Path)
	printInfo(out, "Watching %s for changes", dir)
	printNextStep(out, "Stop with", "Ctrl+C")

	w := watcher.New(dir,
		watcher.WithFilter(local.IsImage),
		watcher.WithIgnore(output),
		watcher.WithLogger(c.Logger),
	)
	return w.Run(ctx, func(ctx context.Context) error {
		prog := newProgress(c.Logger)
		result, err := runner.Execute(ctx, opts)
		if err != nil {
			return err
		}
		if err := writeOutput(output, result.Data); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Rebuilt wallpaper from %d covers", len(result.Books)))
		return nil
	})
}

// writeOutput atomically replaces path with data.
func writeOutput(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".wallpaper-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
