package cli

import (
	"github.com/spf13/cobra"

	"github.com/shawnoster/bookcover-wallpaper/pkg/buildinfo"
	"github.com/shawnoster/bookcover-wallpaper/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Persistent flags:
//   - --verbose (-v): debug logging, including pipeline, cache and HTTP events
//   - --config: config file (default $XDG_CONFIG_HOME/bookcover-wallpaper/config.toml)
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Build desktop wallpapers from book covers",
		Long: `bookcover-wallpaper arranges book covers into a masonry grid and renders
the result as a wallpaper image.

Covers come from a local directory, a Goodreads export or shelf, or a search
against Google Books and Open Library.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
				observability.NewLogHooks(c.Logger).Register()
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default "+configPathHint()+")")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
