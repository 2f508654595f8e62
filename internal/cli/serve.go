package cli

import (
	"github.com/spf13/cobra"

	"github.com/shawnoster/bookcover-wallpaper/pkg/server"
)

// serveCommand creates the serve command for the preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags wallpaperFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve wallpaper previews over HTTP",
		Long: `Serve starts a preview server. Source and canvas flags set the defaults;
query parameters on each request override width, height, gap, limit,
columns, aspect, overfill and seed.

Routes:
  GET /healthz
  GET /api/layout?count=N
  GET /wallpaper.png
  GET /wallpaper.jpg`,
		Example: `  bookcover-wallpaper serve --path ~/Pictures/covers
  curl -o wall.png 'http://127.0.0.1:8080/wallpaper.png?width=2560&height=1440'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.applyConfig(cmd.Flags(), c.cfg)
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}

			opts := flags.options()
			opts.Logger = c.Logger
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), flags.runnerOpts())
			if err != nil {
				return err
			}
			defer runner.Close()

			out := cmd.OutOrStdout()
			printInfo(out, "Serving previews on %s", StyleLink.Render("http://"+addr))
			printNextStep(out, "Try", "curl -o wall.png http://"+addr+"/wallpaper.png")
			return server.New(runner, opts, c.Logger).ListenAndServe(cmd.Context(), addr)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")

	return cmd
}
