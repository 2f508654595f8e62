package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shawnoster/bookcover-wallpaper/pkg/cache"
	"github.com/shawnoster/bookcover-wallpaper/pkg/covers"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached API responses, covers and wallpapers",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached responses, wallpapers and downloaded covers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			store, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			entries := 0
			if cl, ok := store.(cache.Clearer); ok {
				if entries, err = cl.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
			}

			mgr, err := covers.NewManager(covers.Options{Dir: coversDir(c.cfg.CacheDir), Logger: c.Logger})
			if err != nil {
				return err
			}
			files, err := mgr.Clear()
			if err != nil {
				return fmt.Errorf("clear covers: %w", err)
			}

			if entries == 0 && files == 0 {
				printInfo(out, "Cache is empty")
				return nil
			}
			printSuccess(out, "Cache cleared")
			printDetail(out, "%d cached responses, %d covers", entries, files)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cfg.CacheDir)
			return nil
		},
	}
}
