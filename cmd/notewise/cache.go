package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func cacheCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local result cache",
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.noCache {
				return errors.New("--no-cache has no cache to purge")
			}
			c, err := opts.openCache()
			if err != nil {
				return err
			}
			defer c.Close()

			removed, err := c.Purge()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries from %s\n", removed, opts.cachePath)
			return nil
		},
	}

	clearCache := &cobra.Command{
		Use:   "clear",
		Short: "Delete the cache file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.Remove(opts.cachePath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", opts.cachePath)
			return nil
		},
	}

	cmd.AddCommand(purge, clearCache)
	return cmd
}
