package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached crawl results",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached crawl results",
	Long:  "Deletes every cached result under --prefix (default: all crawl results). With --expired, only sweeps entries past their TTL.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("crawl"); err != nil {
			return err
		}

		rc, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer rc.Close() //nolint:errcheck

		expired, _ := cmd.Flags().GetBool("expired")
		prefix, _ := cmd.Flags().GetString("prefix")

		var n int
		if expired {
			n, err = rc.PurgeExpired(ctx)
		} else {
			n, err = rc.Purge(ctx, prefix)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "deleted %d entries\n", n)
		return nil
	},
}

func init() {
	cachePurgeCmd.Flags().String("prefix", "", "key prefix to delete (default: cache key prefix)")
	cachePurgeCmd.Flags().Bool("expired", false, "only delete expired entries")
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
