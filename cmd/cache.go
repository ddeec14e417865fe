package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timi233/enterprise-brain/internal/cache"
	"github.com/timi233/enterprise-brain/internal/extract"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache",
}

// openCache opens the configured SQLite store without touching Postgres or
// the external APIs.
func openCache(cmd *cobra.Command) (*cache.Store, error) {
	store, err := cache.New(cfg.Cache.Path, cfg.Cache.TTL())
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge [company-name]",
	Short: "Evict one company's cached result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		purged, err := store.Purge(cmd.Context(), extract.Normalize(args[0]))
		if err != nil {
			return err
		}
		if purged {
			fmt.Printf("purged %s\n", args[0])
		} else {
			fmt.Printf("no cache entry for %s\n", args[0])
		}
		return nil
	},
}

var cachePurgeExpiredCmd = &cobra.Command{
	Use:   "purge-expired",
	Short: "Remove all expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.PurgeExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("removed %d expired entries\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cachePurgeExpiredCmd)
	rootCmd.AddCommand(cacheCmd)
}
