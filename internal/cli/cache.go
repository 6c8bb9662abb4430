package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sceneforest/pkg/cache"
	apperr "github.com/matzehuels/sceneforest/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts",
		Long: `Remove every artifact owned by this tool from the configured backend. For
Redis only keys under the sceneforest prefix are deleted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if c.Config.Cache.Backend == backendFile {
				dir, err := c.fileCacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
			}

			store, err := c.openBackend(ctx)
			if err != nil {
				return apperr.Wrap(apperr.ErrCodeCache, err, "open %s cache", c.Config.Cache.Backend)
			}
			defer store.Close()

			cl, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Caching is disabled")
				return nil
			}
			if err := cache.RetryWithBackoff(ctx, func() error { return cl.Clear(ctx) }); err != nil {
				return apperr.Wrap(apperr.ErrCodeCache, err, "clear %s cache", c.Config.Cache.Backend)
			}

			printSuccess("Cleared %s cache", c.Config.Cache.Backend)
			printDetail("Location: %s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where artifacts are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// backend, a redis URL for redis.
func (c *CLI) cacheLocation() string {
	switch c.Config.Cache.Backend {
	case backendRedis:
		return fmt.Sprintf("redis://%s/%d (prefix %q)", c.Config.Redis.Addr, c.Config.Redis.DB, redisPrefix)
	case backendNone:
		return "(disabled)"
	}
	dir, err := c.fileCacheDir()
	if err != nil {
		return "(unknown)"
	}
	return dir
}
