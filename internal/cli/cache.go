package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ghgraph/pkg/cache"
	"github.com/matzehuels/ghgraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached extractions and API responses",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry of the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.CacheOptions()
			if err != nil {
				return err
			}
			return clearCache(cmd.Context(), opts)
		},
	}
}

func clearCache(ctx context.Context, opts cache.Options) error {
	switch opts.Backend {
	case cache.BackendNone:
		printInfo("Caching is disabled")
		return nil
	case cache.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, opts.RedisURL, opts.Prefix)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rc.Close()
		if err := rc.Clear(ctx); err != nil {
			return fmt.Errorf("clear redis cache: %w", err)
		}
		printSuccess("Cleared redis keys under %s", opts.Prefix)
		return nil
	default:
		fc, err := cache.NewFileCache(opts.Dir)
		if err != nil {
			return fmt.Errorf("open cache dir: %w", err)
		}
		if err := fc.Clear(); err != nil {
			return fmt.Errorf("clear cache dir: %w", err)
		}
		printSuccess("Cleared cache")
		printDetail("Directory: %s", opts.Dir)
		return nil
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory, or the redis URL for the redis backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.CacheOptions()
			if err != nil {
				return err
			}
			switch opts.Backend {
			case cache.BackendRedis:
				fmt.Fprintln(cmd.OutOrStdout(), opts.RedisURL)
			case cache.BackendNone:
				dir, err := config.DefaultCacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), opts.Dir)
			}
			return nil
		},
	}
}
