package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/panbanda/covdiff/internal/cache"
	"github.com/panbanda/covdiff/internal/output"
	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the classification cache",
	}
	cmd.AddCommand(newCacheStatsCmd(a), newCacheClearCmd(a))
	return cmd
}

func (a *app) configuredCache(cmd *cobra.Command) (*cache.Cache, error) {
	if err := a.setup(cmd); err != nil {
		return nil, err
	}
	// The cache is opened even when disabled in config so that stale
	// entries can still be inspected and removed.
	return cache.New(a.cfg.Cache.Dir, a.cfg.Cache.TTLDuration(), true)
}

func newCacheStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.configuredCache(cmd)
			if err != nil {
				return err
			}
			stats, err := c.GetStats()
			if err != nil {
				return fmt.Errorf("read cache: %w", err)
			}

			formatter, err := a.formatter(cmd)
			if err != nil {
				return err
			}
			defer formatter.Close()

			return formatter.Output(output.NewTable("Cache",
				[]string{"Directory", "Entries", "Size", "Oldest", "Newest"},
				[][]string{{
					a.cfg.Cache.Dir,
					strconv.Itoa(stats.Entries),
					fmt.Sprintf("%d B", stats.TotalSize),
					stats.OldestAge.Round(time.Second).String(),
					stats.NewestAge.Round(time.Second).String(),
				}},
				nil, stats,
			))
		},
	}
	addOutputFlags(cmd)
	return cmd
}

func newCacheClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.configuredCache(cmd)
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			a.logger.Info("cleared cache", "dir", a.cfg.Cache.Dir)
			output.NewWriterFormatter(output.FormatText, cmd.OutOrStdout(), !a.noColor).
				Success("Cache cleared: %s", a.cfg.Cache.Dir)
			return nil
		},
	}
}
