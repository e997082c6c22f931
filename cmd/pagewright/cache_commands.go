package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pagewright/internal/keycache"
	"pagewright/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the key-table cache",
	}
	cmd.AddCommand(newCacheListCommand(ctx))
	cmd.AddCommand(newCacheClearCommand(ctx))
	return cmd
}

func (c *commandContext) withCache(fn func(*keycache.Cache) error) error {
	cache, err := c.openCache()
	if err != nil {
		return err
	}
	if cache == nil {
		return services.Wrap(services.ErrConfiguration, "cache", "open", "key cache disabled (keys.cache_enabled = false)", nil)
	}
	defer cache.Close()
	return fn(cache)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached key tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *keycache.Cache) error {
				entries, err := cache.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Key cache is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{e.ContentID, e.Kind, strconv.Itoa(e.Entries), e.CachedAt.Local().Format(time.DateTime)})
				}
				writeRows(cmd, []string{"Content", "Kind", "Entries", "Cached"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached key table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *keycache.Cache) error {
				removed, err := cache.Clear(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int64{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached tables\n", removed)
				return nil
			})
		},
	}
}
