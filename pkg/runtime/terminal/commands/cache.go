package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seo-tools/searchledger/pkg/adapters"
	"github.com/seo-tools/searchledger/pkg/models/api"
)

type CacheCmd struct {
	runtime Runtime
}

func NewCacheCmd(rt Runtime) *cobra.Command {
	cc := &CacheCmd{runtime: rt}
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the selected account's fetch cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Entry counts and sizes per source namespace",
		RunE:  cc.runStats,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached fetch for the account",
		RunE:  cc.runClear,
	})

	return cmd
}

func (cc *CacheCmd) runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	engine, err := cc.runtime.Engine(ctx)
	if err != nil {
		return err
	}

	stats, err := engine.CacheStats()
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}

	return cc.runtime.Reporter().CacheStats(adapters.MapCacheStatsStoreToApi(stats))
}

func (cc *CacheCmd) runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	engine, err := cc.runtime.Engine(ctx)
	if err != nil {
		return err
	}

	removed, err := engine.ClearCache()
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	return cc.runtime.Reporter().CacheCleared(api.CacheClearResult{Removed: removed})
}
