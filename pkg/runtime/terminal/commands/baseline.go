package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seo-tools/searchledger/pkg/adapters"
	"github.com/seo-tools/searchledger/pkg/models/api"
)

type BaselineCmd struct {
	days    int
	runtime Runtime
}

func NewBaselineCmd(rt Runtime) *cobra.Command {
	bc := &BaselineCmd{runtime: rt}
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Snapshot the current reports and compare against them later",
	}

	create := &cobra.Command{
		Use:   "create <label>",
		Short: "Store the current report bundle under a label",
		Args:  cobra.ExactArgs(1),
		RunE:  bc.runCreate,
	}
	create.Flags().IntVar(&bc.days, "days", 30, "Trailing window in days")

	cmd.AddCommand(create)
	cmd.AddCommand(&cobra.Command{
		Use:   "compare <label>",
		Short: "Compare a stored baseline against the current window",
		Args:  cobra.ExactArgs(1),
		RunE:  bc.runCompare,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored baselines, newest first",
		RunE:  bc.runList,
	})

	return cmd
}

func (bc *BaselineCmd) runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snapshotter, err := bc.runtime.Snapshotter(ctx)
	if err != nil {
		return err
	}

	created, err := snapshotter.Create(ctx, bc.days, args[0])
	if err != nil {
		return fmt.Errorf("create baseline: %w", err)
	}

	return bc.runtime.Reporter().BaselineCreated(adapters.MapBaselineDomainToApi(*created))
}

func (bc *BaselineCmd) runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snapshotter, err := bc.runtime.Snapshotter(ctx)
	if err != nil {
		return err
	}

	comparison, err := snapshotter.Compare(ctx, args[0])
	if err != nil {
		return fmt.Errorf("compare baseline: %w", err)
	}

	return bc.runtime.Reporter().Comparison(adapters.MapComparisonDomainToApi(comparison))
}

func (bc *BaselineCmd) runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snapshotter, err := bc.runtime.Snapshotter(ctx)
	if err != nil {
		return err
	}

	baselines, err := snapshotter.List(ctx)
	if err != nil {
		return fmt.Errorf("list baselines: %w", err)
	}

	mapped := make([]api.Baseline, 0, len(baselines))
	for _, b := range baselines {
		mapped = append(mapped, adapters.MapBaselineDomainToApi(b))
	}

	return bc.runtime.Reporter().Baselines(mapped)
}
