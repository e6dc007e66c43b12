package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seo-tools/searchledger/pkg/adapters"
)

type ReportCmd struct {
	days    int
	limit   int
	runtime Runtime
}

func NewReportCmd(rt Runtime) *cobra.Command {
	rc := &ReportCmd{runtime: rt}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Attribution reports for the selected account",
	}

	cmd.PersistentFlags().IntVar(&rc.days, "days", 30, "Trailing window in days")

	queries := &cobra.Command{
		Use:   "queries",
		Short: "Rank queries by attributed revenue",
		RunE:  rc.runQueries,
	}
	queries.Flags().IntVar(&rc.limit, "limit", 25, "Maximum queries to print")

	cmd.AddCommand(queries)
	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "Revenue and traffic grouped by URL category",
		RunE:  rc.runCategories,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "opportunities",
		Short: "Queries with clicks but no attributed conversions",
		RunE:  rc.runOpportunities,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pages",
		Short: "Per-page totals with each page's top queries",
		RunE:  rc.runPages,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Scalar health metrics for the window",
		RunE:  rc.runSummary,
	})

	return cmd
}

func (rc *ReportCmd) runQueries(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	engine, err := rc.runtime.Engine(ctx)
	if err != nil {
		return err
	}

	report, err := engine.RevenueQueries(ctx, rc.days, rc.limit)
	if err != nil {
		return fmt.Errorf("revenue queries report: %w", err)
	}

	return rc.runtime.Reporter().RevenueQueries(adapters.MapRevenueQueriesDomainToApi(report))
}

func (rc *ReportCmd) runCategories(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	engine, err := rc.runtime.Engine(ctx)
	if err != nil {
		return err
	}

	report, err := engine.CategoryPerformance(ctx, rc.days)
	if err != nil {
		return fmt.Errorf("category report: %w", err)
	}

	return rc.runtime.Reporter().Categories(adapters.MapCategoryReportDomainToApi(report))
}

func (rc *ReportCmd) runOpportunities(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	engine, err := rc.runtime.Engine(ctx)
	if err != nil {
		return err
	}

	report, err := engine.ContentOpportunities(ctx, rc.days)
	if err != nil {
		return fmt.Errorf("opportunities report: %w", err)
	}

	return rc.runtime.Reporter().Opportunities(adapters.MapOpportunityReportDomainToApi(report))
}

func (rc *ReportCmd) runPages(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	engine, err := rc.runtime.Engine(ctx)
	if err != nil {
		return err
	}

	report, err := engine.PageSummaries(ctx, rc.days)
	if err != nil {
		return fmt.Errorf("page summaries report: %w", err)
	}

	return rc.runtime.Reporter().Pages(adapters.MapPageSummaryReportDomainToApi(report))
}

func (rc *ReportCmd) runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	engine, err := rc.runtime.Engine(ctx)
	if err != nil {
		return err
	}

	summary, err := engine.Summary(ctx, rc.days)
	if err != nil {
		return fmt.Errorf("window summary: %w", err)
	}

	return rc.runtime.Reporter().Summary(adapters.MapWindowSummaryDomainToApi(summary))
}
