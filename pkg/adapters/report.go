package adapters

import (
	"github.com/shopspring/decimal"

	"github.com/seo-tools/searchledger/pkg/models/api"
	"github.com/seo-tools/searchledger/pkg/models/domain"
)

func MapTimePeriodDomainToApi(p domain.TimePeriod) api.TimePeriod {
	return api.TimePeriod{
		Start:    p.Start,
		End:      p.End,
		Duration: p.Duration,
	}
}

func MapSourceFlagsDomainToApi(f domain.SourceFlags) api.SourceFlags {
	return api.SourceFlags{
		Analytics: f.Analytics,
		Search:    f.Search,
	}
}

func MapRevenueQueriesDomainToApi(report *domain.RevenueQueriesReport) api.RevenueQueriesReport {
	mapped := api.RevenueQueriesReport{
		Data:         make([]api.QueryRevenue, 0, len(report.Data)),
		TotalQueries: report.TotalQueries,
		DarkRevenue:  report.DarkRevenue,
		FromCache:    MapSourceFlagsDomainToApi(report.FromCache),
		Period:       MapTimePeriodDomainToApi(report.Period),
	}

	for _, q := range report.Data {
		mapped.Data = append(mapped.Data, api.QueryRevenue{
			Query:       q.Query,
			Pages:       q.Pages,
			Clicks:      q.Clicks,
			Impressions: q.Impressions,
			AvgPosition: q.AvgPosition,
			Revenue:     q.Revenue,
			Conversions: q.Conversions,
		})
	}

	return mapped
}

func MapCategoryReportDomainToApi(report *domain.CategoryReport) api.CategoryReport {
	mapped := api.CategoryReport{
		Data:      make([]api.CategoryPerformance, 0, len(report.Data)),
		FromCache: MapSourceFlagsDomainToApi(report.FromCache),
		Period:    MapTimePeriodDomainToApi(report.Period),
	}

	for _, c := range report.Data {
		mapped.Data = append(mapped.Data, api.CategoryPerformance{
			Category:          c.Category,
			Pages:             c.Pages,
			Sessions:          c.Sessions,
			Clicks:            c.Clicks,
			Revenue:           c.Revenue,
			AttributedRevenue: c.AttributedRevenue,
			Conversions:       c.Conversions,
		})
	}

	return mapped
}

func MapOpportunityReportDomainToApi(report *domain.OpportunityReport) api.OpportunityReport {
	mapped := api.OpportunityReport{
		Data:      make([]api.ContentOpportunity, 0, len(report.Data)),
		FromCache: MapSourceFlagsDomainToApi(report.FromCache),
		Period:    MapTimePeriodDomainToApi(report.Period),
	}

	for _, o := range report.Data {
		mapped.Data = append(mapped.Data, api.ContentOpportunity{
			Query:            o.Query,
			Pages:            o.Pages,
			Clicks:           o.Clicks,
			Impressions:      o.Impressions,
			AvgPosition:      o.AvgPosition,
			OpportunityScore: o.OpportunityScore,
		})
	}

	return mapped
}

func MapPageSummaryReportDomainToApi(report *domain.PageSummaryReport) api.PageSummaryReport {
	mapped := api.PageSummaryReport{
		Data:      make([]api.PageSummary, 0, len(report.Data)),
		FromCache: MapSourceFlagsDomainToApi(report.FromCache),
		Period:    MapTimePeriodDomainToApi(report.Period),
	}

	for _, p := range report.Data {
		summary := api.PageSummary{
			Page:        p.Page,
			Category:    p.Category,
			Sessions:    p.Sessions,
			Revenue:     p.Revenue,
			Conversions: p.Conversions,
			Clicks:      p.Clicks,
			TopQueries:  make([]api.PageQuery, 0, len(p.TopQueries)),
		}
		for _, q := range p.TopQueries {
			summary.TopQueries = append(summary.TopQueries, api.PageQuery{
				Query:      q.Query,
				Clicks:     q.Clicks,
				ClickShare: q.ClickShare,
			})
		}
		mapped.Data = append(mapped.Data, summary)
	}

	return mapped
}

// MapSummaryMetricsDomainToApi flattens a metric map into the canonical
// presentation order, dropping keys outside the known metric set.
func MapSummaryMetricsDomainToApi(metrics map[string]decimal.Decimal) []api.SummaryMetric {
	mapped := make([]api.SummaryMetric, 0, len(metrics))
	for _, name := range domain.MetricOrder {
		value, ok := metrics[name]
		if !ok {
			continue
		}
		mapped = append(mapped, api.SummaryMetric{Name: name, Value: value})
	}
	return mapped
}

func MapWindowSummaryDomainToApi(summary *domain.WindowSummary) api.WindowSummary {
	return api.WindowSummary{
		Metrics:   MapSummaryMetricsDomainToApi(summary.Metrics),
		FromCache: MapSourceFlagsDomainToApi(summary.FromCache),
		Period:    MapTimePeriodDomainToApi(summary.Period),
	}
}
