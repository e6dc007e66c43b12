package attribution

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
)

// RevenueQueries ranks queries by total attributed revenue across every
// page they drive. Ties break by clicks, then by query string, so the
// ranking is reproducible on identical input. A limit <= 0 returns all
// queries; TotalQueries always counts the full set before the cut.
func (e *Engine) RevenueQueries(ctx context.Context, days, limit int) (*domain.RevenueQueriesReport, error) {
	combined, err := e.Combine(ctx, days)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordReport("queries")

	data := aggregateByQuery(combined.Records)
	sort.Slice(data, func(i, j int) bool {
		if c := data[i].Revenue.Cmp(data[j].Revenue); c != 0 {
			return c > 0
		}
		if data[i].Clicks != data[j].Clicks {
			return data[i].Clicks > data[j].Clicks
		}
		return data[i].Query < data[j].Query
	})

	total := len(data)
	if limit > 0 && len(data) > limit {
		data = data[:limit]
	}

	return &domain.RevenueQueriesReport{
		Data:         data,
		TotalQueries: total,
		FromCache:    combined.FromCache,
		Period:       combined.Period,
		DarkRevenue:  combined.DarkRevenue,
	}, nil
}

// CategoryPerformance groups the window's pages by URL category. Revenue
// here is page-level analytics revenue, so dark pages count toward their
// category even though nothing was attributed to a query for them.
func (e *Engine) CategoryPerformance(ctx context.Context, days int) (*domain.CategoryReport, error) {
	combined, err := e.Combine(ctx, days)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordReport("categories")

	byCategory := make(map[string]*domain.CategoryPerformance)
	ensure := func(category string) *domain.CategoryPerformance {
		row, ok := byCategory[category]
		if !ok {
			row = &domain.CategoryPerformance{Category: category}
			byCategory[category] = row
		}
		return row
	}

	for _, page := range combined.Pages {
		row := ensure(e.settings.Categories.Categorize(page.Page))
		row.Pages++
		row.Sessions += page.Sessions
		row.Clicks += page.Clicks
		row.Revenue = row.Revenue.Add(page.Revenue)
		row.Conversions = row.Conversions.Add(page.Conversions)
	}
	for _, record := range combined.Records {
		row := ensure(e.settings.Categories.Categorize(record.Page))
		row.AttributedRevenue = row.AttributedRevenue.Add(record.AttributedRevenue)
	}

	data := make([]domain.CategoryPerformance, 0, len(byCategory))
	for _, row := range byCategory {
		data = append(data, *row)
	}
	sort.Slice(data, func(i, j int) bool {
		if c := data[i].Revenue.Cmp(data[j].Revenue); c != 0 {
			return c > 0
		}
		return data[i].Category < data[j].Category
	})

	return &domain.CategoryReport{
		Data:      data,
		FromCache: combined.FromCache,
		Period:    combined.Period,
	}, nil
}

// ContentOpportunities surfaces queries earning meaningful clicks without a
// single attributed conversion anywhere, ranked so more unconverted traffic
// ranks higher.
func (e *Engine) ContentOpportunities(ctx context.Context, days int) (*domain.OpportunityReport, error) {
	combined, err := e.Combine(ctx, days)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordReport("opportunities")

	var data []domain.ContentOpportunity
	for _, q := range aggregateByQuery(combined.Records) {
		if q.Clicks < e.settings.MinOpportunityClicks || !q.Conversions.IsZero() {
			continue
		}
		data = append(data, domain.ContentOpportunity{
			Query:            q.Query,
			Pages:            q.Pages,
			Clicks:           q.Clicks,
			Impressions:      q.Impressions,
			AvgPosition:      q.AvgPosition,
			OpportunityScore: opportunityScore(q.Clicks, q.Impressions, q.AvgPosition),
		})
	}

	sort.Slice(data, func(i, j int) bool {
		if data[i].OpportunityScore != data[j].OpportunityScore {
			return data[i].OpportunityScore > data[j].OpportunityScore
		}
		if data[i].Clicks != data[j].Clicks {
			return data[i].Clicks > data[j].Clicks
		}
		return data[i].Query < data[j].Query
	})

	return &domain.OpportunityReport{
		Data:      data,
		FromCache: combined.FromCache,
		Period:    combined.Period,
	}, nil
}

// opportunityScore weighs how much traffic a query earns against how well
// it ranks: strictly increasing in clicks and impressions, decreasing in
// position. The weights are a placeholder product decision; the reports
// only rely on that monotonicity, not on the exact constants. Positions
// below 1 (including the 0 the API uses for unknown) clamp to 1 so the
// division cannot inflate or blow up the score.
func opportunityScore(clicks, impressions int, position float64) float64 {
	if position < 1 {
		position = 1
	}
	return (float64(clicks)*10 + float64(impressions)*0.1) / position
}

// PageSummaries reports one row per page with its analytics totals and its
// leading queries by clicks.
func (e *Engine) PageSummaries(ctx context.Context, days int) (*domain.PageSummaryReport, error) {
	combined, err := e.Combine(ctx, days)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordReport("pages")

	queriesByPage := make(map[string][]domain.PageQuery)
	for _, record := range combined.Records {
		queriesByPage[record.Page] = append(queriesByPage[record.Page], domain.PageQuery{
			Query:      record.Query,
			Clicks:     record.Clicks,
			ClickShare: record.ClickShare,
		})
	}

	data := make([]domain.PageSummary, 0, len(combined.Pages))
	for _, page := range combined.Pages {
		queries := queriesByPage[page.Page]
		sort.Slice(queries, func(i, j int) bool {
			if queries[i].Clicks != queries[j].Clicks {
				return queries[i].Clicks > queries[j].Clicks
			}
			return queries[i].Query < queries[j].Query
		})
		if len(queries) > e.settings.TopQueriesPerPage {
			queries = queries[:e.settings.TopQueriesPerPage]
		}

		data = append(data, domain.PageSummary{
			Page:        page.Page,
			Category:    e.settings.Categories.Categorize(page.Page),
			Sessions:    page.Sessions,
			Revenue:     page.Revenue,
			Conversions: page.Conversions,
			Clicks:      page.Clicks,
			TopQueries:  queries,
		})
	}

	sort.Slice(data, func(i, j int) bool {
		if c := data[i].Revenue.Cmp(data[j].Revenue); c != 0 {
			return c > 0
		}
		if data[i].Clicks != data[j].Clicks {
			return data[i].Clicks > data[j].Clicks
		}
		return data[i].Page < data[j].Page
	})

	return &domain.PageSummaryReport{
		Data:      data,
		FromCache: combined.FromCache,
		Period:    combined.Period,
	}, nil
}

// Summary condenses the window into the scalar metric set baselines
// snapshot and compare.
func (e *Engine) Summary(ctx context.Context, days int) (*domain.WindowSummary, error) {
	combined, err := e.Combine(ctx, days)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordReport("summary")

	var sessions, clicks, impressions int
	revenue := decimal.Zero
	conversions := decimal.Zero
	for _, page := range combined.Pages {
		sessions += page.Sessions
		clicks += page.Clicks
		impressions += page.Impressions
		revenue = revenue.Add(page.Revenue)
		conversions = conversions.Add(page.Conversions)
	}

	attributed := decimal.Zero
	positionWeight := 0.0
	for _, record := range combined.Records {
		attributed = attributed.Add(record.AttributedRevenue)
		positionWeight += record.Position * float64(record.Clicks)
	}

	metrics := map[string]decimal.Decimal{
		domain.MetricSessions:          decimal.NewFromInt(int64(sessions)),
		domain.MetricRevenue:           revenue,
		domain.MetricConversions:       conversions,
		domain.MetricClicks:            decimal.NewFromInt(int64(clicks)),
		domain.MetricImpressions:       decimal.NewFromInt(int64(impressions)),
		domain.MetricAvgCTR:            decimal.Zero,
		domain.MetricAvgPosition:       decimal.Zero,
		domain.MetricAttributedRevenue: attributed,
		domain.MetricRevenuePerClick:   decimal.Zero,
	}
	if impressions > 0 {
		metrics[domain.MetricAvgCTR] = decimal.NewFromInt(int64(clicks)).
			DivRound(decimal.NewFromInt(int64(impressions)), 4)
	}
	if clicks > 0 {
		metrics[domain.MetricAvgPosition] = decimal.NewFromFloat(positionWeight / float64(clicks)).Round(2)
		metrics[domain.MetricRevenuePerClick] = attributed.DivRound(decimal.NewFromInt(int64(clicks)), 2)
	}

	return &domain.WindowSummary{
		Period:    combined.Period,
		FromCache: combined.FromCache,
		Metrics:   metrics,
	}, nil
}

// CacheStats and ClearCache pass through to the cache layer so callers
// never need a handle on it.
func (e *Engine) CacheStats() ([]store.CacheNamespaceStats, error) {
	return e.cache.Stats()
}

func (e *Engine) ClearCache() (int, error) {
	removed, err := e.cache.Clear()
	if err != nil {
		return 0, err
	}
	e.logger.Info().Int("entries", removed).Msg("cache cleared")
	return removed, nil
}

type queryAggregate struct {
	clicks         int
	impressions    int
	pages          map[string]struct{}
	revenue        decimal.Decimal
	conversions    decimal.Decimal
	positionWeight float64
	positionSum    float64
	positioned     int
}

// aggregateByQuery folds attributed records into one row per query. The
// average position is clicks-weighted; queries whose records all have zero
// clicks fall back to a plain average of their known positions.
func aggregateByQuery(records []domain.AttributedRecord) []domain.QueryRevenue {
	byQuery := make(map[string]*queryAggregate)
	for _, record := range records {
		agg, ok := byQuery[record.Query]
		if !ok {
			agg = &queryAggregate{pages: make(map[string]struct{})}
			byQuery[record.Query] = agg
		}
		agg.pages[record.Page] = struct{}{}
		agg.clicks += record.Clicks
		agg.impressions += record.Impressions
		agg.revenue = agg.revenue.Add(record.AttributedRevenue)
		agg.conversions = agg.conversions.Add(record.AttributedConversions)
		agg.positionWeight += record.Position * float64(record.Clicks)
		if record.Position > 0 {
			agg.positionSum += record.Position
			agg.positioned++
		}
	}

	rows := make([]domain.QueryRevenue, 0, len(byQuery))
	for query, agg := range byQuery {
		row := domain.QueryRevenue{
			Query:       query,
			Pages:       len(agg.pages),
			Clicks:      agg.clicks,
			Impressions: agg.impressions,
			Revenue:     agg.revenue,
			Conversions: agg.conversions,
		}
		switch {
		case agg.clicks > 0:
			row.AvgPosition = agg.positionWeight / float64(agg.clicks)
		case agg.positioned > 0:
			row.AvgPosition = agg.positionSum / float64(agg.positioned)
		}
		rows = append(rows, row)
	}
	return rows
}
