// Package attribution joins analytics page revenue with search query
// clicks and splits each page's revenue across its queries by click share.
package attribution

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/seo-tools/searchledger/pkg/adapters"
	"github.com/seo-tools/searchledger/pkg/metrics"
	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
	"github.com/seo-tools/searchledger/pkg/store/cache"
)

// clickShareScale is the decimal precision of click shares. Six places keep
// shares distinguishable even on pages with tens of thousands of clicks.
const clickShareScale = 6

// AnalyticsSource supplies landing-page traffic rows for a trailing window.
type AnalyticsSource interface {
	Name() string
	FetchTraffic(ctx context.Context, days int) ([]store.TrafficRow, error)
}

// SearchSource supplies (query, page) performance rows for a trailing
// window. Implementations handle their own pagination up to limit rows.
type SearchSource interface {
	Name() string
	FetchQueries(ctx context.Context, days, limit int) ([]store.QueryRow, error)
}

// Service is the report surface the engine exposes to HTTP handlers and
// terminal commands.
type Service interface {
	Combine(ctx context.Context, days int) (*domain.CombineResult, error)
	RevenueQueries(ctx context.Context, days, limit int) (*domain.RevenueQueriesReport, error)
	CategoryPerformance(ctx context.Context, days int) (*domain.CategoryReport, error)
	ContentOpportunities(ctx context.Context, days int) (*domain.OpportunityReport, error)
	PageSummaries(ctx context.Context, days int) (*domain.PageSummaryReport, error)
	Summary(ctx context.Context, days int) (*domain.WindowSummary, error)
	CacheStats() ([]store.CacheNamespaceStats, error)
	ClearCache() (int, error)
}

type Settings struct {
	// SearchRowLimit is forwarded to the search source as its row budget.
	SearchRowLimit int

	// MinOpportunityClicks is the click floor below which a query is too
	// thin to call a content opportunity.
	MinOpportunityClicks int

	// TopQueriesPerPage caps the queries listed per page summary.
	TopQueriesPerPage int

	Categories CategoryRules
}

func DefaultSettings() Settings {
	return Settings{
		SearchRowLimit:       1000,
		MinOpportunityClicks: 10,
		TopQueriesPerPage:    5,
		Categories:           DefaultCategoryRules(),
	}
}

type Dependencies struct {
	Analytics AnalyticsSource
	Search    SearchSource
	Cache     *cache.Cache
	Metrics   *metrics.Metrics
	Clock     func() time.Time
}

type Config struct {
	Settings     Settings
	Dependencies Dependencies
}

type Engine struct {
	analytics AnalyticsSource
	search    SearchSource
	cache     *cache.Cache
	settings  Settings
	metrics   *metrics.Metrics
	clock     func() time.Time
	logger    zerolog.Logger
}

func NewEngine(logger zerolog.Logger, cfg Config) *Engine {
	settings := cfg.Settings
	defaults := DefaultSettings()
	if settings.SearchRowLimit <= 0 {
		settings.SearchRowLimit = defaults.SearchRowLimit
	}
	if settings.MinOpportunityClicks <= 0 {
		settings.MinOpportunityClicks = defaults.MinOpportunityClicks
	}
	if settings.TopQueriesPerPage <= 0 {
		settings.TopQueriesPerPage = defaults.TopQueriesPerPage
	}
	if len(settings.Categories) == 0 {
		settings.Categories = defaults.Categories
	}

	clock := cfg.Dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Engine{
		analytics: cfg.Dependencies.Analytics,
		search:    cfg.Dependencies.Search,
		cache:     cfg.Dependencies.Cache,
		settings:  settings,
		metrics:   cfg.Dependencies.Metrics,
		clock:     clock,
		logger:    logger,
	}
}

// Combine runs one attribution pass over the trailing window: fetch both
// sources (through the cache, concurrently), validate rows, join them on
// normalized page paths and split each page's revenue across its queries
// by click share. Within a page the rounding remainder goes to the last
// clicked query, so attributed amounts always sum to the page's revenue.
func (e *Engine) Combine(ctx context.Context, days int) (*domain.CombineResult, error) {
	if days <= 0 {
		return nil, fmt.Errorf("window must be a positive number of days, got %d", days)
	}

	trafficRows, queryRows, flags, err := e.fetchWindow(ctx, days)
	if err != nil {
		return nil, err
	}

	traffic, skippedTraffic := sanitizeTraffic(adapters.MapTrafficRowsStoreToDomain(trafficRows))
	queries, skippedQueries := sanitizeQueries(adapters.MapQueryRowsStoreToDomain(queryRows))

	if skippedTraffic+skippedQueries > 0 {
		e.logger.Warn().
			Int("traffic_rows", skippedTraffic).
			Int("query_rows", skippedQueries).
			Int("days", days).
			Msg("dropped rows failing validation")
		e.metrics.AddRowsSkipped(e.analytics.Name(), skippedTraffic)
		e.metrics.AddRowsSkipped(e.search.Name(), skippedQueries)
	}

	result := &domain.CombineResult{
		FromCache:   flags,
		Period:      e.period(days),
		Skipped:     domain.RowWarnings{Traffic: skippedTraffic, Queries: skippedQueries},
		DarkRevenue: decimal.Zero,
	}

	totals := make(map[string]*pageTotals)
	for _, row := range traffic {
		page := NormalizePage(row.Page)
		pt, ok := totals[page]
		if !ok {
			pt = &pageTotals{}
			totals[page] = pt
		}
		pt.sessions += row.Sessions
		pt.revenue = pt.revenue.Add(row.Revenue)
		pt.conversions = pt.conversions.Add(row.Conversions)
	}

	grouped := make(map[string][]domain.QueryRow)
	for _, row := range queries {
		row.Page = NormalizePage(row.Page)
		grouped[row.Page] = append(grouped[row.Page], row)
	}
	for page, rows := range grouped {
		grouped[page] = mergeDuplicateQueries(rows)
	}

	// Either source coming back empty is a valid, reportable state, not an
	// error: with nothing to join no records are attributed. Page rollups
	// are still built so callers can see which side had data.
	join := len(traffic) > 0 && len(queries) > 0

	for _, page := range sortedPages(totals, grouped) {
		rollup := domain.PageRollup{Page: page}

		var revenue, conversions decimal.Decimal
		if pt, ok := totals[page]; ok {
			rollup.Sessions = pt.sessions
			revenue = pt.revenue
			conversions = pt.conversions
		}
		rollup.Revenue = revenue
		rollup.Conversions = conversions

		rows := grouped[page]
		totalClicks := 0
		for _, r := range rows {
			totalClicks += r.Clicks
			rollup.Impressions += r.Impressions
		}
		rollup.Clicks = totalClicks

		if totalClicks == 0 {
			if revenue.IsPositive() {
				rollup.Dark = true
				result.DarkRevenue = result.DarkRevenue.Add(revenue)
				result.DarkPages++
			}
			result.Pages = append(result.Pages, rollup)
			continue
		}

		if join {
			sortForAttribution(rows)
			result.Records = append(result.Records, attributePage(page, rows, totalClicks, revenue, conversions)...)
		}
		result.Pages = append(result.Pages, rollup)
	}

	return result, nil
}

func (e *Engine) period(days int) domain.TimePeriod {
	end := e.clock().UTC()
	return domain.TimePeriod{
		Start:    end.AddDate(0, 0, -days),
		End:      end,
		Duration: days,
	}
}

// fetchWindow pulls both sources through the cache concurrently. Either
// source failing fails the whole window; a half-joined report would be
// worse than no report.
func (e *Engine) fetchWindow(ctx context.Context, days int) ([]store.TrafficRow, []store.QueryRow, domain.SourceFlags, error) {
	var (
		trafficRows []store.TrafficRow
		queryRows   []store.QueryRow
		flags       domain.SourceFlags
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		key := cache.Key{Source: e.analytics.Name(), WindowDays: days}
		start := time.Now()

		rows, fromCache, err := cache.GetOrFetchAs(gctx, e.cache, key, func(ctx context.Context) ([]store.TrafficRow, error) {
			return e.analytics.FetchTraffic(ctx, days)
		})
		if err != nil {
			return err
		}
		if !fromCache {
			e.metrics.ObserveFetch(e.analytics.Name(), time.Since(start))
			e.metrics.AddRowsFetched(e.analytics.Name(), len(rows))
		}

		trafficRows = rows
		flags.Analytics = fromCache
		return nil
	})

	g.Go(func() error {
		key := cache.Key{
			Source:     e.search.Name(),
			WindowDays: days,
			Params:     fmt.Sprintf("limit=%d", e.settings.SearchRowLimit),
		}
		start := time.Now()

		rows, fromCache, err := cache.GetOrFetchAs(gctx, e.cache, key, func(ctx context.Context) ([]store.QueryRow, error) {
			return e.search.FetchQueries(ctx, days, e.settings.SearchRowLimit)
		})
		if err != nil {
			return err
		}
		if !fromCache {
			e.metrics.ObserveFetch(e.search.Name(), time.Since(start))
			e.metrics.AddRowsFetched(e.search.Name(), len(rows))
		}

		queryRows = rows
		flags.Search = fromCache
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, domain.SourceFlags{}, err
	}

	return trafficRows, queryRows, flags, nil
}

type pageTotals struct {
	sessions    int
	revenue     decimal.Decimal
	conversions decimal.Decimal
}

func sortedPages(totals map[string]*pageTotals, grouped map[string][]domain.QueryRow) []string {
	pages := make([]string, 0, len(totals)+len(grouped))
	seen := make(map[string]struct{}, len(totals)+len(grouped))
	for page := range totals {
		pages = append(pages, page)
		seen[page] = struct{}{}
	}
	for page := range grouped {
		if _, ok := seen[page]; !ok {
			pages = append(pages, page)
		}
	}
	sort.Strings(pages)
	return pages
}

// sortForAttribution fixes the in-page order: clicks descending, ties
// broken by query so attribution is deterministic run to run.
func sortForAttribution(rows []domain.QueryRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Clicks != rows[j].Clicks {
			return rows[i].Clicks > rows[j].Clicks
		}
		return rows[i].Query < rows[j].Query
	})
}

// attributePage splits a page's revenue and conversions across its query
// rows. Every row but the last clicked one gets its rounded share; the last
// clicked row absorbs the remainder so the page total reconciles exactly.
// Rows without clicks keep a zero share.
func attributePage(page string, rows []domain.QueryRow, totalClicks int, revenue, conversions decimal.Decimal) []domain.AttributedRecord {
	lastClicked := -1
	for i, row := range rows {
		if row.Clicks > 0 {
			lastClicked = i
		}
	}

	records := make([]domain.AttributedRecord, 0, len(rows))
	total := decimal.NewFromInt(int64(totalClicks))
	remainingRevenue := revenue
	remainingConversions := conversions

	for i, row := range rows {
		share := decimal.NewFromInt(int64(row.Clicks)).DivRound(total, clickShareScale)

		var rev, conv decimal.Decimal
		switch {
		case i == lastClicked:
			rev = remainingRevenue
			conv = remainingConversions
		case row.Clicks == 0:
			rev = decimal.Zero
			conv = decimal.Zero
		default:
			rev = revenue.Mul(share).Round(2)
			if rev.GreaterThan(remainingRevenue) {
				rev = remainingRevenue
			}
			conv = conversions.Mul(share).Round(2)
			if conv.GreaterThan(remainingConversions) {
				conv = remainingConversions
			}
			remainingRevenue = remainingRevenue.Sub(rev)
			remainingConversions = remainingConversions.Sub(conv)
		}

		records = append(records, domain.AttributedRecord{
			Query:                 row.Query,
			Page:                  page,
			Clicks:                row.Clicks,
			Impressions:           row.Impressions,
			Position:              row.Position,
			ClickShare:            share,
			AttributedRevenue:     rev,
			AttributedConversions: conv,
		})
	}

	return records
}
