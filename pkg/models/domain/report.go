package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimePeriod represents the trailing window a report covers.
type TimePeriod struct {
	Start    time.Time
	End      time.Time
	Duration int // in days
}

// QueryRevenue aggregates attribution for one query across every page it
// drives traffic to.
type QueryRevenue struct {
	Query       string
	Pages       int
	Clicks      int
	Impressions int
	AvgPosition float64 // clicks-weighted across pages
	Revenue     decimal.Decimal
	Conversions decimal.Decimal
}

// RevenueQueriesReport ranks queries by attributed revenue.
type RevenueQueriesReport struct {
	Data         []QueryRevenue
	TotalQueries int // before any limit was applied
	FromCache    SourceFlags
	Period       TimePeriod
	DarkRevenue  decimal.Decimal
}

// CategoryPerformance aggregates pages that share a URL category.
type CategoryPerformance struct {
	Category          string
	Pages             int
	Sessions          int
	Clicks            int
	Revenue           decimal.Decimal // page-level, dark pages included
	AttributedRevenue decimal.Decimal
	Conversions       decimal.Decimal
}

type CategoryReport struct {
	Data      []CategoryPerformance
	FromCache SourceFlags
	Period    TimePeriod
}

// ContentOpportunity is a query that earns meaningful clicks without a
// single attributed conversion on any page.
type ContentOpportunity struct {
	Query            string
	Pages            int
	Clicks           int
	Impressions      int
	AvgPosition      float64
	OpportunityScore float64
}

type OpportunityReport struct {
	Data      []ContentOpportunity
	FromCache SourceFlags
	Period    TimePeriod
}

// PageQuery is one of a page's top queries by clicks.
type PageQuery struct {
	Query      string
	Clicks     int
	ClickShare decimal.Decimal
}

// PageSummary is the per-page report row: analytics totals plus the
// page's leading queries.
type PageSummary struct {
	Page        string
	Category    string
	Sessions    int
	Revenue     decimal.Decimal
	Conversions decimal.Decimal
	Clicks      int
	TopQueries  []PageQuery
}

type PageSummaryReport struct {
	Data      []PageSummary
	FromCache SourceFlags
	Period    TimePeriod
}

// Summary metric names. Baseline manifests persist these keys, so renaming
// one breaks comparisons against existing snapshots.
const (
	MetricSessions          = "sessions"
	MetricRevenue           = "revenue"
	MetricConversions       = "conversions"
	MetricClicks            = "clicks"
	MetricImpressions       = "impressions"
	MetricAvgCTR            = "avg_ctr"
	MetricAvgPosition       = "avg_position"
	MetricAttributedRevenue = "attributed_revenue"
	MetricRevenuePerClick   = "revenue_per_click"
)

// MetricOrder fixes the presentation order of summary metrics in tables,
// manifests and comparisons.
var MetricOrder = []string{
	MetricSessions,
	MetricRevenue,
	MetricConversions,
	MetricClicks,
	MetricImpressions,
	MetricAvgCTR,
	MetricAvgPosition,
	MetricAttributedRevenue,
	MetricRevenuePerClick,
}

// WindowSummary is the scalar health snapshot of one trailing window.
type WindowSummary struct {
	Period    TimePeriod
	FromCache SourceFlags
	Metrics   map[string]decimal.Decimal
}
