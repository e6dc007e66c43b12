package domain

import "github.com/shopspring/decimal"

// TrafficRow is aggregated traffic for one landing page over the requested
// window, as reported by the analytics source.
type TrafficRow struct {
	Page        string
	Sessions    int
	Revenue     decimal.Decimal
	Conversions decimal.Decimal
	Medium      string // organic
	Source      string // google
}

// QueryRow is the performance of one (query, page) pair over the requested
// window, as reported by the search source.
type QueryRow struct {
	Query       string
	Page        string
	Clicks      int
	Impressions int
	Position    float64 // average rank, 1 is the top result
}

// AttributedRecord assigns a share of one page's revenue and conversions to
// a single query, proportional to the query's share of the page's clicks.
// Records are derived per report run and never persisted.
type AttributedRecord struct {
	Query                 string
	Page                  string
	Clicks                int
	Impressions           int
	Position              float64
	ClickShare            decimal.Decimal
	AttributedRevenue     decimal.Decimal
	AttributedConversions decimal.Decimal
}

// PageRollup is the per-page view of one attribution pass: analytics totals
// joined with search click totals for the same normalized page.
type PageRollup struct {
	Page        string
	Sessions    int
	Revenue     decimal.Decimal
	Conversions decimal.Decimal
	Clicks      int
	Impressions int

	// Dark marks a page that earned revenue without a single recorded
	// search click, so none of its revenue could be attributed.
	Dark bool
}

// SourceFlags reports, per source, whether the rows behind a report were
// served from the cache.
type SourceFlags struct {
	Analytics bool
	Search    bool
}

// RowWarnings counts malformed source rows dropped during validation.
type RowWarnings struct {
	Traffic int
	Queries int
}

// CombineResult is the complete output of one attribution pass over a
// trailing window.
type CombineResult struct {
	Records []AttributedRecord
	Pages   []PageRollup

	FromCache SourceFlags
	Period    TimePeriod
	Skipped   RowWarnings

	// DarkRevenue is the summed revenue of dark pages. It is excluded
	// from Records but reported so totals still reconcile.
	DarkRevenue decimal.Decimal
	DarkPages   int
}
