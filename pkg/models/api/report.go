package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type TimePeriod struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"duration_days"`
}

type SourceFlags struct {
	Analytics bool `json:"analytics"`
	Search    bool `json:"search"`
}

type QueryRevenue struct {
	Query       string          `json:"query"`
	Pages       int             `json:"pages"`
	Clicks      int             `json:"clicks"`
	Impressions int             `json:"impressions"`
	AvgPosition float64         `json:"avg_position"`
	Revenue     decimal.Decimal `json:"attributed_revenue"`
	Conversions decimal.Decimal `json:"attributed_conversions"`
}

type RevenueQueriesReport struct {
	Data         []QueryRevenue  `json:"data"`
	TotalQueries int             `json:"total_queries"`
	DarkRevenue  decimal.Decimal `json:"dark_revenue"`
	FromCache    SourceFlags     `json:"from_cache"`
	Period       TimePeriod      `json:"period"`
}

type CategoryPerformance struct {
	Category          string          `json:"category"`
	Pages             int             `json:"pages"`
	Sessions          int             `json:"sessions"`
	Clicks            int             `json:"clicks"`
	Revenue           decimal.Decimal `json:"revenue"`
	AttributedRevenue decimal.Decimal `json:"attributed_revenue"`
	Conversions       decimal.Decimal `json:"conversions"`
}

type CategoryReport struct {
	Data      []CategoryPerformance `json:"data"`
	FromCache SourceFlags           `json:"from_cache"`
	Period    TimePeriod            `json:"period"`
}

type ContentOpportunity struct {
	Query            string  `json:"query"`
	Pages            int     `json:"pages"`
	Clicks           int     `json:"clicks"`
	Impressions      int     `json:"impressions"`
	AvgPosition      float64 `json:"avg_position"`
	OpportunityScore float64 `json:"opportunity_score"`
}

type OpportunityReport struct {
	Data      []ContentOpportunity `json:"data"`
	FromCache SourceFlags          `json:"from_cache"`
	Period    TimePeriod           `json:"period"`
}

type PageQuery struct {
	Query      string          `json:"query"`
	Clicks     int             `json:"clicks"`
	ClickShare decimal.Decimal `json:"click_share"`
}

type PageSummary struct {
	Page        string          `json:"page"`
	Category    string          `json:"category"`
	Sessions    int             `json:"sessions"`
	Revenue     decimal.Decimal `json:"revenue"`
	Conversions decimal.Decimal `json:"conversions"`
	Clicks      int             `json:"clicks"`
	TopQueries  []PageQuery     `json:"top_queries"`
}

type PageSummaryReport struct {
	Data      []PageSummary `json:"data"`
	FromCache SourceFlags   `json:"from_cache"`
	Period    TimePeriod    `json:"period"`
}

// SummaryMetric keeps summary output ordered; a JSON object would not.
type SummaryMetric struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

type WindowSummary struct {
	Metrics   []SummaryMetric `json:"metrics"`
	FromCache SourceFlags     `json:"from_cache"`
	Period    TimePeriod      `json:"period"`
}
