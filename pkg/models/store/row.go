package store

import "github.com/shopspring/decimal"

// TrafficRow is the persisted form of one analytics landing-page row. Cache
// entries store arrays of these, so field tags are a compatibility contract.
type TrafficRow struct {
	Page        string          `json:"page"`
	Sessions    int             `json:"sessions"`
	Revenue     decimal.Decimal `json:"revenue"`
	Conversions decimal.Decimal `json:"conversions"`
	Medium      string          `json:"medium,omitempty"`
	Source      string          `json:"source,omitempty"`
}

// QueryRow is the persisted form of one search (query, page) row.
type QueryRow struct {
	Query       string  `json:"query"`
	Page        string  `json:"page"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	Position    float64 `json:"position"`
}
