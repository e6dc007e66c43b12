package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type Baseline struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	CreatedAt  time.Time       `json:"created_at"`
	WindowDays int             `json:"window_days"`
	Summary    []SummaryMetric `json:"summary"`
	Files      []string        `json:"files"`
}

type CreateBaselineRequest struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

type MetricDelta struct {
	Metric   string          `json:"metric"`
	Baseline decimal.Decimal `json:"baseline"`
	Current  decimal.Decimal `json:"current"`
	Change   string          `json:"change"`
}

type BaselineComparison struct {
	Label      string        `json:"label"`
	CreatedAt  time.Time     `json:"created_at"`
	WindowDays int           `json:"window_days"`
	Deltas     []MetricDelta `json:"deltas"`
}
