package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Baseline describes one stored snapshot of the full report bundle.
type Baseline struct {
	ID         string
	Label      string
	CreatedAt  time.Time
	WindowDays int
	Summary    map[string]decimal.Decimal
	Files      []string
}

// MetricDelta pairs a baseline metric with its freshly computed value.
type MetricDelta struct {
	Metric   string
	Baseline decimal.Decimal
	Current  decimal.Decimal

	// Change is the formatted percent change, e.g. "+12.3%" or "-4.0%".
	// A metric growing from zero reports "+∞"; zero to zero is "0.0%".
	Change string
}

// BaselineComparison is the delta table between a stored baseline and the
// current state of the same trailing window.
type BaselineComparison struct {
	Label      string
	CreatedAt  time.Time
	WindowDays int
	Deltas     []MetricDelta
}
