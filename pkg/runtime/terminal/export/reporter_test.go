package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-tools/searchledger/pkg/models/api"
)

func sampleQueriesReport() api.RevenueQueriesReport {
	return api.RevenueQueriesReport{
		Data: []api.QueryRevenue{
			{
				Query:       "work boots",
				Pages:       2,
				Clicks:      100,
				Impressions: 1000,
				AvgPosition: 3.6,
				Revenue:     decimal.RequireFromString("425.50"),
				Conversions: decimal.RequireFromString("4.25"),
			},
			{
				Query:       "steel toe boots",
				Pages:       1,
				Clicks:      25,
				Impressions: 400,
				AvgPosition: 5.2,
				Revenue:     decimal.RequireFromString("75.00"),
				Conversions: decimal.RequireFromString("0.75"),
			},
		},
		TotalQueries: 5,
		DarkRevenue:  decimal.RequireFromString("40.00"),
		FromCache:    api.SourceFlags{Analytics: true, Search: true},
		Period: api.TimePeriod{
			Start:    time.Date(2026, 7, 26, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
			Duration: 30,
		},
	}
}

func TestRevenueQueriesTable(t *testing.T) {
	out := &bytes.Buffer{}
	reporter := NewReporter(out)

	require.NoError(t, reporter.RevenueQueries(sampleQueriesReport()))

	text := out.String()
	assert.Contains(t, text, "Revenue by query (30 days)")
	assert.Contains(t, text, "Period: 2026-07-26 to 2026-08-25")
	assert.Contains(t, text, "| work boots")
	assert.Contains(t, text, "| 425.50")
	assert.Contains(t, text, "Queries: 2 of 5")
	assert.Contains(t, text, "Dark revenue (pages without recorded clicks): 40.00")
	assert.Contains(t, text, "Served from cache: analytics, search")
}

func TestTableColumnsAlign(t *testing.T) {
	out := &bytes.Buffer{}
	reporter := NewReporter(out)

	require.NoError(t, reporter.RevenueQueries(sampleQueriesReport()))

	var tableLines []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "|") || strings.HasPrefix(line, "+") {
			tableLines = append(tableLines, line)
		}
	}

	require.NotEmpty(t, tableLines)
	width := len(tableLines[0])
	for _, line := range tableLines {
		assert.Len(t, line, width)
	}
}

func TestJSONModeEncodesApiShape(t *testing.T) {
	out := &bytes.Buffer{}
	reporter := NewReporter(out)
	reporter.SetJSON(true)

	report := sampleQueriesReport()
	require.NoError(t, reporter.RevenueQueries(report))

	var decoded api.RevenueQueriesReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, report.TotalQueries, decoded.TotalQueries)
	assert.Len(t, decoded.Data, 2)
	assert.Equal(t, "work boots", decoded.Data[0].Query)
	assert.True(t, decoded.Data[0].Revenue.Equal(decimal.RequireFromString("425.50")))
}

func TestComparisonTable(t *testing.T) {
	out := &bytes.Buffer{}
	reporter := NewReporter(out)

	err := reporter.Comparison(api.BaselineComparison{
		Label:      "pre-launch",
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		WindowDays: 30,
		Deltas: []api.MetricDelta{
			{
				Metric:   "revenue",
				Baseline: decimal.RequireFromString("500.00"),
				Current:  decimal.RequireFromString("550.00"),
				Change:   "+10.0%",
			},
			{
				Metric:   "sessions",
				Baseline: decimal.RequireFromString("150"),
				Current:  decimal.RequireFromString("120"),
				Change:   "-20.0%",
			},
		},
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, `Baseline "pre-launch" vs current`)
	assert.Contains(t, text, "+10.0%")
	assert.Contains(t, text, "-20.0%")
	assert.Contains(t, text, "Snapshot taken 2026-08-01, 30 day window.")
}

func TestAccountsPlainList(t *testing.T) {
	out := &bytes.Buffer{}
	reporter := NewReporter(out)

	require.NoError(t, reporter.Accounts([]api.Account{{Name: "shop"}, {Name: "blog"}}))
	assert.Equal(t, "shop\nblog\n", out.String())

	out.Reset()
	require.NoError(t, reporter.Accounts(nil))
	assert.Equal(t, "No accounts configured.\n", out.String())
}

func TestEmptyCacheStats(t *testing.T) {
	out := &bytes.Buffer{}
	reporter := NewReporter(out)

	require.NoError(t, reporter.CacheStats(api.CacheStats{}))
	assert.Equal(t, "Cache is empty.\n", out.String())
}
