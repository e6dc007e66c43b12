// Package analytics fetches landing-page traffic from the analytics
// reporting API.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
	"github.com/seo-tools/searchledger/pkg/store/client"
)

const (
	SourceName     = "analytics"
	DefaultBaseURL = "https://analyticsdata.googleapis.com"

	pageSize = 10000
)

type Config struct {
	BaseURL  string
	Property string
	Token    string
	Timeout  time.Duration
	RetryMax int
}

type Client struct {
	http   *retryablehttp.Client
	cfg    Config
	logger zerolog.Logger
}

func NewClient(logger zerolog.Logger, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return &Client{
		http:   client.NewRetryable(logger, client.Options{Timeout: cfg.Timeout, RetryMax: cfg.RetryMax}),
		cfg:    cfg,
		logger: logger,
	}
}

func (c *Client) Name() string {
	return SourceName
}

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type namedRef struct {
	Name string `json:"name"`
}

type runReportRequest struct {
	DateRanges []dateRange `json:"dateRanges"`
	Dimensions []namedRef  `json:"dimensions"`
	Metrics    []namedRef  `json:"metrics"`
	Limit      int64       `json:"limit,string"`
	Offset     int64       `json:"offset,string,omitempty"`
}

type reportValue struct {
	Value string `json:"value"`
}

type reportRow struct {
	DimensionValues []reportValue `json:"dimensionValues"`
	MetricValues    []reportValue `json:"metricValues"`
}

type runReportResponse struct {
	Rows     []reportRow `json:"rows"`
	RowCount int         `json:"rowCount"`
}

// FetchTraffic returns one row per (landing page, medium, source) for the
// trailing window, paging through the report until the API is exhausted.
// Rows the API returns in a shape we cannot parse are dropped and counted.
func (c *Client) FetchTraffic(ctx context.Context, days int) ([]store.TrafficRow, error) {
	var (
		rows    []store.TrafficRow
		skipped int
		offset  int64
	)

	for {
		report, err := c.runReport(ctx, days, offset)
		if err != nil {
			return nil, &domain.SourceError{Source: SourceName, Days: days, Err: err}
		}

		for _, r := range report.Rows {
			row, err := mapReportRow(r)
			if err != nil {
				skipped++
				continue
			}
			rows = append(rows, row)
		}

		offset += int64(len(report.Rows))
		if len(report.Rows) == 0 || offset >= int64(report.RowCount) {
			break
		}
	}

	if skipped > 0 {
		c.logger.Warn().Int("rows", skipped).Int("days", days).Msg("skipped unparsable analytics rows")
	}

	return rows, nil
}

func (c *Client) runReport(ctx context.Context, days int, offset int64) (*runReportResponse, error) {
	body := runReportRequest{
		DateRanges: []dateRange{{StartDate: fmt.Sprintf("%ddaysAgo", days), EndDate: "today"}},
		Dimensions: []namedRef{{Name: "landingPage"}, {Name: "sessionMedium"}, {Name: "sessionSource"}},
		Metrics:    []namedRef{{Name: "sessions"}, {Name: "totalRevenue"}, {Name: "conversions"}},
		Limit:      pageSize,
		Offset:     offset,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/properties/%s:runReport", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Property)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, client.ErrorSnippet(resp))
	}

	var report runReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode runReport response: %w", err)
	}

	return &report, nil
}

func mapReportRow(r reportRow) (store.TrafficRow, error) {
	if len(r.DimensionValues) < 3 || len(r.MetricValues) < 3 {
		return store.TrafficRow{}, fmt.Errorf("short row: %d dimensions, %d metrics", len(r.DimensionValues), len(r.MetricValues))
	}

	sessions, err := parseCount(r.MetricValues[0].Value)
	if err != nil {
		return store.TrafficRow{}, fmt.Errorf("sessions: %w", err)
	}
	revenue, err := decimal.NewFromString(r.MetricValues[1].Value)
	if err != nil {
		return store.TrafficRow{}, fmt.Errorf("revenue: %w", err)
	}
	conversions, err := decimal.NewFromString(r.MetricValues[2].Value)
	if err != nil {
		return store.TrafficRow{}, fmt.Errorf("conversions: %w", err)
	}

	return store.TrafficRow{
		Page:        r.DimensionValues[0].Value,
		Medium:      r.DimensionValues[1].Value,
		Source:      r.DimensionValues[2].Value,
		Sessions:    sessions,
		Revenue:     revenue,
		Conversions: conversions,
	}, nil
}

// parseCount accepts both "123" and "123.0"; the API emits either depending
// on the metric aggregation.
func parseCount(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}
