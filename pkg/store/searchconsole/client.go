// Package searchconsole fetches (query, page) performance rows from the
// search analytics API.
package searchconsole

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
	"github.com/seo-tools/searchledger/pkg/store/client"
)

const (
	SourceName     = "search"
	DefaultBaseURL = "https://searchconsole.googleapis.com"

	// maxPageSize is the largest rowLimit the API accepts per request.
	maxPageSize = 25000

	dateLayout = "2006-01-02"
)

type Config struct {
	BaseURL  string
	Site     string
	Token    string
	Timeout  time.Duration
	RetryMax int

	// PageSize caps rows per request; values outside (0, maxPageSize]
	// fall back to maxPageSize.
	PageSize int

	// Clock overrides time.Now for the window date math.
	Clock func() time.Time
}

type Client struct {
	http     *retryablehttp.Client
	cfg      Config
	pageSize int
	clock    func() time.Time
	logger   zerolog.Logger
}

func NewClient(logger zerolog.Logger, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return &Client{
		http:     client.NewRetryable(logger, client.Options{Timeout: cfg.Timeout, RetryMax: cfg.RetryMax}),
		cfg:      cfg,
		pageSize: pageSize,
		clock:    clock,
		logger:   logger,
	}
}

func (c *Client) Name() string {
	return SourceName
}

type queryRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit"`
	StartRow   int      `json:"startRow,omitempty"`
}

type queryResponseRow struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

type queryResponse struct {
	Rows []queryResponseRow `json:"rows"`
}

// FetchQueries returns up to limit (query, page) rows for the trailing
// window, paging with startRow until the API runs dry or the limit is hit.
func (c *Client) FetchQueries(ctx context.Context, days, limit int) ([]store.QueryRow, error) {
	if limit <= 0 {
		limit = maxPageSize
	}

	end := c.clock().UTC()
	start := end.AddDate(0, 0, -days)

	var (
		rows     []store.QueryRow
		skipped  int
		startRow int
	)

	for len(rows) < limit {
		pageLimit := min(c.pageSize, limit-len(rows))

		page, err := c.query(ctx, start, end, pageLimit, startRow)
		if err != nil {
			return nil, &domain.SourceError{Source: SourceName, Days: days, Err: err}
		}
		if len(page.Rows) == 0 {
			break
		}

		for _, r := range page.Rows {
			row, err := mapQueryRow(r)
			if err != nil {
				skipped++
				continue
			}
			rows = append(rows, row)
		}

		startRow += len(page.Rows)
		if len(page.Rows) < pageLimit {
			break
		}
	}

	if skipped > 0 {
		c.logger.Warn().Int("rows", skipped).Int("days", days).Msg("skipped unparsable search rows")
	}

	return rows, nil
}

func (c *Client) query(ctx context.Context, start, end time.Time, rowLimit, startRow int) (*queryResponse, error) {
	body := queryRequest{
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
		Dimensions: []string{"query", "page"},
		RowLimit:   rowLimit,
		StartRow:   startRow,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/webmasters/v3/sites/%s/searchAnalytics/query",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Site))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, payload)
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

	var page queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode search analytics response: %w", err)
	}

	return &page, nil
}

func mapQueryRow(r queryResponseRow) (store.QueryRow, error) {
	if len(r.Keys) < 2 {
		return store.QueryRow{}, fmt.Errorf("expected [query, page] keys, got %d", len(r.Keys))
	}

	return store.QueryRow{
		Query:       r.Keys[0],
		Page:        r.Keys[1],
		Clicks:      int(math.Round(r.Clicks)),
		Impressions: int(math.Round(r.Impressions)),
		Position:    r.Position,
	}, nil
}
