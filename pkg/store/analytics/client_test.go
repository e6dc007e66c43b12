package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-tools/searchledger/pkg/models/domain"
)

func TestClient_FetchTraffic_ParsesReport(t *testing.T) {
	var gotReq runReportRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/properties/prop-123:runReport", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := runReportResponse{
			RowCount: 2,
			Rows: []reportRow{
				{
					DimensionValues: []reportValue{{Value: "/boots/alpine"}, {Value: "organic"}, {Value: "google"}},
					MetricValues:    []reportValue{{Value: "120"}, {Value: "500.5"}, {Value: "5"}},
				},
				{
					DimensionValues: []reportValue{{Value: "/home"}, {Value: "organic"}, {Value: "bing"}},
					MetricValues:    []reportValue{{Value: "80.0"}, {Value: "0"}, {Value: "0"}},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), Config{BaseURL: srv.URL, Property: "prop-123", Token: "token-abc"})

	rows, err := c.FetchTraffic(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "/boots/alpine", rows[0].Page)
	assert.Equal(t, 120, rows[0].Sessions)
	assert.True(t, rows[0].Revenue.Equal(decimal.RequireFromString("500.5")))
	assert.True(t, rows[0].Conversions.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "organic", rows[0].Medium)
	assert.Equal(t, "google", rows[0].Source)
	assert.Equal(t, 80, rows[1].Sessions)

	require.Len(t, gotReq.DateRanges, 1)
	assert.Equal(t, "30daysAgo", gotReq.DateRanges[0].StartDate)
	assert.Equal(t, "today", gotReq.DateRanges[0].EndDate)
	assert.Equal(t, []namedRef{{Name: "landingPage"}, {Name: "sessionMedium"}, {Name: "sessionSource"}}, gotReq.Dimensions)
	assert.Equal(t, []namedRef{{Name: "sessions"}, {Name: "totalRevenue"}, {Name: "conversions"}}, gotReq.Metrics)
}

func TestClient_FetchTraffic_PagesUntilRowCount(t *testing.T) {
	var offsets []int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req runReportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		offsets = append(offsets, req.Offset)

		resp := runReportResponse{RowCount: 3}
		if req.Offset == 0 {
			resp.Rows = []reportRow{
				{DimensionValues: []reportValue{{Value: "/a"}, {Value: "organic"}, {Value: "google"}}, MetricValues: []reportValue{{Value: "1"}, {Value: "10"}, {Value: "0"}}},
				{DimensionValues: []reportValue{{Value: "/b"}, {Value: "organic"}, {Value: "google"}}, MetricValues: []reportValue{{Value: "2"}, {Value: "20"}, {Value: "0"}}},
			}
		} else {
			resp.Rows = []reportRow{
				{DimensionValues: []reportValue{{Value: "/c"}, {Value: "organic"}, {Value: "google"}}, MetricValues: []reportValue{{Value: "3"}, {Value: "30"}, {Value: "0"}}},
			}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), Config{BaseURL: srv.URL, Property: "p", Token: "t"})

	rows, err := c.FetchTraffic(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, []int64{0, 2}, offsets)
	assert.Equal(t, "/c", rows[2].Page)
}

func TestClient_FetchTraffic_SkipsUnparsableRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := runReportResponse{
			RowCount: 3,
			Rows: []reportRow{
				{DimensionValues: []reportValue{{Value: "/a"}, {Value: "organic"}, {Value: "google"}}, MetricValues: []reportValue{{Value: "1"}, {Value: "10"}, {Value: "0"}}},
				{DimensionValues: []reportValue{{Value: "/bad"}, {Value: "organic"}, {Value: "google"}}, MetricValues: []reportValue{{Value: "1"}, {Value: "not-a-number"}, {Value: "0"}}},
				{DimensionValues: []reportValue{{Value: "/short"}}, MetricValues: []reportValue{{Value: "1"}}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), Config{BaseURL: srv.URL, Property: "p", Token: "t"})

	rows, err := c.FetchTraffic(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "/a", rows[0].Page)
}

func TestClient_FetchTraffic_UpstreamErrorIsSourceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"insufficient permissions"}}`))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), Config{BaseURL: srv.URL, Property: "p", Token: "t"})

	_, err := c.FetchTraffic(context.Background(), 30)
	require.Error(t, err)

	var srcErr *domain.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, SourceName, srcErr.Source)
	assert.Equal(t, 30, srcErr.Days)
	assert.Contains(t, srcErr.Error(), "insufficient permissions")
}

func TestClient_FetchTraffic_EmptyReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(runReportResponse{}))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), Config{BaseURL: srv.URL, Property: "p", Token: "t"})

	rows, err := c.FetchTraffic(context.Background(), 30)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "integer", input: "123", want: 123},
		{name: "float", input: "123.0", want: 123},
		{name: "rounds half up", input: "7.5", want: 8},
		{name: "garbage", input: "n/a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_FetchTraffic_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(runReportResponse{}))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop(), Config{BaseURL: srv.URL, Property: "p", Token: "t"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchTraffic(ctx, 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
