package attribution

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-tools/searchledger/pkg/models/domain"
)

func TestSanitizeTraffic(t *testing.T) {
	ok := domain.TrafficRow{Page: "/a", Sessions: 10, Revenue: decimal.NewFromInt(100), Conversions: decimal.NewFromInt(1)}

	tests := []struct {
		name        string
		row         domain.TrafficRow
		wantDropped bool
	}{
		{name: "valid row kept", row: ok},
		{name: "zero revenue kept", row: domain.TrafficRow{Page: "/a", Sessions: 1}},
		{name: "empty page dropped", row: domain.TrafficRow{Sessions: 10}, wantDropped: true},
		{name: "whitespace page dropped", row: domain.TrafficRow{Page: "  ", Sessions: 10}, wantDropped: true},
		{name: "negative sessions dropped", row: domain.TrafficRow{Page: "/a", Sessions: -1}, wantDropped: true},
		{name: "negative revenue dropped", row: domain.TrafficRow{Page: "/a", Revenue: decimal.NewFromInt(-5)}, wantDropped: true},
		{name: "negative conversions dropped", row: domain.TrafficRow{Page: "/a", Conversions: decimal.NewFromInt(-1)}, wantDropped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, skipped := sanitizeTraffic([]domain.TrafficRow{tt.row})
			if tt.wantDropped {
				assert.Empty(t, valid)
				assert.Equal(t, 1, skipped)
			} else {
				assert.Len(t, valid, 1)
				assert.Zero(t, skipped)
			}
		})
	}
}

func TestSanitizeQueries(t *testing.T) {
	tests := []struct {
		name        string
		row         domain.QueryRow
		wantDropped bool
	}{
		{name: "valid row kept", row: domain.QueryRow{Query: "q", Page: "/a", Clicks: 5, Impressions: 50, Position: 2}},
		{name: "clicks equal impressions kept", row: domain.QueryRow{Query: "q", Page: "/a", Clicks: 10, Impressions: 10}},
		{name: "zero position kept", row: domain.QueryRow{Query: "q", Page: "/a", Clicks: 1, Impressions: 2}},
		{name: "empty query dropped", row: domain.QueryRow{Page: "/a", Clicks: 1, Impressions: 2}, wantDropped: true},
		{name: "empty page dropped", row: domain.QueryRow{Query: "q", Clicks: 1, Impressions: 2}, wantDropped: true},
		{name: "negative clicks dropped", row: domain.QueryRow{Query: "q", Page: "/a", Clicks: -1, Impressions: 2}, wantDropped: true},
		{name: "negative impressions dropped", row: domain.QueryRow{Query: "q", Page: "/a", Impressions: -2}, wantDropped: true},
		{name: "clicks above impressions dropped", row: domain.QueryRow{Query: "q", Page: "/a", Clicks: 3, Impressions: 2}, wantDropped: true},
		{name: "negative position dropped", row: domain.QueryRow{Query: "q", Page: "/a", Clicks: 1, Impressions: 2, Position: -1}, wantDropped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, skipped := sanitizeQueries([]domain.QueryRow{tt.row})
			if tt.wantDropped {
				assert.Empty(t, valid)
				assert.Equal(t, 1, skipped)
			} else {
				assert.Len(t, valid, 1)
				assert.Zero(t, skipped)
			}
		})
	}
}

func TestMergeDuplicateQueries(t *testing.T) {
	t.Run("distinct queries pass through", func(t *testing.T) {
		rows := []domain.QueryRow{
			{Query: "a", Page: "/p", Clicks: 1, Impressions: 10, Position: 2},
			{Query: "b", Page: "/p", Clicks: 2, Impressions: 20, Position: 3},
		}
		merged := mergeDuplicateQueries(rows)
		assert.Equal(t, rows, merged)
	})

	t.Run("duplicates merge with clicks weighted position", func(t *testing.T) {
		rows := []domain.QueryRow{
			{Query: "a", Page: "/p", Clicks: 30, Impressions: 300, Position: 4},
			{Query: "a", Page: "/p", Clicks: 10, Impressions: 100, Position: 2},
		}
		merged := mergeDuplicateQueries(rows)
		require.Len(t, merged, 1)
		assert.Equal(t, 40, merged[0].Clicks)
		assert.Equal(t, 400, merged[0].Impressions)
		assert.InDelta(t, 3.5, merged[0].Position, 1e-9)
	})

	t.Run("zero click duplicates average known positions", func(t *testing.T) {
		rows := []domain.QueryRow{
			{Query: "a", Page: "/p", Impressions: 10, Position: 5},
			{Query: "a", Page: "/p", Impressions: 20, Position: 3},
			{Query: "a", Page: "/p", Impressions: 30},
		}
		merged := mergeDuplicateQueries(rows)
		require.Len(t, merged, 1)
		assert.Zero(t, merged[0].Clicks)
		assert.Equal(t, 60, merged[0].Impressions)
		assert.InDelta(t, 4, merged[0].Position, 1e-9)
	})

	t.Run("first seen order preserved", func(t *testing.T) {
		rows := []domain.QueryRow{
			{Query: "b", Page: "/p", Clicks: 1, Impressions: 10, Position: 1},
			{Query: "a", Page: "/p", Clicks: 2, Impressions: 20, Position: 1},
			{Query: "b", Page: "/p", Clicks: 3, Impressions: 30, Position: 1},
		}
		merged := mergeDuplicateQueries(rows)
		require.Len(t, merged, 2)
		assert.Equal(t, "b", merged[0].Query)
		assert.Equal(t, 4, merged[0].Clicks)
		assert.Equal(t, "a", merged[1].Query)
	})
}
