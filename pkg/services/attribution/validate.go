package attribution

import (
	"strings"

	"github.com/seo-tools/searchledger/pkg/models/domain"
)

// sanitizeTraffic drops analytics rows that cannot take part in attribution:
// no page, negative sessions or negative money amounts. Survivors are
// returned together with the dropped count so the caller can report one
// aggregated warning instead of a log line per row.
func sanitizeTraffic(rows []domain.TrafficRow) ([]domain.TrafficRow, int) {
	valid := make([]domain.TrafficRow, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		if strings.TrimSpace(row.Page) == "" ||
			row.Sessions < 0 ||
			row.Revenue.IsNegative() ||
			row.Conversions.IsNegative() {
			skipped++
			continue
		}
		valid = append(valid, row)
	}

	return valid, skipped
}

// sanitizeQueries drops search rows with a missing key, negative counters
// or more clicks than impressions. The upstream contract promises
// clicks <= impressions but does not enforce it.
func sanitizeQueries(rows []domain.QueryRow) ([]domain.QueryRow, int) {
	valid := make([]domain.QueryRow, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		if strings.TrimSpace(row.Page) == "" ||
			strings.TrimSpace(row.Query) == "" ||
			row.Clicks < 0 ||
			row.Impressions < 0 ||
			row.Clicks > row.Impressions ||
			row.Position < 0 {
			skipped++
			continue
		}
		valid = append(valid, row)
	}

	return valid, skipped
}

// mergeDuplicateQueries collapses rows on one page that share a query,
// which happens when URL normalization folds several raw pages into the
// same path. Clicks and impressions add up; position becomes the
// clicks-weighted average so the heavier row dominates, falling back to a
// plain average of the known positions when no merged row has clicks.
func mergeDuplicateQueries(rows []domain.QueryRow) []domain.QueryRow {
	if len(rows) < 2 {
		return rows
	}

	type acc struct {
		row        domain.QueryRow
		weightSum  float64
		posSum     float64
		positioned int
	}

	order := make([]string, 0, len(rows))
	byQuery := make(map[string]*acc, len(rows))
	for _, row := range rows {
		a, ok := byQuery[row.Query]
		if !ok {
			a = &acc{row: domain.QueryRow{Query: row.Query, Page: row.Page}}
			byQuery[row.Query] = a
			order = append(order, row.Query)
		}
		a.row.Clicks += row.Clicks
		a.row.Impressions += row.Impressions
		a.weightSum += row.Position * float64(row.Clicks)
		if row.Position > 0 {
			a.posSum += row.Position
			a.positioned++
		}
	}

	if len(byQuery) == len(rows) {
		return rows
	}

	merged := make([]domain.QueryRow, 0, len(byQuery))
	for _, query := range order {
		a := byQuery[query]
		switch {
		case a.row.Clicks > 0:
			a.row.Position = a.weightSum / float64(a.row.Clicks)
		case a.positioned > 0:
			a.row.Position = a.posSum / float64(a.positioned)
		}
		merged = append(merged, a.row)
	}
	return merged
}
