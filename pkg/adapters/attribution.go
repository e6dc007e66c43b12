package adapters

import (
	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
)

func MapTrafficRowStoreToDomain(row store.TrafficRow) domain.TrafficRow {
	return domain.TrafficRow{
		Page:        row.Page,
		Sessions:    row.Sessions,
		Revenue:     row.Revenue,
		Conversions: row.Conversions,
		Medium:      row.Medium,
		Source:      row.Source,
	}
}

func MapQueryRowStoreToDomain(row store.QueryRow) domain.QueryRow {
	return domain.QueryRow{
		Query:       row.Query,
		Page:        row.Page,
		Clicks:      row.Clicks,
		Impressions: row.Impressions,
		Position:    row.Position,
	}
}

func MapTrafficRowsStoreToDomain(rows []store.TrafficRow) []domain.TrafficRow {
	mapped := make([]domain.TrafficRow, 0, len(rows))
	for _, r := range rows {
		mapped = append(mapped, MapTrafficRowStoreToDomain(r))
	}
	return mapped
}

func MapQueryRowsStoreToDomain(rows []store.QueryRow) []domain.QueryRow {
	mapped := make([]domain.QueryRow, 0, len(rows))
	for _, r := range rows {
		mapped = append(mapped, MapQueryRowStoreToDomain(r))
	}
	return mapped
}
