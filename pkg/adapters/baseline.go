package adapters

import (
	"maps"

	"github.com/seo-tools/searchledger/pkg/models/api"
	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
)

func MapBaselineManifestStoreToDomain(m *store.BaselineManifest) domain.Baseline {
	return domain.Baseline{
		ID:         m.ID,
		Label:      m.Label,
		CreatedAt:  m.CreatedAt,
		WindowDays: m.WindowDays,
		Summary:    maps.Clone(m.Summary),
		Files:      append([]string(nil), m.Files...),
	}
}

func MapBaselineDomainToStoreManifest(b domain.Baseline) *store.BaselineManifest {
	return &store.BaselineManifest{
		ID:         b.ID,
		Label:      b.Label,
		CreatedAt:  b.CreatedAt,
		WindowDays: b.WindowDays,
		Summary:    maps.Clone(b.Summary),
		Files:      append([]string(nil), b.Files...),
	}
}

func MapBaselineDomainToApi(b domain.Baseline) api.Baseline {
	return api.Baseline{
		ID:         b.ID,
		Label:      b.Label,
		CreatedAt:  b.CreatedAt,
		WindowDays: b.WindowDays,
		Summary:    MapSummaryMetricsDomainToApi(b.Summary),
		Files:      append([]string(nil), b.Files...),
	}
}

func MapComparisonDomainToApi(c *domain.BaselineComparison) api.BaselineComparison {
	mapped := api.BaselineComparison{
		Label:      c.Label,
		CreatedAt:  c.CreatedAt,
		WindowDays: c.WindowDays,
		Deltas:     make([]api.MetricDelta, 0, len(c.Deltas)),
	}

	for _, d := range c.Deltas {
		mapped.Deltas = append(mapped.Deltas, api.MetricDelta{
			Metric:   d.Metric,
			Baseline: d.Baseline,
			Current:  d.Current,
			Change:   d.Change,
		})
	}

	return mapped
}
