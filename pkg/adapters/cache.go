package adapters

import (
	"github.com/seo-tools/searchledger/pkg/models/api"
	"github.com/seo-tools/searchledger/pkg/models/store"
)

func MapCacheStatsStoreToApi(namespaces []store.CacheNamespaceStats) api.CacheStats {
	stats := api.CacheStats{Namespaces: make([]api.CacheNamespace, 0, len(namespaces))}

	for _, ns := range namespaces {
		stats.Namespaces = append(stats.Namespaces, api.CacheNamespace{
			Source:       ns.Source,
			TotalEntries: ns.TotalEntries,
			ValidEntries: ns.ValidEntries,
			SizeBytes:    ns.SizeBytes,
		})
	}

	return stats
}
