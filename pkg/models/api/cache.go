package api

type CacheNamespace struct {
	Source       string `json:"source"`
	TotalEntries int    `json:"total_entries"`
	ValidEntries int    `json:"valid_entries"`
	SizeBytes    int64  `json:"size_bytes"`
}

type CacheStats struct {
	Namespaces []CacheNamespace `json:"namespaces"`
}

type CacheClearResult struct {
	Removed int `json:"removed"`
}
