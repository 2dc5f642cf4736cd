package model

type CacheStats struct {
	Memory    MemoryCacheStats    `json:"memory"`
	Persisted PersistedCacheStats `json:"persisted"`
}

type MemoryCacheStats struct {
	TotalEntries int   `json:"totalEntries"`
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
}

type PersistedCacheStats struct {
	Hits          int64              `json:"hits"`
	StatsBySource []*SourceCacheStat `json:"statsBySource"`
}

type CacheClearResult struct {
	DeletedCount int `json:"deletedCount"`
	BeforeCount  int `json:"beforeCount"`
}

type RefreshStatus struct {
	RecentTasks []*CacheUpdateTask `json:"recentTasks"`
	CacheStats  []*SourceCacheStat `json:"cacheStats"`
}
