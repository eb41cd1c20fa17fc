package models

import "time"

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// PageResult is one page of an in-memory result set.
type PageResult[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// SystemMetrics is a lightweight snapshot of runtime instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	StoreQueryCount          uint64    `json:"store_query_count"`
	AverageStoreQueryMs      float64   `json:"avg_store_query_ms"`
	CoalescedFetches         uint64    `json:"coalesced_fetches"`
	StaleRequests            uint64    `json:"stale_requests"`
	MalformedRecords         uint64    `json:"malformed_records"`
	TruncatedFetches         uint64    `json:"truncated_fetches"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
