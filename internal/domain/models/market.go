package models

import "time"

// MarketData is the normalized quote + history payload a provider adapter
// produces and the market data aggregator caches. Provider and FetchedAt are
// stamped by the aggregator, not the adapter.
type MarketData struct {
	Symbol        string    `json:"symbol"`
	CurrentPrice  float64   `json:"currentPrice"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	MarketCap     float64   `json:"marketCap,omitempty"`
	PERatio       float64   `json:"peRatio,omitempty"`
	Historical    []Bar     `json:"historical"`
	Provider      string    `json:"provider,omitempty"`
	FetchedAt     time.Time `json:"fetchedAt,omitempty"`
}

// ProviderStatus is the administrative view of one configured provider.
type ProviderStatus struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Enabled     bool   `json:"enabled"`
	Priority    int    `json:"priority"`
	HasAPIKey   bool   `json:"hasApiKey"`
	RateLimit   int    `json:"rateLimit,omitempty"`
}

// CacheStats reports cache size and the configured TTL for admin endpoints.
type CacheStats struct {
	Size    int           `json:"size"`
	Timeout time.Duration `json:"timeout"`
}
