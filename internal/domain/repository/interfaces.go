package repository

import (
	"context"

	"SignalPull/internal/domain/models"
)

// Provider is one external market-data source. Fetch returns the normalized
// quote + history for symbol covering at least lookback bars, or a
// *models.ProviderError. Adapters translate only; fallback and retry policy
// belong to the aggregator.
type Provider interface {
	Name() string
	DisplayName() string
	Fetch(ctx context.Context, symbol string, lookback int) (*models.MarketData, error)
}

// SignalPublisher delivers composite signals to an external broker.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.CompositeTradeSignal) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordProviderRequest(provider, result string)
	RecordCache(cache, result string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
