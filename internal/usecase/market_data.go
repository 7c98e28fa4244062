package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"SignalPull/internal/domain/models"
	drepo "SignalPull/internal/domain/repository"
	svccache "SignalPull/internal/service/cache"
	"SignalPull/pkg/logger"
)

// MarketDataAggregator fronts the provider set with a TTL cache and strict
// priority fallback. Provider attempts are sequential so a higher-priority
// provider's success never costs a lower one quota; concurrent callers on the
// same cache miss are coalesced into one fetch chain.
type MarketDataAggregator struct {
	providers []drepo.Provider
	statuses  []models.ProviderStatus

	cache           *svccache.TTLCache
	ttl             time.Duration
	providerTimeout time.Duration

	sf      singleflight.Group
	log     *logger.Logger
	metrics drepo.Metrics
}

// NewMarketDataAggregator builds the aggregator. The providers slice must be
// ordered by ascending priority and contain enabled providers only.
func NewMarketDataAggregator(
	providers []drepo.Provider,
	statuses []models.ProviderStatus,
	ttl, providerTimeout time.Duration,
	log *logger.Logger,
	metrics drepo.Metrics,
) *MarketDataAggregator {
	return &MarketDataAggregator{
		providers:       providers,
		statuses:        statuses,
		cache:           svccache.NewTTLCache(),
		ttl:             ttl,
		providerTimeout: providerTimeout,
		log:             log,
		metrics:         metrics,
	}
}

// GetMarketData returns cached data when fresh, otherwise walks the provider
// chain. The winning payload is tagged with the provider name and cached for
// the TTL window. When every provider fails the caller gets
// *models.AllProvidersFailedError; no partial data is synthesized.
func (a *MarketDataAggregator) GetMarketData(ctx context.Context, symbol string, period drepo.Period) (*models.MarketData, error) {
	key := symbol + ":" + string(period)

	if v, ok := a.cache.Get(key); ok {
		a.metrics.RecordCache("market", "hit")
		return v.(*models.MarketData), nil
	}
	a.metrics.RecordCache("market", "miss")

	v, err, _ := a.sf.Do(key, func() (interface{}, error) {
		// a racing caller may have filled the cache while we waited
		if v, ok := a.cache.Get(key); ok {
			return v, nil
		}
		return a.fetchChain(ctx, key, symbol, period)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.MarketData), nil
}

func (a *MarketDataAggregator) fetchChain(ctx context.Context, key, symbol string, period drepo.Period) (*models.MarketData, error) {
	lookback := period.LookbackBars()

	for _, p := range a.providers {
		start := time.Now()
		fetchCtx, cancel := context.WithTimeout(ctx, a.providerTimeout)
		md, err := p.Fetch(fetchCtx, symbol, lookback)
		cancel()

		if err != nil {
			a.metrics.RecordProviderRequest(p.Name(), "error")
			a.log.Warn("provider fetch failed",
				logger.String("provider", p.Name()),
				logger.String("symbol", symbol),
				logger.Error(err))
			continue
		}

		a.metrics.RecordProviderRequest(p.Name(), "success")
		a.metrics.RecordLatency("provider_fetch", time.Since(start).Seconds())
		a.metrics.RecordLastPrice(symbol, md.CurrentPrice)

		md.Provider = p.Name()
		md.FetchedAt = time.Now()
		a.cache.Set(key, md, a.ttl)

		a.log.Debug("market data fetched",
			logger.String("provider", p.Name()),
			logger.String("symbol", symbol),
			logger.Int("bars", len(md.Historical)))
		return md, nil
	}

	a.metrics.RecordError("all_providers_failed")
	return nil, &models.AllProvidersFailedError{Symbol: symbol, Attempts: len(a.providers)}
}

// ClearCache drops every cached payload.
func (a *MarketDataAggregator) ClearCache() {
	a.cache.Clear()
}

// CacheStats reports entry count and configured TTL.
func (a *MarketDataAggregator) CacheStats() models.CacheStats {
	return models.CacheStats{Size: a.cache.Size(), Timeout: a.ttl}
}

// ProviderStatus lists every configured provider, enabled or not.
func (a *MarketDataAggregator) ProviderStatus() []models.ProviderStatus {
	out := make([]models.ProviderStatus, len(a.statuses))
	copy(out, a.statuses)
	return out
}
