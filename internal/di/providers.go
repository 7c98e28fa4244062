// Package di assembles the application graph. Providers here stay free of
// business logic; they only translate config into constructed components.
package di

import (
	"fmt"

	"SignalPull/internal/domain/models"
	drepo "SignalPull/internal/domain/repository"
	domsvc "SignalPull/internal/domain/service"
	"SignalPull/internal/handler/api"
	internalrepo "SignalPull/internal/repository"
	"SignalPull/internal/service/providers"
	"SignalPull/internal/service/ratelimit"
	"SignalPull/internal/services/analytics"
	"SignalPull/internal/usecase"
	"SignalPull/pkg/cache"
	"SignalPull/pkg/config"
	xhttp "SignalPull/pkg/http"
	pkgkafka "SignalPull/pkg/kafka"
	applogger "SignalPull/pkg/logger"
	"SignalPull/pkg/metrics"
	"SignalPull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	log, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the shared JSON client for provider adapters.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Market.ProviderTimeout))
}

// ProviderSet bundles the constructed adapters with the full status list the
// admin endpoint reports.
type ProviderSet struct {
	Enabled  []drepo.Provider
	Statuses []models.ProviderStatus
}

// ProvideProviders builds one adapter per enabled provider in priority order.
// Unknown provider names are a configuration error.
func ProvideProviders(cfg *config.Config, client *xhttp.Client) (*ProviderSet, error) {
	set := &ProviderSet{}
	for _, pc := range cfg.Providers {
		set.Statuses = append(set.Statuses, models.ProviderStatus{
			Name:        pc.Name,
			DisplayName: pc.DisplayName,
			Enabled:     pc.Enabled,
			Priority:    pc.Priority,
			HasAPIKey:   pc.APIKey != "",
			RateLimit:   pc.RateLimit,
		})
		if !pc.Enabled {
			continue
		}

		var p drepo.Provider
		switch pc.Name {
		case "finnhub":
			p = providers.NewFinnhub(pc.APIKey, pc.BaseURL, client)
		case "alphavantage":
			p = providers.NewAlphaVantage(pc.APIKey, pc.BaseURL, client)
		case "twelvedata":
			p = providers.NewTwelveData(pc.APIKey, pc.BaseURL, client)
		default:
			return nil, fmt.Errorf("unknown provider %q", pc.Name)
		}
		set.Enabled = append(set.Enabled, p)
	}
	return set, nil
}

// ProvideMarketAggregator creates the market data aggregator.
func ProvideMarketAggregator(
	cfg *config.Config,
	set *ProviderSet,
	log *applogger.Logger,
	m drepo.Metrics,
) *usecase.MarketDataAggregator {
	return usecase.NewMarketDataAggregator(
		set.Enabled,
		set.Statuses,
		cfg.Market.CacheTTL,
		cfg.Market.ProviderTimeout,
		log,
		m,
	)
}

// ProvideSignalCache picks the composite-signal cache backend: layered
// memory+Redis when Redis is configured, in-process memory otherwise.
func ProvideSignalCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redisCache), nil
}

// ProvideAnalyzer creates the HTTP analyzer when a service URL is configured,
// nil otherwise (the aggregator then runs its deterministic fallback only).
func ProvideAnalyzer(cfg *config.Config) domsvc.Analyzer {
	if cfg.Analysis.ServiceURL == "" {
		return nil
	}
	return analytics.NewHTTPAnalyzer(cfg)
}

// ProvidePredictionRegistry creates the ML prediction registry.
func ProvidePredictionRegistry(cfg *config.Config, log *applogger.Logger) *usecase.PredictionRegistry {
	return usecase.NewPredictionRegistry(cfg.Signals.PredictionTTL, log)
}

// ProvideSignalAggregator creates the signal aggregator.
func ProvideSignalAggregator(
	cfg *config.Config,
	market *usecase.MarketDataAggregator,
	analyzer domsvc.Analyzer,
	predictions *usecase.PredictionRegistry,
	cacheSvc cache.Service,
	log *applogger.Logger,
	m drepo.Metrics,
) *usecase.SignalAggregator {
	return usecase.NewSignalAggregator(market, analyzer, predictions, cacheSvc, cfg.Signals.CacheTTL, log, m)
}

// ProvideKafkaProducer creates the producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher wraps the producer, or nil when Kafka is disabled.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvideRateLimiter creates the HTTP edge limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	capacity := cfg.RateLimit.Capacity
	if capacity <= 0 {
		capacity = 30
	}
	refill := cfg.RateLimit.RefillPerSec
	if refill <= 0 {
		refill = 0.5
	}
	return ratelimit.New(capacity, refill)
}

// ProvideHandler creates the Echo handler.
func ProvideHandler(
	log *applogger.Logger,
	signals *usecase.SignalAggregator,
	market *usecase.MarketDataAggregator,
	predictions *usecase.PredictionRegistry,
) *api.SignalsEchoHandler {
	return api.NewSignalsEchoHandler(log, signals, market, predictions)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	m drepo.Metrics,
	handler *api.SignalsEchoHandler,
	signals *usecase.SignalAggregator,
	predictions *usecase.PredictionRegistry,
	producer *pkgkafka.Producer,
	publisher drepo.SignalPublisher,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, log, m, handler, signals, predictions, producer, publisher, limiter)
}
