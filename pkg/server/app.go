// Package server owns the application lifecycle: HTTP serving, the optional
// Kafka consumer, the optional background signal stream, and shutdown order.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalPull/internal/domain/models"
	drepo "SignalPull/internal/domain/repository"
	"SignalPull/internal/handler/api"
	mid "SignalPull/internal/middleware"
	"SignalPull/internal/service/ratelimit"
	"SignalPull/internal/usecase"
	"SignalPull/pkg/config"
	xhttp "SignalPull/pkg/http"
	httpmid "SignalPull/pkg/http/middleware"
	pkgkafka "SignalPull/pkg/kafka"
	applogger "SignalPull/pkg/logger"
)

const errorLogTopic = "signalpull.app-errors"

// App encapsulates the application lifecycle.
type App struct {
	cfg     *config.Config
	log     *applogger.Logger
	metrics drepo.Metrics

	handler     *api.SignalsEchoHandler
	signals     *usecase.SignalAggregator
	predictions *usecase.PredictionRegistry
	limiter     *ratelimit.Limiter

	producer  *pkgkafka.Producer
	publisher drepo.SignalPublisher

	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	stream     *usecase.StreamHandle
	pipeline   *mid.SignalPipeline
}

// New assembles the app from its wired dependencies. producer, publisher and
// limiter may be nil when the corresponding feature is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	metrics drepo.Metrics,
	handler *api.SignalsEchoHandler,
	signals *usecase.SignalAggregator,
	predictions *usecase.PredictionRegistry,
	producer *pkgkafka.Producer,
	publisher drepo.SignalPublisher,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		metrics:     metrics,
		handler:     handler,
		signals:     signals,
		predictions: predictions,
		producer:    producer,
		publisher:   publisher,
		limiter:     limiter,
	}
}

// Run starts every configured component and blocks until a shutdown signal.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled && a.cfg.Metrics.Path != "" {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	if a.limiter != nil {
		a.httpServer.Echo().Use(httpmid.RateLimit(a.limiter.Allow))
	}

	// aggregated error logs flush to Kafka when a producer is around
	if a.producer != nil {
		a.log.AddCollector(&applogger.CollectorConfig{
			FlushInterval:  time.Minute,
			CountThreshold: 100,
			Topic:          errorLogTopic,
			Publisher:      a.producer,
		})
	}

	if err := a.startConsumer(ctx); err != nil {
		return err
	}
	a.startStream(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start failed", applogger.Error(err))
		return err
	}
	a.log.Info("http server listening", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// startConsumer wires the predictions topic into the registry.
func (a *App) startConsumer(ctx context.Context) error {
	kc := a.cfg.Kafka
	if !kc.Enabled || kc.Predictions.Topic == "" {
		return nil
	}

	consumer, err := pkgkafka.NewConsumer(
		kc.Predictions.Topic,
		a.predictions.KafkaHandler(),
		pkgkafka.WithConsumerBrokers(kc.Brokers),
		pkgkafka.WithConsumerGroupID(kc.Predictions.GroupID),
		pkgkafka.WithConsumerWorkers(kc.Predictions.Workers),
		pkgkafka.WithConsumerRetry(kc.Predictions.RetryMax, kc.Predictions.BackoffMin, kc.Predictions.BackoffMax),
		pkgkafka.WithConsumerDLQ(kc.Predictions.DLQTopic),
	)
	if err != nil {
		return err
	}

	a.consumer = consumer
	a.consumer.Start(ctx)
	a.log.Info("prediction consumer started",
		applogger.String("topic", kc.Predictions.Topic),
		applogger.String("group", kc.Predictions.GroupID))
	return nil
}

// startStream launches the background poll for the configured symbols and
// pushes every recomputed signal through the dispatch pipeline.
func (a *App) startStream(ctx context.Context) {
	symbols := a.cfg.Signals.Stream.Symbols
	if len(symbols) == 0 || a.publisher == nil {
		return
	}

	sink := mid.SinkFunc(func(ctx context.Context, s *models.CompositeTradeSignal) error {
		return a.publisher.Publish(ctx, s)
	})
	a.pipeline = mid.NewSignalPipeline(sink, a.metrics,
		mid.WithMinInterval(a.cfg.Signals.Stream.Interval/2),
	)
	a.pipeline.Start(ctx)

	handle, err := a.signals.StreamSignals(ctx, symbols,
		a.cfg.Signals.Stream.Interval,
		a.cfg.Signals.Stream.MaxSymbols,
		func(results []models.BatchResult) {
			for _, r := range results {
				if r.Signal == nil {
					continue
				}
				if err := a.pipeline.Process(ctx, r.Signal); err != nil {
					a.log.Warn("signal dispatch failed",
						applogger.String("symbol", r.Symbol), applogger.Error(err))
				}
			}
		})
	if err != nil {
		a.log.Error("signal stream start failed", applogger.Error(err))
		a.pipeline.Stop()
		a.pipeline = nil
		return
	}
	a.stream = handle
}

// shutdown stops components in reverse dependency order.
func (a *App) shutdown(ctx context.Context) error {
	if a.stream != nil {
		a.stream.Stop()
	}
	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(a.cfg.Server.ShutdownTimeout); err != nil {
			a.log.Warn("consumer stop error", applogger.Error(err))
		}
	}

	a.log.RemoveCollector()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	} else if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("producer close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
