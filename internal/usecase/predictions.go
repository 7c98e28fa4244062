package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"SignalPull/internal/domain/models"
	svccache "SignalPull/internal/service/cache"
	pkgkafka "SignalPull/pkg/kafka"
	"SignalPull/pkg/logger"
	"SignalPull/pkg/util"
)

// PredictionRegistry holds externally computed ML predictions keyed by symbol.
// Payloads are opaque: the registry never inspects them beyond the envelope.
// Entries expire after the configured TTL so stale predictions are not merged
// into fresh signals.
type PredictionRegistry struct {
	cache *svccache.TTLCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewPredictionRegistry(ttl time.Duration, log *logger.Logger) *PredictionRegistry {
	return &PredictionRegistry{
		cache: svccache.NewTTLCache(),
		ttl:   ttl,
		log:   log,
	}
}

// Put stores a prediction for its symbol, replacing any previous one.
func (r *PredictionRegistry) Put(p *models.Prediction) {
	if p == nil || p.Symbol == "" {
		return
	}
	r.cache.Set(util.NormalizeSymbol(p.Symbol), p, r.ttl)
}

// Get returns the live prediction for symbol, or nil.
func (r *PredictionRegistry) Get(symbol string) *models.Prediction {
	v, ok := r.cache.Get(util.NormalizeSymbol(symbol))
	if !ok {
		return nil
	}
	return v.(*models.Prediction)
}

// predictionEnvelope is the wire shape on the predictions topic.
type predictionEnvelope struct {
	Symbol  string          `json:"symbol"`
	Source  string          `json:"source"`
	Payload json.RawMessage `json:"payload"`
}

// KafkaHandler returns a consumer handler that ingests prediction envelopes
// into the registry. Malformed messages are an error so the consumer's
// retry/DLQ path applies.
func (r *PredictionRegistry) KafkaHandler() pkgkafka.MessageHandler {
	return func(ctx context.Context, msg kafkago.Message) error {
		var env predictionEnvelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			return fmt.Errorf("decode prediction: %w", err)
		}
		if env.Symbol == "" {
			return fmt.Errorf("prediction without symbol")
		}

		r.Put(&models.Prediction{
			Symbol:     env.Symbol,
			Payload:    env.Payload,
			Source:     env.Source,
			ReceivedAt: time.Now(),
		})
		r.log.Debug("prediction ingested",
			logger.String("symbol", env.Symbol),
			logger.String("source", env.Source))
		return nil
	}
}
