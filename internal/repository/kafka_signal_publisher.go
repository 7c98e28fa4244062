// Package repository contains infrastructure-facing implementations of the
// domain repository interfaces.
package repository

import (
	"context"
	"fmt"

	"SignalPull/internal/domain/models"
	drepo "SignalPull/internal/domain/repository"
	pkgkafka "SignalPull/pkg/kafka"
)

// KafkaSignalPublisher ships composite signals to a Kafka topic, keyed by
// symbol so one symbol's signals stay ordered on a single partition.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, s *models.CompositeTradeSignal) error {
	if s == nil {
		return fmt.Errorf("nil signal")
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(s.Symbol), s); err != nil {
		return fmt.Errorf("publish signal %s: %w", s.Symbol, err)
	}
	return nil
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}

var _ drepo.SignalPublisher = (*KafkaSignalPublisher)(nil)
