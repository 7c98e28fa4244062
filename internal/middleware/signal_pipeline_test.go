package middleware

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"SignalPull/internal/domain/models"
)

type countingSink struct {
	fail  int32
	calls int32
}

func (s *countingSink) Deliver(ctx context.Context, _ *models.CompositeTradeSignal) error {
	atomic.AddInt32(&s.calls, 1)
	if atomic.LoadInt32(&s.fail) == 1 {
		return fmt.Errorf("sink down")
	}
	return nil
}

type testMetrics struct{}

func (testMetrics) RecordProviderRequest(string, string) {}
func (testMetrics) RecordCache(string, string)           {}
func (testMetrics) RecordError(string)                   {}
func (testMetrics) RecordLastPrice(string, float64)      {}
func (testMetrics) RecordLatency(string, float64)        {}

func signal(symbol string) *models.CompositeTradeSignal {
	return &models.CompositeTradeSignal{
		Symbol:     symbol,
		Timestamp:  time.Now(),
		MarketData: &models.MarketData{Symbol: symbol, CurrentPrice: 100},
	}
}

func TestPipelineDelivers(t *testing.T) {
	sink := &countingSink{}
	p := NewSignalPipeline(sink, testMetrics{})

	if err := p.Process(context.Background(), signal("AAPL")); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if atomic.LoadInt32(&sink.calls) != 1 {
		t.Errorf("sink called %d times, want 1", sink.calls)
	}
}

func TestPipelineRejectsInvalid(t *testing.T) {
	p := NewSignalPipeline(&countingSink{}, testMetrics{})

	if err := p.Process(context.Background(), nil); err == nil {
		t.Error("nil signal should fail")
	}
	if err := p.Process(context.Background(), &models.CompositeTradeSignal{Symbol: "AAPL"}); err == nil {
		t.Error("signal without market data should fail")
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	sink := &countingSink{}
	p := NewSignalPipeline(sink, testMetrics{}, WithMinInterval(time.Hour))

	if err := p.Process(context.Background(), signal("AAPL")); err != nil {
		t.Fatal(err)
	}
	// inside the interval, silently dropped
	if err := p.Process(context.Background(), signal("AAPL")); err != nil {
		t.Fatal(err)
	}
	// different symbol not throttled
	if err := p.Process(context.Background(), signal("MSFT")); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt32(&sink.calls); got != 2 {
		t.Errorf("sink called %d times, want 2", got)
	}
}

func TestPipelineBuffersAndFlushes(t *testing.T) {
	sink := &countingSink{fail: 1}
	p := NewSignalPipeline(sink, testMetrics{}, WithMinInterval(time.Nanosecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	if err := p.Process(ctx, signal("AAPL")); err == nil {
		t.Fatal("expected downstream error")
	}

	atomic.StoreInt32(&sink.fail, 0)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&sink.calls) >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("buffered signal never flushed")
}
