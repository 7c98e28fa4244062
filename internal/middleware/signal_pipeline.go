// Package middleware sits between the signal stream and its delivery sinks.
package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalPull/internal/domain/models"
	domrepo "SignalPull/internal/domain/repository"
)

// Sink is the minimal downstream interface the pipeline needs.
type Sink interface {
	Deliver(ctx context.Context, s *models.CompositeTradeSignal) error
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, s *models.CompositeTradeSignal) error

func (f SinkFunc) Deliver(ctx context.Context, s *models.CompositeTradeSignal) error {
	return f(ctx, s)
}

// SignalPipeline validates, throttles per symbol, and forwards signals to a
// sink, buffering when the sink is unavailable. Buffered signals are flushed
// in the background with backoff; a full buffer drops the oldest pressure
// point (the incoming signal) rather than blocking the stream.
type SignalPipeline struct {
	sink    Sink
	metrics domrepo.Metrics

	minInterval time.Duration
	bufSize     int
	bufCh       chan *models.CompositeTradeSignal
	stopCh      chan struct{}
	started     bool
	mu          sync.Mutex
	lastSeen    map[string]time.Time
}

type PipelineOption func(*SignalPipeline)

// WithBufferSize sets the holding buffer used when the sink is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *SignalPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithMinInterval sets the per-symbol dispatch floor; recomputes inside the
// window are dropped as duplicates.
func WithMinInterval(d time.Duration) PipelineOption {
	return func(p *SignalPipeline) {
		if d > 0 {
			p.minInterval = d
		}
	}
}

// NewSignalPipeline creates a pipeline in front of sink.
func NewSignalPipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *SignalPipeline {
	p := &SignalPipeline{
		sink:        sink,
		metrics:     metrics,
		minInterval: 10 * time.Second,
		bufSize:     256,
		stopCh:      make(chan struct{}),
		lastSeen:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.CompositeTradeSignal, p.bufSize)
	return p
}

// Start launches background flushing of buffered signals.
func (p *SignalPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case s := <-p.bufCh:
				if s == nil {
					continue
				}
				if err := p.sink.Deliver(ctx, s); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- s:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *SignalPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards one signal, buffering on sink
// failure.
func (p *SignalPipeline) Process(ctx context.Context, s *models.CompositeTradeSignal) error {
	start := time.Now()
	if err := validateSignal(s); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(s.Symbol, start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.sink.Deliver(ctx, s); err != nil {
		p.metrics.RecordError("pipeline_deliver")
		select {
		case p.bufCh <- s:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_deliver", time.Since(start).Seconds())
	return nil
}

func validateSignal(s *models.CompositeTradeSignal) error {
	if s == nil {
		return fmt.Errorf("signal nil")
	}
	if s.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if s.Timestamp.IsZero() {
		return fmt.Errorf("timestamp not set")
	}
	if s.MarketData == nil {
		return fmt.Errorf("market data missing")
	}
	return nil
}

func (p *SignalPipeline) allow(symbol string, now time.Time) bool {
	if p.minInterval <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[symbol]
	if !last.IsZero() && now.Sub(last) < p.minInterval {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}
