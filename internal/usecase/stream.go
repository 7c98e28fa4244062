package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalPull/internal/domain/models"
	"SignalPull/pkg/logger"
	"SignalPull/pkg/util"
)

// UpdateFunc receives one batch of recomputed signals per poll tick.
type UpdateFunc func(results []models.BatchResult)

// StreamHandle stops a running signal stream. Stop blocks until the poll
// goroutine has exited, so no callback runs after Stop returns.
type StreamHandle struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func (h *StreamHandle) Stop() {
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

// StreamSignals polls batch signals for the symbols at the given interval and
// invokes onUpdate with each batch. The symbol count is capped to bound
// fan-out. The first poll fires immediately.
func (s *SignalAggregator) StreamSignals(
	ctx context.Context,
	symbols []string,
	interval time.Duration,
	maxSymbols int,
	onUpdate UpdateFunc,
) (*StreamHandle, error) {
	symbols = util.DedupeSymbols(symbols)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to stream")
	}
	if len(symbols) > maxSymbols {
		return nil, fmt.Errorf("too many symbols: %d (max %d)", len(symbols), maxSymbols)
	}
	if onUpdate == nil {
		return nil, fmt.Errorf("onUpdate is required")
	}

	h := &StreamHandle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(h.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.log.Info("signal stream started",
			logger.Strings("symbols", symbols),
			logger.Duration("interval", interval))

		// callbacks run on this goroutine only, so Stop's done-wait is the
		// no-further-callbacks guarantee
		onUpdate(s.GetBatchSignals(ctx, symbols))

		for {
			select {
			case <-h.stop:
				s.log.Info("signal stream stopped", logger.Strings("symbols", symbols))
				return
			case <-ctx.Done():
				s.log.Info("signal stream context cancelled", logger.Strings("symbols", symbols))
				return
			case <-ticker.C:
				onUpdate(s.GetBatchSignals(ctx, symbols))
			}
		}
	}()

	return h, nil
}
