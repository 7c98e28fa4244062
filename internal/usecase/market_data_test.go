package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"SignalPull/internal/domain/models"
	drepo "SignalPull/internal/domain/repository"
	"SignalPull/pkg/logger"
)

type fakeProvider struct {
	name  string
	fail  bool
	slow  time.Duration
	calls int32
}

func (f *fakeProvider) Name() string        { return f.name }
func (f *fakeProvider) DisplayName() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, symbol string, lookback int) (*models.MarketData, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.slow > 0 {
		select {
		case <-time.After(f.slow):
		case <-ctx.Done():
			return nil, models.NewProviderError(f.name, ctx.Err())
		}
	}
	if f.fail {
		return nil, models.NewProviderError(f.name, fmt.Errorf("upstream down"))
	}

	bars := make([]models.Bar, lookback)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = models.Bar{Date: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return &models.MarketData{Symbol: symbol, CurrentPrice: 150, Historical: bars}, nil
}

func (f *fakeProvider) callCount() int { return int(atomic.LoadInt32(&f.calls)) }

type nopMetrics struct{}

func (nopMetrics) RecordProviderRequest(string, string) {}
func (nopMetrics) RecordCache(string, string)           {}
func (nopMetrics) RecordError(string)                   {}
func (nopMetrics) RecordLastPrice(string, float64)      {}
func (nopMetrics) RecordLatency(string, float64)        {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newAggregator(t *testing.T, ttl time.Duration, providers ...drepo.Provider) *MarketDataAggregator {
	t.Helper()
	return NewMarketDataAggregator(providers, nil, ttl, time.Second, testLogger(t), nopMetrics{})
}

func TestGetMarketDataCacheIdempotence(t *testing.T) {
	p := &fakeProvider{name: "a"}
	agg := newAggregator(t, time.Minute, p)

	first, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period3Mo)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period3Mo)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if p.callCount() != 1 {
		t.Errorf("provider called %d times, want 1", p.callCount())
	}
	if first != second {
		t.Error("cached call should return the identical payload")
	}
}

func TestProviderFallbackOrder(t *testing.T) {
	a := &fakeProvider{name: "a", fail: true}
	b := &fakeProvider{name: "b"}
	agg := newAggregator(t, time.Minute, a, b)

	md, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period3Mo)
	if err != nil {
		t.Fatalf("GetMarketData: %v", err)
	}
	if md.Provider != "b" {
		t.Errorf("provider tag = %q, want b", md.Provider)
	}
	if a.callCount() != 1 {
		t.Errorf("provider a called %d times, want 1", a.callCount())
	}
}

func TestAllProvidersFailed(t *testing.T) {
	agg := newAggregator(t, time.Minute, &fakeProvider{name: "a", fail: true}, &fakeProvider{name: "b", fail: true})

	_, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period3Mo)
	var allFailed *models.AllProvidersFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("expected *AllProvidersFailedError, got %v", err)
	}
	if allFailed.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", allFailed.Attempts)
	}
}

func TestSlowProviderTimesOutAndFallsBack(t *testing.T) {
	slow := &fakeProvider{name: "slow", slow: 5 * time.Second}
	fast := &fakeProvider{name: "fast"}
	agg := NewMarketDataAggregator(
		[]drepo.Provider{slow, fast}, nil,
		time.Minute, 50*time.Millisecond,
		testLogger(t), nopMetrics{},
	)

	md, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period3Mo)
	if err != nil {
		t.Fatalf("GetMarketData: %v", err)
	}
	if md.Provider != "fast" {
		t.Errorf("provider tag = %q, want fast", md.Provider)
	}
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	p := &fakeProvider{name: "a", slow: 20 * time.Millisecond}
	agg := newAggregator(t, time.Minute, p)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period3Mo); err != nil {
				t.Errorf("GetMarketData: %v", err)
			}
		}()
	}
	wg.Wait()

	if p.callCount() != 1 {
		t.Errorf("provider called %d times under concurrent misses, want 1", p.callCount())
	}
}

func TestClearCacheForcesRefetch(t *testing.T) {
	p := &fakeProvider{name: "a"}
	agg := newAggregator(t, time.Minute, p)

	if _, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period3Mo); err != nil {
		t.Fatal(err)
	}
	agg.ClearCache()
	if _, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period3Mo); err != nil {
		t.Fatal(err)
	}

	if p.callCount() != 2 {
		t.Errorf("provider called %d times, want 2", p.callCount())
	}

	stats := agg.CacheStats()
	if stats.Size != 1 {
		t.Errorf("cache size = %d, want 1", stats.Size)
	}
}

func TestPeriodsCacheIndependently(t *testing.T) {
	p := &fakeProvider{name: "a"}
	agg := newAggregator(t, time.Minute, p)

	if _, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period1Mo); err != nil {
		t.Fatal(err)
	}
	if _, err := agg.GetMarketData(context.Background(), "AAPL", drepo.Period1Y); err != nil {
		t.Fatal(err)
	}

	if p.callCount() != 2 {
		t.Errorf("provider called %d times, want 2 for distinct periods", p.callCount())
	}
}
