package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"SignalPull/internal/domain/models"
	drepo "SignalPull/internal/domain/repository"
	domsvc "SignalPull/internal/domain/service"
	"SignalPull/pkg/cache"
)

type fakeAnalyzer struct {
	fail  bool
	calls int32
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, in domsvc.AnalysisContext) (*models.AIAnalysis, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail {
		return nil, fmt.Errorf("analysis service unreachable")
	}
	return &models.AIAnalysis{Recommendation: models.ActionBuy, Confidence: 0.9, Reasoning: "service verdict"}, nil
}

func newSignalAggregator(t *testing.T, analyzer domsvc.Analyzer, providers ...drepo.Provider) *SignalAggregator {
	t.Helper()
	log := testLogger(t)
	market := NewMarketDataAggregator(providers, nil, time.Minute, time.Second, log, nopMetrics{})
	reg := NewPredictionRegistry(15*time.Minute, log)
	return NewSignalAggregator(market, analyzer, reg, cache.NewMemoryCache(), 5*time.Minute, log, nopMetrics{})
}

func TestGenerateTradeSignalsComplete(t *testing.T) {
	agg := newSignalAggregator(t, &fakeAnalyzer{}, &fakeProvider{name: "a"})

	sig, err := agg.GenerateTradeSignals(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("GenerateTradeSignals: %v", err)
	}
	if sig.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", sig.Symbol)
	}
	if sig.MarketData == nil || sig.Indicators == nil {
		t.Fatal("market data and indicators must be present")
	}
	if sig.AIAnalysis == nil || sig.AIAnalysis.Fallback {
		t.Error("expected service analysis, not fallback")
	}
	if sig.Summary.Entry != sig.MarketData.CurrentPrice {
		t.Errorf("entry = %v, want current price %v", sig.Summary.Entry, sig.MarketData.CurrentPrice)
	}
}

func TestGenerateTradeSignalsCached(t *testing.T) {
	p := &fakeProvider{name: "a"}
	analyzer := &fakeAnalyzer{}
	agg := newSignalAggregator(t, analyzer, p)

	if _, err := agg.GenerateTradeSignals(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	if _, err := agg.GenerateTradeSignals(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt32(&analyzer.calls); got != 1 {
		t.Errorf("analyzer called %d times, want 1 (cached composite)", got)
	}
	if p.callCount() != 1 {
		t.Errorf("provider called %d times, want 1", p.callCount())
	}
}

func TestGenerateTradeSignalsAnalysisFallback(t *testing.T) {
	agg := newSignalAggregator(t, &fakeAnalyzer{fail: true}, &fakeProvider{name: "a"})

	sig, err := agg.GenerateTradeSignals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GenerateTradeSignals: %v", err)
	}
	if sig.AIAnalysis == nil || !sig.AIAnalysis.Fallback {
		t.Fatal("expected deterministic fallback analysis")
	}
	if sig.AIAnalysis.Recommendation == "" {
		t.Error("fallback must carry a recommendation")
	}
}

func TestGenerateTradeSignalsHardFailure(t *testing.T) {
	agg := newSignalAggregator(t, &fakeAnalyzer{}, &fakeProvider{name: "a", fail: true})

	if _, err := agg.GenerateTradeSignals(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected hard failure when no market data is available")
	}
}

func TestShortHistoryYieldsHoldWithNilIndicators(t *testing.T) {
	short := &shortHistoryProvider{}
	agg := newSignalAggregator(t, &fakeAnalyzer{}, short)

	sig, err := agg.GenerateTradeSignals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GenerateTradeSignals: %v", err)
	}
	if sig.Indicators != nil {
		t.Error("indicators should be nil for short history")
	}
	if len(sig.RuleSignals) != 0 {
		t.Errorf("rule signals = %v, want none", sig.RuleSignals)
	}
	if sig.Summary.Signal != models.ActionHold || sig.Summary.Confidence != 0 {
		t.Errorf("summary = %+v, want HOLD at zero confidence", sig.Summary)
	}
}

type shortHistoryProvider struct{}

func (shortHistoryProvider) Name() string        { return "short" }
func (shortHistoryProvider) DisplayName() string { return "short" }

func (shortHistoryProvider) Fetch(ctx context.Context, symbol string, lookback int) (*models.MarketData, error) {
	bars := make([]models.Bar, 10)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.Bar{Date: base.AddDate(0, 0, i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	}
	return &models.MarketData{Symbol: symbol, CurrentPrice: 100, Historical: bars}, nil
}

func TestGetBatchSignalsSettleAll(t *testing.T) {
	agg := newSignalAggregator(t, &fakeAnalyzer{}, &fakeProvider{name: "a"})

	results := agg.GetBatchSignals(context.Background(), []string{"AAPL", "MSFT"})
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Error != "" {
			t.Errorf("unexpected error for %s: %s", r.Symbol, r.Error)
		}
		if r.Signal == nil {
			t.Errorf("missing signal for %s", r.Symbol)
		}
	}
}

func TestGetBatchSignalsKeepsInputIndexes(t *testing.T) {
	p := &fakeProvider{name: "a"}
	agg := newSignalAggregator(t, &fakeAnalyzer{}, p)

	in := []string{"AAPL", "aapl", "MSFT"}
	results := agg.GetBatchSignals(context.Background(), in)
	if len(results) != len(in) {
		t.Fatalf("results = %d, want %d", len(results), len(in))
	}
	for i, want := range []string{"AAPL", "AAPL", "MSFT"} {
		if results[i].Symbol != want {
			t.Errorf("results[%d].Symbol = %q, want %q", i, results[i].Symbol, want)
		}
		if results[i].Signal == nil {
			t.Errorf("results[%d] missing signal", i)
		}
	}
	// the repeated symbol resolves from the composite cache
	if got := p.callCount(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestGetBatchSignalsIsolatesFailures(t *testing.T) {
	p := &symbolAwareProvider{failFor: "BAD"}
	agg := newSignalAggregator(t, &fakeAnalyzer{}, p)

	results := agg.GetBatchSignals(context.Background(), []string{"AAPL", "BAD", "MSFT"})
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Error != "" || results[2].Error != "" {
		t.Error("healthy symbols should succeed")
	}
	if results[1].Error == "" || results[1].Signal != nil {
		t.Errorf("failing symbol should carry an error record, got %+v", results[1])
	}
}

type symbolAwareProvider struct {
	failFor string
	inner   fakeProvider
}

func (p *symbolAwareProvider) Name() string        { return "aware" }
func (p *symbolAwareProvider) DisplayName() string { return "aware" }

func (p *symbolAwareProvider) Fetch(ctx context.Context, symbol string, lookback int) (*models.MarketData, error) {
	if symbol == p.failFor {
		return nil, models.NewProviderError(p.Name(), fmt.Errorf("no data"))
	}
	return p.inner.Fetch(ctx, symbol, lookback)
}

func TestPredictionMergedIntoComposite(t *testing.T) {
	log := testLogger(t)
	market := NewMarketDataAggregator([]drepo.Provider{&fakeProvider{name: "a"}}, nil, time.Minute, time.Second, log, nopMetrics{})
	reg := NewPredictionRegistry(15*time.Minute, log)
	agg := NewSignalAggregator(market, &fakeAnalyzer{}, reg, cache.NewMemoryCache(), 5*time.Minute, log, nopMetrics{})

	reg.Put(&models.Prediction{
		Symbol:     "AAPL",
		Payload:    json.RawMessage(`{"direction":"up","horizon":"1d"}`),
		Source:     "ml-svc",
		ReceivedAt: time.Now(),
	})

	sig, err := agg.GenerateTradeSignals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GenerateTradeSignals: %v", err)
	}
	if sig.MLPredictions == nil {
		t.Fatal("expected prediction merged into composite")
	}
	if sig.MLPredictions.Source != "ml-svc" {
		t.Errorf("source = %q", sig.MLPredictions.Source)
	}
}

func TestStreamSignalsEnforcesCeilingAndStops(t *testing.T) {
	agg := newSignalAggregator(t, &fakeAnalyzer{}, &fakeProvider{name: "a"})

	_, err := agg.StreamSignals(context.Background(), []string{"A", "B", "C", "D", "E", "F"}, time.Second, 5, func([]models.BatchResult) {})
	if err == nil {
		t.Fatal("expected symbol-ceiling error")
	}

	var updates int32
	h, err := agg.StreamSignals(context.Background(), []string{"AAPL"}, 20*time.Millisecond, 5, func(rs []models.BatchResult) {
		atomic.AddInt32(&updates, 1)
	})
	if err != nil {
		t.Fatalf("StreamSignals: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	h.Stop()
	after := atomic.LoadInt32(&updates)
	if after < 1 {
		t.Fatal("expected at least one update before stop")
	}

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&updates); got != after {
		t.Errorf("callback ran after Stop returned: %d -> %d", after, got)
	}

	// second Stop is a no-op
	h.Stop()
}

func TestSummaryBuySideBrackets(t *testing.T) {
	md := &models.MarketData{CurrentPrice: 100}
	set := &models.IndicatorSet{ATR: 2}
	signals := []models.RuleSignal{
		{Indicator: "RSI", Signal: models.ActionBuy, Strength: models.StrengthStrong},
		{Indicator: "MACD", Signal: models.ActionBuy, Strength: models.StrengthMedium},
	}

	s := buildSummary(md, set, signals)
	if s.Signal != models.ActionBuy || s.Sentiment != models.SignalBullish {
		t.Fatalf("summary = %+v", s)
	}
	if s.Confidence != 1 {
		t.Errorf("confidence = %v, want 1 for unanimous signals", s.Confidence)
	}
	if s.Target != 104 || s.StopLoss != 98 {
		t.Errorf("brackets = %v/%v, want 104/98", s.Target, s.StopLoss)
	}
	if s.RiskReward != 2 {
		t.Errorf("riskReward = %v, want 2", s.RiskReward)
	}
}

func TestSummaryConflictingSignals(t *testing.T) {
	md := &models.MarketData{CurrentPrice: 100}
	set := &models.IndicatorSet{ATR: 2}
	signals := []models.RuleSignal{
		{Indicator: "RSI", Signal: models.ActionBuy, Strength: models.StrengthMedium},
		{Indicator: "Bollinger", Signal: models.ActionSell, Strength: models.StrengthMedium},
	}

	s := buildSummary(md, set, signals)
	if s.Signal != models.ActionHold {
		t.Errorf("signal = %q, want HOLD on tie", s.Signal)
	}
	if s.Target != 0 || s.StopLoss != 0 {
		t.Error("HOLD should carry no brackets")
	}
}
