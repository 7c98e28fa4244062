package usecase

import (
	"context"
	"time"

	"SignalPull/internal/domain/models"
	drepo "SignalPull/internal/domain/repository"
	domsvc "SignalPull/internal/domain/service"
	"SignalPull/internal/services/analytics"
	"SignalPull/internal/services/indicators"
	"SignalPull/internal/services/rules"
	"SignalPull/pkg/cache"
	"SignalPull/pkg/logger"
	"SignalPull/pkg/util"
)

// Strength weights used to score rule signals into a composite verdict.
var strengthWeight = map[string]float64{
	models.StrengthWeak:       1,
	models.StrengthMedium:     2,
	models.StrengthStrong:     3,
	models.StrengthVeryStrong: 4,
}

// SignalAggregator composes market data, indicators, rule signals, optional
// ML predictions and a narrative analysis into one cached record per symbol.
type SignalAggregator struct {
	market      *MarketDataAggregator
	analyzer    domsvc.Analyzer
	fallback    domsvc.Analyzer
	predictions *PredictionRegistry

	cache    cache.Service
	cacheTTL time.Duration

	log     *logger.Logger
	metrics drepo.Metrics
}

// NewSignalAggregator builds the aggregator. analyzer may be nil when no
// external analysis service is configured; the deterministic fallback then
// always runs.
func NewSignalAggregator(
	market *MarketDataAggregator,
	analyzer domsvc.Analyzer,
	predictions *PredictionRegistry,
	cacheSvc cache.Service,
	cacheTTL time.Duration,
	log *logger.Logger,
	metrics drepo.Metrics,
) *SignalAggregator {
	return &SignalAggregator{
		market:      market,
		analyzer:    analyzer,
		fallback:    analytics.NewFallbackAnalyzer(),
		predictions: predictions,
		cache:       cacheSvc,
		cacheTTL:    cacheTTL,
		log:         log,
		metrics:     metrics,
	}
}

// GenerateTradeSignals returns the composite signal for symbol, cached for
// the signal TTL. Market-data failure is the only hard failure; every later
// stage degrades instead of erroring.
func (s *SignalAggregator) GenerateTradeSignals(ctx context.Context, symbol string) (*models.CompositeTradeSignal, error) {
	symbol = util.NormalizeSymbol(symbol)
	key := "signal:" + symbol

	var cached models.CompositeTradeSignal
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.metrics.RecordCache("signal", "hit")
		return &cached, nil
	}
	s.metrics.RecordCache("signal", "miss")

	start := time.Now()
	md, err := s.market.GetMarketData(ctx, symbol, drepo.DefaultPeriod())
	if err != nil {
		return nil, err
	}

	set := indicators.CalculateAll(md.Historical)
	ruleSignals := rules.Generate(set)

	composite := &models.CompositeTradeSignal{
		Symbol:      symbol,
		Timestamp:   time.Now(),
		MarketData:  md,
		Indicators:  set,
		RuleSignals: ruleSignals,
	}

	if p := s.predictions.Get(symbol); p != nil {
		composite.MLPredictions = p
	}

	composite.AIAnalysis = s.analyze(ctx, domsvc.AnalysisContext{
		Symbol:      symbol,
		MarketData:  md,
		Indicators:  set,
		RuleSignals: ruleSignals,
	})

	composite.Summary = buildSummary(md, set, ruleSignals)

	if err := s.cache.Set(ctx, key, composite, s.cacheTTL); err != nil {
		s.log.Warn("signal cache write failed", logger.String("symbol", symbol), logger.Error(err))
	}
	s.metrics.RecordLatency("signal_build", time.Since(start).Seconds())

	return composite, nil
}

// analyze runs the external analyzer and degrades to the deterministic
// fallback on any failure.
func (s *SignalAggregator) analyze(ctx context.Context, in domsvc.AnalysisContext) *models.AIAnalysis {
	if s.analyzer != nil {
		out, err := s.analyzer.Analyze(ctx, in)
		if err == nil {
			return out
		}
		s.metrics.RecordError("analysis_unreachable")
		s.log.Warn("analysis service failed, using fallback",
			logger.String("symbol", in.Symbol), logger.Error(err))
	}

	out, err := s.fallback.Analyze(ctx, in)
	if err != nil {
		// the deterministic fallback cannot fail in practice
		s.log.Error("fallback analysis failed", logger.String("symbol", in.Symbol), logger.Error(err))
		return nil
	}
	return out
}

// GetBatchSignals generates signals for each symbol with settle-all
// semantics: one symbol's failure yields an error record at its index and
// never aborts the rest. The result always has one record per input symbol,
// in input order; repeated symbols resolve through the composite cache.
func (s *SignalAggregator) GetBatchSignals(ctx context.Context, symbols []string) []models.BatchResult {
	out := make([]models.BatchResult, len(symbols))
	for i, symbol := range symbols {
		sig, err := s.GenerateTradeSignals(ctx, symbol)
		out[i].Symbol = util.NormalizeSymbol(symbol)
		if err != nil {
			out[i].Error = err.Error()
			continue
		}
		out[i].Signal = sig
	}
	return out
}

// InvalidateSignal drops the cached composite for symbol.
func (s *SignalAggregator) InvalidateSignal(ctx context.Context, symbol string) error {
	return s.cache.Delete(ctx, "signal:"+util.NormalizeSymbol(symbol))
}

// buildSummary scores the rule signals into one verdict. With no indicators
// (short history) the verdict is HOLD at zero confidence.
func buildSummary(md *models.MarketData, set *models.IndicatorSet, signals []models.RuleSignal) models.Summary {
	summary := models.Summary{
		Signal:    models.ActionHold,
		Sentiment: models.SignalNeutral,
		Entry:     md.CurrentPrice,
	}
	if set == nil {
		return summary
	}

	var buyScore, sellScore float64
	for _, sig := range signals {
		w := strengthWeight[sig.Strength]
		switch sig.Signal {
		case models.ActionBuy:
			buyScore += w
		case models.ActionSell:
			sellScore += w
		}
	}

	total := buyScore + sellScore
	if total == 0 {
		return summary
	}

	switch {
	case buyScore > sellScore:
		summary.Signal = models.ActionBuy
		summary.Sentiment = models.SignalBullish
		summary.Confidence = (buyScore - sellScore) / total
	case sellScore > buyScore:
		summary.Signal = models.ActionSell
		summary.Sentiment = models.SignalBearish
		summary.Confidence = (sellScore - buyScore) / total
	default:
		return summary
	}

	// ATR-based brackets: one ATR of risk against two of reward
	atr := set.ATR
	if atr <= 0 {
		return summary
	}
	if summary.Signal == models.ActionBuy {
		summary.Target = summary.Entry + 2*atr
		summary.StopLoss = summary.Entry - atr
	} else {
		summary.Target = summary.Entry - 2*atr
		summary.StopLoss = summary.Entry + atr
	}
	summary.RiskReward = 2
	return summary
}
