package analytics

import (
	"context"
	"fmt"

	"SignalPull/internal/domain/models"
	domsvc "SignalPull/internal/domain/service"
)

// FallbackAnalyzer produces a deterministic reading from RSI and MACD only.
// It runs when the external analysis service is unreachable or returns an
// error, so signal generation never blocks on it.
type FallbackAnalyzer struct{}

func NewFallbackAnalyzer() *FallbackAnalyzer { return &FallbackAnalyzer{} }

func (FallbackAnalyzer) Analyze(_ context.Context, in domsvc.AnalysisContext) (*models.AIAnalysis, error) {
	if in.Indicators == nil {
		return &models.AIAnalysis{
			Recommendation: models.ActionHold,
			Confidence:     0,
			Reasoning:      "insufficient history for indicator-based analysis",
			Fallback:       true,
		}, nil
	}

	rsi := in.Indicators.RSI
	macd := in.Indicators.MACD

	score := 0
	if rsi.Signal == models.SignalOversold {
		score += 2
	} else if rsi.Signal == models.SignalOverbought {
		score -= 2
	}
	if macd.Signal == models.SignalBullish {
		score++
	} else if macd.Signal == models.SignalBearish {
		score--
	}

	rec := models.ActionHold
	confidence := 0.3
	switch {
	case score >= 2:
		rec = models.ActionBuy
		confidence = 0.5 + 0.1*float64(score-2)
	case score <= -2:
		rec = models.ActionSell
		confidence = 0.5 + 0.1*float64(-score-2)
	}

	reasoning := fmt.Sprintf("RSI %.1f (%s), MACD %s with histogram %.3f",
		rsi.Value, rsi.Signal, macd.Signal, macd.Histogram)

	return &models.AIAnalysis{
		Recommendation: rec,
		Confidence:     confidence,
		Reasoning:      reasoning,
		Fallback:       true,
	}, nil
}

var _ domsvc.Analyzer = (*FallbackAnalyzer)(nil)
