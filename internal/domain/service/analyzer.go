package service

import (
	"context"

	"SignalPull/internal/domain/models"
)

// AnalysisContext is the material handed to the narrative analysis stage.
type AnalysisContext struct {
	Symbol      string
	MarketData  *models.MarketData
	Indicators  *models.IndicatorSet
	RuleSignals []models.RuleSignal
}

// Analyzer produces a narrative analysis for one symbol. Implementations may
// call an external service; callers fall back to a deterministic analysis
// when Analyze fails, so an analyzer is never load-bearing.
type Analyzer interface {
	Analyze(ctx context.Context, ac AnalysisContext) (*models.AIAnalysis, error)
}
