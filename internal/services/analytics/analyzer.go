package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"SignalPull/internal/domain/models"
	domsvc "SignalPull/internal/domain/service"
	"SignalPull/pkg/config"
)

// HTTPAnalyzer asks the external analysis service for a narrative reading of
// the indicator picture. The service's reply is treated as opaque: valid JSON
// is mapped onto AIAnalysis, anything else is carried verbatim in Raw.
// analyzeAttempts bounds retries for the analysis call; the stage degrades to
// the fallback analyzer anyway, so transient errors get one more chance only.
const analyzeAttempts = 2

type HTTPAnalyzer struct {
	base *HTTPServiceBase
}

func NewHTTPAnalyzer(cfg *config.Config) *HTTPAnalyzer {
	return &HTTPAnalyzer{base: NewHTTPServiceBase(cfg)}
}

type analyzeRequest struct {
	Symbol     string               `json:"symbol"`
	Price      float64              `json:"price"`
	ChangePct  float64              `json:"changePercent"`
	Indicators *models.IndicatorSet `json:"indicators,omitempty"`
	Signals    []models.RuleSignal  `json:"signals,omitempty"`
}

type analyzeResponse struct {
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// Analyze posts the analysis context and maps the reply.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, in domsvc.AnalysisContext) (*models.AIAnalysis, error) {
	req := analyzeRequest{
		Symbol:     in.Symbol,
		Indicators: in.Indicators,
		Signals:    in.RuleSignals,
	}
	if in.MarketData != nil {
		req.Price = in.MarketData.CurrentPrice
		req.ChangePct = in.MarketData.ChangePercent
	}

	var body []byte
	if err := a.base.PostJSONWithRetry(ctx, "/analyze", req, &body, analyzeAttempts); err != nil {
		return nil, fmt.Errorf("analysis service: %w", err)
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Recommendation == "" {
		// non-JSON or free-form reply, keep it as-is
		return &models.AIAnalysis{Raw: strings.TrimSpace(string(body))}, nil
	}

	return &models.AIAnalysis{
		Recommendation: strings.ToUpper(parsed.Recommendation),
		Confidence:     parsed.Confidence,
		Reasoning:      parsed.Reasoning,
	}, nil
}

var _ domsvc.Analyzer = (*HTTPAnalyzer)(nil)
