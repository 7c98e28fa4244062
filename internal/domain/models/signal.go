package models

import (
	"encoding/json"
	"time"
)

// Rule signal actions.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)

// Rule signal strengths, ordered weakest to strongest.
const (
	StrengthWeak       = "weak"
	StrengthMedium     = "medium"
	StrengthStrong     = "strong"
	StrengthVeryStrong = "very_strong"
)

// RuleSignal is one discrete threshold rule that fired. The rule engine emits
// a list of these; interpretation stays with the next layer.
type RuleSignal struct {
	Indicator string `json:"indicator"`
	Signal    string `json:"signal"`   // BUY or SELL
	Strength  string `json:"strength"` // weak, medium, strong, very_strong
}

// Prediction is an externally computed ML prediction, treated as opaque.
type Prediction struct {
	Symbol     string          `json:"symbol"`
	Payload    json.RawMessage `json:"payload"`
	Source     string          `json:"source,omitempty"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// AIAnalysis is the narrative stage output. When the external service returns
// unparseable output the raw text is carried as-is; when it is unreachable a
// deterministic fallback fills Recommendation and Reasoning.
type AIAnalysis struct {
	Recommendation string  `json:"recommendation,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	Reasoning      string  `json:"reasoning,omitempty"`
	Raw            string  `json:"raw,omitempty"`
	Fallback       bool    `json:"fallback,omitempty"`
}

// Summary is the aggregated verdict attached to a composite signal.
type Summary struct {
	Signal     string  `json:"signal"` // BUY, SELL, HOLD
	Confidence float64 `json:"confidence"`
	Sentiment  string  `json:"sentiment"` // bullish, bearish, neutral
	Entry      float64 `json:"entry"`
	Target     float64 `json:"target,omitempty"`
	StopLoss   float64 `json:"stopLoss,omitempty"`
	RiskReward float64 `json:"riskReward,omitempty"`
}

// CompositeTradeSignal is the per-symbol aggregate of market data, indicators,
// rule signals, and optional external predictions. Read-only once built; a
// refresh supersedes it rather than mutating it.
type CompositeTradeSignal struct {
	Symbol        string        `json:"symbol"`
	Timestamp     time.Time     `json:"timestamp"`
	MarketData    *MarketData   `json:"marketData"`
	Indicators    *IndicatorSet `json:"technicalIndicators"`
	RuleSignals   []RuleSignal  `json:"signals"`
	MLPredictions *Prediction   `json:"mlPredictions,omitempty"`
	AIAnalysis    *AIAnalysis   `json:"aiAnalysis,omitempty"`
	Summary       Summary       `json:"summary"`
}

// BatchResult is one entry of a settle-all batch. Exactly one of Signal and
// Error is set.
type BatchResult struct {
	Symbol string                `json:"symbol"`
	Signal *CompositeTradeSignal `json:"signal,omitempty"`
	Error  string                `json:"error,omitempty"`
}
