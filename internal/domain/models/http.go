package models

import "encoding/json"

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type SignalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=12"`
}

type BatchSignalsRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,max=25,dive,min=1,max=12"`
}

type MarketDataRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,min=1,max=12"`
	Period string `query:"period" json:"period" default:"3mo" validate:"oneof=1mo 3mo 6mo 1y"`
}

type PredictionRequest struct {
	Symbol  string          `json:"symbol" validate:"required,min=1,max=12"`
	Source  string          `json:"source" default:"external"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}
