package models

import "time"

// Bar represents one time-period's OHLCV record. Every provider adapter
// normalizes its wire format into this shape; a series is ordered ascending
// by date with no duplicates and is never mutated after the adapter returns.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Valid reports whether low <= min(open,close) <= max(open,close) <= high.
func (b Bar) Valid() bool {
	lo, hi := b.Open, b.Close
	if lo > hi {
		lo, hi = hi, lo
	}
	return b.Low <= lo && hi <= b.High
}

// Closes extracts the close series from bars.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume series from bars.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Volume)
	}
	return out
}
