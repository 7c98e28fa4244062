package indicators

import (
	"math"
	"testing"
	"time"

	"SignalPull/internal/domain/models"
)

func mkBars(closes []float64) []models.Bar {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func fallingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 200 - float64(i)
	}
	return out
}

func TestCalculateAllRequiresMinBars(t *testing.T) {
	bars := mkBars(risingCloses(MinBars - 1))
	if set := CalculateAll(bars); set != nil {
		t.Fatal("expected nil for short series")
	}

	bars = mkBars(risingCloses(MinBars))
	if set := CalculateAll(bars); set == nil {
		t.Fatal("expected indicator set for sufficient series")
	}
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if got != 4 {
		t.Errorf("SMA = %v, want 4", got)
	}

	series := SMASeries([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{2, 3, 4}
	if len(series) != len(want) {
		t.Fatalf("series len = %d, want %d", len(series), len(want))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("series[%d] = %v, want %v", i, series[i], want[i])
		}
	}
}

func TestEMASeedIsSMA(t *testing.T) {
	values := []float64{2, 4, 6}
	series := EMASeries(values, 3)
	if len(series) != 1 {
		t.Fatalf("series len = %d, want 1", len(series))
	}
	if series[0] != 4 {
		t.Errorf("seed = %v, want SMA 4", series[0])
	}
}

func TestRSIAllGainsIs100(t *testing.T) {
	r := RSI(risingCloses(60), 14)
	if r.Value != 100 {
		t.Errorf("RSI = %v, want 100", r.Value)
	}
	if r.Signal != models.SignalOverbought {
		t.Errorf("signal = %q, want overbought", r.Signal)
	}
}

func TestRSIFlatSeriesNeutral(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	r := RSI(closes, 14)
	if r.Value != 50 {
		t.Errorf("RSI = %v, want 50", r.Value)
	}
	if r.Signal != models.SignalNeutral {
		t.Errorf("signal = %q, want neutral", r.Signal)
	}
}

func TestRSIAllLossesOversold(t *testing.T) {
	r := RSI(fallingCloses(60), 14)
	if r.Value != 0 {
		t.Errorf("RSI = %v, want 0", r.Value)
	}
	if r.Signal != models.SignalOversold {
		t.Errorf("signal = %q, want oversold", r.Signal)
	}
}

func TestRSIBounded(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i))
	}
	r := RSI(closes, 14)
	if r.Value < 0 || r.Value > 100 {
		t.Errorf("RSI out of bounds: %v", r.Value)
	}
}

func TestMACDBullishOnRisingSeries(t *testing.T) {
	m := MACD(risingCloses(100), 12, 26, 9)
	if m.Signal != models.SignalBullish {
		t.Errorf("signal = %q, want bullish", m.Signal)
	}
	if got := m.Line - m.SignalVal; math.Abs(got-m.Histogram) > 1e-9 {
		t.Errorf("histogram %v != line-signal %v", m.Histogram, got)
	}
}

func TestBollingerBandOrdering(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/3)
	}
	b := Bollinger(closes, 20, 2)
	if !(b.Lower <= b.Middle && b.Middle <= b.Upper) {
		t.Errorf("band ordering violated: %v %v %v", b.Lower, b.Middle, b.Upper)
	}
}

func TestBollingerFlatSeries(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	b := Bollinger(closes, 20, 2)
	if b.Upper != b.Lower {
		t.Fatalf("expected zero-width band, got %v %v", b.Upper, b.Lower)
	}
	if b.PercentB != 0.5 {
		t.Errorf("percentB = %v, want 0.5 on zero-width band", b.PercentB)
	}
}

func TestStochasticOverboughtOnRisingSeries(t *testing.T) {
	s := Stochastic(mkBars(risingCloses(60)), 14, 3)
	if s.K < 0 || s.K > 100 {
		t.Errorf("%%K out of bounds: %v", s.K)
	}
	if s.Signal != models.SignalOverbought {
		t.Errorf("signal = %q, want overbought", s.Signal)
	}
}

func TestWilliamsRRange(t *testing.T) {
	w := WilliamsR(mkBars(risingCloses(60)), 14)
	if w.Value < -100 || w.Value > 0 {
		t.Errorf("value out of range: %v", w.Value)
	}
	if w.Signal != models.SignalOverbought {
		t.Errorf("signal = %q, want overbought", w.Signal)
	}
}

func TestROCSign(t *testing.T) {
	up := ROC(risingCloses(60), 10)
	if up.Signal != models.SignalBullish {
		t.Errorf("rising signal = %q, want bullish", up.Signal)
	}
	down := ROC(fallingCloses(60), 10)
	if down.Signal != models.SignalBearish {
		t.Errorf("falling signal = %q, want bearish", down.Signal)
	}
}

func TestOBV(t *testing.T) {
	bars := mkBars([]float64{100, 101, 100, 102})
	// +1000 (up), -1000 (down), +1000 (up)
	if got := OBV(bars); got != 1000 {
		t.Errorf("OBV = %v, want 1000", got)
	}
}

func TestVolumeAboveAverage(t *testing.T) {
	bars := mkBars(risingCloses(30))
	bars[len(bars)-1].Volume = 5000
	v := VolumeAnalysis(bars, 20)
	if !v.AboveAverage {
		t.Error("expected above-average volume")
	}
	if v.Current != 5000 {
		t.Errorf("current = %d, want 5000", v.Current)
	}
}

func TestPatternClassification(t *testing.T) {
	if p := Pattern(mkBars(risingCloses(10))); p != PatternUptrend {
		t.Errorf("rising pattern = %q, want uptrend", p)
	}
	if p := Pattern(mkBars(fallingCloses(10))); p != PatternDowntrend {
		t.Errorf("falling pattern = %q, want downtrend", p)
	}

	flat := make([]float64, 10)
	for i := range flat {
		flat[i] = 100
	}
	// identical bars have non-decreasing highs and lows
	if p := Pattern(mkBars(flat)); p != PatternUptrend {
		t.Errorf("flat pattern = %q", p)
	}
}

func TestLevelsOrderingAndStrength(t *testing.T) {
	l := Levels(mkBars(risingCloses(60)), 10)
	if l.Support.Price > l.Resistance.Price {
		t.Errorf("support %v above resistance %v", l.Support.Price, l.Resistance.Price)
	}
	if l.Support.Strength < 1 || l.Resistance.Strength < 1 {
		t.Error("levels should count at least themselves")
	}
	if l.Resistance.Distance < 0 {
		t.Errorf("resistance below current close: %v", l.Resistance.Distance)
	}
}

func TestVolatilityFlatSeries(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	v := Volatility(closes, 20)
	if v.Daily != 0 || v.Annualized != 0 {
		t.Errorf("flat series volatility = %v/%v, want 0", v.Daily, v.Annualized)
	}
	if v.Level != "low" {
		t.Errorf("level = %q, want low", v.Level)
	}
}

func TestATRPositive(t *testing.T) {
	if got := ATR(mkBars(risingCloses(60)), 14); got <= 0 {
		t.Errorf("ATR = %v, want > 0", got)
	}
}
