package rules

import (
	"testing"
	"time"

	"SignalPull/internal/domain/models"
	"SignalPull/internal/services/indicators"
)

func neutralSet() *models.IndicatorSet {
	return &models.IndicatorSet{
		RSI:        models.RSIResult{Value: 50, Signal: models.SignalNeutral},
		MACD:       models.MACDResult{Signal: models.SignalNeutral},
		Stochastic: models.StochasticResult{K: 50, Signal: models.SignalNeutral},
		Bollinger:  models.BollingerResult{PercentB: 0.5},
	}
}

func TestGenerateNilSet(t *testing.T) {
	if got := Generate(nil); got != nil {
		t.Fatalf("expected no signals for nil set, got %v", got)
	}
}

func TestGenerateNeutralSetEmitsNothing(t *testing.T) {
	if got := Generate(neutralSet()); len(got) != 0 {
		t.Fatalf("expected no signals, got %v", got)
	}
}

func TestRSIOversoldEmitsStrongBuy(t *testing.T) {
	set := neutralSet()
	set.RSI = models.RSIResult{Value: 25, Signal: models.SignalOversold}

	got := Generate(set)
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(got))
	}
	if got[0].Indicator != "RSI" || got[0].Signal != models.ActionBuy || got[0].Strength != models.StrengthStrong {
		t.Errorf("unexpected signal %+v", got[0])
	}
}

func TestMACDRequiresHistogramAgreement(t *testing.T) {
	set := neutralSet()
	set.MACD = models.MACDResult{Signal: models.SignalBullish, Histogram: -0.1}
	if got := Generate(set); len(got) != 0 {
		t.Fatalf("bullish MACD with negative histogram should not fire, got %v", got)
	}

	set.MACD.Histogram = 0.1
	got := Generate(set)
	if len(got) != 1 || got[0].Signal != models.ActionBuy || got[0].Strength != models.StrengthMedium {
		t.Fatalf("expected medium BUY, got %v", got)
	}
}

func TestBollingerExtremes(t *testing.T) {
	set := neutralSet()
	set.Bollinger.PercentB = 0.1
	got := Generate(set)
	if len(got) != 1 || got[0].Signal != models.ActionBuy {
		t.Fatalf("expected Bollinger BUY, got %v", got)
	}

	set.Bollinger.PercentB = 0.9
	got = Generate(set)
	if len(got) != 1 || got[0].Signal != models.ActionSell {
		t.Fatalf("expected Bollinger SELL, got %v", got)
	}
}

func TestMultipleRulesFire(t *testing.T) {
	set := neutralSet()
	set.RSI = models.RSIResult{Value: 25, Signal: models.SignalOversold}
	set.Stochastic = models.StochasticResult{K: 10, Signal: models.SignalOversold}
	set.Bollinger.PercentB = 0.1

	got := Generate(set)
	if len(got) != 3 {
		t.Fatalf("expected 3 signals, got %d", len(got))
	}
}

func TestVolumeConfirmationUpgradesOnce(t *testing.T) {
	set := neutralSet()
	set.RSI = models.RSIResult{Value: 25, Signal: models.SignalOversold}
	set.Stochastic = models.StochasticResult{K: 10, Signal: models.SignalOversold}
	set.Volume.AboveAverage = true

	got := Generate(set)
	if len(got) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(got))
	}
	for _, s := range got {
		switch s.Indicator {
		case "RSI":
			if s.Strength != models.StrengthVeryStrong {
				t.Errorf("RSI strength = %q, want very_strong", s.Strength)
			}
		case "Stochastic":
			if s.Strength != models.StrengthStrong {
				t.Errorf("Stochastic strength = %q, want strong", s.Strength)
			}
		}
	}
}

func TestUpgradeCapsAtVeryStrong(t *testing.T) {
	if got := upgrade(models.StrengthVeryStrong); got != models.StrengthVeryStrong {
		t.Errorf("upgrade(very_strong) = %q", got)
	}
}

func TestFlatSeriesFiresNoSignals(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 60)
	for i := range bars {
		bars[i] = models.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   100,
			High:   100,
			Low:    100,
			Close:  100,
			Volume: 1000,
		}
	}

	set := indicators.CalculateAll(bars)
	if set == nil {
		t.Fatal("expected an indicator set for 60 bars")
	}
	if set.RSI.Value != 50 || set.RSI.Signal != models.SignalNeutral {
		t.Errorf("flat RSI = %v (%q), want 50 neutral", set.RSI.Value, set.RSI.Signal)
	}
	if got := Generate(set); len(got) != 0 {
		t.Fatalf("flat series fired %d signals: %+v", len(got), got)
	}
}
