package indicators

import (
	"math"

	"SignalPull/internal/domain/models"
)

// Bollinger computes the bands around the period SMA using the population
// standard deviation. percentB degrades to 0.5 on a zero-width band.
func Bollinger(closes []float64, period int, stdDev float64) models.BollingerResult {
	if len(closes) < period {
		return models.BollingerResult{}
	}

	window := closes[len(closes)-period:]
	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(period)

	var variance float64
	for _, v := range window {
		variance += (v - mean) * (v - mean)
	}
	sigma := math.Sqrt(variance / float64(period))

	upper := mean + stdDev*sigma
	lower := mean - stdDev*sigma

	percentB := 0.5
	if upper != lower {
		percentB = (closes[len(closes)-1] - lower) / (upper - lower)
	}

	return models.BollingerResult{Upper: upper, Middle: mean, Lower: lower, PercentB: percentB}
}

// trueRange is the max of the three standard true-range terms.
func trueRange(cur, prev models.Bar) float64 {
	hl := cur.High - cur.Low
	hc := math.Abs(cur.High - prev.Close)
	lc := math.Abs(cur.Low - prev.Close)
	return math.Max(hl, math.Max(hc, lc))
}

// ATR averages the true range over the trailing period.
func ATR(bars []models.Bar, period int) float64 {
	if len(bars) < period+1 {
		return 0
	}

	var sum float64
	start := len(bars) - period
	for i := start; i < len(bars); i++ {
		sum += trueRange(bars[i], bars[i-1])
	}
	return sum / float64(period)
}

// ADX is a simplified directional-strength reading: DI values from summed
// directional movement over the window, DX collapsed to a single reading.
func ADX(bars []models.Bar, period int) models.ADXResult {
	if len(bars) < period+1 {
		return models.ADXResult{Trend: models.SignalNeutral}
	}

	var plusDM, minusDM, trSum float64
	start := len(bars) - period
	for i := start; i < len(bars); i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM += upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM += downMove
		}
		trSum += trueRange(bars[i], bars[i-1])
	}

	if trSum == 0 {
		return models.ADXResult{Trend: models.SignalNeutral}
	}

	plusDI := 100 * plusDM / trSum
	minusDI := 100 * minusDM / trSum

	var adx float64
	if plusDI+minusDI != 0 {
		adx = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}

	trend := models.SignalNeutral
	if adx > 25 {
		if plusDI > minusDI {
			trend = models.SignalBullish
		} else {
			trend = models.SignalBearish
		}
	}
	return models.ADXResult{ADX: adx, PlusDI: plusDI, MinusDI: minusDI, Trend: trend}
}

// Volatility is the standard deviation of daily returns over the trailing
// window, annualized by sqrt(252).
func Volatility(closes []float64, window int) models.VolatilityResult {
	if len(closes) < window+1 {
		return models.VolatilityResult{Level: "low"}
	}

	returns := make([]float64, 0, window)
	start := len(closes) - window
	for i := start; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(returns) == 0 {
		return models.VolatilityResult{Level: "low"}
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	daily := math.Sqrt(variance / float64(len(returns)))
	annualized := daily * math.Sqrt(252)

	level := "low"
	switch {
	case annualized > 0.30:
		level = "high"
	case annualized > 0.15:
		level = "medium"
	}
	return models.VolatilityResult{Daily: daily, Annualized: annualized, Level: level}
}
