package indicators

import (
	"math"

	"SignalPull/internal/domain/models"
)

// RSI computes a Wilder-smoothed relative strength index over the closes.
// When the average loss is zero but gains exist the value is defined as 100;
// a series with no movement at all is neutral 50.
func RSI(closes []float64, period int) models.RSIResult {
	if len(closes) < period+1 {
		return models.RSIResult{Signal: models.SignalNeutral}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			avgGain += diff
		} else {
			avgLoss -= diff
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if diff > 0 {
			gain = diff
		} else {
			loss = -diff
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	var value float64
	switch {
	case avgGain == 0 && avgLoss == 0:
		value = 50
	case avgLoss == 0:
		value = 100
	default:
		rs := avgGain / avgLoss
		value = 100 - 100/(1+rs)
	}

	signal := models.SignalNeutral
	switch {
	case value > 70:
		signal = models.SignalOverbought
	case value < 30:
		signal = models.SignalOversold
	}
	return models.RSIResult{Value: value, Signal: signal}
}

// MACD computes macdLine = EMA(fast) - EMA(slow), signalLine = EMA of the
// macd-line series, histogram = line - signalLine.
func MACD(closes []float64, fast, slow, signal int) models.MACDResult {
	fastSeries := EMASeries(closes, fast)
	slowSeries := EMASeries(closes, slow)
	if len(fastSeries) == 0 || len(slowSeries) == 0 {
		return models.MACDResult{Signal: models.SignalNeutral}
	}

	// align the tails: slow series is shorter
	n := len(slowSeries)
	fastTail := fastSeries[len(fastSeries)-n:]
	macdSeries := make([]float64, n)
	for i := 0; i < n; i++ {
		macdSeries[i] = fastTail[i] - slowSeries[i]
	}

	line := macdSeries[n-1]
	signalLine := EMA(macdSeries, signal)
	histogram := line - signalLine

	label := models.SignalBearish
	if line > signalLine {
		label = models.SignalBullish
	}
	return models.MACDResult{Line: line, SignalVal: signalLine, Histogram: histogram, Signal: label}
}

// Stochastic computes %K over the k-window and %D as the d-period SMA of %K.
func Stochastic(bars []models.Bar, k, d int) models.StochasticResult {
	if len(bars) < k+d-1 {
		return models.StochasticResult{Signal: models.SignalNeutral}
	}

	kValues := make([]float64, 0, d)
	for i := len(bars) - d; i < len(bars); i++ {
		window := bars[i-k+1 : i+1]
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, b := range window {
			lo = math.Min(lo, b.Low)
			hi = math.Max(hi, b.High)
		}
		if hi == lo {
			kValues = append(kValues, 50)
			continue
		}
		close := bars[i].Close
		kValues = append(kValues, (close-lo)/(hi-lo)*100)
	}

	kVal := kValues[len(kValues)-1]
	var dVal float64
	for _, v := range kValues {
		dVal += v
	}
	dVal /= float64(len(kValues))

	signal := models.SignalNeutral
	switch {
	case kVal > 80:
		signal = models.SignalOverbought
	case kVal < 20:
		signal = models.SignalOversold
	}
	return models.StochasticResult{K: kVal, D: dVal, Signal: signal}
}

// WilliamsR is the inverted stochastic, ranging [-100, 0].
func WilliamsR(bars []models.Bar, period int) models.WilliamsRResult {
	if len(bars) < period {
		return models.WilliamsRResult{Signal: models.SignalNeutral}
	}

	window := bars[len(bars)-period:]
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range window {
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
	}
	close := bars[len(bars)-1].Close

	var value float64
	if hi != lo {
		value = (hi - close) / (hi - lo) * -100
	}

	signal := models.SignalNeutral
	switch {
	case value < -80:
		signal = models.SignalOversold
	case value > -20:
		signal = models.SignalOverbought
	}
	return models.WilliamsRResult{Value: value, Signal: signal}
}

// CCI uses the typical price (H+L+C)/3 against its SMA, scaled by the mean
// absolute deviation.
func CCI(bars []models.Bar, period int) models.CCIResult {
	if len(bars) < period {
		return models.CCIResult{Signal: models.SignalNeutral}
	}

	window := bars[len(bars)-period:]
	tps := make([]float64, period)
	var sum float64
	for i, b := range window {
		tps[i] = (b.High + b.Low + b.Close) / 3
		sum += tps[i]
	}
	mean := sum / float64(period)

	var mad float64
	for _, tp := range tps {
		mad += math.Abs(tp - mean)
	}
	mad /= float64(period)

	var value float64
	if mad != 0 {
		value = (tps[period-1] - mean) / (0.015 * mad)
	}

	signal := models.SignalNeutral
	switch {
	case value > 100:
		signal = models.SignalOverbought
	case value < -100:
		signal = models.SignalOversold
	}
	return models.CCIResult{Value: value, Signal: signal}
}

// ROC is the percentage rate of change over the period.
func ROC(closes []float64, period int) models.ROCResult {
	if len(closes) < period+1 {
		return models.ROCResult{Signal: models.SignalNeutral}
	}

	prev := closes[len(closes)-1-period]
	if prev == 0 {
		return models.ROCResult{Signal: models.SignalNeutral}
	}
	value := (closes[len(closes)-1] - prev) / prev * 100

	signal := models.SignalNeutral
	switch {
	case value > 0:
		signal = models.SignalBullish
	case value < 0:
		signal = models.SignalBearish
	}
	return models.ROCResult{Value: value, Signal: signal}
}

// MFI is a volume-weighted RSI analogue on typical-price money flow.
func MFI(bars []models.Bar, period int) models.MFIResult {
	if len(bars) < period+1 {
		return models.MFIResult{Signal: models.SignalNeutral}
	}

	var posFlow, negFlow float64
	start := len(bars) - period
	for i := start; i < len(bars); i++ {
		tp := (bars[i].High + bars[i].Low + bars[i].Close) / 3
		prevTP := (bars[i-1].High + bars[i-1].Low + bars[i-1].Close) / 3
		flow := tp * float64(bars[i].Volume)
		if tp > prevTP {
			posFlow += flow
		} else if tp < prevTP {
			negFlow += flow
		}
	}

	var value float64
	if negFlow == 0 {
		value = 100
	} else {
		ratio := posFlow / negFlow
		value = 100 - 100/(1+ratio)
	}

	signal := models.SignalNeutral
	switch {
	case value > 80:
		signal = models.SignalOverbought
	case value < 20:
		signal = models.SignalOversold
	}
	return models.MFIResult{Value: value, Signal: signal}
}
