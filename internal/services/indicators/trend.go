package indicators

// SMASeries returns one arithmetic mean per trailing window position, so
// downstream indicators can reuse the full series. Result length is
// len(values)-period+1; nil when the series is too short.
func SMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	out := make([]float64, 0, len(values)-period+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// SMA returns the mean over the most recent window.
func SMA(values []float64, period int) float64 {
	s := SMASeries(values, period)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// EMASeries seeds with the SMA of the first period points, then applies
// ema[i] = v[i]*k + ema[i-1]*(1-k) with k = 2/(period+1).
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)

	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out = append(out, seed)

	prev := seed
	for _, v := range values[period:] {
		prev = v*k + prev*(1-k)
		out = append(out, prev)
	}
	return out
}

// EMA returns the most recent exponential moving average value.
func EMA(values []float64, period int) float64 {
	s := EMASeries(values, period)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}
