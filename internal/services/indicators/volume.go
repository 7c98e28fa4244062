package indicators

import "SignalPull/internal/domain/models"

// OBV accumulates volume on up-closes and subtracts it on down-closes.
func OBV(bars []models.Bar) float64 {
	var obv float64
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			obv += float64(bars[i].Volume)
		case bars[i].Close < bars[i-1].Close:
			obv -= float64(bars[i].Volume)
		}
	}
	return obv
}

// VolumeAnalysis compares the latest volume against its trailing average.
func VolumeAnalysis(bars []models.Bar, avgPeriod int) models.VolumeResult {
	if len(bars) == 0 {
		return models.VolumeResult{}
	}

	current := bars[len(bars)-1].Volume

	window := bars
	if len(bars) > avgPeriod {
		window = bars[len(bars)-avgPeriod:]
	}
	var sum float64
	for _, v := range models.Volumes(window) {
		sum += v
	}
	avg := sum / float64(len(window))

	return models.VolumeResult{
		Current:      current,
		Average:      avg,
		AboveAverage: float64(current) > avg,
		OBV:          OBV(bars),
	}
}
