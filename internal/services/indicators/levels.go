package indicators

import (
	"math"

	"SignalPull/internal/domain/models"
)

// Levels derives support and resistance from the min/max close over the
// trailing window. Strength counts historical closes within 1% of the level;
// distance is the percentage gap from the current close.
func Levels(bars []models.Bar, window int) models.LevelsResult {
	if len(bars) == 0 {
		return models.LevelsResult{}
	}

	recent := bars
	if len(bars) > window {
		recent = bars[len(bars)-window:]
	}

	support, resistance := math.Inf(1), math.Inf(-1)
	for _, b := range recent {
		support = math.Min(support, b.Close)
		resistance = math.Max(resistance, b.Close)
	}

	current := bars[len(bars)-1].Close
	return models.LevelsResult{
		Support:    buildLevel(bars, support, current),
		Resistance: buildLevel(bars, resistance, current),
	}
}

func buildLevel(bars []models.Bar, price, current float64) models.PriceLevel {
	strength := 0
	for _, b := range bars {
		if price != 0 && math.Abs(b.Close-price)/price <= 0.01 {
			strength++
		}
	}

	var distance float64
	if current != 0 {
		distance = (price - current) / current * 100
	}
	return models.PriceLevel{Price: price, Strength: strength, Distance: distance}
}
