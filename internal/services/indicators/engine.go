// Package indicators computes the full technical-indicator battery from one
// OHLCV series. Every function is pure: no state survives between calls.
package indicators

import "SignalPull/internal/domain/models"

// MinBars is the minimum history depth required by the engine. Shorter series
// produce no indicator set at all rather than a best-effort partial one.
const MinBars = 50

// Fixed indicator windows.
const (
	smaShortPeriod   = 20
	smaLongPeriod    = 50
	emaFastPeriod    = 12
	emaSlowPeriod    = 26
	macdSignalPeriod = 9
	rsiPeriod        = 14
	bollingerPeriod  = 20
	bollingerStdDev  = 2.0
	stochasticK      = 14
	stochasticD      = 3
	williamsRPeriod  = 14
	cciPeriod        = 20
	rocPeriod        = 10
	mfiPeriod        = 14
	adxPeriod        = 14
	atrPeriod        = 14
	levelsWindow     = 10
	volatilityWindow = 20
	volumeAvgPeriod  = 20
)

// CalculateAll computes every indicator from the series, or returns nil when
// fewer than MinBars bars are available.
func CalculateAll(bars []models.Bar) *models.IndicatorSet {
	if len(bars) < MinBars {
		return nil
	}

	closes := models.Closes(bars)

	return &models.IndicatorSet{
		SMA20:      SMA(closes, smaShortPeriod),
		SMA50:      SMA(closes, smaLongPeriod),
		EMA12:      EMA(closes, emaFastPeriod),
		EMA26:      EMA(closes, emaSlowPeriod),
		MACD:       MACD(closes, emaFastPeriod, emaSlowPeriod, macdSignalPeriod),
		RSI:        RSI(closes, rsiPeriod),
		Bollinger:  Bollinger(closes, bollingerPeriod, bollingerStdDev),
		Stochastic: Stochastic(bars, stochasticK, stochasticD),
		WilliamsR:  WilliamsR(bars, williamsRPeriod),
		CCI:        CCI(bars, cciPeriod),
		ROC:        ROC(closes, rocPeriod),
		MFI:        MFI(bars, mfiPeriod),
		ADX:        ADX(bars, adxPeriod),
		ATR:        ATR(bars, atrPeriod),
		Levels:     Levels(bars, levelsWindow),
		Pattern:    Pattern(bars),
		Volatility: Volatility(closes, volatilityWindow),
		Volume:     VolumeAnalysis(bars, volumeAvgPeriod),
	}
}
