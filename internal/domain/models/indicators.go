package models

// Qualitative indicator labels.
const (
	SignalOverbought = "overbought"
	SignalOversold   = "oversold"
	SignalNeutral    = "neutral"
	SignalBullish    = "bullish"
	SignalBearish    = "bearish"
)

type RSIResult struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

type MACDResult struct {
	Line      float64 `json:"line"`
	SignalVal float64 `json:"signalLine"`
	Histogram float64 `json:"histogram"`
	Signal    string  `json:"signal"`
}

type BollingerResult struct {
	Upper    float64 `json:"upper"`
	Middle   float64 `json:"middle"`
	Lower    float64 `json:"lower"`
	PercentB float64 `json:"percentB"`
}

type StochasticResult struct {
	K      float64 `json:"k"`
	D      float64 `json:"d"`
	Signal string  `json:"signal"`
}

type WilliamsRResult struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

type CCIResult struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

type ROCResult struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

type MFIResult struct {
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

type ADXResult struct {
	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"plusDI"`
	MinusDI float64 `json:"minusDI"`
	Trend   string  `json:"trend"`
}

// PriceLevel is a support or resistance level derived from historical closes.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Strength int     `json:"strength"`
	Distance float64 `json:"distance"` // percent gap from current close
}

type LevelsResult struct {
	Support    PriceLevel `json:"support"`
	Resistance PriceLevel `json:"resistance"`
}

type VolatilityResult struct {
	Daily      float64 `json:"daily"`
	Annualized float64 `json:"annualized"`
	Level      string  `json:"level"` // high, medium, low
}

type VolumeResult struct {
	Current      int64   `json:"current"`
	Average      float64 `json:"average"` // 20-period average
	AboveAverage bool    `json:"aboveAverage"`
	OBV          float64 `json:"obv"`
}

// IndicatorSet is the full indicator battery computed from one OHLCV series.
// Produced fresh per call and never mutated afterwards.
type IndicatorSet struct {
	SMA20      float64          `json:"sma20"`
	SMA50      float64          `json:"sma50"`
	EMA12      float64          `json:"ema12"`
	EMA26      float64          `json:"ema26"`
	MACD       MACDResult       `json:"macd"`
	RSI        RSIResult        `json:"rsi"`
	Bollinger  BollingerResult  `json:"bollinger"`
	Stochastic StochasticResult `json:"stochastic"`
	WilliamsR  WilliamsRResult  `json:"williamsR"`
	CCI        CCIResult        `json:"cci"`
	ROC        ROCResult        `json:"roc"`
	MFI        MFIResult        `json:"mfi"`
	ADX        ADXResult        `json:"adx"`
	ATR        float64          `json:"atr"`
	Levels     LevelsResult     `json:"levels"`
	Pattern    string           `json:"pattern"` // uptrend, downtrend, consolidation, reversal, sideways
	Volatility VolatilityResult `json:"volatility"`
	Volume     VolumeResult     `json:"volume"`
}
