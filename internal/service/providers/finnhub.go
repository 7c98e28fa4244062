package providers

import (
	"context"
	"fmt"
	"time"

	"SignalPull/internal/domain/models"
	phttp "SignalPull/pkg/http"
)

const finnhubDefaultURL = "https://finnhub.io/api/v1"

// Finnhub fetches quotes and daily candles from the Finnhub REST API.
type Finnhub struct {
	apiKey  string
	baseURL string
	client  *phttp.Client
}

// NewFinnhub creates a Finnhub adapter.
func NewFinnhub(apiKey, baseURL string, client *phttp.Client) *Finnhub {
	if baseURL == "" {
		baseURL = finnhubDefaultURL
	}
	return &Finnhub{apiKey: apiKey, baseURL: baseURL, client: client}
}

func (f *Finnhub) Name() string        { return "finnhub" }
func (f *Finnhub) DisplayName() string { return "Finnhub" }

type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
}

type finnhubCandles struct {
	Status  string    `json:"s"`
	Times   []int64   `json:"t"`
	Opens   []float64 `json:"o"`
	Highs   []float64 `json:"h"`
	Lows    []float64 `json:"l"`
	Closes  []float64 `json:"c"`
	Volumes []float64 `json:"v"`
}

// Fetch retrieves the current quote and lookback daily candles.
func (f *Finnhub) Fetch(ctx context.Context, symbol string, lookback int) (*models.MarketData, error) {
	var quote finnhubQuote
	err := f.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    f.baseURL + "/quote",
		QueryParams: map[string]string{
			"symbol": symbol,
			"token":  f.apiKey,
		},
	}, &quote)
	if err != nil {
		return nil, models.NewProviderError(f.Name(), fmt.Errorf("quote: %w", err))
	}
	if quote.Current == 0 && quote.PrevClose == 0 {
		return nil, models.NewProviderError(f.Name(), fmt.Errorf("empty quote for %s", symbol))
	}

	// request a margin over the lookback so weekends/holidays do not starve it
	to := time.Now()
	from := to.AddDate(0, 0, -(lookback*7/5 + 10))

	var candles finnhubCandles
	err = f.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    f.baseURL + "/stock/candle",
		QueryParams: map[string]string{
			"symbol":     symbol,
			"resolution": "D",
			"from":       fmt.Sprintf("%d", from.Unix()),
			"to":         fmt.Sprintf("%d", to.Unix()),
			"token":      f.apiKey,
		},
	}, &candles)
	if err != nil {
		return nil, models.NewProviderError(f.Name(), fmt.Errorf("candles: %w", err))
	}
	if candles.Status != "ok" {
		return nil, models.NewProviderError(f.Name(), fmt.Errorf("candle status %q for %s", candles.Status, symbol))
	}

	n := len(candles.Times)
	if n == 0 || len(candles.Opens) != n || len(candles.Highs) != n ||
		len(candles.Lows) != n || len(candles.Closes) != n || len(candles.Volumes) != n {
		return nil, models.NewProviderError(f.Name(), fmt.Errorf("ragged candle arrays for %s", symbol))
	}

	bars := make([]models.Bar, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, models.Bar{
			Date:   time.Unix(candles.Times[i], 0).UTC().Truncate(24 * time.Hour),
			Open:   candles.Opens[i],
			High:   candles.Highs[i],
			Low:    candles.Lows[i],
			Close:  candles.Closes[i],
			Volume: int64(candles.Volumes[i]),
		})
	}

	bars, err = normalizeSeries(bars, lookback)
	if err != nil {
		return nil, models.NewProviderError(f.Name(), err)
	}

	var volume int64
	if len(bars) > 0 {
		volume = bars[len(bars)-1].Volume
	}

	return &models.MarketData{
		Symbol:        symbol,
		CurrentPrice:  quote.Current,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		Volume:        volume,
		Historical:    bars,
	}, nil
}
