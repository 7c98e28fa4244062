package providers

import (
	"context"
	"fmt"
	"strconv"

	"SignalPull/internal/domain/models"
	phttp "SignalPull/pkg/http"
)

const twelveDataDefaultURL = "https://api.twelvedata.com"

// TwelveData fetches quote and daily time series from the Twelve Data API.
type TwelveData struct {
	apiKey  string
	baseURL string
	client  *phttp.Client
}

// NewTwelveData creates a Twelve Data adapter.
func NewTwelveData(apiKey, baseURL string, client *phttp.Client) *TwelveData {
	if baseURL == "" {
		baseURL = twelveDataDefaultURL
	}
	return &TwelveData{apiKey: apiKey, baseURL: baseURL, client: client}
}

func (t *TwelveData) Name() string        { return "twelvedata" }
func (t *TwelveData) DisplayName() string { return "Twelve Data" }

type tdQuote struct {
	Close         string `json:"close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
	Volume        string `json:"volume"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

type tdSeries struct {
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Fetch retrieves the current quote and lookback daily bars.
func (t *TwelveData) Fetch(ctx context.Context, symbol string, lookback int) (*models.MarketData, error) {
	var quote tdQuote
	err := t.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    t.baseURL + "/quote",
		QueryParams: map[string]string{
			"symbol": symbol,
			"apikey": t.apiKey,
		},
	}, &quote)
	if err != nil {
		return nil, models.NewProviderError(t.Name(), fmt.Errorf("quote: %w", err))
	}
	if quote.Status == "error" {
		return nil, models.NewProviderError(t.Name(), fmt.Errorf("api: %s", quote.Message))
	}
	if quote.Close == "" {
		return nil, models.NewProviderError(t.Name(), fmt.Errorf("empty quote for %s", symbol))
	}

	price, err := strconv.ParseFloat(quote.Close, 64)
	if err != nil {
		return nil, models.NewProviderError(t.Name(), fmt.Errorf("parse close %q: %w", quote.Close, err))
	}
	change, _ := strconv.ParseFloat(quote.Change, 64)
	changePct, _ := strconv.ParseFloat(quote.PercentChange, 64)
	volume, _ := strconv.ParseInt(quote.Volume, 10, 64)

	var series tdSeries
	err = t.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    t.baseURL + "/time_series",
		QueryParams: map[string]string{
			"symbol":     symbol,
			"interval":   "1day",
			"outputsize": strconv.Itoa(lookback),
			"apikey":     t.apiKey,
		},
	}, &series)
	if err != nil {
		return nil, models.NewProviderError(t.Name(), fmt.Errorf("time series: %w", err))
	}
	if series.Status == "error" {
		return nil, models.NewProviderError(t.Name(), fmt.Errorf("api: %s", series.Message))
	}

	bars := make([]models.Bar, 0, len(series.Values))
	for _, row := range series.Values {
		date, err := parseDay(row.Datetime)
		if err != nil {
			return nil, models.NewProviderError(t.Name(), err)
		}
		o, err1 := strconv.ParseFloat(row.Open, 64)
		h, err2 := strconv.ParseFloat(row.High, 64)
		l, err3 := strconv.ParseFloat(row.Low, 64)
		c, err4 := strconv.ParseFloat(row.Close, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, models.NewProviderError(t.Name(), fmt.Errorf("malformed bar on %s", row.Datetime))
		}
		v, _ := strconv.ParseInt(row.Volume, 10, 64)
		bars = append(bars, models.Bar{Date: date, Open: o, High: h, Low: l, Close: c, Volume: v})
	}

	bars, err = normalizeSeries(bars, lookback)
	if err != nil {
		return nil, models.NewProviderError(t.Name(), err)
	}

	return &models.MarketData{
		Symbol:        symbol,
		CurrentPrice:  price,
		Change:        change,
		ChangePercent: changePct,
		Volume:        volume,
		Historical:    bars,
	}, nil
}
