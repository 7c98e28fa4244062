package providers

import (
	"context"
	"fmt"
	"strconv"

	"SignalPull/internal/domain/models"
	phttp "SignalPull/pkg/http"
)

const alphaVantageDefaultURL = "https://www.alphavantage.co/query"

// AlphaVantage fetches GLOBAL_QUOTE and TIME_SERIES_DAILY from Alpha Vantage.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	client  *phttp.Client
}

// NewAlphaVantage creates an Alpha Vantage adapter.
func NewAlphaVantage(apiKey, baseURL string, client *phttp.Client) *AlphaVantage {
	if baseURL == "" {
		baseURL = alphaVantageDefaultURL
	}
	return &AlphaVantage{apiKey: apiKey, baseURL: baseURL, client: client}
}

func (a *AlphaVantage) Name() string        { return "alphavantage" }
func (a *AlphaVantage) DisplayName() string { return "Alpha Vantage" }

type avQuoteResponse struct {
	GlobalQuote struct {
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

type avDailyResponse struct {
	Series map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

// Fetch retrieves the current quote and daily time series.
func (a *AlphaVantage) Fetch(ctx context.Context, symbol string, lookback int) (*models.MarketData, error) {
	var quote avQuoteResponse
	err := a.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    a.baseURL,
		QueryParams: map[string]string{
			"function": "GLOBAL_QUOTE",
			"symbol":   symbol,
			"apikey":   a.apiKey,
		},
	}, &quote)
	if err != nil {
		return nil, models.NewProviderError(a.Name(), fmt.Errorf("quote: %w", err))
	}
	if msg := firstNonEmpty(quote.ErrorMessage, quote.Note); msg != "" {
		return nil, models.NewProviderError(a.Name(), fmt.Errorf("api: %s", msg))
	}
	if quote.GlobalQuote.Price == "" {
		return nil, models.NewProviderError(a.Name(), fmt.Errorf("empty quote for %s", symbol))
	}

	price, err := strconv.ParseFloat(quote.GlobalQuote.Price, 64)
	if err != nil {
		return nil, models.NewProviderError(a.Name(), fmt.Errorf("parse price %q: %w", quote.GlobalQuote.Price, err))
	}
	change, _ := strconv.ParseFloat(quote.GlobalQuote.Change, 64)
	changePct := parsePercent(quote.GlobalQuote.ChangePercent)
	volume, _ := strconv.ParseInt(quote.GlobalQuote.Volume, 10, 64)

	outputSize := "compact"
	if lookback > 100 {
		outputSize = "full"
	}

	var daily avDailyResponse
	err = a.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    a.baseURL,
		QueryParams: map[string]string{
			"function":   "TIME_SERIES_DAILY",
			"symbol":     symbol,
			"outputsize": outputSize,
			"apikey":     a.apiKey,
		},
	}, &daily)
	if err != nil {
		return nil, models.NewProviderError(a.Name(), fmt.Errorf("daily series: %w", err))
	}
	if msg := firstNonEmpty(daily.ErrorMessage, daily.Note); msg != "" {
		return nil, models.NewProviderError(a.Name(), fmt.Errorf("api: %s", msg))
	}

	bars := make([]models.Bar, 0, len(daily.Series))
	for day, row := range daily.Series {
		date, err := parseDay(day)
		if err != nil {
			return nil, models.NewProviderError(a.Name(), err)
		}
		o, err1 := strconv.ParseFloat(row.Open, 64)
		h, err2 := strconv.ParseFloat(row.High, 64)
		l, err3 := strconv.ParseFloat(row.Low, 64)
		c, err4 := strconv.ParseFloat(row.Close, 64)
		v, err5 := strconv.ParseInt(row.Volume, 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return nil, models.NewProviderError(a.Name(), fmt.Errorf("malformed bar on %s", day))
		}
		bars = append(bars, models.Bar{Date: date, Open: o, High: h, Low: l, Close: c, Volume: v})
	}

	bars, err = normalizeSeries(bars, lookback)
	if err != nil {
		return nil, models.NewProviderError(a.Name(), err)
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

// parsePercent strips the trailing "%" Alpha Vantage appends.
func parsePercent(s string) float64 {
	if s == "" {
		return 0
	}
	if s[len(s)-1] == '%' {
		s = s[:len(s)-1]
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
