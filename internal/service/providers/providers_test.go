package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SignalPull/internal/domain/models"
	phttp "SignalPull/pkg/http"
)

func TestNormalizeSeriesSortsAndTrims(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}
	bars := []models.Bar{
		{Date: day(2), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Date: day(0), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Date: day(1), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
	}

	out, err := normalizeSeries(bars, 2)
	if err != nil {
		t.Fatalf("normalizeSeries: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(out))
	}
	if !out[0].Date.Equal(day(1)) || !out[1].Date.Equal(day(2)) {
		t.Fatalf("bars not sorted ascending: %v %v", out[0].Date, out[1].Date)
	}
}

func TestNormalizeSeriesRejectsInvalidBar(t *testing.T) {
	bars := []models.Bar{
		{Date: time.Now(), Open: 10, High: 9, Low: 11, Close: 10},
	}
	if _, err := normalizeSeries(bars, 10); err == nil {
		t.Fatal("expected error for inconsistent bar")
	}
}

func TestNormalizeSeriesRejectsDuplicateDates(t *testing.T) {
	d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bars := []models.Bar{
		{Date: d, Open: 10, High: 11, Low: 9, Close: 10},
		{Date: d, Open: 10, High: 11, Low: 9, Close: 10},
	}
	if _, err := normalizeSeries(bars, 10); err == nil {
		t.Fatal("expected error for duplicate dates")
	}
}

func TestFinnhubFetch(t *testing.T) {
	now := time.Now().Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			fmt.Fprint(w, `{"c":150.5,"d":1.5,"dp":1.01,"pc":149.0}`)
		case "/stock/candle":
			fmt.Fprintf(w, `{"s":"ok","t":[%d,%d],"o":[148,149],"h":[151,152],"l":[147,148],"c":[149,150.5],"v":[1000,1200]}`,
				now-86400, now)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewFinnhub("key", srv.URL, phttp.NewClient())
	md, err := p.Fetch(context.Background(), "AAPL", 63)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if md.CurrentPrice != 150.5 {
		t.Errorf("price = %v, want 150.5", md.CurrentPrice)
	}
	if len(md.Historical) != 2 {
		t.Fatalf("bars = %d, want 2", len(md.Historical))
	}
	if md.Volume != 1200 {
		t.Errorf("volume = %d, want 1200", md.Volume)
	}
}

func TestFinnhubFetchNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			fmt.Fprint(w, `{"c":150.5,"pc":149.0}`)
		default:
			fmt.Fprint(w, `{"s":"no_data"}`)
		}
	}))
	defer srv.Close()

	p := NewFinnhub("key", srv.URL, phttp.NewClient())
	_, err := p.Fetch(context.Background(), "AAPL", 63)
	var perr *models.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if perr.Provider != "finnhub" {
		t.Errorf("provider = %q, want finnhub", perr.Provider)
	}
}

func TestAlphaVantageFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("function") {
		case "GLOBAL_QUOTE":
			fmt.Fprint(w, `{"Global Quote":{"05. price":"150.50","06. volume":"1200","09. change":"1.50","10. change percent":"1.0100%"}}`)
		case "TIME_SERIES_DAILY":
			fmt.Fprint(w, `{"Time Series (Daily)":{
				"2025-06-02":{"1. open":"149","2. high":"152","3. low":"148","4. close":"150.50","5. volume":"1200"},
				"2025-06-01":{"1. open":"148","2. high":"151","3. low":"147","4. close":"149","5. volume":"1000"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewAlphaVantage("key", srv.URL, phttp.NewClient())
	md, err := p.Fetch(context.Background(), "AAPL", 63)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if md.CurrentPrice != 150.5 {
		t.Errorf("price = %v, want 150.5", md.CurrentPrice)
	}
	if md.ChangePercent != 1.01 {
		t.Errorf("changePercent = %v, want 1.01", md.ChangePercent)
	}
	if len(md.Historical) != 2 {
		t.Fatalf("bars = %d, want 2", len(md.Historical))
	}
	if !md.Historical[0].Date.Before(md.Historical[1].Date) {
		t.Error("bars not ascending")
	}
}

func TestAlphaVantageRateLimitNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note":"API call frequency is 5 calls per minute"}`)
	}))
	defer srv.Close()

	p := NewAlphaVantage("key", srv.URL, phttp.NewClient())
	_, err := p.Fetch(context.Background(), "AAPL", 63)
	var perr *models.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
}

func TestTwelveDataFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			fmt.Fprint(w, `{"close":"150.50","change":"1.50","percent_change":"1.01","volume":"1200"}`)
		case "/time_series":
			fmt.Fprint(w, `{"values":[
				{"datetime":"2025-06-02","open":"149","high":"152","low":"148","close":"150.50","volume":"1200"},
				{"datetime":"2025-06-01","open":"148","high":"151","low":"147","close":"149","volume":"1000"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewTwelveData("key", srv.URL, phttp.NewClient())
	md, err := p.Fetch(context.Background(), "AAPL", 63)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if md.CurrentPrice != 150.5 {
		t.Errorf("price = %v, want 150.5", md.CurrentPrice)
	}
	if len(md.Historical) != 2 {
		t.Fatalf("bars = %d, want 2", len(md.Historical))
	}
}

func TestTwelveDataAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","message":"symbol not found"}`)
	}))
	defer srv.Close()

	p := NewTwelveData("key", srv.URL, phttp.NewClient())
	_, err := p.Fetch(context.Background(), "NOPE", 63)
	var perr *models.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if perr.Provider != "twelvedata" {
		t.Errorf("provider = %q", perr.Provider)
	}
}
