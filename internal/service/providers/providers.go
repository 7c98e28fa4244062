// Package providers contains the market-data provider adapters. Each adapter
// translates one external API's quote + history responses into the common
// MarketData shape and nothing more: no retry, no caching, no fallback.
package providers

import (
	"fmt"
	"sort"
	"time"

	"SignalPull/internal/domain/models"
	"SignalPull/pkg/util"
)

// normalizeSeries sorts bars ascending by date, validates each bar and trims
// the series to at most lookback entries (most recent kept). An empty or
// inconsistent series is an error: adapters never return partial data.
func normalizeSeries(bars []models.Bar, lookback int) ([]models.Bar, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("empty historical series")
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	for i, b := range bars {
		if !b.Valid() {
			return nil, fmt.Errorf("inconsistent bar at %s", b.Date.Format("2006-01-02"))
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return nil, fmt.Errorf("duplicate bar date %s", b.Date.Format("2006-01-02"))
		}
	}

	if lookback > 0 && len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}
	return bars, nil
}

// parseDay parses a provider's daily date string. Some providers return bare
// dates, others full timestamps, so this accepts both.
func parseDay(s string) (time.Time, error) {
	t, ok := util.ParseTime(s)
	if !ok {
		return time.Time{}, fmt.Errorf("parse date %q", s)
	}
	return t, nil
}
