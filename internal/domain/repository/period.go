package repository

// Period is the requested depth of OHLCV history.
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
)

// IsValidPeriod returns true if p is a supported period.
func IsValidPeriod(p Period) bool {
	switch p {
	case Period1Mo, Period3Mo, Period6Mo, Period1Y:
		return true
	default:
		return false
	}
}

// DefaultPeriod returns the default history depth.
func DefaultPeriod() Period { return Period3Mo }

// NormalizePeriod converts a raw string to a valid period (or default).
func NormalizePeriod(s string) Period {
	if s == "" {
		return DefaultPeriod()
	}
	p := Period(s)
	if IsValidPeriod(p) {
		return p
	}
	return DefaultPeriod()
}

// LookbackBars maps a period to the number of daily bars to request,
// at roughly 21 trading days per month.
func (p Period) LookbackBars() int {
	switch p {
	case Period1Mo:
		return 21
	case Period6Mo:
		return 126
	case Period1Y:
		return 252
	default:
		return 63
	}
}
