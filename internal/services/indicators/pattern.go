package indicators

import "SignalPull/internal/domain/models"

// Recognized price-action patterns over the last five bars.
const (
	PatternUptrend       = "uptrend"
	PatternDowntrend     = "downtrend"
	PatternConsolidation = "consolidation"
	PatternReversal      = "reversal"
	PatternSideways      = "sideways"
)

// Pattern classifies the last five bars by comparing the sequences of highs
// and lows. Non-decreasing highs and lows mean an uptrend, non-increasing
// mean a downtrend; a narrowing range is consolidation and a widening one a
// reversal setup. Anything else is sideways.
func Pattern(bars []models.Bar) string {
	const window = 5
	if len(bars) < window {
		return PatternSideways
	}

	recent := bars[len(bars)-window:]
	highsUp, highsDown := true, true
	lowsUp, lowsDown := true, true
	for i := 1; i < window; i++ {
		if recent[i].High < recent[i-1].High {
			highsUp = false
		}
		if recent[i].High > recent[i-1].High {
			highsDown = false
		}
		if recent[i].Low < recent[i-1].Low {
			lowsUp = false
		}
		if recent[i].Low > recent[i-1].Low {
			lowsDown = false
		}
	}

	switch {
	case highsUp && lowsUp:
		return PatternUptrend
	case highsDown && lowsDown:
		return PatternDowntrend
	case highsDown && lowsUp:
		return PatternConsolidation
	case highsUp && lowsDown:
		return PatternReversal
	default:
		return PatternSideways
	}
}
