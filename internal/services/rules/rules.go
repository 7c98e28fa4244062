// Package rules turns an indicator set into discrete threshold signals. The
// rule set is fixed and ordered; rules are not mutually exclusive.
package rules

import "SignalPull/internal/domain/models"

// Generate evaluates the rule battery against the indicator set. A nil set
// yields no signals. After all rules run, an above-average current volume
// upgrades every emitted signal's strength one level, once.
func Generate(set *models.IndicatorSet) []models.RuleSignal {
	if set == nil {
		return nil
	}

	var signals []models.RuleSignal
	emit := func(indicator, action, strength string) {
		signals = append(signals, models.RuleSignal{
			Indicator: indicator,
			Signal:    action,
			Strength:  strength,
		})
	}

	switch set.RSI.Signal {
	case models.SignalOversold:
		emit("RSI", models.ActionBuy, models.StrengthStrong)
	case models.SignalOverbought:
		emit("RSI", models.ActionSell, models.StrengthStrong)
	}

	if set.MACD.Signal == models.SignalBullish && set.MACD.Histogram > 0 {
		emit("MACD", models.ActionBuy, models.StrengthMedium)
	} else if set.MACD.Signal == models.SignalBearish && set.MACD.Histogram < 0 {
		emit("MACD", models.ActionSell, models.StrengthMedium)
	}

	switch set.Stochastic.Signal {
	case models.SignalOversold:
		emit("Stochastic", models.ActionBuy, models.StrengthMedium)
	case models.SignalOverbought:
		emit("Stochastic", models.ActionSell, models.StrengthMedium)
	}

	if set.Bollinger.PercentB < 0.2 {
		emit("Bollinger", models.ActionBuy, models.StrengthStrong)
	} else if set.Bollinger.PercentB > 0.8 {
		emit("Bollinger", models.ActionSell, models.StrengthStrong)
	}

	if set.Volume.AboveAverage {
		for i := range signals {
			signals[i].Strength = upgrade(signals[i].Strength)
		}
	}

	return signals
}

// upgrade bumps a strength one level; very_strong is the ceiling.
func upgrade(strength string) string {
	switch strength {
	case models.StrengthWeak:
		return models.StrengthMedium
	case models.StrengthMedium:
		return models.StrengthStrong
	case models.StrengthStrong:
		return models.StrengthVeryStrong
	default:
		return strength
	}
}
