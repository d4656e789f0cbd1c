// Package odds holds the pure betting math: decimal/American conversion,
// expected value, and fractional Kelly stake sizing.
package odds

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOdds indicates a decimal price at or below 1.0 was passed where
// a real price is mandatory. That is an upstream contract violation, not a
// normal absence, so it surfaces as an error.
var ErrInvalidOdds = errors.New("invalid odds: decimal price must be > 1.0")

// DecimalToAmerican converts a decimal price to American odds notation.
// Prices of 2.0 and longer are positive ("+150"), shorter prices are
// negative ("-120", always <= -100).
func DecimalToAmerican(price float64) (string, error) {
	if price <= 1.0 {
		return "", fmt.Errorf("%w: got %.4f", ErrInvalidOdds, price)
	}
	if price >= 2.0 {
		return fmt.Sprintf("+%d", int(math.Round((price-1)*100))), nil
	}
	return fmt.Sprintf("%d", int(math.Round(-100/(price-1)))), nil
}

// AmericanToDecimal is the inverse conversion, accepting the signed integer
// form produced by DecimalToAmerican.
func AmericanToDecimal(american int) (float64, error) {
	switch {
	case american >= 100:
		return float64(american)/100 + 1, nil
	case american <= -100:
		return 100/float64(-american) + 1, nil
	default:
		return 0, fmt.Errorf("american odds must be >= +100 or <= -100, got %d", american)
	}
}

// ImpliedProbabilityPct returns the bookmaker's implied probability for a
// decimal price, as a percentage. Returns 0 for degenerate prices.
func ImpliedProbabilityPct(price float64) float64 {
	if price <= 1.0 {
		return 0
	}
	return 100 / price
}

// ExpectedValuePct computes EV% for a probability (percentage in [0,100])
// against a decimal price: (p*(price-1) - (1-p)) * 100. Degenerate input
// (non-positive probability or price <= 1) yields 0 rather than an error,
// since a missing edge is an answer, not a failure.
func ExpectedValuePct(probabilityPct, price float64) float64 {
	if probabilityPct <= 0 || price <= 1.0 {
		return 0
	}
	p := probabilityPct / 100
	return (p*(price-1) - (1 - p)) * 100
}

// KellyFraction returns the fraction of bankroll to stake under fractional
// Kelly. probability is in [0,1]; kellyMultiplier in [0,1] scales full Kelly
// down (0.25 is the usual quarter-Kelly). Returns 0 when there is no edge;
// never returns a negative fraction.
func KellyFraction(probability, price, kellyMultiplier float64) (float64, error) {
	if price <= 1.0 {
		return 0, fmt.Errorf("%w: got %.4f", ErrInvalidOdds, price)
	}
	b := price - 1
	q := 1 - probability
	edge := b*probability - q
	if edge <= 0 {
		return 0, nil
	}
	return (edge / b) * kellyMultiplier, nil
}
