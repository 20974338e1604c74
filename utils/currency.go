package utils

import "math"

// MinimumChargeCents is the smallest amount the card processor accepts
const MinimumChargeCents = 50

// ToMinorUnits converts a USD amount in major units to cents, rounding to
// the nearest cent so 5.00 -> 500 and 0.255 -> 26
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts cents back to a major-unit amount
func FromMinorUnits(cents int64) float64 {
	return float64(cents) / 100
}

// ConvertUSDToPHP applies a cached exchange rate, rounded to centavos
func ConvertUSDToPHP(usd, rate float64) float64 {
	return math.Round(usd*rate*100) / 100
}
