// internal/utils/money.go
package utils

import (
	"github.com/shopspring/decimal"
)

// Amounts are stored as integer minor units; scale says how many of the
// trailing digits are fractional.
func MinorToDecimal(amount int64, scale int32) decimal.Decimal {
	return decimal.New(amount, -scale)
}

func FormatAmount(amount int64, scale int32) string {
	return MinorToDecimal(amount, scale).StringFixed(scale)
}
