package binance

import "github.com/shopspring/decimal"

// QuantizeDown floors value to the nearest multiple of increment. A
// non-positive increment returns value unchanged.
func QuantizeDown(value, increment decimal.Decimal) decimal.Decimal {
	if !increment.IsPositive() {
		return value
	}

	quotient, remainder := value.QuoRem(increment, 0)
	if remainder.IsNegative() {
		quotient = quotient.Sub(decimal.NewFromInt(1))
	}

	return quotient.Mul(increment)
}
