package domain

import "github.com/shopspring/decimal"

// Stored amounts are NUMERIC(12,2): two fractional digits and at most ten
// integer digits.
const MoneyScale = 2

var maxAmount = decimal.New(1, 10)

// CheckAmount rejects a monetary value that would not be stored exactly.
func CheckAmount(name string, d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return Invalid("%s cannot be negative", name)
	case !d.Equal(d.Round(MoneyScale)):
		return Invalid("%s cannot have more than %d decimal places", name, MoneyScale)
	case d.GreaterThanOrEqual(maxAmount):
		return Invalid("%s is too large", name)
	}
	return nil
}
