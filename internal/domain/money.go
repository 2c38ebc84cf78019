package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits stored for every balance and amount.
const MoneyScale = 2

// MaxAmount is the largest value a NUMERIC(15,2) column can hold.
var MaxAmount = decimal.RequireFromString("9999999999999.99")

// ValidateAmount accepts strictly positive amounts with at most two fractional digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return validateMoney(amount)
}

// ValidateInitialDeposit is ValidateAmount that also admits zero.
func ValidateInitialDeposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	return validateMoney(amount)
}

func validateMoney(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, MoneyScale)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: exceeds %s", ErrInvalidAmount, MaxAmount.StringFixed(MoneyScale))
	}
	return nil
}

// ParseAmount parses a decimal string and validates it as a transaction amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", ErrInvalidAmount, s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
