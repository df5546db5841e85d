package domain

import (
	"strings"

	"golang.org/x/text/currency"
)

// Currency is an ISO 4217 currency code in upper case
type Currency string

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency normalizes and validates an ISO 4217 code ("usd" -> "USD")
func ParseCurrency(code string) (Currency, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return "", NewValidationError("currency", "currency is required")
	}

	unit, err := currency.ParseISO(trimmed)
	if err != nil {
		return "", NewValidationError("currency", "unknown currency "+trimmed)
	}

	return Currency(unit.String()), nil
}

// MustParseCurrency is ParseCurrency for constants and fixtures; it panics on bad input
func MustParseCurrency(code string) Currency {
	c, err := ParseCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}
