package rates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// StaticSource serves a fixed set of rates, typically read from configuration
type StaticSource map[domain.Currency]decimal.Decimal

// FetchRates returns a copy of the configured rates
func (s StaticSource) FetchRates(_ context.Context) (map[domain.Currency]decimal.Decimal, error) {
	out := make(map[domain.Currency]decimal.Decimal, len(s))
	for c, r := range s {
		out[c] = r
	}
	return out, nil
}

// ParseStaticSource builds a StaticSource from currency code -> rate strings
func ParseStaticSource(raw map[string]string) (StaticSource, error) {
	src := make(StaticSource, len(raw))
	for code, value := range raw {
		c, err := domain.ParseCurrency(code)
		if err != nil {
			return nil, fmt.Errorf("invalid rate currency %q: %w", code, err)
		}
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", c, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", c)
		}
		src[c] = rate
	}
	return src, nil
}
