package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// Table is the in-memory currency rate lookup.
// Rates are expressed as units of a currency per one unit of the base currency,
// so converting to base divides by the rate.
type Table struct {
	mu        sync.RWMutex
	base      domain.Currency
	rates     map[domain.Currency]decimal.Decimal
	updatedAt time.Time

	source domain.RateSource
	logger *zap.Logger
}

// Snapshot is a point-in-time copy of the table
type Snapshot struct {
	Base      domain.Currency
	Rates     map[domain.Currency]decimal.Decimal
	UpdatedAt time.Time
}

// NewTable creates a Table for the given base currency.
// The table is empty until Refresh succeeds; the base currency always converts at 1.
func NewTable(base domain.Currency, source domain.RateSource, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table{
		base:   base,
		rates:  map[domain.Currency]decimal.Decimal{base: decimal.NewFromInt(1)},
		source: source,
		logger: logger.Named("rates"),
	}
}

// Base returns the base currency
func (t *Table) Base() domain.Currency {
	return t.base
}

// Refresh pulls rates from the source and swaps them in atomically.
// Non-positive rates are dropped; the previous table is kept when the source fails.
func (t *Table) Refresh(ctx context.Context) error {
	if t.source == nil {
		return fmt.Errorf("no rate source configured")
	}

	fetched, err := t.source.FetchRates(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rates: %w", err)
	}

	next := make(map[domain.Currency]decimal.Decimal, len(fetched)+1)
	for c, rate := range fetched {
		if !rate.IsPositive() {
			t.logger.Warn("Dropping non-positive rate", zap.String("currency", c.String()), zap.String("rate", rate.String()))
			continue
		}
		next[c] = rate
	}
	next[t.base] = decimal.NewFromInt(1)

	t.mu.Lock()
	t.rates = next
	t.updatedAt = time.Now().UTC()
	t.mu.Unlock()

	t.logger.Info("Currency rates refreshed", zap.Int("count", len(next)))
	return nil
}

// Rate returns units of c per base unit, or a RateUnavailableError
func (t *Table) Rate(c domain.Currency) (decimal.Decimal, error) {
	if c == t.base {
		return decimal.NewFromInt(1), nil
	}

	t.mu.RLock()
	rate, ok := t.rates[c]
	t.mu.RUnlock()

	if !ok {
		return decimal.Zero, &domain.RateUnavailableError{Currency: c}
	}
	return rate, nil
}

// ToBase converts amount in c to the base currency, using fallback when c has no rate
func (t *Table) ToBase(amount decimal.Decimal, c domain.Currency, fallback decimal.Decimal) (decimal.Decimal, error) {
	if c == t.base {
		return amount, nil
	}

	rate, err := t.Rate(c)
	if err != nil {
		if !fallback.IsPositive() {
			return decimal.Zero, err
		}
		t.logger.Debug("Using fallback rate", zap.String("currency", c.String()), zap.String("rate", fallback.String()))
		rate = fallback
	}

	return amount.Div(rate), nil
}

// FromBase converts a base-currency amount into c
func (t *Table) FromBase(amount decimal.Decimal, c domain.Currency) (decimal.Decimal, error) {
	rate, err := t.Rate(c)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// Snapshot returns a copy of the current rates
func (t *Table) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	copied := make(map[domain.Currency]decimal.Decimal, len(t.rates))
	for c, r := range t.rates {
		copied[c] = r
	}
	return Snapshot{Base: t.base, Rates: copied, UpdatedAt: t.updatedAt}
}
