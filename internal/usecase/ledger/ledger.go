package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// Position is a booking's money position in the base currency
type Position struct {
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
}

// TotalPaidInBase sums payments converted to the base currency.
// Payments in a currency without a known rate are converted with fallbackRate;
// if that is not positive either, the payment is rejected.
func TotalPaidInBase(payments []domain.Payment, conv domain.CurrencyConverter, fallbackRate decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, p := range payments {
		amount, err := conv.ToBase(p.Amount, p.Currency, fallbackRate)
		if err != nil {
			return decimal.Zero, fmt.Errorf("payment %d: %w", i+1, err)
		}
		total = total.Add(amount)
	}
	return total, nil
}

// Remaining is what is still owed; overpayment never produces a negative balance
func Remaining(totalPrice, paid decimal.Decimal) decimal.Decimal {
	remaining := totalPrice.Sub(paid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// BookingPosition computes total, paid and remaining for a booking in the base currency.
// Total is the settled total, so an early-checkout refund lowers what is owed.
func BookingPosition(b *domain.Booking, conv domain.CurrencyConverter) (Position, error) {
	total, err := conv.ToBase(b.SettledTotal(), b.Currency, b.ExchangeRate)
	if err != nil {
		return Position{}, fmt.Errorf("booking total: %w", err)
	}

	paid, err := TotalPaidInBase(b.Payments, conv, b.ExchangeRate)
	if err != nil {
		return Position{}, err
	}

	return Position{
		Total:     total,
		Paid:      paid,
		Remaining: Remaining(total, paid),
	}, nil
}
