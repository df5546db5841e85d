package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense represents money spent on running an apartment (or the business as a whole)
type Expense struct {
	ID          uuid.UUID
	ApartmentID *uuid.UUID
	Category    string
	Description string
	Amount      decimal.Decimal
	Currency    Currency
	BaseAmount  decimal.Decimal
	IncurredAt  time.Time // calendar date
	CreatedAt   time.Time
}

// Validate ensures the expense adheres to domain rules
func (e *Expense) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return NewValidationError("category", "category is required")
	}
	if !e.Amount.IsPositive() {
		return NewValidationError("amount", "amount must be positive")
	}
	if e.Currency == "" {
		return NewValidationError("currency", "currency is required")
	}
	if e.IncurredAt.IsZero() {
		return NewValidationError("incurred_at", "date is required")
	}
	return nil
}
