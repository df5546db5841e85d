package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundTransactionType represents the direction of a development fund movement
type FundTransactionType string

const (
	FundTransactionDeposit    FundTransactionType = "deposit"
	FundTransactionWithdrawal FundTransactionType = "withdrawal"
)

// FundTransaction represents one append-only movement of the development fund
type FundTransaction struct {
	ID          uuid.UUID
	Type        FundTransactionType
	Amount      decimal.Decimal // ABSOLUTE VALUE in Currency (always positive)
	Currency    Currency
	BaseAmount  decimal.Decimal // Amount converted to the base currency at write time
	OccurredAt  time.Time
	ApartmentID *uuid.UUID // nil for fund-wide movements
	Source      string     // where a deposit came from
	Description string     // what a withdrawal paid for
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *FundTransaction) Validate() error {
	if t.Type != FundTransactionDeposit && t.Type != FundTransactionWithdrawal {
		return NewValidationError("type", "fund transaction type must be deposit or withdrawal")
	}
	if !t.Amount.IsPositive() {
		return NewValidationError("amount", "amount must be positive")
	}
	if t.Currency == "" {
		return NewValidationError("currency", "currency is required")
	}
	if t.Type == FundTransactionWithdrawal && strings.TrimSpace(t.Description) == "" {
		return NewValidationError("description", "a withdrawal needs a description")
	}
	if t.OccurredAt.IsZero() {
		return NewValidationError("occurred_at", "timestamp is required")
	}
	return nil
}

// SignedBaseAmount is the effect of the transaction on the fund balance
func (t *FundTransaction) SignedBaseAmount() decimal.Decimal {
	if t.Type == FundTransactionWithdrawal {
		return t.BaseAmount.Neg()
	}
	return t.BaseAmount
}

// FundTotals sums deposits and withdrawals in the base currency
type FundTotals struct {
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
}

// Balance is deposits minus withdrawals; it may be negative
func (t FundTotals) Balance() decimal.Decimal {
	return t.Deposits.Sub(t.Withdrawals)
}

// Add accumulates one transaction into the totals
func (t FundTotals) Add(tx *FundTransaction) FundTotals {
	if tx.Type == FundTransactionWithdrawal {
		t.Withdrawals = t.Withdrawals.Add(tx.BaseAmount)
	} else {
		t.Deposits = t.Deposits.Add(tx.BaseAmount)
	}
	return t
}
