package expense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// RecordExpenseInput represents the input for recording an expense
type RecordExpenseInput struct {
	ApartmentID  *uuid.UUID // Optional: nil for business-wide costs
	Category     string
	Description  string
	Amount       decimal.Decimal
	Currency     string
	ExchangeRate decimal.Decimal // Optional: fallback when the rate table has no entry
	IncurredAt   time.Time       // zero means today
}

// ExpenseService handles expense recording operations
type ExpenseService struct {
	ExpenseRepo   domain.ExpenseRepository
	ApartmentRepo domain.ApartmentRepository
	Rates         domain.CurrencyConverter
	Clock         func() time.Time
	Logger        *zap.Logger
}

// NewExpenseService creates a new ExpenseService instance
func NewExpenseService(expenseRepo domain.ExpenseRepository, apartmentRepo domain.ApartmentRepository, rates domain.CurrencyConverter, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		ExpenseRepo:   expenseRepo,
		ApartmentRepo: apartmentRepo,
		Rates:         rates,
		Clock:         time.Now,
		Logger:        logger.Named("expense"),
	}
}

// RecordExpense stores an expense with its base-currency amount
// Logic:
//  1. Validate amount and currency
//  2. If an apartment is named, it must exist
//  3. Convert to base currency (rate table, then the input's own rate)
//  4. Validate and save
func (s *ExpenseService) RecordExpense(ctx context.Context, input RecordExpenseInput) (*domain.Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "expense amount must be positive")
	}
	currency, err := domain.ParseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}

	if input.ApartmentID != nil {
		if _, err := s.ApartmentRepo.GetByID(ctx, *input.ApartmentID); err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.NewValidationError("apartment_id", "apartment does not exist")
			}
			return nil, fmt.Errorf("failed to get apartment: %w", err)
		}
	}

	base, err := s.Rates.ToBase(input.Amount, currency, input.ExchangeRate)
	if err != nil {
		return nil, err
	}

	now := s.Clock().UTC()
	incurred := input.IncurredAt
	if incurred.IsZero() {
		incurred = now
	}

	e := &domain.Expense{
		ID:          uuid.New(),
		ApartmentID: input.ApartmentID,
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Currency:    currency,
		BaseAmount:  base,
		IncurredAt:  domain.DateOf(incurred),
		CreatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.ExpenseRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	s.Logger.Info("Expense recorded",
		zap.String("expense_id", e.ID.String()),
		zap.String("category", e.Category),
		zap.String("base_amount", e.BaseAmount.String()),
	)
	return e, nil
}

// List retrieves expenses matching the filter
func (s *ExpenseService) List(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, error) {
	expenses, err := s.ExpenseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}
