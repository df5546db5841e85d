package fund

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

// DepositInput represents the input for a development fund deposit
type DepositInput struct {
	Amount      decimal.Decimal
	Currency    string
	Source      string
	ApartmentID *uuid.UUID
	OccurredAt  time.Time // zero means now
}

// WithdrawInput represents the input for a development fund withdrawal
type WithdrawInput struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	ApartmentID *uuid.UUID
	OccurredAt  time.Time // zero means now
}

// WithdrawResult carries the stored withdrawal and the balance right after it.
// Warning is set when the fund went negative; the withdrawal is still recorded.
type WithdrawResult struct {
	Transaction *domain.FundTransaction
	Balance     decimal.Decimal
	Warning     bool
}

// Balance is the fund balance in base currency and, when a rate is known, the secondary currency
type Balance struct {
	Base              decimal.Decimal
	BaseCurrency      domain.Currency
	Secondary         *decimal.Decimal
	SecondaryCurrency domain.Currency
	Deposits          decimal.Decimal
	Withdrawals       decimal.Decimal
}

// FundService handles the development fund ledger
type FundService struct {
	FundRepo  domain.FundTransactionRepository
	Rates     domain.CurrencyConverter
	Secondary domain.Currency
	Clock     func() time.Time
	Logger    *zap.Logger
}

// NewFundService creates a new FundService instance
func NewFundService(fundRepo domain.FundTransactionRepository, rates domain.CurrencyConverter, secondary domain.Currency, logger *zap.Logger) *FundService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FundService{
		FundRepo:  fundRepo,
		Rates:     rates,
		Secondary: secondary,
		Clock:     time.Now,
		Logger:    logger.Named("fund"),
	}
}

// Deposit appends a deposit to the fund
func (s *FundService) Deposit(ctx context.Context, input DepositInput) (*domain.FundTransaction, error) {
	tx, err := s.newTransaction(domain.FundTransactionDeposit, input.Amount, input.Currency, input.OccurredAt)
	if err != nil {
		return nil, err
	}
	tx.Source = strings.TrimSpace(input.Source)
	tx.ApartmentID = input.ApartmentID

	if err := s.append(ctx, tx); err != nil {
		return nil, err
	}

	s.Logger.Info("Fund deposit recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("amount", tx.Amount.String()),
		zap.String("currency", tx.Currency.String()),
	)
	return tx, nil
}

// Withdraw appends a withdrawal to the fund
// Logic:
//  1. Validate and convert to base currency
//  2. Append unconditionally; the fund is allowed to go negative
//  3. Recompute the balance and flag a warning when it is below zero
func (s *FundService) Withdraw(ctx context.Context, input WithdrawInput) (*WithdrawResult, error) {
	tx, err := s.newTransaction(domain.FundTransactionWithdrawal, input.Amount, input.Currency, input.OccurredAt)
	if err != nil {
		return nil, err
	}
	tx.Description = strings.TrimSpace(input.Description)
	tx.ApartmentID = input.ApartmentID

	if err := s.append(ctx, tx); err != nil {
		return nil, err
	}

	totals, err := s.FundRepo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fund balance: %w", err)
	}
	balance := totals.Balance()

	result := &WithdrawResult{Transaction: tx, Balance: balance, Warning: balance.IsNegative()}
	if result.Warning {
		s.Logger.Warn("Development fund is negative",
			zap.String("transaction_id", tx.ID.String()),
			zap.String("balance", balance.String()),
		)
	} else {
		s.Logger.Info("Fund withdrawal recorded", zap.String("transaction_id", tx.ID.String()))
	}
	return result, nil
}

// Balance computes deposits minus withdrawals
func (s *FundService) Balance(ctx context.Context) (*Balance, error) {
	totals, err := s.FundRepo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fund balance: %w", err)
	}

	b := &Balance{
		Base:              totals.Balance(),
		BaseCurrency:      s.Rates.Base(),
		SecondaryCurrency: s.Secondary,
		Deposits:          totals.Deposits,
		Withdrawals:       totals.Withdrawals,
	}
	if s.Secondary != "" {
		if v, err := s.Rates.FromBase(b.Base, s.Secondary); err == nil {
			b.Secondary = &v
		}
	}
	return b, nil
}

// List retrieves fund history
func (s *FundService) List(ctx context.Context, filter domain.FundFilter) ([]*domain.FundTransaction, error) {
	txs, err := s.FundRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list fund transactions: %w", err)
	}
	return txs, nil
}

func (s *FundService) newTransaction(kind domain.FundTransactionType, amount decimal.Decimal, code string, at time.Time) (*domain.FundTransaction, error) {
	currency, err := domain.ParseCurrency(code)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "amount must be positive")
	}

	base, err := s.Rates.ToBase(amount, currency, decimal.Zero)
	if err != nil {
		return nil, err
	}

	if at.IsZero() {
		at = s.Clock()
	}
	return &domain.FundTransaction{
		ID:         uuid.New(),
		Type:       kind,
		Amount:     amount,
		Currency:   currency,
		BaseAmount: base,
		OccurredAt: at.UTC(),
	}, nil
}

func (s *FundService) append(ctx context.Context, tx *domain.FundTransaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := s.FundRepo.Append(ctx, tx); err != nil {
		return fmt.Errorf("failed to append fund transaction: %w", err)
	}
	return nil
}
