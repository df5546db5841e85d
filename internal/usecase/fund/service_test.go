package fund

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/usecase/rates"
)

// MockFundTransactionRepository is a mock implementation of FundTransactionRepository for testing
type MockFundTransactionRepository struct {
	mock.Mock
}

func (m *MockFundTransactionRepository) Append(ctx context.Context, tx *domain.FundTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockFundTransactionRepository) List(ctx context.Context, filter domain.FundFilter) ([]*domain.FundTransaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FundTransaction), args.Error(1)
}

func (m *MockFundTransactionRepository) Totals(ctx context.Context) (domain.FundTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.FundTotals), args.Error(1)
}

func newService(t *testing.T, repo domain.FundTransactionRepository) *FundService {
	t.Helper()
	table := rates.NewTable("USD", rates.StaticSource{"EGP": decimal.NewFromInt(50)}, nil)
	require.NoError(t, table.Refresh(context.Background()))

	s := NewFundService(repo, table, "EGP", nil)
	s.Clock = func() time.Time { return time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC) }
	return s
}

func totals(deposits, withdrawals int64) domain.FundTotals {
	return domain.FundTotals{Deposits: decimal.NewFromInt(deposits), Withdrawals: decimal.NewFromInt(withdrawals)}
}

func TestDeposit_ConvertsToBase(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFundTransactionRepository)
	s := newService(t, repo)

	repo.On("Append", ctx, mock.MatchedBy(func(tx *domain.FundTransaction) bool {
		return tx.Type == domain.FundTransactionDeposit &&
			tx.Currency == "EGP" &&
			tx.BaseAmount.Equal(decimal.NewFromInt(20)) &&
			tx.Source == "booking 12"
	})).Return(nil)

	tx, err := s.Deposit(ctx, DepositInput{Amount: decimal.NewFromInt(1000), Currency: "egp", Source: " booking 12 "})

	require.NoError(t, err)
	assert.Equal(t, s.Clock(), tx.OccurredAt)
	repo.AssertExpectations(t)
}

func TestDeposit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input DepositInput
		field string
	}{
		{name: "Zero amount", input: DepositInput{Amount: decimal.Zero, Currency: "USD"}, field: "amount"},
		{name: "Negative amount", input: DepositInput{Amount: decimal.NewFromInt(-5), Currency: "USD"}, field: "amount"},
		{name: "Bad currency", input: DepositInput{Amount: decimal.NewFromInt(5), Currency: "dollars"}, field: "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockFundTransactionRepository)
			s := newService(t, repo)

			_, err := s.Deposit(context.Background(), tt.input)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		})
	}
}

func TestDeposit_UnknownCurrencyHasNoFallback(t *testing.T) {
	repo := new(MockFundTransactionRepository)
	s := newService(t, repo)

	_, err := s.Deposit(context.Background(), DepositInput{Amount: decimal.NewFromInt(5), Currency: "GBP"})

	var rErr *domain.RateUnavailableError
	assert.ErrorAs(t, err, &rErr)
}

func TestWithdraw_NegativeBalanceStillRecorded(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFundTransactionRepository)
	s := newService(t, repo)

	repo.On("Append", ctx, mock.AnythingOfType("*domain.FundTransaction")).Return(nil)
	repo.On("Totals", ctx).Return(totals(100, 250), nil)

	result, err := s.Withdraw(ctx, WithdrawInput{Amount: decimal.NewFromInt(250), Currency: "USD", Description: "new mattresses"})

	require.NoError(t, err)
	assert.True(t, result.Warning, "Balance below zero raises the warning")
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(-150)))
	assert.Equal(t, domain.FundTransactionWithdrawal, result.Transaction.Type)
	repo.AssertExpectations(t)
}

func TestWithdraw_NoWarningWhenCovered(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFundTransactionRepository)
	s := newService(t, repo)

	repo.On("Append", ctx, mock.AnythingOfType("*domain.FundTransaction")).Return(nil)
	repo.On("Totals", ctx).Return(totals(300, 100), nil)

	result, err := s.Withdraw(ctx, WithdrawInput{Amount: decimal.NewFromInt(100), Currency: "USD", Description: "paint"})

	require.NoError(t, err)
	assert.False(t, result.Warning)
}

func TestWithdraw_RequiresDescription(t *testing.T) {
	repo := new(MockFundTransactionRepository)
	s := newService(t, repo)

	_, err := s.Withdraw(context.Background(), WithdrawInput{Amount: decimal.NewFromInt(10), Currency: "USD", Description: "  "})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "description", vErr.Field)
}

func TestWithdraw_AppendFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFundTransactionRepository)
	s := newService(t, repo)

	repo.On("Append", ctx, mock.Anything).Return(errors.New("disk full"))

	_, err := s.Withdraw(ctx, WithdrawInput{Amount: decimal.NewFromInt(10), Currency: "USD", Description: "paint"})

	assert.ErrorContains(t, err, "disk full")
	repo.AssertNotCalled(t, "Totals", mock.Anything)
}

func TestBalance_BaseAndSecondary(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFundTransactionRepository)
	s := newService(t, repo)

	repo.On("Totals", ctx).Return(totals(500, 200), nil)

	b, err := s.Balance(ctx)

	require.NoError(t, err)
	assert.True(t, b.Base.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, domain.Currency("USD"), b.BaseCurrency)
	require.NotNil(t, b.Secondary)
	assert.True(t, b.Secondary.Equal(decimal.NewFromInt(15000)))
}

func TestBalance_SecondaryWithoutRate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFundTransactionRepository)
	s := newService(t, repo)
	s.Secondary = "GBP"

	repo.On("Totals", ctx).Return(totals(10, 0), nil)

	b, err := s.Balance(ctx)

	require.NoError(t, err)
	assert.Nil(t, b.Secondary)
}
