package expense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/usecase/rates"
)

// MockExpenseRepository is a mock implementation of ExpenseRepository for testing
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) List(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Expense), args.Error(1)
}

// MockApartmentRepository is a mock implementation of ApartmentRepository for testing
type MockApartmentRepository struct {
	mock.Mock
}

func (m *MockApartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Apartment), args.Error(1)
}

func (m *MockApartmentRepository) List(ctx context.Context) ([]*domain.Apartment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Apartment), args.Error(1)
}

func (m *MockApartmentRepository) Create(ctx context.Context, apt *domain.Apartment) error {
	args := m.Called(ctx, apt)
	return args.Error(0)
}

var now = time.Date(2025, 3, 3, 15, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*ExpenseService, *MockExpenseRepository, *MockApartmentRepository) {
	t.Helper()
	table := rates.NewTable("USD", rates.StaticSource{"EGP": decimal.NewFromInt(50)}, nil)
	require.NoError(t, table.Refresh(context.Background()))

	expenses := new(MockExpenseRepository)
	apartments := new(MockApartmentRepository)
	s := NewExpenseService(expenses, apartments, table, nil)
	s.Clock = func() time.Time { return now }
	return s, expenses, apartments
}

func TestRecordExpense_StandardFlow(t *testing.T) {
	ctx := context.Background()
	s, expenses, apartments := newService(t)

	aptID := uuid.New()
	apartments.On("GetByID", ctx, aptID).Return(&domain.Apartment{ID: aptID, Name: "Nile View"}, nil)
	expenses.On("Create", ctx, mock.MatchedBy(func(e *domain.Expense) bool {
		return e.Category == "cleaning" &&
			e.Currency == "EGP" &&
			e.BaseAmount.Equal(decimal.NewFromInt(4)) &&
			e.ApartmentID != nil && *e.ApartmentID == aptID
	})).Return(nil)

	e, err := s.RecordExpense(ctx, RecordExpenseInput{
		ApartmentID: &aptID,
		Category:    " Cleaning ",
		Description: "deep clean after season",
		Amount:      decimal.NewFromInt(200),
		Currency:    "EGP",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DateOf(now), e.IncurredAt, "Defaults to today")
	assert.Equal(t, now, e.CreatedAt)
	expenses.AssertExpectations(t)
	apartments.AssertExpectations(t)
}

func TestRecordExpense_BusinessWide(t *testing.T) {
	ctx := context.Background()
	s, expenses, apartments := newService(t)

	expenses.On("Create", ctx, mock.AnythingOfType("*domain.Expense")).Return(nil)

	e, err := s.RecordExpense(ctx, RecordExpenseInput{
		Category:   "software",
		Amount:     decimal.NewFromInt(30),
		Currency:   "USD",
		IncurredAt: time.Date(2025, 2, 28, 18, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Nil(t, e.ApartmentID)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), e.IncurredAt)
	assert.True(t, e.BaseAmount.Equal(decimal.NewFromInt(30)))
	apartments.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRecordExpense_FallbackRate(t *testing.T) {
	ctx := context.Background()
	s, expenses, _ := newService(t)

	expenses.On("Create", ctx, mock.AnythingOfType("*domain.Expense")).Return(nil)

	e, err := s.RecordExpense(ctx, RecordExpenseInput{
		Category:     "repairs",
		Amount:       decimal.NewFromInt(80),
		Currency:     "GBP",
		ExchangeRate: decimal.NewFromFloat(0.8),
	})

	require.NoError(t, err)
	assert.True(t, e.BaseAmount.Equal(decimal.NewFromInt(100)))
}

func TestRecordExpense_Errors(t *testing.T) {
	ctx := context.Background()
	missing := uuid.New()

	tests := []struct {
		name  string
		input RecordExpenseInput
		check func(t *testing.T, err error)
	}{
		{
			name:  "Zero amount",
			input: RecordExpenseInput{Category: "x", Amount: decimal.Zero, Currency: "USD"},
			check: func(t *testing.T, err error) {
				var vErr *domain.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "amount", vErr.Field)
			},
		},
		{
			name:  "Missing category",
			input: RecordExpenseInput{Category: " ", Amount: decimal.NewFromInt(1), Currency: "USD"},
			check: func(t *testing.T, err error) {
				var vErr *domain.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "category", vErr.Field)
			},
		},
		{
			name:  "Unknown apartment",
			input: RecordExpenseInput{ApartmentID: &missing, Category: "x", Amount: decimal.NewFromInt(1), Currency: "USD"},
			check: func(t *testing.T, err error) {
				var vErr *domain.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "apartment_id", vErr.Field)
			},
		},
		{
			name:  "No rate and no fallback",
			input: RecordExpenseInput{Category: "x", Amount: decimal.NewFromInt(1), Currency: "GBP"},
			check: func(t *testing.T, err error) {
				var rErr *domain.RateUnavailableError
				assert.ErrorAs(t, err, &rErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, expenses, apartments := newService(t)
			apartments.On("GetByID", ctx, missing).Return(nil, domain.NewNotFoundError("apartment", missing))

			_, err := s.RecordExpense(ctx, tt.input)

			tt.check(t, err)
			expenses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRecordExpense_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	s, expenses, _ := newService(t)

	expenses.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

	_, err := s.RecordExpense(ctx, RecordExpenseInput{Category: "x", Amount: decimal.NewFromInt(1), Currency: "USD"})

	assert.ErrorContains(t, err, "failed to save expense")
}

func TestList_PassesFilter(t *testing.T) {
	ctx := context.Background()
	s, expenses, _ := newService(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := domain.ExpenseFilter{From: &from}
	expenses.On("List", ctx, filter).Return([]*domain.Expense{{ID: uuid.New()}}, nil)

	got, err := s.List(ctx, filter)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
