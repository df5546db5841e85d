package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

func TestFundTransactionRepository_Append(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFundTransactionRepository(db)

	tx := &domain.FundTransaction{
		ID:          uuid.New(),
		Type:        domain.FundTransactionWithdrawal,
		Amount:      decimal.NewFromInt(500),
		Currency:    "EGP",
		BaseAmount:  decimal.NewFromInt(10),
		OccurredAt:  time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC),
		Description: "paint",
	}

	mock.ExpectExec("INSERT INTO fund_transactions").
		WithArgs(tx.ID.String(), "withdrawal", "500", "EGP", "10", tx.OccurredAt, nil, "", "paint").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Append(context.Background(), tx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFundTransactionRepository_Totals(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFundTransactionRepository(db)

	mock.ExpectQuery("FROM fund_transactions").
		WillReturnRows(sqlmock.NewRows([]string{"deposits", "withdrawals"}).AddRow("150.50", "200"))

	totals, err := repo.Totals(context.Background())

	require.NoError(t, err)
	assert.True(t, totals.Deposits.Equal(decimal.RequireFromString("150.50")))
	assert.True(t, totals.Balance().Equal(decimal.RequireFromString("-49.50")))
}

func TestFundTransactionRepository_ListWindow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFundTransactionRepository(db)

	aptID := uuid.New()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE occurred_at >= $1 AND occurred_at < $2 AND apartment_id = $3")).
		WithArgs(from, to, aptID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "amount", "currency", "base_amount", "occurred_at", "apartment_id", "source", "description"}).
			AddRow(id.String(), "deposit", "20", "USD", "20", from.AddDate(0, 0, 3), aptID.String(), "booking", ""))

	txs, err := repo.List(context.Background(), domain.FundFilter{From: &from, To: &to, ApartmentID: &aptID})

	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, id, txs[0].ID)
	require.NotNil(t, txs[0].ApartmentID)
	assert.Equal(t, aptID, *txs[0].ApartmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseRepository(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewExpenseRepository(db)

	e := &domain.Expense{
		ID:         uuid.New(),
		Category:   "cleaning",
		Amount:     decimal.NewFromInt(30),
		Currency:   "USD",
		BaseAmount: decimal.NewFromInt(30),
		IncurredAt: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt:  time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO expenses").
		WithArgs(e.ID.String(), nil, "cleaning", "", "30", "USD", "30", e.IncurredAt, e.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM expenses ORDER BY incurred_at, created_at")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "apartment_id", "category", "description", "amount", "currency", "base_amount", "incurred_at", "created_at"}).
			AddRow(e.ID.String(), nil, "cleaning", "", "30", "USD", "30", e.IncurredAt, e.CreatedAt))

	require.NoError(t, repo.Create(ctx, e))
	got, err := repo.List(ctx, domain.ExpenseFilter{})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].ApartmentID)
	assert.True(t, got[0].BaseAmount.Equal(decimal.NewFromInt(30)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWindowClause(t *testing.T) {
	where, args := windowClause("incurred_at", nil, nil, nil)
	assert.Empty(t, where)
	assert.Empty(t, args)

	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	where, args = windowClause("incurred_at", nil, &to, nil)
	assert.Equal(t, " WHERE incurred_at < $1", where)
	assert.Len(t, args, 1)
}
