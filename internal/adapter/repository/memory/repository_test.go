package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

func day(s string) time.Time {
	d, _ := time.Parse(domain.DateLayout, s)
	return d
}

func TestBookingRepository_RejectsOverlappingLiveBookings(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	roomID := uuid.New()

	first := &domain.Booking{ID: uuid.New(), RoomID: roomID, CheckIn: day("2025-03-01"), CheckOut: day("2025-03-05"), Status: domain.BookingStatusConfirmed}
	require.NoError(t, repo.Create(ctx, first))

	overlapping := &domain.Booking{ID: uuid.New(), RoomID: roomID, CheckIn: day("2025-03-04"), CheckOut: day("2025-03-06"), Status: domain.BookingStatusPending}
	assert.ErrorIs(t, repo.Create(ctx, overlapping), domain.ErrRoomUnavailable)

	backToBack := &domain.Booking{ID: uuid.New(), RoomID: roomID, CheckIn: day("2025-03-05"), CheckOut: day("2025-03-06"), Status: domain.BookingStatusPending}
	assert.NoError(t, repo.Create(ctx, backToBack))

	// cancelling frees the range
	first.Status = domain.BookingStatusCancelled
	require.NoError(t, repo.Update(ctx, first))
	inFreedRange := &domain.Booking{ID: uuid.New(), RoomID: roomID, CheckIn: day("2025-03-02"), CheckOut: day("2025-03-04"), Status: domain.BookingStatusPending}
	assert.NoError(t, repo.Create(ctx, inFreedRange))
}

func TestBookingRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	b := &domain.Booking{
		ID: uuid.New(), RoomID: uuid.New(), CheckIn: day("2025-03-01"), CheckOut: day("2025-03-05"),
		Status:   domain.BookingStatusPending,
		Payments: []domain.Payment{{Amount: decimal.NewFromInt(10), Currency: "USD"}},
	}
	require.NoError(t, repo.Create(ctx, b))

	b.Payments[0].Amount = decimal.NewFromInt(99)
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Payments[0].Amount.Equal(decimal.NewFromInt(10)))
}

func TestBookingRepository_ListFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	aptID := uuid.New()

	jan := &domain.Booking{ID: uuid.New(), ApartmentID: aptID, RoomID: uuid.New(), CheckIn: day("2025-01-31"), CheckOut: day("2025-02-05")}
	feb := &domain.Booking{ID: uuid.New(), ApartmentID: aptID, RoomID: uuid.New(), CheckIn: day("2025-02-01"), CheckOut: day("2025-02-03")}
	other := &domain.Booking{ID: uuid.New(), ApartmentID: uuid.New(), RoomID: uuid.New(), CheckIn: day("2025-01-10"), CheckOut: day("2025-01-12")}
	for _, b := range []*domain.Booking{feb, other, jan} {
		b.Status = domain.BookingStatusConfirmed
		require.NoError(t, repo.Create(ctx, b))
	}

	from, to := day("2025-01-01"), day("2025-02-01")
	got, err := repo.List(ctx, domain.BookingFilter{ApartmentID: &aptID, CheckInFrom: &from, CheckInTo: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, jan.ID, got[0].ID)

	all, err := repo.List(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID, "Ordered by check-in")
}

func TestBookingRepository_NotFound(t *testing.T) {
	repo := NewBookingRepository()

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(repo.Delete(context.Background(), uuid.New())))
	assert.True(t, domain.IsNotFound(repo.Update(context.Background(), &domain.Booking{ID: uuid.New()})))
}

func TestApartmentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewApartmentRepository()
	target := decimal.NewFromInt(5000)
	b := &domain.Apartment{ID: uuid.New(), Name: "B", InvestmentTarget: &target}
	a := &domain.Apartment{ID: uuid.New(), Name: "A"}

	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, a))
	assert.Error(t, repo.Create(ctx, a), "Duplicate id is rejected")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Name)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	*got.InvestmentTarget = decimal.NewFromInt(1)
	again, _ := repo.GetByID(ctx, b.ID)
	assert.True(t, again.InvestmentTarget.Equal(target))
}

func TestFundTransactionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFundTransactionRepository()
	aptID := uuid.New()

	require.NoError(t, repo.Append(ctx, &domain.FundTransaction{ID: uuid.New(), Type: domain.FundTransactionDeposit, BaseAmount: decimal.NewFromInt(100), OccurredAt: day("2025-01-10"), ApartmentID: &aptID}))
	require.NoError(t, repo.Append(ctx, &domain.FundTransaction{ID: uuid.New(), Type: domain.FundTransactionWithdrawal, BaseAmount: decimal.NewFromInt(30), OccurredAt: day("2025-02-02")}))

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.True(t, totals.Balance().Equal(decimal.NewFromInt(70)))

	from, to := day("2025-01-01"), day("2025-02-01")
	jan, err := repo.List(ctx, domain.FundFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, jan, 1)

	tagged, err := repo.List(ctx, domain.FundFilter{ApartmentID: &aptID})
	require.NoError(t, err)
	assert.Len(t, tagged, 1, "Untagged withdrawals are excluded by an apartment filter")
}

func TestExpenseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewExpenseRepository()

	require.NoError(t, repo.Create(ctx, &domain.Expense{ID: uuid.New(), Category: "cleaning", BaseAmount: decimal.NewFromInt(20), IncurredAt: day("2025-01-31")}))
	require.NoError(t, repo.Create(ctx, &domain.Expense{ID: uuid.New(), Category: "repairs", BaseAmount: decimal.NewFromInt(50), IncurredAt: day("2025-02-01")}))

	from, to := day("2025-01-01"), day("2025-02-01")
	got, err := repo.List(ctx, domain.ExpenseFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cleaning", got[0].Category)
}
