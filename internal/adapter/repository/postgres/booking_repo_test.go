package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &DB{DB: mockDB}, mock
}

var bookingColumnNames = []string{
	"id", "apartment_id", "room_id",
	"guest_name", "guest_phone", "guest_email", "guest_nationality", "guest_id_number",
	"check_in", "check_out", "number_of_nights", "status",
	"total_booking_price", "currency", "exchange_rate", "platform_commission",
	"source", "dev_deduction_type", "dev_deduction_value",
	"origin_apartment_id", "origin_room_id", "transfer_from_booking_id",
	"refund_amount", "actual_check_out", "ended_at", "notes", "created_at", "updated_at",
}

func sampleBooking() *domain.Booking {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:                 uuid.New(),
		ApartmentID:        uuid.New(),
		RoomID:             uuid.New(),
		Guest:              domain.Guest{Name: "Maria Lopez"},
		CheckIn:            time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:           time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		NumberOfNights:     4,
		Status:             domain.BookingStatusConfirmed,
		TotalBookingPrice:  decimal.NewFromInt(100),
		Currency:           "USD",
		ExchangeRate:       decimal.NewFromInt(50),
		PlatformCommission: decimal.NewFromInt(15),
		DevDeductionType:   domain.DevDeductionNone,
		Payments: []domain.Payment{
			{Amount: decimal.NewFromInt(40), Currency: "USD", Method: "cash"},
			{Amount: decimal.NewFromInt(1000), Currency: "EGP", Method: "transfer"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestBookingRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes booking and payments in one transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)
		b := sampleBooking()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO booking_payments").
			WithArgs(b.ID.String(), 0, "40", "USD", "cash").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO booking_payments").
			WithArgs(b.ID.String(), 1, "1000", "EGP", "transfer").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(ctx, b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exclusion violation maps to room unavailable", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO bookings").WillReturnError(&pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"})
		mock.ExpectRollback()

		err := repo.Create(ctx, sampleBooking())

		assert.ErrorIs(t, err, domain.ErrRoomUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Payment failure rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO booking_payments").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.Create(ctx, sampleBooking())

		assert.ErrorContains(t, err, "failed to insert payment")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces payments", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)
		b := sampleBooking()
		b.Payments = b.Payments[:1]

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM booking_payments WHERE booking_id = $1")).
			WithArgs(b.ID.String()).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO booking_payments").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Update(ctx, b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing row is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Update(ctx, sampleBooking())

		assert.True(t, domain.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Exclusion violation maps to room unavailable", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET").WillReturnError(&pq.Error{Code: "23P01"})
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Update(ctx, sampleBooking()), domain.ErrRoomUnavailable)
	})
}

func TestBookingRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Scans booking with payments and transfer link", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		id, aptID, roomID := uuid.New(), uuid.New(), uuid.New()
		originRoom, fromBooking := uuid.New(), uuid.New()
		created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		ended := time.Date(2025, 3, 7, 11, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows(bookingColumnNames).AddRow(
				id.String(), aptID.String(), roomID.String(),
				"Maria Lopez", "+20", "maria@example.com", "ES", "X123",
				time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), int64(10), "ended-early",
				"100.00", "USD", "50", "15",
				"Booking.com", "percent", "10",
				aptID.String(), originRoom.String(), fromBooking.String(),
				"40", time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), ended, "", created, created,
			))
		mock.ExpectQuery("FROM booking_payments").
			WillReturnRows(sqlmock.NewRows([]string{"booking_id", "amount", "currency", "method"}).
				AddRow(id.String(), "60", "USD", "cash").
				AddRow(id.String(), "500", "EGP ", "cash"))

		b, err := repo.GetByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusEndedEarly, b.Status)
		assert.Equal(t, 10, b.NumberOfNights)
		assert.True(t, b.TotalBookingPrice.Equal(decimal.NewFromInt(100)))
		assert.True(t, b.RefundAmount.Equal(decimal.NewFromInt(40)))
		assert.Equal(t, domain.DevDeductionPercent, b.DevDeductionType)
		require.NotNil(t, b.Transfer)
		assert.Equal(t, originRoom, b.Transfer.OriginRoomID)
		require.NotNil(t, b.Transfer.TransferFromBookingID)
		assert.Equal(t, fromBooking, *b.Transfer.TransferFromBookingID)
		require.NotNil(t, b.EndedAt)
		assert.Equal(t, ended, *b.EndedAt)
		require.Len(t, b.Payments, 2)
		assert.Equal(t, domain.Currency("EGP"), b.Payments[1].Currency)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No row is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)
		id := uuid.New()

		mock.ExpectQuery("FROM bookings").WillReturnRows(sqlmock.NewRows(bookingColumnNames))

		_, err := repo.GetByID(ctx, id)

		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "booking", nf.Resource)
	})
}

func TestBookingRepository_ListFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	aptID := uuid.New()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE apartment_id = $1 AND check_in >= $2 AND check_in < $3 ORDER BY check_in, created_at")).
		WithArgs(aptID.String(), from, to).
		WillReturnRows(sqlmock.NewRows(bookingColumnNames))

	got, err := repo.List(context.Background(), domain.BookingFilter{ApartmentID: &aptID, CheckInFrom: &from, CheckInTo: &to})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet(), "Empty result skips the payments query")
}

func TestBookingRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM bookings").WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM bookings").WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.True(t, domain.IsNotFound(repo.Delete(context.Background(), id)))
}

func TestIsOverlapViolation(t *testing.T) {
	assert.True(t, isOverlapViolation(&pq.Error{Code: "23P01"}))
	assert.True(t, isOverlapViolation(errors.Join(errors.New("ctx"), &pq.Error{Code: "23P01"})))
	assert.False(t, isOverlapViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isOverlapViolation(errors.New("23P01")))
}
