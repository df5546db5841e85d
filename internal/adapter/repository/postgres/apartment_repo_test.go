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

func TestApartmentRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApartmentRepository(db)

	id, roomID, partnerID := uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM apartments WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "investment_target", "investment_start_date"}).
			AddRow(id.String(), "Nile View", "25000", start))
	mock.ExpectQuery("FROM rooms").
		WillReturnRows(sqlmock.NewRows([]string{"id", "apartment_id", "room_number", "room_type", "bed_count", "bathroom_type"}).
			AddRow(roomID.String(), id.String(), "101", "private", int64(2), "ensuite"))
	mock.ExpectQuery("FROM partner_agreements").
		WillReturnRows(sqlmock.NewRows([]string{"apartment_id", "partner_id", "name", "percentage"}).
			AddRow(id.String(), partnerID.String(), "Omar", "30"))

	apt, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "Nile View", apt.Name)
	require.NotNil(t, apt.InvestmentTarget)
	assert.True(t, apt.InvestmentTarget.Equal(decimal.NewFromInt(25000)))
	require.NotNil(t, apt.InvestmentStartDate)
	assert.Equal(t, start, *apt.InvestmentStartDate)
	require.Len(t, apt.Rooms, 1)
	assert.Equal(t, 2, apt.Rooms[0].BedCount)
	require.Len(t, apt.Partners, 1)
	assert.True(t, apt.Partners[0].Percentage.Equal(decimal.NewFromInt(30)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApartmentRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApartmentRepository(db)

	mock.ExpectQuery("FROM apartments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "investment_target", "investment_start_date"}))

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.True(t, domain.IsNotFound(err))
}

func TestApartmentRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApartmentRepository(db)

	target := decimal.NewFromInt(1000)
	apt := &domain.Apartment{
		ID:               uuid.New(),
		Name:             "Garden",
		InvestmentTarget: &target,
		Rooms:            []domain.Room{{ID: uuid.New(), RoomNumber: "1"}, {ID: uuid.New(), RoomNumber: "2"}},
		Partners:         []domain.PartnerAgreement{{PartnerID: uuid.New(), Name: "Omar", Percentage: decimal.NewFromInt(25)}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO apartments").
		WithArgs(apt.ID.String(), "Garden", "1000", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO rooms").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO rooms").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO partner_agreements").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), apt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
