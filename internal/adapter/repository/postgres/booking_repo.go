package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

const bookingColumns = `
	id, apartment_id, room_id,
	guest_name, guest_phone, guest_email, guest_nationality, guest_id_number,
	check_in, check_out, number_of_nights, status,
	total_booking_price::text, currency, exchange_rate::text, platform_commission::text,
	source, dev_deduction_type, dev_deduction_value::text,
	origin_apartment_id, origin_room_id, transfer_from_booking_id,
	refund_amount::text, actual_check_out, ended_at, notes, created_at, updated_at`

// bookingRepository implements domain.BookingRepository
// Overlaps are refused by the bookings_no_overlap exclusion constraint.
type bookingRepository struct {
	db *DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *DB) domain.BookingRepository {
	return &bookingRepository{db: db}
}

// GetByID retrieves a booking with its payments
func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("booking", id)
		}
		return nil, fmt.Errorf("failed to get booking by ID: %w", err)
	}

	if err := r.loadPayments(ctx, []*domain.Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// Create stores a booking and its payments in one transaction
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bookings (` + bookingInsertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
	`
	if _, err := tx.ExecContext(ctx, query, bookingArgs(b)...); err != nil {
		if isOverlapViolation(err) {
			return domain.ErrRoomUnavailable
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := insertPayments(ctx, tx, b); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update replaces a booking and its payments in one transaction
func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE bookings SET
			apartment_id = $2, room_id = $3,
			guest_name = $4, guest_phone = $5, guest_email = $6, guest_nationality = $7, guest_id_number = $8,
			check_in = $9, check_out = $10, number_of_nights = $11, status = $12,
			total_booking_price = $13, currency = $14, exchange_rate = $15, platform_commission = $16,
			source = $17, dev_deduction_type = $18, dev_deduction_value = $19,
			origin_apartment_id = $20, origin_room_id = $21, transfer_from_booking_id = $22,
			refund_amount = $23, actual_check_out = $24, ended_at = $25, notes = $26,
			created_at = $27, updated_at = $28
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query, bookingArgs(b)...)
	if err != nil {
		if isOverlapViolation(err) {
			return domain.ErrRoomUnavailable
		}
		return fmt.Errorf("failed to update booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("booking", b.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_payments WHERE booking_id = $1`, b.ID); err != nil {
		return fmt.Errorf("failed to clear payments: %w", err)
	}
	if err := insertPayments(ctx, tx, b); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes a booking; payments cascade
func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError("booking", id)
	}
	return nil
}

// ListByRoom retrieves every booking of a room ordered by check-in
func (r *bookingRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Booking, error) {
	return r.List(ctx, domain.BookingFilter{RoomID: &roomID})
}

// List retrieves bookings matching the filter ordered by check-in
func (r *bookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]*domain.Booking, error) {
	var where []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ApartmentID != nil {
		add("apartment_id = $%d", *f.ApartmentID)
	}
	if f.RoomID != nil {
		add("room_id = $%d", *f.RoomID)
	}
	if f.CheckInFrom != nil {
		add("check_in >= $%d", domain.DateOf(*f.CheckInFrom))
	}
	if f.CheckInTo != nil {
		add("check_in < $%d", domain.DateOf(*f.CheckInTo))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY check_in, created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	if err := r.loadPayments(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

const bookingInsertColumns = `
	id, apartment_id, room_id,
	guest_name, guest_phone, guest_email, guest_nationality, guest_id_number,
	check_in, check_out, number_of_nights, status,
	total_booking_price, currency, exchange_rate, platform_commission,
	source, dev_deduction_type, dev_deduction_value,
	origin_apartment_id, origin_room_id, transfer_from_booking_id,
	refund_amount, actual_check_out, ended_at, notes, created_at, updated_at`

// bookingArgs follows bookingInsertColumns order
func bookingArgs(b *domain.Booking) []interface{} {
	var originApt, originRoom, fromBooking interface{}
	if b.Transfer != nil {
		originApt = b.Transfer.OriginApartmentID
		originRoom = b.Transfer.OriginRoomID
		fromBooking = nullableUUID(b.Transfer.TransferFromBookingID)
	}
	var actual, ended interface{}
	if b.ActualCheckOut != nil {
		actual = domain.DateOf(*b.ActualCheckOut)
	}
	if b.EndedAt != nil {
		ended = *b.EndedAt
	}

	return []interface{}{
		b.ID, b.ApartmentID, b.RoomID,
		b.Guest.Name, b.Guest.Phone, b.Guest.Email, b.Guest.Nationality, b.Guest.IDNumber,
		b.CheckIn, b.CheckOut, b.NumberOfNights, string(b.Status),
		b.TotalBookingPrice.String(), string(b.Currency), b.ExchangeRate.String(), b.PlatformCommission.String(),
		b.Source, string(b.DevDeductionType), b.DevDeductionValue.String(),
		originApt, originRoom, fromBooking,
		b.RefundAmount.String(), actual, ended, b.Notes, b.CreatedAt, b.UpdatedAt,
	}
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var status, currency, devType string
	var total, rate, commission, devValue, refund string
	var originApt, originRoom, fromBooking sql.NullString
	var actual, ended sql.NullTime

	err := row.Scan(
		&b.ID, &b.ApartmentID, &b.RoomID,
		&b.Guest.Name, &b.Guest.Phone, &b.Guest.Email, &b.Guest.Nationality, &b.Guest.IDNumber,
		&b.CheckIn, &b.CheckOut, &b.NumberOfNights, &status,
		&total, &currency, &rate, &commission,
		&b.Source, &devType, &devValue,
		&originApt, &originRoom, &fromBooking,
		&refund, &actual, &ended, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)
	b.Currency = domain.Currency(strings.TrimSpace(currency))
	b.DevDeductionType = domain.DevDeductionType(devType)
	b.CheckIn = domain.DateOf(b.CheckIn)
	b.CheckOut = domain.DateOf(b.CheckOut)

	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"total_booking_price", total, &b.TotalBookingPrice},
		{"exchange_rate", rate, &b.ExchangeRate},
		{"platform_commission", commission, &b.PlatformCommission},
		{"dev_deduction_value", devValue, &b.DevDeductionValue},
		{"refund_amount", refund, &b.RefundAmount},
	} {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.name, err)
		}
		*f.dst = v
	}

	if originApt.Valid && originRoom.Valid {
		aptID, err := uuid.Parse(originApt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse origin_apartment_id: %w", err)
		}
		roomID, err := uuid.Parse(originRoom.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse origin_room_id: %w", err)
		}
		from, err := parseNullUUID(fromBooking)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transfer_from_booking_id: %w", err)
		}
		b.Transfer = &domain.TransferLink{OriginApartmentID: aptID, OriginRoomID: roomID, TransferFromBookingID: from}
	}

	if actual.Valid {
		d := domain.DateOf(actual.Time)
		b.ActualCheckOut = &d
	}
	if ended.Valid {
		t := ended.Time
		b.EndedAt = &t
	}

	b.Payments = make([]domain.Payment, 0)
	return &b, nil
}

func insertPayments(ctx context.Context, tx *sql.Tx, b *domain.Booking) error {
	for i, p := range b.Payments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO booking_payments (booking_id, seq, amount, currency, method)
			VALUES ($1, $2, $3, $4, $5)
		`, b.ID, i, p.Amount.String(), string(p.Currency), p.Method)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}
	return nil
}

// loadPayments attaches payments to the bookings with a single query
func (r *bookingRepository) loadPayments(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Booking, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		ids = append(ids, b.ID.String())
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT booking_id, amount::text, currency, method
		FROM booking_payments
		WHERE booking_id = ANY($1::uuid[])
		ORDER BY booking_id, seq
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID uuid.UUID
		var amount, currency string
		var p domain.Payment
		if err := rows.Scan(&bookingID, &amount, &currency, &p.Method); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("failed to parse payment amount: %w", err)
		}
		p.Currency = domain.Currency(strings.TrimSpace(currency))
		if b, ok := byID[bookingID]; ok {
			b.Payments = append(b.Payments, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating payments: %w", err)
	}
	return nil
}
