package booking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/usecase/availability"
)

// TransferOrigin names the room a guest is moving from
type TransferOrigin struct {
	ApartmentID uuid.UUID
	RoomID      uuid.UUID
}

// BookingInput represents the editable fields of a booking, for create and edit
type BookingInput struct {
	ApartmentID        uuid.UUID
	RoomID             uuid.UUID
	Guest              domain.Guest
	CheckIn            time.Time
	CheckOut           time.Time
	Status             domain.BookingStatus // pending or confirmed; empty means pending
	TotalBookingPrice  decimal.Decimal
	Currency           string
	ExchangeRate       decimal.Decimal
	Payments           []domain.Payment
	PlatformCommission decimal.Decimal
	Source             string
	DevDeductionType   domain.DevDeductionType
	DevDeductionValue  decimal.Decimal
	TransferFrom       *TransferOrigin
	Notes              string
}

// EndEarlyResult is the booking after an early checkout plus the refund breakdown
type EndEarlyResult struct {
	Booking  *domain.Booking
	Checkout *domain.EarlyCheckout
}

// BookingService handles the booking lifecycle
type BookingService struct {
	ApartmentRepo domain.ApartmentRepository
	BookingRepo   domain.BookingRepository
	Locker        domain.RoomLocker
	Rates         domain.CurrencyConverter
	Availability  *availability.Index
	Clock         func() time.Time
	Logger        *zap.Logger
}

// NewBookingService creates a new BookingService instance
func NewBookingService(
	apartmentRepo domain.ApartmentRepository,
	bookingRepo domain.BookingRepository,
	locker domain.RoomLocker,
	rates domain.CurrencyConverter,
	logger *zap.Logger,
) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		ApartmentRepo: apartmentRepo,
		BookingRepo:   bookingRepo,
		Locker:        locker,
		Rates:         rates,
		Availability:  availability.NewIndex(bookingRepo),
		Clock:         time.Now,
		Logger:        logger.Named("booking"),
	}
}

func (s *BookingService) now() time.Time {
	return s.Clock().UTC()
}

// Create validates and stores a new booking
// Logic:
//  1. Build and validate the booking; the room must belong to the apartment
//  2. Reject currencies that cannot be converted to base, even with the booking's own rate
//  3. Best-effort match of a transfer source booking
//  4. Under the room lock: conflict check, then write
func (s *BookingService) Create(ctx context.Context, input BookingInput) (*domain.Booking, error) {
	b, err := s.buildBooking(ctx, input)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusConfirmed {
		return nil, domain.NewValidationError("status", "a new booking must be pending or confirmed")
	}

	if input.TransferFrom != nil {
		b.Transfer = &domain.TransferLink{
			OriginApartmentID: input.TransferFrom.ApartmentID,
			OriginRoomID:      input.TransferFrom.RoomID,
		}
		source, err := s.FindTransferSource(ctx, input.TransferFrom.ApartmentID, input.TransferFrom.RoomID, b.Guest.Name)
		if err != nil {
			s.Logger.Warn("Transfer source lookup failed", zap.Error(err))
		} else if source != nil {
			b.Transfer.TransferFromBookingID = &source.ID
		}
	}

	now := s.now()
	b.ID = uuid.New()
	b.CreatedAt = now
	b.UpdatedAt = now

	unlock, err := s.Locker.Lock(ctx, b.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	defer unlock()

	if err := s.ensureAvailable(ctx, b, nil); err != nil {
		return nil, err
	}

	if err := s.BookingRepo.Create(ctx, b); err != nil {
		return nil, s.mapWriteError(ctx, b, err)
	}

	s.Logger.Info("Booking created",
		zap.String("booking_id", b.ID.String()),
		zap.String("room_id", b.RoomID.String()),
		zap.String("check_in", b.CheckIn.Format(domain.DateLayout)),
		zap.String("check_out", b.CheckOut.Format(domain.DateLayout)),
		zap.String("status", string(b.Status)),
	)
	return b, nil
}

// Update replaces the editable fields of a live booking
// When the room changes, both the old and the new room are locked.
func (s *BookingService) Update(ctx context.Context, id uuid.UUID, input BookingInput) (*domain.Booking, error) {
	next, err := s.buildBooking(ctx, input)
	if err != nil {
		return nil, err
	}

	current, err := s.BookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockRooms(ctx, current.RoomID, next.RoomID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// re-read under the lock
	existing, err := s.BookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.RoomID != current.RoomID {
		return nil, fmt.Errorf("booking %s moved rooms during edit, retry", id)
	}
	if existing.Status.IsTerminal() {
		return nil, &domain.StateError{From: existing.Status, Action: "edit"}
	}
	if input.Status == "" {
		next.Status = existing.Status
	}
	if next.Status.IsTerminal() {
		return nil, domain.NewValidationError("status", "use cancel or end-early to close a booking")
	}

	next.ID = existing.ID
	next.Transfer = existing.Transfer
	next.RefundAmount = existing.RefundAmount
	next.CreatedAt = existing.CreatedAt
	next.UpdatedAt = s.now()

	if err := s.ensureAvailable(ctx, next, &next.ID); err != nil {
		return nil, err
	}

	if err := s.BookingRepo.Update(ctx, next); err != nil {
		return nil, s.mapWriteError(ctx, next, err)
	}

	s.Logger.Info("Booking updated", zap.String("booking_id", id.String()))
	return next, nil
}

// Confirm moves a pending booking to confirmed
func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.transition(ctx, id, "confirmed", (*domain.Booking).Confirm)
}

// Cancel releases the booking's room
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.transition(ctx, id, "cancelled", (*domain.Booking).Cancel)
}

func (s *BookingService) transition(ctx context.Context, id uuid.UUID, label string, apply func(*domain.Booking) error) (*domain.Booking, error) {
	b, unlock, err := s.lockBooking(ctx, id, label)
	if err != nil {
		return nil, err
	}
	defer unlock()

	from := b.Status
	if err := apply(b); err != nil {
		return nil, err
	}
	b.UpdatedAt = s.now()

	if err := s.BookingRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.Logger.Info("Booking "+label,
		zap.String("booking_id", id.String()),
		zap.String("from", string(from)),
	)
	return b, nil
}

// Extend lengthens a stay by extraDays for extraAmount more
// Logic:
//  1. Validate the extension and compute the new check-out
//  2. Under the room lock: conflict check on the extended range, excluding the booking itself
//  3. On conflict nothing is written
//  4. Otherwise the price grows by extraAmount; commission is unchanged
func (s *BookingService) Extend(ctx context.Context, id uuid.UUID, extraDays int, extraAmount decimal.Decimal) (*domain.Booking, error) {
	if extraDays <= 0 {
		return nil, domain.NewValidationError("extension_days", "extension days must be positive")
	}
	if !extraAmount.IsPositive() {
		return nil, domain.NewValidationError("extension_amount", "extension amount must be positive")
	}

	b, unlock, err := s.lockBooking(ctx, id, "extension")
	if err != nil {
		return nil, err
	}
	defer unlock()

	extended := b.Clone()
	if err := extended.Extend(extraDays, extraAmount); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, extended, &extended.ID); err != nil {
		return nil, err
	}

	extended.UpdatedAt = s.now()
	if err := s.BookingRepo.Update(ctx, extended); err != nil {
		return nil, s.mapWriteError(ctx, extended, err)
	}

	s.Logger.Info("Booking extended",
		zap.String("booking_id", id.String()),
		zap.Int("extra_days", extraDays),
		zap.String("check_out", extended.CheckOut.Format(domain.DateLayout)),
	)
	return extended, nil
}

// EndEarly closes a stay before its booked check-out and records the refund
func (s *BookingService) EndEarly(ctx context.Context, id uuid.UUID, actualCheckOut time.Time) (*EndEarlyResult, error) {
	b, unlock, err := s.lockBooking(ctx, id, "early checkout")
	if err != nil {
		return nil, err
	}
	defer unlock()

	checkout, err := b.EndEarly(actualCheckOut, s.now())
	if err != nil {
		return nil, err
	}
	b.UpdatedAt = s.now()

	if err := s.BookingRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.Logger.Info("Booking ended early",
		zap.String("booking_id", id.String()),
		zap.Int("unused_nights", checkout.UnusedNights),
		zap.String("refund", checkout.Refund.String()),
	)
	return &EndEarlyResult{Booking: b, Checkout: checkout}, nil
}

// Delete removes a booking permanently
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.BookingRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

// Get retrieves a booking by id
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.BookingRepo.GetByID(ctx, id)
}

// List retrieves bookings matching the filter
func (s *BookingService) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	bookings, err := s.BookingRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// CheckAvailability returns the first live booking that overlaps the range, or nil
func (s *BookingService) CheckAvailability(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, exclude *uuid.UUID) (*domain.Booking, error) {
	if !domain.DateOf(checkOut).After(domain.DateOf(checkIn)) {
		return nil, domain.NewValidationError("check_out", "check-out must be after check-in")
	}
	return s.Availability.Check(ctx, roomID, checkIn, checkOut, exclude)
}

// buildBooking turns input into a normalized, validated booking (without id or timestamps)
func (s *BookingService) buildBooking(ctx context.Context, input BookingInput) (*domain.Booking, error) {
	currency, err := domain.ParseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}

	payments := make([]domain.Payment, 0, len(input.Payments))
	for _, p := range input.Payments {
		pc, err := domain.ParseCurrency(string(p.Currency))
		if err != nil {
			return nil, domain.NewValidationError("payments", err.Error())
		}
		p.Currency = pc
		payments = append(payments, p)
	}

	b := &domain.Booking{
		ApartmentID:        input.ApartmentID,
		RoomID:             input.RoomID,
		Guest:              input.Guest,
		CheckIn:            input.CheckIn,
		CheckOut:           input.CheckOut,
		Status:             input.Status,
		TotalBookingPrice:  input.TotalBookingPrice,
		Currency:           currency,
		ExchangeRate:       input.ExchangeRate,
		Payments:           payments,
		PlatformCommission: input.PlatformCommission,
		Source:             input.Source,
		DevDeductionType:   input.DevDeductionType,
		DevDeductionValue:  input.DevDeductionValue,
		Notes:              input.Notes,
	}
	b.Normalize()

	if err := b.Validate(); err != nil {
		return nil, err
	}

	apt, err := s.ApartmentRepo.GetByID(ctx, b.ApartmentID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationError("apartment_id", "apartment does not exist")
		}
		return nil, fmt.Errorf("failed to get apartment: %w", err)
	}
	if _, ok := apt.Room(b.RoomID); !ok {
		return nil, domain.NewValidationError("room_id", "room does not belong to apartment")
	}

	// every amount must be convertible, possibly with the booking's own rate
	one := decimal.NewFromInt(1)
	if _, err := s.Rates.ToBase(one, b.Currency, b.ExchangeRate); err != nil {
		return nil, err
	}
	for _, p := range b.Payments {
		if _, err := s.Rates.ToBase(one, p.Currency, b.ExchangeRate); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// lockRooms locks each distinct room in ascending id order so two edits
// swapping rooms cannot deadlock. The returned func releases them in reverse.
func (s *BookingService) lockRooms(ctx context.Context, roomIDs ...uuid.UUID) (func(), error) {
	ids := make([]uuid.UUID, 0, len(roomIDs))
	for _, id := range roomIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})

	unlocks := make([]func(), 0, len(ids))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, id := range ids {
		unlock, err := s.Locker.Lock(ctx, id)
		if err != nil {
			release()
			return nil, fmt.Errorf("failed to lock room: %w", err)
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// lockBooking locks the booking's room and returns a copy read under that lock.
// Every read-modify-write of a single booking goes through here so writes to
// the same booking are serialized.
func (s *BookingService) lockBooking(ctx context.Context, id uuid.UUID, action string) (*domain.Booking, func(), error) {
	current, err := s.BookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	unlock, err := s.Locker.Lock(ctx, current.RoomID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock room: %w", err)
	}

	b, err := s.BookingRepo.GetByID(ctx, id)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	if b.RoomID != current.RoomID {
		unlock()
		return nil, nil, fmt.Errorf("booking %s moved rooms during %s, retry", id, action)
	}
	return b, unlock, nil
}

// ensureAvailable must be called with the room lock held
func (s *BookingService) ensureAvailable(ctx context.Context, b *domain.Booking, exclude *uuid.UUID) error {
	conflict, err := s.Availability.Check(ctx, b.RoomID, b.CheckIn, b.CheckOut, exclude)
	if err != nil {
		return err
	}
	if conflict != nil {
		s.Logger.Warn("Booking conflict",
			zap.String("room_id", b.RoomID.String()),
			zap.String("conflicting_booking_id", conflict.ID.String()),
		)
		return &domain.ConflictError{Booking: conflict}
	}
	return nil
}

// mapWriteError turns a store-level overlap rejection into a ConflictError naming the other booking
func (s *BookingService) mapWriteError(ctx context.Context, b *domain.Booking, err error) error {
	if !errors.Is(err, domain.ErrRoomUnavailable) {
		return fmt.Errorf("failed to save booking: %w", err)
	}

	var exclude *uuid.UUID
	if b.ID != uuid.Nil {
		exclude = &b.ID
	}
	conflict, lookupErr := s.Availability.Check(ctx, b.RoomID, b.CheckIn, b.CheckOut, exclude)
	if lookupErr != nil || conflict == nil {
		return &domain.ConflictError{}
	}
	return &domain.ConflictError{Booking: conflict}
}
