package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApartmentRepository defines the interface for apartment catalog persistence operations
type ApartmentRepository interface {
	// GetByID retrieves an apartment with its rooms and partner agreements
	// Returns a NotFoundError if the apartment does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Apartment, error)

	// List retrieves every apartment ordered by name
	List(ctx context.Context) ([]*Apartment, error)

	// Create stores a new apartment with its rooms and partner agreements
	Create(ctx context.Context, apartment *Apartment) error
}

// BookingFilter narrows a booking listing. Nil fields are not applied.
// CheckInTo is exclusive.
type BookingFilter struct {
	ApartmentID *uuid.UUID
	RoomID      *uuid.UUID
	CheckInFrom *time.Time
	CheckInTo   *time.Time
}

// BookingRepository defines the interface for booking persistence operations
type BookingRepository interface {
	// GetByID retrieves a booking with its payments
	// Returns a NotFoundError if the booking does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Create stores a new booking and its payments atomically
	// Returns ErrRoomUnavailable if the store rejects an overlapping live booking
	Create(ctx context.Context, booking *Booking) error

	// Update replaces a booking and its payments atomically
	// Returns ErrRoomUnavailable if the store rejects an overlapping live booking
	Update(ctx context.Context, booking *Booking) error

	// Delete removes a booking permanently
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByRoom retrieves every booking of a room, in any status, ordered by check-in
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*Booking, error)

	// List retrieves bookings matching the filter, ordered by check-in
	List(ctx context.Context, filter BookingFilter) ([]*Booking, error)
}

// FundFilter narrows a fund history listing. To is exclusive.
// When ApartmentID is set only transactions tagged with that apartment match.
type FundFilter struct {
	From        *time.Time
	To          *time.Time
	ApartmentID *uuid.UUID
}

// FundTransactionRepository defines the interface for the append-only development fund
type FundTransactionRepository interface {
	// Append stores a new fund transaction
	Append(ctx context.Context, tx *FundTransaction) error

	// List retrieves transactions matching the filter, oldest first
	List(ctx context.Context, filter FundFilter) ([]*FundTransaction, error)

	// Totals sums every deposit and withdrawal in the base currency
	Totals(ctx context.Context) (FundTotals, error)
}

// ExpenseFilter narrows an expense listing. To is exclusive.
type ExpenseFilter struct {
	From        *time.Time
	To          *time.Time
	ApartmentID *uuid.UUID
}

// ExpenseRepository defines the interface for expense persistence operations
type ExpenseRepository interface {
	// Create stores a new expense
	Create(ctx context.Context, expense *Expense) error

	// List retrieves expenses matching the filter, oldest first
	List(ctx context.Context, filter ExpenseFilter) ([]*Expense, error)
}

// RoomLocker serializes check-then-write sequences per room.
// The returned unlock function must be called exactly once.
type RoomLocker interface {
	Lock(ctx context.Context, roomID uuid.UUID) (unlock func(), err error)
}

// RateSource supplies currency rates as units of currency per one base unit
type RateSource interface {
	FetchRates(ctx context.Context) (map[Currency]decimal.Decimal, error)
}

// CurrencyConverter converts amounts between the base currency and others
type CurrencyConverter interface {
	// Base returns the base currency code
	Base() Currency

	// ToBase converts amount in currency c to the base currency.
	// When no rate is known for c a positive fallback rate is used instead;
	// otherwise a RateUnavailableError is returned.
	ToBase(amount decimal.Decimal, c Currency, fallback decimal.Decimal) (decimal.Decimal, error)

	// FromBase converts a base-currency amount into currency c
	FromBase(amount decimal.Decimal, c Currency) (decimal.Decimal, error)
}
