package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for check-in and check-out
const DateLayout = "2006-01-02"

// SourceExternal marks a booking taken directly, without a platform. External bookings carry no commission.
const SourceExternal = "External"

// BookingStatus is the stored lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusEndedEarly BookingStatus = "ended-early"
)

// IsValid reports whether s is one of the known stored statuses
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusEndedEarly:
		return true
	}
	return false
}

// IsTerminal reports whether the booking no longer holds its room
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusEndedEarly
}

// EffectiveStatus is the status shown to users, computed from the stored status and today's date
type EffectiveStatus string

const (
	EffectiveStatusUpcoming   EffectiveStatus = "upcoming"
	EffectiveStatusActive     EffectiveStatus = "active"
	EffectiveStatusCompleted  EffectiveStatus = "completed"
	EffectiveStatusCancelled  EffectiveStatus = "cancelled"
	EffectiveStatusEndedEarly EffectiveStatus = "ended-early"
)

// DevDeductionType selects how the development deduction is computed from DevDeductionValue
type DevDeductionType string

const (
	DevDeductionNone    DevDeductionType = "none"
	DevDeductionFixed   DevDeductionType = "fixed"   // value in the secondary currency
	DevDeductionPercent DevDeductionType = "percent" // value is a percentage of the settled total
)

// Guest holds the guest details captured on a booking
type Guest struct {
	Name        string
	Phone       string
	Email       string
	Nationality string
	IDNumber    string
}

// Payment is one received payment; a booking may be paid in several currencies
type Payment struct {
	Amount   decimal.Decimal
	Currency Currency
	Method   string
}

// TransferLink records that a booking continues a stay moved from another room
type TransferLink struct {
	OriginApartmentID     uuid.UUID
	OriginRoomID          uuid.UUID
	TransferFromBookingID *uuid.UUID // nil when no matching source booking was found
}

// Booking represents a guest's reservation of one room for a half-open date range [CheckIn, CheckOut)
type Booking struct {
	ID                 uuid.UUID
	ApartmentID        uuid.UUID
	RoomID             uuid.UUID
	Guest              Guest
	CheckIn            time.Time
	CheckOut           time.Time
	NumberOfNights     int
	Status             BookingStatus
	TotalBookingPrice  decimal.Decimal
	Currency           Currency
	ExchangeRate       decimal.Decimal // secondary-currency units per base unit at booking time
	Payments           []Payment
	PlatformCommission decimal.Decimal // base currency
	Source             string
	DevDeductionType   DevDeductionType
	DevDeductionValue  decimal.Decimal
	Transfer           *TransferLink
	RefundAmount       decimal.Decimal
	ActualCheckOut     *time.Time
	EndedAt            *time.Time
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EarlyCheckout describes the refund produced by ending a stay early
type EarlyCheckout struct {
	OriginalNights int
	ActualNights   int
	UnusedNights   int
	PricePerNight  decimal.Decimal
	Refund         decimal.Decimal
}

// DateOf truncates t to its calendar date at midnight UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights between two dates, rounded up, never less than 1
func Nights(checkIn, checkOut time.Time) int {
	n := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

// RangesOverlap reports whether [aIn, aOut) and [bIn, bOut) intersect.
// A check-out on the day of another check-in does not overlap.
func RangesOverlap(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}

// IsExternal reports whether the booking was taken without a platform
func (b *Booking) IsExternal() bool {
	return strings.EqualFold(strings.TrimSpace(b.Source), SourceExternal)
}

// Normalize fills derived fields and applies the defaults every stored booking carries
func (b *Booking) Normalize() {
	b.CheckIn = DateOf(b.CheckIn)
	b.CheckOut = DateOf(b.CheckOut)
	b.NumberOfNights = Nights(b.CheckIn, b.CheckOut)
	b.Guest.Name = strings.TrimSpace(b.Guest.Name)

	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	if b.DevDeductionType == "" {
		b.DevDeductionType = DevDeductionNone
	}
	if b.Payments == nil {
		b.Payments = []Payment{}
	}
	if b.IsExternal() {
		b.Source = SourceExternal
		b.PlatformCommission = decimal.Zero
	}
}

// Validate ensures the booking adheres to domain rules
// Returns an error if validation fails
func (b *Booking) Validate() error {
	if b.ApartmentID == uuid.Nil {
		return NewValidationError("apartment_id", "apartment is required")
	}
	if b.RoomID == uuid.Nil {
		return NewValidationError("room_id", "room is required")
	}
	if strings.TrimSpace(b.Guest.Name) == "" {
		return NewValidationError("guest_name", "guest name is required")
	}
	if b.CheckIn.IsZero() || b.CheckOut.IsZero() {
		return NewValidationError("check_in", "check-in and check-out dates are required")
	}
	if !b.CheckOut.After(b.CheckIn) {
		return NewValidationError("check_out", "check-out must be after check-in")
	}
	if !b.Status.IsValid() {
		return NewValidationError("status", "unknown booking status "+string(b.Status))
	}
	if b.TotalBookingPrice.IsNegative() {
		return NewValidationError("total_booking_price", "total booking price cannot be negative")
	}
	if b.Currency == "" {
		return NewValidationError("currency", "currency is required")
	}
	if b.ExchangeRate.IsNegative() {
		return NewValidationError("exchange_rate", "exchange rate cannot be negative")
	}
	if b.PlatformCommission.IsNegative() {
		return NewValidationError("platform_commission", "platform commission cannot be negative")
	}
	if b.RefundAmount.IsNegative() {
		return NewValidationError("refund_amount", "refund amount cannot be negative")
	}

	switch b.DevDeductionType {
	case DevDeductionNone, DevDeductionFixed:
	case DevDeductionPercent:
		if b.DevDeductionValue.GreaterThan(hundred) {
			return NewValidationError("dev_deduction_value", "percentage deduction cannot exceed 100")
		}
	default:
		return NewValidationError("dev_deduction_type", "dev deduction type must be none, fixed or percent")
	}
	if b.DevDeductionValue.IsNegative() {
		return NewValidationError("dev_deduction_value", "dev deduction value cannot be negative")
	}

	for _, p := range b.Payments {
		if !p.Amount.IsPositive() {
			return NewValidationError("payments", "payment amount must be positive")
		}
		if p.Currency == "" {
			return NewValidationError("payments", "payment currency is required")
		}
	}

	return nil
}

// Overlaps reports whether the booking's stay intersects [checkIn, checkOut)
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return RangesOverlap(b.CheckIn, b.CheckOut, checkIn, checkOut)
}

// EffectiveStatus computes the user-facing status for the given day.
// Stored cancelled and ended-early always win over the date-based states.
func (b *Booking) EffectiveStatus(today time.Time) EffectiveStatus {
	switch b.Status {
	case BookingStatusCancelled:
		return EffectiveStatusCancelled
	case BookingStatusEndedEarly:
		return EffectiveStatusEndedEarly
	}

	day := DateOf(today)
	switch {
	case b.CheckOut.Before(day):
		return EffectiveStatusCompleted
	case b.CheckIn.After(day):
		return EffectiveStatusUpcoming
	default:
		return EffectiveStatusActive
	}
}

// SettledTotal is the price the guest ends up paying, in the booking currency
func (b *Booking) SettledTotal() decimal.Decimal {
	settled := b.TotalBookingPrice.Sub(b.RefundAmount)
	if settled.IsNegative() {
		return decimal.Zero
	}
	return settled
}

// Confirm moves a pending booking to confirmed
func (b *Booking) Confirm() error {
	if b.Status != BookingStatusPending {
		return &StateError{From: b.Status, Action: "confirm"}
	}
	b.Status = BookingStatusConfirmed
	return nil
}

// Cancel moves a live booking to cancelled, releasing its room
func (b *Booking) Cancel() error {
	if b.Status.IsTerminal() {
		return &StateError{From: b.Status, Action: "cancel"}
	}
	b.Status = BookingStatusCancelled
	return nil
}

// Extend pushes the check-out date by extraDays and adds extraAmount to the price.
// The platform commission is left as it was.
func (b *Booking) Extend(extraDays int, extraAmount decimal.Decimal) error {
	if b.Status.IsTerminal() {
		return &StateError{From: b.Status, Action: "extend"}
	}
	if extraDays <= 0 {
		return NewValidationError("extension_days", "extension days must be positive")
	}
	if !extraAmount.IsPositive() {
		return NewValidationError("extension_amount", "extension amount must be positive")
	}

	b.CheckOut = b.ExtendedCheckOut(extraDays)
	b.NumberOfNights = Nights(b.CheckIn, b.CheckOut)
	b.TotalBookingPrice = b.TotalBookingPrice.Add(extraAmount)
	return nil
}

// ExtendedCheckOut returns the check-out date after adding extraDays
func (b *Booking) ExtendedCheckOut(extraDays int) time.Time {
	return b.CheckOut.AddDate(0, 0, extraDays)
}

// EndEarly closes the stay at actualCheckOut and records the refund for the unused nights.
// The original CheckOut is kept so the booked range stays visible in history.
func (b *Booking) EndEarly(actualCheckOut, now time.Time) (*EarlyCheckout, error) {
	if b.Status.IsTerminal() {
		return nil, &StateError{From: b.Status, Action: "end early"}
	}

	actual := DateOf(actualCheckOut)
	if !actual.After(b.CheckIn) {
		return nil, NewValidationError("actual_check_out", "actual check-out must be after check-in")
	}
	if actual.After(b.CheckOut) {
		return nil, NewValidationError("actual_check_out", "actual check-out cannot be after the booked check-out")
	}

	original := Nights(b.CheckIn, b.CheckOut)
	used := Nights(b.CheckIn, actual)
	unused := original - used
	if unused < 0 {
		unused = 0
	}

	perNight := b.TotalBookingPrice.Div(decimal.NewFromInt(int64(original)))
	result := &EarlyCheckout{
		OriginalNights: original,
		ActualNights:   used,
		UnusedNights:   unused,
		PricePerNight:  perNight,
		Refund:         perNight.Mul(decimal.NewFromInt(int64(unused))),
	}

	endedAt := now
	b.Status = BookingStatusEndedEarly
	b.RefundAmount = result.Refund
	b.ActualCheckOut = &actual
	b.EndedAt = &endedAt
	return result, nil
}

// Clone returns a deep copy of the booking
func (b *Booking) Clone() *Booking {
	c := *b
	c.Payments = append([]Payment(nil), b.Payments...)
	if b.Transfer != nil {
		t := *b.Transfer
		if b.Transfer.TransferFromBookingID != nil {
			id := *b.Transfer.TransferFromBookingID
			t.TransferFromBookingID = &id
		}
		c.Transfer = &t
	}
	if b.ActualCheckOut != nil {
		v := *b.ActualCheckOut
		c.ActualCheckOut = &v
	}
	if b.EndedAt != nil {
		v := *b.EndedAt
		c.EndedAt = &v
	}
	return &c
}
