package domain

import (
	"errors"
	"fmt"
)

// ErrRoomUnavailable is returned by a BookingRepository when the store itself
// rejects a write because the room is already held for an overlapping range.
var ErrRoomUnavailable = errors.New("room is not available for the requested dates")

// ErrLockTimeout is returned by a RoomLocker when the room could not be
// acquired before the caller's deadline.
var ErrLockTimeout = errors.New("timed out waiting for room lock")

// ValidationError represents a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError is returned when a booking would overlap a live booking of the same room.
// Booking is the conflicting booking, not the one being written.
type ConflictError struct {
	Booking *Booking
}

func (e *ConflictError) Error() string {
	if e.Booking == nil {
		return ErrRoomUnavailable.Error()
	}
	return fmt.Sprintf("room is already booked from %s to %s by booking %s",
		e.Booking.CheckIn.Format(DateLayout), e.Booking.CheckOut.Format(DateLayout), e.Booking.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrRoomUnavailable
}

// RateUnavailableError is returned when no conversion rate exists for a currency
type RateUnavailableError struct {
	Currency Currency
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no exchange rate available for %s", e.Currency)
}

// NotFoundError is returned by repositories and services when an entity does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFoundError builds a NotFoundError for the given resource and id
func NewNotFoundError(resource string, id fmt.Stringer) error {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// StateError is returned when a booking transition is not allowed from its stored status
type StateError struct {
	From   BookingStatus
	Action string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a %s booking", e.Action, e.From)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
