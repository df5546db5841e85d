package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// FindConflicts returns every live booking of roomID that overlaps [checkIn, checkOut),
// earliest check-in first. Cancelled and ended-early bookings never conflict,
// and the booking with id exclude (if any) is skipped.
func FindConflicts(bookings []*domain.Booking, roomID uuid.UUID, checkIn, checkOut time.Time, exclude *uuid.UUID) []*domain.Booking {
	conflicts := make([]*domain.Booking, 0)
	for _, b := range bookings {
		if b.RoomID != roomID || b.Status.IsTerminal() {
			continue
		}
		if exclude != nil && b.ID == *exclude {
			continue
		}
		if b.Overlaps(checkIn, checkOut) {
			conflicts = append(conflicts, b)
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].CheckIn.Before(conflicts[j].CheckIn)
	})
	return conflicts
}

// FindConflict returns the first conflicting booking, or nil when the room is free
func FindConflict(bookings []*domain.Booking, roomID uuid.UUID, checkIn, checkOut time.Time, exclude *uuid.UUID) *domain.Booking {
	conflicts := FindConflicts(bookings, roomID, checkIn, checkOut, exclude)
	if len(conflicts) == 0 {
		return nil
	}
	return conflicts[0]
}

// Index answers availability questions against the booking store
type Index struct {
	BookingRepo domain.BookingRepository
}

// NewIndex creates a new Index instance
func NewIndex(bookingRepo domain.BookingRepository) *Index {
	return &Index{BookingRepo: bookingRepo}
}

// Check loads the room's bookings and returns the first conflict, or nil
func (i *Index) Check(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, exclude *uuid.UUID) (*domain.Booking, error) {
	conflicts, err := i.Conflicts(ctx, roomID, checkIn, checkOut, exclude)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return nil, nil
	}
	return conflicts[0], nil
}

// Conflicts loads the room's bookings and returns every conflict
func (i *Index) Conflicts(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, exclude *uuid.UUID) ([]*domain.Booking, error) {
	bookings, err := i.BookingRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for room: %w", err)
	}
	return FindConflicts(bookings, roomID, domain.DateOf(checkIn), domain.DateOf(checkOut), exclude), nil
}
