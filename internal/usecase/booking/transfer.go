package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// FindTransferSource looks for the booking a guest is being moved out of:
// a confirmed booking in the origin room, for the same guest name (trimmed, case-insensitive),
// that has not checked out before today. Returns nil, nil when nothing matches.
func (s *BookingService) FindTransferSource(ctx context.Context, originApartmentID, originRoomID uuid.UUID, guestName string) (*domain.Booking, error) {
	name := strings.TrimSpace(guestName)
	if name == "" {
		return nil, nil
	}

	candidates, err := s.BookingRepo.List(ctx, domain.BookingFilter{
		ApartmentID: &originApartmentID,
		RoomID:      &originRoomID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list origin room bookings: %w", err)
	}

	return MatchTransferSource(candidates, name, domain.DateOf(s.now())), nil
}

// MatchTransferSource picks the latest-starting candidate that matches guestName and is still current on today
func MatchTransferSource(candidates []*domain.Booking, guestName string, today time.Time) *domain.Booking {
	var best *domain.Booking
	for _, b := range candidates {
		if b.Status != domain.BookingStatusConfirmed {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(b.Guest.Name), strings.TrimSpace(guestName)) {
			continue
		}
		if b.CheckOut.Before(today) {
			continue
		}
		if best == nil || b.CheckIn.After(best.CheckIn) {
			best = b
		}
	}
	return best
}
