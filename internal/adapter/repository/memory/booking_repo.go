package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// BookingRepository implements domain.BookingRepository in memory.
// Like the Postgres exclusion constraint, it refuses to store two live
// bookings of one room with overlapping ranges.
type BookingRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*domain.Booking
}

// NewBookingRepository creates a new in-memory BookingRepository
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{bookings: make(map[uuid.UUID]*domain.Booking)}
}

// GetByID retrieves a booking by its ID
func (r *BookingRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id)
	}
	return b.Clone(), nil
}

// Create stores a new booking
func (r *BookingRepository) Create(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlapsLive(b) {
		return domain.ErrRoomUnavailable
	}
	r.bookings[b.ID] = b.Clone()
	return nil
}

// Update replaces a stored booking
func (r *BookingRepository) Update(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return domain.NewNotFoundError("booking", b.ID)
	}
	if r.overlapsLive(b) {
		return domain.ErrRoomUnavailable
	}
	r.bookings[b.ID] = b.Clone()
	return nil
}

// Delete removes a booking
func (r *BookingRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return domain.NewNotFoundError("booking", id)
	}
	delete(r.bookings, id)
	return nil
}

// ListByRoom retrieves every booking of a room ordered by check-in
func (r *BookingRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Booking, error) {
	return r.List(ctx, domain.BookingFilter{RoomID: &roomID})
}

// List retrieves bookings matching the filter ordered by check-in
func (r *BookingRepository) List(_ context.Context, f domain.BookingFilter) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if f.ApartmentID != nil && b.ApartmentID != *f.ApartmentID {
			continue
		}
		if f.RoomID != nil && b.RoomID != *f.RoomID {
			continue
		}
		if f.CheckInFrom != nil && b.CheckIn.Before(*f.CheckInFrom) {
			continue
		}
		if f.CheckInTo != nil && !b.CheckIn.Before(*f.CheckInTo) {
			continue
		}
		out = append(out, b.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CheckIn.Before(out[j].CheckIn)
	})
	return out, nil
}

// overlapsLive must be called with the write lock held
func (r *BookingRepository) overlapsLive(b *domain.Booking) bool {
	if b.Status.IsTerminal() {
		return false
	}
	for id, other := range r.bookings {
		if id == b.ID || other.RoomID != b.RoomID || other.Status.IsTerminal() {
			continue
		}
		if other.Overlaps(b.CheckIn, b.CheckOut) {
			return true
		}
	}
	return false
}

var _ domain.BookingRepository = (*BookingRepository)(nil)
