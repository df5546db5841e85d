package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// ApartmentRepository implements domain.ApartmentRepository in memory
type ApartmentRepository struct {
	mu         sync.RWMutex
	apartments map[uuid.UUID]*domain.Apartment
}

// NewApartmentRepository creates a new in-memory ApartmentRepository
func NewApartmentRepository() *ApartmentRepository {
	return &ApartmentRepository{apartments: make(map[uuid.UUID]*domain.Apartment)}
}

// GetByID retrieves an apartment by its ID
func (r *ApartmentRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apt, ok := r.apartments[id]
	if !ok {
		return nil, domain.NewNotFoundError("apartment", id)
	}
	return cloneApartment(apt), nil
}

// List retrieves every apartment ordered by name
func (r *ApartmentRepository) List(_ context.Context) ([]*domain.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Apartment, 0, len(r.apartments))
	for _, apt := range r.apartments {
		out = append(out, cloneApartment(apt))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Create stores a new apartment
func (r *ApartmentRepository) Create(_ context.Context, apt *domain.Apartment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.apartments[apt.ID]; exists {
		return fmt.Errorf("apartment %s already exists", apt.ID)
	}
	r.apartments[apt.ID] = cloneApartment(apt)
	return nil
}

func cloneApartment(a *domain.Apartment) *domain.Apartment {
	c := *a
	c.Rooms = append([]domain.Room(nil), a.Rooms...)
	c.Partners = append([]domain.PartnerAgreement(nil), a.Partners...)
	if a.InvestmentTarget != nil {
		v := *a.InvestmentTarget
		c.InvestmentTarget = &v
	}
	if a.InvestmentStartDate != nil {
		v := *a.InvestmentStartDate
		c.InvestmentStartDate = &v
	}
	return &c
}

var _ domain.ApartmentRepository = (*ApartmentRepository)(nil)
