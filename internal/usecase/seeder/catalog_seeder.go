package seeder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// CatalogSeeder loads the apartment catalog into the repository
type CatalogSeeder struct {
	repo   domain.ApartmentRepository
	logger *zap.Logger
}

// NewCatalogSeeder creates a new CatalogSeeder instance
func NewCatalogSeeder(repo domain.ApartmentRepository, logger *zap.Logger) *CatalogSeeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogSeeder{
		repo:   repo,
		logger: logger.Named("seeder"),
	}
}

// Seed ensures every catalog apartment exists
// Apartments already stored are left untouched, so seeding on every start is safe.
// Returns the number of apartments created.
func (s *CatalogSeeder) Seed(ctx context.Context, catalog *Catalog) (int, error) {
	apartments, err := catalog.ToDomain()
	if err != nil {
		return 0, err
	}

	created := 0
	for _, apt := range apartments {
		_, err := s.repo.GetByID(ctx, apt.ID)
		if err == nil {
			continue
		}
		if !domain.IsNotFound(err) {
			return created, fmt.Errorf("failed to look up apartment %s: %w", apt.ID, err)
		}

		if err := s.repo.Create(ctx, apt); err != nil {
			return created, fmt.Errorf("failed to create apartment %s: %w", apt.Name, err)
		}
		created++
		s.logger.Info("Apartment seeded",
			zap.String("apartment_id", apt.ID.String()),
			zap.String("name", apt.Name),
			zap.Int("rooms", len(apt.Rooms)),
		)
	}
	return created, nil
}

// SeedFile loads the catalog at path and seeds it
func (s *CatalogSeeder) SeedFile(ctx context.Context, path string) (int, error) {
	catalog, err := LoadCatalogFile(path)
	if err != nil {
		return 0, err
	}
	return s.Seed(ctx, catalog)
}
