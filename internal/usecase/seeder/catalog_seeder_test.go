package seeder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// MockApartmentRepository is a mock implementation of ApartmentRepository
type MockApartmentRepository struct {
	mock.Mock
}

func (m *MockApartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Apartment), args.Error(1)
}

func (m *MockApartmentRepository) List(ctx context.Context) ([]*domain.Apartment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Apartment), args.Error(1)
}

func (m *MockApartmentRepository) Create(ctx context.Context, apt *domain.Apartment) error {
	args := m.Called(ctx, apt)
	return args.Error(0)
}

var (
	nileID   = uuid.MustParse("6f1c2d9e-3b0a-4c57-9e1f-2a7d8c4b5e60")
	gardenID = uuid.MustParse("a3b4c5d6-e7f8-4a1b-8c2d-3e4f5a6b7c8d")
	room101  = uuid.MustParse("0b7e4f3a-1c2d-4e5f-8a9b-0c1d2e3f4a5b")
	partner  = uuid.MustParse("91aa0e2b-7c3d-4f5e-9a1b-2c3d4e5f6a7b")
)

const catalogYAML = `
apartments:
  - id: 6f1c2d9e-3b0a-4c57-9e1f-2a7d8c4b5e60
    name: Nile View
    investment_target: "25000"
    investment_start_date: "2024-06-01"
    rooms:
      - {id: 0b7e4f3a-1c2d-4e5f-8a9b-0c1d2e3f4a5b, number: "101", type: private, beds: 2, bathroom: ensuite}
    partners:
      - {id: 91aa0e2b-7c3d-4f5e-9a1b-2c3d4e5f6a7b, name: Omar, percentage: "30"}
  - id: a3b4c5d6-e7f8-4a1b-8c2d-3e4f5a6b7c8d
    name: Garden
`

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	apartments, err := c.ToDomain()
	require.NoError(t, err)
	require.Len(t, apartments, 2)

	nile := apartments[0]
	assert.Equal(t, nileID, nile.ID)
	require.NotNil(t, nile.InvestmentTarget)
	assert.True(t, nile.InvestmentTarget.Equal(decimal.NewFromInt(25000)))
	require.NotNil(t, nile.InvestmentStartDate)
	assert.Equal(t, "2024-06-01", nile.InvestmentStartDate.Format(domain.DateLayout))
	require.Len(t, nile.Rooms, 1)
	assert.Equal(t, room101, nile.Rooms[0].ID)
	assert.Equal(t, nileID, nile.Rooms[0].ApartmentID)
	assert.Equal(t, 2, nile.Rooms[0].BedCount)
	require.Len(t, nile.Partners, 1)
	assert.True(t, nile.Partners[0].Percentage.Equal(decimal.NewFromInt(30)))

	assert.Nil(t, apartments[1].InvestmentTarget, "No target means ROI is not tracked")
}

func TestLoadCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "Unknown key", yaml: "apartments:\n  - id: 6f1c2d9e-3b0a-4c57-9e1f-2a7d8c4b5e60\n    nme: typo\n"},
		{name: "Bad apartment id", yaml: "apartments:\n  - id: nope\n    name: X\n"},
		{name: "Bad target", yaml: "apartments:\n  - id: 6f1c2d9e-3b0a-4c57-9e1f-2a7d8c4b5e60\n    name: X\n    investment_target: lots\n"},
		{name: "Partners over 100", yaml: `
apartments:
  - id: 6f1c2d9e-3b0a-4c57-9e1f-2a7d8c4b5e60
    name: X
    partners:
      - {id: 91aa0e2b-7c3d-4f5e-9a1b-2c3d4e5f6a7b, name: A, percentage: "60"}
      - {id: 0b7e4f3a-1c2d-4e5f-8a9b-0c1d2e3f4a5b, name: B, percentage: "50"}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadCatalog(strings.NewReader(tt.yaml))
			if err == nil {
				_, err = c.ToDomain()
			}
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_Empty(t *testing.T) {
	c, err := LoadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Apartments)
}

func TestCatalogSeeder_CreatesMissingOnly(t *testing.T) {
	ctx := context.Background()
	repo := new(MockApartmentRepository)
	seeder := NewCatalogSeeder(repo, nil)

	repo.On("GetByID", ctx, nileID).Return(&domain.Apartment{ID: nileID, Name: "Nile View"}, nil)
	repo.On("GetByID", ctx, gardenID).Return(nil, domain.NewNotFoundError("apartment", gardenID))
	repo.On("Create", ctx, mock.MatchedBy(func(apt *domain.Apartment) bool {
		return apt.ID == gardenID && apt.Name == "Garden"
	})).Return(nil)

	c, err := LoadCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	created, err := seeder.Seed(ctx, c)

	require.NoError(t, err)
	assert.Equal(t, 1, created)
	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestCatalogSeeder_LookupFailureStops(t *testing.T) {
	ctx := context.Background()
	repo := new(MockApartmentRepository)
	seeder := NewCatalogSeeder(repo, nil)

	repo.On("GetByID", ctx, nileID).Return(nil, errors.New("connection refused"))

	c, err := LoadCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	_, err = seeder.Seed(ctx, c)

	assert.ErrorContains(t, err, "connection refused")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogSeeder_SeedFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	repo := new(MockApartmentRepository)
	repo.On("GetByID", ctx, mock.Anything).Return(nil, domain.NewNotFoundError("apartment", nileID))
	repo.On("Create", ctx, mock.Anything).Return(nil)

	created, err := NewCatalogSeeder(repo, nil).SeedFile(ctx, path)

	require.NoError(t, err)
	assert.Equal(t, 2, created)

	_, err = NewCatalogSeeder(repo, nil).SeedFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
