package seeder

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// Catalog is the apartment fixture file
//
//	apartments:
//	  - id: 6f1c...
//	    name: Nile View
//	    investment_target: "25000"
//	    investment_start_date: 2024-06-01
//	    rooms:
//	      - {id: 0b7e..., number: "101", type: private, beds: 2, bathroom: ensuite}
//	    partners:
//	      - {id: 91aa..., name: Omar, percentage: "30"}
type Catalog struct {
	Apartments []CatalogApartment `yaml:"apartments"`
}

type CatalogApartment struct {
	ID                  string           `yaml:"id"`
	Name                string           `yaml:"name"`
	InvestmentTarget    string           `yaml:"investment_target"`
	InvestmentStartDate string           `yaml:"investment_start_date"`
	Rooms               []CatalogRoom    `yaml:"rooms"`
	Partners            []CatalogPartner `yaml:"partners"`
}

type CatalogRoom struct {
	ID       string `yaml:"id"`
	Number   string `yaml:"number"`
	Type     string `yaml:"type"`
	Beds     int    `yaml:"beds"`
	Bathroom string `yaml:"bathroom"`
}

type CatalogPartner struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Percentage string `yaml:"percentage"`
}

// LoadCatalog decodes a catalog; unknown keys are rejected
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &c, nil
}

// LoadCatalogFile reads a catalog from disk
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return LoadCatalog(f)
}

// ToDomain converts the catalog into validated domain apartments
func (c *Catalog) ToDomain() ([]*domain.Apartment, error) {
	out := make([]*domain.Apartment, 0, len(c.Apartments))
	for i, ca := range c.Apartments {
		apt, err := ca.toDomain()
		if err != nil {
			return nil, fmt.Errorf("apartment %d (%s): %w", i+1, ca.Name, err)
		}
		out = append(out, apt)
	}
	return out, nil
}

func (ca CatalogApartment) toDomain() (*domain.Apartment, error) {
	id, err := uuid.Parse(ca.ID)
	if err != nil {
		return nil, domain.NewValidationError("id", "invalid apartment id")
	}

	apt := &domain.Apartment{ID: id, Name: ca.Name}

	if ca.InvestmentTarget != "" {
		target, err := decimal.NewFromString(ca.InvestmentTarget)
		if err != nil {
			return nil, domain.NewValidationError("investment_target", "invalid amount "+ca.InvestmentTarget)
		}
		apt.InvestmentTarget = &target
	}
	if ca.InvestmentStartDate != "" {
		start, err := time.Parse(domain.DateLayout, ca.InvestmentStartDate)
		if err != nil {
			return nil, domain.NewValidationError("investment_start_date", "expected YYYY-MM-DD")
		}
		apt.InvestmentStartDate = &start
	}

	for _, r := range ca.Rooms {
		roomID, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, domain.NewValidationError("rooms", "invalid room id for room "+r.Number)
		}
		apt.Rooms = append(apt.Rooms, domain.Room{
			ID:           roomID,
			ApartmentID:  id,
			RoomNumber:   r.Number,
			Type:         r.Type,
			BedCount:     r.Beds,
			BathroomType: r.Bathroom,
		})
	}

	for _, p := range ca.Partners {
		partnerID, err := uuid.Parse(p.ID)
		if err != nil {
			return nil, domain.NewValidationError("partners", "invalid partner id for "+p.Name)
		}
		pct, err := decimal.NewFromString(p.Percentage)
		if err != nil {
			return nil, domain.NewValidationError("partners", "invalid percentage for "+p.Name)
		}
		apt.Partners = append(apt.Partners, domain.PartnerAgreement{PartnerID: partnerID, Name: p.Name, Percentage: pct})
	}

	if err := apt.Validate(); err != nil {
		return nil, err
	}
	return apt, nil
}
