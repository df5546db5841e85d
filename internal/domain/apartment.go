package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Room represents a rentable room owned by an apartment
type Room struct {
	ID           uuid.UUID
	ApartmentID  uuid.UUID
	RoomNumber   string
	Type         string
	BedCount     int
	BathroomType string
}

// PartnerAgreement is a partner's percentage share of an apartment's distributable revenue
type PartnerAgreement struct {
	PartnerID  uuid.UUID
	Name       string
	Percentage decimal.Decimal // 0..100
}

// Apartment represents a property with rooms, partner agreements and an optional investment target
type Apartment struct {
	ID                  uuid.UUID
	Name                string
	Rooms               []Room
	Partners            []PartnerAgreement
	InvestmentTarget    *decimal.Decimal // base currency; nil means ROI is not tracked
	InvestmentStartDate *time.Time
}

// Validate ensures the apartment adheres to domain rules
// Returns an error if validation fails
func (a *Apartment) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "apartment name cannot be empty")
	}

	seen := make(map[uuid.UUID]bool, len(a.Rooms))
	for _, room := range a.Rooms {
		if room.ID == uuid.Nil {
			return NewValidationError("rooms", "room id is required")
		}
		if seen[room.ID] {
			return NewValidationError("rooms", "duplicate room id "+room.ID.String())
		}
		seen[room.ID] = true
	}

	for _, p := range a.Partners {
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(hundred) {
			return NewValidationError("partners", "partner percentage must be between 0 and 100")
		}
	}
	if a.PartnerPercentageTotal().GreaterThan(hundred) {
		return NewValidationError("partners", "partner percentages cannot exceed 100 in total")
	}

	if a.InvestmentTarget != nil && !a.InvestmentTarget.IsPositive() {
		return NewValidationError("investment_target", "investment target must be positive")
	}

	return nil
}

// Room returns the room with the given id if it belongs to this apartment
func (a *Apartment) Room(id uuid.UUID) (*Room, bool) {
	for i := range a.Rooms {
		if a.Rooms[i].ID == id {
			return &a.Rooms[i], true
		}
	}
	return nil, false
}

// PartnerPercentageTotal sums the partner percentages
func (a *Apartment) PartnerPercentageTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.Partners {
		total = total.Add(p.Percentage)
	}
	return total
}

// HasInvestmentTarget reports whether ROI is tracked for the apartment
func (a *Apartment) HasInvestmentTarget() bool {
	return a.InvestmentTarget != nil
}
