package revenue

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// PartnerShare is one partner's line of a distribution
type PartnerShare struct {
	PartnerID  uuid.UUID
	Name       string
	Percentage decimal.Decimal
	Amount     decimal.Decimal
}

// Distribution is how a booking's revenue splits, all in the base currency
type Distribution struct {
	BookingID            uuid.UUID
	Total                decimal.Decimal
	PlatformCommission   decimal.Decimal
	DevelopmentDeduction decimal.Decimal
	Distributable        decimal.Decimal
	PartnerShare         decimal.Decimal
	Partners             []PartnerShare
	NetProfit            decimal.Decimal
}

// DistributionInput carries everything CalculateDistribution needs, already in the base currency
type DistributionInput struct {
	Total              decimal.Decimal
	PlatformCommission decimal.Decimal
	External           bool
	DevDeductionType   domain.DevDeductionType
	DevDeductionValue  decimal.Decimal
	ExchangeRate       decimal.Decimal // secondary units per base unit, used by fixed deductions
	Partners           []domain.PartnerAgreement
}

// CalculateDistribution splits a settled booking total
// Logic:
//  1. Platform commission comes off first (forced to 0 for External bookings)
//  2. Development deduction: PERCENT of the total, or a FIXED secondary-currency value converted at the booking rate
//  3. Distributable = Total - Commission - Deduction
//  4. Each partner takes its percentage of the distributable amount
//  5. Whatever is left is net profit, never below zero
func CalculateDistribution(in DistributionInput) (*Distribution, error) {
	if in.Total.IsNegative() {
		return nil, domain.NewValidationError("total", "total cannot be negative")
	}

	commission := in.PlatformCommission
	if in.External {
		commission = decimal.Zero
	}

	deduction := decimal.Zero
	switch in.DevDeductionType {
	case domain.DevDeductionPercent:
		deduction = in.DevDeductionValue.Mul(in.Total).Div(hundred)
	case domain.DevDeductionFixed:
		if in.DevDeductionValue.IsPositive() {
			if !in.ExchangeRate.IsPositive() {
				return nil, domain.NewValidationError("exchange_rate", "a fixed development deduction needs an exchange rate")
			}
			deduction = in.DevDeductionValue.Div(in.ExchangeRate)
		}
	case domain.DevDeductionNone, "":
	default:
		return nil, domain.NewValidationError("dev_deduction_type", "unknown dev deduction type "+string(in.DevDeductionType))
	}

	distributable := in.Total.Sub(commission).Sub(deduction)

	partners := make([]PartnerShare, 0, len(in.Partners))
	partnerTotal := decimal.Zero
	for _, p := range in.Partners {
		amount := distributable.Mul(p.Percentage).Div(hundred)
		partners = append(partners, PartnerShare{
			PartnerID:  p.PartnerID,
			Name:       p.Name,
			Percentage: p.Percentage,
			Amount:     amount,
		})
		partnerTotal = partnerTotal.Add(amount)
	}

	netProfit := distributable.Sub(partnerTotal)
	if netProfit.IsNegative() {
		netProfit = decimal.Zero
	}

	return &Distribution{
		Total:                in.Total,
		PlatformCommission:   commission,
		DevelopmentDeduction: deduction,
		Distributable:        distributable,
		PartnerShare:         partnerTotal,
		Partners:             partners,
		NetProfit:            netProfit,
	}, nil
}

// Distributor computes distributions for stored bookings
type Distributor struct {
	Rates     domain.CurrencyConverter
	Secondary domain.Currency
}

// NewDistributor creates a new Distributor instance
func NewDistributor(rates domain.CurrencyConverter, secondary domain.Currency) *Distributor {
	return &Distributor{
		Rates:     rates,
		Secondary: secondary,
	}
}

// Distribute splits a booking's settled revenue using its apartment's partner agreements.
// It reads but never mutates its inputs, so repeated calls give the same result.
func (d *Distributor) Distribute(b *domain.Booking, apt *domain.Apartment) (*Distribution, error) {
	var partners []domain.PartnerAgreement
	if apt != nil {
		if apt.ID != b.ApartmentID {
			return nil, domain.NewValidationError("apartment_id", "booking does not belong to apartment")
		}
		partners = apt.Partners
	}

	total, err := d.Rates.ToBase(b.SettledTotal(), b.Currency, b.ExchangeRate)
	if err != nil {
		return nil, fmt.Errorf("failed to convert booking total: %w", err)
	}

	rate := b.ExchangeRate
	if !rate.IsPositive() && b.DevDeductionType == domain.DevDeductionFixed && d.Secondary != "" {
		// booking predates rate capture; fall back to today's rate
		if current, err := d.Rates.FromBase(decimal.NewFromInt(1), d.Secondary); err == nil {
			rate = current
		}
	}

	dist, err := CalculateDistribution(DistributionInput{
		Total:              total,
		PlatformCommission: b.PlatformCommission,
		External:           b.IsExternal(),
		DevDeductionType:   b.DevDeductionType,
		DevDeductionValue:  b.DevDeductionValue,
		ExchangeRate:       rate,
		Partners:           partners,
	})
	if err != nil {
		return nil, err
	}

	dist.BookingID = b.ID
	return dist, nil
}
