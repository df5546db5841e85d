package roi

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/usecase/revenue"
)

var hundred = decimal.NewFromInt(100)

// Distributor computes the revenue split of one booking
type Distributor interface {
	Distribute(b *domain.Booking, apt *domain.Apartment) (*revenue.Distribution, error)
}

// Summary is how much of an apartment's investment target has been recovered
type Summary struct {
	ApartmentID         uuid.UUID
	ApartmentName       string
	InvestmentTarget    decimal.Decimal
	InvestmentStartDate *time.Time
	RecoveredAmount     decimal.Decimal
	Remaining           decimal.Decimal
	RecoveryPercentage  decimal.Decimal
	IsComplete          bool
	BookingCount        int
}

// Summarize computes the recovery of one apartment's investment target
// Logic:
//  1. Only non-cancelled bookings of the apartment count
//  2. With a start date, only bookings checking in on or after it count
//  3. Recovered = sum of their net profit
//  4. Remaining and percentage are clamped at 0 and 100
func Summarize(apt *domain.Apartment, bookings []*domain.Booking, d Distributor) (*Summary, error) {
	if !apt.HasInvestmentTarget() {
		return nil, domain.NewNotFoundError("investment target", apt.ID)
	}
	target := *apt.InvestmentTarget

	recovered := decimal.Zero
	count := 0
	for _, b := range bookings {
		if b.ApartmentID != apt.ID || b.Status == domain.BookingStatusCancelled {
			continue
		}
		if apt.InvestmentStartDate != nil && b.CheckIn.Before(domain.DateOf(*apt.InvestmentStartDate)) {
			continue
		}

		dist, err := d.Distribute(b, apt)
		if err != nil {
			return nil, fmt.Errorf("failed to distribute booking %s: %w", b.ID, err)
		}
		recovered = recovered.Add(dist.NetProfit)
		count++
	}

	remaining := target.Sub(recovered)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	pct := recovered.Div(target).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}

	return &Summary{
		ApartmentID:         apt.ID,
		ApartmentName:       apt.Name,
		InvestmentTarget:    target,
		InvestmentStartDate: apt.InvestmentStartDate,
		RecoveredAmount:     recovered,
		Remaining:           remaining,
		RecoveryPercentage:  pct,
		IsComplete:          recovered.GreaterThanOrEqual(target),
		BookingCount:        count,
	}, nil
}

// ROIService handles investment recovery reporting
type ROIService struct {
	ApartmentRepo domain.ApartmentRepository
	BookingRepo   domain.BookingRepository
	Distributor   Distributor
	Logger        *zap.Logger
}

// NewROIService creates a new ROIService instance
func NewROIService(apartmentRepo domain.ApartmentRepository, bookingRepo domain.BookingRepository, d Distributor, logger *zap.Logger) *ROIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ROIService{
		ApartmentRepo: apartmentRepo,
		BookingRepo:   bookingRepo,
		Distributor:   d,
		Logger:        logger.Named("roi"),
	}
}

// Summarize returns the recovery of one apartment
// Returns a NotFoundError when the apartment is unknown or has no investment target
func (s *ROIService) Summarize(ctx context.Context, apartmentID uuid.UUID) (*Summary, error) {
	apt, err := s.ApartmentRepo.GetByID(ctx, apartmentID)
	if err != nil {
		return nil, err
	}
	if !apt.HasInvestmentTarget() {
		return nil, domain.NewNotFoundError("investment target", apartmentID)
	}
	return s.summarize(ctx, apt)
}

// SummarizeAll returns the recovery of every apartment that has an investment target
func (s *ROIService) SummarizeAll(ctx context.Context) ([]*Summary, error) {
	apartments, err := s.ApartmentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}

	out := make([]*Summary, 0, len(apartments))
	for _, apt := range apartments {
		if !apt.HasInvestmentTarget() {
			continue
		}
		summary, err := s.summarize(ctx, apt)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *ROIService) summarize(ctx context.Context, apt *domain.Apartment) (*Summary, error) {
	filter := domain.BookingFilter{ApartmentID: &apt.ID}
	if apt.InvestmentStartDate != nil {
		from := domain.DateOf(*apt.InvestmentStartDate)
		filter.CheckInFrom = &from
	}

	bookings, err := s.BookingRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	summary, err := Summarize(apt, bookings, s.Distributor)
	if err != nil {
		return nil, err
	}

	s.Logger.Debug("ROI computed",
		zap.String("apartment_id", apt.ID.String()),
		zap.String("recovered", summary.RecoveredAmount.String()),
		zap.Bool("complete", summary.IsComplete),
	)
	return summary, nil
}
