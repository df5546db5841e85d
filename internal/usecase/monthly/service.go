package monthly

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/usecase/ledger"
	"github.com/simaogato/hostelflow-backend/internal/usecase/revenue"
)

// Distributor computes the revenue split of one booking
type Distributor interface {
	Distribute(b *domain.Booking, apt *domain.Apartment) (*revenue.Distribution, error)
}

// PartnerTotal is one partner's earnings over the month
type PartnerTotal struct {
	PartnerID uuid.UUID
	Name      string
	Amount    decimal.Decimal
}

// Summary is the roll-up of one calendar month, all money in the base currency
type Summary struct {
	Year        int
	Month       time.Month
	ApartmentID *uuid.UUID
	From        time.Time
	To          time.Time // exclusive

	BookingCount int
	StatusCounts map[domain.EffectiveStatus]int

	TotalPrice decimal.Decimal
	Paid       decimal.Decimal
	Remaining  decimal.Decimal

	PlatformCommission    decimal.Decimal
	DevelopmentDeductions decimal.Decimal
	Distributable         decimal.Decimal
	PartnerShare          decimal.Decimal
	NetProfit             decimal.Decimal
	Partners              []PartnerTotal

	FundDeposits    decimal.Decimal
	FundWithdrawals decimal.Decimal

	ExpenseCount     int
	Expenses         decimal.Decimal
	NetAfterExpenses decimal.Decimal
}

// MonthRange returns [first day of month, first day of next month) in UTC
func MonthRange(year int, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, domain.NewValidationError("month", "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, domain.NewValidationError("year", "year is out of range")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// MonthlyService aggregates bookings, fund movements and expenses per month
type MonthlyService struct {
	ApartmentRepo domain.ApartmentRepository
	BookingRepo   domain.BookingRepository
	FundRepo      domain.FundTransactionRepository
	ExpenseRepo   domain.ExpenseRepository
	Rates         domain.CurrencyConverter
	Distributor   Distributor
	Clock         func() time.Time
	Logger        *zap.Logger
}

// NewMonthlyService creates a new MonthlyService instance
func NewMonthlyService(
	apartmentRepo domain.ApartmentRepository,
	bookingRepo domain.BookingRepository,
	fundRepo domain.FundTransactionRepository,
	expenseRepo domain.ExpenseRepository,
	rates domain.CurrencyConverter,
	d Distributor,
	logger *zap.Logger,
) *MonthlyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthlyService{
		ApartmentRepo: apartmentRepo,
		BookingRepo:   bookingRepo,
		FundRepo:      fundRepo,
		ExpenseRepo:   expenseRepo,
		Rates:         rates,
		Distributor:   d,
		Clock:         time.Now,
		Logger:        logger.Named("monthly"),
	}
}

// Summarize builds the summary of one month, optionally for a single apartment
// Logic:
//  1. Fetch apartments, bookings, fund movements and expenses concurrently
//  2. A booking belongs to the month of its check-in date
//  3. Status counts cover every booking; money totals skip cancelled ones
//  4. Net after expenses = net profit - expenses
func (s *MonthlyService) Summarize(ctx context.Context, year, month int, apartmentID *uuid.UUID) (*Summary, error) {
	from, to, err := MonthRange(year, month)
	if err != nil {
		return nil, err
	}

	var (
		apartments []*domain.Apartment
		bookings   []*domain.Booking
		fundTxs    []*domain.FundTransaction
		expenses   []*domain.Expense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if apartmentID != nil {
			apt, err := s.ApartmentRepo.GetByID(gctx, *apartmentID)
			if err != nil {
				return err
			}
			apartments = []*domain.Apartment{apt}
			return nil
		}
		list, err := s.ApartmentRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list apartments: %w", err)
		}
		apartments = list
		return nil
	})
	g.Go(func() error {
		list, err := s.BookingRepo.List(gctx, domain.BookingFilter{ApartmentID: apartmentID, CheckInFrom: &from, CheckInTo: &to})
		if err != nil {
			return fmt.Errorf("failed to list bookings: %w", err)
		}
		bookings = list
		return nil
	})
	g.Go(func() error {
		list, err := s.FundRepo.List(gctx, domain.FundFilter{From: &from, To: &to, ApartmentID: apartmentID})
		if err != nil {
			return fmt.Errorf("failed to list fund transactions: %w", err)
		}
		fundTxs = list
		return nil
	})
	g.Go(func() error {
		list, err := s.ExpenseRepo.List(gctx, domain.ExpenseFilter{From: &from, To: &to, ApartmentID: apartmentID})
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		expenses = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		Year:                  year,
		Month:                 time.Month(month),
		ApartmentID:           apartmentID,
		From:                  from,
		To:                    to,
		StatusCounts:          make(map[domain.EffectiveStatus]int),
		TotalPrice:            decimal.Zero,
		Paid:                  decimal.Zero,
		Remaining:             decimal.Zero,
		PlatformCommission:    decimal.Zero,
		DevelopmentDeductions: decimal.Zero,
		Distributable:         decimal.Zero,
		PartnerShare:          decimal.Zero,
		NetProfit:             decimal.Zero,
		FundDeposits:          decimal.Zero,
		FundWithdrawals:       decimal.Zero,
		Expenses:              decimal.Zero,
	}

	if err := s.addBookings(summary, bookings, apartments); err != nil {
		return nil, err
	}

	for _, tx := range fundTxs {
		if tx.Type == domain.FundTransactionWithdrawal {
			summary.FundWithdrawals = summary.FundWithdrawals.Add(tx.BaseAmount)
		} else {
			summary.FundDeposits = summary.FundDeposits.Add(tx.BaseAmount)
		}
	}

	for _, e := range expenses {
		summary.Expenses = summary.Expenses.Add(e.BaseAmount)
	}
	summary.ExpenseCount = len(expenses)
	summary.NetAfterExpenses = summary.NetProfit.Sub(summary.Expenses)

	s.Logger.Debug("Monthly summary computed",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("bookings", summary.BookingCount),
	)
	return summary, nil
}

func (s *MonthlyService) addBookings(summary *Summary, bookings []*domain.Booking, apartments []*domain.Apartment) error {
	byID := make(map[uuid.UUID]*domain.Apartment, len(apartments))
	for _, apt := range apartments {
		byID[apt.ID] = apt
	}

	today := domain.DateOf(s.Clock())
	partners := make(map[uuid.UUID]*PartnerTotal)

	for _, b := range bookings {
		// the store filter is authoritative, this guards the month boundary
		if b.CheckIn.Before(summary.From) || !b.CheckIn.Before(summary.To) {
			continue
		}
		summary.BookingCount++
		summary.StatusCounts[b.EffectiveStatus(today)]++

		if b.Status == domain.BookingStatusCancelled {
			continue
		}

		pos, err := ledger.BookingPosition(b, s.Rates)
		if err != nil {
			return fmt.Errorf("booking %s: %w", b.ID, err)
		}
		summary.TotalPrice = summary.TotalPrice.Add(pos.Total)
		summary.Paid = summary.Paid.Add(pos.Paid)
		summary.Remaining = summary.Remaining.Add(pos.Remaining)

		dist, err := s.Distributor.Distribute(b, byID[b.ApartmentID])
		if err != nil {
			return fmt.Errorf("booking %s: %w", b.ID, err)
		}
		summary.PlatformCommission = summary.PlatformCommission.Add(dist.PlatformCommission)
		summary.DevelopmentDeductions = summary.DevelopmentDeductions.Add(dist.DevelopmentDeduction)
		summary.Distributable = summary.Distributable.Add(dist.Distributable)
		summary.PartnerShare = summary.PartnerShare.Add(dist.PartnerShare)
		summary.NetProfit = summary.NetProfit.Add(dist.NetProfit)

		for _, line := range dist.Partners {
			pt, ok := partners[line.PartnerID]
			if !ok {
				pt = &PartnerTotal{PartnerID: line.PartnerID, Name: line.Name, Amount: decimal.Zero}
				partners[line.PartnerID] = pt
			}
			pt.Amount = pt.Amount.Add(line.Amount)
		}
	}

	summary.Partners = make([]PartnerTotal, 0, len(partners))
	for _, pt := range partners {
		summary.Partners = append(summary.Partners, *pt)
	}
	sort.Slice(summary.Partners, func(i, j int) bool {
		return summary.Partners[i].Name < summary.Partners[j].Name
	})
	return nil
}
