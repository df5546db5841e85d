package rest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/usecase/booking"
	"github.com/simaogato/hostelflow-backend/internal/usecase/fund"
	"github.com/simaogato/hostelflow-backend/internal/usecase/ledger"
	"github.com/simaogato/hostelflow-backend/internal/usecase/monthly"
	"github.com/simaogato/hostelflow-backend/internal/usecase/revenue"
	"github.com/simaogato/hostelflow-backend/internal/usecase/roi"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

func date(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := date(*t)
	return &s
}

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func today() time.Time {
	return domain.DateOf(time.Now().UTC())
}

// parseDate reads a YYYY-MM-DD value; an empty string yields the zero time
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be a date formatted as YYYY-MM-DD")
	}
	return t, nil
}

// ---- catalog ----

// RoomResponse is a room as returned by the API
type RoomResponse struct {
	ID           string `json:"id"`
	ApartmentID  string `json:"apartmentId"`
	RoomNumber   string `json:"roomNumber"`
	Type         string `json:"type,omitempty"`
	BedCount     int    `json:"bedCount"`
	BathroomType string `json:"bathroomType,omitempty"`
}

// PartnerResponse is a partner agreement as returned by the API
type PartnerResponse struct {
	PartnerID  string `json:"partnerId"`
	Name       string `json:"name"`
	Percentage string `json:"percentage"`
}

// ApartmentResponse is an apartment as returned by the API
type ApartmentResponse struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	InvestmentTarget    *string           `json:"investmentTarget"`
	InvestmentStartDate *string           `json:"investmentStartDate"`
	Rooms               []RoomResponse    `json:"rooms"`
	Partners            []PartnerResponse `json:"partners"`
}

func newRoomResponse(r domain.Room) RoomResponse {
	return RoomResponse{
		ID:           r.ID.String(),
		ApartmentID:  r.ApartmentID.String(),
		RoomNumber:   r.RoomNumber,
		Type:         r.Type,
		BedCount:     r.BedCount,
		BathroomType: r.BathroomType,
	}
}

func newApartmentResponse(a *domain.Apartment) ApartmentResponse {
	resp := ApartmentResponse{
		ID:                  a.ID.String(),
		Name:                a.Name,
		InvestmentTarget:    optionalMoney(a.InvestmentTarget),
		InvestmentStartDate: optionalDate(a.InvestmentStartDate),
		Rooms:               make([]RoomResponse, 0, len(a.Rooms)),
		Partners:            make([]PartnerResponse, 0, len(a.Partners)),
	}
	for _, r := range a.Rooms {
		resp.Rooms = append(resp.Rooms, newRoomResponse(r))
	}
	for _, p := range a.Partners {
		resp.Partners = append(resp.Partners, PartnerResponse{
			PartnerID:  p.PartnerID.String(),
			Name:       p.Name,
			Percentage: p.Percentage.String(),
		})
	}
	return resp
}

// AvailabilityQuery is the query of the room availability check
type AvailabilityQuery struct {
	CheckIn          string `form:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut         string `form:"check_out" binding:"required,datetime=2006-01-02"`
	ExcludeBookingID string `form:"exclude_booking_id" binding:"omitempty,uuid"`
}

// AvailabilityResponse tells whether a room is free for a range
type AvailabilityResponse struct {
	RoomID             string           `json:"roomId"`
	CheckIn            string           `json:"checkIn"`
	CheckOut           string           `json:"checkOut"`
	Available          bool             `json:"available"`
	ConflictingBooking *BookingResponse `json:"conflictingBooking,omitempty"`
}

// ---- bookings ----

// PaymentRequest is one payment line of a booking request
type PaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"required,currency"`
	Method   string          `json:"method" binding:"max=50"`
}

// TransferRequest names the room the guest is moving from
type TransferRequest struct {
	OriginApartmentID uuid.UUID `json:"originApartmentId" binding:"required"`
	OriginRoomID      uuid.UUID `json:"originRoomId" binding:"required"`
}

// BookingRequest is the body of create and edit
type BookingRequest struct {
	ApartmentID        uuid.UUID        `json:"apartmentId" binding:"required"`
	RoomID             uuid.UUID        `json:"roomId" binding:"required"`
	GuestName          string           `json:"guestName" binding:"required,max=200"`
	GuestPhone         string           `json:"guestPhone" binding:"max=50"`
	GuestEmail         string           `json:"guestEmail" binding:"omitempty,email"`
	GuestNationality   string           `json:"guestNationality" binding:"max=100"`
	GuestIDNumber      string           `json:"guestIdNumber" binding:"max=100"`
	CheckIn            string           `json:"checkIn" binding:"required,datetime=2006-01-02"`
	CheckOut           string           `json:"checkOut" binding:"required,datetime=2006-01-02"`
	Status             string           `json:"status" binding:"omitempty,oneof=pending confirmed"`
	TotalBookingPrice  decimal.Decimal  `json:"totalBookingPrice"`
	Currency           string           `json:"currency" binding:"required,currency"`
	ExchangeRate       decimal.Decimal  `json:"exchangeRate"`
	Payments           []PaymentRequest `json:"payments" binding:"dive"`
	PlatformCommission decimal.Decimal  `json:"platformCommission"`
	Source             string           `json:"source" binding:"max=100"`
	DevDeductionType   string           `json:"devDeductionType" binding:"omitempty,oneof=none fixed percent"`
	DevDeductionValue  decimal.Decimal  `json:"devDeductionValue"`
	TransferFrom       *TransferRequest `json:"transferFrom"`
	Notes              string           `json:"notes"`
}

func (r BookingRequest) toInput() (booking.BookingInput, error) {
	checkIn, err := parseDate("checkIn", r.CheckIn)
	if err != nil {
		return booking.BookingInput{}, err
	}
	checkOut, err := parseDate("checkOut", r.CheckOut)
	if err != nil {
		return booking.BookingInput{}, err
	}

	payments := make([]domain.Payment, 0, len(r.Payments))
	for _, p := range r.Payments {
		payments = append(payments, domain.Payment{
			Amount:   p.Amount,
			Currency: domain.Currency(p.Currency),
			Method:   p.Method,
		})
	}

	input := booking.BookingInput{
		ApartmentID: r.ApartmentID,
		RoomID:      r.RoomID,
		Guest: domain.Guest{
			Name:        r.GuestName,
			Phone:       r.GuestPhone,
			Email:       r.GuestEmail,
			Nationality: r.GuestNationality,
			IDNumber:    r.GuestIDNumber,
		},
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Status:             domain.BookingStatus(r.Status),
		TotalBookingPrice:  r.TotalBookingPrice,
		Currency:           r.Currency,
		ExchangeRate:       r.ExchangeRate,
		Payments:           payments,
		PlatformCommission: r.PlatformCommission,
		Source:             r.Source,
		DevDeductionType:   domain.DevDeductionType(r.DevDeductionType),
		DevDeductionValue:  r.DevDeductionValue,
		Notes:              r.Notes,
	}
	if r.TransferFrom != nil {
		input.TransferFrom = &booking.TransferOrigin{
			ApartmentID: r.TransferFrom.OriginApartmentID,
			RoomID:      r.TransferFrom.OriginRoomID,
		}
	}
	return input, nil
}

// ExtendRequest is the body of the extend action
type ExtendRequest struct {
	ExtensionDays   int             `json:"extensionDays" binding:"required,gt=0"`
	ExtensionAmount decimal.Decimal `json:"extensionAmount"`
}

// EndEarlyRequest is the body of the end-early action; an empty date means today
type EndEarlyRequest struct {
	ActualCheckOut string `json:"actualCheckOut" binding:"omitempty,datetime=2006-01-02"`
}

// BookingListQuery filters the booking listing by check-in date
type BookingListQuery struct {
	ApartmentID string `form:"apartment_id" binding:"omitempty,uuid"`
	RoomID      string `form:"room_id" binding:"omitempty,uuid"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// TransferSourceQuery is the query of the transfer-source lookup
type TransferSourceQuery struct {
	OriginApartmentID string `form:"origin_apartment_id" binding:"required,uuid"`
	OriginRoomID      string `form:"origin_room_id" binding:"required,uuid"`
	GuestName         string `form:"guest_name" binding:"required"`
}

// GuestResponse holds the guest details of a booking
type GuestResponse struct {
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	IDNumber    string `json:"idNumber,omitempty"`
}

// PaymentResponse is one payment line of a booking
type PaymentResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method,omitempty"`
}

// TransferResponse links a booking to the stay it continues
type TransferResponse struct {
	OriginApartmentID     string  `json:"originApartmentId"`
	OriginRoomID          string  `json:"originRoomId"`
	TransferFromBookingID *string `json:"transferFromBookingId"`
}

// PositionResponse is what a booking is owed and has been paid, in the base currency
type PositionResponse struct {
	Total     string `json:"total"`
	Paid      string `json:"paid"`
	Remaining string `json:"remaining"`
}

// PartnerShareResponse is one partner line of a distribution
type PartnerShareResponse struct {
	PartnerID  string `json:"partnerId"`
	Name       string `json:"name"`
	Percentage string `json:"percentage"`
	Amount     string `json:"amount"`
}

// DistributionResponse is a booking's revenue split, in the base currency
type DistributionResponse struct {
	Total                string                 `json:"total"`
	PlatformCommission   string                 `json:"platformCommission"`
	DevelopmentDeduction string                 `json:"developmentDeduction"`
	Distributable        string                 `json:"distributable"`
	PartnerShare         string                 `json:"partnerShare"`
	Partners             []PartnerShareResponse `json:"partners"`
	NetProfit            string                 `json:"netProfit"`
}

// BookingResponse is a booking as returned by the API
type BookingResponse struct {
	ID                 string                `json:"id"`
	ApartmentID        string                `json:"apartmentId"`
	RoomID             string                `json:"roomId"`
	Guest              GuestResponse         `json:"guest"`
	CheckIn            string                `json:"checkIn"`
	CheckOut           string                `json:"checkOut"`
	NumberOfNights     int                   `json:"numberOfNights"`
	Status             string                `json:"status"`
	EffectiveStatus    string                `json:"effectiveStatus"`
	TotalBookingPrice  string                `json:"totalBookingPrice"`
	Currency           string                `json:"currency"`
	ExchangeRate       string                `json:"exchangeRate"`
	Payments           []PaymentResponse     `json:"payments"`
	PlatformCommission string                `json:"platformCommission"`
	Source             string                `json:"source"`
	DevDeductionType   string                `json:"devDeductionType"`
	DevDeductionValue  string                `json:"devDeductionValue"`
	Transfer           *TransferResponse     `json:"transfer,omitempty"`
	RefundAmount       string                `json:"refundAmount"`
	ActualCheckOut     *string               `json:"actualCheckOut,omitempty"`
	EndedAt            *time.Time            `json:"endedAt,omitempty"`
	Notes              string                `json:"notes,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
	Position           *PositionResponse     `json:"position,omitempty"`
	Distribution       *DistributionResponse `json:"distribution,omitempty"`
}

func newBookingResponse(b *domain.Booking, today time.Time) *BookingResponse {
	resp := &BookingResponse{
		ID:          b.ID.String(),
		ApartmentID: b.ApartmentID.String(),
		RoomID:      b.RoomID.String(),
		Guest: GuestResponse{
			Name:        b.Guest.Name,
			Phone:       b.Guest.Phone,
			Email:       b.Guest.Email,
			Nationality: b.Guest.Nationality,
			IDNumber:    b.Guest.IDNumber,
		},
		CheckIn:            date(b.CheckIn),
		CheckOut:           date(b.CheckOut),
		NumberOfNights:     b.NumberOfNights,
		Status:             string(b.Status),
		EffectiveStatus:    string(b.EffectiveStatus(today)),
		TotalBookingPrice:  money(b.TotalBookingPrice),
		Currency:           string(b.Currency),
		ExchangeRate:       b.ExchangeRate.String(),
		Payments:           make([]PaymentResponse, 0, len(b.Payments)),
		PlatformCommission: money(b.PlatformCommission),
		Source:             b.Source,
		DevDeductionType:   string(b.DevDeductionType),
		DevDeductionValue:  b.DevDeductionValue.String(),
		RefundAmount:       money(b.RefundAmount),
		ActualCheckOut:     optionalDate(b.ActualCheckOut),
		EndedAt:            b.EndedAt,
		Notes:              b.Notes,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
	for _, p := range b.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			Amount:   money(p.Amount),
			Currency: string(p.Currency),
			Method:   p.Method,
		})
	}
	if b.Transfer != nil {
		resp.Transfer = &TransferResponse{
			OriginApartmentID:     b.Transfer.OriginApartmentID.String(),
			OriginRoomID:          b.Transfer.OriginRoomID.String(),
			TransferFromBookingID: optionalID(b.Transfer.TransferFromBookingID),
		}
	}
	return resp
}

func newPositionResponse(p ledger.Position) *PositionResponse {
	return &PositionResponse{
		Total:     money(p.Total),
		Paid:      money(p.Paid),
		Remaining: money(p.Remaining),
	}
}

func newDistributionResponse(d *revenue.Distribution) *DistributionResponse {
	resp := &DistributionResponse{
		Total:                money(d.Total),
		PlatformCommission:   money(d.PlatformCommission),
		DevelopmentDeduction: money(d.DevelopmentDeduction),
		Distributable:        money(d.Distributable),
		PartnerShare:         money(d.PartnerShare),
		Partners:             make([]PartnerShareResponse, 0, len(d.Partners)),
		NetProfit:            money(d.NetProfit),
	}
	for _, p := range d.Partners {
		resp.Partners = append(resp.Partners, PartnerShareResponse{
			PartnerID:  p.PartnerID.String(),
			Name:       p.Name,
			Percentage: p.Percentage.String(),
			Amount:     money(p.Amount),
		})
	}
	return resp
}

// EndEarlyResponse is the booking after an early checkout plus the refund breakdown
type EndEarlyResponse struct {
	Booking        *BookingResponse `json:"booking"`
	OriginalNights int              `json:"originalNights"`
	ActualNights   int              `json:"actualNights"`
	UnusedNights   int              `json:"unusedNights"`
	PricePerNight  string           `json:"pricePerNight"`
	Refund         string           `json:"refund"`
}

func newEndEarlyResponse(r *booking.EndEarlyResult, today time.Time) EndEarlyResponse {
	return EndEarlyResponse{
		Booking:        newBookingResponse(r.Booking, today),
		OriginalNights: r.Checkout.OriginalNights,
		ActualNights:   r.Checkout.ActualNights,
		UnusedNights:   r.Checkout.UnusedNights,
		PricePerNight:  money(r.Checkout.PricePerNight),
		Refund:         money(r.Checkout.Refund),
	}
}

// TransferSourceResponse is the result of a transfer-source lookup; Booking is nil when nothing matched
type TransferSourceResponse struct {
	Found   bool             `json:"found"`
	Booking *BookingResponse `json:"booking"`
}

// ---- finance ----

// ROIResponse is the recovery of one apartment's investment target
type ROIResponse struct {
	ApartmentID         string  `json:"apartmentId"`
	ApartmentName       string  `json:"apartmentName"`
	InvestmentTarget    string  `json:"investmentTarget"`
	InvestmentStartDate *string `json:"investmentStartDate"`
	RecoveredAmount     string  `json:"recoveredAmount"`
	RemainingAmount     string  `json:"remainingAmount"`
	RecoveryPercentage  string  `json:"recoveryPercentage"`
	IsComplete          bool    `json:"isComplete"`
	BookingCount        int     `json:"bookingCount"`
}

func newROIResponse(s *roi.Summary) ROIResponse {
	return ROIResponse{
		ApartmentID:         s.ApartmentID.String(),
		ApartmentName:       s.ApartmentName,
		InvestmentTarget:    money(s.InvestmentTarget),
		InvestmentStartDate: optionalDate(s.InvestmentStartDate),
		RecoveredAmount:     money(s.RecoveredAmount),
		RemainingAmount:     money(s.Remaining),
		RecoveryPercentage:  money(s.RecoveryPercentage),
		IsComplete:          s.IsComplete,
		BookingCount:        s.BookingCount,
	}
}

// MonthlyQuery selects the month to summarize
type MonthlyQuery struct {
	Year        int    `form:"year" binding:"required,min=1,max=9999"`
	Month       int    `form:"month" binding:"required,min=1,max=12"`
	ApartmentID string `form:"apartmentId" binding:"omitempty,uuid"`
}

// PartnerTotalResponse is one partner's earnings over a month
type PartnerTotalResponse struct {
	PartnerID string `json:"partnerId"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
}

// MonthlySummaryResponse is the roll-up of one calendar month
type MonthlySummaryResponse struct {
	Year                  int                    `json:"year"`
	Month                 int                    `json:"month"`
	ApartmentID           *string                `json:"apartmentId"`
	From                  string                 `json:"from"`
	To                    string                 `json:"to"`
	BaseCurrency          string                 `json:"baseCurrency"`
	BookingCount          int                    `json:"bookingCount"`
	StatusCounts          map[string]int         `json:"statusCounts"`
	TotalPrice            string                 `json:"totalPrice"`
	Paid                  string                 `json:"paid"`
	Remaining             string                 `json:"remaining"`
	PlatformCommission    string                 `json:"platformCommission"`
	DevelopmentDeductions string                 `json:"developmentDeductions"`
	Distributable         string                 `json:"distributable"`
	PartnerShare          string                 `json:"partnerShare"`
	NetProfit             string                 `json:"netProfit"`
	Partners              []PartnerTotalResponse `json:"partners"`
	FundDeposits          string                 `json:"fundDeposits"`
	FundWithdrawals       string                 `json:"fundWithdrawals"`
	ExpenseCount          int                    `json:"expenseCount"`
	Expenses              string                 `json:"expenses"`
	NetAfterExpenses      string                 `json:"netAfterExpenses"`
}

func newMonthlySummaryResponse(s *monthly.Summary, base domain.Currency) MonthlySummaryResponse {
	resp := MonthlySummaryResponse{
		Year:                  s.Year,
		Month:                 int(s.Month),
		ApartmentID:           optionalID(s.ApartmentID),
		From:                  date(s.From),
		To:                    date(s.To),
		BaseCurrency:          string(base),
		BookingCount:          s.BookingCount,
		StatusCounts:          make(map[string]int, len(s.StatusCounts)),
		TotalPrice:            money(s.TotalPrice),
		Paid:                  money(s.Paid),
		Remaining:             money(s.Remaining),
		PlatformCommission:    money(s.PlatformCommission),
		DevelopmentDeductions: money(s.DevelopmentDeductions),
		Distributable:         money(s.Distributable),
		PartnerShare:          money(s.PartnerShare),
		NetProfit:             money(s.NetProfit),
		Partners:              make([]PartnerTotalResponse, 0, len(s.Partners)),
		FundDeposits:          money(s.FundDeposits),
		FundWithdrawals:       money(s.FundWithdrawals),
		ExpenseCount:          s.ExpenseCount,
		Expenses:              money(s.Expenses),
		NetAfterExpenses:      money(s.NetAfterExpenses),
	}
	for status, n := range s.StatusCounts {
		resp.StatusCounts[string(status)] = n
	}
	for _, p := range s.Partners {
		resp.Partners = append(resp.Partners, PartnerTotalResponse{
			PartnerID: p.PartnerID.String(),
			Name:      p.Name,
			Amount:    money(p.Amount),
		})
	}
	return resp
}

// DepositRequest is the body of a fund deposit
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required,currency"`
	Source      string          `json:"source" binding:"max=200"`
	ApartmentID *uuid.UUID      `json:"apartmentId"`
	Date        string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// WithdrawRequest is the body of a fund withdrawal
type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required,currency"`
	Description string          `json:"description" binding:"required,max=500"`
	ApartmentID *uuid.UUID      `json:"apartmentId"`
	Date        string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// LedgerQuery filters fund and expense listings by date
type LedgerQuery struct {
	ApartmentID string `form:"apartment_id" binding:"omitempty,uuid"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// FundTransactionResponse is one fund movement
type FundTransactionResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	BaseAmount  string    `json:"baseAmount"`
	OccurredAt  time.Time `json:"occurredAt"`
	ApartmentID *string   `json:"apartmentId"`
	Source      string    `json:"source,omitempty"`
	Description string    `json:"description,omitempty"`
}

func newFundTransactionResponse(tx *domain.FundTransaction) FundTransactionResponse {
	return FundTransactionResponse{
		ID:          tx.ID.String(),
		Type:        string(tx.Type),
		Amount:      money(tx.Amount),
		Currency:    string(tx.Currency),
		BaseAmount:  money(tx.BaseAmount),
		OccurredAt:  tx.OccurredAt,
		ApartmentID: optionalID(tx.ApartmentID),
		Source:      tx.Source,
		Description: tx.Description,
	}
}

// WithdrawResponse is the stored withdrawal with the balance right after it
type WithdrawResponse struct {
	Transaction FundTransactionResponse `json:"transaction"`
	Balance     string                  `json:"balance"`
	Warning     string                  `json:"warning,omitempty"`
}

func newWithdrawResponse(r *fund.WithdrawResult) WithdrawResponse {
	resp := WithdrawResponse{
		Transaction: newFundTransactionResponse(r.Transaction),
		Balance:     money(r.Balance),
	}
	if r.Warning {
		resp.Warning = "development fund balance is negative"
	}
	return resp
}

// FundBalanceResponse is the fund balance in base and secondary currency
type FundBalanceResponse struct {
	Balance           string  `json:"balance"`
	BaseCurrency      string  `json:"baseCurrency"`
	SecondaryBalance  *string `json:"secondaryBalance"`
	SecondaryCurrency string  `json:"secondaryCurrency"`
	Deposits          string  `json:"totalDeposits"`
	Withdrawals       string  `json:"totalWithdrawals"`
}

func newFundBalanceResponse(b *fund.Balance) FundBalanceResponse {
	return FundBalanceResponse{
		Balance:           money(b.Base),
		BaseCurrency:      string(b.BaseCurrency),
		SecondaryBalance:  optionalMoney(b.Secondary),
		SecondaryCurrency: string(b.SecondaryCurrency),
		Deposits:          money(b.Deposits),
		Withdrawals:       money(b.Withdrawals),
	}
}

// ExpenseRequest is the body of an expense entry
type ExpenseRequest struct {
	ApartmentID  *uuid.UUID      `json:"apartmentId"`
	Category     string          `json:"category" binding:"required,max=100"`
	Description  string          `json:"description" binding:"max=500"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency" binding:"required,currency"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	Date         string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ExpenseResponse is one expense
type ExpenseResponse struct {
	ID          string    `json:"id"`
	ApartmentID *string   `json:"apartmentId"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	BaseAmount  string    `json:"baseAmount"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID.String(),
		ApartmentID: optionalID(e.ApartmentID),
		Category:    e.Category,
		Description: e.Description,
		Amount:      money(e.Amount),
		Currency:    string(e.Currency),
		BaseAmount:  money(e.BaseAmount),
		Date:        date(e.IncurredAt),
		CreatedAt:   e.CreatedAt,
	}
}

// RatesResponse is the current currency table
type RatesResponse struct {
	Base      string            `json:"base"`
	Rates     map[string]string `json:"rates"`
	UpdatedAt *time.Time        `json:"updatedAt"`
}
