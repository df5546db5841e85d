package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/usecase/expense"
	"github.com/simaogato/hostelflow-backend/internal/usecase/fund"
	"github.com/simaogato/hostelflow-backend/internal/usecase/monthly"
	"github.com/simaogato/hostelflow-backend/internal/usecase/rates"
	"github.com/simaogato/hostelflow-backend/internal/usecase/roi"
)

// FinanceHandler serves ROI, monthly summaries, the development fund, expenses and currency rates
type FinanceHandler struct {
	ROI      *roi.ROIService
	Monthly  *monthly.MonthlyService
	Fund     *fund.FundService
	Expenses *expense.ExpenseService
	Rates    *rates.Table
}

// NewFinanceHandler creates a new FinanceHandler instance
func NewFinanceHandler(
	roiService *roi.ROIService,
	monthlyService *monthly.MonthlyService,
	fundService *fund.FundService,
	expenseService *expense.ExpenseService,
	rateTable *rates.Table,
) *FinanceHandler {
	return &FinanceHandler{
		ROI:      roiService,
		Monthly:  monthlyService,
		Fund:     fundService,
		Expenses: expenseService,
		Rates:    rateTable,
	}
}

// ListROI handles GET /roi
func (h *FinanceHandler) ListROI(c *gin.Context) {
	summaries, err := h.ROI.SummarizeAll(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]ROIResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, newROIResponse(s))
	}
	ok(c, resp)
}

// GetROI handles GET /roi/:apartmentId
func (h *FinanceHandler) GetROI(c *gin.Context) {
	id, valid := pathID(c, "apartmentId")
	if !valid {
		return
	}

	summary, err := h.ROI.Summarize(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, newROIResponse(summary))
}

// MonthlySummary handles GET /monthly/summary
func (h *FinanceHandler) MonthlySummary(c *gin.Context) {
	var q MonthlyQuery
	if !bindQuery(c, &q) {
		return
	}
	var apartmentID *uuid.UUID
	if q.ApartmentID != "" {
		id := uuid.MustParse(q.ApartmentID)
		apartmentID = &id
	}

	summary, err := h.Monthly.Summarize(c.Request.Context(), q.Year, q.Month, apartmentID)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, newMonthlySummaryResponse(summary, h.Rates.Base()))
}

// FundBalance handles GET /fund/balance
func (h *FinanceHandler) FundBalance(c *gin.Context) {
	balance, err := h.Fund.Balance(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, newFundBalanceResponse(balance))
}

// FundTransactions handles GET /fund/transactions
func (h *FinanceHandler) FundTransactions(c *gin.Context) {
	var q LedgerQuery
	if !bindQuery(c, &q) {
		return
	}
	from, to, apartmentID, err := q.window()
	if err != nil {
		handleError(c, err)
		return
	}

	txs, err := h.Fund.List(c.Request.Context(), domain.FundFilter{From: from, To: to, ApartmentID: apartmentID})
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]FundTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, newFundTransactionResponse(tx))
	}
	ok(c, resp)
}

// Deposit handles POST /fund/deposit
func (h *FinanceHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if !bindJSON(c, &req) {
		return
	}
	at, err := parseDate("date", req.Date)
	if err != nil {
		handleError(c, err)
		return
	}

	tx, err := h.Fund.Deposit(c.Request.Context(), fund.DepositInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Source:      req.Source,
		ApartmentID: req.ApartmentID,
		OccurredAt:  at,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, newFundTransactionResponse(tx))
}

// Withdraw handles POST /fund/withdraw; a negative balance is reported as a warning, not an error
func (h *FinanceHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if !bindJSON(c, &req) {
		return
	}
	at, err := parseDate("date", req.Date)
	if err != nil {
		handleError(c, err)
		return
	}

	result, err := h.Fund.Withdraw(c.Request.Context(), fund.WithdrawInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		ApartmentID: req.ApartmentID,
		OccurredAt:  at,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, newWithdrawResponse(result))
}

// RecordExpense handles POST /expenses
func (h *FinanceHandler) RecordExpense(c *gin.Context) {
	var req ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	at, err := parseDate("date", req.Date)
	if err != nil {
		handleError(c, err)
		return
	}

	e, err := h.Expenses.RecordExpense(c.Request.Context(), expense.RecordExpenseInput{
		ApartmentID:  req.ApartmentID,
		Category:     req.Category,
		Description:  req.Description,
		Amount:       req.Amount,
		Currency:     req.Currency,
		ExchangeRate: req.ExchangeRate,
		IncurredAt:   at,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, newExpenseResponse(e))
}

// ListExpenses handles GET /expenses
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	var q LedgerQuery
	if !bindQuery(c, &q) {
		return
	}
	from, to, apartmentID, err := q.window()
	if err != nil {
		handleError(c, err)
		return
	}

	expenses, err := h.Expenses.List(c.Request.Context(), domain.ExpenseFilter{From: from, To: to, ApartmentID: apartmentID})
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, newExpenseResponse(e))
	}
	ok(c, resp)
}

// CurrencyRates handles GET /currency/rates
func (h *FinanceHandler) CurrencyRates(c *gin.Context) {
	ok(c, newRatesResponse(h.Rates.Snapshot()))
}

// RefreshRates handles POST /currency/rates/refresh
func (h *FinanceHandler) RefreshRates(c *gin.Context) {
	if err := h.Rates.Refresh(c.Request.Context()); err != nil {
		handleError(c, err)
		return
	}
	ok(c, newRatesResponse(h.Rates.Snapshot()))
}

func newRatesResponse(s rates.Snapshot) RatesResponse {
	resp := RatesResponse{
		Base:  string(s.Base),
		Rates: make(map[string]string, len(s.Rates)),
	}
	for c, r := range s.Rates {
		resp.Rates[string(c)] = r.String()
	}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// window turns the query into an optional [from, to) range and apartment
func (q LedgerQuery) window() (*time.Time, *time.Time, *uuid.UUID, error) {
	var from, to *time.Time
	var apartmentID *uuid.UUID
	if q.From != "" {
		t, err := parseDate("from", q.From)
		if err != nil {
			return nil, nil, nil, err
		}
		from = &t
	}
	if q.To != "" {
		t, err := parseDate("to", q.To)
		if err != nil {
			return nil, nil, nil, err
		}
		to = &t
	}
	if q.ApartmentID != "" {
		id := uuid.MustParse(q.ApartmentID)
		apartmentID = &id
	}
	return from, to, apartmentID, nil
}
