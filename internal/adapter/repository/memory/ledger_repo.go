package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// FundTransactionRepository implements domain.FundTransactionRepository in memory
type FundTransactionRepository struct {
	mu  sync.RWMutex
	txs []*domain.FundTransaction
}

// NewFundTransactionRepository creates a new in-memory FundTransactionRepository
func NewFundTransactionRepository() *FundTransactionRepository {
	return &FundTransactionRepository{}
}

// Append stores a new fund transaction
func (r *FundTransactionRepository) Append(_ context.Context, tx *domain.FundTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *tx
	r.txs = append(r.txs, &c)
	return nil
}

// List retrieves transactions matching the filter, oldest first
func (r *FundTransactionRepository) List(_ context.Context, f domain.FundFilter) ([]*domain.FundTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.FundTransaction, 0)
	for _, tx := range r.txs {
		if !inWindow(tx.OccurredAt, f.From, f.To) || !sameApartment(tx.ApartmentID, f.ApartmentID) {
			continue
		}
		c := *tx
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out, nil
}

// Totals sums every deposit and withdrawal
func (r *FundTransactionRepository) Totals(_ context.Context) (domain.FundTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := domain.FundTotals{Deposits: decimal.Zero, Withdrawals: decimal.Zero}
	for _, tx := range r.txs {
		totals = totals.Add(tx)
	}
	return totals, nil
}

// ExpenseRepository implements domain.ExpenseRepository in memory
type ExpenseRepository struct {
	mu       sync.RWMutex
	expenses []*domain.Expense
}

// NewExpenseRepository creates a new in-memory ExpenseRepository
func NewExpenseRepository() *ExpenseRepository {
	return &ExpenseRepository{}
}

// Create stores a new expense
func (r *ExpenseRepository) Create(_ context.Context, e *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *e
	r.expenses = append(r.expenses, &c)
	return nil
}

// List retrieves expenses matching the filter, oldest first
func (r *ExpenseRepository) List(_ context.Context, f domain.ExpenseFilter) ([]*domain.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Expense, 0)
	for _, e := range r.expenses {
		if !inWindow(e.IncurredAt, f.From, f.To) || !sameApartment(e.ApartmentID, f.ApartmentID) {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IncurredAt.Before(out[j].IncurredAt)
	})
	return out, nil
}

// inWindow reports whether t is in [from, to); nil bounds are open
func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

func sameApartment(have, want *uuid.UUID) bool {
	if want == nil {
		return true
	}
	return have != nil && *have == *want
}

var (
	_ domain.FundTransactionRepository = (*FundTransactionRepository)(nil)
	_ domain.ExpenseRepository         = (*ExpenseRepository)(nil)
)
