package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// fundTransactionRepository implements domain.FundTransactionRepository
type fundTransactionRepository struct {
	db *DB
}

// NewFundTransactionRepository creates a new fund transaction repository
func NewFundTransactionRepository(db *DB) domain.FundTransactionRepository {
	return &fundTransactionRepository{db: db}
}

// Append inserts a fund transaction; rows are never updated
func (r *fundTransactionRepository) Append(ctx context.Context, tx *domain.FundTransaction) error {
	query := `
		INSERT INTO fund_transactions (id, type, amount, currency, base_amount, occurred_at, apartment_id, source, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		string(tx.Type),
		tx.Amount.String(),
		string(tx.Currency),
		tx.BaseAmount.String(),
		tx.OccurredAt,
		nullableUUID(tx.ApartmentID),
		tx.Source,
		tx.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund transaction: %w", err)
	}
	return nil
}

// List retrieves fund transactions matching the filter, oldest first
func (r *fundTransactionRepository) List(ctx context.Context, f domain.FundFilter) ([]*domain.FundTransaction, error) {
	where, args := windowClause("occurred_at", f.From, f.To, f.ApartmentID)
	query := `
		SELECT id, type, amount::text, currency, base_amount::text, occurred_at, apartment_id, source, description
		FROM fund_transactions` + where + `
		ORDER BY occurred_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fund transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*domain.FundTransaction, 0)
	for rows.Next() {
		var tx domain.FundTransaction
		var kind, currency, amount, base string
		var aptID sql.NullString
		if err := rows.Scan(&tx.ID, &kind, &amount, &currency, &base, &tx.OccurredAt, &aptID, &tx.Source, &tx.Description); err != nil {
			return nil, fmt.Errorf("failed to scan fund transaction: %w", err)
		}
		tx.Type = domain.FundTransactionType(kind)
		tx.Currency = domain.Currency(strings.TrimSpace(currency))
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		if tx.BaseAmount, err = decimal.NewFromString(base); err != nil {
			return nil, fmt.Errorf("failed to parse base_amount: %w", err)
		}
		if tx.ApartmentID, err = parseNullUUID(aptID); err != nil {
			return nil, fmt.Errorf("failed to parse apartment_id: %w", err)
		}
		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund transactions: %w", err)
	}
	return txs, nil
}

// Totals sums deposits and withdrawals in one pass
func (r *fundTransactionRepository) Totals(ctx context.Context) (domain.FundTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(base_amount) FILTER (WHERE type = 'deposit'), 0)::text,
			COALESCE(SUM(base_amount) FILTER (WHERE type = 'withdrawal'), 0)::text
		FROM fund_transactions
	`

	var deposits, withdrawals string
	if err := r.db.QueryRowContext(ctx, query).Scan(&deposits, &withdrawals); err != nil {
		return domain.FundTotals{}, fmt.Errorf("failed to sum fund transactions: %w", err)
	}

	var totals domain.FundTotals
	var err error
	if totals.Deposits, err = decimal.NewFromString(deposits); err != nil {
		return domain.FundTotals{}, fmt.Errorf("failed to parse deposits: %w", err)
	}
	if totals.Withdrawals, err = decimal.NewFromString(withdrawals); err != nil {
		return domain.FundTotals{}, fmt.Errorf("failed to parse withdrawals: %w", err)
	}
	return totals, nil
}

// expenseRepository implements domain.ExpenseRepository
type expenseRepository struct {
	db *DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *DB) domain.ExpenseRepository {
	return &expenseRepository{db: db}
}

// Create inserts an expense
func (r *expenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	query := `
		INSERT INTO expenses (id, apartment_id, category, description, amount, currency, base_amount, incurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		nullableUUID(e.ApartmentID),
		e.Category,
		e.Description,
		e.Amount.String(),
		string(e.Currency),
		e.BaseAmount.String(),
		domain.DateOf(e.IncurredAt),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// List retrieves expenses matching the filter, oldest first
func (r *expenseRepository) List(ctx context.Context, f domain.ExpenseFilter) ([]*domain.Expense, error) {
	where, args := windowClause("incurred_at", f.From, f.To, f.ApartmentID)
	query := `
		SELECT id, apartment_id, category, description, amount::text, currency, base_amount::text, incurred_at, created_at
		FROM expenses` + where + `
		ORDER BY incurred_at, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*domain.Expense, 0)
	for rows.Next() {
		var e domain.Expense
		var aptID sql.NullString
		var amount, currency, base string
		if err := rows.Scan(&e.ID, &aptID, &e.Category, &e.Description, &amount, &currency, &base, &e.IncurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Currency = domain.Currency(strings.TrimSpace(currency))
		e.IncurredAt = domain.DateOf(e.IncurredAt)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		if e.BaseAmount, err = decimal.NewFromString(base); err != nil {
			return nil, fmt.Errorf("failed to parse base_amount: %w", err)
		}
		if e.ApartmentID, err = parseNullUUID(aptID); err != nil {
			return nil, fmt.Errorf("failed to parse apartment_id: %w", err)
		}
		expenses = append(expenses, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// windowClause builds "WHERE col >= from AND col < to AND apartment_id = x"; nil parts are skipped
func windowClause(column string, from, to *time.Time, apartmentID *uuid.UUID) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if from != nil {
		args = append(args, *from)
		conds = append(conds, fmt.Sprintf("%s >= $%d", column, len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, fmt.Sprintf("%s < $%d", column, len(args)))
	}
	if apartmentID != nil {
		args = append(args, *apartmentID)
		conds = append(conds, fmt.Sprintf("apartment_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
