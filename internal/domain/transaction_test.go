package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFundTransaction_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		tx      FundTransaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "Deposit with positive amount should pass",
			tx: FundTransaction{
				ID:         uuid.New(),
				Type:       FundTransactionDeposit,
				Amount:     decimal.NewFromInt(500),
				Currency:   "EGP",
				OccurredAt: now,
			},
			wantErr: false,
		},
		{
			name: "Withdrawal with description should pass",
			tx: FundTransaction{
				ID:          uuid.New(),
				Type:        FundTransactionWithdrawal,
				Amount:      decimal.NewFromInt(50),
				Currency:    "USD",
				Description: "New mattress",
				OccurredAt:  now,
			},
			wantErr: false,
		},
		{
			name: "Zero amount should fail",
			tx: FundTransaction{
				Type:       FundTransactionDeposit,
				Amount:     decimal.Zero,
				Currency:   "USD",
				OccurredAt: now,
			},
			wantErr: true,
			errMsg:  "amount must be positive",
		},
		{
			name: "Unknown type should fail",
			tx: FundTransaction{
				Type:       "TRANSFER",
				Amount:     decimal.NewFromInt(10),
				Currency:   "USD",
				OccurredAt: now,
			},
			wantErr: true,
			errMsg:  "deposit or withdrawal",
		},
		{
			name: "Withdrawal without description should fail",
			tx: FundTransaction{
				Type:       FundTransactionWithdrawal,
				Amount:     decimal.NewFromInt(10),
				Currency:   "USD",
				OccurredAt: now,
			},
			wantErr: true,
			errMsg:  "description",
		},
		{
			name: "Missing currency should fail",
			tx: FundTransaction{
				Type:       FundTransactionDeposit,
				Amount:     decimal.NewFromInt(10),
				OccurredAt: now,
			},
			wantErr: true,
			errMsg:  "currency is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				var vErr *ValidationError
				assert.ErrorAs(t, err, &vErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFundTotals_BalanceCanGoNegative(t *testing.T) {
	totals := FundTotals{Deposits: decimal.Zero, Withdrawals: decimal.Zero}

	totals = totals.Add(&FundTransaction{Type: FundTransactionDeposit, BaseAmount: decimal.NewFromInt(100)})
	totals = totals.Add(&FundTransaction{Type: FundTransactionWithdrawal, BaseAmount: decimal.NewFromInt(150)})

	assert.True(t, totals.Deposits.Equal(decimal.NewFromInt(100)))
	assert.True(t, totals.Withdrawals.Equal(decimal.NewFromInt(150)))
	assert.True(t, totals.Balance().Equal(decimal.NewFromInt(-50)), "Balance should be -50")
}

func TestFundTransaction_SignedBaseAmount(t *testing.T) {
	deposit := FundTransaction{Type: FundTransactionDeposit, BaseAmount: decimal.NewFromInt(20)}
	withdrawal := FundTransaction{Type: FundTransactionWithdrawal, BaseAmount: decimal.NewFromInt(20)}

	assert.True(t, deposit.SignedBaseAmount().Equal(decimal.NewFromInt(20)))
	assert.True(t, withdrawal.SignedBaseAmount().Equal(decimal.NewFromInt(-20)))
}
